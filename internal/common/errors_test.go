package common

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{"nil", nil, codes.OK},
		{"unavailable", fmt.Errorf("page 3: %w", ErrRecognizerUnavailable), codes.Unavailable},
		{"deadline", fmt.Errorf("recognize: %w", context.DeadlineExceeded), codes.DeadlineExceeded},
		{"cancelled", context.Canceled, codes.Canceled},
		{"bad input", NewAppError("UNSUPPORTED_FILE", "notes.txt", ErrInvalidInput), codes.InvalidArgument},
		{"bad number", ErrInvalidNumber, codes.InvalidArgument},
		{"bad date", ErrInvalidDate, codes.InvalidArgument},
		{"not found", NewAppError("NOT_FOUND", "/x.pdf", ErrNotFound), codes.NotFound},
		{"other", errors.New("boom"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusCode(tt.err))
		})
	}
}

func TestToStatus(t *testing.T) {
	assert.NoError(t, ToStatus(nil))

	err := ToStatus(NewAppError("DB_ERROR", "connect", ErrDatabase))
	st, ok := status.FromError(err)
	assert.True(t, ok)
	assert.Equal(t, codes.Internal, st.Code())
	assert.Equal(t, "DB_ERROR: connect: database error", st.Message())
}

func TestAppErrorUnwrap(t *testing.T) {
	err := fmt.Errorf("load: %w", NewAppError("DECODE_ERROR", "bad png", ErrInvalidInput))
	var app *AppError
	assert.ErrorAs(t, err, &app)
	assert.Equal(t, "DECODE_ERROR", app.Code)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, "PAGE", NewAppError("PAGE", "no cause", nil).Code)
	assert.Equal(t, "PAGE: no cause", NewAppError("PAGE", "no cause", nil).Error())
}

func TestPageContext(t *testing.T) {
	ctx := WithDocumentID(WithPage(context.Background(), 4), "doc-1")
	assert.Equal(t, 4, PageFromContext(ctx))
	assert.Equal(t, "doc-1", DocumentIDFromContext(ctx))
	assert.Equal(t, 0, PageFromContext(context.Background()))
	assert.Equal(t, "", DocumentIDFromContext(context.Background()))
}

//go:build !ocr

package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// GosseractRecognizer is unavailable in builds without the "ocr" tag.
// Rebuild with -tags ocr (requires libtesseract) to enable it.
type GosseractRecognizer struct{}

func NewGosseractRecognizer(Config, *slog.Logger) (*GosseractRecognizer, error) {
	return nil, fmt.Errorf("%w: gosseract support not compiled in; rebuild with -tags ocr", common.ErrRecognizerUnavailable)
}

func (*GosseractRecognizer) Recognize(context.Context, image.Image) ([]Fragment, error) {
	return nil, fmt.Errorf("%w: gosseract support not compiled in", common.ErrRecognizerUnavailable)
}

func (*GosseractRecognizer) Close() error { return nil }

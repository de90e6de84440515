package common

import (
	"context"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyDocumentID contextKey = "document_id"
	ContextKeyPage       contextKey = "page"
)

// WithDocumentID adds a document ID to the context
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentID, documentID)
}

// DocumentIDFromContext extracts the document ID from context
func DocumentIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(ContextKeyDocumentID).(string); ok {
		return id
	}
	return ""
}

// WithPage adds a 1-based page index to the context
func WithPage(ctx context.Context, page int) context.Context {
	return context.WithValue(ctx, ContextKeyPage, page)
}

// PageFromContext extracts the page index from context, 0 when absent
func PageFromContext(ctx context.Context) int {
	if page, ok := ctx.Value(ContextKeyPage).(int); ok {
		return page
	}
	return 0
}

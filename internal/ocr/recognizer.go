// Package ocr is the boundary to the external text recognizer: engines that map a page
// bitmap to positioned text fragments, and the lifecycle-managed handle that owns them.
package ocr

import (
	"context"
	"fmt"
	"image"
	"log/slog"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// Engine names accepted by NewFactory.
const (
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
)

// Fragment is one recognized line of text. Confidence is in 0..1, negative when the
// engine did not report one.
type Fragment struct {
	Text       string
	Confidence float32
	Box        image.Rectangle
}

// Recognizer maps a page bitmap to text fragments in reading order.
// Engine failures that make it unusable must wrap common.ErrRecognizerUnavailable.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Fragment, error)
	Close() error
}

// Factory constructs a ready-to-use Recognizer. It is expected to be expensive.
type Factory func(ctx context.Context) (Recognizer, error)

// Texts returns the fragment texts, in order.
func Texts(fragments []Fragment) []string {
	out := make([]string, 0, len(fragments))
	for _, f := range fragments {
		out = append(out, f.Text)
	}
	return out
}

// NewFactory returns the Factory for the configured engine.
func NewFactory(cfg Config, runner Runner, logger *slog.Logger) (Factory, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Engine {
	case "", EngineTesseract:
		return func(ctx context.Context) (Recognizer, error) {
			r := NewTesseractRecognizer(cfg, runner, logger)
			if err := r.Probe(ctx); err != nil {
				return nil, err
			}
			return r, nil
		}, nil
	case EngineGosseract:
		return func(ctx context.Context) (Recognizer, error) {
			r, err := NewGosseractRecognizer(cfg, logger)
			if err != nil {
				return nil, err
			}
			return r, nil
		}, nil
	default:
		return nil, common.NewAppError("CONFIG_ERROR", fmt.Sprintf("unknown ocr engine %q", cfg.Engine), common.ErrInvalidInput)
	}
}

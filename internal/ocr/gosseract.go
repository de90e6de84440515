//go:build ocr

package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// GosseractRecognizer runs tesseract in-process through one gosseract client.
// The client is not concurrency-safe, so calls are serialized.
type GosseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
	logger *slog.Logger
}

func NewGosseractRecognizer(cfg Config, logger *slog.Logger) (*GosseractRecognizer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()

	client := gosseract.NewClient()
	if cfg.TessdataDir != "" {
		if err := client.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%w: tessdata prefix %q: %v", common.ErrRecognizerUnavailable, cfg.TessdataDir, err)
		}
	}
	if err := client.SetLanguage(cfg.languages()...); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%w: language %q: %v", common.ErrRecognizerUnavailable, cfg.Lang, err)
	}
	if cfg.PSM > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("%w: page segmentation mode %d: %v", common.ErrRecognizerUnavailable, cfg.PSM, err)
		}
	}
	logger.Info("gosseract client ready", "lang", cfg.Lang, "psm", cfg.PSM)
	return &GosseractRecognizer{client: client, logger: logger}, nil
}

func (g *GosseractRecognizer) Recognize(ctx context.Context, img image.Image) ([]Fragment, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}

	type result struct {
		frags []Fragment
		err   error
	}
	// buffered so the worker never blocks after a cancelled caller left
	resultCh := make(chan result, 1)
	go func() {
		frags, err := g.recognize(buf.Bytes())
		resultCh <- result{frags, err}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultCh:
		return res.frags, res.err
	}
}

func (g *GosseractRecognizer) recognize(data []byte) ([]Fragment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil, fmt.Errorf("%w: client closed", common.ErrRecognizerUnavailable)
	}
	if err := g.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := g.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("gosseract: %w", err)
	}
	frags := make([]Fragment, 0, len(boxes))
	for _, b := range boxes {
		text := strings.TrimSpace(b.Word)
		if text == "" {
			continue
		}
		frags = append(frags, Fragment{Text: text, Confidence: float32(b.Confidence / 100.0), Box: b.Box})
	}
	return frags, nil
}

func (g *GosseractRecognizer) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client == nil {
		return nil
	}
	err := g.client.Close()
	g.client = nil
	return err
}

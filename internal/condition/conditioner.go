// Package condition prepares a decoded page bitmap for text recognition.
package condition

import (
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

type Config struct {
	MaxWidth       int     // 0 = unbounded
	MaxHeight      int     // 0 = unbounded
	FilterStrength float64 // non-local means h; <= 0 skips denoising
	TemplateWindow int     // odd patch size
	SearchWindow   int     // odd search area size
	Sharpen        bool
	Binarize       bool
	BinarizeBlock  int // odd neighbourhood size for the adaptive threshold
	BinarizeC      int // subtracted from the neighbourhood mean
}

// DefaultConfig mirrors the production tuning for phone photos and 300 DPI scans.
func DefaultConfig() Config {
	return Config{
		MaxWidth:       800,
		MaxHeight:      1000,
		FilterStrength: 10,
		TemplateWindow: 7,
		SearchWindow:   21,
		Sharpen:        true,
		BinarizeBlock:  11,
		BinarizeC:      2,
	}
}

func ConfigFromCommon(c common.ImageConfig) Config {
	cfg := DefaultConfig()
	cfg.MaxWidth = c.MaxWidth
	cfg.MaxHeight = c.MaxHeight
	cfg.FilterStrength = c.FilterStrength
	cfg.TemplateWindow = c.TemplateWindow
	cfg.SearchWindow = c.SearchWindow
	cfg.Sharpen = c.Sharpen
	cfg.Binarize = c.Binarize
	return cfg
}

// Result is the conditioned page. Fallback is set when a stage failed and Image is
// the plain grayscale of the (resized, when resizing succeeded) input.
type Result struct {
	Image    *image.Gray
	Fallback bool
	Warnings []string
}

// Conditioner is stateless apart from its configuration and safe for concurrent use.
type Conditioner struct {
	cfg    Config
	logger *slog.Logger

	denoise func(*image.Gray) *image.Gray
}

func NewConditioner(cfg Config, logger *slog.Logger) *Conditioner {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.TemplateWindow <= 0 {
		cfg.TemplateWindow = 7
	}
	if cfg.SearchWindow <= 0 {
		cfg.SearchWindow = 21
	}
	if cfg.BinarizeBlock <= 1 {
		cfg.BinarizeBlock = 11
	}
	c := &Conditioner{cfg: cfg, logger: logger}
	c.denoise = func(g *image.Gray) *image.Gray {
		return NLMeans(g, cfg.FilterStrength, cfg.TemplateWindow, cfg.SearchWindow)
	}
	return c
}

// Condition resizes, converts to grayscale, denoises, and optionally sharpens and binarizes img.
// A failing stage never aborts: the grayscale page is returned with Fallback set.
// An error (wrapping common.ErrConditioning) is returned only when img is not a usable bitmap.
func (c *Conditioner) Condition(img image.Image) (Result, error) {
	if img == nil || img.Bounds().Empty() {
		return Result{}, fmt.Errorf("%w: empty image", common.ErrConditioning)
	}
	start := time.Now()
	src := img

	var res Result
	if err := stage("resize", func() { src = c.resize(img) }); err != nil {
		res.Warnings = append(res.Warnings, err.Error())
		src = img
	}

	var gray *image.Gray
	if err := stage("grayscale", func() { gray = ToGray(src) }); err != nil {
		return Result{}, fmt.Errorf("%w: %v", common.ErrConditioning, err)
	}

	out := gray
	err := stage("denoise", func() {
		if c.cfg.FilterStrength > 0 {
			out = c.denoise(out)
		}
	})
	if err == nil && c.cfg.Sharpen {
		err = stage("sharpen", func() { out = sharpen(out) })
	}
	if err == nil && c.cfg.Binarize {
		err = stage("binarize", func() { out = adaptiveThreshold(out, c.cfg.BinarizeBlock, c.cfg.BinarizeC) })
	}
	if err != nil {
		c.logger.Warn("conditioning fell back to grayscale", "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		res.Fallback = true
		out = gray
	}

	res.Image = out
	c.logger.Debug("page conditioned",
		"width", out.Rect.Dx(),
		"height", out.Rect.Dy(),
		"fallback", res.Fallback,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// resize bounds width then height, independently, never upscaling.
func (c *Conditioner) resize(img image.Image) image.Image {
	if c.cfg.MaxWidth > 0 && img.Bounds().Dx() > c.cfg.MaxWidth {
		img = imaging.Resize(img, c.cfg.MaxWidth, 0, imaging.Box)
	}
	if c.cfg.MaxHeight > 0 && img.Bounds().Dy() > c.cfg.MaxHeight {
		img = imaging.Resize(img, 0, c.cfg.MaxHeight, imaging.Box)
	}
	return img
}

// stage runs fn, turning a panic into an error naming the stage.
func stage(name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v", common.ErrConditioning, name, r)
		}
	}()
	fn()
	return nil
}

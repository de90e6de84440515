package ingest

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
)

func (l *Loader) loadHEIC(ctx context.Context, src Source) ([]image.Image, error) {
	out, cleanup, err := l.convertHEIC(ctx, src)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	img, err := DecodeImage(out)
	if err != nil {
		return nil, err
	}
	return []image.Image{img}, nil
}

// convertHEIC converts a HEIC/HEIF file to PNG with the configured converter
// ("heif-convert" | "magick" | "sips"). With an artifact cache dir, conversions are
// kept under <cache>/heic/<sha256>.png and reused.
func (l *Loader) convertHEIC(ctx context.Context, src Source) (string, func(), error) {
	noop := func() {}
	dir := ""
	if l.cfg.ArtifactCacheDir != "" && src.HashHex != "" {
		dir = filepath.Join(l.cfg.ArtifactCacheDir, "heic")
		cached := filepath.Join(dir, src.HashHex+".png")
		if info, err := os.Stat(cached); err == nil && info.Size() > 0 {
			l.logger.Debug("heic cache hit", "path", src.Path, "artifact", cached)
			return cached, noop, nil
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", noop, fmt.Errorf("create artifact cache: %w", err)
		}
	}

	tmpDir, err := os.MkdirTemp(dir, "bs-heic-*")
	if err != nil {
		return "", noop, err
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }
	out := filepath.Join(tmpDir, "page.png")

	var args []string
	switch l.cfg.HeicConverter {
	case "heif-convert", "magick":
		args = []string{src.Path, out}
	case "sips":
		args = []string{"-s", "format", "png", src.Path, "--out", out}
	default:
		cleanup()
		return "", noop, common.NewAppError("CONFIG_ERROR", "HEIC not supported: set HEIC_CONVERTER to one of: heif-convert | magick | sips", common.ErrInvalidInput)
	}
	if _, errb, err := l.runner.Run(ctx, l.cfg.HeicConverter, l.logger, args...); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("%s convert failed: %w: %s", l.cfg.HeicConverter, err, ocr.Truncate(strings.TrimSpace(string(errb)), 512))
	}
	if _, err := os.Stat(out); err != nil {
		cleanup()
		return "", noop, fmt.Errorf("HEIC conversion produced no output: %w", err)
	}

	if dir == "" {
		return out, cleanup, nil
	}
	cached := filepath.Join(dir, src.HashHex+".png")
	if err := os.Rename(out, cached); err != nil {
		l.logger.Warn("heic artifact not cached", "path", src.Path, "error", err)
		return out, cleanup, nil
	}
	cleanup()
	return cached, noop, nil
}

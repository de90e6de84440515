package ingest

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
	"github.com/joseph-ayodele/bukti-setor/internal/ocr"
)

func (l *Loader) loadPDF(ctx context.Context, src Source) ([]image.Image, error) {
	tmpDir, err := os.MkdirTemp("", "bs-pp-*")
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			l.logger.Warn("failed to remove temp dir", "path", tmpDir, "error", err)
		}
	}()

	paths, err := l.rasterize(ctx, src.Path, tmpDir)
	if err != nil {
		return nil, err
	}
	return l.decodePages(paths), nil
}

// rasterize renders every page (up to MaxPages) to PNG files in dir, in page order.
func (l *Loader) rasterize(ctx context.Context, path, dir string) ([]string, error) {
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <dir/page>
	args := []string{"-r", strconv.Itoa(l.cfg.DPI), "-png"}
	if l.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(l.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	if _, errb, err := l.runner.Run(ctx, l.cfg.Pdftoppm, l.logger, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, ocr.Truncate(strings.TrimSpace(string(errb)), 512))
	}

	// pdftoppm zero-pads the page number to the width of the page count
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	sort.Slice(matches, func(i, j int) bool { return pageNumber(matches[i]) < pageNumber(matches[j]) })
	if l.cfg.MaxPages > 0 && len(matches) > l.cfg.MaxPages {
		matches = matches[:l.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return nil, common.NewAppError("DECODE_ERROR", "pdftoppm produced no images for "+path, common.ErrInvalidInput)
	}
	return matches, nil
}

func pageNumber(path string) int {
	base := strings.TrimSuffix(filepath.Base(path), ".png")
	n, err := strconv.Atoi(base[strings.LastIndex(base, "-")+1:])
	if err != nil {
		return 0
	}
	return n
}

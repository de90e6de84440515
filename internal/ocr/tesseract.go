package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// stderr markers of a tesseract install that cannot recognize anything.
var unavailableMarkers = []string{
	"failed loading language",
	"error opening data file",
	"could not initialize tesseract",
}

// TesseractRecognizer shells out to the tesseract CLI in TSV mode.
// It keeps no per-call state and is safe for concurrent use.
type TesseractRecognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractRecognizer(cfg Config, runner Runner, logger *slog.Logger) *TesseractRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	return &TesseractRecognizer{cfg: cfg.withDefaults(), runner: runner, logger: logger}
}

// Probe checks that the binary can be executed.
func (t *TesseractRecognizer) Probe(ctx context.Context) error {
	_, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.logger, "--version")
	if err != nil {
		return t.classify(ctx, err, errb)
	}
	return nil
}

func (t *TesseractRecognizer) Recognize(ctx context.Context, img image.Image) ([]Fragment, error) {
	f, err := os.CreateTemp(t.cfg.TempDir, "bs-page-*.png")
	if err != nil {
		return nil, fmt.Errorf("create temp page: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil {
			t.logger.Warn("failed to remove temp page", "path", path, "error", err)
		}
	}()
	if err := imaging.Encode(f, img, imaging.PNG); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("encode page: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("write temp page: %w", err)
	}

	out, errb, err := t.runner.Run(ctx, t.cfg.Tesseract, t.logger, t.args(path)...)
	if err != nil {
		return nil, t.classify(ctx, err, errb)
	}
	frags := parseTSV(string(out))
	t.logger.Debug("tesseract recognized page", "fragments", len(frags), "page", common.PageFromContext(ctx))
	return frags, nil
}

func (t *TesseractRecognizer) Close() error { return nil }

// tesseract <file> stdout -l <lang> [--psm n] [--oem n] [--tessdata-dir d] tsv
func (t *TesseractRecognizer) args(path string) []string {
	args := []string{path, "stdout", "-l", t.cfg.Lang}
	if t.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(t.cfg.PSM))
	}
	if t.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(t.cfg.OEM))
	}
	if t.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", t.cfg.TessdataDir)
	}
	return append(args, "tsv")
}

// classify separates an unusable engine from a failure on one page.
func (t *TesseractRecognizer) classify(ctx context.Context, err error, stderr []byte) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return fmt.Errorf("%w: %s: %v", common.ErrRecognizerUnavailable, t.cfg.Tesseract, err)
	}
	msg := strings.ToLower(string(stderr))
	for _, m := range unavailableMarkers {
		if strings.Contains(msg, m) {
			return fmt.Errorf("%w: %s", common.ErrRecognizerUnavailable, Truncate(strings.TrimSpace(string(stderr)), 512))
		}
	}
	return fmt.Errorf("tesseract: %w", err)
}

type lineKey struct{ block, par, line int }

// parseTSV groups word rows (level 5) by block, paragraph and line into one fragment
// per line: words joined by a space, mean word confidence, union of word boxes.
func parseTSV(out string) []Fragment {
	type acc struct {
		words []string
		sum   float64
		n     int
		box   image.Rectangle
	}
	var order []lineKey
	lines := map[lineKey]*acc{}

	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || len(ln) == 0 {
			continue
		} // skip header
		cols := strings.Split(strings.TrimRight(ln, "\r"), "\t")
		if len(cols) < 12 || cols[0] != "5" {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		n := tsvInts(cols[2:10])
		key := lineKey{n[0], n[1], n[2]}
		a, ok := lines[key]
		if !ok {
			a = &acc{}
			lines[key] = a
			order = append(order, key)
		}
		a.words = append(a.words, text)
		box := image.Rect(n[4], n[5], n[4]+n[6], n[5]+n[7])
		if a.box.Empty() {
			a.box = box
		} else {
			a.box = a.box.Union(box)
		}
		if conf, err := strconv.ParseFloat(cols[10], 64); err == nil && conf >= 0 {
			a.sum += conf
			a.n++
		}
	}

	frags := make([]Fragment, 0, len(order))
	for _, k := range order {
		a := lines[k]
		conf := float32(-1)
		if a.n > 0 {
			conf = float32(a.sum / float64(a.n) / 100.0)
		}
		frags = append(frags, Fragment{Text: strings.Join(a.words, " "), Confidence: conf, Box: a.box})
	}
	return frags
}

// tsvInts parses block, par, line, word, left, top, width, height.
func tsvInts(cols []string) []int {
	out := make([]int, len(cols))
	for i, c := range cols {
		out[i], _ = strconv.Atoi(c)
	}
	return out
}

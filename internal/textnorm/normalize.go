// Package textnorm turns raw recognizer fragments into the normalized lines field extraction runs on.
package textnorm

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"
)

// DefaultMinFragmentLen drops recognizer debris such as stray marks and single letters.
const DefaultMinFragmentLen = 3

var (
	reCRLF       = regexp.MustCompile(`\r\n?`)
	reTabs       = regexp.MustCompile(`\t+`)
	reMultiSpace = regexp.MustCompile(` {2,}`)
	reBoxNoise   = regexp.MustCompile(`^[\s_\-=|.]+$`)
)

// Corrector maps a word to its corrected spelling. Implementations must be pure;
// a word without a correction is returned unchanged.
type Corrector interface {
	Correct(word string) string
}

// CorrectorFunc adapts a plain function to Corrector.
type CorrectorFunc func(string) string

func (f CorrectorFunc) Correct(word string) string { return f(word) }

type Options struct {
	MinFragmentLen int       // fragments shorter than this (in runes) are dropped
	Corrector      Corrector // optional, nil disables spell correction
}

// Normalizer lowercases, trims, filters and optionally spell-corrects fragments.
// It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	opts   Options
	logger *slog.Logger
}

func NewNormalizer(opts Options, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MinFragmentLen <= 0 {
		opts.MinFragmentLen = DefaultMinFragmentLen
	}
	return &Normalizer{opts: opts, logger: logger}
}

// Normalize returns the normalized lines of fragments, in recognition order.
// A fragment spanning several lines contributes one line per line break.
func (n *Normalizer) Normalize(fragments []string) []string {
	lines := make([]string, 0, len(fragments))
	dropped := 0
	for _, f := range fragments {
		for _, ln := range strings.Split(reCRLF.ReplaceAllString(f, "\n"), "\n") {
			ln = Clean(ln)
			if utf8.RuneCountInString(ln) < n.opts.MinFragmentLen || reBoxNoise.MatchString(ln) {
				dropped++
				continue
			}
			if n.opts.Corrector != nil {
				ln = n.correctLine(ln)
			}
			lines = append(lines, ln)
		}
	}
	n.logger.Debug("normalized fragments", "fragments", len(fragments), "lines", len(lines), "dropped", dropped)
	return lines
}

// Clean collapses tabs and repeated spaces, trims and lowercases a single line.
func Clean(s string) string {
	s = reTabs.ReplaceAllString(s, " ")
	s = reMultiSpace.ReplaceAllString(s, " ")
	return strings.ToLower(strings.TrimSpace(s))
}

func (n *Normalizer) correctLine(ln string) string {
	words := strings.Fields(ln)
	for i, w := range words {
		words[i] = n.opts.Corrector.Correct(w)
	}
	return strings.Join(words, " ")
}

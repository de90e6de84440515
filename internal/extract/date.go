package extract

import (
	"regexp"

	"cloud.google.com/go/civil"

	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
)

var (
	reDateLabel  = regexp.MustCompile(`(?i)\b(?:tanggal|tgl|date)\b(.*)`)
	reNumberRun  = regexp.MustCompile(`\d+`)
	dateKeywords = []string{"setor", "bayar", "waktu", "transaksi", "buku"}
	// lines searched by the permutation fallback
	datePermutationKeywords = []string{"tanggal", "tgl", "date", "setor", "bayar", "waktu"}
)

// DateStrategies returns the deposit date cascade: a date after a date label, a
// date on a payment keyword line, any calendar date in the text, and finally every
// day/month/year ordering of three consecutive numbers on a date keyword line.
func DateStrategies() []Strategy[civil.Date] {
	return []Strategy[civil.Date]{
		{
			Name: "date label",
			Kind: KindLabeledPattern,
			Apply: func(t Text) (civil.Date, bool) {
				for _, ln := range t.Lines() {
					if m := reDateLabel.FindStringSubmatch(ln); m != nil {
						if d, err := normalize.ParseDate(m[1]); err == nil {
							return d, true
						}
					}
				}
				return civil.Date{}, false
			},
		},
		{
			Name: "date keyword line",
			Kind: KindContextualLine,
			Apply: func(t Text) (civil.Date, bool) {
				for _, ln := range linesWithAny(t, dateKeywords) {
					if d, err := normalize.ParseDate(ln); err == nil {
						return d, true
					}
				}
				return civil.Date{}, false
			},
		},
		{
			Name: "calendar date",
			Kind: KindGlobalFallback,
			Apply: func(t Text) (civil.Date, bool) {
				d, err := normalize.ParseDate(t.Body())
				return d, err == nil
			},
		},
		{
			Name: "date keyword line permutation",
			Kind: KindContextualLine,
			Apply: func(t Text) (civil.Date, bool) {
				for _, ln := range linesWithAny(t, datePermutationKeywords) {
					if d, ok := normalize.PermuteDate(reNumberRun.FindAllString(ln, -1)); ok {
						return d, true
					}
				}
				return civil.Date{}, false
			},
		},
	}
}

package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/internal/normalize"
)

// DefaultMinPlausibleAmount rejects page numbers, years and short codes.
var DefaultMinPlausibleAmount = normalize.AmountFromUnits(10000)

// maxBareAmountDigits: longer unseparated runs are NTPN, NPWP or billing identifiers.
const maxBareAmountDigits = 12

var (
	amountLabels = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"jumlah setor rp", regexp.MustCompile(`(?i)jumlah\s*setor(?:an)?\s*:?\s*rp\.?\s*([\d.,]+)`)},
		{"total setor rp", regexp.MustCompile(`(?i)total\s*setor(?:an)?\s*:?\s*rp\.?\s*([\d.,]+)`)},
		{"jumlah pembayaran rp", regexp.MustCompile(`(?i)jumlah\s*(?:pembayaran|bayar)\s*:?\s*rp\.?\s*([\d.,]+)`)},
		{"nominal rp", regexp.MustCompile(`(?i)nominal\s*:?\s*rp\.?\s*([\d.,]+)`)},
		{"nilai rp", regexp.MustCompile(`(?i)nilai\s*:?\s*rp\.?\s*([\d.,]+)`)},
		{"amount rp", regexp.MustCompile(`(?i)amount\s*:?\s*(?:rp|idr)\.?\s*([\d.,]+)`)},
		{"jumlah setor", regexp.MustCompile(`(?i)jumlah\s*setor(?:an)?\s*:?\s*([\d.,]+)`)},
		{"total setor", regexp.MustCompile(`(?i)total\s*setor(?:an)?\s*:?\s*([\d.,]+)`)},
		{"nominal", regexp.MustCompile(`(?i)nominal\s*:?\s*([\d.,]+)`)},
		{"nilai", regexp.MustCompile(`(?i)nilai\s*:?\s*([\d.,]+)`)},
		{"transfer rp", regexp.MustCompile(`(?i)transfer\b.*?rp\.?\s*([\d.,]+)`)},
		{"debet rp", regexp.MustCompile(`(?i)debet\b.*?rp\.?\s*([\d.,]+)`)},
		{"debit rp", regexp.MustCompile(`(?i)debit\b.*?rp\.?\s*([\d.,]+)`)},
		{"rp amount", regexp.MustCompile(`(?i)\brp\.?\s*([\d.,]{7,})`)},
	}

	amountKeywords = []string{"jumlah", "total", "nominal", "nilai", "setor", "bayar", "transfer", "debet", "debit", "amount", "rp", "idr"}
	// lines labeling a code, period or identifier hold no amount ("kode setor: 411211")
	amountExcludedLines = []string{"kode", "akun", "ntpn", "npwp", "masa", "billing"}

	reMoneyToken = regexp.MustCompile(`\d[\d.,\-/]*\d|\d`)
	reMoneyShape = regexp.MustCompile(`^(?:\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?|\d+(?:[.,]\d{1,2})?)$`)
)

// AmountStrategies returns the deposit amount cascade. Labeled matches are trusted
// as long as they parse to a positive value; keyword lines and the global scan only
// consider money-shaped tokens above minPlausible on lines that do not label a code
// or identifier, and the global scan picks the largest.
func AmountStrategies(minPlausible normalize.Amount) []Strategy[normalize.Amount] {
	var out []Strategy[normalize.Amount]
	for _, l := range amountLabels {
		re := l.re
		out = append(out, Strategy[normalize.Amount]{
			Name: l.name,
			Kind: KindLabeledPattern,
			Apply: func(t Text) (normalize.Amount, bool) {
				for _, m := range re.FindAllStringSubmatch(t.Body(), -1) {
					if isBareIdentifier(m[1]) {
						continue
					}
					if a, err := normalize.ParseAmount(m[1]); err == nil && !a.IsZero() {
						return a, true
					}
				}
				return normalize.Amount{}, false
			},
		})
	}
	return append(out,
		Strategy[normalize.Amount]{
			Name: "amount keyword line",
			Kind: KindContextualLine,
			Apply: func(t Text) (normalize.Amount, bool) {
				for _, ln := range linesWithAny(t, amountKeywords) {
					if containsAny(strings.ToLower(ln), amountExcludedLines) {
						continue
					}
					if c := plausibleAmounts(ln, minPlausible); len(c) > 0 {
						return c[0], true
					}
				}
				return normalize.Amount{}, false
			},
		},
		Strategy[normalize.Amount]{
			Name: "largest plausible amount",
			Kind: KindGlobalFallback,
			Apply: func(t Text) (normalize.Amount, bool) {
				var c []normalize.Amount
				for _, ln := range t.Lines() {
					if !containsAny(strings.ToLower(ln), amountExcludedLines) {
						c = append(c, plausibleAmounts(ln, minPlausible)...)
					}
				}
				if len(c) == 0 {
					return normalize.Amount{}, false
				}
				best := c[0]
				for _, a := range c[1:] {
					if a.Cmp(best) > 0 {
						best = a
					}
				}
				return best, true
			},
		},
	)
}

// plausibleAmounts returns money-shaped tokens of s above the floor, in order.
func plausibleAmounts(s string, floor normalize.Amount) []normalize.Amount {
	var out []normalize.Amount
	for _, tok := range reMoneyToken.FindAllString(s, -1) {
		if !reMoneyShape.MatchString(tok) || isBareIdentifier(tok) {
			continue
		}
		a, err := normalize.ParseAmount(tok)
		if err != nil || a.Cmp(floor) <= 0 {
			continue
		}
		out = append(out, a)
	}
	return out
}

func isBareIdentifier(tok string) bool {
	return len(tok) > maxBareAmountDigits && !strings.ContainsAny(tok, ".,")
}

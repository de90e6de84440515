package extract

import (
	"regexp"
	"strings"
)

var (
	ntpnLabels = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"ntpn label", regexp.MustCompile(`(?i)ntpn\s*:?\s*(\d{16})\b`)},
		{"nomor transaksi label", regexp.MustCompile(`(?i)nomor\s*transaksi(?:\s*penerimaan\s*negara)?\s*:?\s*(\d{16})\b`)},
		{"no transaksi label", regexp.MustCompile(`(?i)\bno\.?\s*transaksi\s*:?\s*(\d{16})\b`)},
		{"reference label", regexp.MustCompile(`(?i)\bref(?:erence|erensi)?\.?\s*:?\s*(\d{16})\b`)},
		{"ntpn grouped label", regexp.MustCompile(`(?i)ntpn\s*:?\s*(\d{4})[-. \t]?(\d{4})[-. \t]?(\d{4})[-. \t]?(\d{4})\b`)},
	}

	ntpnKeywords = []string{"ntpn", "transaksi", "reference", "referensi", "billing", "nomor", "penerimaan"}

	reNTPN = regexp.MustCompile(`\b\d{16}\b`)
	// the four groups must share one line
	reNTPNGrouped = regexp.MustCompile(`\b(\d{4})[-. \t](\d{4})[-. \t](\d{4})[-. \t](\d{4})\b`)
)

// NTPNStrategies returns the NTPN cascade. Grouped forms ("1234-5678-9012-3456")
// are rebuilt by dropping the separators.
func NTPNStrategies() []Strategy[string] {
	var out []Strategy[string]
	for _, l := range ntpnLabels {
		re := l.re
		out = append(out, Strategy[string]{
			Name: l.name,
			Kind: KindLabeledPattern,
			Apply: func(t Text) (string, bool) {
				if m := re.FindStringSubmatch(t.Body()); m != nil {
					return joinNTPN(m[1:])
				}
				return "", false
			},
		})
	}
	return append(out,
		Strategy[string]{
			Name: "ntpn keyword line",
			Kind: KindContextualLine,
			Apply: func(t Text) (string, bool) {
				for _, ln := range linesWithAny(t, ntpnKeywords) {
					if v, ok := findNTPN(ln); ok {
						return v, true
					}
				}
				return "", false
			},
		},
		Strategy[string]{
			Name: "16-digit run",
			Kind: KindGlobalFallback,
			Apply: func(t Text) (string, bool) {
				v := reNTPN.FindString(t.Body())
				return v, v != ""
			},
		},
		Strategy[string]{
			Name: "grouped 16 digits",
			Kind: KindGlobalFallback,
			Apply: func(t Text) (string, bool) {
				if m := reNTPNGrouped.FindStringSubmatch(t.Body()); m != nil {
					return joinNTPN(m[1:])
				}
				return "", false
			},
		},
	)
}

func findNTPN(s string) (string, bool) {
	if v := reNTPN.FindString(s); v != "" {
		return v, true
	}
	if m := reNTPNGrouped.FindStringSubmatch(s); m != nil {
		return joinNTPN(m[1:])
	}
	return "", false
}

func joinNTPN(groups []string) (string, bool) {
	v := strings.Join(groups, "")
	return v, len(v) == 16
}

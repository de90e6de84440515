package extract

import (
	"regexp"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/constants"
)

var (
	// a 6-8 digit run; runs right after a currency marker are amounts, not codes
	reCodeToken = regexp.MustCompile(`(?i)(rp\.?\s*)?\b(\d{6,8})\b`)

	codeLabels = []struct {
		name string
		re   *regexp.Regexp
	}{
		{"kode setor label", regexp.MustCompile(`(?i)kode\s*setor(?:an)?\s*:?\s*(\d{6,8})\b`)},
		{"kode akun pajak label", regexp.MustCompile(`(?i)kode\s*akun(?:\s*pajak)?\s*:?\s*(\d{6,8})\b`)},
		{"kode label", regexp.MustCompile(`(?i)\bkode\s*:?\s*(\d{6,8})\b`)},
		{"ssp label", regexp.MustCompile(`(?i)\bssp\b.*?\b(\d{6,8})\b`)},
	}

	codeKeywords = []string{"setoran", "pajak", "billing"}
	// lines carrying an amount label hold money, not codes
	codeExcludedLines = []string{"jumlah", "total", "nominal", "nilai"}
	// tax period lines ("masa pajak 012024") never hold the code
	codePeriodLines = []string{"masa"}
)

// CodeStrategies returns the deposit code cascade: labels, the known-code table,
// keyword lines, then any 6-8 digit run with a preference for codes starting with '4'.
func CodeStrategies() []Strategy[string] {
	var out []Strategy[string]
	for _, l := range codeLabels {
		re := l.re
		out = append(out, Strategy[string]{
			Name: l.name,
			Kind: KindLabeledPattern,
			Apply: func(t Text) (string, bool) {
				if m := re.FindStringSubmatch(t.Body()); m != nil {
					return m[1], true
				}
				return "", false
			},
		})
	}
	for _, code := range constants.KnownDepositCodes {
		re := regexp.MustCompile(`\b` + string(code) + `\b`)
		out = append(out, Strategy[string]{
			Name: "known code " + string(code),
			Kind: KindLabeledPattern,
			Apply: func(t Text) (string, bool) {
				return string(code), re.MatchString(t.Body())
			},
		})
	}
	return append(out,
		Strategy[string]{Name: "code keyword line", Kind: KindContextualLine, Apply: codeFromKeywordLine},
		Strategy[string]{Name: "code starting with 4", Kind: KindGlobalFallback, Apply: codeWithPrior},
		Strategy[string]{Name: "first code-shaped run", Kind: KindGlobalFallback, Apply: firstCode},
	)
}

func codeFromKeywordLine(t Text) (string, bool) {
	for _, ln := range linesWithAny(t, codeKeywords) {
		l := strings.ToLower(ln)
		if containsAny(l, codeExcludedLines) || containsAny(l, codePeriodLines) {
			continue
		}
		if c := codeCandidates(ln); len(c) > 0 {
			return c[0], true
		}
	}
	return "", false
}

func codeWithPrior(t Text) (string, bool) {
	for _, c := range bodyCodeCandidates(t) {
		if strings.HasPrefix(c, "4") {
			return c, true
		}
	}
	return "", false
}

func firstCode(t Text) (string, bool) {
	if c := bodyCodeCandidates(t); len(c) > 0 {
		return c[0], true
	}
	return "", false
}

// bodyCodeCandidates returns code-shaped runs of every line outside tax period lines.
func bodyCodeCandidates(t Text) []string {
	var out []string
	for _, ln := range t.Lines() {
		if !containsAny(strings.ToLower(ln), codePeriodLines) {
			out = append(out, codeCandidates(ln)...)
		}
	}
	return out
}

func codeCandidates(s string) []string {
	var out []string
	for _, m := range reCodeToken.FindAllStringSubmatch(s, -1) {
		if m[1] != "" {
			continue
		}
		out = append(out, m[2])
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

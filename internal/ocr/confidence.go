package ocr

import (
	"regexp"
	"strings"
)

var (
	reDate   = regexp.MustCompile(`\b\d{1,2}[/.\-]\d{1,2}[/.\-]\d{4}\b|\b\d{1,2}\s+(jan|feb|mar|apr|mei|jun|jul|agu|agt|sep|okt|nov|des)[a-z]*\s+\d{4}\b`)
	reCurr   = regexp.MustCompile(`\b(rp|idr)\b`)
	reAmount = regexp.MustCompile(`\b\d{1,3}(\.\d{3})+(,\d{2})?\b|\b\d{1,3}(,\d{3})+(\.\d{2})?\b`)
	reNTPN   = regexp.MustCompile(`\b\d{16}\b|\b\d{4}[-.\s]\d{4}[-.\s]\d{4}[-.\s]\d{4}\b`)
)

func hasDatePattern(s string) bool     { return reDate.MatchString(s) }
func hasCurrencyPattern(s string) bool { return reCurr.MatchString(s) }
func hasAmountPattern(s string) bool   { return reAmount.MatchString(s) }
func hasNTPNPattern(s string) bool     { return reNTPN.MatchString(s) }

// HeuristicConfidence scores decoded text by how much it looks like a deposit receipt.
func HeuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasDatePattern(txtL) {
		score += 0.2
	}
	if hasCurrencyPattern(txtL) {
		score += 0.15
	}
	if hasAmountPattern(txtL) {
		score += 0.15
	}
	if hasNTPNPattern(txtL) {
		score += 0.15
	}
	if len(txt) > 120 {
		score += 0.1
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// MeanConfidence averages the engine confidences that were reported.
func MeanConfidence(frags []Fragment) (float32, bool) {
	var sum float32
	n := 0
	for _, f := range frags {
		if f.Confidence < 0 {
			continue
		}
		sum += f.Confidence
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float32(n), true
}

// PageConfidence blends engine and heuristic confidence, weighting the engine higher when present.
func PageConfidence(frags []Fragment, text string) float32 {
	heur := HeuristicConfidence(text)
	conf := heur
	if ocrConf, ok := MeanConfidence(frags); ok && ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heur
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

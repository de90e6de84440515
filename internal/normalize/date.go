package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/agext/levenshtein"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// monthNames is the Indonesian month table, index 0 = January.
var monthNames = [12]string{
	"januari", "februari", "maret", "april", "mei", "juni",
	"juli", "agustus", "september", "oktober", "november", "desember",
}

var monthAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"mei": time.May, "jun": time.June, "jul": time.July, "agu": time.August,
	"agt": time.August, "ags": time.August, "sep": time.September, "okt": time.October,
	"nov": time.November, "des": time.December,
}

// minMonthSimilarity is the fuzzy threshold for OCR-garbled month names.
const minMonthSimilarity = 0.7

var (
	reMonthName = regexp.MustCompile(`(?i)\b(\d{1,2})\s*([a-z]{3,10})\.?,?\s*(\d{4})\b`)
	reDMY       = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4})\b`)
	reYMD       = regexp.MustCompile(`\b(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})\b`)
)

// MonthFromName resolves an Indonesian month name, abbreviation or near miss.
func MonthFromName(word string) (time.Month, bool) {
	w := strings.ToLower(strings.TrimSpace(word))
	for i, name := range monthNames {
		if w == name {
			return time.Month(i + 1), true
		}
	}
	if m, ok := monthAbbrev[w]; ok {
		return m, true
	}
	if len(w) < 4 {
		return 0, false
	}
	best, bestScore := time.Month(0), 0.0
	for i, name := range monthNames {
		if score := levenshtein.Similarity(w, name, nil); score > bestScore {
			best, bestScore = time.Month(i+1), score
		}
	}
	if bestScore >= minMonthSimilarity {
		return best, true
	}
	return 0, false
}

// ParseDate finds the first valid calendar date in s. It tries "D <MonthName> YYYY",
// then DD/MM/YYYY, then YYYY/MM/DD; impossible dates are skipped, not fatal.
func ParseDate(s string) (civil.Date, error) {
	for _, m := range reMonthName.FindAllStringSubmatch(s, -1) {
		month, ok := MonthFromName(m[2])
		if !ok {
			continue
		}
		if d, ok := makeDate(m[3], int(month), m[1]); ok {
			return d, nil
		}
	}
	for _, m := range reDMY.FindAllStringSubmatch(s, -1) {
		if d, ok := makeDate(m[3], atoi(m[2]), m[1]); ok {
			return d, nil
		}
	}
	for _, m := range reYMD.FindAllStringSubmatch(s, -1) {
		if d, ok := makeDate(m[1], atoi(m[2]), m[3]); ok {
			return d, nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", common.ErrInvalidDate, s)
}

// NormalizeDate returns the ISO-8601 form of the first date in s.
func NormalizeDate(s string) (string, error) {
	d, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return d.String(), nil
}

// dateOrders lists (day, month, year) index triples, most common layout first.
var dateOrders = [][3]int{
	{0, 1, 2}, // D M Y
	{2, 1, 0}, // Y M D
	{1, 0, 2}, // M D Y
	{1, 2, 0}, // Y D M
	{0, 2, 1}, // D Y M
	{2, 0, 1}, // M Y D
}

// PermuteDate interprets each window of three consecutive numeric tokens as
// day/month/year in every ordering and returns the first valid date.
func PermuteDate(tokens []string) (civil.Date, bool) {
	for i := 0; i+3 <= len(tokens); i++ {
		win := tokens[i : i+3]
		for _, o := range dateOrders {
			day, month, year := win[o[0]], win[o[1]], win[o[2]]
			if len(year) != 4 || len(day) > 2 || len(month) > 2 {
				continue
			}
			if d, ok := makeDate(year, atoi(month), day); ok {
				return d, true
			}
		}
	}
	return civil.Date{}, false
}

func makeDate(year string, month int, day string) (civil.Date, bool) {
	y, d := atoi(year), atoi(day)
	if len(year) != 4 || month < 1 || month > 12 || d < 1 || d > 31 {
		return civil.Date{}, false
	}
	date := civil.Date{Year: y, Month: time.Month(month), Day: d}
	return date, date.IsValid()
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}

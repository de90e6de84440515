// Package normalize canonicalizes locale-ambiguous amounts and heterogeneous date text.
package normalize

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/bukti-setor/internal/common"
)

// Amount is an unsigned money value kept in minor units (two decimal places).
type Amount struct {
	minor int64
}

var reNonNumeric = regexp.MustCompile(`[^\d.,]`)

// AmountFromMinor builds an Amount from minor units (sen).
func AmountFromMinor(minor int64) Amount { return Amount{minor: minor} }

// AmountFromUnits builds an Amount from whole currency units.
func AmountFromUnits(units int64) Amount { return Amount{minor: units * 100} }

// Minor returns the value in minor units.
func (a Amount) Minor() int64 { return a.minor }

// Units returns the whole-unit part, dropping any fraction.
func (a Amount) Units() int64 { return a.minor / 100 }

// IsWhole reports whether the amount has no fractional part.
func (a Amount) IsWhole() bool { return a.minor%100 == 0 }

func (a Amount) IsZero() bool { return a.minor == 0 }

func (a Amount) Float64() float64 { return float64(a.minor) / 100 }

// Cmp returns -1, 0 or +1.
func (a Amount) Cmp(b Amount) int {
	switch {
	case a.minor < b.minor:
		return -1
	case a.minor > b.minor:
		return 1
	}
	return 0
}

// String renders the canonical form: "1234" or "1234.5" / "1234.56".
func (a Amount) String() string {
	units := strconv.FormatInt(a.minor/100, 10)
	frac := a.minor % 100
	if frac == 0 {
		return units
	}
	s := fmt.Sprintf("%s.%02d", units, frac)
	return strings.TrimSuffix(s, "0")
}

// MarshalJSON emits a JSON number, integral when the amount is whole.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(json.Number(a.String())), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	v, err := ParseAmount(strings.Trim(string(b), `"`))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// ParseAmount canonicalizes strings such as "Rp 1.234.567,89", "1,234.56" or "1.234".
//
// With both separators the one appearing last is the decimal separator. A lone '.'
// is a thousands separator when the last group has more than two digits. A lone ','
// is a decimal separator. Fractions beyond two digits are rounded half-up.
func ParseAmount(s string) (Amount, error) {
	cleaned := reNonNumeric.ReplaceAllString(s, "")
	if strings.IndexFunc(cleaned, isDigit) < 0 {
		return Amount{}, fmt.Errorf("%w: %q", common.ErrInvalidNumber, s)
	}

	intPart, fracPart := cleaned, ""
	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastDot >= 0 && lastComma >= 0:
		dec := max(lastDot, lastComma)
		intPart, fracPart = cleaned[:dec], cleaned[dec+1:]
	case lastDot >= 0:
		if len(cleaned)-lastDot-1 <= 2 {
			intPart, fracPart = cleaned[:lastDot], cleaned[lastDot+1:]
		}
	case lastComma >= 0:
		intPart, fracPart = cleaned[:lastComma], cleaned[lastComma+1:]
	}
	intPart = strings.Map(keepDigit, intPart)
	fracPart = strings.Map(keepDigit, fracPart)

	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil || units > (1<<62)/100 {
		return Amount{}, fmt.Errorf("%w: %q", common.ErrInvalidNumber, s)
	}

	var frac int64
	if fracPart != "" {
		padded := (fracPart + "00")[:2]
		frac, _ = strconv.ParseInt(padded, 10, 64)
		if len(fracPart) > 2 && fracPart[2] >= '5' {
			frac++
		}
	}
	return Amount{minor: units*100 + frac}, nil
}

// NormalizeAmount returns the canonical string of s, or "" with ErrInvalidNumber.
func NormalizeAmount(s string) (string, error) {
	a, err := ParseAmount(s)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func keepDigit(r rune) rune {
	if isDigit(r) {
		return r
	}
	return -1
}

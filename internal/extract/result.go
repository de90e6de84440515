// Package extract recovers typed receipt fields from normalized recognizer text.
//
// Each field is an ordered list of strategies, most specific first; the first
// strategy that yields a well-formed value wins. A field that no strategy finds is
// an ordinary NotFound result, never an error.
package extract

// Kind tags the tier a strategy belongs to.
type Kind int

const (
	KindNone Kind = iota
	// KindLabeledPattern matches a regular expression anchored to a field label.
	KindLabeledPattern
	// KindContextualLine scans lines containing a field keyword for a well-shaped token.
	KindContextualLine
	// KindGlobalFallback scans the whole text for a well-shaped token.
	KindGlobalFallback
)

func (k Kind) String() string {
	switch k {
	case KindLabeledPattern:
		return "labeled_pattern"
	case KindContextualLine:
		return "contextual_line"
	case KindGlobalFallback:
		return "global_fallback"
	default:
		return "none"
	}
}

// Result is a field value or an explicit not-found marker. The zero Result is NotFound.
type Result[T any] struct {
	Value    T
	Found    bool
	Strategy string // name of the strategy that produced Value
	Kind     Kind
}

func Found[T any](v T, strategy string, kind Kind) Result[T] {
	return Result[T]{Value: v, Found: true, Strategy: strategy, Kind: kind}
}

func NotFound[T any]() Result[T] { return Result[T]{} }

// Get returns the value and whether it was found.
func (r Result[T]) Get() (T, bool) { return r.Value, r.Found }

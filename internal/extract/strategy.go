package extract

import "strings"

// Text is the normalized page text: lines in recognition order plus their
// newline-joined body.
type Text struct {
	lines []string
	body  string
}

func NewText(lines []string) Text {
	cp := append([]string(nil), lines...)
	return Text{lines: cp, body: strings.Join(cp, "\n")}
}

// TextFromString splits a body on newlines.
func TextFromString(body string) Text {
	return NewText(strings.Split(body, "\n"))
}

func (t Text) Lines() []string { return t.lines }

func (t Text) Body() string { return t.body }

// Strategy is one pure matching rule for a field.
type Strategy[T any] struct {
	Name  string
	Kind  Kind
	Apply func(Text) (T, bool)
}

// Run evaluates strategies in order and returns the first success.
func Run[T any](t Text, strategies []Strategy[T]) Result[T] {
	for _, s := range strategies {
		if v, ok := s.Apply(t); ok {
			return Found(v, s.Name, s.Kind)
		}
	}
	return NotFound[T]()
}

// linesWithAny returns the lines containing any keyword as a substring.
func linesWithAny(t Text, keywords []string) []string {
	var out []string
	for _, ln := range t.lines {
		l := strings.ToLower(ln)
		for _, k := range keywords {
			if strings.Contains(l, k) {
				out = append(out, ln)
				break
			}
		}
	}
	return out
}

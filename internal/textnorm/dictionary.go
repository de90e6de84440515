package textnorm

import (
	"bufio"
	_ "embed"
	"fmt"
	"os"
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
)

//go:embed vocabulary.txt
var vocabulary string

// minCorrectableLen keeps short tokens ("rp", "no", "pph") away from fuzzy matching.
const minCorrectableLen = 4

// Dictionary is a word-list spell corrector. Words are matched by Levenshtein
// distance: at most 1 edit for words of up to five letters, 2 above that.
// Ties go to the word listed first.
type Dictionary struct {
	words []string
	index map[string]struct{}
}

// NewDictionary builds a dictionary from the embedded receipt vocabulary plus extra words.
func NewDictionary(extra ...string) *Dictionary {
	d := &Dictionary{index: make(map[string]struct{})}
	d.addAll(strings.Split(vocabulary, "\n"))
	d.addAll(extra)
	return d
}

// LoadDictionary extends the embedded vocabulary with a word list file, one word per line.
// Lines starting with '#' are ignored.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		words = append(words, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary %q: %w", path, err)
	}
	return NewDictionary(words...), nil
}

func (d *Dictionary) addAll(words []string) {
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		if _, ok := d.index[w]; ok {
			continue
		}
		d.index[w] = struct{}{}
		d.words = append(d.words, w)
	}
}

func (d *Dictionary) Len() int { return len(d.words) }

func (d *Dictionary) Contains(word string) bool {
	_, ok := d.index[strings.ToLower(word)]
	return ok
}

// Correct returns the closest dictionary word, keeping surrounding punctuation
// ("setor:" stays "setor:"). Words with digits, short words and words without a
// close enough match pass through unchanged.
func (d *Dictionary) Correct(word string) string {
	start := strings.IndexFunc(word, unicode.IsLetter)
	end := strings.LastIndexFunc(word, unicode.IsLetter)
	if start < 0 {
		return word
	}
	core := word[start : end+1]
	if strings.IndexFunc(core, unicode.IsDigit) >= 0 || len([]rune(core)) < minCorrectableLen {
		return word
	}
	lower := strings.ToLower(core)
	if _, ok := d.index[lower]; ok {
		return word
	}

	maxDist := 1
	if len([]rune(lower)) > 5 {
		maxDist = 2
	}
	best, bestDist := "", maxDist+1
	for _, cand := range d.words {
		if abs(len(cand)-len(lower)) > maxDist {
			continue
		}
		if dist := levenshtein.Distance(lower, cand, nil); dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	if best == "" {
		return word
	}
	return word[:start] + best + word[end+1:]
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

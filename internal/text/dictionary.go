package text

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sahilm/fuzzy"
)

// DefaultMaxExtra is how many letters longer than the input a suggestion
// may be.
const DefaultMaxExtra = 2

// DictionaryCorrector suggests the closest fuzzy match from a word list.
// A suggestion must contain every letter of the input in order and be at
// most MaxExtra letters longer.
type DictionaryCorrector struct {
	words    []string
	known    map[string]struct{}
	MaxExtra int
}

// NewDictionaryCorrector builds a corrector over words. Entries are
// lower-cased and deduplicated.
func NewDictionaryCorrector(words []string) *DictionaryCorrector {
	d := &DictionaryCorrector{
		known:    make(map[string]struct{}, len(words)),
		MaxExtra: DefaultMaxExtra,
	}
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		if _, ok := d.known[w]; ok {
			continue
		}
		d.known[w] = struct{}{}
		d.words = append(d.words, w)
	}
	return d
}

// LoadDictionary reads one word per line. Blank lines and lines starting
// with # are skipped.
func LoadDictionary(r io.Reader) (*DictionaryCorrector, error) {
	var words []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	return NewDictionaryCorrector(words), nil
}

// LoadDictionaryFile opens path and calls LoadDictionary.
func LoadDictionaryFile(path string) (*DictionaryCorrector, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close() //nolint:errcheck
	return LoadDictionary(f)
}

// Len returns the number of distinct words.
func (d *DictionaryCorrector) Len() int {
	return len(d.words)
}

// Correct implements Corrector.
func (d *DictionaryCorrector) Correct(word string) (string, bool) {
	if word == "" {
		return "", false
	}
	if _, ok := d.known[word]; ok {
		return word, true
	}
	for _, m := range fuzzy.Find(word, d.words) {
		if len(m.Str)-len(word) <= d.MaxExtra {
			return m.Str, true
		}
	}
	return "", false
}

package text

import (
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Corrector suggests a spelling for a lower-case word. ok is false when no
// suggestion exists.
type Corrector interface {
	Correct(word string) (corrected string, ok bool)
}

// Normalizer sanitizes announcement text and optionally spell-corrects each
// word. It is safe for concurrent use if its Corrector is.
type Normalizer struct {
	corrector Corrector
	logger    *log.Logger
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithCorrector enables per-word spelling correction.
func WithCorrector(c Corrector) Option {
	return func(n *Normalizer) { n.corrector = c }
}

// WithLogger sets the logger used to report corrections.
func WithLogger(l *log.Logger) Option {
	return func(n *Normalizer) { n.logger = l }
}

// NewNormalizer returns a Normalizer. Without a Corrector it only sanitizes.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{logger: log.Default()}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize sanitizes s and runs each word through the Corrector. Words the
// Corrector has no suggestion for are kept verbatim. A word that started
// with an upper-case letter keeps a leading capital after correction.
// Words containing digits are never corrected.
func (n *Normalizer) Normalize(s string) string {
	clean := Sanitize(s)
	if n.corrector == nil || clean == "" {
		return clean
	}

	title := cases.Title(language.English)
	words := strings.Split(clean, " ")
	for i, word := range words {
		if hasDigit(word) {
			continue
		}
		corrected, ok := n.corrector.Correct(strings.ToLower(word))
		if !ok || corrected == "" || corrected == strings.ToLower(word) {
			continue
		}
		if isCapitalized(word) {
			corrected = title.String(corrected)
		}
		if corrected != word {
			n.logger.Debug("spelling corrected", "word", word, "corrected", corrected)
		}
		words[i] = corrected
	}
	return Sanitize(strings.Join(words, " "))
}

package normalize

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"cardhub/pkg/models"
)

// SetClassifier decides whether a set is a Japanese-language release.
type SetClassifier interface {
	IsJapanese(set models.CardSet) bool
}

// ClassifierFunc adapts a plain function to SetClassifier.
type ClassifierFunc func(set models.CardSet) bool

func (f ClassifierFunc) IsJapanese(set models.CardSet) bool { return f(set) }

// LegacyEraPatterns match Japanese subset ids such as "sm12a" or "xy8b":
// an era prefix, a number and one trailing letter.
var LegacyEraPatterns = []string{
	`^sm\d+[a-z]$`,
	`^xy\d+[a-z]$`,
	`^bw\d+[a-z]$`,
	`^dpt?\d+[a-z]$`,
	`^pt\d+[a-z]$`,
	`^sv\d+[a-z]$`,
}

// ScriptClassifier flags a set as Japanese when its name or series contains
// Hiragana, Katakana or Han characters, or its id matches one of the era
// patterns. New era codes can be added with WithPatterns.
type ScriptClassifier struct {
	patterns []*regexp.Regexp
}

func NewScriptClassifier(patterns ...string) (*ScriptClassifier, error) {
	return (&ScriptClassifier{}).WithPatterns(patterns...)
}

// WithPatterns returns a copy that also matches the given id patterns.
func (c *ScriptClassifier) WithPatterns(patterns ...string) (*ScriptClassifier, error) {
	out := &ScriptClassifier{patterns: append([]*regexp.Regexp(nil), c.patterns...)}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile era pattern %q: %w", p, err)
		}
		out.patterns = append(out.patterns, re)
	}
	return out, nil
}

func (c *ScriptClassifier) IsJapanese(set models.CardSet) bool {
	if hasJapaneseScript(set.Name) || hasJapaneseScript(set.Series) {
		return true
	}
	for _, re := range c.patterns {
		if re.MatchString(set.ID) {
			return true
		}
	}
	return false
}

func hasJapaneseScript(s string) bool {
	for _, r := range s {
		if unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Han) {
			return true
		}
	}
	return false
}

// JapaneseLanguage is the catalog language code of Japanese listings.
const JapaneseLanguage = "ja"

// ForLanguage returns the classifier for a catalog listing in lang. Every
// set of a Japanese listing is Japanese, whatever its id or name; other
// listings defer to next.
func ForLanguage(lang string, next SetClassifier) SetClassifier {
	if strings.EqualFold(strings.TrimSpace(lang), JapaneseLanguage) {
		return ClassifierFunc(func(models.CardSet) bool { return true })
	}
	return next
}

// DefaultClassifier uses LegacyEraPatterns.
var DefaultClassifier SetClassifier = mustScriptClassifier(LegacyEraPatterns...)

func mustScriptClassifier(patterns ...string) *ScriptClassifier {
	c, err := NewScriptClassifier(patterns...)
	if err != nil {
		panic(err)
	}
	return c
}

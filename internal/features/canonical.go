// Package features canonicalizes human-authored column labels and gates requests against the
// ordered feature schema a model was trained on.
package features

import (
	"strings"
	"unicode"
	"unicode/utf8"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonicalize maps a label such as "ROA(C) before interest and depreciation before interest"
// to its snake-case schema key "roa_c_before_interest_and_depreciation_before_interest".
//
// The rules are applied in this order: trim whitespace, replace every rune that is not a word
// character, whitespace or hyphen with an underscore, collapse runs of whitespace and hyphens into
// one underscore, collapse repeated underscores, trim underscores, lowercase. Taken together every
// rune outside [A-Za-z0-9] ends up as a separator, so the result is the alphanumeric runs of the
// label, lowercased and joined by single underscores.
//
// Accented Latin letters are folded to their base letter first. The output is always ASCII and
// may be empty when the label has no letters or digits.
func Canonicalize(label string) string {
	label = strings.TrimFunc(label, unicode.IsSpace)
	label = foldDiacritics(label)

	var b strings.Builder
	b.Grow(len(label))
	pendingSep := false
	for _, r := range label {
		if !isAlnum(r) {
			pendingSep = true
			continue
		}
		if pendingSep && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSep = false
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsCanonical reports whether name is already a non-empty canonical key.
func IsCanonical(name string) bool {
	return name != "" && Canonicalize(name) == name
}

func isAlnum(r rune) bool {
	return ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
}

func foldDiacritics(s string) string {
	if isASCII(s) {
		return s
	}
	// Transformers carry state, so each call builds its own chain.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// Canonicalizer memoizes Canonicalize in a bounded LRU. Clients send the same labels on every
// request, so the cache hit rate is close to one after the first call.
// A Canonicalizer is safe for concurrent use.
type Canonicalizer struct {
	cache *lru.Cache[string, string]
}

// NewCanonicalizer creates a Canonicalizer holding up to size labels.
// A size of zero or less disables caching.
func NewCanonicalizer(size int) (*Canonicalizer, error) {
	if size <= 0 {
		return &Canonicalizer{}, nil
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, err
	}
	return &Canonicalizer{cache: cache}, nil
}

// Canonicalize returns the canonical key for label.
func (c *Canonicalizer) Canonicalize(label string) string {
	if c == nil || c.cache == nil {
		return Canonicalize(label)
	}
	if key, ok := c.cache.Get(label); ok {
		return key
	}
	key := Canonicalize(label)
	c.cache.Add(label, key)
	return key
}

// Len returns the number of cached labels.
func (c *Canonicalizer) Len() int {
	if c == nil || c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

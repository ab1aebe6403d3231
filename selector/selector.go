// Package selector implements the pluggable prefix-match Selector the
// core engine consults after its bloom/filter-store prefilter: a
// UAX#29 word-segmenting, NFKC-casefolding prefix matcher over an
// element's terms, grounded on the reference tokenizer the rest of the
// example pack uses for full-text indexing.
package selector

import (
	"strings"

	"github.com/clipperhouse/uax29/v2/words"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/text/unicode/norm"

	"github.com/nettypeahead/typeahead"
)

const defaultTokenCacheSize = 4096

// Factory builds a Selector bound to a query's terms. It caches the
// tokenization of every element it has ever scored, keyed by element id,
// so repeat queries against a hot element don't re-run word segmentation.
type Factory struct {
	tokenCache *lru.Cache[typeahead.ID, []string]
}

// NewFactory creates a Factory whose per-element tokenization cache holds
// up to cacheSize entries. cacheSize <= 0 falls back to a 4096-entry cache.
func NewFactory(cacheSize int) *Factory {
	if cacheSize <= 0 {
		cacheSize = defaultTokenCacheSize
	}
	cache, _ := lru.New[typeahead.ID, []string](cacheSize)
	return &Factory{tokenCache: cache}
}

// CreateSelector satisfies typeahead.SelectorFactory.
func (f *Factory) CreateSelector(terms []string) typeahead.Selector {
	normalized := make([]string, 0, len(terms))
	for _, t := range terms {
		if n := Normalize(t); n != "" {
			normalized = append(normalized, n)
		}
	}
	return &prefixSelector{factory: f, queryTerms: normalized}
}

// prefixSelector matches an element when every query term is a prefix of
// at least one of the element's tokens. Score is one point per query term
// plus half a point for each query term that equals a token exactly, so an
// exact match ranks higher than a prefix-only one before the engine's
// weight multiplier is applied. The element's own token count does not
// affect the score.
type prefixSelector struct {
	factory    *Factory
	queryTerms []string
}

// QueryTerms exposes the normalized, non-empty terms this selector was
// built from.
func (s *prefixSelector) QueryTerms() []string {
	return s.queryTerms
}

func (s *prefixSelector) Select(elem typeahead.Element, ctx *typeahead.SelectorContext) bool {
	if len(s.queryTerms) == 0 {
		return false
	}

	tokens := s.tokensFor(elem)
	if len(tokens) == 0 {
		return false
	}

	var matched int
	var exact int
	for _, qt := range s.queryTerms {
		hit := false
		for _, tok := range tokens {
			if tok == qt {
				hit = true
				exact++
				break
			}
			if strings.HasPrefix(tok, qt) {
				hit = true
			}
		}
		if !hit {
			return false
		}
		matched++
	}

	ctx.Score = float64(matched) + float64(exact)*0.5
	return true
}

// tokensFor returns elem's normalized tokens, filling the factory's
// per-element cache on a miss.
func (s *prefixSelector) tokensFor(elem typeahead.Element) []string {
	id := elem.ElementID()
	if s.factory.tokenCache != nil {
		if cached, ok := s.factory.tokenCache.Get(id); ok {
			return cached
		}
	}

	var tokens []string
	for _, term := range elem.Terms() {
		tokens = append(tokens, Tokenize(term)...)
	}

	if s.factory.tokenCache != nil {
		s.factory.tokenCache.Add(id, tokens)
	}
	return tokens
}

// Normalize applies NFKC normalization followed by lowercasing. The core
// engine's Bloom Filter lowercases only, so the two agree on terms that
// NFKC leaves unchanged; a term that NFKC rewrites (such as a ligature)
// can be matched here but rejected by the engine's prefilter.
func Normalize(s string) string {
	return strings.ToLower(norm.NFKC.String(s))
}

// Tokenize splits s into normalized words using UAX#29 word segmentation.
func Tokenize(s string) []string {
	normalized := Normalize(s)
	toks := words.FromString(normalized)
	var tokens []string
	for toks.Next() {
		v := strings.TrimSpace(toks.Value())
		if v == "" {
			continue
		}
		tokens = append(tokens, v)
	}
	return tokens
}

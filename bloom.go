package typeahead

import (
	"hash/fnv"
	"strings"
	"unicode"
)

// ---------------------------------------------------------------------------
// Bloom Filter — maps an element's terms to a 32-bit ElemMask, and a
// query's terms to a 32-bit QueryMask, so the query path can reject the
// vast majority of candidates without touching the element store.
//
// Contract: for any element e and term set T, if every t in T is a
// prefix of some *word* of some term of e (terms and words are split the
// same way on both sides — see splitWords), then indexFilter(e) &
// queryFilter(T) == queryFilter(T). False positives are allowed (two
// unrelated terms may hash into the same bits); false negatives are
// forbidden, since indexFilter folds in every prefix of every word of
// every term, not just the whole multi-word term — see termPrefixMask.
//
// Bit positions for a term are derived via the double-hashing technique
// (Kirsch & Mitzenmacker 2006): two independent base hashes h1, h2 are
// computed once from a single FNV-1a pass, and the k bit indices are
// h_i = h1 + i*h2 (mod 32).
// ---------------------------------------------------------------------------

const bloomWidth = 32

// maxPrefixLen bounds how many leading characters of a term get their own
// bit positions at index time. A typeahead query rarely grows past this
// many characters before the selector has already narrowed the result
// set, so prefixes beyond it don't need their own bits. QueryFilter cuts
// each query word to the same length, so a longer query word is matched by
// its maxPrefixLen-rune prefix, which IndexFilter always covers.
const maxPrefixLen = 12

// BloomFilter computes ElemMask/QueryMask 32-bit bitmasks from term sets.
// Read-only after construction — safe for concurrent use without locking.
type BloomFilter struct {
	k      int
	hasher BloomHasher
}

// NewBloomFilter creates a Bloom Filter using k hash functions per term.
// A nil hasher falls back to DefaultBloomHasher. k is clamped to [1,8];
// k=4 is a good balance of soundness vs. mask saturation for a 32-bit word.
func NewBloomFilter(k int, hasher BloomHasher) *BloomFilter {
	if k < 1 {
		k = 1
	}
	if k > 8 {
		k = 8
	}
	if hasher == nil {
		hasher = DefaultBloomHasher{}
	}
	return &BloomFilter{k: k, hasher: hasher}
}

// IndexFilter computes the ElemMask for an element at index time. Every
// term is first split into words at the same granularity a Selector
// tokenizes against (see splitWords), and each word is then expanded into
// its leading prefixes (up to maxPrefixLen runes), so a query typed
// character-by-character against any one word of a multi-word term can
// still be matched by the prefilter before the full word is known.
func (b *BloomFilter) IndexFilter(e Element) uint32 {
	var mask uint32
	for _, t := range e.Terms() {
		for _, w := range splitWords(t) {
			mask |= b.termPrefixMask(w)
		}
	}
	return mask
}

// QueryFilter computes the QueryMask for a query's terms. Each term is
// split into words the same way IndexFilter splits an element's terms, so
// a caller passing a multi-word query string is matched word-by-word
// rather than as one opaque string. A word longer than maxPrefixLen runes
// is hashed by its first maxPrefixLen runes only.
func (b *BloomFilter) QueryFilter(terms []string) uint32 {
	var mask uint32
	for _, t := range terms {
		for _, w := range splitWords(t) {
			if runes := []rune(normalizeTerm(w)); len(runes) > maxPrefixLen {
				w = string(runes[:maxPrefixLen])
			}
			mask |= b.termMask(w)
		}
	}
	return mask
}

// termMask folds a single term into k bits of a 32-bit word.
func (b *BloomFilter) termMask(term string) uint32 {
	h1, h2 := b.hasher.Hash(normalizeTerm(term))
	var mask uint32
	for i := 0; i < b.k; i++ {
		idx := (h1 + uint32(i)*h2) % bloomWidth
		mask |= 1 << idx
	}
	return mask
}

// termPrefixMask ORs together termMask for every leading prefix of term,
// from 1 rune up to maxPrefixLen runes (or the whole term if shorter).
// This is what lets queryFilter(["bo"]) be a subset of indexFilter of an
// element whose term is "bob".
func (b *BloomFilter) termPrefixMask(term string) uint32 {
	runes := []rune(normalizeTerm(term))
	limit := len(runes)
	if limit > maxPrefixLen {
		limit = maxPrefixLen
	}
	var mask uint32
	for i := 1; i <= limit; i++ {
		mask |= b.termMask(string(runes[:i]))
	}
	return mask
}

// normalizeTerm is the canonical casefold applied before hashing a term,
// so that indexing and querying agree on term identity regardless of
// the caller's casing. Selector implementations should normalize terms
// the same way to preserve bloom soundness against their own matching.
func normalizeTerm(term string) string {
	return strings.ToLower(term)
}

// splitWords splits a term into the same units a word-segmenting Selector
// matches against: maximal runs of letters and digits, with any other
// rune (whitespace, punctuation) treated as a separator and discarded.
// This is a deliberately minimal word boundary rule — it doesn't need to
// replicate a Selector's tokenizer exactly, only to agree with it on
// ordinary multi-word terms, since a Selector implementation that splits
// terms any differently is also free to apply its own bloom-side masking.
// Splitting here, rather than hashing the whole multi-word string, is what
// keeps an embedded word's own prefixes present in the element's mask —
// "carol carter" must still bloom-match a query for "carter", not just
// for prefixes of the string starting at rune 0.
func splitWords(term string) []string {
	var words []string
	var cur []rune
	for _, r := range term {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur = append(cur, r)
			continue
		}
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	if len(cur) > 0 {
		words = append(words, string(cur))
	}
	return words
}

// DefaultBloomHasher derives two independent 32-bit hashes from a single
// FNV-1a pass, mirroring the classic double-hashing construction used by
// edge-existence bloom filters: one 64-bit digest split into two halves.
type DefaultBloomHasher struct{}

func (DefaultBloomHasher) Hash(term string) (h1, h2 uint32) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(term))
	sum := h.Sum64()
	h1 = uint32(sum)
	h2 = uint32(sum >> 32)
	if h2 == 0 {
		h2 = 1 // avoid a degenerate all-same-bucket case
	}
	return h1, h2
}

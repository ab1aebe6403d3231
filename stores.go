package typeahead

// ElementStore is the external, id-addressed element collaborator. The
// engine borrows immutable snapshots from it per query; it never owns
// element lifecycle.
type ElementStore interface {
	HasIndex(id ID) bool
	GetElement(id ID) (Element, bool)
	SetElement(id ID, e Element, ts int64) error
	IndexStart() ID
	Capacity() ID
	Persist() error
}

// AdjacencyStore is the external, id-addressed weighted-adjacency
// collaborator. Adjacency records are physically opaque byte sequences
// that a WeightIterator can walk; GetWeightData exposes the same data
// pre-decoded into parallel arrays for the context-snapshot path.
type AdjacencyStore interface {
	HasIndex(uid ID) bool
	GetLength(uid ID) int

	// GetBytes performs a full read of uid's packed adjacency record.
	// If buf is large enough the record is decoded into it and returned
	// as out (aliasing buf), with n the number of bytes written (n >= 0).
	// If buf is too small, GetBytes allocates a fresh buffer and returns
	// it as out, signalling the reallocation with a negative n (|n| is
	// the record length). A record-free id reports (nil, 0).
	GetBytes(uid ID, buf []byte) (out []byte, n int)

	// ReadBytes is a best-effort partial read into buf: it never
	// reallocates and never returns more than len(buf) bytes.
	ReadBytes(uid ID, buf []byte) int

	GetWeightData(uid ID) (targets []ID, weights []int32)
	GetWeight(source, target ID) int32
	SetWeight(source, target ID, strength int32, ts int64) error
	Remove(source, target ID, ts int64) error
	Persist() error
}

// SelectorContext carries the per-candidate score a Selector computes.
// Strictly query-local; never shared across threads.
type SelectorContext struct {
	Score float64
}

// Clear resets the context between candidates.
func (c *SelectorContext) Clear() {
	c.Score = 0
}

// Selector is the pluggable match predicate: implementations range from
// literal prefix matching to compiled n-gram matchers. Select reports
// whether elem matches the terms the selector was created for, and if so
// sets ctx.Score to the match's selector score.
type Selector interface {
	Select(elem Element, ctx *SelectorContext) bool
}

// SelectorFactory builds a Selector bound to a specific query's terms.
type SelectorFactory interface {
	CreateSelector(terms []string) Selector
}

// ConnectionFilter is the admission gate consulted by the Index Executor
// before any connection write reaches the adjacency store.
type ConnectionFilter interface {
	Accept(conn Connection) bool
	AcceptPair(source, target ID, active bool) bool
}

// Collector accumulates hits and owns top-K selection and sorting. The
// engine calls Add after every selector match, then consults CanStop to
// decide whether to terminate the traversal early.
type Collector interface {
	Add(elem Element, score float64, sourceName string, proximity Proximity)
	CanStop() bool
	Hits() []Hit
	Elements() []Element
}

// BloomHasher supplies the two independent hash values the Bloom Filter
// mixes into k bit positions for a term. The specific hash function is a
// collaborator, per spec; DefaultBloomHasher provides an FNV-1a based one.
type BloomHasher interface {
	Hash(term string) (h1, h2 uint32)
}

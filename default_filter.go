package typeahead

// AcceptAllFilter is a ConnectionFilter that admits every connection
// write unconditionally, including self-loops — the engine's default
// when the caller has no admission policy of its own (rate limiting
// spam edges, rejecting self-loops, etc. all belong to a caller-supplied
// ConnectionFilter instead).
type AcceptAllFilter struct{}

func (AcceptAllFilter) Accept(Connection) bool { return true }

func (AcceptAllFilter) AcceptPair(source, target ID, active bool) bool {
	return true
}

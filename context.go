package typeahead

// Context carries per-query state: the source id, a snapshot of the
// source's 1-hop adjacency taken at creation time, a deadline, and the
// collector the query should feed. Strictly query-local — never shared
// across goroutines.
//
// CreateContext snapshots connectionStrengths once; later mutations to
// the adjacency store for Source are not reflected in that snapshot, by
// design — a query should see a consistent view of the network it was
// dispatched against.
type Context struct {
	Source              ID
	HasConnections      bool
	ConnectionTargets   []ID
	ConnectionStrengths []int32
	TimeoutMillis       int64
	Collector           Collector
}

// NoDeadline disables the query executor's wall-clock deadline check.
const NoDeadline int64 = 1<<63 - 1

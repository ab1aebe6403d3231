package typeahead

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Engine is a weighted network typeahead instance over one element/user
// id space. All read operations (Search, SearchNetwork, CreateContext)
// run fully in parallel; writes (IndexElement, IndexConnection, Flush)
// are serialized per store by two independent locks, so a reader is
// never blocked by a writer on the other store.
type Engine struct {
	name string

	elementStore   ElementStore
	adjacencyStore AdjacencyStore
	selectors      SelectorFactory
	bloom          *BloomFilter
	filterStore    *FilterStore
	connFilter     ConnectionFilter

	rng  Range
	pool *BufferPool
	cfg  Config
	log  *slog.Logger

	elementLock    sync.Mutex
	connectionLock sync.Mutex

	metrics *MetricsRecorder
}

// NewEngine wires together an engine instance and builds its initial
// filter store from whatever the element store already holds, mirroring
// the reference implementation's eager filter-store rebuild on startup.
func NewEngine(
	name string,
	elementStore ElementStore,
	adjacencyStore AdjacencyStore,
	selectors SelectorFactory,
	connFilter ConnectionFilter,
	cfg Config,
) (*Engine, error) {
	if elementStore == nil || adjacencyStore == nil || selectors == nil || connFilter == nil {
		return nil, fmt.Errorf("typeahead: elementStore, adjacencyStore, selectors, and connFilter are required")
	}
	cfg.applyDefaults()

	rng := Range{IndexStart: elementStore.IndexStart(), Capacity: elementStore.Capacity()}

	e := &Engine{
		name:           name,
		elementStore:   elementStore,
		adjacencyStore: adjacencyStore,
		selectors:      selectors,
		bloom:          NewBloomFilter(cfg.BloomHashFuncs, DefaultBloomHasher{}),
		connFilter:     connFilter,
		rng:            rng,
		pool:           NewBufferPool(cfg.BytesPoolSize, cfg.ByteArraySize),
		cfg:            cfg,
		log:            cfg.Logger,
	}
	e.filterStore = e.initFilterStore()

	e.log.Info(fmt.Sprintf("%s started", name),
		"element_store", fmt.Sprintf("%T", elementStore),
		"adjacency_store", fmt.Sprintf("%T", adjacencyStore),
		"selector_factory", fmt.Sprintf("%T", selectors),
		"connection_filter", fmt.Sprintf("%T", connFilter),
		"range", rng.String(),
		"bytes_pool_size", cfg.BytesPoolSize,
		"byte_array_size", cfg.ByteArraySize,
	)

	return e, nil
}

// initFilterStore scans the full range and precomputes each already
// indexed element's ElemMask. Elements added later go through IndexElement,
// which keeps the filter store in lockstep.
func (e *Engine) initFilterStore() *FilterStore {
	fs := NewFilterStore(e.rng)
	for id := e.rng.IndexStart; id < e.rng.End(); id++ {
		if elem, ok := e.elementStore.GetElement(id); ok && elem != nil {
			fs.Set(id, e.bloom.IndexFilter(elem))
		}
	}
	return fs
}

// GetName returns the engine's configured name, used as the Hit.SourceName
// and in log lines.
func (e *Engine) GetName() string {
	return e.name
}

// GetRange returns the half-open interval of valid element ids.
func (e *Engine) GetRange() Range {
	return e.rng
}

// SetMetrics attaches a MetricsRecorder that observes every completed
// query's HitStats. Pass nil to detach.
func (e *Engine) SetMetrics(m *MetricsRecorder) {
	e.metrics = m
}

// Accept reports whether conn would be admitted by the engine's connection
// filter, without indexing it. IndexConnection consults the same filter
// internally; this is exposed separately for callers that want to
// pre-check a write (or a rejection) before committing to it.
func (e *Engine) Accept(conn Connection) bool {
	return e.connFilter.Accept(conn)
}

// AcceptPair reports whether the connection filter would admit a
// (source, target, active) pair, independent of strength or timestamp.
func (e *Engine) AcceptPair(source, target ID, active bool) bool {
	return e.connFilter.AcceptPair(source, target, active)
}

// logQuery emits the one-line-per-query log spec.md §6 specifies:
//
//	<name> user=<uid> time=<ms> hits=<browse>|<filter>|<result> terms={t1,t2,…}
func (e *Engine) logQuery(uid ID, stats HitStats, terms []string) {
	if !e.cfg.LoggingEnabled {
		return
	}
	msg := fmt.Sprintf("%s user=%d time=%d hits=%d|%d|%d terms={%s}",
		e.name, uid, stats.TotalTime.Milliseconds(),
		stats.NumBrowseHits, stats.NumFilterHits, stats.NumResultHits,
		strings.Join(terms, ","),
	)
	e.log.Info(msg,
		slog.Int64("user", int64(uid)),
		slog.Int64("time_ms", stats.TotalTime.Milliseconds()),
		slog.Int64("browse_hits", stats.NumBrowseHits),
		slog.Int64("filter_hits", stats.NumFilterHits),
		slog.Int64("result_hits", stats.NumResultHits),
	)
	if e.metrics != nil {
		e.metrics.Observe(stats)
	}
}

// getBytesFromPool borrows a scratch buffer from the pool, allocating a
// fresh one if the pool is currently empty.
func (e *Engine) getBytesFromPool() []byte {
	if b := e.pool.Get(); b != nil {
		return b
	}
	if e.metrics != nil {
		e.metrics.bufferPoolExhausted.Inc()
	}
	return make([]byte, e.pool.Size())
}

// returnBytesToPool returns buf to the pool iff it is still of canonical
// size — a store that had to reallocate to satisfy a large record hands
// back an oversized buffer here, which is correctly dropped.
func (e *Engine) returnBytesToPool(buf []byte) {
	if buf != nil && len(buf) == e.pool.Size() {
		e.pool.Put(buf)
	}
}

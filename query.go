package typeahead

import (
	"time"

	"github.com/RoaringBitmap/roaring"
)

// Search runs an unbounded-K, undeadlined 1-hop/2-hop-free query: it only
// walks uid's direct connections. Use SearchNetwork for the 2-hop walk.
func (e *Engine) Search(uid ID, terms []string) []Element {
	return e.SearchLimit(uid, terms, int(^uint(0)>>1), NoDeadline)
}

// SearchTimeout is Search with a wall-clock deadline in milliseconds.
func (e *Engine) SearchTimeout(uid ID, terms []string, timeoutMillis int64) []Element {
	return e.SearchLimit(uid, terms, int(^uint(0)>>1), timeoutMillis)
}

// SearchLimit is Search bounded to at most maxResults hits.
func (e *Engine) SearchLimit(uid ID, terms []string, maxResults int, timeoutMillis int64) []Element {
	if len(terms) == 0 || maxResults < 1 {
		return nil
	}

	var stats HitStats
	stats.Start()

	collector := newSimpleCollector(maxResults)
	selector := e.selectors.CreateSelector(terms)
	e.searchInternal(uid, terms, collector, selector, &stats, timeoutMillis)

	stats.Stop()
	e.logQuery(uid, stats, terms)

	return collector.Elements()
}

// SearchWithCollector runs a 1-hop query feeding an explicit collector,
// with no deadline.
func (e *Engine) SearchWithCollector(uid ID, terms []string, collector Collector) Collector {
	return e.SearchWithCollectorTimeout(uid, terms, collector, NoDeadline)
}

// SearchWithCollectorTimeout is SearchWithCollector with a deadline.
func (e *Engine) SearchWithCollectorTimeout(uid ID, terms []string, collector Collector, timeoutMillis int64) Collector {
	if len(terms) == 0 {
		return collector
	}

	var stats HitStats
	stats.Start()

	selector := e.selectors.CreateSelector(terms)
	e.searchInternal(uid, terms, collector, selector, &stats, timeoutMillis)

	stats.Stop()
	e.logQuery(uid, stats, terms)

	return collector
}

// CreateContext snapshots uid's 1-hop adjacency for a subsequent
// SearchNetwork call. Later mutations to uid's adjacency are not
// reflected in the returned Context.
func (e *Engine) CreateContext(uid ID) *Context {
	ctx := &Context{Source: uid, TimeoutMillis: NoDeadline}
	if e.adjacencyStore.HasIndex(uid) {
		targets, weights := e.adjacencyStore.GetWeightData(uid)
		ctx.ConnectionTargets = targets
		ctx.ConnectionStrengths = weights
		ctx.HasConnections = true
	}
	return ctx
}

// SearchNetwork performs the two-hop weighted traversal described in
// spec.md §4.H: 1st-degree hits score with the direct edge strength;
// 2nd-degree hits score with WeightAdjuster.Adjust(1st-hop, 2nd-hop).
// If ctx carries no adjacency snapshot, it falls back to a plain 1-hop
// Search using ctx.TimeoutMillis.
func (e *Engine) SearchNetwork(uid ID, terms []string, collector Collector, ctx *Context) Collector {
	if len(terms) == 0 {
		return collector
	}
	if ctx == nil {
		return e.SearchWithCollectorTimeout(uid, terms, collector, NoDeadline)
	}
	if !ctx.HasConnections {
		return e.SearchWithCollectorTimeout(uid, terms, collector, ctx.TimeoutMillis)
	}

	var stats HitStats
	stats.Start()

	selector := e.selectors.CreateSelector(terms)
	e.searchNetworkInternal(ctx.Source, terms, collector, selector, &stats, ctx)

	stats.Stop()
	e.logQuery(uid, stats, terms)

	return collector
}

// ---------------------------------------------------------------------------
// 1-hop traversal
// ---------------------------------------------------------------------------

func (e *Engine) searchInternal(uid ID, terms []string, collector Collector, selector Selector, stats *HitStats, timeoutMillis int64) {
	if !e.adjacencyStore.HasIndex(uid) {
		return
	}

	buf := e.getBytesFromPool()
	iter, buf := e.connectionIterator(uid, buf)
	defer e.returnBytesToPool(buf)
	if iter == nil {
		return
	}

	filter := e.bloom.QueryFilter(terms)
	deadline := deadlineFrom(timeoutMillis)
	e.applyFilter(filter, iter, collector, selector, nil, stats, deadline, DegreeOne)
}

// connectionIterator borrows-or-reallocates uid's packed adjacency bytes
// and wraps them in a WeightIterator, honoring PartialReadEnabled. It
// recovers from a too-small buf by re-fetching through GetBytes, which
// signals a reallocation with a negative length.
func (e *Engine) connectionIterator(uid ID, buf []byte) (*WeightIterator, []byte) {
	if !e.adjacencyStore.HasIndex(uid) {
		return nil, buf
	}

	var data []byte
	var n int
	if e.cfg.PartialReadEnabled {
		n = e.adjacencyStore.ReadBytes(uid, buf)
		data = buf
	} else {
		data, n = e.adjacencyStore.GetBytes(uid, buf)
	}
	if n < 0 {
		n = -n
	}
	if n <= 0 || data == nil {
		return nil, data
	}
	return NewWeightIterator(data, 0, n), data
}

// applyFilter walks a WeightIterator, running every candidate through
// the filter-store prefilter, the element store, and the selector,
// adding matches to collector. uniqIds, if non-nil, deduplicates across
// overlapping paths (used by the two-hop walk); a nil uniqIds skips
// dedup entirely, since a single adjacency record's targets are already
// unique per spec.md §3.
func (e *Engine) applyFilter(
	filter uint32,
	iter *WeightIterator,
	collector Collector,
	selector Selector,
	uniqIds *roaring.Bitmap,
	stats *HitStats,
	deadline deadlineCheck,
	proximity Proximity,
) {
	start := time.Now()
	var numBrowseHits, numFilterHits, numResultHits int64

	var ctx SelectorContext
	for iter.HasNext() {
		numBrowseHits++
		iter.Next()
		elemID := iter.ElementID()
		weight := iter.Weight()

		if e.elementStore.HasIndex(elemID) && (e.filterStore.Get(elemID)&filter) == filter {
			numFilterHits++

			if uniqIds == nil || !uniqIds.Contains(uint32(elemID)) {
				if uniqIds != nil {
					uniqIds.Add(uint32(elemID))
				}
				if elem, ok := e.elementStore.GetElement(elemID); ok && elem != nil {
					if selector.Select(elem, &ctx) {
						numResultHits++
						score := ctx.Score * float64(weight+1)
						collector.Add(elem, score, e.name, proximity)
						if collector.CanStop() {
							break
						}
					}
					ctx.Clear()
				}
			}
		}

		if numBrowseHits%100 == 0 && deadline.exceeded(start) {
			break
		}
	}

	stats.NumBrowseHits += numBrowseHits
	stats.NumFilterHits += numFilterHits
	stats.NumResultHits += numResultHits
}

// applyFilterArrays is applyFilter's counterpart over pre-decoded
// parallel arrays (a Context's adjacency snapshot) rather than a raw
// byte iterator. Used for the two-hop walk's 1st-degree pass.
func (e *Engine) applyFilterArrays(
	filter uint32,
	targets []ID,
	weights []int32,
	collector Collector,
	selector Selector,
	uniqIds *roaring.Bitmap,
	stats *HitStats,
	deadline deadlineCheck,
) {
	start := time.Now()
	var numFilterHits, numResultHits int64
	n := len(targets)
	if len(weights) < n {
		n = len(weights)
	}

	var ctx SelectorContext
	i := 0
	for ; i < n; i++ {
		elemID := targets[i]
		weight := weights[i]

		if e.elementStore.HasIndex(elemID) && (e.filterStore.Get(elemID)&filter) == filter {
			numFilterHits++

			if !uniqIds.Contains(uint32(elemID)) {
				uniqIds.Add(uint32(elemID))
				if elem, ok := e.elementStore.GetElement(elemID); ok && elem != nil {
					if selector.Select(elem, &ctx) {
						numResultHits++
						score := ctx.Score * float64(weight+1)
						collector.Add(elem, score, e.name, DegreeOne)
						if collector.CanStop() {
							i++
							break
						}
					}
					ctx.Clear()
				}
			}
		}

		if i%100 == 0 && deadline.exceeded(start) {
			break
		}
	}

	stats.NumBrowseHits += int64(i)
	stats.NumFilterHits += numFilterHits
	stats.NumResultHits += numResultHits
}

// ---------------------------------------------------------------------------
// 2-hop traversal
// ---------------------------------------------------------------------------

func (e *Engine) searchNetworkInternal(uid ID, terms []string, collector Collector, selector Selector, stats *HitStats, ctx *Context) {
	start := time.Now()
	deadline := deadlineFrom(ctx.TimeoutMillis)

	uniqIds := roaring.New()
	uniqIds.Add(uint32(ctx.Source)) // exclude the network center

	queryFilter := e.bloom.QueryFilter(terms)

	// 1st-degree pass over the context's pre-decoded adjacency snapshot.
	e.applyFilterArrays(queryFilter, ctx.ConnectionTargets, ctx.ConnectionStrengths, collector, selector, uniqIds, stats, deadline)
	if collector.CanStop() {
		return
	}
	if deadline.exceeded(start) {
		return
	}

	buf := e.getBytesFromPool()
	defer e.returnBytesToPool(buf)

	for i, connID := range ctx.ConnectionTargets {
		iter, newBuf := e.connectionIterator(connID, buf)
		buf = newBuf
		if iter == nil {
			continue
		}

		inherited := ctx.ConnectionStrengths[i]
		e.applyFilter2(queryFilter, inherited, iter, collector, selector, uniqIds, stats, deadline, start)
		if collector.CanStop() {
			break
		}
		if deadline.exceeded(start) {
			break
		}
	}
}

// applyFilter2 applies the bloom/filter-store/selector gauntlet to a
// second-degree neighbor's adjacency, scoring with the WeightAdjuster's
// propagated strength and tagging DegreeTwo.
func (e *Engine) applyFilter2(
	filter uint32,
	inherited int32,
	iter *WeightIterator,
	collector Collector,
	selector Selector,
	uniqIds *roaring.Bitmap,
	stats *HitStats,
	deadline deadlineCheck,
	queryStart time.Time,
) {
	var numBrowseHits, numFilterHits, numResultHits int64
	var ctx SelectorContext

	for iter.HasNext() {
		numBrowseHits++
		iter.Next()
		elemID := iter.ElementID()
		weight := iter.Weight()

		if e.elementStore.HasIndex(elemID) && (e.filterStore.Get(elemID)&filter) == filter {
			numFilterHits++

			if !uniqIds.Contains(uint32(elemID)) {
				uniqIds.Add(uint32(elemID))
				if elem, ok := e.elementStore.GetElement(elemID); ok && elem != nil {
					if selector.Select(elem, &ctx) {
						numResultHits++
						propagated := e.cfg.WeightAdjuster.Adjust(inherited, weight)
						score := ctx.Score * float64(propagated+1)
						collector.Add(elem, score, e.name, DegreeTwo)
						if collector.CanStop() {
							break
						}
					}
					ctx.Clear()
				}
			}
		}

		if numBrowseHits%100 == 0 && deadline.exceeded(queryStart) {
			break
		}
	}

	stats.NumBrowseHits += numBrowseHits
	stats.NumFilterHits += numFilterHits
	stats.NumResultHits += numResultHits
}

// ---------------------------------------------------------------------------
// Deadline helper
// ---------------------------------------------------------------------------

// deadlineCheck wraps a timeout so the 100-hit-granularity checks in the
// loops above share one implementation. A NoDeadline timeout never trips.
type deadlineCheck struct {
	timeoutMillis int64
}

func deadlineFrom(timeoutMillis int64) deadlineCheck {
	return deadlineCheck{timeoutMillis: timeoutMillis}
}

func (d deadlineCheck) exceeded(start time.Time) bool {
	if d.timeoutMillis == NoDeadline {
		return false
	}
	return time.Since(start).Milliseconds() > d.timeoutMillis
}

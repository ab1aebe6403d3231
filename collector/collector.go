// Package collector implements a bounded top-K typeahead.Collector
// using a min-heap over scores, so an engine configured with a small K
// can discard low-scoring hits in O(log K) instead of accumulating and
// sorting every candidate the query browses.
package collector

import (
	"container/heap"
	"sort"

	"github.com/nettypeahead/typeahead"
)

// TopK collects at most K hits, keeping the K highest-scoring ones seen
// so far. CanStop reports true once the heap is full. TopK does not
// assume score monotonicity across the traversal order, so CanStop is a
// capacity signal: an executor that stops on it never sees later hits,
// even ones that would have outscored what is already in hand.
type TopK struct {
	k  int
	pq hitHeap
}

// NewTopK creates a TopK collector bounded to k hits. k <= 0 is treated
// as 1.
func NewTopK(k int) *TopK {
	if k <= 0 {
		k = 1
	}
	return &TopK{k: k}
}

func (t *TopK) Add(elem typeahead.Element, score float64, sourceName string, proximity typeahead.Proximity) {
	hit := typeahead.Hit{Element: elem, Score: score, SourceName: sourceName, Proximity: proximity}

	if len(t.pq) < t.k {
		heap.Push(&t.pq, hit)
		return
	}
	if len(t.pq) > 0 && score > t.pq[0].Score {
		t.pq[0] = hit
		heap.Fix(&t.pq, 0)
	}
}

// CanStop reports whether the collector already holds k hits.
func (t *TopK) CanStop() bool {
	return len(t.pq) >= t.k
}

// Hits returns the collected hits sorted by descending score.
func (t *TopK) Hits() []typeahead.Hit {
	out := make([]typeahead.Hit, len(t.pq))
	copy(out, t.pq)
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Elements returns Hits' elements in the same order.
func (t *TopK) Elements() []typeahead.Element {
	hits := t.Hits()
	out := make([]typeahead.Element, len(hits))
	for i, h := range hits {
		out[i] = h.Element
	}
	return out
}

// hitHeap is a container/heap min-heap ordered by ascending score, so
// the root is always the current lowest-scoring kept hit — the first
// candidate to evict when a higher-scoring hit arrives.
type hitHeap []typeahead.Hit

func (h hitHeap) Len() int            { return len(h) }
func (h hitHeap) Less(i, j int) bool  { return h[i].Score < h[j].Score }
func (h hitHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *hitHeap) Push(x interface{}) { *h = append(*h, x.(typeahead.Hit)) }
func (h *hitHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

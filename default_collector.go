package typeahead

import "sort"

// simpleCollector is the unbounded-selector Collector behind Search and
// SearchLimit: it keeps every hit it sees, in whatever order Add was
// called, and reports CanStop once it holds maxResults of them. Elements
// and Hits both sort by descending score and keep at most maxResults.
// Because the query stops browsing as soon as CanStop is true, the results
// are the first maxResults matches in traversal order, not necessarily the
// highest-scoring matches overall.
type simpleCollector struct {
	maxResults int
	hits       []Hit
}

func newSimpleCollector(maxResults int) *simpleCollector {
	return &simpleCollector{maxResults: maxResults}
}

func (c *simpleCollector) Add(elem Element, score float64, sourceName string, proximity Proximity) {
	c.hits = append(c.hits, Hit{Element: elem, Score: score, SourceName: sourceName, Proximity: proximity})
}

func (c *simpleCollector) CanStop() bool {
	return len(c.hits) >= c.maxResults
}

func (c *simpleCollector) Hits() []Hit {
	sorted := make([]Hit, len(c.hits))
	copy(sorted, c.hits)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if len(sorted) > c.maxResults {
		sorted = sorted[:c.maxResults]
	}
	return sorted
}

func (c *simpleCollector) Elements() []Element {
	hits := c.Hits()
	out := make([]Element, len(hits))
	for i, h := range hits {
		out[i] = h.Element
	}
	return out
}

package typeahead

import "testing"

func TestIndexElementNilRejected(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if ok, err := e.IndexElement(nil); ok || err == nil {
		t.Errorf("expected (false, error) for nil element, got (%v, %v)", ok, err)
	}
}

func TestIndexElementWritesFilterAndElementStore(t *testing.T) {
	e, es, _ := newTestEngine(t)
	elem := &memElement{id: 5, terms: []string{"zig", "zag"}}

	ok, err := e.IndexElement(elem)
	if !ok || err != nil {
		t.Fatalf("IndexElement: ok=%v err=%v", ok, err)
	}

	if got := e.filterStore.Get(5); got != e.bloom.IndexFilter(elem) {
		t.Errorf("filter store not populated to match the indexed element's mask")
	}
	got, ok := es.GetElement(5)
	if !ok || got.ElementID() != 5 {
		t.Errorf("element store missing indexed element")
	}
}

func TestIndexElementReindexUpdatesMask(t *testing.T) {
	e, es, _ := newTestEngine(t)
	first := &memElement{id: 7, terms: []string{"alpha"}}
	if _, err := e.IndexElement(first); err != nil {
		t.Fatal(err)
	}

	second := &memElement{id: 7, terms: []string{"beta"}}
	if _, err := e.IndexElement(second); err != nil {
		t.Fatal(err)
	}

	if got := e.filterStore.Get(7); got != e.bloom.IndexFilter(second) {
		t.Errorf("expected filter store mask to reflect the re-indexed terms")
	}
	got, _ := es.GetElement(7)
	if len(got.Terms()) != 1 || got.Terms()[0] != "beta" {
		t.Errorf("expected element store to hold the re-indexed element, got %v", got.Terms())
	}
}

// rejectNegativeStrengthFilter rejects via Accept alone, which is the only
// gate IndexConnection consults; AcceptPair is exposed on Engine separately
// and is not part of IndexConnection's admission check.
type rejectNegativeStrengthFilter struct{}

func (rejectNegativeStrengthFilter) Accept(conn Connection) bool { return conn.Strength >= 0 }
func (rejectNegativeStrengthFilter) AcceptPair(source, target ID, active bool) bool {
	return source != target
}

func TestIndexConnectionFilterRejection(t *testing.T) {
	es := newMemElementStore(1, 1000)
	as := newMemAdjacencyStore()
	e, err := NewEngine("test", es, as, prefixSelectorFactory{}, rejectNegativeStrengthFilter{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	ok, err := e.IndexConnection(Connection{Source: 1, Target: 2, Strength: -1, Active: true})
	if ok || err != nil {
		t.Errorf("expected negative-strength connection to be silently rejected, got (%v, %v)", ok, err)
	}
	if as.HasIndex(1) {
		t.Error("expected rejected connection to leave no trace in the adjacency store")
	}
}

func TestIndexConnectionIgnoresAcceptPair(t *testing.T) {
	es := newMemElementStore(1, 1000)
	as := newMemAdjacencyStore()
	e, err := NewEngine("test", es, as, prefixSelectorFactory{}, rejectNegativeStrengthFilter{}, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if e.AcceptPair(1, 1, true) {
		t.Fatal("test filter's AcceptPair should reject a self-loop pair")
	}
	ok, err := e.IndexConnection(Connection{Source: 1, Target: 1, Strength: 1, Active: true})
	if !ok || err != nil {
		t.Errorf("IndexConnection must not consult AcceptPair, got (%v, %v)", ok, err)
	}
	if got := as.GetWeight(1, 1); got != 1 {
		t.Errorf("expected self-loop edge indexed despite AcceptPair rejecting it, got %d", got)
	}
}

func TestEngineAcceptAndAcceptPairDelegateToFilter(t *testing.T) {
	e, _, _ := newTestEngine(t)
	if !e.Accept(Connection{Source: 1, Target: 2, Strength: 1, Active: true}) {
		t.Error("expected Accept to delegate to the engine's AcceptAllFilter")
	}
	if !e.AcceptPair(1, 2, true) {
		t.Error("expected AcceptPair to delegate to the engine's AcceptAllFilter")
	}
}

func TestAcceptAllFilterAdmitsSelfLoops(t *testing.T) {
	f := AcceptAllFilter{}
	if !f.Accept(Connection{Source: 1, Target: 1, Strength: 1, Active: true}) {
		t.Error("expected Accept to admit a self-loop connection")
	}
	if !f.AcceptPair(1, 1, true) {
		t.Error("expected AcceptPair to admit a self-loop pair")
	}
}

func TestIndexConnectionAcceptAllFilterIndexesSelfLoop(t *testing.T) {
	e, _, as := newTestEngine(t)

	ok, err := e.IndexConnection(Connection{Source: 3, Target: 3, Strength: 1, Timestamp: 1, Active: true})
	if !ok || err != nil {
		t.Fatalf("expected AcceptAllFilter to admit a self-loop, got (%v, %v)", ok, err)
	}
	if got := as.GetWeight(3, 3); got != 1 {
		t.Errorf("expected self-loop edge to be indexed with strength 1, got %d", got)
	}
}

func TestIndexConnectionExplicitStrengthOverwritesPrevious(t *testing.T) {
	e, _, as := newTestEngine(t)

	if _, err := e.IndexConnection(Connection{Source: 1, Target: 2, Strength: 5, Timestamp: 10, Active: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.IndexConnection(Connection{Source: 1, Target: 2, Strength: 9, Timestamp: 20, Active: true}); err != nil {
		t.Fatal(err)
	}

	if got := as.GetWeight(1, 2); got != 9 {
		t.Errorf("expected latest explicit strength 9, got %d", got)
	}
}

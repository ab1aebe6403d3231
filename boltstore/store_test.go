package boltstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/nettypeahead/typeahead"
)

func openTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), 1, 1000, opts)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenCreatesEmptyStore(t *testing.T) {
	s := openTestStore(t, Options{})
	if s.IndexStart() != 1 || s.Capacity() != 1000 {
		t.Errorf("unexpected range: start=%d capacity=%d", s.IndexStart(), s.Capacity())
	}
	if s.ElementCount() != 0 || s.AdjacencyCount() != 0 {
		t.Errorf("expected empty store, got elements=%d adjacency=%d", s.ElementCount(), s.AdjacencyCount())
	}
}

func TestOpenRejectsRangeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s, err := Open(path, 1, 1000, Options{})
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := Open(path, 1, 500, Options{}); err == nil {
		t.Error("expected range mismatch error on reopen with different capacity")
	}
}

func TestOpenReopenPersistsRange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")

	s1, err := Open(path, 1, 1000, Options{})
	if err != nil {
		t.Fatal(err)
	}
	s1.Close()

	s2, err := Open(path, 1, 1000, Options{})
	if err != nil {
		t.Fatalf("reopen with matching range should succeed: %v", err)
	}
	s2.Close()
}

type elementStub struct {
	id    typeahead.ID
	ts    int64
	terms []string
	score float32
}

func (e *elementStub) ElementID() typeahead.ID { return e.id }
func (e *elementStub) Timestamp() int64        { return e.ts }
func (e *elementStub) Terms() []string         { return e.terms }
func (e *elementStub) Score() float32          { return e.score }

func TestSetGetElementRoundTrip(t *testing.T) {
	s := openTestStore(t, Options{})
	elem := &elementStub{id: 42, ts: 100, terms: []string{"alice", "smith"}, score: 1.5}

	if err := s.SetElement(42, elem, elem.ts); err != nil {
		t.Fatalf("SetElement: %v", err)
	}

	got, ok := s.GetElement(42)
	if !ok {
		t.Fatal("expected element to be found")
	}
	if got.ElementID() != 42 || got.Timestamp() != 100 || got.Score() != 1.5 {
		t.Errorf("unexpected round trip: %+v", got)
	}
	if len(got.Terms()) != 2 || got.Terms()[0] != "alice" {
		t.Errorf("unexpected terms: %v", got.Terms())
	}
	if s.ElementCount() != 1 {
		t.Errorf("expected element count 1, got %d", s.ElementCount())
	}
}

func TestSetElementTwiceDoesNotDoubleCount(t *testing.T) {
	s := openTestStore(t, Options{})
	elem := &elementStub{id: 1, terms: []string{"a"}}

	if err := s.SetElement(1, elem, 1); err != nil {
		t.Fatal(err)
	}
	if err := s.SetElement(1, elem, 2); err != nil {
		t.Fatal(err)
	}
	if s.ElementCount() != 1 {
		t.Errorf("expected count to stay 1 on re-index, got %d", s.ElementCount())
	}
}

func TestGetElementMissingReturnsFalse(t *testing.T) {
	s := openTestStore(t, Options{})
	if _, ok := s.GetElement(999); ok {
		t.Error("expected missing element lookup to report false")
	}
}

func TestHasIndexElement(t *testing.T) {
	s := openTestStore(t, Options{})
	if s.HasIndex(1) {
		t.Error("expected unset id to report false")
	}
	if err := s.SetElement(1, &elementStub{id: 1}, 1); err != nil {
		t.Fatal(err)
	}
	if !s.HasIndex(1) {
		t.Error("expected set id to report true")
	}
}

func TestSetWeightGetWeightRoundTrip(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 10); err != nil {
		t.Fatal(err)
	}
	if got := s.GetWeight(1, 2); got != 5 {
		t.Errorf("expected weight 5, got %d", got)
	}
	if s.AdjacencyCount() != 1 {
		t.Errorf("expected adjacency count 1, got %d", s.AdjacencyCount())
	}
}

func TestSetWeightUpdateInPlaceDoesNotDoubleCount(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.SetWeight(1, 3, 7, 11); err != nil {
		t.Fatal(err)
	}
	if s.AdjacencyCount() != 1 {
		t.Errorf("expected adjacency count to stay 1 (same source), got %d", s.AdjacencyCount())
	}

	targets, weights := s.GetWeightData(1)
	if len(targets) != 2 {
		t.Fatalf("expected 2 edges for source 1, got %d", len(targets))
	}
	_ = weights
}

func TestSetWeightLastWriterWinsByTimestamp(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 100); err != nil {
		t.Fatal(err)
	}
	// Stale write (older timestamp) must be dropped.
	if err := s.SetWeight(1, 2, 99, 50); err != nil {
		t.Fatal(err)
	}
	if got := s.GetWeight(1, 2); got != 5 {
		t.Errorf("expected stale write to be dropped, got weight %d", got)
	}

	// Fresh write (newer timestamp) must apply.
	if err := s.SetWeight(1, 2, 20, 200); err != nil {
		t.Fatal(err)
	}
	if got := s.GetWeight(1, 2); got != 20 {
		t.Errorf("expected fresh write to apply, got weight %d", got)
	}
}

func TestRemoveDropsEdgeAndDecrementsCount(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(1, 2, 20); err != nil {
		t.Fatal(err)
	}
	if s.HasIndex(1) {
		t.Error("expected source with no remaining edges to be removed entirely")
	}
	if s.AdjacencyCount() != 0 {
		t.Errorf("expected adjacency count 0 after removal, got %d", s.AdjacencyCount())
	}
}

func TestRemoveStaleTimestampIsNoop(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 100); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(1, 2, 50); err != nil {
		t.Fatal(err)
	}
	if got := s.GetWeight(1, 2); got != 5 {
		t.Errorf("expected stale removal to be ignored, got weight %d", got)
	}
}

func TestRemovePartialKeepsOtherEdges(t *testing.T) {
	s := openTestStore(t, Options{})

	if err := s.SetWeight(1, 2, 5, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.SetWeight(1, 3, 7, 11); err != nil {
		t.Fatal(err)
	}
	if err := s.Remove(1, 2, 20); err != nil {
		t.Fatal(err)
	}

	targets, _ := s.GetWeightData(1)
	if len(targets) != 1 || targets[0] != 3 {
		t.Errorf("expected only target 3 to remain, got %v", targets)
	}
	if s.AdjacencyCount() != 1 {
		t.Errorf("expected adjacency count to stay 1, got %d", s.AdjacencyCount())
	}
}

func TestGetBytesSmallBufferReallocates(t *testing.T) {
	s := openTestStore(t, Options{})
	if err := s.SetWeight(1, 2, 5, 10); err != nil {
		t.Fatal(err)
	}
	if err := s.SetWeight(1, 3, 7, 10); err != nil {
		t.Fatal(err)
	}

	tiny := make([]byte, 1)
	out, n := s.GetBytes(1, tiny)
	if n >= 0 {
		t.Fatalf("expected negative length signalling reallocation, got %d", n)
	}
	if len(out) != -n {
		t.Errorf("expected returned buffer length to match abs(n)")
	}

	fit := make([]byte, 64)
	out2, n2 := s.GetBytes(1, fit)
	if n2 <= 0 {
		t.Fatalf("expected non-negative length when buffer fits, got %d", n2)
	}
	if &out2[0] != &fit[0] {
		t.Error("expected the provided buffer to be reused when it fits")
	}
}

func TestGetBytesMissingReturnsZero(t *testing.T) {
	s := openTestStore(t, Options{})
	out, n := s.GetBytes(5, make([]byte, 16))
	if out != nil || n != 0 {
		t.Errorf("expected (nil, 0) for missing source, got (%v, %d)", out, n)
	}
}

func TestBackgroundSyncStopsOnClose(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "test.db"), 1, 1000, Options{NoSync: true, SyncInterval: 5 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(20 * time.Millisecond)
	if err := s.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

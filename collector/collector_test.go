package collector

import (
	"testing"

	"github.com/nettypeahead/typeahead"
)

type stubElement struct {
	id typeahead.ID
}

func (e *stubElement) ElementID() typeahead.ID { return e.id }
func (e *stubElement) Timestamp() int64        { return 0 }
func (e *stubElement) Terms() []string         { return nil }
func (e *stubElement) Score() float32          { return 0 }

func TestNewTopKClampsNonPositiveK(t *testing.T) {
	c := NewTopK(0)
	c.Add(&stubElement{id: 1}, 1, "", typeahead.DegreeOne)
	if !c.CanStop() {
		t.Error("expected k<=0 to be clamped to 1")
	}
}

func TestTopKAddUnderCapacity(t *testing.T) {
	c := NewTopK(3)
	c.Add(&stubElement{id: 1}, 1, "", typeahead.DegreeOne)
	if c.CanStop() {
		t.Error("expected CanStop to be false before reaching capacity")
	}
}

func TestTopKKeepsHighestScores(t *testing.T) {
	c := NewTopK(2)
	c.Add(&stubElement{id: 1}, 1, "", typeahead.DegreeOne)
	c.Add(&stubElement{id: 2}, 5, "", typeahead.DegreeOne)
	c.Add(&stubElement{id: 3}, 3, "", typeahead.DegreeOne)

	hits := c.Hits()
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Element.ElementID() != 2 || hits[1].Element.ElementID() != 3 {
		t.Errorf("expected [2,3] (highest scores), got [%d,%d]", hits[0].Element.ElementID(), hits[1].Element.ElementID())
	}
}

func TestTopKDiscardsLowerScoreWhenFull(t *testing.T) {
	c := NewTopK(1)
	c.Add(&stubElement{id: 1}, 5, "", typeahead.DegreeOne)
	c.Add(&stubElement{id: 2}, 1, "", typeahead.DegreeOne) // lower score, should be dropped

	hits := c.Hits()
	if len(hits) != 1 || hits[0].Element.ElementID() != 1 {
		t.Errorf("expected only element 1 to survive, got %v", hits)
	}
}

func TestTopKHitsSortedDescending(t *testing.T) {
	c := NewTopK(5)
	scores := []float64{3, 1, 4, 1, 5}
	for i, s := range scores {
		c.Add(&stubElement{id: typeahead.ID(i)}, s, "", typeahead.DegreeOne)
	}

	hits := c.Hits()
	for i := 1; i < len(hits); i++ {
		if hits[i-1].Score < hits[i].Score {
			t.Errorf("expected descending order, got %v at index %d before %v at %d", hits[i-1].Score, i-1, hits[i].Score, i)
		}
	}
}

func TestTopKElementsMatchesHitsOrder(t *testing.T) {
	c := NewTopK(3)
	c.Add(&stubElement{id: 1}, 2, "", typeahead.DegreeOne)
	c.Add(&stubElement{id: 2}, 9, "", typeahead.DegreeTwo)

	hits := c.Hits()
	elems := c.Elements()
	if len(elems) != len(hits) {
		t.Fatalf("expected Elements length to match Hits length")
	}
	for i := range hits {
		if elems[i] != hits[i].Element {
			t.Errorf("index %d: Elements()[%d] != Hits()[%d].Element", i, i, i)
		}
	}
}

func TestTopKPreservesSourceNameAndProximity(t *testing.T) {
	c := NewTopK(2)
	c.Add(&stubElement{id: 1}, 1, "friend-of-bob", typeahead.DegreeTwo)

	hits := c.Hits()
	if len(hits) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(hits))
	}
	if hits[0].SourceName != "friend-of-bob" {
		t.Errorf("expected SourceName to survive, got %q", hits[0].SourceName)
	}
	if hits[0].Proximity != typeahead.DegreeTwo {
		t.Errorf("expected Proximity DegreeTwo, got %v", hits[0].Proximity)
	}
}

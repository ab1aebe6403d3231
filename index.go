package typeahead

import (
	"fmt"
)

// IndexElement admits or updates an element in the engine. It rejects ids
// outside the engine's Range with ErrOutOfRange. The filter store is
// written before the element store, so a reader that observes the new
// ElemMask but misses the element briefly under-matches rather than
// over-matches — the selector re-validates every candidate it fetches, so
// this ordering never produces a false hit.
//
// Returns true, nil on success, including an identical re-index. Every
// rejection or failure returns false with a non-nil error: a nil element,
// an out-of-range id, or an element store write error.
func (e *Engine) IndexElement(elem Element) (bool, error) {
	if elem == nil {
		return false, fmt.Errorf("typeahead: nil element")
	}
	id := elem.ElementID()
	if !e.rng.Contains(id) {
		return false, ErrOutOfRange
	}

	mask := e.bloom.IndexFilter(elem)

	e.elementLock.Lock()
	defer e.elementLock.Unlock()

	e.filterStore.Set(id, mask)
	if err := e.elementStore.SetElement(id, elem, elem.Timestamp()); err != nil {
		return false, fmt.Errorf("typeahead: index element %d: %w", id, err)
	}

	if e.log != nil {
		e.log.Debug("element indexed", "id", int64(id), "terms", elem.Terms())
	}
	return true, nil
}

// IndexConnection admits or updates a directed edge. conn.Active == false
// removes the edge. A zero Strength means "inherit the currently stored
// strength for (Source, Target), or 0 if there is none" — the read-modify-write
// is performed under the connection lock, so it is atomic with respect to
// other IndexConnection calls but not with respect to the adjacency
// store's own internal consistency guarantees, mirroring the reference
// implementation this engine's write path is modeled on.
//
// Unlike IndexElement, a connection write is not range-checked against the
// engine's Range — only the connection filter can reject it. AcceptPair is
// exposed separately on Engine for callers that want to pre-check a pair
// without indexing; IndexConnection itself only consults Accept.
//
// Returns false, nil if the connection filter rejected the write.
func (e *Engine) IndexConnection(conn Connection) (bool, error) {
	if !e.connFilter.Accept(conn) {
		return false, nil
	}

	e.connectionLock.Lock()
	defer e.connectionLock.Unlock()

	if !conn.Active {
		if err := e.adjacencyStore.Remove(conn.Source, conn.Target, conn.Timestamp); err != nil {
			return false, fmt.Errorf("typeahead: remove connection %d->%d: %w", conn.Source, conn.Target, err)
		}
		if e.log != nil {
			e.log.Debug("connection removed", "source", int64(conn.Source), "target", int64(conn.Target))
		}
		return true, nil
	}

	strength := conn.Strength
	if strength <= 0 {
		strength = e.adjacencyStore.GetWeight(conn.Source, conn.Target)
	}

	if err := e.adjacencyStore.SetWeight(conn.Source, conn.Target, strength, conn.Timestamp); err != nil {
		return false, fmt.Errorf("typeahead: set connection %d->%d: %w", conn.Source, conn.Target, err)
	}

	if e.log != nil {
		e.log.Debug("connection indexed", "source", int64(conn.Source), "target", int64(conn.Target), "strength", strength)
	}
	return true, nil
}

// Flush persists both the element store and the adjacency store. Neither
// call holds the other's lock, so a concurrent writer may observe a
// partially flushed pair of stores if Flush races with IndexElement or
// IndexConnection; callers that need a consistent on-disk snapshot must
// coordinate quiescence externally.
func (e *Engine) Flush() error {
	e.elementLock.Lock()
	elemErr := e.elementStore.Persist()
	e.elementLock.Unlock()

	e.connectionLock.Lock()
	adjErr := e.adjacencyStore.Persist()
	e.connectionLock.Unlock()

	if elemErr != nil {
		return fmt.Errorf("typeahead: flush element store: %w", elemErr)
	}
	if adjErr != nil {
		return fmt.Errorf("typeahead: flush adjacency store: %w", adjErr)
	}
	return nil
}

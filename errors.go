package typeahead

import "fmt"

// ErrOutOfRange is returned by IndexElement when an element's id falls
// outside the engine's Range.
var ErrOutOfRange = fmt.Errorf("typeahead: element id outside range")

// IteratorError wraps a failure encountered while decoding adjacency
// bytes for uid. The engine's own query path does not produce or log it:
// WeightIterator cannot fail, since it clamps its input to whole records.
type IteratorError struct {
	UID ID
	Err error
}

func (e *IteratorError) Error() string {
	return fmt.Sprintf("typeahead: adjacency decode failed for uid=%d: %v", e.UID, e.Err)
}

func (e *IteratorError) Unwrap() error {
	return e.Err
}

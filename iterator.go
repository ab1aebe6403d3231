package typeahead

import "encoding/binary"

// weightRecordSize is the packed size, in bytes, of one (elementId,
// weight) pair: two big-endian int32s.
const weightRecordSize = 8

// WeightIterator is a lazy, forward-only decoder over a packed byte
// buffer yielding (elementId, weight) pairs. It is not restartable. The
// buffer is borrowed for the iterator's lifetime; Array lets the caller
// recover a possibly-reallocated buffer to return to the BufferPool.
type WeightIterator struct {
	buf    []byte
	pos    int
	end    int
	elemID ID
	weight int32
}

// NewWeightIterator constructs an iterator over buf[offset : offset+length].
// length is clamped down to a whole number of records.
func NewWeightIterator(buf []byte, offset, length int) *WeightIterator {
	end := offset + length
	if end > len(buf) {
		end = len(buf)
	}
	usable := (end - offset) / weightRecordSize * weightRecordSize
	return &WeightIterator{
		buf: buf,
		pos: offset,
		end: offset + usable,
	}
}

// HasNext reports whether another pair remains.
func (it *WeightIterator) HasNext() bool {
	return it.pos+weightRecordSize <= it.end
}

// Next decodes the next pair, advancing the iterator. Callers must check
// HasNext first; calling Next past the end leaves the iterator's last
// decoded values unchanged.
func (it *WeightIterator) Next() {
	if !it.HasNext() {
		return
	}
	it.elemID = ID(binary.BigEndian.Uint32(it.buf[it.pos : it.pos+4]))
	it.weight = int32(binary.BigEndian.Uint32(it.buf[it.pos+4 : it.pos+8]))
	it.pos += weightRecordSize
}

// ElementID returns the elementId decoded by the most recent Next call.
func (it *WeightIterator) ElementID() ID {
	return it.elemID
}

// Weight returns the weight decoded by the most recent Next call.
func (it *WeightIterator) Weight() int32 {
	return it.weight
}

// Array returns the underlying buffer, so a caller whose store had to
// reallocate on read can still return the (new) buffer to the pool if it
// happens to be of canonical size.
func (it *WeightIterator) Array() []byte {
	return it.buf
}

// EncodeWeightPairs packs (target, weight) pairs into the wire format a
// WeightIterator can decode. Exposed for adjacency store implementations
// and tests; not used by the query path itself.
func EncodeWeightPairs(targets []ID, weights []int32) []byte {
	n := len(targets)
	if len(weights) < n {
		n = len(weights)
	}
	buf := make([]byte, n*weightRecordSize)
	for i := 0; i < n; i++ {
		off := i * weightRecordSize
		binary.BigEndian.PutUint32(buf[off:off+4], uint32(targets[i]))
		binary.BigEndian.PutUint32(buf[off+4:off+8], uint32(weights[i]))
	}
	return buf
}

// DecodeWeightPairs decodes a full packed buffer into parallel arrays,
// the same data GetWeightData exposes as pre-decoded slices.
func DecodeWeightPairs(buf []byte) (targets []ID, weights []int32) {
	n := len(buf) / weightRecordSize
	targets = make([]ID, n)
	weights = make([]int32, n)
	for i := 0; i < n; i++ {
		off := i * weightRecordSize
		targets[i] = ID(binary.BigEndian.Uint32(buf[off : off+4]))
		weights[i] = int32(binary.BigEndian.Uint32(buf[off+4 : off+8]))
	}
	return targets, weights
}

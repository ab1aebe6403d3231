package boltstore

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/nettypeahead/typeahead"
)

var crcTable = crc32.MakeTable(crc32.Castagnoli)

func encodeUint64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, v)
	return buf
}

func decodeUint64(b []byte) uint64 {
	return binary.BigEndian.Uint64(b)
}

func encodeID(id typeahead.ID) []byte {
	return encodeUint64(uint64(uint32(id)))
}

// record is the on-disk, msgpack-serializable shape of a typeahead.Element.
type record struct {
	ID    int32
	Ts    int64
	Terms []string
	Score float32
}

// Record adapts the msgpack-decoded record into typeahead.Element. It is
// exported so callers that read elements back out of a Store receive a
// concrete, inspectable type rather than an opaque interface value.
type Record struct {
	id    typeahead.ID
	ts    int64
	terms []string
	score float32
}

func (r *Record) ElementID() typeahead.ID { return r.id }
func (r *Record) Timestamp() int64        { return r.ts }
func (r *Record) Terms() []string         { return r.terms }
func (r *Record) Score() float32          { return r.score }

// encodeElement serializes elem to MessagePack, wrapped with a CRC32
// checksum: checksum(4) + msgpack_data, the same framing the teacher's
// encodeProps uses for node properties.
func encodeElement(elem typeahead.Element) ([]byte, error) {
	r := record{
		ID:    int32(elem.ElementID()),
		Ts:    elem.Timestamp(),
		Terms: elem.Terms(),
		Score: elem.Score(),
	}
	raw, err := msgpack.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("boltstore: marshal element %d: %w", r.ID, err)
	}
	buf := make([]byte, 4+len(raw))
	checksum := crc32.Checksum(raw, crcTable)
	binary.BigEndian.PutUint32(buf[:4], checksum)
	copy(buf[4:], raw)
	return buf, nil
}

func decodeElement(data []byte) (*Record, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("boltstore: element record too short")
	}
	checksum := binary.BigEndian.Uint32(data[:4])
	raw := data[4:]
	if crc32.Checksum(raw, crcTable) != checksum {
		return nil, fmt.Errorf("boltstore: element record failed checksum")
	}
	var r record
	if err := msgpack.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("boltstore: unmarshal element: %w", err)
	}
	return &Record{id: typeahead.ID(r.ID), ts: r.Ts, terms: r.Terms, score: r.Score}, nil
}

// encodeAdjacency wraps a packed weight-pairs payload (the exact wire
// format typeahead.WeightIterator decodes) with a CRC32 checksum and a
// last-write timestamp, so SetWeight/Remove can order concurrent writers
// without a second bucket.
type adjacencyRecord struct {
	Timestamp int64
	Payload   []byte
}

func encodeAdjacency(payload []byte, ts int64) []byte {
	raw, _ := msgpack.Marshal(&adjacencyRecord{Timestamp: ts, Payload: payload})
	buf := make([]byte, 4+len(raw))
	checksum := crc32.Checksum(raw, crcTable)
	binary.BigEndian.PutUint32(buf[:4], checksum)
	copy(buf[4:], raw)
	return buf
}

func decodeAdjacency(data []byte) (payload []byte, ts int64, err error) {
	if len(data) < 4 {
		return nil, 0, fmt.Errorf("boltstore: adjacency record too short")
	}
	checksum := binary.BigEndian.Uint32(data[:4])
	raw := data[4:]
	if crc32.Checksum(raw, crcTable) != checksum {
		return nil, 0, fmt.Errorf("boltstore: adjacency record failed checksum")
	}
	var rec adjacencyRecord
	if err := msgpack.Unmarshal(raw, &rec); err != nil {
		return nil, 0, fmt.Errorf("boltstore: unmarshal adjacency: %w", err)
	}
	return rec.Payload, rec.Timestamp, nil
}

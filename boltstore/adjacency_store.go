package boltstore

import (
	bolt "go.etcd.io/bbolt"

	"github.com/nettypeahead/typeahead"
)

// GetLength satisfies typeahead.AdjacencyStore, returning the length in
// bytes of uid's packed weight-pairs payload, or 0 if uid has no record.
func (s *Store) GetLength(uid typeahead.ID) int {
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAdjacency).Get(encodeID(uid))
		if data == nil {
			return nil
		}
		payload, _, err := decodeAdjacency(data)
		if err != nil {
			return nil
		}
		n = len(payload)
		return nil
	})
	return n
}

// GetBytes satisfies typeahead.AdjacencyStore: a full read of uid's
// packed adjacency. If buf is large enough the payload is copied into it
// and returned with a non-negative length; otherwise a fresh buffer is
// allocated and returned with the length negated, signalling the
// reallocation to the caller.
func (s *Store) GetBytes(uid typeahead.ID, buf []byte) ([]byte, int) {
	var payload []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAdjacency).Get(encodeID(uid))
		if data == nil {
			return nil
		}
		p, _, err := decodeAdjacency(data)
		if err != nil {
			return nil
		}
		payload = p
		return nil
	})
	if payload == nil {
		return nil, 0
	}
	if len(buf) >= len(payload) {
		n := copy(buf, payload)
		return buf, n
	}
	fresh := make([]byte, len(payload))
	copy(fresh, payload)
	return fresh, -len(fresh)
}

// ReadBytes satisfies typeahead.AdjacencyStore: a best-effort partial
// read that never reallocates and never writes more than len(buf) bytes.
func (s *Store) ReadBytes(uid typeahead.ID, buf []byte) int {
	var n int
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAdjacency).Get(encodeID(uid))
		if data == nil {
			return nil
		}
		payload, _, err := decodeAdjacency(data)
		if err != nil {
			return nil
		}
		n = copy(buf, payload)
		return nil
	})
	return n
}

// GetWeightData satisfies typeahead.AdjacencyStore, decoding uid's packed
// payload into parallel target/weight arrays.
func (s *Store) GetWeightData(uid typeahead.ID) ([]typeahead.ID, []int32) {
	var payload []byte
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketAdjacency).Get(encodeID(uid))
		if data == nil {
			return nil
		}
		p, _, err := decodeAdjacency(data)
		if err != nil {
			return nil
		}
		payload = p
		return nil
	})
	if payload == nil {
		return nil, nil
	}
	return typeahead.DecodeWeightPairs(payload)
}

// GetWeight satisfies typeahead.AdjacencyStore, returning the currently
// stored strength for (source, target), or 0 if no edge exists.
func (s *Store) GetWeight(source, target typeahead.ID) int32 {
	targets, weights := s.GetWeightData(source)
	for i, t := range targets {
		if t == target {
			return weights[i]
		}
	}
	return 0
}

// SetWeight satisfies typeahead.AdjacencyStore. Writes are last-writer-wins
// by timestamp: a write whose ts is older than the record's currently
// stored timestamp is silently dropped, so a delayed retry of a stale
// write can never clobber a newer one.
func (s *Store) SetWeight(source, target typeahead.ID, strength int32, ts int64) error {
	var isNewSource bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketAdjacency)
		key := encodeID(source)
		isNewSource = bucket.Get(key) == nil

		var targets []typeahead.ID
		var weights []int32
		if data := bucket.Get(key); data != nil {
			payload, storedTs, err := decodeAdjacency(data)
			if err == nil {
				if ts < storedTs {
					return nil
				}
				targets, weights = typeahead.DecodeWeightPairs(payload)
			}
		}

		replaced := false
		for i, t := range targets {
			if t == target {
				weights[i] = strength
				replaced = true
				break
			}
		}
		if !replaced {
			targets = append(targets, target)
			weights = append(weights, strength)
		}

		payload := typeahead.EncodeWeightPairs(targets, weights)
		return bucket.Put(key, encodeAdjacency(payload, ts))
	})
	if err == nil && isNewSource {
		s.adjacencyCount.Add(1)
	}
	return err
}

// Remove satisfies typeahead.AdjacencyStore, dropping the (source,
// target) edge. Like SetWeight, a removal older than the record's
// currently stored timestamp is dropped rather than applied.
func (s *Store) Remove(source, target typeahead.ID, ts int64) error {
	var sourceDeleted bool
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketAdjacency)
		key := encodeID(source)

		data := bucket.Get(key)
		if data == nil {
			return nil
		}
		payload, storedTs, err := decodeAdjacency(data)
		if err != nil {
			return nil
		}
		if ts < storedTs {
			return nil
		}

		targets, weights := typeahead.DecodeWeightPairs(payload)
		out := targets[:0]
		outW := weights[:0]
		for i, t := range targets {
			if t != target {
				out = append(out, t)
				outW = append(outW, weights[i])
			}
		}
		if len(out) == 0 {
			sourceDeleted = true
			return bucket.Delete(key)
		}
		newPayload := typeahead.EncodeWeightPairs(out, outW)
		return bucket.Put(key, encodeAdjacency(newPayload, ts))
	})
	if err == nil && sourceDeleted {
		s.adjacencyCount.Add(^uint64(0)) // decrement
	}
	return err
}

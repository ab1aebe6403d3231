package boltstore

import (
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/nettypeahead/typeahead"
)

// HasIndex satisfies both typeahead.ElementStore and
// typeahead.AdjacencyStore: Store backs both roles, and a single id
// space is shared between the elements and adjacency buckets, so
// presence in either bucket counts.
func (s *Store) HasIndex(id typeahead.ID) bool {
	var found bool
	_ = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(bucketElements).Get(encodeID(id)) != nil ||
			tx.Bucket(bucketAdjacency).Get(encodeID(id)) != nil
		return nil
	})
	return found
}

// GetElement satisfies typeahead.ElementStore. A corrupted record (failed
// checksum) is treated the same as a missing one; the caller's selector
// never sees a half-decoded element.
func (s *Store) GetElement(id typeahead.ID) (typeahead.Element, bool) {
	var rec *Record
	_ = s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(bucketElements).Get(encodeID(id))
		if data == nil {
			return nil
		}
		decoded, err := decodeElement(data)
		if err != nil {
			return nil
		}
		rec = decoded
		return nil
	})
	if rec == nil {
		return nil, false
	}
	return rec, true
}

// SetElement satisfies typeahead.ElementStore. ts is accepted for
// interface symmetry with AdjacencyStore.SetWeight but elements have no
// last-writer-wins contract of their own: the engine already serializes
// all element writes under its element lock, so an unconditional
// overwrite is sufficient here.
func (s *Store) SetElement(id typeahead.ID, e typeahead.Element, ts int64) error {
	data, err := encodeElement(e)
	if err != nil {
		return err
	}
	key := encodeID(id)
	var isNew bool
	err = s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketElements)
		isNew = bucket.Get(key) == nil
		return bucket.Put(key, data)
	})
	if err == nil && isNew {
		s.elementCount.Add(1)
	}
	return err
}

// Persist satisfies typeahead.ElementStore. bbolt commits every Update
// transaction durably unless Options.NoSync was set at Open; Persist
// forces a Sync so a NoSync-configured store can still offer an explicit
// durability point.
func (s *Store) Persist() error {
	if err := s.db.Sync(); err != nil {
		return fmt.Errorf("boltstore: sync: %w", err)
	}
	return nil
}

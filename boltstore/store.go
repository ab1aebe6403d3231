// Package boltstore implements typeahead.ElementStore and
// typeahead.AdjacencyStore on top of a single bbolt database file, the
// way the teacher repo's shard.go backs a graph partition with one bbolt
// file per shard.
package boltstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/nettypeahead/typeahead"
)

var (
	bucketElements  = []byte("elements")
	bucketAdjacency = []byte("adjacency")
	bucketMeta      = []byte("meta")

	metaIndexStart = []byte("index_start")
	metaCapacity   = []byte("capacity")
)

// Store is a bbolt-backed ElementStore and AdjacencyStore over a single
// id range. One Store serves both roles for a given typeahead.Engine.
type Store struct {
	db         *bolt.DB
	indexStart typeahead.ID
	capacity   typeahead.ID

	stopSync chan struct{}
	syncDone chan struct{}

	// elementCount and adjacencyCount are in-memory counters cached
	// alongside the persisted data, mirroring the teacher's
	// shard.nodeCount/edgeCount pattern for O(1) size reporting without
	// a full bucket scan.
	elementCount   atomic.Uint64
	adjacencyCount atomic.Uint64
}

// ElementCount returns the number of elements currently stored.
func (s *Store) ElementCount() uint64 { return s.elementCount.Load() }

// AdjacencyCount returns the number of distinct source ids with at least
// one outgoing edge currently stored.
func (s *Store) AdjacencyCount() uint64 { return s.adjacencyCount.Load() }

// Options configures Open. NoSync trades durability for throughput by
// skipping the per-transaction fsync bbolt normally performs, mirroring
// the teacher's NoSync knob; callers that enable it should call Sync
// periodically or rely on Persist at shutdown.
type Options struct {
	NoSync       bool
	SyncInterval time.Duration
}

// Open opens (creating if absent) a bbolt database at path sized to
// [indexStart, indexStart+capacity). The range is persisted in the meta
// bucket and validated against the requested range on subsequent opens,
// so a Store can't be accidentally reopened over a mismatched range.
func Open(path string, indexStart, capacity typeahead.ID, opts Options) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("boltstore: create directory for %s: %w", path, err)
	}

	boltOpts := *bolt.DefaultOptions
	boltOpts.NoSync = opts.NoSync

	db, err := bolt.Open(path, 0o600, &boltOpts)
	if err != nil {
		return nil, fmt.Errorf("boltstore: open %s: %w", path, err)
	}

	s := &Store{db: db, indexStart: indexStart, capacity: capacity}
	if err := s.initBuckets(); err != nil {
		db.Close()
		return nil, err
	}

	if opts.NoSync && opts.SyncInterval > 0 {
		s.stopSync = make(chan struct{})
		s.syncDone = make(chan struct{})
		go s.backgroundSync(opts.SyncInterval)
	}

	return s, nil
}

// backgroundSync periodically flushes dirty pages to disk while NoSync
// is enabled, bounding how much committed data an unclean shutdown can
// lose to at most one interval's worth of writes.
func (s *Store) backgroundSync(interval time.Duration) {
	defer close(s.syncDone)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.db.Sync()
		case <-s.stopSync:
			return
		}
	}
}

func (s *Store) initBuckets() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketElements, bucketAdjacency, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("boltstore: create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMeta)
		if v := meta.Get(metaIndexStart); v != nil {
			persisted := typeahead.ID(decodeUint64(v))
			if persisted != s.indexStart {
				return fmt.Errorf("boltstore: range mismatch: store was opened with index_start=%d, requested %d", persisted, s.indexStart)
			}
		} else if err := meta.Put(metaIndexStart, encodeUint64(uint64(s.indexStart))); err != nil {
			return err
		}
		if v := meta.Get(metaCapacity); v != nil {
			persisted := typeahead.ID(decodeUint64(v))
			if persisted != s.capacity {
				return fmt.Errorf("boltstore: range mismatch: store was opened with capacity=%d, requested %d", persisted, s.capacity)
			}
		} else if err := meta.Put(metaCapacity, encodeUint64(uint64(s.capacity))); err != nil {
			return err
		}

		var elems, adj uint64
		if err := tx.Bucket(bucketElements).ForEach(func(k, v []byte) error {
			elems++
			return nil
		}); err != nil {
			return err
		}
		if err := tx.Bucket(bucketAdjacency).ForEach(func(k, v []byte) error {
			adj++
			return nil
		}); err != nil {
			return err
		}
		s.elementCount.Store(elems)
		s.adjacencyCount.Store(adj)
		return nil
	})
}

// IndexStart satisfies typeahead.ElementStore.
func (s *Store) IndexStart() typeahead.ID { return s.indexStart }

// Capacity satisfies typeahead.ElementStore.
func (s *Store) Capacity() typeahead.ID { return s.capacity }

// Sync forces bbolt to flush dirty pages to disk. Only meaningful with
// Options.NoSync; a normal (sync-on-commit) store is already durable
// after every successful Update.
func (s *Store) Sync() error {
	return s.db.Sync()
}

// Close stops any background sync goroutine and releases the underlying
// bbolt file handle.
func (s *Store) Close() error {
	if s.stopSync != nil {
		close(s.stopSync)
		<-s.syncDone
	}
	return s.db.Close()
}

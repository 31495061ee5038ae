package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/cockroachdb/pebble"
)

const (
	// defaultSyncInterval is the default interval between WAL syncs.
	defaultSyncInterval = 100 * time.Millisecond

	// defaultCacheSize is the block cache size when Options leaves it unset.
	defaultCacheSize = 16 << 20
)

// KeyValue is one entry of an atomic write.
type KeyValue struct {
	Key   []byte // Key is the key to store
	Value []byte // Value is the value to store
}

// Options tunes the underlying Pebble instance.
type Options struct {
	CacheSize  int64 // CacheSize is the block cache size in bytes
	SyncWrites bool  // SyncWrites fsyncs every Write instead of relying on the sync loop
}

// Storage is a Pebble-backed key-value store.
// Unless SyncWrites is set, writes skip fsync and a background goroutine
// syncs the WAL every defaultSyncInterval.
type Storage struct {
	db        *pebble.DB           // db is the underlying Pebble database
	writeOpts *pebble.WriteOptions // writeOpts is Sync or NoSync depending on Options
	stopSync  chan struct{}        // stopSync signals the sync goroutine to stop
	wg        sync.WaitGroup
}

// Open opens or creates a store at path.
func Open(path string, opts Options) (*Storage, error) {
	cacheSize := opts.CacheSize
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}

	cache := pebble.NewCache(cacheSize)
	defer cache.Unref()

	db, err := pebble.Open(path, &pebble.Options{
		Cache:                       cache,
		MemTableSize:                4 << 20,
		MemTableStopWritesThreshold: 2,
	})
	if err != nil {
		return nil, err
	}

	s := &Storage{
		db:        db,
		writeOpts: pebble.NoSync,
		stopSync:  make(chan struct{}),
	}

	if opts.SyncWrites {
		s.writeOpts = pebble.Sync
	} else {
		s.startSyncLoop()
	}

	return s, nil
}

// Get returns a copy of the value for key, or nil if the key does not exist.
func (s *Storage) Get(key []byte) ([]byte, error) {
	value, closer, err := s.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Write stores all pairs in a single batch: either every pair is visible or none.
func (s *Storage) Write(pairs []KeyValue) error {
	batch := s.db.NewBatch()
	defer batch.Close()

	for _, kv := range pairs {
		if err := batch.Set(kv.Key, kv.Value, nil); err != nil {
			return err
		}
	}

	return batch.Commit(s.writeOpts)
}

// Scan calls fn for each key in [lower, upper) in lexicographic order.
// A nil upper scans to the end of the keyspace. The slices passed to fn
// are only valid during the call. If fn returns an error, scanning stops
// and the error is returned.
func (s *Storage) Scan(lower, upper []byte, fn func(key, value []byte) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: lower,
		UpperBound: upper,
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		value, err := iter.ValueAndErr()
		if err != nil {
			return err
		}

		if err := fn(iter.Key(), value); err != nil {
			return err
		}
	}

	return iter.Error()
}

// ScanPrefix calls fn for each key starting with prefix.
func (s *Storage) ScanPrefix(prefix []byte, fn func(key, value []byte) error) error {
	return s.Scan(prefix, PrefixEnd(prefix), fn)
}

// PrefixEnd returns the exclusive upper bound of all keys starting with prefix,
// or nil when prefix is all 0xFF.
func PrefixEnd(prefix []byte) []byte {
	upper := make([]byte, len(prefix))
	copy(upper, prefix)

	for i := len(upper) - 1; i >= 0; i-- {
		upper[i]++
		if upper[i] != 0 {
			return upper[:i+1]
		}
	}

	return nil
}

// Close stops the sync loop, flushes the WAL and closes the database.
func (s *Storage) Close() error {
	close(s.stopSync)
	s.wg.Wait()

	if err := s.sync(); err != nil {
		return err
	}

	return s.db.Close()
}

// startSyncLoop starts the background goroutine that periodically syncs the WAL.
func (s *Storage) startSyncLoop() {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(defaultSyncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				_ = s.sync()
			case <-s.stopSync:
				return
			}
		}
	}()
}

// sync forces a WAL sync to disk.
func (s *Storage) sync() error {
	return s.db.LogData(nil, pebble.Sync)
}

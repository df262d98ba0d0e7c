// Package resultsdb archives completed simulation runs' per-node statistics
// records (spec §6) to an on-disk goleveldb store, keyed by run id. This is
// an archive of finished-run results, not live blockchain state — the
// simulator itself never touches disk while running (spec §1 non-goal: no
// on-disk persistence). Adapted from the teacher's storage.DB/LevelDB pair.
package resultsdb

import (
	"encoding/json"
	"fmt"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/syndtr/goleveldb/leveldb"

	"github.com/blocksim-go/blocksim/stats"
)

// Run bundles a completed simulation's identity and every node's final
// statistics record.
type Run struct {
	ID        string        `json:"id"`
	StartedAt int64         `json:"started_at"`
	Records   []stats.Record `json:"records"`
}

// Store archives Run values to a goleveldb directory, guarded by an
// advisory file lock so concurrent simulator processes sharing a results
// directory don't corrupt each other's writes.
type Store struct {
	db   *leveldb.DB
	lock *flock.Flock
}

// Open opens (creating if necessary) a Store rooted at dir. The caller must
// call Close when done.
func Open(dir string) (*Store, error) {
	lk := flock.New(dir + ".lock")
	locked, err := lk.TryLock()
	if err != nil {
		return nil, fmt.Errorf("resultsdb: acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("resultsdb: %s is locked by another process", dir)
	}
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		lk.Unlock()
		return nil, fmt.Errorf("resultsdb: open %s: %w", dir, err)
	}
	return &Store{db: db, lock: lk}, nil
}

// Close releases the database handle and the advisory lock.
func (s *Store) Close() error {
	err := s.db.Close()
	if uerr := s.lock.Unlock(); uerr != nil && err == nil {
		err = uerr
	}
	return err
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// Save archives run under its ID.
func (s *Store) Save(run Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("resultsdb: marshal run %s: %w", run.ID, err)
	}
	return s.db.Put([]byte("run:"+run.ID), data, nil)
}

// Load retrieves a previously archived run by ID.
func (s *Store) Load(id string) (Run, error) {
	var run Run
	data, err := s.db.Get([]byte("run:"+id), nil)
	if err != nil {
		return run, fmt.Errorf("resultsdb: load run %s: %w", id, err)
	}
	if err := json.Unmarshal(data, &run); err != nil {
		return run, fmt.Errorf("resultsdb: unmarshal run %s: %w", id, err)
	}
	return run, nil
}

// List returns every archived run id.
func (s *Store) List() ([]string, error) {
	iter := s.db.NewIterator(nil, nil)
	defer iter.Release()
	var ids []string
	for iter.Next() {
		ids = append(ids, string(iter.Key()[len("run:"):]))
	}
	return ids, iter.Error()
}

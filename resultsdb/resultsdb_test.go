package resultsdb

import (
	"path/filepath"
	"testing"

	"github.com/blocksim-go/blocksim/stats"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	run := Run{ID: NewRunID(), StartedAt: 1000, Records: []stats.Record{{NodeID: 1, TotalBlocks: 5}}}
	if err := store.Save(run); err != nil {
		t.Fatal(err)
	}

	got, err := store.Load(run.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Records) != 1 || got.Records[0].NodeID != 1 {
		t.Fatalf("round-trip mismatch: %+v", got)
	}

	ids, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 1 || ids[0] != run.ID {
		t.Fatalf("expected run id listed, got %v", ids)
	}
}

func TestOpenRefusesSecondLock(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runs")
	store, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if _, err := Open(dir); err == nil {
		t.Fatal("expected second Open on the same directory to fail while the lock is held")
	}
}

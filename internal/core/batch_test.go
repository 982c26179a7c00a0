package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numbered(n int) []ProductRecord {
	recs := make([]ProductRecord, n)
	for i := range recs {
		recs[i] = part(fmt.Sprintf("P%02d", i+1), "ACME")
	}
	return recs
}

func TestPersister_CommitBoundaries(t *testing.T) {
	tests := []struct {
		records int
		want    []int
	}{
		{0, []int{0}},
		{9, []int{9}},
		{10, []int{10, 10}},
		{23, []int{10, 20, 23}},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d records", tt.records), func(t *testing.T) {
			store := NewMemoryStore()
			p := NewPersister(store, PersisterOptions{}, discardLogger())

			summary := p.Run(context.Background(), numbered(tt.records))

			assert.Equal(t, tt.want, store.CommitLog())
			assert.Equal(t, len(tt.want), summary.Commits)
			assert.Equal(t, tt.records, summary.Processed)
			assert.Equal(t, tt.records, store.CommittedEntries())
		})
	}
}

func TestPersister_CommitCountDuringRun(t *testing.T) {
	store := NewMemoryStore()
	commitsAt := map[int]int{}
	p := NewPersister(store, PersisterOptions{
		Progress: func(done, total int) {
			commitsAt[done] = len(store.CommitLog())
		},
	}, discardLogger())

	p.Run(context.Background(), numbered(12))

	assert.Equal(t, 0, commitsAt[9], "no commit after 9 records")
	assert.Equal(t, 1, commitsAt[10], "exactly one commit after 10 records")
	assert.Equal(t, 1, commitsAt[12])
	assert.Len(t, store.CommitLog(), 2, "final commit flushes the remainder")
}

func TestPersister_CustomCommitInterval(t *testing.T) {
	store := NewMemoryStore()
	p := NewPersister(store, PersisterOptions{CommitEvery: 3}, discardLogger())

	p.Run(context.Background(), numbered(7))

	assert.Equal(t, []int{3, 6, 7}, store.CommitLog())
}

func TestPersister_DuplicatesCountTowardCommits(t *testing.T) {
	store := NewMemoryStore()
	p := NewPersister(store, PersisterOptions{}, discardLogger())

	recs := numbered(5)
	recs = append(recs, numbered(5)...)

	summary := p.Run(context.Background(), recs)

	assert.Equal(t, 10, summary.Processed)
	assert.Equal(t, 5, summary.New)
	assert.Equal(t, 5, summary.Duplicates)
	assert.Equal(t, []int{5, 5}, store.CommitLog())
}

func TestPersister_FailureIsolation(t *testing.T) {
	store := NewMemoryStore()
	store.SetFault(func(op, key string) error {
		if op == OpInsertEntry && key == "P05" {
			return errors.New("value too long for type character varying(40)")
		}
		return nil
	})
	p := NewPersister(store, PersisterOptions{}, discardLogger())

	summary := p.Run(context.Background(), numbered(12))

	assert.Equal(t, 12, summary.Total)
	assert.Equal(t, 11, summary.Processed)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	f := summary.Failures[0]
	assert.Equal(t, 4, f.Index)
	assert.Equal(t, "P05", f.PartNumber)
	assert.Equal(t, "ACME", f.Manufacturer)
	assert.Equal(t, "insert", f.Kind)

	var stored []string
	for _, e := range store.Entries() {
		stored = append(stored, e.PartNumber)
	}
	assert.NotContains(t, stored, "P05")
	assert.Len(t, stored, 11)
	assert.Equal(t, 11, store.CommittedEntries())
	assert.Equal(t, []int{10, 11}, store.CommitLog())
}

func TestPersister_FailedRecordLeavesNoPartialRows(t *testing.T) {
	store := NewMemoryStore()
	store.SetFault(func(op, key string) error {
		if op == OpInsertLink {
			return errors.New("link rejected")
		}
		return nil
	})
	p := NewPersister(store, PersisterOptions{}, discardLogger())

	recs := []ProductRecord{part("AB100", "ACME"), part("AB100", "ZEN")}
	summary := p.Run(context.Background(), recs)

	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 1, summary.New)
	// ZEN's manufacturer row and alternate entry were written under the
	// failed record's savepoint and must be gone.
	assert.Equal(t, []string{"ACME"}, store.Manufacturers())
	assert.Len(t, store.Entries(), 1)
	assert.Empty(t, store.Links())
}

func TestPersister_AlternateScenario(t *testing.T) {
	store := NewMemoryStore()
	p := NewPersister(store, PersisterOptions{}, discardLogger())

	summary := p.Run(context.Background(), []ProductRecord{part("AB100", "ACME"), part("AB100", "ZEN")})

	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.Alternates)
	assert.Equal(t, 2, summary.EntriesCreated)
	assert.Equal(t, 1, summary.LinksCreated)
	assert.Zero(t, summary.Failed)
}

func TestPersister_CommitFailureLosesOnlyPendingBatch(t *testing.T) {
	store := NewMemoryStore()
	commits := 0
	store.SetFault(func(op, key string) error {
		if op == OpCommit {
			commits++
			if commits == 1 {
				return errors.New("connection reset by peer")
			}
		}
		return nil
	})
	p := NewPersister(store, PersisterOptions{}, discardLogger())

	summary := p.Run(context.Background(), numbered(12))

	assert.Equal(t, 12, summary.Processed)
	assert.Equal(t, 1, summary.CommitFailures)
	assert.Equal(t, 10, summary.Lost)
	assert.Equal(t, 1, summary.Commits)
	assert.Equal(t, 2, store.CommittedEntries())
}

func TestPersister_CancellationStillCommits(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewPersister(store, PersisterOptions{
		Progress: func(done, total int) {
			if done == 3 {
				cancel()
			}
		},
	}, discardLogger())

	summary := p.Run(ctx, numbered(12))

	assert.True(t, summary.Cancelled)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 3, store.CommittedEntries())
	assert.Equal(t, 1, summary.Commits)
}

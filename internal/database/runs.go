package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

// RunStore persists import run history in the import_runs table.
type RunStore struct {
	q *Queries
}

// NewRunStore returns a RunStore over pool.
func NewRunStore(pool *pgxpool.Pool) *RunStore {
	return &RunStore{q: New(pool)}
}

var _ core.RunRecorder = (*RunStore)(nil)

func (s *RunStore) RecordRun(ctx context.Context, run core.ImportResult) error {
	id, err := uuid.Parse(run.RunID)
	if err != nil {
		return fmt.Errorf("parse run id %q: %w", run.RunID, err)
	}

	failures, err := json.Marshal(run.Failures)
	if err != nil {
		return fmt.Errorf("encode failures: %w", err)
	}

	return s.q.InsertImportRun(ctx, InsertImportRunParams{
		ID:                pgtype.UUID{Bytes: id, Valid: true},
		FileName:          run.FileName,
		SourceFormat:      run.Format,
		TotalRecords:      int32(run.Total),
		Processed:         int32(run.Processed),
		NewEntries:        int32(run.New),
		Duplicates:        int32(run.Duplicates),
		Alternates:        int32(run.Alternates),
		EntriesCreated:    int32(run.EntriesCreated),
		LinksCreated:      int32(run.LinksCreated),
		AlternatesSkipped: int32(run.AlternatesSkipped),
		Failed:            int32(run.Failed),
		Commits:           int32(run.Commits),
		CommitFailures:    int32(run.CommitFailures),
		Lost:              int32(run.Lost),
		Cancelled:         run.Cancelled,
		Error:             pgtype.Text{String: run.Error, Valid: run.Error != ""},
		Failures:          failures,
		StartedAt:         pgtype.Timestamptz{Time: run.StartedAt, Valid: true},
		FinishedAt:        pgtype.Timestamptz{Time: run.FinishedAt, Valid: true},
	})
}

func (s *RunStore) ListRuns(ctx context.Context, limit int) ([]core.ImportResult, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.q.ListImportRuns(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	out := make([]core.ImportResult, 0, len(rows))
	for _, r := range rows {
		res, err := toResult(r)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

func (s *RunStore) GetRun(ctx context.Context, runID string) (*core.ImportResult, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, core.ErrRunNotFound
	}

	row, err := s.q.GetImportRun(ctx, pgtype.UUID{Bytes: id, Valid: true})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get import run: %w", err)
	}

	res, err := toResult(row)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func toResult(r ImportRun) (core.ImportResult, error) {
	res := core.ImportResult{
		RunID:      uuid.UUID(r.ID.Bytes).String(),
		FileName:   r.FileName,
		Format:     r.SourceFormat,
		StartedAt:  r.StartedAt.Time,
		FinishedAt: r.FinishedAt.Time,
		Error:      r.Error.String,
		Summary: core.Summary{
			Total:             int(r.TotalRecords),
			Processed:         int(r.Processed),
			New:               int(r.NewEntries),
			Duplicates:        int(r.Duplicates),
			Alternates:        int(r.Alternates),
			EntriesCreated:    int(r.EntriesCreated),
			LinksCreated:      int(r.LinksCreated),
			AlternatesSkipped: int(r.AlternatesSkipped),
			Failed:            int(r.Failed),
			Commits:           int(r.Commits),
			CommitFailures:    int(r.CommitFailures),
			Lost:              int(r.Lost),
			Cancelled:         r.Cancelled,
		},
	}
	res.Duration = res.FinishedAt.Sub(res.StartedAt).Round(time.Millisecond)

	if len(r.Failures) > 0 {
		if err := json.Unmarshal(r.Failures, &res.Failures); err != nil {
			return res, fmt.Errorf("decode failures for run %s: %w", res.RunID, err)
		}
	}
	return res, nil
}

package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/catalogimport/internal/core"
)

// Catalog opens import sessions on a pool.
type Catalog struct {
	pool *pgxpool.Pool
}

// NewCatalog returns a Catalog over pool.
func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

var _ core.SessionOpener = (*Catalog)(nil)

// Open acquires one connection for the whole import.
func (c *Catalog) Open(ctx context.Context) (core.Session, error) {
	conn, err := c.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %w", core.ErrConnection, err)
	}
	return &Session{conn: conn}, nil
}

// Session holds a pooled connection and its current transaction. The
// transaction begins with the first statement after Open or Commit.
type Session struct {
	conn *pgxpool.Conn
	tx   pgx.Tx
	q    *Queries
}

var _ core.Session = (*Session)(nil)

func (s *Session) queries(ctx context.Context) (*Queries, error) {
	if s.tx != nil {
		return s.q, nil
	}
	tx, err := s.conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	s.q = New(tx)
	return s.q, nil
}

func (s *Session) exec(ctx context.Context, sql string) error {
	if _, err := s.queries(ctx); err != nil {
		return err
	}
	_, err := s.tx.Exec(ctx, sql)
	return err
}

func (s *Session) FindManufacturer(ctx context.Context, code string) (int64, bool, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, false, err
	}
	id, err := q.GetManufacturerByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Session) InsertManufacturer(ctx context.Context, code string) (int64, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, err
	}
	return q.InsertManufacturer(ctx, code)
}

func (s *Session) FindUnitOfMeasure(ctx context.Context, code string) (int64, bool, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, false, err
	}
	id, err := q.GetUnitOfMeasureByCode(ctx, code)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}

func (s *Session) InsertUnitOfMeasure(ctx context.Context, code string) (int64, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, err
	}
	return q.InsertUnitOfMeasure(ctx, code)
}

func (s *Session) FindPartsByNumber(ctx context.Context, partNumber string) ([]core.CatalogMatch, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.ListPartsByPartNumber(ctx, partNumber)
	if err != nil {
		return nil, err
	}
	matches := make([]core.CatalogMatch, len(rows))
	for i, r := range rows {
		matches[i] = core.CatalogMatch{ID: r.ID, ManufacturerID: r.ManufacturerID}
	}
	return matches, nil
}

func (s *Session) InsertCatalogEntry(ctx context.Context, e core.NewCatalogEntry) (int64, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, err
	}
	return q.InsertCatalogPart(ctx, InsertCatalogPartParams{
		PartNumber:       e.PartNumber,
		PartNumberUpper:  e.PartNumberUpper,
		Description:      e.Description,
		DescriptionUpper: e.DescriptionUpper,
		ManufacturerID:   e.ManufacturerID,
		UomID:            e.UnitOfMeasureID,
		Notes:            e.Notes,
		Provenance:       pgtype.Text{String: e.Provenance, Valid: e.Provenance != ""},
	})
}

func (s *Session) InsertAlternateLink(ctx context.Context, primaryID, alternateID int64) (int64, error) {
	q, err := s.queries(ctx)
	if err != nil {
		return 0, err
	}
	return q.InsertAlternatePart(ctx, InsertAlternatePartParams{
		PartID:          primaryID,
		AlternatePartID: alternateID,
	})
}

func (s *Session) Savepoint(ctx context.Context, name string) error {
	return s.exec(ctx, "SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

func (s *Session) RollbackToSavepoint(ctx context.Context, name string) error {
	return s.exec(ctx, "ROLLBACK TO SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

func (s *Session) ReleaseSavepoint(ctx context.Context, name string) error {
	return s.exec(ctx, "RELEASE SAVEPOINT "+pgx.Identifier{name}.Sanitize())
}

// Commit ends the current transaction. With nothing begun it is a no-op.
// pgx rolls the transaction back when COMMIT fails, so either way the
// next statement starts fresh.
func (s *Session) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx, s.q = nil, nil
	return tx.Commit(ctx)
}

// Close rolls back anything uncommitted and returns the connection to the pool.
func (s *Session) Close(ctx context.Context) {
	if s.tx != nil {
		_ = s.tx.Rollback(ctx)
		s.tx, s.q = nil, nil
	}
	s.conn.Release()
}

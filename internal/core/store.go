package core

import "context"

// CatalogMatch is an existing catalog entry found by part number.
type CatalogMatch struct {
	ID             int64
	ManufacturerID int64
}

// NewCatalogEntry holds the column values of a catalog row to insert.
// Provenance is empty for primary rows.
type NewCatalogEntry struct {
	PartNumber       string
	PartNumberUpper  string
	Description      string
	DescriptionUpper string
	ManufacturerID   int64
	UnitOfMeasureID  int64
	Notes            string
	Provenance       string
}

// Store is the set of catalog primitives reconciliation needs.
// Every insert returns the generated surrogate key.
type Store interface {
	FindManufacturer(ctx context.Context, code string) (id int64, found bool, err error)
	InsertManufacturer(ctx context.Context, code string) (int64, error)
	FindUnitOfMeasure(ctx context.Context, code string) (id int64, found bool, err error)
	InsertUnitOfMeasure(ctx context.Context, code string) (int64, error)
	FindPartsByNumber(ctx context.Context, partNumber string) ([]CatalogMatch, error)
	InsertCatalogEntry(ctx context.Context, entry NewCatalogEntry) (int64, error)
	InsertAlternateLink(ctx context.Context, primaryID, alternateID int64) (int64, error)
}

// Session is a Store bound to one connection and one open transaction.
// After Commit the next statement starts a new transaction.
type Session interface {
	Store
	Savepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
	Commit(ctx context.Context) error
	// Close rolls back uncommitted work and releases the connection.
	Close(ctx context.Context)
}

// SessionOpener hands out sessions. A failure here is fatal for the run.
type SessionOpener interface {
	Open(ctx context.Context) (Session, error)
}

// RunRecorder persists import run history.
type RunRecorder interface {
	RecordRun(ctx context.Context, run ImportResult) error
	ListRuns(ctx context.Context, limit int) ([]ImportResult, error)
	GetRun(ctx context.Context, runID string) (*ImportResult, error)
}

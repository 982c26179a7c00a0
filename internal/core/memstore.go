package core

import (
	"context"
	"fmt"
	"sync"
)

// Fault operations a MemoryStore can be told to fail.
const (
	OpFindManufacturer    = "find_manufacturer"
	OpInsertManufacturer  = "insert_manufacturer"
	OpFindUnitOfMeasure   = "find_uom"
	OpInsertUnitOfMeasure = "insert_uom"
	OpFindParts           = "find_parts"
	OpInsertEntry         = "insert_entry"
	OpInsertLink          = "insert_link"
	OpCommit              = "commit"
)

// FaultFunc decides whether an operation fails. key is the code or part
// number involved, empty for commits and links.
type FaultFunc func(op, key string) error

// MemoryEntry is a catalog row held by a MemoryStore.
type MemoryEntry struct {
	ID int64
	NewCatalogEntry
}

// MemoryLink is an alternate link held by a MemoryStore.
type MemoryLink struct {
	ID          int64
	PrimaryID   int64
	AlternateID int64
}

type memRef struct {
	ID   int64
	Code string
}

type memSnapshot struct {
	mfgs, uoms, entries, links int
}

// MemoryStore is an in-process catalog implementing Session and
// SessionOpener. Dry runs reconcile against it, and tests use it to
// observe writes and commit boundaries.
//
// Keys come from one counter that never rewinds, like a database
// sequence. Rolled-back rows disappear; their keys are not reused.
type MemoryStore struct {
	mu sync.Mutex

	mfgs    []memRef
	uoms    []memRef
	entries []MemoryEntry
	links   []MemoryLink
	nextID  int64

	committed  memSnapshot
	savepoints map[string]memSnapshot
	commitLog  []int
	fault      FaultFunc
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{savepoints: make(map[string]memSnapshot)}
}

var (
	_ Session       = (*MemoryStore)(nil)
	_ SessionOpener = (*MemoryStore)(nil)
)

// SetFault installs fn, or clears it when fn is nil.
func (m *MemoryStore) SetFault(fn FaultFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fault = fn
}

// Open returns the store itself; it has a single implicit connection.
func (m *MemoryStore) Open(ctx context.Context) (Session, error) {
	return m, nil
}

func (m *MemoryStore) check(op, key string) error {
	if m.fault == nil {
		return nil
	}
	return m.fault(op, key)
}

func (m *MemoryStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryStore) snapshot() memSnapshot {
	return memSnapshot{len(m.mfgs), len(m.uoms), len(m.entries), len(m.links)}
}

func (m *MemoryStore) restore(s memSnapshot) {
	m.mfgs = m.mfgs[:s.mfgs]
	m.uoms = m.uoms[:s.uoms]
	m.entries = m.entries[:s.entries]
	m.links = m.links[:s.links]
}

func (m *MemoryStore) FindManufacturer(ctx context.Context, code string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpFindManufacturer, code); err != nil {
		return 0, false, err
	}
	for _, r := range m.mfgs {
		if r.Code == code {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *MemoryStore) InsertManufacturer(ctx context.Context, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpInsertManufacturer, code); err != nil {
		return 0, err
	}
	for _, r := range m.mfgs {
		if r.Code == code {
			return 0, fmt.Errorf("duplicate key value violates unique constraint on manufacturer %q", code)
		}
	}
	r := memRef{ID: m.id(), Code: code}
	m.mfgs = append(m.mfgs, r)
	return r.ID, nil
}

func (m *MemoryStore) FindUnitOfMeasure(ctx context.Context, code string) (int64, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpFindUnitOfMeasure, code); err != nil {
		return 0, false, err
	}
	for _, r := range m.uoms {
		if r.Code == code {
			return r.ID, true, nil
		}
	}
	return 0, false, nil
}

func (m *MemoryStore) InsertUnitOfMeasure(ctx context.Context, code string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpInsertUnitOfMeasure, code); err != nil {
		return 0, err
	}
	for _, r := range m.uoms {
		if r.Code == code {
			return 0, fmt.Errorf("duplicate key value violates unique constraint on unit of measure %q", code)
		}
	}
	r := memRef{ID: m.id(), Code: code}
	m.uoms = append(m.uoms, r)
	return r.ID, nil
}

func (m *MemoryStore) FindPartsByNumber(ctx context.Context, partNumber string) ([]CatalogMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpFindParts, partNumber); err != nil {
		return nil, err
	}
	var out []CatalogMatch
	for _, e := range m.entries {
		if e.PartNumber == partNumber {
			out = append(out, CatalogMatch{ID: e.ID, ManufacturerID: e.ManufacturerID})
		}
	}
	return out, nil
}

func (m *MemoryStore) InsertCatalogEntry(ctx context.Context, entry NewCatalogEntry) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpInsertEntry, entry.PartNumber); err != nil {
		return 0, err
	}
	if !m.hasRef(m.mfgs, entry.ManufacturerID) || !m.hasRef(m.uoms, entry.UnitOfMeasureID) {
		return 0, fmt.Errorf("insert catalog entry %q violates foreign key constraint", entry.PartNumber)
	}
	e := MemoryEntry{ID: m.id(), NewCatalogEntry: entry}
	m.entries = append(m.entries, e)
	return e.ID, nil
}

func (m *MemoryStore) InsertAlternateLink(ctx context.Context, primaryID, alternateID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check(OpInsertLink, ""); err != nil {
		return 0, err
	}
	l := MemoryLink{ID: m.id(), PrimaryID: primaryID, AlternateID: alternateID}
	m.links = append(m.links, l)
	return l.ID, nil
}

func (m *MemoryStore) hasRef(refs []memRef, id int64) bool {
	for _, r := range refs {
		if r.ID == id {
			return true
		}
	}
	return false
}

func (m *MemoryStore) Savepoint(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.savepoints[name] = m.snapshot()
	return nil
}

func (m *MemoryStore) RollbackToSavepoint(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.savepoints[name]
	if !ok {
		return fmt.Errorf("savepoint %q does not exist", name)
	}
	m.restore(s)
	return nil
}

func (m *MemoryStore) ReleaseSavepoint(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.savepoints[name]; !ok {
		return fmt.Errorf("savepoint %q does not exist", name)
	}
	delete(m.savepoints, name)
	return nil
}

// Commit makes the current writes durable. A failing commit discards
// them, as a database does when COMMIT fails.
func (m *MemoryStore) Commit(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.savepoints)
	if err := m.check(OpCommit, ""); err != nil {
		m.restore(m.committed)
		return err
	}
	m.committed = m.snapshot()
	m.commitLog = append(m.commitLog, len(m.entries))
	return nil
}

// Close discards uncommitted writes.
func (m *MemoryStore) Close(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clear(m.savepoints)
	m.restore(m.committed)
}

// Entries returns a copy of the catalog rows, committed or not.
func (m *MemoryStore) Entries() []MemoryEntry {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryEntry, len(m.entries))
	copy(out, m.entries)
	return out
}

// Links returns a copy of the alternate links, committed or not.
func (m *MemoryStore) Links() []MemoryLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MemoryLink, len(m.links))
	copy(out, m.links)
	return out
}

// Manufacturers returns the manufacturer codes in insertion order.
func (m *MemoryStore) Manufacturers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.mfgs))
	for i, r := range m.mfgs {
		out[i] = r.Code
	}
	return out
}

// UnitsOfMeasure returns the unit-of-measure codes in insertion order.
func (m *MemoryStore) UnitsOfMeasure() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.uoms))
	for i, r := range m.uoms {
		out[i] = r.Code
	}
	return out
}

// CommitLog returns the catalog row count observed at each successful commit.
func (m *MemoryStore) CommitLog() []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]int, len(m.commitLog))
	copy(out, m.commitLog)
	return out
}

// CommittedEntries returns how many catalog rows are durable.
func (m *MemoryStore) CommittedEntries() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed.entries
}

package core

import (
	"time"
)

// ProductRecord is one catalog line read from a source file.
// Values are raw: truncation happens during reconciliation.
type ProductRecord struct {
	PartNumber          string `json:"partNumber"`
	Description         string `json:"description"`
	ManufacturerCode    string `json:"manufacturer"`
	UnitOfMeasureCode   string `json:"uom"`
	Note                string `json:"note,omitempty"`
	AlternatePartNumber string `json:"alternatePartNumber,omitempty"`
}

// HasAlternate reports whether the record declares a substitute part number.
func (r ProductRecord) HasAlternate() bool {
	return r.AlternatePartNumber != ""
}

// ProductSet groups records by part number, dropping records that are
// identical in every field. Iteration order is first-seen.
type ProductSet struct {
	order []string
	byPN  map[string][]ProductRecord
	seen  map[ProductRecord]struct{}
}

// NewProductSet returns an empty set.
func NewProductSet() *ProductSet {
	return &ProductSet{
		byPN: make(map[string][]ProductRecord),
		seen: make(map[ProductRecord]struct{}),
	}
}

// Add inserts r unless an identical record is already present.
// It reports whether the record was added.
func (s *ProductSet) Add(r ProductRecord) bool {
	if _, dup := s.seen[r]; dup {
		return false
	}
	s.seen[r] = struct{}{}

	if _, ok := s.byPN[r.PartNumber]; !ok {
		s.order = append(s.order, r.PartNumber)
	}
	s.byPN[r.PartNumber] = append(s.byPN[r.PartNumber], r)
	return true
}

// Len returns the number of distinct records.
func (s *ProductSet) Len() int {
	return len(s.seen)
}

// PartNumbers returns the distinct part numbers in first-seen order.
func (s *ProductSet) PartNumbers() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Get returns the records stored under a part number.
func (s *ProductSet) Get(partNumber string) []ProductRecord {
	return s.byPN[partNumber]
}

// Records flattens the set: part numbers in first-seen order, and records
// within a part number in the order they were added.
func (s *ProductSet) Records() []ProductRecord {
	out := make([]ProductRecord, 0, len(s.seen))
	for _, pn := range s.order {
		out = append(out, s.Get(pn)...)
	}
	return out
}

// State is the reconciliation decision for one record.
type State string

const (
	StateNew           State = "NEW"
	StateDuplicateSkip State = "DUPLICATE_SKIP"
	StateAlternateLink State = "ALTERNATE_LINK"
)

// Outcome describes what reconciling a single record wrote.
type Outcome struct {
	State State

	// EntryIDs lists catalog entries created, in creation order.
	EntryIDs []int64

	// Links counts alternate links created.
	Links int

	// SkippedAlternates counts alternate rows not created because the
	// (part number, manufacturer) combination already existed.
	SkippedAlternates int
}

// FailedRecord identifies a record the batch abandoned.
type FailedRecord struct {
	Index        int    `json:"index"`
	PartNumber   string `json:"partNumber"`
	Manufacturer string `json:"manufacturer"`
	Kind         string `json:"kind"`
	Reason       string `json:"reason"`
}

// Summary holds the counters of one batch run.
type Summary struct {
	Total             int            `json:"total"`
	Processed         int            `json:"processed"`
	New               int            `json:"new"`
	Duplicates        int            `json:"duplicates"`
	Alternates        int            `json:"alternates"`
	EntriesCreated    int            `json:"entriesCreated"`
	LinksCreated      int            `json:"linksCreated"`
	AlternatesSkipped int            `json:"alternatesSkipped"`
	Failed            int            `json:"failed"`
	Commits           int            `json:"commits"`
	CommitFailures    int            `json:"commitFailures"`
	Lost              int            `json:"lost"`
	Cancelled         bool           `json:"cancelled,omitempty"`
	Failures          []FailedRecord `json:"failures,omitempty"`
}

func (s *Summary) add(o Outcome) {
	s.Processed++
	switch o.State {
	case StateNew:
		s.New++
	case StateDuplicateSkip:
		s.Duplicates++
	case StateAlternateLink:
		s.Alternates++
	}
	s.EntriesCreated += len(o.EntryIDs)
	s.LinksCreated += o.Links
	s.AlternatesSkipped += o.SkippedAlternates
}

// ImportResult is the outcome of one import run, as reported to callers
// and stored in the run history.
type ImportResult struct {
	RunID      string        `json:"runId"`
	FileName   string        `json:"fileName"`
	Format     string        `json:"format"`
	DryRun     bool          `json:"dryRun,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	FinishedAt time.Time     `json:"finishedAt"`
	Duration   time.Duration `json:"duration"`
	Error      string        `json:"error,omitempty"`
	Summary
}

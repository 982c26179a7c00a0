package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func part(pn, mfg string) ProductRecord {
	return ProductRecord{
		PartNumber:        pn,
		Description:       "desc " + pn,
		ManufacturerCode:  mfg,
		UnitOfMeasureCode: "EA",
		Note:              "note " + pn,
	}
}

func withAlternate(r ProductRecord, alt string) ProductRecord {
	r.AlternatePartNumber = alt
	return r
}

// reversedStore returns part matches in descending key order.
type reversedStore struct {
	*MemoryStore
}

func (s reversedStore) FindPartsByNumber(ctx context.Context, pn string) ([]CatalogMatch, error) {
	m, err := s.MemoryStore.FindPartsByNumber(ctx, pn)
	for i, j := 0, len(m)-1; i < j; i, j = i+1, j-1 {
		m[i], m[j] = m[j], m[i]
	}
	return m, err
}

func reconcile(t *testing.T, r *Reconciler, rec ProductRecord) Outcome {
	t.Helper()
	out, err := r.Reconcile(context.Background(), rec)
	require.NoError(t, err)
	return out
}

func TestReconcile_NewRecord(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	out := reconcile(t, r, part("ab100", "ACME"))

	assert.Equal(t, StateNew, out.State)
	assert.Len(t, out.EntryIDs, 1)
	assert.Zero(t, out.Links)

	entries := store.Entries()
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "ab100", e.PartNumber)
	assert.Equal(t, "AB100", e.PartNumberUpper)
	assert.Equal(t, "DESC AB100", e.DescriptionUpper)
	assert.Equal(t, "note ab100", e.Notes)
	assert.Empty(t, e.Provenance)
	assert.Equal(t, []string{"ACME"}, store.Manufacturers())
	assert.Equal(t, []string{"EA"}, store.UnitsOfMeasure())
	assert.Empty(t, store.Links())
}

func TestReconcile_NewRecordIgnoresAlternatePartNumber(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	out := reconcile(t, r, withAlternate(part("AB100", "ACME"), "AB100-ALT"))

	assert.Equal(t, StateNew, out.State)
	assert.Len(t, store.Entries(), 1)
	assert.Empty(t, store.Links())
}

func TestReconcile_ExactDuplicateSkips(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	reconcile(t, r, part("AB100", "ACME"))
	dup := part("AB100", "ACME")
	dup.Description = "another description"
	out := reconcile(t, r, dup)

	assert.Equal(t, StateDuplicateSkip, out.State)
	assert.Empty(t, out.EntryIDs)
	assert.Len(t, store.Entries(), 1)
	assert.Empty(t, store.Links())
}

func TestReconcile_DuplicateAfterTruncation(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	prefix := strings.Repeat("P", MaxPartNumberLen-1)
	mfgPrefix := strings.Repeat("M", MaxManufacturerCodeLen-1)

	reconcile(t, r, part(prefix+"-first", mfgPrefix+"-one"))
	out := reconcile(t, r, part(prefix+"-second", mfgPrefix+"-two"))

	assert.Equal(t, StateDuplicateSkip, out.State)
	assert.Equal(t, []string{mfgPrefix}, store.Manufacturers())
	require.Len(t, store.Entries(), 1)
	assert.Equal(t, prefix, store.Entries()[0].PartNumber)
}

func TestReconcile_AlternateLinkScenario(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	first := reconcile(t, r, part("AB100", "ACME"))
	second := reconcile(t, r, part("AB100", "ZEN"))

	assert.Equal(t, StateNew, first.State)
	assert.Equal(t, StateAlternateLink, second.State)
	require.Len(t, second.EntryIDs, 1)
	assert.Equal(t, 1, second.Links)

	entries := store.Entries()
	require.Len(t, entries, 2)
	acme, zen := entries[0], entries[1]
	assert.Equal(t, "AB100", zen.PartNumber)
	assert.Equal(t, DefaultAlternateTag, zen.Provenance)
	assert.NotEqual(t, acme.ManufacturerID, zen.ManufacturerID)

	links := store.Links()
	require.Len(t, links, 1)
	assert.Equal(t, acme.ID, links[0].PrimaryID)
	assert.Equal(t, zen.ID, links[0].AlternateID)
}

func TestReconcile_CustomAlternateTag(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "SUBST", discardLogger())

	reconcile(t, r, part("AB100", "ACME"))
	reconcile(t, r, part("AB100", "ZEN"))

	assert.Equal(t, "SUBST", store.Entries()[1].Provenance)
}

func TestReconcile_AlternatePartNumberSecondPass(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	reconcile(t, r, part("AB100", "ACME"))
	out := reconcile(t, r, withAlternate(part("AB100", "ZEN"), "AB100-Z"))

	assert.Equal(t, StateAlternateLink, out.State)
	assert.Len(t, out.EntryIDs, 2)
	assert.Equal(t, 2, out.Links)

	entries := store.Entries()
	require.Len(t, entries, 3)
	acme, zen, sub := entries[0], entries[1], entries[2]
	assert.Equal(t, "AB100-Z", sub.PartNumber)
	assert.Equal(t, zen.ManufacturerID, sub.ManufacturerID)
	assert.Equal(t, DefaultAlternateTag, sub.Provenance)

	links := store.Links()
	require.Len(t, links, 2)
	assert.Equal(t, MemoryLink{ID: links[0].ID, PrimaryID: acme.ID, AlternateID: zen.ID}, links[0])
	assert.Equal(t, MemoryLink{ID: links[1].ID, PrimaryID: zen.ID, AlternateID: sub.ID}, links[1])
}

func TestReconcile_RecursionStopsAtDepthOne(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	reconcile(t, r, part("AB100", "ACME"))
	// The substitute AB100-Z exists under ACME, so it is itself a part
	// number with alternates; the second pass must still stop after one row.
	reconcile(t, r, part("AB100-Z", "ACME"))
	before := len(store.Entries())

	out := reconcile(t, r, withAlternate(part("AB100", "ZEN"), "AB100-Z"))

	assert.LessOrEqual(t, len(out.EntryIDs), 2)
	assert.LessOrEqual(t, out.Links, 2)
	assert.Len(t, store.Entries(), before+2)
	assert.Len(t, store.Links(), 2)
}

func TestReconcile_SecondPassSkippedWhenCombinationExists(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	reconcile(t, r, part("AB100", "ACME"))
	reconcile(t, r, part("AB100-Z", "ZEN"))

	out := reconcile(t, r, withAlternate(part("AB100", "ZEN"), "AB100-Z"))

	assert.Equal(t, StateAlternateLink, out.State)
	assert.Len(t, out.EntryIDs, 1)
	assert.Equal(t, 1, out.Links)
	assert.Equal(t, 1, out.SkippedAlternates)
	assert.Len(t, store.Entries(), 3)
}

func TestReconcile_PrimaryIsLowestKey(t *testing.T) {
	mem := NewMemoryStore()
	seed := NewReconciler(mem, "", discardLogger())
	reconcile(t, seed, part("AB100", "ACME"))
	reconcile(t, seed, part("AB100", "BETA"))

	r := NewReconciler(reversedStore{mem}, "", discardLogger())
	out := reconcile(t, r, part("AB100", "ZEN"))
	require.Equal(t, StateAlternateLink, out.State)

	entries := mem.Entries()
	links := mem.Links()
	require.Len(t, links, 2)
	assert.Equal(t, entries[0].ID, links[1].PrimaryID, "primary must be the lowest existing key")
	assert.Equal(t, out.EntryIDs[0], links[1].AlternateID)
}

func TestReconcile_ReusesReferences(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())

	reconcile(t, r, part("P1", "ACME"))
	reconcile(t, r, part("P2", "ACME"))
	reconcile(t, r, part("P3", "ZEN"))

	assert.Equal(t, []string{"ACME", "ZEN"}, store.Manufacturers())
	assert.Equal(t, []string{"EA"}, store.UnitsOfMeasure())
}

func TestReconcile_Failures(t *testing.T) {
	boom := errors.New("boom")

	tests := []struct {
		name     string
		faultOp  string
		seed     bool
		wantKind error
	}{
		{"manufacturer lookup", OpFindManufacturer, false, ErrResolution},
		{"manufacturer insert", OpInsertManufacturer, false, ErrResolution},
		{"unit of measure insert", OpInsertUnitOfMeasure, false, ErrResolution},
		{"part lookup", OpFindParts, false, ErrResolution},
		{"entry insert", OpInsertEntry, false, ErrInsert},
		{"link insert", OpInsertLink, true, ErrInsert},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			r := NewReconciler(store, "", discardLogger())
			if tt.seed {
				reconcile(t, r, part("AB100", "ACME"))
			}

			store.SetFault(func(op, key string) error {
				if op == tt.faultOp {
					return boom
				}
				return nil
			})

			_, err := r.Reconcile(context.Background(), part("AB100", "ZEN"))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantKind)
			assert.ErrorIs(t, err, boom)
		})
	}
}

func TestReferenceResolver(t *testing.T) {
	store := NewMemoryStore()
	res := NewReferenceResolver(store)
	ctx := context.Background()

	id1, err := res.Manufacturer(ctx, "ACME")
	require.NoError(t, err)
	id2, err := res.Manufacturer(ctx, "ACME")
	require.NoError(t, err)
	assert.Equal(t, id1, id2)

	long := strings.Repeat("Q", 30)
	_, err = res.Manufacturer(ctx, long)
	require.NoError(t, err)
	assert.Equal(t, []string{"ACME", strings.Repeat("Q", MaxManufacturerCodeLen-1)}, store.Manufacturers())

	// units of measure are not truncated
	uom := strings.Repeat("U", 30)
	_, err = res.UnitOfMeasure(ctx, uom)
	require.NoError(t, err)
	assert.Equal(t, []string{uom}, store.UnitsOfMeasure())
}

func TestDuplicateGuard(t *testing.T) {
	store := NewMemoryStore()
	r := NewReconciler(store, "", discardLogger())
	reconcile(t, r, part("AB100", "ACME"))
	acmeID := store.Entries()[0].ManufacturerID

	g := NewDuplicateGuard(store)
	ctx := context.Background()

	ok, err := g.Exists(ctx, "AB100", acmeID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = g.Exists(ctx, "AB100", acmeID+100)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = g.Exists(ctx, "ZZ999", acmeID)
	require.NoError(t, err)
	assert.False(t, ok)
}

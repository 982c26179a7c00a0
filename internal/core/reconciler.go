package core

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
)

// DefaultAlternateTag marks catalog rows created as alternates.
const DefaultAlternateTag = "OCDIA"

// Reconciler decides, per record, whether it is a new catalog entry, a
// duplicate of an existing one, or an alternate of an entry registered
// under another manufacturer, and writes the result through its store.
type Reconciler struct {
	store    Store
	resolver *ReferenceResolver
	guard    *DuplicateGuard
	tag      string
	logger   *slog.Logger
}

// NewReconciler builds a reconciler writing alternate rows with the given
// provenance tag. An empty tag falls back to DefaultAlternateTag.
func NewReconciler(store Store, alternateTag string, logger *slog.Logger) *Reconciler {
	if alternateTag == "" {
		alternateTag = DefaultAlternateTag
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		store:    store,
		resolver: NewReferenceResolver(store),
		guard:    NewDuplicateGuard(store),
		tag:      alternateTag,
		logger:   logger,
	}
}

// Reconcile processes one record. On error the returned Outcome reflects
// whatever was written before the failure; callers roll that back.
func (r *Reconciler) Reconcile(ctx context.Context, rec ProductRecord) (Outcome, error) {
	mfgID, err := r.resolver.Manufacturer(ctx, rec.ManufacturerCode)
	if err != nil {
		return Outcome{}, err
	}

	pn := Truncate(rec.PartNumber, MaxPartNumberLen)
	matches, err := r.store.FindPartsByNumber(ctx, pn)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: find parts %q: %w", ErrResolution, pn, err)
	}

	if len(matches) == 0 {
		return r.insertNew(ctx, rec, mfgID)
	}

	// Ascending key order: the primary is the lowest key, and if two
	// entries share a manufacturer the later (higher) one is kept.
	sorted := make([]CatalogMatch, len(matches))
	copy(sorted, matches)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	byMfg := make(map[int64]CatalogMatch, len(sorted))
	for _, m := range sorted {
		byMfg[m.ManufacturerID] = m
	}

	if existing, ok := byMfg[mfgID]; ok {
		r.logger.Info("part already in catalog",
			"part_number", pn,
			"manufacturer", rec.ManufacturerCode,
			"entry_id", existing.ID,
		)
		return Outcome{State: StateDuplicateSkip}, nil
	}

	out := Outcome{State: StateAlternateLink}
	primary := sorted[0]

	created, err := r.linkAlternate(ctx, &out, rec, rec.PartNumber, primary.ID, mfgID)
	if err != nil {
		return out, err
	}

	// The declared substitute is registered once, as an alternate of the
	// row just created. It never triggers a further pass.
	if created != 0 && rec.HasAlternate() {
		if _, err := r.linkAlternate(ctx, &out, rec, rec.AlternatePartNumber, created, mfgID); err != nil {
			return out, err
		}
	}

	return out, nil
}

func (r *Reconciler) insertNew(ctx context.Context, rec ProductRecord, mfgID int64) (Outcome, error) {
	uomID, err := r.resolver.UnitOfMeasure(ctx, rec.UnitOfMeasureCode)
	if err != nil {
		return Outcome{}, err
	}

	id, err := r.store.InsertCatalogEntry(ctx, r.entry(rec, rec.PartNumber, mfgID, uomID, ""))
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: catalog entry %q: %w", ErrInsert, rec.PartNumber, err)
	}

	r.logger.Debug("catalog entry created", "part_number", rec.PartNumber, "entry_id", id)
	return Outcome{State: StateNew, EntryIDs: []int64{id}}, nil
}

// linkAlternate registers partNumber under mfgID as an alternate of
// primaryID. It returns the new entry key, or 0 when the combination
// already existed and nothing was written.
func (r *Reconciler) linkAlternate(ctx context.Context, out *Outcome, rec ProductRecord, partNumber string, primaryID, mfgID int64) (int64, error) {
	uomID, err := r.resolver.UnitOfMeasure(ctx, rec.UnitOfMeasureCode)
	if err != nil {
		return 0, err
	}

	pn := Truncate(partNumber, MaxPartNumberLen)
	exists, err := r.guard.Exists(ctx, pn, mfgID)
	if err != nil {
		return 0, err
	}
	if exists {
		r.logger.Debug("alternate already in catalog", "part_number", pn, "manufacturer", rec.ManufacturerCode)
		out.SkippedAlternates++
		return 0, nil
	}

	id, err := r.store.InsertCatalogEntry(ctx, r.entry(rec, pn, mfgID, uomID, r.tag))
	if err != nil {
		return 0, fmt.Errorf("%w: alternate entry %q: %w", ErrInsert, pn, err)
	}
	out.EntryIDs = append(out.EntryIDs, id)

	if _, err := r.store.InsertAlternateLink(ctx, primaryID, id); err != nil {
		return 0, fmt.Errorf("%w: alternate link %d -> %d: %w", ErrInsert, primaryID, id, err)
	}
	out.Links++

	r.logger.Debug("alternate linked", "part_number", pn, "primary_id", primaryID, "entry_id", id)
	return id, nil
}

func (r *Reconciler) entry(rec ProductRecord, partNumber string, mfgID, uomID int64, provenance string) NewCatalogEntry {
	n := normalizePart(partNumber, rec.Description)
	return NewCatalogEntry{
		PartNumber:       n.PartNumber,
		PartNumberUpper:  n.PartNumberUpper,
		Description:      n.Description,
		DescriptionUpper: n.DescriptionUpper,
		ManufacturerID:   mfgID,
		UnitOfMeasureID:  uomID,
		Notes:            rec.Note,
		Provenance:       provenance,
	}
}

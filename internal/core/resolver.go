package core

import (
	"context"
	"fmt"
)

// ReferenceResolver maps manufacturer and unit-of-measure codes to keys,
// creating reference rows the first time a code is seen.
//
// Lookup and insert are separate statements. That is safe only while a
// single writer imports into the store; the unique constraints on both
// reference tables turn a lost race into a per-record failure.
type ReferenceResolver struct {
	store Store
}

// NewReferenceResolver returns a resolver over store.
func NewReferenceResolver(store Store) *ReferenceResolver {
	return &ReferenceResolver{store: store}
}

// Manufacturer returns the key for code, truncated to the manufacturer capacity.
func (r *ReferenceResolver) Manufacturer(ctx context.Context, code string) (int64, error) {
	code = Truncate(code, MaxManufacturerCodeLen)

	id, found, err := r.store.FindManufacturer(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: find manufacturer %q: %w", ErrResolution, code, err)
	}
	if found {
		return id, nil
	}

	id, err = r.store.InsertManufacturer(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: insert manufacturer %q: %w", ErrResolution, code, err)
	}
	return id, nil
}

// UnitOfMeasure returns the key for code. Codes are stored untruncated.
func (r *ReferenceResolver) UnitOfMeasure(ctx context.Context, code string) (int64, error) {
	id, found, err := r.store.FindUnitOfMeasure(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: find unit of measure %q: %w", ErrResolution, code, err)
	}
	if found {
		return id, nil
	}

	id, err = r.store.InsertUnitOfMeasure(ctx, code)
	if err != nil {
		return 0, fmt.Errorf("%w: insert unit of measure %q: %w", ErrResolution, code, err)
	}
	return id, nil
}

package core

import (
	"context"
	"fmt"
)

// DuplicateGuard checks whether a (part number, manufacturer) combination
// is already in the catalog. It only gates alternate-row creation.
type DuplicateGuard struct {
	store Store
}

// NewDuplicateGuard returns a guard over store.
func NewDuplicateGuard(store Store) *DuplicateGuard {
	return &DuplicateGuard{store: store}
}

// Exists expects an already truncated part number.
func (g *DuplicateGuard) Exists(ctx context.Context, partNumber string, manufacturerID int64) (bool, error) {
	matches, err := g.store.FindPartsByNumber(ctx, partNumber)
	if err != nil {
		return false, fmt.Errorf("%w: find parts %q: %w", ErrResolution, partNumber, err)
	}
	for _, m := range matches {
		if m.ManufacturerID == manufacturerID {
			return true, nil
		}
	}
	return false, nil
}

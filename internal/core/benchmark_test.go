package core

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

// ============================================================================
// Normalization Benchmarks
// ============================================================================

// BenchmarkTruncate covers the three length limits applied to every record.
func BenchmarkTruncate(b *testing.B) {
	testCases := []struct {
		value string
		max   int
	}{
		{"AB100", MaxPartNumberLen},
		{strings.Repeat("X", 64), MaxPartNumberLen},
		{"Hex bolt, stainless, 10mm", MaxDescriptionLen},
		{strings.Repeat("é", 80), MaxDescriptionLen}, // multi-byte runes
		{"ACME AEROSPACE COMPONENTS", MaxManufacturerCodeLen},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, tc := range testCases {
			Truncate(tc.value, tc.max)
		}
	}
}

// BenchmarkProductSet_Add measures structural deduplication of source rows.
func BenchmarkProductSet_Add(b *testing.B) {
	recs := make([]ProductRecord, 1000)
	for i := range recs {
		recs[i] = ProductRecord{
			PartNumber:        fmt.Sprintf("P%04d", i/2),
			ManufacturerCode:  fmt.Sprintf("M%d", i%2),
			UnitOfMeasureCode: "EA",
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		set := NewProductSet()
		for _, r := range recs {
			set.Add(r)
		}
	}
}

// ============================================================================
// Persistence Benchmarks
// ============================================================================

func benchRecords(n, manufacturers int) []ProductRecord {
	recs := make([]ProductRecord, n)
	for i := range recs {
		recs[i] = ProductRecord{
			PartNumber:        fmt.Sprintf("P%05d", i/manufacturers),
			Description:       "benchmark part",
			ManufacturerCode:  fmt.Sprintf("MFG%d", i%manufacturers),
			UnitOfMeasureCode: "EA",
		}
	}
	return recs
}

// BenchmarkPersister_AllNew is the common case: every record is a new part.
func BenchmarkPersister_AllNew(b *testing.B) {
	recs := benchRecords(1000, 1)
	logger := discardLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewPersister(NewMemoryStore(), PersisterOptions{}, logger).Run(context.Background(), recs)
	}
}

// BenchmarkPersister_Alternates exercises the alternate path: each part
// number is carried by three manufacturers.
func BenchmarkPersister_Alternates(b *testing.B) {
	recs := benchRecords(1000, 3)
	logger := discardLogger()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		NewPersister(NewMemoryStore(), PersisterOptions{}, logger).Run(context.Background(), recs)
	}
}

// BenchmarkMapError measures error classification for failure reports.
func BenchmarkMapError(b *testing.B) {
	errs := []error{
		fmt.Errorf("%w: catalog entry %q: value too long", ErrInsert, "AB100"),
		fmt.Errorf("%w: dial tcp: connection refused", ErrConnection),
		fmt.Errorf("something nobody expected"),
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		for _, err := range errs {
			MapError(err)
		}
	}
}

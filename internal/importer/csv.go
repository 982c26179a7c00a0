package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	"github.com/JonMunkholm/catalogimport/internal/config"
)

// newCSVReader strips a UTF-8 BOM and replaces invalid UTF-8 with U+FFFD.
// The replacer runs after BOM handling: BOMOverride drops to a no-op
// transformer once it has consumed a BOM.
func newCSVReader(r io.Reader) *csv.Reader {
	decoder := transform.Chain(unicode.BOMOverride(transform.Nop), runes.ReplaceIllFormed())
	cr := csv.NewReader(transform.NewReader(r, decoder))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true
	return cr
}

func readCSV(ctx context.Context, path string, opts config.SourceConfig, b *builder) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	return parseCSV(ctx, file, opts, b)
}

func parseCSV(ctx context.Context, r io.Reader, opts config.SourceConfig, b *builder) error {
	cr := newCSVReader(r)

	rowNum := 0
	for {
		cells, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return fmt.Errorf("invalid csv: %w", err)
		}
		if err != nil {
			return fmt.Errorf("read csv: %w", err)
		}

		rowNum++
		if rowNum == 1 && opts.SkipHeader {
			continue
		}
		if rowNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if isBlankRow(cells) {
			continue
		}
		b.add(rowNum, cells)
	}
}

// Package importer reads product records from source files into a
// core.ProductSet.
//
// Supported sources are XLSX workbooks, CSV files and desktop catalog
// databases stored as SQLite files. Rows use the column order
//
//	part number, description, manufacturer, unit of measure, note, alternate
//
// and the alternate column is optional.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/JonMunkholm/catalogimport/internal/config"
	"github.com/JonMunkholm/catalogimport/internal/core"
)

// Format identifies a source file kind.
type Format string

const (
	FormatXLSX    Format = "xlsx"
	FormatCSV     Format = "csv"
	FormatDesktop Format = "desktop"
)

var (
	// ErrUnsupportedFormat is returned for file kinds with no reader.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoRecords is returned when a source yields no usable rows.
	ErrNoRecords = errors.New("no records found in source")
)

// Column positions within a source row.
const (
	colPartNumber = iota
	colDescription
	colManufacturer
	colUnitOfMeasure
	colNote
	colAlternate
)

// Source is the result of reading one file.
type Source struct {
	Format  Format
	Records *core.ProductSet

	// Rows counts data rows seen, excluding any header.
	Rows int

	// Skipped counts rows dropped for a blank part number.
	Skipped int

	// Repeated counts rows identical to an earlier row.
	Repeated int
}

// DetectFormat maps a file name to its Format by extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".sqlite", ".sqlite3", ".db":
		return FormatDesktop, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(name))
}

// ReadFile reads the file at path. The format is taken from name, which
// may differ from path when the file is an upload spooled to disk.
func ReadFile(ctx context.Context, path, name string, opts config.SourceConfig, logger *slog.Logger) (*Source, error) {
	format, err := DetectFormat(name)
	if err != nil {
		return nil, err
	}

	b := newBuilder(format, opts, logger.With("file", name, "format", format))

	switch format {
	case FormatXLSX:
		err = readXLSX(ctx, path, opts, b)
	case FormatCSV:
		err = readCSV(ctx, path, opts, b)
	case FormatDesktop:
		err = readDesktop(ctx, path, opts, b)
	}
	if err != nil {
		return nil, err
	}

	if b.src.Records.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrNoRecords)
	}

	b.logger.Info("source read",
		"rows", b.src.Rows,
		"records", b.src.Records.Len(),
		"part_numbers", len(b.src.Records.PartNumbers()),
		"skipped", b.src.Skipped,
		"repeated", b.src.Repeated,
	)
	return b.src, nil
}

// builder turns raw rows into records.
type builder struct {
	src        *Source
	defaultUOM string
	logger     *slog.Logger
}

func newBuilder(format Format, opts config.SourceConfig, logger *slog.Logger) *builder {
	return &builder{
		src:        &Source{Format: format, Records: core.NewProductSet()},
		defaultUOM: strings.TrimSpace(opts.DefaultUOM),
		logger:     logger,
	}
}

// add converts one row. rowNum is 1-based and used only for logging.
func (b *builder) add(rowNum int, cells []string) {
	b.src.Rows++

	rec, ok := b.record(cells)
	if !ok {
		b.src.Skipped++
		b.logger.Warn("skipping row without part number", "row", rowNum)
		return
	}
	if !b.src.Records.Add(rec) {
		b.src.Repeated++
	}
}

func (b *builder) record(cells []string) (core.ProductRecord, bool) {
	raw := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}
	key := func(i int) string {
		return strings.TrimSpace(raw(i))
	}

	// Only the lookup keys are trimmed; text fields are stored as read.
	rec := core.ProductRecord{
		PartNumber:          key(colPartNumber),
		Description:         raw(colDescription),
		ManufacturerCode:    key(colManufacturer),
		UnitOfMeasureCode:   raw(colUnitOfMeasure),
		Note:                raw(colNote),
		AlternatePartNumber: key(colAlternate),
	}
	if rec.PartNumber == "" {
		return rec, false
	}
	if strings.TrimSpace(rec.UnitOfMeasureCode) == "" {
		rec.UnitOfMeasureCode = b.defaultUOM
	}
	return rec, true
}

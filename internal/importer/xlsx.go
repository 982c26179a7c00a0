package importer

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/catalogimport/internal/config"
)

func readXLSX(ctx context.Context, path string, opts config.SourceConfig, b *builder) error {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := opts.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return fmt.Errorf("open workbook: %w", ErrNoRecords)
		}
		sheet = sheets[0]
	}

	rows, err := f.Rows(sheet)
	if err != nil {
		return fmt.Errorf("open workbook sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	rowNum := 0
	for rows.Next() {
		rowNum++
		if rowNum == 1 && opts.SkipHeader {
			continue
		}
		if rowNum%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		cells, err := rows.Columns()
		if err != nil {
			return fmt.Errorf("read sheet %q row %d: %w", sheet, rowNum, err)
		}
		if isBlankRow(cells) {
			continue
		}
		b.add(rowNum, cells)
	}
	return rows.Error()
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if c != "" {
			return false
		}
	}
	return true
}

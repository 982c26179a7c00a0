package importer

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JonMunkholm/catalogimport/internal/config"
)

// readDesktop runs the configured query against a desktop catalog
// database opened read-only. The query must return six text columns in
// row order.
func readDesktop(ctx context.Context, path string, opts config.SourceConfig, b *builder) error {
	query := opts.DesktopQuery
	if query == "" {
		query = config.DefaultDesktopQuery
	}

	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return fmt.Errorf("open desktop database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("open desktop database: %w", err)
	}

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("query desktop database: %w", err)
	}
	defer rows.Close()

	rowNum := 0
	for rows.Next() {
		rowNum++
		var cols [6]sql.NullString
		if err := rows.Scan(&cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5]); err != nil {
			return fmt.Errorf("read desktop row %d: %w", rowNum, err)
		}

		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = c.String
		}
		b.add(rowNum, cells)
	}
	return rows.Err()
}

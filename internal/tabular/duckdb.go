// Package tabular backs the TableStore contract with an embedded DuckDB
// file. Each table holds one canonical row per record, JSON-encoded
// alongside its position, so reads come back in write order.
package tabular

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/agenthands/graphbridge/internal/rows"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (creating if needed) a DuckDB database at path. An empty path
// opens an in-memory database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open tabular store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ReadTable returns all rows of a table in their stored order. A table that
// was never written reads as empty, not as an error.
func (s *Store) ReadTable(ctx context.Context, name string) ([]rows.Row, error) {
	if err := validTableName(name); err != nil {
		return nil, err
	}
	if ok, err := s.tableExists(ctx, name); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}

	result, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT doc FROM %q ORDER BY pos`, name))
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", name, err)
	}
	defer result.Close()

	var out []rows.Row
	for result.Next() {
		var doc string
		if err := result.Scan(&doc); err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}
		var r rows.Row
		if err := json.Unmarshal([]byte(doc), &r); err != nil {
			return nil, fmt.Errorf("read table %s: decode row: %w", name, err)
		}
		out = append(out, r)
	}
	return out, result.Err()
}

// WriteTable replaces the table contents atomically.
func (s *Store) WriteTable(ctx context.Context, name string, rs []rows.Row) error {
	if err := validTableName(name); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %q (pos BIGINT, doc VARCHAR)`, name)); err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %q`, name)); err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}

	insert := fmt.Sprintf(`INSERT INTO %q (pos, doc) VALUES (?, ?)`, name)
	for i := range rs {
		doc, err := json.Marshal(rs[i])
		if err != nil {
			return fmt.Errorf("write table %s: encode row %d: %w", name, i, err)
		}
		if _, err := tx.ExecContext(ctx, insert, i, string(doc)); err != nil {
			return fmt.Errorf("write table %s: row %d: %w", name, i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write table %s: %w", name, err)
	}
	s.logger.Debug("wrote table", "table", name, "rows", len(rs))
	return nil
}

func (s *Store) tableExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM information_schema.tables WHERE table_name = ?`, name).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check table %s: %w", name, err)
	}
	return count > 0, nil
}

func validTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// Package export writes overlap-query results into a DuckDB database so
// they can be joined and aggregated with SQL.
package export

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"os"
	"path/filepath"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/hgidx/internal/bed"
)

// Store manages a DuckDB connection holding exported interval results.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path. Use an empty
// string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS intervals (
		chrom VARCHAR,
		start_pos BIGINT,
		end_pos BIGINT,
		rest VARCHAR
	)`)
	return err
}

// WriteRecords batch-inserts records using the Appender API.
func (s *Store) WriteRecords(records []bed.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "intervals")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		if err := appender.AppendRow(r.Chrom, int64(r.Start), int64(r.End), r.Rest); err != nil {
			return fmt.Errorf("append interval %s:%d-%d: %w", r.Chrom, r.Start, r.End, err)
		}
	}
	return appender.Flush()
}

// Count returns the number of exported intervals.
func (s *Store) Count() (int64, error) {
	var n int64
	err := s.db.QueryRow(`SELECT count(*) FROM intervals`).Scan(&n)
	return n, err
}

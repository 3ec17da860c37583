// Package store implements core.Store over SQLite and PostgreSQL.
//
// Every store owns its connection: Close releases it and rolls back any
// transaction that was not committed.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/JonMunkholm/etl/internal/core"

	// sqlite driver registered as "sqlite".
	_ "modernc.org/sqlite"
)

// SQLStore is a core.Store over database/sql.
type SQLStore struct {
	db      *sql.DB
	dialect core.Dialect
	tx      *sql.Tx
	closed  bool
}

// NewSQLStore wraps db. The store takes ownership of db.
func NewSQLStore(db *sql.DB, dialect core.Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// OpenSQLite opens the SQLite database file at path, creating it if needed.
func OpenSQLite(ctx context.Context, path string) (*SQLStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps the transaction and later reads on the same
	// SQLite handle.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	return NewSQLStore(db, core.DialectSQLite), nil
}

func (s *SQLStore) Dialect() core.Dialect { return s.dialect }

// Query runs query inside the open transaction, if any.
func (s *SQLStore) Query(ctx context.Context, query string, args ...any) (core.Rows, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if s.tx != nil {
		rows, err = s.tx.QueryContext(ctx, query, args...)
	} else {
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, err
	}

	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &sqlRows{rows: rows, columns: columns}, nil
}

func (s *SQLStore) Exec(ctx context.Context, stmt string, args ...any) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, stmt, args...)
	return err
}

// ExecBatch prepares stmt once and executes it for every row.
func (s *SQLStore) ExecBatch(ctx context.Context, stmt string, batch [][]core.Value) error {
	tx, err := s.begin(ctx)
	if err != nil {
		return err
	}

	prepared, err := tx.PrepareContext(ctx, stmt)
	if err != nil {
		return err
	}
	defer prepared.Close()

	for i, row := range batch {
		if _, err := prepared.ExecContext(ctx, core.Args(row)...); err != nil {
			return fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return nil
}

// Commit commits the open transaction. Without one it does nothing.
func (s *SQLStore) Commit(ctx context.Context) error {
	if s.tx == nil {
		return nil
	}
	tx := s.tx
	s.tx = nil
	return tx.Commit()
}

// Close rolls back uncommitted work and closes the database. It is safe to
// call more than once.
func (s *SQLStore) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var errs []error
	if s.tx != nil {
		if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		s.tx = nil
	}
	if err := s.db.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (s *SQLStore) begin(ctx context.Context) (*sql.Tx, error) {
	if s.closed {
		return nil, errors.New("store is closed")
	}
	if s.tx != nil {
		return s.tx, nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	s.tx = tx
	return tx, nil
}

// sqlRows adapts *sql.Rows to core.Rows.
type sqlRows struct {
	rows    *sql.Rows
	columns []string
}

func (r *sqlRows) Columns() []string { return r.columns }

func (r *sqlRows) Next() bool { return r.rows.Next() }

func (r *sqlRows) Values() ([]core.Value, error) {
	raw := make([]any, len(r.columns))
	ptrs := make([]any, len(raw))
	for i := range raw {
		ptrs[i] = &raw[i]
	}
	if err := r.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return core.ValuesOf(raw), nil
}

func (r *sqlRows) Err() error { return r.rows.Err() }

func (r *sqlRows) Close() error { return r.rows.Close() }

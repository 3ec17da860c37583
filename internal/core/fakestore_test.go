package core

import (
	"context"
	"errors"
)

// fakeStore records statements and serves canned query results.
type fakeStore struct {
	dialect   Dialect
	columns   []string
	rows      [][]Value
	queryErr  error
	execErr   error
	closeErr  error
	execs     []string
	batches   map[string][][]Value
	committed bool
	closed    int
}

func newFakeStore(columns []string, rows ...[]Value) *fakeStore {
	return &fakeStore{columns: columns, rows: rows, batches: map[string][][]Value{}}
}

func (s *fakeStore) Dialect() Dialect { return s.dialect }

func (s *fakeStore) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return &fakeRows{columns: s.columns, rows: s.rows, pos: -1}, nil
}

func (s *fakeStore) Exec(ctx context.Context, stmt string, args ...any) error {
	s.execs = append(s.execs, stmt)
	return s.execErr
}

func (s *fakeStore) ExecBatch(ctx context.Context, stmt string, batch [][]Value) error {
	s.execs = append(s.execs, stmt)
	s.batches[stmt] = append(s.batches[stmt], batch...)
	return s.execErr
}

func (s *fakeStore) Commit(ctx context.Context) error {
	s.committed = true
	return nil
}

func (s *fakeStore) Close() error {
	s.closed++
	return s.closeErr
}

type fakeRows struct {
	columns []string
	rows    [][]Value
	pos     int
}

func (r *fakeRows) Columns() []string { return r.columns }

func (r *fakeRows) Next() bool {
	r.pos++
	return r.pos < len(r.rows)
}

func (r *fakeRows) Values() ([]Value, error) {
	if r.pos < 0 || r.pos >= len(r.rows) {
		return nil, errors.New("no current row")
	}
	return r.rows[r.pos], nil
}

func (r *fakeRows) Err() error { return nil }

func (r *fakeRows) Close() error { return nil }

package core

import (
	"context"
	"strconv"
	"strings"
)

// Store is the relational store a conversion runs against.
// Satisfied by *store.SQLStore and *store.PgStore.
//
// Writes open a transaction lazily; Query reads through that transaction
// when one is open so an operation sees its own inserts. Close rolls back
// anything not committed.
type Store interface {
	Dialect() Dialect
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, stmt string, args ...any) error
	ExecBatch(ctx context.Context, stmt string, batch [][]Value) error
	Commit(ctx context.Context) error
	Close() error
}

// Rows iterates a query result row by row.
type Rows interface {
	Columns() []string
	Next() bool
	Values() ([]Value, error)
	Err() error
	Close() error
}

// Dialect captures the SQL differences between supported stores.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

func (d Dialect) String() string {
	switch d {
	case DialectPostgres:
		return "postgres"
	default:
		return "sqlite"
	}
}

// Placeholder returns the bind parameter for 1-based position n.
func (d Dialect) Placeholder(n int) string {
	if d == DialectPostgres {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

// Placeholders returns n comma-separated bind parameters.
func (d Dialect) Placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// ColumnTypeName returns the DDL type name for an inferred column type.
func (d Dialect) ColumnTypeName(t ColumnType) string {
	if d == DialectPostgres {
		switch t {
		case TypeInteger:
			return "BIGINT"
		case TypeReal:
			return "DOUBLE PRECISION"
		default:
			return "TEXT"
		}
	}
	return t.String()
}

// quoteIdentifier quotes a SQL identifier to prevent injection.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// quoteIdentifiers quotes each name and joins them with ", ".
func quoteIdentifiers(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quoteIdentifier(n)
	}
	return strings.Join(quoted, ", ")
}

// ColumnType is the storage type inferred for a created column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeInteger
	TypeReal
)

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// ColumnData is one named column of values, the input unit for table creation.
type ColumnData struct {
	Name   string
	Values []Value
}

// ColumnDef is a column name paired with its inferred storage type.
type ColumnDef struct {
	Name string
	Type ColumnType
}

// Shape selects the JSON layout produced by the exporter.
type Shape string

const (
	ShapeList  Shape = "list"  // array of records
	ShapeKeyed Shape = "keyed" // object keyed by one column's values
)

// JSONOptions configures ResultToJSON.
type JSONOptions struct {
	Shape     Shape
	KeyColumn string // required for ShapeKeyed
}

// CSVImportOptions configures CSVToTable.
type CSVImportOptions struct {
	// UniqueColumn, when set, skips rows whose value in this column already
	// exists in the target table. Existing values are loaded once up front.
	UniqueColumn string
}

// ImportResult summarises a completed import.
type ImportResult struct {
	Table    string
	Rows     int   // data rows read from the file
	Inserted int   // rows sent to the store
	Skipped  int   // rows dropped by the unique-column check
	Bytes    int64 // bytes read from the file
}

// HeaderIndex maps column names to their position in a header row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// The first occurrence of a repeated name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		if _, seen := idx[h]; !seen {
			idx[h] = i
		}
	}
	return idx
}

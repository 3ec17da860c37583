package core

// schema.go creates a table from named columns of values.
//
// Column types come from the first value of each column; later values are
// not consulted. An empty column gets TEXT.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/JonMunkholm/etl/internal/logging"
)

// InferType maps a value to the column type that can hold it.
func InferType(v Value) ColumnType {
	switch v.Kind() {
	case KindInteger:
		return TypeInteger
	case KindReal:
		return TypeReal
	default:
		return TypeText
	}
}

// InferColumns returns one definition per column, typed from its first value.
func InferColumns(columns []ColumnData) ([]ColumnDef, error) {
	if err := validateColumnLengths("infer columns", columns); err != nil {
		return nil, err
	}
	return inferDefs(columns), nil
}

func inferDefs(columns []ColumnData) []ColumnDef {
	defs := make([]ColumnDef, len(columns))
	for i, col := range columns {
		typ := TypeText
		if len(col.Values) > 0 {
			typ = InferType(col.Values[0])
		}
		defs[i] = ColumnDef{Name: col.Name, Type: typ}
	}
	return defs
}

// CreateTableFromColumns creates table if it does not exist and inserts
// the columns' values row by row: row i holds the i-th value of every
// column. Lengths are checked before any statement is sent.
func CreateTableFromColumns(ctx context.Context, columns []ColumnData, store Store, table string) (err error) {
	const op = "create table"
	defer closeStore(op, store, &err)

	ctx = logging.WithOperation(ctx, op)
	logger := logging.WithFields(ctx, "table", table)

	if err := validateColumnLengths(op, columns); err != nil {
		logger.Warn("create table rejected", "error", err)
		return err
	}
	defs := inferDefs(columns)

	dialect := store.Dialect()
	if err := store.Exec(ctx, createTableSQL(dialect, table, defs)); err != nil {
		return storeFailure(op, "create "+table, err)
	}

	rows := transpose(columns)
	names := make([]string, len(columns))
	for i, col := range columns {
		names[i] = col.Name
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdentifier(table), quoteIdentifiers(names), dialect.Placeholders(len(columns)))

	if err := insertAndCommit(ctx, store, stmt, rows); err != nil {
		return storeFailure(op, "insert", err)
	}

	logger.Info("table created", "columns", len(defs), "rows", len(rows))
	return nil
}

func createTableSQL(d Dialect, table string, defs []ColumnDef) string {
	parts := make([]string, len(defs))
	for i, def := range defs {
		parts[i] = quoteIdentifier(def.Name) + " " + d.ColumnTypeName(def.Type)
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdentifier(table), strings.Join(parts, ", "))
}

// transpose turns equal-length columns into rows.
func transpose(columns []ColumnData) [][]Value {
	n := len(columns[0].Values)
	rows := make([][]Value, n)
	for i := range rows {
		row := make([]Value, len(columns))
		for j, col := range columns {
			row[j] = col.Values[i]
		}
		rows[i] = row
	}
	return rows
}

// ColumnsFromJSON reads an object mapping column names to arrays of values,
// keeping the order the columns appear in.
func ColumnsFromJSON(r io.Reader) ([]ColumnData, error) {
	const op = "load columns"

	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, ioFailure(op, "parse json", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, invalidArgument(op, "expected an object of columns")
	}

	var columns []ColumnData
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, ioFailure(op, "parse json", err)
		}
		name := tok.(string)

		var raw []any
		if err := dec.Decode(&raw); err != nil {
			return nil, ioFailure(op, "parse json column "+name, err)
		}
		columns = append(columns, ColumnData{Name: name, Values: ValuesOf(raw)})
	}
	if _, err := dec.Token(); err != nil {
		return nil, ioFailure(op, "parse json", err)
	}
	return columns, nil
}

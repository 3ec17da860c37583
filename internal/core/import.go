package core

// import.go loads CSV and JSON files into an existing table.
//
// Both importers read and check the whole file before the first insert,
// send every row in one batch and commit once. The file and the store are
// released on every exit path; a failure before the commit leaves the
// table as it was because closing the store rolls back.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/etl/internal/logging"
)

// CSVToTable inserts the rows of the CSV file at path into table.
//
// The first line is the header; its length sets the number of bind
// parameters and is not checked against the table's schema, so the CSV
// column order must match the table. With opts.UniqueColumn set, rows whose
// value in that column already exists in the table are skipped; existing
// values are read once before inserting.
func CSVToTable(ctx context.Context, path string, store Store, table string, opts CSVImportOptions) (result ImportResult, err error) {
	const op = "csv import"
	defer closeStore(op, store, &err)

	ctx = logging.WithOperation(ctx, op)
	logger := logging.WithFields(ctx, "table", table, "file", path)
	start := time.Now()
	result.Table = table

	src, err := openImportFile(op, path)
	if err != nil {
		return result, err
	}
	defer src.Close()

	headers, rows, err := parseCSV(src)
	if err != nil {
		return result, ioFailure(op, "parse csv "+path, err)
	}
	result.Rows = len(rows)
	result.Bytes = src.Bytes()

	if opts.UniqueColumn != "" {
		pos := headerPosition(headers, opts.UniqueColumn)
		if pos < 0 {
			return result, invalidArgument(op, "unique column %q not in CSV header", opts.UniqueColumn)
		}

		existing, err := loadColumnValues(ctx, store, table, opts.UniqueColumn)
		if err != nil {
			return result, storeFailure(op, "load existing values", err)
		}

		kept := rows[:0]
		for _, row := range rows {
			if _, dup := existing[row[pos].String()]; dup {
				result.Skipped++
				continue
			}
			kept = append(kept, row)
		}
		rows = kept
	}

	stmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)",
		quoteIdentifier(table), store.Dialect().Placeholders(len(headers)))

	if err := insertAndCommit(ctx, store, stmt, rows); err != nil {
		return result, storeFailure(op, "insert", err)
	}
	result.Inserted = len(rows)

	logger.Info("csv import complete",
		"rows", result.Rows,
		"inserted", result.Inserted,
		"skipped", result.Skipped,
		"bytes", result.Bytes,
		"duration", time.Since(start),
	)
	return result, nil
}

// JSONToTable inserts the records of the JSON file at path into table.
//
// The file must hold an object whose values are records; the outer keys
// are not stored. All records must have the same number of fields or
// nothing is inserted. When columns is non-empty every record must carry
// exactly those columns and values are inserted in that order; otherwise
// each record's values go in positionally, in the order they appear in the
// file, and must match the table's column order.
func JSONToTable(ctx context.Context, path string, store Store, table string, columns []string) (result ImportResult, err error) {
	const op = "json import"
	defer closeStore(op, store, &err)

	ctx = logging.WithOperation(ctx, op)
	logger := logging.WithFields(ctx, "table", table, "file", path)
	start := time.Now()
	result.Table = table

	src, err := openImportFile(op, path)
	if err != nil {
		return result, err
	}
	defer src.Close()

	keys, records, err := decodeKeyedRecords(src)
	if err != nil {
		if errors.Is(err, errListShape) {
			return result, NewError(KindInvalidArgument, op, path, err)
		}
		return result, ioFailure(op, "parse json "+path, err)
	}
	result.Rows = len(records)
	result.Bytes = src.Bytes()

	if err := validateRecords(op, records, keys, columns); err != nil {
		logger.Warn("json import rejected", "error", err)
		return result, err
	}
	if len(records) == 0 {
		logger.Info("json import complete", "rows", 0, "inserted", 0)
		return result, nil
	}

	width := len(records[0].Columns)
	rows := make([][]Value, len(records))
	for i, rec := range records {
		if len(columns) == 0 {
			rows[i] = rec.Values
			continue
		}
		row := make([]Value, len(columns))
		for j, col := range columns {
			row[j], _ = rec.Get(col)
		}
		rows[i] = row
	}

	target := quoteIdentifier(table)
	if len(columns) > 0 {
		target += " (" + quoteIdentifiers(columns) + ")"
	}
	stmt := fmt.Sprintf("INSERT INTO %s VALUES (%s)", target, store.Dialect().Placeholders(width))

	if err := insertAndCommit(ctx, store, stmt, rows); err != nil {
		return result, storeFailure(op, "insert", err)
	}
	result.Inserted = len(rows)

	logger.Info("json import complete",
		"rows", result.Rows,
		"inserted", result.Inserted,
		"bytes", result.Bytes,
		"duration", time.Since(start),
	)
	return result, nil
}

// parseCSV reads the header and every data row. Rows must have as many
// fields as the header.
func parseCSV(r io.Reader) ([]string, [][]Value, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, nil, err
	}

	var rows [][]Value
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make([]Value, len(record))
		for i, cell := range record {
			row[i] = Text(cell)
		}
		rows = append(rows, row)
	}
	return headers, rows, nil
}

// loadColumnValues returns the set of string forms of column's non-NULL
// values. NULL is left out so an empty CSV cell is never taken for it.
func loadColumnValues(ctx context.Context, store Store, table, column string) (map[string]struct{}, error) {
	query := fmt.Sprintf("SELECT %s FROM %s", quoteIdentifier(column), quoteIdentifier(table))
	rows, err := store.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if values[0].IsNull() {
			continue
		}
		set[values[0].String()] = struct{}{}
	}
	return set, rows.Err()
}

// insertAndCommit sends rows as one batch and commits. An empty batch
// still commits so the call ends in a known state.
func insertAndCommit(ctx context.Context, store Store, stmt string, rows [][]Value) error {
	if len(rows) > 0 {
		if err := store.ExecBatch(ctx, stmt, rows); err != nil {
			return err
		}
	}
	return store.Commit(ctx)
}

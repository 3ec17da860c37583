package core

// validation.go holds the shape checks that must pass before anything is
// written to the store:
//  1. JSON records: equal field counts, and the requested columns present
//  2. Column data: equal value counts across columns
//
// Every check runs over the whole input first so a bad record late in a
// file aborts the import with the table untouched.

import "fmt"

// ValidationError describes one shape problem.
type ValidationError struct {
	Field   string // record key or column name
	Message string
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// validateRecords checks that all records have the same field count and,
// when columns is non-empty, that each record carries exactly those columns.
func validateRecords(op string, records []Record, keys []string, columns []string) error {
	if len(records) == 0 {
		return nil
	}

	want := len(records[0].Columns)
	if len(columns) > 0 {
		want = len(columns)
	}

	for i, rec := range records {
		if got := len(rec.Columns); got != want {
			return NewError(KindSchemaMismatch, op, "invalid record", ValidationError{
				Field:   keys[i],
				Message: fmt.Sprintf("record has %d fields, expected %d", got, want),
			})
		}
		for _, col := range columns {
			if _, ok := rec.Get(col); !ok {
				return NewError(KindSchemaMismatch, op, "invalid record", ValidationError{
					Field:   keys[i],
					Message: fmt.Sprintf("record is missing column %q", col),
				})
			}
		}
	}
	return nil
}

// validateColumnLengths checks that every column holds the same number of values.
func validateColumnLengths(op string, columns []ColumnData) error {
	if len(columns) == 0 {
		return invalidArgument(op, "no columns given")
	}

	want := len(columns[0].Values)
	seen := make(map[string]bool, len(columns))
	for _, col := range columns {
		if col.Name == "" {
			return invalidArgument(op, "column name is empty")
		}
		if seen[col.Name] {
			return invalidArgument(op, "column %q given twice", col.Name)
		}
		seen[col.Name] = true

		if got := len(col.Values); got != want {
			return NewError(KindSchemaMismatch, op, "invalid column", ValidationError{
				Field:   col.Name,
				Message: fmt.Sprintf("column has %d values, expected %d", got, want),
			})
		}
	}
	return nil
}

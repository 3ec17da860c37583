// Package core converts tabular data between relational tables, CSV and JSON.
//
// The package holds all conversion logic independent of any store driver or
// command-line surface. Stores are reached through the [Store] interface;
// the store package provides SQLite and PostgreSQL implementations.
//
// # Operations
//
//   - [ResultToCSV] and [WriteCSV]: query result to CSV text
//   - [ResultToJSON] and [WriteJSON]: query result to a JSON list of records,
//     or to an object keyed by one column
//   - [CSVToTable]: CSV file rows into an existing table, optionally skipping
//     rows whose unique-column value is already stored
//   - [JSONToTable]: keyed JSON records into an existing table
//   - [CreateTableFromColumns]: named columns of values into a new table
//     whose column types are inferred from the data
//
// # Store Ownership
//
// Every operation takes ownership of the store it is given and closes it
// before returning, on success and on failure. Writes run in one transaction
// committed at the end; closing the store rolls back anything not committed,
// so a failed import leaves the target table unchanged.
//
// # Values
//
// Cells are [Value]s: exactly one of Null, Integer, Real or Text. Driver and
// JSON values are folded into this set by [ValueOf]. A Real always renders
// with a decimal point ("3.0"), so reals and integers stay distinct after a
// trip through text.
//
// # Errors
//
// Failures are [*Error] values classified by [ErrorKind] and matched with
// errors.Is against [ErrInvalidArgument], [ErrSchemaMismatch], [ErrIO] and
// [ErrStore]. Input is validated in full before any row is written.
//
// For display, [MapError] turns any error into a coded [UserMessage]:
//
//	if err := core.CSVToTable(ctx, path, st, "people", opts); err != nil {
//	    fmt.Fprintln(os.Stderr, core.FormatUserError(err))
//	}
package core

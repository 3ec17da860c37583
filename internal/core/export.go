package core

// export.go renders a query result as CSV or JSON text.
//
// Both exporters take ownership of the store: it is closed before they
// return, whatever the outcome.

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"strings"

	"github.com/JonMunkholm/etl/internal/logging"
)

// ParseShape maps a shape name to a Shape. "lod" and "dod" are accepted
// as aliases for list and keyed.
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "list", "lod":
		return ShapeList, nil
	case "keyed", "dod":
		return ShapeKeyed, nil
	default:
		return "", invalidArgument("json export", "unknown JSON shape %q", s)
	}
}

// ResultToCSV runs query and returns the result as CSV text: a header row
// of column names followed by one line per row.
func ResultToCSV(ctx context.Context, store Store, query string, args ...any) (string, error) {
	var buf bytes.Buffer
	if err := WriteCSV(ctx, &buf, store, query, args...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteCSV is ResultToCSV writing to w.
func WriteCSV(ctx context.Context, w io.Writer, store Store, query string, args ...any) (err error) {
	const op = "csv export"
	defer closeStore(op, store, &err)

	logger := logging.FromContext(ctx)

	rows, err := store.Query(ctx, query, args...)
	if err != nil {
		return storeFailure(op, "query", err)
	}
	defer rows.Close()

	out := bufio.NewWriter(w)
	writer := newCRLFWriter(out)

	headers := rows.Columns()
	if err := writer.Write(headers); err != nil {
		return ioFailure(op, "write header", err)
	}

	record := make([]string, len(headers))
	count := 0
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return storeFailure(op, "scan row", err)
		}
		for i, v := range values {
			record[i] = v.String()
		}
		if err := writer.Write(record); err != nil {
			return ioFailure(op, "write row", err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return storeFailure(op, "iterate rows", err)
	}

	if err := out.Flush(); err != nil {
		return ioFailure(op, "flush", err)
	}

	logger.Debug("csv export complete", "columns", len(headers), "rows", count)
	return nil
}

// ResultToJSON runs query and returns the result as JSON text.
//
// ShapeList yields an array of records. ShapeKeyed yields an object keyed
// by the string form of opts.KeyColumn, each value a record without that
// column. A key column that is not in the result, or that repeats a value,
// is an InvalidArgument error.
func ResultToJSON(ctx context.Context, store Store, query string, opts JSONOptions, args ...any) (string, error) {
	var buf bytes.Buffer
	if err := WriteJSON(ctx, &buf, store, query, opts, args...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteJSON is ResultToJSON writing to w. Nothing is written on error.
func WriteJSON(ctx context.Context, w io.Writer, store Store, query string, opts JSONOptions, args ...any) (err error) {
	const op = "json export"
	defer closeStore(op, store, &err)

	if opts.Shape == "" {
		opts.Shape = ShapeList
	}
	if opts.Shape != ShapeList && opts.Shape != ShapeKeyed {
		return invalidArgument(op, "unknown JSON shape %q", opts.Shape)
	}

	rows, err := store.Query(ctx, query, args...)
	if err != nil {
		return storeFailure(op, "query", err)
	}
	defer rows.Close()

	headers := rows.Columns()

	keyIdx := -1
	if opts.Shape == ShapeKeyed {
		keyIdx = headerPosition(headers, opts.KeyColumn)
		if keyIdx < 0 {
			return invalidArgument(op, "key column %q is not a result column", opts.KeyColumn)
		}
	}

	var records []Record
	var keys []string
	seen := make(map[string]bool)

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return storeFailure(op, "scan row", err)
		}
		rec := NewRecord(headers, values)

		if keyIdx >= 0 {
			key := values[keyIdx].keyString()
			if seen[key] {
				return invalidArgument(op, "key column %q repeats value %q", opts.KeyColumn, key)
			}
			seen[key] = true
			keys = append(keys, key)
			rec = rec.Without(opts.KeyColumn)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return storeFailure(op, "iterate rows", err)
	}

	var payload []byte
	if keyIdx >= 0 {
		payload, err = marshalKeyed(keys, records)
	} else {
		if records == nil {
			records = []Record{}
		}
		payload, err = json.Marshal(records)
	}
	if err != nil {
		return storeFailure(op, "encode json", err)
	}

	if _, err := w.Write(payload); err != nil {
		return ioFailure(op, "write", err)
	}

	logging.FromContext(ctx).Debug("json export complete",
		"shape", opts.Shape,
		"columns", len(headers),
		"rows", len(records),
	)
	return nil
}

// marshalKeyed renders keys and records as one object in row order.
func marshalKeyed(keys []string, records []Record) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		v, err := records[i].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// crlfWriter writes CSV records ending in CRLF. csv.Writer's UseCRLF also
// strips a bare CR inside a quoted field, so records are encoded with LF
// endings and only the terminator is rewritten.
type crlfWriter struct {
	w   io.Writer
	buf bytes.Buffer
	enc *csv.Writer
}

func newCRLFWriter(w io.Writer) *crlfWriter {
	c := &crlfWriter{w: w}
	c.enc = csv.NewWriter(&c.buf)
	return c
}

func (c *crlfWriter) Write(record []string) error {
	c.buf.Reset()
	if err := c.enc.Write(record); err != nil {
		return err
	}
	c.enc.Flush()
	if err := c.enc.Error(); err != nil {
		return err
	}
	line := c.buf.Bytes()
	line = append(line[:len(line)-1], '\r', '\n')
	_, err := c.w.Write(line)
	return err
}

// headerPosition returns the position of name in headers, or -1.
func headerPosition(headers []string, name string) int {
	if pos, ok := MakeHeaderIndex(headers)[name]; ok {
		return pos
	}
	return -1
}

// closeStore closes store and records a close failure in *errp when the
// operation itself succeeded.
func closeStore(op string, store Store, errp *error) {
	if cerr := store.Close(); cerr != nil && *errp == nil {
		*errp = storeFailure(op, "close", cerr)
	}
}

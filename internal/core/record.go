package core

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Record is one row in JSON form: column names paired with values.
// Column order is kept when marshalling.
type Record struct {
	Columns []string
	Values  []Value
}

// NewRecord pairs columns with values positionally.
func NewRecord(columns []string, values []Value) Record {
	return Record{Columns: columns, Values: values}
}

// Get returns the value of column name.
func (r Record) Get(name string) (Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return Value{}, false
}

// Without returns a copy of r with column name removed.
func (r Record) Without(name string) Record {
	out := Record{
		Columns: make([]string, 0, len(r.Columns)),
		Values:  make([]Value, 0, len(r.Values)),
	}
	for i, c := range r.Columns {
		if c == name {
			continue
		}
		out.Columns = append(out.Columns, c)
		out.Values = append(out.Values, r.Values[i])
	}
	return out
}

// MarshalJSON renders the record as an object in column order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range r.Columns {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(c)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := r.Values[i].MarshalJSON()
		if err != nil {
			return nil, fmt.Errorf("column %q: %w", c, err)
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// errNotObject reports a top-level JSON value that is not an object.
var errNotObject = errors.New("expected an object of records")

// decodeKeyedRecords reads an object whose values are records, keeping key
// order of both the outer object and each record. A repeated outer key
// replaces the earlier record in place.
func decodeKeyedRecords(r io.Reader) (keys []string, records []Record, err error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		if ok && delim == '[' {
			return nil, nil, errListShape
		}
		return nil, nil, errNotObject
	}

	pos := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)

		rec, err := decodeRecord(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %q: %w", key, err)
		}

		if i, dup := pos[key]; dup {
			records[i] = rec
			continue
		}
		pos[key] = len(keys)
		keys = append(keys, key)
		records = append(records, rec)
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, nil, errors.New("unexpected data after top-level object")
	}
	return keys, records, nil
}

// errListShape reports a list of records, which only the exporter produces.
var errListShape = errors.New("list of records is not supported for import, expected an object of records")

func decodeRecord(dec *json.Decoder) (Record, error) {
	tok, err := dec.Token()
	if err != nil {
		return Record{}, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Record{}, errNotObject
	}

	var rec Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Record{}, err
		}
		name := tok.(string)

		var raw any
		if err := dec.Decode(&raw); err != nil {
			return Record{}, err
		}

		// A repeated field keeps its first position and last value.
		replaced := false
		for i, c := range rec.Columns {
			if c == name {
				rec.Values[i] = ValueOf(raw)
				replaced = true
				break
			}
		}
		if !replaced {
			rec.Columns = append(rec.Columns, name)
			rec.Values = append(rec.Values, ValueOf(raw))
		}
	}
	if _, err := dec.Token(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Copyright (c) 2025 Sqlbind
// Licensed under the MIT License. See LICENSE file in the project root for details.

package convert

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/buger/jsonparser"

	apperrors "sqlbind/internal/errors"
	"sqlbind/internal/table"
)

// DecodeText parses a JSON array of flat objects into a table. Columns are
// the union of keys in first-seen order; a key missing from a row is null.
// String values are kept verbatim, numbers and booleans keep their literal
// text and JSON null becomes a null value.
func DecodeText(text string) (*table.Table, error) {
	data := []byte(text)
	if !json.Valid(data) {
		return nil, apperrors.New(apperrors.DecodeFailed, "text is not valid JSON")
	}
	_, typ, _, err := jsonparser.Get(data)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DecodeFailed, "read document", err)
	}
	if typ != jsonparser.Array {
		return nil, apperrors.New(apperrors.DecodeFailed,
			fmt.Sprintf("expected a JSON array of objects, got %s", typ))
	}

	t, _ := table.New()
	var decodeErr error
	row := 0
	_, err = jsonparser.ArrayEach(data, func(value []byte, typ jsonparser.ValueType, _ int, _ error) {
		if decodeErr != nil {
			return
		}
		if typ != jsonparser.Object {
			decodeErr = apperrors.New(apperrors.DecodeFailed,
				fmt.Sprintf("element %d: expected an object, got %s", row, typ))
			return
		}
		rec, err := decodeObject(t, value)
		if err != nil {
			decodeErr = apperrors.Wrap(apperrors.DecodeFailed, fmt.Sprintf("element %d", row), err)
			return
		}
		if err := t.AppendRecord(rec); err != nil {
			decodeErr = apperrors.Wrap(apperrors.DecodeFailed, fmt.Sprintf("element %d", row), err)
			return
		}
		row++
	})
	if decodeErr != nil {
		return nil, decodeErr
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.DecodeFailed, "read array", err)
	}
	return t, nil
}

// decodeObject reads one flat object and registers new keys as columns.
func decodeObject(t *table.Table, obj []byte) (map[string]table.Value, error) {
	rec := make(map[string]table.Value)
	err := jsonparser.ObjectEach(obj, func(key, value []byte, typ jsonparser.ValueType, _ int) error {
		name := string(key)
		var v table.Value
		switch typ {
		case jsonparser.String:
			s, err := jsonparser.ParseString(value)
			if err != nil {
				return fmt.Errorf("column %q: %w", name, err)
			}
			v = table.Text(s)
		case jsonparser.Number, jsonparser.Boolean:
			v = table.Text(string(value))
		case jsonparser.Null:
			v = table.Null
		default:
			return fmt.Errorf("column %q: nested %s values are not supported", name, typ)
		}
		if _, ok := t.ColumnIndex(name); !ok {
			if _, err := t.AddColumn(name); err != nil {
				return err
			}
		}
		rec[name] = v
		return nil
	})
	return rec, err
}

// EncodeTable renders t as an indented JSON array with one object per row.
// Keys whose value is null or empty are omitted. A table without rows
// renders as [].
func EncodeTable(t *table.Table) (string, error) {
	if t == nil || t.Len() == 0 {
		return "[]", nil
	}
	cols := t.Columns()
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		first := true
		for c, v := range t.Row(i) {
			if v.Empty() {
				continue
			}
			if !first {
				buf.WriteByte(',')
			}
			first = false
			if err := writeString(&buf, cols[c]); err != nil {
				return "", apperrors.Wrap(apperrors.ConversionFailed, "encode column name", err)
			}
			buf.WriteByte(':')
			if err := writeString(&buf, v.Text); err != nil {
				return "", apperrors.Wrap(apperrors.ConversionFailed, "encode value", err)
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", apperrors.Wrap(apperrors.ConversionFailed, "indent", err)
	}
	return out.String(), nil
}

func writeString(buf *bytes.Buffer, s string) error {
	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimRight(tmp.Bytes(), "\n"))
	return nil
}

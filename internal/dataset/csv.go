package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// nullTokens are cell values read as missing.
var nullTokens = map[string]struct{}{
	"": {}, "NA": {}, "N/A": {}, "n/a": {}, "NaN": {}, "nan": {}, "-NaN": {}, "-nan": {},
	"NULL": {}, "null": {}, "None": {}, "<NA>": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {},
	"1.#IND": {}, "-1.#IND": {}, "1.#QNAN": {}, "-1.#QNAN": {},
}

// IsNullToken reports whether a raw cell is treated as missing.
func IsNullToken(s string) bool {
	_, ok := nullTokens[s]
	return ok
}

// ParseCSV parses comma-delimited UTF-8 text with a header row into a Table.
func ParseCSV(name string, data []byte, opt Options) (*Table, error) {
	if opt.MaxBytes > 0 && int64(len(data)) > opt.MaxBytes {
		return nil, &ParseError{Source: name, Err: fmt.Errorf("%w (%d > %d bytes)", ErrTooLarge, len(data), opt.MaxBytes)}
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, &ParseError{Source: name, Err: errors.New("invalid UTF-8 encoding")}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.ReuseRecord = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Source: name, Err: errors.New("no columns to parse from file")}
		}
		return nil, &ParseError{Source: name, Err: err}
	}
	ncol := len(header)
	if ncol == 0 || (ncol == 1 && strings.TrimSpace(header[0]) == "") {
		return nil, &ParseError{Source: name, Err: errors.New("no columns to parse from file")}
	}
	names := uniqueNames(header)

	raw := make([][]string, ncol)
	nulls := make([][]bool, ncol)
	rows, truncated := 0, 0
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &ParseError{Source: name, Err: err}
		}
		if len(rec) > ncol {
			line, _ := r.FieldPos(0)
			return nil, &ParseError{Source: name, Line: line, Err: fmt.Errorf("expected %d fields, saw %d", ncol, len(rec))}
		}
		if opt.MaxRows > 0 && rows >= opt.MaxRows {
			truncated++
			continue
		}
		for j := 0; j < ncol; j++ {
			v := ""
			if j < len(rec) {
				v = rec[j]
			}
			raw[j] = append(raw[j], v)
			nulls[j] = append(nulls[j], IsNullToken(v))
		}
		rows++
	}

	cols := make([]*Column, ncol)
	for j := range cols {
		cols[j] = inferColumn(names[j], raw[j], nulls[j], rows)
	}
	t := newTable(name, cols, rows)
	t.Truncated = truncated
	return t, nil
}

// inferColumn marks a column numeric when every non-null cell parses as a number.
// Columns without any non-null cell are categorical.
func inferColumn(name string, values []string, nulls []bool, rows int) *Column {
	if values == nil {
		values = make([]string, rows)
		nulls = make([]bool, rows)
	}
	c := &Column{Name: name, Kind: KindCategorical, Values: values, Null: nulls}
	floats := make([]float64, rows)
	seen := 0
	integer := true
	for i, v := range values {
		if nulls[i] {
			floats[i] = math.NaN()
			integer = false
			continue
		}
		f, isInt, ok := parseNumber(v)
		if !ok {
			return c
		}
		if !isInt {
			integer = false
		}
		floats[i] = f
		seen++
	}
	if seen == 0 {
		return c
	}
	c.Kind = KindNumeric
	c.Floats = floats
	c.Integer = integer
	return c
}

func parseNumber(s string) (f float64, isInt bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false, false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return float64(i), true, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, false
	}
	return f, false, true
}

// uniqueNames fills blank headers and de-duplicates repeated ones as name.1, name.2, ...
func uniqueNames(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	for i, h := range header {
		if strings.TrimSpace(h) == "" {
			h = fmt.Sprintf("Unnamed: %d", i)
		}
		name := h
		for k := 1; used[name]; k++ {
			name = fmt.Sprintf("%s.%d", h, k)
		}
		used[name] = true
		out[i] = name
	}
	return out
}

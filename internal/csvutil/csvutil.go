/*
Copyright © 2018 the GPPD authors.
This file is part of GPPD.

GPPD is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GPPD is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GPPD.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package csvutil reads CSV tables whose columns are located by header name.
package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// Header maps column names to column indices.
type Header map[string]int

// NewHeader indexes a header row and checks that the required columns
// are present. Names are trimmed and a leading byte order mark is removed.
func NewHeader(row []string, required ...string) (Header, error) {
	h := make(Header, len(row))
	for i, name := range row {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, ok := h[name]; !ok {
			h[name] = i
		}
	}
	for _, c := range required {
		if _, ok := h[c]; !ok {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}
	return h, nil
}

// Has returns whether the header contains the named column.
func (h Header) Has(col string) bool {
	_, ok := h[col]
	return ok
}

// Get returns the trimmed value of the named column in rec, or an empty
// string if the column is absent or the row is short.
func (h Header) Get(rec []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// Reader reads a CSV table with a header row.
type Reader struct {
	*csv.Reader
	Header Header
	line   int
}

// NewReader reads the header row from r and checks that the required
// columns are present.
func NewReader(r io.Reader, required ...string) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	row, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %v", err)
	}
	h, err := NewHeader(row, required...)
	if err != nil {
		return nil, err
	}
	return &Reader{Reader: cr, Header: h, line: 1}, nil
}

// Next returns the next row, or io.EOF at the end of the table.
func (r *Reader) Next() ([]string, error) {
	rec, err := r.Reader.Read()
	if err != nil {
		return nil, err
	}
	r.line++
	return rec, nil
}

// Line returns the line number of the row most recently returned by Next.
func (r *Reader) Line() int { return r.line }

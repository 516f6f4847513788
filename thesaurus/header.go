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

package thesaurus

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// HeaderThesaurus maps canonical column names to lowercase alternates
// used by source tables.
type HeaderThesaurus map[string][]string

// ReadHeaderThesaurus reads a CSV file whose first row is a header and
// whose following rows each list a canonical column name followed by
// its alternates.
func ReadHeaderThesaurus(r io.Reader) (HeaderThesaurus, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("thesaurus: reading header thesaurus: %v", err)
	}
	h := make(HeaderThesaurus)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("thesaurus: reading header thesaurus: %v", err)
		}
		if len(rec) == 0 || strings.TrimSpace(rec[0]) == "" {
			continue
		}
		name := strings.TrimSpace(rec[0])
		for _, alt := range rec[1:] {
			if alt = strings.ToLower(strings.TrimSpace(alt)); alt != "" {
				h[name] = append(h[name], alt)
			}
		}
		if _, ok := h[name]; !ok {
			h[name] = nil
		}
	}
	return h, nil
}

// Match returns the index in header of each canonical column that header
// contains. Comparison is case-insensitive and a canonical name matches
// itself. When several columns match, the first one is used.
func (h HeaderThesaurus) Match(header []string) map[string]int {
	o := make(map[string]int)
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(col))
		for name, alts := range h {
			if _, ok := o[name]; ok {
				continue
			}
			if col == strings.ToLower(name) {
				o[name] = i
				continue
			}
			for _, alt := range alts {
				if col == alt {
					o[name] = i
					break
				}
			}
		}
	}
	return o
}

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

package estimate

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

// TotalsReader reads national generation totals. Tables have the columns
// country, fuel, and generation_gwh_<year>.
type TotalsReader struct {
	// Countries, if set, standardizes the country names.
	Countries *thesaurus.Registry

	// Fuels, if set, standardizes the fuel names. Otherwise the fuel
	// column must hold canonical fuel labels.
	Fuels *thesaurus.FuelThesaurus

	Log logrus.FieldLogger
}

// ReadCSV reads totals for the given year from a CSV table.
func (tr *TotalsReader) ReadCSV(r io.Reader, year int) (Totals, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("estimate: reading totals: %v", err)
	}
	return tr.Totals(rows, year)
}

// ReadSheet reads totals for the given year from a spreadsheet.
func (tr *TotalsReader) ReadSheet(s *xlsx.Sheet, year int) (Totals, error) {
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		var r []string
		if row != nil {
			for _, c := range row.Cells {
				if c == nil {
					r = append(r, "")
					continue
				}
				r = append(r, c.Value)
			}
		}
		rows = append(rows, r)
	}
	return tr.Totals(rows, year)
}

// Totals converts a table whose first row is a header into totals.
// Rows whose country, fuel, or value cannot be read are logged and
// skipped. Totals for the same country and fuel are summed.
func (tr *TotalsReader) Totals(rows [][]string, year int) (Totals, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("estimate: totals table has no header")
	}
	log := tr.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	col := fmt.Sprintf("generation_gwh_%d", year)
	h, err := csvutil.NewHeader(rows[0], "country", "fuel", col)
	if err != nil {
		return nil, fmt.Errorf("estimate: totals: %v", err)
	}
	t := make(Totals)
	for i, rec := range rows[1:] {
		line := log.WithField("line", i+2)
		country := h.Get(rec, "country")
		if country == "" {
			continue
		}
		if tr.Countries != nil {
			if country = tr.Countries.Standardize(country); country == "" {
				continue
			}
		}
		fuel := gppd.Fuel(h.Get(rec, "fuel"))
		if tr.Fuels != nil {
			f, err := tr.Fuels.StandardizeOne(string(fuel))
			if err != nil || f == "" {
				line.WithField("fuel", fuel).Warn("estimate: skipping total with unknown fuel")
				continue
			}
			fuel = f
		}
		v, err := gppd.ParseFloat(strings.TrimSpace(h.Get(rec, col)))
		if err != nil {
			line.WithError(err).Warn("estimate: skipping total")
			continue
		}
		t[Key{Country: country, Fuel: fuel}] += v.Value
	}
	return t, nil
}

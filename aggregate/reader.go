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

package aggregate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
	"github.com/tealeg/xlsx"
)

// Canonical column names of raw unit tables.
const (
	ColKey                = "key"
	ColName               = "name"
	ColOwner              = "owner"
	ColCapacity           = "capacity_mw"
	ColFuel               = "fuel"
	ColOtherFuel          = "other_fuel"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColLocation           = "location"
	ColCommissioningYear  = "commissioning_year"
	ColCommissioningMonth = "commissioning_month"
	ColCountry            = "country"
	ColGeneration         = "generation_gwh"
	ColGenerationYear     = "generation_year"
	ColCapacityYear       = "year_of_capacity_data"
	ColSource             = "source"
	ColURL                = "url"
)

// generationPrefix introduces columns holding the generation in GWh for
// the year that follows the prefix, for example generation_gwh_2016.
const generationPrefix = ColGeneration + "_"

// TableReader converts rows of a raw unit table into records. Column
// headers are matched through Headers; canonical names always match.
type TableReader struct {
	Headers thesaurus.HeaderThesaurus

	// Source is the default source name of the records.
	Source string

	// Log receives per-field problems.
	Log logrus.FieldLogger
}

// ReadCSV reads a raw unit table in CSV format.
func (tr *TableReader) ReadCSV(r io.Reader) ([]*gppd.RawRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("aggregate: reading CSV: %v", err)
	}
	return tr.Records(rows)
}

// ReadSheet reads a raw unit table from a spreadsheet. The first row
// holds the column headers.
func (tr *TableReader) ReadSheet(s *xlsx.Sheet) ([]*gppd.RawRecord, error) {
	rows := make([][]string, 0, len(s.Rows))
	for _, row := range s.Rows {
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		r := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				r[i] = c.Value
			}
		}
		rows = append(rows, r)
	}
	return tr.Records(rows)
}

// Records converts a table whose first row is a header into records.
// Rows without any values are skipped.
func (tr *TableReader) Records(rows [][]string) ([]*gppd.RawRecord, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("aggregate: table has no header")
	}
	if tr.Log == nil {
		tr.Log = logrus.StandardLogger()
	}
	h := thesaurus.HeaderThesaurus{ColKey: nil}
	for k, v := range tr.Headers {
		h[k] = v
	}
	for _, c := range []string{ColName, ColOwner, ColCapacity, ColFuel, ColOtherFuel, ColLatitude,
		ColLongitude, ColLocation, ColCommissioningYear, ColCommissioningMonth, ColCountry,
		ColGeneration, ColGenerationYear, ColCapacityYear, ColSource, ColURL} {
		if _, ok := h[c]; !ok {
			h[c] = nil
		}
	}
	cols := h.Match(rows[0])
	if _, ok := cols[ColName]; !ok {
		return nil, fmt.Errorf("aggregate: table has no %s column", ColName)
	}
	genYears := make(map[int]int)
	for i, col := range rows[0] {
		col = strings.ToLower(strings.TrimSpace(col))
		if strings.HasPrefix(col, generationPrefix) {
			if y, err := strconv.Atoi(strings.TrimPrefix(col, generationPrefix)); err == nil {
				genYears[i] = y
			}
		}
	}

	var o []*gppd.RawRecord
	for i, row := range rows[1:] {
		if empty(row) {
			continue
		}
		o = append(o, tr.record(i+2, row, cols, genYears))
	}
	return o, nil
}

func (tr *TableReader) record(line int, row []string, cols map[string]int, genYears map[int]int) *gppd.RawRecord {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	log := tr.Log.WithField("line", line)
	// check logs field problems other than missing data.
	check := func(col string, err error) {
		if err != nil && !errors.Is(err, gppd.ErrMissing) {
			log.WithField("column", col).Warn(err)
		}
	}

	rec := &gppd.RawRecord{
		Key:     get(ColKey),
		Name:    get(ColName),
		Owner:   get(ColOwner),
		Fuel:    get(ColFuel),
		Country: get(ColCountry),
		Source:  get(ColSource),
		URL:     get(ColURL),
	}
	if rec.Source == "" {
		rec.Source = tr.Source
	}
	if f := get(ColOtherFuel); f != "" {
		rec.OtherFuels = []string{f}
	}
	var err error
	rec.Capacity, err = gppd.ParseCapacity(get(ColCapacity))
	check(ColCapacity, err)
	rec.CommissioningYear, err = gppd.ParseYear(get(ColCommissioningYear))
	check(ColCommissioningYear, err)
	rec.CommissioningMonth, err = gppd.ParseMonth(get(ColCommissioningMonth))
	check(ColCommissioningMonth, err)
	rec.CapacityYear, err = gppd.ParseYear(get(ColCapacityYear))
	check(ColCapacityYear, err)

	lat, err := gppd.ParseFloat(get(ColLatitude))
	check(ColLatitude, err)
	lon, err := gppd.ParseFloat(get(ColLongitude))
	check(ColLongitude, err)
	rec.Location = gppd.LocationFrom(lat, lon, gppd.CleanText(get(ColLocation)))

	gen, err := gppd.ParseFloat(get(ColGeneration))
	check(ColGeneration, err)
	if gen.Valid {
		year, err := gppd.ParseYear(get(ColGenerationYear))
		check(ColGenerationYear, err)
		if year.Valid {
			rec.Generation = append(rec.Generation, gppd.AnnualGeneration(gen.Value, year.Value, rec.Source))
		} else {
			log.Warn("aggregate: generation without a year")
		}
	}
	for i, year := range genYears {
		if i >= len(row) {
			continue
		}
		gen, err := gppd.ParseFloat(row[i])
		check(generationPrefix+strconv.Itoa(year), err)
		if gen.Valid {
			rec.Generation = append(rec.Generation, gppd.AnnualGeneration(gen.Value, year, rec.Source))
		}
	}
	sort.SliceStable(rec.Generation, func(i, j int) bool {
		return rec.Generation[i].Start.Before(rec.Generation[j].Start)
	})
	return rec
}

func empty(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

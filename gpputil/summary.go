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

package gpputil

import (
	"fmt"
	"strconv"

	"github.com/globalpowerplants/gppd"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the summary workbook.
const (
	summarySourcesSheet   = "Sources"
	summaryCountriesSheet = "Countries"
)

// WriteSummary writes an xlsx workbook with the build report on one sheet
// and the per-country summary on another. Numeric cells are written as
// numbers.
func WriteSummary(path string, report, countries gppd.Table) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName(f.GetSheetName(0), summarySourcesSheet); err != nil {
		return fmt.Errorf("gppd: summary: %v", err)
	}
	if _, err := f.NewSheet(summaryCountriesSheet); err != nil {
		return fmt.Errorf("gppd: summary: %v", err)
	}
	for _, s := range []struct {
		name  string
		table gppd.Table
	}{{summarySourcesSheet, report}, {summaryCountriesSheet, countries}} {
		if err := writeSheet(f, s.name, s.table); err != nil {
			return err
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("gppd: saving summary: %v", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, t gppd.Table) error {
	for i, row := range t {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		r := make([]interface{}, len(row))
		for j, v := range row {
			if x, err := strconv.ParseFloat(v, 64); err == nil && i > 0 {
				r[j] = x
			} else {
				r[j] = v
			}
		}
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return fmt.Errorf("gppd: summary sheet %s: %v", sheet, err)
		}
	}
	return nil
}

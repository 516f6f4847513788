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

package reconcile

import (
	"fmt"
	"io"
	"sort"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/globalpowerplants/gppd/store"
	"github.com/sirupsen/logrus"
)

// DefaultCoverage is the minimum fraction of a year that every unit of a
// plant must report before the plant's linked generation is used.
const DefaultCoverage = 0.95

// UnitGeneration is the generation of one generating unit in one year.
type UnitGeneration struct {
	MWh float64

	// Coverage is the fraction of the year that the value covers.
	Coverage float64
}

// LinkedGeneration holds unit-level generation data for admitted plants.
// A plant receives an annual observation for a year only when all of its
// linked units report that year with sufficient coverage.
type LinkedGeneration struct {
	// Units maps plant identifiers to the identifiers of their units.
	Units map[string][]string

	// Data holds unit generation by year and unit identifier.
	Data map[int]map[string]UnitGeneration

	// Blacklist lists unit identifiers whose data are unreliable. A plant
	// with a blacklisted unit never receives linked generation.
	Blacklist map[string]bool

	// Threshold is the minimum coverage. Zero means DefaultCoverage.
	Threshold float64

	// Source is recorded as the source of the added observations.
	Source string

	// Log receives malformed rows.
	Log logrus.FieldLogger
}

func (lg *LinkedGeneration) log() logrus.FieldLogger {
	if lg.Log == nil {
		lg.Log = logrus.StandardLogger()
	}
	return lg.Log
}

// Apply returns a copy of c with linked generation added, and the number
// of observations added. Years in which a plant already has a reported
// full-year value are left alone.
func (lg *LinkedGeneration) Apply(c *store.Collection, log logrus.FieldLogger) (*store.Collection, int) {
	threshold := lg.Threshold
	if threshold == 0 {
		threshold = DefaultCoverage
	}
	years := make([]int, 0, len(lg.Data))
	for y := range lg.Data {
		years = append(years, y)
	}
	sort.Ints(years)

	var n int
	o := c.Update(func(p *gppd.Plant) {
		units := lg.Units[p.ID]
		if len(units) == 0 {
			return
		}
		for _, y := range years {
			if p.ReportedGeneration(y).Valid {
				continue
			}
			mwh, ok := lg.total(y, units, threshold)
			if !ok {
				continue
			}
			p.AddGeneration(gppd.AnnualGeneration(mwh/1000, y, lg.Source))
			n++
		}
	})
	if log != nil {
		log.WithField("observations", n).Info("reconcile: added linked generation")
	}
	return o, n
}

// total returns the summed generation of units in year y, or false if any
// unit is blacklisted, missing, or below the coverage threshold.
func (lg *LinkedGeneration) total(y int, units []string, threshold float64) (float64, bool) {
	data := lg.Data[y]
	var sum float64
	for _, u := range units {
		if lg.Blacklist[u] {
			return 0, false
		}
		g, ok := data[u]
		if !ok || g.Coverage < threshold {
			return 0, false
		}
		sum += g.MWh
	}
	return sum, true
}

// ReadUnitLinks reads a CSV table with the columns gppd_idnr and unit_id
// into lg.Units.
func (lg *LinkedGeneration) ReadUnitLinks(r io.Reader) error {
	cr, err := csvutil.NewReader(r, "gppd_idnr", "unit_id")
	if err != nil {
		return fmt.Errorf("reconcile: unit links: %v", err)
	}
	if lg.Units == nil {
		lg.Units = make(map[string][]string)
	}
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reconcile: reading unit links: %v", err)
		}
		id, unit := cr.Header.Get(rec, "gppd_idnr"), cr.Header.Get(rec, "unit_id")
		if id == "" || unit == "" {
			continue
		}
		lg.Units[id] = append(lg.Units[id], unit)
	}
}

// ReadUnitGeneration reads a CSV table with the columns unit_id, year,
// generation_mwh, and time_coverage into lg.Data.
func (lg *LinkedGeneration) ReadUnitGeneration(r io.Reader) error {
	cr, err := csvutil.NewReader(r, "unit_id", "year", "generation_mwh", "time_coverage")
	if err != nil {
		return fmt.Errorf("reconcile: unit generation: %v", err)
	}
	if lg.Data == nil {
		lg.Data = make(map[int]map[string]UnitGeneration)
	}
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reconcile: reading unit generation: %v", err)
		}
		u := cr.Header.Get(rec, "unit_id")
		year, err := gppd.ParseYear(cr.Header.Get(rec, "year"))
		var mwh, cov gppd.Float
		if err == nil {
			mwh, err = gppd.ParseFloat(cr.Header.Get(rec, "generation_mwh"))
		}
		if err == nil {
			cov, err = gppd.ParseFloat(cr.Header.Get(rec, "time_coverage"))
		}
		if err == nil && u == "" {
			err = gppd.ErrMissingID
		}
		if err != nil {
			audit.With(lg.log(), audit.Record).WithFields(logrus.Fields{
				"line": cr.Line(),
				"unit": u,
			}).Warnf("reconcile: skipping unit generation row: %v", err)
			continue
		}
		if lg.Data[year.Value] == nil {
			lg.Data[year.Value] = make(map[string]UnitGeneration)
		}
		g := lg.Data[year.Value][u]
		g.MWh += mwh.Value
		g.Coverage = cov.Value
		lg.Data[year.Value][u] = g
	}
}

// ReadBlacklist reads a CSV table with the column unit_id into
// lg.Blacklist.
func (lg *LinkedGeneration) ReadBlacklist(r io.Reader) error {
	cr, err := csvutil.NewReader(r, "unit_id")
	if err != nil {
		return fmt.Errorf("reconcile: generation blacklist: %v", err)
	}
	if lg.Blacklist == nil {
		lg.Blacklist = make(map[string]bool)
	}
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reconcile: reading generation blacklist: %v", err)
		}
		if id := cr.Header.Get(rec, "unit_id"); id != "" {
			lg.Blacklist[id] = true
		}
	}
}

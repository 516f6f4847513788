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

// Package output shapes plants into the fixed output schema of the
// database and writes them as CSV.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
)

// MaxOtherFuels is the number of other-fuel columns. Further other fuels
// are dropped from the output.
const MaxOtherFuels = 3

// Default range of generation years in the output.
const (
	DefaultFirstYear = 2013
	DefaultLastYear  = 2019
)

// Row is a plant in the output schema.
type Row struct {
	Country, CountryLong, Name, ID string
	Capacity                       gppd.Float
	Latitude, Longitude            gppd.Float
	PrimaryFuel                    gppd.Fuel
	OtherFuels                     []gppd.Fuel
	CommissioningYear              gppd.Float
	Owner, Source, URL             string
	GeolocationSource, WEPPID      string
	CapacityYear                   gppd.Int

	// Generation holds the reported generation for each output year.
	Generation []gppd.Float

	// GenerationSource lists the sources of reported generation, most
	// frequent first, separated by "|".
	GenerationSource string

	EstimatedGeneration gppd.Float

	// InDatabase is only written to the full dump.
	InDatabase bool
}

// Normalizer converts plants to output rows.
type Normalizer struct {
	// Countries provides the ISO codes of the countries.
	Countries *thesaurus.Registry

	// FirstYear and LastYear bound the generation columns.
	FirstYear, LastYear int
}

// NewNormalizer returns a normalizer with the default year range.
func NewNormalizer(countries *thesaurus.Registry) *Normalizer {
	return &Normalizer{Countries: countries, FirstYear: DefaultFirstYear, LastYear: DefaultLastYear}
}

// Row returns the output row for p.
func (n *Normalizer) Row(p *gppd.Plant) Row {
	r := Row{
		CountryLong:         p.Country,
		Name:                p.Name,
		ID:                  p.ID,
		Capacity:            p.Capacity,
		Latitude:            p.Location.Latitude(),
		Longitude:           p.Location.Longitude(),
		PrimaryFuel:         p.PrimaryFuel,
		OtherFuels:          otherFuels(p),
		CommissioningYear:   p.CommissioningYear,
		Owner:               p.Owner,
		Source:              p.Source,
		URL:                 p.URL,
		GeolocationSource:   p.GeolocationSource,
		WEPPID:              p.WEPPID,
		CapacityYear:        p.CapacityYear,
		EstimatedGeneration: p.EstimatedGeneration,
		InDatabase:          true,
	}
	if n.Countries != nil {
		if c, ok := n.Countries.Lookup(p.Country); ok {
			r.Country = c.ISO3
		}
	}
	r.Generation = make([]gppd.Float, n.LastYear-n.FirstYear+1)
	if p.HasReportedGeneration() {
		for y := n.FirstYear; y <= n.LastYear; y++ {
			r.Generation[y-n.FirstYear] = p.ReportedGeneration(y)
		}
		r.GenerationSource = generationSource(p.Generation)
	}
	return r
}

// otherFuels returns the other fuels of p in alphabetical order, with
// Other and Storage moved to the end, limited to MaxOtherFuels.
func otherFuels(p *gppd.Plant) []gppd.Fuel {
	var o []gppd.Fuel
	for _, f := range p.OtherFuels.Sorted() {
		if f != p.PrimaryFuel {
			o = append(o, f)
		}
	}
	if len(o) > 1 {
		for _, last := range []gppd.Fuel{gppd.Other, gppd.Storage} {
			for i, f := range o {
				if f == last {
					o = append(append(o[:i:i], o[i+1:]...), last)
					break
				}
			}
		}
	}
	if len(o) > MaxOtherFuels {
		o = o[:MaxOtherFuels]
	}
	return o
}

// generationSource joins the sources of reported observations by
// descending frequency, breaking ties alphabetically.
func generationSource(gen []gppd.Generation) string {
	count := make(map[string]int)
	for _, g := range gen {
		if !g.Estimated && g.Source != "" {
			count[g.Source]++
		}
	}
	s := make([]string, 0, len(count))
	for k := range count {
		s = append(s, k)
	}
	sort.Slice(s, func(i, j int) bool {
		if count[s[i]] != count[s[j]] {
			return count[s[i]] > count[s[j]]
		}
		return s[i] < s[j]
	})
	return strings.Join(s, "|")
}

// Rows returns the output rows of c sorted by country, name, and
// identifier.
func (n *Normalizer) Rows(c *store.Collection) []Row {
	rows := make([]Row, 0, c.Len())
	c.Range(func(p *gppd.Plant) bool {
		rows = append(rows, n.Row(p))
		return true
	})
	sortRows(rows)
	return rows
}

// DumpRows returns the output rows of every candidate record of a build,
// marking whether each is in the database.
func (n *Normalizer) DumpRows(dump []reconcile.DumpRecord) []Row {
	rows := make([]Row, len(dump))
	for i, d := range dump {
		rows[i] = n.Row(d.Plant)
		rows[i].InDatabase = d.InDatabase
	}
	sortRows(rows)
	return rows
}

func sortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.CountryLong != b.CountryLong {
			return a.CountryLong < b.CountryLong
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// Header returns the output column names. The dump adds the in_gppd
// column.
func Header(firstYear, lastYear int, dump bool) []string {
	h := []string{"country", "country_long"}
	if dump {
		h = append(h, "in_gppd")
	}
	h = append(h, "name", "gppd_idnr", "capacity_mw", "latitude", "longitude", "primary_fuel")
	for i := 1; i <= MaxOtherFuels; i++ {
		h = append(h, fmt.Sprintf("other_fuel%d", i))
	}
	h = append(h, "commissioning_year", "owner", "source", "url", "geolocation_source",
		"wepp_id", "year_of_capacity_data")
	for y := firstYear; y <= lastYear; y++ {
		h = append(h, fmt.Sprintf("generation_gwh_%d", y))
	}
	return append(h, "generation_data_source", "estimated_generation_gwh")
}

// Strings returns the row as CSV fields in the order of Header.
func (r Row) Strings(dump bool) []string {
	s := []string{r.Country, r.CountryLong}
	if dump {
		s = append(s, fmt.Sprint(r.InDatabase))
	}
	s = append(s, r.Name, r.ID, r.Capacity.String(), r.Latitude.Fixed(4), r.Longitude.Fixed(4),
		string(r.PrimaryFuel))
	for i := 0; i < MaxOtherFuels; i++ {
		if i < len(r.OtherFuels) {
			s = append(s, string(r.OtherFuels[i]))
		} else {
			s = append(s, "")
		}
	}
	s = append(s, r.CommissioningYear.String(), r.Owner, r.Source, r.URL, r.GeolocationSource,
		r.WEPPID, r.CapacityYear.String())
	for _, g := range r.Generation {
		s = append(s, g.String())
	}
	return append(s, r.GenerationSource, r.EstimatedGeneration.String())
}

// WriteCSV writes the rows with a header line.
func (n *Normalizer) WriteCSV(w io.Writer, rows []Row, dump bool) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(n.FirstYear, n.LastYear, dump)); err != nil {
		return fmt.Errorf("output: writing header: %v", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings(dump)); err != nil {
			return fmt.Errorf("output: writing %s: %v", r.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("output: %v", err)
	}
	return nil
}

// CountrySummary returns the number of plants, total capacity, and
// capacity by primary fuel of each country.
func CountrySummary(rows []Row) gppd.Table {
	type summary struct {
		count    int
		capacity float64
		fuels    map[gppd.Fuel]float64
	}
	byCountry := make(map[string]*summary)
	fuelSet := make(gppd.FuelSet)
	for _, r := range rows {
		s, ok := byCountry[r.CountryLong]
		if !ok {
			s = &summary{fuels: make(map[gppd.Fuel]float64)}
			byCountry[r.CountryLong] = s
		}
		s.count++
		s.capacity += r.Capacity.Or(0)
		if r.PrimaryFuel != "" {
			s.fuels[r.PrimaryFuel] += r.Capacity.Or(0)
			fuelSet.Add(r.PrimaryFuel)
		}
	}
	fuels := fuelSet.Sorted()
	header := []string{"Country", "Plants", "Capacity (MW)"}
	for _, f := range fuels {
		header = append(header, string(f))
	}
	t := gppd.Table{header}
	countries := make([]string, 0, len(byCountry))
	for c := range byCountry {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	for _, c := range countries {
		s := byCountry[c]
		row := []string{c, fmt.Sprint(s.count), fmt.Sprintf("%.1f", s.capacity)}
		for _, f := range fuels {
			row = append(row, fmt.Sprintf("%.1f", s.fuels[f]))
		}
		t = append(t, row)
	}
	return t
}

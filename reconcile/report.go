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
)

// Reason explains why a candidate record is or is not in the database.
type Reason string

// Reasons recorded in the audit dump.
const (
	Admitted        Reason = "admitted"
	NoLocation      Reason = "no location"
	BelowCapacity   Reason = "below minimum capacity"
	IDCollision     Reason = "id collision"
	UnknownCountry  Reason = "unknown country"
	NotAuthorized   Reason = "country not covered by source"
	Excluded        Reason = "exclusion list"
	CountrySkipped  Reason = "country skipped"
	DuplicateID     Reason = "duplicate id"
	UnusedLegacy    Reason = "unused"
	ConsumedLegacy  Reason = "location used by curated plant"
	LinkedToCurated Reason = "linked curated plant admitted"
)

// Tally is a count of plants and their total capacity in MW.
type Tally struct {
	Count    int
	Capacity float64
}

func (t *Tally) add(p *gppd.Plant) {
	t.Count++
	t.Capacity += p.Capacity.Or(0)
}

// Report summarizes a database build.
type Report struct {
	// Admitted holds the plants admitted from each source database.
	Admitted map[string]*Tally

	// Excluded holds the candidate records that were not admitted,
	// by reason.
	Excluded map[Reason]*Tally

	// Skipped holds the records of supplementary datasets skipped because
	// of the country policy, by country.
	Skipped map[string]*Tally

	// Collisions is the number of plant identifiers found under more
	// than one country.
	Collisions int

	// Consumed is the number of legacy records whose location was used
	// by a curated plant.
	Consumed int

	// Linked is the number of generation observations added from the
	// linked unit data.
	Linked int

	// Estimated is the number of plants with estimated generation.
	Estimated int

	// WEPP is the number of plants matched to WEPP identifiers.
	WEPP int
}

func newReport() *Report {
	return &Report{
		Admitted: make(map[string]*Tally),
		Excluded: make(map[Reason]*Tally),
		Skipped:  make(map[string]*Tally),
	}
}

func (r *Report) admit(source string, p *gppd.Plant) {
	if _, ok := r.Admitted[source]; !ok {
		r.Admitted[source] = new(Tally)
	}
	r.Admitted[source].add(p)
}

func (r *Report) exclude(reason Reason, p *gppd.Plant) {
	if _, ok := r.Excluded[reason]; !ok {
		r.Excluded[reason] = new(Tally)
	}
	r.Excluded[reason].add(p)
}

func (r *Report) skip(country string, p *gppd.Plant) {
	if _, ok := r.Skipped[country]; !ok {
		r.Skipped[country] = new(Tally)
	}
	r.Skipped[country].add(p)
}

// Total returns the total number and capacity of admitted plants.
func (r *Report) Total() Tally {
	var t Tally
	for _, a := range r.Admitted {
		t.Count += a.Count
		t.Capacity += a.Capacity
	}
	return t
}

// Table returns the report as a table.
func (r *Report) Table() gppd.Table {
	t := gppd.Table{{"Category", "Name", "Plants", "Capacity (MW)"}}
	row := func(cat, name string, tl *Tally) []string {
		return []string{cat, name, fmt.Sprint(tl.Count), fmt.Sprintf("%.1f", tl.Capacity)}
	}
	for _, name := range sortedKeys(r.Admitted) {
		t = append(t, row("admitted", name, r.Admitted[name]))
	}
	total := r.Total()
	t = append(t, row("admitted", "total", &total))
	excluded := make(map[string]*Tally, len(r.Excluded))
	for k, v := range r.Excluded {
		excluded[string(k)] = v
	}
	for _, name := range sortedKeys(excluded) {
		t = append(t, row("excluded", name, excluded[name]))
	}
	for _, name := range sortedKeys(r.Skipped) {
		t = append(t, row("skipped", name, r.Skipped[name]))
	}
	t = append(t,
		[]string{"collisions", "", fmt.Sprint(r.Collisions), ""},
		[]string{"legacy locations used", "", fmt.Sprint(r.Consumed), ""},
		[]string{"linked generation", "", fmt.Sprint(r.Linked), ""},
		[]string{"estimated generation", "", fmt.Sprint(r.Estimated), ""},
		[]string{"WEPP matches", "", fmt.Sprint(r.WEPP), ""},
	)
	return t
}

// Tabbed writes the report as an aligned text table.
func (r *Report) Tabbed(w io.Writer) (int, error) {
	return r.Table().Tabbed(w)
}

func sortedKeys(m map[string]*Tally) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

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

package gppd

import (
	"fmt"
	"regexp"
	"strconv"
)

// Plant is a physical power plant: one or more generating units at a
// single site.
type Plant struct {
	// ID is the stable identifier of the plant, for example "USA0001234".
	ID string

	Name, Owner string

	// Country is the canonical name of the country the plant is in.
	Country string

	// Capacity is the nameplate capacity in MW.
	Capacity Float

	// CapacityYear is the year that the capacity figure represents.
	CapacityYear Int

	// PrimaryFuel is the fuel with the largest capacity share.
	PrimaryFuel Fuel

	// OtherFuels holds any additional fuels. It never contains PrimaryFuel.
	OtherFuels FuelSet

	// CommissioningYear is the (possibly fractional) year of commissioning.
	CommissioningYear Float

	Location Location

	// GeolocationSource, Source, and URL record where the location and the
	// rest of the data came from.
	GeolocationSource, Source, URL string

	// Generation holds generation observations in the order they were added.
	Generation []Generation

	// EstimatedGeneration holds the modeled annual generation in GWh for
	// plants without a reported value in the estimation year.
	EstimatedGeneration Float

	// WEPPID is the identifier of the plant in the World Electric Power
	// Plants database.
	WEPPID string
}

// NewPlant returns a plant with the given identifier and name. Both are
// required.
func NewPlant(id, name string) (*Plant, error) {
	name = CleanText(name)
	if id == "" {
		return nil, fmt.Errorf("gppd: plant %q: %w", name, ErrMissingID)
	}
	if name == "" {
		return nil, fmt.Errorf("gppd: plant %s: %w", id, ErrMissingName)
	}
	return &Plant{ID: id, Name: name, OtherFuels: make(FuelSet)}, nil
}

// SetPrimaryFuel sets the primary fuel and removes it from the other fuels.
func (p *Plant) SetPrimaryFuel(f Fuel) {
	p.PrimaryFuel = f
	delete(p.OtherFuels, f)
}

// AddOtherFuels adds fuels to the other fuels, ignoring the primary fuel.
func (p *Plant) AddOtherFuels(fuels ...Fuel) {
	if p.OtherFuels == nil {
		p.OtherFuels = make(FuelSet)
	}
	for _, f := range fuels {
		if f != p.PrimaryFuel {
			p.OtherFuels.Add(f)
		}
	}
}

// SetWEPPID sets the WEPP identifier. It returns ErrDuplicateWEPP if
// the plant already has one.
func (p *Plant) SetWEPPID(id string) error {
	if p.WEPPID != "" {
		return fmt.Errorf("gppd: plant %s already matched to %s, not %s: %w", p.ID, p.WEPPID, id, ErrDuplicateWEPP)
	}
	p.WEPPID = id
	return nil
}

// AddGeneration adds an observation. Observations with the same period,
// source, and estimation status as an existing one are summed into it.
func (p *Plant) AddGeneration(g Generation) {
	for i, e := range p.Generation {
		if e.samePeriod(g) {
			p.Generation[i].GWh += g.GWh
			return
		}
	}
	p.Generation = append(p.Generation, g)
}

// ReportedGeneration returns the first reported (not estimated)
// full-year observation that overlaps the given year.
func (p *Plant) ReportedGeneration(year int) Float {
	for _, g := range p.Generation {
		if g.Estimated || !g.Overlaps(year) {
			continue
		}
		if g.FullYear() {
			return SomeFloat(g.GWh)
		}
	}
	return Float{}
}

// HasReportedGeneration returns whether p has any reported observation.
func (p *Plant) HasReportedGeneration() bool {
	for _, g := range p.Generation {
		if !g.Estimated {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of p.
func (p *Plant) Clone() *Plant {
	o := *p
	o.OtherFuels = p.OtherFuels.Copy()
	if p.Generation != nil {
		o.Generation = make([]Generation, len(p.Generation))
		copy(o.Generation, p.Generation)
	}
	return &o
}

var idPattern = regexp.MustCompile(`^([A-Z]{3,5})([0-9]+)$`)

// MakeID returns a plant identifier made from an uppercase code and a
// number, for example MakeID("USA", 1234) == "USA0001234".
func MakeID(code string, n int) string {
	return fmt.Sprintf("%s%07d", code, n)
}

// SplitID splits a plant identifier into its code and number.
func SplitID(id string) (code string, n int, err error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return "", 0, fmt.Errorf("gppd: invalid plant id %q: %w", id, ErrParse)
	}
	n, err = strconv.Atoi(m[2])
	if err != nil {
		return "", 0, fmt.Errorf("gppd: invalid plant id %q: %w", id, ErrParse)
	}
	return m[1], n, nil
}

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
	"sort"
	"strings"
)

// Fuel is a canonical fuel label.
type Fuel string

// Canonical fuel labels. The complete taxonomy is whatever the loaded fuel
// thesaurus defines; these are the labels that the database logic refers to
// by name.
const (
	Coal         Fuel = "Coal"
	Oil          Fuel = "Oil"
	Gas          Fuel = "Gas"
	Hydro        Fuel = "Hydro"
	Nuclear      Fuel = "Nuclear"
	Wind         Fuel = "Wind"
	Solar        Fuel = "Solar"
	Biomass      Fuel = "Biomass"
	Waste        Fuel = "Waste"
	Geothermal   Fuel = "Geothermal"
	WaveTidal    Fuel = "Wave and Tidal"
	Petcoke      Fuel = "Petcoke"
	Cogeneration Fuel = "Cogeneration"
	Storage      Fuel = "Storage"
	Other        Fuel = "Other"
)

// FuelSet is a set of fuel labels. The zero value is an empty set
// that can be read but not added to.
type FuelSet map[Fuel]bool

// NewFuelSet returns a set containing the given fuels. Empty labels are
// ignored.
func NewFuelSet(fuels ...Fuel) FuelSet {
	s := make(FuelSet)
	s.Add(fuels...)
	return s
}

// Add adds fuels to the set.
func (s FuelSet) Add(fuels ...Fuel) {
	for _, f := range fuels {
		if f != "" {
			s[f] = true
		}
	}
}

// Has returns whether f is in the set.
func (s FuelSet) Has(f Fuel) bool { return s[f] }

// Len returns the number of fuels in the set.
func (s FuelSet) Len() int { return len(s) }

// Sorted returns the members of the set in alphabetical order.
func (s FuelSet) Sorted() []Fuel {
	o := make([]Fuel, 0, len(s))
	for f := range s {
		o = append(o, f)
	}
	sort.Slice(o, func(i, j int) bool { return o[i] < o[j] })
	return o
}

// Copy returns an independent copy of s.
func (s FuelSet) Copy() FuelSet {
	o := make(FuelSet, len(s))
	for f := range s {
		o[f] = true
	}
	return o
}

func (s FuelSet) String() string {
	fuels := s.Sorted()
	str := make([]string, len(fuels))
	for i, f := range fuels {
		str[i] = string(f)
	}
	return "{" + strings.Join(str, ", ") + "}"
}

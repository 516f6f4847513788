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

// RawRecord is a generating unit or plant as handed over by a source
// loader, before fuel and country standardization.
type RawRecord struct {
	// Key groups records that belong to the same physical plant, for
	// example an external plant code.
	Key string

	Name, Owner string

	// Capacity is the unit capacity in MW.
	Capacity Float

	// Fuel is the raw fuel string of the unit and OtherFuels holds any
	// secondary fuel strings.
	Fuel       string
	OtherFuels []string

	Location Location

	// CommissioningYear and CommissioningMonth give the in-service date.
	CommissioningYear, CommissioningMonth Int

	Generation []Generation

	// Country is the raw country name.
	Country string

	Source, URL string

	CapacityYear Int

	// ExternalIDs holds identifiers of the plant in other databases,
	// keyed by database name.
	ExternalIDs map[string]string
}

// CommissioningFraction returns the commissioning date as a fractional
// year, year + month/12, or an absent value if the year is unknown.
func (r *RawRecord) CommissioningFraction() Float {
	if !r.CommissioningYear.Valid {
		return Float{}
	}
	y := float64(r.CommissioningYear.Value)
	if r.CommissioningMonth.Valid {
		y += float64(r.CommissioningMonth.Value) / 12
	}
	return SomeFloat(y)
}

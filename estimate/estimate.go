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

// Package estimate fills in modeled generation for plants that do not
// report generation in the estimation year. National generation totals
// for each country and fuel are allocated to the unreporting plants in
// proportion to their capacity, after subtracting what the reporting
// plants account for.
package estimate

import (
	"sort"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/store"
	"github.com/sirupsen/logrus"
)

// Key identifies a national generation total.
type Key struct {
	Country string
	Fuel    gppd.Fuel
}

func (k Key) String() string { return k.Country + "/" + string(k.Fuel) }

// Totals holds national generation totals in GWh.
type Totals map[Key]float64

// Estimator allocates national generation totals to plants.
type Estimator struct {
	// Year is the estimation year.
	Year int

	Log logrus.FieldLogger
}

// Result holds the outcome of an estimation.
type Result struct {
	// Estimates holds the estimated generation in GWh by plant identifier.
	Estimates map[string]float64

	// Count is the number of plants with an estimate.
	Count int

	// Reported is the number of plants that report generation in the
	// estimation year.
	Reported int

	// Misses lists the buckets of unreporting plants that could not be
	// estimated, because there is no national total or because the plants
	// have no capacity.
	Misses []Key
}

type bucket struct {
	capacity float64
	reported float64
	plants   []*gppd.Plant
}

// Estimate computes estimated generation for plants without a reported
// full-year value in e.Year. Plants without a capacity are not estimated.
// Negative estimates, which occur when reported generation exceeds the
// national total, are set to zero.
func (e *Estimator) Estimate(plants []*gppd.Plant, totals Totals) *Result {
	log := e.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	buckets := make(map[Key]*bucket)
	get := func(k Key) *bucket {
		b, ok := buckets[k]
		if !ok {
			b = new(bucket)
			buckets[k] = b
		}
		return b
	}
	r := &Result{Estimates: make(map[string]float64)}
	for _, p := range plants {
		k := Key{Country: p.Country, Fuel: p.PrimaryFuel}
		if g := p.ReportedGeneration(e.Year); g.Valid {
			get(k).reported += g.Value
			r.Reported++
			continue
		}
		if !p.Capacity.Valid {
			continue
		}
		b := get(k)
		b.capacity += p.Capacity.Value
		b.plants = append(b.plants, p)
	}

	keys := make([]Key, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Country != keys[j].Country {
			return keys[i].Country < keys[j].Country
		}
		return keys[i].Fuel < keys[j].Fuel
	})

	for _, k := range keys {
		b := buckets[k]
		if len(b.plants) == 0 {
			continue
		}
		total, ok := totals[k]
		if !ok || b.capacity == 0 {
			r.Misses = append(r.Misses, k)
			entry := audit.With(log, audit.Estimation).WithFields(logrus.Fields{
				"country": k.Country,
				"fuel":    k.Fuel,
				"plants":  len(b.plants),
			})
			if !ok {
				entry.Warn("estimate: no national total")
			} else {
				entry.Warn("estimate: plants have no capacity")
			}
			continue
		}
		remaining := total - b.reported
		for _, p := range b.plants {
			v := p.Capacity.Value / b.capacity * remaining
			if v < 0 {
				v = 0
			}
			r.Estimates[p.ID] = v
		}
	}
	r.Count = len(r.Estimates)
	log.WithFields(logrus.Fields{
		"year":      e.Year,
		"estimated": r.Count,
		"reported":  r.Reported,
		"misses":    len(r.Misses),
	}).Info("estimate: allocated national generation")
	return r
}

// Apply returns a copy of c with the estimates of r set.
func Apply(c *store.Collection, r *Result) *store.Collection {
	return c.Update(func(p *gppd.Plant) {
		if v, ok := r.Estimates[p.ID]; ok {
			p.EstimatedGeneration = gppd.SomeFloat(v)
		}
	})
}

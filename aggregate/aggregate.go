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

// Package aggregate merges the generating units reported by a source into
// plant-level records.
package aggregate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// MinCommissioningYear is the earliest plausible commissioning year.
// Earlier values are logged as suspicious.
const MinCommissioningYear = 1900

// Aggregator merges raw unit records that share a key into plants.
type Aggregator struct {
	// Code is the identifier prefix for the plants, for example "USA".
	Code string

	// Fuels standardizes fuel strings. It is required.
	Fuels *thesaurus.FuelThesaurus

	// Countries standardizes country names. If nil, country names are
	// only cleaned.
	Countries *thesaurus.Registry

	// Source and URL are the default provenance of the plants.
	Source, URL string

	// CapacityYear is the default year of the capacity data.
	CapacityYear int

	// DataYear is the latest plausible commissioning year.
	DataYear int

	// GroupByName groups records without a key by plant name.
	GroupByName bool

	// Log receives per-record problems.
	Log logrus.FieldLogger

	plants    map[string]*accumulator
	order     []string
	conflicts map[string][]string
}

// fuelCapacity is the capacity accumulated for one fuel.
type fuelCapacity struct {
	fuel     gppd.Fuel
	capacity float64
}

// accumulator holds the running totals for one plant.
type accumulator struct {
	plant      *gppd.Plant
	fuels      []fuelCapacity
	declared   gppd.FuelSet
	capacity   float64
	anyCap     bool
	years      []float64
	weights    []float64
	haveSource bool
}

// Conflict is a plant key that appeared under more than one country.
type Conflict struct {
	Key       string
	Countries []string
}

func (a *Aggregator) log() logrus.FieldLogger {
	if a.Log == nil {
		a.Log = logrus.StandardLogger()
	}
	return a.Log
}

// Add merges a raw record into the plant with the same key. Records
// without a name or key are logged and skipped, and the returned error
// wraps gppd.ErrMissingName or gppd.ErrMissingID. Problems with single
// fields are logged and the field is treated as missing.
func (a *Aggregator) Add(rec *gppd.RawRecord) error {
	if a.plants == nil {
		a.plants = make(map[string]*accumulator)
		a.conflicts = make(map[string][]string)
	}
	name := gppd.CleanText(rec.Name)
	key := strings.TrimSpace(rec.Key)
	if key == "" && a.GroupByName {
		key = name
	}
	var err error
	switch {
	case name == "":
		err = fmt.Errorf("aggregate: record %q: %w", key, gppd.ErrMissingName)
	case key == "":
		err = fmt.Errorf("aggregate: record %q: %w", name, gppd.ErrMissingID)
	}
	if err != nil {
		audit.With(a.log(), audit.Record).WithField("source", a.Source).Warn(err)
		return err
	}
	log := a.log().WithFields(logrus.Fields{"source": a.Source, "plant": key})

	acc, ok := a.plants[key]
	if !ok {
		p, err := gppd.NewPlant(key, name)
		if err != nil {
			return err
		}
		acc = &accumulator{plant: p, declared: make(gppd.FuelSet)}
		a.plants[key] = acc
		a.order = append(a.order, key)
	}
	p := acc.plant

	if rec.Country != "" {
		country := gppd.CleanText(rec.Country)
		if a.Countries != nil {
			country = a.Countries.Standardize(rec.Country)
		}
		a.setCountry(key, acc, country)
	}

	if p.Owner == "" {
		p.Owner = gppd.CleanText(rec.Owner)
	}
	if p.URL == "" {
		p.URL = rec.URL
	}
	if !acc.haveSource && rec.Source != "" {
		p.Source = gppd.CleanText(rec.Source)
		acc.haveSource = true
	}
	if !p.CapacityYear.Valid && rec.CapacityYear.Valid {
		p.CapacityYear = rec.CapacityYear
	}

	capacity := 0.0
	if rec.Capacity.Valid {
		capacity = rec.Capacity.Value
		acc.capacity += capacity
		acc.anyCap = true
	} else {
		log.Warn("aggregate: unit has no capacity; counting it as zero")
	}

	fuel, err := a.Fuels.StandardizeOne(rec.Fuel)
	if err != nil {
		log.WithField("fuel", rec.Fuel).Warn(err)
	}
	if fuel != "" {
		acc.addFuel(fuel, capacity)
	}
	for _, f := range rec.OtherFuels {
		for other := range a.Fuels.Standardize(f) {
			acc.declared.Add(other)
		}
	}

	if y := rec.CommissioningFraction(); y.Valid {
		acc.years = append(acc.years, y.Value)
		acc.weights = append(acc.weights, capacity)
	}

	for _, g := range rec.Generation {
		p.AddGeneration(g)
	}

	if rec.Location.Known {
		p.Location = rec.Location
	} else if p.Location.Description == "" {
		p.Location.Description = rec.Location.Description
	}
	return nil
}

func (a *Aggregator) setCountry(key string, acc *accumulator, country string) {
	p := acc.plant
	if country == "" {
		return
	}
	if p.Country == "" {
		p.Country = country
		return
	}
	if p.Country == country {
		return
	}
	prev := a.conflicts[key]
	if len(prev) == 0 {
		prev = []string{p.Country}
	}
	for _, c := range prev {
		if c == country {
			return
		}
	}
	audit.CollisionEntry(a.log(), key, prev[0], country).Error("aggregate: plant key reported under two countries")
	a.conflicts[key] = append(prev, country)
}

func (acc *accumulator) addFuel(f gppd.Fuel, capacity float64) {
	for i := range acc.fuels {
		if acc.fuels[i].fuel == f {
			acc.fuels[i].capacity += capacity
			return
		}
	}
	acc.fuels = append(acc.fuels, fuelCapacity{fuel: f, capacity: capacity})
}

// Plants returns the aggregated plants in the order their keys were first
// seen. Plants whose key appeared under more than one country are left out
// and reported by Conflicts. Numeric keys and keys that are already
// identifiers keep their number; other keys get the lowest free number. A
// plant whose identifier is already taken by an earlier plant is logged
// and left out.
func (a *Aggregator) Plants() []*gppd.Plant {
	explicit := make(map[string]string)
	used := make(map[int]bool)
	for _, key := range a.order {
		id, ok := a.explicitID(key)
		if !ok {
			continue
		}
		explicit[key] = id
		if code, n, err := gppd.SplitID(id); err == nil && code == a.Code {
			used[n] = true
		}
	}
	var o []*gppd.Plant
	taken := make(map[string]string)
	next := 1
	for _, key := range a.order {
		if _, ok := a.conflicts[key]; ok {
			continue
		}
		id, ok := explicit[key]
		if !ok {
			for used[next] {
				next++
			}
			used[next] = true
			id = gppd.MakeID(a.Code, next)
		}
		if prev, ok := taken[id]; ok {
			audit.With(a.log(), audit.Record).WithFields(logrus.Fields{
				"source": a.Source,
				"plant":  key,
				"id":     id,
				"kept":   prev,
			}).Error("aggregate: plant identifier already in use; leaving the plant out")
			continue
		}
		taken[id] = key
		p := a.finalize(a.plants[key])
		p.ID = id
		o = append(o, p)
	}
	return o
}

// explicitID returns the identifier that key fixes, if any.
func (a *Aggregator) explicitID(key string) (string, bool) {
	if n, err := strconv.Atoi(key); err == nil && n > 0 {
		return gppd.MakeID(a.Code, n), true
	}
	if isID(key) {
		return key, true
	}
	return "", false
}

func isID(key string) bool {
	_, _, err := gppd.SplitID(key)
	return err == nil
}

// Conflicts returns the keys that appeared under more than one country.
func (a *Aggregator) Conflicts() []Conflict {
	var o []Conflict
	for _, key := range a.order {
		if c, ok := a.conflicts[key]; ok {
			o = append(o, Conflict{Key: key, Countries: append([]string(nil), c...)})
		}
	}
	return o
}

// finalize returns a finished copy of the accumulated plant.
func (a *Aggregator) finalize(acc *accumulator) *gppd.Plant {
	p := acc.plant.Clone()
	if acc.anyCap {
		p.Capacity = gppd.SomeFloat(acc.capacity)
	}
	if !p.CapacityYear.Valid && a.CapacityYear > 0 {
		p.CapacityYear = gppd.SomeInt(a.CapacityYear)
	}
	if p.Source == "" {
		p.Source = a.Source
	}
	if p.URL == "" {
		p.URL = a.URL
	}

	// The fuel with the most capacity is primary; ties go to the fuel
	// seen first.
	var primary gppd.Fuel
	max := -1.0
	for _, fc := range acc.fuels {
		if fc.capacity > max {
			primary, max = fc.fuel, fc.capacity
		}
	}
	p.OtherFuels = make(gppd.FuelSet)
	for _, fc := range acc.fuels {
		if fc.capacity > 0 {
			p.OtherFuels.Add(fc.fuel)
		}
	}
	for f := range acc.declared {
		p.OtherFuels.Add(f)
	}
	p.SetPrimaryFuel(primary)

	if len(acc.years) > 0 {
		total := 0.0
		for _, w := range acc.weights {
			total += w
		}
		var year float64
		if total > 0 {
			year = stat.Mean(acc.years, acc.weights)
		} else {
			year = stat.Mean(acc.years, nil)
		}
		p.CommissioningYear = gppd.SomeFloat(year)
		if year < MinCommissioningYear || (a.DataYear > 0 && year > float64(a.DataYear)+1) {
			a.log().WithFields(logrus.Fields{
				"source": a.Source,
				"plant":  p.ID,
				"year":   year,
			}).Warn("aggregate: suspicious commissioning year")
		}
	}
	return p
}

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

// Package reconcile merges independently built plant databases into the
// unified Global Power Plant Database. Each source tier owns the plants
// of the countries its policy assigns to it, locations are filled in
// through a concordance table, and plant identifiers that appear under
// more than one country are excluded.
package reconcile

import (
	"errors"
	"sort"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
)

// DefaultMinCapacity is the default minimum plant capacity in MW.
const DefaultMinCapacity = 1.0

// Sources holds the source databases to be merged.
type Sources struct {
	// Feeds holds the automated per-country databases keyed by canonical
	// country name.
	Feeds map[string]*store.Collection

	// Curated is the manually-curated multi-country table.
	Curated *store.Collection

	// Observatory is the global observatory database.
	Observatory *store.Collection

	// Legacy is the legacy global database, used for locations only.
	Legacy *store.Collection

	// Datasets are supplementary multinational datasets merged after the
	// main tiers.
	Datasets []*Dataset

	// Concordance links curated plants to the observatory and legacy
	// databases.
	Concordance Concordance

	// Linked holds generation data for the units of admitted plants.
	Linked *LinkedGeneration
}

// Dataset is a supplementary multinational dataset, such as a registry of
// solar plants.
type Dataset struct {
	Name   string
	Plants *store.Collection

	// Regions holds the country or territory code reported for each plant,
	// keyed by plant identifier.
	Regions map[string]string

	// Exclude lists plant identifiers that are never imported.
	Exclude map[string]bool

	// Skip lists canonical country names whose plants are not imported.
	Skip map[string]bool

	// Whitelist lists region codes that are imported even when their
	// country is skipped.
	Whitelist map[string]bool
}

// DumpRecord is a candidate plant together with the outcome of its
// admission.
type DumpRecord struct {
	Plant *gppd.Plant

	// Source is the name of the source database.
	Source string

	InDatabase bool
	Reason     Reason
}

// Collision is a plant identifier found under two countries.
type Collision struct {
	ID, Country1, Country2 string
}

// Result is the outcome of a database build.
type Result struct {
	// Plants is the unified plant collection.
	Plants *store.Collection

	// Dump lists every candidate record in the order it was considered.
	Dump []DumpRecord

	Collisions []Collision

	// Consumed lists the legacy records whose locations were used for
	// curated plants.
	Consumed []string

	Report *Report
}

// Resolver merges source databases.
type Resolver struct {
	// Countries holds the canonical countries and their source policies.
	Countries *thesaurus.Registry

	// MinCapacity is the smallest capacity in MW admitted from the
	// feeds, curated table, and observatory database.
	MinCapacity float64

	// ObservatoryName and LegacyName are recorded as the geolocation
	// source of plants located through the concordance table.
	ObservatoryName, LegacyName string

	Log logrus.FieldLogger
}

// NewResolver returns a resolver with the default minimum capacity.
func NewResolver(countries *thesaurus.Registry) *Resolver {
	return &Resolver{
		Countries:       countries,
		MinCapacity:     DefaultMinCapacity,
		ObservatoryName: "GEODB",
		LegacyName:      "CARMA",
		Log:             logrus.StandardLogger(),
	}
}

// run holds the state of one Resolve call.
type run struct {
	*Resolver
	src       *Sources
	log       logrus.FieldLogger
	b         *store.Builder
	res       *Result
	colliding map[string]bool
	consumed  map[string]bool
	curated   map[string]bool
}

// Resolve merges the sources into a unified collection. The tiers are
// processed strictly in order: automated feeds, the curated table, the
// observatory database, and the supplementary datasets; linked generation
// is added last. Per-record problems are logged and recorded in the dump.
func (r *Resolver) Resolve(src *Sources) (*Result, error) {
	if r.Countries == nil {
		return nil, errors.New("reconcile: no country registry")
	}
	if src == nil {
		src = new(Sources)
	}
	u := &run{
		Resolver:  r,
		src:       src,
		log:       r.Log,
		b:         store.NewBuilder("GPPD"),
		res:       &Result{Report: newReport()},
		colliding: make(map[string]bool),
		consumed:  make(map[string]bool),
		curated:   make(map[string]bool),
	}
	if u.log == nil {
		u.log = logrus.StandardLogger()
	}
	for _, name := range r.Countries.Ambiguous() {
		u.log.WithField("country", name).Warn("reconcile: ambiguous country policy; following tier order")
	}

	u.findCollisions()
	u.feeds()
	u.curatedTable()
	u.observatory()
	u.unusedLegacy()
	u.datasets()

	u.res.Plants = u.b.Snapshot()
	if src.Linked != nil {
		u.res.Plants, u.res.Report.Linked = src.Linked.Apply(u.res.Plants, u.log)
	}
	for id := range u.consumed {
		u.res.Consumed = append(u.res.Consumed, id)
	}
	sort.Strings(u.res.Consumed)
	u.res.Report.Consumed = len(u.res.Consumed)
	return u.res, nil
}

// tiers returns every candidate collection in tier order.
func (u *run) tiers() []*store.Collection {
	var o []*store.Collection
	for _, name := range sortedFeeds(u.src.Feeds) {
		o = append(o, u.src.Feeds[name])
	}
	o = append(o, u.src.Curated, u.src.Observatory, u.src.Legacy)
	for _, d := range u.src.Datasets {
		o = append(o, d.Plants)
	}
	return o
}

// findCollisions marks the identifiers that appear under more than one
// country and logs each pair of countries once.
func (u *run) findCollisions() {
	countries := make(map[string][]string)
	var order []string
	for _, c := range u.tiers() {
		c.Range(func(p *gppd.Plant) bool {
			if p.Country == "" {
				return true
			}
			cs, ok := countries[p.ID]
			if !ok {
				order = append(order, p.ID)
			}
			for _, c := range cs {
				if c == p.Country {
					return true
				}
			}
			countries[p.ID] = append(cs, p.Country)
			return true
		})
	}
	for _, id := range order {
		cs := countries[id]
		if len(cs) < 2 {
			continue
		}
		u.colliding[id] = true
		u.res.Report.Collisions++
		for _, c := range cs[1:] {
			audit.CollisionEntry(u.log, id, cs[0], c).Error("reconcile: plant id used in two countries")
			u.res.Collisions = append(u.res.Collisions, Collision{ID: id, Country1: cs[0], Country2: c})
		}
	}
}

func (u *run) admit(source string, p *gppd.Plant) bool {
	if err := u.b.Add(p); err != nil {
		u.log.WithField("source", source).Warn(err)
		u.dump(source, p, DuplicateID)
		return false
	}
	u.res.Report.admit(source, p)
	u.res.Dump = append(u.res.Dump, DumpRecord{Plant: p, Source: source, InDatabase: true, Reason: Admitted})
	return true
}

func (u *run) dump(source string, p *gppd.Plant, reason Reason) {
	u.res.Report.exclude(reason, p)
	u.res.Dump = append(u.res.Dump, DumpRecord{Plant: p, Source: source, Reason: reason})
}

func (u *run) capacityOK(p *gppd.Plant) bool {
	return p.Capacity.Valid && p.Capacity.Value >= u.MinCapacity
}

// check applies the collision, capacity, and location tests shared by
// the feed and observatory tiers.
func (u *run) check(source string, p *gppd.Plant) {
	switch {
	case u.colliding[p.ID]:
		u.dump(source, p, IDCollision)
	case !u.capacityOK(p):
		u.dump(source, p, BelowCapacity)
	case !p.Location.Known:
		u.dump(source, p, NoLocation)
	default:
		u.admit(source, p)
	}
}

func (u *run) feeds() {
	for _, name := range sortedFeeds(u.src.Feeds) {
		feed := u.src.Feeds[name]
		source := feed.Name()
		if source == "" {
			source = name
		}
		c, ok := u.Countries.Lookup(name)
		if !ok || !c.Automated {
			u.log.WithField("country", name).Warn("reconcile: feed for a country without an automated policy; ignoring it")
			feed.Range(func(p *gppd.Plant) bool {
				u.dump(source, p, NotAuthorized)
				return true
			})
			continue
		}
		feed.Range(func(p *gppd.Plant) bool {
			u.check(source, p)
			return true
		})
	}
}

func (u *run) curatedTable() {
	src := u.src.Curated
	if src == nil {
		return
	}
	source := src.Name()
	src.Range(func(p *gppd.Plant) bool {
		if u.colliding[p.ID] {
			u.dump(source, p, IDCollision)
			return true
		}
		c, ok := u.Countries.Lookup(p.Country)
		if !ok {
			audit.With(u.log, audit.Country).WithFields(logrus.Fields{
				"plant":   p.ID,
				"country": p.Country,
			}).Warn("reconcile: curated plant in unknown country")
			u.dump(source, p, UnknownCountry)
			return true
		}
		if c.Automated || c.UseObservatory || c.CuratedBuiltIn {
			return true
		}
		if !u.capacityOK(p) {
			u.dump(source, p, BelowCapacity)
			return true
		}
		if p.Location.Known {
			u.curated[p.ID] = u.admit(source, p)
			return true
		}
		link := u.src.Concordance[p.ID]
		if loc, ok := u.linkedLocation(p.ID, u.src.Observatory, link.Observatory); ok {
			p.Location, p.GeolocationSource = loc, u.ObservatoryName
			u.curated[p.ID] = u.admit(source, p)
			return true
		}
		if loc, ok := u.linkedLocation(p.ID, u.src.Legacy, link.Legacy); ok {
			p.Location, p.GeolocationSource = loc, u.LegacyName
			u.consumed[link.Legacy] = true
			u.curated[p.ID] = u.admit(source, p)
			return true
		}
		u.dump(source, p, NoLocation)
		return true
	})
}

// linkedLocation returns the location of the record id in c, if it has
// a valid one.
func (u *run) linkedLocation(plant string, c *store.Collection, id string) (gppd.Location, bool) {
	if id == "" || u.colliding[id] {
		return gppd.Location{}, false
	}
	p, ok := c.Get(id)
	if !ok {
		u.log.WithFields(logrus.Fields{
			"plant":  plant,
			"linked": id,
		}).Warn("reconcile: concordance links to a missing record")
		return gppd.Location{}, false
	}
	return p.Location, p.Location.Known
}

func (u *run) observatory() {
	src := u.src.Observatory
	if src == nil {
		return
	}
	source := src.Name()
	links := u.src.Concordance.reverse(u.log)
	src.Range(func(p *gppd.Plant) bool {
		c, ok := u.Countries.Lookup(p.Country)
		if !ok || !c.UseObservatory {
			return true
		}
		l := links[p.ID]
		switch {
		case l[1] != "" && u.consumed[l[1]]:
			u.dump(source, p, ConsumedLegacy)
		case l[0] != "" && u.curated[l[0]]:
			u.dump(source, p, LinkedToCurated)
		default:
			u.check(source, p)
		}
		return true
	})
}

func (u *run) unusedLegacy() {
	src := u.src.Legacy
	if src == nil {
		return
	}
	src.Range(func(p *gppd.Plant) bool {
		if !u.consumed[p.ID] {
			u.res.Dump = append(u.res.Dump, DumpRecord{Plant: p, Source: src.Name(), Reason: UnusedLegacy})
		}
		return true
	})
}

func (u *run) datasets() {
	for _, d := range u.src.Datasets {
		d.Plants.Range(func(p *gppd.Plant) bool {
			switch {
			case u.colliding[p.ID]:
				u.dump(d.Name, p, IDCollision)
			case d.Exclude[p.ID]:
				u.dump(d.Name, p, Excluded)
			case d.Skip[p.Country] && !d.Whitelist[d.Regions[p.ID]]:
				u.res.Report.skip(p.Country, p)
				u.res.Dump = append(u.res.Dump, DumpRecord{Plant: p, Source: d.Name, Reason: CountrySkipped})
			default:
				u.admit(d.Name, p)
			}
			return true
		})
	}
}

func sortedFeeds(m map[string]*store.Collection) []string {
	o := make([]string, 0, len(m))
	for k := range m {
		o = append(o, k)
	}
	sort.Strings(o)
	return o
}

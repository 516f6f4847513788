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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
)

// Identity of the solar dataset.
const (
	SolarCode   = "WKS"
	SolarSource = "Wiki-Solar"
	SolarURL    = "https://www.wiki-solar.org"
)

// defaultTerritories maps the territory codes used by the solar dataset
// to the countries that administer them.
var defaultTerritories = map[string]string{
	"BES": "Netherlands",
	"CYM": "United Kingdom",
	"PRI": "United States of America",
	"VIR": "United States of America",
	"REU": "France",
}

// readTerritories reads territory assignments from a TOML file of the form
//
//	[Territories]
//	BES = "Netherlands"
//
// The assignments are added to the defaults.
func readTerritories(r io.Reader) (map[string]string, error) {
	var c struct {
		Territories map[string]string
	}
	if _, err := toml.DecodeReader(r, &c); err != nil {
		return nil, fmt.Errorf("gppd: reading solar territories: %v", err)
	}
	o := make(map[string]string, len(defaultTerritories)+len(c.Territories))
	for k, v := range defaultTerritories {
		o[k] = v
	}
	for k, v := range c.Territories {
		o[strings.ToUpper(k)] = v
	}
	return o, nil
}

// solarReader reads the solar dataset.
type solarReader struct {
	Countries   *thesaurus.Registry
	Territories map[string]string
	Log         logrus.FieldLogger
}

// Read reads a CSV table with the columns id, name, iso3, capacity_mw,
// latitude, longitude, and optionally owner and commissioning_year.
// The country of each plant is found from its territory or ISO code.
func (sr *solarReader) Read(r io.Reader) (*reconcile.Dataset, error) {
	cr, err := csvutil.NewReader(r, "id", "name", "iso3", "capacity_mw", "latitude", "longitude")
	if err != nil {
		return nil, fmt.Errorf("gppd: solar dataset: %v", err)
	}
	if sr.Log == nil {
		sr.Log = logrus.StandardLogger()
	}
	territories := sr.Territories
	if territories == nil {
		territories = defaultTerritories
	}
	d := &reconcile.Dataset{Name: SolarSource, Regions: make(map[string]string)}
	b := store.NewBuilder(SolarSource)
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("gppd: reading solar dataset: %v", err)
		}
		log := sr.Log.WithField("line", cr.Line())
		get := func(col string) string { return cr.Header.Get(rec, col) }

		n, err := gppd.ParseFloat(get("id"))
		if err != nil || n.Value <= 0 {
			log.WithField("id", get("id")).Warn("gppd: solar plant without a valid id")
			continue
		}
		p, err := gppd.NewPlant(gppd.MakeID(SolarCode, int(n.Value)), get("name"))
		if err != nil {
			audit.With(log, audit.Record).Warn(err)
			continue
		}
		p.SetPrimaryFuel(gppd.Solar)
		p.Owner = gppd.CleanText(get("owner"))
		p.Source, p.URL, p.GeolocationSource = SolarSource, SolarURL, SolarSource

		region := strings.ToUpper(get("iso3"))
		d.Regions[p.ID] = region
		if name, ok := territories[region]; ok {
			p.Country = name
		} else if c, ok := sr.Countries.ByISO3(region); ok {
			p.Country = c.Name
		} else {
			audit.With(log, audit.Country).WithFields(logrus.Fields{
				"plant": p.ID,
				"iso3":  region,
			}).Warn("gppd: solar plant in unknown country")
		}

		if p.Capacity, err = gppd.ParseCapacity(get("capacity_mw")); err != nil && !errors.Is(err, gppd.ErrMissing) {
			log.WithField("plant", p.ID).Warn(err)
		}
		if y, err := gppd.ParseYear(get("commissioning_year")); err == nil {
			p.CommissioningYear = gppd.SomeFloat(float64(y.Value))
		}
		lat, _ := gppd.ParseFloat(get("latitude"))
		lon, _ := gppd.ParseFloat(get("longitude"))
		p.Location = gppd.LocationFrom(lat, lon, "")

		if err := b.Add(p); err != nil {
			log.Warn(err)
		}
	}
	d.Plants = b.Snapshot()
	return d, nil
}

// readSolarExclusion reads a CSV table with the column id listing solar
// plants that are never imported.
func readSolarExclusion(r io.Reader) (map[string]bool, error) {
	cr, err := csvutil.NewReader(r, "id")
	if err != nil {
		return nil, fmt.Errorf("gppd: solar exclusion list: %v", err)
	}
	o := make(map[string]bool)
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return o, nil
		}
		if err != nil {
			return nil, fmt.Errorf("gppd: reading solar exclusion list: %v", err)
		}
		n, err := gppd.ParseFloat(cr.Header.Get(rec, "id"))
		if err != nil {
			continue
		}
		o[gppd.MakeID(SolarCode, int(n.Value))] = true
	}
}

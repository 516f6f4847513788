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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/aggregate"
	"github.com/globalpowerplants/gppd/estimate"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
)

// withFile opens the named file and passes it to fn.
func withFile(path string, fn func(r io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return fn(f)
}

// isExcel returns whether path names a spreadsheet.
func isExcel(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}

func loadCountries(path string, log logrus.FieldLogger) (*thesaurus.Registry, error) {
	var r *thesaurus.Registry
	err := withFile(path, func(f io.Reader) error {
		var err error
		r, err = thesaurus.ReadRegistry(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading country information: %v", err)
	}
	r.Log = log
	return r, nil
}

// setPolicies overrides the policy flags of countries.
func setPolicies(r *thesaurus.Registry, policies map[string]string) error {
	for name, s := range policies {
		p, err := thesaurus.ParsePolicy(s)
		if err != nil {
			return fmt.Errorf("gppd: CountryPolicy %s: %v", name, err)
		}
		if err := r.SetPolicy(name, p); err != nil {
			return err
		}
	}
	return nil
}

func loadFuels(path string, log logrus.FieldLogger) (*thesaurus.FuelThesaurus, error) {
	ft, err := thesaurus.OpenFuelThesaurus(path)
	if err != nil {
		return nil, fmt.Errorf("gppd: loading fuel thesaurus: %v", err)
	}
	ft.Log = log
	return ft, nil
}

func loadHeaders(path string) (thesaurus.HeaderThesaurus, error) {
	if path == "" {
		return nil, nil
	}
	var h thesaurus.HeaderThesaurus
	err := withFile(path, func(f io.Reader) error {
		var err error
		h, err = thesaurus.ReadHeaderThesaurus(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading header thesaurus: %v", err)
	}
	return h, nil
}

func loadConcordance(path string, log logrus.FieldLogger) (reconcile.Concordance, error) {
	var c reconcile.Concordance
	err := withFile(path, func(f io.Reader) error {
		var err error
		c, err = reconcile.ReadConcordance(f, log)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading concordance: %v", err)
	}
	return c, nil
}

// loadDatabase reads a source database. An empty path gives a nil
// collection.
func loadDatabase(path string) (*store.Collection, error) {
	if path == "" {
		return nil, nil
	}
	c, err := store.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("gppd: loading database: %v", err)
	}
	return c, nil
}

// loadFeeds reads the automated per-country databases. The name of each
// database must be the ISO alpha-3 code of its country.
func loadFeeds(paths []string, countries *thesaurus.Registry) (map[string]*store.Collection, error) {
	o := make(map[string]*store.Collection, len(paths))
	for _, path := range paths {
		c, err := loadDatabase(path)
		if err != nil {
			return nil, err
		}
		country, ok := countries.ByISO3(c.Name())
		if !ok {
			return nil, fmt.Errorf("gppd: database %s: %q is not a country code", path, c.Name())
		}
		if _, ok := o[country.Name]; ok {
			return nil, fmt.Errorf("gppd: database %s: second database for %s", path, country.Name)
		}
		o[country.Name] = c
	}
	return o, nil
}

func loadSolar(cfg *BuildConfig, countries *thesaurus.Registry, log logrus.FieldLogger) (*reconcile.Dataset, error) {
	territories := defaultTerritories
	if cfg.SolarTerritories != "" {
		err := withFile(cfg.SolarTerritories, func(f io.Reader) error {
			var err error
			territories, err = readTerritories(f)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	sr := &solarReader{Countries: countries, Territories: territories, Log: log}
	var d *reconcile.Dataset
	err := withFile(cfg.SolarFile, func(f io.Reader) error {
		var err error
		d, err = sr.Read(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading solar dataset: %v", err)
	}
	if cfg.SolarExclusion != "" {
		err := withFile(cfg.SolarExclusion, func(f io.Reader) error {
			var err error
			d.Exclude, err = readSolarExclusion(f)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	d.Skip = make(map[string]bool)
	for _, name := range cfg.SolarSkipCountries {
		if c := countries.Standardize(name); c != "" {
			d.Skip[c] = true
		}
	}
	d.Whitelist = make(map[string]bool)
	for _, code := range cfg.SolarWhitelist {
		d.Whitelist[strings.ToUpper(strings.TrimSpace(code))] = true
	}
	return d, nil
}

func loadLinked(cfg *BuildConfig, log logrus.FieldLogger) (*reconcile.LinkedGeneration, error) {
	lg := &reconcile.LinkedGeneration{Source: cfg.LinkedSource, Threshold: cfg.threshold(), Log: log}
	if err := withFile(cfg.LinkedUnits, lg.ReadUnitLinks); err != nil {
		return nil, fmt.Errorf("gppd: loading linked units: %v", err)
	}
	if err := withFile(cfg.LinkedData, lg.ReadUnitGeneration); err != nil {
		return nil, fmt.Errorf("gppd: loading linked generation: %v", err)
	}
	if cfg.LinkedBlacklist != "" {
		if err := withFile(cfg.LinkedBlacklist, lg.ReadBlacklist); err != nil {
			return nil, fmt.Errorf("gppd: loading linked generation blacklist: %v", err)
		}
	}
	return lg, nil
}

// loadTotals reads national generation totals from a CSV file or from a
// sheet of a spreadsheet.
func loadTotals(cfg *BuildConfig, tr *estimate.TotalsReader) (estimate.Totals, error) {
	if isExcel(cfg.GenerationTotals) {
		s, err := excelSheet(cfg.GenerationTotals, cfg.GenerationSheet)
		if err != nil {
			return nil, err
		}
		return tr.ReadSheet(s, cfg.EstimationYear)
	}
	var t estimate.Totals
	err := withFile(cfg.GenerationTotals, func(f io.Reader) error {
		var err error
		t, err = tr.ReadCSV(f, cfg.EstimationYear)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading generation totals: %v", err)
	}
	return t, nil
}

func loadWEPP(path string) ([]reconcile.WEPPMatch, error) {
	var m []reconcile.WEPPMatch
	err := withFile(path, func(f io.Reader) error {
		var err error
		m, err = reconcile.ReadWEPPMatches(f)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("gppd: loading WEPP matches: %v", err)
	}
	return m, nil
}

// loadRecords reads a raw unit table from a CSV file or from a sheet of
// a spreadsheet.
func loadRecords(path, sheet string, tr *aggregate.TableReader) ([]*gppd.RawRecord, error) {
	if isExcel(path) {
		s, err := excelSheet(path, sheet)
		if err != nil {
			return nil, err
		}
		return tr.ReadSheet(s)
	}
	var recs []*gppd.RawRecord
	err := withFile(path, func(f io.Reader) error {
		var err error
		recs, err = tr.ReadCSV(f)
		return err
	})
	return recs, err
}

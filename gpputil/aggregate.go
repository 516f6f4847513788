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
	"os"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/aggregate"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
)

// AggregateConfig holds the configuration of the aggregation of one raw
// unit table.
type AggregateConfig struct {
	CountryInformation, FuelThesaurus, HeaderThesaurus string

	Input, Sheet, Output string
	Code, Source, URL    string
	GroupByName          bool
	CapacityYear         int
	DataYear             int
}

// AggregateConfigFrom reads an aggregation configuration from cfg.
func AggregateConfigFrom(cfg *viper.Viper) (*AggregateConfig, error) {
	c := &AggregateConfig{
		CountryInformation: os.ExpandEnv(cfg.GetString("CountryInformation")),
		FuelThesaurus:      os.ExpandEnv(cfg.GetString("FuelThesaurus")),
		HeaderThesaurus:    os.ExpandEnv(cfg.GetString("HeaderThesaurus")),
		Input:              os.ExpandEnv(cfg.GetString("Aggregate.Input")),
		Sheet:              cfg.GetString("Aggregate.Sheet"),
		Code:               strings.ToUpper(strings.TrimSpace(cfg.GetString("Aggregate.Code"))),
		Source:             cfg.GetString("Aggregate.Source"),
		URL:                cfg.GetString("Aggregate.URL"),
		GroupByName:        cfg.GetBool("Aggregate.GroupByName"),
		CapacityYear:       cfg.GetInt("Aggregate.CapacityYear"),
		DataYear:           cfg.GetInt("Aggregate.DataYear"),
	}
	var err error
	if c.Output, err = checkOutputFile(cfg.GetString("Aggregate.Output")); err != nil {
		return nil, err
	}
	if c.Input == "" {
		return nil, fmt.Errorf("gppd: the Aggregate.Input configuration variable is required")
	}
	if c.Code == "" {
		return nil, fmt.Errorf("gppd: the Aggregate.Code configuration variable is required")
	}
	return c, nil
}

// Aggregate reads the raw unit table specified by cfg, merges its units
// into plants, and writes the plants to the output database. A summary
// is written to w.
func Aggregate(cfg *AggregateConfig, w io.Writer) error {
	log := logrus.StandardLogger()

	fuels, err := loadFuels(cfg.FuelThesaurus, log)
	if err != nil {
		return err
	}
	var countries *thesaurus.Registry
	if cfg.CountryInformation != "" {
		if countries, err = loadCountries(cfg.CountryInformation, log); err != nil {
			return err
		}
	}
	headers, err := loadHeaders(cfg.HeaderThesaurus)
	if err != nil {
		return err
	}

	tr := &aggregate.TableReader{Headers: headers, Source: cfg.Source, Log: log}
	recs, err := loadRecords(cfg.Input, cfg.Sheet, tr)
	if err != nil {
		return fmt.Errorf("gppd: reading %s: %v", cfg.Input, err)
	}

	a := &aggregate.Aggregator{
		Code:         cfg.Code,
		Fuels:        fuels,
		Countries:    countries,
		Source:       cfg.Source,
		URL:          cfg.URL,
		CapacityYear: cfg.CapacityYear,
		DataYear:     cfg.DataYear,
		GroupByName:  cfg.GroupByName,
		Log:          log,
	}
	var skipped int
	for _, rec := range recs {
		if err := a.Add(rec); err != nil {
			if !errors.Is(err, gppd.ErrMissingName) && !errors.Is(err, gppd.ErrMissingID) {
				return err
			}
			skipped++
		}
	}
	plants := a.Plants()
	c, err := store.FromPlants(cfg.Code, plants)
	if err != nil {
		return err
	}
	if err := store.WriteFile(cfg.Output, c); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: %d records, %d skipped, %d plants, %d conflicts\n",
		cfg.Code, len(recs), skipped, c.Len(), len(a.Conflicts()))
	return nil
}

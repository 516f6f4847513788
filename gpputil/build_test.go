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
	"bytes"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd/store"
)

const testCountries = `primary_country_name,iso_country_code,iso_country_code_2,geo_country_name,carma_country_name,iea_country,automated,use_geo,wri_data_built_in
Brazil,BRA,BR,Brazil,Brazil,Brazil,1,0,0
Chile,CHL,CL,Chile,Chile,Chile,0,0,0
`

const testFuels = `Hydro: [hydroelectric]
Gas: [natural gas]
`

const testUnits = `key,name,capacity_mw,fuel,latitude,longitude,country
1,Usina A,100,Hydro,-10,-50,Brazil
1,Usina A,50,hydroelectric,-10,-50,Brazil
2,Usina B,0.5,natural gas,-11,-51,Brazil
`

func writeTestFile(t *testing.T, dir, name, contents string) string {
	path := filepath.Join(dir, name)
	if err := ioutil.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAggregateAndBuild(t *testing.T) {
	dir, err := ioutil.TempDir("", "gppd-build")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	countries := writeTestFile(t, dir, "countries.csv", testCountries)
	fuels := writeTestFile(t, dir, "fuels.yaml", testFuels)

	acfg := &AggregateConfig{
		CountryInformation: countries,
		FuelThesaurus:      fuels,
		Input:              writeTestFile(t, dir, "units.csv", testUnits),
		Output:             filepath.Join(dir, "BRA.gob"),
		Code:               "BRA",
		Source:             "Agência Nacional",
		DataYear:           2019,
	}
	var w bytes.Buffer
	if err := Aggregate(acfg, &w); err != nil {
		t.Fatal(err)
	}
	if want := "BRA: 3 records, 0 skipped, 2 plants, 0 conflicts\n"; w.String() != want {
		t.Errorf("want %q, have %q", want, w.String())
	}
	feed, err := store.ReadFile(acfg.Output)
	if err != nil {
		t.Fatal(err)
	}
	p, ok := feed.Get("BRA0000001")
	if !ok {
		t.Fatal("missing BRA0000001")
	}
	if p.Capacity.Value != 150 {
		t.Errorf("capacity: want 150, have %v", p.Capacity)
	}

	cfg := &BuildConfig{
		CountryInformation: countries,
		FuelThesaurus:      fuels,
		FeedDatabases:      []string{acfg.Output},
		MinCapacityMW:      1,
		OutputFile:         filepath.Join(dir, "gppd.csv"),
		DatabaseFile:       filepath.Join(dir, "gppd.gob"),
		Dump:               true,
		DumpFile:           filepath.Join(dir, "gppd_dump.csv"),
		AuditFile:          filepath.Join(dir, "audit.csv"),
		SummaryFile:        filepath.Join(dir, "summary.xlsx"),
		MetricsFile:        filepath.Join(dir, "gppd.prom"),
		LogFile:            filepath.Join(dir, "gppd.log"),
		FirstYear:          2013,
		LastYear:           2019,
	}
	w.Reset()
	if err := Build(cfg, &w); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(w.String(), "BRA") {
		t.Errorf("report does not mention the feed:\n%s", w.String())
	}

	out, err := ioutil.ReadFile(cfg.OutputFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "BRA0000001") || strings.Contains(string(out), "BRA0000002") {
		t.Errorf("output should contain only BRA0000001:\n%s", out)
	}
	dump, err := ioutil.ReadFile(cfg.DumpFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dump), "BRA0000002") {
		t.Errorf("dump should contain BRA0000002:\n%s", dump)
	}
	db, err := store.ReadFile(cfg.DatabaseFile)
	if err != nil {
		t.Fatal(err)
	}
	if db.Len() != 1 {
		t.Errorf("database: want 1 plant, have %d", db.Len())
	}
	logText, err := ioutil.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(logText), "fingerprint=") {
		t.Errorf("log should record the database fingerprint:\n%s", logText)
	}
	for _, path := range []string{cfg.AuditFile, cfg.SummaryFile, cfg.MetricsFile} {
		if _, err := os.Stat(path); err != nil {
			t.Error(err)
		}
	}
}

func TestBuildUnknownFeed(t *testing.T) {
	dir, err := ioutil.TempDir("", "gppd-build")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	c, err := store.FromPlants("XYZ", nil)
	if err != nil {
		t.Fatal(err)
	}
	feed := filepath.Join(dir, "XYZ.gob")
	if err := store.WriteFile(feed, c); err != nil {
		t.Fatal(err)
	}
	cfg := &BuildConfig{
		CountryInformation: writeTestFile(t, dir, "countries.csv", testCountries),
		FeedDatabases:      []string{feed},
		OutputFile:         filepath.Join(dir, "gppd.csv"),
		LogFile:            filepath.Join(dir, "gppd.log"),
		FirstYear:          2013,
		LastYear:           2019,
	}
	if err := Build(cfg, ioutil.Discard); err == nil || !strings.Contains(err.Error(), "not a country code") {
		t.Errorf("want a country code error, have %v", err)
	}
}

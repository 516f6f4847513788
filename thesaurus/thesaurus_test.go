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

package thesaurus

import (
	"bytes"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/sirupsen/logrus"
)

func testFuels(t *testing.T) *FuelThesaurus {
	ft, err := NewFuelThesaurus(map[gppd.Fuel][]string{
		gppd.Coal:    {"coal", "Bituminous", "Hard Coal"},
		gppd.Gas:     {"gas", "Natural Gas", "Gas Natural"},
		gppd.Oil:     {"oil", "Diesel", "Fuel Oil"},
		gppd.Hydro:   {"hydro", "Hidroeléctrica"},
		gppd.Solar:   {"solar", "PV"},
		gppd.Storage: {"Battery"},
		gppd.Other:   {"other"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return ft
}

func TestStandardizeFuel(t *testing.T) {
	ft := testFuels(t)
	tests := []struct {
		raw  string
		want gppd.FuelSet
	}{
		{raw: "Coal/Gas", want: gppd.NewFuelSet(gppd.Coal, gppd.Gas)},
		{raw: "Natural Gas", want: gppd.NewFuelSet(gppd.Gas)},
		{raw: "Diesel y Gas Natural", want: gppd.NewFuelSet(gppd.Oil, gppd.Gas)},
		{raw: "Hard Coal and Fuel Oil, PV", want: gppd.NewFuelSet(gppd.Coal, gppd.Oil, gppd.Solar)},
		{raw: " Hidroeléctrica ", want: gppd.NewFuelSet(gppd.Hydro)},
		{raw: "natural gas", want: gppd.NewFuelSet()},
		{raw: "Coal/", want: gppd.NewFuelSet(gppd.Coal)},
		{raw: "", want: gppd.NewFuelSet()},
	}
	for _, test := range tests {
		have := ft.Standardize(test.raw)
		if !reflect.DeepEqual(test.want, have) {
			t.Errorf("%q: want %v, have %v", test.raw, test.want, have)
		}
	}
}

func TestStandardizeOne(t *testing.T) {
	ft := testFuels(t)
	if _, err := ft.StandardizeOne("Coal/Gas"); !errors.Is(err, ErrFuelCount) {
		t.Errorf("want ErrFuelCount, have %v", err)
	}
	if _, err := ft.StandardizeOne("Unobtainium"); !errors.Is(err, ErrFuelCount) {
		t.Errorf("want ErrFuelCount, have %v", err)
	}
	f, err := ft.StandardizeOne("  ")
	if err != nil || f != "" {
		t.Errorf("blank: want no data, have %q, %v", f, err)
	}
	f, err = ft.StandardizeOne("Battery")
	if err != nil {
		t.Fatal(err)
	}
	if f != gppd.Storage {
		t.Errorf("want Storage, have %s", f)
	}
}

func TestUnmatchedFuelAudit(t *testing.T) {
	ft := testFuels(t)
	h, err := audit.NewHook(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.Out = ioutil.Discard
	log.AddHook(h)
	ft.Log = log
	if have := ft.Standardize("Coal/Unobtainium"); !reflect.DeepEqual(have, gppd.NewFuelSet(gppd.Coal)) {
		t.Errorf("unmatched token not dropped: %v", have)
	}
	if have := h.Counts()[audit.Fuel]; have != 1 {
		t.Errorf("want 1 fuel audit event, have %d", have)
	}
}

func TestDuplicateFuelAlias(t *testing.T) {
	_, err := NewFuelThesaurus(map[gppd.Fuel][]string{
		gppd.Coal: {"Lignite"},
		gppd.Gas:  {"Lignite"},
	})
	if err == nil {
		t.Error("duplicate alias should be an error")
	}
}

func TestReadFuelThesaurus(t *testing.T) {
	ft, err := ReadFuelThesaurus(strings.NewReader("Coal:\n  - Hard Coal\nWave and Tidal:\n  - Tidal\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := []gppd.Fuel{gppd.Coal, gppd.WaveTidal}
	if have := ft.Labels(); !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
	if f, _ := ft.StandardizeOne("Tidal"); f != gppd.WaveTidal {
		t.Errorf("want %s, have %s", gppd.WaveTidal, f)
	}
}

func TestReadFuelThesaurusDir(t *testing.T) {
	dir, err := ioutil.TempDir("", "fuels")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	files := map[string]string{
		"coal.txt":  "Coal\nHard Coal\nLignite\n",
		"hydro.txt": "Hydro\r\nRun-of-River\r\n",
	}
	for name, content := range files {
		if err := ioutil.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	ft, err := OpenFuelThesaurus(dir)
	if err != nil {
		t.Fatal(err)
	}
	for raw, want := range map[string]gppd.Fuel{"Lignite": gppd.Coal, "Run-of-River": gppd.Hydro, "Hydro": gppd.Hydro} {
		if have, err := ft.StandardizeOne(raw); err != nil || have != want {
			t.Errorf("%s: want %s, have %s (%v)", raw, want, have, err)
		}
	}
}

const countryInfo = `primary_country_name,iso_country_code,iso_country_code_2,automated,use_geo,wri_data_built_in,geo_country_name,carma_country_name,iea_country
United States of America,USA,US,TRUE,FALSE,FALSE,USA,United States,United States
"Korea, Republic of",KOR,KR,FALSE,FALSE,FALSE,South Korea,Korea South,Korea
Brazil,BRA,BR,TRUE,FALSE,TRUE,Brazil,Brazil,Brazil
Chile,CHL,CL,TRUE,TRUE,FALSE,Chile,Chile,Chile
Germany,DEU,DE,FALSE,TRUE,FALSE,Germany,Germany,Germany
`

func testRegistry(t *testing.T) *Registry {
	r, err := ReadRegistry(strings.NewReader(countryInfo))
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func TestStandardizeCountry(t *testing.T) {
	r, err := NewRegistry([]Country{
		{Name: "United States of America", LegacyName: "United States"},
		{Name: "Korea Republic of", ObservatoryName: "South Korea", StatisticsName: "Korea"},
		{Name: "Germany"},
	})
	if err != nil {
		t.Fatal(err)
	}
	h, _ := audit.NewHook(nil, nil)
	log := logrus.New()
	log.Out = ioutil.Discard
	log.AddHook(h)
	r.Log = log

	tests := map[string]string{
		"United States":            "United States of America",
		"South Korea":              "Korea Republic of",
		"Korea, Republic of":       "Korea Republic of",
		"Korea":                    "Korea Republic of",
		"Germany":                  "Germany",
		"Atlantis":                 "",
		"United States of America": "United States of America",
	}
	for raw, want := range tests {
		if have := r.Standardize(raw); have != want {
			t.Errorf("%q: want %q, have %q", raw, want, have)
		}
	}
	if have := h.Counts()[audit.Country]; have != 1 {
		t.Errorf("want 1 country audit event, have %d", have)
	}
}

func TestRegistry(t *testing.T) {
	r := testRegistry(t)
	c, ok := r.ByISO3("bra")
	if !ok {
		t.Fatal("BRA not found")
	}
	want := Policy{Automated: true, CuratedBuiltIn: true}
	if c.Policy != want {
		t.Errorf("want %+v, have %+v", want, c.Policy)
	}
	wantAmbiguous := []string{"Chile"}
	if have := r.Ambiguous(); !reflect.DeepEqual(wantAmbiguous, have) {
		t.Errorf("want %v, have %v", wantAmbiguous, have)
	}
	p, err := ParsePolicy("automated, use_geo")
	if err != nil {
		t.Fatal(err)
	}
	if err := r.SetPolicy("Germany", p); err != nil {
		t.Fatal(err)
	}
	if c, _ := r.Lookup("Germany"); !c.Automated || !c.UseObservatory {
		t.Errorf("policy not set: %+v", c.Policy)
	}
	if err := r.SetPolicy("Atlantis", p); err == nil {
		t.Error("unknown country should be an error")
	}
	if len(r.Names()) != 5 {
		t.Errorf("want 5 countries, have %v", r.Names())
	}
}

func TestHeaderThesaurus(t *testing.T) {
	h, err := ReadHeaderThesaurus(bytes.NewBufferString("name,alternates\nname,Plant Name,nombre\ncapacity_mw,Capacity (MW),MW\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]int{"name": 2, "capacity_mw": 0}
	if have := h.Match([]string{"MW", "Owner", "NOMBRE"}); !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
}

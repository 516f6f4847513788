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
	"io/ioutil"
	"reflect"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
)

func TestReadTerritories(t *testing.T) {
	have, err := readTerritories(strings.NewReader(`
[Territories]
gum = "United States of America"
REU = "Réunion"
`))
	if err != nil {
		t.Fatal(err)
	}
	if have["GUM"] != "United States of America" {
		t.Errorf("GUM: have %q", have["GUM"])
	}
	if have["REU"] != "Réunion" {
		t.Errorf("REU should be overridden: have %q", have["REU"])
	}
	if have["BES"] != "Netherlands" {
		t.Errorf("BES should keep its default: have %q", have["BES"])
	}
	if defaultTerritories["REU"] != "France" {
		t.Error("defaults were modified")
	}
}

func TestSolarReader(t *testing.T) {
	countries, err := thesaurus.NewRegistry([]thesaurus.Country{
		{Name: "France", ISO3: "FRA"},
		{Name: "Netherlands", ISO3: "NLD"},
	})
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.Out = ioutil.Discard
	countries.Log = log
	sr := &solarReader{Countries: countries, Log: log}
	d, err := sr.Read(strings.NewReader(`id,name,iso3,capacity_mw,latitude,longitude,owner
1,Sol A,FRA,10,45,2,EDF
2,Sol B,bes,5,12.1,-68.2,
3,Sol C,XXX,3,1,1,
x,Bad,FRA,1,1,1,
`))
	if err != nil {
		t.Fatal(err)
	}
	if d.Plants.Len() != 3 {
		t.Fatalf("want 3 plants, have %d", d.Plants.Len())
	}
	wantRegions := map[string]string{"WKS0000001": "FRA", "WKS0000002": "BES", "WKS0000003": "XXX"}
	if !reflect.DeepEqual(d.Regions, wantRegions) {
		t.Errorf("regions: want %v, have %v", wantRegions, d.Regions)
	}
	for id, want := range map[string]string{"WKS0000001": "France", "WKS0000002": "Netherlands", "WKS0000003": ""} {
		p, ok := d.Plants.Get(id)
		if !ok {
			t.Fatalf("missing %s", id)
		}
		if p.Country != want {
			t.Errorf("%s: want country %q, have %q", id, want, p.Country)
		}
		if p.PrimaryFuel != gppd.Solar {
			t.Errorf("%s: want fuel Solar, have %s", id, p.PrimaryFuel)
		}
	}
	p, _ := d.Plants.Get("WKS0000001")
	if p.Owner != "EDF" || p.Capacity != gppd.SomeFloat(10) || !p.Location.Known {
		t.Errorf("plant 1: %+v", p)
	}
}

func TestReadSolarExclusion(t *testing.T) {
	have, err := readSolarExclusion(strings.NewReader("id\n4\n17\n\n"))
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"WKS0000004": true, "WKS0000017": true}
	if !reflect.DeepEqual(have, want) {
		t.Errorf("want %v, have %v", want, have)
	}
}

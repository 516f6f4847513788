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

package aggregate

import (
	"errors"
	"io/ioutil"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/thesaurus"
	"github.com/sirupsen/logrus"
)

func testAggregator(t *testing.T) (*Aggregator, *audit.Hook) {
	ft, err := thesaurus.NewFuelThesaurus(map[gppd.Fuel][]string{
		gppd.Coal:  {"Bituminous"},
		gppd.Gas:   {"Natural Gas"},
		gppd.Oil:   {"Diesel"},
		gppd.Solar: {"PV"},
	})
	if err != nil {
		t.Fatal(err)
	}
	countries, err := thesaurus.NewRegistry([]thesaurus.Country{
		{Name: "Brazil", ISO3: "BRA"},
		{Name: "Argentina", ISO3: "ARG"},
	})
	if err != nil {
		t.Fatal(err)
	}
	h, err := audit.NewHook(nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	log := logrus.New()
	log.Out = ioutil.Discard
	log.AddHook(h)
	ft.Log, countries.Log = log, log
	return &Aggregator{
		Code:      "BRA",
		Fuels:     ft,
		Countries: countries,
		Source:    "ANEEL",
		DataYear:  2017,
		Log:       log,
	}, h
}

func unit(key string, capacity float64, fuel string) *gppd.RawRecord {
	return &gppd.RawRecord{
		Key:      key,
		Name:     "Plant " + key,
		Capacity: gppd.SomeFloat(capacity),
		Fuel:     fuel,
		Country:  "Brazil",
	}
}

func TestPrimaryFuelByCapacity(t *testing.T) {
	a, _ := testAggregator(t)
	for _, u := range []*gppd.RawRecord{unit("1", 100, "Coal"), unit("1", 150, "Natural Gas")} {
		if err := a.Add(u); err != nil {
			t.Fatal(err)
		}
	}
	plants := a.Plants()
	if len(plants) != 1 {
		t.Fatalf("want 1 plant, have %d", len(plants))
	}
	p := plants[0]
	if p.PrimaryFuel != gppd.Gas {
		t.Errorf("primary fuel: want Gas, have %s", p.PrimaryFuel)
	}
	if want := gppd.NewFuelSet(gppd.Coal); !reflect.DeepEqual(want, p.OtherFuels) {
		t.Errorf("other fuels: want %v, have %v", want, p.OtherFuels)
	}
	if p.Capacity != gppd.SomeFloat(250) {
		t.Errorf("capacity: want 250, have %v", p.Capacity)
	}
	if p.ID != "BRA0000001" {
		t.Errorf("id: want BRA0000001, have %s", p.ID)
	}
}

func TestFuelTieBreak(t *testing.T) {
	a, _ := testAggregator(t)
	a.Add(unit("7", 50, "Diesel"))
	a.Add(unit("7", 50, "Coal"))
	p := a.Plants()[0]
	if p.PrimaryFuel != gppd.Oil {
		t.Errorf("want first-seen fuel Oil, have %s", p.PrimaryFuel)
	}
	if p.OtherFuels.Has(p.PrimaryFuel) {
		t.Errorf("other fuels %v contain primary %s", p.OtherFuels, p.PrimaryFuel)
	}
}

func TestCommissioningYear(t *testing.T) {
	tests := []struct {
		name  string
		units [][2]float64 // capacity, year
		want  float64
	}{
		{name: "weighted", units: [][2]float64{{50, 2010}, {50, 2012}}, want: 2011},
		{name: "uneven", units: [][2]float64{{300, 2000}, {100, 2004}}, want: 2001},
		{name: "zero capacity", units: [][2]float64{{0, 1990}, {0, 2000}}, want: 1995},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a, _ := testAggregator(t)
			for _, u := range test.units {
				r := unit("3", u[0], "Coal")
				r.CommissioningYear = gppd.SomeInt(int(u[1]))
				a.Add(r)
			}
			have := a.Plants()[0].CommissioningYear
			if !have.Valid || math.Abs(have.Value-test.want) > 1e-9 {
				t.Errorf("want %g, have %v", test.want, have)
			}
		})
	}
}

func TestCommissioningMonth(t *testing.T) {
	a, _ := testAggregator(t)
	r := unit("3", 10, "Coal")
	r.CommissioningYear, r.CommissioningMonth = gppd.SomeInt(2000), gppd.SomeInt(6)
	a.Add(r)
	if have := a.Plants()[0].CommissioningYear; have != gppd.SomeFloat(2000.5) {
		t.Errorf("want 2000.5, have %v", have)
	}
}

func TestMissingCapacity(t *testing.T) {
	a, _ := testAggregator(t)
	u := unit("4", 0, "Coal")
	u.Capacity = gppd.Float{}
	a.Add(u)
	p := a.Plants()[0]
	if p.Capacity.Valid {
		t.Errorf("capacity should be unknown, have %v", p.Capacity)
	}
	if p.PrimaryFuel != gppd.Coal {
		t.Errorf("want Coal, have %s", p.PrimaryFuel)
	}
	a.Add(unit("4", 20, "PV"))
	p = a.Plants()[0]
	if p.Capacity != gppd.SomeFloat(20) || p.PrimaryFuel != gppd.Solar {
		t.Errorf("want 20 MW Solar, have %v %s", p.Capacity, p.PrimaryFuel)
	}
	if p.OtherFuels.Has(gppd.Coal) {
		t.Errorf("zero-capacity fuel should not be an other fuel: %v", p.OtherFuels)
	}
}

func TestGenerationAndLocation(t *testing.T) {
	a, _ := testAggregator(t)
	u1 := unit("5", 10, "Coal")
	u1.Generation = []gppd.Generation{gppd.AnnualGeneration(10, 2015, "ANEEL")}
	u1.Location = gppd.NewLocation(-10, -50, "")
	u2 := unit("5", 10, "Coal")
	u2.Generation = []gppd.Generation{gppd.AnnualGeneration(5, 2015, "ANEEL"), gppd.AnnualGeneration(7, 2016, "ANEEL")}
	u2.Location = gppd.NewLocation(0, 0, "")
	u3 := unit("5", 10, "Coal")
	u3.Location = gppd.NewLocation(-11, -51, "")
	for _, u := range []*gppd.RawRecord{u1, u2, u3} {
		a.Add(u)
	}
	p := a.Plants()[0]
	if have := p.ReportedGeneration(2015); have != gppd.SomeFloat(15) {
		t.Errorf("2015: want 15, have %v", have)
	}
	if have := p.ReportedGeneration(2016); have != gppd.SomeFloat(7) {
		t.Errorf("2016: want 7, have %v", have)
	}
	if lat := p.Location.Latitude(); lat != gppd.SomeFloat(-11) {
		t.Errorf("later valid location should win, have %v", lat)
	}
}

func TestMissingName(t *testing.T) {
	a, h := testAggregator(t)
	u := unit("6", 10, "Coal")
	u.Name = "\n"
	if err := a.Add(u); !errors.Is(err, gppd.ErrMissingName) {
		t.Errorf("want ErrMissingName, have %v", err)
	}
	u = unit("", 10, "Coal")
	if err := a.Add(u); !errors.Is(err, gppd.ErrMissingID) {
		t.Errorf("want ErrMissingID, have %v", err)
	}
	if len(a.Plants()) != 0 {
		t.Error("records without name or key should be dropped")
	}
	if have := h.Counts()[audit.Record]; have != 2 {
		t.Errorf("want 2 record audit events, have %d", have)
	}
}

func TestGroupByName(t *testing.T) {
	a, _ := testAggregator(t)
	a.GroupByName = true
	a.Add(&gppd.RawRecord{Name: "Itaipu", Capacity: gppd.SomeFloat(700), Fuel: "Hydro"})
	a.Add(&gppd.RawRecord{Name: "Itaipu", Capacity: gppd.SomeFloat(700)})
	a.Add(&gppd.RawRecord{Key: "2", Name: "Tucurui", Capacity: gppd.SomeFloat(100)})
	a.Add(&gppd.RawRecord{Name: "Belo Monte", Capacity: gppd.SomeFloat(100)})
	plants := a.Plants()
	var ids []string
	for _, p := range plants {
		ids = append(ids, p.ID)
	}
	want := []string{"BRA0000001", "BRA0000002", "BRA0000003"}
	if !reflect.DeepEqual(want, ids) {
		t.Errorf("want %v, have %v", want, ids)
	}
	if plants[0].Capacity != gppd.SomeFloat(1400) {
		t.Errorf("want 1400, have %v", plants[0].Capacity)
	}
}

func TestIdentifierClash(t *testing.T) {
	a, h := testAggregator(t)
	for _, key := range []string{"BRA0000001", "Plant B", "2", "BRA0000002", "USA0000004"} {
		if err := a.Add(unit(key, 10, "Coal")); err != nil {
			t.Fatal(err)
		}
	}
	var ids []string
	for _, p := range a.Plants() {
		ids = append(ids, p.ID)
	}
	want := []string{"BRA0000001", "BRA0000003", "BRA0000002", "USA0000004"}
	if !reflect.DeepEqual(want, ids) {
		t.Errorf("want %v, have %v", want, ids)
	}
	if have := h.Counts()[audit.Record]; have != 1 {
		t.Errorf("want 1 record event, have %d", have)
	}
}

func TestCountryConflict(t *testing.T) {
	a, h := testAggregator(t)
	a.Add(unit("8", 10, "Coal"))
	u := unit("8", 10, "Coal")
	u.Country = "Argentina"
	a.Add(u)
	a.Add(u)
	a.Add(unit("9", 10, "Coal"))
	if plants := a.Plants(); len(plants) != 1 || plants[0].ID != "BRA0000009" {
		t.Errorf("conflicting plant should be withheld, have %v", plants)
	}
	want := []Conflict{{Key: "8", Countries: []string{"Brazil", "Argentina"}}}
	if have := a.Conflicts(); !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
	if have := h.Counts()[audit.Collision]; have != 1 {
		t.Errorf("want 1 collision event, have %d", have)
	}
}

func TestReadCSV(t *testing.T) {
	const table = `Plant Name,Code,MW,Fuel,Lat,Lon,Year,generation_gwh_2016,generation_gwh_2015,Country
Angra,101,640,Nuclear,-23.0,-44.46,1985,5000,4800,Brazil
Angra,101,1350,Nuclear,-23.0,-44.46,2001,,,Brazil
Bad,102,lots,Coal,0,0,19xx,,,Brazil
,,,,,,,,,
`
	h := thesaurus.HeaderThesaurus{
		ColName:              {"plant name"},
		ColKey:               {"code"},
		ColCapacity:          {"mw"},
		ColLatitude:          {"lat"},
		ColLongitude:         {"lon"},
		ColCommissioningYear: {"year"},
	}
	tr := &TableReader{Headers: h, Source: "ONS", Log: logrus.New()}
	tr.Log.(*logrus.Logger).Out = ioutil.Discard
	recs, err := tr.ReadCSV(strings.NewReader(table))
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 3 {
		t.Fatalf("want 3 records, have %d", len(recs))
	}
	r := recs[0]
	if r.Key != "101" || r.Capacity != gppd.SomeFloat(640) || !r.Location.Known || r.Source != "ONS" {
		t.Errorf("unexpected record %+v", r)
	}
	if len(r.Generation) != 2 || r.Generation[0].Start.Year() != 2015 {
		t.Errorf("unexpected generation %+v", r.Generation)
	}
	bad := recs[2]
	if bad.Capacity.Valid || bad.CommissioningYear.Valid || bad.Location.Known {
		t.Errorf("unparseable fields should be missing: %+v", bad)
	}
}

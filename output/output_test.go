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

package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/globalpowerplants/gppd/store"
	"github.com/globalpowerplants/gppd/thesaurus"
)

func testNormalizer(t *testing.T) *Normalizer {
	countries, err := thesaurus.NewRegistry([]thesaurus.Country{
		{Name: "Chile", ISO3: "CHL"},
		{Name: "Peru", ISO3: "PER"},
	})
	if err != nil {
		t.Fatal(err)
	}
	n := NewNormalizer(countries)
	n.FirstYear, n.LastYear = 2015, 2017
	return n
}

func plant(id, name, country string, capacity float64) *gppd.Plant {
	p, err := gppd.NewPlant(id, name)
	if err != nil {
		panic(err)
	}
	p.Country = country
	p.Capacity = gppd.SomeFloat(capacity)
	p.SetPrimaryFuel(gppd.Hydro)
	p.Location = gppd.NewLocation(-33.123456, -70.65, "")
	return p
}

func TestOtherFuels(t *testing.T) {
	tests := []struct {
		fuels []gppd.Fuel
		want  []gppd.Fuel
	}{
		{
			fuels: []gppd.Fuel{gppd.Other, gppd.Storage, gppd.Solar},
			want:  []gppd.Fuel{gppd.Solar, gppd.Other, gppd.Storage},
		},
		{
			fuels: []gppd.Fuel{gppd.Other},
			want:  []gppd.Fuel{gppd.Other},
		},
		{
			fuels: []gppd.Fuel{gppd.Wind, gppd.Other, gppd.Gas, gppd.Coal, gppd.Oil},
			want:  []gppd.Fuel{gppd.Coal, gppd.Gas, gppd.Oil},
		},
		{
			fuels: nil,
			want:  nil,
		},
	}
	for i, test := range tests {
		p := plant("CHL0000001", "A", "Chile", 10)
		p.AddOtherFuels(test.fuels...)
		if have := otherFuels(p); !reflect.DeepEqual(test.want, have) {
			t.Errorf("%d: want %v, have %v", i, test.want, have)
		}
	}
}

func TestRow(t *testing.T) {
	n := testNormalizer(t)
	p := plant("CHL0000001", "A", "Chile", 10)
	p.AddGeneration(gppd.AnnualGeneration(5, 2016, "CNE"))
	p.AddGeneration(gppd.AnnualGeneration(6, 2017, "CNE"))
	p.AddGeneration(gppd.AnnualGeneration(7, 2015, "EIA"))
	p.EstimatedGeneration = gppd.SomeFloat(8)
	r := n.Row(p)
	if r.Country != "CHL" {
		t.Errorf("want CHL, have %q", r.Country)
	}
	s := r.Strings(false)
	h := Header(n.FirstYear, n.LastYear, false)
	if len(s) != len(h) {
		t.Fatalf("row has %d fields, header %d", len(s), len(h))
	}
	got := make(map[string]string)
	for i, c := range h {
		got[c] = s[i]
	}
	want := map[string]string{
		"latitude":                 "-33.1235",
		"longitude":                "-70.6500",
		"generation_gwh_2015":      "7",
		"generation_gwh_2016":      "5",
		"generation_gwh_2017":      "6",
		"generation_data_source":   "CNE|EIA",
		"estimated_generation_gwh": "8",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s: want %q, have %q", k, v, got[k])
		}
	}
}

func TestRowEstimatedOnly(t *testing.T) {
	n := testNormalizer(t)
	p := plant("CHL0000001", "A", "Chile", 10)
	p.EstimatedGeneration = gppd.SomeFloat(8)
	r := n.Row(p)
	for i, g := range r.Generation {
		if g.Valid {
			t.Errorf("year %d: want no data, have %v", n.FirstYear+i, g)
		}
	}
	if r.GenerationSource != "" || r.EstimatedGeneration.Value != 8 {
		t.Errorf("unexpected generation fields: %q %v", r.GenerationSource, r.EstimatedGeneration)
	}
	p.Location = gppd.NewLocation(0, 0, "")
	if s := n.Row(p).Strings(false); s[5] != "" || s[6] != "" {
		t.Errorf("unknown location should be empty: %q %q", s[5], s[6])
	}
}

func TestRowsSorted(t *testing.T) {
	n := testNormalizer(t)
	c, err := store.FromPlants("GPPD", []*gppd.Plant{
		plant("PER0000001", "A", "Peru", 1),
		plant("CHL0000002", "B", "Chile", 2),
		plant("CHL0000003", "A", "Chile", 3),
		plant("CHL0000001", "A", "Chile", 4),
	})
	if err != nil {
		t.Fatal(err)
	}
	var have []string
	for _, r := range n.Rows(c) {
		have = append(have, r.ID)
	}
	want := []string{"CHL0000001", "CHL0000003", "CHL0000002", "PER0000001"}
	if !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
}

func TestWriteCSV(t *testing.T) {
	n := testNormalizer(t)
	rows := n.DumpRows([]reconcile.DumpRecord{
		{Plant: plant("CHL0000001", "A Norte", "Chile", 1), InDatabase: true},
		{Plant: plant("CHL0000002", "B", "Chile", 2)},
	})
	var buf bytes.Buffer
	if err := n.WriteCSV(&buf, rows, true); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, have %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "country,country_long,in_gppd,name,gppd_idnr,") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "CHL,Chile,true,A Norte,CHL0000001,1,") {
		t.Errorf("unexpected row %q", lines[1])
	}
	if !strings.HasPrefix(lines[2], "CHL,Chile,false,B,") {
		t.Errorf("unexpected row %q", lines[2])
	}
}

func TestCountrySummary(t *testing.T) {
	n := testNormalizer(t)
	solar := plant("CHL0000002", "B", "Chile", 2)
	solar.SetPrimaryFuel(gppd.Solar)
	c, err := store.FromPlants("GPPD", []*gppd.Plant{
		plant("CHL0000001", "A", "Chile", 4),
		solar,
		plant("PER0000001", "A", "Peru", 1),
	})
	if err != nil {
		t.Fatal(err)
	}
	want := gppd.Table{
		{"Country", "Plants", "Capacity (MW)", "Hydro", "Solar"},
		{"Chile", "2", "6.0", "4.0", "2.0"},
		{"Peru", "1", "1.0", "1.0", "0.0"},
	}
	if have := CountrySummary(n.Rows(c)); !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
}

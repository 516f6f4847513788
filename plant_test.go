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

package gppd

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/kr/pretty"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		lat, lon float64
		known    bool
	}{
		{lat: 0, lon: 0, known: false},
		{lat: 0, lon: 10.5, known: true},
		{lat: -33.9, lon: 0, known: true},
		{lat: 45.1, lon: -93.2, known: true},
		{lat: 95, lon: 10, known: false},
		{lat: 10, lon: -181, known: false},
		{lat: math.NaN(), lon: 10, known: false},
	}
	for _, test := range tests {
		l := NewLocation(test.lat, test.lon, "desc")
		if l.Known != test.known {
			t.Errorf("(%g, %g): want known=%v, have %v", test.lat, test.lon, test.known, l.Known)
		}
		if l.Latitude().Valid != l.Longitude().Valid {
			t.Errorf("(%g, %g): partial location %+v", test.lat, test.lon, l)
		}
		if l.Description != "desc" {
			t.Errorf("description lost: %+v", l)
		}
	}
	if LocationFrom(SomeFloat(10), Float{}, "").Known {
		t.Error("location with one coordinate should be unknown")
	}
	l := LocationFrom(SomeFloat(10), SomeFloat(20), "")
	if l.Latitude().Value != 10 || l.Longitude().Value != 20 {
		t.Errorf("want (10, 20), have (%v, %v)", l.Latitude(), l.Longitude())
	}
}

func TestPrimaryFuelNotInOtherFuels(t *testing.T) {
	p, err := NewPlant("USA0000001", "Plant")
	if err != nil {
		t.Fatal(err)
	}
	p.AddOtherFuels(Gas, Oil)
	p.SetPrimaryFuel(Gas)
	p.AddOtherFuels(Gas, Coal)
	if p.OtherFuels.Has(p.PrimaryFuel) {
		t.Errorf("other fuels %v contain primary fuel %s", p.OtherFuels, p.PrimaryFuel)
	}
	want := []Fuel{Coal, Oil}
	if have := p.OtherFuels.Sorted(); !reflect.DeepEqual(want, have) {
		t.Errorf("want %v, have %v", want, have)
	}
}

func TestNewPlantMissing(t *testing.T) {
	if _, err := NewPlant("", "x"); !errors.Is(err, ErrMissingID) {
		t.Errorf("want ErrMissingID, have %v", err)
	}
	if _, err := NewPlant("WRI1000001", " \n"); !errors.Is(err, ErrMissingName) {
		t.Errorf("want ErrMissingName, have %v", err)
	}
}

func TestSetWEPPID(t *testing.T) {
	p, _ := NewPlant("WRI1000001", "x")
	if err := p.SetWEPPID("1234"); err != nil {
		t.Fatal(err)
	}
	if err := p.SetWEPPID("5678"); !errors.Is(err, ErrDuplicateWEPP) {
		t.Errorf("want ErrDuplicateWEPP, have %v", err)
	}
	if p.WEPPID != "1234" {
		t.Errorf("WEPP id overwritten: %s", p.WEPPID)
	}
}

func TestGeneration(t *testing.T) {
	g := AnnualGeneration(10, 2015, "EIA")
	if !g.FullYear() {
		t.Errorf("2015 should be a full year: %d days", g.Days())
	}
	if !AnnualGeneration(10, 2016, "EIA").FullYear() {
		t.Error("leap year should be a full year")
	}
	if MonthlyGeneration(1, 2016, time.February, "EIA").FullYear() {
		t.Error("month should not be a full year")
	}
	start := time.Date(2015, 3, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewGeneration(1, start, start.AddDate(0, 0, -1), "x", false); !errors.Is(err, ErrPeriod) {
		t.Errorf("want ErrPeriod, have %v", err)
	}

	p, _ := NewPlant("USA0000001", "x")
	p.AddGeneration(AnnualGeneration(10, 2015, "EIA"))
	p.AddGeneration(AnnualGeneration(5, 2015, "EIA"))
	p.AddGeneration(AnnualGeneration(7, 2016, "EIA"))
	est := AnnualGeneration(99, 2017, "model")
	est.Estimated = true
	p.AddGeneration(est)
	if len(p.Generation) != 3 {
		t.Fatalf("want 3 observations, have %d", len(p.Generation))
	}
	if have := p.ReportedGeneration(2015); have != SomeFloat(15) {
		t.Errorf("2015: want 15, have %v", have)
	}
	if have := p.ReportedGeneration(2017); have.Valid {
		t.Errorf("2017: estimated value reported as %v", have)
	}
}

func TestClone(t *testing.T) {
	p, _ := NewPlant("USA0000001", "x")
	p.SetPrimaryFuel(Coal)
	p.AddOtherFuels(Gas)
	p.AddGeneration(AnnualGeneration(1, 2015, "EIA"))
	c := p.Clone()
	if diff := pretty.Diff(p, c); len(diff) != 0 {
		t.Errorf("clone differs: %v", diff)
	}
	c.AddOtherFuels(Oil)
	c.Generation[0].GWh = 2
	if p.OtherFuels.Has(Oil) || p.Generation[0].GWh != 1 {
		t.Error("clone shares state with original")
	}
}

func TestID(t *testing.T) {
	id := MakeID("USA", 1234)
	if id != "USA0001234" {
		t.Errorf("want USA0001234, have %s", id)
	}
	code, n, err := SplitID("GEODB0012345")
	if err != nil {
		t.Fatal(err)
	}
	if code != "GEODB" || n != 12345 {
		t.Errorf("want GEODB 12345, have %s %d", code, n)
	}
	if _, _, err := SplitID("usa123"); !errors.Is(err, ErrParse) {
		t.Errorf("want ErrParse, have %v", err)
	}
}

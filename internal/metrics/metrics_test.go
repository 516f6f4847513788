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

package metrics

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/reconcile"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserve(t *testing.T) {
	m, err := NewRecorder()
	if err != nil {
		t.Fatal(err)
	}
	m.Observe(&reconcile.Report{
		Admitted: map[string]*reconcile.Tally{
			"USA": {Count: 3, Capacity: 120.5},
		},
		Excluded: map[reconcile.Reason]*reconcile.Tally{
			reconcile.NoLocation: {Count: 2},
		},
		Collisions: 1,
		Estimated:  4,
	})
	m.ObserveAudit(map[audit.Kind]int{audit.Fuel: 7})

	tests := []struct {
		name string
		have float64
		want float64
	}{
		{"admitted plants", testutil.ToFloat64(m.admittedPlants.WithLabelValues("USA")), 3},
		{"admitted capacity", testutil.ToFloat64(m.admittedCapacity.WithLabelValues("USA")), 120.5},
		{"excluded", testutil.ToFloat64(m.excludedPlants.WithLabelValues(string(reconcile.NoLocation))), 2},
		{"collisions", testutil.ToFloat64(m.collisions), 1},
		{"estimated", testutil.ToFloat64(m.estimated), 4},
		{"audit", testutil.ToFloat64(m.auditEvents.WithLabelValues("fuel")), 7},
	}
	for _, test := range tests {
		if test.have != test.want {
			t.Errorf("%s: want %v, have %v", test.name, test.want, test.have)
		}
	}
}

func TestWriteFile(t *testing.T) {
	m, err := NewRecorder()
	if err != nil {
		t.Fatal(err)
	}
	m.SetBuildInfo("1.3.0", "run")
	m.Observe(&reconcile.Report{WEPP: 9})
	dir, err := ioutil.TempDir("", "gppd-metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)
	path := filepath.Join(dir, "gppd.prom")
	if err := m.WriteFile(path); err != nil {
		t.Fatal(err)
	}
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"gppd_wepp_matches 9", `gppd_build_info{run_id="run",version="1.3.0"} 1`} {
		if !strings.Contains(string(b), want) {
			t.Errorf("output does not contain %q:\n%s", want, b)
		}
	}
}

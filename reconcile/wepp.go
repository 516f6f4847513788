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

package reconcile

import (
	"fmt"
	"io"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/globalpowerplants/gppd/store"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// WEPPMatch links a plant to a WEPP location identifier.
type WEPPMatch struct {
	ID, WEPPID string
}

// ReadWEPPMatches reads the WEPP concordance, a CSV table with the
// columns gppd_idnr, wepp_location_id, and optionally ignore. Rows with
// a true ignore flag or an empty WEPP identifier are skipped.
func ReadWEPPMatches(r io.Reader) ([]WEPPMatch, error) {
	cr, err := csvutil.NewReader(r, "gppd_idnr", "wepp_location_id")
	if err != nil {
		return nil, fmt.Errorf("reconcile: WEPP matches: %v", err)
	}
	var o []WEPPMatch
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			return o, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reconcile: reading WEPP matches: %v", err)
		}
		if v := cr.Header.Get(rec, "ignore"); v != "" {
			ignore, err := cast.ToBoolE(v)
			if err != nil {
				return nil, fmt.Errorf("reconcile: WEPP matches line %d: ignore: %v", cr.Line(), err)
			}
			if ignore {
				continue
			}
		}
		m := WEPPMatch{
			ID:     cr.Header.Get(rec, "gppd_idnr"),
			WEPPID: cr.Header.Get(rec, "wepp_location_id"),
		}
		if m.ID == "" || m.WEPPID == "" {
			continue
		}
		o = append(o, m)
	}
}

// AssignWEPP returns a copy of c with the WEPP identifiers set, and the
// number of plants matched. Matches to unknown plants and second matches
// to the same plant are recorded as audit events; the first match wins.
func AssignWEPP(c *store.Collection, matches []WEPPMatch, log logrus.FieldLogger) (*store.Collection, int) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	byID := make(map[string]string)
	for _, m := range matches {
		if !c.Has(m.ID) {
			audit.With(log, audit.WEPP).WithFields(logrus.Fields{
				"plant": m.ID,
				"wepp":  m.WEPPID,
			}).Warn("reconcile: WEPP match to unknown plant")
			continue
		}
		if prev, ok := byID[m.ID]; ok {
			audit.With(log, audit.WEPP).WithFields(logrus.Fields{
				"plant": m.ID,
				"wepp":  m.WEPPID,
				"kept":  prev,
			}).Warn("reconcile: duplicate WEPP match")
			continue
		}
		byID[m.ID] = m.WEPPID
	}
	var n int
	o := c.Update(func(p *gppd.Plant) {
		id, ok := byID[p.ID]
		if !ok {
			return
		}
		if err := p.SetWEPPID(id); err != nil {
			audit.With(log, audit.WEPP).Warn(err)
			return
		}
		n++
	})
	return o, n
}

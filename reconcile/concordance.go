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
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/sirupsen/logrus"
)

// Identifier codes of the databases linked by the concordance table.
const (
	CuratedCode     = "WRI"
	ObservatoryCode = "GEODB"
	LegacyCode      = "CARMA"
	CrossRefCode    = "OSM"
)

// Link holds the identifiers of one plant in other databases. Empty
// fields mean no match.
type Link struct {
	Observatory, Legacy, CrossRef string
}

// Concordance maps curated-table plant identifiers to their identifiers
// in other databases. It is used only to fill in locations and
// generation, never to merge capacity.
type Concordance map[string]Link

// ReadConcordance reads the master plant concordance, a CSV file with the
// numeric columns f (curated id), geo_id, carma_id, and osm_id. Rows with
// malformed identifiers are logged to log and skipped.
func ReadConcordance(r io.Reader, log logrus.FieldLogger) (Concordance, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	cr, err := csvutil.NewReader(r, "f", "geo_id", "carma_id")
	if err != nil {
		return nil, fmt.Errorf("reconcile: concordance: %v", err)
	}
	c := make(Concordance)
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reconcile: reading concordance: %v", err)
		}
		bad := audit.With(log, audit.Record).WithField("line", cr.Line())
		id, err := concordanceID(CuratedCode, cr.Header.Get(rec, "f"))
		if err != nil || id == "" {
			bad.WithField("f", cr.Header.Get(rec, "f")).Warn("reconcile: skipping concordance row with an invalid id")
			continue
		}
		var l Link
		ok := true
		for _, col := range []struct {
			code, name string
			dst        *string
		}{
			{code: ObservatoryCode, name: "geo_id", dst: &l.Observatory},
			{code: LegacyCode, name: "carma_id", dst: &l.Legacy},
			{code: CrossRefCode, name: "osm_id", dst: &l.CrossRef},
		} {
			if *col.dst, err = concordanceID(col.code, cr.Header.Get(rec, col.name)); err != nil {
				bad.WithField(col.name, cr.Header.Get(rec, col.name)).Warnf("reconcile: skipping concordance row: %v", err)
				ok = false
				break
			}
		}
		if ok {
			c[id] = l
		}
	}
	return c, nil
}

// concordanceID builds an identifier from a numeric concordance value.
// Empty values give an empty identifier.
func concordanceID(code, v string) (string, error) {
	f, err := gppd.ParseFloat(v)
	if errors.Is(err, gppd.ErrMissing) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return gppd.MakeID(code, int(f.Value)), nil
}

// reverse returns, for each observatory identifier, the curated and
// legacy identifiers linked to it. When several curated plants link to
// the same observatory record the smallest curated identifier wins and
// the others are logged.
func (c Concordance) reverse(log logrus.FieldLogger) map[string][2]string {
	curated := make([]string, 0, len(c))
	for id := range c {
		curated = append(curated, id)
	}
	sort.Strings(curated)
	o := make(map[string][2]string)
	for _, id := range curated {
		l := c[id]
		if l.Observatory == "" {
			continue
		}
		if prev, ok := o[l.Observatory]; ok {
			log.WithFields(logrus.Fields{
				"observatory": l.Observatory,
				"kept":        prev[0],
				"ignored":     id,
			}).Warn("reconcile: observatory record linked to more than one curated plant")
			continue
		}
		o[l.Observatory] = [2]string{id, l.Legacy}
	}
	return o
}

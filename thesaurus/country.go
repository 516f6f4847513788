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
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/globalpowerplants/gppd/internal/csvutil"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

// Country holds the names, codes, and data-source policy of a country.
type Country struct {
	// Name is the canonical country name.
	Name string

	// ISO3 and ISO2 are the ISO 3166 alpha-3 and alpha-2 codes.
	ISO3, ISO2 string

	// ObservatoryName, LegacyName, and StatisticsName are the names used
	// for the country by the global observatory database, the legacy
	// global database, and the national statistics agency.
	ObservatoryName, LegacyName, StatisticsName string

	Policy
}

// Policy holds the per-country flags that decide which source database
// owns the plants of a country.
type Policy struct {
	// Automated is true if the country has an automated per-country feed.
	Automated bool

	// UseObservatory is true if the global observatory database is the
	// only authorized source for the country.
	UseObservatory bool

	// CuratedBuiltIn is true if the manually-curated data for the country
	// are already folded into its automated feed.
	CuratedBuiltIn bool
}

// Ambiguous returns whether more than one source tier could claim the
// country. Such countries are resolved by tier order.
func (p Policy) Ambiguous() bool {
	return p.Automated && p.UseObservatory || !p.Automated && p.CuratedBuiltIn
}

func (p Policy) String() string {
	var s []string
	if p.Automated {
		s = append(s, "automated")
	}
	if p.UseObservatory {
		s = append(s, "use_observatory")
	}
	if p.CuratedBuiltIn {
		s = append(s, "curated_built_in")
	}
	return strings.Join(s, ",")
}

// ParsePolicy parses a comma-separated list of policy flags as produced
// by Policy.String.
func ParsePolicy(s string) (Policy, error) {
	var p Policy
	for _, f := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "":
		case "automated":
			p.Automated = true
		case "use_observatory", "use_geo":
			p.UseObservatory = true
		case "curated_built_in", "wri_data_built_in":
			p.CuratedBuiltIn = true
		default:
			return p, fmt.Errorf("thesaurus: unknown country policy flag %q", f)
		}
	}
	return p, nil
}

// Registry is the set of canonical countries.
type Registry struct {
	countries map[string]*Country
	aliases   map[string]string
	iso3      map[string]string

	// Log receives unmatched country names.
	Log logrus.FieldLogger
}

// NewRegistry creates a registry from a list of countries. Canonical
// names take precedence over aliases; among aliases, the first country
// listed wins.
func NewRegistry(countries []Country) (*Registry, error) {
	r := &Registry{
		countries: make(map[string]*Country),
		aliases:   make(map[string]string),
		iso3:      make(map[string]string),
		Log:       logrus.StandardLogger(),
	}
	for i := range countries {
		c := countries[i]
		if c.Name == "" {
			return nil, fmt.Errorf("thesaurus: country %d has no name", i)
		}
		if _, ok := r.countries[c.Name]; ok {
			return nil, fmt.Errorf("thesaurus: country %s listed twice", c.Name)
		}
		r.countries[c.Name] = &c
		if c.ISO3 != "" {
			r.iso3[c.ISO3] = c.Name
		}
	}
	for _, c := range countries {
		for _, alias := range []string{c.ObservatoryName, c.LegacyName, c.StatisticsName} {
			if alias == "" {
				continue
			}
			if _, ok := r.countries[alias]; ok {
				continue
			}
			if _, ok := r.aliases[alias]; !ok {
				r.aliases[alias] = c.Name
			}
		}
	}
	return r, nil
}

// ReadRegistry reads the country information table, a CSV file with the
// columns primary_country_name, iso_country_code, iso_country_code_2,
// geo_country_name, carma_country_name, iea_country, automated, use_geo,
// and wri_data_built_in.
func ReadRegistry(rd io.Reader) (*Registry, error) {
	cr, err := csvutil.NewReader(rd, "primary_country_name", "iso_country_code", "iso_country_code_2",
		"geo_country_name", "carma_country_name", "iea_country",
		"automated", "use_geo", "wri_data_built_in")
	if err != nil {
		return nil, fmt.Errorf("thesaurus: country information: %v", err)
	}
	var countries []Country
	for {
		rec, err := cr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("thesaurus: reading country information: %v", err)
		}
		get := func(col string) string { return cr.Header.Get(rec, col) }
		c := Country{
			Name:            get("primary_country_name"),
			ISO3:            get("iso_country_code"),
			ISO2:            get("iso_country_code_2"),
			ObservatoryName: get("geo_country_name"),
			LegacyName:      get("carma_country_name"),
			StatisticsName:  get("iea_country"),
		}
		for col, flag := range map[string]*bool{
			"automated":         &c.Automated,
			"use_geo":           &c.UseObservatory,
			"wri_data_built_in": &c.CuratedBuiltIn,
		} {
			if v := get(col); v != "" {
				if *flag, err = cast.ToBoolE(v); err != nil {
					return nil, fmt.Errorf("thesaurus: country information line %d, %s: %v", cr.Line(), col, err)
				}
			}
		}
		countries = append(countries, c)
	}
	return NewRegistry(countries)
}

// Standardize returns the canonical name for a raw country name, after
// removing commas. An unmatched name is logged and an empty string is
// returned.
func (r *Registry) Standardize(raw string) string {
	name := strings.TrimSpace(strings.Replace(raw, ",", "", -1))
	if _, ok := r.countries[name]; ok {
		return name
	}
	if c, ok := r.aliases[name]; ok {
		return c
	}
	audit.With(r.Log, audit.Country).WithField("country", raw).Warn("thesaurus: unmatched country name")
	return ""
}

// Lookup returns the country with the given canonical name.
func (r *Registry) Lookup(name string) (*Country, bool) {
	c, ok := r.countries[name]
	return c, ok
}

// ByISO3 returns the country with the given ISO alpha-3 code.
func (r *Registry) ByISO3(code string) (*Country, bool) {
	name, ok := r.iso3[strings.ToUpper(strings.TrimSpace(code))]
	if !ok {
		return nil, false
	}
	return r.Lookup(name)
}

// Names returns the canonical country names in alphabetical order.
func (r *Registry) Names() []string {
	o := make([]string, 0, len(r.countries))
	for n := range r.countries {
		o = append(o, n)
	}
	sort.Strings(o)
	return o
}

// SetPolicy replaces the policy flags of a country.
func (r *Registry) SetPolicy(name string, p Policy) error {
	c, ok := r.countries[name]
	if !ok {
		return fmt.Errorf("thesaurus: setting policy: unknown country %q", name)
	}
	c.Policy = p
	return nil
}

// Ambiguous returns the names of countries whose policy flags allow more
// than one source tier to claim them.
func (r *Registry) Ambiguous() []string {
	var o []string
	for _, n := range r.Names() {
		if r.countries[n].Ambiguous() {
			o = append(o, n)
		}
	}
	return o
}

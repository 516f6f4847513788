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

// Package thesaurus maps the free-text fuel names, country names, and
// column headers found in source data to their canonical forms.
package thesaurus

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/audit"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrFuelCount is returned when a fuel string that should describe a
// single fuel resolves to zero or several canonical fuels.
var ErrFuelCount = errors.New("fuel string does not resolve to exactly one fuel")

// fuelDelimiters separates the fuels in a multi-fuel string.
var fuelDelimiters = regexp.MustCompile(`/| y |,| and `)

// FuelThesaurus maps fuel aliases to canonical fuel labels. Matching is
// exact: case and interior whitespace are significant.
type FuelThesaurus struct {
	aliases map[string]gppd.Fuel
	labels  []gppd.Fuel

	// Log receives unmatched fuel tokens.
	Log logrus.FieldLogger
}

// NewFuelThesaurus creates a thesaurus from a map of canonical labels to
// aliases. Each label is also an alias of itself. An alias listed under
// more than one label is an error.
func NewFuelThesaurus(m map[gppd.Fuel][]string) (*FuelThesaurus, error) {
	ft := &FuelThesaurus{
		aliases: make(map[string]gppd.Fuel),
		Log:     logrus.StandardLogger(),
	}
	for label := range m {
		ft.labels = append(ft.labels, label)
	}
	sort.Slice(ft.labels, func(i, j int) bool { return ft.labels[i] < ft.labels[j] })
	for _, label := range ft.labels {
		if label == "" {
			return nil, fmt.Errorf("thesaurus: empty fuel label")
		}
		for _, alias := range append([]string{string(label)}, m[label]...) {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			if prev, ok := ft.aliases[alias]; ok && prev != label {
				return nil, fmt.Errorf("thesaurus: fuel alias %q listed under both %s and %s", alias, prev, label)
			}
			ft.aliases[alias] = label
		}
	}
	return ft, nil
}

// ReadFuelThesaurus reads a YAML document mapping canonical fuel labels to
// lists of aliases.
func ReadFuelThesaurus(r io.Reader) (*FuelThesaurus, error) {
	var m map[gppd.Fuel][]string
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("thesaurus: reading fuel thesaurus: %v", err)
	}
	return NewFuelThesaurus(m)
}

// ReadFuelThesaurusDir reads a directory with one file per fuel. The first
// line of each file is the canonical label and each following line is an
// alias.
func ReadFuelThesaurusDir(dir string) (*FuelThesaurus, error) {
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: reading fuel thesaurus directory: %v", err)
	}
	m := make(map[gppd.Fuel][]string)
	for _, fi := range files {
		if fi.IsDir() || strings.HasPrefix(fi.Name(), ".") {
			continue
		}
		b, err := ioutil.ReadFile(filepath.Join(dir, fi.Name()))
		if err != nil {
			return nil, fmt.Errorf("thesaurus: %v", err)
		}
		lines := strings.Split(strings.Replace(string(b), "\r\n", "\n", -1), "\n")
		label := gppd.Fuel(strings.TrimSpace(lines[0]))
		if label == "" {
			return nil, fmt.Errorf("thesaurus: fuel file %s has no label", fi.Name())
		}
		for _, l := range lines[1:] {
			if l = strings.TrimRight(l, " \t"); l != "" {
				m[label] = append(m[label], l)
			}
		}
		if _, ok := m[label]; !ok {
			m[label] = nil
		}
	}
	return NewFuelThesaurus(m)
}

// OpenFuelThesaurus reads a fuel thesaurus from a YAML file or, if path is
// a directory, from a directory of fuel files.
func OpenFuelThesaurus(path string) (*FuelThesaurus, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: %v", err)
	}
	if fi.IsDir() {
		return ReadFuelThesaurusDir(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("thesaurus: %v", err)
	}
	defer f.Close()
	return ReadFuelThesaurus(f)
}

// Labels returns the canonical fuel labels in alphabetical order.
func (ft *FuelThesaurus) Labels() []gppd.Fuel {
	o := make([]gppd.Fuel, len(ft.labels))
	copy(o, ft.labels)
	return o
}

// Standardize returns the set of canonical fuels named in raw. Tokens that
// match no alias are logged and dropped. Blank input returns an empty set.
func (ft *FuelThesaurus) Standardize(raw string) gppd.FuelSet {
	o := make(gppd.FuelSet)
	if strings.TrimSpace(raw) == "" {
		return o
	}
	for _, tok := range fuelDelimiters.Split(raw, -1) {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		label, ok := ft.aliases[tok]
		if !ok {
			audit.With(ft.Log, audit.Fuel).WithFields(logrus.Fields{
				"token": tok,
				"fuel":  raw,
			}).Warn("thesaurus: unmatched fuel token")
			continue
		}
		o.Add(label)
	}
	return o
}

// StandardizeOne returns the single canonical fuel named in raw. Blank
// input returns an empty label and no error. An error wrapping ErrFuelCount
// is returned if raw names zero or several fuels.
func (ft *FuelThesaurus) StandardizeOne(raw string) (gppd.Fuel, error) {
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	s := ft.Standardize(raw)
	if s.Len() != 1 {
		return "", fmt.Errorf("thesaurus: %q resolves to %v: %w", raw, s, ErrFuelCount)
	}
	return s.Sorted()[0], nil
}

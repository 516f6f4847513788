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

// Package store holds plant collections. A Builder collects the plants of
// one source database and produces an immutable Collection snapshot;
// collections are never modified in place.
package store

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/globalpowerplants/gppd"
	"github.com/globalpowerplants/gppd/internal/hash"
)

// ErrDuplicateID is returned when a plant identifier is added twice.
var ErrDuplicateID = errors.New("duplicate plant id")

// Collection is an immutable set of plants keyed by identifier. Plants
// returned by a Collection are copies; modifying them does not change
// the collection.
type Collection struct {
	name   string
	plants map[string]*gppd.Plant
	ids    []string
}

// Name returns the name of the source database the collection holds.
func (c *Collection) Name() string { return c.name }

// Len returns the number of plants in the collection.
func (c *Collection) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// Get returns a copy of the plant with the given identifier.
func (c *Collection) Get(id string) (*gppd.Plant, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.plants[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// Has returns whether the collection holds a plant with the given id.
func (c *Collection) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.plants[id]
	return ok
}

// IDs returns the plant identifiers in sorted order.
func (c *Collection) IDs() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.ids...)
}

// Range calls fn with a copy of each plant in identifier order until fn
// returns false.
func (c *Collection) Range(fn func(p *gppd.Plant) bool) {
	if c == nil {
		return
	}
	for _, id := range c.ids {
		if !fn(c.plants[id].Clone()) {
			return
		}
	}
}

// Plants returns copies of all plants in identifier order.
func (c *Collection) Plants() []*gppd.Plant {
	o := make([]*gppd.Plant, 0, c.Len())
	c.Range(func(p *gppd.Plant) bool {
		o = append(o, p)
		return true
	})
	return o
}

// Update returns a new collection in which fn has been applied to a copy
// of every plant. The identifier of a plant must not be changed by fn.
func (c *Collection) Update(fn func(p *gppd.Plant)) *Collection {
	o := &Collection{
		name:   c.name,
		plants: make(map[string]*gppd.Plant, len(c.plants)),
		ids:    c.IDs(),
	}
	for _, id := range c.ids {
		p := c.plants[id].Clone()
		fn(p)
		p.ID = id
		o.plants[id] = p
	}
	return o
}

// Fingerprint returns a hash of the contents of the collection.
func (c *Collection) Fingerprint() string {
	return hash.Hash(c.snapshot())
}

// Builder accumulates plants for a collection.
type Builder struct {
	name   string
	plants map[string]*gppd.Plant
}

// NewBuilder returns a builder for a collection with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{name: name, plants: make(map[string]*gppd.Plant)}
}

// Add adds a copy of p. Adding a second plant with the same identifier
// returns an error wrapping ErrDuplicateID and leaves the first in place.
func (b *Builder) Add(p *gppd.Plant) error {
	if p.ID == "" {
		return fmt.Errorf("store: %s: plant %q: %w", b.name, p.Name, gppd.ErrMissingID)
	}
	if _, ok := b.plants[p.ID]; ok {
		return fmt.Errorf("store: %s: plant %s: %w", b.name, p.ID, ErrDuplicateID)
	}
	b.plants[p.ID] = p.Clone()
	return nil
}

// Has returns whether a plant with the given identifier has been added.
func (b *Builder) Has(id string) bool {
	_, ok := b.plants[id]
	return ok
}

// Len returns the number of plants added.
func (b *Builder) Len() int { return len(b.plants) }

// Snapshot returns a collection holding the plants added so far. Later
// additions to the builder do not affect the snapshot.
func (b *Builder) Snapshot() *Collection {
	c := &Collection{
		name:   b.name,
		plants: make(map[string]*gppd.Plant, len(b.plants)),
		ids:    make([]string, 0, len(b.plants)),
	}
	for id, p := range b.plants {
		c.plants[id] = p.Clone()
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return c
}

// FromPlants creates a collection from a list of plants.
func FromPlants(name string, plants []*gppd.Plant) (*Collection, error) {
	b := NewBuilder(name)
	for _, p := range plants {
		if err := b.Add(p); err != nil {
			return nil, err
		}
	}
	return b.Snapshot(), nil
}

// snapshot is the serialized form of a collection.
type snapshot struct {
	Name   string
	Plants []*gppd.Plant
}

func (c *Collection) snapshot() snapshot {
	s := snapshot{Name: c.name, Plants: make([]*gppd.Plant, len(c.ids))}
	for i, id := range c.ids {
		s.Plants[i] = c.plants[id]
	}
	return s
}

// Write saves c to w in gob format.
func Write(w io.Writer, c *Collection) error {
	if err := gob.NewEncoder(w).Encode(c.snapshot()); err != nil {
		return fmt.Errorf("store: saving %s: %v", c.name, err)
	}
	return nil
}

// Read loads a collection saved by Write.
func Read(r io.Reader) (*Collection, error) {
	var s snapshot
	if err := gob.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("store: loading collection: %v", err)
	}
	return FromPlants(s.Name, s.Plants)
}

// WriteFile saves c to the named file.
func WriteFile(path string, c *Collection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("store: %v", err)
	}
	if err := Write(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile loads a collection from the named file.
func ReadFile(path string) (*Collection, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("store: %v", err)
	}
	defer f.Close()
	return Read(f)
}

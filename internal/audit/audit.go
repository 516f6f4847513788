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

// Package audit routes data-quality events from the database build into
// audit files. Events are ordinary log entries carrying the Key field;
// a Hook attached to the logger picks them up.
package audit

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Key is the log field that marks an entry as an audit event.
const Key = "audit"

// Kind classifies audit events.
type Kind string

// Audit event kinds.
const (
	Country    Kind = "country"
	Fuel       Kind = "fuel"
	Collision  Kind = "collision"
	WEPP       Kind = "wepp"
	Estimation Kind = "estimation"
	Record     Kind = "record"
)

// Fields used by collision events.
const (
	FieldID       = "idnr"
	FieldCountry1 = "country1"
	FieldCountry2 = "country2"
)

// With returns an entry that will be recorded as an audit event of the
// given kind.
func With(log logrus.FieldLogger, kind Kind) *logrus.Entry {
	return log.WithField(Key, kind)
}

// CollisionEntry returns an audit entry describing the identifier id
// appearing under two different countries.
func CollisionEntry(log logrus.FieldLogger, id, country1, country2 string) *logrus.Entry {
	return With(log, Collision).WithFields(logrus.Fields{
		FieldID:       id,
		FieldCountry1: country1,
		FieldCountry2: country2,
	})
}

// Hook is a logrus hook that writes audit events as CSV rows of
// kind, level, message, and details. Collision events are additionally
// written to a separate file with the columns idnr, country1, and country2.
// Hook is safe for concurrent use.
type Hook struct {
	mu         sync.Mutex
	log        *csv.Writer
	collisions *csv.Writer
	counts     map[Kind]int
	err        error
}

// NewHook returns a hook that writes audit events to log and collisions to
// collisions. Either writer may be nil.
func NewHook(log, collisions io.Writer) (*Hook, error) {
	h := &Hook{counts: make(map[Kind]int)}
	if log != nil {
		h.log = csv.NewWriter(log)
		if err := h.log.Write([]string{"kind", "level", "message", "details"}); err != nil {
			return nil, fmt.Errorf("audit: writing log header: %v", err)
		}
	}
	if collisions != nil {
		h.collisions = csv.NewWriter(collisions)
		if err := h.collisions.Write([]string{FieldID, FieldCountry1, FieldCountry2}); err != nil {
			return nil, fmt.Errorf("audit: writing collision header: %v", err)
		}
	}
	return h, nil
}

// Levels implements logrus.Hook.
func (h *Hook) Levels() []logrus.Level { return logrus.AllLevels }

// Fire implements logrus.Hook.
func (h *Hook) Fire(e *logrus.Entry) error {
	k, ok := e.Data[Key]
	if !ok {
		return nil
	}
	kind := Kind(fmt.Sprint(k))

	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[kind]++
	if h.log != nil {
		h.write(h.log, []string{string(kind), e.Level.String(), e.Message, details(e.Data)})
	}
	if kind == Collision && h.collisions != nil {
		h.write(h.collisions, []string{
			fmt.Sprint(e.Data[FieldID]),
			fmt.Sprint(e.Data[FieldCountry1]),
			fmt.Sprint(e.Data[FieldCountry2]),
		})
	}
	return nil
}

func (h *Hook) write(w *csv.Writer, rec []string) {
	if err := w.Write(rec); err != nil && h.err == nil {
		h.err = err
	}
}

// details formats the non-audit fields of an entry as sorted key=value pairs.
func details(data logrus.Fields) string {
	keys := make([]string, 0, len(data))
	for k := range data {
		if k != Key {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	s := make([]string, len(keys))
	for i, k := range keys {
		s[i] = fmt.Sprintf("%s=%v", k, data[k])
	}
	return strings.Join(s, " ")
}

// Counts returns the number of events recorded for each kind.
func (h *Hook) Counts() map[Kind]int {
	h.mu.Lock()
	defer h.mu.Unlock()
	o := make(map[Kind]int, len(h.counts))
	for k, v := range h.counts {
		o[k] = v
	}
	return o
}

// Flush writes any buffered rows and returns the first write error.
func (h *Hook) Flush() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, w := range []*csv.Writer{h.log, h.collisions} {
		if w == nil {
			continue
		}
		w.Flush()
		if err := w.Error(); err != nil && h.err == nil {
			h.err = err
		}
	}
	if h.err != nil {
		return fmt.Errorf("audit: %v", h.err)
	}
	return nil
}

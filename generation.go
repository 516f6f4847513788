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
	"fmt"
	"time"
)

// Generation is an observation of the electricity generated by a plant
// over a period of time.
type Generation struct {
	// GWh is the generation in gigawatt-hours.
	GWh float64

	// Start and End are the first and last days of the period, inclusive.
	Start, End time.Time

	// Source is the name of the data source that reported the observation.
	Source string

	// Estimated is true for modeled rather than reported values.
	Estimated bool
}

// NewGeneration returns a generation observation, or an error if end
// precedes start.
func NewGeneration(gwh float64, start, end time.Time, source string, estimated bool) (Generation, error) {
	if end.Before(start) {
		return Generation{}, fmt.Errorf("gppd: %s to %s: %w", start.Format("2006-01-02"),
			end.Format("2006-01-02"), ErrPeriod)
	}
	return Generation{GWh: gwh, Start: start, End: end, Source: source, Estimated: estimated}, nil
}

// AnnualGeneration returns a reported observation covering the
// given calendar year.
func AnnualGeneration(gwh float64, year int, source string) Generation {
	return Generation{
		GWh:    gwh,
		Start:  time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:    time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
		Source: source,
	}
}

// MonthlyGeneration returns a reported observation covering the given
// calendar month.
func MonthlyGeneration(gwh float64, year int, month time.Month, source string) Generation {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Generation{
		GWh:    gwh,
		Start:  start,
		End:    start.AddDate(0, 1, -1),
		Source: source,
	}
}

// Days returns the number of days between the start and end of the period.
func (g Generation) Days() int {
	return int(g.End.Sub(g.Start).Hours() / 24)
}

// FullYear returns whether g covers a full calendar year.
func (g Generation) FullYear() bool {
	d := g.Days()
	return d == 364 || d == 365
}

// Overlaps returns whether any part of g falls within the given year.
func (g Generation) Overlaps(year int) bool {
	return g.Start.Year() <= year && g.End.Year() >= year
}

func (g Generation) samePeriod(o Generation) bool {
	return g.Start.Equal(o.Start) && g.End.Equal(o.End) &&
		g.Source == o.Source && g.Estimated == o.Estimated
}

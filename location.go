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
	"github.com/ctessum/geom"
)

// world is the range of valid longitude (X) and latitude (Y) values.
var world = &geom.Bounds{
	Min: geom.Point{X: -180, Y: -90},
	Max: geom.Point{X: 180, Y: 90},
}

// Location is the geographic position of a plant. A Location is either
// known, with both coordinates set, or unknown; it is never partial.
// Locations should be created with NewLocation or LocationFrom.
type Location struct {
	// Point holds the longitude (X) and latitude (Y) in degrees.
	Point geom.Point

	// Description is free text describing the location,
	// for example a street address or municipality.
	Description string

	// Known is true when Point holds a real-world position.
	Known bool
}

// NewLocation returns a location at the given latitude and longitude.
// Coordinates outside the valid range, NaN coordinates, and the point
// (0, 0) result in an unknown location that retains the description.
func NewLocation(lat, lon float64, description string) Location {
	p := geom.Point{X: lon, Y: lat}
	if (lat == 0 && lon == 0) || !p.Bounds().Overlaps(world) {
		return Location{Description: description}
	}
	return Location{Point: p, Description: description, Known: true}
}

// LocationFrom returns a location from optional coordinates. The location
// is unknown unless both coordinates are present.
func LocationFrom(lat, lon Float, description string) Location {
	if !lat.Valid || !lon.Valid {
		return Location{Description: description}
	}
	return NewLocation(lat.Value, lon.Value, description)
}

// Latitude returns the latitude, which is absent for unknown locations.
func (l Location) Latitude() Float {
	if !l.Known {
		return Float{}
	}
	return SomeFloat(l.Point.Y)
}

// Longitude returns the longitude, which is absent for unknown locations.
func (l Location) Longitude() Float {
	if !l.Known {
		return Float{}
	}
	return SomeFloat(l.Point.X)
}

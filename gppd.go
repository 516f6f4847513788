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

// Package gppd holds the record model of the Global Power Plant Database:
// plants, their locations and generation observations, the raw records
// handed over by source loaders, and the field parsers that turn
// untrusted source values into typed, optional values.
package gppd

import "errors"

// Version gives the version number.
const Version = "1.3.0"

var (
	// ErrMissing is returned when a field holds no data.
	ErrMissing = errors.New("no data")

	// ErrParse is returned when a field holds data that cannot be interpreted.
	ErrParse = errors.New("unparseable value")

	// ErrOutOfRange is returned when a field value violates a constraint,
	// for example a negative capacity.
	ErrOutOfRange = errors.New("value out of range")

	// ErrMissingName is returned for records without a plant name.
	ErrMissingName = errors.New("missing plant name")

	// ErrMissingID is returned for records without a plant identifier.
	ErrMissingID = errors.New("missing plant id")

	// ErrDuplicateWEPP is returned when a plant that already carries a
	// WEPP identifier is matched again.
	ErrDuplicateWEPP = errors.New("duplicate WEPP match")

	// ErrPeriod is returned for generation observations that end
	// before they start.
	ErrPeriod = errors.New("generation period ends before it starts")
)

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
	"math"

	"github.com/shopspring/decimal"
)

// Float is a float64 that may be absent. The zero value is absent, which
// is distinct from a present value of zero.
type Float struct {
	Value float64
	Valid bool
}

// SomeFloat returns a present Float holding v. NaN is treated as absent.
func SomeFloat(v float64) Float {
	if math.IsNaN(v) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// Or returns the value of f, or def if f is absent.
func (f Float) Or(def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

// String formats f with the shortest exact decimal representation, or as
// an empty string when absent.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return decimal.NewFromFloat(f.Value).String()
}

// Fixed formats f with the given number of decimal places, or as an empty
// string when absent.
func (f Float) Fixed(places int32) string {
	if !f.Valid {
		return ""
	}
	return decimal.NewFromFloat(f.Value).StringFixed(places)
}

// Int is an int that may be absent. The zero value is absent.
type Int struct {
	Value int
	Valid bool
}

// SomeInt returns a present Int holding v.
func SomeInt(v int) Int { return Int{Value: v, Valid: true} }

// Or returns the value of i, or def if i is absent.
func (i Int) Or(def int) int {
	if !i.Valid {
		return def
	}
	return i.Value
}

func (i Int) String() string {
	if !i.Valid {
		return ""
	}
	return fmt.Sprint(i.Value)
}

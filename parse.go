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
	"strings"
	"unicode/utf8"

	"github.com/spf13/cast"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

var textReplacer = strings.NewReplacer("\n", " ", "\r", " ", ",", " ", "\u001A", "")

// CleanText normalizes a free-text field. Line breaks and commas are
// replaced by spaces, the substitute character is removed, and surrounding
// whitespace is trimmed. Text that is not valid UTF-8 is decoded as
// Windows-1252. The result is in Unicode normalization form C.
func CleanText(s string) string {
	if !utf8.ValidString(s) {
		if d, err := charmap.Windows1252.NewDecoder().String(s); err == nil {
			s = d
		} else {
			s = strings.ToValidUTF8(s, "")
		}
	}
	s = norm.NFC.String(s)
	return strings.TrimSpace(textReplacer.Replace(s))
}

// missingValues are strings that sources use to mean "no data".
var missingValues = map[string]bool{
	"":    true,
	"-":   true,
	"...": true,
	"NA":  true,
	"N/A": true,
	"n/a": true,
}

// ParseFloat converts a source value to a Float. Thousands separators are
// ignored. The returned error wraps ErrMissing for empty values and ErrParse
// for values that are not numbers.
func ParseFloat(v interface{}) (Float, error) {
	if v == nil {
		return Float{}, ErrMissing
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if missingValues[s] {
			return Float{}, ErrMissing
		}
		v = strings.Replace(s, ",", "", -1)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil {
		return Float{}, fmt.Errorf("gppd: %v: %w", v, ErrParse)
	}
	if math.IsNaN(f) {
		return Float{}, ErrMissing
	}
	if math.IsInf(f, 0) {
		return Float{}, fmt.Errorf("gppd: %v: %w", v, ErrOutOfRange)
	}
	return SomeFloat(f), nil
}

// ParseCapacity converts a source value to a capacity in MW. Negative
// values are rejected with ErrOutOfRange.
func ParseCapacity(v interface{}) (Float, error) {
	f, err := ParseFloat(v)
	if err != nil {
		return f, err
	}
	if f.Value < 0 {
		return Float{}, fmt.Errorf("gppd: capacity %g: %w", f.Value, ErrOutOfRange)
	}
	return f, nil
}

// ParseYear converts a source value to a calendar year. Fractional years
// are truncated.
func ParseYear(v interface{}) (Int, error) {
	f, err := ParseFloat(v)
	if err != nil {
		return Int{}, err
	}
	if f.Value < 1 || f.Value > 9999 {
		return Int{}, fmt.Errorf("gppd: year %g: %w", f.Value, ErrOutOfRange)
	}
	return SomeInt(int(f.Value)), nil
}

// ParseMonth converts a source value to a month number between 1 and 12.
func ParseMonth(v interface{}) (Int, error) {
	f, err := ParseFloat(v)
	if err != nil {
		return Int{}, err
	}
	if f.Value < 1 || f.Value > 12 || f.Value != math.Trunc(f.Value) {
		return Int{}, fmt.Errorf("gppd: month %g: %w", f.Value, ErrOutOfRange)
	}
	return SomeInt(int(f.Value)), nil
}

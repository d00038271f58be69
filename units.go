/*
Copyright © 2023 the profsel authors.
This file is part of profsel.

profsel is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

profsel is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with profsel.  If not, see <http://www.gnu.org/licenses/>.
*/

package profsel

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Time units supported in CF "<unit> since <epoch>" strings.
const (
	Second = time.Second
	Minute = time.Minute
	Hour   = time.Hour
	Day    = 24 * time.Hour
)

var unitNames = map[string]time.Duration{
	"days": Day, "day": Day, "d": Day,
	"hours": Hour, "hour": Hour, "hr": Hour, "h": Hour,
	"minutes": Minute, "minute": Minute, "min": Minute,
	"seconds": Second, "second": Second, "sec": Second, "s": Second,
}

// epochLayouts are tried in order against the text following "since".
var epochLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TimeUnits converts relative time offsets into absolute times.
type TimeUnits struct {
	Epoch time.Time
	Unit  time.Duration
}

// TimeUnitsError is returned when a units string cannot be parsed.
type TimeUnitsError struct {
	Units string
	Err   error
}

func (e *TimeUnitsError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("profsel: invalid time units %q", e.Units)
	}
	return fmt.Sprintf("profsel: invalid time units %q: %v", e.Units, e.Err)
}

func (e *TimeUnitsError) Unwrap() error { return e.Err }

// ParseTimeUnits parses a units string in the form
// "days since 1999-01-01 00:00:00 UTC". The epoch is returned in UTC;
// any trailing time zone designation is ignored.
func ParseTimeUnits(units string) (TimeUnits, error) {
	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return TimeUnits{}, &TimeUnitsError{Units: units}
	}
	unit, ok := unitNames[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return TimeUnits{}, &TimeUnitsError{Units: units,
			Err: fmt.Errorf("unsupported unit %q", parts[0])}
	}
	ref := strings.TrimSpace(parts[1])
	var err error
	for _, layout := range epochLayouts {
		if len(ref) < len(layout) {
			continue
		}
		var t time.Time
		t, err = time.Parse(layout, ref[:len(layout)])
		if err == nil {
			return TimeUnits{Epoch: t.UTC(), Unit: unit}, nil
		}
	}
	return TimeUnits{}, &TimeUnitsError{Units: units, Err: err}
}

// Time returns the absolute time of the given offset. Whole days are
// added as calendar days so offsets of centuries do not overflow a
// time.Duration.
func (u TimeUnits) Time(offset float64) time.Time {
	days := offset * (float64(u.Unit) / float64(Day))
	whole := math.Floor(days)
	frac := time.Duration(math.Round((days - whole) * float64(Day)))
	return u.Epoch.AddDate(0, 0, int(whole)).Add(frac)
}

// IsZero reports whether u has not been set.
func (u TimeUnits) IsZero() bool { return u.Unit == 0 }

func (u TimeUnits) String() string {
	var name string
	switch u.Unit {
	case Day:
		name = "days"
	case Hour:
		name = "hours"
	case Minute:
		name = "minutes"
	case Second:
		name = "seconds"
	default:
		name = u.Unit.String()
	}
	return name + " since " + u.Epoch.Format("2006-01-02 15:04:05")
}

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
	"time"

	"github.com/ctessum/geom"
)

// DefaultFlags are the quality flag codes that denote good data
// in the ODV/SeaDataNet convention ('1' and '2' stored as bytes).
var DefaultFlags = []int{49, 50}

// DefaultPlatforms are the platform types admitted by default.
// Profiling floats, gliders and other autonomous platforms are
// excluded.
var DefaultPlatforms = []string{
	"man-powered small boat (3A)",
	"offshore structure (16)",
	"ship (30)",
	"research vessel (31)",
	"vessel of opportunity (32)",
	"self-propelled small boat (33)",
	"vessel at fixed position (34)",
	"vessel of opportunity on fixed route (35)",
	"fishing vessel (36)",
	"self-propelled boat (37)",
	"man-powered boat (38)",
	"naval vessel (39)",
	"moored surface buoy (41)",
	"subsurface mooring (43)",
	"fixed subsurface vertical profiler (45)",
	"mooring (48)",
}

// DateFormat is the layout of the selection start and end dates.
const DateFormat = "20060102"

// Criteria specifies which samples are admitted.
type Criteria struct {
	flags     map[int]struct{}
	platforms map[string]struct{}

	// Start and End bound the admitted profile dates. Both bounds
	// are inclusive.
	Start, End time.Time

	// Units converts station time offsets to absolute dates.
	Units TimeUnits

	// Region, if not nil, restricts admission to stations located
	// inside or on the edge of the polygon.
	Region geom.Polygonal
}

// NewCriteria returns selection criteria admitting the given flags and
// platforms between start and end (inclusive). The station time
// units must be set from the dataset with SetUnits before Select.
func NewCriteria(flags []int, platforms []string, start, end time.Time) (*Criteria, error) {
	if len(flags) == 0 {
		return nil, fmt.Errorf("profsel: no admitted quality flags specified")
	}
	if len(platforms) == 0 {
		return nil, fmt.Errorf("profsel: no admitted platforms specified")
	}
	if end.Before(start) {
		return nil, fmt.Errorf("profsel: selection end %s is before start %s",
			end.Format(DateFormat), start.Format(DateFormat))
	}
	c := &Criteria{
		flags:     make(map[int]struct{}, len(flags)),
		platforms: make(map[string]struct{}, len(platforms)),
		Start:     start,
		End:       end,
	}
	for _, f := range flags {
		c.flags[f] = struct{}{}
	}
	for _, p := range platforms {
		c.platforms[p] = struct{}{}
	}
	return c, nil
}

// ParseDates parses start and end dates in the DateFormat layout.
func ParseDates(start, end string) (time.Time, time.Time, error) {
	s, err := time.Parse(DateFormat, start)
	if err != nil {
		return s, s, fmt.Errorf("profsel: parsing start date: %w", err)
	}
	e, err := time.Parse(DateFormat, end)
	if err != nil {
		return s, e, fmt.Errorf("profsel: parsing end date: %w", err)
	}
	return s, e, nil
}

// SetUnits sets the time units used to compute station dates.
func (c *Criteria) SetUnits(u TimeUnits) { c.Units = u }

// AdmitsFlag returns whether quality flag f is admitted.
func (c *Criteria) AdmitsFlag(f int) bool {
	_, ok := c.flags[f]
	return ok
}

// AdmitsPlatform returns whether platform type p is admitted.
func (c *Criteria) AdmitsPlatform(p string) bool {
	_, ok := c.platforms[p]
	return ok
}

// Contains returns whether t lies within [Start, End].
func (c *Criteria) Contains(t time.Time) bool {
	return !t.Before(c.Start) && !t.After(c.End)
}

// Inside returns whether the point (lon, lat) is admitted by the
// region mask. It is always true when no region is set.
func (c *Criteria) Inside(lon, lat float64) bool {
	if c.Region == nil {
		return true
	}
	return geom.Point{X: lon, Y: lat}.Within(c.Region) != geom.Outside
}

// Date returns the absolute date of a station time offset. It returns
// the zero time, which no selection interval contains, when the units
// are not set.
func (c *Criteria) Date(offset float64) time.Time {
	if c.Units.IsZero() {
		return time.Time{}
	}
	return c.Units.Time(offset)
}

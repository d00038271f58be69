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

	"gonum.org/v1/gonum/floats"
)

// Evaluate counts the samples of s that pass all of the selection
// criteria in c. A sample is admitted when its quality flag is one of
// the admitted codes and its value is present. The platform, date and
// region tests describe the whole profile, so they are evaluated once
// and applied to every sample of the station.
func Evaluate(s Station, c *Criteria) Admission {
	date := c.Date(s.Time)
	if !c.AdmitsPlatform(s.Platform) || !c.Contains(date) || !c.Inside(s.Lon, s.Lat) {
		return Admission{}
	}
	var a Admission
	for _, smp := range s.Samples {
		if smp.Present && c.AdmitsFlag(smp.Flag) {
			a.Count++
		}
	}
	if a.Count > 0 {
		a.Retained = Retained{Lon: s.Lon, Lat: s.Lat, Date: date}
	}
	return a
}

// Result is the aggregate of evaluating a sequence of stations.
type Result struct {
	// Counts holds the number of admitted samples of each station,
	// in station order.
	Counts []int

	// Retained holds the stations with at least one admitted sample,
	// in station order.
	Retained []Retained
}

// add returns the result of folding a into r.
func (r Result) add(a Admission) Result {
	r.Counts = append(r.Counts, a.Count)
	if a.Ok() {
		r.Retained = append(r.Retained, a.Retained)
	}
	return r
}

// Select evaluates each station in order and returns the aggregate.
// The time units of c must be set.
func Select(stations []Station, c *Criteria) (*Result, error) {
	if c.Units.IsZero() {
		return nil, fmt.Errorf("profsel: selection time units are not set")
	}
	r := Result{
		Counts: make([]int, 0, len(stations)),
	}
	for _, s := range stations {
		r = r.add(Evaluate(s, c))
	}
	return &r, nil
}

// Profiles returns the number of stations with at least one admitted
// sample.
func (r *Result) Profiles() int { return len(r.Retained) }

// Values returns the total number of admitted samples.
func (r *Result) Values() int {
	var n int
	for _, c := range r.Counts {
		n += c
	}
	return n
}

// Years returns the first and last year among the retained stations.
// ok is false if there are no retained stations.
func (r *Result) Years() (first, last int, ok bool) {
	for i, rr := range r.Retained {
		y := rr.Date.Year()
		if i == 0 || y < first {
			first = y
		}
		if i == 0 || y > last {
			last = y
		}
	}
	return first, last, len(r.Retained) > 0
}

// Extent returns the bounding box of the retained stations.
// ok is false if there are no retained stations.
func (r *Result) Extent() (lonMin, lonMax, latMin, latMax float64, ok bool) {
	if len(r.Retained) == 0 {
		return 0, 0, 0, 0, false
	}
	c := r.Coords()
	return floats.Min(c.Lon), floats.Max(c.Lon), floats.Min(c.Lat), floats.Max(c.Lat), true
}

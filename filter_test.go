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
	"math"
	"testing"
	"time"

	"github.com/ctessum/geom"
)

func testCriteria(t *testing.T) *Criteria {
	start, end, err := ParseDates("19990101", "20221231")
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewCriteria(DefaultFlags, DefaultPlatforms, start, end)
	if err != nil {
		t.Fatal(err)
	}
	u, err := ParseTimeUnits("days since 1999-01-01 00:00:00 UTC")
	if err != nil {
		t.Fatal(err)
	}
	c.SetUnits(u)
	return c
}

func TestEvaluate(t *testing.T) {
	c := testCriteria(t)
	nan := math.NaN()
	tests := []struct {
		name    string
		station Station
		count   int
	}{
		{
			name: "good",
			station: Station{Lon: 5, Lat: 40, Time: 10, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(1, 49, 0), NewSample(2, 50, 10)}},
			count: 2,
		},
		{
			name: "flag 51",
			station: Station{Lon: 5, Lat: 40, Time: 10, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(1, 51, 0), NewSample(2, 51, 10)}},
			count: 0,
		},
		{
			name: "masked",
			station: Station{Lon: 5, Lat: 40, Time: 10, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(nan, 49, 0), NewSample(2, 49, 10)}},
			count: 1,
		},
		{
			name: "platform not admitted",
			station: Station{Lon: 5, Lat: 40, Time: 10, Platform: "subsurface float (46)",
				Samples: []Sample{NewSample(1, 49, 0), NewSample(2, 50, 10)}},
			count: 0,
		},
		{
			name: "before start",
			station: Station{Lon: 5, Lat: 40, Time: -1, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(1, 49, 0)}},
			count: 0,
		},
		{
			name: "on start",
			station: Station{Lon: 5, Lat: 40, Time: 0, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(1, 49, 0)}},
			count: 1,
		},
		{
			name: "after end",
			station: Station{Lon: 5, Lat: 40, Time: 9000, Platform: "research vessel (31)",
				Samples: []Sample{NewSample(1, 49, 0)}},
			count: 0,
		},
		{
			name:    "no samples",
			station: Station{Lon: 5, Lat: 40, Time: 10, Platform: "research vessel (31)"},
			count:   0,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			a := Evaluate(test.station, c)
			if a.Count != test.count {
				t.Errorf("count: have %d, want %d", a.Count, test.count)
			}
			if a.Count > len(test.station.Samples) {
				t.Errorf("count %d is larger than the number of samples %d", a.Count, len(test.station.Samples))
			}
			if a.Ok() != (test.count > 0) {
				t.Errorf("retained: have %v, want %v", a.Ok(), test.count > 0)
			}
			if a.Ok() && (a.Retained.Lon != test.station.Lon || a.Retained.Lat != test.station.Lat) {
				t.Errorf("retained location %g, %g; want %g, %g", a.Retained.Lon, a.Retained.Lat,
					test.station.Lon, test.station.Lat)
			}
		})
	}
}

func TestEvaluateRegion(t *testing.T) {
	c := testCriteria(t)
	c.Region = geom.Polygon{{{X: 0, Y: 35}, {X: 10, Y: 35}, {X: 10, Y: 45}, {X: 0, Y: 45}}}
	s := Station{Lon: 5, Lat: 40, Time: 10, Platform: "ship (30)",
		Samples: []Sample{NewSample(1, 49, 0)}}
	if a := Evaluate(s, c); a.Count != 1 {
		t.Errorf("inside: have count %d, want 1", a.Count)
	}
	s.Lon = 20
	if a := Evaluate(s, c); a.Count != 0 {
		t.Errorf("outside: have count %d, want 0", a.Count)
	}
}

// TestSelectTwoStations checks a station with mixed flags and a
// station with a platform that is not admitted.
func TestSelectTwoStations(t *testing.T) {
	c := testCriteria(t)
	stations := []Station{
		{
			Lon: 12.5, Lat: 38.25, Time: 100.5, Platform: "research vessel (31)",
			Samples: []Sample{
				NewSample(1.5, 49, 0),
				NewSample(2.5, 50, 10),
				NewSample(math.NaN(), 51, 20),
			},
		},
		{
			Lon: 20, Lat: 35, Time: 100.5, Platform: "glider (unknown)",
			Samples: []Sample{
				NewSample(1.5, 49, 0),
				NewSample(2.5, 49, 10),
				NewSample(3.5, 49, 20),
			},
		},
	}
	// The second sample of station A has an admitted flag, so it also
	// counts.
	r, err := Select(stations, c)
	if err != nil {
		t.Fatal(err)
	}
	wantCounts := []int{2, 0}
	for i, want := range wantCounts {
		if r.Counts[i] != want {
			t.Errorf("station %d: have count %d, want %d", i, r.Counts[i], want)
		}
	}
	if len(r.Retained) != 1 {
		t.Fatalf("have %d retained stations, want 1", len(r.Retained))
	}
	if r.Retained[0].Lon != 12.5 || r.Retained[0].Lat != 38.25 {
		t.Errorf("retained station %+v", r.Retained[0])
	}
	if r.Profiles() != 1 || r.Values() != 2 {
		t.Errorf("have %d profiles and %d values, want 1 and 2", r.Profiles(), r.Values())
	}

	// Only flag 49 admitted: the masked flag-51 sample and the
	// flag-50 sample are rejected.
	c49, err := NewCriteria([]int{49}, DefaultPlatforms, c.Start, c.End)
	if err != nil {
		t.Fatal(err)
	}
	if _, err = Select(stations, c49); err == nil {
		t.Error("unset time units: want an error")
	}
	if date := c49.Date(100.5); !date.IsZero() {
		t.Errorf("unset time units: have date %v", date)
	}
	c49.SetUnits(c.Units)
	if r, err = Select(stations, c49); err != nil {
		t.Fatal(err)
	}
	if r.Counts[0] != 1 || r.Counts[1] != 0 || len(r.Retained) != 1 {
		t.Errorf("flag 49 only: have counts %v and %d retained", r.Counts, len(r.Retained))
	}
}

func TestSelectOldEpoch(t *testing.T) {
	c := testCriteria(t)
	u, err := ParseTimeUnits("days since 1700-01-01 00:00:00")
	if err != nil {
		t.Fatal(err)
	}
	c.SetUnits(u)
	s := Station{Lon: 5, Lat: 40, Time: 113390, Platform: "research vessel (31)",
		Samples: []Sample{NewSample(1, 49, 0)}}
	a := Evaluate(s, c)
	if a.Count != 1 {
		t.Fatalf("have count %d, want 1", a.Count)
	}
	if date := a.Retained.Date.Format(CoordsDateFormat); date != "2010-06-15" {
		t.Errorf("have date %s, want 2010-06-15", date)
	}
}

func TestSelectOrder(t *testing.T) {
	c := testCriteria(t)
	var stations []Station
	for i := 0; i < 10; i++ {
		stations = append(stations, Station{
			Lon: float64(i), Lat: 40, Time: float64(i * 400), Platform: "ship (30)",
			Samples: []Sample{NewSample(1, 49+i%3, 0)},
		})
	}
	r, err := Select(stations, c)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Counts) != len(stations) {
		t.Fatalf("have %d counts, want %d", len(r.Counts), len(stations))
	}
	var retained int
	for i, n := range r.Counts {
		if n > 0 {
			if r.Retained[retained].Lon != stations[i].Lon {
				t.Errorf("retained station %d out of order", i)
			}
			retained++
		}
	}
	if retained != len(r.Retained) {
		t.Errorf("have %d retained stations, want %d", len(r.Retained), retained)
	}
	first, last, ok := r.Years()
	if !ok || first != 1999 || last != 2008 {
		t.Errorf("years: have %d-%d (%v), want 1999-2008", first, last, ok)
	}
}

func TestNewCriteriaErrors(t *testing.T) {
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2001, 1, 1, 0, 0, 0, 0, time.UTC)
	if _, err := NewCriteria(nil, DefaultPlatforms, start, end); err == nil {
		t.Error("no flags: want an error")
	}
	if _, err := NewCriteria(DefaultFlags, nil, start, end); err == nil {
		t.Error("no platforms: want an error")
	}
	if _, err := NewCriteria(DefaultFlags, DefaultPlatforms, end, start); err == nil {
		t.Error("end before start: want an error")
	}
	if _, _, err := ParseDates("1999-01-01", "20221231"); err == nil {
		t.Error("bad date: want an error")
	}
}

func TestExtent(t *testing.T) {
	lonMin, lonMax, latMin, latMax, ok := testResult().Extent()
	if !ok {
		t.Fatal("no extent")
	}
	if lonMin != 3 || lonMax != 12.5 || latMin != 38.25 || latMax != 42 {
		t.Errorf("have %g, %g, %g, %g", lonMin, lonMax, latMin, latMax)
	}
	if _, _, _, _, ok := new(Result).Extent(); ok {
		t.Error("empty result should have no extent")
	}
}

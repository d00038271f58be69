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
	"time"
)

// A Sample is one depth-indexed measurement within a station.
type Sample struct {
	// Value is the measured value. It is NaN when the value is
	// missing or masked in the source dataset.
	Value float64

	// Present is false when the value is missing or masked.
	Present bool

	// Flag is the quality flag code of the measurement.
	Flag int

	// Depth is the sample depth [m].
	Depth float64
}

// A Station is a single profile: a location and reference time with
// an ordered sequence of samples.
type Station struct {
	Lon, Lat float64 // degrees

	// Time is the reference time offset of the profile, in
	// dataset time units since the dataset epoch.
	Time float64

	// Platform is the platform type label, shared by all samples.
	Platform string

	Samples []Sample
}

// NewSample returns a sample, marking it as absent if value is NaN.
func NewSample(value float64, flag int, depth float64) Sample {
	return Sample{
		Value:   value,
		Present: !math.IsNaN(value),
		Flag:    flag,
		Depth:   depth,
	}
}

// Retained holds the location and absolute date of a station
// that has at least one admitted sample.
type Retained struct {
	Lon, Lat float64
	Date     time.Time
}

// Admission is the outcome of evaluating one station.
type Admission struct {
	// Count is the number of admitted samples.
	Count int

	// Retained is only valid when Count > 0.
	Retained Retained
}

// Ok returns whether the station contributes to the retained
// coordinates.
func (a Admission) Ok() bool { return a.Count > 0 }

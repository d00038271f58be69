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
	"errors"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/seaobs/profsel/internal/profseltest"
)

func testDataset() *profseltest.Dataset {
	nan := float32(math.NaN())
	return &profseltest.Dataset{
		Lon:       []float64{12.5, 20, 3},
		Lat:       []float64{38.25, 35, 42},
		Time:      []float64{100.5, 100.5, 5000},
		Units:     "days since 1999-01-01 00:00:00 UTC",
		Platforms: []string{"research vessel (31)", "subsurface float (46)", "ship (30)"},
		Variable:  "Water body nitrate",
		Values: [][]float32{
			{1.5, 2.5, nan},
			{1.5, 2.5, 3.5},
			{0.5, nan, nan},
		},
		Flags: [][]uint8{
			{49, 50, 51},
			{49, 49, 49},
			{50, 57, 57},
		},
		Depth: [][]float32{
			{0, 10, 20},
			{0, 10, 20},
			{5, nan, nan},
		},
	}
}

func writeTestDataset(t *testing.T, name string, d *profseltest.Dataset) {
	f, err := os.Create(name)
	if err != nil {
		t.Fatal(err)
	}
	if err := d.Write(f); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
}

func openTestDataset(t *testing.T, name string) (*Dataset, *os.File) {
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	d, err := OpenDataset(f)
	if err != nil {
		f.Close()
		t.Fatal(err)
	}
	return d, f
}

func TestDataset(t *testing.T) {
	const name = "tmp_dataset.nc"
	writeTestDataset(t, name, testDataset())
	defer os.Remove(name)
	d, f := openTestDataset(t, name)
	defer f.Close()

	if d.NumStations() != 3 {
		t.Fatalf("have %d stations, want 3", d.NumStations())
	}
	if !d.Units.Epoch.Equal(time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)) || d.Units.Unit != Day {
		t.Errorf("units: %v", d.Units)
	}

	if n, err := d.NumSamples("Water body nitrate"); err != nil || n != 3 {
		t.Errorf("have %d samples per station (error %v), want 3", n, err)
	}

	t.Run("platforms", func(t *testing.T) {
		p, err := d.Platforms()
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"research vessel (31)", "subsurface float (46)", "ship (30)"}
		for i := range want {
			if p[i] != want[i] {
				t.Errorf("platform %d: have %q, want %q", i, p[i], want[i])
			}
		}
	})

	t.Run("stations", func(t *testing.T) {
		stations, err := d.Stations("Water body nitrate")
		if err != nil {
			t.Fatal(err)
		}
		if len(stations) != 3 {
			t.Fatalf("have %d stations, want 3", len(stations))
		}
		s := stations[0]
		if s.Lon != 12.5 || s.Lat != 38.25 || s.Time != 100.5 {
			t.Errorf("station 0: %+v", s)
		}
		if len(s.Samples) != 3 {
			t.Fatalf("have %d samples, want 3", len(s.Samples))
		}
		if !s.Samples[0].Present || s.Samples[0].Value != 1.5 || s.Samples[0].Flag != 49 {
			t.Errorf("sample 0: %+v", s.Samples[0])
		}
		if s.Samples[2].Present || s.Samples[2].Flag != 51 {
			t.Errorf("sample 2 should be missing: %+v", s.Samples[2])
		}
		if s.Samples[1].Depth != 10 {
			t.Errorf("sample 1 depth: have %g, want 10", s.Samples[1].Depth)
		}
		if !math.IsNaN(stations[2].Samples[1].Depth) {
			t.Errorf("masked depth: have %g, want NaN", stations[2].Samples[1].Depth)
		}
	})

	t.Run("select", func(t *testing.T) {
		stations, err := d.Stations("Water body nitrate")
		if err != nil {
			t.Fatal(err)
		}
		c := testCriteria(t)
		c.SetUnits(d.Units)
		r, err := Select(stations, c)
		if err != nil {
			t.Fatal(err)
		}
		want := []int{2, 0, 1}
		for i := range want {
			if r.Counts[i] != want[i] {
				t.Errorf("station %d: have count %d, want %d", i, r.Counts[i], want[i])
			}
		}
		if len(r.Retained) != 2 {
			t.Fatalf("have %d retained stations, want 2", len(r.Retained))
		}
		if date := r.Retained[1].Date.Format(CoordsDateFormat); date != "2012-09-09" {
			t.Errorf("date: have %s, want 2012-09-09", date)
		}
	})

	t.Run("missing variable", func(t *testing.T) {
		_, err := d.Stations("Water body phosphate")
		var mv *MissingVariableError
		if !errors.As(err, &mv) {
			t.Fatalf("have error %v, want a *MissingVariableError", err)
		}
		if mv.Attribute != "long_name" || mv.Value != "Water body phosphate" {
			t.Errorf("have %+v", mv)
		}
	})
}

func TestDatasetMissingFlags(t *testing.T) {
	const name = "tmp_dataset_noqc.nc"
	ds := testDataset()
	ds.OmitFlags = true
	writeTestDataset(t, name, ds)
	defer os.Remove(name)
	d, f := openTestDataset(t, name)
	defer f.Close()

	_, err := d.Stations("Water body nitrate")
	var mv *MissingVariableError
	if !errors.As(err, &mv) {
		t.Fatalf("have error %v, want a *MissingVariableError", err)
	}
	if mv.Value != "Quality flag of Water body nitrate" {
		t.Errorf("have missing value %q", mv.Value)
	}
}

// oneStation returns a dataset with a single admitted station holding
// values, all flagged 49.
func oneStation(values ...float32) *profseltest.Dataset {
	flags := make([]uint8, len(values))
	for i := range flags {
		flags[i] = 49
	}
	return &profseltest.Dataset{
		Lon:       []float64{12.5},
		Lat:       []float64{38.25},
		Time:      []float64{100.5},
		Units:     "days since 1999-01-01 00:00:00 UTC",
		Platforms: []string{"research vessel (31)"},
		Variable:  "Water body nitrate",
		Values:    [][]float32{values},
		Flags:     [][]uint8{flags},
	}
}

func TestDatasetMasking(t *testing.T) {
	nan := math.NaN()
	fnan := float32(nan)
	tests := []struct {
		name   string
		d      *profseltest.Dataset
		values []float64
	}{
		{
			name:   "fill value",
			d:      oneStation(1, fnan, 2),
			values: []float64{1, nan, 2},
		},
		{
			name: "missing value",
			d: func() *profseltest.Dataset {
				d := oneStation(1, -99, 2)
				d.Attributes = map[string]interface{}{"missing_value": []float32{-99}}
				return d
			}(),
			values: []float64{1, nan, 2},
		},
		{
			name: "valid min and max",
			d: func() *profseltest.Dataset {
				d := oneStation(-1, 10, 60)
				d.Attributes = map[string]interface{}{
					"valid_min": []float32{0},
					"valid_max": []float32{50},
				}
				return d
			}(),
			values: []float64{nan, 10, nan},
		},
		{
			name: "valid range",
			d: func() *profseltest.Dataset {
				d := oneStation(-1, 0, 50, 60)
				d.Attributes = map[string]interface{}{"valid_range": []float32{0, 50}}
				return d
			}(),
			values: []float64{nan, 0, 50, nan},
		},
		{
			name: "default fill value",
			d: func() *profseltest.Dataset {
				d := oneStation(1, fnan, 2)
				d.OmitFillValue = true
				return d
			}(),
			values: []float64{1, nan, 2},
		},
		{
			name: "scale and offset",
			d: func() *profseltest.Dataset {
				d := oneStation(1, 2, fnan)
				d.Attributes = map[string]interface{}{
					"scale_factor": []float32{2},
					"add_offset":   []float32{1},
				}
				return d
			}(),
			values: []float64{3, 5, nan},
		},
		{
			name: "mask before unpacking",
			d: func() *profseltest.Dataset {
				d := oneStation(1, -50, 60)
				d.Attributes = map[string]interface{}{
					"scale_factor":  []float32{2},
					"missing_value": []float32{-50},
					"valid_max":     []float32{50},
				}
				return d
			}(),
			values: []float64{2, nan, nan},
		},
	}
	for i, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			name := "tmp_mask_" + string(rune('a'+i)) + ".nc"
			writeTestDataset(t, name, test.d)
			defer os.Remove(name)
			d, f := openTestDataset(t, name)
			defer f.Close()
			stations, err := d.Stations("Water body nitrate")
			if err != nil {
				t.Fatal(err)
			}
			samples := stations[0].Samples
			if len(samples) != len(test.values) {
				t.Fatalf("have %d samples, want %d", len(samples), len(test.values))
			}
			for j, want := range test.values {
				s := samples[j]
				if math.IsNaN(want) {
					if s.Present || !math.IsNaN(s.Value) {
						t.Errorf("sample %d: have %+v, want it masked", j, s)
					}
					continue
				}
				if !s.Present || s.Value != want {
					t.Errorf("sample %d: have %+v, want %g", j, s, want)
				}
			}
		})
	}
}

func TestDatasetFlagTypes(t *testing.T) {
	for _, test := range []struct {
		name  string
		char  bool
		flags []int
	}{
		{name: "byte", flags: []int{49, -56, 50}},
		{name: "char", char: true, flags: []int{49, 200, 50}},
	} {
		t.Run(test.name, func(t *testing.T) {
			const name = "tmp_flags.nc"
			ds := oneStation(1, 2, 3)
			ds.Flags = [][]uint8{{49, 200, 50}}
			ds.CharFlags = test.char
			writeTestDataset(t, name, ds)
			defer os.Remove(name)
			d, f := openTestDataset(t, name)
			defer f.Close()
			stations, err := d.Stations("Water body nitrate")
			if err != nil {
				t.Fatal(err)
			}
			for j, want := range test.flags {
				if have := stations[0].Samples[j].Flag; have != want {
					t.Errorf("sample %d: have flag %d, want %d", j, have, want)
				}
			}
		})
	}
}

func TestDatasetRecordVariables(t *testing.T) {
	const name = "tmp_record.nc"
	ds := testDataset()
	ds.Record = true
	writeTestDataset(t, name, ds)
	defer os.Remove(name)
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	_, err = OpenDataset(f)
	if err == nil || !strings.Contains(err.Error(), "record dimension") {
		t.Errorf("have error %v, want a record dimension error", err)
	}
}

func TestCountPlatforms(t *testing.T) {
	have := CountPlatforms([]string{"ship (30)", "mooring (48)", "ship (30)", "buoy", "buoy", "ship (30)"})
	want := []PlatformCount{
		{Platform: "ship (30)", Stations: 3},
		{Platform: "buoy", Stations: 2},
		{Platform: "mooring (48)", Stations: 1},
	}
	if len(have) != len(want) {
		t.Fatalf("have %v, want %v", have, want)
	}
	for i := range want {
		if have[i] != want[i] {
			t.Errorf("%d: have %v, want %v", i, have[i], want[i])
		}
	}
}

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
	"bytes"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/ctessum/cdf"
	"github.com/kr/pretty"
)

func testResult() *Result {
	return &Result{
		Counts: []int{2, 0, 1},
		Retained: []Retained{
			{Lon: 12.5, Lat: 38.25, Date: time.Date(1999, 4, 11, 12, 0, 0, 0, time.UTC)},
			{Lon: 3, Lat: 42, Date: time.Date(2012, 9, 9, 0, 0, 0, 0, time.UTC)},
		},
	}
}

func TestCoords(t *testing.T) {
	c := testResult().Coords()
	want := &Coords{
		Lon:  []float64{12.5, 3},
		Lat:  []float64{38.25, 42},
		Time: []string{"1999-04-11", "2012-09-09"},
	}
	if !reflect.DeepEqual(c, want) {
		t.Errorf("have %+v, want %+v", c, want)
	}

	for _, format := range []CoordsFormat{Gob, MsgPack, XLSX} {
		t.Run(format.String(), func(t *testing.T) {
			var b bytes.Buffer
			if err := c.Encode(&b, format); err != nil {
				t.Fatal(err)
			}
			have, err := ReadCoords(&b, format)
			if err != nil {
				t.Fatal(err)
			}
			if diff := pretty.Diff(have, want); len(diff) > 0 {
				t.Errorf("coordinates differ: %v", diff)
			}
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path   string
		format CoordsFormat
		err    bool
	}{
		{path: "PKL/profiles/Coords_N3n.gob", format: Gob},
		{path: "Coords.msgpack", format: MsgPack},
		{path: "Coords.MP", format: MsgPack},
		{path: "Coords.nc", format: NetCDF},
		{path: "Coords.xlsx", format: XLSX},
		{path: "Coords.pkl", err: true},
	}
	for _, test := range tests {
		format, err := FormatFromPath(test.path)
		if (err != nil) != test.err {
			t.Errorf("%s: have error %v", test.path, err)
			continue
		}
		if !test.err && format != test.format {
			t.Errorf("%s: have %v, want %v", test.path, format, test.format)
		}
	}
}

func TestCoordsNetCDF(t *testing.T) {
	const name = "tmp_coords.nc"
	c := testResult().Coords()
	if err := c.Save(name); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(name)

	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		t.Fatal(err)
	}
	if l := ff.Header.Lengths("date"); !reflect.DeepEqual(l, []int{2, 10}) {
		t.Fatalf("date lengths: have %v, want [2 10]", l)
	}
	r := ff.Reader("lat", nil, nil)
	lat := r.Zero(2).([]float64)
	if _, err := r.Read(lat); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(lat, c.Lat) {
		t.Errorf("lat: have %v, want %v", lat, c.Lat)
	}
	r = ff.Reader("date", nil, nil)
	date := r.Zero(20).([]uint8)
	if _, err := r.Read(date); err != nil {
		t.Fatal(err)
	}
	if string(date) != "1999-04-112012-09-09" {
		t.Errorf("date: have %q", date)
	}
}

func TestCoordsSaveGob(t *testing.T) {
	const name = "tmp_coords.gob"
	c := testResult().Coords()
	if err := c.Save(name); err != nil {
		t.Fatal(err)
	}
	defer os.Remove(name)
	f, err := os.Open(name)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	have, err := ReadCoords(f, Gob)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(have, c) {
		t.Errorf("have %+v, want %+v", have, c)
	}
}

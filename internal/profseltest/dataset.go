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

// Package profseltest writes synthetic profile collections for testing.
package profseltest

import (
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ctessum/cdf"
)

// FillValue marks missing values of the measured variable.
const FillValue float32 = -1e10

// Dataset describes a synthetic profile collection in the
// EMODnet/ODV netCDF layout.
type Dataset struct {
	Lon, Lat, Time []float64

	// Units is the units attribute of the time variable.
	Units string

	Platforms []string

	// Variable is the long_name of the measured variable.
	Variable string

	// Values and Flags hold the samples of each station. NaN values
	// are written as FillValue.
	Values [][]float32
	Flags  [][]uint8

	// Depth is written if it is not nil.
	Depth [][]float32

	// OmitFlags leaves out the quality flag variable.
	OmitFlags bool

	// CharFlags stores the quality flags as CHAR instead of BYTE.
	CharFlags bool

	// Attributes are added to the measured variable. Numeric values
	// must be float32 slices to match the variable type.
	Attributes map[string]interface{}

	// OmitFillValue leaves out the _FillValue attribute of the
	// measured variable, so NaN values are written as the netCDF
	// default fill value instead of FillValue.
	OmitFillValue bool

	// Record makes N_STATIONS the record dimension.
	Record bool
}

// Write writes d to w as a netCDF classic file.
func (d *Dataset) Write(w *os.File) error {
	nstations := len(d.Lon)
	if nstations == 0 || len(d.Values) != nstations {
		return fmt.Errorf("profseltest: need values for %d stations", nstations)
	}
	nsamples := len(d.Values[0])
	strlen := 1
	for _, p := range d.Platforms {
		if len(p) > strlen {
			strlen = len(p)
		}
	}

	stationDim := nstations
	if d.Record {
		stationDim = 0
	}
	h := cdf.NewHeader([]string{"N_STATIONS", "N_SAMPLES", "STRING"},
		[]int{stationDim, nsamples, strlen})
	h.AddAttribute("", "title", "synthetic profile collection")

	h.AddVariable("longitude", []string{"N_STATIONS"}, []float64{0})
	h.AddAttribute("longitude", "standard_name", "longitude")
	h.AddAttribute("longitude", "units", "degrees_east")
	h.AddVariable("latitude", []string{"N_STATIONS"}, []float64{0})
	h.AddAttribute("latitude", "standard_name", "latitude")
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("date_time", []string{"N_STATIONS"}, []float64{0})
	h.AddAttribute("date_time", "standard_name", "time")
	h.AddAttribute("date_time", "long_name", "Decimal Gregorian Days of the station")
	h.AddAttribute("date_time", "units", d.Units)
	h.AddVariable("metavar4", []string{"N_STATIONS", "STRING"}, "")
	h.AddAttribute("metavar4", "long_name", "Platform type")
	h.AddVariable("var1", []string{"N_STATIONS", "N_SAMPLES"}, []float32{0})
	h.AddAttribute("var1", "long_name", "Depth")
	h.AddAttribute("var1", "units", "m")
	h.AddAttribute("var1", "_FillValue", []float32{FillValue})
	h.AddVariable("var2", []string{"N_STATIONS", "N_SAMPLES"}, []float32{0})
	h.AddAttribute("var2", "long_name", d.Variable)
	fill := FillValue
	if d.OmitFillValue {
		fill = defaultFloatFill
	} else {
		h.AddAttribute("var2", "_FillValue", []float32{FillValue})
	}
	for name, val := range d.Attributes {
		h.AddAttribute("var2", name, val)
	}
	if !d.OmitFlags {
		if d.CharFlags {
			h.AddVariable("var2_qc", []string{"N_STATIONS", "N_SAMPLES"}, "")
		} else {
			h.AddVariable("var2_qc", []string{"N_STATIONS", "N_SAMPLES"}, []uint8{0})
		}
		h.AddAttribute("var2_qc", "long_name", "Quality flag of "+d.Variable)
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return err
	}
	write := func(v string, data interface{}) error {
		var start, end []int
		if !d.Record {
			end = f.Header.Lengths(v)
			start = make([]int, len(end))
		}
		if _, err := f.Writer(v, start, end).Write(data); err != nil {
			return fmt.Errorf("profseltest: writing %s: %v", v, err)
		}
		return nil
	}
	if err := write("longitude", d.Lon); err != nil {
		return err
	}
	if err := write("latitude", d.Lat); err != nil {
		return err
	}
	if err := write("date_time", d.Time); err != nil {
		return err
	}
	var platforms strings.Builder
	for _, p := range d.Platforms {
		platforms.WriteString(p)
		platforms.WriteString(strings.Repeat("\x00", strlen-len(p)))
	}
	if err := write("metavar4", platforms.String()); err != nil {
		return err
	}
	depth := d.Depth
	if depth == nil {
		depth = make([][]float32, nstations)
		for i := range depth {
			depth[i] = make([]float32, nsamples)
			for j := range depth[i] {
				depth[i][j] = float32(math.NaN())
			}
		}
	}
	if err := write("var1", flatten(depth, nsamples, FillValue)); err != nil {
		return err
	}
	if err := write("var2", flatten(d.Values, nsamples, fill)); err != nil {
		return err
	}
	if !d.OmitFlags {
		flags := make([]uint8, 0, nstations*nsamples)
		for _, row := range d.Flags {
			flags = append(flags, row...)
		}
		var data interface{} = flags
		if d.CharFlags {
			data = string(flags)
		}
		if err := write("var2_qc", data); err != nil {
			return err
		}
	}
	if d.Record {
		return cdf.UpdateNumRecs(w)
	}
	return nil
}

// defaultFloatFill is the netCDF default fill value of FLOAT variables.
const defaultFloatFill float32 = 9.9692099683868690e+36

// flatten joins rows of n values, replacing NaN with fill.
func flatten(rows [][]float32, n int, fill float32) []float32 {
	o := make([]float32, 0, len(rows)*n)
	for _, row := range rows {
		for _, v := range row {
			if math.IsNaN(float64(v)) {
				v = fill
			}
			o = append(o, v)
		}
	}
	return o
}

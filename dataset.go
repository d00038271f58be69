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

	"github.com/ctessum/cdf"
)

// Attribute values used to locate variables in a profile collection.
const (
	lonStandardName     = "longitude"
	latStandardName     = "latitude"
	timeStandardName    = "time"
	depthLongName       = "Depth"
	platformLongName    = "Platform type"
	qualityFlagLongName = "Quality flag of "
	epochVariable       = "date_time"
	standardNameAttr    = "standard_name"
	longNameAttr        = "long_name"
	unitsAttr           = "units"
	fillValueAttr       = "_FillValue"
	missingValueAttr    = "missing_value"
	validMinAttr        = "valid_min"
	validMaxAttr        = "valid_max"
	validRangeAttr      = "valid_range"
	scaleFactorAttr     = "scale_factor"
	addOffsetAttr       = "add_offset"
	stringPaddingCutset = "\x00 "
)

// MissingVariableError is returned when no variable in a dataset
// carries the requested attribute value.
type MissingVariableError struct {
	Attribute, Value string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("profsel: cannot find a variable with %s=%q", e.Attribute, e.Value)
}

// FindVariable returns the name of the first variable whose attribute
// attr equals value.
func FindVariable(h *cdf.Header, attr, value string) (string, error) {
	for _, v := range h.Variables() {
		s, ok := h.GetAttribute(v, attr).(string)
		if !ok {
			continue
		}
		if strings.TrimRight(s, stringPaddingCutset) == value {
			return v, nil
		}
	}
	return "", &MissingVariableError{Attribute: attr, Value: value}
}

// Dataset is a netCDF collection of profiles in the EMODnet/ODV
// layout, with per-station coordinates and per-(station, sample)
// variables. Only the netCDF classic formats are supported.
type Dataset struct {
	f *cdf.File

	// Lon, Lat and Time hold the per-station coordinates. Time is in
	// Units since the Units epoch.
	Lon, Lat, Time []float64

	Units TimeUnits
}

// OpenDataset reads the station coordinates and the time units from
// the netCDF file in rw.
func OpenDataset(rw cdf.ReaderWriterAt) (*Dataset, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("profsel: opening dataset: %w", err)
	}
	d := &Dataset{f: f}

	coords := []struct {
		name string
		dst  *[]float64
	}{
		{lonStandardName, &d.Lon},
		{latStandardName, &d.Lat},
		{timeStandardName, &d.Time},
	}
	for _, c := range coords {
		v, err := FindVariable(f.Header, standardNameAttr, c.name)
		if err != nil {
			return nil, err
		}
		if *c.dst, err = d.readFloats(v); err != nil {
			return nil, err
		}
	}
	if len(d.Lat) != len(d.Lon) || len(d.Time) != len(d.Lon) {
		return nil, fmt.Errorf("profsel: station coordinate lengths differ: lon=%d, lat=%d, time=%d",
			len(d.Lon), len(d.Lat), len(d.Time))
	}

	units, err := d.timeUnits()
	if err != nil {
		return nil, err
	}
	d.Units, err = ParseTimeUnits(units)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// timeUnits returns the units string of the date_time variable, or
// of the time coordinate if there is no date_time variable.
func (d *Dataset) timeUnits() (string, error) {
	v := epochVariable
	if d.f.Header.Lengths(v) == nil {
		var err error
		if v, err = FindVariable(d.f.Header, standardNameAttr, timeStandardName); err != nil {
			return "", err
		}
	}
	units, ok := d.f.Header.GetAttribute(v, unitsAttr).(string)
	if !ok {
		return "", fmt.Errorf("profsel: variable %s has no units attribute", v)
	}
	return strings.TrimRight(units, stringPaddingCutset), nil
}

// NumStations returns the number of stations in the dataset.
func (d *Dataset) NumStations() int { return len(d.Lon) }

// Header returns the netCDF header of the dataset.
func (d *Dataset) Header() *cdf.Header { return d.f.Header }

// Platforms returns the platform type label of each station.
func (d *Dataset) Platforms() ([]string, error) {
	v, err := FindVariable(d.f.Header, longNameAttr, platformLongName)
	if err != nil {
		return nil, err
	}
	return d.readStrings(v)
}

// NumSamples returns the number of depth samples per station of the
// variable whose long_name is variable.
func (d *Dataset) NumSamples(variable string) (int, error) {
	vName, err := FindVariable(d.f.Header, longNameAttr, variable)
	if err != nil {
		return 0, err
	}
	lengths := d.f.Header.Lengths(vName)
	if len(lengths) != 2 {
		return 0, fmt.Errorf("profsel: variable %s has shape %v; want [N_STATIONS N_SAMPLES]", vName, lengths)
	}
	return lengths[1], nil
}

// Stations returns the stations of the dataset with their samples of
// the variable whose long_name is variable. The variable, its quality
// flag companion and the platform type variable must all exist.
// The Depth variable is optional; sample depths are NaN without it.
func (d *Dataset) Stations(variable string) ([]Station, error) {
	h := d.f.Header
	vName, err := FindVariable(h, longNameAttr, variable)
	if err != nil {
		return nil, err
	}
	qfName, err := FindVariable(h, longNameAttr, qualityFlagLongName+variable)
	if err != nil {
		return nil, err
	}
	platforms, err := d.Platforms()
	if err != nil {
		return nil, err
	}
	nstations := d.NumStations()
	if len(platforms) != nstations {
		return nil, fmt.Errorf("profsel: %d platform labels for %d stations", len(platforms), nstations)
	}

	lengths := h.Lengths(vName)
	if len(lengths) != 2 || lengths[0] != nstations {
		return nil, fmt.Errorf("profsel: variable %s has shape %v; want [%d N_SAMPLES]", vName, lengths, nstations)
	}
	nsamples := lengths[1]
	if qfl := h.Lengths(qfName); len(qfl) != 2 || qfl[0] != nstations || qfl[1] != nsamples {
		return nil, fmt.Errorf("profsel: quality flag variable %s has shape %v; want %v", qfName, qfl, lengths)
	}

	values, err := d.readFloats(vName)
	if err != nil {
		return nil, err
	}
	flags, err := d.readInts(qfName)
	if err != nil {
		return nil, err
	}
	depth, err := d.depths(nstations, nsamples)
	if err != nil {
		return nil, err
	}

	stations := make([]Station, nstations)
	for i := range stations {
		s := Station{
			Lon:      d.Lon[i],
			Lat:      d.Lat[i],
			Time:     d.Time[i],
			Platform: platforms[i],
			Samples:  make([]Sample, nsamples),
		}
		for j := range s.Samples {
			k := i*nsamples + j
			s.Samples[j] = NewSample(values[k], flags[k], depth(i, j))
		}
		stations[i] = s
	}
	return stations, nil
}

// depths returns a function giving the depth of sample j of station i.
func (d *Dataset) depths(nstations, nsamples int) (func(i, j int) float64, error) {
	v, err := FindVariable(d.f.Header, longNameAttr, depthLongName)
	if err != nil {
		return func(int, int) float64 { return math.NaN() }, nil
	}
	z, err := d.readFloats(v)
	if err != nil {
		return nil, err
	}
	switch len(z) {
	case nstations * nsamples:
		return func(i, j int) float64 { return z[i*nsamples+j] }, nil
	case nsamples:
		return func(_, j int) float64 { return z[j] }, nil
	default:
		return nil, fmt.Errorf("profsel: depth variable %s has %d elements; want %d or %d",
			v, len(z), nstations*nsamples, nsamples)
	}
}

// read reads all of the data of variable v.
func (d *Dataset) read(v string) (interface{}, error) {
	h := d.f.Header
	if h.IsRecordVariable(v) {
		return nil, fmt.Errorf("profsel: variable %s uses the record dimension, which is not supported", v)
	}
	n := 1
	for _, l := range h.Lengths(v) {
		n *= l
	}
	r := d.f.Reader(v, nil, nil)
	if r == nil {
		return nil, fmt.Errorf("profsel: no such variable %s", v)
	}
	data := r.Zero(n)
	if _, err := r.Read(data); err != nil {
		return nil, fmt.Errorf("profsel: reading variable %s: %w", v, err)
	}
	return data, nil
}

// isChar returns whether v is of netCDF type CHAR.
func (d *Dataset) isChar(v string) bool {
	_, ok := d.f.Header.ZeroValue(v, 0).(string)
	return ok
}

// readFloats reads numeric variable v, applying the packing and
// masking attributes. Masked values are set to NaN.
func (d *Dataset) readFloats(v string) ([]float64, error) {
	dataI, err := d.read(v)
	if err != nil {
		return nil, err
	}
	data, err := toFloats(dataI, !d.isChar(v))
	if err != nil {
		return nil, fmt.Errorf("profsel: variable %s: %w", v, err)
	}
	m := d.mask(v)
	scale, offset := 1.0, 0.0
	if s, ok := d.floatAttribute(v, scaleFactorAttr); ok {
		scale = s
	}
	if o, ok := d.floatAttribute(v, addOffsetAttr); ok {
		offset = o
	}
	for i, x := range data {
		if m.masked(x) {
			data[i] = math.NaN()
			continue
		}
		data[i] = x*scale + offset
	}
	return data, nil
}

// readInts reads integer variable v.
func (d *Dataset) readInts(v string) ([]int, error) {
	dataI, err := d.read(v)
	if err != nil {
		return nil, err
	}
	var o []int
	switch data := dataI.(type) {
	case []uint8:
		o = make([]int, len(data))
		char := d.isChar(v)
		for i, x := range data {
			if char {
				o[i] = int(x)
			} else {
				o[i] = int(int8(x))
			}
		}
	case []int16:
		o = make([]int, len(data))
		for i, x := range data {
			o[i] = int(x)
		}
	case []int32:
		o = make([]int, len(data))
		for i, x := range data {
			o[i] = int(x)
		}
	default:
		return nil, fmt.Errorf("profsel: variable %s has type %T; want an integer type", v, dataI)
	}
	return o, nil
}

// readStrings reads a two dimensional CHAR variable as one string per
// row, removing padding.
func (d *Dataset) readStrings(v string) ([]string, error) {
	lengths := d.f.Header.Lengths(v)
	if len(lengths) != 2 || !d.isChar(v) {
		return nil, fmt.Errorf("profsel: variable %s is not a two dimensional character array", v)
	}
	dataI, err := d.read(v)
	if err != nil {
		return nil, err
	}
	data := dataI.([]uint8)
	o := make([]string, lengths[0])
	for i := range o {
		row := data[i*lengths[1] : (i+1)*lengths[1]]
		o[i] = strings.TrimRight(string(row), stringPaddingCutset)
	}
	return o, nil
}

// mask identifies missing values.
type mask struct {
	fill     []float64
	min, max float64
}

func (m mask) masked(x float64) bool {
	if math.IsNaN(x) || x < m.min || x > m.max {
		return true
	}
	for _, f := range m.fill {
		if x == f {
			return true
		}
	}
	return false
}

// mask returns the missing value mask of variable v. Without a
// _FillValue attribute, the netCDF default fill value is used for
// all types except bytes.
func (d *Dataset) mask(v string) mask {
	m := mask{min: math.Inf(-1), max: math.Inf(1)}
	if f, ok := d.floatAttribute(v, fillValueAttr); ok {
		m.fill = append(m.fill, f)
	} else if _, isBytes := d.f.Header.ZeroValue(v, 0).([]uint8); !isBytes && !d.isChar(v) {
		if f, ok := scalarToFloat(d.f.Header.FillValue(v)); ok {
			m.fill = append(m.fill, f)
		}
	}
	if vals, ok := d.floatsAttribute(v, missingValueAttr); ok {
		m.fill = append(m.fill, vals...)
	}
	if r, ok := d.floatsAttribute(v, validRangeAttr); ok && len(r) == 2 {
		m.min, m.max = r[0], r[1]
	}
	if f, ok := d.floatAttribute(v, validMinAttr); ok {
		m.min = f
	}
	if f, ok := d.floatAttribute(v, validMaxAttr); ok {
		m.max = f
	}
	return m
}

// floatsAttribute returns the values of numeric attribute a of v.
func (d *Dataset) floatsAttribute(v, a string) ([]float64, bool) {
	attr := d.f.Header.GetAttribute(v, a)
	if attr == nil {
		return nil, false
	}
	if _, ok := attr.(string); ok {
		return nil, false
	}
	f, err := toFloats(attr, true)
	if err != nil || len(f) == 0 {
		return nil, false
	}
	return f, true
}

// floatAttribute returns the first value of numeric attribute a of v.
func (d *Dataset) floatAttribute(v, a string) (float64, bool) {
	f, ok := d.floatsAttribute(v, a)
	if !ok {
		return 0, false
	}
	return f[0], true
}

// toFloats widens a slice of netCDF values to float64. Bytes are
// treated as signed when signedBytes is true.
func toFloats(dataI interface{}, signedBytes bool) ([]float64, error) {
	var data []float64
	switch v := dataI.(type) {
	case []float64:
		data = make([]float64, len(v))
		copy(data, v)
	case []float32:
		data = make([]float64, len(v))
		for i, x := range v {
			data[i] = float64(x)
		}
	case []int32:
		data = make([]float64, len(v))
		for i, x := range v {
			data[i] = float64(x)
		}
	case []int16:
		data = make([]float64, len(v))
		for i, x := range v {
			data[i] = float64(x)
		}
	case []uint8:
		data = make([]float64, len(v))
		for i, x := range v {
			if signedBytes {
				data[i] = float64(int8(x))
			} else {
				data[i] = float64(x)
			}
		}
	default:
		return nil, fmt.Errorf("invalid numeric type %T", dataI)
	}
	return data, nil
}

// scalarToFloat converts a default fill value to float64.
func scalarToFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int32:
		return float64(x), true
	case int16:
		return float64(x), true
	case int8:
		return float64(x), true
	case uint8:
		return float64(x), true
	}
	return 0, false
}

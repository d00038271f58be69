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
	"encoding/gob"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctessum/cdf"
	"github.com/tealeg/xlsx"
	"github.com/vmihailenco/msgpack/v5"
)

// CoordsDateFormat is the layout of the dates in Coords.
const CoordsDateFormat = "2006-01-02"

// Coords holds the locations and dates of the retained stations.
type Coords struct {
	Lon  []float64 `msgpack:"lon"`
	Lat  []float64 `msgpack:"lat"`
	Time []string  `msgpack:"time"`
}

// Coords returns the coordinates and dates of the retained stations.
func (r *Result) Coords() *Coords {
	c := &Coords{
		Lon:  make([]float64, len(r.Retained)),
		Lat:  make([]float64, len(r.Retained)),
		Time: make([]string, len(r.Retained)),
	}
	for i, rr := range r.Retained {
		c.Lon[i] = rr.Lon
		c.Lat[i] = rr.Lat
		c.Time[i] = rr.Date.Format(CoordsDateFormat)
	}
	return c
}

// CoordsFormat specifies the file format of a Coords dump.
type CoordsFormat int

// Supported coordinate dump formats.
const (
	Gob CoordsFormat = iota
	MsgPack
	NetCDF
	XLSX
)

func (f CoordsFormat) String() string {
	switch f {
	case Gob:
		return "gob"
	case MsgPack:
		return "msgpack"
	case NetCDF:
		return "netcdf"
	case XLSX:
		return "xlsx"
	}
	return fmt.Sprintf("CoordsFormat(%d)", int(f))
}

// FormatFromPath returns the coordinate dump format implied by the
// extension of path.
func FormatFromPath(path string) (CoordsFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gob":
		return Gob, nil
	case ".msgpack", ".mp":
		return MsgPack, nil
	case ".nc", ".ncf":
		return NetCDF, nil
	case ".xlsx":
		return XLSX, nil
	}
	return Gob, fmt.Errorf("profsel: unsupported coordinate file extension for %s; "+
		"use .gob, .msgpack, .nc or .xlsx", path)
}

// Encode writes c to w in the given format. NetCDF output needs
// random access, so use WriteNetCDF for it.
func (c *Coords) Encode(w io.Writer, format CoordsFormat) error {
	switch format {
	case Gob:
		if err := gob.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("profsel: encoding coordinates: %w", err)
		}
	case MsgPack:
		if err := msgpack.NewEncoder(w).Encode(c); err != nil {
			return fmt.Errorf("profsel: encoding coordinates: %w", err)
		}
	case XLSX:
		f, err := c.spreadsheet()
		if err != nil {
			return err
		}
		if err := f.Write(w); err != nil {
			return fmt.Errorf("profsel: encoding coordinates: %w", err)
		}
	default:
		return fmt.Errorf("profsel: Coords.Encode doesn't support format %v", format)
	}
	return nil
}

// ReadCoords decodes coordinates written by Encode.
func ReadCoords(r io.Reader, format CoordsFormat) (*Coords, error) {
	c := new(Coords)
	var err error
	switch format {
	case Gob:
		err = gob.NewDecoder(r).Decode(c)
	case MsgPack:
		err = msgpack.NewDecoder(r).Decode(c)
	case XLSX:
		err = c.readSpreadsheet(r)
	default:
		return nil, fmt.Errorf("profsel: ReadCoords doesn't support format %v", format)
	}
	if err != nil {
		return nil, fmt.Errorf("profsel: decoding coordinates: %w", err)
	}
	return c, nil
}

// xlsxHeader is the first row of a spreadsheet dump.
var xlsxHeader = []string{"lon", "lat", "time"}

// spreadsheet returns c as a workbook with one row per station
// below a header row.
func (c *Coords) spreadsheet() (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("profiles")
	if err != nil {
		return nil, fmt.Errorf("profsel: creating spreadsheet: %w", err)
	}
	row := sheet.AddRow()
	for _, h := range xlsxHeader {
		row.AddCell().SetString(h)
	}
	for i := range c.Lon {
		row := sheet.AddRow()
		row.AddCell().SetFloat(c.Lon[i])
		row.AddCell().SetFloat(c.Lat[i])
		row.AddCell().SetString(c.Time[i])
	}
	return f, nil
}

func (c *Coords) readSpreadsheet(r io.Reader) error {
	b, err := ioutil.ReadAll(r)
	if err != nil {
		return err
	}
	f, err := xlsx.OpenBinary(b)
	if err != nil {
		return err
	}
	if len(f.Sheets) == 0 {
		return fmt.Errorf("spreadsheet has no sheets")
	}
	for i, row := range f.Sheets[0].Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) < len(xlsxHeader) {
			return fmt.Errorf("row %d has %d columns; want %d", i+1, len(row.Cells), len(xlsxHeader))
		}
		lon, err := row.Cells[0].Float()
		if err != nil {
			return fmt.Errorf("row %d: %v", i+1, err)
		}
		lat, err := row.Cells[1].Float()
		if err != nil {
			return fmt.Errorf("row %d: %v", i+1, err)
		}
		c.Lon = append(c.Lon, lon)
		c.Lat = append(c.Lat, lat)
		c.Time = append(c.Time, row.Cells[2].Value)
	}
	return nil
}

// WriteNetCDF writes c to w as a netCDF file with one entry per
// retained station. Without any stations, the profile dimension is
// written as the record dimension with no records.
func (c *Coords) WriteNetCDF(w *os.File) error {
	h := cdf.NewHeader([]string{"profile", "date_len"}, []int{len(c.Lon), len(CoordsDateFormat)})
	h.AddAttribute("", "comment", "Locations and dates of selected profiles")

	h.AddVariable("lon", []string{"profile"}, []float64{0})
	h.AddAttribute("lon", "standard_name", lonStandardName)
	h.AddAttribute("lon", "units", "degrees_east")
	h.AddVariable("lat", []string{"profile"}, []float64{0})
	h.AddAttribute("lat", "standard_name", latStandardName)
	h.AddAttribute("lat", "units", "degrees_north")
	h.AddVariable("date", []string{"profile", "date_len"}, "")
	h.AddAttribute("date", "long_name", "Profile date (YYYY-MM-DD)")
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("profsel: creating coordinate netCDF file: %w", err)
	}
	if len(c.Lon) > 0 {
		for _, v := range []struct {
			name string
			data interface{}
		}{
			{"lon", c.Lon},
			{"lat", c.Lat},
			{"date", strings.Join(c.Time, "")},
		} {
			if err := writeNCF(f, v.name, v.data); err != nil {
				return err
			}
		}
	}
	return cdf.UpdateNumRecs(w)
}

// writeNCF writes all of the data of variable v.
func writeNCF(f *cdf.File, v string, data interface{}) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	if _, err := f.Writer(v, start, end).Write(data); err != nil {
		return fmt.Errorf("profsel: writing variable %s to netcdf file: %w", v, err)
	}
	return nil
}

// Save writes c to the file at path, choosing the format from the
// file extension.
func (c *Coords) Save(path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("profsel: creating coordinate file: %w", err)
	}
	if format == NetCDF {
		err = c.WriteNetCDF(w)
	} else {
		err = c.Encode(w, format)
	}
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

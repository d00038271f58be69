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

package profselutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/lnashier/viper"
	"github.com/seaobs/profsel"
	"github.com/spf13/cast"
	"gonum.org/v1/plot/vg"
)

// SelectConfig holds the configuration of a selection run.
type SelectConfig struct {
	// DataFile is the netCDF profile collection. It may be remote.
	DataFile string

	// Variable is the long_name of the selected variable and
	// ModelVariable its short name.
	Variable, ModelVariable string

	Criteria *profsel.Criteria

	PlotFile, CoordsFile, LogFile string

	// CoastlineFile is an optional coastline shapefile. It may be remote.
	CoastlineFile string

	// Plot holds the map limits and size. Its Coastline is filled in
	// by Run.
	Plot profsel.PlotOptions
}

// selectConfig reads a SelectConfig from cfg, checking each value
// before any data is read.
func selectConfig(cfg *viper.Viper) (*SelectConfig, error) {
	dataFile, err := checkDataFile(cfg.GetString("DataFile"))
	if err != nil {
		return nil, err
	}
	variable := cfg.GetString("Variable")
	if variable == "" {
		return nil, fmt.Errorf("profsel: the Variable configuration variable is not specified")
	}
	modelVariable := cfg.GetString("ModelVariable")
	if modelVariable == "" {
		return nil, fmt.Errorf("profsel: the ModelVariable configuration variable is not specified")
	}

	flags, err := toIntSliceE(cfg.Get("Selection.Flags"))
	if err != nil {
		return nil, fmt.Errorf("profsel: Selection.Flags: %v", err)
	}
	platforms := expandStringSlice(cfg.GetStringSlice("Selection.Platforms"))
	start, end, err := profsel.ParseDates(
		os.ExpandEnv(cfg.GetString("Selection.StartDate")),
		os.ExpandEnv(cfg.GetString("Selection.EndDate")))
	if err != nil {
		return nil, err
	}
	criteria, err := profsel.NewCriteria(flags, platforms, start, end)
	if err != nil {
		return nil, err
	}
	region, err := parseRegion(cfg.GetString("Selection.Region"))
	if err != nil {
		return nil, err
	}
	if len(region) > 0 {
		criteria.Region = region
	}

	wildcards := strings.NewReplacer(
		"[VAR]", modelVariable,
		"[START]", strconv.Itoa(start.Year()),
		"[END]", strconv.Itoa(end.Year()),
	)
	plotFile, err := checkOutputFile("PlotFile", wildcards.Replace(cfg.GetString("PlotFile")))
	if err != nil {
		return nil, err
	}
	coordsFile, err := checkOutputFile("CoordsFile", wildcards.Replace(cfg.GetString("CoordsFile")))
	if err != nil {
		return nil, err
	}
	if _, err := profsel.FormatFromPath(coordsFile); err != nil {
		return nil, err
	}

	plot := profsel.PlotOptions{
		Variable:  variable,
		XMin:      cfg.GetFloat64("Plot.XMin"),
		XMax:      cfg.GetFloat64("Plot.XMax"),
		YMin:      cfg.GetFloat64("Plot.YMin"),
		YMax:      cfg.GetFloat64("Plot.YMax"),
		Width:     vg.Length(cfg.GetFloat64("Plot.Width")) * vg.Inch,
		Height:    vg.Length(cfg.GetFloat64("Plot.Height")) * vg.Inch,
		FirstYear: start.Year(),
		LastYear:  end.Year(),
	}
	if plot.XMax <= plot.XMin || plot.YMax <= plot.YMin {
		return nil, fmt.Errorf("profsel: the plot limits Plot.XMin=%g, Plot.XMax=%g, "+
			"Plot.YMin=%g, Plot.YMax=%g are invalid", plot.XMin, plot.XMax, plot.YMin, plot.YMax)
	}
	if plot.Width <= profsel.ColorBarWidth || plot.Height <= 0 {
		return nil, fmt.Errorf("profsel: Plot.Width=%g and Plot.Height=%g inches are too small",
			cfg.GetFloat64("Plot.Width"), cfg.GetFloat64("Plot.Height"))
	}

	return &SelectConfig{
		DataFile:      dataFile,
		Variable:      variable,
		ModelVariable: modelVariable,
		Criteria:      criteria,
		PlotFile:      plotFile,
		CoordsFile:    coordsFile,
		LogFile:       checkLogFile(os.ExpandEnv(cfg.GetString("LogFile")), coordsFile),
		CoastlineFile: os.ExpandEnv(cfg.GetString("Plot.Coastline")),
		Plot:          plot,
	}, nil
}

// checkDataFile makes sure that the data file is specified and
// expands any environment variables.
func checkDataFile(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`profsel: you need to specify a data file configuration variable (for example: DataFile="Mediterranean.nc")`)
	}
	return os.ExpandEnv(f), nil
}

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(name, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf("profsel: you need to specify the %s configuration variable", name)
	}
	f = os.ExpandEnv(f)
	if IsBlob(f) {
		loc, err := parseBlob(f)
		if err != nil {
			return f, err
		}
		if _, err = OpenBucket(context.TODO(), loc.bucket); err != nil {
			return f, fmt.Errorf("profsel: error when checking %s location: %v", name, err)
		}
		return f, nil
	}
	outdir := filepath.Dir(f)
	if _, err := os.Stat(outdir); err != nil {
		return f, fmt.Errorf("profsel: the %s directory doesn't exist: %v", name, err)
	}
	return f, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// toIntSliceE returns the integers in s, which may be a slice from a
// configuration file or a JSON array set from the command line.
func toIntSliceE(s interface{}) ([]int, error) {
	switch v := s.(type) {
	case []int:
		return v, nil
	case []interface{}:
		return cast.ToIntSliceE(v)
	case string:
		var o []int
		if err := json.NewDecoder(bytes.NewBufferString(v)).Decode(&o); err != nil {
			return nil, err
		}
		return o, nil
	default:
		return cast.ToIntSliceE(s)
	}
}

// parseRegion returns a polygon represented by the
// given GeoJSON file.
func parseRegion(regionGeoJSONFile string) (geom.Polygon, error) {
	var region geom.Polygon
	if m := regionGeoJSONFile; m != "" {
		f, err := os.Open(os.ExpandEnv(m))
		if err != nil {
			return nil, fmt.Errorf("profsel: opening region file: %w", err)
		}
		defer f.Close()
		b, err := ioutil.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("profsel: reading region file: %w", err)
		}
		j, err := geojson.Decode(b)
		if err != nil {
			return nil, fmt.Errorf("profsel: decoding Selection.Region: %w", err)
		}
		switch msk := j.(type) {
		case geom.Polygon:
			region = msk
		case geom.MultiPolygon:
			for _, p := range msk {
				region = append(region, p...)
			}
		default:
			return nil, fmt.Errorf("profsel: invalid region geometry type %T", j)
		}
	}
	return region, nil
}

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

// Package profselutil contains the command-line interface and
// configuration handling for profsel.
package profselutil

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/lnashier/viper"
	"github.com/seaobs/profsel"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to profsel.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "DataFile",
			usage: `
              DataFile is the path to the netCDF file holding the profiles.
              It can be a local path, an http(s) URL, or a blob storage
              location starting with gs://, s3://, or file://.
              It can include environment variables.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags(), platformsCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable is the long_name attribute of the variable to select.`,
			defaultVal: "Water body nitrate",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "ModelVariable",
			usage: `
              ModelVariable is the short model name of the variable. It
              replaces the [VAR] wildcard in output file names.`,
			defaultVal: "N3n",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Selection.Flags",
			usage: `
              Selection.Flags lists the quality flag values that are
              admitted. The defaults are the characters '1' (good) and
              '2' (probably good).`,
			defaultVal: profsel.DefaultFlags,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Selection.Platforms",
			usage: `
              Selection.Platforms lists the platform types whose
              profiles are admitted.`,
			defaultVal: profsel.DefaultPlatforms,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Selection.StartDate",
			usage: `
              Selection.StartDate is the first day of the selection time
              interval, in the format YYYYMMDD.`,
			defaultVal: "19990101",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Selection.EndDate",
			usage: `
              Selection.EndDate is the last day of the selection time
              interval, in the format YYYYMMDD. The interval includes
              the start of this day.`,
			defaultVal: "20221231",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Selection.Region",
			usage: `
              Selection.Region is the path to an optional GeoJSON file
              holding a Polygon or MultiPolygon in longitude and
              latitude. Profiles outside of it are rejected.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "PlotFile",
			usage: `
              PlotFile is the path where the PNG map of the selected
              profiles is written. [VAR] is replaced by ModelVariable,
              and [START] and [END] by the years of the selection
              interval. It can also be a blob storage location.`,
			defaultVal: "PLOTS/profiles/prof_[VAR]_LON_LAT_[START]_[END].png",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "CoordsFile",
			usage: `
              CoordsFile is the path where the coordinates and dates of
              the selected profiles are written. The file extension
              chooses the format: .gob, .msgpack, .nc, or .xlsx.
              It supports the same wildcards as PlotFile.`,
			defaultVal: "PKL/profiles/Coords_[VAR].gob",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can
              include environment variables. If LogFile is left empty,
              the log file will be saved in the same location as the
              CoordsFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.Coastline",
			usage: `
              Plot.Coastline is the path to an optional shapefile of
              coastlines in longitude and latitude to draw under the
              profiles.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.XMin",
			usage: `
              Plot.XMin is the western edge of the map in degrees.`,
			defaultVal: -6.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.XMax",
			usage: `
              Plot.XMax is the eastern edge of the map in degrees.`,
			defaultVal: 36.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.YMin",
			usage: `
              Plot.YMin is the southern edge of the map in degrees.`,
			defaultVal: 30.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.YMax",
			usage: `
              Plot.YMax is the northern edge of the map in degrees.`,
			defaultVal: 46.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.Width",
			usage: `
              Plot.Width is the width of the map image in inches.`,
			defaultVal: 20.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
		{
			name: "Plot.Height",
			usage: `
              Plot.Height is the height of the map image in inches.`,
			defaultVal: 10.0,
			flagsets:   []*pflag.FlagSet{selectCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("PROFSEL")
	Cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case []string:
				if option.shorthand == "" {
					set.StringSlice(option.name, option.defaultVal.([]string), option.usage)
				} else {
					set.StringSliceP(option.name, option.shorthand, option.defaultVal.([]string), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(selectCmd)
	Root.AddCommand(platformsCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("profsel: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "profsel",
	Short: "A station filter for oceanographic profiles.",
	Long: `profsel selects the oceanographic profiles of an EMODnet netCDF
collection that hold at least one good value of a variable, were measured
by an admitted platform type, and fall within a time interval. It draws a
map of the selected profiles and saves their coordinates and dates.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'PROFSEL_var' where 'var' is the
name of the variable to be set. Path variables are additionally
allowed to contain environment variables within them.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of profsel.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("profsel v%s\n", profsel.Version)
	},
	DisableAutoGenTag: true,
}

// selectCmd runs the whole selection.
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "Select profiles and write the map and coordinates.",
	Long: `select reads the profiles in DataFile, keeps the ones that hold at
least one present value of Variable with an admitted quality flag, were
measured by an admitted platform, and fall within the selection interval.
It then writes a map of the kept profiles to PlotFile and their
coordinates and dates to CoordsFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := selectConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(context.TODO(), cmd.OutOrStdout(), cfg)
	},
	DisableAutoGenTag: true,
}

// platformsCmd prints the number of profiles of each platform type.
var platformsCmd = &cobra.Command{
	Use:   "platforms",
	Short: "Count the profiles of each platform type.",
	Long: `platforms prints the number of profiles in DataFile that were
measured by each platform type, before any selection.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dataFile, err := checkDataFile(Cfg.GetString("DataFile"))
		if err != nil {
			return err
		}
		return Platforms(context.TODO(), cmd.OutOrStdout(), dataFile)
	},
	DisableAutoGenTag: true,
}

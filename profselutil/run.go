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
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/jonboulle/clockwork"
	"github.com/seaobs/profsel"
	"github.com/sirupsen/logrus"
)

// clock is the time source for the elapsed run time.
var clock = clockwork.NewRealClock()

// newLogger returns a logger writing to each of w.
func newLogger(w ...io.Writer) *logrus.Logger {
	log := logrus.New()
	log.Out = io.MultiWriter(w...)
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
		DisableColors: true,
	}
	return log
}

// Run selects the profiles specified by cfg and writes the map and
// coordinate files. Log messages are written to out and to cfg.LogFile.
func Run(ctx context.Context, out io.Writer, cfg *SelectConfig) error {
	startTime := clock.Now()

	var upload uploader

	logfile, err := os.Create(upload.maybeUpload(cfg.LogFile))
	if err != nil {
		return fmt.Errorf("profsel: problem creating log file: %v", err)
	}
	defer logfile.Close()
	log := newLogger(out, logfile)
	upload.log = log

	d, closeData, err := openDataset(ctx, cfg.DataFile, log)
	if err != nil {
		return err
	}
	defer closeData()

	if err := logPlatforms(d, log); err != nil {
		return checkMissing(err, log)
	}

	nsamples, err := d.NumSamples(cfg.Variable)
	if err != nil {
		return checkMissing(err, log)
	}
	log.WithFields(logrus.Fields{
		"variable": cfg.Variable,
		"samples":  nsamples,
	}).Info("samples per station")

	cfg.Criteria.SetUnits(d.Units)
	stations, err := d.Stations(cfg.Variable)
	if err != nil {
		return checkMissing(err, log)
	}

	r, err := profsel.Select(stations, cfg.Criteria)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"variable": cfg.Variable,
		"stations": len(stations),
		"profiles": r.Profiles(),
		"values":   r.Values(),
		"start":    cfg.Criteria.Start.Format(profsel.DateFormat),
		"end":      cfg.Criteria.End.Format(profsel.DateFormat),
	}).Info("selected profiles")
	if lonMin, lonMax, latMin, latMax, ok := r.Extent(); ok {
		log.WithFields(logrus.Fields{
			"lon": fmt.Sprintf("%g:%g", lonMin, lonMax),
			"lat": fmt.Sprintf("%g:%g", latMin, latMax),
		}).Info("extent of selected profiles")
	}

	if cfg.CoastlineFile != "" {
		path, err := maybeDownload(ctx, cfg.CoastlineFile, log)
		if err != nil {
			return err
		}
		if cfg.Plot.Coastline, err = profsel.ReadCoastline(path); err != nil {
			return err
		}
	}

	plotFile := upload.maybeUpload(cfg.PlotFile)
	if err := writePlot(r, plotFile, cfg.Plot); err != nil {
		return err
	}
	log.WithField("file", cfg.PlotFile).Info("wrote plot")

	if err := r.Coords().Save(upload.maybeUpload(cfg.CoordsFile)); err != nil {
		return err
	}
	log.WithField("file", cfg.CoordsFile).Info("wrote coordinates")

	log.WithField("elapsed", clock.Since(startTime).String()).Info("done")

	return upload.uploadOutput(ctx)
}

// Platforms writes the number of stations of each platform type in
// dataFile to out.
func Platforms(ctx context.Context, out io.Writer, dataFile string) error {
	log := newLogger(os.Stderr)
	d, closeData, err := openDataset(ctx, dataFile, log)
	if err != nil {
		return err
	}
	defer closeData()
	platforms, err := d.Platforms()
	if err != nil {
		return checkMissing(err, log)
	}
	w := tabwriter.NewWriter(out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "PLATFORM\tSTATIONS")
	for _, pc := range profsel.CountPlatforms(platforms) {
		fmt.Fprintf(w, "%s\t%d\n", pc.Platform, pc.Stations)
	}
	return w.Flush()
}

// openDataset downloads dataFile if needed and opens it. The returned
// function closes the file.
func openDataset(ctx context.Context, dataFile string, log logrus.FieldLogger) (*profsel.Dataset, func() error, error) {
	path, err := maybeDownload(ctx, dataFile, log)
	if err != nil {
		return nil, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("profsel: opening data file: %v", err)
	}
	d, err := profsel.OpenDataset(f)
	if err != nil {
		f.Close()
		return nil, nil, checkMissing(err, log)
	}
	log.WithFields(logrus.Fields{
		"file":     dataFile,
		"stations": d.NumStations(),
		"epoch":    d.Units.String(),
	}).Info("opened dataset")
	return d, f.Close, nil
}

// logPlatforms logs the number of stations of each platform type.
func logPlatforms(d *profsel.Dataset, log logrus.FieldLogger) error {
	platforms, err := d.Platforms()
	if err != nil {
		return err
	}
	for _, pc := range profsel.CountPlatforms(platforms) {
		log.WithFields(logrus.Fields{
			"platform": pc.Platform,
			"stations": pc.Stations,
		}).Info("platform type")
	}
	return nil
}

// checkMissing logs a warning if err is a *profsel.MissingVariableError.
// It returns err.
func checkMissing(err error, log logrus.FieldLogger) error {
	var mv *profsel.MissingVariableError
	if errors.As(err, &mv) {
		log.WithFields(logrus.Fields{
			"attribute": mv.Attribute,
			"value":     mv.Value,
		}).Warn("variable not found in dataset")
	}
	return err
}

func writePlot(r *profsel.Result, path string, o profsel.PlotOptions) error {
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("profsel: creating plot file: %v", err)
	}
	if err := r.Plot(w, o); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

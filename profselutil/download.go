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
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
)

const downloadRetries = 3

// maybeDownload checks if the input is an existing file locally.
// If not, it checks if the file is a URL or blob.
// If it is, it downloads the file and
// returns the path to the downloaded file.
// For shapefiles, it downloads all associated files and
// returns the path to the file with the ".shp" extension.
func maybeDownload(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Check if local file exists. If it does, return the given path.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return path, nil
	}

	// If the path starts with one of these prefixes, download the file and
	// return the location it was downloaded to.
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		log.WithField("url", path).Info("downloading")
		return downloadHTTP(ctx, path, log)
	}

	if IsBlob(path) {
		log.WithField("url", path).Info("downloading")
		return downloadBlob(ctx, path)
	}

	return path, nil
}

// downloadHTTP downloads a file from the specified URL and returns
// the path to the downloaded file.
// Transient failures are retried up to downloadRetries times.
func downloadHTTP(ctx context.Context, path string, log logrus.FieldLogger) (string, error) {
	// Prepare a temporary directory for the downloads.
	dir, err := ioutil.TempDir("", "profsel")
	if err != nil {
		return path, fmt.Errorf("profsel: failed creating temporary download directory: %v", err)
	}

	fnames := expandShp(path)
	for _, fname := range fnames {
		req, err := http.NewRequest(http.MethodGet, fname, nil)
		if err != nil {
			return path, fmt.Errorf("profsel: downloading %s: %v", fname, err)
		}
		var resp *http.Response
		err = backoff.RetryNotify(
			func() error {
				resp, err = http.DefaultClient.Do(req.WithContext(ctx))
				if err != nil {
					return err
				}
				if resp.StatusCode >= http.StatusInternalServerError {
					resp.Body.Close()
					return fmt.Errorf("server returned %s", resp.Status)
				}
				return nil
			},
			backoff.WithMaxRetries(backoff.NewExponentialBackOff(), downloadRetries),
			func(err error, d time.Duration) {
				log.WithField("url", fname).Warnf("%v: retrying in %v", err, d)
			},
		)
		if err != nil {
			return path, fmt.Errorf("profsel: downloading %s: %v", fname, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return path, fmt.Errorf("profsel: downloading %s: %s", fname, resp.Status)
		}
		err = copyToFile(filepath.Join(dir, filepath.Base(fname)), resp.Body)
		resp.Body.Close()
		if err != nil {
			return path, err
		}
	}
	return filepath.Join(dir, filepath.Base(fnames[0])), nil
}

// downloadBlob download the specified file from blob storage.
func downloadBlob(ctx context.Context, path string) (string, error) {
	loc, err := parseBlob(path)
	if err != nil {
		return path, err
	}
	bucket, err := OpenBucket(ctx, loc.bucket)
	if err != nil {
		return path, err
	}
	dir, err := ioutil.TempDir("", "profsel")
	if err != nil {
		return path, fmt.Errorf("profsel: failed creating temporary download directory: %v", err)
	}
	for _, fname := range expandShp(loc.key) {
		r, err := bucket.NewReader(ctx, fname)
		if err != nil {
			return path, fmt.Errorf("profsel: downloading %s: %v", fname, err)
		}
		err = copyToFile(filepath.Join(dir, filepath.Base(fname)), r)
		r.Close()
		if err != nil {
			return path, err
		}
	}
	return filepath.Join(dir, filepath.Base(loc.key)), nil
}

func copyToFile(fname string, r io.Reader) error {
	w, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("profsel: failed creating file for download: %v", err)
	}
	if _, err = io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("profsel: downloading %s: %v", fname, err)
	}
	return w.Close()
}

// expandShp returns the given file + associated [.dbf, .shx, .prj]
// files if the given file has the .shp extension, and returns the given
// file otherwise
func expandShp(filename string) []string {
	o := []string{filename}
	ext := filepath.Ext(filename)
	if ext != ".shp" {
		return o
	}
	for _, newExt := range []string{".dbf", ".shx", ".prj"} {
		o = append(o, filename[0:len(filename)-4]+newExt)
	}
	return o
}

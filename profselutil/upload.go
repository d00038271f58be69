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
	"os"
	"path/filepath"

	"github.com/google/go-cloud/blob"
	"github.com/sirupsen/logrus"
)

// pendingUpload is an output file written locally during a run and
// copied to blob storage at the end of it.
type pendingUpload struct {
	local  string
	remote blobLocation
}

// uploader redirects blob storage outputs to a temporary directory.
// The first error stops any further redirection.
type uploader struct {
	pending []pendingUpload
	dir     string
	err     error

	// log receives a message per upload. It may be nil.
	log logrus.FieldLogger
}

// maybeUpload returns path unchanged unless it is a blob storage
// location, in which case it returns a temporary local path whose
// contents uploadOutput will copy to path. Shapefile companions are
// redirected along with the .shp file.
func (u *uploader) maybeUpload(path string) string {
	if u.err != nil {
		return ""
	}
	if !IsBlob(path) {
		return path
	}
	if u.dir == "" {
		if u.dir, u.err = ioutil.TempDir("", "profsel"); u.err != nil {
			return ""
		}
	}
	var local string
	for i, f := range expandShp(path) {
		loc, err := parseBlob(f)
		if err != nil {
			u.err = err
			return ""
		}
		p := pendingUpload{local: filepath.Join(u.dir, filepath.Base(loc.key)), remote: loc}
		u.pending = append(u.pending, p)
		if i == 0 {
			local = p.local
		}
	}
	return local
}

// uploadOutput copies the redirected outputs to blob storage,
// opening each bucket once.
func (u *uploader) uploadOutput(ctx context.Context) error {
	if u.err != nil {
		return u.err
	}
	buckets := make(map[string]*blob.Bucket)
	for _, p := range u.pending {
		b, ok := buckets[p.remote.bucket]
		if !ok {
			var err error
			if b, err = OpenBucket(ctx, p.remote.bucket); err != nil {
				return err
			}
			buckets[p.remote.bucket] = b
		}
		if err := p.copyTo(ctx, b); err != nil {
			return err
		}
		if u.log != nil {
			u.log.WithField("file", p.remote.String()).Info("uploaded")
		}
	}
	return nil
}

func (p pendingUpload) copyTo(ctx context.Context, b *blob.Bucket) error {
	r, err := os.Open(p.local)
	if err != nil {
		return fmt.Errorf("profsel: opening %s for upload: %v", p.local, err)
	}
	defer r.Close()
	w, err := b.NewWriter(ctx, p.remote.key, nil)
	if err != nil {
		return fmt.Errorf("profsel: uploading %s: %v", p.remote, err)
	}
	if _, err := io.Copy(w, r); err != nil {
		w.Close()
		return fmt.Errorf("profsel: uploading %s: %v", p.remote, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("profsel: uploading %s: %v", p.remote, err)
	}
	return nil
}

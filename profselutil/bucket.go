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
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/google/go-cloud/blob"
	"github.com/google/go-cloud/blob/fileblob"
	"github.com/google/go-cloud/blob/gcsblob"
	"github.com/google/go-cloud/blob/s3blob"
	"github.com/google/go-cloud/gcp"
)

// blobProviders are the URL schemes of the supported blob stores:
// the local filesystem (mostly for testing), Google Cloud Storage
// and AWS S3.
var blobProviders = []string{"file", "gs", "s3"}

// IsBlob returns whether path is a blob storage location such as
// gs://bucket/key.
func IsBlob(path string) bool {
	for _, p := range blobProviders {
		if strings.HasPrefix(path, p+"://") {
			return true
		}
	}
	return false
}

// blobLocation is an object in blob storage.
type blobLocation struct {
	// bucket is in the form provider://name.
	bucket string
	key    string
}

func (l blobLocation) String() string { return l.bucket + "/" + l.key }

// parseBlob splits a blob storage path into its bucket and key.
func parseBlob(path string) (blobLocation, error) {
	if !IsBlob(path) {
		return blobLocation{}, fmt.Errorf("profsel: %s is not a blob storage location", path)
	}
	u, err := url.Parse(path)
	if err != nil {
		return blobLocation{}, fmt.Errorf("profsel: parsing blob location: %v", err)
	}
	return blobLocation{
		bucket: u.Scheme + "://" + u.Host,
		key:    strings.TrimPrefix(u.Path, "/"),
	}, nil
}

// OpenBucket opens the bucket named in the form provider://name.
// Any path after the name is ignored.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("profsel: opening bucket: %v", err)
	}
	var b *blob.Bucket
	switch u.Scheme {
	case "file":
		b, err = fileblob.NewBucket(u.Hostname())
	case "gs":
		b, err = gsBucket(ctx, u.Hostname())
	case "s3":
		b, err = s3Bucket(ctx, u.Hostname())
	default:
		return nil, fmt.Errorf("profsel: invalid blob storage provider %q; use one of %v", u.Scheme, blobProviders)
	}
	if err != nil {
		return nil, fmt.Errorf("profsel: opening bucket %s: %v", bucketName, err)
	}
	return b, nil
}

// gsBucket uses the application default credentials.
func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, name, c)
}

// defaultAWSRegion is used when AWS_REGION is not set.
const defaultAWSRegion = "eu-west-1"

// s3Bucket reads credentials from AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY.
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = defaultAWSRegion
	}
	s, err := session.NewSession(&aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	})
	if err != nil {
		return nil, err
	}
	return s3blob.OpenBucket(ctx, s, name)
}

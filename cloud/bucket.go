/*
Copyright © 2020 the HII authors.
This file is part of HII.

HII is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

HII is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with HII.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package cloud opens the blob storage buckets that HII reads inputs
// from and writes driver rasters to.
package cloud

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/blob/gcsblob"
	"gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
	"gocloud.dev/gcp"
)

// Schemes lists the storage providers accepted by OpenBucket.
var Schemes = []string{"file", "gs", "s3", "mem"}

var (
	memMu      sync.Mutex
	memBuckets = make(map[string]*blob.Bucket)
)

// OpenBucket returns the blob storage bucket specified by bucketName,
// where bucketName must be in the format 'provider://name' where provider
// is the name of the storage provider and name is the name of the bucket.
// Only the host part of bucketName is used to open the bucket.
// The accepted storage providers are "file" for a directory on the
// local filesystem, "gs" for Google Cloud Storage, "s3" for AWS S3, and
// "mem" for a process-local in-memory bucket (e.g., for testing).
// Repeated calls with the same "mem" bucket name return the same bucket.
func OpenBucket(ctx context.Context, bucketName string) (*blob.Bucket, error) {
	u, err := url.Parse(bucketName)
	if err != nil {
		return nil, fmt.Errorf("cloud: opening bucket: %v", err)
	}
	switch u.Scheme {
	case "file":
		return fileblob.OpenBucket(u.Hostname(), nil)
	case "gs":
		return gsBucket(ctx, u.Hostname())
	case "s3":
		return s3Bucket(ctx, u.Hostname())
	case "mem":
		return memBucket(u.Hostname()), nil
	default:
		return nil, fmt.Errorf("cloud: opening bucket: invalid provider %q", u.Scheme)
	}
}

// IsBlob returns whether the given path refers to a location in
// blob storage, i.e., whether it starts with one of the accepted
// provider prefixes followed by "://".
func IsBlob(path string) bool {
	for _, s := range Schemes {
		if strings.HasPrefix(path, s+"://") {
			return true
		}
	}
	return false
}

func memBucket(name string) *blob.Bucket {
	memMu.Lock()
	defer memMu.Unlock()
	b, ok := memBuckets[name]
	if !ok {
		b = memblob.OpenBucket(nil)
		memBuckets[name] = b
	}
	return b
}

func gsBucket(ctx context.Context, name string) (*blob.Bucket, error) {
	// See here for information on credentials:
	// https://cloud.google.com/docs/authentication/getting-started
	creds, err := gcp.DefaultCredentials(ctx)
	if err != nil {
		return nil, err
	}
	c, err := gcp.NewHTTPClient(gcp.DefaultTransport(), gcp.CredentialsTokenSource(creds))
	if err != nil {
		return nil, err
	}
	return gcsblob.OpenBucket(ctx, c, name, nil)
}

// s3Bucket opens an s3 storage bucket. It reads credentials from the
// AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY environment variables,
// and the region from AWS_REGION (default us-east-2).
func s3Bucket(ctx context.Context, name string) (*blob.Bucket, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-2"
	}
	c := &aws.Config{
		Region:      aws.String(region),
		Credentials: credentials.NewEnvCredentials(),
	}
	s, err := session.NewSession(c)
	if err != nil {
		return nil, fmt.Errorf("cloud: creating AWS session: %v", err)
	}
	return s3blob.OpenBucket(ctx, s, name, nil)
}

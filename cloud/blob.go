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

package cloud

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"gocloud.dev/blob"
)

// SplitAddress splits a blob address such as "gs://bucket/dir/file.nc"
// into the bucket name ("gs://bucket") and the key within the bucket
// ("dir/file.nc").
func SplitAddress(addr string) (bucketName, key string, err error) {
	u, err := url.Parse(addr)
	if err != nil {
		return "", "", fmt.Errorf("cloud: parsing blob address %q: %v", addr, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return "", "", fmt.Errorf("cloud: blob address %q must be of the form provider://bucket/key", addr)
	}
	key = strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", "", fmt.Errorf("cloud: blob address %q has no key", addr)
	}
	return u.Scheme + "://" + u.Host, key, nil
}

// ReadBlob reads the blob at the given address.
func ReadBlob(ctx context.Context, addr string) ([]byte, error) {
	bucket, key, done, err := openAddress(ctx, addr)
	if err != nil {
		return nil, err
	}
	defer done()
	return readBlob(ctx, bucket, key)
}

// WriteBlob writes data to the blob at the given address, replacing
// any existing contents.
func WriteBlob(ctx context.Context, addr string, data []byte) error {
	bucket, key, done, err := openAddress(ctx, addr)
	if err != nil {
		return err
	}
	defer done()
	return writeBlob(ctx, bucket, key, data)
}

// Exists returns whether a blob exists at the given address.
func Exists(ctx context.Context, addr string) (bool, error) {
	bucket, key, done, err := openAddress(ctx, addr)
	if err != nil {
		return false, err
	}
	defer done()
	ok, err := bucket.Exists(ctx, key)
	if err != nil {
		return false, fmt.Errorf("cloud: checking blob %s: %v", addr, err)
	}
	return ok, nil
}

// openAddress opens the bucket holding addr. The returned function
// releases the bucket when the caller is finished with it.
func openAddress(ctx context.Context, addr string) (*blob.Bucket, string, func(), error) {
	name, key, err := SplitAddress(addr)
	if err != nil {
		return nil, "", nil, err
	}
	bucket, err := OpenBucket(ctx, name)
	if err != nil {
		return nil, "", nil, err
	}
	if strings.HasPrefix(name, "mem://") {
		// In-memory buckets are shared and stay open.
		return bucket, key, func() {}, nil
	}
	return bucket, key, func() { bucket.Close() }, nil
}

// readBlob reads the given blob from the given bucket.
func readBlob(ctx context.Context, bucket *blob.Bucket, key string) ([]byte, error) {
	var b bytes.Buffer
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	defer r.Close()
	if _, err = io.Copy(&b, r); err != nil {
		return nil, fmt.Errorf("cloud: reading blob key %s: %v", key, err)
	}
	return b.Bytes(), nil
}

// writeBlob writes the given data to the given bucket.
func writeBlob(ctx context.Context, bucket *blob.Bucket, key string, data []byte) error {
	w, err := bucket.NewWriter(ctx, key, &blob.WriterOptions{})
	if err != nil {
		return fmt.Errorf("cloud: creating writer for blob %s: %v", key, err)
	}
	if _, err = io.Copy(w, bytes.NewReader(data)); err != nil {
		w.Close()
		return fmt.Errorf("cloud: copying blob %s: %v", key, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("cloud: writing blob %s: %v", key, err)
	}
	return nil
}

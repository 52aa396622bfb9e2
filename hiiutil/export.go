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

package hiiutil

import (
	"context"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hii"
	"github.com/spatialmodel/hii/cloud"
)

// maxSuffix is the largest numeric suffix tried when choosing an
// output name.
const maxSuffix = 1000

// Exporter writes driver rasters to local files or blob storage.
type Exporter struct {
	// Overwrite specifies whether an existing destination is replaced.
	// Otherwise the first free name of the form base_N.ext is used.
	Overwrite bool

	// BackOff returns the retry policy for blob uploads. If nil, an
	// exponential back-off is used.
	BackOff func() backoff.BackOff

	Log logrus.FieldLogger
}

// Export writes d with the given global attributes to dest and returns
// the location that was written to.
func (e *Exporter) Export(ctx context.Context, dest string, d *hii.DriverRaster, attrs map[string]string) (string, error) {
	dest, err := e.Destination(ctx, dest)
	if err != nil {
		return "", err
	}
	b, err := encodeDriver(d, attrs)
	if err != nil {
		return "", err
	}
	if cloud.IsBlob(dest) {
		err = e.upload(ctx, dest, b)
	} else {
		err = ioutil.WriteFile(dest, b, 0644)
	}
	if err != nil {
		return "", fmt.Errorf("hii: writing output %s: %v", dest, err)
	}
	e.Log.WithField("output", dest).Info("wrote land-use driver")
	return dest, nil
}

// Destination returns the location the output for dest should be
// written to.
func (e *Exporter) Destination(ctx context.Context, dest string) (string, error) {
	if !cloud.IsBlob(dest) {
		if _, err := os.Stat(filepath.Dir(dest)); err != nil {
			return "", fmt.Errorf("hii: the OutputFile directory doesn't exist: %v", err)
		}
	}
	if e.Overwrite {
		return dest, nil
	}
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	name := dest
	for i := 1; i <= maxSuffix; i++ {
		ok, err := exists(ctx, name)
		if err != nil {
			return "", err
		}
		if !ok {
			if name != dest {
				e.Log.WithFields(logrus.Fields{
					"requested": dest,
					"output":    name,
				}).Warn("output exists; writing to a new file")
			}
			return name, nil
		}
		name = fmt.Sprintf("%s_%d%s", base, i, ext)
	}
	return "", fmt.Errorf("hii: could not find an unused output name for %s", dest)
}

func exists(ctx context.Context, path string) (bool, error) {
	if cloud.IsBlob(path) {
		return cloud.Exists(ctx, path)
	}
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("hii: checking output %s: %v", path, err)
	}
	return true, nil
}

func (e *Exporter) upload(ctx context.Context, dest string, b []byte) error {
	var bo backoff.BackOff
	if e.BackOff != nil {
		bo = e.BackOff()
	} else {
		bo = backoff.NewExponentialBackOff()
	}
	return backoff.RetryNotify(
		func() error {
			return cloud.WriteBlob(ctx, dest, b)
		},
		backoff.WithContext(bo, ctx),
		func(err error, d time.Duration) {
			e.Log.WithError(err).Warnf("uploading %s: retrying in %v", dest, d)
		},
	)
}

// encodeDriver returns d as the contents of a NetCDF file.
func encodeDriver(d *hii.DriverRaster, attrs map[string]string) ([]byte, error) {
	f, err := ioutil.TempFile("", "hii_driver")
	if err != nil {
		return nil, fmt.Errorf("hii: creating temporary output: %v", err)
	}
	defer os.Remove(f.Name())
	defer f.Close()
	if err = hii.WriteDriverNCF(f, d, attrs); err != nil {
		return nil, err
	}
	if err = f.Sync(); err != nil {
		return nil, fmt.Errorf("hii: writing temporary output: %v", err)
	}
	return ioutil.ReadFile(f.Name())
}

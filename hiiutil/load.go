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
	"runtime"

	"github.com/ctessum/requestcache"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hii"
	"golang.org/x/sync/errgroup"
)

// Loader reads input rasters, downloading remote files as needed.
// A file and variable pair is only read once per Loader, so the
// returned grids are shared and must not be modified.
type Loader struct {
	dir   string
	cache *requestcache.Cache
	log   logrus.FieldLogger
}

type gridRequest struct {
	path, variable string
}

// NewLoader returns a loader that downloads remote files to a new
// temporary directory. Close removes the directory.
func NewLoader(log logrus.FieldLogger) (*Loader, error) {
	dir, err := ioutil.TempDir("", "hii")
	if err != nil {
		return nil, fmt.Errorf("hii: creating download directory: %v", err)
	}
	l := &Loader{dir: dir, log: log}
	l.cache = requestcache.NewCache(func(ctx context.Context, request interface{}) (interface{}, error) {
		r := request.(gridRequest)
		return l.readGrid(ctx, r.path, r.variable)
	}, runtime.GOMAXPROCS(-1), requestcache.Deduplicate(), requestcache.Memory(16))
	return l, nil
}

// Close removes any downloaded files.
func (l *Loader) Close() error {
	return os.RemoveAll(l.dir)
}

// Grid returns the given variable from the raster at path.
func (l *Loader) Grid(ctx context.Context, path, variable string) (*hii.Grid, error) {
	req := l.cache.NewRequest(ctx, gridRequest{path: path, variable: variable}, path+"|"+variable)
	result, err := req.Result()
	if err != nil {
		return nil, err
	}
	return result.(*hii.Grid), nil
}

func (l *Loader) readGrid(ctx context.Context, path, variable string) (*hii.Grid, error) {
	local, err := maybeDownload(ctx, path, l.dir)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(local)
	if err != nil {
		return nil, fmt.Errorf("hii: opening raster: %v", err)
	}
	defer f.Close()
	g, err := hii.ReadGridNCF(f, variable)
	if err != nil {
		return nil, fmt.Errorf("%v (file %s)", err, path)
	}
	l.log.WithFields(logrus.Fields{
		"file":     path,
		"variable": variable,
		"nx":       g.Nx,
		"ny":       g.Ny,
	}).Debug("read raster")
	return g, nil
}

// Series reads every snapshot of src concurrently.
func (l *Loader) Series(ctx context.Context, src Source) (*hii.Series, error) {
	dates := src.Dates()
	snaps := make([]hii.Snapshot, len(dates))
	g, ctx := errgroup.WithContext(ctx)
	for i, t := range dates {
		i, t := i, t
		g.Go(func() error {
			grid, err := l.Grid(ctx, src.Snapshots[t], src.Variable)
			if err != nil {
				return fmt.Errorf("hii: loading %s snapshot %s: %w", src.Name, t.Format(hii.DateFormat), err)
			}
			snaps[i] = hii.Snapshot{Time: t, Grid: grid}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return hii.NewSeries(src.Name, snaps...)
}

// Mask reads the water mask and, if aoi is not nil, restricts it to
// the area of interest.
func (l *Loader) Mask(ctx context.Context, t *Task) (*hii.ValidityMask, error) {
	g, err := l.Grid(ctx, t.WaterMaskFile, t.WaterMaskVariable)
	if err != nil {
		return nil, fmt.Errorf("hii: loading water mask: %w", err)
	}
	m := hii.MaskFromGrid(g)
	if t.AOI != nil {
		m = m.ClipToPolygon(t.AOI)
	}
	l.log.WithField("valid_cells", m.ValidCount()).Info("loaded validity mask")
	return m, nil
}

// Inputs loads all inputs for t concurrently.
func (l *Loader) Inputs(ctx context.Context, t *Task) (hii.Inputs, error) {
	in := hii.Inputs{LandCoverNoData: t.LandCoverNoData}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		in.LandCover, err = l.Series(ctx, t.LandCover)
		return
	})
	g.Go(func() (err error) {
		in.Population, err = l.Series(ctx, t.Population)
		return
	})
	g.Go(func() (err error) {
		in.Mask, err = l.Mask(ctx, t)
		return
	})
	if err := g.Wait(); err != nil {
		return hii.Inputs{}, err
	}
	return in, nil
}

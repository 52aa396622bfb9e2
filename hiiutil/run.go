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
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hii"
	"github.com/spatialmodel/hii/internal/hash"
)

// Run computes the land-use driver for t and exports it, returning
// the location the driver was written to. runID is recorded in the
// output file.
func Run(ctx context.Context, t *Task, runID string, log logrus.FieldLogger) (string, error) {
	log = log.WithField("task_date", t.Date.Format(hii.DateFormat))
	l, err := NewLoader(log)
	if err != nil {
		return "", err
	}
	defer l.Close()

	in, err := l.Inputs(ctx, t)
	if err != nil {
		return "", err
	}
	res, err := hii.ComputeDriver(t.Date, in, t.Driver, log)
	if err != nil {
		return "", err
	}
	e := &Exporter{Overwrite: t.Overwrite, Log: log}
	return e.Export(ctx, t.OutputFile, res.Driver, outputAttributes(t, res, runID))
}

// outputAttributes returns the global attributes that describe how the
// driver raster was produced.
func outputAttributes(t *Task, res *hii.Result, runID string) map[string]string {
	warnings := make([]string, len(res.Warnings))
	for i, w := range res.Warnings {
		warnings[i] = w.Error()
	}
	return map[string]string{
		"hii_version":    t.Driver.Version,
		"run_id":         runID,
		"task_date":      t.Date.Format(hii.DateFormat),
		"landcover_date": res.LandCoverDate.Format(hii.DateFormat),
		"population":     res.Population.String(),
		"stale_policy":   t.Driver.StalePolicy.String(),
		"warnings":       strings.Join(warnings, "; "),
		"config_hash":    configHash(t),
	}
}

// configHash fingerprints the settings that determine the driver values.
func configHash(t *Task) string {
	return hash.Hash(t.Date, t.Driver, t.LandCover, t.LandCoverNoData, t.Population,
		t.WaterMaskFile, t.WaterMaskVariable, t.AOI)
}

// Inspect writes a report of the snapshots available in each input
// series and the ones selected for the task date to w.
func Inspect(ctx context.Context, w io.Writer, t *Task, log logrus.FieldLogger) error {
	l, err := NewLoader(log)
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Fprintf(w, "task date: %s\n", t.Date.Format(hii.DateFormat))
	for _, src := range []struct {
		Source
		maxAge time.Duration
	}{
		{t.LandCover, t.Driver.LandCoverMaxAge},
		{t.Population, t.Driver.PopulationMaxAge},
	} {
		s, err := l.Series(ctx, src.Source)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s:\n", s.Name)
		for _, snap := range s.Snapshots() {
			fmt.Fprintf(w, "  snapshot %s  %s\n", snap.Time.Format(hii.DateFormat), src.Snapshots[snap.Time])
		}
		snap, err := s.MostRecentBefore(t.Date, src.maxAge)
		var stale *hii.StaleDataError
		switch {
		case err == nil:
			fmt.Fprintf(w, "  most recent: %s\n", snap.Time.Format(hii.DateFormat))
		case errors.As(err, &stale):
			fmt.Fprintf(w, "  most recent: %s (stale: %v)\n", snap.Time.Format(hii.DateFormat), err)
		case errors.Is(err, hii.ErrNoEligibleSnapshot):
			fmt.Fprintf(w, "  most recent: none (%v)\n", err)
		default:
			return err
		}
		fmt.Fprintf(w, "  value: %s\n", s.Resolve(t.Date))
	}
	return nil
}

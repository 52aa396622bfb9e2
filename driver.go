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

package hii

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// StalePolicy specifies how stale inputs are handled.
type StalePolicy int

const (
	// StaleWarn records stale inputs as warnings and continues.
	StaleWarn StalePolicy = iota
	// StaleFail aborts the computation when an input is stale.
	StaleFail
)

// ParseStalePolicy parses "warn" or "fail".
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch s {
	case "warn", "":
		return StaleWarn, nil
	case "fail":
		return StaleFail, nil
	default:
		return StaleWarn, fmt.Errorf("hii: invalid stale policy %q; valid values are 'warn' and 'fail'", s)
	}
}

func (p StalePolicy) String() string {
	if p == StaleFail {
		return "fail"
	}
	return "warn"
}

// DriverConfig is the versioned configuration record consumed by
// ComputeDriver.
type DriverConfig struct {
	Version string

	Weights *WeightTables

	// DefaultWeight is assigned to classes not covered by a table.
	DefaultWeight float64

	// PopulationDensityThreshold is the population density at or above
	// which natural classes count as human influence.
	PopulationDensityThreshold float64

	// Scale multiplies weights before quantization.
	Scale float64

	// Maximum ages of the most recent snapshot at the task date.
	// Values <= 0 disable the check.
	LandCoverMaxAge, PopulationMaxAge time.Duration

	StalePolicy StalePolicy
}

// DefaultDriverConfig returns the standard configuration.
func DefaultDriverConfig() DriverConfig {
	return DriverConfig{
		Version:                    Version,
		Weights:                    DefaultWeightTables(),
		PopulationDensityThreshold: 1,
		Scale:                      100,
		LandCoverMaxAge:            YearsToDuration(3),
		PopulationMaxAge:           YearsToDuration(5),
		StalePolicy:                StaleWarn,
	}
}

// Inputs holds the rasters the driver is computed from.
type Inputs struct {
	// LandCover holds class codes stored as floating point grids.
	LandCover       *Series
	LandCoverNoData int

	// Population holds population density.
	Population *Series

	Mask *ValidityMask
}

// Result is the outcome of ComputeDriver.
type Result struct {
	Driver *DriverRaster

	// LandCoverDate is the date of the land-cover snapshot used.
	LandCoverDate time.Time

	// Population describes how population density was resolved.
	Population Resolution

	// Warnings holds non-fatal problems, such as stale inputs under
	// StaleWarn.
	Warnings []error
}

// ComputeDriver calculates the land-use driver at date t.
func ComputeDriver(t time.Time, in Inputs, cfg DriverConfig, log logrus.FieldLogger) (*Result, error) {
	if in.LandCover == nil || in.Population == nil {
		return nil, ErrEmptySeries
	}
	if in.Mask == nil {
		return nil, fmt.Errorf("hii: no validity mask")
	}
	if cfg.Weights == nil {
		return nil, fmt.Errorf("hii: no weight tables")
	}
	if err := checkAligned(in.LandCover.GridDef(), in.Population.GridDef(), in.Mask.GridDef); err != nil {
		return nil, fmt.Errorf("hii: checking input alignment: %w", err)
	}
	res := new(Result)
	log = log.WithField("task_date", t.Format(DateFormat))

	lc, err := in.LandCover.MostRecentBefore(t, cfg.LandCoverMaxAge)
	if err := res.escalate(err, cfg.StalePolicy, log); err != nil {
		return nil, err
	}
	res.LandCoverDate = lc.Time
	log.WithField("landcover_date", lc.Time.Format(DateFormat)).Info("selected land-cover snapshot")

	_, err = in.Population.MostRecentBefore(t, cfg.PopulationMaxAge)
	if errors.Is(err, ErrNoEligibleSnapshot) {
		// Population is clamped to the earliest snapshot rather than failing.
		log.WithError(err).Warn("population density clamped to earliest snapshot")
		res.Warnings = append(res.Warnings, err)
	} else if err := res.escalate(err, cfg.StalePolicy, log); err != nil {
		return nil, err
	}
	pop, r := in.Population.ValueAt(t)
	res.Population = r
	log.WithField("population", r.String()).Info("resolved population density")

	classes := ClassRasterFromGrid(lc.Grid, in.LandCoverNoData)
	altered, natural := cfg.Weights.Apply(classes, cfg.DefaultWeight)

	res.Driver, err = Combine(CombineInput{
		Altered:    altered,
		Natural:    natural,
		Population: pop,
		Threshold:  cfg.PopulationDensityThreshold,
		Mask:       in.Mask,
		Scale:      cfg.Scale,
	})
	if err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"valid_cells": res.Driver.ValidCount(),
		"max":         res.Driver.Max(),
	}).Info("computed land-use driver")
	return res, nil
}

// escalate applies the stale policy to err. Errors other than stale data
// are always returned.
func (r *Result) escalate(err error, policy StalePolicy, log logrus.FieldLogger) error {
	if err == nil {
		return nil
	}
	var stale *StaleDataError
	if !errors.As(err, &stale) {
		return err
	}
	if policy == StaleFail {
		return err
	}
	log.WithError(err).Warn("using stale input")
	r.Warnings = append(r.Warnings, err)
	return nil
}

// ValidCount returns the number of valid cells.
func (d *DriverRaster) ValidCount() int {
	var n int
	for _, v := range d.Valid {
		if v {
			n++
		}
	}
	return n
}

// Max returns the largest valid value, or NoDataValue if there are no
// valid cells.
func (d *DriverRaster) Max() int32 {
	max := NoDataValue
	found := false
	for i, v := range d.Values {
		if d.Valid[i] && (!found || v > max) {
			max = v
			found = true
		}
	}
	return max
}

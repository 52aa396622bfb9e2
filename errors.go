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
)

// Errors returned by the driver computation. Use errors.Is to test for them.
var (
	// ErrEmptySeries is returned when a series has no snapshots.
	ErrEmptySeries = errors.New("hii: series has no snapshots")

	// ErrNoEligibleSnapshot is returned when no snapshot exists at or
	// before the query date.
	ErrNoEligibleSnapshot = errors.New("hii: no snapshot at or before query date")

	// ErrStaleData is returned when the most recent eligible snapshot is
	// older than the allowed maximum age.
	ErrStaleData = errors.New("hii: stale data")

	// ErrMisalignedGrids is returned when the inputs to a cell-wise
	// operation do not share spatial reference, extent and resolution.
	ErrMisalignedGrids = errors.New("hii: misaligned grids")

	// ErrOverlappingWeightTables is returned when a class code appears in
	// both the altered and natural weight tables.
	ErrOverlappingWeightTables = errors.New("hii: overlapping weight tables")

	// ErrDuplicateClass is returned when a class code appears more than
	// once in a single weight table.
	ErrDuplicateClass = errors.New("hii: duplicate class code")

	// ErrDuplicateTimestamp is returned when two snapshots in a series
	// share a timestamp.
	ErrDuplicateTimestamp = errors.New("hii: duplicate snapshot timestamp")
)

// StaleDataError reports a snapshot that is older than its maximum age.
type StaleDataError struct {
	Series   string
	Query    time.Time
	Snapshot time.Time
	MaxAge   time.Duration
}

// Age returns the age of the snapshot at the query date.
func (e *StaleDataError) Age() time.Duration { return e.Query.Sub(e.Snapshot) }

func (e *StaleDataError) Error() string {
	name := e.Series
	if name == "" {
		name = "series"
	}
	return fmt.Sprintf("hii: %s snapshot %s is %.1f days older than query date %s (maximum %.1f days)",
		name, e.Snapshot.Format(DateFormat), e.Age().Hours()/24, e.Query.Format(DateFormat),
		e.MaxAge.Hours()/24)
}

// Is makes StaleDataError match ErrStaleData.
func (e *StaleDataError) Is(target error) bool { return target == ErrStaleData }

// MisalignedError reports the grid property that differs between two grids.
type MisalignedError struct {
	Property string
	A, B     string
}

func (e *MisalignedError) Error() string {
	return fmt.Sprintf("hii: misaligned grids: %s %s != %s", e.Property, e.A, e.B)
}

// Is makes MisalignedError match ErrMisalignedGrids.
func (e *MisalignedError) Is(target error) bool { return target == ErrMisalignedGrids }

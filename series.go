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
	"fmt"
	"sort"
	"time"
)

// DateFormat is the layout used for snapshot and query dates.
const DateFormat = "2006-01-02"

// daysPerYear is used to convert maximum ages given in years.
const daysPerYear = 365.25

// YearsToDuration converts a number of years to a duration.
func YearsToDuration(years float64) time.Duration {
	return time.Duration(years * daysPerYear * 24 * float64(time.Hour))
}

// Snapshot is one dated raster observation.
type Snapshot struct {
	Time time.Time
	Grid *Grid
}

// Series is an ordered collection of snapshots with unique, strictly
// increasing timestamps that all share one grid definition.
type Series struct {
	// Name identifies the series in error messages.
	Name string

	snapshots []Snapshot
}

// NewSeries creates a series from the given snapshots, which may be in any
// order.
func NewSeries(name string, snapshots ...Snapshot) (*Series, error) {
	if len(snapshots) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySeries, name)
	}
	s := make([]Snapshot, len(snapshots))
	copy(s, snapshots)
	sort.SliceStable(s, func(i, j int) bool { return s[i].Time.Before(s[j].Time) })
	for i, snap := range s {
		if snap.Grid == nil {
			return nil, fmt.Errorf("hii: %s snapshot %s has no grid", name, snap.Time.Format(DateFormat))
		}
		if i == 0 {
			continue
		}
		if snap.Time.Equal(s[i-1].Time) {
			return nil, fmt.Errorf("%w: %s %s", ErrDuplicateTimestamp, name, snap.Time.Format(DateFormat))
		}
		if err := s[0].Grid.Aligned(snap.Grid.GridDef); err != nil {
			return nil, fmt.Errorf("hii: %s snapshot %s: %w", name, snap.Time.Format(DateFormat), err)
		}
	}
	return &Series{Name: name, snapshots: s}, nil
}

// Len returns the number of snapshots.
func (s *Series) Len() int { return len(s.snapshots) }

// First returns the earliest snapshot.
func (s *Series) First() Snapshot { return s.snapshots[0] }

// Last returns the latest snapshot.
func (s *Series) Last() Snapshot { return s.snapshots[len(s.snapshots)-1] }

// Snapshots returns the snapshots in time order.
func (s *Series) Snapshots() []Snapshot {
	o := make([]Snapshot, len(s.snapshots))
	copy(o, s.snapshots)
	return o
}

// GridDef returns the grid definition shared by all snapshots.
func (s *Series) GridDef() GridDef { return s.snapshots[0].Grid.GridDef }

// MostRecentBefore returns the snapshot with the largest timestamp at or
// before t. If there is none, ErrNoEligibleSnapshot is returned.
// If the snapshot is more than maxAge older than t, it is returned together
// with a *StaleDataError; the caller decides whether that is fatal.
// A maxAge <= 0 disables the check.
func (s *Series) MostRecentBefore(t time.Time, maxAge time.Duration) (Snapshot, error) {
	i := sort.Search(len(s.snapshots), func(i int) bool { return s.snapshots[i].Time.After(t) })
	if i == 0 {
		return Snapshot{}, fmt.Errorf("%w: %s has no snapshot at or before %s (earliest %s)",
			ErrNoEligibleSnapshot, s.Name, t.Format(DateFormat), s.First().Time.Format(DateFormat))
	}
	snap := s.snapshots[i-1]
	if maxAge > 0 && t.Sub(snap.Time) > maxAge {
		return snap, &StaleDataError{Series: s.Name, Query: t, Snapshot: snap.Time, MaxAge: maxAge}
	}
	return snap, nil
}

// Position is the location of a query date relative to the span of a series.
type Position int

const (
	// BeforeRange means the date is at or before the earliest snapshot.
	BeforeRange Position = iota
	// InRange means the date is strictly between the earliest and latest snapshots.
	InRange
	// AfterRange means the date is at or after the latest snapshot.
	AfterRange
)

func (p Position) String() string {
	switch p {
	case BeforeRange:
		return "before range"
	case InRange:
		return "in range"
	case AfterRange:
		return "after range"
	default:
		return fmt.Sprintf("Position(%d)", int(p))
	}
}

// Classify locates t relative to the span of the series. Dates equal to a
// boundary snapshot are classified as that boundary.
func (s *Series) Classify(t time.Time) Position {
	if !t.After(s.First().Time) {
		return BeforeRange
	}
	if !t.Before(s.Last().Time) {
		return AfterRange
	}
	return InRange
}

// bracket returns the snapshots immediately at-or-before and at-or-after t.
// t must be within the span of the series.
func (s *Series) bracket(t time.Time) (prev, next Snapshot) {
	i := sort.Search(len(s.snapshots), func(i int) bool { return !s.snapshots[i].Time.Before(t) })
	next = s.snapshots[i]
	if next.Time.Equal(t) {
		return next, next
	}
	return s.snapshots[i-1], next
}

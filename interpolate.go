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
	"time"
)

// Resolution describes how a series value was obtained for a query date.
type Resolution struct {
	Position   Position
	Prev, Next time.Time
	// Fraction is the weight of Next in the interpolated value.
	Fraction float64
}

func (r Resolution) String() string {
	switch {
	case r.Position == BeforeRange:
		return fmt.Sprintf("clamped to earliest snapshot %s", r.Prev.Format(DateFormat))
	case r.Position == AfterRange:
		return fmt.Sprintf("clamped to latest snapshot %s", r.Prev.Format(DateFormat))
	case r.Prev.Equal(r.Next):
		return fmt.Sprintf("exact snapshot %s", r.Prev.Format(DateFormat))
	default:
		return fmt.Sprintf("interpolated %.4f of the way from %s to %s", r.Fraction,
			r.Prev.Format(DateFormat), r.Next.Format(DateFormat))
	}
}

// Resolve determines which snapshots contribute to the value of the series
// at t without computing it.
func (s *Series) Resolve(t time.Time) Resolution {
	switch s.Classify(t) {
	case BeforeRange:
		f := s.First().Time
		return Resolution{Position: BeforeRange, Prev: f, Next: f}
	case AfterRange:
		l := s.Last().Time
		return Resolution{Position: AfterRange, Prev: l, Next: l}
	}
	prev, next := s.bracket(t)
	r := Resolution{Position: InRange, Prev: prev.Time, Next: next.Time}
	if !prev.Time.Equal(next.Time) {
		r.Fraction = timeFraction(t, prev.Time, next.Time)
	}
	return r
}

// ValueAt returns the value of the series at t. Dates outside the span of
// the series are clamped to the nearest boundary snapshot, dates matching a
// snapshot return that snapshot's values, and other dates are linearly
// interpolated between the bracketing snapshots. The returned grid is
// always a new grid.
func (s *Series) ValueAt(t time.Time) (*Grid, Resolution) {
	r := s.Resolve(t)
	if r.Prev.Equal(r.Next) {
		return s.snapshotAt(r.Prev).Grid.Copy(), r
	}
	prev, next := s.bracket(t)
	return Interpolate(prev.Grid, next.Grid, r.Fraction), r
}

// snapshotAt returns the snapshot with timestamp t, which must exist.
func (s *Series) snapshotAt(t time.Time) Snapshot {
	for _, snap := range s.snapshots {
		if snap.Time.Equal(t) {
			return snap
		}
	}
	panic(fmt.Sprintf("hii: %s has no snapshot at %s", s.Name, t.Format(DateFormat)))
}

// Interpolate returns a + fraction*(b-a), cell-wise. a and b must share a
// grid definition.
func Interpolate(a, b *Grid, fraction float64) *Grid {
	o := NewGrid(a.GridDef)
	for i, av := range a.Data.Elements {
		o.Data.Elements[i] = av + fraction*(b.Data.Elements[i]-av)
	}
	return o
}

// timeFraction returns the fraction of the interval [t0, t1] that has
// elapsed at t.
func timeFraction(t, t0, t1 time.Time) float64 {
	return (seconds(t) - seconds(t0)) / (seconds(t1) - seconds(t0))
}

func seconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/1.e9
}

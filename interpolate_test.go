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
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestValueAt(t *testing.T) {
	s, err := NewSeries("population",
		Snapshot{Time: date("2000-01-01"), Grid: constGrid(10)},
		Snapshot{Time: date("2005-01-01"), Grid: constGrid(20)},
	)
	if err != nil {
		t.Fatal(err)
	}
	// 913 of the 1827 days between the snapshots.
	mid := 10 + 10*913./1827.
	tests := []struct {
		query string
		want  float64
		pos   Position
	}{
		{"1990-06-01", 10, BeforeRange},
		{"2000-01-01", 10, BeforeRange},
		{"2002-07-02", mid, InRange},
		{"2005-01-01", 20, AfterRange},
		{"2030-01-01", 20, AfterRange},
	}
	for _, test := range tests {
		t.Run(test.query, func(t *testing.T) {
			g, r := s.ValueAt(date(test.query))
			if r.Position != test.pos {
				t.Errorf("position: got %v, want %v", r.Position, test.pos)
			}
			for i, v := range g.Data.Elements {
				if !floats.EqualWithinAbsOrRel(v, test.want, 1e-9, 1e-9) {
					t.Errorf("cell %d: got %g, want %g", i, v, test.want)
				}
			}
		})
	}
}

func TestValueAtExactSnapshot(t *testing.T) {
	a, _ := NewGridFrom(testDef, []float64{1, 2, 3, 4})
	b, _ := NewGridFrom(testDef, []float64{5.5, math.NaN(), 7, 8})
	c, _ := NewGridFrom(testDef, []float64{0.1, 0.2, 0.3, 0.4})
	s, err := NewSeries("x",
		Snapshot{Time: date("2000-01-01"), Grid: a},
		Snapshot{Time: date("2005-01-01"), Grid: b},
		Snapshot{Time: date("2010-01-01"), Grid: c},
	)
	if err != nil {
		t.Fatal(err)
	}
	for _, snap := range s.Snapshots() {
		g, r := s.ValueAt(snap.Time)
		if !r.Prev.Equal(r.Next) {
			t.Errorf("%v: interpolated instead of exact match: %v", snap.Time, r)
		}
		for i, v := range g.Data.Elements {
			want := snap.Grid.Data.Elements[i]
			if v != want && !(math.IsNaN(v) && math.IsNaN(want)) {
				t.Errorf("%v cell %d: got %g, want %g", snap.Time, i, v, want)
			}
		}
		if g == snap.Grid {
			t.Error("ValueAt returned the snapshot grid itself")
		}
	}
}

func TestValueAtMonotonic(t *testing.T) {
	a, _ := NewGridFrom(testDef, []float64{0, 10, 5, -3})
	b, _ := NewGridFrom(testDef, []float64{10, 0, 5, 7})
	s, err := NewSeries("x",
		Snapshot{Time: date("2000-01-01"), Grid: a},
		Snapshot{Time: date("2001-01-01"), Grid: b},
	)
	if err != nil {
		t.Fatal(err)
	}
	prev := a.Copy()
	for d := date("2000-01-02"); d.Before(date("2001-01-01")); d = d.AddDate(0, 0, 7) {
		g, _ := s.ValueAt(d)
		for i, v := range g.Data.Elements {
			lo, hi := math.Min(a.Data.Elements[i], b.Data.Elements[i]), math.Max(a.Data.Elements[i], b.Data.Elements[i])
			if v < lo || v > hi {
				t.Errorf("%v cell %d: %g outside [%g, %g]", d, i, v, lo, hi)
			}
			increasing := b.Data.Elements[i] >= a.Data.Elements[i]
			if increasing && v < prev.Data.Elements[i] || !increasing && v > prev.Data.Elements[i] {
				t.Errorf("%v cell %d: not monotonic", d, i)
			}
		}
		prev = g
	}
}

func TestResolveString(t *testing.T) {
	s := testSeries(t)
	r := s.Resolve(date("2002-07-02"))
	if r.Position != InRange || !r.Prev.Equal(date("2000-01-01")) || !r.Next.Equal(date("2005-01-01")) {
		t.Errorf("unexpected resolution %+v", r)
	}
	if r.String() == "" {
		t.Error("empty description")
	}
}

func TestInterpolate(t *testing.T) {
	a, _ := NewGridFrom(testDef, []float64{0, 1, 2, math.NaN()})
	b, _ := NewGridFrom(testDef, []float64{10, 1, 0, 3})
	g := Interpolate(a, b, 0.25)
	want := []float64{2.5, 1, 1.5}
	for i, w := range want {
		if !floats.EqualWithinAbsOrRel(g.Data.Elements[i], w, 1e-12, 1e-12) {
			t.Errorf("cell %d: %g != %g", i, g.Data.Elements[i], w)
		}
	}
	if !math.IsNaN(g.Data.Elements[3]) {
		t.Errorf("no-data should propagate, got %g", g.Data.Elements[3])
	}
	if a.Data.Elements[0] != 0 {
		t.Error("input grid was modified")
	}
}

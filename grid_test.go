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
	"math"
	"testing"

	"github.com/ctessum/geom"
)

func TestAligned(t *testing.T) {
	d := testDef
	if err := d.Aligned(d); err != nil {
		t.Errorf("identical grids: %v", err)
	}
	nearly := d
	nearly.X0 += 1e-12
	if err := d.Aligned(nearly); err != nil {
		t.Errorf("within tolerance: %v", err)
	}
	for name, o := range map[string]GridDef{
		"shape": {Nx: 3, Ny: 2, Dx: 300, Dy: 300, SR: d.SR},
		"dy":    {Nx: 2, Ny: 2, Dx: 300, Dy: 250, SR: d.SR},
		"sr":    {Nx: 2, Ny: 2, Dx: 300, Dy: 300, SR: "+proj=merc"},
	} {
		err := d.Aligned(o)
		if !errors.Is(err, ErrMisalignedGrids) {
			t.Errorf("%s: want ErrMisalignedGrids, got %v", name, err)
		}
	}
}

func TestNewGridFrom(t *testing.T) {
	if _, err := NewGridFrom(testDef, []float64{1, 2}); err == nil {
		t.Error("want error for wrong number of values")
	}
	g, err := NewGridFrom(testDef, []float64{1, math.NaN(), 3, 4})
	if err != nil {
		t.Fatal(err)
	}
	if g.ValidCount() != 3 {
		t.Errorf("valid count: %d", g.ValidCount())
	}
	c := g.Copy()
	c.Data.Elements[0] = 100
	if g.Data.Elements[0] != 1 {
		t.Error("Copy shares data")
	}
}

func TestMaskFromGrid(t *testing.T) {
	g, _ := NewGridFrom(testDef, []float64{1, 0, math.NaN(), 2})
	m := MaskFromGrid(g)
	want := []bool{true, false, false, true}
	for i, w := range want {
		if m.Valid[i] != w {
			t.Errorf("cell %d: %v != %v", i, m.Valid[i], w)
		}
	}
	and, err := m.And(NewValidityMask(testDef, false))
	if err != nil {
		t.Fatal(err)
	}
	if and.ValidCount() != 0 {
		t.Errorf("and: %d valid cells", and.ValidCount())
	}
}

func TestClipToPolygon(t *testing.T) {
	// Cell centers are at (150, 150), (450, 150), (150, 450) and (450, 450).
	aoi := geom.Polygon{{
		{X: 0, Y: 0}, {X: 300, Y: 0}, {X: 300, Y: 600}, {X: 0, Y: 600}, {X: 0, Y: 0},
	}}
	m := NewValidityMask(testDef, true)
	m.Valid[2] = false
	c := m.ClipToPolygon(aoi)
	want := []bool{true, false, false, false}
	for i, w := range want {
		if c.Valid[i] != w {
			t.Errorf("cell %d: %v != %v", i, c.Valid[i], w)
		}
	}
	if !m.Valid[1] {
		t.Error("ClipToPolygon modified the receiver")
	}
}

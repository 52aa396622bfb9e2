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
	"math"

	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// gridTolerance is the absolute and relative tolerance used when comparing
// grid geometry.
const gridTolerance = 1.e-9

// GridDef specifies the spatial reference, extent and resolution that
// every raster used together must share.
type GridDef struct {
	Nx, Ny int     // number of columns and rows
	Dx, Dy float64 // cell edge lengths
	X0, Y0 float64 // lower-left corner
	SR     string  // spatial reference; Proj4 format
}

// Len returns the number of cells in the grid.
func (d GridDef) Len() int { return d.Nx * d.Ny }

// CellCenter returns the coordinates of the center of the cell at
// the given row and column.
func (d GridDef) CellCenter(row, col int) (x, y float64) {
	return d.X0 + (float64(col)+0.5)*d.Dx, d.Y0 + (float64(row)+0.5)*d.Dy
}

// Aligned returns an error wrapping ErrMisalignedGrids if o does not share
// the spatial reference, extent and resolution of d.
func (d GridDef) Aligned(o GridDef) error {
	if d.Nx != o.Nx || d.Ny != o.Ny {
		return &MisalignedError{Property: "shape", A: fmt.Sprintf("%dx%d", d.Nx, d.Ny),
			B: fmt.Sprintf("%dx%d", o.Nx, o.Ny)}
	}
	props := []struct {
		name string
		a, b float64
	}{
		{"Dx", d.Dx, o.Dx}, {"Dy", d.Dy, o.Dy}, {"X0", d.X0, o.X0}, {"Y0", d.Y0, o.Y0},
	}
	for _, p := range props {
		if !floats.EqualWithinAbsOrRel(p.a, p.b, gridTolerance, gridTolerance) {
			return &MisalignedError{Property: p.name, A: fmt.Sprint(p.a), B: fmt.Sprint(p.b)}
		}
	}
	if d.SR != o.SR {
		return &MisalignedError{Property: "SR", A: d.SR, B: o.SR}
	}
	return nil
}

// checkAligned returns the first alignment error among defs relative to the first one.
func checkAligned(defs ...GridDef) error {
	for _, d := range defs[1:] {
		if err := defs[0].Aligned(d); err != nil {
			return err
		}
	}
	return nil
}

// Grid is a two-dimensional scalar field with shape [Ny, Nx].
// NaN values represent no-data.
type Grid struct {
	GridDef
	Data *sparse.DenseArray
}

// NewGrid returns a zero-valued grid with the given definition.
func NewGrid(def GridDef) *Grid {
	return &Grid{GridDef: def, Data: sparse.ZerosDense(def.Ny, def.Nx)}
}

// NewGridFrom returns a grid holding a copy of values, which must be
// in row-major order and have def.Len() elements.
func NewGridFrom(def GridDef, values []float64) (*Grid, error) {
	if len(values) != def.Len() {
		return nil, fmt.Errorf("hii: grid has %d cells but %d values were given", def.Len(), len(values))
	}
	g := NewGrid(def)
	copy(g.Data.Elements, values)
	return g, nil
}

// FilledGrid returns a grid with all cells set to v.
func FilledGrid(def GridDef, v float64) *Grid {
	g := NewGrid(def)
	for i := range g.Data.Elements {
		g.Data.Elements[i] = v
	}
	return g
}

// At returns the value at the given row and column.
func (g *Grid) At(row, col int) float64 { return g.Data.Get(row, col) }

// Copy returns a deep copy of g.
func (g *Grid) Copy() *Grid {
	return &Grid{GridDef: g.GridDef, Data: g.Data.Copy()}
}

// Map returns a new grid where each cell is f applied to the corresponding
// cell of g.
func (g *Grid) Map(f func(v float64) float64) *Grid {
	o := NewGrid(g.GridDef)
	for i, v := range g.Data.Elements {
		o.Data.Elements[i] = f(v)
	}
	return o
}

// ValidCount returns the number of cells holding data.
func (g *Grid) ValidCount() int {
	var n int
	for _, v := range g.Data.Elements {
		if !math.IsNaN(v) {
			n++
		}
	}
	return n
}

// ClassRaster is a grid of integer class codes. Cells equal to NoData are
// unclassified.
type ClassRaster struct {
	GridDef
	Codes  []int
	NoData int
}

// NewClassRaster returns a class raster holding a copy of codes.
func NewClassRaster(def GridDef, codes []int, noData int) (*ClassRaster, error) {
	if len(codes) != def.Len() {
		return nil, fmt.Errorf("hii: class raster has %d cells but %d codes were given", def.Len(), len(codes))
	}
	c := make([]int, len(codes))
	copy(c, codes)
	return &ClassRaster{GridDef: def, Codes: c, NoData: noData}, nil
}

// ClassRasterFromGrid converts a floating point grid to class codes.
// NaN cells become noData.
func ClassRasterFromGrid(g *Grid, noData int) *ClassRaster {
	c := &ClassRaster{GridDef: g.GridDef, Codes: make([]int, len(g.Data.Elements)), NoData: noData}
	for i, v := range g.Data.Elements {
		if math.IsNaN(v) {
			c.Codes[i] = noData
			continue
		}
		c.Codes[i] = int(math.Round(v))
	}
	return c
}

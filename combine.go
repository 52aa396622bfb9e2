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
)

// NoDataValue marks excluded cells in a DriverRaster.
const NoDataValue int32 = -9999

// DriverRaster is the quantized land-use driver.
type DriverRaster struct {
	GridDef
	Values []int32
	Valid  []bool
	// Scale is the multiplier that was applied to the weights before
	// quantization.
	Scale float64
}

// At returns the value at the given row and column, or NoDataValue.
func (d *DriverRaster) At(row, col int) int32 {
	i := row*d.Nx + col
	if !d.Valid[i] {
		return NoDataValue
	}
	return d.Values[i]
}

// Gate returns a grid that is 1 where pop >= threshold and 0 elsewhere,
// including where pop is no-data.
func Gate(pop *Grid, threshold float64) *Grid {
	return pop.Map(func(v float64) float64 {
		if v >= threshold {
			return 1
		}
		return 0
	})
}

// ApplyGate multiplies g by gate cell-wise. No-data cells in g stay no-data.
func ApplyGate(g, gate *Grid) (*Grid, error) {
	if err := g.Aligned(gate.GridDef); err != nil {
		return nil, fmt.Errorf("hii: applying population gate: %w", err)
	}
	o := NewGrid(g.GridDef)
	for i, v := range g.Data.Elements {
		if math.IsNaN(v) {
			o.Data.Elements[i] = v
			continue
		}
		o.Data.Elements[i] = v * gate.Data.Elements[i]
	}
	return o, nil
}

// MaxCombine returns the cell-wise maximum of the given grids, ignoring
// no-data. Cells that are no-data in every grid stay no-data.
func MaxCombine(grids ...*Grid) (*Grid, error) {
	if len(grids) == 0 {
		return nil, fmt.Errorf("hii: MaxCombine requires at least one grid")
	}
	defs := make([]GridDef, len(grids))
	for i, g := range grids {
		defs[i] = g.GridDef
	}
	if err := checkAligned(defs...); err != nil {
		return nil, fmt.Errorf("hii: combining weighted grids: %w", err)
	}
	o := FilledGrid(grids[0].GridDef, math.NaN())
	for _, g := range grids {
		for i, v := range g.Data.Elements {
			if math.IsNaN(v) {
				continue
			}
			if cur := o.Data.Elements[i]; math.IsNaN(cur) || v > cur {
				o.Data.Elements[i] = v
			}
		}
	}
	return o, nil
}

// FillNoData replaces no-data cells with v.
func FillNoData(g *Grid, v float64) *Grid {
	return g.Map(func(x float64) float64 {
		if math.IsNaN(x) {
			return v
		}
		return x
	})
}

// ApplyMask sets cells that are invalid in mask to no-data.
func ApplyMask(g *Grid, mask *ValidityMask) (*Grid, error) {
	if err := g.Aligned(mask.GridDef); err != nil {
		return nil, fmt.Errorf("hii: applying validity mask: %w", err)
	}
	o := g.Copy()
	for i, ok := range mask.Valid {
		if !ok {
			o.Data.Elements[i] = math.NaN()
		}
	}
	return o, nil
}

// Quantize multiplies g by scale and rounds to the nearest integer.
// No-data cells become invalid.
func Quantize(g *Grid, scale float64) *DriverRaster {
	d := &DriverRaster{
		GridDef: g.GridDef,
		Values:  make([]int32, len(g.Data.Elements)),
		Valid:   make([]bool, len(g.Data.Elements)),
		Scale:   scale,
	}
	for i, v := range g.Data.Elements {
		if math.IsNaN(v) {
			d.Values[i] = NoDataValue
			continue
		}
		d.Values[i] = int32(math.Round(v * scale))
		d.Valid[i] = true
	}
	return d
}

// CombineInput holds the inputs to Combine.
type CombineInput struct {
	Altered, Natural *Grid
	Population       *Grid
	Threshold        float64
	Mask             *ValidityMask
	Scale            float64
}

// Combine gates the natural weights by population density, takes the
// cell-wise maximum with the altered weights, fills cells without weights
// with zero, masks invalid cells and quantizes the result.
func Combine(in CombineInput) (*DriverRaster, error) {
	if err := checkAligned(in.Altered.GridDef, in.Natural.GridDef,
		in.Population.GridDef, in.Mask.GridDef); err != nil {
		return nil, fmt.Errorf("hii: combining driver inputs: %w", err)
	}
	gated, err := ApplyGate(in.Natural, Gate(in.Population, in.Threshold))
	if err != nil {
		return nil, err
	}
	combined, err := MaxCombine(in.Altered, gated)
	if err != nil {
		return nil, err
	}
	masked, err := ApplyMask(FillNoData(combined, 0), in.Mask)
	if err != nil {
		return nil, err
	}
	return Quantize(masked, in.Scale), nil
}

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

	"github.com/ctessum/geom"
)

// ValidityMask is a static inclusion grid; true cells are included in the
// driver and false cells are no-data.
type ValidityMask struct {
	GridDef
	Valid []bool
}

// NewValidityMask returns a mask with all cells set to valid.
func NewValidityMask(def GridDef, valid bool) *ValidityMask {
	m := &ValidityMask{GridDef: def, Valid: make([]bool, def.Len())}
	for i := range m.Valid {
		m.Valid[i] = valid
	}
	return m
}

// MaskFromGrid builds a mask in which cells holding finite, non-zero values are
// valid.
func MaskFromGrid(g *Grid) *ValidityMask {
	m := &ValidityMask{GridDef: g.GridDef, Valid: make([]bool, len(g.Data.Elements))}
	for i, v := range g.Data.Elements {
		m.Valid[i] = !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0
	}
	return m
}

// ValidCount returns the number of valid cells.
func (m *ValidityMask) ValidCount() int {
	var n int
	for _, v := range m.Valid {
		if v {
			n++
		}
	}
	return n
}

// And returns a mask valid only where both m and o are valid.
func (m *ValidityMask) And(o *ValidityMask) (*ValidityMask, error) {
	if err := m.Aligned(o.GridDef); err != nil {
		return nil, fmt.Errorf("hii: combining validity masks: %w", err)
	}
	r := &ValidityMask{GridDef: m.GridDef, Valid: make([]bool, len(m.Valid))}
	for i := range m.Valid {
		r.Valid[i] = m.Valid[i] && o.Valid[i]
	}
	return r, nil
}

// ClipToPolygon returns a copy of m in which cells whose centers are outside
// of aoi are invalid. aoi must be in the spatial reference of the grid.
func (m *ValidityMask) ClipToPolygon(aoi geom.Polygonal) *ValidityMask {
	r := &ValidityMask{GridDef: m.GridDef, Valid: make([]bool, len(m.Valid))}
	b := aoi.Bounds()
	for row := 0; row < m.Ny; row++ {
		for col := 0; col < m.Nx; col++ {
			i := row*m.Nx + col
			if !m.Valid[i] {
				continue
			}
			x, y := m.CellCenter(row, col)
			p := geom.Point{X: x, Y: y}
			if x < b.Min.X || x > b.Max.X || y < b.Min.Y || y > b.Max.Y {
				continue
			}
			r.Valid[i] = p.Within(aoi) != geom.Outside
		}
	}
	return r
}

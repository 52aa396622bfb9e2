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

// ClassWeight assigns a weight to one land-cover class.
type ClassWeight struct {
	Category string
	Class    int
	Weight   float64
}

// WeightTable is an ordered mapping from class code to weight.
type WeightTable struct {
	Name    string
	entries []ClassWeight
	index   map[int]float64
}

// NewWeightTable creates a weight table, returning an error wrapping
// ErrDuplicateClass if a class code is repeated.
func NewWeightTable(name string, entries []ClassWeight) (*WeightTable, error) {
	t := &WeightTable{
		Name:    name,
		entries: make([]ClassWeight, len(entries)),
		index:   make(map[int]float64, len(entries)),
	}
	copy(t.entries, entries)
	for _, e := range entries {
		if _, ok := t.index[e.Class]; ok {
			return nil, fmt.Errorf("%w: %d in %s table", ErrDuplicateClass, e.Class, name)
		}
		t.index[e.Class] = e.Weight
	}
	return t, nil
}

// Entries returns the table entries in order.
func (t *WeightTable) Entries() []ClassWeight {
	o := make([]ClassWeight, len(t.entries))
	copy(o, t.entries)
	return o
}

// Lookup returns the weight for the given class code and whether the table
// covers it.
func (t *WeightTable) Lookup(class int) (float64, bool) {
	w, ok := t.index[class]
	return w, ok
}

// Apply remaps the class raster to weights. Classes not covered by the
// table get the default value def; unclassified cells are no-data.
func (t *WeightTable) Apply(r *ClassRaster, def float64) *Grid {
	o := NewGrid(r.GridDef)
	for i, c := range r.Codes {
		if c == r.NoData {
			o.Data.Elements[i] = math.NaN()
			continue
		}
		if w, ok := t.index[c]; ok {
			o.Data.Elements[i] = w
		} else {
			o.Data.Elements[i] = def
		}
	}
	return o
}

// WeightTables holds the two disjoint weighting tables.
type WeightTables struct {
	// Altered weights classes directly modified by people, such as
	// cropland and urban areas.
	Altered *WeightTable
	// Natural weights semi-natural classes, which only count as human
	// influence where population density reaches the threshold.
	Natural *WeightTable
}

// NewWeightTables validates that no class code appears in both tables.
func NewWeightTables(altered, natural []ClassWeight) (*WeightTables, error) {
	a, err := NewWeightTable("altered", altered)
	if err != nil {
		return nil, err
	}
	n, err := NewWeightTable("natural", natural)
	if err != nil {
		return nil, err
	}
	for _, e := range a.entries {
		if _, ok := n.index[e.Class]; ok {
			return nil, fmt.Errorf("%w: class %d", ErrOverlappingWeightTables, e.Class)
		}
	}
	return &WeightTables{Altered: a, Natural: n}, nil
}

// Apply returns the altered and natural weighted rasters.
func (w *WeightTables) Apply(r *ClassRaster, def float64) (altered, natural *Grid) {
	return w.Altered.Apply(r, def), w.Natural.Apply(r, def)
}

// DefaultAlteredWeights are the ESA CCI land-cover classes directly
// converted by human land use.
var DefaultAlteredWeights = []ClassWeight{
	{Category: "Cropland, rainfed", Class: 10, Weight: 7},
	{Category: "Cropland, rainfed - Herbaceous cover", Class: 11, Weight: 7},
	{Category: "Cropland, rainfed - Tree or shrub cover", Class: 12, Weight: 7},
	{Category: "Cropland, irrigated or post-flooding", Class: 20, Weight: 8},
	{Category: "Mosaic cropland (>50%) / natural vegetation (tree, shrub, herbaceous cover) (<50%)", Class: 30, Weight: 6},
	{Category: "Urban areas", Class: 190, Weight: 10},
}

// DefaultNaturalWeights are the ESA CCI land-cover classes that indicate
// human influence only in populated areas.
var DefaultNaturalWeights = []ClassWeight{
	{Category: "Mosaic natural vegetation (tree, shrub, herbaceous cover) (>50%) / cropland (<50%)", Class: 40, Weight: 4},
	{Category: "Tree cover, broadleaved, evergreen, closed to open (>15%)", Class: 50, Weight: 0},
	{Category: "Tree cover, broadleaved, deciduous, closed to open (>15%)", Class: 60, Weight: 0},
	{Category: "Tree cover, broadleaved, deciduous, closed (>40%)", Class: 61, Weight: 0},
	{Category: "Tree cover, broadleaved, deciduous, open (15-40%)", Class: 62, Weight: 0},
	{Category: "Tree cover, needleleaved, evergreen, closed to open (>15%)", Class: 70, Weight: 0},
	{Category: "Tree cover, needleleaved, evergreen, closed (>40%)", Class: 71, Weight: 0},
	{Category: "Tree cover, needleleaved, evergreen, open (15-40%)", Class: 72, Weight: 0},
	{Category: "Tree cover, needleleaved, deciduous, closed to open (>15%)", Class: 80, Weight: 0},
	{Category: "Tree cover, needleleaved, deciduous, closed (>40%)", Class: 81, Weight: 0},
	{Category: "Tree cover, needleleaved, deciduous, open (15-40%)", Class: 82, Weight: 0},
	{Category: "Tree cover, mixed leaf type (broadleaved and needleleaved)", Class: 90, Weight: 0},
	{Category: "Mosaic tree and shrub (>50%) / herbaceous cover (<50%)", Class: 100, Weight: 4},
	{Category: "Mosaic herbaceous cover (>50%) / tree and shrub (<50%)", Class: 110, Weight: 4},
	{Category: "Shrubland", Class: 120, Weight: 4},
	{Category: "Shrubland - Evergreen shrubland", Class: 121, Weight: 4},
	{Category: "Shrubland - Deciduous shrubland", Class: 122, Weight: 4},
	{Category: "Grassland", Class: 130, Weight: 4},
	{Category: "Lichens and mosses", Class: 140, Weight: 0},
	{Category: "Sparse vegetation (tree, shrub, herbaceous cover) (<15%)", Class: 150, Weight: 0},
	{Category: "Sparse tree (<15%)", Class: 151, Weight: 0},
	{Category: "Sparse shrub (<15%)", Class: 152, Weight: 0},
	{Category: "Sparse herbaceous cover (<15%)", Class: 153, Weight: 0},
	{Category: "Tree cover, flooded, fresh or brakish water", Class: 160, Weight: 0},
	{Category: "Tree cover, flooded, saline water", Class: 170, Weight: 0},
	{Category: "Shrub or herbaceous cover, flooded, fresh/saline/brakish water", Class: 180, Weight: 0},
	{Category: "Bare areas", Class: 200, Weight: 4},
	{Category: "Consolidated bare areas", Class: 201, Weight: 0},
	{Category: "Unconsolidated bare areas", Class: 202, Weight: 0},
	{Category: "Water bodies", Class: 210, Weight: 4},
	{Category: "Permanent snow and ice", Class: 220, Weight: 0},
}

// DefaultWeightTables returns the default ESA CCI weighting.
func DefaultWeightTables() *WeightTables {
	w, err := NewWeightTables(DefaultAlteredWeights, DefaultNaturalWeights)
	if err != nil {
		panic(err)
	}
	return w
}

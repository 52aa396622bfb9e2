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

	"github.com/ctessum/cdf"
)

// Raster files are classic NetCDF files with dimensions y and x. Grid
// geometry is stored in the global attributes x0, y0, dx, dy and proj4.

// ReadGridNCF reads the given variable from a NetCDF raster file.
// Values equal to the variable's _FillValue attribute become NaN.
func ReadGridNCF(rw cdf.ReaderWriterAt, variable string) (*Grid, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("hii: opening NetCDF raster: %v", err)
	}
	def, err := readGridDef(f.Header)
	if err != nil {
		return nil, err
	}
	dims := f.Header.Lengths(variable)
	if len(dims) == 0 {
		return nil, fmt.Errorf("hii: variable %s not in raster file", variable)
	}
	if len(dims) != 2 || dims[0] != def.Ny || dims[1] != def.Nx {
		return nil, fmt.Errorf("hii: variable %s has dimensions %v; want [%d %d]", variable, dims, def.Ny, def.Nx)
	}
	r := f.Reader(variable, nil, nil)
	buf := r.Zero(-1)
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("hii: reading NetCDF variable %s: %v", variable, err)
	}
	data, err := toFloat64(buf)
	if err != nil {
		return nil, fmt.Errorf("hii: reading NetCDF variable %s: %v", variable, err)
	}
	if fill := f.Header.GetAttribute(variable, "_FillValue"); fill != nil {
		fv, err := toFloat64(fill)
		if err != nil || len(fv) == 0 {
			return nil, fmt.Errorf("hii: invalid _FillValue for %s: %#v", variable, fill)
		}
		for i, v := range data {
			if v == fv[0] {
				data[i] = math.NaN()
			}
		}
	}
	return NewGridFrom(def, data)
}

func readGridDef(h *cdf.Header) (GridDef, error) {
	var def GridDef
	vals := make(map[string]float64)
	for _, a := range []string{"x0", "y0", "dx", "dy"} {
		v, err := toFloat64(h.GetAttribute("", a))
		if err != nil || len(v) != 1 {
			return def, fmt.Errorf("hii: raster file is missing global attribute %s", a)
		}
		vals[a] = v[0]
	}
	def.X0, def.Y0, def.Dx, def.Dy = vals["x0"], vals["y0"], vals["dx"], vals["dy"]
	if def.Dx <= 0 || def.Dy <= 0 {
		return def, fmt.Errorf("hii: raster cell size must be >0; dx=%g, dy=%g", def.Dx, def.Dy)
	}
	if sr, ok := h.GetAttribute("", "proj4").(string); ok {
		def.SR = sr
	}
	for _, v := range h.Variables() {
		dims := h.Dimensions(v)
		if len(dims) == 2 && dims[0] == "y" && dims[1] == "x" {
			l := h.Lengths(v)
			def.Ny, def.Nx = l[0], l[1]
			return def, nil
		}
	}
	return def, fmt.Errorf("hii: raster file has no [y, x] variable")
}

func toFloat64(data interface{}) ([]float64, error) {
	var o []float64
	switch d := data.(type) {
	case []float64:
		o = make([]float64, len(d))
		copy(o, d)
	case []float32:
		o = make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
	case []int32:
		o = make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
	case []int16:
		o = make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
	case []uint8:
		o = make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
	default:
		return nil, fmt.Errorf("unsupported data type %T", data)
	}
	return o, nil
}

func newRasterHeader(def GridDef) *cdf.Header {
	h := cdf.NewHeader([]string{"y", "x"}, []int{def.Ny, def.Nx})
	h.AddAttribute("", "x0", []float64{def.X0})
	h.AddAttribute("", "y0", []float64{def.Y0})
	h.AddAttribute("", "dx", []float64{def.Dx})
	h.AddAttribute("", "dy", []float64{def.Dy})
	if def.SR != "" {
		h.AddAttribute("", "proj4", def.SR)
	}
	return h
}

// WriteGridNCF writes g as the given variable to a new NetCDF raster file.
// No-data cells are written as NaN.
func WriteGridNCF(w cdf.ReaderWriterAt, variable string, g *Grid) error {
	h := newRasterHeader(g.GridDef)
	h.AddVariable(variable, []string{"y", "x"}, []float64{0})
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("hii: creating NetCDF raster: %v", err)
	}
	if _, err = f.Writer(variable, []int{0, 0}, []int{g.Ny, g.Nx}).Write(g.Data.Elements); err != nil {
		return fmt.Errorf("hii: writing NetCDF variable %s: %v", variable, err)
	}
	return nil
}

// WriteDriverNCF writes d to a new NetCDF raster file as an integer
// variable named DriverVariable. attrs are added as global attributes.
func WriteDriverNCF(w cdf.ReaderWriterAt, d *DriverRaster, attrs map[string]string) error {
	h := newRasterHeader(d.GridDef)
	for k, v := range attrs {
		h.AddAttribute("", k, v)
	}
	h.AddVariable(DriverVariable, []string{"y", "x"}, []int32{0})
	h.AddAttribute(DriverVariable, "_FillValue", []int32{NoDataValue})
	h.AddAttribute(DriverVariable, "scale", []float64{d.Scale})
	h.AddAttribute(DriverVariable, "description", "Land-use driver of the human influence index")
	h.Define()
	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("hii: creating NetCDF driver file: %v", err)
	}
	vals := make([]int32, len(d.Values))
	for i, v := range d.Values {
		if d.Valid[i] {
			vals[i] = v
		} else {
			vals[i] = NoDataValue
		}
	}
	if _, err = f.Writer(DriverVariable, []int{0, 0}, []int{d.Ny, d.Nx}).Write(vals); err != nil {
		return fmt.Errorf("hii: writing NetCDF variable %s: %v", DriverVariable, err)
	}
	return nil
}

// ReadDriverNCF reads a driver raster written by WriteDriverNCF.
func ReadDriverNCF(rw cdf.ReaderWriterAt) (*DriverRaster, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("hii: opening NetCDF driver file: %v", err)
	}
	def, err := readGridDef(f.Header)
	if err != nil {
		return nil, err
	}
	if len(f.Header.Lengths(DriverVariable)) == 0 {
		return nil, fmt.Errorf("hii: variable %s not in driver file", DriverVariable)
	}
	r := f.Reader(DriverVariable, nil, nil)
	buf := r.Zero(def.Len())
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("hii: reading NetCDF variable %s: %v", DriverVariable, err)
	}
	vals, ok := buf.([]int32)
	if !ok {
		return nil, fmt.Errorf("hii: %s has type %T; want []int32", DriverVariable, buf)
	}
	d := &DriverRaster{GridDef: def, Values: vals, Valid: make([]bool, len(vals))}
	if s, err := toFloat64(f.Header.GetAttribute(DriverVariable, "scale")); err == nil && len(s) == 1 {
		d.Scale = s[0]
	}
	for i, v := range vals {
		d.Valid[i] = v != NoDataValue
	}
	return d, nil
}

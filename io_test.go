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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T, name string) *os.File {
	t.Helper()
	dir, err := ioutil.TempDir("", "hii")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestGridNCFRoundTrip(t *testing.T) {
	def := GridDef{Nx: 3, Ny: 2, Dx: 300, Dy: 300, X0: -1000, Y0: 500, SR: "+proj=longlat"}
	g, err := NewGridFrom(def, []float64{1, 2.5, math.NaN(), 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	f := tempFile(t, "pop.ncf")
	if err := WriteGridNCF(f, "population", g); err != nil {
		t.Fatal(err)
	}
	g2, err := ReadGridNCF(f, "population")
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Aligned(g2.GridDef); err != nil {
		t.Fatal(err)
	}
	for i, v := range g.Data.Elements {
		v2 := g2.Data.Elements[i]
		if v != v2 && !(math.IsNaN(v) && math.IsNaN(v2)) {
			t.Errorf("cell %d: %g != %g", i, v, v2)
		}
	}
	if g2.At(1, 0) != 4 {
		t.Errorf("row-major order: At(1, 0) = %g", g2.At(1, 0))
	}

	if _, err := ReadGridNCF(f, "missing"); err == nil {
		t.Error("want error for missing variable")
	}
}

func TestDriverNCFRoundTrip(t *testing.T) {
	d := &DriverRaster{
		GridDef: testDef,
		Values:  []int32{1000, 0, 400, 7},
		Valid:   []bool{true, true, true, false},
		Scale:   100,
	}
	f := tempFile(t, "driver.ncf")
	if err := WriteDriverNCF(f, d, map[string]string{"task_date": "2020-01-01"}); err != nil {
		t.Fatal(err)
	}
	d2, err := ReadDriverNCF(f)
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{1000, 0, 400, NoDataValue}
	for i, w := range want {
		if got := d2.At(i/2, i%2); got != w {
			t.Errorf("cell %d: %d != %d", i, got, w)
		}
	}
	if d2.Scale != 100 {
		t.Errorf("scale: %g", d2.Scale)
	}
}

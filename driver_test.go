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
	"io/ioutil"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() logrus.FieldLogger {
	l := logrus.New()
	l.Out = ioutil.Discard
	return l
}

func testInputs(t *testing.T) Inputs {
	t.Helper()
	// Cells: urban, shrubland, shrubland, water body.
	lc2010, _ := NewGridFrom(testDef, []float64{190, 121, 121, 210})
	lc2015, _ := NewGridFrom(testDef, []float64{190, 190, 121, 210})
	lc, err := NewSeries("landcover",
		Snapshot{Time: date("2010-01-01"), Grid: lc2010},
		Snapshot{Time: date("2015-01-01"), Grid: lc2015},
	)
	if err != nil {
		t.Fatal(err)
	}
	p2010, _ := NewGridFrom(testDef, []float64{100, 0, 0.5, 10})
	p2015, _ := NewGridFrom(testDef, []float64{100, 0, 2.5, 10})
	pop, err := NewSeries("population",
		Snapshot{Time: date("2010-01-01"), Grid: p2010},
		Snapshot{Time: date("2015-01-01"), Grid: p2015},
	)
	if err != nil {
		t.Fatal(err)
	}
	mask := &ValidityMask{GridDef: testDef, Valid: []bool{true, true, true, false}}
	return Inputs{LandCover: lc, Population: pop, Mask: mask}
}

func TestComputeDriver(t *testing.T) {
	in := testInputs(t)
	cfg := DefaultDriverConfig()

	tests := []struct {
		name string
		date string
		want []int32
	}{
		// Population in cell 2 reaches 1.5 halfway through the interval.
		{name: "interpolated", date: "2012-07-02", want: []int32{1000, 0, 400, NoDataValue}},
		{name: "early", date: "2010-06-01", want: []int32{1000, 0, 0, NoDataValue}},
		{name: "latest", date: "2016-01-01", want: []int32{1000, 1000, 400, NoDataValue}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			res, err := ComputeDriver(date(test.date), in, cfg, testLogger())
			if err != nil {
				t.Fatal(err)
			}
			for i, w := range test.want {
				if got := res.Driver.At(i/testDef.Nx, i%testDef.Nx); got != w {
					t.Errorf("cell %d: got %d, want %d", i, got, w)
				}
			}
			if len(res.Warnings) != 0 {
				t.Errorf("unexpected warnings: %v", res.Warnings)
			}
		})
	}
}

func TestComputeDriverPopulationClamped(t *testing.T) {
	in := testInputs(t)
	p2012, _ := NewGridFrom(testDef, []float64{100, 0, 2.5, 10})
	pop, err := NewSeries("population", Snapshot{Time: date("2012-01-01"), Grid: p2012})
	if err != nil {
		t.Fatal(err)
	}
	in.Population = pop

	res, err := ComputeDriver(date("2011-01-01"), in, DefaultDriverConfig(), testLogger())
	if err != nil {
		t.Fatal(err)
	}
	want := []int32{1000, 0, 400, NoDataValue}
	for i, w := range want {
		if got := res.Driver.At(i/testDef.Nx, i%testDef.Nx); got != w {
			t.Errorf("cell %d: got %d, want %d", i, got, w)
		}
	}
	if res.Population.Position != BeforeRange || !res.Population.Prev.Equal(date("2012-01-01")) {
		t.Errorf("population resolution = %s", res.Population)
	}
	if len(res.Warnings) != 1 || !errors.Is(res.Warnings[0], ErrNoEligibleSnapshot) {
		t.Errorf("want one ErrNoEligibleSnapshot warning, got %v", res.Warnings)
	}
	if m := res.Driver.Max(); m != 1000 {
		t.Errorf("max = %d", m)
	}
}

func TestComputeDriverErrors(t *testing.T) {
	in := testInputs(t)

	t.Run("no land cover", func(t *testing.T) {
		_, err := ComputeDriver(date("2009-01-01"), in, DefaultDriverConfig(), testLogger())
		if !errors.Is(err, ErrNoEligibleSnapshot) {
			t.Errorf("want ErrNoEligibleSnapshot, got %v", err)
		}
	})
	t.Run("stale warn", func(t *testing.T) {
		res, err := ComputeDriver(date("2021-01-01"), in, DefaultDriverConfig(), testLogger())
		if err != nil {
			t.Fatal(err)
		}
		if len(res.Warnings) != 2 {
			t.Fatalf("want 2 warnings, got %v", res.Warnings)
		}
		for _, w := range res.Warnings {
			if !errors.Is(w, ErrStaleData) {
				t.Errorf("want stale data warning, got %v", w)
			}
		}
	})
	t.Run("stale fail", func(t *testing.T) {
		cfg := DefaultDriverConfig()
		cfg.StalePolicy = StaleFail
		_, err := ComputeDriver(date("2019-01-01"), in, cfg, testLogger())
		if !errors.Is(err, ErrStaleData) {
			t.Errorf("want ErrStaleData, got %v", err)
		}
	})
	t.Run("misaligned mask", func(t *testing.T) {
		other := testDef
		other.Nx = 3
		in2 := in
		in2.Mask = NewValidityMask(other, true)
		_, err := ComputeDriver(date("2012-01-01"), in2, DefaultDriverConfig(), testLogger())
		if !errors.Is(err, ErrMisalignedGrids) {
			t.Errorf("want ErrMisalignedGrids, got %v", err)
		}
	})
}

func TestParseStalePolicy(t *testing.T) {
	for s, want := range map[string]StalePolicy{"warn": StaleWarn, "fail": StaleFail, "": StaleWarn} {
		p, err := ParseStalePolicy(s)
		if err != nil || p != want {
			t.Errorf("%q: got %v, %v", s, p, err)
		}
	}
	if _, err := ParseStalePolicy("ignore"); err == nil {
		t.Error("want error for invalid policy")
	}
}

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

package hash

import "testing"

type config struct {
	Name    string
	Weights map[int]float64
	next    *config
}

func TestHash(t *testing.T) {
	a := config{Name: "a", Weights: map[int]float64{10: 7, 190: 10, 20: 8}}
	b := config{Name: "a", Weights: map[int]float64{20: 8, 10: 7, 190: 10}}
	if Hash(a) != Hash(b) {
		t.Error("equal values should have equal hashes")
	}
	if Hash(&a) != Hash(&b) {
		t.Error("pointers to equal values should have equal hashes")
	}
	c := a
	c.next = &config{Name: "child"}
	if Hash(a) == Hash(c) {
		t.Error("unexported fields should contribute to the hash")
	}
	if Hash("x", "y") == Hash("y", "x") {
		t.Error("argument order should contribute to the hash")
	}
	if len(Hash(a)) != 32 {
		t.Errorf("hash length = %d; want 32", len(Hash(a)))
	}
}

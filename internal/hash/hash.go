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

// Package hash computes stable fingerprints of configuration values
// and cache requests.
package hash

import (
	"fmt"
	"hash/fnv"

	"github.com/davecgh/go-spew/spew"
)

// printer walks unexported fields and prints map keys in sorted order,
// so equal values always produce equal output.
var printer = spew.ConfigState{
	Indent:                  " ",
	SortKeys:                true,
	DisableMethods:          true,
	SpewKeys:                true,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
}

// Hash returns a hex-encoded 128-bit FNV-1a hash of the given objects.
// Objects that hold the same values hash to the same key, even when
// they are reached through different pointers.
func Hash(objects ...interface{}) string {
	h := fnv.New128a()
	for i, o := range objects {
		printer.Fprintf(h, "%d:%#v;", i, o)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

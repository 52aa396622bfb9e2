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

// Command hii computes the land-use driver of the human influence index.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/hii/hiiutil"
)

func main() {
	if err := hiiutil.Root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

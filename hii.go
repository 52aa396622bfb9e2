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

// Package hii derives the land-use driver of the human influence index from a
// land-cover classification, a population density time series, and a static
// validity mask. All operations are pure functions over immutable grids.
package hii

// Version gives the version number.
const Version = "1.0.0"

// DriverVariable is the name of the output variable.
const DriverVariable = "hii_landuse_driver"

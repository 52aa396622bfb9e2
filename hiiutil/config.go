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

package hiiutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"sort"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/ctessum/geom/proj"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/hii"
	"github.com/spf13/cast"
)

// Source describes a dated series of raster files.
type Source struct {
	// Name identifies the source in logs and errors.
	Name string

	// Snapshots maps snapshot dates to file locations.
	Snapshots map[time.Time]string

	// Variable is the NetCDF variable holding the raster values.
	Variable string
}

// Dates returns the snapshot dates in increasing order.
func (s Source) Dates() []time.Time {
	o := make([]time.Time, 0, len(s.Snapshots))
	for t := range s.Snapshots {
		o = append(o, t)
	}
	sort.Slice(o, func(i, j int) bool { return o[i].Before(o[j]) })
	return o
}

// Task holds everything needed to compute the driver for one date.
type Task struct {
	Date time.Time

	LandCover       Source
	LandCoverNoData int
	Population      Source

	// WaterMaskFile and WaterMaskVariable locate the static validity mask.
	WaterMaskFile, WaterMaskVariable string

	// AOI, if not nil, further restricts the valid area.
	AOI geom.Polygonal

	Driver hii.DriverConfig

	// OutputFile is a local path or blob address.
	OutputFile string

	// Overwrite specifies whether an existing output should be replaced.
	// Otherwise a numeric suffix is added to the output name.
	Overwrite bool
}

// TaskConfig unmarshals a viper configuration for a driver task.
// now is used when no task date is configured.
func TaskConfig(cfg *viper.Viper, now time.Time) (*Task, error) {
	return taskConfig(cfg, now, true)
}

// inspectConfig is like TaskConfig but does not require the mask or
// output settings.
func inspectConfig(cfg *viper.Viper, now time.Time) (*Task, error) {
	return taskConfig(cfg, now, false)
}

func taskConfig(cfg *viper.Viper, now time.Time, full bool) (*Task, error) {
	var err error
	t := &Task{
		OutputFile:        os.ExpandEnv(cfg.GetString("OutputFile")),
		Overwrite:         cfg.GetBool("Overwrite"),
		WaterMaskFile:     os.ExpandEnv(cfg.GetString("WaterMask.File")),
		WaterMaskVariable: os.ExpandEnv(cfg.GetString("WaterMask.Variable")),
	}
	if t.Date, err = taskDate(cfg.GetString("TaskDate"), now); err != nil {
		return nil, err
	}
	if t.LandCover, err = sourceConfig("LandCover", cfg); err != nil {
		return nil, err
	}
	if t.Population, err = sourceConfig("Population", cfg); err != nil {
		return nil, err
	}
	if t.LandCoverNoData, err = cast.ToIntE(cfg.Get("LandCover.NoData")); err != nil {
		return nil, fmt.Errorf("hii: parsing LandCover.NoData: %v", err)
	}
	if t.Driver, err = driverConfig(cfg); err != nil {
		return nil, err
	}
	if !full {
		return t, nil
	}
	if t.WaterMaskFile == "" {
		return nil, fmt.Errorf("hii: you need to specify the WaterMask.File configuration variable")
	}
	if t.OutputFile == "" {
		return nil, fmt.Errorf(`hii: you need to specify an output file configuration variable (for example: OutputFile="hii_landuse_driver.nc")`)
	}
	if f := os.ExpandEnv(cfg.GetString("AOIGeoJSON")); f != "" {
		aoiProj, gridProj := os.ExpandEnv(cfg.GetString("AOIProj")), os.ExpandEnv(cfg.GetString("GridProj"))
		if t.AOI, err = parseAOI(f, aoiProj, gridProj); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// taskDate parses a YYYY-MM-DD date, returning the UTC date of now
// if s is empty.
func taskDate(s string, now time.Time) (time.Time, error) {
	if s == "" {
		y, m, d := now.UTC().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(hii.DateFormat, os.ExpandEnv(s))
	if err != nil {
		return t, fmt.Errorf("hii: parsing TaskDate: %v", err)
	}
	return t, nil
}

func sourceConfig(prefix string, cfg *viper.Viper) (Source, error) {
	s := Source{
		Name:      prefix,
		Variable:  os.ExpandEnv(cfg.GetString(prefix + ".Variable")),
		Snapshots: make(map[time.Time]string),
	}
	m, err := GetStringMapString(prefix+".Snapshots", cfg)
	if err != nil {
		return s, err
	}
	if len(m) == 0 {
		return s, fmt.Errorf("%w: no snapshots specified in %s.Snapshots", hii.ErrEmptySeries, prefix)
	}
	for k, v := range m {
		t, err := time.Parse(hii.DateFormat, os.ExpandEnv(k))
		if err != nil {
			return s, fmt.Errorf("hii: parsing %s.Snapshots date: %v", prefix, err)
		}
		s.Snapshots[t] = os.ExpandEnv(v)
	}
	if s.Variable == "" {
		return s, fmt.Errorf("hii: you need to specify the %s.Variable configuration variable", prefix)
	}
	return s, nil
}

func driverConfig(cfg *viper.Viper) (hii.DriverConfig, error) {
	c := hii.DefaultDriverConfig()
	var err error
	if c.PopulationDensityThreshold, err = cast.ToFloat64E(cfg.Get("PopulationDensityThreshold")); err != nil {
		return c, fmt.Errorf("hii: parsing PopulationDensityThreshold: %v", err)
	}
	if c.Scale, err = cast.ToFloat64E(cfg.Get("Scale")); err != nil {
		return c, fmt.Errorf("hii: parsing Scale: %v", err)
	}
	if !(c.Scale > 0) {
		return c, fmt.Errorf("hii: Scale=%g but should be >0", c.Scale)
	}
	for _, v := range []struct {
		name string
		d    *time.Duration
	}{
		{"LandCover.MaxAgeYears", &c.LandCoverMaxAge},
		{"Population.MaxAgeYears", &c.PopulationMaxAge},
	} {
		years, err := cast.ToFloat64E(cfg.Get(v.name))
		if err != nil {
			return c, fmt.Errorf("hii: parsing %s: %v", v.name, err)
		}
		*v.d = hii.YearsToDuration(years)
	}
	if c.StalePolicy, err = hii.ParseStalePolicy(cfg.GetString("StalePolicy")); err != nil {
		return c, err
	}
	if f := os.ExpandEnv(cfg.GetString("WeightTableFile")); f != "" {
		c.Weights, c.DefaultWeight, err = LoadWeightTables(f)
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

// weightFile is the TOML layout of a weight table file. Weights are left
// untyped so that integer and floating point values are both accepted.
type weightFile struct {
	DefaultWeight interface{}   `toml:"default_weight"`
	Altered       []weightEntry `toml:"altered_landcover"`
	Natural       []weightEntry `toml:"natural_landcover"`
}

type weightEntry struct {
	Category string      `toml:"lc_category"`
	Class    int         `toml:"lc_class"`
	Weight   interface{} `toml:"weight"`
}

func classWeights(table string, entries []weightEntry) ([]hii.ClassWeight, error) {
	out := make([]hii.ClassWeight, len(entries))
	for i, e := range entries {
		w, err := cast.ToFloat64E(e.Weight)
		if err != nil {
			return nil, fmt.Errorf("%s class %d: invalid weight: %v", table, e.Class, err)
		}
		out[i] = hii.ClassWeight{Category: e.Category, Class: e.Class, Weight: w}
	}
	return out, nil
}

// LoadWeightTables reads altered and natural weight tables from a TOML
// file with [[altered_landcover]] and [[natural_landcover]] arrays of
// tables holding lc_class, lc_category and weight keys.
func LoadWeightTables(path string) (*hii.WeightTables, float64, error) {
	var f weightFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, 0, fmt.Errorf("hii: reading weight table file: %v", err)
	}
	var def float64
	if f.DefaultWeight != nil {
		var err error
		if def, err = cast.ToFloat64E(f.DefaultWeight); err != nil {
			return nil, 0, fmt.Errorf("hii: reading weight table file %s: invalid default_weight: %v", path, err)
		}
	}
	altered, err := classWeights("altered_landcover", f.Altered)
	if err != nil {
		return nil, 0, fmt.Errorf("hii: reading weight table file %s: %v", path, err)
	}
	natural, err := classWeights("natural_landcover", f.Natural)
	if err != nil {
		return nil, 0, fmt.Errorf("hii: reading weight table file %s: %v", path, err)
	}
	w, err := hii.NewWeightTables(altered, natural)
	if err != nil {
		return nil, 0, fmt.Errorf("hii: reading weight table file %s: %w", path, err)
	}
	return w, def, nil
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument or environment variable.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("hii: parsing %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("hii: invalid type for %s: %#v", varName, i)
	}
}

// parseAOI returns the area of interest represented by the given
// GeoJSON file. If aoiProj and gridProj are both set, the polygons
// are transformed from aoiProj to gridProj.
func parseAOI(file, aoiProj, gridProj string) (geom.Polygonal, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("hii: reading AOIGeoJSON file: %v", err)
	}
	j, err := geojson.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("hii: decoding AOIGeoJSON: %v", err)
	}
	var aoi geom.Polygonal
	switch g := j.(type) {
	case geom.Polygon:
		aoi = g
	case geom.MultiPolygon:
		aoi = g
	default:
		return nil, fmt.Errorf("hii: invalid AOI geometry type %T", j)
	}
	if aoiProj == "" || gridProj == "" {
		return aoi, nil
	}
	src, err := proj.Parse(aoiProj)
	if err != nil {
		return nil, fmt.Errorf("hii: parsing AOIProj: %v", err)
	}
	dst, err := proj.Parse(gridProj)
	if err != nil {
		return nil, fmt.Errorf("hii: parsing GridProj: %v", err)
	}
	ct, err := src.NewTransform(dst)
	if err != nil {
		return nil, fmt.Errorf("hii: creating AOI transform: %v", err)
	}
	tg, err := aoi.Transform(ct)
	if err != nil {
		return nil, fmt.Errorf("hii: transforming AOI: %v", err)
	}
	return tg.(geom.Polygonal), nil
}

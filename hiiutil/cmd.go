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

// Package hiiutil contains the command-line interface and configuration
// handling for computing the land-use driver of the human influence index.
package hiiutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/hii"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to HII.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "LogLevel",
			usage: `
              LogLevel specifies the minimum severity of log messages:
              debug, info, warning, or error.`,
			defaultVal: "info",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "TaskDate",
			usage: `
              TaskDate is the date (YYYY-MM-DD) to compute the driver for.
              The default is the current UTC date.`,
			shorthand:  "d",
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "LandCover.Snapshots",
			usage: `
              LandCover.Snapshots maps the dates (YYYY-MM-DD) of land-cover
              class rasters to their locations. Locations can be local paths,
              http(s) URLs, or blob storage addresses (gs://, s3://, file://).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "LandCover.Variable",
			usage: `
              LandCover.Variable is the NetCDF variable holding land-cover classes.`,
			defaultVal: "lccs_class",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "LandCover.NoData",
			usage: `
              LandCover.NoData is the class code used for cells with no
              land-cover information.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "LandCover.MaxAgeYears",
			usage: `
              LandCover.MaxAgeYears is the maximum age of the most recent
              land-cover snapshot before it is considered stale. Values <= 0
              disable the check.`,
			defaultVal: 3.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Population.Snapshots",
			usage: `
              Population.Snapshots maps the dates (YYYY-MM-DD) of population
              density rasters [people/km²] to their locations.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Population.Variable",
			usage: `
              Population.Variable is the NetCDF variable holding population density.`,
			defaultVal: "population_density",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "Population.MaxAgeYears",
			usage: `
              Population.MaxAgeYears is the maximum age of the most recent
              population snapshot before it is considered stale.`,
			defaultVal: 5.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "WaterMask.File",
			usage: `
              WaterMask.File is the location of the static raster
              whose non-zero cells are land.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WaterMask.Variable",
			usage: `
              WaterMask.Variable is the NetCDF variable holding the water mask.`,
			defaultVal: "land",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AOIGeoJSON",
			usage: `
              AOIGeoJSON optionally gives the path to a GeoJSON polygon. Cells
              whose centers are outside of it are excluded from the output.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AOIProj",
			usage: `
              AOIProj gives the projection of AOIGeoJSON in Proj4 format. If
              it and GridProj are set, the AOI is transformed to GridProj.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GridProj",
			usage: `
              GridProj gives the projection of the input rasters in Proj4 format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "PopulationDensityThreshold",
			usage: `
              PopulationDensityThreshold is the population density at or above
              which natural land-cover classes count as human influence.`,
			defaultVal: 1.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Scale",
			usage: `
              Scale multiplies weights before they are rounded to integers.`,
			defaultVal: 100.0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "WeightTableFile",
			usage: `
              WeightTableFile optionally gives the path to a TOML file holding
              [[altered_landcover]] and [[natural_landcover]] weight tables.
              The built-in ESA CCI tables are used if it is empty.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "StalePolicy",
			usage: `
              StalePolicy specifies what happens when an input is older than
              its maximum age: "warn" logs a warning and continues, and "fail"
              stops with an error.`,
			defaultVal: "warn",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), inspectCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the local path or blob storage address the
              driver raster is written to.`,
			shorthand:  "o",
			defaultVal: "hii_landuse_driver.nc",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Overwrite",
			usage: `
              Overwrite specifies whether an existing output file should be
              replaced. Otherwise a numeric suffix is added to the file name.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("HII")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case int:
				set.IntP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string]string:
				b := bytes.NewBuffer(nil)
				json.NewEncoder(b).Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}

	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(inspectCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("hii: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// newLogger returns a logger writing to the command's error output at
// the configured level, tagged with a new run identifier.
func newLogger(cmd *cobra.Command) (*logrus.Entry, string, error) {
	l := logrus.New()
	l.Out = cmd.OutOrStderr()
	level, err := logrus.ParseLevel(Cfg.GetString("LogLevel"))
	if err != nil {
		return nil, "", fmt.Errorf("hii: parsing LogLevel: %v", err)
	}
	l.Level = level
	id := uuid.New().String()
	return l.WithField("run_id", id), id, nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "hii",
	Short: "Land-use driver of the human influence index.",
	Long: `hii computes the land-use driver of the human influence index from
land-cover class rasters, population density rasters, and a water mask.
Use the subcommands specified below to access the functionality.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'HII_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of HII.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("HII v%s\n", hii.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute the land-use driver.",
	Long: `run computes the land-use driver for the task date and writes it
to OutputFile as an integer NetCDF raster.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, id, err := newLogger(cmd)
		if err != nil {
			return err
		}
		task, err := TaskConfig(Cfg, time.Now())
		if err != nil {
			return err
		}
		ctx := context.Background()
		dest, err := Run(ctx, task, id, log)
		if err != nil {
			return err
		}
		cmd.Printf("wrote %s\n", dest)
		return nil
	},
	DisableAutoGenTag: true,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report the snapshots selected for the task date.",
	Long: `inspect reports, for each input series, the snapshots available,
the snapshot selected for the task date, and whether it is stale. The
driver is not computed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, _, err := newLogger(cmd)
		if err != nil {
			return err
		}
		task, err := inspectConfig(Cfg, time.Now())
		if err != nil {
			return err
		}
		return Inspect(context.Background(), cmd.OutOrStdout(), task, log)
	},
	DisableAutoGenTag: true,
}

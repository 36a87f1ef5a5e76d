/*
Copyright © 2019 the LandData authors.
This file is part of LandData.

LandData is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

LandData is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with LandData.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package landdatautil holds the command-line interface, configuration
// handling and run driver for LandData.
package landdatautil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/landdata"
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
	// Options are the configuration options available to LandData.
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
			name: "InputDir",
			usage: `
              InputDir is the directory that relative input file paths are
              resolved against. It can include environment variables.`,
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputDir",
			usage: `
              OutputDir is the directory the output tables are written to.
              It can include environment variables.`,
			shorthand:  "o",
			defaultVal: ".",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. It can include
              environment variables. If LogFile is left blank, the logfile will be
              saved in OutputDir as landdata.log.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Diagnostics",
			usage: `
              Diagnostics enables per-cell warnings and writes the diagnostic
              rasters to diagnostics.nc in OutputDir.`,
			shorthand:  "d",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.NLat",
			usage: `
              Grid.NLat is the number of rows of the working grid.`,
			defaultVal: landdata.WorkingGrid.NLat,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Grid.NLon",
			usage: `
              Grid.NLon is the number of columns of the working grid.`,
			defaultVal: landdata.WorkingGrid.NLon,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cover.NLat",
			usage: `
              Cover.NLat is the number of rows of the coarse land-cover grid.
              Each coarse cell must cover a whole number of working-grid cells.`,
			defaultVal: 360,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Cover.NLon",
			usage: `
              Cover.NLon is the number of columns of the coarse land-cover grid.`,
			defaultVal: 720,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ReferenceYear",
			usage: `
              ReferenceYear is the year whose statistics the crop aggregates are
              recalibrated to. 0 disables recalibration.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AveragingWindow",
			usage: `
              AveragingWindow is the number of years of reference statistics
              averaged around ReferenceYear.`,
			defaultVal: 5,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ZeroTolerance",
			usage: `
              ZeroTolerance is the rounding tolerance in km² below which residual
              areas are set to zero.`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "MarginTolerance",
			usage: `
              MarginTolerance is the largest difference in km² between the two
              land-area sources in a cell that is not counted as a disagreement.`,
			defaultVal: 1e-6,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "AreaDenominatorMin",
			usage: `
              AreaDenominatorMin is the smallest aggregate harvested area in km²
              that recalibration divides by.`,
			defaultVal: 1e-4,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ProductionDenominatorMin",
			usage: `
              ProductionDenominatorMin is the smallest aggregate production in
              tonnes that recalibration divides by.`,
			defaultVal: 0.1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Seed",
			usage: `
              Seed initializes the order in which coarse land cover is
              distributed over working-grid cells.`,
			defaultVal: 1,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OrderCacheSize",
			usage: `
              OrderCacheSize is the number of distribution orders kept in memory.`,
			defaultVal: 1000,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ScaleCoverToCapacity",
			usage: `
              If ScaleCoverToCapacity is true, each coarse land-cover vector is
              scaled to the reference-vegetation area available in its cells.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "GrainSector",
			usage: `
              GrainSector is the use sector code of grain crops.`,
			defaultVal: 3,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LivestockSectors",
			usage: `
              LivestockSectors are the use sector codes whose rent is
              distributed by pasture area.`,
			defaultVal: []int{9, 11, 12},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ForestSector",
			usage: `
              ForestSector is the use sector code of forestry.`,
			defaultVal: 13,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "ForestClasses",
			usage: `
              ForestClasses are the potential vegetation classes that count as
              forest.`,
			defaultVal: []int{1, 2, 3, 4, 5, 6, 7, 8},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LandUseYear",
			usage: `
              LandUseYear is the year of the land-use rasters. It labels the
              land-type area table.`,
			defaultVal: 2010,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "EntityFile",
			usage: `
              EntityFile is the path to a TOML file holding the country alias and
              land-rent share donor tables. If it is blank, the built-in tables
              are used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "LegacyZones",
			usage: `
              LegacyZones is the number of legacy agro-ecological zones in the
              legacy land rent table.`,
			defaultVal: 18,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.Countries",
			usage: `
              Tables.Countries is the path to the country table.`,
			defaultVal: "countries.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.Regions",
			usage: `
              Tables.Regions is the path to the economic region table.`,
			defaultVal: "regions.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.LandRentRegions",
			usage: `
              Tables.LandRentRegions is the path to the land-rent region table.`,
			defaultVal: "land_rent_regions.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.GLUs",
			usage: `
              Tables.GLUs is the path to the GLU table. If it is blank, GLU codes
              are not checked.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.UseSectors",
			usage: `
              Tables.UseSectors is the path to the land-rent use sector table.`,
			defaultVal: "use_sectors.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.VegClasses",
			usage: `
              Tables.VegClasses is the path to the potential vegetation class table.`,
			defaultVal: "veg_classes.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.Crops",
			usage: `
              Tables.Crops is the path to the crop table.`,
			defaultVal: "crops.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.LegacyRent",
			usage: `
              Tables.LegacyRent is the path to the legacy land rent table.`,
			defaultVal: "legacy_rent.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.ProducerPrices",
			usage: `
              Tables.ProducerPrices is the path to the producer price table.`,
			defaultVal: "producer_prices.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.ReferenceStats",
			usage: `
              Tables.ReferenceStats is the path to the reference harvested area and
              production statistics, in .csv or .xlsx format. It is required
              if ReferenceYear is not 0.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.Cover",
			usage: `
              Tables.Cover is the path to the coarse land-cover table. If it is
              blank, the potential vegetation class of each cell is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Tables.VegCarbon",
			usage: `
              Tables.VegCarbon is the path to the soil and vegetation carbon density
              table (kg C/m²) by potential vegetation class. If it is blank, no
              carbon density table is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.Country",
			usage: `
              Inputs.Country is the path to the country code raster.`,
			defaultVal: "country.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.LandAreaA",
			usage: `
              Inputs.LandAreaA is the path to the crop-side land area raster (km²).`,
			defaultVal: "land_area_a.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.LandAreaB",
			usage: `
              Inputs.LandAreaB is the path to the land-use-side land area raster (km²).`,
			defaultVal: "land_area_b.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.CellAreaB",
			usage: `
              Inputs.CellAreaB is the path to the land-use-side cell area raster (km²).
              If it is blank, the spherical cell area of the working grid is used.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.PotVeg",
			usage: `
              Inputs.PotVeg is the path to the potential vegetation raster.`,
			defaultVal: "potveg.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.GLUNew",
			usage: `
              Inputs.GLUNew is the path to the GLU raster.`,
			defaultVal: "glu.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.GLUOrig",
			usage: `
              Inputs.GLUOrig is the path to the legacy zone raster.`,
			defaultVal: "glu_orig.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.Protected",
			usage: `
              Inputs.Protected is the path to the protection class raster. If it
              is blank, all land is unprotected.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.Cropland",
			usage: `
              Inputs.Cropland is the path to the cropland area raster (km²).`,
			defaultVal: "cropland.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.Pasture",
			usage: `
              Inputs.Pasture is the path to the pasture area raster (km²).`,
			defaultVal: "pasture.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.Urban",
			usage: `
              Inputs.Urban is the path to the urban area raster (km²).`,
			defaultVal: "urban.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.LandUseBand",
			usage: `
              Inputs.LandUseBand is the band (for example the year index) read from
              multi-band land-use rasters.`,
			defaultVal: 0,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.CroplandDetails",
			usage: `
              Inputs.CroplandDetails maps the names of detailed cropland classes
              (for example irrigated cropland) to the paths of their area rasters.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.PastureDetails",
			usage: `
              Inputs.PastureDetails maps the names of detailed pasture classes
              to the paths of their area rasters.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.CropYield",
			usage: `
              Inputs.CropYield is the path to the per-crop yield rasters (t/km²).
              [CROP] is replaced by the crop name.`,
			defaultVal: "crops/[CROP]_yield.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.CropHarvestedArea",
			usage: `
              Inputs.CropHarvestedArea is the path to the per-crop harvested area
              rasters (km²). [CROP] is replaced by the crop name.`,
			defaultVal: "crops/[CROP]_harvested_area.bil",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.IrrigatedArea",
			usage: `
              Inputs.IrrigatedArea maps crop names to the paths of irrigated harvested
              area rasters (ha). Crops without a raster have no irrigated area.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.RainfedArea",
			usage: `
              Inputs.RainfedArea maps crop names to the paths of rainfed harvested
              area rasters (ha).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.BlueWater",
			usage: `
              Inputs.BlueWater maps crop names to the paths of blue water footprint
              rasters (mm over the whole cell).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.GreenWater",
			usage: `
              Inputs.GreenWater maps crop names to the paths of green water footprint
              rasters (mm over the whole cell).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.GrayWater",
			usage: `
              Inputs.GrayWater maps crop names to the paths of gray water footprint
              rasters (mm over the whole cell).`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.BILType",
			usage: `
              Inputs.BILType is the data type of .bil rasters: float32, int32,
              int16 or uint8.`,
			defaultVal: "float32",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.BILNodata",
			usage: `
              Inputs.BILNodata is the missing value of .bil rasters.`,
			defaultVal: float64(landdata.Nodata),
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Inputs.BigEndian",
			usage: `
              If Inputs.BigEndian is true, .bil rasters are big-endian.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("LANDDATA")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case []int:
				if option.shorthand == "" {
					set.IntSlice(option.name, option.defaultVal.([]int), option.usage)
				} else {
					set.IntSliceP(option.name, option.shorthand, option.defaultVal.([]int), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("landdata: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "landdata",
	Short: "A land data system for economic land-use models.",
	Long: `LandData reconciles global gridded land, crop and vegetation data with
country, region and land-rent tables and writes harvested area, production,
land rent and land-type area by country and geographic land unit (GLU).

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'LANDDATA_var' where 'var' is the
name of the variable to be set. Path variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of LandData.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("LandData v%s\n", landdata.Version)
	},
	DisableAutoGenTag: true,
}

// runCmd runs the full pipeline.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the land data tables.",
	Long: `run reads the gridded inputs and master tables, runs every processing
stage and writes the output tables to OutputDir.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer removeDownloads()
		g, coarse, err := GridConfig(Cfg)
		if err != nil {
			return err
		}
		cfg, err := PipelineConfig(Cfg)
		if err != nil {
			return err
		}
		files, err := InputFilesConfig(Cfg)
		if err != nil {
			return err
		}
		files.CoverGrid = coarse
		outputDir, err := checkOutputDir(Cfg.GetString("OutputDir"))
		if err != nil {
			return err
		}
		return Run(context.TODO(), cmd, checkLogFile(Cfg.GetString("LogFile"), outputDir),
			outputDir, g, cfg, files)
	},
	DisableAutoGenTag: true,
}

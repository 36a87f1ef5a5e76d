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

package landdatautil

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/landdata"
	"github.com/spatialmodel/landdata/rasterio"
	"github.com/spf13/cast"
)

// InputFiles holds the locations of the input tables and rasters.
// Paths are local or http(s) URLs; remote files are downloaded when they
// are loaded.
type InputFiles struct {
	Countries, Regions, LandRentRegions, GLUs, UseSectors, VegClasses, Crops string
	LegacyRent, ProducerPrices, ReferenceStats, Cover, VegCarbon             string

	// LegacyZones is the number of zones in the legacy rent table.
	LegacyZones int

	// CoverGrid is the coarse grid of the land-cover table.
	CoverGrid *landdata.Grid

	Country, LandAreaA, LandAreaB, CellAreaB, PotVeg string
	GLUNew, GLUOrig, Protected                       string
	Cropland, Pasture, Urban                         string

	// CroplandDetails and PastureDetails map detailed land-use class
	// names to raster paths.
	CroplandDetails, PastureDetails map[string]string

	// CropYield and CropHarvestedArea are path templates in which [CROP]
	// is replaced by the crop name.
	CropYield, CropHarvestedArea string

	// IrrigatedArea, RainfedArea and Water map crop names to the paths
	// of optional per-crop rasters. Water has one map per water type.
	IrrigatedArea, RainfedArea map[string]string
	Water                      [landdata.NumWaterTypes]map[string]string

	// Raster describes headerless rasters, and LandUseBand is the band
	// read from the land-use rasters.
	Raster      rasterio.Options
	LandUseBand int
}

// cropPath returns template with the crop name filled in.
func cropPath(template string, c landdata.Crop) string {
	return strings.Replace(template, "[CROP]", c.Name, -1)
}

// GridConfig returns the working grid and the coarse land-cover grid
// specified by cfg.
func GridConfig(cfg *viper.Viper) (g, coarse *landdata.Grid, err error) {
	vars := []int{cfg.GetInt("Grid.NLat"), cfg.GetInt("Grid.NLon"), cfg.GetInt("Cover.NLat"), cfg.GetInt("Cover.NLon")}
	varNames := []string{"Grid.NLat", "Grid.NLon", "Cover.NLat", "Cover.NLon"}
	for i, v := range vars {
		if v <= 0 {
			return nil, nil, fmt.Errorf("parsing grid configuration: %s=%d but should be >0", varNames[i], v)
		}
	}
	g, coarse = landdata.NewGrid(vars[0], vars[1]), landdata.NewGrid(vars[2], vars[3])
	if g.NLat%coarse.NLat != 0 || g.NLon%coarse.NLon != 0 {
		return nil, nil, fmt.Errorf("parsing grid configuration: the %dx%d cover grid does not nest in the %dx%d working grid",
			coarse.NLat, coarse.NLon, g.NLat, g.NLon)
	}
	return g, coarse, nil
}

// PipelineConfig unmarshals a viper configuration for a pipeline run.
func PipelineConfig(cfg *viper.Viper) (landdata.Config, error) {
	c := landdata.DefaultConfig()
	c.ReferenceYear = cfg.GetInt("ReferenceYear")
	c.AveragingWindow = cfg.GetInt("AveragingWindow")
	c.ZeroTolerance = cfg.GetFloat64("ZeroTolerance")
	c.MarginTolerance = cfg.GetFloat64("MarginTolerance")
	c.AreaDenominatorMin = cfg.GetFloat64("AreaDenominatorMin")
	c.ProductionDenominatorMin = cfg.GetFloat64("ProductionDenominatorMin")
	c.Seed = int64(cfg.GetInt("Seed"))
	c.OrderCacheSize = cfg.GetInt("OrderCacheSize")
	c.ScaleCoverToCapacity = cfg.GetBool("ScaleCoverToCapacity")
	c.GrainSector = cfg.GetInt("GrainSector")
	c.ForestSector = cfg.GetInt("ForestSector")
	c.LandUseYear = cfg.GetInt("LandUseYear")
	c.Diagnostics = cfg.GetBool("Diagnostics")

	var err error
	if c.LivestockSectors, err = toIntSliceE(cfg.Get("LivestockSectors")); err != nil {
		return c, fmt.Errorf("LivestockSectors: %v", err)
	}
	if c.ForestClasses, err = toIntSliceE(cfg.Get("ForestClasses")); err != nil {
		return c, fmt.Errorf("ForestClasses: %v", err)
	}

	if c.ReferenceYear != 0 && c.AveragingWindow < 1 {
		return c, fmt.Errorf("parsing configuration: AveragingWindow=%d but should be >0", c.AveragingWindow)
	}
	if c.ReferenceYear != 0 && cfg.GetString("Tables.ReferenceStats") == "" {
		return c, fmt.Errorf("parsing configuration: ReferenceYear is %d but Tables.ReferenceStats is not specified",
			c.ReferenceYear)
	}
	for _, s := range []int{c.GrainSector, c.ForestSector} {
		for _, l := range c.LivestockSectors {
			if s == l {
				return c, fmt.Errorf("parsing configuration: use sector %d is both livestock and grain or forest", s)
			}
		}
	}

	if f := inputPath(cfg, "EntityFile"); f != "" {
		r, err := os.Open(maybeDownload(context.TODO(), f, logrus.StandardLogger()))
		if err != nil {
			return c, fmt.Errorf("landdata: opening entity file: %v", err)
		}
		defer r.Close()
		if c.Entities, err = landdata.LoadEntities(r); err != nil {
			return c, err
		}
	}
	return c, nil
}

// InputFilesConfig unmarshals the input file locations from a viper
// configuration. Relative paths are resolved against InputDir.
func InputFilesConfig(cfg *viper.Viper) (*InputFiles, error) {
	f := &InputFiles{
		Countries:         inputPath(cfg, "Tables.Countries"),
		Regions:           inputPath(cfg, "Tables.Regions"),
		LandRentRegions:   inputPath(cfg, "Tables.LandRentRegions"),
		GLUs:              inputPath(cfg, "Tables.GLUs"),
		UseSectors:        inputPath(cfg, "Tables.UseSectors"),
		VegClasses:        inputPath(cfg, "Tables.VegClasses"),
		Crops:             inputPath(cfg, "Tables.Crops"),
		LegacyRent:        inputPath(cfg, "Tables.LegacyRent"),
		ProducerPrices:    inputPath(cfg, "Tables.ProducerPrices"),
		ReferenceStats:    inputPath(cfg, "Tables.ReferenceStats"),
		Cover:             inputPath(cfg, "Tables.Cover"),
		VegCarbon:         inputPath(cfg, "Tables.VegCarbon"),
		LegacyZones:       cfg.GetInt("LegacyZones"),
		Country:           inputPath(cfg, "Inputs.Country"),
		LandAreaA:         inputPath(cfg, "Inputs.LandAreaA"),
		LandAreaB:         inputPath(cfg, "Inputs.LandAreaB"),
		CellAreaB:         inputPath(cfg, "Inputs.CellAreaB"),
		PotVeg:            inputPath(cfg, "Inputs.PotVeg"),
		GLUNew:            inputPath(cfg, "Inputs.GLUNew"),
		GLUOrig:           inputPath(cfg, "Inputs.GLUOrig"),
		Protected:         inputPath(cfg, "Inputs.Protected"),
		Cropland:          inputPath(cfg, "Inputs.Cropland"),
		Pasture:           inputPath(cfg, "Inputs.Pasture"),
		Urban:             inputPath(cfg, "Inputs.Urban"),
		CropYield:         inputPath(cfg, "Inputs.CropYield"),
		CropHarvestedArea: inputPath(cfg, "Inputs.CropHarvestedArea"),
		LandUseBand:       cfg.GetInt("Inputs.LandUseBand"),
	}
	if f.LegacyZones < 1 {
		return nil, fmt.Errorf("parsing configuration: LegacyZones=%d but should be >0", f.LegacyZones)
	}
	for _, v := range []struct {
		name string
		dst  *map[string]string
	}{
		{"Inputs.CroplandDetails", &f.CroplandDetails},
		{"Inputs.PastureDetails", &f.PastureDetails},
		{"Inputs.IrrigatedArea", &f.IrrigatedArea},
		{"Inputs.RainfedArea", &f.RainfedArea},
		{"Inputs.BlueWater", &f.Water[landdata.BlueWater]},
		{"Inputs.GreenWater", &f.Water[landdata.GreenWater]},
		{"Inputs.GrayWater", &f.Water[landdata.GrayWater]},
	} {
		m, err := GetStringMapString(v.name, cfg)
		if err != nil {
			return nil, err
		}
		for k, p := range m {
			m[k] = resolvePath(cfg.GetString("InputDir"), p)
		}
		*v.dst = m
	}

	t, err := rasterio.ParseDataType(cfg.GetString("Inputs.BILType"))
	if err != nil {
		return nil, fmt.Errorf("parsing configuration: Inputs.BILType: %v", err)
	}
	f.Raster = rasterio.Options{Type: t, Nodata: cfg.GetFloat64("Inputs.BILNodata")}
	if cfg.GetBool("Inputs.BigEndian") {
		f.Raster.ByteOrder = binary.BigEndian
	}
	return f, nil
}

// inputPath returns the configured path of the named input.
func inputPath(cfg *viper.Viper, name string) string {
	return resolvePath(cfg.GetString("InputDir"), cfg.GetString(name))
}

// resolvePath expands environment variables in p and joins relative local
// paths to dir. Blank paths stay blank.
func resolvePath(dir, p string) string {
	p = os.ExpandEnv(p)
	if p == "" || isURL(p) || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(os.ExpandEnv(dir), p)
}

// checkOutputDir makes sure that the output directory exists, and
// expands any environment variables.
func checkOutputDir(d string) (string, error) {
	if d == "" {
		return "", fmt.Errorf(`you need to specify an output directory configuration variable (for example: OutputDir="output")`)
	}
	d = os.ExpandEnv(d)
	info, err := os.Stat(d)
	if err != nil {
		return d, fmt.Errorf("landdata: the OutputDir directory doesn't exist: %v", err)
	}
	if !info.IsDir() {
		return d, fmt.Errorf("landdata: OutputDir %s is not a directory", d)
	}
	return d, nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputDir string) string {
	if logFile == "" {
		return filepath.Join(outputDir, "landdata.log")
	}
	return os.ExpandEnv(logFile)
}

// toIntSliceE returns an integer slice from a viper configuration value,
// accounting for the fact that it is a json array if it was set from a
// command line argument.
func toIntSliceE(s interface{}) ([]int, error) {
	if v, ok := s.(string); ok {
		var o []int
		if err := json.Unmarshal([]byte(v), &o); err != nil {
			return nil, err
		}
		return o, nil
	}
	return cast.ToIntSliceE(s)
}

// GetStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func GetStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
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
			return nil, fmt.Errorf("parsing configuration variable %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("invalid type for configuration variable %s: %#v", varName, i)
	}
}

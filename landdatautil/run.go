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
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/landdata"
	"github.com/spatialmodel/landdata/output"
	"github.com/spatialmodel/landdata/rasterio"
	"github.com/spf13/cobra"
)

// Output file names.
const (
	HarvestedAreaFile = "LDS_ag_HA_ha.csv"
	ProductionFile    = "LDS_ag_prod_t.csv"
	RentFile          = "LDS_value_milUSD.csv"
	LandTypeAreaFile  = "LDS_land_types_ha.csv"
	LandTypesFile     = "LDS_land_types.csv"
	CountryGLUFile    = "LDS_ctry_GLU.csv"
	LandRentGLUFile   = "LDS_reglr_GLU.csv"
	RegionGLUFile     = "LDS_reggcam_GLU.csv"
	DiagnosticsFile   = "diagnostics.nc"

	RegionHarvestedAreaFile = "LDS_reggcam_ag_HA_ha.csv"
	RegionProductionFile    = "LDS_reggcam_ag_prod_t.csv"
	RegionRentFile          = "LDS_reggcam_value_USD.csv"
	CarbonFile              = "Pot_veg_carbon_Mg_per_ha.csv"
	IrrigatedFile           = "MIRCA_irrHA_ha.csv"
	RainfedFile             = "MIRCA_rfdHA_ha.csv"
	WaterFile               = "LDS_water_footprint_m3.csv"
)

// Run reads the inputs, runs every pipeline stage and writes the output
// tables to outputDir.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its output and to logFile.
//
// g is the working grid, cfg holds the numerical settings and files
// the input locations.
func Run(ctx context.Context, CobraCommand *cobra.Command, logFile, outputDir string, g *landdata.Grid, cfg landdata.Config, files *InputFiles) error {
	startTime := time.Now()
	defer removeDownloads()

	logfile, err := os.Create(logFile)
	if err != nil {
		return fmt.Errorf("landdata: problem creating log file: %v", err)
	}
	defer logfile.Close()
	logger := logrus.New()
	logger.Out = io.MultiWriter(CobraCommand.OutOrStdout(), logfile)
	if cfg.Diagnostics {
		logger.Level = logrus.DebugLevel
	}
	run := uuid.New().String()
	log := logger.WithField("run", run)
	log.Infof("LandData v%s", landdata.Version)

	t, err := LoadTables(ctx, files, log)
	if err != nil {
		return err
	}
	in, err := LoadInputs(ctx, g, files, t, log)
	if err != nil {
		return err
	}
	p, err := landdata.NewPipeline(g, cfg, in, t, log)
	if err != nil {
		return err
	}
	if err = p.Run(landdata.DefaultStages()...); err != nil {
		return err
	}
	if err = WriteOutputs(outputDir, run, p); err != nil {
		return err
	}
	if cfg.Diagnostics {
		if err = writeDiagnostics(filepath.Join(outputDir, DiagnosticsFile), p); err != nil {
			return err
		}
	}
	log.WithField("duration", time.Since(startTime).String()).Info("LandData run completed")
	return nil
}

// WriteOutputs writes the output tables of a completed pipeline to dir.
// run identifies the run in the file headers. The carbon, irrigation and
// water tables are only written if their optional inputs were given.
func WriteOutputs(dir, run string, p *landdata.Pipeline) error {
	type writer struct {
		file  string
		write func(io.Writer, output.Header) (int, error)
	}
	writers := []writer{
		{HarvestedAreaFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteCropTable(w, h, p, output.HarvestedArea)
		}},
		{ProductionFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteCropTable(w, h, p, output.Production)
		}},
		{RentFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteRentTable(w, h, p)
		}},
		{LandTypeAreaFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteLandTypeArea(w, h, p)
		}},
		{LandTypesFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteLandTypes(w, h, p.LandTypes, p.Tables.VegClasses)
		}},
		{CountryGLUFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteCountryGLU(w, h, p)
		}},
		{LandRentGLUFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteLandRentGLU(w, h, p)
		}},
		{RegionGLUFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteRegionGLU(w, h, p)
		}},
		{RegionHarvestedAreaFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteRegionCropTable(w, h, p, output.HarvestedArea)
		}},
		{RegionProductionFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteRegionCropTable(w, h, p, output.Production)
		}},
		{RegionRentFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteRegionRentTable(w, h, p)
		}},
	}
	if p.Carbon != nil {
		writers = append(writers, writer{CarbonFile, func(w io.Writer, h output.Header) (int, error) {
			return output.WriteCarbonDensity(w, h, p)
		}})
	}
	if it := p.Irrigation; it != nil {
		if it.Irrigated != nil {
			writers = append(writers, writer{IrrigatedFile, func(w io.Writer, h output.Header) (int, error) {
				return output.WriteIrrigationTable(w, h, p, output.Irrigated)
			}})
		}
		if it.Rainfed != nil {
			writers = append(writers, writer{RainfedFile, func(w io.Writer, h output.Header) (int, error) {
				return output.WriteIrrigationTable(w, h, p, output.Rainfed)
			}})
		}
		if it.HasWater() {
			writers = append(writers, writer{WaterFile, func(w io.Writer, h output.Header) (int, error) {
				return output.WriteWaterFootprint(w, h, p)
			}})
		}
	}
	for _, o := range writers {
		f, err := os.Create(filepath.Join(dir, o.file))
		if err != nil {
			return fmt.Errorf("landdata: creating output file: %v", err)
		}
		n, err := o.write(f, output.Header{File: o.file, Run: run})
		if err != nil {
			f.Close()
			return err
		}
		if err = f.Close(); err != nil {
			return err
		}
		p.Log.WithFields(logrus.Fields{"file": o.file, "rows": n}).Info("wrote output table")
	}
	return nil
}

// writeDiagnostics writes the diagnostic rasters of a completed pipeline
// to a netCDF file.
func writeDiagnostics(path string, p *landdata.Pipeline) error {
	rasters := []*landdata.Raster{p.Masks.WaterIce, p.Masks.Disagreement}
	if a := p.Masks.Attribution; a != nil {
		rasters = append(rasters, a.Country, a.LandRentRegion, a.Region, a.CountryGLU, a.RegionGLU)
	}
	if c := p.Cover; c != nil {
		rasters = append(rasters, c.RefVeg, c.Dominant)
		if c.Veg != nil {
			for k := 0; k < c.Veg.Shape[1]; k++ {
				name := fmt.Sprintf("cover_%d_area", k+1)
				if vc := p.Tables.VegClasses; vc != nil {
					name = fmt.Sprintf("cover_%d_area", vc.Codes[k])
				}
				rasters = append(rasters, c.VegRaster(p.Grid, name, k))
			}
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("landdata: creating diagnostics file: %v", err)
	}
	if err = rasterio.WriteNetCDF(f, p.Grid, rasters...); err != nil {
		f.Close()
		return err
	}
	p.Log.WithField("file", path).Info("wrote diagnostic rasters")
	return f.Close()
}

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
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/landdata"
	"github.com/spatialmodel/landdata/rasterio"
	"github.com/spatialmodel/landdata/tables"
	"golang.org/x/sync/errgroup"
)

// readFile opens the file at path, downloading it first if it is remote,
// and passes it to read.
func readFile(ctx context.Context, path, what string, log logrus.FieldLogger, read func(io.Reader) error) error {
	if path == "" {
		return fmt.Errorf("landdata: the %s is not specified", what)
	}
	f, err := os.Open(maybeDownload(ctx, path, log))
	if err != nil {
		return fmt.Errorf("landdata: opening %s: %v", what, err)
	}
	defer f.Close()
	return read(f)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// LoadTables reads the master tables. The GLU, carbon density and
// reference statistics tables are optional.
func LoadTables(ctx context.Context, f *InputFiles, log logrus.FieldLogger) (*landdata.Tables, error) {
	t := new(landdata.Tables)
	codes := []struct {
		path, what string
		dst        **landdata.CodeTable
		optional   bool
	}{
		{f.Regions, "region table", &t.Regions, false},
		{f.LandRentRegions, "land-rent region table", &t.LandRentRegions, false},
		{f.UseSectors, "use sector table", &t.UseSectors, false},
		{f.VegClasses, "vegetation class table", &t.VegClasses, false},
		{f.GLUs, "GLU table", &t.GLUs, true},
	}
	for _, c := range codes {
		if c.path == "" && c.optional {
			continue
		}
		c := c
		err := readFile(ctx, c.path, c.what, log, func(r io.Reader) (err error) {
			*c.dst, err = tables.ReadCodes(r, c.what)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	err := readFile(ctx, f.Countries, "country table", log, func(r io.Reader) (err error) {
		t.Countries, err = tables.ReadCountries(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(ctx, f.Crops, "crop table", log, func(r io.Reader) (err error) {
		t.Crops, err = tables.ReadCrops(r)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(ctx, f.LegacyRent, "legacy rent table", log, func(r io.Reader) (err error) {
		t.LegacyRent, err = tables.ReadLegacyRent(r, t.LandRentRegions, t.UseSectors, f.LegacyZones)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = readFile(ctx, f.ProducerPrices, "producer price table", log, func(r io.Reader) (err error) {
		t.ProducerPrice, err = tables.ReadProducerPrices(r, t.LandRentRegions, t.Crops)
		return err
	})
	if err != nil {
		return nil, err
	}
	if f.VegCarbon != "" {
		err = readFile(ctx, f.VegCarbon, "carbon density table", log, func(r io.Reader) (err error) {
			t.VegCarbon, err = tables.ReadVegCarbon(r, t.VegClasses)
			return err
		})
		if err != nil {
			return nil, err
		}
	}
	if f.ReferenceStats != "" {
		t.Reference, err = tables.ReadReferenceStats(maybeDownload(ctx, f.ReferenceStats, log), t.Countries, t.Crops)
		if err != nil {
			return nil, err
		}
	}
	log.WithFields(logrus.Fields{
		"countries": t.Countries.Len(),
		"crops":     len(t.Crops),
		"reference": t.Reference != nil,
		"carbon":    t.VegCarbon != nil,
	}).Info("read tables")
	return t, nil
}

// LoadInputs reads the gridded inputs onto grid g. Rasters are decoded
// concurrently.
func LoadInputs(ctx context.Context, g *landdata.Grid, f *InputFiles, t *landdata.Tables, log logrus.FieldLogger) (*landdata.Inputs, error) {
	for _, o := range f.cropRasters() {
		for name := range o.files {
			if _, ok := t.CropIndex(name); !ok {
				return nil, fmt.Errorf("landdata: %s raster of unknown crop %q", o.suffix, name)
			}
		}
	}
	in := new(landdata.Inputs)
	eg, ctx := errgroup.WithContext(ctx)
	read := func(dst **landdata.Raster, path, name string, opt rasterio.Options, required bool) {
		if path == "" && !required {
			return
		}
		eg.Go(func() error {
			if path == "" {
				return fmt.Errorf("landdata: the %s raster is not specified", name)
			}
			r, err := rasterio.Read(maybeDownload(ctx, path, log), name, g, opt)
			if err != nil {
				return err
			}
			*dst = r
			log.WithField("file", path).Debugf("read %s", name)
			return nil
		})
	}
	lu := f.Raster
	lu.Band = f.LandUseBand

	read(&in.Country, f.Country, "country", f.Raster, true)
	read(&in.LandAreaA, f.LandAreaA, "land_area_a", f.Raster, true)
	read(&in.LandAreaB, f.LandAreaB, "land_area_b", f.Raster, true)
	read(&in.CellAreaB, f.CellAreaB, "cell_area_b", f.Raster, false)
	read(&in.PotVeg, f.PotVeg, "potveg", f.Raster, false)
	read(&in.GLUNew, f.GLUNew, "glu", f.Raster, true)
	read(&in.GLUOrig, f.GLUOrig, "glu_orig", f.Raster, false)
	read(&in.Protected, f.Protected, "protected", f.Raster, false)
	read(&in.Cropland, f.Cropland, "cropland", lu, false)
	read(&in.Pasture, f.Pasture, "pasture", lu, false)
	read(&in.Urban, f.Urban, "urban", lu, false)

	var details []string
	for _, d := range []struct {
		parent landdata.LandUse
		files  map[string]string
	}{
		{landdata.Cropland, f.CroplandDetails},
		{landdata.Pasture, f.PastureDetails},
	} {
		for _, name := range sortedKeys(d.files) {
			in.Details = append(in.Details, landdata.LandUseDetail{Name: name, Parent: d.parent})
			details = append(details, d.files[name])
		}
	}
	for i := range in.Details {
		read(&in.Details[i].Data, details[i], in.Details[i].Name, lu, true)
	}

	in.Crops = make([]landdata.CropRaster, len(t.Crops))
	for i, c := range t.Crops {
		in.Crops[i].Crop = i
		read(&in.Crops[i].Yield, cropPath(f.CropYield, c), c.Name+"_yield", f.Raster, true)
		read(&in.Crops[i].HarvestedArea, cropPath(f.CropHarvestedArea, c), c.Name+"_harvested_area", f.Raster, true)
	}
	for _, o := range f.cropRasters() {
		for _, name := range sortedKeys(o.files) {
			i, _ := t.CropIndex(name)
			read(o.dst(&in.Crops[i]), o.files[name], name+"_"+o.suffix, f.Raster, true)
		}
	}

	if f.Cover != "" {
		eg.Go(func() error {
			if f.CoverGrid == nil {
				return fmt.Errorf("landdata: the land-cover grid is not specified")
			}
			return readFile(ctx, f.Cover, "land-cover table", log, func(r io.Reader) (err error) {
				in.Cover, err = tables.ReadCover(r, f.CoverGrid, t.VegClasses)
				return err
			})
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"crops":   len(in.Crops),
		"details": len(in.Details),
		"cover":   in.Cover != nil,
	}).Info("read gridded inputs")
	return in, nil
}

// cropRaster is a set of optional per-crop rasters.
type cropRaster struct {
	files  map[string]string
	suffix string
	dst    func(*landdata.CropRaster) **landdata.Raster
}

func (f *InputFiles) cropRasters() []cropRaster {
	o := []cropRaster{
		{f.IrrigatedArea, "irrigated", func(c *landdata.CropRaster) **landdata.Raster { return &c.Irrigated }},
		{f.RainfedArea, "rainfed", func(c *landdata.CropRaster) **landdata.Raster { return &c.Rainfed }},
	}
	for w := range f.Water {
		w := w
		o = append(o, cropRaster{f.Water[w], landdata.WaterType(w).String() + "_water",
			func(c *landdata.CropRaster) **landdata.Raster { return &c.Water[w] }})
	}
	return o
}

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

package landdata

import (
	"fmt"

	"github.com/ctessum/sparse"
)

// LandUse is a land-use class of the land-type categories.
type LandUse int

// Land-use classes. The land-type category code of a class is ten times
// its value.
const (
	Unmanaged LandUse = iota
	Cropland
	Pasture
	UrbanLand
)

func (u LandUse) String() string {
	switch u {
	case Unmanaged:
		return "Unmanaged"
	case Cropland:
		return "Cropland"
	case Pasture:
		return "Pasture"
	case UrbanLand:
		return "UrbanLand"
	default:
		return fmt.Sprintf("LandUse(%d)", int(u))
	}
}

// LandUseDetail is a detailed land-use class (for example irrigated
// cropland) that is part of the cropland or pasture total.
type LandUseDetail struct {
	Name   string
	Parent LandUse
	Data   *Raster // km²
}

// CoverGrid holds coarse-resolution land-cover areas.
type CoverGrid struct {
	Grid *Grid

	// Area [km²] has shape [coarse cells, cover types]. Cover type k
	// corresponds to the k-th vegetation class.
	Area *sparse.DenseArray
}

// CropRaster holds the per-cell statistics of one crop.
type CropRaster struct {
	// Crop is the index of the crop in Tables.Crops.
	Crop int

	Yield         *Raster // t/km²
	HarvestedArea *Raster // km²

	// Irrigated and Rainfed [ha] are optional irrigated and rainfed
	// harvested areas.
	Irrigated, Rainfed *Raster

	// Water [mm over the whole cell] holds the optional annual water
	// footprint of each water type.
	Water [NumWaterTypes]*Raster
}

// Inputs holds the decoded gridded inputs. All rasters are on the
// working grid.
type Inputs struct {
	// Country holds administrative country codes.
	Country *Raster

	// LandAreaA is the land area [km²] of source A (crop side) and
	// LandAreaB that of source B (land-use side).
	LandAreaA, LandAreaB *Raster

	// CellAreaB is the total cell area [km²] of source B. If nil, the
	// spherical cell area of the grid is used.
	CellAreaB *Raster

	PotVeg *Raster

	// GLUNew holds the new GLU codes and GLUOrig the legacy zone codes.
	GLUNew, GLUOrig *Raster

	// Protected holds protection classes (1 protected, 2 not protected).
	// Missing values are treated as not protected.
	Protected *Raster

	// Cropland, Pasture and Urban are land-use areas [km²] of source B.
	Cropland, Pasture, Urban *Raster
	Details                  []LandUseDetail

	Cover *CoverGrid

	Crops []CropRaster
}

func (in *Inputs) check(g *Grid) error {
	if in.Country == nil || in.LandAreaA == nil || in.LandAreaB == nil || in.GLUNew == nil {
		return fmt.Errorf("landdata: the country, land area and GLU rasters are required")
	}
	rs := []*Raster{in.Country, in.LandAreaA, in.LandAreaB, in.CellAreaB, in.PotVeg,
		in.GLUNew, in.GLUOrig, in.Protected, in.Cropland, in.Pasture, in.Urban}
	for _, d := range in.Details {
		if d.Parent != Cropland && d.Parent != Pasture {
			return fmt.Errorf("landdata: land-use detail %s must be part of cropland or pasture", d.Name)
		}
		rs = append(rs, d.Data)
	}
	for _, c := range in.Crops {
		rs = append(rs, c.Yield, c.HarvestedArea, c.Irrigated, c.Rainfed)
		rs = append(rs, c.Water[:]...)
	}
	for _, r := range rs {
		if r == nil {
			continue
		}
		if err := r.checkGrid(g); err != nil {
			return err
		}
	}
	if in.Cover != nil {
		if in.Cover.Area.Shape[0] != in.Cover.Grid.Len() {
			return fmt.Errorf("landdata: cover has %d cells; want %d", in.Cover.Area.Shape[0], in.Cover.Grid.Len())
		}
		if _, err := in.Cover.Grid.Nest(g, 0); err != nil {
			return err
		}
	}
	return nil
}

// cellArea returns the total area of source-B cell i.
func (in *Inputs) cellArea(g *Grid, i int) float64 {
	if in.CellAreaB != nil {
		return in.CellAreaB.valueOr(i, 0)
	}
	return g.CellArea(i)
}

// footprint returns the land-use footprint of cell i.
func (in *Inputs) footprint(i int) *Footprint {
	f := &Footprint{
		Crop:    in.Cropland.valueOr(i, 0),
		Pasture: in.Pasture.valueOr(i, 0),
		Urban:   in.Urban.valueOr(i, 0),
	}
	for _, d := range in.Details {
		v := d.Data.valueOr(i, 0)
		if d.Parent == Cropland {
			f.CropDetail = append(f.CropDetail, v)
		} else {
			f.PastureDetail = append(f.PastureDetail, v)
		}
	}
	return f
}

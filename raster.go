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
	"math"

	"github.com/ctessum/sparse"
)

// Nodata is the default nodata sentinel for rasters.
const Nodata = -9999

// Raster holds one full-grid array decoded from an input source, along with
// the sentinel value that marks cells with no valid observation.
type Raster struct {
	Name   string
	Nodata float64

	// Data has shape [nlat, nlon].
	Data *sparse.DenseArray
}

// NewRaster returns a raster covering g with every cell set to nodata.
func NewRaster(name string, g *Grid, nodata float64) *Raster {
	r := &Raster{
		Name:   name,
		Nodata: nodata,
		Data:   sparse.ZerosDense(g.NLat, g.NLon),
	}
	if nodata != 0 {
		for i := range r.Data.Elements {
			r.Data.Elements[i] = nodata
		}
	}
	return r
}

// RasterFromSlice wraps the row-major values in v as a raster covering g.
func RasterFromSlice(name string, g *Grid, nodata float64, v []float64) (*Raster, error) {
	if len(v) != g.Len() {
		return nil, fmt.Errorf("landdata: raster %s has %d values but the grid has %d cells",
			name, len(v), g.Len())
	}
	d := sparse.ZerosDense(g.NLat, g.NLon)
	copy(d.Elements, v)
	return &Raster{Name: name, Nodata: nodata, Data: d}, nil
}

// Len returns the number of cells in the raster.
func (r *Raster) Len() int { return len(r.Data.Elements) }

// Valid returns whether cell i holds a valid observation. NaN is never
// valid, so a NaN nodata value also works.
func (r *Raster) Valid(i int) bool {
	v := r.Data.Elements[i]
	return v != r.Nodata && !math.IsNaN(v)
}

// At returns the value at cell i.
func (r *Raster) At(i int) float64 { return r.Data.Elements[i] }

// Int returns the value at cell i as an integer code.
func (r *Raster) Int(i int) int { return int(r.Data.Elements[i]) }

// Set sets the value at cell i.
func (r *Raster) Set(i int, v float64) { r.Data.Elements[i] = v }

// valueOr returns the value at cell i, or def if the cell is nodata or r is nil.
func (r *Raster) valueOr(i int, def float64) float64 {
	if r == nil || !r.Valid(i) {
		return def
	}
	return r.Data.Elements[i]
}

// checkGrid returns an error if r does not cover g.
func (r *Raster) checkGrid(g *Grid) error {
	if r.Len() != g.Len() {
		return fmt.Errorf("landdata: raster %s has %d cells; want %d", r.Name, r.Len(), g.Len())
	}
	return nil
}

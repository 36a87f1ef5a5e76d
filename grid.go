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

	"github.com/ctessum/geom"
)

// EarthRadius is the authalic earth radius [m] used for cell areas.
const EarthRadius = 6371007.181

// Grid is a global, regular latitude/longitude raster geometry.
// Cells are numbered row-major starting at the north-west corner,
// with longitude varying fastest.
type Grid struct {
	NLat, NLon int

	// Res is the cell edge length in decimal degrees.
	Res float64

	// West and North give the position of the upper-left corner.
	West, North float64
}

// NewGrid returns a global grid with nlat rows and nlon columns.
func NewGrid(nlat, nlon int) *Grid {
	return &Grid{
		NLat:  nlat,
		NLon:  nlon,
		Res:   180. / float64(nlat),
		West:  -180,
		North: 90,
	}
}

// WorkingGrid is the 5 arc-minute grid that all inputs are resampled to.
var WorkingGrid = NewGrid(2160, 4320)

// Len returns the number of cells in the grid.
func (g *Grid) Len() int { return g.NLat * g.NLon }

// Index returns the cell index at the given row and column.
func (g *Grid) Index(row, col int) int { return row*g.NLon + col }

// RowCol returns the row and column of cell i.
func (g *Grid) RowCol(i int) (row, col int) { return i / g.NLon, i % g.NLon }

// Bounds returns the extent of cell i in decimal degrees.
func (g *Grid) Bounds(i int) *geom.Bounds {
	row, col := g.RowCol(i)
	return &geom.Bounds{
		Min: geom.Point{X: g.West + float64(col)*g.Res, Y: g.North - float64(row+1)*g.Res},
		Max: geom.Point{X: g.West + float64(col+1)*g.Res, Y: g.North - float64(row)*g.Res},
	}
}

// CellArea returns the area of cell i on a sphere [km²].
func (g *Grid) CellArea(i int) float64 {
	b := g.Bounds(i)
	const deg2rad = math.Pi / 180
	dLon := (b.Max.X - b.Min.X) * deg2rad
	r := EarthRadius / 1000
	return r * r * dLon * math.Abs(math.Sin(b.Max.Y*deg2rad)-math.Sin(b.Min.Y*deg2rad))
}

// Nest returns the indices of the cells of fine that lie within
// cell coarse of g, in row-major order. The resolution of fine must
// be an integer multiple of the resolution of g.
func (g *Grid) Nest(fine *Grid, coarse int) ([]int, error) {
	if fine.NLat%g.NLat != 0 || fine.NLon%g.NLon != 0 {
		return nil, fmt.Errorf("landdata: grid %dx%d does not nest in %dx%d",
			fine.NLat, fine.NLon, g.NLat, g.NLon)
	}
	if coarse < 0 || coarse >= g.Len() {
		return nil, fmt.Errorf("landdata: coarse cell %d out of range", coarse)
	}
	sy, sx := fine.NLat/g.NLat, fine.NLon/g.NLon
	row, col := g.RowCol(coarse)
	o := make([]int, 0, sy*sx)
	for j := row * sy; j < (row+1)*sy; j++ {
		for i := col * sx; i < (col+1)*sx; i++ {
			o = append(o, fine.Index(j, i))
		}
	}
	return o, nil
}

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
	"math/rand"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
	"github.com/golang/groupcache/lru"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/landdata/internal/hash"
)

// Footprint is the land-use footprint [km²] of one working-grid cell.
// CropDetail and PastureDetail are parts of Crop and Pasture.
type Footprint struct {
	Crop, Pasture, Urban float64

	CropDetail, PastureDetail []float64
}

// TrimFootprint makes the footprint fit inside the land area and returns
// the remaining reference-vegetation area. A deficit is taken first from
// urban, then from pasture, then from cropland. Detail classes shrink in
// proportion to their parent. A footprint component more than tol below
// zero, or a deficit that the footprint cannot absorb, is a calculation
// error. A cell without land area has an empty footprint.
func TrimFootprint(land float64, f *Footprint, tol float64) (float64, error) {
	if f.Crop < -tol || f.Pasture < -tol || f.Urban < -tol {
		return 0, calcError("landdata: negative land-use footprint: cropland %g, pasture %g, urban %g",
			f.Crop, f.Pasture, f.Urban)
	}
	if land <= 0 {
		f.Crop, f.Pasture, f.Urban = 0, 0, 0
		floats.Scale(0, f.CropDetail)
		floats.Scale(0, f.PastureDetail)
		return 0, nil
	}
	refveg := land - f.Crop - f.Pasture - f.Urban
	if refveg >= 0 {
		if refveg < tol {
			refveg = 0
		}
		return refveg, nil
	}
	deficit := -refveg
	deficit = take(&f.Urban, nil, deficit)
	deficit = take(&f.Pasture, f.PastureDetail, deficit)
	deficit = take(&f.Crop, f.CropDetail, deficit)
	if deficit > tol {
		return 0, calcError("landdata: land-use footprint exceeds land area %g by %g km²", land, deficit)
	}
	return 0, nil
}

// take removes up to deficit from *total, scaling details in proportion,
// and returns the deficit left over.
func take(total *float64, details []float64, deficit float64) float64 {
	if *total <= 0 || deficit <= 0 {
		return deficit
	}
	d := deficit
	if d > *total {
		d = *total
	}
	if len(details) > 0 {
		floats.Scale((*total-d) / *total, details)
	}
	*total -= d
	return deficit - d
}

// Disaggregator distributes coarse land-cover areas over the working-grid
// cells nested in each coarse cell.
type Disaggregator struct {
	seed  int64
	tol   float64
	scale bool
	order *lru.Cache
}

// NewDisaggregator returns a disaggregator. Visiting orders are derived
// from seed and the most recent cacheSize of them are kept.
func NewDisaggregator(seed int64, cacheSize int, tol float64, scale bool) *Disaggregator {
	return &Disaggregator{
		seed:  seed,
		tol:   tol,
		scale: scale,
		order: lru.New(cacheSize),
	}
}

type orderKey struct {
	Seed         int64
	Coarse, Size int
}

// Order returns the visiting order of the n fine cells in coarse cell
// coarse. The order depends only on the seed, the coarse cell and n.
func (d *Disaggregator) Order(coarse, n int) []int {
	key := hash.Hash(orderKey{Seed: d.seed, Coarse: coarse, Size: n})
	if o, ok := d.order.Get(key); ok {
		return o.([]int)
	}
	o := rand.New(rand.NewSource(d.seed + int64(coarse))).Perm(n)
	d.order.Add(key, o)
	return o
}

// CoarseResult is the disaggregation of one coarse cell.
type CoarseResult struct {
	// Area [km²] holds the area of each cover type in each fine cell,
	// cell-major, with Types entries per cell.
	Area  []float64
	Types int

	// Dominant holds, for each fine cell, 1 + the index of the cover type
	// with the largest area, or 0 if the cell received no cover.
	Dominant []int

	// Shortfall [km²] is cover area that did not fit in the cells.
	Shortfall float64
}

// Assigned returns the total cover area assigned to fine cell c.
func (r *CoarseResult) Assigned(c int) float64 {
	return floats.Sum(r.Area[c*r.Types : (c+1)*r.Types])
}

// Disaggregate distributes the cover area vector of coarse cell coarse
// over fine cells with the given capacities [km²]. Cover types are filled
// in order, each one cell by cell in the visiting order, up to each
// cell's remaining capacity. Area that does not fit is returned as the
// shortfall. When scaling is enabled the cover vector is first scaled to
// the total capacity.
func (d *Disaggregator) Disaggregate(coarse int, cover, capacity []float64) (*CoarseResult, error) {
	n, nt := len(capacity), len(cover)
	r := &CoarseResult{
		Area:     make([]float64, n*nt),
		Types:    nt,
		Dominant: make([]int, n),
	}
	for c, cp := range capacity {
		if cp < -d.tol {
			return nil, calcError("landdata: coarse cell %d fine cell %d has negative capacity %g", coarse, c, cp)
		}
	}
	if n == 0 || nt == 0 {
		r.Shortfall = floats.Sum(cover)
		return r, nil
	}
	if d.scale {
		sc, sv := floats.Sum(capacity), floats.Sum(cover)
		if sv > 0 {
			scaled := make([]float64, nt)
			copy(scaled, cover)
			floats.Scale(sc/sv, scaled)
			cover = scaled
		}
	}
	used := make([]float64, n)
	order := d.Order(coarse, n)
	for k, a := range cover {
		if a <= 0 {
			continue
		}
		remain := a
		for _, c := range order {
			if remain <= 0 {
				break
			}
			room := capacity[c] - used[c]
			if room <= d.tol {
				continue
			}
			x := room
			if remain < x {
				x = remain
			}
			r.Area[c*nt+k] += x
			used[c] += x
			remain -= x
			if remain < d.tol {
				remain = 0
			}
		}
		r.Shortfall += remain
	}
	for c := 0; c < n; c++ {
		v := r.Area[c*nt : (c+1)*nt]
		for k, x := range v {
			if x < d.tol {
				if x < -d.tol {
					return nil, calcError("landdata: coarse cell %d fine cell %d has negative cover %g", coarse, c, x)
				}
				v[k] = 0
			}
		}
		if floats.Max(v) > 0 {
			r.Dominant[c] = floats.MaxIdx(v) + 1
		}
	}
	return r, nil
}

// Cover holds the working-grid land cover after disaggregation.
type Cover struct {
	// RefVeg is the reference-vegetation area [km²]: land area not
	// claimed by the trimmed land-use footprint.
	RefVeg *Raster

	// Cropland, Pasture and Urban are the trimmed land-use areas [km²].
	Cropland, Pasture, Urban *Raster
	Details                  []*Raster

	// Dominant holds the dominant vegetation class of each cell, with 0
	// for unknown.
	Dominant *Raster

	// Veg [km²] has shape [cells, cover types] and holds the coarse cover
	// assigned to each cell. It is nil without coarse cover.
	Veg *sparse.DenseArray

	Shortfall float64
}

// VegRaster returns the cover area [km²] of type k on grid g as a raster.
// Cells without land are nodata.
func (cv *Cover) VegRaster(g *Grid, name string, k int) *Raster {
	r := NewRaster(name, g, Nodata)
	for i := range r.Data.Elements {
		if cv.RefVeg.Valid(i) {
			r.Set(i, cv.Veg.Get(i, k))
		}
	}
	return r
}

// isForest reports whether cell i is forest: its dominant class is a
// forest class and it has reference-vegetation area.
func (p *Pipeline) isForest(i int) bool {
	return p.Config.isForestClass(p.Cover.Dominant.Int(i)) && p.Cover.RefVeg.At(i) > 0
}

// Disaggregate trims the land-use footprint of every source-B cell to its
// land area and distributes the coarse land cover over the remaining
// reference-vegetation area. Without coarse cover, or where a coarse cell
// assigns no cover, the dominant class is the cell's potential vegetation
// class.
func Disaggregate() Stage {
	return func(p *Pipeline) error {
		if err := p.require("Disaggregate", p.Masks); err != nil {
			return err
		}
		log := p.stageLog("Disaggregate")
		in := p.Inputs
		tol := p.Config.ZeroTolerance
		cv := &Cover{
			RefVeg:   NewRaster("refveg_area", p.Grid, Nodata),
			Cropland: NewRaster("cropland_area", p.Grid, Nodata),
			Pasture:  NewRaster("pasture_area", p.Grid, Nodata),
			Urban:    NewRaster("urban_area", p.Grid, Nodata),
			Dominant: NewRaster("refveg_thematic", p.Grid, Nodata),
		}
		for _, d := range in.Details {
			cv.Details = append(cv.Details, NewRaster(d.Name, p.Grid, Nodata))
		}
		for _, i := range p.Masks.CellsB {
			f := in.footprint(i)
			refveg, err := TrimFootprint(in.LandAreaB.At(i), f, tol)
			if err != nil {
				return err
			}
			cv.RefVeg.Set(i, refveg)
			cv.Cropland.Set(i, f.Crop)
			cv.Pasture.Set(i, f.Pasture)
			cv.Urban.Set(i, f.Urban)
			var ic, ip int
			for x, d := range in.Details {
				if d.Parent == Cropland {
					cv.Details[x].Set(i, f.CropDetail[ic])
					ic++
				} else {
					cv.Details[x].Set(i, f.PastureDetail[ip])
					ip++
				}
			}
			cv.Dominant.Set(i, float64(p.potVeg(i)))
		}
		if in.Cover != nil {
			if err := p.disaggregateCover(cv, log); err != nil {
				return err
			}
		}
		p.Cover = cv
		return nil
	}
}

// potVeg returns the potential vegetation class of cell i, or 0 if it is
// not a known class.
func (p *Pipeline) potVeg(i int) int {
	v := int(p.Inputs.PotVeg.valueOr(i, 0))
	if p.Tables.VegClasses == nil {
		return 0
	}
	if _, ok := p.Tables.VegClasses.Index(v); !ok {
		return 0
	}
	return v
}

func (p *Pipeline) disaggregateCover(cv *Cover, log logrus.FieldLogger) error {
	cg := p.Inputs.Cover
	nt := cg.Area.Shape[1]
	if vc := p.Tables.VegClasses; vc != nil && vc.Len() != nt {
		return indexError("landdata: cover has %d types but there are %d vegetation classes", nt, vc.Len())
	}
	cv.Veg = sparse.ZerosDense(p.Grid.Len(), nt)
	d := NewDisaggregator(p.Config.Seed, p.Config.OrderCacheSize, p.Config.ZeroTolerance, p.Config.ScaleCoverToCapacity)
	var short stats.Stats
	var cells []int
	var capacity []float64
	for c := 0; c < cg.Grid.Len(); c++ {
		cover := cg.Area.Elements[c*nt : (c+1)*nt]
		if floats.Sum(cover) <= 0 {
			continue
		}
		fine, err := cg.Grid.Nest(p.Grid, c)
		if err != nil {
			return err
		}
		cells, capacity = cells[:0], capacity[:0]
		for _, i := range fine {
			if p.Masks.LandB[i] {
				cells = append(cells, i)
				capacity = append(capacity, cv.RefVeg.At(i))
			}
		}
		r, err := d.Disaggregate(c, cover, capacity)
		if err != nil {
			return err
		}
		for x, i := range cells {
			copy(cv.Veg.Elements[i*nt:(i+1)*nt], r.Area[x*nt:(x+1)*nt])
			if dom := r.Dominant[x]; dom > 0 {
				cv.Dominant.Set(i, float64(p.coverClass(dom-1)))
			}
		}
		if r.Shortfall > 0 {
			short.Update(r.Shortfall)
			cv.Shortfall += r.Shortfall
			if p.Config.Diagnostics {
				log.WithFields(logrus.Fields{"coarse_cell": c, "shortfall": r.Shortfall}).
					Warn("cover area exceeds reference-vegetation capacity")
			}
		}
	}
	f := logrus.Fields{"shortfall": cv.Shortfall, "cells_short": short.Count()}
	if short.Count() > 0 {
		f["mean_shortfall"] = short.Mean()
		f["max_shortfall"] = short.Max()
	}
	log.WithFields(f).Info("disaggregated land cover [km²]")
	return nil
}

// coverClass returns the vegetation class code of cover type k.
func (p *Pipeline) coverClass(k int) int {
	if vc := p.Tables.VegClasses; vc != nil {
		return vc.Codes[k]
	}
	return k + 1
}

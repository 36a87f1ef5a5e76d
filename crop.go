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
	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// KmSq2Ha converts km² to hectares.
const KmSq2Ha = 100

// CropAggregate holds crop statistics aggregated to country × GLU × crop.
// Alias members are aggregated into their target.
type CropAggregate struct {
	// HarvestedArea [ha] and Production [t] are keyed by country, GLU and
	// crop index.
	HarvestedArea, Production *Aggregate

	// Pasture [ha] is keyed by country and GLU, with one inner entry.
	Pasture *Aggregate

	// CountryArea [km²] has shape [countries, crops] and holds the
	// harvested area of cells with both area and yield.
	CountryArea *sparse.DenseArray

	// Discarded [km²] is harvested area without a country, GLU or
	// land-rent region, by crop.
	Discarded []float64

	// Mismatched [km²] is harvested area in cells that lack either area
	// or yield, and MismatchedYield summarizes the yields [t/km²] of cells
	// that have yield but no area.
	Mismatched      []float64
	MismatchedYield []stats.Stats

	Recalibrated bool
}

// cropKey returns the aggregation country and GLU index of source-A cell
// i. ok is false if the cell has no country, no new GLU or no land-rent
// region, or if the GLU does not occur in the country's land cells.
func (p *Pipeline) cropKey(i int) (ti, j int, ok bool, err error) {
	in := p.Inputs
	if !in.Country.Valid(i) || !in.GLUNew.Valid(i) {
		return 0, 0, false, nil
	}
	ci, found := p.Tables.Countries.Index(in.Country.Int(i))
	if !found {
		return 0, 0, false, indexError("landdata: country code %d in cell %d is not in the country table",
			in.Country.Int(i), i)
	}
	if p.Masks.CountryLandRent[ci] == NoMatch {
		return 0, 0, false, nil
	}
	ti = p.resolve(ci)
	glu := in.GLUNew.Int(i)
	j, found = p.Lookup.Country[ti].Index(glu)
	if !found {
		if ai, attr := p.Masks.Attributed(i); attr && p.resolve(ai) == ti {
			return 0, 0, false, indexError("landdata: GLU %d of cell %d is not in the list of country %d",
				glu, i, p.Tables.Countries.Countries[ti].Code)
		}
		return 0, 0, false, nil
	}
	return ti, j, true, nil
}

// AggregateCrops sums harvested area and production of every crop over
// the source-A land cells into country × GLU × crop. Only cells with both
// positive area and positive yield contribute. Pasture area is summed
// into country × GLU.
func AggregateCrops() Stage {
	return func(p *Pipeline) error {
		if err := p.require("AggregateCrops", p.Masks, p.Lookup); err != nil {
			return err
		}
		log := p.stageLog("AggregateCrops")
		nc := len(p.Tables.Crops)
		ca := &CropAggregate{
			HarvestedArea:   NewAggregate(p.Lookup.Country, nc),
			Production:      NewAggregate(p.Lookup.Country, nc),
			Pasture:         NewAggregate(p.Lookup.Country, 1),
			CountryArea:     sparse.ZerosDense(p.Tables.Countries.Len(), nc),
			Discarded:       make([]float64, nc),
			Mismatched:      make([]float64, nc),
			MismatchedYield: make([]stats.Stats, nc),
		}
		for _, cr := range p.Inputs.Crops {
			if cr.Crop < 0 || cr.Crop >= nc {
				return indexError("landdata: crop index %d", cr.Crop)
			}
			k := cr.Crop
			for _, i := range p.Masks.CellsA {
				area := cr.HarvestedArea.valueOr(i, 0)
				yield := cr.Yield.valueOr(i, 0)
				ti, j, ok, err := p.cropKey(i)
				if err != nil {
					return err
				}
				if !ok {
					ca.Discarded[k] += area
					continue
				}
				if area > 0 && yield > 0 {
					ca.HarvestedArea.Add(ti, j, k, KmSq2Ha*area)
					ca.Production.Add(ti, j, k, area*yield)
					ca.CountryArea.AddVal(area, ti, k)
					continue
				}
				ca.Mismatched[k] += area
				if yield > 0 {
					ca.MismatchedYield[k].Update(yield)
				}
			}
			f := logrus.Fields{
				"crop":       p.Tables.Crops[k].Name,
				"discarded":  ca.Discarded[k],
				"mismatched": ca.Mismatched[k],
			}
			if n := ca.MismatchedYield[k].Count(); n > 0 {
				f["mismatched_yield_cells"] = n
				f["mismatched_yield_mean"] = ca.MismatchedYield[k].Mean()
			}
			log.WithFields(f).Info("crop area left out [km²]")
		}

		pasture := p.Inputs.Pasture
		if p.Cover != nil {
			pasture = p.Cover.Pasture
		}
		if pasture != nil {
			for _, i := range p.Masks.CellsA {
				if !pasture.Valid(i) {
					continue
				}
				ti, j, ok, err := p.cropKey(i)
				if err != nil {
					return err
				}
				if ok {
					ca.Pasture.Add(ti, j, 0, KmSq2Ha*pasture.At(i))
				}
			}
		}
		p.Crops = ca
		return nil
	}
}

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
	"github.com/sirupsen/logrus"
)

// Recalibrate rescales the crop aggregates so that each country's
// harvested area and production match the averages of the reference
// statistics over the averaging window centered on ReferenceYear. It does
// nothing if ReferenceYear is zero.
//
// The first pass scales each cell's harvested area by the ratio of the
// reference area to the aggregated area of its country and crop, and sums
// the resulting production by country. The second pass scales each cell's
// yield by the ratio of the reference production to that sum and
// accumulates the outputs, which are cleared first. A cell contributes
// to the outputs only if both its scaled area and scaled yield are
// positive. Countries whose totals are below the configured minimum
// denominators get zero.
//
// Recalibration only depends on the first aggregation and the reference
// statistics, so running it again gives the same result.
func Recalibrate() Stage {
	return func(p *Pipeline) error {
		log := p.stageLog("Recalibrate")
		year := p.Config.ReferenceYear
		if year == 0 {
			log.Info("no reference year; skipping recalibration")
			return nil
		}
		if err := p.require("Recalibrate", p.Masks, p.Lookup, p.Crops); err != nil {
			return err
		}
		ref := p.Tables.Reference
		if ref == nil {
			return fmt.Errorf("landdata: reference year %d requires reference statistics", year)
		}
		window := p.Config.AveragingWindow
		start := year - window/2
		if start < ref.StartYear {
			return indexError("landdata: averaging window starting %d is before the first reference year %d",
				start, ref.StartYear)
		}
		ca := p.Crops
		ca.HarvestedArea.Reset()
		ca.Production.Reset()

		nctry := p.Tables.Countries.Len()
		areaRecal := make([]float64, len(p.Masks.CellsA))
		for _, cr := range p.Inputs.Crops {
			k := cr.Crop
			countryProd := sparse.ZerosDense(nctry)
			hAvg := p.referenceAverages(ref.HarvestedArea, k, start, window)
			pAvg := p.referenceAverages(ref.Production, k, start, window)
			var smallArea, smallProd int

			for x, i := range p.Masks.CellsA {
				areaRecal[x] = 0
				area := cr.HarvestedArea.valueOr(i, 0)
				yield := cr.Yield.valueOr(i, 0)
				if !(area > 0 && yield > 0) {
					continue
				}
				ti, _, ok, err := p.cropKey(i)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				denom := ca.CountryArea.Get(ti, k)
				switch {
				case denom == 0:
				case denom < p.Config.AreaDenominatorMin:
					smallArea++
					p.cellWarning(log.WithField("country", p.Tables.Countries.Countries[ti].Code), i,
						"aggregated harvested area too small to recalibrate")
				default:
					areaRecal[x] = area * hAvg(ti) / denom
					countryProd.AddVal(areaRecal[x]*yield, ti)
				}
			}

			for x, i := range p.Masks.CellsA {
				ar := areaRecal[x]
				if ar <= 0 {
					continue
				}
				yield := cr.Yield.valueOr(i, 0)
				ti, j, _, err := p.cropKey(i)
				if err != nil {
					return err
				}
				var yr float64
				denom := countryProd.Get(ti)
				switch {
				case denom == 0:
				case denom < p.Config.ProductionDenominatorMin:
					smallProd++
					p.cellWarning(log.WithField("country", p.Tables.Countries.Countries[ti].Code), i,
						"recalibrated production too small to recalibrate yield")
				default:
					yr = yield * pAvg(ti) / denom
				}
				if yr > 0 {
					ca.HarvestedArea.Add(ti, j, k, KmSq2Ha*ar)
					ca.Production.Add(ti, j, k, ar*yr)
				}
			}
			log.WithFields(logrus.Fields{
				"crop":             p.Tables.Crops[k].Name,
				"small_area_cells": smallArea,
				"small_prod_cells": smallProd,
			}).Info("recalibrated")
		}
		ca.Recalibrated = true
		return nil
	}
}

// referenceAverages returns a function giving the reference average of d
// for crop k and a country, memoized by country. Alias targets use their
// own values through the year the alias was merged and the sum of their
// members' values afterwards.
func (p *Pipeline) referenceAverages(d *sparse.DenseArray, k, start, window int) func(ti int) float64 {
	memo := make(map[int]float64)
	return func(ti int) float64 {
		if v, ok := memo[ti]; ok {
			return v
		}
		members := p.aliasMembers(ti)
		var through int
		if len(members) > 0 {
			through = p.Config.Entities.Alias(p.Tables.Countries.Countries[members[0]].Code).MergedThrough
		}
		self := []int{ti}
		v := p.Tables.Reference.Average(d, k, start, window, func(year int) []int {
			if len(members) == 0 || year <= through {
				return self
			}
			return members
		})
		memo[ti] = v
		return v
	}
}

// aliasMembers returns the table indices of the countries that aggregate
// into the country at index ti, not counting ti itself.
func (p *Pipeline) aliasMembers(ti int) []int {
	var o []int
	for ci, t := range p.target {
		if t == ti && ci != ti {
			o = append(o, ci)
		}
	}
	return o
}

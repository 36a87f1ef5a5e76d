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
	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

// RentTable holds land rent [million USD] redistributed onto the new GLUs.
type RentTable struct {
	// Rent is keyed by land-rent region, GLU and use sector index.
	Rent *Aggregate

	// Legacy [million USD] has shape [land-rent regions, use sectors] and
	// holds the legacy rent summed over legacy zones.
	Legacy *sparse.DenseArray

	// ValueSum has shape [land-rent regions, use sectors] and holds the
	// production value summed over GLUs.
	ValueSum *sparse.DenseArray

	// HarvestSum [ha] is the harvested area of grain-sector crops with
	// both price and production, and Pasture [ha] the pasture area, both
	// keyed by land-rent region and GLU.
	HarvestSum, Pasture *Aggregate

	// ForestArea [km²] has shape [land-rent regions, legacy zones].
	ForestArea *sparse.DenseArray
}

// useIndex returns the use sector table index of a use sector code.
func (p *Pipeline) useIndex(code int) (int, error) {
	u, ok := p.Tables.UseSectors.Index(code)
	if !ok {
		return 0, indexError("landdata: use sector %d", code)
	}
	return u, nil
}

// RedistributeAgRent distributes the legacy crop and livestock land rent
// of each land-rent region over its GLUs. Crop sectors are weighted by
// production value (production × producer price). Livestock sectors are
// weighted by the grain-sector value scaled by the ratio of pasture area
// to grain harvested area in each GLU. The rent of a region, sector and
// GLU is the region's legacy rent times the GLU's share of the summed
// value. Share-donor recipients use the donor's shares, matched by
// position in the GLU lists, with their own legacy rent.
func RedistributeAgRent() Stage {
	return func(p *Pipeline) error {
		if err := p.require("RedistributeAgRent", p.Lookup, p.Crops); err != nil {
			return err
		}
		log := p.stageLog("RedistributeAgRent")
		t := p.Tables
		l := p.Lookup
		nlr, nuse := t.LandRentRegions.Len(), t.UseSectors.Len()
		rt := &RentTable{
			Rent:       NewAggregate(l.LandRentRegion, nuse),
			Legacy:     sparse.ZerosDense(nlr, nuse),
			ValueSum:   sparse.ZerosDense(nlr, nuse),
			HarvestSum: NewAggregate(l.LandRentRegion, 1),
			Pasture:    NewAggregate(l.LandRentRegion, 1),
		}
		grain, err := p.useIndex(p.Config.GrainSector)
		if err != nil {
			return err
		}

		// regionGLU returns the position of each of a country's GLUs in
		// the list of its land-rent region.
		regionGLU := func(ci, r int) ([]int, error) {
			o := make([]int, len(l.Country[ci]))
			for j, glu := range l.Country[ci] {
				jr, ok := l.LandRentRegion[r].Index(glu)
				if !ok {
					return nil, indexError("landdata: GLU %d of country %d is not in land-rent region %d",
						glu, t.Countries.Countries[ci].Code, t.LandRentRegions.Codes[r])
				}
				o[j] = jr
			}
			return o, nil
		}

		var unmapped int
		for ci := range t.Countries.Countries {
			r := l.CountryLandRent[ci]
			if r == NoMatch {
				unmapped++
				if p.Config.Diagnostics {
					log.WithField("country", t.Countries.Countries[ci].Code).
						Warn("country has no land-rent region; skipping")
				}
				continue
			}
			jrs, err := regionGLU(ci, r)
			if err != nil {
				return err
			}
			for k, crop := range t.Crops {
				u, err := p.useIndex(crop.UseSector)
				if err != nil {
					return err
				}
				price := t.ProducerPrice.Get(r, k)
				for j, jr := range jrs {
					prod := p.Crops.Production.Get(ci, j, k)
					v := prod * price
					rt.Rent.Add(r, jr, u, v)
					rt.ValueSum.AddVal(v, r, u)
					if u == grain && price != 0 && prod != 0 {
						rt.HarvestSum.Add(r, jr, 0, p.Crops.HarvestedArea.Get(ci, j, k))
					}
				}
			}
			for j, jr := range jrs {
				rt.Pasture.Add(r, jr, 0, p.Crops.Pasture.Get(ci, j, 0))
			}
		}

		for r := 0; r < nlr; r++ {
			for u := 0; u < nuse; u++ {
				var s float64
				for z := 0; z < t.LegacyRent.Shape[2]; z++ {
					s += t.LegacyRent.Get(r, u, z)
				}
				rt.Legacy.Set(s, r, u)
			}
		}

		for _, code := range p.Config.LivestockSectors {
			u, err := p.useIndex(code)
			if err != nil {
				return err
			}
			for r := 0; r < nlr; r++ {
				for jr := range l.LandRentRegion[r] {
					var v float64
					if hs := rt.HarvestSum.Get(r, jr, 0); hs != 0 {
						v = rt.Rent.Get(r, jr, grain) * rt.Pasture.Get(r, jr, 0) / hs
					}
					rt.Rent.Set(r, jr, u, v)
					rt.ValueSum.AddVal(v, r, u)
				}
			}
		}

		if err := p.finalizeRent(rt, log); err != nil {
			return err
		}
		log.WithFields(logrus.Fields{
			"legacy_total": rt.Legacy.Sum(),
			"new_total":    rt.Rent.Sum(),
			"unmapped":     unmapped,
		}).Info("redistributed agricultural land rent [million USD]")
		p.Rent = rt
		return nil
	}
}

// finalizeRent turns production values into rent. Donor shares are taken
// from the values before any region is finalized.
func (p *Pipeline) finalizeRent(rt *RentTable, log logrus.FieldLogger) error {
	t := p.Tables
	l := p.Lookup
	values := rt.Rent.Copy()
	for r := 0; r < t.LandRentRegions.Len(); r++ {
		src := r
		if dc, ok := p.Config.Entities.Donor(t.LandRentRegions.Codes[r]); ok {
			d, ok := t.LandRentRegions.Index(dc)
			if !ok {
				return indexError("landdata: share donor land-rent region %d", dc)
			}
			src = d
			if len(l.LandRentRegion[r]) > len(l.LandRentRegion[d]) {
				log.WithFields(logrus.Fields{
					"region": t.LandRentRegions.Codes[r],
					"donor":  dc,
				}).Warn("donor has fewer GLUs than recipient; extra GLUs get no rent")
			}
		}
		for u := 0; u < t.UseSectors.Len(); u++ {
			vs := rt.ValueSum.Get(src, u)
			legacy := rt.Legacy.Get(r, u)
			for jr := range l.LandRentRegion[r] {
				var v float64
				if vs != 0 && jr < len(l.LandRentRegion[src]) {
					v = values.Get(src, jr, u) * legacy / vs
				}
				rt.Rent.Set(r, jr, u, v)
			}
		}
	}
	return nil
}

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

// RedistributeForestRent distributes the legacy forest land rent onto the
// new GLUs by forest area. The rent of each land-rent region and legacy
// zone is divided by the reference-vegetation area of the forest cells
// attributed to it, and each forest cell then adds that rent per area
// times its own area to the GLU it falls in. Legacy rent in a zone without
// forest is logged and dropped. Without a legacy zone raster all forest
// rent is dropped with a warning.
func RedistributeForestRent() Stage {
	return func(p *Pipeline) error {
		if err := p.require("RedistributeForestRent", p.Masks, p.Lookup, p.Cover, p.Rent); err != nil {
			return err
		}
		log := p.stageLog("RedistributeForestRent")
		t := p.Tables
		l := p.Lookup
		f, err := p.useIndex(p.Config.ForestSector)
		if err != nil {
			return err
		}
		nlr, nz := t.LandRentRegions.Len(), t.LegacyRent.Shape[2]
		fa := sparse.ZerosDense(nlr, nz)
		if p.Inputs.GLUOrig == nil {
			var legacy float64
			for r := 0; r < nlr; r++ {
				for z := 0; z < nz; z++ {
					legacy += t.LegacyRent.Get(r, f, z)
				}
			}
			log.WithField("dropped", legacy).Warn("no legacy zone raster; forest land rent is not redistributed")
			p.Rent.ForestArea = fa
			return nil
		}

		type forestCell struct{ cell, region, zone int }
		var cells []forestCell
		for _, i := range p.Masks.CellsB {
			ci, ok := p.Masks.Attributed(i)
			if !ok || !p.isForest(i) || !p.Inputs.GLUOrig.Valid(i) {
				continue
			}
			z := p.Inputs.GLUOrig.Int(i)
			if z < 1 || z > nz {
				return indexError("landdata: legacy zone %d of cell %d is outside 1..%d", z, i, nz)
			}
			r := l.CountryLandRent[ci]
			fa.AddVal(p.Cover.RefVeg.At(i), r, z-1)
			cells = append(cells, forestCell{cell: i, region: r, zone: z - 1})
		}

		rpa := sparse.ZerosDense(nlr, nz)
		var dropped float64
		for r := 0; r < nlr; r++ {
			for z := 0; z < nz; z++ {
				rent := t.LegacyRent.Get(r, f, z)
				area := fa.Get(r, z)
				if area == 0 {
					if rent > 0 {
						dropped += rent
						log.WithFields(logrus.Fields{
							"region": t.LandRentRegions.Codes[r],
							"zone":   z + 1,
							"rent":   rent,
						}).Warn("legacy forest rent without forest area")
					}
					continue
				}
				rpa.Set(rent/area, r, z)
			}
		}

		var newRent float64
		for _, c := range cells {
			glu := p.Inputs.GLUNew.Int(c.cell)
			jr, ok := l.LandRentRegion[c.region].Index(glu)
			if !ok {
				return indexError("landdata: GLU %d of forest cell %d is not in land-rent region %d",
					glu, c.cell, t.LandRentRegions.Codes[c.region])
			}
			v := rpa.Get(c.region, c.zone) * p.Cover.RefVeg.At(c.cell)
			p.Rent.Rent.Add(c.region, jr, f, v)
			newRent += v
		}
		p.Rent.ForestArea = fa
		log.WithFields(logrus.Fields{
			"forest_cells": len(cells),
			"new_total":    newRent,
			"dropped":      dropped,
		}).Info("redistributed forest land rent [million USD]")
		return nil
	}
}

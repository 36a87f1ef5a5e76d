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
	"math"

	"github.com/sirupsen/logrus"
)

// KgMSq2MgHa converts kg/m² to Mg/ha.
const KgMSq2MgHa = 10

// CarbonType is a column of the vegetation carbon table.
type CarbonType int

// Carbon types.
const (
	SoilCarbon CarbonType = iota
	VegetationCarbon
	numCarbonTypes
)

func (c CarbonType) String() string {
	if c == SoilCarbon {
		return "soil_c"
	}
	return "veg_c"
}

// CarbonTable holds reference-vegetation carbon densities keyed by
// country, GLU and land-type category. Only unmanaged categories with a
// known vegetation class have values.
type CarbonTable struct {
	// Area [ha] is the reference-vegetation area the densities are
	// weighted by.
	Area *Aggregate

	// Density [Mg C/ha] holds one aggregate per carbon type, rounded to
	// whole numbers.
	Density [numCarbonTypes]*Aggregate
}

// CarbonDensity computes the reference-vegetation area-weighted soil and
// vegetation carbon densities of every country, GLU and unmanaged
// land-type category. Cells are keyed the same way as in LandTypeAreas,
// and cells whose vegetation class is unknown are left out. The stage
// does nothing if there is no carbon table.
func CarbonDensity() Stage {
	return func(p *Pipeline) error {
		if err := p.require("CarbonDensity", p.Masks, p.Lookup, p.LandTypes, p.Cover); err != nil {
			return err
		}
		log := p.stageLog("CarbonDensity")
		vc := p.Tables.VegCarbon
		if vc == nil {
			log.Debug("no carbon density table")
			return nil
		}
		nt := p.LandTypes.Len()
		ct := &CarbonTable{Area: NewAggregate(p.Lookup.Country, nt)}
		sums := make([]*Aggregate, numCarbonTypes)
		for c := range sums {
			sums[c] = NewAggregate(p.Lookup.Country, nt)
			ct.Density[c] = NewAggregate(p.Lookup.Country, nt)
		}
		var total [numCarbonTypes]float64
		for _, i := range p.Masks.CellsB {
			ti, j, ok, err := p.landKey(i)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			pv, prot := p.landClass(i)
			area := p.Cover.RefVeg.At(i)
			if pv == 0 || area <= 0 {
				continue
			}
			code := pv*vegScale + int(Unmanaged)*10 + prot
			k, ok := p.LandTypes.Index(code)
			if !ok {
				return indexError("landdata: land-type category %d", code)
			}
			v, _ := p.Tables.VegClasses.Index(pv)
			ct.Area.Add(ti, j, k, area*KmSq2Ha)
			for c, s := range sums {
				d := vc.Get(v, c)
				s.Add(ti, j, k, d*area)
				// kg/m² × km² = Gg
				total[c] += d * area
			}
		}
		ct.Area.Each(func(o, j, k int, area float64) {
			for c, s := range sums {
				d := KgMSq2MgHa * s.Get(o, j, k) / (area / KmSq2Ha)
				ct.Density[c].Set(o, j, k, math.Floor(d+0.5))
			}
		})
		log.WithFields(logrus.Fields{
			"soil_c_Pg": total[SoilCarbon] * 1e-6,
			"veg_c_Pg":  total[VegetationCarbon] * 1e-6,
			"area_ha":   ct.Area.Sum(),
		}).Info("reference vegetation carbon")
		p.Carbon = ct
		return nil
	}
}


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

import "github.com/sirupsen/logrus"

// RegionTable holds crop statistics and land rent aggregated to economic
// region × GLU.
type RegionTable struct {
	// HarvestedArea [ha] and Production [t] are keyed by region, GLU and
	// crop index.
	HarvestedArea, Production *Aggregate

	// Rent [million USD] is keyed by region, GLU and use sector index. It
	// is nil if land rent was not computed.
	Rent *Aggregate
}

// AggregateRegions sums the country crop statistics into the economic
// region of each country, leaving out countries without a region. Land
// rent of each land-rent region and GLU goes to the region of the first
// country of the land-rent region, in table order, whose region has the
// GLU.
func AggregateRegions() Stage {
	return func(p *Pipeline) error {
		if err := p.require("AggregateRegions", p.Lookup, p.Crops); err != nil {
			return err
		}
		log := p.stageLog("AggregateRegions")
		l := p.Lookup
		nc := len(p.Tables.Crops)
		rt := &RegionTable{
			HarvestedArea: NewAggregate(l.Region, nc),
			Production:    NewAggregate(l.Region, nc),
		}
		var dropped, droppedRent float64
		var err error
		for _, v := range []struct{ from, to *Aggregate }{
			{p.Crops.HarvestedArea, rt.HarvestedArea},
			{p.Crops.Production, rt.Production},
		} {
			v := v
			v.from.Each(func(ci, j, k int, val float64) {
				if err != nil {
					return
				}
				r := l.CountryRegion[ci]
				if r == NoMatch {
					if v.to == rt.HarvestedArea {
						dropped += val
					}
					return
				}
				glu := l.Country[ci][j]
				jr, ok := l.Region[r].Index(glu)
				if !ok {
					err = indexError("landdata: GLU %d of country %d is not in the list of region %d",
						glu, p.Tables.Countries.Countries[ci].Code, p.Tables.Regions.Codes[r])
					return
				}
				v.to.Add(r, jr, k, val)
			})
			if err != nil {
				return err
			}
		}
		if p.Rent != nil {
			rt.Rent = NewAggregate(l.Region, p.Tables.UseSectors.Len())
			p.Rent.Rent.Each(func(lr, jr, u int, val float64) {
				glu := l.LandRentRegion[lr][jr]
				r, j, ok := p.rentRegion(lr, glu)
				if !ok {
					droppedRent += val
					return
				}
				rt.Rent.Add(r, j, u, val)
			})
		}
		f := logrus.Fields{"harvested_area_ha": rt.HarvestedArea.Sum()}
		if dropped > 0 {
			f["no_region_ha"] = dropped
		}
		if droppedRent > 0 {
			f["no_region_rent_mil_usd"] = droppedRent
			log.WithFields(f).Warn("land rent without an economic region")
		} else {
			log.WithFields(f).Info("aggregated to economic regions")
		}
		p.Regions = rt
		return nil
	}
}

// rentRegion returns the economic region index, and the position of glu
// in its list, that land rent of land-rent region lr and GLU glu is
// aggregated into.
func (p *Pipeline) rentRegion(lr, glu int) (r, j int, ok bool) {
	l := p.Lookup
	for ci, c := range l.CountryLandRent {
		if c != lr || l.CountryRegion[ci] == NoMatch {
			continue
		}
		r = l.CountryRegion[ci]
		if j, ok = l.Region[r].Index(glu); ok {
			return r, j, true
		}
	}
	return 0, 0, false
}

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
	"sort"

	"github.com/sirupsen/logrus"
)

// GLUList is an ascending list of unique GLU codes. The position of a GLU
// in the list is its index in every aggregate keyed by the list's owner.
type GLUList []int

// Index returns the position of glu in the list.
func (l GLUList) Index(glu int) (int, bool) {
	j := sort.SearchInts(l, glu)
	return j, j < len(l) && l[j] == glu
}

// insert adds glu to the list if it is not already present.
func (l *GLUList) insert(glu int) {
	j, ok := l.Index(glu)
	if ok {
		return
	}
	*l = append(*l, 0)
	copy((*l)[j+1:], (*l)[j:])
	(*l)[j] = glu
}

// Lookup holds the GLUs that occur in each country, land-rent region and
// economic region. Lists are indexed by position in the respective table.
type Lookup struct {
	Country, LandRentRegion, Region []GLUList

	// CountryLandRent and CountryRegion hold, for each country, the table
	// index of its land-rent region and economic region, or NoMatch.
	CountryLandRent, CountryRegion []int
}

// BuildLookup builds the country, land-rent region and economic region
// GLU lists from the attributed land cells. A GLU seen in an alias member
// is added to both the member and the alias target. If there is a GLU
// table, every GLU must be in it.
func BuildLookup() Stage {
	return func(p *Pipeline) error {
		if err := p.require("BuildLookup", p.Masks); err != nil {
			return err
		}
		t := p.Tables
		l := &Lookup{
			Country:         make([]GLUList, t.Countries.Len()),
			LandRentRegion:  make([]GLUList, t.LandRentRegions.Len()),
			Region:          make([]GLUList, t.Regions.Len()),
			CountryLandRent: make([]int, t.Countries.Len()),
			CountryRegion:   make([]int, t.Countries.Len()),
		}
		for ci := range t.Countries.Countries {
			l.CountryLandRent[ci], l.CountryRegion[ci] = NoMatch, NoMatch
			if code := p.Masks.CountryLandRent[ci]; code != NoMatch {
				ri, ok := t.LandRentRegions.Index(code)
				if !ok {
					return indexError("landdata: land-rent region %d of country %d",
						code, t.Countries.Countries[ci].Code)
				}
				l.CountryLandRent[ci] = ri
			}
			if code := p.Masks.CountryRegion[ci]; code != NoMatch {
				ri, ok := t.Regions.Index(code)
				if !ok {
					return indexError("landdata: region %d of country %d",
						code, t.Countries.Countries[ci].Code)
				}
				l.CountryRegion[ci] = ri
			}
		}
		for _, i := range p.Masks.CellsB {
			ci, ok := p.Masks.Attributed(i)
			if !ok {
				continue
			}
			glu := p.Inputs.GLUNew.Int(i)
			if t.GLUs != nil {
				if _, ok := t.GLUs.Index(glu); !ok {
					return indexError("landdata: GLU %d in cell %d is not in the GLU table", glu, i)
				}
			}
			l.Country[ci].insert(glu)
			if ti := p.resolve(ci); ti != ci {
				l.Country[ti].insert(glu)
			}
			// Attributed cells always have a land-rent region.
			l.LandRentRegion[l.CountryLandRent[ci]].insert(glu)
			if r := l.CountryRegion[ci]; r != NoMatch {
				l.Region[r].insert(glu)
			}
		}
		if err := l.Check(); err != nil {
			return err
		}
		var nc, nglu int
		for _, c := range l.Country {
			if len(c) > 0 {
				nc++
				nglu += len(c)
			}
		}
		p.stageLog("BuildLookup").WithFields(logrus.Fields{
			"countries":    nc,
			"country_glus": nglu,
		}).Info("built GLU lists")
		p.Lookup = l
		return nil
	}
}

// Check verifies that every list is sorted without duplicates and that
// every GLU in a country's list is also in the lists of the regions the
// country is mapped to.
func (l *Lookup) Check() error {
	for _, lists := range [][]GLUList{l.Country, l.LandRentRegion, l.Region} {
		for k, gl := range lists {
			for j := 1; j < len(gl); j++ {
				if gl[j] <= gl[j-1] {
					return indexError("landdata: GLU list %d is not sorted and unique: %v", k, gl)
				}
			}
		}
	}
	for ci, gl := range l.Country {
		for _, glu := range gl {
			if r := l.CountryLandRent[ci]; r != NoMatch {
				if _, ok := l.LandRentRegion[r].Index(glu); !ok {
					return indexError("landdata: GLU %d of country index %d is missing from land-rent region index %d", glu, ci, r)
				}
			}
			if r := l.CountryRegion[ci]; r != NoMatch {
				if _, ok := l.Region[r].Index(glu); !ok {
					return indexError("landdata: GLU %d of country index %d is missing from region index %d", glu, ci, r)
				}
			}
		}
	}
	return nil
}

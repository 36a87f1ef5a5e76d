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

// Protection classes.
const (
	Protected    = 1
	NotProtected = 2
)

// vegScale is the land-type category multiplier of vegetation classes.
const vegScale = 100

// LandType is a land-type category.
type LandType struct {
	Code int

	// Veg is the potential vegetation class, with 0 for unknown.
	Veg        int
	Use        LandUse
	Protection int
}

// LandTypes is the enumeration of land-type categories.
type LandTypes struct {
	Types []LandType
	index map[int]int
}

// LandTypeCategories returns every combination of vegetation class
// (0 for unknown, then 1..numVeg), land use and protection class, nested
// in that order. Each category's code is veg*100 + use*10 + protection.
func LandTypeCategories(numVeg int) *LandTypes {
	lt := &LandTypes{index: make(map[int]int)}
	for v := 0; v <= numVeg; v++ {
		for u := Unmanaged; u <= UrbanLand; u++ {
			for prot := Protected; prot <= NotProtected; prot++ {
				t := LandType{
					Code:       v*vegScale + int(u)*10 + prot,
					Veg:        v,
					Use:        u,
					Protection: prot,
				}
				lt.index[t.Code] = len(lt.Types)
				lt.Types = append(lt.Types, t)
			}
		}
	}
	return lt
}

// Index returns the position of the category with the given code.
func (lt *LandTypes) Index(code int) (int, bool) {
	i, ok := lt.index[code]
	return i, ok
}

// Len returns the number of categories.
func (lt *LandTypes) Len() int { return len(lt.Types) }

// BuildLandTypes builds the land-type category enumeration from the
// vegetation class table.
func BuildLandTypes() Stage {
	return func(p *Pipeline) error {
		n := 0
		if p.Tables.VegClasses != nil {
			n = p.Tables.VegClasses.Len()
		}
		p.LandTypes = LandTypeCategories(n)
		p.stageLog("BuildLandTypes").WithField("categories", p.LandTypes.Len()).Info("built land types")
		return nil
	}
}

// LandTypeAreas sums, for every attributed source-B cell, the unmanaged,
// cropland, pasture and urban areas after footprint trimming into the
// country × GLU × land-type category table [ha]. The unmanaged area takes
// the cell's potential vegetation class, or 0 if the class is unknown.
// Alias members are summed into their target. Areas are rounded to
// whole hectares.
func LandTypeAreas() Stage {
	return func(p *Pipeline) error {
		if err := p.require("LandTypeAreas", p.Masks, p.Lookup, p.LandTypes, p.Cover); err != nil {
			return err
		}
		log := p.stageLog("LandTypeAreas")
		a := NewAggregate(p.Lookup.Country, p.LandTypes.Len())
		for _, i := range p.Masks.CellsB {
			ti, j, ok, err := p.landKey(i)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			pv, prot := p.landClass(i)
			areas := [...]float64{
				Unmanaged: p.Cover.RefVeg.At(i),
				Cropland:  p.Cover.Cropland.At(i),
				Pasture:   p.Cover.Pasture.At(i),
				UrbanLand: p.Cover.Urban.At(i),
			}
			for u, area := range areas {
				code := pv*vegScale + u*10 + prot
				k, ok := p.LandTypes.Index(code)
				if !ok {
					return indexError("landdata: land-type category %d", code)
				}
				a.Add(ti, j, k, area*KmSq2Ha)
			}
		}
		var total float64
		for _, d := range a.data {
			for x, v := range d.Elements {
				d.Elements[x] = math.Floor(v + 0.5)
				total += d.Elements[x]
			}
		}
		log.WithFields(logrus.Fields{"total_ha": total, "year": p.Config.LandUseYear}).Info("land-type area")
		p.LandTypeArea = a
		return nil
	}
}

// landKey returns the aggregation country and GLU index of source-B cell
// i. ok is false if the cell is not attributed or has no land.
func (p *Pipeline) landKey(i int) (ti, j int, ok bool, err error) {
	ci, ok := p.Masks.Attributed(i)
	if !ok || p.Inputs.LandAreaB.At(i) == 0 {
		return 0, 0, false, nil
	}
	ti = p.resolve(ci)
	glu := p.Inputs.GLUNew.Int(i)
	j, ok = p.Lookup.Country[ti].Index(glu)
	if !ok {
		return 0, 0, false, indexError("landdata: GLU %d of cell %d is not in the list of country %d",
			glu, i, p.Tables.Countries.Countries[ti].Code)
	}
	return ti, j, true, nil
}

// landClass returns the land-type vegetation class and protection class
// of cell i.
func (p *Pipeline) landClass(i int) (veg, prot int) {
	prot = int(p.Inputs.Protected.valueOr(i, NotProtected))
	if prot != Protected {
		prot = NotProtected
	}
	return p.potVeg(i), prot
}

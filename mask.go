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

// CountryGLUFactor combines a country or region code with a GLU code into
// a single identifier: code*CountryGLUFactor + glu.
const CountryGLUFactor = 10000

// SourceLoss holds the land area [km²] of one land-area source and the
// parts of it that other sources do not cover.
type SourceLoss struct {
	Total float64

	// Extra is area not covered by the other land-area source.
	Extra float64

	NewGLU, OrigGLU, PotVeg, Country float64

	// CountryOrGLU is area without a country or a new GLU, which is the
	// area actually left out of country output.
	CountryOrGLU float64
}

func (l *SourceLoss) add(area float64, other, newGLU, origGLU, potveg, country bool) {
	l.Total += area
	if !other {
		l.Extra += area
	}
	if !newGLU {
		l.NewGLU += area
	}
	if !origGLU {
		l.OrigGLU += area
	}
	if !potveg {
		l.PotVeg += area
	}
	if !country {
		l.Country += area
	}
	if !country || !newGLU {
		l.CountryOrGLU += area
	}
}

func (l SourceLoss) fields() logrus.Fields {
	return logrus.Fields{
		"total":          l.Total,
		"extra":          l.Extra,
		"no_new_glu":     l.NewGLU,
		"no_orig_glu":    l.OrigGLU,
		"no_potveg":      l.PotVeg,
		"no_country":     l.Country,
		"no_country_glu": l.CountryOrGLU,
	}
}

// Attribution holds per-cell attribution rasters for diagnostics.
type Attribution struct {
	Country, LandRentRegion, Region *Raster

	// CountryGLU and RegionGLU hold code*CountryGLUFactor + GLU.
	CountryGLU, RegionGLU *Raster
}

// Masks holds the reconciled land-cell sets.
type Masks struct {
	// Per-source validity masks.
	Country, LandA, LandB, PotVeg, GLUNew, GLUOrig []bool

	// CellsA and CellsB are the valid cells of land-area sources A and B.
	// CellsA is the land base of crop processing and CellsB that of
	// land-type and administrative processing.
	CellsA, CellsB []int

	// Attr holds, for each cell, the table index of the administrative
	// country the cell is attributed to, or NoMatch. Only source-B cells
	// with a country, a new GLU and a land-rent region are attributed.
	Attr []int32

	// CountryLandRent and CountryRegion hold the land-rent region and
	// economic region codes that each country's cells are attributed
	// with. Alias members take the codes of their target.
	CountryLandRent, CountryRegion []int

	LossA, LossB SourceLoss

	// WaterIce [km²] is source-B cell area minus land area.
	WaterIce *Raster

	// Disagreement [km²] is source-A minus source-B land area where both
	// are valid, and Disagreements is the number of those cells where the
	// difference is larger than the margin tolerance.
	Disagreement  *Raster
	Disagreements int

	// Unmapped holds, by country code, the source-B land area of cells
	// that have a country and a GLU but no land-rent region.
	Unmapped map[int]float64

	// Attribution is only filled when diagnostics are enabled.
	Attribution *Attribution
}

// ReconcileMasks builds the source masks, the land-cell sets and the
// country attribution of every cell, and logs the area-loss totals.
// A country code that is not in the country table is an index error.
func ReconcileMasks() Stage {
	return func(p *Pipeline) error {
		log := p.stageLog("ReconcileMasks")
		in := p.Inputs
		n := p.Grid.Len()
		m := &Masks{
			Country:      make([]bool, n),
			LandA:        make([]bool, n),
			LandB:        make([]bool, n),
			PotVeg:       make([]bool, n),
			GLUNew:       make([]bool, n),
			GLUOrig:      make([]bool, n),
			Attr:         make([]int32, n),
			WaterIce:     NewRaster("water_ice_area", p.Grid, Nodata),
			Disagreement: NewRaster("sourceA_minus_sourceB_land_area", p.Grid, Nodata),
			Unmapped:     make(map[int]float64),
		}
		m.mapCountries(p)
		if p.Config.Diagnostics {
			m.Attribution = &Attribution{
				Country:        NewRaster("country", p.Grid, Nodata),
				LandRentRegion: NewRaster("land_rent_region", p.Grid, Nodata),
				Region:         NewRaster("region", p.Grid, Nodata),
				CountryGLU:     NewRaster("country_glu", p.Grid, Nodata),
				RegionGLU:      NewRaster("region_glu", p.Grid, Nodata),
			}
		}
		for i := 0; i < n; i++ {
			m.Attr[i] = NoMatch
			m.Country[i] = in.Country.Valid(i)
			m.LandA[i] = in.LandAreaA.Valid(i)
			m.LandB[i] = in.LandAreaB.Valid(i)
			m.PotVeg[i] = in.PotVeg != nil && in.PotVeg.Valid(i)
			m.GLUNew[i] = in.GLUNew.Valid(i)
			m.GLUOrig[i] = in.GLUOrig != nil && in.GLUOrig.Valid(i)

			if m.LandA[i] {
				m.CellsA = append(m.CellsA, i)
				m.LossA.add(in.LandAreaA.At(i), m.LandB[i], m.GLUNew[i], m.GLUOrig[i], m.PotVeg[i], m.Country[i])
			}
			if m.LandB[i] {
				m.CellsB = append(m.CellsB, i)
				m.LossB.add(in.LandAreaB.At(i), m.LandA[i], m.GLUNew[i], m.GLUOrig[i], m.PotVeg[i], m.Country[i])
				if in.CellAreaB == nil || in.CellAreaB.Valid(i) {
					m.WaterIce.Set(i, in.cellArea(p.Grid, i)-in.LandAreaB.At(i))
				}
			}
			if m.LandA[i] && m.LandB[i] {
				d := in.LandAreaA.At(i) - in.LandAreaB.At(i)
				m.Disagreement.Set(i, d)
				if d > p.Config.MarginTolerance || -d > p.Config.MarginTolerance {
					m.Disagreements++
				}
			}
			if !m.LandB[i] || !m.GLUNew[i] || !m.Country[i] {
				continue
			}
			ci, ok := p.Tables.Countries.Index(in.Country.Int(i))
			if !ok {
				return indexError("landdata: country code %d in cell %d is not in the country table",
					in.Country.Int(i), i)
			}
			if m.CountryLandRent[ci] == NoMatch {
				m.Unmapped[p.Tables.Countries.Countries[ci].Code] += in.LandAreaB.At(i)
				p.cellWarning(log, i, "country has no land-rent region; cell left out of country output")
				continue
			}
			m.Attr[i] = int32(ci)
			if a := m.Attribution; a != nil {
				glu := float64(in.GLUNew.Int(i))
				code := float64(p.Tables.Countries.Countries[p.resolve(ci)].Code)
				a.Country.Set(i, code)
				a.CountryGLU.Set(i, code*CountryGLUFactor+glu)
				a.LandRentRegion.Set(i, float64(m.CountryLandRent[ci]))
				if r := m.CountryRegion[ci]; r != NoMatch {
					a.Region.Set(i, float64(r))
					a.RegionGLU.Set(i, float64(r)*CountryGLUFactor+glu)
				}
			}
		}
		log.WithFields(m.LossA.fields()).WithField("source", "A").Info("land area [km²]")
		log.WithFields(m.LossB.fields()).WithField("source", "B").Info("land area [km²]")
		log.WithFields(logrus.Fields{
			"cells_a":       len(m.CellsA),
			"cells_b":       len(m.CellsB),
			"disagreements": m.Disagreements,
			"tolerance":     p.Config.MarginTolerance,
		}).Info("land cells")
		codes := make([]int, 0, len(m.Unmapped))
		for c := range m.Unmapped {
			codes = append(codes, c)
		}
		sort.Ints(codes)
		for _, c := range codes {
			log.WithFields(logrus.Fields{"country": c, "area": m.Unmapped[c]}).
				Warn("land area without a land-rent region")
		}
		p.Masks = m
		return nil
	}
}

// mapCountries sets the land-rent region and region codes that each
// country is attributed with.
func (m *Masks) mapCountries(p *Pipeline) {
	t := p.Tables.Countries
	m.CountryLandRent = make([]int, t.Len())
	m.CountryRegion = make([]int, t.Len())
	for ci := range t.Countries {
		c := t.Countries[p.resolve(ci)]
		m.CountryLandRent[ci] = c.LandRentRegion
		m.CountryRegion[ci] = c.Region
	}
}

// Attributed returns the table index of the country that cell i is
// attributed to.
func (m *Masks) Attributed(i int) (int, bool) {
	a := m.Attr[i]
	return int(a), a != NoMatch
}

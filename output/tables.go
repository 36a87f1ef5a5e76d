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


package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spatialmodel/landdata"
)

// WriteRegionCropTable writes harvested area [ha] or production [t] by
// economic region, GLU and crop, rounded to whole numbers. Like
// WriteCropTable, it only writes entries whose rounded harvested area and
// production are both positive.
func WriteRegionCropTable(w io.Writer, h Header, p *landdata.Pipeline, v CropValue) (int, error) {
	if p.Regions == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: region crop table %s needs region aggregates", h.File)
	}
	desc := "harvested area (ha) by region/GLU/crop"
	if v == Production {
		desc = "production (t) by region/GLU/crop"
	}
	t, err := newTable(w, h, desc, "gcam_reg_code", "glu_code", "SAGE_crop", "value")
	if err != nil {
		return 0, err
	}
	rt := p.Regions
	for r, code := range p.Tables.Regions.Codes {
		for j, glu := range p.Lookup.Region[r] {
			for k, crop := range p.Tables.Crops {
				area := round(rt.HarvestedArea.Get(r, j, k))
				prod := round(rt.Production.Get(r, j, k))
				if area <= 0 || prod <= 0 {
					continue
				}
				val := area
				if v == Production {
					val = prod
				}
				if err := t.row(itoa(code), itoa(glu), crop.Name, strconv.FormatFloat(val, 'f', 0, 64)); err != nil {
					return 0, err
				}
			}
		}
	}
	return t.flush()
}

// WriteRegionRentTable writes land rent [USD] by economic region, GLU and
// use sector, rounded to whole dollars.
func WriteRegionRentTable(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Regions == nil || p.Regions.Rent == nil {
		return 0, fmt.Errorf("output: region rent table %s needs region land rent", h.File)
	}
	t, err := newTable(w, h, "land value (USD) by region/GLU/use",
		"gcam_reg_code", "glu_code", "use_sector", "value")
	if err != nil {
		return 0, err
	}
	reg, use := p.Tables.Regions, p.Tables.UseSectors
	var werr error
	p.Regions.Rent.Each(func(r, j, u int, v float64) {
		v = round(v * 1e6)
		if v <= 0 || werr != nil {
			return
		}
		werr = t.row(itoa(reg.Codes[r]), itoa(p.Lookup.Region[r][j]), use.Name(u),
			strconv.FormatFloat(v, 'f', 0, 64))
	})
	if werr != nil {
		return 0, werr
	}
	return t.flush()
}

// WriteCarbonDensity writes the soil and vegetation carbon density
// [Mg C/ha] of reference vegetation by country, GLU and land-type
// category. Countries without an economic region are left out.
func WriteCarbonDensity(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Carbon == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: carbon table %s needs carbon densities", h.File)
	}
	t, err := newTable(w, h, "ref veg soil and veg carbon density (Mg/ha) for land cells in country X glu X land type",
		"iso", "glu_code", "land_type", "c_type", "value")
	if err != nil {
		return 0, err
	}
	ct := p.Carbon
	for ci, c := range p.Tables.Countries.Countries {
		if p.Lookup.CountryRegion[ci] == landdata.NoMatch {
			continue
		}
		for j, glu := range p.Lookup.Country[ci] {
			for k, lt := range p.LandTypes.Types {
				for ctype, d := range ct.Density {
					v := d.Get(ci, j, k)
					if v <= 0 {
						continue
					}
					err := t.row(c.Abbr, itoa(glu), itoa(lt.Code), landdata.CarbonType(ctype).String(),
						strconv.FormatFloat(v, 'f', 0, 64))
					if err != nil {
						return 0, err
					}
				}
			}
		}
	}
	return t.flush()
}

// IrrigationValue selects the irrigation table to write.
type IrrigationValue int

// Irrigation tables.
const (
	Irrigated IrrigationValue = iota
	Rainfed
)

// WriteIrrigationTable writes irrigated or rainfed harvested area [ha] by
// country, GLU and crop, rounded to whole hectares. Countries without an
// economic region are left out.
func WriteIrrigationTable(w io.Writer, h Header, p *landdata.Pipeline, v IrrigationValue) (int, error) {
	if p.Irrigation == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: irrigation table %s needs irrigation aggregates", h.File)
	}
	a, desc := p.Irrigation.Irrigated, "irrigated harvested area (ha) for land cells in country X glu"
	if v == Rainfed {
		a, desc = p.Irrigation.Rainfed, "rainfed harvested area (ha) for land cells in country X glu"
	}
	t, err := newTable(w, h, desc, "iso", "glu_code", "SAGE_crop", "value")
	if err != nil {
		return 0, err
	}
	if a == nil {
		return t.flush()
	}
	var werr error
	a.Each(func(ci, j, k int, val float64) {
		val = round(val)
		if val <= 0 || werr != nil || p.Lookup.CountryRegion[ci] == landdata.NoMatch {
			return
		}
		werr = t.row(p.Tables.Countries.Countries[ci].Abbr, itoa(p.Lookup.Country[ci][j]),
			p.Tables.Crops[k].Name, strconv.FormatFloat(val, 'f', 0, 64))
	})
	if werr != nil {
		return 0, werr
	}
	return t.flush()
}

// WriteWaterFootprint writes crop water use [m³] by country, GLU, crop and
// water type, with a total row for each entry. Values are rounded to
// whole cubic meters and countries without an economic region are left
// out.
func WriteWaterFootprint(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Irrigation == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: water table %s needs irrigation aggregates", h.File)
	}
	t, err := newTable(w, h, "crop average annual water volume consumed (m^3) for land cells in country X glu",
		"iso", "glu_code", "SAGE_crop", "water_type", "value")
	if err != nil {
		return 0, err
	}
	it := p.Irrigation
	for ci, c := range p.Tables.Countries.Countries {
		if p.Lookup.CountryRegion[ci] == landdata.NoMatch {
			continue
		}
		for j, glu := range p.Lookup.Country[ci] {
			for k, crop := range p.Tables.Crops {
				for wt := landdata.BlueWater; wt <= landdata.NumWaterTypes; wt++ {
					var v float64
					switch {
					case wt == landdata.NumWaterTypes:
						v = it.Total(ci, j, k)
					case it.Water[wt] != nil:
						v = it.Water[wt].Get(ci, j, k)
					}
					if v = round(v); v <= 0 {
						continue
					}
					if err := t.row(c.Abbr, itoa(glu), crop.Name, wt.String(), strconv.FormatFloat(v, 'f', 0, 64)); err != nil {
						return 0, err
					}
				}
			}
		}
	}
	return t.flush()
}

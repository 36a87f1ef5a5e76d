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

	"github.com/spatialmodel/landdata"
)

var protectionNames = map[int]string{
	landdata.Protected:    "Protected",
	landdata.NotProtected: "Non-protected",
}

// WriteLandTypes writes the land-type category table, naming each
// category's vegetation class, land use and protection class.
func WriteLandTypes(w io.Writer, h Header, lt *landdata.LandTypes, veg *landdata.CodeTable) (int, error) {
	t, err := newTable(w, h, "Mapping from land categories to specific categories in databases",
		"Category", "LT_SAGE", "LT_HYDE", "LT_WDPA")
	if err != nil {
		return 0, err
	}
	for _, c := range lt.Types {
		vn := "Unknown"
		if c.Veg != 0 {
			i, ok := veg.Index(c.Veg)
			if !ok {
				return 0, fmt.Errorf("output: land type %d has unknown vegetation class %d", c.Code, c.Veg)
			}
			vn = veg.Name(i)
		}
		if err := t.row(itoa(c.Code), vn, c.Use.String(), protectionNames[c.Protection]); err != nil {
			return 0, err
		}
	}
	return t.flush()
}

// WriteCountryGLU writes every country and GLU pair that has land. Alias
// members are listed separately from their target.
func WriteCountryGLU(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Lookup == nil {
		return 0, fmt.Errorf("output: %s needs the GLU lookup", h.File)
	}
	t, err := newTable(w, h, "Mapping from country+GLU dataset to iso",
		"country_code", "glu", "iso", "fao_country_name")
	if err != nil {
		return 0, err
	}
	for ci, c := range p.Tables.Countries.Countries {
		for _, glu := range p.Lookup.Country[ci] {
			if err := t.row(itoa(c.Code), itoa(glu), c.Abbr, c.Name); err != nil {
				return 0, err
			}
		}
	}
	return t.flush()
}

// WriteLandRentGLU writes every land-rent region and GLU pair.
func WriteLandRentGLU(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Lookup == nil {
		return 0, fmt.Errorf("output: %s needs the GLU lookup", h.File)
	}
	t, err := newTable(w, h, "Mapping from land rent region+GLU dataset to region abbr",
		"lr_reg_code", "glu", "lr_reg_iso_abbr", "lr_reg_name")
	if err != nil {
		return 0, err
	}
	lr := p.Tables.LandRentRegions
	for r, code := range lr.Codes {
		for _, glu := range p.Lookup.LandRentRegion[r] {
			if err := t.row(itoa(code), itoa(glu), lr.Abbr(r), lr.Name(r)); err != nil {
				return 0, err
			}
		}
	}
	return t.flush()
}

// WriteRegionGLU writes every economic region and GLU pair.
func WriteRegionGLU(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Lookup == nil {
		return 0, fmt.Errorf("output: %s needs the GLU lookup", h.File)
	}
	t, err := newTable(w, h, "Mapping from region+GLU dataset to region name",
		"gcam_reg_code", "glu", "gcam_reg_name")
	if err != nil {
		return 0, err
	}
	reg := p.Tables.Regions
	for r, code := range reg.Codes {
		for _, glu := range p.Lookup.Region[r] {
			if err := t.row(itoa(code), itoa(glu), reg.Name(r)); err != nil {
				return 0, err
			}
		}
	}
	return t.flush()
}

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

// Package output writes the LandData result tables. Each table starts
// with a block of # comment lines followed by a CSV header row, and has
// one row per positive value.
package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spatialmodel/landdata"
)

// Header is the comment block written at the top of a table.
type Header struct {
	// File is the name of the output file.
	File string

	// Run identifies the run that produced the table.
	Run string
}

func (h Header) write(w io.Writer, description string) error {
	_, err := fmt.Fprintf(w, "# File: %s\n# Description: %s\n# Run: %s\n# ----------\n",
		h.File, description, h.Run)
	return err
}

// table writes a header block and CSV rows.
type table struct {
	w *csv.Writer
	n int
}

func newTable(w io.Writer, h Header, description string, columns ...string) (*table, error) {
	if err := h.write(w, description); err != nil {
		return nil, fmt.Errorf("output: writing %s: %v", h.File, err)
	}
	t := &table{w: csv.NewWriter(w)}
	if err := t.w.Write(columns); err != nil {
		return nil, fmt.Errorf("output: writing %s: %v", h.File, err)
	}
	return t, nil
}

func (t *table) row(fields ...string) error {
	t.n++
	return t.w.Write(fields)
}

func (t *table) flush() (int, error) {
	t.w.Flush()
	return t.n, t.w.Error()
}

func itoa(i int) string { return strconv.Itoa(i) }

// round rounds to the nearest whole number.
func round(v float64) float64 { return math.Floor(v + 0.5) }

// CropValue selects the crop table to write.
type CropValue int

// Crop tables.
const (
	HarvestedArea CropValue = iota
	Production
)

// WriteCropTable writes harvested area [ha] or production [t] by country,
// GLU and crop, rounded to whole numbers. Only countries with an economic
// region are written, and only entries whose rounded harvested area and
// production are both positive. It returns the number of rows written.
func WriteCropTable(w io.Writer, h Header, p *landdata.Pipeline, v CropValue) (int, error) {
	if p.Crops == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: crop table %s needs crop aggregates", h.File)
	}
	desc := "Initialization of harvested area (ha) by country/GLU/crop"
	if v == Production {
		desc = "Initialization of production (t) by country/GLU/crop"
	}
	t, err := newTable(w, h, desc, "ctry_iso", "glu_code", "SAGE_crop", "value")
	if err != nil {
		return 0, err
	}
	ca := p.Crops
	for ci, c := range p.Tables.Countries.Countries {
		if p.Lookup.CountryRegion[ci] == landdata.NoMatch {
			continue
		}
		for j, glu := range p.Lookup.Country[ci] {
			for k, crop := range p.Tables.Crops {
				area := round(ca.HarvestedArea.Get(ci, j, k))
				prod := round(ca.Production.Get(ci, j, k))
				if area <= 0 || prod <= 0 {
					continue
				}
				val := area
				if v == Production {
					val = prod
				}
				if err := t.row(c.Abbr, itoa(glu), crop.Name, strconv.FormatFloat(val, 'f', 0, 64)); err != nil {
					return 0, err
				}
			}
		}
	}
	return t.flush()
}

// WriteRentTable writes land rent [million USD] by land-rent region, GLU
// and use sector.
func WriteRentTable(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.Rent == nil {
		return 0, fmt.Errorf("output: rent table %s needs land rent", h.File)
	}
	t, err := newTable(w, h, "Initialization of land value (million USD) by country87/use/GLU",
		"reglr_iso", "glu_code", "use_sector", "value")
	if err != nil {
		return 0, err
	}
	lr, use := p.Tables.LandRentRegions, p.Tables.UseSectors
	var werr error
	p.Rent.Rent.Each(func(r, jr, u int, v float64) {
		if v <= 0 || werr != nil {
			return
		}
		werr = t.row(lr.Abbr(r), itoa(p.Lookup.LandRentRegion[r][jr]), use.Name(u),
			strconv.FormatFloat(v, 'f', 9, 64))
	})
	if werr != nil {
		return 0, werr
	}
	return t.flush()
}

// WriteLandTypeArea writes land area [ha] by country, GLU and land-type
// category for the land-use year. Like the crop tables, it leaves out
// countries without an economic region.
func WriteLandTypeArea(w io.Writer, h Header, p *landdata.Pipeline) (int, error) {
	if p.LandTypeArea == nil || p.Lookup == nil {
		return 0, fmt.Errorf("output: land-type area table %s needs land-type areas", h.File)
	}
	t, err := newTable(w, h, "area (ha) for land cells in country X glu X land type X protected category X year",
		"iso", "glu_code", "land_type", "year", "value")
	if err != nil {
		return 0, err
	}
	year := itoa(p.Config.LandUseYear)
	var werr error
	p.LandTypeArea.Each(func(ci, j, k int, v float64) {
		if v <= 0 || werr != nil || p.Lookup.CountryRegion[ci] == landdata.NoMatch {
			return
		}
		werr = t.row(p.Tables.Countries.Countries[ci].Abbr, itoa(p.Lookup.Country[ci][j]),
			itoa(p.LandTypes.Types[k].Code), year, strconv.FormatFloat(v, 'f', 0, 64))
	})
	if werr != nil {
		return 0, werr
	}
	return t.flush()
}

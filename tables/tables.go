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

// Package tables reads the delimited master tables and reference
// statistics used by LandData. Tables have a header row naming their
// columns; column order does not matter and lines starting with # are
// skipped.
package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spatialmodel/landdata"
)

// table is a decoded delimited table.
type table struct {
	name  string
	index map[string]int
	rows  [][]string
}

func newTable(name string, lines [][]string) (*table, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("tables: %s is empty", name)
	}
	t := &table{name: name, index: make(map[string]int), rows: lines[1:]}
	for i, h := range lines[0] {
		t.index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return t, nil
}

func readCSV(r io.Reader, name string) (*table, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	lines, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("tables: reading %s: %v", name, err)
	}
	return newTable(name, lines)
}

// columns returns the positions of the named columns.
func (t *table) columns(names ...string) ([]int, error) {
	o := make([]int, len(names))
	for i, n := range names {
		c, ok := t.index[n]
		if !ok {
			return nil, fmt.Errorf("tables: %s has no column %q", t.name, n)
		}
		o[i] = c
	}
	return o, nil
}

func (t *table) value(row, col int) string {
	if col >= len(t.rows[row]) {
		return ""
	}
	return strings.TrimSpace(t.rows[row][col])
}

// int parses an integer cell. The line number in errors counts the
// header as line 1.
func (t *table) int(row, col int) (int, error) {
	v, err := strconv.Atoi(t.value(row, col))
	if err != nil {
		return 0, fmt.Errorf("tables: %s line %d: %v", t.name, row+2, err)
	}
	return v, nil
}

// code parses an optional code cell, where an empty cell or -1 is
// landdata.NoMatch.
func (t *table) code(row, col int) (int, error) {
	if t.value(row, col) == "" {
		return landdata.NoMatch, nil
	}
	v, err := t.int(row, col)
	if err != nil || v < 0 {
		return landdata.NoMatch, err
	}
	return v, nil
}

func (t *table) float(row, col int) (float64, error) {
	s := t.value(row, col)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("tables: %s line %d: %v", t.name, row+2, err)
	}
	return v, nil
}

// ReadCountries reads the country table. Columns: code, name, abbr,
// region and land_rent_region. A country without an economic region or
// land-rent region has an empty cell or -1.
func ReadCountries(r io.Reader) (*landdata.CountryTable, error) {
	t, err := readCSV(r, "country table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("code", "name", "abbr", "region", "land_rent_region")
	if err != nil {
		return nil, err
	}
	o := make([]landdata.Country, len(t.rows))
	for i := range t.rows {
		cc := landdata.Country{Name: t.value(i, c[1]), Abbr: t.value(i, c[2])}
		if cc.Code, err = t.int(i, c[0]); err != nil {
			return nil, err
		}
		if cc.Region, err = t.code(i, c[3]); err != nil {
			return nil, err
		}
		if cc.LandRentRegion, err = t.code(i, c[4]); err != nil {
			return nil, err
		}
		o[i] = cc
	}
	return landdata.NewCountryTable(o)
}

// ReadCodes reads a code table with columns code and name and an optional
// abbr column. It is used for regions, land-rent regions, GLUs, use
// sectors and vegetation classes.
func ReadCodes(r io.Reader, name string) (*landdata.CodeTable, error) {
	t, err := readCSV(r, name)
	if err != nil {
		return nil, err
	}
	c, err := t.columns("code", "name")
	if err != nil {
		return nil, err
	}
	ac, hasAbbr := t.index["abbr"]
	codes := make([]int, len(t.rows))
	names := make([]string, len(t.rows))
	var abbrs []string
	if hasAbbr {
		abbrs = make([]string, len(t.rows))
	}
	for i := range t.rows {
		if codes[i], err = t.int(i, c[0]); err != nil {
			return nil, err
		}
		names[i] = t.value(i, c[1])
		if hasAbbr {
			abbrs[i] = t.value(i, ac)
		}
	}
	return landdata.NewCodeTable(codes, names, abbrs)
}

// ReadCrops reads the crop table. Columns: code, name and use_sector.
// Crops keep the order of the file.
func ReadCrops(r io.Reader) ([]landdata.Crop, error) {
	t, err := readCSV(r, "crop table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("code", "name", "use_sector")
	if err != nil {
		return nil, err
	}
	o := make([]landdata.Crop, len(t.rows))
	seen := make(map[int]bool)
	for i := range t.rows {
		cr := landdata.Crop{Name: t.value(i, c[1])}
		if cr.Code, err = t.int(i, c[0]); err != nil {
			return nil, err
		}
		if cr.UseSector, err = t.int(i, c[2]); err != nil {
			return nil, err
		}
		if seen[cr.Code] {
			return nil, fmt.Errorf("tables: duplicate crop code %d", cr.Code)
		}
		seen[cr.Code] = true
		o[i] = cr
	}
	return o, nil
}

// cropIndex returns the position of each crop code.
func cropIndex(crops []landdata.Crop) map[int]int {
	o := make(map[int]int, len(crops))
	for i, c := range crops {
		o[c.Code] = i
	}
	return o
}

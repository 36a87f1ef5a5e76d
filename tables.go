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
	"fmt"
	"strings"

	"github.com/ctessum/sparse"
)

// NoMatch marks a missing mapping between code tables.
const NoMatch = -1

// Country is an entry in the master country table.
type Country struct {
	Code int
	Name string
	Abbr string

	// Region and LandRentRegion are the economic region and land-rent
	// region codes, or NoMatch if the country is not mapped.
	Region, LandRentRegion int
}

// CountryTable is the master country table with an index by code.
type CountryTable struct {
	Countries []Country
	index     map[int]int
}

// NewCountryTable returns a table holding c. Country codes must be unique.
func NewCountryTable(c []Country) (*CountryTable, error) {
	t := &CountryTable{Countries: c, index: make(map[int]int, len(c))}
	for i, cc := range c {
		if _, ok := t.index[cc.Code]; ok {
			return nil, fmt.Errorf("landdata: duplicate country code %d", cc.Code)
		}
		t.index[cc.Code] = i
	}
	return t, nil
}

// Index returns the position of the country with the given code.
func (t *CountryTable) Index(code int) (int, bool) {
	i, ok := t.index[code]
	return i, ok
}

// Len returns the number of countries.
func (t *CountryTable) Len() int { return len(t.Countries) }

// CodeTable is an ordered list of integer codes with names,
// for example land-rent regions, economic regions, GLUs or use sectors.
type CodeTable struct {
	Codes []int
	Names []string
	Abbrs []string
	index map[int]int
}

// NewCodeTable returns a table of the given codes. names and abbrs may be
// nil; otherwise they must be the same length as codes.
func NewCodeTable(codes []int, names, abbrs []string) (*CodeTable, error) {
	if names != nil && len(names) != len(codes) {
		return nil, fmt.Errorf("landdata: %d names for %d codes", len(names), len(codes))
	}
	if abbrs != nil && len(abbrs) != len(codes) {
		return nil, fmt.Errorf("landdata: %d abbreviations for %d codes", len(abbrs), len(codes))
	}
	t := &CodeTable{Codes: codes, Names: names, Abbrs: abbrs, index: make(map[int]int, len(codes))}
	for i, c := range codes {
		if _, ok := t.index[c]; ok {
			return nil, fmt.Errorf("landdata: duplicate code %d", c)
		}
		t.index[c] = i
	}
	return t, nil
}

// Index returns the position of code in the table.
func (t *CodeTable) Index(code int) (int, bool) {
	i, ok := t.index[code]
	return i, ok
}

// Len returns the number of codes.
func (t *CodeTable) Len() int { return len(t.Codes) }

// Name returns the name of entry i, or its code if there are no names.
func (t *CodeTable) Name(i int) string {
	if t.Names == nil {
		return fmt.Sprint(t.Codes[i])
	}
	return t.Names[i]
}

// Abbr returns the abbreviation of entry i, falling back to its name.
func (t *CodeTable) Abbr(i int) string {
	if t.Abbrs == nil {
		return t.Name(i)
	}
	return t.Abbrs[i]
}

// Crop describes one crop in the per-crop rasters.
type Crop struct {
	Code int
	Name string

	// UseSector is the land-rent use sector code the crop belongs to.
	UseSector int
}

// ReferenceStats holds external reference-year statistics keyed by
// country × crop × year, with country and crop in the order of the master
// country table and the crop list.
type ReferenceStats struct {
	StartYear int

	// HarvestedArea [km²] and Production [t] have shape
	// [countries, crops, years]. A zero entry means no report.
	HarvestedArea, Production *sparse.DenseArray
}

// NumYears returns the number of years covered.
func (s *ReferenceStats) NumYears() int { return s.Production.Shape[2] }

// value returns the reported value for the given year and whether the
// year is reported.
func (s *ReferenceStats) value(d *sparse.DenseArray, country, crop, year int) (float64, bool) {
	y := year - s.StartYear
	if y < 0 || y >= d.Shape[2] {
		return 0, false
	}
	v := d.Get(country, crop, y)
	return v, v != 0
}

// Average returns the mean of the values in d for crop over the window
// of years beginning at startYear. countries returns the table indices of
// the countries whose values are summed for a given year. Years without a
// report are left out of the sample count rather than counted as zero.
func (s *ReferenceStats) Average(d *sparse.DenseArray, crop, startYear, window int, countries func(year int) []int) float64 {
	var sum float64
	var n int
	for year := startYear; year < startYear+window; year++ {
		var v float64
		for _, c := range countries(year) {
			if x, ok := s.value(d, c, crop, year); ok {
				v += x
			}
		}
		if v != 0 {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// Tables holds the decoded master tables that every stage shares.
type Tables struct {
	Countries       *CountryTable
	Regions         *CodeTable
	LandRentRegions *CodeTable
	GLUs            *CodeTable
	UseSectors      *CodeTable

	// VegClasses are the known potential vegetation classes (codes 1..K).
	VegClasses *CodeTable

	Crops []Crop

	// LegacyRent [million USD] has shape
	// [land-rent regions, use sectors, legacy zones].
	LegacyRent *sparse.DenseArray

	// ProducerPrice [USD/t] has shape [land-rent regions, crops].
	ProducerPrice *sparse.DenseArray

	// Reference is nil if no reference statistics are available.
	Reference *ReferenceStats

	// VegCarbon [kg C/m²] has shape [vegetation classes, 2] and holds the
	// soil and vegetation carbon density of each class. It is optional.
	VegCarbon *sparse.DenseArray
}

// CropIndex returns the index in Crops of the crop with the given name,
// ignoring case.
func (t *Tables) CropIndex(name string) (int, bool) {
	for k, c := range t.Crops {
		if strings.EqualFold(c.Name, name) {
			return k, true
		}
	}
	return 0, false
}

// check returns an error if a table that the stages need is missing or
// does not match the code tables.
func (t *Tables) check() error {
	if t == nil || t.Countries == nil || t.LandRentRegions == nil || t.Regions == nil {
		return fmt.Errorf("landdata: the country, region and land-rent region tables are required")
	}
	if t.UseSectors == nil {
		return fmt.Errorf("landdata: the use sector table is required")
	}
	if t.LegacyRent == nil {
		return fmt.Errorf("landdata: the legacy rent table is required")
	}
	if t.ProducerPrice == nil {
		return fmt.Errorf("landdata: the producer price table is required")
	}
	nlr, nuse := t.LandRentRegions.Len(), t.UseSectors.Len()
	if s := t.LegacyRent.Shape; len(s) != 3 || s[0] != nlr || s[1] != nuse || s[2] < 1 {
		return indexError("landdata: legacy rent table has shape %v; want [%d %d zones]", s, nlr, nuse)
	}
	if s := t.ProducerPrice.Shape; len(s) != 2 || s[0] != nlr || s[1] != len(t.Crops) {
		return indexError("landdata: producer price table has shape %v; want [%d %d]", s, nlr, len(t.Crops))
	}
	if t.VegCarbon != nil {
		if t.VegClasses == nil {
			return fmt.Errorf("landdata: the carbon density table needs the vegetation class table")
		}
		if s := t.VegCarbon.Shape; len(s) != 2 || s[0] != t.VegClasses.Len() || s[1] != int(numCarbonTypes) {
			return indexError("landdata: carbon density table has shape %v; want [%d %d]",
				s, t.VegClasses.Len(), int(numCarbonTypes))
		}
	}
	return nil
}

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

package tables

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ctessum/requestcache"
	"github.com/ctessum/sparse"
	"github.com/spatialmodel/landdata"
	"github.com/tealeg/xlsx"
)

// excelCache holds previously opened spreadsheets.
var excelCache *requestcache.Cache

var loadExcelCacheOnce sync.Once

// loadExcelFile opens a spreadsheet, reading each file only once.
func loadExcelFile(fileName string) (*xlsx.File, error) {
	loadExcelCacheOnce.Do(func() {
		excelCache = requestcache.NewCache(func(ctx context.Context, req interface{}) (interface{}, error) {
			f, err := xlsx.OpenFile(req.(string))
			if err != nil {
				return nil, fmt.Errorf("tables: opening xlsx file: %v", err)
			}
			return f, nil
		}, runtime.GOMAXPROCS(-1), requestcache.Memory(100))
	})
	r := excelCache.NewRequest(context.Background(), fileName, fileName)
	f, err := r.Result()
	if err != nil {
		return nil, err
	}
	return f.(*xlsx.File), nil
}

// readExcel reads the first sheet of a spreadsheet as a table.
func readExcel(fileName, name string) (*table, error) {
	f, err := loadExcelFile(fileName)
	if err != nil {
		return nil, err
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("tables: %s has no sheets", fileName)
	}
	var lines [][]string
	for _, row := range f.Sheets[0].Rows {
		if row == nil {
			continue
		}
		line := make([]string, len(row.Cells))
		for i, c := range row.Cells {
			if c != nil {
				line[i] = c.Value
			}
		}
		if len(line) > 0 && strings.HasPrefix(line[0], "#") {
			continue
		}
		lines = append(lines, line)
	}
	return newTable(name, lines)
}

// ReadReferenceStats reads reference harvested area and production
// statistics from a CSV or XLSX file, chosen by extension. See
// ReadReferenceStatsCSV for the layout.
func ReadReferenceStats(path string, countries *landdata.CountryTable, crops []landdata.Crop) (*landdata.ReferenceStats, error) {
	const name = "reference statistics"
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		t, err := readExcel(path, name)
		if err != nil {
			return nil, err
		}
		return referenceStats(t, countries, crops)
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("tables: %v", err)
		}
		defer f.Close()
		return ReadReferenceStatsCSV(f, countries, crops)
	}
}

// ReadReferenceStatsCSV reads reference statistics with columns country
// (code), crop (code), year, harvested_area [ha] and production [t].
// Harvested area is converted to km². Rows for countries or crops that
// are not in the tables are skipped, and an empty or zero value means
// the statistic was not reported.
func ReadReferenceStatsCSV(r io.Reader, countries *landdata.CountryTable, crops []landdata.Crop) (*landdata.ReferenceStats, error) {
	t, err := readCSV(r, "reference statistics")
	if err != nil {
		return nil, err
	}
	return referenceStats(t, countries, crops)
}

func referenceStats(t *table, countries *landdata.CountryTable, crops []landdata.Crop) (*landdata.ReferenceStats, error) {
	c, err := t.columns("country", "crop", "year", "harvested_area", "production")
	if err != nil {
		return nil, err
	}
	type row struct {
		country, crop, year int
		area, prod          float64
	}
	ci := cropIndex(crops)
	var rows []row
	first, last := 0, 0
	for i := range t.rows {
		var rr row
		var code, crop int
		if code, err = t.int(i, c[0]); err != nil {
			return nil, err
		}
		if crop, err = t.int(i, c[1]); err != nil {
			return nil, err
		}
		if rr.year, err = t.int(i, c[2]); err != nil {
			return nil, err
		}
		if rr.area, err = t.float(i, c[3]); err != nil {
			return nil, err
		}
		if rr.prod, err = t.float(i, c[4]); err != nil {
			return nil, err
		}
		var ok bool
		if rr.country, ok = countries.Index(code); !ok {
			continue
		}
		if rr.crop, ok = ci[crop]; !ok {
			continue
		}
		if len(rows) == 0 || rr.year < first {
			first = rr.year
		}
		if len(rows) == 0 || rr.year > last {
			last = rr.year
		}
		rows = append(rows, rr)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("tables: %s has no rows for known countries and crops", t.name)
	}
	ny := last - first + 1
	o := &landdata.ReferenceStats{
		StartYear:     first,
		HarvestedArea: sparse.ZerosDense(countries.Len(), len(crops), ny),
		Production:    sparse.ZerosDense(countries.Len(), len(crops), ny),
	}
	for _, rr := range rows {
		o.HarvestedArea.AddVal(rr.area/landdata.KmSq2Ha, rr.country, rr.crop, rr.year-first)
		o.Production.AddVal(rr.prod, rr.country, rr.crop, rr.year-first)
	}
	return o, nil
}

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
	"testing"

	"github.com/ctessum/sparse"
	"github.com/sirupsen/logrus"
)

const testTolerance = 1.e-9

func different(a, b, tolerance float64) bool {
	if a == b {
		return false
	}
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

const nd = Nodata

func denseFrom(v []float64, shape ...int) *sparse.DenseArray {
	d := sparse.ZerosDense(shape...)
	copy(d.Elements, v)
	return d
}

func testRaster(t *testing.T, name string, v ...float64) *Raster {
	r, err := RasterFromSlice(name, NewGrid(2, 4), Nodata, v)
	if err != nil {
		t.Fatal(err)
	}
	return r
}

// Country table indices of the test countries.
const (
	iUSA = iota // code 100
	iSCG        // code 186
	iSRB        // code 272
	iMNE        // code 273
	iXXX        // code 300, no land-rent region
)

// Use sector indices of the test use sectors.
const (
	uRice = iota // code 1
	uGrain       // code 3
	uCattle      // code 9
	uForest      // code 13
)

func testTables(t *testing.T) *Tables {
	countries, err := NewCountryTable([]Country{
		{Code: 100, Name: "Testland", Abbr: "tst", Region: 10, LandRentRegion: 1},
		{Code: 186, Name: "Serbia and Montenegro", Abbr: "scg", Region: 20, LandRentRegion: 2},
		{Code: 272, Name: "Serbia", Abbr: "srb", Region: NoMatch, LandRentRegion: NoMatch},
		{Code: 273, Name: "Montenegro", Abbr: "mne", Region: NoMatch, LandRentRegion: NoMatch},
		{Code: 300, Name: "Nowhere", Abbr: "xxx", Region: NoMatch, LandRentRegion: NoMatch},
	})
	if err != nil {
		t.Fatal(err)
	}
	mustCodes := func(codes []int, names, abbrs []string) *CodeTable {
		c, err := NewCodeTable(codes, names, abbrs)
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	legacy := sparse.ZerosDense(2, 4, 18)
	legacy.Set(30, 0, uGrain, 0)
	legacy.Set(20, 0, uGrain, 1)
	legacy.Set(9, 0, uCattle, 0)
	legacy.Set(12, 1, uGrain, 0)
	legacy.Set(1e6, 0, uForest, 0)
	legacy.Set(500, 1, uForest, 1)
	price := sparse.ZerosDense(2, 2)
	price.Set(10, 0, 0)
	price.Set(20, 1, 0)
	return &Tables{
		Countries:       countries,
		Regions:         mustCodes([]int{10, 20}, []string{"Region A", "Region B"}, nil),
		LandRentRegions: mustCodes([]int{1, 2}, []string{"Testland", "Serbia and Montenegro"}, []string{"TST", "SCG"}),
		GLUs:            mustCodes([]int{5, 7, 9}, []string{"GLU005", "GLU007", "GLU009"}, nil),
		UseSectors:      mustCodes([]int{1, 3, 9, 13}, []string{"pdr", "gro", "ctl", "frs"}, nil),
		VegClasses:      mustCodes([]int{1, 2}, []string{"Forest", "Grassland"}, nil),
		Crops: []Crop{
			{Code: 1, Name: "Wheat", UseSector: 3},
			{Code: 2, Name: "Rice", UseSector: 1},
		},
		LegacyRent:    legacy,
		ProducerPrice: price,
	}
}

// testInputs returns the inputs of a 2x4 grid:
//
//	cell 0: country 100, GLU 5, zone 1
//	cell 1: country 100, GLU 7, zone 1
//	cell 2: Serbia, GLU 5, zone 2
//	cell 3: Montenegro, GLU 9, zone 2
//	cell 4: country 300 (no land-rent region), GLU 5
//	cell 5: no country, GLU 5
//	cell 6: country 100, no GLU
//	cell 7: no land
func testInputs(t *testing.T) *Inputs {
	return &Inputs{
		Country:   testRaster(t, "country", 100, 100, 272, 273, 300, nd, 100, nd),
		LandAreaA: testRaster(t, "land_a", 10, 10, 10, 10, 10, 10, 10, nd),
		LandAreaB: testRaster(t, "land_b", 10, 10, 10, 10, 10, 10, 10, nd),
		PotVeg:    testRaster(t, "potveg", 1, 1, 2, 2, 1, 1, 1, nd),
		GLUNew:    testRaster(t, "glu", 5, 7, 5, 9, 5, 5, nd, nd),
		GLUOrig:   testRaster(t, "zone", 1, 1, 2, 2, 1, 1, 1, nd),
		Cropland:  testRaster(t, "crop", 2, 1, 0, 0, 0, 0, 0, nd),
		Pasture:   testRaster(t, "pasture", 3, 0, 4, 0, 0, 0, 0, nd),
		Urban:     testRaster(t, "urban", 0, 0, 0, 0, 0, 0, 0, nd),
		Crops: []CropRaster{
			{
				Crop:          0,
				HarvestedArea: testRaster(t, "wheat_area", 2, 1, 3, 0, 4, 1, 2, nd),
				Yield:         testRaster(t, "wheat_yield", 3, 4, 2, 5, 1, 1, 1, nd),
			},
		},
	}
}

func testEntities() *Entities {
	e := &Entities{
		Aliases: []EntityAlias{
			{Name: "Serbia and Montenegro", Members: []int{272, 273}, Target: 186, MergedThrough: 2001},
		},
	}
	e.index()
	return e
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.LivestockSectors = []int{9}
	cfg.ForestClasses = []int{1}
	cfg.Entities = testEntities()
	return cfg
}

func testPipeline(t *testing.T, cfg Config) *Pipeline {
	log := logrus.New()
	log.Level = logrus.ErrorLevel
	p, err := NewPipeline(NewGrid(2, 4), cfg, testInputs(t), testTables(t), log)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestNewPipeline(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		p := testPipeline(t, testConfig())
		if p.resolve(iSRB) != iSCG || p.resolve(iMNE) != iSCG || p.resolve(iUSA) != iUSA {
			t.Errorf("alias targets: %v", p.target)
		}
	})
	t.Run("bad grid", func(t *testing.T) {
		in := testInputs(t)
		in.Urban = NewRaster("urban", NewGrid(4, 8), 0)
		if _, err := NewPipeline(NewGrid(2, 4), testConfig(), in, testTables(t), nil); err == nil {
			t.Error("expected an error for a raster on the wrong grid")
		}
	})
	t.Run("unknown donor region", func(t *testing.T) {
		cfg := testConfig()
		cfg.Entities = DefaultEntities() // land-rent regions 25, 60 and 66 are not in the table
		_, err := NewPipeline(NewGrid(2, 4), cfg, testInputs(t), testTables(t), nil)
		if !IsIndexError(err) {
			t.Errorf("want index error, have %v", err)
		}
	})
	t.Run("missing tables", func(t *testing.T) {
		for name, drop := range map[string]func(*Tables){
			"producer prices": func(t *Tables) { t.ProducerPrice = nil },
			"legacy rent":     func(t *Tables) { t.LegacyRent = nil },
			"use sectors":     func(t *Tables) { t.UseSectors = nil },
		} {
			tables := testTables(t)
			drop(tables)
			if _, err := NewPipeline(NewGrid(2, 4), testConfig(), testInputs(t), tables, nil); err == nil {
				t.Errorf("%s: expected an error", name)
			}
		}
	})
	t.Run("price table shape", func(t *testing.T) {
		tables := testTables(t)
		tables.ProducerPrice = sparse.ZerosDense(2, 3)
		_, err := NewPipeline(NewGrid(2, 4), testConfig(), testInputs(t), tables, nil)
		if !IsIndexError(err) {
			t.Errorf("want index error, have %v", err)
		}
	})
	t.Run("stage order", func(t *testing.T) {
		p := testPipeline(t, testConfig())
		if err := p.Run(BuildLookup()); err == nil {
			t.Error("expected an error running BuildLookup before ReconcileMasks")
		}
	})
}

func TestDefaultStages(t *testing.T) {
	cfg := testConfig()
	cfg.ReferenceYear = 2002
	cfg.AveragingWindow = 3
	p := testPipeline(t, cfg)
	p.Tables.Reference = testReference()
	if err := p.Run(DefaultStages()...); err != nil {
		t.Fatal(err)
	}
	if !p.Crops.Recalibrated {
		t.Error("crops were not recalibrated")
	}
	if p.Rent == nil || p.LandTypeArea == nil || p.Cover == nil {
		t.Error("missing stage results")
	}
}

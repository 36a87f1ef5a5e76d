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

import "testing"

func TestLandTypeCategories(t *testing.T) {
	lt := LandTypeCategories(2)
	if lt.Len() != 24 {
		t.Fatalf("have %d categories, want 24", lt.Len())
	}
	tests := []struct {
		code int
		want LandType
	}{
		{code: 1, want: LandType{Code: 1, Veg: 0, Use: Unmanaged, Protection: Protected}},
		{code: 132, want: LandType{Code: 132, Veg: 1, Use: UrbanLand, Protection: NotProtected}},
		{code: 221, want: LandType{Code: 221, Veg: 2, Use: Pasture, Protection: Protected}},
	}
	for _, test := range tests {
		k, ok := lt.Index(test.code)
		if !ok {
			t.Errorf("category %d missing", test.code)
			continue
		}
		if lt.Types[k] != test.want {
			t.Errorf("category %d: have %+v, want %+v", test.code, lt.Types[k], test.want)
		}
	}
	for k := 1; k < lt.Len(); k++ {
		if lt.Types[k].Code <= lt.Types[k-1].Code {
			t.Errorf("categories out of order at %d", k)
		}
	}
}

func TestLandTypeAreas(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.Protected = testRaster(t, "protected", nd, 1, nd, 2, nd, nd, nd, nd)
	if err := p.Run(ReconcileMasks(), BuildLookup(), BuildLandTypes(), Disaggregate(), LandTypeAreas()); err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		o, j, code int
		want       float64
	}{
		{o: iUSA, j: 0, code: 102, want: 500},
		{o: iUSA, j: 0, code: 112, want: 200},
		{o: iUSA, j: 0, code: 122, want: 300},
		{o: iUSA, j: 0, code: 132, want: 0},
		{o: iUSA, j: 1, code: 101, want: 900},
		{o: iUSA, j: 1, code: 111, want: 100},
		{o: iSCG, j: 0, code: 202, want: 600},
		{o: iSCG, j: 0, code: 222, want: 400},
		{o: iSCG, j: 1, code: 202, want: 1000},
	}
	a := p.LandTypeArea
	for _, test := range tests {
		k, _ := p.LandTypes.Index(test.code)
		if v := a.Get(test.o, test.j, k); v != test.want {
			t.Errorf("%d/%d/%d: have %g, want %g", test.o, test.j, test.code, v, test.want)
		}
	}
	if v := a.Sum(); v != 4000 {
		t.Errorf("total %g, want 4000", v)
	}
}

func TestLandTypeAreasRounding(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.Cropland.Set(1, 1.004)
	if err := p.Run(ReconcileMasks(), BuildLookup(), BuildLandTypes(), Disaggregate(), LandTypeAreas()); err != nil {
		t.Fatal(err)
	}
	crop, _ := p.LandTypes.Index(112)
	unmanaged, _ := p.LandTypes.Index(102)
	if v := p.LandTypeArea.Get(iUSA, 1, crop); v != 100 {
		t.Errorf("cropland %g, want 100", v)
	}
	if v := p.LandTypeArea.Get(iUSA, 1, unmanaged); v != 900 {
		t.Errorf("unmanaged %g, want 900", v)
	}
}

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
	"reflect"
	"testing"
)

func runCrops(t *testing.T, cfg Config, extra ...Stage) *Pipeline {
	p := testPipeline(t, cfg)
	stages := append([]Stage{ReconcileMasks(), BuildLookup(), AggregateCrops()}, extra...)
	if err := p.Run(stages...); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestAggregateCrops(t *testing.T) {
	p := runCrops(t, testConfig())
	ca := p.Crops
	tests := []struct {
		o, j       int
		area, prod float64
	}{
		{o: iUSA, j: 0, area: 200, prod: 6},
		{o: iUSA, j: 1, area: 100, prod: 4},
		{o: iSCG, j: 0, area: 300, prod: 6},
		{o: iSCG, j: 1},
	}
	for _, test := range tests {
		if v := ca.HarvestedArea.Get(test.o, test.j, 0); v != test.area {
			t.Errorf("area %d/%d: have %g, want %g", test.o, test.j, v, test.area)
		}
		if v := ca.Production.Get(test.o, test.j, 0); v != test.prod {
			t.Errorf("production %d/%d: have %g, want %g", test.o, test.j, v, test.prod)
		}
	}
	if v := ca.HarvestedArea.Sum(); v != 600 {
		t.Errorf("total area %g", v)
	}
	if want := []float64{7, 0}; !reflect.DeepEqual(ca.Discarded, want) {
		t.Errorf("Discarded = %v", ca.Discarded)
	}
	if ca.Mismatched[0] != 0 || ca.MismatchedYield[0].Count() != 1 {
		t.Errorf("mismatched area %g, yield cells %d", ca.Mismatched[0], ca.MismatchedYield[0].Count())
	}
	if v := ca.CountryArea.Get(iUSA, 0); v != 3 {
		t.Errorf("country area %g", v)
	}
	if v := ca.Pasture.Get(iUSA, 0, 0); v != 300 {
		t.Errorf("USA pasture %g", v)
	}
	if v := ca.Pasture.Get(iSCG, 0, 0); v != 400 {
		t.Errorf("SCG pasture %g", v)
	}
}

func TestAggregateCropsTrimmedPasture(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.Pasture.Set(0, 12) // more than the land area
	if err := p.Run(ReconcileMasks(), BuildLookup(), Disaggregate(), AggregateCrops()); err != nil {
		t.Fatal(err)
	}
	// Cropland 2 and pasture 12 on 10 km²: pasture is trimmed to 8.
	if v := p.Crops.Pasture.Get(iUSA, 0, 0); different(v, 800, testTolerance) {
		t.Errorf("pasture %g, want 800", v)
	}
}

func TestCropKey(t *testing.T) {
	p := testPipeline(t, testConfig())
	if err := p.Run(ReconcileMasks(), BuildLookup()); err != nil {
		t.Fatal(err)
	}
	if ti, j, ok, err := p.cropKey(3); err != nil || !ok || ti != iSCG || j != 1 {
		t.Errorf("cell 3: %d, %d, %v, %v", ti, j, ok, err)
	}
	if _, _, ok, err := p.cropKey(4); ok || err != nil {
		t.Errorf("cell 4 has no land-rent region: %v, %v", ok, err)
	}
	// A GLU that only source A has is left out.
	p.Inputs.GLUNew.Set(1, 11)
	p.Masks.Attr[1] = NoMatch
	if _, _, ok, err := p.cropKey(1); ok || err != nil {
		t.Errorf("cell 1 unattributed: %v, %v", ok, err)
	}
	// For an attributed cell it means the lookup is inconsistent.
	p.Masks.Attr[1] = iUSA
	if _, _, _, err := p.cropKey(1); !IsIndexError(err) {
		t.Errorf("want index error, have %v", err)
	}
}

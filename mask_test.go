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
	"reflect"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestReconcileMasks(t *testing.T) {
	cfg := testConfig()
	cfg.Diagnostics = true
	p := testPipeline(t, cfg)
	p.Inputs.LandAreaA.Set(1, 10.5)
	if err := p.Run(ReconcileMasks()); err != nil {
		t.Fatal(err)
	}
	m := p.Masks
	if want := []int{0, 1, 2, 3, 4, 5, 6}; !reflect.DeepEqual(m.CellsB, want) {
		t.Errorf("CellsB = %v", m.CellsB)
	}
	wantAttr := []int32{iUSA, iUSA, iSRB, iMNE, NoMatch, NoMatch, NoMatch, NoMatch}
	if !reflect.DeepEqual(m.Attr, wantAttr) {
		t.Errorf("Attr: have %v, want %v", m.Attr, wantAttr)
	}
	if want := map[int]float64{300: 10}; !reflect.DeepEqual(m.Unmapped, want) {
		t.Errorf("Unmapped = %v", m.Unmapped)
	}
	if m.Disagreements != 1 {
		t.Errorf("Disagreements = %d", m.Disagreements)
	}
	wantLoss := SourceLoss{Total: 70, NewGLU: 10, Country: 10, CountryOrGLU: 20}
	if diff := cmp.Diff(wantLoss, m.LossB); diff != "" {
		t.Errorf("LossB (-want +have):\n%s", diff)
	}
	if want := []int{1, 2, 2, 2, NoMatch}; !reflect.DeepEqual(m.CountryLandRent, want) {
		t.Errorf("CountryLandRent = %v", m.CountryLandRent)
	}
	a := m.Attribution
	if a.Country.At(3) != 186 || a.CountryGLU.At(3) != 186*CountryGLUFactor+9 {
		t.Errorf("cell 3 attributed to %g (%g)", a.Country.At(3), a.CountryGLU.At(3))
	}
	if a.RegionGLU.At(0) != 10*CountryGLUFactor+5 {
		t.Errorf("cell 0 region GLU %g", a.RegionGLU.At(0))
	}
	if a.Country.Valid(4) {
		t.Error("cell 4 has no land-rent region")
	}
}

func TestReconcileMasksNaNFill(t *testing.T) {
	p := testPipeline(t, testConfig())
	land := p.Inputs.LandAreaB
	land.Nodata = math.NaN()
	land.Set(1, math.NaN())
	land.Set(7, math.NaN())
	if err := p.Run(ReconcileMasks()); err != nil {
		t.Fatal(err)
	}
	if want := []int{0, 2, 3, 4, 5, 6}; !reflect.DeepEqual(p.Masks.CellsB, want) {
		t.Errorf("CellsB = %v", p.Masks.CellsB)
	}
	if _, ok := p.Masks.Attributed(1); ok {
		t.Error("cell 1 has no land area and should not be attributed")
	}
	if l := p.Masks.LossB.Total; math.IsNaN(l) || l != 60 {
		t.Errorf("source B land area = %g, want 60", l)
	}
}

func TestReconcileMasksUnknownCountry(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.Country.Set(0, 555)
	if err := p.Run(ReconcileMasks()); !IsIndexError(err) {
		t.Errorf("want index error, have %v", err)
	}
}

func TestBuildLookup(t *testing.T) {
	p := testPipeline(t, testConfig())
	if err := p.Run(ReconcileMasks(), BuildLookup()); err != nil {
		t.Fatal(err)
	}
	want := &Lookup{
		Country:         []GLUList{{5, 7}, {5, 9}, {5}, {9}, nil},
		LandRentRegion:  []GLUList{{5, 7}, {5, 9}},
		Region:          []GLUList{{5, 7}, {5, 9}},
		CountryLandRent: []int{0, 1, 1, 1, NoMatch},
		CountryRegion:   []int{0, 1, 1, 1, NoMatch},
	}
	if diff := cmp.Diff(want, p.Lookup); diff != "" {
		t.Errorf("lookup (-want +have):\n%s", diff)
	}
}

func TestBuildLookupUnknownGLU(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.GLUNew.Set(1, 8)
	if err := p.Run(ReconcileMasks(), BuildLookup()); !IsIndexError(err) {
		t.Errorf("want index error, have %v", err)
	}
}

func TestLookupCheck(t *testing.T) {
	l := &Lookup{
		Country:         []GLUList{{5, 7}},
		LandRentRegion:  []GLUList{{5}},
		Region:          []GLUList{{5, 7}},
		CountryLandRent: []int{0},
		CountryRegion:   []int{0},
	}
	if err := l.Check(); !IsIndexError(err) {
		t.Errorf("missing region GLU: have %v", err)
	}
	l.LandRentRegion[0] = GLUList{7, 5}
	if err := l.Check(); !IsIndexError(err) {
		t.Errorf("unsorted list: have %v", err)
	}
	l.LandRentRegion[0] = GLUList{5, 7}
	if err := l.Check(); err != nil {
		t.Error(err)
	}
}

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
	"math/rand"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"gonum.org/v1/gonum/floats"
)

func TestTrimFootprint(t *testing.T) {
	tests := []struct {
		name         string
		land         float64
		in, want     Footprint
		refveg       float64
		wantCalcFail bool
	}{
		{
			name:   "fits",
			land:   10,
			in:     Footprint{Crop: 2, Pasture: 3, Urban: 1},
			want:   Footprint{Crop: 2, Pasture: 3, Urban: 1},
			refveg: 4,
		},
		{
			name: "urban absorbs",
			land: 5,
			in:   Footprint{Crop: 2, Pasture: 3, Urban: 1, PastureDetail: []float64{1, 2}},
			want: Footprint{Crop: 2, Pasture: 3, Urban: 0, PastureDetail: []float64{1, 2}},
		},
		{
			name: "pasture absorbs",
			land: 3,
			in:   Footprint{Crop: 2, Pasture: 3, Urban: 1, PastureDetail: []float64{1.5, 1.5}},
			want: Footprint{Crop: 2, Pasture: 1, Urban: 0, PastureDetail: []float64{0.5, 0.5}},
		},
		{
			name: "crop absorbs",
			land: 1,
			in:   Footprint{Crop: 2, Pasture: 3, Urban: 1, CropDetail: []float64{2}},
			want: Footprint{Crop: 1, Pasture: 0, Urban: 0, CropDetail: []float64{1}},
		},
		{
			name: "no land",
			land: 0,
			in:   Footprint{Crop: 2, Pasture: 3, Urban: 1, CropDetail: []float64{2}},
			want: Footprint{CropDetail: []float64{0}},
		},
		{
			name:         "negative",
			land:         10,
			in:           Footprint{Crop: -1},
			wantCalcFail: true,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f := test.in
			refveg, err := TrimFootprint(test.land, &f, 1e-9)
			if test.wantCalcFail {
				if !IsCalcError(err) {
					t.Errorf("want calculation error, have %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if refveg != test.refveg {
				t.Errorf("refveg: have %g, want %g", refveg, test.refveg)
			}
			if !reflect.DeepEqual(f, test.want) {
				t.Errorf("footprint: %v", pretty.Diff(f, test.want))
			}
		})
	}
}

func TestDisaggregatorOrder(t *testing.T) {
	d := NewDisaggregator(3, 2, 1e-9, false)
	o := d.Order(5, 10)
	if want := rand.New(rand.NewSource(8)).Perm(10); !reflect.DeepEqual(o, want) {
		t.Errorf("have %v, want %v", o, want)
	}
	d.Order(6, 10)
	d.Order(7, 10) // evicts coarse cell 5
	if o2 := d.Order(5, 10); !reflect.DeepEqual(o, o2) {
		t.Errorf("order changed after eviction: %v != %v", o, o2)
	}
	if o3 := NewDisaggregator(3, 0, 1e-9, false).Order(5, 10); !reflect.DeepEqual(o, o3) {
		t.Errorf("order depends on cache: %v != %v", o, o3)
	}
}

func TestDisaggregate(t *testing.T) {
	t.Run("fits", func(t *testing.T) {
		d := NewDisaggregator(1, 10, 1e-9, false)
		capacity := []float64{1, 2, 3}
		r, err := d.Disaggregate(0, []float64{2, 3}, capacity)
		if err != nil {
			t.Fatal(err)
		}
		if r.Shortfall != 0 {
			t.Errorf("shortfall %g", r.Shortfall)
		}
		for k, want := range []float64{2, 3} {
			var s float64
			for c := range capacity {
				s += r.Area[c*r.Types+k]
			}
			if different(s, want, testTolerance) {
				t.Errorf("type %d: assigned %g, want %g", k, s, want)
			}
		}
		for c, cp := range capacity {
			if a := r.Assigned(c); a > cp+1e-9 {
				t.Errorf("cell %d: assigned %g over capacity %g", c, a, cp)
			}
			if v := r.Area[c*r.Types : (c+1)*r.Types]; floats.Max(v) > 0 && r.Dominant[c] != floats.MaxIdx(v)+1 {
				t.Errorf("cell %d: dominant %d for %v", c, r.Dominant[c], v)
			}
		}
	})
	t.Run("shortfall", func(t *testing.T) {
		d := NewDisaggregator(1, 10, 1e-9, false)
		r, err := d.Disaggregate(0, []float64{4, 4}, []float64{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		if different(r.Shortfall, 2, testTolerance) {
			t.Errorf("shortfall %g, want 2", r.Shortfall)
		}
	})
	t.Run("scaled", func(t *testing.T) {
		d := NewDisaggregator(1, 10, 1e-9, true)
		r, err := d.Disaggregate(0, []float64{6, 6}, []float64{1, 2, 3})
		if err != nil {
			t.Fatal(err)
		}
		if r.Shortfall != 0 || different(floats.Sum(r.Area), 6, testTolerance) {
			t.Errorf("shortfall %g, assigned %g", r.Shortfall, floats.Sum(r.Area))
		}
	})
	t.Run("dominant", func(t *testing.T) {
		d := NewDisaggregator(1, 10, 1e-9, false)
		r, err := d.Disaggregate(0, []float64{1, 3, 0}, []float64{5, 0})
		if err != nil {
			t.Fatal(err)
		}
		want := &CoarseResult{Area: []float64{1, 3, 0, 0, 0, 0}, Types: 3, Dominant: []int{2, 0}}
		if !reflect.DeepEqual(r, want) {
			t.Error(pretty.Diff(r, want))
		}
	})
	t.Run("negative capacity", func(t *testing.T) {
		d := NewDisaggregator(1, 10, 1e-9, false)
		if _, err := d.Disaggregate(0, []float64{1}, []float64{-1}); !IsCalcError(err) {
			t.Errorf("want calculation error, have %v", err)
		}
	})
}

func TestDisaggregateStage(t *testing.T) {
	p := testPipeline(t, testConfig())
	// One coarse cell per grid half; cover type 2 (class 2) in the west.
	cover := NewGrid(1, 2)
	area := []float64{0, 8, 20, 0}
	p.Inputs.Cover = &CoverGrid{Grid: cover, Area: denseFrom(area, 2, 2)}
	if err := p.Run(ReconcileMasks(), Disaggregate()); err != nil {
		t.Fatal(err)
	}
	cv := p.Cover
	wantRefVeg := []float64{5, 9, 6, 10, 10, 10, 10, nd}
	if !reflect.DeepEqual(cv.RefVeg.Data.Elements, wantRefVeg) {
		t.Errorf("refveg: %v", pretty.Diff(cv.RefVeg.Data.Elements, wantRefVeg))
	}
	// West cells 0, 1, 4 and 5 get class 2 cover; east cells get class 1.
	for _, i := range []int{0, 1, 4, 5} {
		if d := cv.Dominant.Int(i); d != 2 && d != 1 {
			t.Errorf("cell %d: dominant %d", i, d)
		}
	}
	var west int
	for _, i := range []int{0, 1, 4, 5} {
		if cv.Dominant.Int(i) == 2 && p.Inputs.PotVeg.Int(i) == 1 {
			west++
		}
	}
	if west == 0 {
		t.Error("cover did not override any western cell")
	}
	if cv.Shortfall != 0 {
		t.Errorf("shortfall %g", cv.Shortfall)
	}
	if cv.Dominant.Valid(7) {
		t.Error("cell 7 has no land")
	}
	checkVeg(t, p, 28)
	veg2 := cv.VegRaster(p.Grid, "veg_2", 1)
	if !veg2.Valid(0) || veg2.Valid(7) || veg2.At(2) != 0 {
		t.Errorf("class 2 raster: %v", veg2.Data.Elements)
	}
}

// checkVeg checks that the per-type cover areas fit each cell's
// reference-vegetation area and add up to the cover minus the shortfall.
func checkVeg(t *testing.T, p *Pipeline, cover float64) {
	cv := p.Cover
	nt := cv.Veg.Shape[1]
	for i := 0; i < p.Grid.Len(); i++ {
		cell := floats.Sum(cv.Veg.Elements[i*nt : (i+1)*nt])
		if cell > cv.RefVeg.valueOr(i, 0)+testTolerance {
			t.Errorf("cell %d: cover %g exceeds reference vegetation %g", i, cell, cv.RefVeg.At(i))
		}
	}
	if sum := cv.Veg.Sum(); different(sum, cover-cv.Shortfall, testTolerance) {
		t.Errorf("assigned cover %g, want %g - %g", sum, cover, cv.Shortfall)
	}
}

func TestDisaggregateStageShortfall(t *testing.T) {
	p := testPipeline(t, testConfig())
	// The east half has 26 km² of reference vegetation for 30 km² of cover.
	p.Inputs.Cover = &CoverGrid{Grid: NewGrid(1, 2), Area: denseFrom([]float64{0, 8, 30, 0}, 2, 2)}
	if err := p.Run(ReconcileMasks(), Disaggregate()); err != nil {
		t.Fatal(err)
	}
	if different(p.Cover.Shortfall, 4, testTolerance) {
		t.Errorf("shortfall %g, want 4", p.Cover.Shortfall)
	}
	checkVeg(t, p, 38)
	// Only class 1 is assigned in the east.
	for _, i := range []int{2, 3, 6} {
		if v := p.Cover.Veg.Get(i, 1); v != 0 {
			t.Errorf("cell %d: class 2 area %g", i, v)
		}
	}
}

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

func runRent(t *testing.T, cfg Config) *Pipeline {
	p := testPipeline(t, cfg)
	err := p.Run(ReconcileMasks(), BuildLookup(), BuildLandTypes(), Disaggregate(),
		AggregateCrops(), RedistributeAgRent(), RedistributeForestRent())
	if err != nil {
		t.Fatal(err)
	}
	return p
}

type rentTest struct {
	name     string
	r, jr, u int
	want     float64
}

func checkRent(t *testing.T, rt *RentTable, tests []rentTest) {
	for _, test := range tests {
		if v := rt.Rent.Get(test.r, test.jr, test.u); different(v, test.want, testTolerance) {
			t.Errorf("%s: have %g, want %g", test.name, v, test.want)
		}
	}
}

func TestRedistributeAgRent(t *testing.T) {
	p := runRent(t, testConfig())
	rt := p.Rent
	checkRent(t, rt, []rentTest{
		{name: "region 1 grain GLU5", r: 0, jr: 0, u: uGrain, want: 30},
		{name: "region 1 grain GLU7", r: 0, jr: 1, u: uGrain, want: 20},
		{name: "region 2 grain GLU5", r: 1, jr: 0, u: uGrain, want: 12},
		{name: "region 2 grain GLU9", r: 1, jr: 1, u: uGrain, want: 0},
		{name: "region 1 cattle GLU5", r: 0, jr: 0, u: uCattle, want: 9},
		{name: "region 1 cattle GLU7", r: 0, jr: 1, u: uCattle, want: 0},
		{name: "region 2 cattle GLU5", r: 1, jr: 0, u: uCattle, want: 0},
		{name: "region 1 rice", r: 0, jr: 0, u: uRice, want: 0},
	})
	if v := rt.Legacy.Get(0, uGrain); v != 50 {
		t.Errorf("legacy grain rent %g", v)
	}
	if v := rt.ValueSum.Get(1, uCattle); different(v, 160, testTolerance) {
		t.Errorf("region 2 cattle value %g, want 160", v)
	}
	if v := rt.HarvestSum.Get(0, 0, 0); v != 200 {
		t.Errorf("region 1 GLU5 harvest %g", v)
	}
}

func TestRedistributeAgRentDonor(t *testing.T) {
	cfg := testConfig()
	cfg.Entities.Donors = []ShareDonor{{Name: "region 1", Recipients: []int{2}, Donor: 1}}
	cfg.Entities.index()
	p := runRent(t, cfg)
	checkRent(t, p.Rent, []rentTest{
		{name: "donor grain GLU5", r: 0, jr: 0, u: uGrain, want: 30},
		{name: "donor grain GLU7", r: 0, jr: 1, u: uGrain, want: 20},
		{name: "recipient grain GLU5", r: 1, jr: 0, u: uGrain, want: 7.2},
		{name: "recipient grain GLU9", r: 1, jr: 1, u: uGrain, want: 4.8},
	})
}

func TestRedistributeForestRent(t *testing.T) {
	p := runRent(t, testConfig())
	checkRent(t, p.Rent, []rentTest{
		{name: "forest GLU5", r: 0, jr: 0, u: uForest, want: 1e6 * 5 / 14},
		{name: "forest GLU7", r: 0, jr: 1, u: uForest, want: 1e6 * 9 / 14},
		{name: "no forest area", r: 1, jr: 0, u: uForest, want: 0},
	})
	if v := p.Rent.ForestArea.Get(0, 0); v != 14 {
		t.Errorf("forest area %g, want 14", v)
	}
}

func TestRedistributeForestRentBadZone(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.GLUOrig.Set(0, 40)
	err := p.Run(ReconcileMasks(), BuildLookup(), Disaggregate(),
		AggregateCrops(), RedistributeAgRent(), RedistributeForestRent())
	if !IsIndexError(err) {
		t.Errorf("want index error, have %v", err)
	}
}

func TestRedistributeForestRentNoZones(t *testing.T) {
	p := testPipeline(t, testConfig())
	p.Inputs.GLUOrig = nil
	if err := p.Run(DefaultStages()...); err != nil {
		t.Fatal(err)
	}
	checkRent(t, p.Rent, []rentTest{
		{name: "forest GLU5", r: 0, jr: 0, u: uForest, want: 0},
		{name: "forest GLU7", r: 0, jr: 1, u: uForest, want: 0},
		{name: "grain GLU5", r: 0, jr: 0, u: uGrain, want: 30},
	})
	if v := p.Rent.ForestArea.Sum(); v != 0 {
		t.Errorf("forest area %g, want 0", v)
	}
}

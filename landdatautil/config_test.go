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

package landdatautil

import (
	"encoding/binary"
	"io/ioutil"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/landdata"
	"github.com/spatialmodel/landdata/rasterio"
)

// defaultConfig returns a configuration holding only the default
// option values.
func defaultConfig() *viper.Viper {
	v := viper.New()
	for _, o := range options {
		v.SetDefault(o.name, o.defaultVal)
	}
	return v
}

func TestPipelineConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		c, err := PipelineConfig(defaultConfig())
		if err != nil {
			t.Fatal(err)
		}
		if want := landdata.DefaultConfig(); !reflect.DeepEqual(c, want) {
			t.Error(pretty.Diff(c, want))
		}
	})
	t.Run("slices", func(t *testing.T) {
		for _, test := range []struct {
			val  interface{}
			want []int
		}{
			{val: "[9,10]", want: []int{9, 10}},
			{val: []interface{}{int64(9), int64(11)}, want: []int{9, 11}},
			{val: []int{12}, want: []int{12}},
		} {
			v := defaultConfig()
			v.Set("LivestockSectors", test.val)
			c, err := PipelineConfig(v)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(c.LivestockSectors, test.want) {
				t.Errorf("%#v: have %v, want %v", test.val, c.LivestockSectors, test.want)
			}
		}
	})
	t.Run("errors", func(t *testing.T) {
		for _, test := range []struct {
			name string
			set  map[string]interface{}
		}{
			{name: "bad slice", set: map[string]interface{}{"ForestClasses": "one"}},
			{name: "no statistics", set: map[string]interface{}{"ReferenceYear": 2000}},
			{name: "window", set: map[string]interface{}{
				"ReferenceYear": 2000, "Tables.ReferenceStats": "stats.csv", "AveragingWindow": 0}},
			{name: "grain is livestock", set: map[string]interface{}{"LivestockSectors": []int{3}}},
			{name: "missing entity file", set: map[string]interface{}{"EntityFile": "does_not_exist.toml"}},
		} {
			t.Run(test.name, func(t *testing.T) {
				v := defaultConfig()
				for k, val := range test.set {
					v.Set(k, val)
				}
				if _, err := PipelineConfig(v); err == nil {
					t.Error("expected an error")
				}
			})
		}
	})
	t.Run("entity file", func(t *testing.T) {
		f, err := ioutil.TempFile("", "entities_*.toml")
		if err != nil {
			t.Fatal(err)
		}
		defer os.Remove(f.Name())
		f.WriteString("[[alias]]\nName = \"A\"\nMembers = [2]\nTarget = 1\n")
		f.Close()
		v := defaultConfig()
		v.Set("EntityFile", f.Name())
		c, err := PipelineConfig(v)
		if err != nil {
			t.Fatal(err)
		}
		if len(c.Entities.Donors) != 0 || c.Entities.Resolve(2) != 1 {
			t.Errorf("wrong entities: %# v", pretty.Formatter(c.Entities))
		}
	})
}

func TestGridConfig(t *testing.T) {
	g, coarse, err := GridConfig(defaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if g.NLat != 2160 || g.NLon != 4320 || coarse.NLat != 360 || coarse.NLon != 720 {
		t.Errorf("wrong grids: %dx%d, %dx%d", g.NLat, g.NLon, coarse.NLat, coarse.NLon)
	}
	for _, set := range []map[string]int{
		{"Cover.NLat": 7},
		{"Grid.NLon": 0},
		{"Cover.NLon": -1},
	} {
		v := defaultConfig()
		for k, val := range set {
			v.Set(k, val)
		}
		if _, _, err := GridConfig(v); err == nil {
			t.Errorf("%v: expected an error", set)
		}
	}
}

func TestInputFilesConfig(t *testing.T) {
	os.Setenv("LANDDATA_TEST_DIR", "/x")
	defer os.Unsetenv("LANDDATA_TEST_DIR")
	v := defaultConfig()
	v.Set("InputDir", "/data")
	v.Set("Tables.GLUs", "/tables/glu.csv")
	v.Set("Tables.ReferenceStats", "https://example.com/stats.xlsx")
	v.Set("Inputs.PotVeg", "${LANDDATA_TEST_DIR}/potveg.nc")
	v.Set("Inputs.CroplandDetails", `{"irrigated":"irr.bil"}`)
	v.Set("Inputs.PastureDetails", map[string]interface{}{"rangeland": "range.bil"})
	v.Set("Inputs.GrayWater", `{"Wheat":"wf/gray.bil"}`)
	v.Set("Inputs.BILType", "int16")
	v.Set("Inputs.BigEndian", true)
	f, err := InputFilesConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct{ have, want string }{
		{f.Countries, filepath.Join("/data", "countries.csv")},
		{f.GLUs, "/tables/glu.csv"},
		{f.ReferenceStats, "https://example.com/stats.xlsx"},
		{f.Cover, ""},
		{f.PotVeg, filepath.Join("/x", "potveg.nc")},
		{f.CropYield, filepath.Join("/data", "crops", "[CROP]_yield.bil")},
	} {
		if test.have != test.want {
			t.Errorf("have %q, want %q", test.have, test.want)
		}
	}
	if want := map[string]string{"irrigated": filepath.Join("/data", "irr.bil")}; !reflect.DeepEqual(f.CroplandDetails, want) {
		t.Errorf("cropland details: have %v, want %v", f.CroplandDetails, want)
	}
	if want := map[string]string{"rangeland": filepath.Join("/data", "range.bil")}; !reflect.DeepEqual(f.PastureDetails, want) {
		t.Errorf("pasture details: have %v, want %v", f.PastureDetails, want)
	}
	if want := map[string]string{"Wheat": filepath.Join("/data", "wf", "gray.bil")}; !reflect.DeepEqual(f.Water[landdata.GrayWater], want) {
		t.Errorf("gray water: have %v, want %v", f.Water[landdata.GrayWater], want)
	}
	if len(f.IrrigatedArea) != 0 || len(f.Water[landdata.BlueWater]) != 0 || f.VegCarbon != "" {
		t.Errorf("optional inputs should be blank: %v %v %q", f.IrrigatedArea, f.Water[landdata.BlueWater], f.VegCarbon)
	}
	want := rasterio.Options{Type: rasterio.Int16, Nodata: landdata.Nodata, ByteOrder: binary.BigEndian}
	if !reflect.DeepEqual(f.Raster, want) {
		t.Errorf("raster options: %v", pretty.Diff(f.Raster, want))
	}
	if f.LegacyZones != 18 {
		t.Errorf("legacy zones: %d", f.LegacyZones)
	}
	if p := cropPath(f.CropYield, landdata.Crop{Name: "Wheat"}); p != filepath.Join("/data", "crops", "Wheat_yield.bil") {
		t.Errorf("crop path %s", p)
	}

	for _, set := range []map[string]interface{}{
		{"Inputs.BILType": "complex128"},
		{"LegacyZones": 0},
		{"Inputs.CroplandDetails": "{irrigated"},
		{"Inputs.PastureDetails": 12},
		{"Inputs.RainfedArea": "{Wheat"},
	} {
		v := defaultConfig()
		for k, val := range set {
			v.Set(k, val)
		}
		if _, err := InputFilesConfig(v); err == nil {
			t.Errorf("%v: expected an error", set)
		}
	}
}

func TestResolvePath(t *testing.T) {
	for _, test := range []struct{ dir, p, want string }{
		{"in", "a.csv", filepath.Join("in", "a.csv")},
		{"in", "", ""},
		{"in", "/abs/a.csv", "/abs/a.csv"},
		{"in", "http://example.com/a.csv", "http://example.com/a.csv"},
	} {
		if have := resolvePath(test.dir, test.p); have != test.want {
			t.Errorf("resolvePath(%q, %q) = %q; want %q", test.dir, test.p, have, test.want)
		}
	}
}

func TestCheckOutputDir(t *testing.T) {
	if _, err := checkOutputDir(""); err == nil {
		t.Error("expected an error for a blank directory")
	}
	if _, err := checkOutputDir("does_not_exist"); err == nil {
		t.Error("expected an error for a missing directory")
	}
	if _, err := checkOutputDir("config.go"); err == nil {
		t.Error("expected an error for a file")
	}
	if d, err := checkOutputDir("."); err != nil || d != "." {
		t.Errorf("have %q, %v", d, err)
	}
	if f := checkLogFile("", "out"); f != filepath.Join("out", "landdata.log") {
		t.Errorf("log file %s", f)
	}
}

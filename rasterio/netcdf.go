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

package rasterio

import (
	"fmt"
	"os"

	"github.com/ctessum/cdf"
	"github.com/spatialmodel/landdata"
)

// ReadNetCDF reads a raster from a netCDF file. The variable must have the
// grid's latitude and longitude as its last two dimensions; any leading
// dimensions are bands. The missing-value marker is taken from the
// variable's _FillValue attribute if it has one.
func ReadNetCDF(rw cdf.ReaderWriterAt, name string, g *landdata.Grid, opt Options) (*landdata.Raster, error) {
	f, err := cdf.Open(rw)
	if err != nil {
		return nil, fmt.Errorf("rasterio: opening netcdf file for %s: %v", name, err)
	}
	v := opt.variable(name)
	dims := f.Header.Lengths(v)
	if len(dims) < 2 {
		return nil, fmt.Errorf("rasterio: netcdf variable %s is missing or not gridded", v)
	}
	nd := len(dims)
	if dims[nd-2] != g.NLat || dims[nd-1] != g.NLon {
		return nil, fmt.Errorf("rasterio: netcdf variable %s is %dx%d; want %dx%d",
			v, dims[nd-2], dims[nd-1], g.NLat, g.NLon)
	}
	bands := 1
	for _, d := range dims[:nd-2] {
		bands *= d
	}
	if opt.Band < 0 || opt.Band >= bands {
		return nil, fmt.Errorf("rasterio: netcdf variable %s has %d bands; band %d requested", v, bands, opt.Band)
	}

	start, end := make([]int, nd), make([]int, nd)
	b := opt.Band
	for i := nd - 3; i >= 0; i-- {
		start[i] = b % dims[i]
		end[i] = start[i] + 1
		b /= dims[i]
	}
	end[nd-2], end[nd-1] = g.NLat, g.NLon
	r := f.Reader(v, start, end)
	buf := r.Zero(g.Len())
	if _, err = r.Read(buf); err != nil {
		return nil, fmt.Errorf("rasterio: reading netcdf variable %s: %v", v, err)
	}
	vals, err := toFloat(buf)
	if err != nil {
		return nil, fmt.Errorf("rasterio: netcdf variable %s: %v", v, err)
	}

	nodata := float64(landdata.Nodata)
	if fill := f.Header.GetAttribute(v, "_FillValue"); fill != nil {
		fv, err := toFloat(fill)
		if err != nil || len(fv) == 0 {
			return nil, fmt.Errorf("rasterio: netcdf variable %s has an invalid _FillValue", v)
		}
		nodata = fv[0]
	}
	return landdata.RasterFromSlice(name, g, nodata, vals)
}

// toFloat converts the numeric slice types of netCDF files to float64.
func toFloat(buf interface{}) ([]float64, error) {
	var o []float64
	switch b := buf.(type) {
	case []uint8:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int8:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int16:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []int32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []float32:
		o = make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
	case []float64:
		o = append(o, b...)
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
	return o, nil
}

// WriteNetCDF writes rasters to netCDF file w as float32 variables with
// dimensions lat and lon. The grid origin and resolution are stored as
// global attributes.
func WriteNetCDF(w *os.File, g *landdata.Grid, rasters ...*landdata.Raster) error {
	h := cdf.NewHeader([]string{"lat", "lon"}, []int{g.NLat, g.NLon})
	h.AddAttribute("", "comment", "LandData raster file")
	h.AddAttribute("", "west", []float64{g.West})
	h.AddAttribute("", "north", []float64{g.North})
	h.AddAttribute("", "res", []float64{g.Res})
	for _, r := range rasters {
		if r.Len() != g.Len() {
			return fmt.Errorf("rasterio: raster %s has %d cells; want %d", r.Name, r.Len(), g.Len())
		}
		h.AddVariable(r.Name, []string{"lat", "lon"}, []float32{0})
		h.AddAttribute(r.Name, "_FillValue", []float32{float32(r.Nodata)})
	}
	h.Define()

	f, err := cdf.Create(w, h)
	if err != nil {
		return fmt.Errorf("rasterio: creating netcdf file: %v", err)
	}
	for _, r := range rasters {
		data32 := make([]float32, r.Len())
		for i, v := range r.Data.Elements {
			data32[i] = float32(v)
		}
		wr := f.Writer(r.Name, nil, nil)
		if _, err = wr.Write(data32); err != nil {
			return fmt.Errorf("rasterio: writing netcdf variable %s: %v", r.Name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

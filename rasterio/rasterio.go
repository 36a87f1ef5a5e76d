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

// Package rasterio reads and writes the gridded inputs and diagnostic
// outputs of LandData. Rasters are stored north-up, row-major, with one
// value per working-grid cell.
package rasterio

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spatialmodel/landdata"
)

// Options describe how to read a raster file.
type Options struct {
	// Variable is the netCDF variable name. It defaults to the raster name.
	Variable string

	// Band is the zero-based band in a multi-band file, for example the
	// year index of a land-use history.
	Band int

	// Type, Nodata and ByteOrder describe .bil files, which carry no
	// header. A zero Nodata means landdata.Nodata and a nil ByteOrder
	// means little-endian.
	Type      DataType
	Nodata    float64
	ByteOrder binary.ByteOrder
}

func (o Options) variable(name string) string {
	if o.Variable != "" {
		return o.Variable
	}
	return name
}

func (o Options) nodata() float64 {
	if o.Nodata == 0 {
		return landdata.Nodata
	}
	return o.Nodata
}

func (o Options) byteOrder() binary.ByteOrder {
	if o.ByteOrder == nil {
		return binary.LittleEndian
	}
	return o.ByteOrder
}

// Read reads the raster called name from the file at path, choosing the
// format from the file extension: .nc for netCDF and .bil, .bin or .flt
// for flat binary.
func Read(path, name string, g *landdata.Grid, opt Options) (*landdata.Raster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("rasterio: %v", err)
	}
	defer f.Close()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".nc", ".nc4", ".cdf":
		return ReadNetCDF(f, name, g, opt)
	case ".bil", ".bin", ".flt":
		return ReadBIL(f, name, g, opt)
	default:
		return nil, fmt.Errorf("rasterio: unsupported raster file extension %q in %s", ext, path)
	}
}

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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/spatialmodel/landdata"
)

// DataType is the element type of a flat binary raster.
type DataType int

// Flat binary element types.
const (
	Float32 DataType = iota
	Int32
	Int16
	Uint8
)

func (t DataType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int16:
		return "int16"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("DataType(%d)", int(t))
	}
}

// ParseDataType returns the data type with the given name.
func ParseDataType(s string) (DataType, error) {
	for t := Float32; t <= Uint8; t++ {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("rasterio: unknown data type %q", s)
}

func (t DataType) size() int {
	switch t {
	case Float32, Int32:
		return 4
	case Int16:
		return 2
	default:
		return 1
	}
}

func (t DataType) zero(n int) (interface{}, error) {
	switch t {
	case Float32:
		return make([]float32, n), nil
	case Int32:
		return make([]int32, n), nil
	case Int16:
		return make([]int16, n), nil
	case Uint8:
		return make([]uint8, n), nil
	default:
		return nil, fmt.Errorf("rasterio: unknown data type %d", int(t))
	}
}

// ReadBIL reads band opt.Band of a headerless band-interleaved raster. Each
// band holds one value of type opt.Type per grid cell.
func ReadBIL(r io.ReaderAt, name string, g *landdata.Grid, opt Options) (*landdata.Raster, error) {
	if opt.Band < 0 {
		return nil, fmt.Errorf("rasterio: negative band %d for %s", opt.Band, name)
	}
	buf, err := opt.Type.zero(g.Len())
	if err != nil {
		return nil, err
	}
	n := int64(g.Len() * opt.Type.size())
	sr := io.NewSectionReader(r, int64(opt.Band)*n, n)
	if err := binary.Read(sr, opt.byteOrder(), buf); err != nil {
		return nil, fmt.Errorf("rasterio: reading band %d of %s: %v", opt.Band, name, err)
	}
	vals, err := toFloat(buf)
	if err != nil {
		return nil, err
	}
	return landdata.RasterFromSlice(name, g, opt.nodata(), vals)
}

// WriteBIL writes r as one band of type t. Integer types truncate.
func WriteBIL(w io.Writer, r *landdata.Raster, t DataType, order binary.ByteOrder) error {
	if order == nil {
		order = binary.LittleEndian
	}
	var buf interface{}
	switch t {
	case Float32:
		b := make([]float32, r.Len())
		for i, v := range r.Data.Elements {
			b[i] = float32(v)
		}
		buf = b
	case Int32:
		b := make([]int32, r.Len())
		for i, v := range r.Data.Elements {
			b[i] = int32(v)
		}
		buf = b
	case Int16:
		b := make([]int16, r.Len())
		for i, v := range r.Data.Elements {
			b[i] = int16(v)
		}
		buf = b
	case Uint8:
		b := make([]uint8, r.Len())
		for i, v := range r.Data.Elements {
			b[i] = uint8(v)
		}
		buf = b
	default:
		return fmt.Errorf("rasterio: unknown data type %d", int(t))
	}
	if err := binary.Write(w, order, buf); err != nil {
		return fmt.Errorf("rasterio: writing %s: %v", r.Name, err)
	}
	return nil
}

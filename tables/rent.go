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

package tables

import (
	"fmt"
	"io"

	"github.com/ctessum/sparse"
	"github.com/spatialmodel/landdata"
)

// ReadLegacyRent reads legacy land rent [million USD] by land-rent
// region, use sector and legacy zone. Columns: land_rent_region,
// use_sector, zone (1..zones) and value. The result has shape
// [land-rent regions, use sectors, zones]; repeated keys are summed.
func ReadLegacyRent(r io.Reader, landRent, useSectors *landdata.CodeTable, zones int) (*sparse.DenseArray, error) {
	t, err := readCSV(r, "legacy rent table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("land_rent_region", "use_sector", "zone", "value")
	if err != nil {
		return nil, err
	}
	o := sparse.ZerosDense(landRent.Len(), useSectors.Len(), zones)
	for i := range t.rows {
		var lr, use, z int
		var v float64
		if lr, err = t.int(i, c[0]); err != nil {
			return nil, err
		}
		if use, err = t.int(i, c[1]); err != nil {
			return nil, err
		}
		if z, err = t.int(i, c[2]); err != nil {
			return nil, err
		}
		if v, err = t.float(i, c[3]); err != nil {
			return nil, err
		}
		ri, ok := landRent.Index(lr)
		if !ok {
			return nil, fmt.Errorf("tables: legacy rent line %d: unknown land-rent region %d", i+2, lr)
		}
		ui, ok := useSectors.Index(use)
		if !ok {
			return nil, fmt.Errorf("tables: legacy rent line %d: unknown use sector %d", i+2, use)
		}
		if z < 1 || z > zones {
			return nil, fmt.Errorf("tables: legacy rent line %d: zone %d is outside 1..%d", i+2, z, zones)
		}
		o.AddVal(v, ri, ui, z-1)
	}
	return o, nil
}

// ReadProducerPrices reads producer prices [USD/t] by land-rent region
// and crop. Columns: land_rent_region, crop (crop code) and price. The
// result has shape [land-rent regions, crops]. Missing prices are zero.
func ReadProducerPrices(r io.Reader, landRent *landdata.CodeTable, crops []landdata.Crop) (*sparse.DenseArray, error) {
	t, err := readCSV(r, "producer price table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("land_rent_region", "crop", "price")
	if err != nil {
		return nil, err
	}
	ci := cropIndex(crops)
	o := sparse.ZerosDense(landRent.Len(), len(crops))
	for i := range t.rows {
		lr, err := t.int(i, c[0])
		if err != nil {
			return nil, err
		}
		crop, err := t.int(i, c[1])
		if err != nil {
			return nil, err
		}
		price, err := t.float(i, c[2])
		if err != nil {
			return nil, err
		}
		ri, ok := landRent.Index(lr)
		if !ok {
			return nil, fmt.Errorf("tables: producer price line %d: unknown land-rent region %d", i+2, lr)
		}
		k, ok := ci[crop]
		if !ok {
			return nil, fmt.Errorf("tables: producer price line %d: unknown crop %d", i+2, crop)
		}
		o.Set(price, ri, k)
	}
	return o, nil
}

// ReadCover reads coarse land cover [km²] by coarse cell and vegetation
// class. Columns: cell (row-major index in the coarse grid), class and
// area.
func ReadCover(r io.Reader, coarse *landdata.Grid, vegClasses *landdata.CodeTable) (*landdata.CoverGrid, error) {
	t, err := readCSV(r, "land cover table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("cell", "class", "area")
	if err != nil {
		return nil, err
	}
	o := &landdata.CoverGrid{Grid: coarse, Area: sparse.ZerosDense(coarse.Len(), vegClasses.Len())}
	for i := range t.rows {
		cell, err := t.int(i, c[0])
		if err != nil {
			return nil, err
		}
		class, err := t.int(i, c[1])
		if err != nil {
			return nil, err
		}
		area, err := t.float(i, c[2])
		if err != nil {
			return nil, err
		}
		if cell < 0 || cell >= coarse.Len() {
			return nil, fmt.Errorf("tables: land cover line %d: cell %d is outside the %dx%d grid",
				i+2, cell, coarse.NLat, coarse.NLon)
		}
		k, ok := vegClasses.Index(class)
		if !ok {
			return nil, fmt.Errorf("tables: land cover line %d: unknown vegetation class %d", i+2, class)
		}
		o.Area.AddVal(area, cell, k)
	}
	return o, nil
}

// ReadVegCarbon reads soil and vegetation carbon densities [kg C/m²] by
// vegetation class. Columns: class, soil_c and veg_c. The result has
// shape [vegetation classes, 2] and classes without a line are zero.
func ReadVegCarbon(r io.Reader, vegClasses *landdata.CodeTable) (*sparse.DenseArray, error) {
	t, err := readCSV(r, "carbon density table")
	if err != nil {
		return nil, err
	}
	c, err := t.columns("class", "soil_c", "veg_c")
	if err != nil {
		return nil, err
	}
	o := sparse.ZerosDense(vegClasses.Len(), 2)
	for i := range t.rows {
		class, err := t.int(i, c[0])
		if err != nil {
			return nil, err
		}
		k, ok := vegClasses.Index(class)
		if !ok {
			return nil, fmt.Errorf("tables: carbon density line %d: unknown vegetation class %d", i+2, class)
		}
		for j, col := range c[1:] {
			v, err := t.float(i, col)
			if err != nil {
				return nil, err
			}
			if v < 0 {
				return nil, fmt.Errorf("tables: carbon density line %d: negative density %g", i+2, v)
			}
			o.Set(v, k, j)
		}
	}
	return o, nil
}

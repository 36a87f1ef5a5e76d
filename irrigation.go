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

import "github.com/sirupsen/logrus"

// MmKmSq2M3 converts a water depth [mm] over an area [km²] to a volume
// [m³].
const MmKmSq2M3 = 1000

// WaterType is a component of a crop water footprint.
type WaterType int

// Water types.
const (
	BlueWater WaterType = iota
	GreenWater
	GrayWater

	// NumWaterTypes is the number of water footprint components.
	NumWaterTypes
)

func (w WaterType) String() string {
	switch w {
	case BlueWater:
		return "blue"
	case GreenWater:
		return "green"
	case GrayWater:
		return "gray"
	default:
		return "total"
	}
}

// IrrigationTable holds irrigated and rainfed harvested area and crop
// water use keyed by country, GLU and crop index. An aggregate is nil if
// no crop has the matching raster.
type IrrigationTable struct {
	// Irrigated and Rainfed [ha].
	Irrigated, Rainfed *Aggregate

	// Water [m³] holds one aggregate per water type.
	Water [NumWaterTypes]*Aggregate
}

// Total returns the water use [m³] of all types for an entry.
func (it *IrrigationTable) Total(o, j, k int) float64 {
	var s float64
	for _, a := range it.Water {
		if a != nil {
			s += a.Get(o, j, k)
		}
	}
	return s
}

// AggregateIrrigation sums the irrigated and rainfed harvested area and
// the water footprint of every crop over the source-A land cells into
// country × GLU × crop, keyed the same way as the crop statistics. Water
// depths are converted to volumes with the cell area. The stage does
// nothing if no crop has irrigation or water rasters.
func AggregateIrrigation() Stage {
	return func(p *Pipeline) error {
		if err := p.require("AggregateIrrigation", p.Masks, p.Lookup); err != nil {
			return err
		}
		log := p.stageLog("AggregateIrrigation")
		nc := len(p.Tables.Crops)
		it := new(IrrigationTable)
		for _, cr := range p.Inputs.Crops {
			if cr.Crop < 0 || cr.Crop >= nc {
				return indexError("landdata: crop index %d", cr.Crop)
			}
			if cr.Irrigated != nil && it.Irrigated == nil {
				it.Irrigated = NewAggregate(p.Lookup.Country, nc)
			}
			if cr.Rainfed != nil && it.Rainfed == nil {
				it.Rainfed = NewAggregate(p.Lookup.Country, nc)
			}
			for w, r := range cr.Water {
				if r != nil && it.Water[w] == nil {
					it.Water[w] = NewAggregate(p.Lookup.Country, nc)
				}
			}
		}
		if it.empty() {
			log.Debug("no irrigation or water footprint rasters")
			return nil
		}
		for _, cr := range p.Inputs.Crops {
			if !cr.hasIrrigation() {
				continue
			}
			k := cr.Crop
			f := logrus.Fields{"crop": p.Tables.Crops[k].Name}
			var irr, rfd float64
			var water [NumWaterTypes]float64
			for _, i := range p.Masks.CellsA {
				ti, j, ok, err := p.cropKey(i)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				if v := cr.Irrigated.valueOr(i, 0); v > 0 {
					it.Irrigated.Add(ti, j, k, v)
					irr += v
				}
				if v := cr.Rainfed.valueOr(i, 0); v > 0 {
					it.Rainfed.Add(ti, j, k, v)
					rfd += v
				}
				for w, r := range cr.Water {
					if v := r.valueOr(i, 0); v > 0 {
						v *= MmKmSq2M3 * p.Grid.CellArea(i)
						it.Water[w].Add(ti, j, k, v)
						water[w] += v
					}
				}
			}
			f["irrigated_ha"], f["rainfed_ha"] = irr, rfd
			for w, v := range water {
				f[WaterType(w).String()+"_m3"] = v
			}
			log.WithFields(f).Info("irrigation and water use")
		}
		p.Irrigation = it
		return nil
	}
}

func (cr *CropRaster) hasIrrigation() bool {
	if cr.Irrigated != nil || cr.Rainfed != nil {
		return true
	}
	for _, r := range cr.Water {
		if r != nil {
			return true
		}
	}
	return false
}

// HasWater returns whether any crop has a water footprint.
func (it *IrrigationTable) HasWater() bool {
	for _, a := range it.Water {
		if a != nil {
			return true
		}
	}
	return false
}

func (it *IrrigationTable) empty() bool {
	return it.Irrigated == nil && it.Rainfed == nil && !it.HasWater()
}


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

import "fmt"

// Config holds the numerical settings of a pipeline run.
type Config struct {
	// ReferenceYear is the year whose statistics crop aggregates are
	// recalibrated to. Zero disables recalibration.
	ReferenceYear int

	// AveragingWindow is the number of years averaged around
	// ReferenceYear.
	AveragingWindow int

	// ZeroTolerance is the rounding tolerance [km²] below which residual
	// areas are set to zero.
	ZeroTolerance float64

	// MarginTolerance [km²] is the largest difference between the two
	// land-area sources in a cell that is not counted as a disagreement.
	MarginTolerance float64

	// AreaDenominatorMin [km²] and ProductionDenominatorMin [t] are the
	// smallest aggregate totals that recalibration divides by.
	AreaDenominatorMin       float64
	ProductionDenominatorMin float64

	// Seed initializes the disaggregation visiting order.
	Seed int64

	// OrderCacheSize is the number of visiting orders kept in memory.
	OrderCacheSize int

	// ScaleCoverToCapacity scales each coarse cover vector so that its
	// total matches the available reference-vegetation area.
	ScaleCoverToCapacity bool

	GrainSector      int
	LivestockSectors []int
	ForestSector     int

	// ForestClasses are the potential vegetation classes that count as
	// forest.
	ForestClasses []int

	// LandUseYear is the year of the land-use rasters, which labels the
	// land-type area table.
	LandUseYear int

	// Diagnostics enables per-cell warnings and diagnostic rasters.
	Diagnostics bool

	Entities *Entities
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		AveragingWindow:          5,
		ZeroTolerance:            1e-6,
		MarginTolerance:          1e-6,
		AreaDenominatorMin:       1e-4,
		ProductionDenominatorMin: 0.1,
		Seed:                     1,
		OrderCacheSize:           1000,
		GrainSector:              3,
		LivestockSectors:         []int{9, 11, 12},
		ForestSector:             13,
		ForestClasses:            []int{1, 2, 3, 4, 5, 6, 7, 8},
		LandUseYear:              2010,
		Entities:                 DefaultEntities(),
	}
}

func (c *Config) check() error {
	switch {
	case c.ReferenceYear < 0:
		return fmt.Errorf("landdata: ReferenceYear must not be negative; got %d", c.ReferenceYear)
	case c.ReferenceYear != 0 && c.AveragingWindow < 1:
		return fmt.Errorf("landdata: AveragingWindow must be at least 1; got %d", c.AveragingWindow)
	case c.ZeroTolerance < 0:
		return fmt.Errorf("landdata: ZeroTolerance must not be negative; got %g", c.ZeroTolerance)
	case c.MarginTolerance < 0:
		return fmt.Errorf("landdata: MarginTolerance must not be negative; got %g", c.MarginTolerance)
	case c.AreaDenominatorMin < 0 || c.ProductionDenominatorMin < 0:
		return fmt.Errorf("landdata: recalibration denominators must not be negative")
	case c.OrderCacheSize < 0:
		return fmt.Errorf("landdata: OrderCacheSize must not be negative; got %d", c.OrderCacheSize)
	case c.Entities == nil:
		return fmt.Errorf("landdata: missing entity table")
	}
	return nil
}

func (c *Config) isLivestock(sector int) bool {
	for _, s := range c.LivestockSectors {
		if s == sector {
			return true
		}
	}
	return false
}

func (c *Config) isForestClass(v int) bool {
	for _, f := range c.ForestClasses {
		if f == v {
			return true
		}
	}
	return false
}

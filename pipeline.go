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
	"fmt"

	"github.com/sirupsen/logrus"
)

// Version is the version of LandData.
const Version = "0.1.0"

// Stage is a step of the land data pipeline. Each stage reads the results
// of earlier stages from the pipeline and stores its own.
type Stage func(*Pipeline) error

// Pipeline holds the inputs, settings and intermediate results of a run.
type Pipeline struct {
	Grid   *Grid
	Config Config
	Inputs *Inputs
	Tables *Tables
	Log    logrus.FieldLogger

	Masks     *Masks
	Lookup    *Lookup
	LandTypes *LandTypes
	Cover     *Cover
	Crops     *CropAggregate
	Rent      *RentTable

	// LandTypeArea [ha] is keyed by country × GLU × land-type category.
	LandTypeArea *Aggregate

	// Carbon, Irrigation and Regions are nil until their stages run, and
	// Carbon and Irrigation stay nil without their optional inputs.
	Carbon     *CarbonTable
	Irrigation *IrrigationTable
	Regions    *RegionTable

	target []int
}

// NewPipeline checks the inputs and returns a pipeline ready to run.
func NewPipeline(g *Grid, cfg Config, in *Inputs, t *Tables, log logrus.FieldLogger) (*Pipeline, error) {
	if err := cfg.check(); err != nil {
		return nil, err
	}
	if err := t.check(); err != nil {
		return nil, err
	}
	if err := in.check(g); err != nil {
		return nil, err
	}
	if err := cfg.Entities.Validate(t.Countries, t.LandRentRegions); err != nil {
		return nil, err
	}
	target, err := targets(t.Countries, cfg.Entities)
	if err != nil {
		return nil, err
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		Grid:   g,
		Config: cfg,
		Inputs: in,
		Tables: t,
		Log:    log,
		target: target,
	}, nil
}

// Run runs the given stages in order, stopping at the first error.
func (p *Pipeline) Run(stages ...Stage) error {
	for _, s := range stages {
		if err := s(p); err != nil {
			return err
		}
	}
	return nil
}

// DefaultStages returns every stage in the order a full run needs them.
func DefaultStages() []Stage {
	return []Stage{
		ReconcileMasks(),
		BuildLookup(),
		BuildLandTypes(),
		Disaggregate(),
		AggregateCrops(),
		AggregateIrrigation(),
		Recalibrate(),
		RedistributeAgRent(),
		RedistributeForestRent(),
		AggregateRegions(),
		LandTypeAreas(),
		CarbonDensity(),
	}
}

func (p *Pipeline) stageLog(name string) logrus.FieldLogger {
	return p.Log.WithField("stage", name)
}

// cellWarning logs a per-cell data warning, which is only shown at the
// warning level when diagnostics are enabled.
func (p *Pipeline) cellWarning(log logrus.FieldLogger, cell int, msg string) {
	e := log.WithField("cell", cell)
	if p.Config.Diagnostics {
		e.Warn(msg)
	} else {
		e.Debug(msg)
	}
}

// require returns an error if a stage runs before the ones it needs.
func (p *Pipeline) require(stage string, needs ...interface{}) error {
	for _, n := range needs {
		switch v := n.(type) {
		case *Masks:
			if v == nil {
				return fmt.Errorf("landdata: %s needs ReconcileMasks to run first", stage)
			}
		case *Lookup:
			if v == nil {
				return fmt.Errorf("landdata: %s needs BuildLookup to run first", stage)
			}
		case *LandTypes:
			if v == nil {
				return fmt.Errorf("landdata: %s needs BuildLandTypes to run first", stage)
			}
		case *Cover:
			if v == nil {
				return fmt.Errorf("landdata: %s needs Disaggregate to run first", stage)
			}
		case *CropAggregate:
			if v == nil {
				return fmt.Errorf("landdata: %s needs AggregateCrops to run first", stage)
			}
		case *RentTable:
			if v == nil {
				return fmt.Errorf("landdata: %s needs RedistributeAgRent to run first", stage)
			}
		}
	}
	return nil
}

// resolve returns the table index of the country that the country at
// table index ci aggregates into.
func (p *Pipeline) resolve(ci int) int { return p.target[ci] }

// targets maps every country table index to the index of its alias target.
func targets(t *CountryTable, e *Entities) ([]int, error) {
	o := make([]int, t.Len())
	for i, c := range t.Countries {
		ti, ok := t.Index(e.Resolve(c.Code))
		if !ok {
			return nil, indexError("landdata: alias target of country %d", c.Code)
		}
		o[i] = ti
	}
	return o, nil
}

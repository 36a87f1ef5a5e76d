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
	"io"

	"github.com/BurntSushi/toml"
)

// EntityAlias merges several administrative country codes into one
// composite entity for aggregation and output.
type EntityAlias struct {
	Name string

	// Members are the administrative codes that resolve to Target.
	Members []int
	Target  int

	// MergedThrough is the last year for which reference statistics are
	// reported only for Target. Members use their own statistics after it.
	MergedThrough int `toml:"merged_through"`
}

// ShareDonor lets the Recipients land-rent regions borrow the per-GLU
// value shares of the Donor land-rent region when redistributing land
// rent.
type ShareDonor struct {
	Name       string
	Recipients []int
	Donor      int
}

// Entities holds the entity alias and share-donor tables.
type Entities struct {
	Aliases []EntityAlias `toml:"alias"`
	Donors  []ShareDonor  `toml:"donor"`

	alias map[int]*EntityAlias
	donor map[int]int
}

// DefaultEntities returns the standard entity table: countries Serbia
// (272) and Montenegro (273) merged into Serbia and Montenegro (186) with
// combined statistics through 2005, and land-rent regions Hong Kong (25)
// and Taiwan (60) borrowing the value shares of Vietnam (66).
func DefaultEntities() *Entities {
	e := &Entities{
		Aliases: []EntityAlias{
			{Name: "Serbia and Montenegro", Members: []int{272, 273}, Target: 186, MergedThrough: 2005},
		},
		Donors: []ShareDonor{
			{Name: "Vietnam", Recipients: []int{25, 60}, Donor: 66},
		},
	}
	e.index()
	return e
}

// LoadEntities decodes an entity table in TOML format, for example:
//
//	[[alias]]
//	Name = "Serbia and Montenegro"
//	Members = [272, 273]
//	Target = 186
//	merged_through = 2005
//
//	[[donor]]
//	Name = "Vietnam"
//	Recipients = [25, 60]
//	Donor = 66
func LoadEntities(r io.Reader) (*Entities, error) {
	e := new(Entities)
	if _, err := toml.DecodeReader(r, e); err != nil {
		return nil, fmt.Errorf("landdata: decoding entity table: %v", err)
	}
	if err := e.check(); err != nil {
		return nil, err
	}
	e.index()
	return e, nil
}

func (e *Entities) check() error {
	seen := make(map[int]bool)
	for _, a := range e.Aliases {
		for _, m := range a.Members {
			if m == a.Target {
				return fmt.Errorf("landdata: alias %q lists its target %d as a member", a.Name, m)
			}
			if seen[m] {
				return fmt.Errorf("landdata: country %d is a member of more than one alias", m)
			}
			seen[m] = true
		}
	}
	for _, a := range e.Aliases {
		if seen[a.Target] {
			return fmt.Errorf("landdata: alias target %d is itself an alias member", a.Target)
		}
	}
	seen = make(map[int]bool)
	for _, d := range e.Donors {
		for _, r := range d.Recipients {
			if r == d.Donor {
				return fmt.Errorf("landdata: donor %q lists itself as a recipient", d.Name)
			}
			if seen[r] {
				return fmt.Errorf("landdata: country %d has more than one share donor", r)
			}
			seen[r] = true
		}
	}
	return nil
}

func (e *Entities) index() {
	e.alias = make(map[int]*EntityAlias)
	e.donor = make(map[int]int)
	for i := range e.Aliases {
		for _, m := range e.Aliases[i].Members {
			e.alias[m] = &e.Aliases[i]
		}
	}
	for _, d := range e.Donors {
		for _, r := range d.Recipients {
			e.donor[r] = d.Donor
		}
	}
}

// Resolve returns the code that administrative country code c aggregates
// into.
func (e *Entities) Resolve(c int) int {
	if a, ok := e.alias[c]; ok {
		return a.Target
	}
	return c
}

// Alias returns the alias that c is a member of, or nil.
func (e *Entities) Alias(c int) *EntityAlias {
	return e.alias[c]
}

// Donor returns the land-rent region code whose value shares land-rent
// region c borrows, if any.
func (e *Entities) Donor(c int) (int, bool) {
	d, ok := e.donor[c]
	return d, ok
}

// Validate checks that every alias code is in the country table and
// every share-donor code is in the land-rent region table.
func (e *Entities) Validate(t *CountryTable, landRent *CodeTable) error {
	for _, a := range e.Aliases {
		if _, ok := t.Index(a.Target); !ok {
			return indexError("landdata: alias %q target %d is not a known country", a.Name, a.Target)
		}
		for _, m := range a.Members {
			if _, ok := t.Index(m); !ok {
				return indexError("landdata: alias %q member %d is not a known country", a.Name, m)
			}
		}
	}
	for _, d := range e.Donors {
		for _, c := range append([]int{d.Donor}, d.Recipients...) {
			if _, ok := landRent.Index(c); !ok {
				return indexError("landdata: share donor %q land-rent region %d is not a known region", d.Name, c)
			}
		}
	}
	return nil
}

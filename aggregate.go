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

import "github.com/ctessum/sparse"

// Aggregate holds values keyed by owner (a country or region), GLU within
// the owner, and an inner key such as a crop, use sector or land-type
// category. The number of GLUs differs by owner, so each owner gets its own
// GLU × inner-key array.
type Aggregate struct {
	Keys  []GLUList
	Inner int

	data []*sparse.DenseArray
}

// NewAggregate returns a zeroed aggregate over the given GLU lists.
func NewAggregate(keys []GLUList, inner int) *Aggregate {
	a := &Aggregate{Keys: keys, Inner: inner, data: make([]*sparse.DenseArray, len(keys))}
	for o, k := range keys {
		a.data[o] = sparse.ZerosDense(len(k), inner)
	}
	return a
}

// Len returns the number of owners.
func (a *Aggregate) Len() int { return len(a.data) }

// Add adds v to the entry of owner o, GLU index j and inner key k.
func (a *Aggregate) Add(o, j, k int, v float64) { a.data[o].AddVal(v, j, k) }

// Get returns the value of an entry.
func (a *Aggregate) Get(o, j, k int) float64 { return a.data[o].Get(j, k) }

// Set sets the value of an entry.
func (a *Aggregate) Set(o, j, k int, v float64) { a.data[o].Set(v, j, k) }

// Reset sets every entry to zero.
func (a *Aggregate) Reset() {
	for _, d := range a.data {
		for i := range d.Elements {
			d.Elements[i] = 0
		}
	}
}

// OwnerSum returns the sum over all GLUs of owner o for inner key k.
func (a *Aggregate) OwnerSum(o, k int) float64 {
	var s float64
	for j := range a.Keys[o] {
		s += a.Get(o, j, k)
	}
	return s
}

// Sum returns the sum of every entry.
func (a *Aggregate) Sum() float64 {
	var s float64
	for _, d := range a.data {
		s += d.Sum()
	}
	return s
}

// Each calls f for every non-zero entry in owner, GLU, inner-key order.
func (a *Aggregate) Each(f func(o, j, k int, v float64)) {
	for o, d := range a.data {
		for i, v := range d.Elements {
			if v != 0 {
				f(o, i/a.Inner, i%a.Inner, v)
			}
		}
	}
}

// Copy returns a deep copy of a.
func (a *Aggregate) Copy() *Aggregate {
	b := &Aggregate{Keys: a.Keys, Inner: a.Inner, data: make([]*sparse.DenseArray, len(a.data))}
	for o, d := range a.data {
		b.data[o] = d.Copy()
	}
	return b
}

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

import "github.com/pkg/errors"

var (
	// ErrIndex is the cause of errors raised when a lookup that the
	// pipeline's own construction guarantees should succeed does not.
	// It always signals an earlier consistency failure and is fatal.
	ErrIndex = errors.New("landdata: index not found")

	// ErrCalc is the cause of errors raised when a calculation produces
	// a result outside its valid range, for example a land-use footprint
	// that exceeds the land area beyond the rounding tolerance.
	ErrCalc = errors.New("landdata: calculation error")
)

func indexError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrIndex, format, args...)
}

func calcError(format string, args ...interface{}) error {
	return errors.Wrapf(ErrCalc, format, args...)
}

// IsIndexError reports whether err was caused by a failed index lookup.
func IsIndexError(err error) bool { return errors.Cause(err) == ErrIndex }

// IsCalcError reports whether err was caused by a failed calculation.
func IsCalcError(err error) bool { return errors.Cause(err) == ErrCalc }

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

// Command landdata is a command-line interface for the LandData land data
// system.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/landdata/landdatautil"
)

func main() {
	if err := landdatautil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}

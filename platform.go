/*
Copyright © 2023 the profsel authors.
This file is part of profsel.

profsel is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

profsel is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with profsel.  If not, see <http://www.gnu.org/licenses/>.
*/

package profsel

import "sort"

// PlatformCount is the number of stations of one platform type.
type PlatformCount struct {
	Platform string
	Stations int
}

// CountPlatforms tallies the platform labels of a set of stations,
// sorted by decreasing number of stations and then by label.
func CountPlatforms(platforms []string) []PlatformCount {
	m := make(map[string]int)
	for _, p := range platforms {
		m[p]++
	}
	o := make([]PlatformCount, 0, len(m))
	for p, n := range m {
		o = append(o, PlatformCount{Platform: p, Stations: n})
	}
	sort.Slice(o, func(i, j int) bool {
		if o[i].Stations != o[j].Stations {
			return o[i].Stations > o[j].Stations
		}
		return o[i].Platform < o[j].Platform
	})
	return o
}

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

// Package profsel selects oceanographic profile observations of a single
// variable from an EMODnet-style netCDF profile collection. Samples are
// admitted by quality flag, presence, platform type and time window, and
// the retained station coordinates can be plotted on a map or saved for
// later use.
package profsel

// Version gives the version number.
const Version = "0.3.0"

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

import (
	"fmt"
	"image/color"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Coastline holds the outlines read from a coastline shapefile.
// It implements plot.Plotter.
type Coastline struct {
	Lines []geom.LineString

	// LineStyle is the style of the outlines.
	draw.LineStyle
}

// ReadCoastline reads the line and polygon shapes in the given
// shapefile. The coordinates must be longitude and latitude in degrees.
func ReadCoastline(filename string) (*Coastline, error) {
	f, err := shp.NewDecoder(filename)
	if err != nil {
		return nil, fmt.Errorf("profsel: opening coastline shapefile %s: %v", filename, err)
	}
	defer f.Close()

	c := &Coastline{
		LineStyle: draw.LineStyle{
			Color: color.Black,
			Width: 0.5,
		},
	}
	for {
		g, _, more := f.DecodeRowFields()
		if !more {
			break
		}
		c.Lines = append(c.Lines, outlines(g)...)
	}
	if err := f.Error(); err != nil {
		return nil, fmt.Errorf("profsel: reading coastline shapefile %s: %v", filename, err)
	}
	return c, nil
}

// outlines returns the paths making up g.
func outlines(g geom.Geom) []geom.LineString {
	switch t := g.(type) {
	case geom.LineString:
		return []geom.LineString{t}
	case geom.MultiLineString:
		return t
	case geom.Polygonal:
		var o []geom.LineString
		for _, p := range t.Polygons() {
			for _, r := range p {
				if len(r) == 0 {
					continue
				}
				// Close the ring.
				l := make(geom.LineString, len(r), len(r)+1)
				copy(l, r)
				o = append(o, append(l, r[0]))
			}
		}
		return o
	}
	return nil
}

// Plot implements plot.Plotter.
func (c *Coastline) Plot(dc draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&dc)
	lines := make([][]vg.Point, 0, len(c.Lines))
	for _, l := range c.Lines {
		line := make([]vg.Point, len(l))
		for i, pt := range l {
			line[i] = vg.Point{X: trX(pt.X), Y: trY(pt.Y)}
		}
		lines = append(lines, line)
	}
	dc.StrokeLines(c.LineStyle, dc.ClipLinesXY(lines...)...)
}

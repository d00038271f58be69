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
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
)

var (
	errYearUnderflow = errors.New("profsel: year colormap value underflow")
	errYearOverflow  = errors.New("profsel: year colormap value overflow")
)

// YearColorMap is a palette.ColorMap that assigns one constant color to
// each calendar year. A value v falls in year floor(v), so the map
// covers [first, last+1].
type YearColorMap struct {
	colors []color.Color
	first  int
	alpha  float64
}

// NewYearColorMap returns a colormap with one color per year from
// first to last inclusive, sampled evenly from base.
// If base is nil, moreland.Kindlmann is used.
func NewYearColorMap(first, last int, base palette.ColorMap) (*YearColorMap, error) {
	if last < first {
		return nil, fmt.Errorf("profsel: last year %d is before first year %d", last, first)
	}
	if base == nil {
		base = moreland.Kindlmann()
	}
	base.SetMax(1)
	base.SetMin(0)
	n := last - first + 1
	cm := &YearColorMap{
		colors: make([]color.Color, n),
		first:  first,
		alpha:  1,
	}
	for i := range cm.colors {
		// Skip the end points; they are black and white for most
		// luminance maps.
		c, err := base.At(float64(i+1) / float64(n+1))
		if err != nil {
			return nil, err
		}
		cm.colors[i] = c
	}
	return cm, nil
}

// Year returns the color of the given year.
func (cm *YearColorMap) Year(year int) (color.Color, error) {
	return cm.At(float64(year))
}

// At implements palette.ColorMap.
func (cm *YearColorMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, fmt.Errorf("profsel: year colormap value is NaN")
	case v < cm.Min():
		return nil, errYearUnderflow
	case v > cm.Max():
		return nil, errYearOverflow
	}
	i := int(math.Floor(v)) - cm.first
	if i == len(cm.colors) {
		i--
	}
	return cm.withAlpha(cm.colors[i]), nil
}

func (cm *YearColorMap) withAlpha(c color.Color) color.Color {
	if cm.alpha == 1 {
		return c
	}
	r, g, b, a := c.RGBA()
	return color.NRGBA64{
		R: scaleChannel(r, a),
		G: scaleChannel(g, a),
		B: scaleChannel(b, a),
		A: uint16(cm.alpha * float64(a)),
	}
}

// scaleChannel converts an alpha-premultiplied channel to a
// non-premultiplied one.
func scaleChannel(c, a uint32) uint16 {
	if a == 0 {
		return 0
	}
	return uint16(c * 0xffff / a)
}

// Min implements palette.ColorMap.
func (cm *YearColorMap) Min() float64 { return float64(cm.first) }

// Max implements palette.ColorMap.
func (cm *YearColorMap) Max() float64 { return float64(cm.first + len(cm.colors)) }

// SetMin implements palette.ColorMap. The year range is fixed at
// construction, so SetMin panics if v changes it.
func (cm *YearColorMap) SetMin(v float64) {
	if v != cm.Min() {
		panic("profsel: the year range of a YearColorMap cannot be changed")
	}
}

// SetMax implements palette.ColorMap. The year range is fixed at
// construction, so SetMax panics if v changes it.
func (cm *YearColorMap) SetMax(v float64) {
	if v != cm.Max() {
		panic("profsel: the year range of a YearColorMap cannot be changed")
	}
}

// Alpha implements palette.ColorMap.
func (cm *YearColorMap) Alpha() float64 { return cm.alpha }

// SetAlpha implements palette.ColorMap.
func (cm *YearColorMap) SetAlpha(alpha float64) {
	if alpha < 0 || alpha > 1 {
		panic("profsel: alpha must be in [0, 1]")
	}
	cm.alpha = alpha
}

// Palette implements palette.ColorMap. It returns the given number
// of colors sampled evenly across the year range.
func (cm *YearColorMap) Palette(colors int) palette.Palette {
	p := make(yearPalette, colors)
	delta := (cm.Max() - cm.Min()) / float64(colors)
	for i := range p {
		c, err := cm.At(cm.Min() + (float64(i)+0.5)*delta)
		if err != nil {
			panic(err)
		}
		p[i] = c
	}
	return p
}

type yearPalette []color.Color

func (p yearPalette) Colors() []color.Color { return p }

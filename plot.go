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
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// ColorBarWidth is the width of the year colorbar to the right of the map.
const ColorBarWidth = 1.2 * vg.Inch

// PlotOptions specify how a Result is drawn.
type PlotOptions struct {
	// Variable is the long name of the selected variable, used in the
	// plot title.
	Variable string

	// XMin, XMax, YMin and YMax are the longitude and latitude limits
	// of the map in degrees.
	XMin, XMax, YMin, YMax float64

	// Width and Height are the size of the image.
	Width, Height vg.Length

	// Coastline is drawn under the stations if it is not nil.
	Coastline *Coastline

	// FirstYear and LastYear are the years of the selection interval.
	// The colorbar spans them and any other year of the retained
	// stations. When both are zero it spans the retained stations only.
	FirstYear, LastYear int
}

// DefaultPlotOptions returns the plot options for the
// Mediterranean Sea.
func DefaultPlotOptions(variable string) PlotOptions {
	return PlotOptions{
		Variable: variable,
		XMin:     -6,
		XMax:     36,
		YMin:     30,
		YMax:     46,
		Width:    20 * vg.Inch,
		Height:   10 * vg.Inch,
	}
}

func (o PlotOptions) check() error {
	if o.XMax <= o.XMin || o.YMax <= o.YMin {
		return fmt.Errorf("profsel: invalid plot limits lon [%g, %g] lat [%g, %g]",
			o.XMin, o.XMax, o.YMin, o.YMax)
	}
	if o.LastYear < o.FirstYear {
		return fmt.Errorf("profsel: plot years %d to %d are reversed", o.FirstYear, o.LastYear)
	}
	if o.Width <= ColorBarWidth || o.Height <= 0 {
		return fmt.Errorf("profsel: invalid plot size %v x %v", o.Width, o.Height)
	}
	return nil
}

// Plot draws a PNG map of the retained stations to w, colored by
// year, with a year colorbar and the number of retained profiles and
// values.
func (r *Result) Plot(w io.Writer, o PlotOptions) error {
	if err := o.check(); err != nil {
		return err
	}
	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "Observations of " + o.Variable
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.X.Min, p.X.Max = o.XMin, o.XMax
	p.Y.Min, p.Y.Max = o.YMin, o.YMax
	p.Add(plotter.NewGrid())
	if o.Coastline != nil {
		p.Add(o.Coastline)
	}

	var cm *YearColorMap
	if first, last, ok := r.yearSpan(o); ok {
		cm, err = NewYearColorMap(first, last, nil)
		if err != nil {
			return err
		}
		if err = r.addScatters(p, cm); err != nil {
			return err
		}
	}

	img := vgimg.New(o.Width, o.Height)
	dc := draw.New(img)
	mc, cc := splitHorizontal(dc, dc.Max.X-dc.Min.X-ColorBarWidth)
	p.Draw(mc)
	r.annotate(p, mc, o)

	if cm != nil {
		cb, err := yearColorBar(cm)
		if err != nil {
			return err
		}
		cb.Draw(cc)
	}

	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("profsel: writing plot: %v", err)
	}
	return nil
}

// yearSpan returns the years covered by the colorbar.
func (r *Result) yearSpan(o PlotOptions) (first, last int, ok bool) {
	first, last, ok = r.Years()
	if o.FirstYear == 0 && o.LastYear == 0 {
		return first, last, ok
	}
	if !ok || o.FirstYear < first {
		first = o.FirstYear
	}
	if !ok || o.LastYear > last {
		last = o.LastYear
	}
	return first, last, true
}

// addScatters adds one scatter of the retained stations for each
// year, so every point of a year shares that year's color.
func (r *Result) addScatters(p *plot.Plot, cm *YearColorMap) error {
	byYear := make(map[int]plotter.XYs)
	var years []int
	for _, rr := range r.Retained {
		y := rr.Date.Year()
		if _, ok := byYear[y]; !ok {
			years = append(years, y)
		}
		byYear[y] = append(byYear[y], struct{ X, Y float64 }{X: rr.Lon, Y: rr.Lat})
	}
	for _, y := range years {
		s, err := plotter.NewScatter(byYear[y])
		if err != nil {
			return err
		}
		c, err := cm.Year(y)
		if err != nil {
			return err
		}
		s.Color = c
		s.Radius = vg.Points(2)
		s.Shape = draw.CircleGlyph{}
		p.Add(s)
	}
	return nil
}

// annotate writes the number of profiles and values in the upper
// left corner of the map.
func (r *Result) annotate(p *plot.Plot, mc draw.Canvas, o PlotOptions) {
	da := p.DataCanvas(mc)
	trX, trY := p.Transforms(&da)
	ts := p.X.Tick.Label
	ts.Color = color.Black
	ts.XAlign = 0
	ts.YAlign = -1
	pt := vg.Point{
		X: trX(o.XMin + 0.02*(o.XMax-o.XMin)),
		Y: trY(o.YMax - 0.03*(o.YMax-o.YMin)),
	}
	da.FillText(ts, pt, fmt.Sprintf("number of profiles = %d", r.Profiles()))
	pt.Y -= 1.5 * ts.Font.Size
	da.FillText(ts, pt, fmt.Sprintf("number of values = %d", r.Values()))
}

// yearColorBar returns a plot holding a vertical colorbar of cm.
func yearColorBar(cm *YearColorMap) (*plot.Plot, error) {
	p, err := plot.New()
	if err != nil {
		return nil, err
	}
	p.Add(&plotter.ColorBar{
		ColorMap: cm,
		Vertical: true,
		Colors:   int(cm.Max()-cm.Min()) * 4,
	})
	p.HideX()
	p.Y.Padding = 0
	p.Y.Label.Text = "Year"
	p.Y.Tick.Marker = yearTicks{}
	return p, nil
}

// yearTicks places a labeled tick at the middle of each year band.
type yearTicks struct{}

// maxYearTicks is the number of labeled years above which only every
// few years is labeled.
const maxYearTicks = 25

func (yearTicks) Ticks(min, max float64) []plot.Tick {
	first, last := int(min), int(max)-1
	step := (last-first)/maxYearTicks + 1
	var t []plot.Tick
	for y := first; y <= last; y++ {
		tick := plot.Tick{Value: float64(y) + 0.5}
		if (y-first)%step == 0 {
			tick.Label = strconv.Itoa(y)
		}
		t = append(t, tick)
	}
	return t
}

// splitHorizontal splits c at x.
func splitHorizontal(c draw.Canvas, x vg.Length) (left, right draw.Canvas) {
	return draw.Crop(c, 0, c.Min.X-c.Max.X+x, 0, 0), draw.Crop(c, x, 0, 0, 0)
}

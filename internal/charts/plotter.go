package charts

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/hallsdata/energy.report/internal/energy"
)

// SaveConsumptionPlot writes a PNG scatter of per-room totals. Anomalous
// rooms are drawn in red over the normal population, with the batch mean as
// a horizontal reference line.
func SaveConsumptionPlot(path string, res *energy.Result) error {
	if len(res.Rooms) == 0 {
		return fmt.Errorf("no rooms to plot")
	}

	p := plot.New()
	p.Title.Text = "Energy Consumption by Room"
	p.X.Label.Text = "Room"
	p.Y.Label.Text = "Total (kWh)"

	var normal, flagged plotter.XYs
	minRoom, maxRoom := math.Inf(1), math.Inf(-1)
	for i := range res.Rooms {
		r := &res.Rooms[i]
		pt := plotter.XY{X: float64(r.RoomNo), Y: r.Total}
		if r.Final {
			flagged = append(flagged, pt)
		} else {
			normal = append(normal, pt)
		}
		minRoom = math.Min(minRoom, pt.X)
		maxRoom = math.Max(maxRoom, pt.X)
	}

	if len(normal) > 0 {
		s, err := plotter.NewScatter(normal)
		if err != nil {
			return fmt.Errorf("failed to create scatter: %w", err)
		}
		s.GlyphStyle.Color = color.RGBA{R: 49, G: 104, B: 142, A: 255}
		s.GlyphStyle.Radius = vg.Points(3)
		p.Add(s)
		p.Legend.Add("normal", s)
	}
	if len(flagged) > 0 {
		s, err := plotter.NewScatter(flagged)
		if err != nil {
			return fmt.Errorf("failed to create scatter: %w", err)
		}
		s.GlyphStyle.Color = color.RGBA{R: 255, G: 82, B: 82, A: 255}
		s.GlyphStyle.Radius = vg.Points(4)
		p.Add(s)
		p.Legend.Add("anomaly", s)
	}

	avg := res.Insights.Summary.AvgEnergy
	mean, err := plotter.NewLine(plotter.XYs{{X: minRoom, Y: avg}, {X: maxRoom, Y: avg}})
	if err != nil {
		return fmt.Errorf("failed to create mean line: %w", err)
	}
	mean.LineStyle.Width = vg.Points(1)
	mean.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	mean.LineStyle.Color = color.RGBA{R: 53, G: 183, B: 121, A: 255}
	p.Add(mean)
	p.Legend.Add("mean", mean)
	p.Legend.Top = true

	if err := p.Save(10*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// SaveProfilePlot writes a PNG line chart of the batch-mean two-hour usage
// profile with each anomalous room drawn in its own colour.
func SaveProfilePlot(path string, res *energy.Result) error {
	if len(res.Rooms) == 0 {
		return fmt.Errorf("no rooms to plot")
	}

	p := plot.New()
	p.Title.Text = "Usage by Two-Hour Interval"
	p.X.Label.Text = "Interval"
	p.Y.Label.Text = "kWh"

	mean := make(plotter.XYs, energy.NumIntervals)
	for j := 0; j < energy.NumIntervals; j++ {
		var sum float64
		for i := range res.Rooms {
			sum += res.Rooms[i].Intervals[j]
		}
		mean[j] = plotter.XY{X: float64(j), Y: sum / float64(len(res.Rooms))}
	}
	meanLine, err := plotter.NewLine(mean)
	if err != nil {
		return fmt.Errorf("failed to create mean line: %w", err)
	}
	meanLine.LineStyle.Width = vg.Points(2)
	meanLine.LineStyle.Color = color.RGBA{R: 49, G: 104, B: 142, A: 255}
	p.Add(meanLine)
	p.Legend.Add("batch mean", meanLine)

	var flaggedRooms []int
	for i := range res.Rooms {
		if res.Rooms[i].Final {
			flaggedRooms = append(flaggedRooms, i)
		}
	}
	colors := generateColors(len(flaggedRooms))
	for k, i := range flaggedRooms {
		r := &res.Rooms[i]
		pts := make(plotter.XYs, energy.NumIntervals)
		for j := 0; j < energy.NumIntervals; j++ {
			pts[j] = plotter.XY{X: float64(j), Y: r.Intervals[j]}
		}
		l, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to create room line: %w", err)
		}
		l.LineStyle.Width = vg.Points(1)
		l.LineStyle.Color = colors[k]
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("room %d", r.RoomNo), l)
	}
	p.Legend.Top = true

	labels := energy.IntervalLabels()
	p.NominalX(labels...)

	if err := p.Save(12*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

// generateColors returns n visually distinct colours spaced around the hue
// wheel.
func generateColors(n int) []color.Color {
	colors := make([]color.Color, n)
	for i := 0; i < n; i++ {
		hue := float64(i) / math.Max(float64(n), 1)
		colors[i] = hslToRGB(hue, 0.7, 0.5)
	}
	return colors
}

// hslToRGB converts HSL values (each in [0, 1]) to an RGBA colour.
func hslToRGB(h, s, l float64) color.RGBA {
	var r, g, b float64

	if s == 0 {
		r, g, b = l, l, l
	} else {
		hue2rgb := func(p, q, t float64) float64 {
			if t < 0 {
				t++
			}
			if t > 1 {
				t--
			}
			if t < 1.0/6.0 {
				return p + (q-p)*6*t
			}
			if t < 1.0/2.0 {
				return q
			}
			if t < 2.0/3.0 {
				return p + (q-p)*(2.0/3.0-t)*6
			}
			return p
		}

		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r = hue2rgb(p, q, h+1.0/3.0)
		g = hue2rgb(p, q, h)
		b = hue2rgb(p, q, h-1.0/3.0)
	}

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

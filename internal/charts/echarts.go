// Package charts renders analysis results as self-contained ECharts HTML
// pages and as static PNG plots for reports.
package charts

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/hallsdata/energy.report/internal/energy"
)

const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// viridis is the colour ramp used for confidence-graded points.
var viridis = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// RenderConsumptionScatter writes an HTML scatter of per-room totals with
// anomalous rooms in a separate series and the batch average overlaid as a
// line.
func RenderConsumptionScatter(w io.Writer, res *energy.Result, subtitle string) error {
	normal := make([]opts.ScatterData, 0, len(res.Rooms))
	flagged := make([]opts.ScatterData, 0)
	avg := res.Insights.Summary.AvgEnergy

	avgLine := make([]opts.LineData, 0, len(res.Rooms))
	for i := range res.Rooms {
		r := &res.Rooms[i]
		point := opts.ScatterData{Value: []interface{}{r.RoomNo, r.Total}}
		if r.Final {
			flagged = append(flagged, point)
		} else {
			normal = append(normal, point)
		}
		avgLine = append(avgLine, opts.LineData{Value: []interface{}{r.RoomNo, avg}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Room Consumption", Width: "900px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Energy Consumption by Room", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Room", NameLocation: "middle", NameGap: 25, Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Total (kWh)", NameLocation: "middle", NameGap: 40}),
	)
	scatter.AddSeries("normal", normal,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#31688e"}))
	scatter.AddSeries("anomaly", flagged,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#ff5252"}))

	line := charts.NewLine()
	line.AddSeries("day average", avgLine,
		charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed", Color: "#35b779"}))
	scatter.Overlap(line)

	return scatter.Render(w)
}

// RenderIntervalProfile writes an HTML line chart of the mean two-hour usage
// profile with the anomalous rooms drawn individually over it.
func RenderIntervalProfile(w io.Writer, res *energy.Result, subtitle string) error {
	labels := energy.IntervalLabels()
	meanSeries := make([]opts.LineData, len(labels))
	for j := range labels {
		var sum float64
		for i := range res.Rooms {
			sum += res.Rooms[i].Intervals[j]
		}
		meanSeries[j] = opts.LineData{Value: sum / float64(len(res.Rooms))}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Usage Profile", Width: "900px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Usage by Two-Hour Interval", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh", NameLocation: "middle", NameGap: 40}),
	)
	line.SetXAxis(labels).AddSeries("batch mean", meanSeries,
		charts.WithLineStyleOpts(opts.LineStyle{Color: "#31688e"}))

	for i := range res.Rooms {
		r := &res.Rooms[i]
		if !r.Final {
			continue
		}
		series := make([]opts.LineData, len(labels))
		for j := range labels {
			series[j] = opts.LineData{Value: r.Intervals[j]}
		}
		line.AddSeries(fmt.Sprintf("room %d", r.RoomNo), series,
			charts.WithLineStyleOpts(opts.LineStyle{Type: "dashed"}))
	}

	return line.Render(w)
}

// RenderAnomalyBreakdown writes an HTML bar chart of anomaly counts by type
// alongside the detector vote tally.
func RenderAnomalyBreakdown(w io.Writer, res *energy.Result, subtitle string) error {
	a := res.Insights.Anomalies

	votes := map[string]int{}
	for i := range res.Rooms {
		d := &res.Rooms[i].Detection
		if d.IsoForest {
			votes["iso_forest"]++
		}
		if d.SVM {
			votes["svm"]++
		}
		if d.DBSCAN {
			votes["dbscan"]++
		}
		if d.ZScoreFlag {
			votes["z_score"]++
		}
		if d.IQR {
			votes["iqr"]++
		}
	}

	x := []string{
		energy.TypeHighConsumption, energy.TypeLowConsumption, energy.TypeUnusualPattern,
		"iso_forest", "svm", "dbscan", "z_score", "iqr",
	}
	y := []opts.BarData{
		{Value: a.HighConsumption},
		{Value: a.LowConsumption},
		{Value: a.UnusualPattern},
		{Value: votes["iso_forest"]},
		{Value: votes["svm"]},
		{Value: votes["dbscan"]},
		{Value: votes["z_score"]},
		{Value: votes["iqr"]},
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Anomaly Breakdown", Width: "900px", Height: "600px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Anomalies by Type and Detector", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(x).AddSeries("count", y,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	)

	return bar.Render(w)
}

// RenderFeatureCharts writes a multi-chart HTML page of the engineered
// features: peak-hour usage, usage variance, z-scores, and morning against
// night usage per room.
func RenderFeatureCharts(w io.Writer, res *energy.Result, subtitle string) error {
	roomLabels := make([]string, len(res.Rooms))
	peak := make([]opts.BarData, len(res.Rooms))
	variance := make([]opts.BarData, len(res.Rooms))
	zScores := make([]opts.BarData, len(res.Rooms))
	morning := make([]opts.BarData, len(res.Rooms))
	night := make([]opts.BarData, len(res.Rooms))
	for i := range res.Rooms {
		r := &res.Rooms[i]
		roomLabels[i] = fmt.Sprintf("%d", r.RoomNo)
		peak[i] = opts.BarData{Value: r.PeakHoursUsage}
		variance[i] = opts.BarData{Value: r.UsageVariance}
		zScores[i] = opts.BarData{Value: r.ZScore}
		morning[i] = opts.BarData{Value: r.MorningUsage}
		night[i] = opts.BarData{Value: r.NightUsage}
	}

	newBar := func(title string) *charts.Bar {
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px", AssetsHost: echartsAssetsPrefix}),
			charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "Room"}),
		)
		return bar
	}

	peakBar := newBar("Peak-Hour Usage by Room")
	peakBar.SetXAxis(roomLabels).AddSeries("peak hours (kWh)", peak,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#31688e"}))

	varBar := newBar("Usage Variance by Room")
	varBar.SetXAxis(roomLabels).AddSeries("variance", variance,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#26828e"}))

	zBar := newBar("Total Consumption Z-Score by Room")
	zBar.SetXAxis(roomLabels).AddSeries("z-score", zScores,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "#35b779"}))

	dayNightBar := newBar("Morning vs Night Usage by Room")
	dayNightBar.SetXAxis(roomLabels).
		AddSeries("morning (kWh)", morning, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#fde725"})).
		AddSeries("night (kWh)", night, charts.WithItemStyleOpts(opts.ItemStyle{Color: "#440154"}))

	page := components.NewPage()
	page.SetAssetsHost(echartsAssetsPrefix)
	page.AddCharts(peakBar, varBar, zBar, dayNightBar)

	return page.Render(w)
}

// RenderPredictionScatter writes an HTML scatter of actual vs predicted
// totals, coloured by anomaly confidence.
func RenderPredictionScatter(w io.Writer, res *energy.Result, subtitle string) error {
	data := make([]opts.ScatterData, 0, len(res.Rooms))
	maxVal := 0.0
	for i := range res.Rooms {
		r := &res.Rooms[i]
		if r.Total > maxVal {
			maxVal = r.Total
		}
		if r.Ensemble > maxVal {
			maxVal = r.Ensemble
		}
		data = append(data, opts.ScatterData{Value: []interface{}{r.Total, r.Ensemble, r.Confidence}})
	}
	pad := maxVal * 1.05
	if pad == 0 {
		pad = 1.0
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Prediction vs Actual", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: "Predicted vs Actual Consumption", Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: pad, Name: "Actual (kWh)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: pad, Name: "Predicted (kWh)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        0,
			Max:        float32(1),
			Dimension:  "2",
			InRange:    &opts.VisualMapInRange{Color: viridis},
		}),
	)
	scatter.AddSeries("rooms", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	return scatter.Render(w)
}

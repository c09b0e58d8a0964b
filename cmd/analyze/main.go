// Command analyze runs the analysis pipeline over one day of consumption
// data and prints a report. It can also write chart files, persist the
// fitted models, and record the run in the SQLite history.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/hallsdata/energy.report/internal/charts"
	"github.com/hallsdata/energy.report/internal/config"
	"github.com/hallsdata/energy.report/internal/dataset"
	"github.com/hallsdata/energy.report/internal/db"
	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/monitoring"
)

var (
	dataDir    = flag.String("data", "data", "Root of the consumption data tree")
	bedType    = flag.String("bed", "6", "Bed type (2, 4 or 6)")
	month      = flag.String("month", "", "Month name, e.g. January")
	day        = flag.Int("day", 0, "Day of month")
	configPath = flag.String("config", "", "Optional tuning config JSON file")
	chartDir   = flag.String("charts", "", "Directory to write chart files into (skipped when empty)")
	modelDir   = flag.String("models", "", "Directory to save fitted models into (skipped when empty)")
	dbFile     = flag.String("db", "", "SQLite file to record the run in (skipped when empty)")
	verbose    = flag.Bool("verbose", false, "Enable per-stage pipeline logging")
)

func main() {
	flag.Parse()
	monitoring.Verbose = *verbose

	if *month == "" || *day == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tuning := config.EmptyTuningConfig()
	if *configPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(*configPath)
		if err != nil {
			log.Fatalf("failed to load tuning config: %v", err)
		}
	}

	loader := dataset.NewLoader(*dataDir)
	normMonth, err := dataset.ValidateMonth(*month)
	if err != nil {
		log.Fatal(err)
	}

	records, err := loader.Load(*bedType, normMonth, *day)
	if err != nil {
		log.Fatalf("failed to load data: %v", err)
	}

	analyzer := energy.NewAnalyzer(tuning.Params())
	res, err := analyzer.Analyze(records)
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	printReport(res, *bedType, normMonth, *day)

	if *chartDir != "" {
		if err := writeCharts(*chartDir, res, fmt.Sprintf("%s bed, %s day %d", *bedType, normMonth, *day)); err != nil {
			log.Fatalf("failed to write charts: %v", err)
		}
	}

	if *modelDir != "" {
		files, err := analyzer.SaveModels(*modelDir)
		if err != nil {
			log.Fatalf("failed to save models: %v", err)
		}
		fmt.Printf("\nSaved %d model files to %s\n", len(files), *modelDir)
	}

	if *dbFile != "" {
		database, err := db.NewDB(*dbFile)
		if err != nil {
			log.Fatalf("failed to open run store: %v", err)
		}
		defer database.Close()
		runID, err := database.RecordRun(*bedType, normMonth, *day, res)
		if err != nil {
			log.Fatalf("failed to record run: %v", err)
		}
		fmt.Printf("Recorded run %s in %s\n", runID, *dbFile)
	}
}

func printReport(res *energy.Result, bedType, month string, day int) {
	sum := res.Insights.Summary

	fmt.Printf("Energy analysis: %s bed, %s day %d\n", bedType, month, day)
	fmt.Println(strings.Repeat("=", 48))
	fmt.Printf("Rooms analysed:    %d\n", sum.TotalRooms)
	fmt.Printf("Total energy:      %.2f kWh\n", sum.TotalEnergy)
	fmt.Printf("Average per room:  %.2f kWh (std %.2f)\n", sum.AvgEnergy, sum.StdEnergy)
	fmt.Printf("Range:             %.2f - %.2f kWh\n", sum.MinEnergy, sum.MaxEnergy)
	fmt.Printf("Anomalies:         %d (%.1f%%)\n", sum.AnomalyCount, sum.AnomalyPercentage)

	if sum.AnomalyCount > 0 {
		fmt.Println("\nFlagged rooms:")
		for i := range res.Rooms {
			r := &res.Rooms[i]
			if !r.Final {
				continue
			}
			fmt.Printf("  room %-5d %8.2f kWh  %-17s confidence %.2f  votes %d/%d\n",
				r.RoomNo, r.Total, r.AnomalyType, r.Confidence, r.Detection.Votes(), energy.NumDetectors)
		}
	}

	if len(res.Insights.Recommendations) > 0 {
		fmt.Println("\nRecommendations:")
		for _, rec := range res.Insights.Recommendations {
			fmt.Printf("  - %s\n", rec)
		}
	}
}

func writeCharts(dir string, res *energy.Result, subtitle string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	htmlCharts := map[string]func(*os.File) error{
		"consumption.html": func(f *os.File) error { return charts.RenderConsumptionScatter(f, res, subtitle) },
		"features.html":    func(f *os.File) error { return charts.RenderFeatureCharts(f, res, subtitle) },
		"intervals.html":   func(f *os.File) error { return charts.RenderIntervalProfile(f, res, subtitle) },
		"predictions.html": func(f *os.File) error { return charts.RenderPredictionScatter(f, res, subtitle) },
	}
	for name, render := range htmlCharts {
		f, err := os.Create(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		if err := render(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
	}

	if err := charts.SaveConsumptionPlot(filepath.Join(dir, "consumption.png"), res); err != nil {
		return err
	}
	if err := charts.SaveProfilePlot(filepath.Join(dir, "profile.png"), res); err != nil {
		return err
	}

	fmt.Printf("\nWrote charts to %s\n", dir)
	return nil
}

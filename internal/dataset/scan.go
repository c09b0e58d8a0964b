package dataset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// AvailableData maps month -> bed type -> sorted day numbers found on disk.
type AvailableData map[string]map[string][]int

// Directories that may sit alongside the month folders but hold no data.
var skipDirs = map[string]bool{
	"venv":        true,
	"__pycache__": true,
	"models":      true,
}

// Scan walks the data tree and reports which month/bed-type/day combinations
// have a CSV present. Unreadable subdirectories and unparsable filenames are
// skipped rather than failing the whole scan.
func (l *Loader) Scan() (AvailableData, error) {
	months, err := os.ReadDir(l.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("scan data dir: %w", err)
	}

	available := AvailableData{}
	for _, monthEntry := range months {
		if !monthEntry.IsDir() || skipDirs[monthEntry.Name()] {
			continue
		}
		month := monthEntry.Name()
		monthPath := filepath.Join(l.BaseDir, month)

		bedFolders, err := os.ReadDir(monthPath)
		if err != nil {
			continue
		}
		for _, bedEntry := range bedFolders {
			if !bedEntry.IsDir() || !strings.Contains(bedEntry.Name(), "Bedroom Data") {
				continue
			}
			bedType := strings.Fields(bedEntry.Name())[0]
			days := scanDays(filepath.Join(monthPath, bedEntry.Name()))
			if len(days) == 0 {
				continue
			}
			if available[month] == nil {
				available[month] = map[string][]int{}
			}
			available[month][bedType] = days
		}
	}
	return available, nil
}

// scanDays extracts the day numbers from the CSV filenames in one bed folder.
func scanDays(dir string) []int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var days []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".csv") {
			continue
		}
		idx := strings.LastIndex(name, "day_")
		if idx < 0 {
			continue
		}
		dayStr := strings.TrimSuffix(name[idx+len("day_"):], ".csv")
		day, err := strconv.Atoi(dayStr)
		if err != nil {
			continue
		}
		days = append(days, day)
	}
	sort.Ints(days)
	return days
}

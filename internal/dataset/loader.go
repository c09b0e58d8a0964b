// Package dataset loads per-day room consumption CSVs from the on-disk data
// tree. Files are laid out as
//
//	{base}/{Month}/{bedType} Bedroom Data - {Mon}/{Mon}_{bedType}bed_energy_consumption_day_{day}.csv
//
// with one row per room and one column per two-hour interval.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/monitoring"
)

// CSV column headers shared with the data generators.
const (
	colDay    = "Day"
	colRoomNo = "Room No"
	colTotal  = "Total Energy (kWh)"
)

// ValidBedTypes are the housing configurations the dataset covers.
var ValidBedTypes = []string{"2", "4", "6"}

// Loader reads room records from a data directory tree.
type Loader struct {
	BaseDir string
}

// NewLoader returns a loader rooted at baseDir.
func NewLoader(baseDir string) *Loader {
	return &Loader{BaseDir: baseDir}
}

// ValidateBedType checks that bedType is one of the supported configurations.
func ValidateBedType(bedType string) error {
	for _, v := range ValidBedTypes {
		if bedType == v {
			return nil
		}
	}
	return fmt.Errorf("invalid bed type %q, choose from %s", bedType, strings.Join(ValidBedTypes, ", "))
}

// ValidateMonth normalises month to its title-case full English name.
func ValidateMonth(month string) (string, error) {
	if month == "" {
		return "", fmt.Errorf("month is required")
	}
	normalized := strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
	for m := time.January; m <= time.December; m++ {
		if normalized == m.String() {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("invalid month %q", month)
}

// ValidateDay checks that day exists in the given (already validated) month.
// The data year is not encoded in the tree, so February is checked against
// the current calendar year.
func ValidateDay(month string, day int) error {
	maxDays := daysInMonth(month, time.Now().Year())
	if day < 1 || day > maxDays {
		return fmt.Errorf("invalid day %d for %s, choose between 1 and %d", day, month, maxDays)
	}
	return nil
}

func daysInMonth(month string, year int) int {
	for m := time.January; m <= time.December; m++ {
		if month == m.String() {
			// Day 0 of the next month is the last day of this one.
			return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
		}
	}
	return 31
}

// FilePath returns the CSV path for one bed type, month and day. Inputs are
// validated before the path is assembled.
func (l *Loader) FilePath(bedType, month string, day int) (string, error) {
	if err := ValidateBedType(bedType); err != nil {
		return "", err
	}
	month, err := ValidateMonth(month)
	if err != nil {
		return "", err
	}
	if err := ValidateDay(month, day); err != nil {
		return "", err
	}

	abbr := month[:3]
	folder := fmt.Sprintf("%s Bedroom Data - %s", bedType, abbr)
	filename := fmt.Sprintf("%s_%sbed_energy_consumption_day_%d.csv", abbr, bedType, day)
	return filepath.Join(l.BaseDir, month, folder, filename), nil
}

// Load reads the room records for one bed type, month and day.
func (l *Loader) Load(bedType, month string, day int) ([]energy.RoomRecord, error) {
	path, err := l.FilePath(bedType, month, day)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	records, err := parseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	monitoring.Debugf("loaded %d rooms from %s", len(records), path)
	return records, nil
}

// parseCSV reads room records from CSV content. The header must carry the
// Day, Room No and total columns plus every two-hour interval label.
func parseCSV(r io.Reader) ([]energy.RoomRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, name := range header {
		colIdx[strings.TrimSpace(name)] = i
	}
	required := append([]string{colDay, colRoomNo, colTotal}, energy.IntervalLabels()...)
	for _, name := range required {
		if _, ok := colIdx[name]; !ok {
			return nil, fmt.Errorf("missing %q column in dataset", name)
		}
	}

	var records []energy.RoomRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		rec, err := parseRow(row, colIdx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset has no rows")
	}
	return records, nil
}

func parseRow(row []string, colIdx map[string]int) (energy.RoomRecord, error) {
	var rec energy.RoomRecord

	day, err := parseIntField(row, colIdx, colDay)
	if err != nil {
		return rec, err
	}
	room, err := parseIntField(row, colIdx, colRoomNo)
	if err != nil {
		return rec, err
	}
	total, err := parseFloatField(row, colIdx, colTotal)
	if err != nil {
		return rec, err
	}

	rec.Day = day
	rec.RoomNo = room
	rec.Total = total
	for i, label := range energy.IntervalLabels() {
		v, err := parseFloatField(row, colIdx, label)
		if err != nil {
			return rec, err
		}
		rec.Intervals[i] = v
	}
	return rec, nil
}

func parseFloatField(row []string, colIdx map[string]int, name string) (float64, error) {
	i := colIdx[name]
	if i >= len(row) {
		return 0, fmt.Errorf("row too short for column %q", name)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return v, nil
}

func parseIntField(row []string, colIdx map[string]int, name string) (int, error) {
	v, err := parseFloatField(row, colIdx, name)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

package api

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"sort"
	"strconv"

	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/httputil"
	"github.com/hallsdata/energy.report/internal/security"
)

type exportRequest struct {
	Data    []map[string]interface{} `json:"data"`
	BedType string                   `json:"bedType,omitempty"`
	Month   string                   `json:"month,omitempty"`
	Day     int                      `json:"day,omitempty"`
}

func (s *Server) exportCSVHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}

	csvData, err := rowsToCSV(req.Data)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build CSV: %v", err))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"csv_data": csvData,
		"filename": exportFilename(req, "csv"),
	})
}

func (s *Server) exportJSONHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeExportRequest(w, r)
	if !ok {
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"json_data": req.Data,
		"filename":  exportFilename(req, "json"),
	})
}

func decodeExportRequest(w http.ResponseWriter, r *http.Request) (exportRequest, bool) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return exportRequest{}, false
	}

	var req exportRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return exportRequest{}, false
	}
	if len(req.Data) == 0 {
		httputil.BadRequest(w, "no data to export")
		return exportRequest{}, false
	}
	return req, true
}

// exportFilename embeds the batch identity into the download name when the
// request carries one, falling back to a generic name.
func exportFilename(req exportRequest, ext string) string {
	if req.BedType != "" && req.Month != "" && req.Day > 0 {
		return fmt.Sprintf("energy_analysis_%s_%sbed_day%d.%s",
			security.SanitizeFilename(req.Month), security.SanitizeFilename(req.BedType), req.Day, ext)
	}
	return "energy_analysis_results." + ext
}

// rowsToCSV serialises flat result rows. Columns follow the analysis row
// order where known; any extra keys are appended alphabetically so arbitrary
// client data still round-trips.
func rowsToCSV(rows []map[string]interface{}) (string, error) {
	columns := exportColumns(rows)

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(columns); err != nil {
		return "", err
	}

	record := make([]string, len(columns))
	for _, row := range rows {
		for i, col := range columns {
			v, present := row[col]
			if !present {
				record[i] = ""
				continue
			}
			record[i] = formatCSVValue(v)
		}
		if err := cw.Write(record); err != nil {
			return "", err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func exportColumns(rows []map[string]interface{}) []string {
	seen := make(map[string]bool)
	for _, row := range rows {
		for k := range row {
			seen[k] = true
		}
	}

	columns := make([]string, 0, len(seen))
	for _, col := range energy.FlatColumns() {
		if seen[col] {
			columns = append(columns, col)
			delete(seen, col)
		}
	}

	extra := make([]string, 0, len(seen))
	for k := range seen {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	return append(columns, extra...)
}

func formatCSVValue(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

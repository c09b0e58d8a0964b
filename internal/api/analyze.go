package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/hallsdata/energy.report/internal/config"
	"github.com/hallsdata/energy.report/internal/dataset"
	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/httputil"
	"github.com/hallsdata/energy.report/internal/monitoring"
	"github.com/hallsdata/energy.report/internal/units"
)

type analyzeRequest struct {
	BedType string               `json:"bedType"`
	Month   string               `json:"month"`
	Day     int                  `json:"day"`
	Params  *config.TuningConfig `json:"params,omitempty"`
}

func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}

	var req analyzeRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	if err := dataset.ValidateBedType(req.BedType); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	month, err := dataset.ValidateMonth(req.Month)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if err := dataset.ValidateDay(month, req.Day); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	targetUnits := s.units
	if u := r.URL.Query().Get("units"); u != "" {
		if !units.IsValid(u) {
			httputil.BadRequest(w, fmt.Sprintf("invalid units %q, valid values: %s", u, units.GetValidUnitsString()))
			return
		}
		targetUnits = u
	}

	analyzer, err := s.analyzerFor(req.Params)
	if err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}

	records, err := s.loader.Load(req.BedType, month, req.Day)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("failed to load data: %v", err))
		return
	}

	res, err := analyzer.Analyze(records)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("analysis failed: %v", err))
		return
	}

	label := fmt.Sprintf("%s bed, %s day %d", req.BedType, month, req.Day)
	s.mu.Lock()
	s.last = res
	s.lastLabel = label
	s.mu.Unlock()

	var runID string
	if s.db != nil {
		runID, err = s.db.RecordRun(req.BedType, month, req.Day, res)
		if err != nil {
			// The analysis itself succeeded; log and return it anyway.
			monitoring.Logf("failed to record run: %v", err)
		}
	}

	sum := res.Insights.Summary
	httputil.WriteSuccess(w, map[string]interface{}{
		"run_id":   runID,
		"units":    targetUnits,
		"data":     res.FlatRows(),
		"insights": res.Insights,
		"summary": map[string]interface{}{
			"total_rooms":        sum.TotalRooms,
			"total_energy":       units.ConvertEnergy(sum.TotalEnergy, targetUnits),
			"avg_energy":         units.ConvertEnergy(sum.AvgEnergy, targetUnits),
			"anomaly_count":      sum.AnomalyCount,
			"anomaly_percentage": sum.AnomalyPercentage,
		},
	})
}

// analyzerFor returns the analyzer to run a request with. A request without
// overrides reuses the shared analyzer so fitted models accumulate; a request
// with a params block gets a one-off analyzer built from the merged config.
// Overrides are scoped to their request and never replace the shared analyzer.
func (s *Server) analyzerFor(override *config.TuningConfig) (*energy.Analyzer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if override == nil {
		return s.analyzer, nil
	}
	if err := override.Validate(); err != nil {
		return nil, fmt.Errorf("invalid params: %w", err)
	}
	return energy.NewAnalyzer(s.tuning.Merge(override).Params()), nil
}

func (s *Server) availableDataHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	available, err := s.loader.Scan()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to scan data directory: %v", err))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"available_data": available,
	})
}

func (s *Server) listRunsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "run store not configured")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed < 1 {
			httputil.BadRequest(w, "invalid 'limit' parameter")
			return
		}
		limit = parsed
	}

	runs, err := s.db.Runs(limit)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to list runs: %v", err))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{"runs": runs})
}

func (s *Server) runRoomsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.db == nil {
		httputil.InternalServerError(w, "run store not configured")
		return
	}

	runID := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if runID == "" || strings.Contains(runID, "/") {
		httputil.BadRequest(w, "invalid run ID")
		return
	}

	rooms, err := s.db.RunRooms(runID)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load run rooms: %v", err))
		return
	}
	if len(rooms) == 0 {
		httputil.NotFound(w, fmt.Sprintf("run %q not found", runID))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"run_id": runID,
		"rooms":  rooms,
	})
}

// decodeJSONBody decodes a JSON request body with a size cap and strict
// field checking.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

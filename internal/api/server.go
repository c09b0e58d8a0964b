// Package api exposes the analysis pipeline over HTTP: dataset discovery,
// batch analysis, model persistence, exports, charts and run history.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/hallsdata/energy.report/internal/config"
	"github.com/hallsdata/energy.report/internal/dataset"
	"github.com/hallsdata/energy.report/internal/db"
	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/httputil"
	"github.com/hallsdata/energy.report/internal/monitoring"
	"github.com/hallsdata/energy.report/internal/version"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

const serviceName = "energy-analysis-api"

// maxRequestBody caps JSON request bodies. Export payloads carry full result
// sets, so this is generous.
const maxRequestBody = 16 * 1024 * 1024

// Server holds the pipeline state shared across handlers: the dataset
// loader, the run store, the startup tuning configuration and the analyzer
// carrying the most recently fitted models.
type Server struct {
	loader *dataset.Loader
	db     *db.DB
	tuning *config.TuningConfig
	units  string

	mu        sync.Mutex
	analyzer  *energy.Analyzer
	last      *energy.Result
	lastLabel string
}

// NewServer builds a server around the given loader and run store. The run
// store may be nil, in which case analyses are not persisted and the run
// history endpoints report an error. A nil tuning config means defaults.
func NewServer(loader *dataset.Loader, database *db.DB, tuning *config.TuningConfig, units string) *Server {
	if tuning == nil {
		tuning = config.EmptyTuningConfig()
	}
	return &Server{
		loader:   loader,
		db:       database,
		tuning:   tuning,
		units:    units,
		analyzer: energy.NewAnalyzer(tuning.Params()),
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

// ServeMux returns the route table for the analysis API.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/analyze", s.analyzeHandler)
	mux.HandleFunc("/api/available-data", s.availableDataHandler)
	mux.HandleFunc("/api/health", s.healthHandler)
	mux.HandleFunc("/api/models/save", s.saveModelsHandler)
	mux.HandleFunc("/api/models/load", s.loadModelsHandler)
	mux.HandleFunc("/api/export/csv", s.exportCSVHandler)
	mux.HandleFunc("/api/export/json", s.exportJSONHandler)
	mux.HandleFunc("/api/charts/consumption", s.consumptionChartHandler)
	mux.HandleFunc("/api/charts/features", s.featuresChartHandler)
	mux.HandleFunc("/api/charts/intervals", s.intervalsChartHandler)
	mux.HandleFunc("/api/charts/predictions", s.predictionsChartHandler)
	mux.HandleFunc("/api/runs", s.listRunsHandler)
	mux.HandleFunc("/api/runs/", s.runRoomsHandler)
	return mux
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	s.mu.Lock()
	fitted := s.analyzer.ModelsFitted()
	s.mu.Unlock()

	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":        "healthy",
		"service":       serviceName,
		"version":       version.Version,
		"models_fitted": fitted,
	})
}

// lastResult returns the most recent analysis and its label, or nil if no
// analysis has run yet.
func (s *Server) lastResult() (*energy.Result, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.lastLabel
}

package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/hallsdata/energy.report/internal/charts"
	"github.com/hallsdata/energy.report/internal/energy"
	"github.com/hallsdata/energy.report/internal/httputil"
)

// chartRenderer renders one chart page for a result.
type chartRenderer func(w io.Writer, res *energy.Result, subtitle string) error

func (s *Server) consumptionChartHandler(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderConsumptionScatter)
}

func (s *Server) featuresChartHandler(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderFeatureCharts)
}

func (s *Server) intervalsChartHandler(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderIntervalProfile)
}

func (s *Server) predictionsChartHandler(w http.ResponseWriter, r *http.Request) {
	s.serveChart(w, r, charts.RenderPredictionScatter)
}

// serveChart renders the given chart over the most recent analysis. Charts
// are views over state the analyze endpoint produces, so a missing result is
// a client ordering problem, not a server fault.
func (s *Server) serveChart(w http.ResponseWriter, r *http.Request, render chartRenderer) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	res, label := s.lastResult()
	if res == nil {
		httputil.NotFound(w, "no analysis results available; run /api/analyze first")
		return
	}

	var buf bytes.Buffer
	if err := render(&buf, res, label); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		httputil.InternalServerError(w, "failed to write chart")
	}
}

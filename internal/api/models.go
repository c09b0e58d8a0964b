package api

import (
	"fmt"
	"net/http"

	"github.com/hallsdata/energy.report/internal/httputil"
	"github.com/hallsdata/energy.report/internal/security"
)

// defaultModelDir is where models land when the request omits a filepath.
const defaultModelDir = "models"

type modelRequest struct {
	Filepath string `json:"filepath"`
}

func (s *Server) saveModelsHandler(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.modelDirFromRequest(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	files, err := s.analyzer.SaveModels(dir)
	s.mu.Unlock()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to save models: %v", err))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": fmt.Sprintf("saved %d model files to %s", len(files), dir),
		"files":   files,
	})
}

func (s *Server) loadModelsHandler(w http.ResponseWriter, r *http.Request) {
	dir, ok := s.modelDirFromRequest(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	files, err := s.analyzer.LoadModels(dir)
	s.mu.Unlock()
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to load models: %v", err))
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": fmt.Sprintf("loaded %d model files from %s", len(files), dir),
		"files":   files,
	})
}

// modelDirFromRequest validates the method and extracts a safe model
// directory from the request body. It writes the error response itself and
// returns ok=false when the request is rejected.
func (s *Server) modelDirFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return "", false
	}

	var req modelRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return "", false
	}
	if req.Filepath == "" {
		req.Filepath = defaultModelDir
	}

	if err := security.ValidateModelPath(req.Filepath); err != nil {
		httputil.BadRequest(w, fmt.Sprintf("invalid model path: %v", err))
		return "", false
	}

	return req.Filepath, true
}

package api

import (
	"encoding/json"
	"net/http"

	"ecocast/app"
	"ecocast/domain/core"
	apperrors "ecocast/internal/errors"

	"github.com/go-chi/chi/v5"
)

// errorResponse is the JSON shape of every error reply
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleCreateRun executes a reconciliation run from two input tables
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	var req app.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.InvalidInput("invalid request body"))
		return
	}

	result, err := s.service.Run(r.Context(), req)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusCreated, app.Summarize(result))
}

// handleListRuns returns recent run manifests
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	manifests, err := s.service.ListRuns(r.Context(), 50)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, manifests)
}

// handleGetRun returns the manifest of a stored run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.InvalidInput(err.Error()))
		return
	}

	manifest, err := s.service.GetManifest(r.Context(), runID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, manifest)
}

// handleGetProjections returns the projection table of a stored run
func (s *Server) handleGetProjections(w http.ResponseWriter, r *http.Request) {
	runID, err := core.ParseRunID(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, apperrors.InvalidInput(err.Error()))
		return
	}

	table, err := s.service.GetTable(r.Context(), runID)
	if err != nil {
		s.writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, table.Rows())
}

// handleScenarios returns the configured scenario profiles
func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cfg.Profiles)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed: %v", err)
	}
	writeJSON(w, status, errorResponse{
		Code:  apperrors.GetCode(err),
		Error: err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// statusFor maps domain and application errors onto HTTP status codes
func statusFor(err error) int {
	if core.IsNotFoundError(err) {
		return http.StatusNotFound
	}
	if core.IsFatalInputError(err) {
		return http.StatusUnprocessableEntity
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeBadInput, apperrors.CodeValidationError:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	case apperrors.CodeIngestError:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

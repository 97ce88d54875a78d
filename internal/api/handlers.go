package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"vidbatch/internal/deps"
	"vidbatch/internal/history"
	"vidbatch/internal/logging"
	"vidbatch/internal/pipeline"
	"vidbatch/internal/report"
	"vidbatch/internal/services"
)

const (
	defaultRunListLimit = 20
	maxRunListLimit     = 500
)

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	req := pipeline.DefaultRequest(s.cfg)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		message := "invalid JSON body: " + err.Error()
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "request body too large"
		}
		s.writeJSON(w, http.StatusBadRequest, RunResponse{Status: statusError, Message: message, Reports: []report.Report{}})
		return
	}

	res, err := s.runner.Run(r.Context(), req)
	reports := res.Reports
	if reports == nil {
		reports = []report.Report{}
	}
	if err != nil {
		s.writeJSON(w, runErrorStatus(err), RunResponse{
			Status:  statusError,
			Message: err.Error(),
			RunID:   res.RunID,
			Reports: reports,
		})
		return
	}
	s.writeJSON(w, http.StatusOK, RunResponse{Status: statusSuccess, RunID: res.RunID, Reports: reports})
}

// runErrorStatus maps a pipeline error to its HTTP status.
func runErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrLocked):
		return http.StatusConflict
	case errors.Is(err, services.ErrNoEligibleVideos):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	statuses := deps.CheckBinaries(deps.Requirements(s.cfg))
	payload := StatusResponse{
		Version:      s.version,
		Ready:        len(deps.MissingRequired(statuses)) == 0,
		Dependencies: statuses,
	}
	if s.history != nil {
		payload.HistoryPath = s.cfg.HistoryPath()
	}
	s.writeJSON(w, http.StatusOK, payload)
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		s.writeJSON(w, http.StatusOK, RunListResponse{Runs: []history.Run{}})
		return
	}
	limit := defaultRunListLimit
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxRunListLimit)
	}
	runs, err := s.history.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list runs failed", logging.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}
	if runs == nil {
		runs = []history.Run{}
	}
	s.writeJSON(w, http.StatusOK, RunListResponse{Runs: runs})
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if s.history == nil || id == "" {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	run, err := s.history.Get(r.Context(), id)
	if err != nil {
		s.logger.Error("load run failed", logging.Error(err), logging.String(logging.FieldRunID, id))
		s.writeError(w, http.StatusInternalServerError, "failed to load run")
		return
	}
	if run == nil {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Status: statusError, Message: message})
}

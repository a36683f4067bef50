package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"siteguard/internal/crawl"
	"siteguard/internal/domain"
	"siteguard/internal/report"
)

func (s *Server) handleScanRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.URL == "" {
		s.respondWithError(w, http.StatusBadRequest, "URL cannot be empty")
		return
	}
	parsed, err := url.ParseRequestURI(req.URL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		s.respondWithError(w, http.StatusBadRequest, "Invalid URL: "+req.URL)
		return
	}
	if req.PageLimit < 0 {
		s.respondWithError(w, http.StatusBadRequest, "page_limit cannot be negative")
		return
	}

	runID := newRunID()
	job := domain.ScanJob{
		RunID:     runID,
		TargetURL: req.URL,
		PageLimit: req.PageLimit,
		Filters:   domain.NewFilterSet(req.Filters),
	}
	if !s.runner.Submit(crawl.Task{Job: job, Force: req.Force}) {
		s.respondWithError(w, http.StatusServiceUnavailable, "Server is shutting down")
		return
	}

	s.respondWithJSON(w, http.StatusAccepted, map[string]string{
		"run_id":  runID,
		"message": "Scan accepted",
	})
}

func (s *Server) handleStatusRequest(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.respondWithError(w, http.StatusBadRequest, "run_id query parameter is required")
		return
	}

	status, err := s.pgStore.GetRunStatus(r.Context(), runID)
	if err != nil {
		if err.Error() == "not_found" {
			s.respondWithError(w, http.StatusNotFound, "Run not found")
			return
		}
		s.logger.Error("failed to get run status", zap.Error(err))
		s.respondWithError(w, http.StatusInternalServerError, "Could not retrieve status")
		return
	}

	resp := map[string]interface{}{"run": status}
	if progress, err := s.redisStore.GetProgress(r.Context(), runID); err == nil && progress != nil {
		resp["progress"] = progress
	}
	s.respondWithJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResultRequest(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.respondWithError(w, http.StatusBadRequest, "run_id query parameter is required")
		return
	}

	result, ok := s.runner.Result(runID)
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Result not available")
		return
	}
	s.respondWithJSON(w, http.StatusOK, result)
}

func (s *Server) handleIntelligenceRequest(w http.ResponseWriter, r *http.Request) {
	runID := r.URL.Query().Get("run_id")
	if runID == "" {
		s.respondWithError(w, http.StatusBadRequest, "run_id query parameter is required")
		return
	}

	result, ok := s.runner.Result(runID)
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "Result not available")
		return
	}
	s.respondWithJSON(w, http.StatusOK, report.BuildIntelligence(result))
}

func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	healthStatus := make(map[string]string)

	// Check Postgres
	if err := s.pgStore.Ping(ctx); err != nil {
		healthStatus["postgres"] = "unhealthy"
		s.logger.Error("health check failed for postgres", zap.Error(err))
	} else {
		healthStatus["postgres"] = "healthy"
	}

	// Check Redis
	if err := s.redisStore.Ping(ctx); err != nil {
		healthStatus["redis"] = "unhealthy"
		s.logger.Error("health check failed for redis", zap.Error(err))
	} else {
		healthStatus["redis"] = "healthy"
	}

	isHealthy := healthStatus["postgres"] == "healthy" && healthStatus["redis"] == "healthy"
	if !isHealthy {
		s.respondWithJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}

	s.respondWithJSON(w, http.StatusOK, healthStatus)
}

func newRunID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return time.Now().Format("20060102150405.000000000")
	}
	return hex.EncodeToString(buf)
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

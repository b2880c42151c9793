package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"sentinel-service/internal/models"
	redisrepo "sentinel-service/internal/repository/redis"
	"sentinel-service/internal/service"
	"sentinel-service/internal/util"
)

// maxUploadBytes bounds CSV and access-log uploads.
const maxUploadBytes = 64 << 20 // 64MB

// AnalysisHandler handles HTTP requests for the monitoring API
type AnalysisHandler struct {
	analysisService *service.AnalysisService
	ingestLimiter   *redisrepo.IngestLimiter
	logger          *zap.Logger
}

// NewAnalysisHandler creates a new analysis handler. ingestLimiter may be nil,
// in which case upload throttling is disabled.
func NewAnalysisHandler(analysisService *service.AnalysisService, ingestLimiter *redisrepo.IngestLimiter, logger *zap.Logger) *AnalysisHandler {
	return &AnalysisHandler{
		analysisService: analysisService,
		ingestLimiter:   ingestLimiter,
		logger:          logger,
	}
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// Meta represents listing metadata
type Meta struct {
	Total int `json:"total,omitempty"`
}

// successResponse creates a successful response
func successResponse(data interface{}, message string) Response {
	return Response{
		Success: true,
		Data:    data,
		Message: message,
	}
}

// errorResponse creates an error response
func errorResponse(err error, message string) Response {
	return Response{
		Success: false,
		Error:   err.Error(),
		Message: message,
	}
}

// RegisterRoutes registers all monitoring routes
func (h *AnalysisHandler) RegisterRoutes(router chi.Router) {
	router.Route("/ingest", func(r chi.Router) {
		r.Use(h.limitIngest)
		r.Post("/csv", h.IngestCSV)
		r.Post("/access-events", h.IngestAccessEvents)
	})

	router.With(h.limitIngest).Post("/demo/seed", h.SeedDemo)

	router.Route("/employees/{userID}", func(r chi.Router) {
		r.Get("/assessment", h.GetAssessment)
		r.Get("/comparison", h.GetComparison)
		r.Get("/profile", h.GetProfile)
		r.Get("/activity-report", h.GetActivityReport)
		r.Get("/activity-export", h.ExportActivityCSV)
		r.Get("/pseudonym", h.GetPseudonym)
	})

	router.Route("/analytics", func(r chi.Router) {
		r.Get("/trend", h.GetTrend)
		r.Get("/at-risk", h.GetAtRisk)
	})

	router.Get("/threat-report", h.GetThreatReport)
	router.Get("/search/evidence", h.SearchEvidence)
}

// IngestCSV accepts a behavioral telemetry export, either as a multipart
// upload under the "file" field or as a raw text/csv body.
func (h *AnalysisHandler) IngestCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	body := r.Body
	if err := r.ParseMultipartForm(maxUploadBytes); err == nil {
		file, _, err := r.FormFile("file")
		if err != nil {
			h.respondWithError(w, http.StatusBadRequest, err, "Missing csv file upload")
			return
		}
		defer file.Close()
		body = file
	}

	summary, err := h.analysisService.IngestCSV(ctx, body)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to ingest csv")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "CSV ingested successfully"))
	h.logger.Info("CSV ingested via HTTP",
		util.String("batch_id", summary.BatchID),
		util.Int("records", summary.Ingested),
		util.Duration("duration", time.Since(startTime)),
	)
}

// IngestAccessEvents accepts one footage log's detections as JSON.
func (h *AnalysisHandler) IngestAccessEvents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	var log models.AccessLog
	if err := json.NewDecoder(r.Body).Decode(&log); err != nil {
		h.respondWithError(w, http.StatusBadRequest, err, "Invalid access log body")
		return
	}

	if err := h.analysisService.IngestAccessEvents(ctx, &log); err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to ingest access events")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(map[string]interface{}{
		"video_id":    log.VideoID,
		"event_count": len(log.Events),
	}, "Access events ingested successfully"))
}

type seedRequest struct {
	Seed      int64 `json:"seed"`
	Employees int   `json:"employees"`
}

// SeedDemo loads a reproducible synthetic population.
func (h *AnalysisHandler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req := seedRequest{Seed: time.Now().UnixNano(), Employees: 50}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondWithError(w, http.StatusBadRequest, err, "Invalid seed request body")
			return
		}
	}

	summary, err := h.analysisService.SeedDemo(ctx, req.Seed, req.Employees)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to seed demo data")
		return
	}

	h.respondWithJSON(w, http.StatusCreated, successResponse(summary, "Demo data seeded successfully"))
}

// GetAssessment returns the risk assessment for one employee.
func (h *AnalysisHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	assessment, err := h.analysisService.Assessment(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to build assessment")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(assessment, "Assessment retrieved successfully"))
}

// GetComparison ranks one employee against the population.
func (h *AnalysisHandler) GetComparison(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	comparison, err := h.analysisService.Comparison(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to compare against peers")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(comparison, "Comparison retrieved successfully"))
}

// GetProfile returns the unified behavioral + access profile.
func (h *AnalysisHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	profile, err := h.analysisService.Profile(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to build profile")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(profile, "Profile retrieved successfully"))
}

// GetActivityReport returns recent activity stats plus the rendered summary.
func (h *AnalysisHandler) GetActivityReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	hours := queryInt(r, "hours", 24)
	overview, err := h.analysisService.ActivityReport(ctx, chi.URLParam(r, "userID"), hours)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to build activity report")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(overview, "Activity report retrieved successfully"))
}

// ExportActivityCSV streams an employee's activity logs as a CSV download.
func (h *AnalysisHandler) ExportActivityCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := chi.URLParam(r, "userID")

	payload, err := h.analysisService.ActivityExport(ctx, userID)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to export activity logs")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "activity-"+userID+".csv"))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(payload)); err != nil {
		h.logger.Error("Failed to write CSV export", util.ErrorField(err))
	}
}

// GetPseudonym returns the stable export token for one employee, for use
// when findings are shared outside the service boundary.
func (h *AnalysisHandler) GetPseudonym(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, err := h.analysisService.PseudonymFor(ctx, chi.URLParam(r, "userID"))
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to resolve pseudonym")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(map[string]string{
		"pseudonym": token,
	}, "Pseudonym retrieved successfully"))
}

// GetTrend returns the population risk trend.
func (h *AnalysisHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	days := queryInt(r, "days", 30)
	trend, err := h.analysisService.Trend(ctx, days)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to compute trend")
		return
	}

	h.respondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    trend,
		Message: "Trend retrieved successfully",
		Meta:    &Meta{Total: len(trend)},
	})
}

// GetAtRisk lists employees above the risk threshold.
func (h *AnalysisHandler) GetAtRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	threshold := queryFloat(r, "threshold", 0)
	ranked, err := h.analysisService.AtRisk(ctx, threshold)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to list at-risk employees")
		return
	}

	h.respondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    ranked,
		Message: "At-risk employees retrieved successfully",
		Meta:    &Meta{Total: len(ranked)},
	})
}

// GetThreatReport returns the population threat report. refresh=true forces
// a recomputation instead of serving the cached snapshot.
func (h *AnalysisHandler) GetThreatReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	startTime := time.Now()

	refresh := r.URL.Query().Get("refresh") == "true"
	report, err := h.analysisService.ThreatReport(ctx, refresh)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Failed to generate threat report")
		return
	}

	h.respondWithJSON(w, http.StatusOK, successResponse(report, "Threat report retrieved successfully"))
	h.logger.Info("Threat report served",
		util.Bool("refreshed", refresh),
		util.Int("suspects", report.TotalSuspects),
		util.Duration("duration", time.Since(startTime)),
	)
}

// SearchEvidence runs a free-text query over indexed profiles.
func (h *AnalysisHandler) SearchEvidence(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", 20)

	hits, err := h.analysisService.SearchEvidence(ctx, query, limit)
	if err != nil {
		h.respondWithError(w, h.getStatusCode(err), err, "Evidence search failed")
		return
	}

	h.respondWithJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    hits,
		Message: "Search completed successfully",
		Meta:    &Meta{Total: len(hits)},
	})
}

// limitIngest throttles upload endpoints per client address. Limiter errors
// fail open so Redis trouble never blocks data loading.
func (h *AnalysisHandler) limitIngest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.ingestLimiter == nil {
			next.ServeHTTP(w, r)
			return
		}

		source := r.RemoteAddr
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			source = host
		}

		allowed, count, _ := h.ingestLimiter.Allow(r.Context(), source)
		if !allowed {
			h.logger.Warn("Ingest rate limit exceeded",
				util.String("source", source),
				util.Int("window_count", count),
			)
			h.respondWithError(w, http.StatusTooManyRequests,
				fmt.Errorf("too many ingest requests"), "Ingest rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Helper Methods

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func queryFloat(r *http.Request, key string, fallback float64) float64 {
	if v := r.URL.Query().Get(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// respondWithJSON sends a JSON response
func (h *AnalysisHandler) respondWithJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", util.ErrorField(err))
	}
}

// respondWithError sends an error response
func (h *AnalysisHandler) respondWithError(w http.ResponseWriter, statusCode int, err error, message string) {
	h.logger.Warn("HTTP error response",
		util.ErrorField(err),
		util.Int("status_code", statusCode),
		util.String("message", message),
	)
	h.respondWithJSON(w, statusCode, errorResponse(err, message))
}

// getStatusCode determines the appropriate HTTP status code for an error
func (h *AnalysisHandler) getStatusCode(err error) int {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNoPopulation):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

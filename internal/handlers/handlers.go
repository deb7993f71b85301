package handlers

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"linesdesk/ingestion/internal/ingest"
	"linesdesk/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// EventReader loads persisted event graphs
type EventReader interface {
	GetEventGraphByExternalID(ctx context.Context, externalID string) (*models.Event, error)
	ListUpcoming(ctx context.Context, sportKey string, from time.Time, limit int) ([]*models.Event, error)
}

// PredictionReader loads stored prediction articles
type PredictionReader interface {
	GetLatestForEvent(ctx context.Context, eventID int64) (*models.EventPrediction, error)
}

// OddsCache caches display odds per event
type OddsCache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// SyncRunner runs one full odds sync
type SyncRunner interface {
	Run(ctx context.Context) (*ingest.Report, error)
}

// Pinger reports dependency health
type Pinger interface {
	Health(ctx context.Context) error
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	events      EventReader
	predictions PredictionReader
	cache       OddsCache
	syncer      SyncRunner
	checks      map[string]Pinger
	adminToken  string
	now         func() time.Time
}

// Deps bundles handler dependencies; Cache and Checks are optional
type Deps struct {
	Events      EventReader
	Predictions PredictionReader
	Cache       OddsCache
	Syncer      SyncRunner
	Checks      map[string]Pinger
	AdminToken  string
}

// NewHandler creates a new handler with dependencies
func NewHandler(deps Deps) *Handler {
	return &Handler{
		events:      deps.Events,
		predictions: deps.Predictions,
		cache:       deps.Cache,
		syncer:      deps.Syncer,
		checks:      deps.Checks,
		adminToken:  deps.AdminToken,
		now:         time.Now,
	}
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for name, check := range h.checks {
		if err := check.Health(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, name+" unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": h.now().UTC(),
		"service":   "linesdesk-ingestion",
	})
}

// requireAdmin checks the bearer token when one is configured
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.adminToken != "" {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
				respondError(w, http.StatusUnauthorized, "invalid admin token", nil)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

// ErrorResponse is the JSON body of every error reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg(message)
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}

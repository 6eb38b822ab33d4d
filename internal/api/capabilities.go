// Package api provides HTTP API endpoints for FlePort.
package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/alerts"
	"github.com/sonaligoyal925/FlePort/internal/settings"
	"github.com/sonaligoyal925/FlePort/internal/store"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// CapabilitiesResponse is the response for GET /api/v1/capabilities.
type CapabilitiesResponse struct {
	// Version is the API schema version. Currently "1".
	Version string `json:"version"`

	// Rules lists the loaded rule set.
	Rules []RuleInfo `json:"rules"`

	// Entities maps entity types to stored counts.
	Entities map[types.EntityType]int `json:"entities"`

	// Alerts summarizes the alert collection.
	Alerts types.AlertStats `json:"alerts"`

	// Senders lists the configured notification hand-off targets.
	Senders []string `json:"senders"`

	// LastEvaluation is when the pipeline last evaluated, empty before the first pass.
	LastEvaluation string `json:"lastEvaluation,omitempty"`

	// UpSince is when the server started.
	UpSince string `json:"upSince,omitempty"`
}

// RuleInfo describes one loaded rule.
type RuleInfo struct {
	ID         string           `json:"id"`
	EntityType types.EntityType `json:"entityType"`
	Priority   types.Priority   `json:"priority"`
	Category   types.Category   `json:"category"`
	Window     string           `json:"window,omitempty"`
}

// CapabilitiesHandler handles GET /api/v1/capabilities.
type CapabilitiesHandler struct {
	logger    *zap.Logger
	store     *store.Store
	manager   *alerts.Manager
	rules     []RuleInfo
	senders   []string
	lastRun   func() time.Time
	startTime time.Time
}

// CapabilitiesHandlerOptions configures the CapabilitiesHandler.
type CapabilitiesHandlerOptions struct {
	Rules   []types.Rule
	Senders []string
	// LastRun reports the most recent evaluation time. Optional.
	LastRun func() time.Time
}

// NewCapabilitiesHandler creates a new CapabilitiesHandler.
func NewCapabilitiesHandler(
	st *store.Store,
	manager *alerts.Manager,
	logger *zap.Logger,
	opts CapabilitiesHandlerOptions,
) *CapabilitiesHandler {
	infos := make([]RuleInfo, 0, len(opts.Rules))
	for _, r := range opts.Rules {
		info := RuleInfo{ID: r.ID, EntityType: r.EntityType, Priority: r.Priority, Category: r.Category}
		if r.WarningWindow > 0 {
			info.Window = r.WarningWindow.String()
		}
		infos = append(infos, info)
	}
	senders := opts.Senders
	if senders == nil {
		senders = []string{}
	}
	return &CapabilitiesHandler{
		logger:    logger.Named("capabilities"),
		store:     st,
		manager:   manager,
		rules:     infos,
		senders:   senders,
		lastRun:   opts.LastRun,
		startTime: time.Now(),
	}
}

// ServeHTTP implements http.Handler.
func (h *CapabilitiesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.buildResponse())
}

// buildResponse constructs the CapabilitiesResponse from current state.
func (h *CapabilitiesHandler) buildResponse() CapabilitiesResponse {
	counts := make(map[types.EntityType]int, len(types.EntityTypes()))
	for _, t := range types.EntityTypes() {
		counts[t] = h.store.Count(t)
	}

	resp := CapabilitiesResponse{
		Version:  "1",
		Rules:    h.rules,
		Entities: counts,
		Alerts:   h.manager.Stats(),
		Senders:  h.senders,
		UpSince:  h.startTime.UTC().Format(time.RFC3339),
	}
	if h.lastRun != nil {
		if last := h.lastRun(); !last.IsZero() {
			resp.LastEvaluation = last.UTC().Format(time.RFC3339)
		}
	}
	return resp
}

// HealthHandler handles GET /health and GET /api/v1/health.
type HealthHandler struct {
	logger  *zap.Logger
	store   *store.Store
	manager *alerts.Manager
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(st *store.Store, manager *alerts.Manager, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		logger:  logger.Named("health"),
		store:   st,
		manager: manager,
	}
}

// HealthResponse is the response for health endpoints.
type HealthResponse struct {
	Status    string `json:"status"` // healthy, unhealthy
	Store     string `json:"store"`
	Alerts    string `json:"alerts"`
	Timestamp string `json:"timestamp"`
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:    "healthy",
		Store:     "ready",
		Alerts:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.store == nil {
		response.Status = "unhealthy"
		response.Store = "not initialized"
	}
	if h.manager == nil {
		response.Status = "unhealthy"
		response.Alerts = "not initialized"
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, h.logger, status, response)
}

// Deps are the components the HTTP API serves.
type Deps struct {
	Store      *store.Store
	Manager    *alerts.Manager
	Settings   *settings.Store
	Dispatcher Dispatcher // optional; manual alerts are only stored without it
	Hub        *Hub       // optional; enables /api/v1/alerts/stream
	Options    CapabilitiesHandlerOptions
}

// RegisterHandlers registers API handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, deps Deps, logger *zap.Logger) {
	alertsHandler := NewAlertsHandler(deps.Manager, deps.Settings, deps.Dispatcher, logger)
	entitiesHandler := NewEntitiesHandler(deps.Store, logger)
	settingsHandler := NewSettingsHandler(deps.Settings, logger)
	healthHandler := NewHealthHandler(deps.Store, deps.Manager, logger)

	mux.HandleFunc("GET /api/v1/alerts", alertsHandler.List)
	mux.HandleFunc("POST /api/v1/alerts", alertsHandler.Create)
	mux.HandleFunc("GET /api/v1/alerts/stats", alertsHandler.Stats)
	mux.HandleFunc("POST /api/v1/alerts/read-all", alertsHandler.MarkAllRead)
	mux.HandleFunc("GET /api/v1/alerts/{id}", alertsHandler.Get)
	mux.HandleFunc("POST /api/v1/alerts/{id}/acknowledge", alertsHandler.Acknowledge)
	mux.HandleFunc("POST /api/v1/alerts/{id}/dismiss", alertsHandler.Dismiss)
	mux.HandleFunc("POST /api/v1/alerts/{id}/read", alertsHandler.MarkRead)
	if deps.Hub != nil {
		mux.Handle("GET /api/v1/alerts/stream", deps.Hub)
	}

	mux.HandleFunc("GET /api/v1/entities/{type}", entitiesHandler.List)
	mux.HandleFunc("PUT /api/v1/entities/{type}", entitiesHandler.Upsert)
	mux.HandleFunc("GET /api/v1/entities/{type}/summary", entitiesHandler.Summary)
	mux.HandleFunc("GET /api/v1/entities/{type}/{id}", entitiesHandler.Get)

	mux.HandleFunc("GET /api/v1/settings", settingsHandler.Get)
	mux.HandleFunc("PUT /api/v1/settings", settingsHandler.Update)

	mux.Handle("/api/v1/capabilities", NewCapabilitiesHandler(deps.Store, deps.Manager, logger, deps.Options))
	mux.Handle("/api/v1/health", healthHandler)
	mux.Handle("/health", healthHandler)
}

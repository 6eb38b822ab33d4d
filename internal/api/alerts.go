package api

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/alerts"
	"github.com/sonaligoyal925/FlePort/internal/query"
	"github.com/sonaligoyal925/FlePort/internal/settings"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// alertSearchFields are the fields the alert list's free-text search covers.
var alertSearchFields = []string{"title", "description", "relatedEntity"}

// alertFilterParams are the query parameters accepted as exact-match filters.
var alertFilterParams = []string{"priority", "status", "category", "entityType", "kind"}

// Dispatcher hands newly created alerts to notification senders.
type Dispatcher interface {
	Dispatch(ctx context.Context, alerts []types.Alert, s types.Settings) int
}

// AlertsResponse is the wire format for GET /api/v1/alerts.
type AlertsResponse struct {
	Alerts []types.Alert `json:"alerts"`
	Total  int           `json:"total"`
}

// ReadAllResponse is the wire format for POST /api/v1/alerts/read-all.
type ReadAllResponse struct {
	Updated int `json:"updated"`
}

// AlertsHandler serves the alert list, manual creation and lifecycle actions.
type AlertsHandler struct {
	logger     *zap.Logger
	manager    *alerts.Manager
	settings   *settings.Store
	dispatcher Dispatcher
}

// NewAlertsHandler creates a new AlertsHandler. dispatcher may be nil.
func NewAlertsHandler(m *alerts.Manager, s *settings.Store, d Dispatcher, logger *zap.Logger) *AlertsHandler {
	return &AlertsHandler{
		logger:     logger.Named("alerts"),
		manager:    m,
		settings:   s,
		dispatcher: d,
	}
}

// List handles GET /api/v1/alerts. Supports q, priority, status, category,
// entityType, kind, sort and order. "all" disables a filter.
func (h *AlertsHandler) List(w http.ResponseWriter, r *http.Request) {
	req := requestFromQuery(r, alertFilterParams, alertSearchFields)
	result := query.Run(h.manager.List(), req)
	if result == nil {
		result = []types.Alert{}
	}
	writeJSON(w, h.logger, http.StatusOK, AlertsResponse{Alerts: result, Total: len(result)})
}

// Create handles POST /api/v1/alerts.
func (h *AlertsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in types.ManualAlert
	if err := decodeBody(r, &in); err != nil {
		writeError(w, h.logger, err)
		return
	}
	a, err := h.manager.CreateManual(in)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if h.dispatcher != nil {
		h.dispatcher.Dispatch(r.Context(), []types.Alert{a}, h.settings.Get())
	}
	writeJSON(w, h.logger, http.StatusCreated, a)
}

// Acknowledge handles POST /api/v1/alerts/{id}/acknowledge.
func (h *AlertsHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.manager.Acknowledge(r.PathValue("id")))
}

// Dismiss handles POST /api/v1/alerts/{id}/dismiss.
func (h *AlertsHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.manager.Dismiss(r.PathValue("id")))
}

// MarkRead handles POST /api/v1/alerts/{id}/read.
func (h *AlertsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.manager.MarkRead(r.PathValue("id")))
}

// Get handles GET /api/v1/alerts/{id}.
func (h *AlertsHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.respond(w)(h.manager.Get(r.PathValue("id")))
}

// MarkAllRead handles POST /api/v1/alerts/read-all.
func (h *AlertsHandler) MarkAllRead(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, ReadAllResponse{Updated: h.manager.MarkAllRead()})
}

// Stats handles GET /api/v1/alerts/stats.
func (h *AlertsHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.manager.Stats())
}

func (h *AlertsHandler) respond(w http.ResponseWriter) func(types.Alert, error) {
	return func(a types.Alert, err error) {
		if err != nil {
			writeError(w, h.logger, err)
			return
		}
		writeJSON(w, h.logger, http.StatusOK, a)
	}
}

// requestFromQuery builds a query.Request from URL parameters: q is the search text,
// sort/order pick the sort, and each of filterParams becomes an exact-match filter.
func requestFromQuery(r *http.Request, filterParams, searchFields []string) query.Request {
	params := r.URL.Query()
	req := query.Request{
		Filters:      make(map[string]string, len(filterParams)),
		SearchFields: searchFields,
		SearchText:   params.Get("q"),
	}
	for _, p := range filterParams {
		if v := params.Get(p); v != "" {
			req.Filters[p] = v
		}
	}
	if field := params.Get("sort"); field != "" {
		req.Sort = &query.Sort{Field: field, Order: query.ParseOrder(params.Get("order"))}
	}
	return req
}

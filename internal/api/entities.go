package api

import (
	"io"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/query"
	"github.com/sonaligoyal925/FlePort/internal/store"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// reservedParams are list query parameters that are not field filters.
var reservedParams = map[string]bool{"q": true, "sort": true, "order": true}

// entitySearchFields are searched by q, per entity type.
var entitySearchFields = map[types.EntityType][]string{
	types.EntityTypeDriver:  {"id", "name", "phone", "vehicle", "location"},
	types.EntityTypeVehicle: {"id", "registrationNo", "model", "driver"},
	types.EntityTypeTrip:    {"id", "driver", "vehicle", "pickup", "dropoff"},
	types.EntityTypePayout:  {"id", "driverId", "driverName", "transactionId"},
}

// summaryDefaults are the group and sum fields used when the summary request omits them.
var summaryDefaults = map[types.EntityType][2]string{
	types.EntityTypeDriver:  {"status", "earnings"},
	types.EntityTypeVehicle: {"status", "mileage"},
	types.EntityTypeTrip:    {"status", "fare"},
	types.EntityTypePayout:  {"status", "amount"},
}

// EntitiesResponse is the wire format for GET /api/v1/entities/{type}.
type EntitiesResponse struct {
	Type     types.EntityType `json:"type"`
	Entities []types.Entity   `json:"entities"`
	Total    int              `json:"total"`
}

// SummaryResponse is the wire format for GET /api/v1/entities/{type}/summary.
type SummaryResponse struct {
	Type    types.EntityType   `json:"type"`
	Total   int                `json:"total"`
	GroupBy string             `json:"groupBy"`
	Counts  map[string]int     `json:"counts"`
	SumOf   string             `json:"sumOf,omitempty"`
	Sums    map[string]float64 `json:"sums,omitempty"`
}

// EntitiesHandler serves the fleet entity views and snapshot upserts.
type EntitiesHandler struct {
	logger *zap.Logger
	store  *store.Store
}

// NewEntitiesHandler creates a new EntitiesHandler.
func NewEntitiesHandler(st *store.Store, logger *zap.Logger) *EntitiesHandler {
	return &EntitiesHandler{logger: logger.Named("entities"), store: st}
}

// List handles GET /api/v1/entities/{type}. Every query parameter besides q, sort
// and order is an exact-match filter on the field of the same name.
func (h *EntitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	t, err := types.ParseEntityType(r.PathValue("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	var filterParams []string
	for p := range r.URL.Query() {
		if !reservedParams[p] {
			filterParams = append(filterParams, p)
		}
	}
	sort.Strings(filterParams)

	result := query.Run(h.store.List(t), requestFromQuery(r, filterParams, entitySearchFields[t]))
	if result == nil {
		result = []types.Entity{}
	}
	writeJSON(w, h.logger, http.StatusOK, EntitiesResponse{Type: t, Entities: result, Total: len(result)})
}

// Get handles GET /api/v1/entities/{type}/{id}.
func (h *EntitiesHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := types.ParseEntityType(r.PathValue("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	e, err := h.store.Get(t, r.PathValue("id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, e)
}

// Summary handles GET /api/v1/entities/{type}/summary?groupBy=&sum=.
func (h *EntitiesHandler) Summary(w http.ResponseWriter, r *http.Request) {
	t, err := types.ParseEntityType(r.PathValue("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	defaults := summaryDefaults[t]
	groupBy := r.URL.Query().Get("groupBy")
	if groupBy == "" {
		groupBy = defaults[0]
	}
	sumOf := r.URL.Query().Get("sum")
	if sumOf == "" {
		sumOf = defaults[1]
	}

	items := h.store.List(t)
	writeJSON(w, h.logger, http.StatusOK, SummaryResponse{
		Type:    t,
		Total:   len(items),
		GroupBy: groupBy,
		Counts:  query.CountBy(items, groupBy),
		SumOf:   sumOf,
		Sums:    query.SumBy(items, sumOf, groupBy),
	})
}

// Upsert handles PUT /api/v1/entities/{type}. The body is one full record; it
// replaces any snapshot with the same id and triggers evaluation.
func (h *EntitiesHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	t, err := types.ParseEntityType(r.PathValue("type"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if len(data) == 0 {
		writeError(w, h.logger, &types.ValidationError{Field: "body", Reason: "must not be empty"})
		return
	}
	e, err := h.store.UpsertRaw(t, data)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.logger.Debug("Entity upserted", zap.String("type", string(t)), zap.String("id", e.EntityID()))
	writeJSON(w, h.logger, http.StatusOK, e)
}

package api

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/settings"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// SettingsHandler serves GET and PUT /api/v1/settings.
type SettingsHandler struct {
	logger *zap.Logger
	store  *settings.Store
}

// NewSettingsHandler creates a new SettingsHandler.
func NewSettingsHandler(s *settings.Store, logger *zap.Logger) *SettingsHandler {
	return &SettingsHandler{logger: logger.Named("settings"), store: s}
}

// Get returns the current settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.logger, http.StatusOK, h.store.Get())
}

// Update applies a partial patch; omitted toggles are left unchanged.
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch types.SettingsPatch
	if err := decodeBody(r, &patch); err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, h.store.Update(patch))
}

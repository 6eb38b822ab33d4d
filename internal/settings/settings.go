// Package settings holds the operator's alert preferences: which categories are
// evaluated and which channels notifications may use.
package settings

import (
	"sync"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// OnChangeFunc is called after every update with the previous and new settings.
type OnChangeFunc func(old, updated types.Settings)

// Store is a concurrent-safe holder for the current Settings.
type Store struct {
	mu       sync.RWMutex
	current  types.Settings
	onChange OnChangeFunc
	logger   *zap.Logger
}

// New creates a Store seeded with initial.
func New(initial types.Settings, logger *zap.Logger) *Store {
	return &Store{
		current: initial,
		logger:  logger.Named("settings"),
	}
}

// SetOnChange registers the change callback. Must be called before Update is used concurrently.
func (s *Store) SetOnChange(fn OnChangeFunc) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Get returns a copy of the current settings.
func (s *Store) Get() types.Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Update applies a partial patch and returns the resulting settings. The callback
// fires only when something actually changed.
func (s *Store) Update(patch types.SettingsPatch) types.Settings {
	s.mu.Lock()
	old := s.current
	s.current = patch.Apply(old)
	updated := s.current
	onChange := s.onChange
	s.mu.Unlock()

	if updated == old {
		return updated
	}
	s.logger.Info("Settings updated",
		zap.Bool("documentExpiry", updated.DocumentExpiry),
		zap.Bool("vehicleMaintenance", updated.VehicleMaintenance),
		zap.Bool("performanceAlerts", updated.PerformanceAlerts),
		zap.Bool("earningsMilestones", updated.EarningsMilestones),
		zap.Bool("systemNotifications", updated.SystemNotifications),
	)
	if onChange != nil {
		onChange(old, updated)
	}
	return updated
}

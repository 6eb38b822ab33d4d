// Package alerts owns the alert collection: reconciliation of rule candidates into
// alerts, manual alerts, and the active/acknowledged/dismissed lifecycle.
package alerts

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

var _ types.AlertHistory = (*Manager)(nil)

// dedupKey is the (entity, rule) pair that may hold at most one open alert.
type dedupKey struct {
	entityID string
	ruleID   string
}

// occurrence is one distinct firing of an occurrence-based rule, such as a
// single trip milestone.
type occurrence struct {
	dedupKey
	fingerprint string
}

// Manager owns the alert collection and its lifecycle. All methods are safe for
// concurrent use; Reconcile holds the write lock for the whole batch.
type Manager struct {
	mu    sync.RWMutex
	byID  map[string]*types.Alert
	order []string
	// open maps a dedup key to the id of its active or acknowledged alert.
	open map[dedupKey]string
	// seen holds every fingerprinted occurrence ever alerted on, any status.
	seen map[occurrence]struct{}

	clock  func() time.Time
	newID  func() string
	logger *zap.Logger
}

// NewManager creates an empty Manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		byID:   make(map[string]*types.Alert),
		open:   make(map[dedupKey]string),
		seen:   make(map[occurrence]struct{}),
		clock:  time.Now,
		newID:  uuid.NewString,
		logger: logger.Named("alerts"),
	}
}

// SetClock overrides the time source. Must be called before use (not concurrent).
func (m *Manager) SetClock(clock func() time.Time) {
	m.clock = clock
}

// SetIDGenerator overrides alert id generation (for testing).
func (m *Manager) SetIDGenerator(newID func() string) {
	m.newID = newID
}

// Reconcile turns candidates into alerts. A candidate is dropped when an open alert
// already exists for its (entity, rule) pair, or when it carries a fingerprint that
// was alerted on before. A dismissed alert does not block, so a condition still
// present after dismissal raises a new alert. A newer occurrence (the next trip
// milestone) waits until the previous one is dismissed.
// Returns copies of the newly created alerts in candidate order.
func (m *Manager) Reconcile(candidates []types.Candidate) []types.Alert {
	if len(candidates) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	var created []types.Alert
	for _, c := range candidates {
		if c.EntityID == "" || c.RuleID == "" {
			m.logger.Warn("Dropping candidate without entity or rule",
				zap.String("entity", c.EntityID),
				zap.String("rule", c.RuleID),
			)
			candidatesSuppressedTotal.WithLabelValues("invalid").Inc()
			continue
		}

		key := dedupKey{entityID: c.EntityID, ruleID: c.RuleID}
		if _, exists := m.open[key]; exists {
			candidatesSuppressedTotal.WithLabelValues("open").Inc()
			continue
		}
		occ := occurrence{dedupKey: key, fingerprint: c.Fingerprint}
		if c.Fingerprint != "" {
			if _, exists := m.seen[occ]; exists {
				candidatesSuppressedTotal.WithLabelValues("fingerprint").Inc()
				continue
			}
		}

		a := &types.Alert{
			ID:          m.newID(),
			EntityID:    c.EntityID,
			EntityType:  c.EntityType,
			EntityName:  c.EntityName,
			RuleID:      c.RuleID,
			Kind:        c.Kind,
			Priority:    c.Priority,
			Category:    c.Category,
			Status:      types.StatusActive,
			Title:       c.Title,
			Description: c.Message,
			CreatedAt:   now,
			UpdatedAt:   now,
			DueDate:     c.DueDate,
			Fingerprint: c.Fingerprint,
		}
		m.insertLocked(a)
		m.open[key] = a.ID
		if c.Fingerprint != "" {
			m.seen[occ] = struct{}{}
		}

		alertsCreatedTotal.WithLabelValues("rule", string(a.Category)).Inc()
		m.logger.Info("Alert created",
			zap.String("alert", a.ID),
			zap.String("rule", a.RuleID),
			zap.String("entity", a.EntityID),
			zap.String("priority", string(a.Priority)),
		)
		created = append(created, *a)
	}
	return created
}

// CreateManual validates and stores an operator-created alert. Priority defaults to
// medium and category to general. Manual alerts never take part in deduplication.
func (m *Manager) CreateManual(in types.ManualAlert) (types.Alert, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return types.Alert{}, &types.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	priority := in.Priority
	if priority == "" {
		priority = types.PriorityMedium
	}
	if !priority.Valid() {
		return types.Alert{}, &types.ValidationError{Field: "priority", Reason: "unknown priority " + string(priority)}
	}
	category := in.Category
	if category == "" {
		category = types.CategoryGeneral
	}
	if !category.Valid() {
		return types.Alert{}, &types.ValidationError{Field: "category", Reason: "unknown category " + string(category)}
	}
	if in.EntityType != "" && !in.EntityType.Valid() {
		return types.Alert{}, &types.ValidationError{Field: "entityType", Reason: "unknown entity type " + string(in.EntityType)}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	a := &types.Alert{
		ID:          m.newID(),
		EntityID:    in.EntityID,
		EntityType:  in.EntityType,
		EntityName:  in.EntityName,
		Kind:        types.KindManual,
		Priority:    priority,
		Category:    category,
		Status:      types.StatusActive,
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     in.DueDate,
	}
	m.insertLocked(a)

	alertsCreatedTotal.WithLabelValues("manual", string(a.Category)).Inc()
	m.logger.Info("Manual alert created", zap.String("alert", a.ID), zap.String("priority", string(a.Priority)))
	return *a, nil
}

// Acknowledge moves an active alert to acknowledged.
func (m *Manager) Acknowledge(id string) (types.Alert, error) {
	return m.transition(id, types.StatusAcknowledged)
}

// Dismiss moves an active or acknowledged alert to dismissed.
func (m *Manager) Dismiss(id string) (types.Alert, error) {
	return m.transition(id, types.StatusDismissed)
}

func (m *Manager) transition(id string, to types.AlertStatus) (types.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok {
		return types.Alert{}, &types.NotFoundError{Kind: "alert", ID: id}
	}
	if !a.Status.CanTransition(to) {
		return types.Alert{}, &types.InvalidTransitionError{AlertID: id, From: a.Status, To: to}
	}

	from := a.Status
	a.Status = to
	a.UpdatedAt = m.clock()
	if !to.Open() && a.RuleID != "" {
		key := keyOf(a)
		if m.open[key] == a.ID {
			delete(m.open, key)
		}
	}

	transitionsTotal.WithLabelValues(string(to)).Inc()
	m.logger.Debug("Alert transitioned",
		zap.String("alert", id),
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return *a, nil
}

// MarkRead flags one alert as read. Read state is independent of status.
func (m *Manager) MarkRead(id string) (types.Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.byID[id]
	if !ok {
		return types.Alert{}, &types.NotFoundError{Kind: "alert", ID: id}
	}
	if !a.Read {
		a.Read = true
		a.UpdatedAt = m.clock()
	}
	return *a, nil
}

// MarkAllRead flags every unread alert as read and returns how many changed.
func (m *Manager) MarkAllRead() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	n := 0
	for _, a := range m.byID {
		if !a.Read {
			a.Read = true
			a.UpdatedAt = now
			n++
		}
	}
	return n
}

// Get returns a copy of the alert with the given id.
func (m *Manager) Get(id string) (types.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	a, ok := m.byID[id]
	if !ok {
		return types.Alert{}, &types.NotFoundError{Kind: "alert", ID: id}
	}
	return *a, nil
}

// List returns copies of all alerts in creation order.
func (m *Manager) List() []types.Alert {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]types.Alert, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.byID[id])
	}
	return out
}

// Stats recomputes the summary counts from the current collection.
func (m *Manager) Stats() types.AlertStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := types.AlertStats{
		ByPriority: make(map[types.Priority]int, 4),
		ByCategory: make(map[types.Category]int, 5),
	}
	for _, a := range m.byID {
		stats.Total++
		switch a.Status {
		case types.StatusActive:
			stats.Active++
		case types.StatusAcknowledged:
			stats.Acknowledged++
		case types.StatusDismissed:
			stats.Dismissed++
		}
		if !a.Read {
			stats.Unread++
		}
		stats.ByPriority[a.Priority]++
		stats.ByCategory[a.Category]++
	}
	return stats
}

// HasFingerprint reports whether any alert, in any status, was raised for the
// given entity, rule and occurrence fingerprint.
func (m *Manager) HasFingerprint(entityID, ruleID, fingerprint string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.seen[occurrence{dedupKey: dedupKey{entityID: entityID, ruleID: ruleID}, fingerprint: fingerprint}]
	return ok
}

// Len returns the number of alerts.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.order)
}

func (m *Manager) insertLocked(a *types.Alert) {
	m.byID[a.ID] = a
	m.order = append(m.order, a.ID)
}

func keyOf(a *types.Alert) dedupKey {
	return dedupKey{entityID: a.EntityID, ruleID: a.RuleID}
}

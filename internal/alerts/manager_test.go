package alerts

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/rules"
	"github.com/sonaligoyal925/FlePort/internal/testutil"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zap.NewNop())
	m.SetClock(testutil.Clock(testutil.Now))
	var mu sync.Mutex
	n := 0
	m.SetIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("alert-%03d", n)
	})
	return m
}

func TestReconcile_CreatesActiveAlerts(t *testing.T) {
	m := newTestManager(t)

	c := testutil.MakeCandidate("DR001", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance)
	due := testutil.Now.AddDate(0, 0, 5)
	c.DueDate = &due

	created := m.Reconcile([]types.Candidate{c})
	require.Len(t, created, 1)

	a := created[0]
	assert.Equal(t, "alert-001", a.ID)
	assert.Equal(t, types.StatusActive, a.Status)
	assert.Equal(t, types.PriorityHigh, a.Priority)
	assert.Equal(t, types.CategoryCompliance, a.Category)
	assert.Equal(t, types.KindDocumentExpiry, a.Kind)
	assert.Equal(t, "DR001", a.EntityID)
	assert.Equal(t, c.Message, a.Description)
	assert.Equal(t, testutil.Now, a.CreatedAt)
	assert.Equal(t, &due, a.DueDate)
	assert.False(t, a.Read)
}

func TestReconcile_Idempotent(t *testing.T) {
	m := newTestManager(t)
	batch := []types.Candidate{
		testutil.MakeCandidate("DR001", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance),
		testutil.MakeCandidate("DR002", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance),
	}

	require.Len(t, m.Reconcile(batch), 2)
	before := m.List()

	assert.Empty(t, m.Reconcile(batch))
	assert.Empty(t, m.Reconcile(batch))
	assert.Equal(t, before, m.List(), "repeated reconciliation changes nothing")
}

func TestReconcile_CollapsesDuplicatesInBatch(t *testing.T) {
	m := newTestManager(t)
	c := testutil.MakeCandidate("DR001", "driver-rating-drop", types.PriorityMedium, types.CategoryPerformance)

	created := m.Reconcile([]types.Candidate{c, c, c})
	assert.Len(t, created, 1)
	assert.Equal(t, 1, m.Len())
}

func TestReconcile_AcknowledgedNotDuplicated(t *testing.T) {
	m := newTestManager(t)
	engine := rules.NewEngine(zap.NewNop(), m)

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.LicenseExpiry = testutil.DaysFrom(testutil.Now, 5)
	entities := []types.Entity{d}

	res := engine.Evaluate(entities, rules.DefaultRules(), testutil.Now, types.DefaultSettings())
	created := m.Reconcile(res.Candidates)
	require.Len(t, created, 1)
	assert.Equal(t, types.StatusActive, created[0].Status)
	assert.Equal(t, types.PriorityHigh, created[0].Priority)
	assert.Equal(t, types.KindDocumentExpiry, created[0].Kind)

	_, err := m.Acknowledge(created[0].ID)
	require.NoError(t, err)

	res = engine.Evaluate(entities, rules.DefaultRules(), testutil.Now, types.DefaultSettings())
	assert.Empty(t, m.Reconcile(res.Candidates))

	all := m.List()
	require.Len(t, all, 1)
	assert.Equal(t, types.StatusAcknowledged, all[0].Status)
}

func TestReconcile_DismissedDoesNotBlock(t *testing.T) {
	m := newTestManager(t)
	c := testutil.MakeCandidate("VH001", "vehicle-service-due", types.PriorityMedium, types.CategoryMaintenance)

	first := m.Reconcile([]types.Candidate{c})
	require.Len(t, first, 1)
	_, err := m.Dismiss(first[0].ID)
	require.NoError(t, err)

	second := m.Reconcile([]types.Candidate{c})
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	// The new alert is open again and blocks further copies.
	assert.Empty(t, m.Reconcile([]types.Candidate{c}))
	assert.Equal(t, 2, m.Len())
}

func TestReconcile_FingerprintNeverRefires(t *testing.T) {
	m := newTestManager(t)
	c := testutil.MakeCandidate("DR001", "driver-trip-milestone", types.PriorityLow, types.CategoryAchievement)
	c.Fingerprint = "milestone-1000"

	created := m.Reconcile([]types.Candidate{c})
	require.Len(t, created, 1)
	assert.True(t, m.HasFingerprint("DR001", "driver-trip-milestone", "milestone-1000"))
	assert.False(t, m.HasFingerprint("DR001", "driver-trip-milestone", "milestone-2000"))

	_, err := m.Dismiss(created[0].ID)
	require.NoError(t, err)
	assert.Empty(t, m.Reconcile([]types.Candidate{c}), "dismissed milestones stay recorded")
	assert.True(t, m.HasFingerprint("DR001", "driver-trip-milestone", "milestone-1000"))

	// With the earlier occurrence closed, the next one raises a fresh alert.
	next := c
	next.Fingerprint = "milestone-2000"
	assert.Len(t, m.Reconcile([]types.Candidate{next}), 1)
}

func TestReconcile_OneOpenAlertAcrossOccurrences(t *testing.T) {
	m := newTestManager(t)
	first := testutil.MakeCandidate("DR001", "driver-trip-milestone", types.PriorityLow, types.CategoryAchievement)
	first.Fingerprint = "milestone-1000"
	second := first
	second.Fingerprint = "milestone-2000"

	created := m.Reconcile([]types.Candidate{first})
	require.Len(t, created, 1)

	assert.Empty(t, m.Reconcile([]types.Candidate{second}), "the open milestone alert blocks the next one")
	assert.Empty(t, m.Reconcile([]types.Candidate{first, second}))
	assert.False(t, m.HasFingerprint("DR001", "driver-trip-milestone", "milestone-2000"),
		"a suppressed occurrence is not recorded")

	_, err := m.Acknowledge(created[0].ID)
	require.NoError(t, err)
	assert.Empty(t, m.Reconcile([]types.Candidate{second}), "acknowledged alerts are still open")

	_, err = m.Dismiss(created[0].ID)
	require.NoError(t, err)
	next := m.Reconcile([]types.Candidate{second})
	require.Len(t, next, 1)
	assert.Equal(t, "milestone-2000", next[0].Fingerprint)

	open := 0
	for _, a := range m.List() {
		if a.EntityID == "DR001" && a.RuleID == "driver-trip-milestone" && a.Status.Open() {
			open++
		}
	}
	assert.Equal(t, 1, open)
}

func TestReconcile_DropsIncompleteCandidates(t *testing.T) {
	m := newTestManager(t)
	c := testutil.MakeCandidate("", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance)
	assert.Empty(t, m.Reconcile([]types.Candidate{c}))
	assert.Empty(t, m.Reconcile(nil))
	assert.Equal(t, 0, m.Len())
}

func TestCreateManual(t *testing.T) {
	m := newTestManager(t)

	a, err := m.CreateManual(types.ManualAlert{Title: "  Office closed Monday  "})
	require.NoError(t, err)
	assert.Equal(t, "Office closed Monday", a.Title)
	assert.Equal(t, types.PriorityMedium, a.Priority)
	assert.Equal(t, types.CategoryGeneral, a.Category)
	assert.Equal(t, types.KindManual, a.Kind)
	assert.Equal(t, types.StatusActive, a.Status)

	due := testutil.Now.Add(48 * time.Hour)
	a, err = m.CreateManual(types.ManualAlert{
		Title:      "Inspect brakes",
		Priority:   types.PriorityCritical,
		Category:   types.CategoryMaintenance,
		DueDate:    &due,
		EntityID:   "VH001",
		EntityType: types.EntityTypeVehicle,
		EntityName: "MH01AB1234",
	})
	require.NoError(t, err)
	assert.Equal(t, types.PriorityCritical, a.Priority)
	assert.Equal(t, "VH001", a.EntityID)
	assert.Equal(t, 2, m.Len())
}

func TestCreateManual_Validation(t *testing.T) {
	tests := []struct {
		name  string
		in    types.ManualAlert
		field string
	}{
		{"empty title", types.ManualAlert{Title: ""}, "title"},
		{"blank title", types.ManualAlert{Title: "   "}, "title"},
		{"bad priority", types.ManualAlert{Title: "x", Priority: "urgent"}, "priority"},
		{"bad category", types.ManualAlert{Title: "x", Category: "misc"}, "category"},
		{"bad entity type", types.ManualAlert{Title: "x", EntityType: "bus"}, "entityType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestManager(t)
			_, err := m.CreateManual(tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, types.ErrValidation)

			var ve *types.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, 0, m.Len(), "rejected input leaves state unchanged")
		})
	}
}

func TestLifecycleTransitions(t *testing.T) {
	m := newTestManager(t)
	a, err := m.CreateManual(types.ManualAlert{Title: "Check documents"})
	require.NoError(t, err)

	later := testutil.Now.Add(time.Hour)
	m.SetClock(testutil.Clock(later))

	acked, err := m.Acknowledge(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusAcknowledged, acked.Status)
	assert.Equal(t, later, acked.UpdatedAt)
	assert.Equal(t, testutil.Now, acked.CreatedAt)

	_, err = m.Acknowledge(a.ID)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	dismissed, err := m.Dismiss(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDismissed, dismissed.Status)

	_, err = m.Dismiss(a.ID)
	var it *types.InvalidTransitionError
	require.ErrorAs(t, err, &it)
	assert.Equal(t, types.StatusDismissed, it.From)

	_, err = m.Acknowledge(a.ID)
	assert.ErrorIs(t, err, types.ErrInvalidTransition)

	got, err := m.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDismissed, got.Status, "failed transitions leave status unchanged")
}

func TestDismissFromActive(t *testing.T) {
	m := newTestManager(t)
	a, err := m.CreateManual(types.ManualAlert{Title: "Fuel card lost"})
	require.NoError(t, err)

	got, err := m.Dismiss(a.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusDismissed, got.Status)
}

func TestNotFound(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get("nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = m.Acknowledge("nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = m.Dismiss("nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
	_, err = m.MarkRead("nope")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestReadState(t *testing.T) {
	m := newTestManager(t)
	m.Reconcile([]types.Candidate{
		testutil.MakeCandidate("DR001", "r1", types.PriorityHigh, types.CategoryCompliance),
		testutil.MakeCandidate("DR002", "r1", types.PriorityHigh, types.CategoryCompliance),
		testutil.MakeCandidate("DR003", "r1", types.PriorityHigh, types.CategoryCompliance),
	})

	a, err := m.MarkRead("alert-002")
	require.NoError(t, err)
	assert.True(t, a.Read)
	assert.Equal(t, types.StatusActive, a.Status, "reading does not change status")
	assert.Equal(t, 2, m.Stats().Unread)

	assert.Equal(t, 2, m.MarkAllRead())
	assert.Equal(t, 0, m.MarkAllRead())
	assert.Equal(t, 0, m.Stats().Unread)
}

func TestStats(t *testing.T) {
	m := newTestManager(t)
	m.Reconcile([]types.Candidate{
		testutil.MakeCandidate("VH001", "vehicle-insurance-expiry", types.PriorityCritical, types.CategoryCompliance),
		testutil.MakeCandidate("DR001", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance),
		testutil.MakeCandidate("DR002", "driver-rating-drop", types.PriorityMedium, types.CategoryPerformance),
	})
	_, err := m.CreateManual(types.ManualAlert{Title: "Holiday schedule", Priority: types.PriorityLow})
	require.NoError(t, err)

	_, err = m.Acknowledge("alert-002")
	require.NoError(t, err)
	_, err = m.Dismiss("alert-003")
	require.NoError(t, err)

	s := m.Stats()
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 2, s.Active)
	assert.Equal(t, 1, s.Acknowledged)
	assert.Equal(t, 1, s.Dismissed)
	assert.Equal(t, s.Total, s.Active+s.Acknowledged+s.Dismissed)
	assert.Equal(t, 1, s.ByPriority[types.PriorityCritical])
	assert.Equal(t, 1, s.ByPriority[types.PriorityHigh])
	assert.Equal(t, 2, s.ByCategory[types.CategoryCompliance])
	assert.Equal(t, 1, s.ByCategory[types.CategoryGeneral])
}

func TestList_CreationOrderAndCopies(t *testing.T) {
	m := newTestManager(t)
	m.Reconcile([]types.Candidate{
		testutil.MakeCandidate("DR003", "r1", types.PriorityLow, types.CategoryGeneral),
		testutil.MakeCandidate("DR001", "r1", types.PriorityLow, types.CategoryGeneral),
	})

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, "DR003", list[0].EntityID)
	assert.Equal(t, "DR001", list[1].EntityID)

	list[0].Status = types.StatusDismissed
	got, err := m.Get(list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, got.Status, "callers cannot mutate stored alerts")
}

func TestReconcile_ConcurrentCallersCreateOnce(t *testing.T) {
	m := NewManager(zap.NewNop())
	c := testutil.MakeCandidate("DR001", "driver-license-expiry", types.PriorityHigh, types.CategoryCompliance)

	var wg sync.WaitGroup
	var mu sync.Mutex
	total := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			n := len(m.Reconcile([]types.Candidate{c}))
			_ = m.Stats()
			mu.Lock()
			total += n
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, total)
	assert.Equal(t, 1, m.Len())
}

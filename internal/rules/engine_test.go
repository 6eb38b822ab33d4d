package rules

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/sonaligoyal925/FlePort/internal/testutil"
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// fakeHistory records fingerprints as "entity/rule/fp".
type fakeHistory map[string]bool

func (h fakeHistory) HasFingerprint(entityID, ruleID, fp string) bool {
	return h[entityID+"/"+ruleID+"/"+fp]
}

func ruleByID(t *testing.T, id string) types.Rule {
	t.Helper()
	for _, r := range DefaultRules() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("rule %s not found", id)
	return types.Rule{}
}

func TestEvaluate_LicenseExpiringWithinWindow(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t), nil)

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.LicenseExpiry = testutil.DaysFrom(testutil.Now, 5)

	res := e.Evaluate([]types.Entity{d}, DefaultRules(), testutil.Now, types.DefaultSettings())
	require.Empty(t, res.Errors)
	require.Len(t, res.Candidates, 1)

	c := res.Candidates[0]
	assert.Equal(t, "DR001", c.EntityID)
	assert.Equal(t, types.EntityTypeDriver, c.EntityType)
	assert.Equal(t, "Rajesh Kumar", c.EntityName)
	assert.Equal(t, RuleDriverLicenseExpiry, c.RuleID)
	assert.Equal(t, types.KindDocumentExpiry, c.Kind)
	assert.Equal(t, types.PriorityHigh, c.Priority)
	assert.Equal(t, types.CategoryCompliance, c.Category)
	assert.Equal(t, "Driving license expiring: Rajesh Kumar", c.Title)
	assert.Equal(t, "Driving license for Rajesh Kumar expires in 5 days (2024-01-13).", c.Message)
	require.NotNil(t, c.DueDate)
	assert.Equal(t, "2024-01-13", c.DueDate.Format(types.DayLayout))
}

func TestEvaluate_LicenseOutsideWindow(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.LicenseExpiry = testutil.DaysFrom(testutil.Now, 8)

	res := e.Evaluate([]types.Entity{d}, DefaultRules(), testutil.Now, types.DefaultSettings())
	assert.Empty(t, res.Candidates)
}

func TestEvaluate_InsuranceWindowBoundary(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)
	rules := []types.Rule{ruleByID(t, RuleVehicleInsuranceExpiry)}

	v := testutil.MakeVehicle("VH001", "MH01AB1234")
	v.InsuranceExpiry = testutil.DaysFrom(testutil.Now, 40)

	res := e.Evaluate([]types.Entity{v}, rules, testutil.Now, types.DefaultSettings())
	assert.Empty(t, res.Candidates, "40 days out is outside a 30-day window")

	// Eleven days later the expiry is 29 days away.
	later := testutil.Now.AddDate(0, 0, 11)
	res = e.Evaluate([]types.Entity{v}, rules, later, types.DefaultSettings())
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, types.PriorityCritical, res.Candidates[0].Priority)
	assert.Equal(t, types.KindInsuranceExpiry, res.Candidates[0].Kind)
	assert.Contains(t, res.Candidates[0].Message, "in 29 days")

	// Exactly at the window edge still fires.
	edge := v.InsuranceExpiry.Add(-30 * day)
	res = e.Evaluate([]types.Entity{v}, rules, edge, types.DefaultSettings())
	assert.Len(t, res.Candidates, 1)
}

func TestEvaluate_ExpiredDocumentFires(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)

	v := testutil.MakeVehicle("VH002", "MH02CD5678")
	v.PermitExpiry = testutil.DaysFrom(testutil.Now, -3)

	res := e.Evaluate([]types.Entity{v}, DefaultRules(), testutil.Now, types.DefaultSettings())
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, RuleVehiclePermitExpiry, res.Candidates[0].RuleID)
	assert.Contains(t, res.Candidates[0].Message, "3 days ago")
}

func TestEvaluate_ServiceDue(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)
	rules := []types.Rule{ruleByID(t, RuleVehicleServiceDue)}

	v := testutil.MakeVehicle("VH001", "MH01AB1234")
	v.NextService = testutil.DaysFrom(testutil.Now, 1)
	res := e.Evaluate([]types.Entity{v}, rules, testutil.Now, types.DefaultSettings())
	assert.Empty(t, res.Candidates)

	v.NextService = types.NewDate(testutil.Now)
	res = e.Evaluate([]types.Entity{v}, rules, testutil.Now, types.DefaultSettings())
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, types.CategoryMaintenance, res.Candidates[0].Category)
	assert.Contains(t, res.Candidates[0].Message, "today")
}

func TestEvaluate_RatingDrop(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)
	rules := []types.Rule{ruleByID(t, RuleDriverRatingDrop)}

	tests := []struct {
		name   string
		rating float64
		want   int
	}{
		{"below threshold", 3.9, 1},
		{"at threshold", 4.0, 0},
		{"above threshold", 4.7, 0},
		{"unrated", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := testutil.MakeDriver("DR005", "Vikram Singh")
			d.Rating = tt.rating
			res := e.Evaluate([]types.Entity{d}, rules, testutil.Now, types.DefaultSettings())
			assert.Len(t, res.Candidates, tt.want)
		})
	}

	d := testutil.MakeDriver("DR005", "Vikram Singh")
	d.Rating = 3.6
	res := e.Evaluate([]types.Entity{d}, rules, testutil.Now, types.DefaultSettings())
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "Vikram Singh's rating dropped to 3.6, below 4.", res.Candidates[0].Message)
}

func TestEvaluate_Milestone(t *testing.T) {
	rules := []types.Rule{ruleByID(t, RuleDriverTripMilestone)}
	settings := types.DefaultSettings()
	settings.EarningsMilestones = true

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.TotalTrips = 999

	e := NewEngine(zap.NewNop(), nil)
	res := e.Evaluate([]types.Entity{d}, rules, testutil.Now, settings)
	assert.Empty(t, res.Candidates)

	d.TotalTrips = 2047
	res = e.Evaluate([]types.Entity{d}, rules, testutil.Now, settings)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "milestone-2000", res.Candidates[0].Fingerprint)
	assert.Equal(t, "Rajesh Kumar completed 2000 trips.", res.Candidates[0].Message)

	// Once recorded, the same milestone does not fire again.
	history := fakeHistory{"DR001/" + RuleDriverTripMilestone + "/milestone-2000": true}
	e = NewEngine(zap.NewNop(), history)
	res = e.Evaluate([]types.Entity{d}, rules, testutil.Now, settings)
	assert.Empty(t, res.Candidates)

	// The next milestone does.
	d.TotalTrips = 3001
	res = e.Evaluate([]types.Entity{d}, rules, testutil.Now, settings)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "milestone-3000", res.Candidates[0].Fingerprint)
}

func TestEvaluate_DisabledCategorySkipped(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.LicenseExpiry = testutil.DaysFrom(testutil.Now, 2)
	d.Rating = 3.2
	d.TotalTrips = 1500

	// Milestones are off by default.
	res := e.Evaluate([]types.Entity{d}, DefaultRules(), testutil.Now, types.DefaultSettings())
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, RuleDriverLicenseExpiry, res.Candidates[0].RuleID)
	assert.Equal(t, RuleDriverRatingDrop, res.Candidates[1].RuleID)

	settings := types.DefaultSettings()
	settings.DocumentExpiry = false
	res = e.Evaluate([]types.Entity{d}, DefaultRules(), testutil.Now, settings)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, RuleDriverRatingDrop, res.Candidates[0].RuleID)
}

func TestEvaluate_EntityTypeMismatchSkipped(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)
	res := e.Evaluate([]types.Entity{
		testutil.MakeTrip("TR001", "Rajesh Kumar", "MH01AB1234", 185),
		testutil.MakePayout("PO001", "DR001", "Rajesh Kumar", 2850),
	}, DefaultRules(), testutil.Now, types.DefaultSettings())
	assert.Empty(t, res.Candidates)
	assert.Empty(t, res.Errors)
}

func TestEvaluate_PredicateErrorIsolated(t *testing.T) {
	e := NewEngine(zaptest.NewLogger(t), nil)

	failing := types.Rule{
		ID:         "always-fails",
		EntityType: types.EntityTypeDriver,
		Kind:       types.KindRatingDrop,
		Priority:   types.PriorityLow,
		Category:   types.CategoryPerformance,
		Title:      "never",
		Predicate: func(types.Entity, types.EvalContext) (types.Finding, error) {
			return types.Finding{}, errors.New("backend unavailable")
		},
	}
	panicking := failing
	panicking.ID = "always-panics"
	panicking.Predicate = func(types.Entity, types.EvalContext) (types.Finding, error) {
		panic("boom")
	}

	d := testutil.MakeDriver("DR001", "Rajesh Kumar")
	d.LicenseExpiry = testutil.DaysFrom(testutil.Now, 5)

	rules := append([]types.Rule{failing, panicking}, DefaultRules()...)
	res := e.Evaluate([]types.Entity{d}, rules, testutil.Now, types.DefaultSettings())

	require.Len(t, res.Candidates, 1, "healthy rules still produce candidates")
	assert.Equal(t, RuleDriverLicenseExpiry, res.Candidates[0].RuleID)

	require.Len(t, res.Errors, 2)
	for _, err := range res.Errors {
		assert.ErrorIs(t, err, types.ErrRuleEvaluation)
		var re *types.RuleEvaluationError
		require.ErrorAs(t, err, &re)
		assert.Equal(t, "DR001", re.EntityID)
	}
	assert.Contains(t, res.Errors[1].Error(), "boom")
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)

	var entities []types.Entity
	for i, name := range []string{"Rajesh Kumar", "Priya Patel", "Amit Sharma"} {
		d := testutil.MakeDriver("DR00"+string(rune('1'+i)), name)
		d.LicenseExpiry = testutil.DaysFrom(testutil.Now, i)
		d.Rating = 3.5
		entities = append(entities, d)
	}
	v := testutil.MakeVehicle("VH001", "MH01AB1234")
	v.InsuranceExpiry = testutil.DaysFrom(testutil.Now, 10)
	v.FitnessExpiry = testutil.DaysFrom(testutil.Now, 12)
	entities = append(entities, v)

	first := e.Evaluate(entities, DefaultRules(), testutil.Now, types.DefaultSettings())
	for i := 0; i < 5; i++ {
		again := e.Evaluate(entities, DefaultRules(), testutil.Now, types.DefaultSettings())
		assert.Equal(t, first.Candidates, again.Candidates)
	}
	require.Len(t, first.Candidates, 8)
	assert.Equal(t, "DR001", first.Candidates[0].EntityID)
	assert.Equal(t, "VH001", first.Candidates[7].EntityID)
}

func TestEvaluate_NilEntitySkipped(t *testing.T) {
	e := NewEngine(zap.NewNop(), nil)
	res := e.Evaluate([]types.Entity{nil}, DefaultRules(), testutil.Now, types.DefaultSettings())
	assert.Empty(t, res.Candidates)
}

func TestRender(t *testing.T) {
	vars := map[string]string{"name": "Rajesh", "days": "5"}
	assert.Equal(t, "Rajesh: 5 days", Render("{name}: {days} days", vars))
	assert.Equal(t, "{unknown} stays", Render("{unknown} stays", vars))
	assert.Equal(t, "plain", Render("plain", vars))
	assert.Equal(t, "{name}", Render("{name}", nil))
}

func TestDescribeDue(t *testing.T) {
	assert.Equal(t, "today", describeDue(0))
	assert.Equal(t, "tomorrow", describeDue(1))
	assert.Equal(t, "yesterday", describeDue(-1))
	assert.Equal(t, "in 12 days", describeDue(12))
	assert.Equal(t, "4 days ago", describeDue(-4))
}

func TestDefaultRules_FreshCopies(t *testing.T) {
	a := DefaultRules()
	b := DefaultRules()
	require.Len(t, a, 7)
	a[0].Priority = types.PriorityLow
	assert.Equal(t, types.PriorityHigh, b[0].Priority)

	ids := make([]string, 0, len(a))
	for _, r := range a {
		ids = append(ids, r.ID)
		assert.NotNil(t, r.Predicate, r.ID)
	}
	assert.Equal(t, "driver-license-expiry,vehicle-insurance-expiry,vehicle-fitness-expiry,"+
		"vehicle-permit-expiry,vehicle-service-due,driver-rating-drop,driver-trip-milestone",
		strings.Join(ids, ","))
	assert.Equal(t, 7*24*time.Hour, a[0].WarningWindow)
}

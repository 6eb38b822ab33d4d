package rules

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

const (
	day = 24 * time.Hour

	// DefaultRatingThreshold is the rating below which a driver is flagged.
	DefaultRatingThreshold = 4.0

	// DefaultMilestoneStep is the trip count interval that earns a milestone.
	DefaultMilestoneStep = 1000
)

// dateFields and numberFields list the attributes each entity type exposes to predicates.
var (
	dateFields = map[types.EntityType][]string{
		types.EntityTypeDriver:  {"licenseExpiry", "joinDate"},
		types.EntityTypeVehicle: {"insuranceExpiry", "fitnessExpiry", "permitExpiry", "nextService", "lastService"},
		types.EntityTypeTrip:    {"date"},
		types.EntityTypePayout:  {"requestDate", "paidDate"},
	}
	numberFields = map[types.EntityType][]string{
		types.EntityTypeDriver:  {"rating", "totalTrips", "earnings"},
		types.EntityTypeVehicle: {"mileage", "year"},
		types.EntityTypeTrip:    {"distanceKm", "durationMin", "fare", "commission", "rating"},
		types.EntityTypePayout:  {"amount", "trips"},
	}
)

func hasField(fields map[types.EntityType][]string, t types.EntityType, name string) bool {
	for _, f := range fields[t] {
		if f == name {
			return true
		}
	}
	return false
}

// ExpiresWithin fires when the date in field is at most window away from now.
// Already-past dates fire too. Entities without the date do not fire.
func ExpiresWithin(field string, window time.Duration) types.Predicate {
	return func(e types.Entity, ev types.EvalContext) (types.Finding, error) {
		expiry, ok := e.Date(field)
		if !ok {
			return types.Finding{}, nil
		}
		remaining := expiry.Sub(ev.Now)
		if remaining > window {
			return types.Finding{}, nil
		}
		return dueFinding(expiry, remaining), nil
	}
}

// DueBy fires once the date in field has been reached.
func DueBy(field string) types.Predicate {
	return func(e types.Entity, ev types.EvalContext) (types.Finding, error) {
		due, ok := e.Date(field)
		if !ok {
			return types.Finding{}, nil
		}
		remaining := due.Sub(ev.Now)
		if remaining > 0 {
			return types.Finding{}, nil
		}
		return dueFinding(due, remaining), nil
	}
}

// Below fires when the number in field is strictly less than threshold.
// Entities that do not report the number (e.g. unrated drivers) do not fire.
func Below(field string, threshold float64) types.Predicate {
	return func(e types.Entity, _ types.EvalContext) (types.Finding, error) {
		v, ok := e.Number(field)
		if !ok {
			return types.Finding{}, nil
		}
		if math.IsNaN(v) {
			return types.Finding{}, fmt.Errorf("%s is not a number", field)
		}
		if v >= threshold {
			return types.Finding{}, nil
		}
		return types.Finding{
			Matched: true,
			Vars: map[string]string{
				"value":     strconv.FormatFloat(v, 'f', -1, 64),
				"threshold": strconv.FormatFloat(threshold, 'f', -1, 64),
			},
		}, nil
	}
}

// Milestone fires when the count in field has reached a multiple of step that has
// not been alerted on before for this entity and rule. ruleID scopes the history lookup.
func Milestone(ruleID, field string, step int) types.Predicate {
	return func(e types.Entity, ev types.EvalContext) (types.Finding, error) {
		if step <= 0 {
			return types.Finding{}, fmt.Errorf("milestone step must be positive, got %d", step)
		}
		v, ok := e.Number(field)
		if !ok || v < float64(step) {
			return types.Finding{}, nil
		}
		reached := int(v) / step * step
		fp := "milestone-" + strconv.Itoa(reached)
		if ev.History != nil && ev.History.HasFingerprint(e.EntityID(), ruleID, fp) {
			return types.Finding{}, nil
		}
		return types.Finding{
			Matched:     true,
			Fingerprint: fp,
			Vars: map[string]string{
				"milestone": strconv.Itoa(reached),
				"value":     strconv.FormatFloat(v, 'f', -1, 64),
			},
		}, nil
	}
}

func dueFinding(due time.Time, remaining time.Duration) types.Finding {
	days := int(math.Ceil(remaining.Hours() / 24))
	d := due
	return types.Finding{
		Matched: true,
		DueDate: &d,
		Vars: map[string]string{
			"days": strconv.Itoa(days),
			"date": due.Format(types.DayLayout),
			"due":  describeDue(days),
		},
	}
}

// describeDue renders a day offset as "in 5 days", "today" or "3 days ago".
func describeDue(days int) string {
	switch {
	case days == 0:
		return "today"
	case days == 1:
		return "tomorrow"
	case days == -1:
		return "yesterday"
	case days > 0:
		return fmt.Sprintf("in %d days", days)
	default:
		return fmt.Sprintf("%d days ago", -days)
	}
}

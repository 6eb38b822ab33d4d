package rules

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"sigs.k8s.io/yaml"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Spec is the declarative form of a rule as written in a rule-set file.
type Spec struct {
	ID          string          `json:"id"`
	Description string          `json:"description,omitempty"`
	EntityType  string          `json:"entityType"`
	Kind        types.AlertKind `json:"kind"`
	Field       string          `json:"field,omitempty"`
	Priority    types.Priority  `json:"priority"`
	Category    types.Category  `json:"category"`
	// Window is a duration such as "7d" or "36h". Expiry kinds only.
	Window string `json:"window,omitempty"`
	// Threshold applies to rating_drop. Zero means DefaultRatingThreshold.
	Threshold float64 `json:"threshold,omitempty"`
	// Step applies to earnings_milestone. Zero means DefaultMilestoneStep.
	Step    int    `json:"step,omitempty"`
	Title   string `json:"title"`
	Message string `json:"message,omitempty"`
}

// RuleSet is the on-disk shape of a rule-set file.
type RuleSet struct {
	Rules []Spec `json:"rules"`
}

// Load parses a YAML or JSON rule-set and builds its rules in file order.
// Any invalid entry fails the whole load.
func Load(r io.Reader) ([]types.Rule, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rule set: %w", err)
	}
	var set RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, &types.ValidationError{Field: "rules", Reason: err.Error()}
	}
	if len(set.Rules) == 0 {
		return nil, &types.ValidationError{Field: "rules", Reason: "rule set is empty"}
	}

	seen := make(map[string]struct{}, len(set.Rules))
	out := make([]types.Rule, 0, len(set.Rules))
	for i, s := range set.Rules {
		if _, dup := seen[s.ID]; dup {
			return nil, &types.ValidationError{Field: fmt.Sprintf("rules[%d].id", i), Reason: "duplicate rule id " + s.ID}
		}
		seen[s.ID] = struct{}{}

		rule, err := s.Build()
		if err != nil {
			return nil, fmt.Errorf("rules[%d]: %w", i, err)
		}
		out = append(out, rule)
	}
	return out, nil
}

// Build validates the spec and binds it to the built-in predicate for its kind.
func (s Spec) Build() (types.Rule, error) {
	if strings.TrimSpace(s.ID) == "" {
		return types.Rule{}, &types.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	et, err := types.ParseEntityType(s.EntityType)
	if err != nil {
		return types.Rule{}, err
	}
	if !s.Priority.Valid() {
		return types.Rule{}, &types.ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", s.Priority)}
	}
	if !s.Category.Valid() {
		return types.Rule{}, &types.ValidationError{Field: "category", Reason: fmt.Sprintf("unknown category %q", s.Category)}
	}
	if strings.TrimSpace(s.Title) == "" {
		return types.Rule{}, &types.ValidationError{Field: "title", Reason: "must not be empty"}
	}

	rule := types.Rule{
		ID:          s.ID,
		Description: s.Description,
		EntityType:  et,
		Kind:        s.Kind,
		Priority:    s.Priority,
		Category:    s.Category,
		Title:       s.Title,
		Message:     s.Message,
	}

	switch s.Kind {
	case types.KindDocumentExpiry, types.KindInsuranceExpiry:
		if !hasField(dateFields, et, s.Field) {
			return types.Rule{}, unknownField(et, s.Field)
		}
		window, err := ParseWindow(s.Window)
		if err != nil {
			return types.Rule{}, &types.ValidationError{Field: "window", Reason: err.Error()}
		}
		rule.WarningWindow = window
		rule.Predicate = ExpiresWithin(s.Field, window)

	case types.KindVehicleMaintenance:
		field := firstNonEmpty(s.Field, "nextService")
		if !hasField(dateFields, et, field) {
			return types.Rule{}, unknownField(et, field)
		}
		rule.Predicate = DueBy(field)

	case types.KindRatingDrop:
		field := firstNonEmpty(s.Field, "rating")
		if !hasField(numberFields, et, field) {
			return types.Rule{}, unknownField(et, field)
		}
		threshold := s.Threshold
		if threshold == 0 {
			threshold = DefaultRatingThreshold
		}
		rule.Predicate = Below(field, threshold)

	case types.KindEarningsMilestone:
		field := firstNonEmpty(s.Field, "totalTrips")
		if !hasField(numberFields, et, field) {
			return types.Rule{}, unknownField(et, field)
		}
		step := s.Step
		if step == 0 {
			step = DefaultMilestoneStep
		}
		if step < 0 {
			return types.Rule{}, &types.ValidationError{Field: "step", Reason: "must be positive"}
		}
		rule.Predicate = Milestone(s.ID, field, step)

	default:
		return types.Rule{}, &types.ValidationError{Field: "kind", Reason: fmt.Sprintf("unsupported rule kind %q", s.Kind)}
	}
	return rule, nil
}

// ParseWindow parses a warning window. It accepts whole days ("7d") in addition to
// anything time.ParseDuration understands. Negative windows are rejected.
func ParseWindow(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("must not be empty")
	}
	var d time.Duration
	if n, ok := strings.CutSuffix(s, "d"); ok {
		days, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("invalid day count %q", s)
		}
		d = time.Duration(days) * day
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, err
		}
		d = parsed
	}
	if d < 0 {
		return 0, fmt.Errorf("must not be negative")
	}
	return d, nil
}

func unknownField(t types.EntityType, field string) error {
	return &types.ValidationError{Field: "field", Reason: fmt.Sprintf("%s has no field %q usable by this kind", t, field)}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

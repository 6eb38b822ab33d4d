package rules

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Result is the outcome of one evaluation pass.
type Result struct {
	Candidates []types.Candidate
	// Errors holds one *types.RuleEvaluationError per failed (rule, entity) pair.
	Errors []error
}

// Engine evaluates rules against entity snapshots. It holds no mutable state:
// the same entities, rules, time, settings and history always yield the same result.
type Engine struct {
	logger  *zap.Logger
	history types.AlertHistory
}

// NewEngine creates an Engine. history may be nil, in which case occurrence-based
// rules (milestones) see an empty history.
func NewEngine(logger *zap.Logger, history types.AlertHistory) *Engine {
	if history == nil {
		history = emptyHistory{}
	}
	return &Engine{
		logger:  logger.Named("rules"),
		history: history,
	}
}

// Evaluate runs every applicable rule against every entity. A rule applies when its
// entity type matches and its category is enabled in settings. Entities are walked in
// input order and rules in input order, so the candidate order is deterministic.
// Predicate failures are logged and reported in Result.Errors without aborting the pass.
func (e *Engine) Evaluate(entities []types.Entity, rules []types.Rule, now time.Time, settings types.Settings) Result {
	ev := types.EvalContext{Now: now, History: e.history}

	var result Result
	for _, entity := range entities {
		if entity == nil {
			continue
		}
		for i := range rules {
			rule := &rules[i]
			if rule.EntityType != entity.Kind() || !settings.CategoryEnabled(rule.Category) {
				continue
			}

			evaluationsTotal.WithLabelValues(rule.ID).Inc()
			finding, err := runPredicate(rule, entity, ev)
			if err != nil {
				ruleErr := &types.RuleEvaluationError{RuleID: rule.ID, EntityID: entity.EntityID(), Err: err}
				evaluationErrorsTotal.WithLabelValues(rule.ID).Inc()
				e.logger.Warn("Rule evaluation failed",
					zap.String("rule", rule.ID),
					zap.String("entity", entity.EntityID()),
					zap.Error(err),
				)
				result.Errors = append(result.Errors, ruleErr)
				continue
			}
			if !finding.Matched {
				continue
			}
			result.Candidates = append(result.Candidates, buildCandidate(rule, entity, finding))
		}
	}
	return result
}

// runPredicate invokes the predicate, converting a panic into an error so one broken
// rule cannot take down the pass.
func runPredicate(rule *types.Rule, entity types.Entity, ev types.EvalContext) (finding types.Finding, err error) {
	if rule.Predicate == nil {
		return types.Finding{}, fmt.Errorf("rule has no predicate")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("predicate panicked: %v", r)
		}
	}()
	return rule.Predicate(entity, ev)
}

func buildCandidate(rule *types.Rule, entity types.Entity, f types.Finding) types.Candidate {
	vars := make(map[string]string, len(f.Vars)+1)
	vars["name"] = entity.DisplayName()
	for k, v := range f.Vars {
		vars[k] = v
	}
	return types.Candidate{
		EntityID:    entity.EntityID(),
		EntityType:  entity.Kind(),
		EntityName:  entity.DisplayName(),
		RuleID:      rule.ID,
		Kind:        rule.Kind,
		Priority:    rule.Priority,
		Category:    rule.Category,
		Title:       Render(rule.Title, vars),
		Message:     Render(rule.Message, vars),
		DueDate:     f.DueDate,
		Fingerprint: f.Fingerprint,
	}
}

type emptyHistory struct{}

func (emptyHistory) HasFingerprint(_, _, _ string) bool { return false }

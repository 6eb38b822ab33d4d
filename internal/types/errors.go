package types

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. The typed errors below match their sentinel.
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrRuleEvaluation    = errors.New("rule evaluation failed")
)

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFoundError reports an unknown alert or entity id.
type NotFoundError struct {
	Kind string // "alert", "driver", "vehicle", ...
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// InvalidTransitionError reports a lifecycle action attempted from a disallowed status.
type InvalidTransitionError struct {
	AlertID string
	From    AlertStatus
	To      AlertStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("alert %q cannot move from %s to %s", e.AlertID, e.From, e.To)
}

func (e *InvalidTransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// RuleEvaluationError wraps a predicate failure for one rule on one entity.
type RuleEvaluationError struct {
	RuleID   string
	EntityID string
	Err      error
}

func (e *RuleEvaluationError) Error() string {
	return fmt.Sprintf("rule %q on entity %q: %v", e.RuleID, e.EntityID, e.Err)
}

func (e *RuleEvaluationError) Unwrap() error { return e.Err }

func (e *RuleEvaluationError) Is(target error) bool { return target == ErrRuleEvaluation }

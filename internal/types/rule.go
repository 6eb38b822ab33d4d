package types

import "time"

// Finding is what a predicate reports about one entity.
type Finding struct {
	Matched bool

	// DueDate is the deadline the condition refers to (expiry date, service date).
	DueDate *time.Time

	// Fingerprint distinguishes occurrences of the same rule on the same entity,
	// e.g. the milestone that was crossed. Empty for conditions without occurrences.
	Fingerprint string

	// Vars fill the rule's title and message placeholders ({days}, {value}, ...).
	Vars map[string]string
}

// AlertHistory is a read-only view over every alert ever created, any status.
type AlertHistory interface {
	HasFingerprint(entityID, ruleID, fingerprint string) bool
}

// EvalContext is the input a predicate may consult besides the entity itself.
type EvalContext struct {
	Now     time.Time
	History AlertHistory
}

// Predicate decides whether a rule's condition holds for an entity.
// Predicates must not modify the entity and must be safe for concurrent use.
type Predicate func(e Entity, ev EvalContext) (Finding, error)

// Rule is an immutable condition plus the metadata copied onto the alerts it produces.
type Rule struct {
	ID            string
	Description   string
	EntityType    EntityType
	Kind          AlertKind
	Priority      Priority
	Category      Category
	WarningWindow time.Duration
	Title         string
	Message       string
	Predicate     Predicate
}

// Package rules evaluates fleet entities against alert rules.
//
// A rule pairs a predicate with the metadata copied onto the alerts it produces
// (kind, priority, category, title and message templates). The Engine walks every
// entity and every rule whose entity type matches and whose category is enabled in
// settings, and turns each matched finding into a types.Candidate. It keeps no
// state between passes; occurrence-based rules consult the alert history passed to
// NewEngine instead.
//
// Built-in predicate factories:
//
//	ExpiresWithin(field, window)  document_expiry, insurance_expiry
//	DueBy(field)                  vehicle_maintenance
//	Below(field, threshold)       rating_drop
//	Milestone(ruleID, field, step) earnings_milestone
//
// Rule sets can be written in YAML and loaded with Load. DefaultRules returns the
// built-in set.
//
// A predicate that returns an error or panics is reported as a
// *types.RuleEvaluationError in the result and logged. The rest of the pass continues.
package rules

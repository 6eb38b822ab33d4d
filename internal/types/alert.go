package types

import (
	"strconv"
	"time"
)

// Priority indicates how urgently an alert needs attention.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Priorities lists priorities from most to least urgent.
func Priorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() > 0
}

// Rank orders priorities; higher is more urgent. Unknown priorities rank 0.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Category groups alerts for settings toggles and channel eligibility.
type Category string

const (
	CategoryCompliance  Category = "compliance"
	CategoryMaintenance Category = "maintenance"
	CategoryPerformance Category = "performance"
	CategoryAchievement Category = "achievement"
	CategoryGeneral     Category = "general"
)

// Categories lists every category.
func Categories() []Category {
	return []Category{CategoryCompliance, CategoryMaintenance, CategoryPerformance, CategoryAchievement, CategoryGeneral}
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryCompliance, CategoryMaintenance, CategoryPerformance, CategoryAchievement, CategoryGeneral:
		return true
	}
	return false
}

// AlertKind is the condition type that produced an alert.
type AlertKind string

const (
	KindDocumentExpiry     AlertKind = "document_expiry"
	KindInsuranceExpiry    AlertKind = "insurance_expiry"
	KindVehicleMaintenance AlertKind = "vehicle_maintenance"
	KindRatingDrop         AlertKind = "rating_drop"
	KindEarningsMilestone  AlertKind = "earnings_milestone"
	KindManual             AlertKind = "manual"
)

// Valid reports whether k is a known alert kind.
func (k AlertKind) Valid() bool {
	switch k {
	case KindDocumentExpiry, KindInsuranceExpiry, KindVehicleMaintenance,
		KindRatingDrop, KindEarningsMilestone, KindManual:
		return true
	}
	return false
}

// AlertStatus is the lifecycle state of an alert.
type AlertStatus string

const (
	StatusActive       AlertStatus = "active"
	StatusAcknowledged AlertStatus = "acknowledged"
	StatusDismissed    AlertStatus = "dismissed"
)

// Valid reports whether s is a known status.
func (s AlertStatus) Valid() bool {
	switch s {
	case StatusActive, StatusAcknowledged, StatusDismissed:
		return true
	}
	return false
}

// CanTransition reports whether the lifecycle allows moving from s to next.
// active -> acknowledged | dismissed, acknowledged -> dismissed. dismissed is terminal.
func (s AlertStatus) CanTransition(next AlertStatus) bool {
	switch s {
	case StatusActive:
		return next == StatusAcknowledged || next == StatusDismissed
	case StatusAcknowledged:
		return next == StatusDismissed
	}
	return false
}

// Open reports whether the alert still blocks re-creation for its dedup key.
func (s AlertStatus) Open() bool {
	return s == StatusActive || s == StatusAcknowledged
}

// Alert is a stateful record of a detected condition.
type Alert struct {
	ID          string      `json:"id"`
	EntityID    string      `json:"entityId,omitempty"`
	EntityType  EntityType  `json:"entityType,omitempty"`
	EntityName  string      `json:"entityName,omitempty"`
	RuleID      string      `json:"ruleId,omitempty"`
	Kind        AlertKind   `json:"kind"`
	Priority    Priority    `json:"priority"`
	Category    Category    `json:"category"`
	Status      AlertStatus `json:"status"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
	DueDate     *time.Time  `json:"dueDate,omitempty"`
	Fingerprint string      `json:"fingerprint,omitempty"`
	Read        bool        `json:"read"`
}

// Field implements query.Record for alert list views.
func (a Alert) Field(name string) (string, bool) {
	switch name {
	case "id":
		return a.ID, true
	case "entityId":
		return a.EntityID, a.EntityID != ""
	case "entityType":
		return string(a.EntityType), a.EntityType != ""
	case "entityName", "relatedEntity":
		return a.EntityName, a.EntityName != ""
	case "ruleId":
		return a.RuleID, a.RuleID != ""
	case "kind", "type":
		return string(a.Kind), true
	case "priority":
		return string(a.Priority), true
	case "priorityRank":
		return strconv.Itoa(a.Priority.Rank()), true
	case "category":
		return string(a.Category), true
	case "status":
		return string(a.Status), true
	case "title":
		return a.Title, true
	case "description":
		return a.Description, true
	case "createdAt":
		return a.CreatedAt.UTC().Format(time.RFC3339), true
	case "dueDate":
		if a.DueDate == nil {
			return "", false
		}
		return a.DueDate.UTC().Format(time.RFC3339), true
	case "read":
		return strconv.FormatBool(a.Read), true
	}
	return "", false
}

// Candidate is the transient output of rule evaluation, not yet reconciled.
type Candidate struct {
	EntityID    string
	EntityType  EntityType
	EntityName  string
	RuleID      string
	Kind        AlertKind
	Priority    Priority
	Category    Category
	Title       string
	Message     string
	DueDate     *time.Time
	Fingerprint string
}

// ManualAlert carries caller-supplied fields for a manually created alert.
type ManualAlert struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority,omitempty"`
	Category    Category   `json:"category,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	EntityID    string     `json:"entityId,omitempty"`
	EntityType  EntityType `json:"entityType,omitempty"`
	EntityName  string     `json:"entityName,omitempty"`
}

// AlertStats summarizes the alert collection.
type AlertStats struct {
	Total        int              `json:"total"`
	Active       int              `json:"active"`
	Acknowledged int              `json:"acknowledged"`
	Dismissed    int              `json:"dismissed"`
	Unread       int              `json:"unread"`
	ByPriority   map[Priority]int `json:"byPriority"`
	ByCategory   map[Category]int `json:"byCategory"`
}

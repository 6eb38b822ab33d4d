package rules

import (
	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Rule ids of the default rule set.
const (
	RuleDriverLicenseExpiry    = "driver-license-expiry"
	RuleVehicleInsuranceExpiry = "vehicle-insurance-expiry"
	RuleVehicleFitnessExpiry   = "vehicle-fitness-expiry"
	RuleVehiclePermitExpiry    = "vehicle-permit-expiry"
	RuleVehicleServiceDue      = "vehicle-service-due"
	RuleDriverRatingDrop       = "driver-rating-drop"
	RuleDriverTripMilestone    = "driver-trip-milestone"
)

// DefaultRules returns the built-in rule set. Each call returns a fresh slice.
func DefaultRules() []types.Rule {
	specs := []Spec{
		{
			ID:         RuleDriverLicenseExpiry,
			EntityType: "driver",
			Kind:       types.KindDocumentExpiry,
			Field:      "licenseExpiry",
			Priority:   types.PriorityHigh,
			Category:   types.CategoryCompliance,
			Window:     "7d",
			Title:      "Driving license expiring: {name}",
			Message:    "Driving license for {name} expires {due} ({date}).",
		},
		{
			ID:         RuleVehicleInsuranceExpiry,
			EntityType: "vehicle",
			Kind:       types.KindInsuranceExpiry,
			Field:      "insuranceExpiry",
			Priority:   types.PriorityCritical,
			Category:   types.CategoryCompliance,
			Window:     "30d",
			Title:      "Insurance expiring: {name}",
			Message:    "Insurance for vehicle {name} expires {due} ({date}).",
		},
		{
			ID:         RuleVehicleFitnessExpiry,
			EntityType: "vehicle",
			Kind:       types.KindDocumentExpiry,
			Field:      "fitnessExpiry",
			Priority:   types.PriorityHigh,
			Category:   types.CategoryCompliance,
			Window:     "30d",
			Title:      "Fitness certificate expiring: {name}",
			Message:    "Fitness certificate for vehicle {name} expires {due} ({date}).",
		},
		{
			ID:         RuleVehiclePermitExpiry,
			EntityType: "vehicle",
			Kind:       types.KindDocumentExpiry,
			Field:      "permitExpiry",
			Priority:   types.PriorityHigh,
			Category:   types.CategoryCompliance,
			Window:     "30d",
			Title:      "Permit expiring: {name}",
			Message:    "Permit for vehicle {name} expires {due} ({date}).",
		},
		{
			ID:         RuleVehicleServiceDue,
			EntityType: "vehicle",
			Kind:       types.KindVehicleMaintenance,
			Field:      "nextService",
			Priority:   types.PriorityMedium,
			Category:   types.CategoryMaintenance,
			Title:      "Service due: {name}",
			Message:    "Vehicle {name} was due for service {due} ({date}).",
		},
		{
			ID:         RuleDriverRatingDrop,
			EntityType: "driver",
			Kind:       types.KindRatingDrop,
			Field:      "rating",
			Priority:   types.PriorityMedium,
			Category:   types.CategoryPerformance,
			Threshold:  DefaultRatingThreshold,
			Title:      "Rating drop: {name}",
			Message:    "{name}'s rating dropped to {value}, below {threshold}.",
		},
		{
			ID:         RuleDriverTripMilestone,
			EntityType: "driver",
			Kind:       types.KindEarningsMilestone,
			Field:      "totalTrips",
			Priority:   types.PriorityLow,
			Category:   types.CategoryAchievement,
			Step:       DefaultMilestoneStep,
			Title:      "Milestone reached: {name}",
			Message:    "{name} completed {milestone} trips.",
		},
	}

	out := make([]types.Rule, 0, len(specs))
	for _, s := range specs {
		r, err := s.Build()
		if err != nil {
			// The table above is static; a failure here is a programming error.
			panic(err)
		}
		out = append(out, r)
	}
	return out
}

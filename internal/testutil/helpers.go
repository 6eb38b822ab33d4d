// Package testutil provides shared test helpers for the FlePort project.
// Import this in test files to avoid duplicating fixture loading, entity builders, etc.
package testutil

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Now is the fixed reference time used across tests.
var Now = time.Date(2024, time.January, 8, 9, 0, 0, 0, time.UTC)

// Clock returns a time source frozen at t.
func Clock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// DaysFrom returns a date n days after base.
func DaysFrom(base time.Time, n int) *types.Date {
	return types.NewDate(base.AddDate(0, 0, n))
}

// ReadFixture reads a file under testdata. Fails the test immediately if the file can't be read.
func ReadFixture(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err, "failed to read fixture %s", path)
	return data
}

// MakeDriver creates an active test driver with a good rating and no documents.
func MakeDriver(id, name string) *types.Driver {
	return &types.Driver{
		ID:         id,
		Name:       name,
		Status:     "active",
		Rating:     4.8,
		TotalTrips: 120,
		Earnings:   15000,
	}
}

// MakeVehicle creates an active test vehicle with no documents.
func MakeVehicle(id, registration string) *types.Vehicle {
	return &types.Vehicle{
		ID:             id,
		RegistrationNo: registration,
		Model:          "Maruti Swift",
		Status:         "active",
	}
}

// MakeTrip creates a completed test trip.
func MakeTrip(id, driver, vehicle string, fare float64) *types.Trip {
	return &types.Trip{
		ID:         id,
		Driver:     driver,
		Vehicle:    vehicle,
		Fare:       fare,
		Commission: fare / 5,
		Status:     "completed",
	}
}

// MakePayout creates a pending test payout.
func MakePayout(id, driverID, driverName string, amount float64) *types.Payout {
	return &types.Payout{
		ID:         id,
		DriverID:   driverID,
		DriverName: driverName,
		Amount:     amount,
		Status:     "pending",
	}
}

// MakeCandidate creates a test candidate for the given entity and rule.
func MakeCandidate(entityID, ruleID string, p types.Priority, c types.Category) types.Candidate {
	return types.Candidate{
		EntityID:   entityID,
		EntityType: types.EntityTypeDriver,
		EntityName: "Driver " + entityID,
		RuleID:     ruleID,
		Kind:       types.KindDocumentExpiry,
		Priority:   p,
		Category:   c,
		Title:      "Test alert " + ruleID,
		Message:    "Test candidate for " + entityID,
	}
}

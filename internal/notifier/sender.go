package notifier

import (
	"context"

	"github.com/sonaligoyal925/FlePort/internal/types"
)

// Notification is one alert routed to the channels it is eligible for.
// Actual email/SMS/push delivery happens downstream of the senders.
type Notification struct {
	Alert    types.Alert     `json:"alert"`
	Channels []types.Channel `json:"channels"`
}

// Sender hands notifications off to a delivery collaborator (webhook, Redis, live feed).
// Each implementation handles its own async delivery, retry logic, and filtering.
type Sender interface {
	// Name returns the sender's identifier (e.g., "webhook", "redis").
	Name() string

	// Send hands off one notification. It must not block for long.
	Send(ctx context.Context, n Notification) error

	// ShouldSend returns true if this sender should handle alerts of the given priority.
	ShouldSend(priority types.Priority) bool

	// Start begins any background workers. Non-blocking.
	Start(ctx context.Context)
}

// ParsePriority returns p if valid, otherwise fallback.
func ParsePriority(p string, fallback types.Priority) types.Priority {
	if pr := types.Priority(p); pr.Valid() {
		return pr
	}
	return fallback
}

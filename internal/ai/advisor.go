// README: Advisor contract for AI-assisted break planning.
package ai

import (
	"context"
	"time"
)

// BreakAdvice is the structured output of an advisor call.
type BreakAdvice struct {
	// IntervalMinutes is the suggested gap between rest breaks.
	IntervalMinutes int `json:"interval_minutes"`

	// Reason is a short justification, surfaced to the driver verbatim.
	Reason string `json:"reason,omitempty"`
}

// Advisor suggests a rest-break interval for a trip. Implementations may
// call out to a model; callers must treat every error as recoverable and
// fall back to the deterministic heuristic.
type Advisor interface {
	AdviseBreakInterval(ctx context.Context, drivingDuration time.Duration, completedBreaks int) (BreakAdvice, error)
}

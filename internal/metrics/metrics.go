// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Outcome labels shared by the counters below.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus or keep them in memory.
type Recorder interface {
	// Recipe cache metrics
	IncRecipeCacheHit()
	IncRecipeCacheMiss()

	// Recipe management metrics
	IncRecipeCreated()
	IncRecipeUpdated()
	IncRecipeDeleted()

	// Image uploads. outcome: "success", "rejected", "failed"
	IncImageUpload(outcome string)

	// Account metrics. outcome: "success", "rejected", "failed"
	IncRegistration(outcome string)
	IncLogin(outcome string)

	// HTTP request metrics
	ObserveHTTPRequest(method, route string, status int, duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

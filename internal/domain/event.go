package domain

import "time"

// Event topics published to the message bus. Fixed strings — consumers key
// their subscriptions on them.
const (
	EventLogin                 = "auth.login"
	EventUserRegistered        = "auth.user.registered"
	EventVerificationRequested = "auth.email.verification.requested"
	EventResetRequested        = "auth.password.reset.requested"
	EventResetCompleted        = "auth.password.reset.completed"
	EventReactivationRequested = "auth.account.reactivation.requested"
	EventReactivationCompleted = "auth.account.reactivation.completed"
)

// EventSource identifies this service in every published envelope.
const EventSource = "auth-gateway"

// EventVersion is the envelope schema version.
const EventVersion = "1.0"

// Event is the immutable envelope published once per completed state
// transition. The gateway keeps no record of what it published.
type Event struct {
	EventID   string         `json:"event_id"`
	EventType string         `json:"event_type"`
	Timestamp time.Time      `json:"timestamp"`
	Source    string         `json:"source"`
	Data      map[string]any `json:"data"`
	Metadata  EventMetadata  `json:"metadata"`
}

// EventMetadata carries correlation data propagated from the inbound request.
type EventMetadata struct {
	TraceID string `json:"trace_id"`
	Version string `json:"version"`
}

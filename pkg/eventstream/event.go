package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/minutes/pkg/ripple"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeRippleDetected is emitted after a ripple analysis completes.
	EventTypeRippleDetected = "minutes.ripple.detected"
)

// RippleDetectedEvent is a transport-neutral payload for a completed ripple
// analysis.
type RippleDetectedEvent struct {
	SchemaVersion int       `json:"schema_version"`
	EventType     string    `json:"event_type"`
	EventID       string    `json:"event_id"`
	EmittedAt     time.Time `json:"emitted_at"`

	DecisionID        string          `json:"decision_id,omitempty"`
	ChangeDescription string          `json:"change_description"`
	TotalAffected     int             `json:"total_affected"`
	Impacts           []ripple.Impact `json:"impacts"`
	PeopleToNotify    []string        `json:"people_to_notify"`
	Suggestions       []string        `json:"suggestions"`
}

// NewRippleDetectedEvent wraps a ripple report as a versioned event.
func NewRippleDetectedEvent(decisionID string, report ripple.Report) *RippleDetectedEvent {
	return &RippleDetectedEvent{
		SchemaVersion:     SchemaVersionV1,
		EventType:         EventTypeRippleDetected,
		EventID:           uuid.New().String(),
		EmittedAt:         time.Now().UTC(),
		DecisionID:        decisionID,
		ChangeDescription: report.ChangeDescription,
		TotalAffected:     report.TotalAffected,
		Impacts:           report.Impacts,
		PeopleToNotify:    report.PeopleToNotify,
		Suggestions:       report.Suggestions,
	}
}

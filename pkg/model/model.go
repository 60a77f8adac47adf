// Package model defines the entities of the meeting memory graph: meetings,
// decisions, action items, people, blockers, and topics, plus the labeled
// relations that connect them.
//
// Identifiers are opaque strings, unique within their entity class. Identity
// is immutable; attributes are mutable only through the explicit status
// transitions exposed by pkg/graph.
package model

import "time"

// DecisionStatus is the lifecycle status of a decision.
type DecisionStatus string

const (
	DecisionProposed   DecisionStatus = "proposed"
	DecisionConfirmed  DecisionStatus = "confirmed"
	DecisionSuperseded DecisionStatus = "superseded"
	DecisionReversed   DecisionStatus = "reversed"
)

// Active reports whether a decision with this status should appear in
// active-decision queries. Superseded and reversed decisions never do.
func (s DecisionStatus) Active() bool {
	return s != DecisionSuperseded && s != DecisionReversed
}

// ActionStatus is the lifecycle status of an action item.
type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionBlocked    ActionStatus = "blocked"
	ActionCompleted  ActionStatus = "completed"
	ActionCancelled  ActionStatus = "cancelled"
)

// MeetingType categorizes a meeting.
type MeetingType string

const (
	MeetingStandup         MeetingType = "standup"
	MeetingSprintPlanning  MeetingType = "sprint_planning"
	MeetingRetrospective   MeetingType = "retrospective"
	MeetingDesignReview    MeetingType = "design_review"
	MeetingStakeholderSync MeetingType = "stakeholder_sync"
	MeetingOneOnOne        MeetingType = "one_on_one"
	MeetingAllHands        MeetingType = "all_hands"
	MeetingAdHoc           MeetingType = "ad_hoc"
)

// Relation labels a directed edge in the relationship graph.
type Relation string

const (
	// Meeting relations
	RelationContainsDecision Relation = "contains_decision"
	RelationContainsAction   Relation = "contains_action"
	RelationContainsBlocker  Relation = "contains_blocker"
	RelationAttendedBy       Relation = "attended_by"

	// Decision relations
	RelationMadeBy      Relation = "made_by"
	RelationConfirmedBy Relation = "confirmed_by"
	RelationAboutTopic  Relation = "about_topic"
	RelationSupersedes  Relation = "supersedes"

	// Action item relations
	RelationAssignedTo  Relation = "assigned_to"
	RelationFollowsFrom Relation = "follows_from"
)

// Person is a team member. Created on first mention during ingestion;
// never deleted, only updated.
type Person struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Role      string   `json:"role,omitempty"`
	Email     string   `json:"email,omitempty"`
	Expertise []string `json:"expertise,omitempty"`
}

// Topic is a loose grouping label. Decisions may reference topics by
// free-text label without a corresponding Topic entity existing.
type Topic struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Decision is a decision made in a meeting.
type Decision struct {
	ID      string `json:"id"`
	Content string `json:"content"`

	Rationale   string `json:"rationale,omitempty"`
	Topic       string `json:"topic,omitempty"`
	MadeBy      string `json:"made_by,omitempty"`      // Person ID
	ConfirmedBy string `json:"confirmed_by,omitempty"` // Person ID
	MeetingID   string `json:"meeting_id,omitempty"`
	Quote       string `json:"quote,omitempty"` // verbatim quote from the meeting

	Status     DecisionStatus `json:"status"`
	Confidence float64        `json:"confidence"` // in [0,1]
	Timestamp  time.Time      `json:"timestamp"`

	// SupersededBy is the id of the replacing decision, set only when
	// Status is DecisionSuperseded. A "supersedes" edge points back from
	// the replacing decision.
	SupersededBy string `json:"superseded_by,omitempty"`
}

// ActionItem is a task assigned in a meeting.
type ActionItem struct {
	ID   string `json:"id"`
	Task string `json:"task"`

	AssignedTo string `json:"assigned_to,omitempty"` // Person ID
	MeetingID  string `json:"meeting_id,omitempty"`
	DecisionID string `json:"decision_id,omitempty"` // decision it follows from

	DueDate *time.Time   `json:"due_date,omitempty"`
	Status  ActionStatus `json:"status"`

	EstimatedDays int    `json:"estimated_days,omitempty"`
	ActualDays    int    `json:"actual_days,omitempty"`
	BlockedReason string `json:"blocked_reason,omitempty"`

	// CompletedAt is non-nil exactly when Status is ActionCompleted.
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Blocker is a blocker reported in a meeting.
type Blocker struct {
	ID          string `json:"id"`
	Description string `json:"description"`

	ReportedBy string `json:"reported_by,omitempty"` // Person ID
	MeetingID  string `json:"meeting_id,omitempty"`
	Impact     string `json:"impact,omitempty"`

	Resolution string `json:"resolution,omitempty"`
	Resolved   bool   `json:"resolved"`

	// ResolvedAt is non-nil exactly when Resolved is true.
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Update is a status update from a person in a meeting.
type Update struct {
	ID        string    `json:"id"`
	PersonID  string    `json:"person_id"`
	Content   string    `json:"content"`
	MeetingID string    `json:"meeting_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Learning is a lesson learned captured in a meeting.
type Learning struct {
	ID        string    `json:"id"`
	Lesson    string    `json:"lesson"`
	Context   string    `json:"context,omitempty"`
	MeetingID string    `json:"meeting_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Meeting is a recorded meeting with its contents. Decision, action item,
// and blocker ids are appended as they are processed, never removed.
type Meeting struct {
	ID    string      `json:"id"`
	Title string      `json:"title"`
	Date  time.Time   `json:"date"`
	Type  MeetingType `json:"type"`

	Attendees   []string `json:"attendees,omitempty"`    // Person IDs
	Decisions   []string `json:"decisions,omitempty"`    // Decision IDs
	ActionItems []string `json:"action_items,omitempty"` // ActionItem IDs
	Blockers    []string `json:"blockers,omitempty"`     // Blocker IDs
	Updates     []string `json:"updates,omitempty"`      // Update IDs
	Learnings   []string `json:"learnings,omitempty"`    // Learning IDs

	Transcript      string `json:"transcript,omitempty"`
	Summary         string `json:"summary,omitempty"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
	Project         string `json:"project,omitempty"`
}

// Package ingest loads meeting records into the graph and the retrieval
// index.
//
// Records are JSON documents: a single meeting object, an array of meetings,
// or a project document with a team roster and a "meetings" array. Loading is
// idempotent; re-ingesting the same file layers no duplicate state.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/model"
)

// Indexer receives parsed entities for semantic indexing. Indexing failures
// are logged, not fatal; the graph stays authoritative.
type Indexer interface {
	IndexMeeting(ctx context.Context, m *model.Meeting) error
	IndexDecision(ctx context.Context, d *model.Decision) error
}

// Counts reports what a load added to the graph.
type Counts struct {
	Meetings  int `json:"meetings"`
	Decisions int `json:"decisions"`
	Actions   int `json:"actions"`
	Blockers  int `json:"blockers"`
	People    int `json:"people"`
	Updates   int `json:"updates"`
	Learnings int `json:"learnings"`
}

func (c *Counts) Add(other Counts) {
	c.Meetings += other.Meetings
	c.Decisions += other.Decisions
	c.Actions += other.Actions
	c.Blockers += other.Blockers
	c.People += other.People
	c.Updates += other.Updates
	c.Learnings += other.Learnings
}

// Loader parses meeting records into the graph.
type Loader struct {
	graph   *graph.Store
	indexer Indexer
	logger  *zap.Logger
}

// NewLoader creates a loader. The indexer may be nil when semantic indexing
// is disabled.
func NewLoader(g *graph.Store, indexer Indexer, logger *zap.Logger) (*Loader, error) {
	if g == nil {
		return nil, fmt.Errorf("graph store is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Loader{
		graph:   g,
		indexer: indexer,
		logger:  logger,
	}, nil
}

// record shapes for the meeting JSON documents.

type decisionRecord struct {
	ID          string `json:"id"`
	Decision    string `json:"decision"`
	Reasoning   string `json:"reasoning"`
	Topic       string `json:"topic"`
	MadeBy      string `json:"made_by"`
	ConfirmedBy string `json:"confirmed_by"`
	Quote       string `json:"quote"`
}

type actionRecord struct {
	ID            string `json:"id"`
	Task          string `json:"task"`
	AssignedTo    string `json:"assigned_to"`
	DueDate       string `json:"due_date"`
	Status        string `json:"status"`
	EstimatedDays int    `json:"estimated_days"`
	DecisionID    string `json:"decision_id"`
}

type blockerRecord struct {
	ID               string `json:"id"`
	Description      string `json:"description"`
	ReportedBy       string `json:"reported_by"`
	Impact           string `json:"impact"`
	ResolutionAction string `json:"resolution_action"`
}

type updateRecord struct {
	Person string `json:"person"`
	Update string `json:"update"`
}

type learningRecord struct {
	Lesson  string `json:"lesson"`
	Context string `json:"context"`
}

type meetingRecord struct {
	ID              string           `json:"id"`
	Title           string           `json:"title"`
	Date            string           `json:"date"`
	Attendees       []string         `json:"attendees"`
	Decisions       []decisionRecord `json:"decisions"`
	ActionItems     []actionRecord   `json:"action_items"`
	Blockers        []blockerRecord  `json:"blockers"`
	Updates         []updateRecord   `json:"updates"`
	Learnings       []learningRecord `json:"learnings"`
	Transcript      string           `json:"transcript"`
	Summary         string           `json:"summary"`
	DurationMinutes int              `json:"duration_minutes"`
	Project         string           `json:"project"`
}

type projectDoc struct {
	Project  string            `json:"project"`
	Team     map[string]string `json:"team"`
	Meetings []meetingRecord   `json:"meetings"`
}

// LoadFile loads meetings from a JSON file.
func (l *Loader) LoadFile(ctx context.Context, path string) (Counts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Counts{}, fmt.Errorf("reading %s: %w", path, err)
	}

	counts, err := l.LoadBytes(ctx, data)
	if err != nil {
		return counts, fmt.Errorf("loading %s: %w", path, err)
	}

	l.logger.Info("loaded meeting records",
		zap.String("path", path),
		zap.Int("meetings", counts.Meetings),
		zap.Int("decisions", counts.Decisions),
	)

	return counts, nil
}

// LoadDir loads every .json file in a directory, in name order. Files that
// fail to parse are skipped with a warning.
func (l *Loader) LoadDir(ctx context.Context, dir string) (Counts, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return Counts{}, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var total Counts
	for _, name := range names {
		counts, err := l.LoadFile(ctx, filepath.Join(dir, name))
		if err != nil {
			l.logger.Warn("skipping unloadable file",
				zap.String("file", name),
				zap.Error(err),
			)
			continue
		}
		total.Add(counts)
	}

	return total, nil
}

// LoadBytes loads meetings from raw JSON. The document may be a single
// meeting object, an array of meetings, or a project document.
func (l *Loader) LoadBytes(ctx context.Context, data []byte) (Counts, error) {
	trimmed := strings.TrimLeftFunc(string(data), func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})

	var total Counts

	if strings.HasPrefix(trimmed, "[") {
		var records []meetingRecord
		if err := json.Unmarshal(data, &records); err != nil {
			return total, fmt.Errorf("parsing meeting array: %w", err)
		}
		for _, record := range records {
			counts, err := l.ingestMeeting(ctx, record)
			if err != nil {
				return total, err
			}
			total.Add(counts)
		}
		return total, nil
	}

	var doc projectDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return total, fmt.Errorf("parsing meeting document: %w", err)
	}

	if len(doc.Meetings) == 0 && doc.Team == nil {
		// Single meeting object
		var record meetingRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return total, fmt.Errorf("parsing meeting record: %w", err)
		}
		return l.ingestMeeting(ctx, record)
	}

	// Project document: roster first so attendee references resolve
	for name, role := range doc.Team {
		if added := l.ensurePersonWithRole(name, role); added {
			total.People++
		}
	}

	for _, record := range doc.Meetings {
		record.Project = doc.Project
		counts, err := l.ingestMeeting(ctx, record)
		if err != nil {
			return total, err
		}
		total.Add(counts)
	}

	return total, nil
}

// ingestMeeting turns one record into graph entities and edges.
func (l *Loader) ingestMeeting(ctx context.Context, record meetingRecord) (Counts, error) {
	var counts Counts

	meetingID := record.ID
	if meetingID == "" {
		meetingID = mintID("meeting")
	}

	meeting := &model.Meeting{
		ID:              meetingID,
		Title:           record.Title,
		Date:            parseDate(record.Date),
		Type:            ParseMeetingType(record.Title),
		Transcript:      record.Transcript,
		Summary:         record.Summary,
		DurationMinutes: record.DurationMinutes,
		Project:         record.Project,
	}
	if meeting.Title == "" {
		meeting.Title = "Untitled Meeting"
	}

	for _, name := range record.Attendees {
		id, added := l.ensurePerson(name)
		if added {
			counts.People++
		}
		meeting.Attendees = append(meeting.Attendees, id)
	}

	if err := l.graph.AddMeeting(meeting); err != nil {
		return counts, fmt.Errorf("adding meeting %s: %w", meetingID, err)
	}
	counts.Meetings++

	for _, dec := range record.Decisions {
		if err := l.ingestDecision(ctx, dec, meetingID, &counts); err != nil {
			return counts, err
		}
	}

	for _, act := range record.ActionItems {
		if err := l.ingestAction(act, meetingID, &counts); err != nil {
			return counts, err
		}
	}

	for _, blk := range record.Blockers {
		if err := l.ingestBlocker(blk, meetingID, &counts); err != nil {
			return counts, err
		}
	}

	for _, upd := range record.Updates {
		if upd.Person != "" {
			if _, added := l.ensurePerson(upd.Person); added {
				counts.People++
			}
		}
		counts.Updates++
	}
	counts.Learnings += len(record.Learnings)

	if l.indexer != nil {
		if err := l.indexer.IndexMeeting(ctx, meeting); err != nil {
			l.logger.Warn("meeting indexing failed",
				zap.String("meeting_id", meetingID),
				zap.Error(err),
			)
		}
	}

	return counts, nil
}

func (l *Loader) ingestDecision(ctx context.Context, record decisionRecord, meetingID string, counts *Counts) error {
	id := record.ID
	if id == "" {
		id = mintID("decision")
	}

	decision := &model.Decision{
		ID:         id,
		Content:    record.Decision,
		Rationale:  record.Reasoning,
		Topic:      record.Topic,
		MeetingID:  meetingID,
		Quote:      record.Quote,
		Status:     model.DecisionConfirmed,
		Confidence: 1.0,
		Timestamp:  l.meetingDate(meetingID),
	}

	if record.MadeBy != "" {
		pid, added := l.ensurePerson(record.MadeBy)
		if added {
			counts.People++
		}
		decision.MadeBy = pid
	}

	if record.ConfirmedBy != "" {
		pid, added := l.ensurePerson(record.ConfirmedBy)
		if added {
			counts.People++
		}
		decision.ConfirmedBy = pid
	}

	if err := l.graph.AddDecision(decision); err != nil {
		return fmt.Errorf("adding decision %s: %w", id, err)
	}
	counts.Decisions++

	if l.indexer != nil {
		if err := l.indexer.IndexDecision(ctx, decision); err != nil {
			l.logger.Warn("decision indexing failed",
				zap.String("decision_id", id),
				zap.Error(err),
			)
		}
	}

	return nil
}

func (l *Loader) ingestAction(record actionRecord, meetingID string, counts *Counts) error {
	id := record.ID
	if id == "" {
		id = mintID("action")
	}

	action := &model.ActionItem{
		ID:            id,
		Task:          record.Task,
		MeetingID:     meetingID,
		Status:        parseActionStatus(record.Status),
		EstimatedDays: record.EstimatedDays,
		CreatedAt:     l.meetingDate(meetingID),
	}

	if record.AssignedTo != "" {
		pid, added := l.ensurePerson(record.AssignedTo)
		if added {
			counts.People++
		}
		action.AssignedTo = pid
	}

	if record.DueDate != "" {
		if due, ok := parseDateStrict(record.DueDate); ok {
			action.DueDate = &due
		}
	}

	if record.DecisionID != "" {
		if _, ok := l.graph.Decision(record.DecisionID); ok {
			action.DecisionID = record.DecisionID
		} else {
			l.logger.Warn("action references unknown decision, dropping link",
				zap.String("action_id", id),
				zap.String("decision_id", record.DecisionID),
			)
		}
	}

	if err := l.graph.AddActionItem(action); err != nil {
		return fmt.Errorf("adding action item %s: %w", id, err)
	}
	counts.Actions++

	return nil
}

func (l *Loader) ingestBlocker(record blockerRecord, meetingID string, counts *Counts) error {
	id := record.ID
	if id == "" {
		id = mintID("blocker")
	}

	blocker := &model.Blocker{
		ID:          id,
		Description: record.Description,
		MeetingID:   meetingID,
		Impact:      record.Impact,
		Resolution:  record.ResolutionAction,
		CreatedAt:   l.meetingDate(meetingID),
	}

	if record.ReportedBy != "" {
		pid, added := l.ensurePerson(record.ReportedBy)
		if added {
			counts.People++
		}
		blocker.ReportedBy = pid
	}

	if err := l.graph.AddBlocker(blocker); err != nil {
		return fmt.Errorf("adding blocker %s: %w", id, err)
	}
	counts.Blockers++

	return nil
}

// ensurePerson resolves a person by display name, creating them on first
// mention. Returns the person id and whether a new person was added.
func (l *Loader) ensurePerson(name string) (string, bool) {
	id := PersonID(name)
	if _, ok := l.graph.Person(id); ok {
		return id, false
	}

	if err := l.graph.AddPerson(&model.Person{ID: id, Name: name}); err != nil {
		return id, false
	}
	return id, true
}

func (l *Loader) ensurePersonWithRole(name, role string) bool {
	id := PersonID(name)
	if _, ok := l.graph.Person(id); ok {
		return false
	}

	if err := l.graph.AddPerson(&model.Person{ID: id, Name: name, Role: role}); err != nil {
		return false
	}
	return true
}

func (l *Loader) meetingDate(meetingID string) time.Time {
	if m, ok := l.graph.Meeting(meetingID); ok {
		return m.Date
	}
	return time.Now()
}

// PersonID derives a stable person id from a display name.
func PersonID(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// ParseMeetingType infers the meeting type from its title.
func ParseMeetingType(title string) model.MeetingType {
	t := strings.ToLower(title)

	switch {
	case strings.Contains(t, "standup") || strings.Contains(t, "daily"):
		return model.MeetingStandup
	case strings.Contains(t, "sprint") && strings.Contains(t, "planning"):
		return model.MeetingSprintPlanning
	case strings.Contains(t, "retro"):
		return model.MeetingRetrospective
	case strings.Contains(t, "design") && strings.Contains(t, "review"):
		return model.MeetingDesignReview
	case strings.Contains(t, "stakeholder"):
		return model.MeetingStakeholderSync
	case strings.Contains(t, "1:1") || strings.Contains(t, "one on one"):
		return model.MeetingOneOnOne
	case strings.Contains(t, "all hands"):
		return model.MeetingAllHands
	default:
		return model.MeetingAdHoc
	}
}

func parseActionStatus(s string) model.ActionStatus {
	switch strings.ToLower(s) {
	case "completed":
		return model.ActionCompleted
	case "in_progress":
		return model.ActionInProgress
	case "blocked":
		return model.ActionBlocked
	case "cancelled":
		return model.ActionCancelled
	default:
		return model.ActionPending
	}
}

// parseDate accepts date-only and RFC 3339 timestamps. Unparseable input
// yields the current time, matching the loader's lenient posture.
func parseDate(s string) time.Time {
	if t, ok := parseDateStrict(s); ok {
		return t
	}
	return time.Now()
}

func parseDateStrict(s string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// mintID generates a fresh prefixed id for records that arrive without one.
func mintID(prefix string) string {
	return prefix + "_" + uuid.New().String()[:8]
}

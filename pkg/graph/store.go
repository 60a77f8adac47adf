// Package graph owns the canonical entity records of the meeting memory and
// the directed, labeled relationship graph over their ids.
//
// The entity maps are the single source of truth for attribute values; the
// edge lists are the single source of truth for traversal. Every edge
// endpoint resolves to an entity present in the store — adds that would break
// this fail with ErrReferentialIntegrity and leave the graph unchanged.
//
// Entities and edges are append-only during ingestion. Mutation after
// creation is limited to the explicit status transitions (Supersede,
// CompleteAction, MarkActionBlocked, ResolveBlocker), which update attributes
// in place and, where applicable, layer new edges on top. Edges are never
// removed.
//
// Reads may run concurrently; writes are serialized through an internal
// RWMutex. Callers sharing one store across front-ends should treat it as a
// single session-scoped context object.
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/papercomputeco/minutes/pkg/model"
)

// Direction selects which way Traverse and Neighbors walk edges.
type Direction int

const (
	// Downstream follows edges from source to target (successors).
	Downstream Direction = iota
	// Upstream follows edges from target to source (predecessors).
	Upstream
)

// Edge is a directed, labeled relationship between two entity ids.
type Edge struct {
	From     string         `json:"from"`
	To       string         `json:"to"`
	Relation model.Relation `json:"relation"`
}

// Stats summarizes the store. Maintained as running counters so reading it
// never rescans the maps.
type Stats struct {
	Meetings    int `json:"meetings"`
	Decisions   int `json:"decisions"`
	ActionItems int `json:"action_items"`
	People      int `json:"people"`
	Topics      int `json:"topics"`
	Blockers    int `json:"blockers"`
	TotalNodes  int `json:"total_nodes"`
	TotalEdges  int `json:"total_edges"`
}

// Store is the entity store and relationship graph.
type Store struct {
	mu sync.RWMutex

	meetings  map[string]*model.Meeting
	decisions map[string]*model.Decision
	actions   map[string]*model.ActionItem
	people    map[string]*model.Person
	topics    map[string]*model.Topic
	blockers  map[string]*model.Blocker

	// out and in hold edges in insertion order. Insertion order is the tie
	// break for BFS discovery, so these are slices rather than sets.
	out map[string][]Edge
	in  map[string][]Edge

	edgeCount int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		meetings:  make(map[string]*model.Meeting),
		decisions: make(map[string]*model.Decision),
		actions:   make(map[string]*model.ActionItem),
		people:    make(map[string]*model.Person),
		topics:    make(map[string]*model.Topic),
		blockers:  make(map[string]*model.Blocker),
		out:       make(map[string][]Edge),
		in:        make(map[string][]Edge),
	}
}

// exists reports whether any entity with the given id is present.
// Caller must hold at least the read lock.
func (s *Store) exists(id string) bool {
	if _, ok := s.meetings[id]; ok {
		return true
	}
	if _, ok := s.decisions[id]; ok {
		return true
	}
	if _, ok := s.actions[id]; ok {
		return true
	}
	if _, ok := s.people[id]; ok {
		return true
	}
	if _, ok := s.topics[id]; ok {
		return true
	}
	_, ok := s.blockers[id]
	return ok
}

// addEdgeLocked appends an edge, skipping exact duplicates so that re-adding
// an entity with identical parameters stays idempotent.
// Caller must hold the write lock and have validated both endpoints.
func (s *Store) addEdgeLocked(e Edge) {
	for _, existing := range s.out[e.From] {
		if existing == e {
			return
		}
	}
	s.out[e.From] = append(s.out[e.From], e)
	s.in[e.To] = append(s.in[e.To], e)
	s.edgeCount++
}

// AddPerson adds or overwrites a person. Idempotent on id.
func (s *Store) AddPerson(p *model.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.people[p.ID] = p
	return nil
}

// AddTopic adds or overwrites a topic. Idempotent on id.
func (s *Store) AddTopic(t *model.Topic) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics[t.ID] = t
	return nil
}

// AddMeeting adds or overwrites a meeting and links its attendees.
// All referenced attendee ids must already exist.
func (s *Store) AddMeeting(m *model.Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pid := range m.Attendees {
		if !s.exists(pid) {
			return fmt.Errorf("%w: meeting %s attendee %s", ErrReferentialIntegrity, m.ID, pid)
		}
	}

	s.meetings[m.ID] = m
	for _, pid := range m.Attendees {
		s.addEdgeLocked(Edge{From: m.ID, To: pid, Relation: model.RelationAttendedBy})
	}
	return nil
}

// AddDecision adds or overwrites a decision and links it to its meeting and
// the people involved. All referenced ids must already exist.
func (s *Store) AddDecision(d *model.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addDecisionLocked(d)
}

func (s *Store) addDecisionLocked(d *model.Decision) error {
	if d.MeetingID != "" {
		if _, ok := s.meetings[d.MeetingID]; !ok {
			return fmt.Errorf("%w: decision %s meeting %s", ErrReferentialIntegrity, d.ID, d.MeetingID)
		}
	}
	if d.MadeBy != "" && !s.exists(d.MadeBy) {
		return fmt.Errorf("%w: decision %s made_by %s", ErrReferentialIntegrity, d.ID, d.MadeBy)
	}
	if d.ConfirmedBy != "" && !s.exists(d.ConfirmedBy) {
		return fmt.Errorf("%w: decision %s confirmed_by %s", ErrReferentialIntegrity, d.ID, d.ConfirmedBy)
	}

	s.decisions[d.ID] = d

	if d.MeetingID != "" {
		s.addEdgeLocked(Edge{From: d.MeetingID, To: d.ID, Relation: model.RelationContainsDecision})
		s.appendMeetingDecisionLocked(d.MeetingID, d.ID)
	}
	if d.MadeBy != "" {
		s.addEdgeLocked(Edge{From: d.ID, To: d.MadeBy, Relation: model.RelationMadeBy})
	}
	if d.ConfirmedBy != "" {
		s.addEdgeLocked(Edge{From: d.ID, To: d.ConfirmedBy, Relation: model.RelationConfirmedBy})
	}
	return nil
}

// AddActionItem adds or overwrites an action item and links it to its
// meeting, decision, and assignee. All referenced ids must already exist.
func (s *Store) AddActionItem(a *model.ActionItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.MeetingID != "" {
		if _, ok := s.meetings[a.MeetingID]; !ok {
			return fmt.Errorf("%w: action %s meeting %s", ErrReferentialIntegrity, a.ID, a.MeetingID)
		}
	}
	if a.DecisionID != "" {
		if _, ok := s.decisions[a.DecisionID]; !ok {
			return fmt.Errorf("%w: action %s decision %s", ErrReferentialIntegrity, a.ID, a.DecisionID)
		}
	}
	if a.AssignedTo != "" && !s.exists(a.AssignedTo) {
		return fmt.Errorf("%w: action %s assigned_to %s", ErrReferentialIntegrity, a.ID, a.AssignedTo)
	}

	s.actions[a.ID] = a

	if a.MeetingID != "" {
		s.addEdgeLocked(Edge{From: a.MeetingID, To: a.ID, Relation: model.RelationContainsAction})
		s.appendMeetingActionLocked(a.MeetingID, a.ID)
	}
	if a.DecisionID != "" {
		s.addEdgeLocked(Edge{From: a.ID, To: a.DecisionID, Relation: model.RelationFollowsFrom})
	}
	if a.AssignedTo != "" {
		s.addEdgeLocked(Edge{From: a.ID, To: a.AssignedTo, Relation: model.RelationAssignedTo})
	}
	return nil
}

// AddBlocker adds or overwrites a blocker and links it to its meeting.
func (s *Store) AddBlocker(b *model.Blocker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.MeetingID != "" {
		if _, ok := s.meetings[b.MeetingID]; !ok {
			return fmt.Errorf("%w: blocker %s meeting %s", ErrReferentialIntegrity, b.ID, b.MeetingID)
		}
	}
	if b.ReportedBy != "" && !s.exists(b.ReportedBy) {
		return fmt.Errorf("%w: blocker %s reported_by %s", ErrReferentialIntegrity, b.ID, b.ReportedBy)
	}

	s.blockers[b.ID] = b

	if b.MeetingID != "" {
		s.addEdgeLocked(Edge{From: b.MeetingID, To: b.ID, Relation: model.RelationContainsBlocker})
		s.appendMeetingBlockerLocked(b.MeetingID, b.ID)
	}
	return nil
}

// AddEdge adds a directed, labeled edge between two existing entities.
// Duplicate edges (same endpoints and relation) are ignored.
func (s *Store) AddEdge(from, to string, relation model.Relation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.exists(from) {
		return fmt.Errorf("%w: edge source %s", ErrReferentialIntegrity, from)
	}
	if !s.exists(to) {
		return fmt.Errorf("%w: edge target %s", ErrReferentialIntegrity, to)
	}

	s.addEdgeLocked(Edge{From: from, To: to, Relation: relation})
	return nil
}

func (s *Store) appendMeetingDecisionLocked(meetingID, decisionID string) {
	m := s.meetings[meetingID]
	for _, id := range m.Decisions {
		if id == decisionID {
			return
		}
	}
	m.Decisions = append(m.Decisions, decisionID)
}

func (s *Store) appendMeetingActionLocked(meetingID, actionID string) {
	m := s.meetings[meetingID]
	for _, id := range m.ActionItems {
		if id == actionID {
			return
		}
	}
	m.ActionItems = append(m.ActionItems, actionID)
}

func (s *Store) appendMeetingBlockerLocked(meetingID, blockerID string) {
	m := s.meetings[meetingID]
	for _, id := range m.Blockers {
		if id == blockerID {
			return
		}
	}
	m.Blockers = append(m.Blockers, blockerID)
}

// ==================== Lookups ====================

// Meeting returns the meeting with the given id.
func (s *Store) Meeting(id string) (*model.Meeting, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meetings[id]
	return m, ok
}

// Decision returns the decision with the given id.
func (s *Store) Decision(id string) (*model.Decision, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.decisions[id]
	return d, ok
}

// ActionItem returns the action item with the given id.
func (s *Store) ActionItem(id string) (*model.ActionItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.actions[id]
	return a, ok
}

// Person returns the person with the given id.
func (s *Store) Person(id string) (*model.Person, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.people[id]
	return p, ok
}

// Blocker returns the blocker with the given id.
func (s *Store) Blocker(id string) (*model.Blocker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blockers[id]
	return b, ok
}

// PersonName resolves a person id to their display name, falling back to the
// id itself when the person is unknown.
func (s *Store) PersonName(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.people[id]; ok {
		return p.Name
	}
	return id
}

// DecisionsByMeeting returns the decisions contained in a meeting, in edge
// insertion order.
func (s *Store) DecisionsByMeeting(meetingID string) []*model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var decisions []*model.Decision
	for _, e := range s.out[meetingID] {
		if e.Relation != model.RelationContainsDecision {
			continue
		}
		if d, ok := s.decisions[e.To]; ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// DecisionsByPerson returns the decisions made by a person.
func (s *Store) DecisionsByPerson(personID string) []*model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var decisions []*model.Decision
	for _, e := range s.in[personID] {
		if e.Relation != model.RelationMadeBy {
			continue
		}
		if d, ok := s.decisions[e.From]; ok {
			decisions = append(decisions, d)
		}
	}
	return decisions
}

// DecisionsByTopic returns all decisions whose topic label contains the given
// topic, case-insensitively. Topic grouping is substring matching on the
// free-text label, applied the same way everywhere a topic filter exists.
func (s *Store) DecisionsByTopic(topic string) []*model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.decisionsByTopicLocked(topic)
}

func (s *Store) decisionsByTopicLocked(topic string) []*model.Decision {
	needle := strings.ToLower(topic)

	var decisions []*model.Decision
	for _, d := range s.decisions {
		if d.Topic != "" && strings.Contains(strings.ToLower(d.Topic), needle) {
			decisions = append(decisions, d)
		}
	}
	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].Timestamp.Equal(decisions[j].Timestamp) {
			return decisions[i].ID < decisions[j].ID
		}
		return decisions[i].Timestamp.Before(decisions[j].Timestamp)
	})
	return decisions
}

// ActiveDecisions returns the decisions on a topic that are still in force.
// Superseded and reversed decisions are never included. An empty topic
// matches all decisions.
func (s *Store) ActiveDecisions(topic string) []*model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*model.Decision
	for _, d := range s.decisionsByTopicLocked(topic) {
		if d.Status.Active() {
			active = append(active, d)
		}
	}
	return active
}

// ActionItemsByPerson returns the action items assigned to a person.
func (s *Store) ActionItemsByPerson(personID string) []*model.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var actions []*model.ActionItem
	for _, e := range s.in[personID] {
		if e.Relation != model.RelationAssignedTo {
			continue
		}
		if a, ok := s.actions[e.From]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// ActionItemsByDecision returns the action items that follow from a decision.
func (s *Store) ActionItemsByDecision(decisionID string) []*model.ActionItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var actions []*model.ActionItem
	for _, e := range s.in[decisionID] {
		if e.Relation != model.RelationFollowsFrom {
			continue
		}
		if a, ok := s.actions[e.From]; ok {
			actions = append(actions, a)
		}
	}
	return actions
}

// MeetingsByTopic returns meetings that contain at least one decision on the
// topic, sorted by meeting date.
func (s *Store) MeetingsByTopic(topic string) []*model.Meeting {
	s.mu.RLock()
	defer s.mu.RUnlock()

	needle := strings.ToLower(topic)

	var meetings []*model.Meeting
	for _, m := range s.meetings {
		for _, decID := range m.Decisions {
			d, ok := s.decisions[decID]
			if !ok || d.Topic == "" {
				continue
			}
			if strings.Contains(strings.ToLower(d.Topic), needle) {
				meetings = append(meetings, m)
				break
			}
		}
	}
	sort.Slice(meetings, func(i, j int) bool {
		if meetings[i].Date.Equal(meetings[j].Date) {
			return meetings[i].ID < meetings[j].ID
		}
		return meetings[i].Date.Before(meetings[j].Date)
	})
	return meetings
}

// HistoryEntry is one step in a topic's decision history.
type HistoryEntry struct {
	Decision *model.Decision `json:"decision"`
	Meeting  *model.Meeting  `json:"meeting,omitempty"`
	MadeBy   *model.Person   `json:"made_by,omitempty"`
}

// DecisionHistory returns the chronological history of decisions on a topic
// with their meeting and owner context.
func (s *Store) DecisionHistory(topic string) []HistoryEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var history []HistoryEntry
	for _, d := range s.decisionsByTopicLocked(topic) {
		entry := HistoryEntry{Decision: d}
		if d.MeetingID != "" {
			entry.Meeting = s.meetings[d.MeetingID]
		}
		if d.MadeBy != "" {
			entry.MadeBy = s.people[d.MadeBy]
		}
		history = append(history, entry)
	}
	return history
}

// AllDecisions returns every decision in the store, in timestamp order.
func (s *Store) AllDecisions() []*model.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decisions := make([]*model.Decision, 0, len(s.decisions))
	for _, d := range s.decisions {
		decisions = append(decisions, d)
	}
	sort.Slice(decisions, func(i, j int) bool {
		if decisions[i].Timestamp.Equal(decisions[j].Timestamp) {
			return decisions[i].ID < decisions[j].ID
		}
		return decisions[i].Timestamp.Before(decisions[j].Timestamp)
	})
	return decisions
}

// ==================== Status transitions ====================

// Supersede replaces an existing decision with a new one. The old decision's
// status becomes superseded and a "supersedes" edge is layered from the new
// decision back to the old one. The old decision is never removed. The old
// id is validated before the new decision is added, so a failed supersede
// leaves the store unchanged.
func (s *Store) Supersede(oldID string, newDecision *model.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.decisions[oldID]
	if !ok {
		return NotFoundError{Kind: "decision", ID: oldID}
	}

	if err := s.addDecisionLocked(newDecision); err != nil {
		return err
	}

	old.Status = model.DecisionSuperseded
	old.SupersededBy = newDecision.ID
	s.addEdgeLocked(Edge{From: newDecision.ID, To: oldID, Relation: model.RelationSupersedes})
	return nil
}

// CompleteAction marks an action item completed at the given time. ActualDays
// is derived as the whole-day difference from CreatedAt when that is set.
func (s *Store) CompleteAction(id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actions[id]
	if !ok {
		return NotFoundError{Kind: "action item", ID: id}
	}

	a.Status = model.ActionCompleted
	a.CompletedAt = &at
	a.BlockedReason = ""
	if !a.CreatedAt.IsZero() {
		a.ActualDays = int(at.Sub(a.CreatedAt).Hours() / 24)
	}
	return nil
}

// MarkActionBlocked transitions an action item to blocked with a reason.
func (s *Store) MarkActionBlocked(id, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.actions[id]
	if !ok {
		return NotFoundError{Kind: "action item", ID: id}
	}

	a.Status = model.ActionBlocked
	a.BlockedReason = reason
	return nil
}

// ResolveBlocker marks a blocker resolved at the given time.
func (s *Store) ResolveBlocker(id, resolution string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.blockers[id]
	if !ok {
		return NotFoundError{Kind: "blocker", ID: id}
	}

	b.Resolved = true
	b.Resolution = resolution
	b.ResolvedAt = &at
	return nil
}

// Stats returns the current store statistics from the running counters.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := len(s.meetings) + len(s.decisions) + len(s.actions) +
		len(s.people) + len(s.topics) + len(s.blockers)

	return Stats{
		Meetings:    len(s.meetings),
		Decisions:   len(s.decisions),
		ActionItems: len(s.actions),
		People:      len(s.people),
		Topics:      len(s.topics),
		Blockers:    len(s.blockers),
		TotalNodes:  nodes,
		TotalEdges:  s.edgeCount,
	}
}

package graph

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/papercomputeco/minutes/pkg/model"
)

// SnapshotVersion is the current snapshot document schema version.
const SnapshotVersion = 1

// snapshotDoc is the single-document persistence format for the full store.
type snapshotDoc struct {
	Version   int                 `json:"version"`
	Meetings  []*model.Meeting    `json:"meetings"`
	Decisions []*model.Decision   `json:"decisions"`
	Actions   []*model.ActionItem `json:"action_items"`
	People    []*model.Person     `json:"people"`
	Topics    []*model.Topic      `json:"topics"`
	Blockers  []*model.Blocker    `json:"blockers"`
	Edges     []Edge              `json:"edges"`
}

// Snapshot writes the full entity store and relationship graph to w as a
// single versioned JSON document.
func (s *Store) Snapshot(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := snapshotDoc{Version: SnapshotVersion}
	for _, m := range s.meetings {
		doc.Meetings = append(doc.Meetings, m)
	}
	for _, d := range s.decisions {
		doc.Decisions = append(doc.Decisions, d)
	}
	for _, a := range s.actions {
		doc.Actions = append(doc.Actions, a)
	}
	for _, p := range s.people {
		doc.People = append(doc.People, p)
	}
	for _, t := range s.topics {
		doc.Topics = append(doc.Topics, t)
	}
	for _, b := range s.blockers {
		doc.Blockers = append(doc.Blockers, b)
	}
	// Edges are persisted in insertion order so traversal tie breaks
	// survive a save/load round trip.
	for _, edges := range s.out {
		doc.Edges = append(doc.Edges, edges...)
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	return nil
}

// Restore clears the store and repopulates it from a snapshot document.
// The document is fully decoded and validated before any state is touched;
// a malformed document returns ErrMalformedSnapshot and leaves the store
// exactly as it was.
func (s *Store) Restore(r io.Reader) error {
	var doc snapshotDoc
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc.Version != SnapshotVersion {
		return fmt.Errorf("%w: unsupported version %d", ErrMalformedSnapshot, doc.Version)
	}

	// Build the replacement state off to the side.
	next := NewStore()
	for _, m := range doc.Meetings {
		if m == nil || m.ID == "" {
			return fmt.Errorf("%w: meeting with empty id", ErrMalformedSnapshot)
		}
		next.meetings[m.ID] = m
	}
	for _, d := range doc.Decisions {
		if d == nil || d.ID == "" {
			return fmt.Errorf("%w: decision with empty id", ErrMalformedSnapshot)
		}
		next.decisions[d.ID] = d
	}
	for _, a := range doc.Actions {
		if a == nil || a.ID == "" {
			return fmt.Errorf("%w: action item with empty id", ErrMalformedSnapshot)
		}
		next.actions[a.ID] = a
	}
	for _, p := range doc.People {
		if p == nil || p.ID == "" {
			return fmt.Errorf("%w: person with empty id", ErrMalformedSnapshot)
		}
		next.people[p.ID] = p
	}
	for _, t := range doc.Topics {
		if t == nil || t.ID == "" {
			return fmt.Errorf("%w: topic with empty id", ErrMalformedSnapshot)
		}
		next.topics[t.ID] = t
	}
	for _, b := range doc.Blockers {
		if b == nil || b.ID == "" {
			return fmt.Errorf("%w: blocker with empty id", ErrMalformedSnapshot)
		}
		next.blockers[b.ID] = b
	}
	for _, e := range doc.Edges {
		if !next.exists(e.From) || !next.exists(e.To) {
			return fmt.Errorf("%w: edge %s -> %s references missing entity",
				ErrMalformedSnapshot, e.From, e.To)
		}
		next.addEdgeLocked(e)
	}

	// Swap the validated state in atomically.
	s.mu.Lock()
	defer s.mu.Unlock()

	s.meetings = next.meetings
	s.decisions = next.decisions
	s.actions = next.actions
	s.people = next.people
	s.topics = next.topics
	s.blockers = next.blockers
	s.out = next.out
	s.in = next.in
	s.edgeCount = next.edgeCount

	return nil
}

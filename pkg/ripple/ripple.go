// Package ripple detects downstream impacts when a decision changes.
//
// Dependents of a decision are the action items that follow from it and the
// other decisions sharing its topic. Each dependent gets an impact judgment
// from the completion service; a keyword-overlap heuristic skips the call for
// clearly unrelated items. The result is a report of impacts sorted by
// severity, the people to notify, and templated suggestions.
package ripple

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/minutes/pkg/graph"
	"github.com/papercomputeco/minutes/pkg/llm"
	"github.com/papercomputeco/minutes/pkg/model"
	"github.com/papercomputeco/minutes/pkg/utils"
)

// judgmentWorkers bounds concurrent action item judgments.
const judgmentWorkers = 5

// Impact is one affected artifact.
type Impact struct {
	ID         string `json:"id"`
	Type       string `json:"type"` // "action_item" or "decision"
	Title      string `json:"title"`
	Severity   string `json:"severity"` // "critical", "high", "medium", "low"
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion"`
}

// Report describes all downstream impacts of a change.
type Report struct {
	ChangeDescription string        `json:"change_description"`
	TotalAffected     int           `json:"total_affected"`
	Impacts           []Impact      `json:"impacts"`
	PeopleToNotify    []string      `json:"people_to_notify"`
	Suggestions       []string      `json:"suggestions"`
	Elapsed           time.Duration `json:"elapsed"`
}

// Detector analyzes ripple effects of decision changes.
type Detector struct {
	graph     *graph.Store
	generator llm.Generator
	logger    *zap.Logger
}

func NewDetector(g *graph.Store, generator llm.Generator, logger *zap.Logger) (*Detector, error) {
	if g == nil {
		return nil, fmt.Errorf("graph store is required")
	}

	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Detector{
		graph:     g,
		generator: generator,
		logger:    logger,
	}, nil
}

// Detect analyzes the ripple effects of changing a decision. oldValue may be
// empty, in which case the decision's current content is used. An unknown
// decision id yields an empty report, not an error.
func (d *Detector) Detect(ctx context.Context, decisionID, newValue, oldValue string) Report {
	start := time.Now()

	decision, ok := d.graph.Decision(decisionID)
	if !ok {
		return Report{
			ChangeDescription: fmt.Sprintf("Decision %s not found", decisionID),
			Impacts:           []Impact{},
			PeopleToNotify:    []string{},
			Suggestions:       []string{},
		}
	}

	if oldValue == "" {
		oldValue = decision.Content
	}

	actions, decisions := d.dependents(decision)

	d.logger.Debug("analyzing ripple effects",
		zap.String("decision_id", decisionID),
		zap.Int("dependent_actions", len(actions)),
		zap.Int("dependent_decisions", len(decisions)),
	)

	impacts := d.judgeAll(ctx, actions, decisions, oldValue, newValue)
	sortBySeverity(impacts)

	return Report{
		ChangeDescription: fmt.Sprintf("Change: '%s' → '%s'", oldValue, newValue),
		TotalAffected:     len(impacts),
		Impacts:           impacts,
		PeopleToNotify:    d.peopleToNotify(impacts),
		Suggestions:       suggestions(impacts),
		Elapsed:           time.Since(start),
	}
}

// WhatIf runs Detect against the latest decision on a topic. With no
// decisions on the topic, the report explains that instead of failing.
func (d *Detector) WhatIf(ctx context.Context, topic, change string) Report {
	decisions := d.graph.DecisionsByTopic(topic)
	if len(decisions) == 0 {
		return Report{
			ChangeDescription: fmt.Sprintf("No decisions found about '%s'", topic),
			Impacts:           []Impact{},
			PeopleToNotify:    []string{},
			Suggestions:       []string{"No existing decisions to analyze"},
		}
	}

	latest := decisions[0]
	for _, dec := range decisions[1:] {
		if dec.Timestamp.After(latest.Timestamp) {
			latest = dec
		}
	}

	return d.Detect(ctx, latest.ID, change, latest.Content)
}

// dependents returns the action items following from the decision and the
// other non-superseded decisions sharing its topic. Topic matching here is
// exact but case-insensitive, consistent with the topic queries elsewhere.
func (d *Detector) dependents(decision *model.Decision) ([]*model.ActionItem, []*model.Decision) {
	actions := d.graph.ActionItemsByDecision(decision.ID)

	var related []*model.Decision
	if decision.Topic != "" {
		topic := strings.ToLower(decision.Topic)
		for _, other := range d.graph.AllDecisions() {
			if other.ID == decision.ID {
				continue
			}
			if other.Status == model.DecisionSuperseded {
				continue
			}
			if strings.ToLower(other.Topic) == topic {
				related = append(related, other)
			}
		}
	}

	return actions, related
}

// judgeAll collects impact judgments: action items through a bounded worker
// pool, related decisions sequentially after. Result order is discovery
// order regardless of which worker finishes first.
func (d *Detector) judgeAll(ctx context.Context, actions []*model.ActionItem,
	decisions []*model.Decision, oldValue, newValue string) []Impact {

	actionResults := make([]*Impact, len(actions))

	sem := make(chan struct{}, judgmentWorkers)
	var wg sync.WaitGroup

	for i, action := range actions {
		wg.Add(1)
		go func(i int, action *model.ActionItem) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			actionResults[i] = d.judgeAction(ctx, action, oldValue, newValue)
		}(i, action)
	}

	wg.Wait()

	impacts := make([]Impact, 0, len(actions)+len(decisions))
	for _, impact := range actionResults {
		if impact != nil {
			impacts = append(impacts, *impact)
		}
	}

	for _, dec := range decisions {
		if impact := d.judgeDecision(ctx, dec, newValue); impact != nil {
			impacts = append(impacts, *impact)
		}
	}

	return impacts
}

// judgeAction decides whether an action item is affected by the change.
// Completed actions are never affected. Items sharing no meaningful keyword
// with the old decision are skipped without a judgment call; "meaningful"
// means longer than three characters, which filters articles and
// conjunctions. This is a coarse approximation and intentionally not
// tunable.
func (d *Detector) judgeAction(ctx context.Context, action *model.ActionItem,
	oldValue, newValue string) *Impact {

	if action.Status == model.ActionCompleted {
		return nil
	}

	if !keywordOverlap(oldValue, action.Task) {
		return nil
	}

	prompt := fmt.Sprintf(`Is this action item affected by the decision change?

Decision change: "%s" → "%s"

Action item: "%s"
Status: %s

If affected, respond with:
SEVERITY: [critical/high/medium/low]
REASON: [brief explanation]
SUGGESTION: [what to do]

If not affected, respond with just: NOT_AFFECTED`,
		oldValue, newValue, action.Task, action.Status)

	result, err := d.generator.Generate(ctx, llm.Request{
		System:      "You analyze if a task is impacted by a decision change. Be concise.",
		Prompt:      prompt,
		MaxTokens:   150,
		Temperature: 0.3,
	})
	if err != nil {
		d.logger.Warn("action impact judgment failed",
			zap.String("action_id", action.ID),
			zap.Error(err),
		)
		return nil
	}

	judgment := parseJudgment(result, "NOT_AFFECTED", judgmentDefaults{
		severity:   "medium",
		reason:     "May be affected by decision change",
		suggestion: "Review and update if needed",
	})
	if judgment == nil {
		return nil
	}

	return &Impact{
		ID:         action.ID,
		Type:       "action_item",
		Title:      action.Task,
		Severity:   judgment.severity,
		Reason:     judgment.reason,
		Suggestion: judgment.suggestion,
	}
}

// judgeDecision decides whether a related decision conflicts with the new
// value.
func (d *Detector) judgeDecision(ctx context.Context, decision *model.Decision,
	newValue string) *Impact {

	prompt := fmt.Sprintf(`Does this new decision conflict with an existing one?

New decision: "%s"
Existing decision: "%s"

If they conflict, respond with:
SEVERITY: [critical/high/medium/low]
REASON: [brief explanation]

If no conflict, respond with: NO_CONFLICT`,
		newValue, decision.Content)

	result, err := d.generator.Generate(ctx, llm.Request{
		System:      "You analyze if two decisions conflict. Be concise.",
		Prompt:      prompt,
		MaxTokens:   100,
		Temperature: 0.3,
	})
	if err != nil {
		d.logger.Warn("decision conflict judgment failed",
			zap.String("decision_id", decision.ID),
			zap.Error(err),
		)
		return nil
	}

	judgment := parseJudgment(result, "NO_CONFLICT", judgmentDefaults{
		severity: "high",
		reason:   "May conflict with existing decision",
	})
	if judgment == nil {
		return nil
	}

	return &Impact{
		ID:         decision.ID,
		Type:       "decision",
		Title:      utils.Truncate(decision.Content, 50),
		Severity:   judgment.severity,
		Reason:     judgment.reason,
		Suggestion: "Review for consistency with new decision",
	}
}

// keywordOverlap reports whether the two texts share a word longer than
// three characters, case-insensitive.
func keywordOverlap(a, b string) bool {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(a)) {
		if len(w) > 3 {
			words[w] = struct{}{}
		}
	}

	for _, w := range strings.Fields(strings.ToLower(b)) {
		if len(w) <= 3 {
			continue
		}
		if _, ok := words[w]; ok {
			return true
		}
	}

	return false
}

// peopleToNotify collects assignees of impacted action items and owners of
// impacted decisions, deduplicated in impact order.
func (d *Detector) peopleToNotify(impacts []Impact) []string {
	seen := make(map[string]struct{})
	people := []string{}

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		people = append(people, id)
	}

	for _, impact := range impacts {
		switch impact.Type {
		case "action_item":
			if action, ok := d.graph.ActionItem(impact.ID); ok {
				add(action.AssignedTo)
			}
		case "decision":
			if decision, ok := d.graph.Decision(impact.ID); ok {
				add(decision.MadeBy)
			}
		}
	}

	return people
}

// suggestions builds templated next steps from impact counts.
func suggestions(impacts []Impact) []string {
	var criticalCount, highCount, actionCount int
	for _, impact := range impacts {
		if impact.Severity == "critical" {
			criticalCount++
		}
		if impact.Severity == "high" {
			highCount++
		}
		if impact.Type == "action_item" {
			actionCount++
		}
	}

	var out []string
	if criticalCount > 0 {
		out = append(out, fmt.Sprintf("⚠️ %d critical impact(s) - address before proceeding", criticalCount))
	}
	if highCount > 0 {
		out = append(out, fmt.Sprintf("Review %d high-priority item(s)", highCount))
	}
	if actionCount > 0 {
		out = append(out, fmt.Sprintf("Update or reassign %d affected action item(s)", actionCount))
	}
	if len(out) == 0 {
		out = append(out, "Change appears safe - minimal downstream impact")
	}

	return out
}

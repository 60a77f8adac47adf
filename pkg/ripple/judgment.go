package ripple

import (
	"sort"
	"strings"
)

// judgmentDefaults are applied for any field the completion omits.
type judgmentDefaults struct {
	severity   string
	reason     string
	suggestion string
}

type judgment struct {
	severity   string
	reason     string
	suggestion string
}

// parseJudgment extracts a structured judgment from free-form completion
// text. The sentinel (NOT_AFFECTED or NO_CONFLICT) anywhere in the response
// means no impact and yields nil. Recognized lines are prefixed SEVERITY:,
// REASON:, and SUGGESTION:; anything else is ignored and defaults fill the
// gaps.
func parseJudgment(result, sentinel string, defaults judgmentDefaults) *judgment {
	result = strings.TrimSpace(result)

	if strings.Contains(result, sentinel) {
		return nil
	}

	j := &judgment{
		severity:   defaults.severity,
		reason:     defaults.reason,
		suggestion: defaults.suggestion,
	}

	for _, line := range strings.Split(result, "\n") {
		switch {
		case strings.HasPrefix(line, "SEVERITY:"):
			j.severity = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "SEVERITY:")))
		case strings.HasPrefix(line, "REASON:"):
			j.reason = strings.TrimSpace(strings.TrimPrefix(line, "REASON:"))
		case strings.HasPrefix(line, "SUGGESTION:"):
			j.suggestion = strings.TrimSpace(strings.TrimPrefix(line, "SUGGESTION:"))
		}
	}

	return j
}

// severityRank orders severities for sorting; unknown severities sort last.
func severityRank(severity string) int {
	switch severity {
	case "critical":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	default:
		return 4
	}
}

// sortBySeverity sorts impacts by severity rank, preserving discovery order
// within a rank.
func sortBySeverity(impacts []Impact) {
	sort.SliceStable(impacts, func(i, j int) bool {
		return severityRank(impacts[i].Severity) < severityRank(impacts[j].Severity)
	})
}

package models

import (
	"fmt"
	"strings"
)

// Status is the lifecycle state of a post on the roadmap.
type Status string

const (
	StatusUnderReview Status = "under_review"
	StatusPlanned     Status = "planned"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
)

// Statuses lists every status in roadmap order.
var Statuses = []Status{
	StatusUnderReview,
	StatusPlanned,
	StatusInProgress,
	StatusCompleted,
}

// ParseStatus converts raw input into a Status. Anything outside the four
// lifecycle states is rejected.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusUnderReview, StatusPlanned, StatusInProgress, StatusCompleted:
		return st, nil
	default:
		return "", fmt.Errorf("invalid status %q: must be one of %s", s, joinStatuses())
	}
}

// Label is the human readable column title used by the roadmap.
func (s Status) Label() string {
	switch s {
	case StatusUnderReview:
		return "Under Review"
	case StatusPlanned:
		return "Planned"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

func joinStatuses() string {
	names := make([]string, len(Statuses))
	for i, s := range Statuses {
		names[i] = string(s)
	}
	return strings.Join(names, ", ")
}

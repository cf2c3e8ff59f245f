package models

import (
	dErrors "formation/pkg/domain-errors"
)

// Status is the lifecycle state of an application.
//
// Transitions are declared in allowedTransitions and nothing else may move an
// application between states:
//
//	draft → submitted → under_review → approved | rejected → completed
type Status string

const (
	StatusDraft       Status = "draft"
	StatusSubmitted   Status = "submitted"
	StatusUnderReview Status = "under_review"
	StatusApproved    Status = "approved"
	StatusRejected    Status = "rejected"
	StatusCompleted   Status = "completed"
)

var allowedTransitions = map[Status][]Status{
	StatusDraft:       {StatusSubmitted},
	StatusSubmitted:   {StatusUnderReview},
	StatusUnderReview: {StatusApproved, StatusRejected},
	StatusApproved:    {StatusCompleted},
	StatusRejected:    {StatusCompleted},
	StatusCompleted:   nil,
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{StatusDraft, StatusSubmitted, StatusUnderReview, StatusApproved, StatusRejected, StatusCompleted}
}

// ParseStatus constructs a Status from external input.
// Errors: CodeInvalidInput when the value is not a known status.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid status")
	}
	return st, nil
}

func (s Status) IsValid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// CanTransitionTo reports whether next is directly reachable from s.
func (s Status) CanTransitionTo(next Status) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// IsProcessed is true for states reached through a review decision.
func (s Status) IsProcessed() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCompleted
}

// Label is the human-readable status name.
func (s Status) Label() string {
	switch s {
	case StatusDraft:
		return "Draft"
	case StatusSubmitted:
		return "Submitted"
	case StatusUnderReview:
		return "Under Review"
	case StatusApproved:
		return "Approved"
	case StatusRejected:
		return "Rejected"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

func (s Status) String() string {
	return string(s)
}

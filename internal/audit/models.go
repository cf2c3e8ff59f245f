package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by purpose so sinks can route or
// retain them differently.
type EventCategory string

const (
	// CategoryCompliance covers changes to an application record.
	CategoryCompliance EventCategory = "compliance"
	// CategoryOperations covers housekeeping such as draft cleanup.
	CategoryOperations EventCategory = "operations"
)

type Action string

const (
	EventApplicationSubmitted     Action = "application_submitted"
	EventApplicationStatusChanged Action = "application_status_changed"
	EventApplicationDeleted       Action = "application_deleted"
	EventDraftsCleaned            Action = "drafts_cleaned"
)

var actionCategories = map[Action]EventCategory{
	EventApplicationSubmitted:     CategoryCompliance,
	EventApplicationStatusChanged: CategoryCompliance,
	EventApplicationDeleted:       CategoryCompliance,
	EventDraftsCleaned:            CategoryOperations,
}

// Category returns the category for a; unknown actions are operational.
func (a Action) Category() EventCategory {
	if c, ok := actionCategories[a]; ok {
		return c
	}
	return CategoryOperations
}

// Event records one state change. It never carries applicant personal data:
// the subject is a reference number and the payload is limited to statuses
// and counts.
type Event struct {
	ID             uuid.UUID     `json:"id"`
	Category       EventCategory `json:"category"`
	Timestamp      time.Time     `json:"timestamp"`
	Action         Action        `json:"action"`
	Subject        string        `json:"subject,omitempty"`
	Status         string        `json:"status,omitempty"`
	PreviousStatus string        `json:"previous_status,omitempty"`
	Count          int64         `json:"count,omitempty"`
	RequestID      string        `json:"request_id,omitempty"`
	// ActorID is the admin subject for reviewer actions; empty for applicants.
	ActorID string `json:"actor_id,omitempty"`
	// Client is a coarse "browser / os" description, not the raw user agent.
	Client string `json:"client,omitempty"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventStatus is the lifecycle state of an extracted event candidate.
type EventStatus string

const (
	EventStatusSuggested EventStatus = "suggested"
	EventStatusEdited    EventStatus = "edited"
	EventStatusConfirmed EventStatus = "confirmed"
	EventStatusRejected  EventStatus = "rejected"
)

// EventCandidate is an unconfirmed calendar event extracted from an email,
// pending a user decision.
type EventCandidate struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description"`
	StartDateTime time.Time   `json:"start_date_time"`
	EndDateTime   time.Time   `json:"end_date_time"`
	Location      string      `json:"location"`
	Status        EventStatus `json:"status"`
	MailLink      string      `json:"mail_link,omitempty"`
}

// NewCandidateID generates an identifier for a freshly extracted candidate.
func NewCandidateID() string {
	return uuid.New().String()
}

// Key returns the composite key used to match candidates across renders.
// Candidates are cloned between renders, so identity comparison is useless;
// title + start instant + location is the documented tie-break. Duplicates
// sharing the key are indistinguishable.
func (c *EventCandidate) Key() string {
	return c.Title + "|" + c.StartDateTime.UTC().Format(time.RFC3339) + "|" + c.Location
}

// Clone returns a copy of the candidate.
func (c *EventCandidate) Clone() *EventCandidate {
	cp := *c
	return &cp
}

package in

import (
	"context"

	"extractor_server/core/domain"
)

// ExtractionService produces event candidates from an opened email.
type ExtractionService interface {
	// GetEventSuggestions never returns an error; extraction failures
	// degrade to an empty result.
	GetEventSuggestions(ctx context.Context, email *domain.EmailRecord) []*domain.EventCandidate
}

// CalendarService writes a finalized candidate to the external calendar.
type CalendarService interface {
	AddEvent(ctx context.Context, candidate *domain.EventCandidate) (string, error)
}

// DatasetService records terminal review decisions and exposes the
// collected dataset.
type DatasetService interface {
	SaveApprovedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate)
	SaveRejectedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate)
	GetStats() domain.DatasetStats
	GetAllEntries(filter *domain.DatasetFilter) []domain.DatasetEntry
	ExportToJSON() ([]byte, error)
	ClearDataset(ctx context.Context) error
}

// ReviewService drives the sidebar review workflow for one opened email.
type ReviewService interface {
	// Open starts a session for the email's candidates. An empty candidate
	// list keeps the workflow idle and returns false.
	Open(ctx context.Context, email *domain.EmailRecord, candidates []*domain.EventCandidate) bool

	// Current returns the active candidate and its position, or nil when idle.
	Current() (*domain.EventCandidate, int, int)

	// Edit replaces the candidate at the current index without advancing.
	Edit(ctx context.Context, updated *domain.EventCandidate) error

	// Approve writes the current candidate to the calendar, records the
	// decision, and advances. Calendar failure keeps the index in place.
	Approve(ctx context.Context) error

	// Reject records the decision best-effort and advances.
	Reject(ctx context.Context) error

	// Close forces the workflow idle, discarding unreviewed candidates.
	Close(ctx context.Context)
}

package review

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/core/port/out"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

// session holds the candidates and navigation state for one opened email.
type session struct {
	id         string
	email      *domain.EmailRecord
	candidates []*domain.EventCandidate
	index      int
}

// Service is the review workflow state machine: Idle -> Reviewing -> Idle.
// At most one session is active; opening a new email replaces the current
// session without queuing. The loading flag gates terminal decisions so a
// duplicate approve/reject while one is in flight is ignored.
type Service struct {
	mu       sync.Mutex
	calendar in.CalendarService
	dataset  in.DatasetService
	realtime out.RealtimePort
	notifier out.NotifierPort
	log      *logger.Logger

	sess    *session
	loading bool
}

func NewService(calendar in.CalendarService, dataset in.DatasetService, realtime out.RealtimePort, notifier out.NotifierPort, log *logger.Logger) *Service {
	return &Service{
		calendar: calendar,
		dataset:  dataset,
		realtime: realtime,
		notifier: notifier,
		log:      log.WithField("service", "review"),
	}
}

// Open starts a session for the email's candidates. An empty candidate list
// keeps the workflow idle: no session, no sidebar push.
func (s *Service) Open(ctx context.Context, email *domain.EmailRecord, candidates []*domain.EventCandidate) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(candidates) == 0 {
		s.log.WithField("subject", email.Subject).Debug("no candidates, sidebar stays closed")
		return false
	}

	s.sess = &session{
		id:         uuid.New().String(),
		email:      email,
		candidates: candidates,
		index:      0,
	}
	s.loading = false

	s.log.WithField("session_id", s.sess.id).Info("review session opened with %d candidates", len(candidates))
	s.renderLocked(ctx)
	return true
}

// Current returns the active candidate, its index, and the session total.
func (s *Service) Current() (*domain.EventCandidate, int, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return nil, 0, 0
	}
	return s.sess.candidates[s.sess.index].Clone(), s.sess.index, len(s.sess.candidates)
}

// Edit replaces the candidate at the current index. The index does not
// advance and nothing is persisted; dataset capture happens only on
// terminal decisions.
func (s *Service) Edit(ctx context.Context, updated *domain.EventCandidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess == nil {
		return apperr.Conflict("no active review session")
	}

	edited := updated.Clone()
	edited.Status = domain.EventStatusEdited
	// The request carries field values, not identity; the candidate keeps
	// its id across edits.
	if edited.ID == "" {
		edited.ID = s.sess.candidates[s.sess.index].ID
	}
	if edited.MailLink == "" {
		edited.MailLink = s.sess.email.MailLink
	}
	s.sess.candidates[s.sess.index] = edited

	s.renderLocked(ctx)
	return nil
}

// Approve confirms the current candidate: calendar write first, dataset
// save strictly after the write resolves, then advance. A calendar failure
// keeps the index in place so the user may retry or reject instead.
func (s *Service) Approve(ctx context.Context) error {
	s.mu.Lock()
	if s.sess == nil {
		s.mu.Unlock()
		return apperr.Conflict("no active review session")
	}
	if s.loading {
		// Duplicate submission while a decision is in flight.
		s.mu.Unlock()
		return nil
	}

	current := s.sess.candidates[s.sess.index]
	if current.Title == "" {
		s.mu.Unlock()
		return apperr.ValidationFailed("event title is required")
	}

	confirmed := current.Clone()
	confirmed.Status = domain.EventStatusConfirmed
	if confirmed.MailLink != "" {
		confirmed.Description += "\n\nSource email: " + confirmed.MailLink
	}
	email := s.sess.email
	sess := s.sess
	s.loading = true
	s.mu.Unlock()

	// The provider call runs outside the lock; closing the sidebar cannot
	// abort it.
	_, err := s.calendar.AddEvent(ctx, confirmed)
	if err != nil {
		s.mu.Lock()
		s.loading = false
		s.mu.Unlock()
		s.notifier.ShowNotification(ctx, domain.NotificationError, "Failed to add event to calendar")
		return err
	}

	// Dataset capture strictly after the calendar write resolves, so a
	// failed write never records a false approval.
	s.dataset.SaveApprovedEvent(ctx, email, confirmed)
	s.notifier.ShowNotification(ctx, domain.NotificationSuccess, "Event added to calendar")

	s.mu.Lock()
	s.loading = false
	if s.sess == sess {
		s.advanceLocked(ctx, confirmed.Key())
	}
	s.mu.Unlock()
	return nil
}

// Reject records the decision best-effort and advances.
func (s *Service) Reject(ctx context.Context) error {
	s.mu.Lock()
	if s.sess == nil {
		s.mu.Unlock()
		return apperr.Conflict("no active review session")
	}
	if s.loading {
		s.mu.Unlock()
		return nil
	}

	rejected := s.sess.candidates[s.sess.index].Clone()
	rejected.Status = domain.EventStatusRejected
	email := s.sess.email
	sess := s.sess
	s.loading = true
	s.mu.Unlock()

	s.dataset.SaveRejectedEvent(ctx, email, rejected)
	s.notifier.ShowNotification(ctx, domain.NotificationSuccess, "Event rejected")

	s.mu.Lock()
	s.loading = false
	if s.sess == sess {
		s.advanceLocked(ctx, rejected.Key())
	}
	s.mu.Unlock()
	return nil
}

// Close forces the workflow idle from any state, discarding the remaining
// unreviewed candidates without recording them.
func (s *Service) Close(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sess != nil {
		s.log.WithField("session_id", s.sess.id).Info("review session closed")
	}
	s.sess = nil
	s.loading = false
	s.pushLocked(ctx, domain.EventSidebarClosed, nil)
}

// advanceLocked removes every candidate matching the decided candidate's
// composite key, then re-renders or closes. Removing all matches is the
// documented duplicate-key limitation, not a bug.
func (s *Service) advanceLocked(ctx context.Context, decidedKey string) {
	remaining := s.sess.candidates[:0]
	for _, c := range s.sess.candidates {
		if c.Key() != decidedKey {
			remaining = append(remaining, c)
		}
	}
	s.sess.candidates = remaining

	if len(remaining) == 0 {
		s.log.WithField("session_id", s.sess.id).Info("all candidates reviewed, closing session")
		s.sess = nil
		s.pushLocked(ctx, domain.EventSidebarClosed, nil)
		return
	}

	if s.sess.index >= len(remaining) {
		s.sess.index = len(remaining) - 1
	}
	s.renderLocked(ctx)
}

func (s *Service) renderLocked(ctx context.Context) {
	state := &domain.SidebarState{
		Email:     s.sess.email,
		Candidate: s.sess.candidates[s.sess.index].Clone(),
		Index:     s.sess.index,
		Total:     len(s.sess.candidates),
	}
	s.pushLocked(ctx, domain.EventSidebarRender, state)
}

func (s *Service) pushLocked(ctx context.Context, eventType domain.EventType, data interface{}) {
	event := &domain.RealtimeEvent{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now(),
	}
	if err := s.realtime.Push(ctx, event); err != nil {
		s.log.WithError(err).Warn("failed to push %s event", string(eventType))
	}
}

var _ in.ReviewService = (*Service)(nil)

package calendar

import (
	"context"
	"time"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/core/port/out"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

// Service converts a finalized candidate into a provider event and submits
// it. One provider call per invocation; retry policy belongs upstream.
type Service struct {
	provider   out.CalendarProviderPort
	tokens     out.TokenSource
	calendarID string
	timezone   string
	loc        *time.Location
	log        *logger.Logger
}

func NewService(provider out.CalendarProviderPort, tokens out.TokenSource, calendarID, timezone string, log *logger.Logger) (*Service, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, apperr.ConfigError("invalid calendar timezone: " + timezone).WithError(err)
	}
	return &Service{
		provider:   provider,
		tokens:     tokens,
		calendarID: calendarID,
		timezone:   timezone,
		loc:        loc,
		log:        log.WithField("service", "calendar"),
	}, nil
}

// AddEvent writes the candidate to the configured calendar and returns the
// provider-assigned event id. Token retrieval failure propagates; it is
// never replaced by a fallback.
func (s *Service) AddEvent(ctx context.Context, candidate *domain.EventCandidate) (string, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return "", apperr.OAuthFailed("google", err)
	}

	event := &out.ProviderCalendarEvent{
		Title:       candidate.Title,
		Description: candidate.Description,
		Location:    candidate.Location,
		StartTime:   candidate.StartDateTime.In(s.loc),
		EndTime:     candidate.EndDateTime.In(s.loc),
		Timezone:    s.timezone,
	}

	id, err := s.provider.CreateEvent(ctx, token, s.calendarID, event)
	if err != nil {
		s.log.WithError(err).WithField("title", candidate.Title).Error("calendar write failed")
		return "", err
	}

	s.log.WithField("event_id", id).Info("event written to calendar")
	return id, nil
}

var _ in.CalendarService = (*Service)(nil)

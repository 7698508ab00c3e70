package extraction

import (
	"context"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/core/port/out"
	"extractor_server/pkg/logger"
)

// Service produces event candidates from opened emails via one LLM call.
type Service struct {
	llm out.LLMPort
	log *logger.Logger
}

func NewService(llm out.LLMPort, log *logger.Logger) *Service {
	return &Service{
		llm: llm,
		log: log.WithField("service", "extraction"),
	}
}

// GetEventSuggestions runs the extraction pipeline for one email. It never
// returns an error: transport, auth, and parse failures are logged and
// degrade to an empty result so the workflow only ever sees "no candidates".
// Single attempt, no retry, no extra timeout beyond the transport default.
func (s *Service) GetEventSuggestions(ctx context.Context, email *domain.EmailRecord) []*domain.EventCandidate {
	system, user := BuildExtractionRequest(email)

	raw, err := s.llm.CompleteJSON(ctx, system, user)
	if err != nil {
		s.log.WithError(err).WithField("subject", email.Subject).Error("event extraction call failed")
		return nil
	}

	candidates := ParseCandidates(raw)
	for _, c := range candidates {
		c.MailLink = email.MailLink
	}

	s.log.WithField("subject", email.Subject).Info("extracted %d event candidates", len(candidates))
	return candidates
}

var _ in.ExtractionService = (*Service)(nil)

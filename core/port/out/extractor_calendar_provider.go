package out

import (
	"context"
	"time"

	"golang.org/x/oauth2"
)

// ProviderCalendarEvent is the provider-neutral event payload.
type ProviderCalendarEvent struct {
	Title       string
	Description string
	Location    string
	StartTime   time.Time
	EndTime     time.Time
	Timezone    string
}

// CalendarProviderPort writes events to an external calendar provider.
// Implementations make exactly one provider call per invocation; retry
// policy belongs to the caller.
type CalendarProviderPort interface {
	CreateEvent(ctx context.Context, token *oauth2.Token, calendarID string, event *ProviderCalendarEvent) (string, error)
}

// TokenSource supplies a valid OAuth token for provider calls. Failures
// propagate to the caller, never a fallback token.
type TokenSource interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

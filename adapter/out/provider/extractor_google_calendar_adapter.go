package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"extractor_server/core/port/out"
)

// GoogleCalendarAdapter implements CalendarProviderPort for Google Calendar.
type GoogleCalendarAdapter struct {
	oauthConfig *oauth2.Config
}

// NewGoogleCalendarAdapter creates a new Google Calendar adapter.
func NewGoogleCalendarAdapter(oauthConfig *oauth2.Config) *GoogleCalendarAdapter {
	return &GoogleCalendarAdapter{oauthConfig: oauthConfig}
}

// getService creates a Calendar service with token.
func (a *GoogleCalendarAdapter) getService(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	client := a.oauthConfig.Client(ctx, token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// CreateEvent inserts one event and returns the provider-assigned id.
// Non-success responses become an error carrying the provider's message
// when present, else the transport status text.
func (a *GoogleCalendarAdapter) CreateEvent(ctx context.Context, token *oauth2.Token, calendarID string, event *out.ProviderCalendarEvent) (string, error) {
	svc, err := a.getService(ctx, token)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar service: %w", err)
	}

	if calendarID == "" {
		calendarID = "primary"
	}

	created, err := svc.Events.Insert(calendarID, a.toGoogleEvent(event)).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to add event: %s", providerMessage(err))
	}

	return created.Id, nil
}

func (a *GoogleCalendarAdapter) toGoogleEvent(event *out.ProviderCalendarEvent) *calendar.Event {
	tz := event.Timezone
	if tz == "" {
		tz = "UTC"
	}
	return &calendar.Event{
		Summary:     event.Title,
		Description: event.Description,
		Location:    event.Location,
		Start: &calendar.EventDateTime{
			DateTime: event.StartTime.Format(time.RFC3339),
			TimeZone: tz,
		},
		End: &calendar.EventDateTime{
			DateTime: event.EndTime.Format(time.RFC3339),
			TimeZone: tz,
		},
	}
}

// providerMessage extracts Google's error message when present, falling
// back to the HTTP status text, then the raw error.
func providerMessage(err error) string {
	if gerr, ok := err.(*googleapi.Error); ok {
		if gerr.Message != "" {
			return gerr.Message
		}
		if text := http.StatusText(gerr.Code); text != "" {
			return text
		}
	}
	return err.Error()
}

// Ensure interface compliance
var _ out.CalendarProviderPort = (*GoogleCalendarAdapter)(nil)

package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"extractor_server/core/domain"
)

const (
	maxBodyLength  = 4000
	truncationMark = "\n[...truncated]"
	defaultTitle   = "Untitled Event"
	defaultStart   = "09:00"
	defaultEnd     = "10:00"
	dateTimeLayout = "2006-01-02T15:04"
	systemPrompt   = "You are an AI assistant that extracts events from email content."
)

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// rawEvent mirrors the structure the model is instructed to return.
type rawEvent struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	StartTime   string `json:"startTime"`
	EndDate     string `json:"endDate"`
	EndTime     string `json:"endTime"`
	Location    string `json:"location"`
}

// BuildExtractionRequest builds the system and user prompts for one email.
// The body is truncated to maxBodyLength characters with a marker to respect
// model context limits; truncation never splits a multi-byte character.
func BuildExtractionRequest(email *domain.EmailRecord) (string, string) {
	body := email.Body
	if runes := []rune(body); len(runes) > maxBodyLength {
		body = string(runes[:maxBodyLength]) + truncationMark
	}

	user := fmt.Sprintf(`Extract events from the following email:

From: %s (%s)
Date: %s
Subject: %s
Body: %s

Return a JSON array of events with this exact structure:
[
  {
    "title": "Event title" use informative and descriptive short title.
    "description": "Detailed description, all relevant information from the email, return multi-line description. Use \n to indicate a new line.",
    "startDate": "yyyy-MM-dd" (required),
    "startTime": "HH:mm" (required),
    "endDate": "yyyy-MM-dd" (required),
    "endTime": "HH:mm" (required),
    "location": "Optional location, if online, specify 'Online' and link if available. Don't include additional details.",
  },
  ...
]

The language of the returned text should match the language of the email.
Return only events array in JSON format, do not include any additional text or explanations. If you cannot find any events, return an empty array: [].`,
		email.SenderName, email.SenderEmail, email.DateTime, email.Subject, body)

	return systemPrompt, user
}

// ParseCandidates converts the model's raw text response into normalized
// candidates. Tolerates a bare array, an {"events": [...]} wrapper, code
// fences, and malformed text. Parse failure yields an empty slice, never
// an error: the caller must not crash on untrusted model output.
func ParseCandidates(raw string) []*domain.EventCandidate {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var events []rawEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		var wrapper struct {
			Events []rawEvent `json:"events"`
		}
		if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
			return nil
		}
		events = wrapper.Events
	}

	candidates := make([]*domain.EventCandidate, 0, len(events))
	for _, ev := range events {
		candidates = append(candidates, normalize(ev))
	}
	return candidates
}

// normalize applies field-level defaults: invalid/missing startDate falls
// back to today, endDate to startDate, times to the 09:00/10:00 sentinels.
// Shape checks are strict; any deviation takes the default.
func normalize(ev rawEvent) *domain.EventCandidate {
	startDate := ev.StartDate
	if !datePattern.MatchString(startDate) {
		startDate = time.Now().Format("2006-01-02")
	}
	endDate := ev.EndDate
	if !datePattern.MatchString(endDate) {
		endDate = startDate
	}
	startTime := ev.StartTime
	if !timePattern.MatchString(startTime) {
		startTime = defaultStart
	}
	endTime := ev.EndTime
	if !timePattern.MatchString(endTime) {
		endTime = defaultEnd
	}

	start, err := time.ParseInLocation(dateTimeLayout, startDate+"T"+startTime, time.Local)
	if err != nil {
		start = time.Now().Truncate(time.Hour)
	}
	end, err := time.ParseInLocation(dateTimeLayout, endDate+"T"+endTime, time.Local)
	if err != nil || end.Before(start) {
		end = start.Add(time.Hour)
	}

	title := ev.Title
	if title == "" {
		title = defaultTitle
	}

	return &domain.EventCandidate{
		ID:            domain.NewCandidateID(),
		Title:         title,
		Description:   ev.Description,
		StartDateTime: start,
		EndDateTime:   end,
		Location:      ev.Location,
		Status:        domain.EventStatusSuggested,
	}
}

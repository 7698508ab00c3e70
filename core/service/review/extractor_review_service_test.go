package review

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"extractor_server/core/domain"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

type fakeCalendar struct {
	mu      sync.Mutex
	calls   []*domain.EventCandidate
	err     error
	block   chan struct{} // when set, AddEvent waits until closed
	entered chan struct{} // signals AddEvent started
}

func (f *fakeCalendar) AddEvent(ctx context.Context, candidate *domain.EventCandidate) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, candidate)
	f.mu.Unlock()
	if f.entered != nil {
		close(f.entered)
		f.entered = nil
	}
	if f.block != nil {
		<-f.block
	}
	if f.err != nil {
		return "", f.err
	}
	return "evt-1", nil
}

func (f *fakeCalendar) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakeDataset struct {
	mu       sync.Mutex
	approved []*domain.EventCandidate
	rejected []*domain.EventCandidate
}

func (f *fakeDataset) SaveApprovedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.approved = append(f.approved, candidate)
}

func (f *fakeDataset) SaveRejectedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rejected = append(f.rejected, candidate)
}

func (f *fakeDataset) GetStats() domain.DatasetStats { return domain.DatasetStats{} }

func (f *fakeDataset) GetAllEntries(filter *domain.DatasetFilter) []domain.DatasetEntry {
	return nil
}

func (f *fakeDataset) ExportToJSON() ([]byte, error) { return nil, nil }

func (f *fakeDataset) ClearDataset(ctx context.Context) error { return nil }

func (f *fakeDataset) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.approved), len(f.rejected)
}

type fakeRealtime struct {
	mu     sync.Mutex
	events []*domain.RealtimeEvent
}

func (f *fakeRealtime) Push(ctx context.Context, event *domain.RealtimeEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeRealtime) lastType() domain.EventType {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.events) == 0 {
		return ""
	}
	return f.events[len(f.events)-1].Type
}

func (f *fakeRealtime) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []string
	levels   []domain.NotificationLevel
}

func (f *fakeNotifier) ShowNotification(ctx context.Context, level domain.NotificationLevel, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.levels = append(f.levels, level)
	f.messages = append(f.messages, message)
}

type fixture struct {
	svc      *Service
	calendar *fakeCalendar
	dataset  *fakeDataset
	realtime *fakeRealtime
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		calendar: &fakeCalendar{},
		dataset:  &fakeDataset{},
		realtime: &fakeRealtime{},
		notifier: &fakeNotifier{},
	}
	f.svc = NewService(f.calendar, f.dataset, f.realtime, f.notifier, logger.Default())
	return f
}

func reviewEmail() *domain.EmailRecord {
	return &domain.EmailRecord{
		SenderName:  "Dave",
		SenderEmail: "dave@example.com",
		Subject:     "Planning",
		Body:        "body",
		DateTime:    "2024-05-01T08:00:00Z",
		MailLink:    "https://mail.google.com/mail/u/0/#inbox/thread42",
	}
}

func candidate(title string) *domain.EventCandidate {
	start := time.Date(2024, 5, 2, 14, 0, 0, 0, time.UTC)
	return &domain.EventCandidate{
		ID:            domain.NewCandidateID(),
		Title:         title,
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
		Location:      "Room 1",
		Status:        domain.EventStatusSuggested,
		MailLink:      "https://mail.google.com/mail/u/0/#inbox/thread42",
	}
}

func TestOpenWithNoCandidates(t *testing.T) {
	f := newFixture()

	opened := f.svc.Open(context.Background(), reviewEmail(), nil)
	if opened {
		t.Error("expected Open to report false for an empty candidate list")
	}
	if f.realtime.count() != 0 {
		t.Errorf("expected no realtime push, got %d events", f.realtime.count())
	}
	if c, _, _ := f.svc.Current(); c != nil {
		t.Error("expected no active candidate")
	}
}

func TestOpenRendersFirstCandidate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	opened := f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})
	if !opened {
		t.Fatal("expected Open to report true")
	}
	if f.realtime.lastType() != domain.EventSidebarRender {
		t.Errorf("expected sidebar.render push, got %s", f.realtime.lastType())
	}

	c, index, total := f.svc.Current()
	if c == nil || c.Title != "A" {
		t.Fatalf("expected current candidate A, got %+v", c)
	}
	if index != 0 || total != 2 {
		t.Errorf("expected index 0 of 2, got %d of %d", index, total)
	}
}

func TestOpenReplacesActiveSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("Old")})
	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("New")})

	c, _, total := f.svc.Current()
	if c == nil || c.Title != "New" {
		t.Fatalf("expected replacement session, got %+v", c)
	}
	if total != 1 {
		t.Errorf("expected 1 candidate, got %d", total)
	}
}

func TestApproveEmptyTitle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("")})

	err := f.svc.Approve(ctx)
	if err == nil {
		t.Fatal("expected validation error for empty title")
	}
	appErr := apperr.AsAppError(err)
	if appErr == nil || appErr.Code != apperr.CodeValidationFailed {
		t.Errorf("expected VALIDATION_FAILED, got %v", err)
	}

	if f.calendar.callCount() != 0 {
		t.Error("calendar must not be called on validation failure")
	}
	if a, r := f.dataset.counts(); a != 0 || r != 0 {
		t.Error("dataset must not be touched on validation failure")
	}
	if _, index, _ := f.svc.Current(); index != 0 {
		t.Errorf("index must not advance, got %d", index)
	}
}

func TestApproveCalendarFailure(t *testing.T) {
	f := newFixture()
	f.calendar.err = errors.New("failed to add event: Invalid credentials")
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})

	if err := f.svc.Approve(ctx); err == nil {
		t.Fatal("expected calendar failure to surface")
	}

	if a, _ := f.dataset.counts(); a != 0 {
		t.Error("failed calendar write must not record an approval")
	}
	c, index, total := f.svc.Current()
	if c == nil || c.Title != "A" || index != 0 || total != 2 {
		t.Errorf("expected session unchanged on failure, got %v at %d of %d", c, index, total)
	}

	f.notifier.mu.Lock()
	if len(f.notifier.levels) != 1 || f.notifier.levels[0] != domain.NotificationError {
		t.Errorf("expected one error notification, got %+v", f.notifier.levels)
	}
	f.notifier.mu.Unlock()

	// The decision is retryable once the provider recovers.
	f.calendar.err = nil
	if err := f.svc.Approve(ctx); err != nil {
		t.Fatalf("retry should succeed, got %v", err)
	}
	if a, _ := f.dataset.counts(); a != 1 {
		t.Errorf("expected 1 approved entry after retry, got %d", a)
	}
}

func TestApproveSuccess(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})

	if err := f.svc.Approve(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calendar.callCount() != 1 {
		t.Fatalf("expected 1 calendar call, got %d", f.calendar.callCount())
	}
	confirmed := f.calendar.calls[0]
	if confirmed.Status != domain.EventStatusConfirmed {
		t.Errorf("expected confirmed status, got %s", confirmed.Status)
	}
	if !strings.Contains(confirmed.Description, "https://mail.google.com/mail/u/0/#inbox/thread42") {
		t.Error("expected source email link appended to description")
	}

	if a, r := f.dataset.counts(); a != 1 || r != 0 {
		t.Errorf("expected exactly 1 approved entry, got %d approved / %d rejected", a, r)
	}

	c, index, total := f.svc.Current()
	if c == nil || c.Title != "B" {
		t.Fatalf("expected advance to B, got %+v", c)
	}
	if index != 0 || total != 1 {
		t.Errorf("expected index 0 of 1, got %d of %d", index, total)
	}
}

func TestApproveLastCandidateClosesSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("Only")})

	if err := f.svc.Approve(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if c, _, _ := f.svc.Current(); c != nil {
		t.Error("expected session to close after the last candidate")
	}
	if f.realtime.lastType() != domain.EventSidebarClosed {
		t.Errorf("expected sidebar.closed push, got %s", f.realtime.lastType())
	}
}

func TestRejectRecordsAndAdvances(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})

	if err := f.svc.Reject(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calendar.callCount() != 0 {
		t.Error("reject must not touch the calendar")
	}
	if a, r := f.dataset.counts(); a != 0 || r != 1 {
		t.Errorf("expected exactly 1 rejected entry, got %d approved / %d rejected", a, r)
	}
	if f.dataset.rejected[0].Status != domain.EventStatusRejected {
		t.Errorf("expected rejected status, got %s", f.dataset.rejected[0].Status)
	}

	c, _, _ := f.svc.Current()
	if c == nil || c.Title != "B" {
		t.Fatalf("expected advance to B, got %+v", c)
	}
}

func TestTerminalDecisionsAreExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})

	if err := f.svc.Approve(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.Reject(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// One entry per decided candidate, never both actions for one.
	if a, r := f.dataset.counts(); a != 1 || r != 1 {
		t.Errorf("expected 1 approved and 1 rejected, got %d / %d", a, r)
	}
}

func TestDecisionsWithoutSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.svc.Approve(ctx); err == nil {
		t.Error("expected conflict for approve without session")
	}
	if err := f.svc.Reject(ctx); err == nil {
		t.Error("expected conflict for reject without session")
	}
	if err := f.svc.Edit(ctx, candidate("X")); err == nil {
		t.Error("expected conflict for edit without session")
	}
}

func TestDuplicateApproveWhileLoading(t *testing.T) {
	f := newFixture()
	f.calendar.block = make(chan struct{})
	f.calendar.entered = make(chan struct{})
	entered := f.calendar.entered
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A")})

	done := make(chan error, 1)
	go func() { done <- f.svc.Approve(ctx) }()
	<-entered

	// Second submission while the first is in flight is a no-op.
	if err := f.svc.Approve(ctx); err != nil {
		t.Errorf("duplicate approve should return nil, got %v", err)
	}
	if err := f.svc.Reject(ctx); err != nil {
		t.Errorf("reject during loading should return nil, got %v", err)
	}

	close(f.calendar.block)
	if err := <-done; err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if f.calendar.callCount() != 1 {
		t.Errorf("expected exactly 1 calendar call, got %d", f.calendar.callCount())
	}
	if a, r := f.dataset.counts(); a != 1 || r != 0 {
		t.Errorf("expected exactly 1 approved entry, got %d / %d", a, r)
	}
}

func TestEditReplacesWithoutAdvancing(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A"), candidate("B")})

	edited := candidate("A (edited)")
	edited.Location = "Room 2"
	if err := f.svc.Edit(ctx, edited); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, index, total := f.svc.Current()
	if c == nil || c.Title != "A (edited)" || c.Location != "Room 2" {
		t.Fatalf("expected edited candidate in place, got %+v", c)
	}
	if c.Status != domain.EventStatusEdited {
		t.Errorf("expected edited status, got %s", c.Status)
	}
	if index != 0 || total != 2 {
		t.Errorf("edit must not advance, got index %d of %d", index, total)
	}
	if a, r := f.dataset.counts(); a != 0 || r != 0 {
		t.Error("edit must not persist anything")
	}
}

func TestEditPreservesCandidateID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	original := candidate("A")
	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{original})

	edited := &domain.EventCandidate{
		Title:         "A (edited)",
		StartDateTime: original.StartDateTime,
		EndDateTime:   original.EndDateTime,
	}
	if err := f.svc.Edit(ctx, edited); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _, _ := f.svc.Current()
	if c == nil {
		t.Fatal("expected an active candidate")
	}
	if c.ID != original.ID {
		t.Errorf("expected id %q preserved across edit, got %q", original.ID, c.ID)
	}
}

func TestAdvanceRemovesDuplicateKeys(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a1 := candidate("A")
	b := candidate("B")
	a2 := candidate("A") // same title, start, location -> same composite key
	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{a1, b, a2})

	if err := f.svc.Approve(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c, _, total := f.svc.Current()
	if c == nil || c.Title != "B" {
		t.Fatalf("expected only B to remain, got %+v", c)
	}
	if total != 1 {
		t.Errorf("expected both duplicates removed, got %d candidates", total)
	}
}

func TestCloseDiscardsSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.svc.Open(ctx, reviewEmail(), []*domain.EventCandidate{candidate("A")})
	f.svc.Close(ctx)

	if c, _, _ := f.svc.Current(); c != nil {
		t.Error("expected no session after close")
	}
	if f.realtime.lastType() != domain.EventSidebarClosed {
		t.Errorf("expected sidebar.closed push, got %s", f.realtime.lastType())
	}
	if a, r := f.dataset.counts(); a != 0 || r != 0 {
		t.Error("close must not record discarded candidates")
	}
}

package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"extractor_server/core/domain"
	"extractor_server/pkg/logger"
)

type memStore struct {
	mu     sync.Mutex
	items  map[string][]byte
	setErr error
	getErr error
}

func newMemStore() *memStore {
	return &memStore{items: make(map[string][]byte)}
}

func (m *memStore) GetItem(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	data, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (m *memStore) SetItem(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.items[key] = value
	return nil
}

func (m *memStore) RemoveItem(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *memStore) Ping(ctx context.Context) error { return nil }
func (m *memStore) Close() error                   { return nil }

func datasetEmail(subject string) *domain.EmailRecord {
	return &domain.EmailRecord{
		SenderName:  "Carol",
		SenderEmail: "carol@example.com",
		Subject:     subject,
		Body:        "body",
		DateTime:    "2024-04-01T10:00:00Z",
	}
}

func datasetCandidate(title string) *domain.EventCandidate {
	start := time.Date(2024, 4, 2, 14, 0, 0, 0, time.UTC)
	return &domain.EventCandidate{
		ID:            domain.NewCandidateID(),
		Title:         title,
		StartDateTime: start,
		EndDateTime:   start.Add(time.Hour),
		Status:        domain.EventStatusConfirmed,
	}
}

func TestRecorderSaveApprovedAndRejected(t *testing.T) {
	r := NewRecorder(newMemStore(), Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("approved one"), datasetCandidate("Standup"))
	r.SaveRejectedEvent(ctx, datasetEmail("rejected one"), datasetCandidate("Spam"))

	entries := r.GetAllEntries(nil)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	if entries[0].Action != domain.DatasetActionApproved {
		t.Errorf("expected first entry approved, got %s", entries[0].Action)
	}
	if len(entries[0].Events) != 1 {
		t.Errorf("expected approved entry to carry 1 event, got %d", len(entries[0].Events))
	}
	if entries[0].EmailSender != "Carol <carol@example.com>" {
		t.Errorf("unexpected sender: %q", entries[0].EmailSender)
	}

	if entries[1].Action != domain.DatasetActionRejected {
		t.Errorf("expected second entry rejected, got %s", entries[1].Action)
	}
	if len(entries[1].Events) != 0 {
		t.Errorf("expected rejected entry to carry no events, got %d", len(entries[1].Events))
	}
}

func TestRecorderFIFOTruncation(t *testing.T) {
	r := NewRecorder(newMemStore(), Config{MaxEntries: 3}, logger.Default())
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		r.SaveApprovedEvent(ctx, datasetEmail(fmt.Sprintf("email %d", i)), datasetCandidate("Event"))
	}

	entries := r.GetAllEntries(nil)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after truncation, got %d", len(entries))
	}
	// Oldest entry was dropped; the remaining three are the most recent.
	for i, want := range []string{"email 1", "email 2", "email 3"} {
		if entries[i].EmailSubject != want {
			t.Errorf("position %d: expected %q, got %q", i, want, entries[i].EmailSubject)
		}
	}
}

func TestRecorderGetStats(t *testing.T) {
	r := NewRecorder(newMemStore(), Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("a"), datasetCandidate("One"))
	r.SaveApprovedEvent(ctx, datasetEmail("b"), datasetCandidate("Two"))
	r.SaveRejectedEvent(ctx, datasetEmail("c"), datasetCandidate("Three"))

	stats := r.GetStats()
	if stats.TotalEntries != 3 {
		t.Errorf("expected 3 total, got %d", stats.TotalEntries)
	}
	if stats.ApprovedEntries != 2 {
		t.Errorf("expected 2 approved, got %d", stats.ApprovedEntries)
	}
	if stats.RejectedEntries != 1 {
		t.Errorf("expected 1 rejected, got %d", stats.RejectedEntries)
	}
	if stats.LastUpdated == "" {
		t.Error("expected lastUpdated to be set")
	}

	// Stats are a pure read, repeated calls agree.
	again := r.GetStats()
	if again != stats {
		t.Errorf("expected identical stats on repeat call, got %+v vs %+v", again, stats)
	}
}

func TestRecorderGetAllEntriesFilter(t *testing.T) {
	r := NewRecorder(newMemStore(), Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("a"), datasetCandidate("One"))
	r.SaveRejectedEvent(ctx, datasetEmail("b"), datasetCandidate("Two"))

	approved := r.GetAllEntries(&domain.DatasetFilter{Action: domain.DatasetActionApproved})
	if len(approved) != 1 || approved[0].EmailSubject != "a" {
		t.Errorf("expected only the approved entry, got %+v", approved)
	}

	future := r.GetAllEntries(&domain.DatasetFilter{FromDate: "2999-01-01T00:00:00Z"})
	if len(future) != 0 {
		t.Errorf("expected no entries after future date, got %d", len(future))
	}

	past := r.GetAllEntries(&domain.DatasetFilter{ToDate: "2000-01-01T00:00:00Z"})
	if len(past) != 0 {
		t.Errorf("expected no entries before past date, got %d", len(past))
	}
}

func TestRecorderExportToJSON(t *testing.T) {
	r := NewRecorder(newMemStore(), Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("a"), datasetCandidate("One"))
	r.SaveRejectedEvent(ctx, datasetEmail("b"), datasetCandidate("Two"))

	data, err := r.ExportToJSON()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var doc domain.DatasetExport
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if doc.Metadata.TotalEntries != 2 {
		t.Errorf("expected metadata total 2, got %d", doc.Metadata.TotalEntries)
	}
	if doc.Metadata.ApprovedEntries != 1 || doc.Metadata.RejectedEntries != 1 {
		t.Errorf("unexpected metadata counts: %+v", doc.Metadata)
	}
	if doc.Metadata.ExportDate == "" {
		t.Error("expected exportDate to be set")
	}
	if len(doc.Entries) != 2 {
		t.Errorf("expected 2 exported entries, got %d", len(doc.Entries))
	}
}

func TestRecorderSaveSurvivesPersistFailure(t *testing.T) {
	store := newMemStore()
	store.setErr = errors.New("store down")
	r := NewRecorder(store, Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("a"), datasetCandidate("One"))

	// The in-memory log still records the decision.
	if got := r.GetStats().TotalEntries; got != 1 {
		t.Errorf("expected 1 entry despite persist failure, got %d", got)
	}
}

func TestRecorderClearDataset(t *testing.T) {
	store := newMemStore()
	r := NewRecorder(store, Config{}, logger.Default())
	ctx := context.Background()

	r.SaveApprovedEvent(ctx, datasetEmail("a"), datasetCandidate("One"))
	if err := r.ClearDataset(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := r.GetStats().TotalEntries; got != 0 {
		t.Errorf("expected empty dataset, got %d entries", got)
	}

	store.setErr = errors.New("store down")
	if err := r.ClearDataset(ctx); err == nil {
		t.Error("expected clear to propagate persistence failure")
	}
}

func TestRecorderInitializeLoadsPersistedEntries(t *testing.T) {
	store := newMemStore()
	ctx := context.Background()

	first := NewRecorder(store, Config{}, logger.Default())
	first.SaveApprovedEvent(ctx, datasetEmail("persisted"), datasetCandidate("One"))

	second := NewRecorder(store, Config{}, logger.Default())
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := second.GetAllEntries(nil)
	if len(entries) != 1 || entries[0].EmailSubject != "persisted" {
		t.Errorf("expected the persisted entry to load, got %+v", entries)
	}
}

func TestRecorderInitializeCorruptDocument(t *testing.T) {
	store := newMemStore()
	store.items["mail-event-extractor-dataset"] = []byte("{not json")

	r := NewRecorder(store, Config{}, logger.Default())
	if err := r.Initialize(context.Background()); err != nil {
		t.Fatalf("corrupt document should not be an error, got %v", err)
	}
	if got := r.GetStats().TotalEntries; got != 0 {
		t.Errorf("expected empty dataset after corrupt load, got %d", got)
	}
}

func TestRecorderInitializeStoreError(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("store down")

	r := NewRecorder(store, Config{}, logger.Default())
	if err := r.Initialize(context.Background()); err == nil {
		t.Error("expected store failure to propagate")
	}
}

package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"extractor_server/core/domain"
	"extractor_server/core/port/in"
	"extractor_server/core/port/out"
	"extractor_server/pkg/apperr"
	"extractor_server/pkg/logger"
)

// Config bounds the recorder.
type Config struct {
	MaxEntries int
	StorageKey string
}

// persistedDataset is the document written to the KV store on every save.
// The whole collection is read-modify-written; there are no partial updates.
type persistedDataset struct {
	Entries   []domain.DatasetEntry `json:"entries"`
	LastSaved string                `json:"last_saved"`
}

// Recorder collects approve/reject decisions into a bounded FIFO log and
// persists the full collection after each mutation. One mutex covers every
// read and write so stats and entries are mutually consistent.
type Recorder struct {
	mu      sync.Mutex
	entries []domain.DatasetEntry
	store   out.KVStore
	cfg     Config
	log     *logger.Logger
}

func NewRecorder(store out.KVStore, cfg Config, log *logger.Logger) *Recorder {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 1000
	}
	if cfg.StorageKey == "" {
		cfg.StorageKey = "mail-event-extractor-dataset"
	}
	return &Recorder{
		store: store,
		cfg:   cfg,
		log:   log.WithField("service", "dataset"),
	}
}

// Initialize loads previously persisted entries. A corrupt or missing
// document starts the recorder empty; that is not an error.
func (r *Recorder) Initialize(ctx context.Context) error {
	data, err := r.store.GetItem(ctx, r.cfg.StorageKey)
	if err != nil {
		return apperr.StorageError("load dataset", err)
	}
	if data == nil {
		return nil
	}

	var doc persistedDataset
	if err := json.Unmarshal(data, &doc); err != nil {
		r.log.WithError(err).Warn("persisted dataset is corrupt, starting empty")
		return nil
	}

	r.mu.Lock()
	r.entries = doc.Entries
	r.mu.Unlock()

	r.log.Info("loaded %d dataset entries", len(doc.Entries))
	return nil
}

// SaveApprovedEvent appends an approved entry carrying the event snapshot.
func (r *Recorder) SaveApprovedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate) {
	entry := newEntry(email, []domain.DatasetEvent{domain.NewDatasetEvent(candidate)}, domain.DatasetActionApproved)
	r.append(ctx, entry)
}

// SaveRejectedEvent appends a rejected entry with an empty event list.
func (r *Recorder) SaveRejectedEvent(ctx context.Context, email *domain.EmailRecord, candidate *domain.EventCandidate) {
	entry := newEntry(email, []domain.DatasetEvent{}, domain.DatasetActionRejected)
	r.append(ctx, entry)
}

// append adds the entry, enforces FIFO truncation, and persists the whole
// collection. Persistence failure is logged, not surfaced: the in-memory
// state is still truthful and dataset capture must never block the review
// flow.
func (r *Recorder) append(ctx context.Context, entry domain.DatasetEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry)
	if len(r.entries) > r.cfg.MaxEntries {
		r.entries = r.entries[len(r.entries)-r.cfg.MaxEntries:]
	}

	if err := r.persistLocked(ctx); err != nil {
		r.log.WithError(err).Error("failed to persist dataset entry")
	}
}

func (r *Recorder) persistLocked(ctx context.Context) error {
	doc := persistedDataset{
		Entries:   r.entries,
		LastSaved: time.Now().UTC().Format(time.RFC3339),
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return r.store.SetItem(ctx, r.cfg.StorageKey, data)
}

// GetStats computes counts and the last entry timestamp.
func (r *Recorder) GetStats() domain.DatasetStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statsLocked()
}

func (r *Recorder) statsLocked() domain.DatasetStats {
	approved := 0
	rejected := 0
	for _, e := range r.entries {
		switch e.Action {
		case domain.DatasetActionApproved:
			approved++
		case domain.DatasetActionRejected:
			rejected++
		}
	}

	lastUpdated := time.Now().UTC().Format(time.RFC3339)
	if len(r.entries) > 0 {
		lastUpdated = r.entries[len(r.entries)-1].Timestamp
	}

	return domain.DatasetStats{
		TotalEntries:    len(r.entries),
		ApprovedEntries: approved,
		RejectedEntries: rejected,
		LastUpdated:     lastUpdated,
	}
}

// GetAllEntries returns a copy of the entries passing the filter.
func (r *Recorder) GetAllEntries(filter *domain.DatasetFilter) []domain.DatasetEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	result := make([]domain.DatasetEntry, 0, len(r.entries))
	for i := range r.entries {
		if filter.Matches(&r.entries[i]) {
			result = append(result, r.entries[i])
		}
	}
	return result
}

// ExportToJSON renders the export document with metadata.
func (r *Recorder) ExportToJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats := r.statsLocked()
	doc := domain.DatasetExport{
		Metadata: domain.DatasetExportMetadata{
			ExportDate:      time.Now().UTC().Format(time.RFC3339),
			TotalEntries:    stats.TotalEntries,
			ApprovedEntries: stats.ApprovedEntries,
			RejectedEntries: stats.RejectedEntries,
			LastUpdated:     stats.LastUpdated,
		},
		Entries: append([]domain.DatasetEntry(nil), r.entries...),
	}
	return json.MarshalIndent(doc, "", "  ")
}

// ClearDataset drops all entries and persists the empty collection. Unlike
// saves, a persistence failure here propagates: silently keeping stored
// entries would misrepresent cleared state.
func (r *Recorder) ClearDataset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = nil
	if err := r.persistLocked(ctx); err != nil {
		return apperr.StorageError("clear dataset", err)
	}

	r.log.Info("dataset cleared")
	return nil
}

func newEntry(email *domain.EmailRecord, events []domain.DatasetEvent, action domain.DatasetAction) domain.DatasetEntry {
	return domain.DatasetEntry{
		EmailSubject: email.Subject,
		EmailBody:    email.Body,
		EmailSender:  email.Sender(),
		EmailDate:    email.DateTime,
		Events:       events,
		Action:       action,
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
	}
}

var _ in.DatasetService = (*Recorder)(nil)

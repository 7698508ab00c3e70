package domain

import "time"

// DatasetAction is the terminal decision recorded for a dataset entry.
type DatasetAction string

const (
	DatasetActionApproved DatasetAction = "approved"
	DatasetActionRejected DatasetAction = "rejected"
)

// DatasetEvent is an event snapshot serialized with string-encoded instants
// so the persisted dataset round-trips through any JSON store unchanged.
type DatasetEvent struct {
	Title         string `json:"title"`
	Description   string `json:"description"`
	StartDateTime string `json:"startDateTime"`
	EndDateTime   string `json:"endDateTime"`
	Location      string `json:"location"`
	Status        string `json:"status,omitempty"`
	MailLink      string `json:"mailLink,omitempty"`
}

// NewDatasetEvent converts a candidate into its serializable dataset form.
func NewDatasetEvent(c *EventCandidate) DatasetEvent {
	return DatasetEvent{
		Title:         c.Title,
		Description:   c.Description,
		StartDateTime: c.StartDateTime.Format(time.RFC3339),
		EndDateTime:   c.EndDateTime.Format(time.RFC3339),
		Location:      c.Location,
		Status:        string(c.Status),
		MailLink:      c.MailLink,
	}
}

// DatasetEntry records one accept/reject decision together with the source
// email. Rejected entries carry an empty event list.
type DatasetEntry struct {
	EmailSubject string         `json:"emailSubject"`
	EmailBody    string         `json:"emailBody"`
	EmailSender  string         `json:"emailSender"`
	EmailDate    string         `json:"emailDate"`
	Events       []DatasetEvent `json:"events"`
	Action       DatasetAction  `json:"action"`
	Timestamp    string         `json:"timestamp"`
}

// DatasetStats summarizes the current dataset contents.
type DatasetStats struct {
	TotalEntries    int    `json:"totalEntries"`
	ApprovedEntries int    `json:"approvedEntries"`
	RejectedEntries int    `json:"rejectedEntries"`
	LastUpdated     string `json:"lastUpdated"`
}

// DatasetFilter narrows GetAllEntries results. Date bounds are inclusive
// string comparisons against the entry's ISO timestamp.
type DatasetFilter struct {
	Action   DatasetAction `json:"action,omitempty"`
	FromDate string        `json:"from_date,omitempty"`
	ToDate   string        `json:"to_date,omitempty"`
}

// Matches reports whether an entry passes the filter.
func (f *DatasetFilter) Matches(entry *DatasetEntry) bool {
	if f == nil {
		return true
	}
	if f.Action != "" && entry.Action != f.Action {
		return false
	}
	if f.FromDate != "" && entry.Timestamp < f.FromDate {
		return false
	}
	if f.ToDate != "" && entry.Timestamp > f.ToDate {
		return false
	}
	return true
}

// DatasetExportMetadata describes an exported dataset document.
type DatasetExportMetadata struct {
	ExportDate      string `json:"exportDate"`
	TotalEntries    int    `json:"totalEntries"`
	ApprovedEntries int    `json:"approvedEntries"`
	RejectedEntries int    `json:"rejectedEntries"`
	LastUpdated     string `json:"lastUpdated"`
}

// DatasetExport is the full export document.
type DatasetExport struct {
	Metadata DatasetExportMetadata `json:"metadata"`
	Entries  []DatasetEntry        `json:"entries"`
}

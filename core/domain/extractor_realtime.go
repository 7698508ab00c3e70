package domain

import "time"

// RealtimeEvent is pushed to the extension over SSE.
type RealtimeEvent struct {
	Type      EventType   `json:"type"`
	Seq       int64       `json:"seq"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

type EventType string

const (
	// Sidebar events
	EventSidebarRender EventType = "sidebar.render"
	EventSidebarClosed EventType = "sidebar.closed"

	// Toast notifications
	EventNotification EventType = "notification"
)

// NotificationLevel classifies a toast notification.
type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

// SidebarState is the render payload for EventSidebarRender.
type SidebarState struct {
	Email     *EmailRecord    `json:"email"`
	Candidate *EventCandidate `json:"candidate"`
	Index     int             `json:"index"`
	Total     int             `json:"total"`
}

// Notification is the payload for EventNotification.
type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

package out

import (
	"context"

	"extractor_server/core/domain"
)

// RealtimePort pushes events to connected extension clients.
type RealtimePort interface {
	Push(ctx context.Context, event *domain.RealtimeEvent) error
}

// NotifierPort delivers fire-and-forget toast notifications.
type NotifierPort interface {
	ShowNotification(ctx context.Context, level domain.NotificationLevel, message string)
}

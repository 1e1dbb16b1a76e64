package publisher

import "time"

// NotificationEvent is fanned out to realtime delivery after a notification
// row is stored.
type NotificationEvent struct {
	NotificationID    string    `json:"notification_id"`
	UserID            string    `json:"user_id"`
	Type              string    `json:"type"`
	Title             string    `json:"title"`
	Content           string    `json:"content"`
	Priority          string    `json:"priority"`
	RelatedEntityType string    `json:"related_entity_type,omitempty"`
	RelatedEntityID   string    `json:"related_entity_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

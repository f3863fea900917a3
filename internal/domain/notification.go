package domain

import "time"

// NotificationType enumerates in-app notification categories.
type NotificationType string

const (
	NotificationSlaAtRisk   NotificationType = "SLA_AT_RISK"
	NotificationSlaBreached NotificationType = "SLA_BREACHED"
)

// Notification is an in-app notification row addressed to an agent.
type Notification struct {
	ID          string
	RecipientID string
	Type        NotificationType
	Title       string
	Description string
	Link        string
	Metadata    map[string]any
	ReadAt      *time.Time
	CreatedAt   time.Time
}

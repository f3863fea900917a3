package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// SlaTargetPayload carries one priority's targets in minutes.
type SlaTargetPayload struct {
	ResponseMinutes   int `json:"response_minutes"`
	ResolutionMinutes int `json:"resolution_minutes"`
}

// SlaPolicyPayload is the wire form of an organization SLA policy.
type SlaPolicyPayload map[domain.TicketPriority]SlaTargetPayload

// ToDomain converts the payload.
func (p SlaPolicyPayload) ToDomain() domain.SlaPolicy {
	policy := make(domain.SlaPolicy, len(p))
	for priority, target := range p {
		policy[priority] = domain.SlaTarget{
			ResponseMinutes:   target.ResponseMinutes,
			ResolutionMinutes: target.ResolutionMinutes,
		}
	}
	return policy
}

// NewSlaPolicyPayload maps a domain policy.
func NewSlaPolicyPayload(policy domain.SlaPolicy) SlaPolicyPayload {
	payload := make(SlaPolicyPayload, len(policy))
	for priority, target := range policy {
		payload[priority] = SlaTargetPayload{
			ResponseMinutes:   target.ResponseMinutes,
			ResolutionMinutes: target.ResolutionMinutes,
		}
	}
	return payload
}

// ScanResponse summarizes one breach scan trigger.
type ScanResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	Scanned  int      `json:"scanned"`
	Notified []string `json:"notified"`
	Skipped  int      `json:"skipped"`
}

// NotificationResponse is the wire form of an in-app notification.
type NotificationResponse struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Link        string         `json:"link"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	ReadAt      *time.Time     `json:"read_at"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewNotificationResponse maps a domain notification.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:          n.ID,
		Type:        string(n.Type),
		Title:       n.Title,
		Description: n.Description,
		Link:        n.Link,
		Metadata:    n.Metadata,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}

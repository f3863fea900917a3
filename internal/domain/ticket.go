package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusActive     TicketStatus = "ACTIVE"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusTerminated TicketStatus = "TERMINATED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Priorities lists every defined priority level.
func Priorities() []TicketPriority {
	return []TicketPriority{
		TicketPriorityLow,
		TicketPriorityMedium,
		TicketPriorityHigh,
		TicketPriorityUrgent,
	}
}

// ValidPriority reports whether p is one of the defined levels.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// Ticket is the aggregate for support requests.
//
// FirstResponseDue and ResolutionDue are computed once at creation from the
// owning organization's SLA policy and are never recomputed afterwards, even
// when priority changes.
type Ticket struct {
	ID               string
	ExternalKey      string
	OrgID            string
	RequesterID      string
	AssigneeID       *string
	Title            string
	Description      string
	Status           TicketStatus
	Priority         TicketPriority
	Tags             []string
	FirstResponseDue *time.Time
	ResolutionDue    *time.Time
	FirstRespondedAt *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	ClosedAt         *time.Time
}

// SLATracked reports whether the ticket's status keeps SLA clocks running.
// Tickets on hold or in a terminal state are SLA-exempt.
func (t *Ticket) SLATracked() bool {
	switch t.Status {
	case TicketStatusNew, TicketStatusActive, TicketStatusPending:
		return true
	}
	return false
}

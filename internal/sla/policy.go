package sla

import (
	"errors"
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

var (
	// ErrInvalidPriority is returned when a priority outside the four
	// defined levels reaches the resolver.
	ErrInvalidPriority = errors.New("invalid ticket priority")

	// ErrIncompletePolicy is returned when a policy carries no targets for
	// the requested priority. Callers may fall back to DefaultPolicy.
	ErrIncompletePolicy = errors.New("sla policy has no targets for priority")
)

// DueDates carries the absolute deadlines resolved for a ticket at creation.
type DueDates struct {
	FirstResponse time.Time
	Resolution    time.Time
}

// DefaultPolicy returns the system fallback targets used when an
// organization's policy is missing an entry for a priority.
func DefaultPolicy() domain.SlaPolicy {
	return domain.SlaPolicy{
		domain.TicketPriorityUrgent: {ResponseMinutes: 15, ResolutionMinutes: 4 * 60},
		domain.TicketPriorityHigh:   {ResponseMinutes: 60, ResolutionMinutes: 8 * 60},
		domain.TicketPriorityMedium: {ResponseMinutes: 4 * 60, ResolutionMinutes: 24 * 60},
		domain.TicketPriorityLow:    {ResponseMinutes: 8 * 60, ResolutionMinutes: 72 * 60},
	}
}

// ResolveDueDates computes absolute due timestamps for a ticket created at
// createdAt with the given priority under the given policy.
//
// Targets of zero or negative minutes are accepted: the resulting due dates
// equal or precede createdAt and the ticket starts out breached, which is the
// intended reading for "immediate" targets, not an error.
func ResolveDueDates(createdAt time.Time, priority domain.TicketPriority, policy domain.SlaPolicy) (DueDates, error) {
	if !domain.ValidPriority(priority) {
		return DueDates{}, fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
	}
	target, ok := policy[priority]
	if !ok {
		return DueDates{}, fmt.Errorf("%w: %q", ErrIncompletePolicy, priority)
	}
	return DueDates{
		FirstResponse: createdAt.Add(time.Duration(target.ResponseMinutes) * time.Minute),
		Resolution:    createdAt.Add(time.Duration(target.ResolutionMinutes) * time.Minute),
	}, nil
}

// ValidatePolicy checks that a policy defines targets for every priority
// level and that each resolution target is at least its response target.
func ValidatePolicy(policy domain.SlaPolicy) error {
	for _, priority := range domain.Priorities() {
		target, ok := policy[priority]
		if !ok {
			return fmt.Errorf("%w: %q", ErrIncompletePolicy, priority)
		}
		if target.ResolutionMinutes < target.ResponseMinutes {
			return fmt.Errorf("priority %q: resolution target %dm below response target %dm",
				priority, target.ResolutionMinutes, target.ResponseMinutes)
		}
	}
	for priority := range policy {
		if !domain.ValidPriority(priority) {
			return fmt.Errorf("%w: %q", ErrInvalidPriority, priority)
		}
	}
	return nil
}

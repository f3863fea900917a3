package sla

import (
	"fmt"
	"time"

	"github.com/spec-kit/helpdesk-sla/internal/domain"
)

// AtRiskWindow is how far ahead of a deadline a ticket is flagged at risk.
// The window is uniform across dimensions and priorities.
const AtRiskWindow = time.Hour

// Dimension identifies which SLA clock an evaluation refers to.
type Dimension string

const (
	DimensionResponse   Dimension = "RESPONSE"
	DimensionResolution Dimension = "RESOLUTION"
)

// Status classifies a ticket relative to one of its deadlines.
type Status string

const (
	StatusOnTrack  Status = "ON_TRACK"
	StatusAtRisk   Status = "AT_RISK"
	StatusBreached Status = "BREACHED"
)

// Evaluation is the derived SLA state for one dimension at one instant.
// It is computed fresh on every call and never persisted.
type Evaluation struct {
	Dimension        Dimension
	SecondsRemaining int64
	Status           Status
}

// TicketEvaluation holds both dimensions for a ticket. A nil entry means the
// dimension is not applicable (SLA-exempt status, missing due timestamp, or a
// first response already recorded).
type TicketEvaluation struct {
	Response   *Evaluation
	Resolution *Evaluation
}

// Evaluate classifies a single deadline against now.
//
// SecondsRemaining is dueAt-now in whole seconds, truncated toward zero;
// negative means overdue. The at-risk window is inclusive on both ends:
// exactly one hour remaining is already AT_RISK and exactly zero remaining
// is still AT_RISK, only a passed deadline is BREACHED.
func Evaluate(dimension Dimension, dueAt, now time.Time) Evaluation {
	remaining := int64(dueAt.Sub(now) / time.Second)

	status := StatusOnTrack
	switch {
	case remaining < 0:
		status = StatusBreached
	case remaining <= int64(AtRiskWindow/time.Second):
		status = StatusAtRisk
	}

	return Evaluation{
		Dimension:        dimension,
		SecondsRemaining: remaining,
		Status:           status,
	}
}

// EvaluateTicket evaluates both dimensions of a ticket at now.
//
// Tickets outside {NEW, ACTIVE, PENDING} are SLA-exempt and evaluate to
// not-applicable on both dimensions. The response dimension also becomes
// not-applicable once a first response has been recorded.
func EvaluateTicket(t *domain.Ticket, now time.Time) TicketEvaluation {
	var result TicketEvaluation
	if t == nil || !t.SLATracked() {
		return result
	}

	if t.FirstResponseDue != nil && t.FirstRespondedAt == nil {
		eval := Evaluate(DimensionResponse, *t.FirstResponseDue, now)
		result.Response = &eval
	}
	if t.ResolutionDue != nil {
		eval := Evaluate(DimensionResolution, *t.ResolutionDue, now)
		result.Resolution = &eval
	}
	return result
}

// FormatRemaining renders the absolute value of a remaining-seconds count as
// "Dd HH:MM:SS" when at least a day is left, otherwise "HH:MM:SS". The sign
// is carried by the evaluation status, not the formatted string.
func FormatRemaining(seconds int64) string {
	if seconds < 0 {
		seconds = -seconds
	}
	days := seconds / 86400
	seconds -= days * 86400
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60

	if days > 0 {
		return fmt.Sprintf("%dd %02d:%02d:%02d", days, hours, minutes, secs)
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}

package domain

import "time"

// Email template keys recognized by the breach scan.
const (
	TemplateSlaAtRisk   = "slaAtRisk"
	TemplateSlaBreached = "slaBreached"
)

// SlaTarget holds the response/resolution targets for one priority level,
// both expressed in minutes.
type SlaTarget struct {
	ResponseMinutes   int `json:"response_minutes"`
	ResolutionMinutes int `json:"resolution_minutes"`
}

// SlaPolicy maps each priority level to its targets. Stored per organization.
type SlaPolicy map[TicketPriority]SlaTarget

// Organization owns tickets, agents and the SLA policy applied at intake.
type Organization struct {
	ID             string
	Name           string
	SlaPolicy      SlaPolicy
	EmailTemplates map[string]string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// EmailTemplate returns the configured template for the given key.
func (o *Organization) EmailTemplate(key string) (string, bool) {
	if o.EmailTemplates == nil {
		return "", false
	}
	tpl, ok := o.EmailTemplates[key]
	return tpl, ok
}

package domain

import "time"

// AgentRole enumerates internal operator roles.
type AgentRole string

const (
	AgentRoleAgent AgentRole = "AGENT"
	AgentRoleAdmin AgentRole = "ADMIN"
)

// Agent models a support agent or administrator within an organization.
type Agent struct {
	ID        string
	OrgID     string
	Name      string
	Email     string
	Role      AgentRole
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

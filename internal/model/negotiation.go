package model

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a negotiation.
type Status string

const (
	StatusActive    Status = "active"
	StatusCountered Status = "countered"
	StatusAccepted  Status = "accepted"
	StatusDeclined  Status = "declined"
	StatusError     Status = "error"
)

// Terminal reports whether the negotiation can no longer progress.
// StatusError is deliberately not terminal: a retried continue-call after a
// generation failure still moves the negotiation forward.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// Conversation role constants.
const (
	RoleManager = "manager"
	RoleTenant  = "tenant"
)

// Message is one entry in a negotiation's conversation history.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// History is the ordered, append-only conversation log. It is persisted as
// a single JSONB document alongside the negotiation row.
type History []Message

// Negotiation is one rent-renewal negotiation for a (tenant, property)
// pair. The tenant email is the lookup key; when duplicates exist, the most
// recently updated row wins.
type Negotiation struct {
	ID          int64
	TenantName  string
	TenantEmail string

	Address string
	City    string
	State   string
	Zipcode string

	// CurrentRent is the pre-negotiation rent and the absolute floor offer.
	CurrentRent int
	// InitialTargetRent is the market estimate taken once at start; it
	// never changes afterwards.
	InitialTargetRent int
	// CurrentTargetRent is the manager's live position. It starts at
	// InitialTargetRent and only ever moves down, never below CurrentRent.
	CurrentTargetRent int

	Status  Status
	History History

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Append adds a message to the history. History is append-only; there is no
// way to edit or remove an entry.
func (n *Negotiation) Append(role, content string, at time.Time) {
	n.History = append(n.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: at,
	})
}

// FullAddress renders the property address in postal form.
func (n *Negotiation) FullAddress() string {
	return fmt.Sprintf("%s, %s, %s %s", n.Address, n.City, n.State, n.Zipcode)
}

package store

import (
	"context"
	"errors"

	"leaseline.app/leaseline/internal/model"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// NegotiationStore defines the contract for negotiation data access. The
// engine and service layers only ever see this interface, so tests can run
// against an in-memory fake.
type NegotiationStore interface {
	Create(ctx context.Context, neg *model.Negotiation) error
	// GetLatestByEmail returns the live negotiation for a tenant: the most
	// recently updated row for that email.
	GetLatestByEmail(ctx context.Context, email string) (*model.Negotiation, error)
	// Save persists position, status, and history for an existing row.
	Save(ctx context.Context, neg *model.Negotiation) error
}

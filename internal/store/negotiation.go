package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"leaseline.app/leaseline/core/db"
	"leaseline.app/leaseline/internal/model"
)

type negotiationStore struct {
	q db.Querier
}

func newNegotiationStore(q db.Querier) NegotiationStore {
	return &negotiationStore{q: q}
}

func (s *negotiationStore) Create(ctx context.Context, neg *model.Negotiation) error {
	history, err := json.Marshal(neg.History)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		INSERT INTO negotiations
			(id, tenant_name, tenant_email, address, city, state, zipcode,
			 current_rent, initial_target_rent, current_target_rent, status, history)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`,
		neg.ID, neg.TenantName, neg.TenantEmail,
		neg.Address, neg.City, neg.State, neg.Zipcode,
		neg.CurrentRent, neg.InitialTargetRent, neg.CurrentTargetRent,
		string(neg.Status), history,
	)
	if err := row.Scan(&neg.CreatedAt, &neg.UpdatedAt); err != nil {
		return fmt.Errorf("inserting negotiation: %w", err)
	}
	return nil
}

func (s *negotiationStore) GetLatestByEmail(ctx context.Context, email string) (*model.Negotiation, error) {
	row := s.q.QueryRow(ctx, `
		SELECT id, tenant_name, tenant_email, address, city, state, zipcode,
		       current_rent, initial_target_rent, current_target_rent,
		       status, history, created_at, updated_at
		FROM negotiations
		WHERE tenant_email = $1
		ORDER BY updated_at DESC
		LIMIT 1`,
		email,
	)
	return scanNegotiation(row)
}

func (s *negotiationStore) Save(ctx context.Context, neg *model.Negotiation) error {
	history, err := json.Marshal(neg.History)
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	row := s.q.QueryRow(ctx, `
		UPDATE negotiations
		SET current_target_rent = $2, status = $3, history = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`,
		neg.ID, neg.CurrentTargetRent, string(neg.Status), history,
	)
	var updatedAt time.Time
	if err := row.Scan(&updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("updating negotiation: %w", err)
	}
	neg.UpdatedAt = updatedAt
	return nil
}

func scanNegotiation(row pgx.Row) (*model.Negotiation, error) {
	var (
		neg     model.Negotiation
		status  string
		history []byte
	)
	err := row.Scan(
		&neg.ID, &neg.TenantName, &neg.TenantEmail,
		&neg.Address, &neg.City, &neg.State, &neg.Zipcode,
		&neg.CurrentRent, &neg.InitialTargetRent, &neg.CurrentTargetRent,
		&status, &history, &neg.CreatedAt, &neg.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	neg.Status = model.Status(status)
	if len(history) > 0 {
		if err := json.Unmarshal(history, &neg.History); err != nil {
			return nil, fmt.Errorf("decoding history: %w", err)
		}
	}
	return &neg, nil
}

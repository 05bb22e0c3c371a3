package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"leaseline.app/leaseline/common/id"
	"leaseline.app/leaseline/common/logger"
	"leaseline.app/leaseline/internal/engine"
	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/lock"
	"leaseline.app/leaseline/internal/model"
	"leaseline.app/leaseline/internal/store"
)

// ErrValidation marks caller mistakes: missing identity fields are reported,
// never silently defaulted.
var ErrValidation = errors.New("validation")

// ErrNegotiationClosed is returned for continue-calls on a negotiation that
// already reached a terminal status.
var ErrNegotiationClosed = errors.New("negotiation already closed")

type StartParams struct {
	TenantName  string
	TenantEmail string
	Address     string
	City        string
	State       string
	Zipcode     string
	CurrentRent int
	// TargetRent is optional; when absent the estimator supplies it.
	TargetRent *int
}

type StartResult struct {
	Letter     string
	TargetRent int
	// Estimate is set when the target came from the estimator.
	Estimate *estimator.Estimate
}

type ContinueResult struct {
	Letter          string
	Status          model.Status
	AgreedRent      *int
	ManagementOffer *int
	TenantOffer     *int
	Reasoning       string
}

type NegotiationService interface {
	Start(ctx context.Context, params StartParams) (*StartResult, error)
	Continue(ctx context.Context, tenantEmail, message string) (*ContinueResult, error)
	// Context returns the full negotiation record with ordered history.
	// Read-only: calling it never mutates the record.
	Context(ctx context.Context, tenantEmail string) (*model.Negotiation, error)
	EstimateRent(ctx context.Context, req estimator.Request) (estimator.Estimate, error)
}

type negotiationService struct {
	negStore  store.NegotiationStore
	engine    *engine.Engine
	estimator estimator.Estimator
	locker    lock.TenantLocker
	now       func() time.Time
}

func NewNegotiationService(
	negStore store.NegotiationStore,
	eng *engine.Engine,
	est estimator.Estimator,
	locker lock.TenantLocker,
) NegotiationService {
	return &negotiationService{
		negStore:  negStore,
		engine:    eng,
		estimator: est,
		locker:    locker,
		now:       time.Now,
	}
}

func (s *negotiationService) Start(ctx context.Context, params StartParams) (*StartResult, error) {
	if params.TenantEmail == "" {
		return nil, fmt.Errorf("%w: tenant_email is required", ErrValidation)
	}
	if params.CurrentRent <= 0 {
		return nil, fmt.Errorf("%w: current_rent is required and must be positive", ErrValidation)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TenantEmail: logger.Ptr(params.TenantEmail),
		Component:   "leaseline.negotiation",
	})

	var (
		target   int
		estimate *estimator.Estimate
	)
	if params.TargetRent != nil && *params.TargetRent > 0 {
		target = *params.TargetRent
		slog.InfoContext(ctx, "using provided target rent", "target_rent", target)
	} else {
		est := s.estimator.Estimate(ctx, estimator.Request{
			Address:     params.Address,
			City:        params.City,
			State:       params.State,
			Zipcode:     params.Zipcode,
			CurrentRent: params.CurrentRent,
		})
		target = est.Amount
		estimate = &est
		slog.InfoContext(ctx, "estimated target rent",
			"target_rent", target, "source", est.Source, "confidence", est.Confidence)
	}

	// The position must start at or above the floor. A soft market (or a
	// caller-provided figure below the current rent) opens at the current
	// rent rather than creating a record the engine could only move up from.
	if target < params.CurrentRent {
		slog.InfoContext(ctx, "target below current rent, opening at current rent",
			"target_rent", target, "current_rent", params.CurrentRent)
		target = params.CurrentRent
	}

	tenantName := params.TenantName
	if tenantName == "" {
		tenantName = "Tenant"
	}

	neg := &model.Negotiation{
		ID:                id.New(),
		TenantName:        tenantName,
		TenantEmail:       params.TenantEmail,
		Address:           params.Address,
		City:              params.City,
		State:             params.State,
		Zipcode:           params.Zipcode,
		CurrentRent:       params.CurrentRent,
		InitialTargetRent: target,
		CurrentTargetRent: target,
		Status:            model.StatusActive,
	}

	// The opening letter is a deterministic template; it cannot fail, so
	// the record is created in one step with the letter already on file and
	// the status advanced past active.
	letter := s.engine.OpeningLetter(neg)
	neg.Append(model.RoleManager, letter, s.now().UTC())
	neg.Status = model.StatusCountered

	if err := s.negStore.Create(ctx, neg); err != nil {
		slog.ErrorContext(ctx, "failed to create negotiation", "error", err)
		return nil, fmt.Errorf("creating negotiation: %w", err)
	}

	slog.InfoContext(ctx, "negotiation started",
		"negotiation_id", neg.ID, "current_rent", neg.CurrentRent, "target_rent", target)

	return &StartResult{Letter: letter, TargetRent: target, Estimate: estimate}, nil
}

func (s *negotiationService) Continue(ctx context.Context, tenantEmail, message string) (*ContinueResult, error) {
	if tenantEmail == "" {
		return nil, fmt.Errorf("%w: tenant_email is required", ErrValidation)
	}
	if message == "" {
		return nil, fmt.Errorf("%w: tenant_message is required", ErrValidation)
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TenantEmail: logger.Ptr(tenantEmail),
		Component:   "leaseline.negotiation",
	})

	// Per-tenant critical section: the whole read-modify-write happens
	// under the lock so concurrent messages cannot lose updates.
	release, err := s.locker.Acquire(ctx, tenantEmail)
	if err != nil {
		return nil, fmt.Errorf("serializing negotiation update: %w", err)
	}
	defer release()

	neg, err := s.negStore.GetLatestByEmail(ctx, tenantEmail)
	if err != nil {
		return nil, err
	}

	ctx = logger.WithLogFields(ctx, logger.LogFields{
		NegotiationID: logger.Ptr(neg.ID),
		Status:        logger.Ptr(string(neg.Status)),
	})

	if neg.Status.Terminal() {
		return nil, fmt.Errorf("%w: status is %s", ErrNegotiationClosed, neg.Status)
	}

	// The tenant message joins the history before analysis so the decision
	// call always sees it in context.
	neg.Append(model.RoleTenant, message, s.now().UTC())

	analysis := s.engine.Analyze(ctx, neg)
	slog.InfoContext(ctx, "message analyzed",
		"message_preview", logger.Truncate(message, 80),
		"intent", analysis.TenantIntent,
		"should_accept", analysis.ShouldAccept,
		"tenant_offer", intOrNil(analysis.TenantOffer),
		"recommended_counter", intOrNil(analysis.RecommendedCounter),
	)

	letter, err := s.engine.RenderLetter(ctx, neg, analysis)
	if err != nil {
		// Rendering failure: the tenant message is kept, the status records
		// the failure, and the position stays untouched so a retry can
		// still progress the negotiation.
		slog.ErrorContext(ctx, "letter rendering failed", "error", err)
		neg.Status = model.StatusError
		if saveErr := s.negStore.Save(ctx, neg); saveErr != nil {
			slog.ErrorContext(ctx, "failed to record error status", "error", saveErr)
		}
		return nil, fmt.Errorf("generating letter: %w", err)
	}

	neg.Append(model.RoleManager, letter, s.now().UTC())
	transition := s.engine.Apply(neg, analysis)

	if err := s.negStore.Save(ctx, neg); err != nil {
		slog.ErrorContext(ctx, "failed to save negotiation", "error", err)
		return nil, fmt.Errorf("saving negotiation: %w", err)
	}

	slog.InfoContext(ctx, "negotiation advanced",
		"status", transition.Status, "position", neg.CurrentTargetRent)

	return &ContinueResult{
		Letter:          letter,
		Status:          transition.Status,
		AgreedRent:      transition.AgreedRent,
		ManagementOffer: transition.ManagementOffer,
		TenantOffer:     analysis.TenantOffer,
		Reasoning:       analysis.Reasoning,
	}, nil
}

func (s *negotiationService) Context(ctx context.Context, tenantEmail string) (*model.Negotiation, error) {
	if tenantEmail == "" {
		return nil, fmt.Errorf("%w: tenant_email is required", ErrValidation)
	}
	return s.negStore.GetLatestByEmail(ctx, tenantEmail)
}

func (s *negotiationService) EstimateRent(ctx context.Context, req estimator.Request) (estimator.Estimate, error) {
	if req.CurrentRent <= 0 {
		return estimator.Estimate{}, fmt.Errorf("%w: current_rent is required and must be positive", ErrValidation)
	}
	return s.estimator.Estimate(ctx, req), nil
}

func intOrNil(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

package handler_test

import (
	"context"

	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/model"
	"leaseline.app/leaseline/internal/service"
)

type mockNegotiationService struct {
	startFn        func(ctx context.Context, params service.StartParams) (*service.StartResult, error)
	continueFn     func(ctx context.Context, tenantEmail, message string) (*service.ContinueResult, error)
	contextFn      func(ctx context.Context, tenantEmail string) (*model.Negotiation, error)
	estimateRentFn func(ctx context.Context, req estimator.Request) (estimator.Estimate, error)
}

func (m *mockNegotiationService) Start(ctx context.Context, params service.StartParams) (*service.StartResult, error) {
	if m.startFn != nil {
		return m.startFn(ctx, params)
	}
	return &service.StartResult{}, nil
}

func (m *mockNegotiationService) Continue(ctx context.Context, tenantEmail, message string) (*service.ContinueResult, error) {
	if m.continueFn != nil {
		return m.continueFn(ctx, tenantEmail, message)
	}
	return &service.ContinueResult{}, nil
}

func (m *mockNegotiationService) Context(ctx context.Context, tenantEmail string) (*model.Negotiation, error) {
	if m.contextFn != nil {
		return m.contextFn(ctx, tenantEmail)
	}
	return &model.Negotiation{}, nil
}

func (m *mockNegotiationService) EstimateRent(ctx context.Context, req estimator.Request) (estimator.Estimate, error) {
	if m.estimateRentFn != nil {
		return m.estimateRentFn(ctx, req)
	}
	return estimator.Estimate{}, nil
}

package service_test

import (
	"context"

	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/model"
)

type mockNegotiationStore struct {
	createFn           func(ctx context.Context, neg *model.Negotiation) error
	getLatestByEmailFn func(ctx context.Context, email string) (*model.Negotiation, error)
	saveFn             func(ctx context.Context, neg *model.Negotiation) error
	createCalls        int
	saveCalls          int
}

func (m *mockNegotiationStore) Create(ctx context.Context, neg *model.Negotiation) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, neg)
	}
	return nil
}

func (m *mockNegotiationStore) GetLatestByEmail(ctx context.Context, email string) (*model.Negotiation, error) {
	if m.getLatestByEmailFn != nil {
		return m.getLatestByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockNegotiationStore) Save(ctx context.Context, neg *model.Negotiation) error {
	m.saveCalls++
	if m.saveFn != nil {
		return m.saveFn(ctx, neg)
	}
	return nil
}

type stubEstimator struct {
	estimate estimator.Estimate
}

func (s *stubEstimator) Estimate(_ context.Context, _ estimator.Request) estimator.Estimate {
	return s.estimate
}

type mockLLM struct {
	chatFn     func(ctx context.Context, req llm.Request, result any) (*llm.Response, error)
	completeFn func(ctx context.Context, req llm.TextRequest) (string, error)
}

func (m *mockLLM) Chat(ctx context.Context, req llm.Request, result any) (*llm.Response, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, req, result)
	}
	return &llm.Response{}, nil
}

func (m *mockLLM) Complete(ctx context.Context, req llm.TextRequest) (string, error) {
	if m.completeFn != nil {
		return m.completeFn(ctx, req)
	}
	return "letter body", nil
}

func (m *mockLLM) Model() string { return "mock" }

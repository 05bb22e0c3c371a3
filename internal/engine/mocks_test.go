package engine_test

import (
	"context"

	"leaseline.app/leaseline/common/llm"
)

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
	return "ok", nil
}

func (m *mockLLM) Model() string {
	return "mock"
}

// Package engine holds the negotiation decision logic: classifying an
// inbound tenant message, deciding acceptance or a counteroffer, rendering
// the outbound letter, and applying the resulting state transition.
//
// The engine is pure with respect to storage. It reads a negotiation
// snapshot and returns decisions; persistence ordering is the service
// layer's job.
package engine

import (
	"time"

	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/core/config"
	"leaseline.app/leaseline/internal/model"
)

type Engine struct {
	analysis llm.Client
	letters  llm.Client
	cfg      config.EngineConfig
	now      func() time.Time
}

// New builds an Engine. The two clients keep the structured decision call
// and the prose letter call on separate surfaces; they may point at
// different models.
func New(analysis, letters llm.Client, cfg config.EngineConfig) *Engine {
	if cfg.MaxStepDown <= 0 {
		cfg.MaxStepDown = 100
	}
	if cfg.CompSpread <= 0 {
		cfg.CompSpread = 0.10
	}
	return &Engine{
		analysis: analysis,
		letters:  letters,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Transition is the outcome of applying an analysis to a negotiation.
type Transition struct {
	Status          model.Status
	AgreedRent      *int
	ManagementOffer *int
}

// Apply moves the negotiation to its next state. The position never
// increases and never drops below the current rent; acceptance is terminal.
//
// Apply must only be called after the outbound letter has been produced, so
// a rendering failure never leaves a half-applied transition behind.
func (e *Engine) Apply(neg *model.Negotiation, a Analysis) Transition {
	if a.ShouldAccept {
		agreed := neg.CurrentTargetRent
		if a.TenantOffer != nil && *a.TenantOffer < agreed {
			// An offer above the position is accepted at the position: the
			// position is monotonically non-increasing for its whole life.
			agreed = *a.TenantOffer
		}
		if agreed < neg.CurrentRent {
			agreed = neg.CurrentRent
		}
		neg.CurrentTargetRent = agreed
		neg.Status = model.StatusAccepted
		return Transition{Status: model.StatusAccepted, AgreedRent: &agreed}
	}

	counter := e.clampCounter(a, neg)
	neg.CurrentTargetRent = counter

	if a.TenantIntent == IntentDeclining {
		neg.Status = model.StatusDeclined
		return Transition{Status: model.StatusDeclined, ManagementOffer: &counter}
	}

	neg.Status = model.StatusCountered
	return Transition{Status: model.StatusCountered, ManagementOffer: &counter}
}

// clampCounter bounds the recommended counter to the legal window:
// never above the previous position, never below the current rent, and at
// most MaxStepDown below the previous position in a single round unless the
// tenant has been pressing across multiple rounds.
func (e *Engine) clampCounter(a Analysis, neg *model.Negotiation) int {
	position := neg.CurrentTargetRent
	floor := neg.CurrentRent

	counter := position
	if a.RecommendedCounter != nil {
		counter = *a.RecommendedCounter
	}
	if counter > position {
		counter = position
	}

	minAllowed := position - e.cfg.MaxStepDown
	if tenantPersistent(neg.History) {
		minAllowed = floor
	}
	if minAllowed < floor {
		minAllowed = floor
	}
	if counter < minAllowed {
		counter = minAllowed
	}
	return counter
}

// tenantPersistent reports whether the tenant has pushed back more than
// once. Only then may the engine concede past the per-round step limit.
func tenantPersistent(history model.History) bool {
	count := 0
	for _, msg := range history {
		if msg.Role == model.RoleTenant {
			count++
		}
	}
	return count >= 2
}

// historyMessages maps the persisted conversation into LLM turns. Manager
// letters were authored by the model, so they replay as assistant turns.
func historyMessages(history model.History) []llm.Message {
	msgs := make([]llm.Message, 0, len(history))
	for _, m := range history {
		role := "user"
		if m.Role == model.RoleManager {
			role = "assistant"
		}
		msgs = append(msgs, llm.Message{Role: role, Content: m.Content})
	}
	return msgs
}

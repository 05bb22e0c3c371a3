package engine

import (
	"context"
	"fmt"
	"log/slog"

	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/internal/model"
)

// Intent classifies what the tenant's latest message is doing.
type Intent string

const (
	IntentAccepting  Intent = "accepting"
	IntentCountering Intent = "countering"
	IntentDiscussing Intent = "discussing"
	IntentDeclining  Intent = "declining"
)

// Analysis is the structured decision produced for one inbound tenant
// message. It is either the validated output of the decision call or the
// deterministic fallback; callers never see a raw model response.
type Analysis struct {
	TenantOffer        *int   `json:"tenant_offer" jsonschema_description:"Dollar amount the tenant named, if any"`
	TenantIntent       Intent `json:"tenant_intent" jsonschema:"enum=accepting,enum=countering,enum=discussing,enum=declining"`
	ShouldAccept       bool   `json:"should_accept"`
	RecommendedCounter *int   `json:"recommended_counter" jsonschema_description:"Counteroffer to propose when not accepting"`
	Reasoning          string `json:"reasoning"`
}

var analysisSchema = llm.GenerateSchema[Analysis]()

// Analyze classifies the latest tenant message (already the last entry in
// the history) and decides acceptance or a counter. It always returns a
// usable analysis: any transport or schema failure of the decision call is
// recovered locally via the deterministic fallback.
func (e *Engine) Analyze(ctx context.Context, neg *model.Negotiation) Analysis {
	last := lastTenantMessage(neg.History)

	var a Analysis
	_, err := e.analysis.Chat(ctx, llm.Request{
		SystemPrompt: e.systemPrompt(neg),
		Messages:     historyMessages(neg.History),
		UserPrompt:   e.analysisPrompt(neg),
		SchemaName:   "negotiation_decision",
		Schema:       analysisSchema,
		MaxTokens:    e.cfg.AnalysisMaxTokens,
		Temperature:  llm.Temp(0.3),
	}, &a)
	if err != nil {
		slog.WarnContext(ctx, "analysis call failed, using deterministic fallback", "error", err)
		return Fallback(last, neg.CurrentTargetRent)
	}

	return e.normalize(ctx, a, neg)
}

// normalize enforces the decision rules regardless of how the model
// classified the message.
func (e *Engine) normalize(ctx context.Context, a Analysis, neg *model.Negotiation) Analysis {
	// A figure at or above the position is always an acceptance.
	if a.TenantOffer != nil && *a.TenantOffer >= neg.CurrentTargetRent {
		a.ShouldAccept = true
	}
	// Acceptance language without a figure accepts the current position.
	if a.TenantIntent == IntentAccepting && a.TenantOffer == nil {
		a.ShouldAccept = true
	}
	// An offer below the position cannot be an acceptance of the position;
	// accepting it means agreeing at the tenant's figure, which Apply caps
	// at the floor.
	if !a.ShouldAccept && a.RecommendedCounter == nil {
		a.RecommendedCounter = &neg.CurrentTargetRent
	}
	if a.TenantIntent == "" {
		slog.DebugContext(ctx, "analysis returned empty intent, treating as discussing")
		a.TenantIntent = IntentDiscussing
	}
	return a
}

func (e *Engine) systemPrompt(neg *model.Negotiation) string {
	return fmt.Sprintf(`You are a professional property manager named Alex conducting a rent negotiation via email.

PROPERTY CONTEXT:
- Tenant: %s
- Property: %s
- Current Rent: $%d/month
- Market Rate: $%d/month
- Your Current Position: $%d/month

NEGOTIATION RULES:
1. Your absolute minimum is $%d/month (can stay at current rent if needed)
2. When the tenant makes counteroffers, you can move down by up to $%d per round
3. Accept any offer at or above your current position immediately
4. If the tenant insists and you're close, you can go lower to reach agreement
5. Always be warm, professional, and understanding

TONE & LENGTH:
- Keep responses BRIEF (1-2 short paragraphs maximum)
- Direct and friendly, not formal or wordy

RESPONSE FORMAT:
- Write as if you're writing an email body
- Do NOT include subject lines, greetings like "Dear [Name]", or signatures

CURRENT STATUS: %s`,
		neg.TenantName,
		neg.FullAddress(),
		neg.CurrentRent,
		neg.InitialTargetRent,
		neg.CurrentTargetRent,
		neg.CurrentRent,
		e.cfg.MaxStepDown,
		neg.Status,
	)
}

func (e *Engine) analysisPrompt(neg *model.Negotiation) string {
	return fmt.Sprintf(`Based on the conversation, analyze the tenant's latest message and make a negotiation decision.

Current negotiation state:
- Your current position: $%d/month
- Initial target: $%d/month
- Current rent: $%d/month
- Absolute minimum: $%d/month (can stay at current if needed)

Rules:
- If the tenant says "that works", "sounds good", "deal", etc. without a number, they're accepting your current position
- If the tenant mentions a specific dollar amount, that's their offer
- should_accept = true if the tenant's offer >= your current position
- If should_accept = false, recommend a counteroffer (can move down by up to $%d)
- If the tenant insists and you're getting close, you can go lower - the minimum is $%d
- Be willing to compromise to reach agreement`,
		neg.CurrentTargetRent,
		neg.InitialTargetRent,
		neg.CurrentRent,
		neg.CurrentRent,
		e.cfg.MaxStepDown,
		neg.CurrentRent,
	)
}

func lastTenantMessage(history model.History) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == model.RoleTenant {
			return history[i].Content
		}
	}
	return ""
}

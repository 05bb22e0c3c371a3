package engine

import (
	"context"
	"fmt"
	"strings"

	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/internal/model"
)

// OpeningLetter renders the first outbound message of a negotiation. It is
// a fixed template, never free-generated: the opener must not anchor with
// the manager's number, so it discloses only the current rent and a market
// comparison range, then asks the tenant to name a price and to pick a
// lease term.
func (e *Engine) OpeningLetter(neg *model.Negotiation) string {
	low := int(float64(neg.InitialTargetRent) * (1 - e.cfg.CompSpread))
	high := int(float64(neg.InitialTargetRent) * (1 + e.cfg.CompSpread))

	return fmt.Sprintf(`Hi %s,

It's been a while since our original lease rent at $%d/month. The market price in the area has shifted since then.

I did some research:
- Market rent for similar properties in %s has moved since we signed
- Comparable listings in the area range from $%d to $%d/month

Can you let me know the following by the end of this month?

1. Knowing the prices available in the open market, what price would you be comfortable with? I'd like you to name the price since I want to make sure it's not a big burden for you to come up with the rent.

2. Do you prefer a 1-year or 2-year contract? For a 2-year contract, I would expect a slightly higher rent commitment since the rent is guaranteed for 2 years.

Looking forward to hearing from you!`,
		neg.TenantName,
		neg.CurrentRent,
		neg.City,
		low,
		high,
	)
}

// RenderLetter produces the outbound letter matching the analysis decision.
// Unlike analysis, a rendering failure here is surfaced to the caller: with
// no letter there is nothing to append to history and no transition to
// apply.
func (e *Engine) RenderLetter(ctx context.Context, neg *model.Negotiation, a Analysis) (string, error) {
	var prompt string

	switch {
	case a.ShouldAccept:
		agreed := neg.CurrentTargetRent
		if a.TenantOffer != nil && *a.TenantOffer < agreed {
			agreed = *a.TenantOffer
		}
		prompt = fmt.Sprintf(`Generate a warm but BRIEF acceptance confirmation (1-2 short paragraphs):
- Confirm agreed rent: $%d/month
- Express excitement about continuing the tenancy
- Mention lease paperwork will follow

Be BRIEF and friendly. Do NOT include subject lines, greetings, or signatures.`, agreed)

	case a.TenantIntent == IntentDeclining:
		prompt = `Generate a brief, gracious acknowledgment (1-2 short paragraphs) for a tenant who has decided not to renew:
- Thank them for letting you know
- Leave the door open should they reconsider before the lease ends

Be BRIEF and warm. Do NOT include subject lines, greetings, or signatures.`

	default:
		counter := e.clampCounter(a, neg)
		prompt = fmt.Sprintf(`Generate a brief counteroffer response (1-2 short paragraphs maximum):
- Acknowledge their message warmly
- Propose: $%d/month
- Keep it friendly and open to discussion
- NO repetition, NO verbose explanations

Be BRIEF and to the point. Do NOT include subject lines, greetings, or signatures.`, counter)
	}

	req := llm.TextRequest{
		SystemPrompt: e.systemPrompt(neg),
		Messages:     historyMessages(neg.History),
		UserPrompt:   prompt,
		MaxTokens:    e.cfg.LetterMaxTokens,
		Temperature:  llm.Temp(0.7),
	}

	letter, err := e.letters.Complete(ctx, req)
	if err != nil && llm.IsRetryable(ctx, err) {
		// One retry covers transient rate limits and network blips; anything
		// beyond that is surfaced so the service can record the failure.
		letter, err = e.letters.Complete(ctx, req)
	}
	if err != nil {
		return "", fmt.Errorf("rendering letter: %w", err)
	}

	letter = strings.TrimSpace(letter)
	if letter == "" {
		return "", fmt.Errorf("rendering letter: empty response")
	}
	return letter, nil
}

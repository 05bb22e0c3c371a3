// Package estimator supplies the market-rent figure used to open a
// negotiation. Three methods are tried in order: a Zillow page scan, an LLM
// location estimate, and a flat uplift over the current rent. The chain
// cannot fail outright; the caller always receives a positive figure.
package estimator

import (
	"context"
	"fmt"
	"log/slog"

	"leaseline.app/leaseline/common/llm"
	"leaseline.app/leaseline/core/config"
)

type Source string

const (
	SourceZillow   Source = "zillow"
	SourceAI       Source = "ai_estimate"
	SourceFallback Source = "fallback_estimate"
)

type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

type Request struct {
	Address     string
	City        string
	State       string
	Zipcode     string
	CurrentRent int
}

type Estimate struct {
	Amount     int
	Source     Source
	Confidence Confidence
}

// Estimator produces a market-rent estimate for a property.
type Estimator interface {
	Estimate(ctx context.Context, req Request) Estimate
}

// Sanity bounds for LLM estimates: implausible figures are discarded in
// favor of the next method.
const (
	aiEstimateMin      = 500
	aiEstimateMax      = 50000
	aiMaxDriftFraction = 0.5
)

type chain struct {
	zillow *ZillowClient // nil when scraping is disabled
	llm    llm.Client
	cfg    config.EstimatorConfig
}

func New(zillow *ZillowClient, llmClient llm.Client, cfg config.EstimatorConfig) Estimator {
	return &chain{zillow: zillow, llm: llmClient, cfg: cfg}
}

func (c *chain) Estimate(ctx context.Context, req Request) Estimate {
	if c.zillow != nil {
		amount, err := c.zillow.FetchEstimate(ctx, req)
		if err != nil {
			slog.InfoContext(ctx, "zillow estimate unavailable", "error", err)
		} else {
			slog.InfoContext(ctx, "zillow estimate", "amount", amount)
			return Estimate{Amount: amount, Source: SourceZillow, Confidence: ConfidenceHigh}
		}
	}

	if amount, err := c.aiEstimate(ctx, req); err != nil {
		slog.InfoContext(ctx, "ai estimate unavailable", "error", err)
	} else {
		slog.InfoContext(ctx, "ai estimate", "amount", amount)
		return Estimate{Amount: amount, Source: SourceAI, Confidence: ConfidenceMedium}
	}

	amount := FallbackAmount(req.CurrentRent)
	slog.InfoContext(ctx, "using fallback estimate", "amount", amount)
	return Estimate{Amount: amount, Source: SourceFallback, Confidence: ConfidenceLow}
}

// FallbackAmount is the last-resort estimate: current rent plus 10%.
func FallbackAmount(currentRent int) int {
	return int(float64(currentRent) * 1.1)
}

type aiEstimateResult struct {
	EstimatedRent int `json:"estimated_rent" jsonschema_description:"Estimated fair market monthly rent in dollars"`
}

var aiEstimateSchema = llm.GenerateSchema[aiEstimateResult]()

func (c *chain) aiEstimate(ctx context.Context, req Request) (int, error) {
	if c.llm == nil {
		return 0, fmt.Errorf("no llm client configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.LLMTimeout)
	defer cancel()

	var result aiEstimateResult
	_, err := c.llm.Chat(ctx, llm.Request{
		SystemPrompt: "You are a real estate market analyst. Provide accurate rent estimates based on location data.",
		UserPrompt: fmt.Sprintf(`Based on current real estate market data, estimate the fair market rent for this property:

Property: %s, %s, %s %s
Current Rent: $%d/month

Consider the location, typical rent prices in %s, %s, current market conditions, and the fact that the current rent is $%d.`,
			req.Address, req.City, req.State, req.Zipcode,
			req.CurrentRent,
			req.City, req.State, req.CurrentRent,
		),
		SchemaName:  "rent_estimate",
		Schema:      aiEstimateSchema,
		MaxTokens:   50,
		Temperature: llm.Temp(0.3),
	}, &result)
	if err != nil {
		return 0, err
	}

	if !PlausibleAIEstimate(result.EstimatedRent, req.CurrentRent) {
		return 0, fmt.Errorf("estimate %d outside plausible range for current rent %d", result.EstimatedRent, req.CurrentRent)
	}
	return result.EstimatedRent, nil
}

// PlausibleAIEstimate applies the sanity band: the figure must be a
// realistic monthly rent and within ±50% of the current rent.
func PlausibleAIEstimate(estimate, currentRent int) bool {
	if estimate < aiEstimateMin || estimate > aiEstimateMax {
		return false
	}
	if currentRent <= 0 {
		return false
	}
	drift := float64(estimate-currentRent) / float64(currentRent)
	if drift < 0 {
		drift = -drift
	}
	return drift <= aiMaxDriftFraction
}

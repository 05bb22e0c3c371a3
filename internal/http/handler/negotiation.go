package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/http/dto"
	"leaseline.app/leaseline/internal/service"
	"leaseline.app/leaseline/internal/store"
)

type NegotiationHandler struct {
	negotiations service.NegotiationService
}

func NewNegotiationHandler(negotiations service.NegotiationService) *NegotiationHandler {
	return &NegotiationHandler{negotiations: negotiations}
}

func (h *NegotiationHandler) EstimateRent(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.EstimateRentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	est, err := h.negotiations.EstimateRent(ctx, estimator.Request{
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Zipcode:     req.Zipcode,
		CurrentRent: req.CurrentRent,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToEstimateRentResponse(est))
}

func (h *NegotiationHandler) Start(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.StartNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.negotiations.Start(ctx, service.StartParams{
		TenantName:  req.TenantName,
		TenantEmail: req.TenantEmail,
		Address:     req.Address,
		City:        req.City,
		State:       req.State,
		Zipcode:     req.Zipcode,
		CurrentRent: req.CurrentRent,
		TargetRent:  req.TargetRent,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToStartNegotiationResponse(res))
}

func (h *NegotiationHandler) Continue(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.ContinueNegotiationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.negotiations.Continue(ctx, req.TenantEmail, req.TenantMessage)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToContinueNegotiationResponse(res))
}

func (h *NegotiationHandler) Context(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.NegotiationContextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	neg, err := h.negotiations.Context(ctx, req.TenantEmail)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToNegotiationContextResponse(neg))
}

// respondError maps service errors onto HTTP statuses. Unrecognized errors
// surface as 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "no negotiation found for this email"})
	case errors.Is(err, service.ErrNegotiationClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		slog.ErrorContext(c.Request.Context(), "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"leaseline.app/leaseline/internal/http/dto"
	"leaseline.app/leaseline/internal/lease"
)

type LeaseHandler struct {
	leases *lease.Generator
}

func NewLeaseHandler(leases *lease.Generator) *LeaseHandler {
	return &LeaseHandler{leases: leases}
}

func (h *LeaseHandler) Generate(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.GenerateLeaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(ctx, "invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, err := h.leases.Generate(ctx, lease.Terms{
		TenantName:       req.TenantName,
		LandlordName:     req.LandlordName,
		Address:          req.Address,
		City:             req.City,
		State:            req.State,
		Zipcode:          req.Zipcode,
		AgreedRent:       req.AgreedRent,
		CommencementDate: req.CommencementDate,
		TermMonths:       req.LeaseTermMonths,
	})
	if err != nil {
		slog.ErrorContext(ctx, "lease generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate lease"})
		return
	}

	c.JSON(http.StatusOK, dto.ToGenerateLeaseResponse(doc, req))
}

func (h *LeaseHandler) Download(c *gin.Context) {
	ctx := c.Request.Context()

	name := c.Param("filename")
	path, err := h.leases.Resolve(name)
	if err != nil {
		slog.WarnContext(ctx, "lease download rejected", "filename", name, "error", err)
		c.JSON(http.StatusNotFound, gin.H{"error": "lease not found"})
		return
	}

	c.FileAttachment(path, name)
}

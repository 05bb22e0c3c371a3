package dto

import (
	"time"

	"leaseline.app/leaseline/internal/estimator"
	"leaseline.app/leaseline/internal/model"
	"leaseline.app/leaseline/internal/service"
)

type EstimateRentRequest struct {
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	CurrentRent int    `json:"current_rent" binding:"required,gt=0"`
}

type EstimateRentResponse struct {
	EstimatedRent int    `json:"estimated_rent"`
	Source        string `json:"source"`
	Confidence    string `json:"confidence"`
}

func ToEstimateRentResponse(est estimator.Estimate) *EstimateRentResponse {
	return &EstimateRentResponse{
		EstimatedRent: est.Amount,
		Source:        string(est.Source),
		Confidence:    string(est.Confidence),
	}
}

type StartNegotiationRequest struct {
	TenantName  string `json:"tenant_name"`
	TenantEmail string `json:"tenant_email" binding:"required,email,max=255"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Zipcode     string `json:"zipcode"`
	CurrentRent int    `json:"current_rent" binding:"required,gt=0"`
	TargetRent  *int   `json:"target_rent,omitempty" binding:"omitempty,gt=0"`
}

type StartNegotiationResponse struct {
	Status         string `json:"status"`
	LetterText     string `json:"letter_text"`
	TargetRent     int    `json:"target_rent"`
	EstimateSource string `json:"estimate_source,omitempty"`
}

func ToStartNegotiationResponse(res *service.StartResult) *StartNegotiationResponse {
	resp := &StartNegotiationResponse{
		Status:     "initial",
		LetterText: res.Letter,
		TargetRent: res.TargetRent,
	}
	if res.Estimate != nil {
		resp.EstimateSource = string(res.Estimate.Source)
	}
	return resp
}

type ContinueNegotiationRequest struct {
	TenantEmail   string `json:"tenant_email" binding:"required,email,max=255"`
	TenantMessage string `json:"tenant_message" binding:"required,min=1"`
}

type ContinueNegotiationResponse struct {
	Status          string `json:"status"`
	LetterText      string `json:"letter_text"`
	AgreedRent      *int   `json:"agreed_rent,omitempty"`
	ManagementOffer *int   `json:"management_offer,omitempty"`
	TenantOffer     *int   `json:"tenant_offer,omitempty"`
	AIReasoning     string `json:"ai_reasoning,omitempty"`
}

func ToContinueNegotiationResponse(res *service.ContinueResult) *ContinueNegotiationResponse {
	return &ContinueNegotiationResponse{
		Status:          string(res.Status),
		LetterText:      res.Letter,
		AgreedRent:      res.AgreedRent,
		ManagementOffer: res.ManagementOffer,
		TenantOffer:     res.TenantOffer,
		AIReasoning:     res.Reasoning,
	}
}

type NegotiationContextRequest struct {
	TenantEmail string `json:"tenant_email" binding:"required,email,max=255"`
}

type HistoryMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type NegotiationContextResponse struct {
	TenantName          string           `json:"tenant_name"`
	TenantEmail         string           `json:"tenant_email"`
	Address             string           `json:"address"`
	City                string           `json:"city"`
	State               string           `json:"state"`
	Zipcode             string           `json:"zipcode"`
	CurrentRent         int              `json:"current_rent"`
	InitialTargetRent   int              `json:"initial_target_rent"`
	CurrentTargetRent   int              `json:"current_target_rent"`
	Status              string           `json:"status"`
	ConversationHistory []HistoryMessage `json:"conversation_history"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

func ToNegotiationContextResponse(neg *model.Negotiation) *NegotiationContextResponse {
	history := make([]HistoryMessage, 0, len(neg.History))
	for _, msg := range neg.History {
		history = append(history, HistoryMessage{
			Role:      msg.Role,
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}
	return &NegotiationContextResponse{
		TenantName:          neg.TenantName,
		TenantEmail:         neg.TenantEmail,
		Address:             neg.Address,
		City:                neg.City,
		State:               neg.State,
		Zipcode:             neg.Zipcode,
		CurrentRent:         neg.CurrentRent,
		InitialTargetRent:   neg.InitialTargetRent,
		CurrentTargetRent:   neg.CurrentTargetRent,
		Status:              string(neg.Status),
		ConversationHistory: history,
		CreatedAt:           neg.CreatedAt,
		UpdatedAt:           neg.UpdatedAt,
	}
}

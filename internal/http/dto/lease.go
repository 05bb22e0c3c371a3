package dto

import (
	"leaseline.app/leaseline/internal/lease"
)

type GenerateLeaseRequest struct {
	TenantName       string `json:"tenant_name" binding:"required,min=1,max=255"`
	TenantEmail      string `json:"tenant_email" binding:"omitempty,email,max=255"`
	LandlordName     string `json:"landlord_name"`
	Address          string `json:"address"`
	City             string `json:"city"`
	State            string `json:"state"`
	Zipcode          string `json:"zipcode"`
	AgreedRent       int    `json:"agreed_rent" binding:"required,gt=0"`
	CommencementDate string `json:"commencement_date" binding:"omitempty,datetime=2006-01-02"`
	LeaseTermMonths  int    `json:"lease_term_months" binding:"omitempty,gt=0"`
}

type GenerateLeaseResponse struct {
	Success          bool   `json:"success"`
	Filename         string `json:"filename"`
	DownloadURL      string `json:"download_url"`
	TenantName       string `json:"tenant_name"`
	TenantEmail      string `json:"tenant_email,omitempty"`
	AgreedRent       int    `json:"agreed_rent"`
	SecurityDeposit  int    `json:"security_deposit"`
	CommencementDate string `json:"commencement_date,omitempty"`
	LeaseEndDate     string `json:"lease_end_date,omitempty"`
}

func ToGenerateLeaseResponse(doc *lease.Document, req GenerateLeaseRequest) *GenerateLeaseResponse {
	return &GenerateLeaseResponse{
		Success:          true,
		Filename:         doc.Filename,
		DownloadURL:      "/ai/download-lease/" + doc.Filename,
		TenantName:       req.TenantName,
		TenantEmail:      req.TenantEmail,
		AgreedRent:       doc.AgreedRent,
		SecurityDeposit:  doc.SecurityDeposit,
		CommencementDate: doc.CommencementOn,
		LeaseEndDate:     doc.TerminatesOn,
	}
}

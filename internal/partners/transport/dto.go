package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreatePartnerRequest struct {
	CompanyName  string  `json:"companyName" validate:"required,min=1,max=200"`
	ContactName  string  `json:"contactName" validate:"required,max=120"`
	ContactEmail string  `json:"contactEmail" validate:"required,email"`
	ContactPhone string  `json:"contactPhone" validate:"required,max=50"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type UpdatePartnerRequest struct {
	CompanyName  *string `json:"companyName,omitempty" validate:"omitempty,min=1,max=200"`
	ContactName  *string `json:"contactName,omitempty" validate:"omitempty,max=120"`
	ContactEmail *string `json:"contactEmail,omitempty" validate:"omitempty,email"`
	ContactPhone *string `json:"contactPhone,omitempty" validate:"omitempty,max=50"`
	Notes        *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type ListPartnersRequest struct {
	Search   string `form:"search" validate:"omitempty,max=200"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type PartnerResponse struct {
	ID           uuid.UUID `json:"id"`
	CompanyName  string    `json:"companyName"`
	ContactName  string    `json:"contactName"`
	ContactEmail string    `json:"contactEmail"`
	ContactPhone string    `json:"contactPhone"`
	Notes        *string   `json:"notes,omitempty"`
	// PerformanceScore is computed on demand from the scoring engine, never
	// read from a stored column.
	PerformanceScore int       `json:"performanceScore"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

type ListPartnersResponse struct {
	Items      []PartnerResponse `json:"items"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

type PerformanceResponse struct {
	PartnerID        uuid.UUID `json:"partnerId"`
	Score            int       `json:"score"`
	LeadsAssigned    int       `json:"leadsAssigned"`
	LeadsContacted   int       `json:"leadsContacted"`
	LeadsQualified   int       `json:"leadsQualified"`
	LeadsConverted   int       `json:"leadsConverted"`
	LeadsLost        int       `json:"leadsLost"`
	LeadsStalled     int       `json:"leadsStalled"`
	PerformanceScore int       `json:"performanceScore"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

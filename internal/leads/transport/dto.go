package transport

import (
	"time"

	"github.com/google/uuid"
)

type CreateLeadRequest struct {
	FirstName string     `json:"firstName" validate:"required,max=120"`
	LastName  string     `json:"lastName" validate:"required,max=120"`
	Email     string     `json:"email" validate:"required,email"`
	Phone     string     `json:"phone" validate:"required,max=50"`
	Source    *string    `json:"source,omitempty" validate:"omitempty,max=120"`
	PartnerID *uuid.UUID `json:"partnerId,omitempty"`
	Status    *string    `json:"status,omitempty" validate:"omitempty,oneof=New Contacted Qualified Converted Lost"`
}

type ChangeStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=New Contacted Qualified Converted Lost"`
}

type ListLeadsRequest struct {
	PartnerID *uuid.UUID `form:"partnerId"`
	Status    *string    `form:"status" validate:"omitempty,oneof=New Contacted Qualified Converted Lost"`
	Page      int        `form:"page" validate:"omitempty,min=1"`
	PageSize  int        `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type LeadResponse struct {
	ID        uuid.UUID  `json:"id"`
	PartnerID *uuid.UUID `json:"partnerId,omitempty"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Source    *string    `json:"source,omitempty"`
	Status    string     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

type ListLeadsResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type StatusHistoryEntryResponse struct {
	ID        uuid.UUID  `json:"id"`
	LeadID    uuid.UUID  `json:"leadId"`
	OldStatus *string    `json:"oldStatus,omitempty"`
	NewStatus string     `json:"newStatus"`
	ChangedBy *uuid.UUID `json:"changedBy,omitempty"`
	ChangedAt time.Time  `json:"changedAt"`
}

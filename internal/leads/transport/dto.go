package transport

import (
	"time"

	"github.com/google/uuid"
)

type ListLeadsRequest struct {
	Search     string `form:"search" validate:"max=200"`
	Status     string `form:"status" validate:"omitempty,lead_status"`
	Division   string `form:"division" validate:"omitempty,division"`
	AssignedTo string `form:"assignedTo" validate:"omitempty,uuid"`
	TeamID     string `form:"teamId" validate:"omitempty,uuid"`
	Unassigned bool   `form:"unassigned"`
	Page       int    `form:"page" validate:"omitempty,min=1"`
	PageSize   int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type CreateLeadRequest struct {
	Company                 string     `json:"company" validate:"required,max=255"`
	ContactName             string     `json:"contactName" validate:"max=255"`
	Position                string     `json:"position" validate:"max=255"`
	Email                   string     `json:"email" validate:"max=254"`
	Phone                   string     `json:"phone" validate:"max=30"`
	Comments                string     `json:"comments" validate:"max=5000"`
	FollowUpDate            *string    `json:"followUpDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	LastContact             *string    `json:"lastContact,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Status                  string     `json:"status" validate:"omitempty,lead_status"`
	Priority                string     `json:"priority" validate:"omitempty,priority"`
	Division                string     `json:"division" validate:"required,division"`
	DealValue               float64    `json:"dealValue" validate:"gte=0"`
	ProbabilityOfCompletion int        `json:"probabilityOfCompletion" validate:"probability"`
	AssignedTo              *uuid.UUID `json:"assignedTo,omitempty"`
	ProductID               *uuid.UUID `json:"productId,omitempty"`
	TeamID                  *uuid.UUID `json:"teamId,omitempty"`
}

type UpdateLeadRequest struct {
	Company                 *string      `json:"company,omitempty" validate:"omitempty,min=1,max=255"`
	ContactName             *string      `json:"contactName,omitempty" validate:"omitempty,max=255"`
	Position                *string      `json:"position,omitempty" validate:"omitempty,max=255"`
	Email                   *string      `json:"email,omitempty" validate:"omitempty,max=254"`
	Phone                   *string      `json:"phone,omitempty" validate:"omitempty,max=30"`
	Comments                *string      `json:"comments,omitempty" validate:"omitempty,max=5000"`
	FollowUpDate            OptionalDate `json:"followUpDate"`
	LastContact             OptionalDate `json:"lastContact"`
	Status                  *string      `json:"status,omitempty" validate:"omitempty,lead_status"`
	Priority                *string      `json:"priority,omitempty" validate:"omitempty,priority"`
	Division                *string      `json:"division,omitempty" validate:"omitempty,division"`
	DealValue               *float64     `json:"dealValue,omitempty" validate:"omitempty,gte=0"`
	ProbabilityOfCompletion *int         `json:"probabilityOfCompletion,omitempty" validate:"omitempty,probability"`
	AssignedTo              OptionalUUID `json:"assignedTo"`
	ProductID               OptionalUUID `json:"productId"`
	TeamID                  OptionalUUID `json:"teamId"`
}

// BulkStatusRequest carries no progress: it always follows the status.
type BulkStatusRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
	Status  string      `json:"status" validate:"required,lead_status"`
}

type BulkDeleteRequest struct {
	LeadIDs []uuid.UUID `json:"leadIds" validate:"required,min=1,max=500"`
}

type BulkAssignRequest struct {
	Strategy         string     `json:"strategy" validate:"required,oneof=manual round-robin workload division"`
	Scope            string     `json:"scope" validate:"omitempty,oneof=all unassigned"`
	ManualAssigneeID *uuid.UUID `json:"manualAssigneeId,omitempty"`
}

type ReassignRequest struct {
	AssigneeID uuid.UUID `json:"assigneeId" validate:"required"`
	Reason     string    `json:"reason" validate:"required,max=500"`
}

type LogCommunicationRequest struct {
	Type         string  `json:"type" validate:"required,comm_type"`
	Note         string  `json:"note" validate:"required,max=5000"`
	NewStatus    *string `json:"newStatus,omitempty" validate:"omitempty,lead_status"`
	NextFollowUp *string `json:"nextFollowUp,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type AddResourceRequest struct {
	PersonnelID   uuid.UUID `json:"personnelId" validate:"required"`
	Role          string    `json:"role" validate:"max=100"`
	DailyRate     *float64  `json:"dailyRate,omitempty" validate:"omitempty,gte=0"`
	DaysAllocated float64   `json:"daysAllocated" validate:"gte=0"`
}

type AddMaterialCostRequest struct {
	Name string  `json:"name" validate:"required,max=255"`
	Cost float64 `json:"cost" validate:"gte=0"`
}

type LeadResponse struct {
	ID                      uuid.UUID  `json:"id"`
	Company                 string     `json:"company"`
	ContactName             string     `json:"contactName"`
	Position                string     `json:"position"`
	Email                   string     `json:"email"`
	Phone                   string     `json:"phone"`
	Comments                string     `json:"comments"`
	FollowUpDate            *string    `json:"followUpDate"`
	LastContact             *string    `json:"lastContact"`
	Status                  string     `json:"status"`
	StatusDisplay           string     `json:"statusDisplay"`
	Priority                string     `json:"priority"`
	Division                string     `json:"division"`
	DivisionDisplay         string     `json:"divisionDisplay"`
	DealValue               float64    `json:"dealValue"`
	ProbabilityOfCompletion int        `json:"probabilityOfCompletion"`
	WeightedValue           float64    `json:"weightedValue"`
	Progress                int        `json:"progress"`
	QualityScore            int        `json:"qualityScore"`
	AssignedTo              *uuid.UUID `json:"assignedTo"`
	ProductID               *uuid.UUID `json:"productId"`
	TeamID                  *uuid.UUID `json:"teamId"`
	CreatedBy               *uuid.UUID `json:"createdBy"`
	CreatedAt               time.Time  `json:"createdAt"`
	UpdatedAt               time.Time  `json:"updatedAt"`
}

type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

type CommunicationResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	TypeDisplay string    `json:"typeDisplay"`
	Note        string    `json:"note"`
	UserID      uuid.UUID `json:"userId"`
	Date        string    `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

type AssignmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	FromPersonnelID *uuid.UUID `json:"fromPersonnelId"`
	ToPersonnelID   uuid.UUID  `json:"toPersonnelId"`
	AssignedByID    *uuid.UUID `json:"assignedById"`
	Reason          string     `json:"reason"`
	Date            string     `json:"date"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type ResourceResponse struct {
	ID            uuid.UUID `json:"id"`
	PersonnelID   uuid.UUID `json:"personnelId"`
	Role          string    `json:"role"`
	DailyRate     float64   `json:"dailyRate"`
	DaysAllocated float64   `json:"daysAllocated"`
	TotalCost     float64   `json:"totalCost"`
}

type MaterialCostResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Cost float64   `json:"cost"`
}

type LeadDetailResponse struct {
	Lead              LeadResponse            `json:"lead"`
	CanEdit           bool                    `json:"canEdit"`
	Communications    []CommunicationResponse `json:"communications"`
	Assignments       []AssignmentResponse    `json:"assignments"`
	Resources         []ResourceResponse      `json:"resources"`
	MaterialCosts     []MaterialCostResponse  `json:"materialCosts"`
	TotalResourceCost float64                 `json:"totalResourceCost"`
	TotalMaterialCost float64                 `json:"totalMaterialCost"`
}

type BulkResultResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count"`
}

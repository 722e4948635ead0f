package management

import (
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/leads/transport"
)

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.DateOnly)
	return &s
}

// ToLeadResponse maps a lead for the API.
func ToLeadResponse(lead domain.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:                      lead.ID,
		Company:                 lead.Company,
		ContactName:             lead.ContactName,
		Position:                lead.Position,
		Email:                   lead.Email,
		Phone:                   lead.Phone,
		Comments:                lead.Comments,
		FollowUpDate:            formatDate(lead.FollowUpDate),
		LastContact:             formatDate(lead.LastContact),
		Status:                  string(lead.Status),
		StatusDisplay:           lead.Status.DisplayName(),
		Priority:                string(lead.Priority),
		Division:                string(lead.Division),
		DivisionDisplay:         lead.Division.DisplayName(),
		DealValue:               lead.DealValue,
		ProbabilityOfCompletion: lead.ProbabilityOfCompletion,
		WeightedValue:           lead.WeightedValue(),
		Progress:                lead.Progress,
		QualityScore:            lead.QualityScore,
		AssignedTo:              lead.AssignedTo,
		ProductID:               lead.ProductID,
		TeamID:                  lead.TeamID,
		CreatedBy:               lead.CreatedBy,
		CreatedAt:               lead.CreatedAt,
		UpdatedAt:               lead.UpdatedAt,
	}
}

func toCommunicationResponse(c domain.Communication) transport.CommunicationResponse {
	return transport.CommunicationResponse{
		ID:          c.ID,
		Type:        string(c.Type),
		TypeDisplay: c.Type.DisplayName(),
		Note:        c.Note,
		UserID:      c.UserID,
		Date:        c.Date.Format(time.DateOnly),
		CreatedAt:   c.CreatedAt,
	}
}

func toAssignmentResponse(a domain.Assignment) transport.AssignmentResponse {
	return transport.AssignmentResponse{
		ID:              a.ID,
		FromPersonnelID: a.FromPersonnelID,
		ToPersonnelID:   a.ToPersonnelID,
		AssignedByID:    a.AssignedByID,
		Reason:          a.Reason,
		Date:            a.Date.Format(time.DateOnly),
		CreatedAt:       a.CreatedAt,
	}
}

func toResourceResponse(r domain.ResourceAssignment) transport.ResourceResponse {
	return transport.ResourceResponse{
		ID:            r.ID,
		PersonnelID:   r.PersonnelID,
		Role:          r.Role,
		DailyRate:     r.DailyRate,
		DaysAllocated: r.DaysAllocated,
		TotalCost:     r.TotalCost(),
	}
}

func toMaterialCostResponse(m domain.MaterialCost) transport.MaterialCostResponse {
	return transport.MaterialCostResponse{ID: m.ID, Name: m.Name, Cost: m.Cost}
}

// ToLeadDetailResponse assembles the detail view.
func ToLeadDetailResponse(
	lead domain.Lead,
	canEdit bool,
	comms []domain.Communication,
	assignments []domain.Assignment,
	resources []domain.ResourceAssignment,
	costs []domain.MaterialCost,
) transport.LeadDetailResponse {
	resp := transport.LeadDetailResponse{
		Lead:           ToLeadResponse(lead),
		CanEdit:        canEdit,
		Communications: make([]transport.CommunicationResponse, 0, len(comms)),
		Assignments:    make([]transport.AssignmentResponse, 0, len(assignments)),
		Resources:      make([]transport.ResourceResponse, 0, len(resources)),
		MaterialCosts:  make([]transport.MaterialCostResponse, 0, len(costs)),
	}
	for _, c := range comms {
		resp.Communications = append(resp.Communications, toCommunicationResponse(c))
	}
	for _, a := range assignments {
		resp.Assignments = append(resp.Assignments, toAssignmentResponse(a))
	}
	for _, r := range resources {
		resp.Resources = append(resp.Resources, toResourceResponse(r))
		resp.TotalResourceCost += r.TotalCost()
	}
	for _, m := range costs {
		resp.MaterialCosts = append(resp.MaterialCosts, toMaterialCostResponse(m))
		resp.TotalMaterialCost += m.Cost
	}
	return resp
}

package management

import (
	"context"
	"errors"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/transport"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

// editable loads a live lead the principal may edit.
func (s *Service) editable(ctx context.Context, principal access.Principal, leadID uuid.UUID) (domain.Lead, error) {
	lead, err := s.loadLive(ctx, leadID)
	if err != nil {
		return domain.Lead{}, err
	}
	if !access.CanEdit(principal, lead) {
		return domain.Lead{}, apperr.Forbidden(msgNoEdit)
	}
	return lead, nil
}

// AddResource allocates a person to the lead. The daily rate defaults to
// the person's own rate.
func (s *Service) AddResource(ctx context.Context, principal access.Principal, leadID uuid.UUID, req transport.AddResourceRequest) (transport.ResourceResponse, error) {
	if _, err := s.editable(ctx, principal, leadID); err != nil {
		return transport.ResourceResponse{}, err
	}
	person, err := s.resolvePersonnel(ctx, req.PersonnelID)
	if err != nil {
		return transport.ResourceResponse{}, err
	}

	rate := person.DailyRate
	if req.DailyRate != nil {
		rate = *req.DailyRate
	}
	item, err := s.repo.UpsertResource(ctx, domain.ResourceAssignment{
		ID:            uuid.New(),
		LeadID:        leadID,
		PersonnelID:   person.ID,
		Role:          sanitize.Line(req.Role),
		DailyRate:     rate,
		DaysAllocated: req.DaysAllocated,
	})
	if err != nil {
		return transport.ResourceResponse{}, apperr.Wrap(apperr.KindInternal, "failed to allocate resource", err).WithOp("leads.management.add_resource")
	}
	return toResourceResponse(item), nil
}

func (s *Service) RemoveResource(ctx context.Context, principal access.Principal, leadID, resourceID uuid.UUID) error {
	if _, err := s.editable(ctx, principal, leadID); err != nil {
		return err
	}
	err := s.repo.DeleteResource(ctx, leadID, resourceID)
	if errors.Is(err, repository.ErrResourceNotFound) {
		return apperr.NotFound("Resource assignment not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to remove resource", err)
	}
	return nil
}

func (s *Service) AddMaterialCost(ctx context.Context, principal access.Principal, leadID uuid.UUID, req transport.AddMaterialCostRequest) (transport.MaterialCostResponse, error) {
	if _, err := s.editable(ctx, principal, leadID); err != nil {
		return transport.MaterialCostResponse{}, err
	}
	item, err := s.repo.AddMaterialCost(ctx, domain.MaterialCost{
		ID:     uuid.New(),
		LeadID: leadID,
		Name:   sanitize.Line(req.Name),
		Cost:   req.Cost,
	})
	if err != nil {
		return transport.MaterialCostResponse{}, apperr.Wrap(apperr.KindInternal, "failed to add material cost", err).WithOp("leads.management.add_cost")
	}
	return toMaterialCostResponse(item), nil
}

func (s *Service) RemoveMaterialCost(ctx context.Context, principal access.Principal, leadID, costID uuid.UUID) error {
	if _, err := s.editable(ctx, principal, leadID); err != nil {
		return err
	}
	err := s.repo.DeleteMaterialCost(ctx, leadID, costID)
	if errors.Is(err, repository.ErrCostNotFound) {
		return apperr.NotFound("Material cost not found")
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to remove material cost", err)
	}
	return nil
}

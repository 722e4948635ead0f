package management

import (
	"context"
	"fmt"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/internal/leads/assignment"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/transport"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgNoReassign   = "You do not have permission to reassign this lead"
	msgNoBulkAssign = "You do not have permission to perform bulk assignments"
	msgNoLeads      = "No leads to assign"
	scopeUnassigned = "unassigned"
)

// Assigner is the assignment engine.
type Assigner interface {
	AssignLead(ctx context.Context, leadID, toPersonnelID, assignedBy uuid.UUID, reason string) (domain.Lead, error)
	BulkAssign(ctx context.Context, leads []domain.Lead, strategy assignment.Strategy, assignedBy uuid.UUID, manualAssigneeID *uuid.UUID) (int, error)
}

// WithAssigner wires the assignment engine used by Reassign and BulkAssign.
func (s *Service) WithAssigner(assigner Assigner) *Service {
	s.assigner = assigner
	return s
}

// BulkUpdateStatus sets status on every lead the principal may edit.
// Leads that are missing, deleted or not editable are skipped.
func (s *Service) BulkUpdateStatus(ctx context.Context, principal access.Principal, req transport.BulkStatusRequest) (transport.BulkResultResponse, error) {
	status := domain.Status(req.Status)
	progress, _ := domain.ProgressFor(status)

	leads, err := s.repo.GetByIDs(ctx, req.LeadIDs)
	if err != nil {
		return transport.BulkResultResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp("leads.management.bulk_status")
	}

	updated := 0
	for _, lead := range leads {
		if !access.CanEdit(principal, lead) {
			continue
		}
		if err := s.repo.UpdateStatus(ctx, lead.ID, status, progress); err != nil {
			s.log.WithContext(ctx).Warn("bulk status update failed for lead", "lead_id", lead.ID.String(), "error", err)
			continue
		}
		updated++
		s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID, ChangedFields: []string{"status", "progress"}})
	}

	return transport.BulkResultResponse{
		Message: fmt.Sprintf("Successfully updated %d leads.", updated),
		Count:   updated,
	}, nil
}

// BulkDelete soft-deletes every lead the principal may edit.
func (s *Service) BulkDelete(ctx context.Context, principal access.Principal, req transport.BulkDeleteRequest) (transport.BulkResultResponse, error) {
	leads, err := s.repo.GetByIDs(ctx, req.LeadIDs)
	if err != nil {
		return transport.BulkResultResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp("leads.management.bulk_delete")
	}

	now := s.now()
	deleted := 0
	for _, lead := range leads {
		if !access.CanEdit(principal, lead) {
			continue
		}
		ok, err := s.repo.SoftDelete(ctx, lead.ID, now)
		if err != nil {
			s.log.WithContext(ctx).Warn("bulk delete failed for lead", "lead_id", lead.ID.String(), "error", err)
			continue
		}
		if ok {
			deleted++
			s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID, ChangedFields: softDeleteFields})
		}
	}

	return transport.BulkResultResponse{
		Message: fmt.Sprintf("Successfully deleted %d leads.", deleted),
		Count:   deleted,
	}, nil
}

// Reassign moves one lead to another person.
func (s *Service) Reassign(ctx context.Context, principal access.Principal, id uuid.UUID, req transport.ReassignRequest) (transport.LeadResponse, error) {
	lead, err := s.loadLive(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !access.CanEdit(principal, lead) {
		return transport.LeadResponse{}, apperr.Forbidden(msgNoReassign)
	}

	updated, err := s.assigner.AssignLead(ctx, id, req.AssigneeID, principal.ID, sanitize.Line(req.Reason))
	if err != nil {
		return transport.LeadResponse{}, err
	}
	return s.reload(ctx, updated), nil
}

// BulkAssign distributes the principal's accessible leads, or only the
// unassigned ones, with the chosen strategy.
func (s *Service) BulkAssign(ctx context.Context, principal access.Principal, req transport.BulkAssignRequest) (transport.BulkResultResponse, error) {
	if !principal.CanManageLeads() {
		return transport.BulkResultResponse{}, apperr.Forbidden(msgNoBulkAssign)
	}

	leads, err := s.repo.ListMatching(ctx, repository.ListParams{
		Scope:      access.AccessibleLeads(principal),
		Unassigned: req.Scope == scopeUnassigned,
	})
	if err != nil {
		return transport.BulkResultResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp("leads.management.bulk_assign")
	}
	if len(leads) == 0 {
		return transport.BulkResultResponse{}, apperr.Validation(msgNoLeads)
	}

	count, err := s.assigner.BulkAssign(ctx, leads, assignment.Strategy(req.Strategy), principal.ID, req.ManualAssigneeID)
	if err != nil {
		return transport.BulkResultResponse{}, err
	}
	return transport.BulkResultResponse{
		Message: fmt.Sprintf("Successfully assigned %d leads.", count),
		Count:   count,
	}, nil
}

package management

import (
	"context"
	"errors"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/transport"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

// LogCommunication appends a communication and stamps last contact. A new
// lead moves to contacted unless the entry is an e-mail or an explicit
// status was given.
func (s *Service) LogCommunication(ctx context.Context, principal access.Principal, leadID uuid.UUID, req transport.LogCommunicationRequest) (transport.LeadResponse, error) {
	lead, err := s.loadLive(ctx, leadID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !access.CanView(principal, lead) {
		return transport.LeadResponse{}, apperr.Forbidden(msgNoAccess)
	}

	now := s.now()
	today := domain.DateOnly(now)
	commType := domain.CommunicationType(req.Type)
	changed := []string{"last_contact"}

	lead.LastContact = &today
	if req.NewStatus != nil && *req.NewStatus != "" {
		lead.Status = domain.Status(*req.NewStatus)
		lead.ApplyStatusProgress()
		changed = append(changed, "status", "progress")
	} else if lead.Status == domain.StatusNew && commType != domain.CommEmail {
		lead.Status = domain.StatusContacted
		lead.ApplyStatusProgress()
		changed = append(changed, "status", "progress")
	}
	if followUp := parseDate(req.NextFollowUp); followUp != nil {
		lead.FollowUpDate = followUp
		changed = append(changed, "follow_up_date")
	}

	comm := domain.Communication{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		Type:      commType,
		Note:      sanitize.Text(req.Note),
		UserID:    principal.ID,
		Date:      today,
		CreatedAt: now,
	}

	updated, err := s.repo.RecordCommunication(ctx, comm, lead)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to log communication", err).WithOp("leads.management.log_communication")
	}

	s.publish(ctx, events.CommunicationCreated{
		BaseEvent:       events.NewBaseEvent(),
		CommunicationID: comm.ID,
		LeadID:          lead.ID,
		AuthorID:        principal.ID,
		Type:            string(comm.Type),
	})
	s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: lead.ID, ChangedFields: changed})

	return s.reload(ctx, updated), nil
}

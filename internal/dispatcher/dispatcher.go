// Package dispatcher reacts to lead-side events with score recomputation
// and persistent notifications. It subscribes to the synchronous bus, so a
// write returns only after every reaction below has run.
package dispatcher

import (
	"context"
	"errors"
	"fmt"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

const scoreField = "quality_score"

// Scorer recomputes a lead's quality score.
type Scorer interface {
	Rescore(ctx context.Context, leadID uuid.UUID) (int, bool, error)
}

type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

type PersonnelReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
}

// Notifier stores a notification for a user.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification) (domain.Notification, error)
}

type Dispatcher struct {
	scorer    Scorer
	leads     LeadReader
	personnel PersonnelReader
	notifier  Notifier
	log       *logger.Logger
}

func New(scorer Scorer, leads LeadReader, personnel PersonnelReader, notifier Notifier, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		scorer:    scorer,
		leads:     leads,
		personnel: personnel,
		notifier:  notifier,
		log:       log,
	}
}

// Register subscribes the dispatcher to the lead events it reacts to.
func (d *Dispatcher) Register(bus *events.InMemoryBus) {
	bus.Subscribe(events.LeadSaved{}.EventName(), d)
	bus.Subscribe(events.CommunicationCreated{}.EventName(), d)
	bus.Subscribe(events.AssignmentCreated{}.EventName(), d)
}

// Handle routes events to the appropriate handler method.
func (d *Dispatcher) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.LeadSaved:
		return d.handleLeadSaved(ctx, e)
	case events.CommunicationCreated:
		return d.handleCommunicationCreated(ctx, e)
	case events.AssignmentCreated:
		return d.handleAssignmentCreated(ctx, e)
	default:
		return nil
	}
}

// A write that touched only the score is the scorer's own update.
// Deleted leads are skipped inside Rescore.
func (d *Dispatcher) handleLeadSaved(ctx context.Context, e events.LeadSaved) error {
	if e.OnlyChanged(scoreField) {
		return nil
	}
	_, _, err := d.scorer.Rescore(ctx, e.LeadID)
	return err
}

// The score is recomputed before the activity notification is considered.
// A failed rescore does not suppress the notification.
func (d *Dispatcher) handleCommunicationCreated(ctx context.Context, e events.CommunicationCreated) error {
	_, _, scoreErr := d.scorer.Rescore(ctx, e.LeadID)
	if scoreErr != nil {
		d.log.WithContext(ctx).Warn("rescore after communication failed", "lead_id", e.LeadID.String(), "error", scoreErr)
	}

	lead, err := d.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return errors.Join(scoreErr, fmt.Errorf("load lead %s: %w", e.LeadID, err))
	}
	if lead.AssignedTo == nil || *lead.AssignedTo == e.AuthorID {
		return scoreErr
	}

	author, err := d.personnel.GetByID(ctx, e.AuthorID)
	if err != nil {
		return errors.Join(scoreErr, fmt.Errorf("load author %s: %w", e.AuthorID, err))
	}

	message := fmt.Sprintf("New %s logged on %s by %s",
		domain.CommunicationType(e.Type).DisplayName(), lead.Company, author.Name())
	leadID := lead.ID
	_, err = d.notifier.Notify(ctx, domain.Notification{
		UserID:   *lead.AssignedTo,
		Message:  message,
		LeadID:   &leadID,
		Type:     domain.NotificationActivity,
		MetaData: map[string]any{"communication_id": e.CommunicationID.String()},
	})
	return errors.Join(scoreErr, err)
}

func (d *Dispatcher) handleAssignmentCreated(ctx context.Context, e events.AssignmentCreated) error {
	lead, err := d.leads.GetByID(ctx, e.LeadID)
	if err != nil {
		return fmt.Errorf("load lead %s: %w", e.LeadID, err)
	}

	leadID := lead.ID
	_, err = d.notifier.Notify(ctx, domain.Notification{
		UserID:   e.ToPersonnelID,
		Message:  "You have been assigned new lead: " + lead.Company,
		LeadID:   &leadID,
		Type:     domain.NotificationAssignment,
		MetaData: map[string]any{"assignment_id": e.AssignmentID.String()},
	})
	if err != nil {
		return err
	}
	d.log.WithContext(ctx).Debug("assignment notification sent",
		"lead_id", leadID.String(),
		"personnel_id", e.ToPersonnelID.String(),
	)
	return nil
}

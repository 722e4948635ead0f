package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/email"
	leadrepo "leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// SnapshotCapturer writes today's analytics snapshot.
type SnapshotCapturer interface {
	CaptureDailySnapshot(ctx context.Context) (domain.DailySnapshot, error)
}

type PersonnelReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
}

type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
}

// Handlers holds the task handlers. They are plain methods so they can be
// exercised without a Redis server.
type Handlers struct {
	snapshots SnapshotCapturer
	personnel PersonnelReader
	leads     LeadReader
	sender    email.Sender
	baseURL   string
	log       *logger.Logger
}

func NewHandlers(snapshots SnapshotCapturer, personnel PersonnelReader, leads LeadReader, sender email.Sender, baseURL string, log *logger.Logger) *Handlers {
	return &Handlers{
		snapshots: snapshots,
		personnel: personnel,
		leads:     leads,
		sender:    sender,
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
	}
}

// Register binds every task type to its handler.
func (h *Handlers) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskSnapshotCapture, h.HandleSnapshotCapture)
	mux.HandleFunc(TaskAssignmentEmail, h.HandleAssignmentEmail)
}

// HandleSnapshotCapture returns the error so asynq retries; the worker keeps
// serving other tasks.
func (h *Handlers) HandleSnapshotCapture(ctx context.Context, _ *asynq.Task) error {
	started := time.Now()
	snap, err := h.snapshots.CaptureDailySnapshot(ctx)
	if err != nil {
		h.log.JobEvent(TaskSnapshotCapture, err)
		return err
	}
	h.log.JobEvent(TaskSnapshotCapture, nil,
		"date", snap.Date.Format(time.DateOnly),
		"total_leads", snap.TotalLeads,
		"duration_ms", time.Since(started).Milliseconds(),
	)
	return nil
}

func (h *Handlers) HandleAssignmentEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseAssignmentEmailPayload(task)
	if err != nil {
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}

	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", asynq.SkipRetry)
	}

	recipient, err := h.personnel.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if strings.TrimSpace(recipient.Email) == "" || !recipient.IsActive {
		h.log.Debug("assignment email skipped", "user_id", payload.UserID, "reason", "no email or inactive")
		return nil
	}

	msg := email.Assignment{
		RecipientName: recipient.Name(),
		Message:       payload.Message,
	}
	if payload.LeadID != nil {
		if err := h.describeLead(ctx, *payload.LeadID, &msg); err != nil {
			return err
		}
	}

	if err := h.sender.SendAssignmentEmail(ctx, recipient.Email, msg); err != nil {
		h.log.JobEvent(TaskAssignmentEmail, err, "notification_id", payload.NotificationID)
		return err
	}
	h.log.JobEvent(TaskAssignmentEmail, nil, "notification_id", payload.NotificationID)
	return nil
}

func (h *Handlers) describeLead(ctx context.Context, rawID string, msg *email.Assignment) error {
	leadID, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("%w: invalid lead id", asynq.SkipRetry)
	}
	lead, err := h.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadrepo.ErrNotFound) {
		return fmt.Errorf("%w: lead not found", asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if lead.IsDeleted {
		return fmt.Errorf("%w: lead deleted", asynq.SkipRetry)
	}

	msg.Company = lead.Company
	msg.ContactName = lead.ContactName
	msg.Status = lead.Status.DisplayName()
	if lead.FollowUpDate != nil {
		msg.FollowUp = lead.FollowUpDate.Format(time.DateOnly)
	}
	if h.baseURL != "" {
		msg.LeadURL = h.baseURL + "/leads/" + lead.ID.String()
	}
	return nil
}

// Package notification owns persistent in-app notifications and their
// delivery. Domain modules publish events; this module turns
// NotificationCreated into an SSE push and, for assignments, a queued e-mail.
package notification

import (
	"context"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	apphttp "leadpipeline_backend/internal/http"
	notifhandler "leadpipeline_backend/internal/notification/handler"
	"leadpipeline_backend/internal/notification/inapp"
	"leadpipeline_backend/internal/notification/sse"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// EmailEnqueuer hands assignment e-mails to the background worker.
type EmailEnqueuer interface {
	EnqueueAssignmentEmail(ctx context.Context, notificationID, userID uuid.UUID, leadID *uuid.UUID, message string) error
}

// Module handles notification storage, routes and delivery.
type Module struct {
	log          *logger.Logger
	sse          *sse.Service
	mailer       EmailEnqueuer
	inAppService *inapp.Service
	inAppHandler *notifhandler.HTTPHandler
}

// New creates a new notification module backed by Postgres.
func New(pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) *Module {
	return newModule(inapp.NewRepository(pool), bus, log)
}

func newModule(store inapp.Store, bus events.Bus, log *logger.Logger) *Module {
	inAppSvc := inapp.NewService(store, bus, log)
	stream := sse.New(log)

	return &Module{
		log:          log,
		sse:          stream,
		inAppService: inAppSvc,
		inAppHandler: notifhandler.NewHTTPHandler(inAppSvc, stream),
	}
}

// Name returns the module identifier.
func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// InAppService exposes the in-app notification service for the dispatcher.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

// SSE exposes the stream service so the server can close it on shutdown.
func (m *Module) SSE() *sse.Service { return m.sse }

// SetEmailEnqueuer enables assignment e-mails. Without one they are skipped.
func (m *Module) SetEmailEnqueuer(e EmailEnqueuer) { m.mailer = e }

// RegisterHandlers subscribes the delivery side effects to the event bus.
func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.NotificationCreated{}.EventName(), m)
	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.NotificationCreated:
		return m.handleNotificationCreated(ctx, e)
	default:
		m.log.WithContext(ctx).Warn("unhandled event type", "event", event.EventName())
		return nil
	}
}

func (m *Module) handleNotificationCreated(ctx context.Context, e events.NotificationCreated) error {
	m.sse.Publish(e.UserID, sse.Event{
		Type:    sse.EventNotification,
		LeadID:  e.LeadID,
		Message: e.Message,
		Data: map[string]any{
			"id":               e.NotificationID,
			"notificationType": e.Type,
		},
	})

	if e.Type != string(domain.NotificationAssignment) || m.mailer == nil {
		return nil
	}
	if err := m.mailer.EnqueueAssignmentEmail(ctx, e.NotificationID, e.UserID, e.LeadID, e.Message); err != nil {
		m.log.WithContext(ctx).Error("failed to enqueue assignment email", "error", err, "notification_id", e.NotificationID.String())
		return err
	}
	return nil
}

var _ apphttp.Module = (*Module)(nil)

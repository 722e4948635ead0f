package inapp

import (
	"context"
	"strings"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	dynamicFollowUpPrefix = "dynamic_followup_"
	dynamicPrefix         = "dynamic"

	msgAcknowledged = "acknowledge"
	msgMarkedRead   = "Marked as read"
	msgAllMarked    = "All marked as read"
	msgNotFound     = "Notification not found"
)

// Store is the persistence the service needs.
type Store interface {
	Create(ctx context.Context, n domain.Notification) (domain.Notification, error)
	ListUnread(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error)
	DueFollowUps(ctx context.Context, userID uuid.UUID, today time.Time) ([]FollowUp, error)
	MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

// Item is a notification as the client sees it.
type Item struct {
	ID               string         `json:"id"`
	UserID           uuid.UUID      `json:"userId"`
	Message          string         `json:"message"`
	LeadID           *uuid.UUID     `json:"leadId,omitempty"`
	NotificationType string         `json:"notificationType"`
	IsRead           bool           `json:"isRead"`
	Dynamic          bool           `json:"dynamic"`
	MetaData         map[string]any `json:"metaData"`
	CreatedAt        time.Time      `json:"createdAt"`
}

type Service struct {
	repo Store
	bus  events.Bus
	log  *logger.Logger
	now  func() time.Time
}

func NewService(repo Store, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, bus: bus, log: log, now: time.Now}
}

// Notify persists the notification and announces it on the bus. Delivery
// (SSE, e-mail) happens off the caller's path.
func (s *Service) Notify(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if s == nil || s.repo == nil {
		return domain.Notification{}, apperr.Internal("in-app notification service not configured")
	}

	stored, err := s.repo.Create(ctx, n)
	if err != nil {
		if s.log != nil {
			s.log.WithContext(ctx).Error("failed to persist in-app notification", "error", err, "userId", n.UserID)
		}
		return domain.Notification{}, err
	}

	if s.bus != nil {
		id, _ := uuid.Parse(stored.ID)
		s.bus.Publish(ctx, events.NotificationCreated{
			BaseEvent:      events.NewBaseEvent(),
			NotificationID: id,
			UserID:         stored.UserID,
			LeadID:         stored.LeadID,
			Type:           string(stored.Type),
			Message:        stored.Message,
		})
	}
	return stored, nil
}

// List returns unread stored notifications followed by follow-ups due
// today or earlier. Follow-up entries are computed on each call and never
// stored.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	stored, err := s.repo.ListUnread(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	due, err := s.repo.DueFollowUps(ctx, userID, domain.DateOnly(now))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(stored)+len(due))
	for _, n := range stored {
		items = append(items, toItem(n))
	}
	for _, f := range due {
		items = append(items, toItem(DynamicFollowUp(userID, f, now)))
	}
	return items, nil
}

// DynamicFollowUp builds the transient reminder for a due follow-up.
func DynamicFollowUp(userID uuid.UUID, f FollowUp, now time.Time) domain.Notification {
	leadID := f.LeadID
	return domain.Notification{
		ID:        dynamicFollowUpPrefix + f.LeadID.String(),
		UserID:    userID,
		Message:   "Follow-up due for " + f.Company,
		LeadID:    &leadID,
		Type:      domain.NotificationFollowUp,
		Dynamic:   true,
		MetaData:  map[string]any{"due_date": f.DueDate.Format(time.DateOnly)},
		CreatedAt: now,
	}
}

// MarkRead marks one notification read and returns the response message.
// Dynamic ids are acknowledged without a write.
func (s *Service) MarkRead(ctx context.Context, userID uuid.UUID, id string) (string, error) {
	if strings.HasPrefix(id, dynamicPrefix) {
		return msgAcknowledged, nil
	}
	notificationID, err := uuid.Parse(id)
	if err != nil {
		return "", apperr.NotFound(msgNotFound)
	}
	found, err := s.repo.MarkRead(ctx, userID, notificationID)
	if err != nil {
		return "", err
	}
	if !found {
		return "", apperr.NotFound(msgNotFound)
	}
	return msgMarkedRead, nil
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (string, error) {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return "", err
	}
	return msgAllMarked, nil
}

func toItem(n domain.Notification) Item {
	meta := n.MetaData
	if meta == nil {
		meta = map[string]any{}
	}
	return Item{
		ID:               n.ID,
		UserID:           n.UserID,
		Message:          n.Message,
		LeadID:           n.LeadID,
		NotificationType: string(n.Type),
		IsRead:           n.IsRead,
		Dynamic:          n.Dynamic,
		MetaData:         meta,
		CreatedAt:        n.CreatedAt,
	}
}

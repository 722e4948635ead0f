package inapp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	opCreate       = "notification.inapp.repository.create"
	opListUnread   = "notification.inapp.repository.list_unread"
	opDueFollowUps = "notification.inapp.repository.due_follow_ups"
	opMarkRead     = "notification.inapp.repository.mark_read"
	opMarkAllRead  = "notification.inapp.repository.mark_all_read"

	errRepoNotConfigured = "in-app notification repository not configured"
	errUserIDRequired    = "userId is required"
)

// FollowUp is a lead whose follow-up date has come.
type FollowUp struct {
	LeadID  uuid.UUID
	Company string
	DueDate time.Time
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Create(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if r == nil || r.pool == nil {
		return domain.Notification{}, apperr.Internal(errRepoNotConfigured).WithOp(opCreate)
	}
	if n.UserID == uuid.Nil {
		return domain.Notification{}, apperr.Validation(errUserIDRequired).WithOp(opCreate)
	}
	if n.Message == "" {
		return domain.Notification{}, apperr.Validation("message is required").WithOp(opCreate)
	}

	id := uuid.New()
	meta := n.MetaData
	if meta == nil {
		meta = map[string]any{}
	}

	var created domain.Notification
	var storedID uuid.UUID
	var notifType string
	err := r.pool.QueryRow(ctx, `
		INSERT INTO notifications (id, user_id, message, lead_id, notification_type, meta_data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, user_id, message, lead_id, notification_type, is_read, meta_data, created_at
	`, id, n.UserID, n.Message, n.LeadID, string(n.Type), meta).Scan(
		&storedID, &created.UserID, &created.Message, &created.LeadID, &notifType, &created.IsRead, &created.MetaData, &created.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return domain.Notification{}, apperr.Validation("invalid userId or leadId").WithOp(opCreate)
		}
		return domain.Notification{}, apperr.Internal(fmt.Sprintf("create notification failed: %v", err)).WithOp(opCreate)
	}
	created.ID = storedID.String()
	created.Type = domain.NotificationType(notifType)
	return created, nil
}

// ListUnread returns the user's unread stored notifications, newest first.
func (r *Repository) ListUnread(ctx context.Context, userID uuid.UUID) ([]domain.Notification, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opListUnread)
	}
	if userID == uuid.Nil {
		return nil, apperr.Validation(errUserIDRequired).WithOp(opListUnread)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, message, lead_id, notification_type, is_read, meta_data, created_at
		FROM notifications
		WHERE user_id = $1 AND is_read = FALSE
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("list notifications query failed: %v", err)).WithOp(opListUnread)
	}
	defer rows.Close()

	items := make([]domain.Notification, 0)
	for rows.Next() {
		var n domain.Notification
		var id uuid.UUID
		var notifType string
		if scanErr := rows.Scan(&id, &n.UserID, &n.Message, &n.LeadID, &notifType, &n.IsRead, &n.MetaData, &n.CreatedAt); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan notifications failed: %v", scanErr)).WithOp(opListUnread)
		}
		n.ID = id.String()
		n.Type = domain.NotificationType(notifType)
		items = append(items, n)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate notifications failed: %v", rowsErr)).WithOp(opListUnread)
	}
	return items, nil
}

// DueFollowUps lists live leads assigned to the user in an active status
// whose follow-up date is on or before today.
func (r *Repository) DueFollowUps(ctx context.Context, userID uuid.UUID, today time.Time) ([]FollowUp, error) {
	if r == nil || r.pool == nil {
		return nil, apperr.Internal(errRepoNotConfigured).WithOp(opDueFollowUps)
	}

	statuses := make([]string, 0, len(domain.ActiveWorkloadStatuses))
	for _, s := range domain.ActiveWorkloadStatuses {
		statuses = append(statuses, string(s))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, company, follow_up_date
		FROM leads
		WHERE assigned_to = $1
			AND NOT is_deleted
			AND follow_up_date <= $2
			AND status = ANY($3)
		ORDER BY follow_up_date, id
	`, userID, today, statuses)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("due follow-ups query failed: %v", err)).WithOp(opDueFollowUps)
	}
	defer rows.Close()

	items := make([]FollowUp, 0)
	for rows.Next() {
		var f FollowUp
		if scanErr := rows.Scan(&f.LeadID, &f.Company, &f.DueDate); scanErr != nil {
			return nil, apperr.Internal(fmt.Sprintf("scan follow-ups failed: %v", scanErr)).WithOp(opDueFollowUps)
		}
		items = append(items, f)
	}
	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, apperr.Internal(fmt.Sprintf("iterate follow-ups failed: %v", rowsErr)).WithOp(opDueFollowUps)
	}
	return items, nil
}

// MarkRead flags one of the user's notifications. found is false when no
// such notification belongs to the user.
func (r *Repository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) (bool, error) {
	if r == nil || r.pool == nil {
		return false, apperr.Internal(errRepoNotConfigured).WithOp(opMarkRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	if err != nil {
		return false, apperr.Internal(fmt.Sprintf("mark notification read failed: %v", err)).WithOp(opMarkRead)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *Repository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	if r == nil || r.pool == nil {
		return 0, apperr.Internal(errRepoNotConfigured).WithOp(opMarkAllRead)
	}

	tag, err := r.pool.Exec(ctx, `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`, userID)
	if err != nil {
		return 0, apperr.Internal(fmt.Sprintf("mark all notifications read failed: %v", err)).WithOp(opMarkAllRead)
	}
	return tag.RowsAffected(), nil
}

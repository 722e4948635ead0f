package repository

import (
	"context"
	"errors"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrCommunicationNotFound = errors.New("communication not found")
	ErrAssignmentNotFound    = errors.New("assignment not found")
)

// ApplyAssignment moves the lead to a.ToPersonnelID and appends both audit
// rows in one transaction, so a change of assignee never exists without
// its Assignment and reassignment Communication.
func (r *Repository) ApplyAssignment(ctx context.Context, a domain.Assignment, note domain.Communication) (domain.Lead, error) {
	var lead domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		lead, err = scanLead(tx.QueryRow(ctx, `
			UPDATE leads AS l SET assigned_to = $2, updated_at = now()
			WHERE l.id = $1 AND NOT l.is_deleted
			RETURNING `+leadColumns, a.LeadID, a.ToPersonnelID))
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		if err := insertAssignment(ctx, tx, a); err != nil {
			return err
		}
		return insertCommunication(ctx, tx, note)
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

// RecordCommunication stores comm and the lead fields it changed
// (last contact, status, follow-up) together.
func (r *Repository) RecordCommunication(ctx context.Context, comm domain.Communication, lead domain.Lead) (domain.Lead, error) {
	var updated domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = updateLead(ctx, tx, lead)
		if err != nil {
			return err
		}
		return insertCommunication(ctx, tx, comm)
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return updated, nil
}

func insertAssignment(ctx context.Context, q db.Querier, a domain.Assignment) error {
	_, err := q.Exec(ctx, `
		INSERT INTO assignments (id, lead_id, from_personnel_id, to_personnel_id, assigned_by_id, reason, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, a.ID, a.LeadID, a.FromPersonnelID, a.ToPersonnelID, a.AssignedByID, a.Reason, a.Date, a.CreatedAt)
	return err
}

func insertCommunication(ctx context.Context, q db.Querier, c domain.Communication) error {
	_, err := q.Exec(ctx, `
		INSERT INTO communications (id, lead_id, communication_type, note, user_id, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, c.ID, c.LeadID, string(c.Type), c.Note, c.UserID, c.Date, c.CreatedAt)
	return err
}

func (r *Repository) CountCommunications(ctx context.Context, leadID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM communications WHERE lead_id = $1`, leadID).Scan(&n)
	return n, err
}

const communicationColumns = `id, lead_id, communication_type, note, user_id, date, created_at`

func scanCommunication(row pgx.Row) (domain.Communication, error) {
	var c domain.Communication
	var commType string
	if err := row.Scan(&c.ID, &c.LeadID, &commType, &c.Note, &c.UserID, &c.Date, &c.CreatedAt); err != nil {
		return domain.Communication{}, err
	}
	c.Type = domain.CommunicationType(commType)
	return c, nil
}

func (r *Repository) GetCommunication(ctx context.Context, id uuid.UUID) (domain.Communication, error) {
	c, err := scanCommunication(r.pool.QueryRow(ctx, "SELECT "+communicationColumns+" FROM communications WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Communication{}, ErrCommunicationNotFound
	}
	return c, err
}

// ListCommunications returns the lead's communications, newest first.
func (r *Repository) ListCommunications(ctx context.Context, leadID uuid.UUID) ([]domain.Communication, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+communicationColumns+`
		FROM communications WHERE lead_id = $1
		ORDER BY date DESC, created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Communication, 0)
	for rows.Next() {
		c, err := scanCommunication(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

const assignmentColumns = `id, lead_id, from_personnel_id, to_personnel_id, assigned_by_id, reason, date, created_at`

func scanAssignment(row pgx.Row) (domain.Assignment, error) {
	var a domain.Assignment
	err := row.Scan(&a.ID, &a.LeadID, &a.FromPersonnelID, &a.ToPersonnelID, &a.AssignedByID, &a.Reason, &a.Date, &a.CreatedAt)
	return a, err
}

func (r *Repository) GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error) {
	a, err := scanAssignment(r.pool.QueryRow(ctx, "SELECT "+assignmentColumns+" FROM assignments WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Assignment{}, ErrAssignmentNotFound
	}
	return a, err
}

// ListAssignments returns the lead's reassignment history, newest first.
func (r *Repository) ListAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+assignmentColumns+`
		FROM assignments WHERE lead_id = $1
		ORDER BY date DESC, created_at DESC`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

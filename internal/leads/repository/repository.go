package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `l.id, l.company, l.contact_name, l.position, l.email, l.phone, l.comments,
	l.follow_up_date, l.status, l.priority, l.division, l.deal_value, l.probability_of_completion,
	l.last_contact, l.assigned_to, l.product_id, l.team_id, l.progress, l.quality_score,
	l.created_by, l.created_at, l.updated_at, l.is_deleted, l.deleted_at`

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	var status, priority, division string
	err := row.Scan(
		&lead.ID, &lead.Company, &lead.ContactName, &lead.Position, &lead.Email, &lead.Phone, &lead.Comments,
		&lead.FollowUpDate, &status, &priority, &division, &lead.DealValue, &lead.ProbabilityOfCompletion,
		&lead.LastContact, &lead.AssignedTo, &lead.ProductID, &lead.TeamID, &lead.Progress, &lead.QualityScore,
		&lead.CreatedBy, &lead.CreatedAt, &lead.UpdatedAt, &lead.IsDeleted, &lead.DeletedAt,
	)
	if err != nil {
		return domain.Lead{}, err
	}
	lead.Status = domain.Status(status)
	lead.Priority = domain.Priority(priority)
	lead.Division = domain.Division(division)
	return lead, nil
}

func collectLeads(rows pgx.Rows) ([]domain.Lead, error) {
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return leads, nil
}

// GetByID returns the lead including soft-deleted rows.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	return getLead(ctx, r.pool, id, false)
}

func getLead(ctx context.Context, q db.Querier, id uuid.UUID, forUpdate bool) (domain.Lead, error) {
	query := "SELECT " + leadColumns + " FROM leads l WHERE l.id = $1"
	if forUpdate {
		query += " FOR UPDATE"
	}
	lead, err := scanLead(q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return lead, err
}

// GetByIDs returns the non-deleted leads among ids, in the order given.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	if len(ids) == 0 {
		return []domain.Lead{}, nil
	}
	rows, err := r.pool.Query(ctx, "SELECT "+leadColumns+` FROM leads l
		JOIN unnest($1::uuid[]) WITH ORDINALITY AS wanted(id, ord) ON wanted.id = l.id
		WHERE NOT l.is_deleted
		ORDER BY wanted.ord`, ids)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

type ListParams struct {
	Scope      access.Scope
	Search     string
	Status     *domain.Status
	Division   *domain.Division
	AssignedTo *uuid.UUID
	TeamID     *uuid.UUID
	Unassigned bool
	// HasFollowUp keeps only leads with a follow-up date.
	HasFollowUp bool
	Offset      int
	Limit       int
}

func buildLeadListWhere(params ListParams) (string, []interface{}, int) {
	scopeSQL, args := params.Scope.SQL("l", 1)
	whereClauses := []string{scopeSQL}
	argIdx := len(args) + 1

	addEquals := func(column string, value interface{}) {
		whereClauses = append(whereClauses, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if params.Status != nil {
		addEquals("l.status", string(*params.Status))
	}
	if params.Division != nil {
		addEquals("l.division", string(*params.Division))
	}
	if params.AssignedTo != nil {
		addEquals("l.assigned_to", *params.AssignedTo)
	}
	if params.TeamID != nil {
		addEquals("l.team_id", *params.TeamID)
	}
	if params.Unassigned {
		whereClauses = append(whereClauses, "l.assigned_to IS NULL")
	}
	if params.HasFollowUp {
		whereClauses = append(whereClauses, "l.follow_up_date IS NOT NULL")
	}
	if search := strings.TrimSpace(params.Search); search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(l.company ILIKE $%d OR l.contact_name ILIKE $%d OR l.email ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, "%"+search+"%")
		argIdx++
	}

	return strings.Join(whereClauses, " AND "), args, argIdx
}

// List returns one page of leads matching params, newest first, and the total count.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	whereClause, args, argIdx := buildLeadListWhere(params)

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM leads l WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM leads l
		WHERE %s
		ORDER BY l.created_at DESC, l.id
		LIMIT $%d OFFSET $%d
	`, leadColumns, whereClause, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// ListMatching returns every lead matching params without paging, oldest
// first. Bulk assignment relies on this order being stable.
func (r *Repository) ListMatching(ctx context.Context, params ListParams) ([]domain.Lead, error) {
	whereClause, args, _ := buildLeadListWhere(params)
	query := fmt.Sprintf("SELECT %s FROM leads l WHERE %s ORDER BY l.created_at, l.id", leadColumns, whereClause)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectLeads(rows)
}

// CompanyExists compares trimmed, case-folded company names over every lead,
// deleted ones included.
func (r *Repository) CompanyExists(ctx context.Context, company string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM leads WHERE lower(btrim(company)) = lower(btrim($1)))
	`, company).Scan(&exists)
	return exists, err
}

// Create inserts the lead and, when initial is set, its first assignment
// record in the same transaction.
func (r *Repository) Create(ctx context.Context, lead domain.Lead, initial *domain.Assignment) (domain.Lead, error) {
	var created domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		created, err = scanLead(tx.QueryRow(ctx, `
			INSERT INTO leads AS l (
				id, company, contact_name, position, email, phone, comments, follow_up_date,
				status, priority, division, deal_value, probability_of_completion, last_contact,
				assigned_to, product_id, team_id, progress, quality_score, created_by
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
			RETURNING `+leadColumns,
			lead.ID, lead.Company, lead.ContactName, lead.Position, lead.Email, lead.Phone, lead.Comments, lead.FollowUpDate,
			string(lead.Status), string(lead.Priority), string(lead.Division), lead.DealValue, lead.ProbabilityOfCompletion, lead.LastContact,
			lead.AssignedTo, lead.ProductID, lead.TeamID, lead.Progress, lead.QualityScore, lead.CreatedBy,
		))
		if err != nil {
			return err
		}
		if initial != nil {
			return insertAssignment(ctx, tx, *initial)
		}
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return created, nil
}

// Update writes every mutable column of lead and, when assignment is set,
// appends it in the same transaction.
func (r *Repository) Update(ctx context.Context, lead domain.Lead, assignment *domain.Assignment) (domain.Lead, error) {
	var updated domain.Lead
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		updated, err = updateLead(ctx, tx, lead)
		if err != nil {
			return err
		}
		if assignment != nil {
			return insertAssignment(ctx, tx, *assignment)
		}
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return updated, nil
}

func updateLead(ctx context.Context, q db.Querier, lead domain.Lead) (domain.Lead, error) {
	updated, err := scanLead(q.QueryRow(ctx, `
		UPDATE leads AS l SET
			company = $2, contact_name = $3, position = $4, email = $5, phone = $6, comments = $7,
			follow_up_date = $8, status = $9, priority = $10, division = $11, deal_value = $12,
			last_contact = $13, assigned_to = $14, product_id = $15, team_id = $16, progress = $17,
			updated_at = now()
		WHERE l.id = $1
		RETURNING `+leadColumns,
		lead.ID, lead.Company, lead.ContactName, lead.Position, lead.Email, lead.Phone, lead.Comments,
		lead.FollowUpDate, string(lead.Status), string(lead.Priority), string(lead.Division), lead.DealValue,
		lead.LastContact, lead.AssignedTo, lead.ProductID, lead.TeamID, lead.Progress,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	return updated, err
}

// SoftDelete marks the lead deleted. Returns false when it already was.
func (r *Repository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET is_deleted = true, deleted_at = $2, status = $3, progress = 0, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`, id, at, string(domain.StatusInactive))
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UpdateStatus sets status and progress on a non-deleted lead.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, progress int) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET status = $2, progress = $3, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`, id, string(status), progress)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateQualityScore touches only the quality_score column.
func (r *Repository) UpdateQualityScore(ctx context.Context, id uuid.UUID, score int) error {
	tag, err := r.pool.Exec(ctx, `UPDATE leads SET quality_score = $2 WHERE id = $1 AND NOT is_deleted`, id, score)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

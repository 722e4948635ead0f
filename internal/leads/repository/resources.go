package repository

import (
	"context"
	"errors"

	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
)

var (
	ErrResourceNotFound = errors.New("resource assignment not found")
	ErrCostNotFound     = errors.New("material cost not found")
)

func (r *Repository) ListResources(ctx context.Context, leadID uuid.UUID) ([]domain.ResourceAssignment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, personnel_id, role, daily_rate, days_allocated, created_at, updated_at
		FROM resource_assignments WHERE lead_id = $1
		ORDER BY created_at
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.ResourceAssignment, 0)
	for rows.Next() {
		var item domain.ResourceAssignment
		if err := rows.Scan(&item.ID, &item.LeadID, &item.PersonnelID, &item.Role, &item.DailyRate,
			&item.DaysAllocated, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// UpsertResource allocates a person to a lead. A second allocation of the
// same person replaces role, rate and days.
func (r *Repository) UpsertResource(ctx context.Context, item domain.ResourceAssignment) (domain.ResourceAssignment, error) {
	var out domain.ResourceAssignment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO resource_assignments (id, lead_id, personnel_id, role, daily_rate, days_allocated)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (lead_id, personnel_id) DO UPDATE SET
			role = EXCLUDED.role,
			daily_rate = EXCLUDED.daily_rate,
			days_allocated = EXCLUDED.days_allocated,
			updated_at = now()
		RETURNING id, lead_id, personnel_id, role, daily_rate, days_allocated, created_at, updated_at
	`, item.ID, item.LeadID, item.PersonnelID, item.Role, item.DailyRate, item.DaysAllocated).Scan(
		&out.ID, &out.LeadID, &out.PersonnelID, &out.Role, &out.DailyRate, &out.DaysAllocated, &out.CreatedAt, &out.UpdatedAt,
	)
	return out, err
}

func (r *Repository) DeleteResource(ctx context.Context, leadID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resource_assignments WHERE id = $1 AND lead_id = $2`, id, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrResourceNotFound
	}
	return nil
}

func (r *Repository) ListMaterialCosts(ctx context.Context, leadID uuid.UUID) ([]domain.MaterialCost, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, name, cost, created_at
		FROM material_costs WHERE lead_id = $1
		ORDER BY created_at
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.MaterialCost, 0)
	for rows.Next() {
		var item domain.MaterialCost
		if err := rows.Scan(&item.ID, &item.LeadID, &item.Name, &item.Cost, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

func (r *Repository) AddMaterialCost(ctx context.Context, item domain.MaterialCost) (domain.MaterialCost, error) {
	var out domain.MaterialCost
	err := r.pool.QueryRow(ctx, `
		INSERT INTO material_costs (id, lead_id, name, cost)
		VALUES ($1, $2, $3, $4)
		RETURNING id, lead_id, name, cost, created_at
	`, item.ID, item.LeadID, item.Name, item.Cost).Scan(&out.ID, &out.LeadID, &out.Name, &out.Cost, &out.CreatedAt)
	return out, err
}

func (r *Repository) DeleteMaterialCost(ctx context.Context, leadID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM material_costs WHERE id = $1 AND lead_id = $2`, id, leadID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrCostNotFound
	}
	return nil
}

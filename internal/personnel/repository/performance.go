package repository

import (
	"context"
	"fmt"

	"leadpipeline_backend/internal/domain"
)

// PerformerFilter narrows the ranking by division. With AllDivisions unset,
// a nil Division matches only personnel without a division.
type PerformerFilter struct {
	AllDivisions bool
	Division     *domain.Division
}

// TopPerformers ranks active personnel by the total deal value of their
// non-deleted assigned leads. People with no such leads are left out.
func (r *Repository) TopPerformers(ctx context.Context, filter PerformerFilter, limit int) ([]domain.PersonnelPerformance, error) {
	args := []any{string(domain.StatusWon), limit}
	where := "p.is_active"
	switch {
	case filter.AllDivisions:
	case filter.Division == nil:
		where += " AND p.division IS NULL"
	default:
		where += fmt.Sprintf(" AND p.division = $%d", len(args)+1)
		args = append(args, string(*filter.Division))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+personnelColumns+`,
			COUNT(l.id) AS leads_count,
			COALESCE(SUM(l.deal_value), 0)::float8 AS total_value,
			COALESCE(SUM(l.deal_value) FILTER (WHERE l.status = $1), 0)::float8 AS won_value
		FROM personnel p
		JOIN leads l ON l.assigned_to = p.id AND NOT l.is_deleted
		WHERE `+where+`
		GROUP BY p.id
		ORDER BY total_value DESC, p.id
		LIMIT $2`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.PersonnelPerformance, 0, limit)
	for rows.Next() {
		var item domain.PersonnelPerformance
		p, err := scanPersonnel(rows, &item.LeadsCount, &item.TotalValue, &item.WonValue)
		if err != nil {
			return nil, err
		}
		item.Personnel = p
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Package repository stores daily pipeline snapshots.
package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const snapshotColumns = `id, date, total_leads, total_pipeline_value::float8, avg_lead_quality,
	stage_distribution, division_distribution, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (domain.DailySnapshot, error) {
	var s domain.DailySnapshot
	err := row.Scan(
		&s.ID, &s.Date, &s.TotalLeads, &s.TotalPipelineValue, &s.AvgLeadQuality,
		&s.StageDistribution, &s.DivisionDistribution, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}

// UpsertSnapshot writes the snapshot for snap.Date, replacing the totals of
// an existing row for that date. The stored row keeps its original id.
func (r *Repository) UpsertSnapshot(ctx context.Context, snap domain.DailySnapshot) (domain.DailySnapshot, error) {
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	return scanSnapshot(r.pool.QueryRow(ctx, `
		INSERT INTO daily_snapshots (
			id, date, total_leads, total_pipeline_value, avg_lead_quality,
			stage_distribution, division_distribution
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (date) DO UPDATE SET
			total_leads = EXCLUDED.total_leads,
			total_pipeline_value = EXCLUDED.total_pipeline_value,
			avg_lead_quality = EXCLUDED.avg_lead_quality,
			stage_distribution = EXCLUDED.stage_distribution,
			division_distribution = EXCLUDED.division_distribution,
			updated_at = now()
		RETURNING `+snapshotColumns,
		snap.ID, snap.Date, snap.TotalLeads, snap.TotalPipelineValue, snap.AvgLeadQuality,
		snap.StageDistribution, snap.DivisionDistribution,
	))
}

// ListSnapshots returns snapshots in date order. Nil bounds are open.
func (r *Repository) ListSnapshots(ctx context.Context, from, to *time.Time) ([]domain.DailySnapshot, error) {
	var where []string
	var args []any
	if from != nil {
		args = append(args, *from)
		where = append(where, fmt.Sprintf("date >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		where = append(where, fmt.Sprintf("date <= $%d", len(args)))
	}
	query := "SELECT " + snapshotColumns + " FROM daily_snapshots"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.DailySnapshot, 0)
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, snap)
	}
	return items, rows.Err()
}

// Package repository stores personnel and derives their workload.
package repository

import (
	"context"
	"errors"
	"fmt"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/db"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("personnel not found")
	ErrDuplicate = errors.New("username or email already in use")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const personnelColumns = `p.id, p.username, p.password_hash, p.first_name, p.last_name, p.email, p.division,
	p.role, p.phone, p.avatar, p.avatar_key, p.hire_date, p.daily_rate, p.team_id, p.is_active,
	p.created_at, p.updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPersonnel(row scanner, extra ...any) (domain.Personnel, error) {
	var p domain.Personnel
	var division *string
	var role string
	dest := []any{
		&p.ID, &p.Username, &p.PasswordHash, &p.FirstName, &p.LastName, &p.Email, &division,
		&role, &p.Phone, &p.AvatarText, &p.AvatarKey, &p.HireDate, &p.DailyRate, &p.TeamID, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return domain.Personnel{}, err
	}
	if division != nil {
		d := domain.Division(*division)
		p.Division = &d
	}
	p.Role = domain.Role(role)
	return p, nil
}

func divisionArg(d *domain.Division) *string {
	if d == nil {
		return nil
	}
	s := string(*d)
	return &s
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error) {
	p, err := scanPersonnel(r.pool.QueryRow(ctx, "SELECT "+personnelColumns+" FROM personnel p WHERE p.id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Personnel{}, ErrNotFound
	}
	return p, err
}

// GetByUsername is case-insensitive.
func (r *Repository) GetByUsername(ctx context.Context, username string) (domain.Personnel, error) {
	p, err := scanPersonnel(r.pool.QueryRow(ctx,
		"SELECT "+personnelColumns+" FROM personnel p WHERE lower(p.username) = lower($1)", username))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Personnel{}, ErrNotFound
	}
	return p, err
}

// GetByIDs returns the people found among ids keyed by id. Missing ids are
// simply absent from the map.
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.Personnel, error) {
	out := make(map[uuid.UUID]domain.Personnel, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.pool.Query(ctx, "SELECT "+personnelColumns+" FROM personnel p WHERE p.id = ANY($1)", ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPersonnel(rows)
		if err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return out, nil
}

// ListActiveWithWorkload returns active personnel ordered by id, optionally
// limited to one division, each with a workload counted from the leads
// table at query time.
func (r *Repository) ListActiveWithWorkload(ctx context.Context, division *domain.Division) ([]domain.PersonnelWithWorkload, error) {
	args := []any{activeStatuses()}
	where := "p.is_active"
	if division != nil {
		where += fmt.Sprintf(" AND p.division = $%d", len(args)+1)
		args = append(args, string(*division))
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+personnelColumns+`,
			COUNT(l.id) FILTER (WHERE NOT l.is_deleted AND l.status = ANY($1)) AS workload
		FROM personnel p
		LEFT JOIN leads l ON l.assigned_to = p.id
		WHERE `+where+`
		GROUP BY p.id
		ORDER BY p.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.PersonnelWithWorkload, 0)
	for rows.Next() {
		var workload int
		p, err := scanPersonnel(rows, &workload)
		if err != nil {
			return nil, err
		}
		items = append(items, domain.PersonnelWithWorkload{Personnel: p, Workload: workload})
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// Workload counts the person's active, non-deleted assigned leads.
func (r *Repository) Workload(ctx context.Context, id uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads
		WHERE assigned_to = $1 AND NOT is_deleted AND status = ANY($2)
	`, id, activeStatuses()).Scan(&n)
	return n, err
}

func activeStatuses() []string {
	out := make([]string, 0, len(domain.ActiveWorkloadStatuses))
	for _, s := range domain.ActiveWorkloadStatuses {
		out = append(out, string(s))
	}
	return out
}

func (r *Repository) Create(ctx context.Context, p domain.Personnel) (domain.Personnel, error) {
	created, err := scanPersonnel(r.pool.QueryRow(ctx, `
		INSERT INTO personnel AS p (
			id, username, password_hash, first_name, last_name, email, division, role, phone,
			avatar, hire_date, daily_rate, team_id, is_active
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+personnelColumns,
		p.ID, p.Username, p.PasswordHash, p.FirstName, p.LastName, p.Email, divisionArg(p.Division), string(p.Role), p.Phone,
		p.AvatarText, p.HireDate, p.DailyRate, p.TeamID, p.IsActive,
	))
	if db.IsUniqueViolation(err) {
		return domain.Personnel{}, ErrDuplicate
	}
	return created, err
}

// Update writes the profile fields. Password and avatar key have their own setters.
func (r *Repository) Update(ctx context.Context, p domain.Personnel) (domain.Personnel, error) {
	updated, err := scanPersonnel(r.pool.QueryRow(ctx, `
		UPDATE personnel AS p SET
			first_name = $2, last_name = $3, email = $4, division = $5, role = $6, phone = $7,
			avatar = $8, daily_rate = $9, team_id = $10, is_active = $11, updated_at = now()
		WHERE p.id = $1
		RETURNING `+personnelColumns,
		p.ID, p.FirstName, p.LastName, p.Email, divisionArg(p.Division), string(p.Role), p.Phone,
		p.AvatarText, p.DailyRate, p.TeamID, p.IsActive,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Personnel{}, ErrNotFound
	}
	if db.IsUniqueViolation(err) {
		return domain.Personnel{}, ErrDuplicate
	}
	return updated, err
}

func (r *Repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE personnel SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetAvatarKey(ctx context.Context, id uuid.UUID, key *string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE personnel SET avatar_key = $2, updated_at = now() WHERE id = $1`, id, key)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE personnel SET password_hash = $2, updated_at = now() WHERE id = $1`, id, hash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"leadpipeline_backend/internal/domain"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrTeamNotFound    = errors.New("team not found")
	ErrDuplicateTeam   = errors.New("team name already exists")
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const productColumns = `id, name, division, description, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var p domain.Product
	var division string
	if err := row.Scan(&p.ID, &p.Name, &division, &p.Description, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	p.Division = domain.Division(division)
	return p, nil
}

// ListProducts returns products ordered by division and name. A nil
// division lists every division.
func (r *Repo) ListProducts(ctx context.Context, division *domain.Division, activeOnly bool) ([]domain.Product, error) {
	var divisionArg *string
	if division != nil {
		d := string(*division)
		divisionArg = &d
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+productColumns+`
		FROM products
		WHERE ($1::text IS NULL OR division = $1)
		  AND (NOT $2 OR is_active)
		ORDER BY division, name`, divisionArg, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]domain.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *Repo) GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (r *Repo) CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	created, err := scanProduct(r.pool.QueryRow(ctx, `
		INSERT INTO products (id, name, division, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+productColumns,
		p.ID, p.Name, string(p.Division), p.Description, p.IsActive))
	if err != nil {
		return domain.Product{}, fmt.Errorf("create product: %w", err)
	}
	return created, nil
}

func (r *Repo) UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error) {
	updated, err := scanProduct(r.pool.QueryRow(ctx, `
		UPDATE products
		SET name = $2, division = $3, description = $4, is_active = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+productColumns,
		p.ID, p.Name, string(p.Division), p.Description, p.IsActive))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, ErrProductNotFound
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("update product: %w", err)
	}
	return updated, nil
}

// DeleteProduct removes the product. Leads referencing it keep existing
// with a NULL product.
func (r *Repo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

const teamColumns = `id, name, division, description, is_active, created_at, updated_at`

func scanTeam(row pgx.Row) (domain.Team, error) {
	var t domain.Team
	var division *string
	if err := row.Scan(&t.ID, &t.Name, &division, &t.Description, &t.IsActive, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Team{}, err
	}
	if division != nil {
		d := domain.Division(*division)
		t.Division = &d
	}
	return t, nil
}

func (r *Repo) ListTeams(ctx context.Context) ([]domain.Team, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+teamColumns+` FROM teams WHERE is_active ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	teams := make([]domain.Team, 0)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *Repo) GetTeam(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	t, err := scanTeam(r.pool.QueryRow(ctx, `SELECT `+teamColumns+` FROM teams WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Team{}, ErrTeamNotFound
	}
	if err != nil {
		return domain.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

func (r *Repo) CreateTeam(ctx context.Context, t domain.Team) (domain.Team, error) {
	var division *string
	if t.Division != nil {
		d := string(*t.Division)
		division = &d
	}

	created, err := scanTeam(r.pool.QueryRow(ctx, `
		INSERT INTO teams (id, name, division, description, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+teamColumns,
		t.ID, t.Name, division, t.Description, t.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.Team{}, ErrDuplicateTeam
		}
		return domain.Team{}, fmt.Errorf("create team: %w", err)
	}
	return created, nil
}

package repository

import (
	"context"

	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
)

// Repository is the catalog store.
type Repository interface {
	ListProducts(ctx context.Context, division *domain.Division, activeOnly bool) ([]domain.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	UpdateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListTeams(ctx context.Context) ([]domain.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (domain.Team, error)
	CreateTeam(ctx context.Context, t domain.Team) (domain.Team, error)
}

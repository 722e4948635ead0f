package service

import (
	"context"
	"testing"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/catalog/repository"
	"leadpipeline_backend/internal/catalog/transport"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	products     map[uuid.UUID]domain.Product
	listDivision *domain.Division
	teams        []domain.Team
}

func (r *fakeRepo) ListProducts(_ context.Context, division *domain.Division, _ bool) ([]domain.Product, error) {
	r.listDivision = division
	var out []domain.Product
	for _, p := range r.products {
		if division == nil || p.Division == *division {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return domain.Product{}, repository.ErrProductNotFound
	}
	return p, nil
}

func (r *fakeRepo) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeRepo) UpdateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	r.products[p.ID] = p
	return p, nil
}

func (r *fakeRepo) DeleteProduct(_ context.Context, id uuid.UUID) error {
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *fakeRepo) ListTeams(context.Context) ([]domain.Team, error) { return r.teams, nil }

func (r *fakeRepo) GetTeam(_ context.Context, id uuid.UUID) (domain.Team, error) {
	for _, t := range r.teams {
		if t.ID == id {
			return t, nil
		}
	}
	return domain.Team{}, repository.ErrTeamNotFound
}

func (r *fakeRepo) CreateTeam(_ context.Context, t domain.Team) (domain.Team, error) {
	for _, existing := range r.teams {
		if existing.Name == t.Name {
			return domain.Team{}, repository.ErrDuplicateTeam
		}
	}
	r.teams = append(r.teams, t)
	return t, nil
}

func newService() (*Service, *fakeRepo) {
	repo := &fakeRepo{products: map[uuid.UUID]domain.Product{}}
	return New(repo, logger.NewNop()), repo
}

func TestListProductsForcesOwnDivision(t *testing.T) {
	svc, repo := newService()
	techProduct := domain.Product{ID: uuid.New(), Name: "Core", Division: domain.DivisionTech, IsActive: true}
	capitalProduct := domain.Product{ID: uuid.New(), Name: "Fund", Division: domain.DivisionCapital, IsActive: true}
	repo.products[techProduct.ID] = techProduct
	repo.products[capitalProduct.ID] = capitalProduct

	tech := domain.DivisionTech
	agent := access.Principal{ID: uuid.New(), Role: domain.RoleAgent, Division: &tech}
	result, err := svc.ListProducts(context.Background(), agent, transport.ListProductsRequest{Division: "capital"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != techProduct.ID {
		t.Fatalf("expected only the tech product, got %+v", result.Items)
	}
	if result.Items[0].DivisionDisplay != "Gralix Tech" {
		t.Fatalf("expected display name, got %q", result.Items[0].DivisionDisplay)
	}

	admin := access.Principal{ID: uuid.New(), Role: domain.RoleAdmin}
	result, err = svc.ListProducts(context.Background(), admin, transport.ListProductsRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 products, got %d", len(result.Items))
	}
}

func TestProductWritesRequireGlobalRole(t *testing.T) {
	svc, repo := newService()
	manager := access.Principal{ID: uuid.New(), Role: domain.RoleManager}

	_, err := svc.CreateProduct(context.Background(), manager, transport.CreateProductRequest{Name: "X", Division: "tech"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(repo.products) != 0 {
		t.Fatalf("expected nothing stored")
	}

	executive := access.Principal{ID: uuid.New(), Role: domain.RoleExecutive}
	created, err := svc.CreateProduct(context.Background(), executive, transport.CreateProductRequest{Name: " Pension Audit ", Division: "actuarial"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Name != "Pension Audit" || !created.IsActive {
		t.Fatalf("unexpected product %+v", created)
	}

	if err := svc.DeleteProduct(context.Background(), manager, created.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if err := svc.DeleteProduct(context.Background(), executive, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProductHidesOtherDivisions(t *testing.T) {
	svc, repo := newService()
	p := domain.Product{ID: uuid.New(), Name: "Fund", Division: domain.DivisionCapital}
	repo.products[p.ID] = p

	tech := domain.DivisionTech
	_, err := svc.GetProduct(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleAgent, Division: &tech}, p.ID)
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateTeamDuplicate(t *testing.T) {
	svc, _ := newService()
	if _, err := svc.CreateTeam(context.Background(), transport.CreateTeamRequest{Name: "Alpha"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := svc.CreateTeam(context.Background(), transport.CreateTeamRequest{Name: "Alpha"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

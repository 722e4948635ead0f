// Package service implements the product and team catalog.
package service

import (
	"context"
	"errors"
	"strings"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/catalog/repository"
	"leadpipeline_backend/internal/catalog/transport"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgProductNotFound = "Product not found"
	msgTeamNotFound    = "Team not found"
	msgAdminOnly       = "Only admins can manage products"
)

type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// ListProducts returns active products. Principals without global view are
// limited to their own division regardless of the requested filter.
func (s *Service) ListProducts(ctx context.Context, principal access.Principal, req transport.ListProductsRequest) (transport.ProductListResponse, error) {
	var division *domain.Division
	if req.Division != "" {
		d := domain.Division(req.Division)
		division = &d
	}
	if !principal.CanViewAllLeads() {
		if principal.Division == nil {
			return transport.ProductListResponse{Items: []transport.ProductResponse{}}, nil
		}
		division = principal.Division
	}

	products, err := s.repo.ListProducts(ctx, division, true)
	if err != nil {
		return transport.ProductListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list products", err).WithOp("catalog.service.list_products")
	}

	items := make([]transport.ProductResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}
	return transport.ProductListResponse{Items: items}, nil
}

func (s *Service) GetProduct(ctx context.Context, principal access.Principal, id uuid.UUID) (transport.ProductResponse, error) {
	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	if !principal.CanViewAllLeads() && !principal.InDivision(p.Division) {
		return transport.ProductResponse{}, apperr.NotFound(msgProductNotFound)
	}
	return toProductResponse(p), nil
}

func (s *Service) CreateProduct(ctx context.Context, principal access.Principal, req transport.CreateProductRequest) (transport.ProductResponse, error) {
	if !principal.CanViewAllLeads() {
		return transport.ProductResponse{}, apperr.Forbidden(msgAdminOnly)
	}

	p := domain.Product{
		ID:          uuid.New(),
		Name:        sanitize.Line(req.Name),
		Division:    domain.Division(req.Division),
		Description: sanitize.Text(req.Description),
		IsActive:    true,
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if p.Name == "" {
		return transport.ProductResponse{}, apperr.Validation("validation failed: name").WithDetails(map[string]string{"name": "This field may not be blank."})
	}

	created, err := s.repo.CreateProduct(ctx, p)
	if err != nil {
		return transport.ProductResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create product", err).WithOp("catalog.service.create_product")
	}
	s.log.WithContext(ctx).Info("product created", "product_id", created.ID.String(), "division", string(created.Division))
	return toProductResponse(created), nil
}

func (s *Service) UpdateProduct(ctx context.Context, principal access.Principal, id uuid.UUID, req transport.UpdateProductRequest) (transport.ProductResponse, error) {
	if !principal.CanViewAllLeads() {
		return transport.ProductResponse{}, apperr.Forbidden(msgAdminOnly)
	}

	p, err := s.loadProduct(ctx, id)
	if err != nil {
		return transport.ProductResponse{}, err
	}
	if req.Name != nil {
		if name := sanitize.Line(*req.Name); name != "" {
			p.Name = name
		}
	}
	if req.Division != nil {
		p.Division = domain.Division(*req.Division)
	}
	if req.Description != nil {
		p.Description = sanitize.Text(*req.Description)
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	updated, err := s.repo.UpdateProduct(ctx, p)
	if errors.Is(err, repository.ErrProductNotFound) {
		return transport.ProductResponse{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return transport.ProductResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update product", err).WithOp("catalog.service.update_product")
	}
	return toProductResponse(updated), nil
}

func (s *Service) DeleteProduct(ctx context.Context, principal access.Principal, id uuid.UUID) error {
	if !principal.CanViewAllLeads() {
		return apperr.Forbidden(msgAdminOnly)
	}
	err := s.repo.DeleteProduct(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete product", err).WithOp("catalog.service.delete_product")
	}
	s.log.WithContext(ctx).Info("product deleted", "product_id", id.String())
	return nil
}

func (s *Service) ListTeams(ctx context.Context) (transport.TeamListResponse, error) {
	teams, err := s.repo.ListTeams(ctx)
	if err != nil {
		return transport.TeamListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list teams", err)
	}
	items := make([]transport.TeamResponse, 0, len(teams))
	for _, t := range teams {
		items = append(items, toTeamResponse(t))
	}
	return transport.TeamListResponse{Items: items}, nil
}

func (s *Service) CreateTeam(ctx context.Context, req transport.CreateTeamRequest) (transport.TeamResponse, error) {
	t := domain.Team{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(req.Name),
		Description: sanitize.Text(req.Description),
		IsActive:    true,
	}
	if req.Division != nil {
		d := domain.Division(*req.Division)
		t.Division = &d
	}

	created, err := s.repo.CreateTeam(ctx, t)
	if errors.Is(err, repository.ErrDuplicateTeam) {
		return transport.TeamResponse{}, apperr.Conflict("team name already exists")
	}
	if err != nil {
		return transport.TeamResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create team", err)
	}
	return toTeamResponse(created), nil
}

// ResolveProduct is used by lead management to check the division of a
// referenced product.
func (s *Service) ResolveProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	return s.loadProduct(ctx, id)
}

// ResolveTeam returns the team referenced by a lead.
func (s *Service) ResolveTeam(ctx context.Context, id uuid.UUID) (domain.Team, error) {
	t, err := s.repo.GetTeam(ctx, id)
	if errors.Is(err, repository.ErrTeamNotFound) {
		return domain.Team{}, apperr.NotFound(msgTeamNotFound)
	}
	if err != nil {
		return domain.Team{}, apperr.Wrap(apperr.KindInternal, "failed to load team", err)
	}
	return t, nil
}

func (s *Service) loadProduct(ctx context.Context, id uuid.UUID) (domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if errors.Is(err, repository.ErrProductNotFound) {
		return domain.Product{}, apperr.NotFound(msgProductNotFound)
	}
	if err != nil {
		return domain.Product{}, apperr.Wrap(apperr.KindInternal, "failed to load product", err)
	}
	return p, nil
}

func toProductResponse(p domain.Product) transport.ProductResponse {
	return transport.ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Division:        string(p.Division),
		DivisionDisplay: p.Division.DisplayName(),
		Description:     p.Description,
		IsActive:        p.IsActive,
	}
}

func toTeamResponse(t domain.Team) transport.TeamResponse {
	resp := transport.TeamResponse{ID: t.ID, Name: t.Name, Description: t.Description, IsActive: t.IsActive}
	if t.Division != nil {
		d := string(*t.Division)
		resp.Division = &d
	}
	return resp
}

package service

import (
	"context"
	"testing"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/internal/personnel/transport"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeRepo struct {
	people    map[uuid.UUID]domain.Personnel
	workloads map[uuid.UUID]int
	listedFor *domain.Division
	listCalls int
}

func newFakeRepo(people ...domain.Personnel) *fakeRepo {
	r := &fakeRepo{people: map[uuid.UUID]domain.Personnel{}, workloads: map[uuid.UUID]int{}}
	for _, p := range people {
		r.people[p.ID] = p
	}
	return r
}

func (r *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Personnel, error) {
	p, ok := r.people[id]
	if !ok {
		return domain.Personnel{}, repository.ErrNotFound
	}
	return p, nil
}

func (r *fakeRepo) ListActiveWithWorkload(_ context.Context, division *domain.Division) ([]domain.PersonnelWithWorkload, error) {
	r.listCalls++
	r.listedFor = division
	var out []domain.PersonnelWithWorkload
	for _, p := range r.people {
		if division != nil && (p.Division == nil || *p.Division != *division) {
			continue
		}
		out = append(out, domain.PersonnelWithWorkload{Personnel: p, Workload: r.workloads[p.ID]})
	}
	return out, nil
}

func (r *fakeRepo) Workload(_ context.Context, id uuid.UUID) (int, error) {
	return r.workloads[id], nil
}

func (r *fakeRepo) Create(_ context.Context, p domain.Personnel) (domain.Personnel, error) {
	for _, existing := range r.people {
		if existing.Username == p.Username {
			return domain.Personnel{}, repository.ErrDuplicate
		}
	}
	r.people[p.ID] = p
	return p, nil
}

func (r *fakeRepo) Update(_ context.Context, p domain.Personnel) (domain.Personnel, error) {
	if _, ok := r.people[p.ID]; !ok {
		return domain.Personnel{}, repository.ErrNotFound
	}
	r.people[p.ID] = p
	return p, nil
}

func (r *fakeRepo) SetActive(_ context.Context, id uuid.UUID, active bool) error {
	p, ok := r.people[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = active
	r.people[id] = p
	return nil
}

func (r *fakeRepo) SetAvatarKey(_ context.Context, id uuid.UUID, key *string) error {
	p := r.people[id]
	p.AvatarKey = key
	r.people[id] = p
	return nil
}

func division(d domain.Division) *domain.Division { return &d }

func TestListScopesNonGlobalToOwnDivision(t *testing.T) {
	tech := domain.Personnel{ID: uuid.New(), Username: "tech", Division: division(domain.DivisionTech), Role: domain.RoleAgent, IsActive: true}
	capital := domain.Personnel{ID: uuid.New(), Username: "cap", Division: division(domain.DivisionCapital), Role: domain.RoleAgent, IsActive: true}
	repo := newFakeRepo(tech, capital)
	repo.workloads[tech.ID] = 3
	svc := New(repo, nil, "", logger.NewNop())

	manager := access.Principal{ID: uuid.New(), Role: domain.RoleManager, Division: division(domain.DivisionTech)}
	result, err := svc.List(context.Background(), manager)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].ID != tech.ID {
		t.Fatalf("expected only the tech agent, got %+v", result.Items)
	}
	if result.Items[0].Workload != 3 {
		t.Fatalf("expected workload 3, got %d", result.Items[0].Workload)
	}

	admin := access.Principal{ID: uuid.New(), Role: domain.RoleAdmin}
	result, err = svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 personnel for admin, got %d", len(result.Items))
	}
	if repo.listedFor != nil {
		t.Fatalf("expected no division filter for admin")
	}
}

func TestListWithoutDivisionReturnsEmpty(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, "", logger.NewNop())

	result, err := svc.List(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleAgent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Items) != 0 || repo.listCalls != 0 {
		t.Fatalf("expected empty list without a store call, got %d items and %d calls", len(result.Items), repo.listCalls)
	}
}

func TestCreateRequiresGlobalRole(t *testing.T) {
	svc := New(newFakeRepo(), nil, "", logger.NewNop())
	req := transport.CreatePersonnelRequest{Username: "new", Password: "longenough", Email: "n@example.com", Role: "agent"}

	_, err := svc.Create(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleManager}, req)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateHashesPasswordAndNormalizesFields(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, nil, "", logger.NewNop())
	req := transport.CreatePersonnelRequest{
		Username:  "jdoe",
		Password:  "correct-horse",
		FirstName: " Jane ",
		LastName:  "Doe",
		Email:     " JDoe@Example.com ",
		Role:      "agent",
		Phone:     "+260 97 1234567",
	}

	created, err := svc.Create(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleAdmin}, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Email != "jdoe@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if created.Avatar != "JD" {
		t.Fatalf("expected initials JD, got %q", created.Avatar)
	}
	if created.Phone != "+260971234567" {
		t.Fatalf("expected E.164 phone, got %q", created.Phone)
	}
	stored := repo.people[created.ID]
	if stored.PasswordHash == "" || stored.PasswordHash == req.Password {
		t.Fatalf("expected password to be hashed")
	}

	_, err = svc.Create(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleAdmin}, req)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict on duplicate username, got %v", err)
	}
}

func TestDeactivateRejectsSelf(t *testing.T) {
	admin := domain.Personnel{ID: uuid.New(), Username: "root", Role: domain.RoleAdmin, IsActive: true}
	repo := newFakeRepo(admin)
	svc := New(repo, nil, "", logger.NewNop())

	err := svc.Deactivate(context.Background(), access.FromPersonnel(admin), admin.ID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}
	if !repo.people[admin.ID].IsActive {
		t.Fatalf("expected account to stay active")
	}
}

func TestDeactivateUnknownPersonnel(t *testing.T) {
	svc := New(newFakeRepo(), nil, "", logger.NewNop())

	err := svc.Deactivate(context.Background(), access.Principal{ID: uuid.New(), Role: domain.RoleExecutive}, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestProfileReportsPermissions(t *testing.T) {
	agent := domain.Personnel{ID: uuid.New(), Username: "agent", Role: domain.RoleAgent, IsActive: true}
	svc := New(newFakeRepo(agent), nil, "", logger.NewNop())

	profile, err := svc.Profile(context.Background(), access.FromPersonnel(agent))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.Permissions.CanManageLeads || profile.Permissions.CanViewAllLeads {
		t.Fatalf("expected agent without capabilities, got %+v", profile.Permissions)
	}
	if profile.User.Username != "agent" {
		t.Fatalf("expected agent profile, got %q", profile.User.Username)
	}
}

func TestUploadAvatarWithoutStorage(t *testing.T) {
	agent := domain.Personnel{ID: uuid.New(), Username: "agent", Role: domain.RoleAgent}
	svc := New(newFakeRepo(agent), nil, "", logger.NewNop())

	_, err := svc.UploadAvatar(context.Background(), access.FromPersonnel(agent), agent.ID, "me.png", "image/png", nil, 10)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request, got %v", err)
	}

	_, err = svc.UploadAvatar(context.Background(), access.FromPersonnel(agent), uuid.New(), "me.png", "image/png", nil, 10)
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for someone else's avatar, got %v", err)
	}
}

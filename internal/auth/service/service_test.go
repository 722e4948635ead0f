package service

import (
	"context"
	"testing"
	"time"

	"leadpipeline_backend/internal/auth/password"
	"leadpipeline_backend/internal/domain"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type testConfig struct{}

func (testConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (testConfig) GetAccessTokenTTL() time.Duration { return time.Hour }

type fakePeople struct {
	byID   map[uuid.UUID]domain.Personnel
	hashes map[uuid.UUID]string
}

func (f *fakePeople) GetByID(_ context.Context, id uuid.UUID) (domain.Personnel, error) {
	p, ok := f.byID[id]
	if !ok {
		return domain.Personnel{}, personnelrepo.ErrNotFound
	}
	return p, nil
}

func (f *fakePeople) GetByUsername(_ context.Context, username string) (domain.Personnel, error) {
	for _, p := range f.byID {
		if p.Username == username {
			return p, nil
		}
	}
	return domain.Personnel{}, personnelrepo.ErrNotFound
}

func (f *fakePeople) SetPasswordHash(_ context.Context, id uuid.UUID, hash string) error {
	if f.hashes == nil {
		f.hashes = map[uuid.UUID]string{}
	}
	f.hashes[id] = hash
	return nil
}

var fixedNow = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, people ...domain.Personnel) (*Service, *fakePeople) {
	t.Helper()
	store := &fakePeople{byID: map[uuid.UUID]domain.Personnel{}}
	for _, p := range people {
		store.byID[p.ID] = p
	}
	svc := New(store, testConfig{}, logger.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, store
}

func person(t *testing.T, username, plain string, active bool) domain.Personnel {
	t.Helper()
	hash, err := password.Hash(plain)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	division := domain.DivisionTech
	return domain.Personnel{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleManager,
		Division:     &division,
		IsActive:     active,
	}
}

func TestSignInIssuesAccessToken(t *testing.T) {
	p := person(t, "mmanager", "correct horse", true)
	svc, _ := newTestService(t, p)

	resp, err := svc.SignIn(context.Background(), " mmanager ", "correct horse")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !resp.ExpiresAt.Equal(fixedNow.Add(time.Hour)) {
		t.Fatalf("expected expiry one hour out, got %v", resp.ExpiresAt)
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(resp.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		t.Fatalf("expected a token signed with the configured secret, got %v", err)
	}
	if claims["sub"] != p.ID.String() || claims["type"] != "access" {
		t.Fatalf("expected sub and access type, got %v", claims)
	}
	roles, _ := claims["roles"].([]interface{})
	if len(roles) != 1 || roles[0] != "manager" {
		t.Fatalf("expected roles [manager], got %v", claims["roles"])
	}
}

func TestSignInRejectsBadCredentialsUniformly(t *testing.T) {
	p := person(t, "agent", "correct horse", true)
	svc, _ := newTestService(t, p)

	for _, tc := range []struct{ username, password string }{
		{"agent", "wrong horse"},
		{"nobody", "correct horse"},
	} {
		_, err := svc.SignIn(context.Background(), tc.username, tc.password)
		e, ok := apperr.As(err)
		if !ok || e.Kind != apperr.KindUnauthorized || e.Message != "Invalid username or password." {
			t.Fatalf("expected uniform invalid credentials for %s, got %v", tc.username, err)
		}
	}
}

func TestSignInRejectsInactive(t *testing.T) {
	p := person(t, "gone", "correct horse", false)
	svc, _ := newTestService(t, p)

	_, err := svc.SignIn(context.Background(), "gone", "correct horse")
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindForbidden || e.Message != "Personnel account is inactive." {
		t.Fatalf("expected inactive error, got %v", err)
	}
}

func TestLoadPrincipalReflectsCurrentRow(t *testing.T) {
	p := person(t, "mmanager", "correct horse", true)
	svc, _ := newTestService(t, p)

	principal, err := svc.LoadPrincipal(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if principal.ID != p.ID || principal.Role != domain.RoleManager || !principal.InDivision(domain.DivisionTech) {
		t.Fatalf("expected principal built from personnel, got %+v", principal)
	}

	if _, err := svc.LoadPrincipal(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected unauthorized for unknown id, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	p := person(t, "agent", "correct horse", true)
	svc, store := newTestService(t, p)

	err := svc.ChangePassword(context.Background(), p.ID, "wrong horse", "short")
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, _ := e.Details.(map[string]string)
	if _, ok := details["currentPassword"]; !ok {
		t.Fatalf("expected currentPassword detail, got %v", details)
	}
	if _, ok := details["newPassword"]; !ok {
		t.Fatalf("expected newPassword detail, got %v", details)
	}

	if err := svc.ChangePassword(context.Background(), p.ID, "correct horse", "battery staple"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if password.Compare(store.hashes[p.ID], "battery staple") != nil {
		t.Fatalf("expected new hash to be stored")
	}
}

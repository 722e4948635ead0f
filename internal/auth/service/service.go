package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/auth/password"
	"leadpipeline_backend/internal/auth/transport"
	"leadpipeline_backend/internal/domain"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/httpkit"
	"leadpipeline_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Invalid username or password."
	msgInactive           = "Personnel account is inactive."
	msgUnknownPrincipal   = "unauthorized"

	tokenTypeBearer = "Bearer"
)

// PersonnelStore is the slice of the personnel repository auth needs.
type PersonnelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
	GetByUsername(ctx context.Context, username string) (domain.Personnel, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

type Service struct {
	people PersonnelStore
	cfg    config.AuthServiceConfig
	log    *logger.Logger
	now    func() time.Time
}

func New(people PersonnelStore, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{people: people, cfg: cfg, log: log, now: time.Now}
}

// SignIn checks the credentials and issues an access token. Unknown
// usernames and wrong passwords get the same message.
func (s *Service) SignIn(ctx context.Context, username, plainPassword string) (transport.AuthResponse, error) {
	username = strings.TrimSpace(username)

	p, err := s.people.GetByUsername(ctx, username)
	if errors.Is(err, personnelrepo.ErrNotFound) {
		s.log.AuthEvent("sign_in", username, false, "unknown username")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err).WithOp("auth.SignIn")
	}

	if err := password.Compare(p.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("sign_in", username, false, "wrong password")
		return transport.AuthResponse{}, apperr.Unauthorized(msgInvalidCredentials)
	}
	if !p.IsActive {
		s.log.AuthEvent("sign_in", username, false, "inactive")
		return transport.AuthResponse{}, apperr.Forbidden(msgInactive)
	}

	expiresAt := s.now().Add(s.cfg.GetAccessTokenTTL())
	token, err := s.signJWT(p, expiresAt)
	if err != nil {
		return transport.AuthResponse{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err).WithOp("auth.SignIn")
	}

	s.log.AuthEvent("sign_in", username, true, "")
	return transport.AuthResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   expiresAt.UTC(),
	}, nil
}

// LoadPrincipal rebuilds the access principal from the current personnel
// row, so role and division changes apply to tokens already issued.
func (s *Service) LoadPrincipal(ctx context.Context, id uuid.UUID) (access.Principal, error) {
	p, err := s.people.GetByID(ctx, id)
	if errors.Is(err, personnelrepo.ErrNotFound) {
		return access.Principal{}, apperr.Unauthorized(msgUnknownPrincipal)
	}
	if err != nil {
		return access.Principal{}, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err).WithOp("auth.LoadPrincipal")
	}
	if !p.IsActive {
		return access.Principal{}, apperr.Unauthorized(msgInactive)
	}
	return access.FromPersonnel(p), nil
}

func (s *Service) ChangePassword(ctx context.Context, id uuid.UUID, current, next string) error {
	p, err := s.people.GetByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load personnel", err).WithOp("auth.ChangePassword")
	}

	fields := apperr.FieldErrors{}
	if password.Compare(p.PasswordHash, current) != nil {
		fields.Add("currentPassword", "Current password is incorrect.")
	}
	if len(next) < password.MinLength {
		fields.Add("newPassword", "Password must be at least 8 characters.")
	}
	if err := fields.Err(); err != nil {
		return err
	}

	hash, err := password.Hash(next)
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to hash password", err).WithOp("auth.ChangePassword")
	}
	if err := s.people.SetPasswordHash(ctx, id, hash); err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to store password", err).WithOp("auth.ChangePassword")
	}
	s.log.AuthEvent("password_changed", p.Username, true, "")
	return nil
}

func (s *Service) signJWT(p domain.Personnel, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":   p.ID.String(),
		"type":  httpkit.TokenTypeAccess,
		"roles": []string{string(p.Role)},
		"exp":   expiresAt.Unix(),
		"iat":   s.now().Unix(),
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tokenObj.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}

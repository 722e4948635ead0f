// Package service implements personnel management: the directory with
// derived workload, admin maintenance and avatar uploads.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/adapters/storage"
	"leadpipeline_backend/internal/auth/password"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/internal/personnel/transport"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/phone"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgNotFound      = "personnel not found"
	msgAdminOnly     = "Only admins can manage personnel"
	msgDuplicateUser = "username or email already in use"
	msgStorageOff    = "avatar storage is not configured"
)

// Repository is the personnel store used by the service.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
	ListActiveWithWorkload(ctx context.Context, division *domain.Division) ([]domain.PersonnelWithWorkload, error)
	Workload(ctx context.Context, id uuid.UUID) (int, error)
	Create(ctx context.Context, p domain.Personnel) (domain.Personnel, error)
	Update(ctx context.Context, p domain.Personnel) (domain.Personnel, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	SetAvatarKey(ctx context.Context, id uuid.UUID, key *string) error
}

type Service struct {
	repo    Repository
	storage storage.StorageService
	bucket  string
	log     *logger.Logger
	now     func() time.Time
}

// New creates the service. storageSvc may be nil when MinIO is disabled;
// avatar uploads then fail with a bad request.
func New(repo Repository, storageSvc storage.StorageService, bucket string, log *logger.Logger) *Service {
	return &Service{repo: repo, storage: storageSvc, bucket: bucket, log: log, now: time.Now}
}

// List returns active personnel with workload. Global viewers see everyone,
// others only their own division.
func (s *Service) List(ctx context.Context, principal access.Principal) (transport.PersonnelListResponse, error) {
	var division *domain.Division
	if !principal.CanViewAllLeads() {
		if principal.Division == nil {
			return transport.PersonnelListResponse{Items: []transport.PersonnelResponse{}}, nil
		}
		division = principal.Division
	}

	people, err := s.repo.ListActiveWithWorkload(ctx, division)
	if err != nil {
		return transport.PersonnelListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list personnel", err).WithOp("personnel.service.list")
	}

	items := make([]transport.PersonnelResponse, 0, len(people))
	for _, p := range people {
		items = append(items, s.toResponse(ctx, p.Personnel, p.Workload))
	}
	return transport.PersonnelListResponse{Items: items}, nil
}

// Profile returns the caller with their capability flags.
func (s *Service) Profile(ctx context.Context, principal access.Principal) (transport.ProfileResponse, error) {
	p, workload, err := s.loadWithWorkload(ctx, principal.ID)
	if err != nil {
		return transport.ProfileResponse{}, err
	}
	return transport.ProfileResponse{
		User: s.toResponse(ctx, p, workload),
		Permissions: transport.PermissionsResponse{
			CanManageLeads:  principal.CanManageLeads(),
			CanViewAllLeads: principal.CanViewAllLeads(),
		},
	}, nil
}

func (s *Service) Create(ctx context.Context, principal access.Principal, req transport.CreatePersonnelRequest) (transport.PersonnelResponse, error) {
	if !principal.CanViewAllLeads() {
		return transport.PersonnelResponse{}, apperr.Forbidden(msgAdminOnly)
	}

	hash, err := password.Hash(req.Password)
	if errors.Is(err, password.ErrTooShort) {
		return transport.PersonnelResponse{}, apperr.Validation("password too short").
			WithDetails(map[string]string{"password": fmt.Sprintf("Ensure this value has at least %d characters.", password.MinLength)})
	}
	if err != nil {
		return transport.PersonnelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	hireDate := s.now()
	if req.HireDate != nil {
		if parsed, err := time.Parse(time.DateOnly, *req.HireDate); err == nil {
			hireDate = parsed
		}
	}

	p := domain.Personnel{
		ID:           uuid.New(),
		Username:     strings.TrimSpace(req.Username),
		PasswordHash: hash,
		FirstName:    sanitize.Line(req.FirstName),
		LastName:     sanitize.Line(req.LastName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Division:     toDivision(req.Division),
		Role:         domain.Role(req.Role),
		Phone:        phone.NormalizeE164(req.Phone),
		HireDate:     domain.DateOnly(hireDate),
		TeamID:       req.TeamID,
		IsActive:     true,
	}
	if req.DailyRate != nil {
		p.DailyRate = *req.DailyRate
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}

	created, err := s.repo.Create(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		return transport.PersonnelResponse{}, apperr.Conflict(msgDuplicateUser)
	}
	if err != nil {
		return transport.PersonnelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create personnel", err).WithOp("personnel.service.create")
	}

	s.log.WithContext(ctx).Info("personnel created", "personnel_id", created.ID.String(), "role", string(created.Role), "by", principal.ID.String())
	return s.toResponse(ctx, created, 0), nil
}

func (s *Service) Update(ctx context.Context, principal access.Principal, id uuid.UUID, req transport.UpdatePersonnelRequest) (transport.PersonnelResponse, error) {
	if !principal.CanViewAllLeads() {
		return transport.PersonnelResponse{}, apperr.Forbidden(msgAdminOnly)
	}

	p, workload, err := s.loadWithWorkload(ctx, id)
	if err != nil {
		return transport.PersonnelResponse{}, err
	}

	if req.FirstName != nil {
		p.FirstName = sanitize.Line(*req.FirstName)
	}
	if req.LastName != nil {
		p.LastName = sanitize.Line(*req.LastName)
	}
	if req.Email != nil {
		p.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Division != nil {
		p.Division = toDivision(req.Division)
	}
	if req.Role != nil {
		p.Role = domain.Role(*req.Role)
	}
	if req.Phone != nil {
		p.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Avatar != nil {
		p.AvatarText = strings.TrimSpace(*req.Avatar)
	}
	if req.DailyRate != nil {
		p.DailyRate = *req.DailyRate
	}
	if req.TeamID != nil {
		p.TeamID = req.TeamID
	} else if req.ClearTeam {
		p.TeamID = nil
	}
	if req.IsActive != nil {
		if !*req.IsActive && id == principal.ID {
			return transport.PersonnelResponse{}, apperr.BadRequest("You cannot delete your own account")
		}
		p.IsActive = *req.IsActive
	}

	updated, err := s.repo.Update(ctx, p)
	if errors.Is(err, repository.ErrDuplicate) {
		return transport.PersonnelResponse{}, apperr.Conflict(msgDuplicateUser)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return transport.PersonnelResponse{}, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return transport.PersonnelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update personnel", err).WithOp("personnel.service.update")
	}
	return s.toResponse(ctx, updated, workload), nil
}

// Deactivate disables the account. Assigned leads keep their assignee.
func (s *Service) Deactivate(ctx context.Context, principal access.Principal, id uuid.UUID) error {
	if !principal.CanViewAllLeads() {
		return apperr.Forbidden(msgAdminOnly)
	}
	if id == principal.ID {
		return apperr.BadRequest("You cannot delete your own account")
	}

	err := s.repo.SetActive(ctx, id, false)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to deactivate personnel", err).WithOp("personnel.service.deactivate")
	}

	s.log.WithContext(ctx).Info("personnel deactivated", "personnel_id", id.String(), "by", principal.ID.String())
	return nil
}

// UploadAvatar stores an image for id. People may change their own avatar;
// admins may change anyone's.
func (s *Service) UploadAvatar(ctx context.Context, principal access.Principal, id uuid.UUID, fileName, contentType string, body io.Reader, size int64) (transport.PersonnelResponse, error) {
	const op = "personnel.service.upload_avatar"

	if id != principal.ID && !principal.CanViewAllLeads() {
		return transport.PersonnelResponse{}, apperr.Forbidden("You can only change your own avatar")
	}
	if s.storage == nil {
		return transport.PersonnelResponse{}, apperr.BadRequest(msgStorageOff)
	}
	if err := s.storage.ValidateContentType(contentType); err != nil {
		return transport.PersonnelResponse{}, apperr.Validation(err.Error())
	}
	if err := s.storage.ValidateFileSize(size); err != nil {
		return transport.PersonnelResponse{}, apperr.Validation(err.Error())
	}

	p, workload, err := s.loadWithWorkload(ctx, id)
	if err != nil {
		return transport.PersonnelResponse{}, err
	}

	key, err := s.storage.UploadFile(ctx, s.bucket, "personnel/"+id.String(), fileName, contentType, body, size)
	if err != nil {
		return transport.PersonnelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to store avatar", err).WithOp(op)
	}
	if err := s.repo.SetAvatarKey(ctx, id, &key); err != nil {
		_ = s.storage.DeleteObject(ctx, s.bucket, key)
		return transport.PersonnelResponse{}, apperr.Wrap(apperr.KindInternal, "failed to save avatar", err).WithOp(op)
	}

	if p.AvatarKey != nil && *p.AvatarKey != key {
		if err := s.storage.DeleteObject(ctx, s.bucket, *p.AvatarKey); err != nil {
			s.log.WithContext(ctx).Warn("failed to remove previous avatar", "personnel_id", id.String(), "error", err)
		}
	}
	p.AvatarKey = &key
	return s.toResponse(ctx, p, workload), nil
}

func (s *Service) loadWithWorkload(ctx context.Context, id uuid.UUID) (domain.Personnel, int, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Personnel{}, 0, apperr.NotFound(msgNotFound)
	}
	if err != nil {
		return domain.Personnel{}, 0, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err)
	}
	workload, err := s.repo.Workload(ctx, id)
	if err != nil {
		return domain.Personnel{}, 0, apperr.Wrap(apperr.KindInternal, "failed to compute workload", err)
	}
	return p, workload, nil
}

func (s *Service) toResponse(ctx context.Context, p domain.Personnel, workload int) transport.PersonnelResponse {
	resp := transport.PersonnelResponse{
		ID:        p.ID,
		Username:  p.Username,
		Name:      p.Name(),
		FirstName: p.FirstName,
		LastName:  p.LastName,
		Email:     p.Email,
		Role:      string(p.Role),
		Phone:     p.Phone,
		Avatar:    p.Avatar(),
		Workload:  workload,
		DailyRate: p.DailyRate,
		HireDate:  p.HireDate.Format(time.DateOnly),
		TeamID:    p.TeamID,
		IsActive:  p.IsActive,
	}
	if p.Division != nil {
		d := string(*p.Division)
		resp.Division = &d
	}
	if p.AvatarKey != nil && s.storage != nil {
		if url, err := s.storage.GenerateDownloadURL(ctx, s.bucket, *p.AvatarKey); err == nil {
			resp.AvatarURL = &url.URL
		}
	}
	return resp
}

func toDivision(value *string) *domain.Division {
	if value == nil || *value == "" {
		return nil
	}
	d := domain.Division(*value)
	return &d
}

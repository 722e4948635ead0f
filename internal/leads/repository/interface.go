package repository

import (
	"context"
	"time"

	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
)

// =====================================
// Segregated Interfaces (Interface Segregation Principle)
// =====================================

// LeadReader provides read-only access to lead data.
type LeadReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Lead, error)
	List(ctx context.Context, params ListParams) ([]domain.Lead, int, error)
	ListMatching(ctx context.Context, params ListParams) ([]domain.Lead, error)
	CompanyExists(ctx context.Context, company string) (bool, error)
}

// LeadWriter provides write operations for lead management.
type LeadWriter interface {
	Create(ctx context.Context, lead domain.Lead, initial *domain.Assignment) (domain.Lead, error)
	Update(ctx context.Context, lead domain.Lead, assignment *domain.Assignment) (domain.Lead, error)
	SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.Status, progress int) error
}

// ScoreStore is the minimal surface the scoring engine needs.
type ScoreStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	CountCommunications(ctx context.Context, leadID uuid.UUID) (int, error)
	UpdateQualityScore(ctx context.Context, id uuid.UUID, score int) error
}

// AuditLog appends and reads communications and assignments.
type AuditLog interface {
	ApplyAssignment(ctx context.Context, a domain.Assignment, note domain.Communication) (domain.Lead, error)
	RecordCommunication(ctx context.Context, comm domain.Communication, lead domain.Lead) (domain.Lead, error)
	GetCommunication(ctx context.Context, id uuid.UUID) (domain.Communication, error)
	ListCommunications(ctx context.Context, leadID uuid.UUID) ([]domain.Communication, error)
	GetAssignment(ctx context.Context, id uuid.UUID) (domain.Assignment, error)
	ListAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error)
}

// ResourcePlanner manages staffing and material costs on a lead.
type ResourcePlanner interface {
	ListResources(ctx context.Context, leadID uuid.UUID) ([]domain.ResourceAssignment, error)
	UpsertResource(ctx context.Context, item domain.ResourceAssignment) (domain.ResourceAssignment, error)
	DeleteResource(ctx context.Context, leadID, id uuid.UUID) error
	ListMaterialCosts(ctx context.Context, leadID uuid.UUID) ([]domain.MaterialCost, error)
	AddMaterialCost(ctx context.Context, item domain.MaterialCost) (domain.MaterialCost, error)
	DeleteMaterialCost(ctx context.Context, leadID, id uuid.UUID) error
}

// LeadsRepository composes every interface above.
type LeadsRepository interface {
	LeadReader
	LeadWriter
	ScoreStore
	AuditLog
	ResourcePlanner
}

var _ LeadsRepository = (*Repository)(nil)

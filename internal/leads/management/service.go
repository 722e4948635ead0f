// Package management handles lead writes and reads on behalf of a
// principal: CRUD, bulk status and delete, communications and resource
// planning. Access is decided by the access policy before any mutation.
package management

import (
	"context"
	"errors"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/transport"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

const (
	msgLeadNotFound      = "Lead not found"
	msgPersonnelNotFound = "Personnel not found"
	msgNoAccess          = "You do not have permission to access this lead"
	msgNoEdit            = "You do not have permission to edit this lead"
	msgNoDelete          = "You do not have permission to delete this lead"
	msgOwnDivisionOnly   = "You can only create leads in your division"

	reasonInitial = "Initial assignment"
	reasonEdited  = "Lead edited"

	defaultPageSize = 25
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	repository.LeadReader
	repository.LeadWriter
	repository.ResourcePlanner
	RecordCommunication(ctx context.Context, comm domain.Communication, lead domain.Lead) (domain.Lead, error)
	ListCommunications(ctx context.Context, leadID uuid.UUID) ([]domain.Communication, error)
	ListAssignments(ctx context.Context, leadID uuid.UUID) ([]domain.Assignment, error)
}

// Catalog resolves products and teams referenced by a lead.
type Catalog interface {
	ResolveProduct(ctx context.Context, id uuid.UUID) (domain.Product, error)
	ResolveTeam(ctx context.Context, id uuid.UUID) (domain.Team, error)
}

// PersonnelReader resolves assignees and resource allocations.
type PersonnelReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
}

// Service handles lead management operations.
type Service struct {
	repo      Repository
	catalog   Catalog
	personnel PersonnelReader
	assigner  Assigner
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, catalog Catalog, personnel PersonnelReader, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, catalog: catalog, personnel: personnel, bus: bus, log: log, now: time.Now}
}

// List returns one page of the leads the principal may see.
func (s *Service) List(ctx context.Context, principal access.Principal, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	params := repository.ListParams{
		Scope:      access.AccessibleLeads(principal),
		Search:     req.Search,
		Unassigned: req.Unassigned,
		Offset:     (page - 1) * pageSize,
		Limit:      pageSize,
	}
	if req.Status != "" {
		status := domain.Status(req.Status)
		params.Status = &status
	}
	if req.Division != "" {
		division := domain.Division(req.Division)
		params.Division = &division
	}
	if id, err := uuid.Parse(req.AssignedTo); err == nil {
		params.AssignedTo = &id
	}
	if id, err := uuid.Parse(req.TeamID); err == nil {
		params.TeamID = &id
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err).WithOp("leads.management.list")
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, ToLeadResponse(lead))
	}
	totalPages := (total + pageSize - 1) / pageSize
	return transport.LeadListResponse{Items: items, Total: total, Page: page, PageSize: pageSize, TotalPages: totalPages}, nil
}

// Get returns a lead with its audit trail and cost planning.
func (s *Service) Get(ctx context.Context, principal access.Principal, id uuid.UUID) (transport.LeadDetailResponse, error) {
	const op = "leads.management.get"

	lead, err := s.loadLive(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, err
	}
	if !access.CanView(principal, lead) {
		return transport.LeadDetailResponse{}, apperr.Forbidden(msgNoAccess)
	}

	comms, err := s.repo.ListCommunications(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load communications", err).WithOp(op)
	}
	assignments, err := s.repo.ListAssignments(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load assignments", err).WithOp(op)
	}
	resources, err := s.repo.ListResources(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load resources", err).WithOp(op)
	}
	costs, err := s.repo.ListMaterialCosts(ctx, id)
	if err != nil {
		return transport.LeadDetailResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load material costs", err).WithOp(op)
	}

	return ToLeadDetailResponse(lead, access.CanEdit(principal, lead), comms, assignments, resources, costs), nil
}

// Create validates and stores a new lead. Nothing is written when any
// field fails.
func (s *Service) Create(ctx context.Context, principal access.Principal, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	const op = "leads.management.create"

	division := domain.Division(req.Division)
	if !principal.CanViewAllLeads() && !principal.InDivision(division) {
		return transport.LeadResponse{}, apperr.Forbidden(msgOwnDivisionOnly)
	}

	fields := apperr.FieldErrors{}
	company := sanitize.Line(req.Company)
	if company == "" {
		fields.Add(fieldCompany, msgCompanyRequired)
	}
	email := sanitize.Line(req.Email)
	checkContact(fields, email, req.Phone)

	product, err := s.resolveProduct(ctx, req.ProductID)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	checkProductDivision(fields, product, division)
	if err := s.resolveTeam(ctx, req.TeamID); err != nil {
		return transport.LeadResponse{}, err
	}
	if req.AssignedTo != nil {
		if _, err := s.resolvePersonnel(ctx, *req.AssignedTo); err != nil {
			return transport.LeadResponse{}, err
		}
	}

	if company != "" {
		exists, err := s.repo.CompanyExists(ctx, company)
		if err != nil {
			return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to check company", err).WithOp(op)
		}
		if exists {
			fields.Add(fieldCompany, msgDuplicateCompany)
		}
	}
	if err := fields.Err(); err != nil {
		return transport.LeadResponse{}, err
	}

	now := s.now()
	createdBy := principal.ID
	lead := domain.Lead{
		ID:                      uuid.New(),
		Company:                 company,
		ContactName:             sanitize.Line(req.ContactName),
		Position:                sanitize.Line(req.Position),
		Email:                   email,
		Phone:                   normalizeLeadPhone(req.Phone),
		Comments:                sanitize.Text(req.Comments),
		FollowUpDate:            parseDate(req.FollowUpDate),
		LastContact:             parseDate(req.LastContact),
		Status:                  domain.StatusNew,
		Priority:                domain.PriorityMedium,
		Division:                division,
		DealValue:               req.DealValue,
		ProbabilityOfCompletion: req.ProbabilityOfCompletion,
		AssignedTo:              req.AssignedTo,
		ProductID:               req.ProductID,
		TeamID:                  req.TeamID,
		CreatedBy:               &createdBy,
	}
	if req.Status != "" {
		lead.Status = domain.Status(req.Status)
	}
	if req.Priority != "" {
		lead.Priority = domain.Priority(req.Priority)
	}
	lead.ApplyStatusProgress()

	var initial *domain.Assignment
	if lead.AssignedTo != nil {
		initial = &domain.Assignment{
			ID:            uuid.New(),
			LeadID:        lead.ID,
			ToPersonnelID: *lead.AssignedTo,
			AssignedByID:  &createdBy,
			Reason:        reasonInitial,
			Date:          domain.DateOnly(now),
			CreatedAt:     now,
		}
	}

	created, err := s.repo.Create(ctx, lead, initial)
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err).WithOp(op)
	}

	s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: created.ID, Created: true})
	if initial != nil {
		s.publishAssignment(ctx, *initial)
	}

	s.log.WithContext(ctx).Info("lead created", "lead_id", created.ID.String(), "division", string(created.Division), "by", principal.ID.String())
	return s.reload(ctx, created), nil
}

// Update applies a partial update. Probability of completion is fixed at
// creation; sending a different value fails validation.
func (s *Service) Update(ctx context.Context, principal access.Principal, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	const op = "leads.management.update"

	lead, err := s.loadLive(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !access.CanEdit(principal, lead) {
		return transport.LeadResponse{}, apperr.Forbidden(msgNoEdit)
	}

	fields := apperr.FieldErrors{}
	changes := newChangeSet()

	if req.ProbabilityOfCompletion != nil && *req.ProbabilityOfCompletion != lead.ProbabilityOfCompletion {
		fields.Add(fieldProbability, msgProbabilityLocked)
	}
	if req.Company != nil {
		company := sanitize.Line(*req.Company)
		if company == "" {
			fields.Add(fieldCompany, msgCompanyRequired)
		}
		changes.setString("company", &lead.Company, company)
	}
	if req.ContactName != nil {
		changes.setString("contact_name", &lead.ContactName, sanitize.Line(*req.ContactName))
	}
	if req.Position != nil {
		changes.setString("position", &lead.Position, sanitize.Line(*req.Position))
	}
	if req.Email != nil {
		email := sanitize.Line(*req.Email)
		checkContact(fields, email, "")
		changes.setString("email", &lead.Email, email)
	}
	if req.Phone != nil {
		checkContact(fields, "", *req.Phone)
		changes.setString("phone", &lead.Phone, normalizeLeadPhone(*req.Phone))
	}
	if req.Comments != nil {
		changes.setString("comments", &lead.Comments, sanitize.Text(*req.Comments))
	}
	if req.FollowUpDate.Set {
		changes.setDate("follow_up_date", &lead.FollowUpDate, req.FollowUpDate.Value)
	}
	if req.LastContact.Set {
		changes.setDate("last_contact", &lead.LastContact, req.LastContact.Value)
	}
	if req.Status != nil && domain.Status(*req.Status) != lead.Status {
		lead.Status = domain.Status(*req.Status)
		lead.ApplyStatusProgress()
		changes.mark("status", "progress")
	}
	if req.Priority != nil && domain.Priority(*req.Priority) != lead.Priority {
		lead.Priority = domain.Priority(*req.Priority)
		changes.mark("priority")
	}
	if req.Division != nil && domain.Division(*req.Division) != lead.Division {
		lead.Division = domain.Division(*req.Division)
		changes.mark("division")
	}
	if req.DealValue != nil && *req.DealValue != lead.DealValue {
		lead.DealValue = *req.DealValue
		changes.mark("deal_value")
	}
	if req.ProductID.Set {
		changes.setUUID("product_id", &lead.ProductID, req.ProductID.Value)
	}
	if req.TeamID.Set {
		if err := s.resolveTeam(ctx, req.TeamID.Value); err != nil {
			return transport.LeadResponse{}, err
		}
		changes.setUUID("team_id", &lead.TeamID, req.TeamID.Value)
	}

	previousAssignee := lead.AssignedTo
	if req.AssignedTo.Set {
		if req.AssignedTo.Value != nil {
			if _, err := s.resolvePersonnel(ctx, *req.AssignedTo.Value); err != nil {
				return transport.LeadResponse{}, err
			}
		}
		changes.setUUID("assigned_to", &lead.AssignedTo, req.AssignedTo.Value)
	}

	// The product rule holds for the lead after the update, whichever side changed.
	if changes.has("product_id") || changes.has("division") {
		product, err := s.resolveProduct(ctx, lead.ProductID)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		checkProductDivision(fields, product, lead.Division)
	}
	if err := fields.Err(); err != nil {
		return transport.LeadResponse{}, err
	}
	if changes.empty() {
		return ToLeadResponse(lead), nil
	}

	var assignment *domain.Assignment
	if changes.has("assigned_to") && lead.AssignedTo != nil {
		now := s.now()
		by := principal.ID
		assignment = &domain.Assignment{
			ID:              uuid.New(),
			LeadID:          lead.ID,
			FromPersonnelID: previousAssignee,
			ToPersonnelID:   *lead.AssignedTo,
			AssignedByID:    &by,
			Reason:          reasonEdited,
			Date:            domain.DateOnly(now),
			CreatedAt:       now,
		}
	}

	updated, err := s.repo.Update(ctx, lead, assignment)
	if errors.Is(err, repository.ErrNotFound) {
		return transport.LeadResponse{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err).WithOp(op)
	}

	s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: updated.ID, ChangedFields: changes.names()})
	if assignment != nil {
		s.publishAssignment(ctx, *assignment)
	}
	return s.reload(ctx, updated), nil
}

// Delete soft-deletes the lead.
func (s *Service) Delete(ctx context.Context, principal access.Principal, id uuid.UUID) error {
	lead, err := s.loadLive(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanEdit(principal, lead) {
		return apperr.Forbidden(msgNoDelete)
	}

	deleted, err := s.repo.SoftDelete(ctx, id, s.now())
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err).WithOp("leads.management.delete")
	}
	if deleted {
		s.publish(ctx, events.LeadSaved{BaseEvent: events.NewBaseEvent(), LeadID: id, ChangedFields: softDeleteFields})
		s.log.WithContext(ctx).Info("lead deleted", "lead_id", id.String(), "by", principal.ID.String())
	}
	return nil
}

var softDeleteFields = []string{"is_deleted", "deleted_at", "status", "progress"}

// loadLive returns a non-deleted lead or NotFound.
func (s *Service) loadLive(ctx context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && lead.IsDeleted) {
		return domain.Lead{}, apperr.NotFound(msgLeadNotFound)
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return lead, nil
}

// reload re-reads the lead so responses carry the score the dispatcher
// just wrote. Falls back to the given copy when the read fails.
func (s *Service) reload(ctx context.Context, lead domain.Lead) transport.LeadResponse {
	fresh, err := s.repo.GetByID(ctx, lead.ID)
	if err != nil {
		s.log.WithContext(ctx).Warn("failed to reload lead", "lead_id", lead.ID.String(), "error", err)
		return ToLeadResponse(lead)
	}
	return ToLeadResponse(fresh)
}

func (s *Service) resolveProduct(ctx context.Context, id *uuid.UUID) (*domain.Product, error) {
	if id == nil {
		return nil, nil
	}
	product, err := s.catalog.ResolveProduct(ctx, *id)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *Service) resolveTeam(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.catalog.ResolveTeam(ctx, *id)
	return err
}

func (s *Service) resolvePersonnel(ctx context.Context, id uuid.UUID) (domain.Personnel, error) {
	p, err := s.personnel.GetByID(ctx, id)
	if errors.Is(err, personnelrepo.ErrNotFound) {
		return domain.Personnel{}, apperr.NotFound(msgPersonnelNotFound)
	}
	if err != nil {
		return domain.Personnel{}, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err)
	}
	return p, nil
}

func (s *Service) publishAssignment(ctx context.Context, a domain.Assignment) {
	s.publish(ctx, events.AssignmentCreated{
		BaseEvent:       events.NewBaseEvent(),
		AssignmentID:    a.ID,
		LeadID:          a.LeadID,
		FromPersonnelID: a.FromPersonnelID,
		ToPersonnelID:   a.ToPersonnelID,
		AssignedByID:    a.AssignedByID,
	})
}

// publish runs the dispatcher chain inline. The write is already committed,
// so handler failures are logged rather than returned.
func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.bus == nil {
		return
	}
	if err := s.bus.PublishSync(ctx, event); err != nil {
		s.log.WithContext(ctx).Warn("lead event handlers failed", "event", event.EventName(), "error", err)
	}
}

func parseDate(value *string) *time.Time {
	if value == nil || *value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, *value)
	if err != nil {
		return nil
	}
	return &t
}

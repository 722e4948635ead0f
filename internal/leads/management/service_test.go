package management

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	"leadpipeline_backend/internal/leads/assignment"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/internal/leads/transport"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/sanitize"

	"github.com/google/uuid"
)

type fakeRepo struct {
	leads          map[uuid.UUID]domain.Lead
	assignments    []domain.Assignment
	communications []domain.Communication
	costs          []domain.MaterialCost
	resources      []domain.ResourceAssignment
	lastParams     repository.ListParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{leads: map[uuid.UUID]domain.Lead{}}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return lead, nil
}

func (f *fakeRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]domain.Lead, error) {
	var out []domain.Lead
	for _, id := range ids {
		if lead, ok := f.leads[id]; ok && !lead.IsDeleted {
			out = append(out, lead)
		}
	}
	return out, nil
}

func (f *fakeRepo) List(_ context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	f.lastParams = params
	leads, _ := f.ListMatching(context.Background(), params)
	return leads, len(leads), nil
}

func (f *fakeRepo) ListMatching(_ context.Context, params repository.ListParams) ([]domain.Lead, error) {
	f.lastParams = params
	var out []domain.Lead
	for _, lead := range f.leads {
		if !params.Scope.Matches(lead) {
			continue
		}
		if params.Unassigned && lead.AssignedTo != nil {
			continue
		}
		if params.HasFollowUp && lead.FollowUpDate == nil {
			continue
		}
		out = append(out, lead)
	}
	return out, nil
}

func (f *fakeRepo) CompanyExists(_ context.Context, company string) (bool, error) {
	for _, lead := range f.leads {
		if sanitize.FoldKey(lead.Company) == sanitize.FoldKey(company) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) Create(_ context.Context, lead domain.Lead, initial *domain.Assignment) (domain.Lead, error) {
	f.leads[lead.ID] = lead
	if initial != nil {
		f.assignments = append(f.assignments, *initial)
	}
	return lead, nil
}

func (f *fakeRepo) Update(_ context.Context, lead domain.Lead, a *domain.Assignment) (domain.Lead, error) {
	f.leads[lead.ID] = lead
	if a != nil {
		f.assignments = append(f.assignments, *a)
	}
	return lead, nil
}

func (f *fakeRepo) SoftDelete(_ context.Context, id uuid.UUID, at time.Time) (bool, error) {
	lead := f.leads[id]
	ok := lead.SoftDelete(at)
	f.leads[id] = lead
	return ok, nil
}

func (f *fakeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.Status, progress int) error {
	lead := f.leads[id]
	lead.Status = status
	lead.Progress = progress
	f.leads[id] = lead
	return nil
}

func (f *fakeRepo) RecordCommunication(_ context.Context, comm domain.Communication, lead domain.Lead) (domain.Lead, error) {
	f.leads[lead.ID] = lead
	f.communications = append(f.communications, comm)
	return lead, nil
}

func (f *fakeRepo) ListCommunications(context.Context, uuid.UUID) ([]domain.Communication, error) {
	return f.communications, nil
}

func (f *fakeRepo) ListAssignments(context.Context, uuid.UUID) ([]domain.Assignment, error) {
	return f.assignments, nil
}

func (f *fakeRepo) ListResources(context.Context, uuid.UUID) ([]domain.ResourceAssignment, error) {
	return f.resources, nil
}

func (f *fakeRepo) UpsertResource(_ context.Context, item domain.ResourceAssignment) (domain.ResourceAssignment, error) {
	f.resources = append(f.resources, item)
	return item, nil
}

func (f *fakeRepo) DeleteResource(context.Context, uuid.UUID, uuid.UUID) error {
	return repository.ErrResourceNotFound
}

func (f *fakeRepo) ListMaterialCosts(context.Context, uuid.UUID) ([]domain.MaterialCost, error) {
	return f.costs, nil
}

func (f *fakeRepo) AddMaterialCost(_ context.Context, item domain.MaterialCost) (domain.MaterialCost, error) {
	f.costs = append(f.costs, item)
	return item, nil
}

func (f *fakeRepo) DeleteMaterialCost(context.Context, uuid.UUID, uuid.UUID) error { return nil }

type fakeCatalog struct {
	products map[uuid.UUID]domain.Product
}

func (f *fakeCatalog) ResolveProduct(_ context.Context, id uuid.UUID) (domain.Product, error) {
	p, ok := f.products[id]
	if !ok {
		return domain.Product{}, apperr.NotFound("Product not found")
	}
	return p, nil
}

func (f *fakeCatalog) ResolveTeam(_ context.Context, id uuid.UUID) (domain.Team, error) {
	return domain.Team{ID: id, Name: "Team"}, nil
}

type fakePersonnel struct {
	people map[uuid.UUID]domain.Personnel
}

func (f *fakePersonnel) GetByID(_ context.Context, id uuid.UUID) (domain.Personnel, error) {
	p, ok := f.people[id]
	if !ok {
		return domain.Personnel{}, personnelrepo.ErrNotFound
	}
	return p, nil
}

type fakeAssigner struct {
	bulkLeads []domain.Lead
	strategy  assignment.Strategy
}

func (f *fakeAssigner) AssignLead(_ context.Context, leadID, _, _ uuid.UUID, _ string) (domain.Lead, error) {
	return domain.Lead{ID: leadID}, nil
}

func (f *fakeAssigner) BulkAssign(_ context.Context, leads []domain.Lead, strategy assignment.Strategy, _ uuid.UUID, _ *uuid.UUID) (int, error) {
	f.bulkLeads = leads
	f.strategy = strategy
	return len(leads), nil
}

type fixture struct {
	svc       *Service
	repo      *fakeRepo
	catalog   *fakeCatalog
	personnel *fakePersonnel
	assigner  *fakeAssigner
	saved     []events.LeadSaved
	assigned  []events.AssignmentCreated
	comms     []events.CommunicationCreated
}

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		repo:      newFakeRepo(),
		catalog:   &fakeCatalog{products: map[uuid.UUID]domain.Product{}},
		personnel: &fakePersonnel{people: map[uuid.UUID]domain.Personnel{}},
		assigner:  &fakeAssigner{},
	}
	bus := events.NewInMemoryBus(logger.NewNop())
	bus.Subscribe(events.LeadSaved{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		f.saved = append(f.saved, e.(events.LeadSaved))
		return nil
	}))
	bus.Subscribe(events.AssignmentCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		f.assigned = append(f.assigned, e.(events.AssignmentCreated))
		return nil
	}))
	bus.Subscribe(events.CommunicationCreated{}.EventName(), events.HandlerFunc(func(_ context.Context, e events.Event) error {
		f.comms = append(f.comms, e.(events.CommunicationCreated))
		return nil
	}))

	f.svc = New(f.repo, f.catalog, f.personnel, bus, logger.NewNop()).WithAssigner(f.assigner)
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) addLead(lead domain.Lead) domain.Lead {
	if lead.ID == uuid.Nil {
		lead.ID = uuid.New()
	}
	if lead.Status == "" {
		lead.Status = domain.StatusNew
	}
	f.repo.leads[lead.ID] = lead
	return lead
}

func divisionPtr(d domain.Division) *domain.Division { return &d }

var admin = access.Principal{ID: uuid.New(), Role: domain.RoleAdmin}

func fieldDetails(t *testing.T, err error) map[string]string {
	t.Helper()
	e, ok := apperr.As(err)
	if !ok || e.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := e.Details.(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %#v", e.Details)
	}
	return details
}

func TestCreateRejectsProductFromOtherDivision(t *testing.T) {
	f := newFixture()
	product := domain.Product{ID: uuid.New(), Name: "Fund", Division: domain.DivisionCapital}
	f.catalog.products[product.ID] = product

	_, err := f.svc.Create(context.Background(), admin, transport.CreateLeadRequest{
		Company:   "Acme",
		Division:  "tech",
		ProductID: &product.ID,
	})
	details := fieldDetails(t, err)
	if details["productId"] != msgProductDivision {
		t.Fatalf("expected product division error, got %v", details)
	}
	if len(f.repo.leads) != 0 || len(f.saved) != 0 {
		t.Fatalf("expected nothing persisted or published")
	}
}

func TestCreateRejectsDuplicateCompanyCaseInsensitive(t *testing.T) {
	f := newFixture()
	f.addLead(domain.Lead{Company: "Acme Ltd", Division: domain.DivisionTech})

	_, err := f.svc.Create(context.Background(), admin, transport.CreateLeadRequest{Company: "  ACME LTD ", Division: "tech"})
	details := fieldDetails(t, err)
	if details["company"] != msgDuplicateCompany {
		t.Fatalf("expected duplicate company error, got %v", details)
	}
}

func TestCreateValidatesContactFields(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), admin, transport.CreateLeadRequest{
		Company:  "Acme",
		Division: "tech",
		Email:    "not-an-email",
		Phone:    "12-34",
	})
	details := fieldDetails(t, err)
	if details["email"] != msgInvalidEmail || details["phone"] != msgInvalidPhone {
		t.Fatalf("expected email and phone errors, got %v", details)
	}
}

func TestCreateOutsideOwnDivisionForbidden(t *testing.T) {
	f := newFixture()
	manager := access.Principal{ID: uuid.New(), Role: domain.RoleManager, Division: divisionPtr(domain.DivisionTech)}

	_, err := f.svc.Create(context.Background(), manager, transport.CreateLeadRequest{Company: "Acme", Division: "capital"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreateWithAssigneeWritesInitialAssignment(t *testing.T) {
	f := newFixture()
	agent := domain.Personnel{ID: uuid.New(), Username: "agent", Role: domain.RoleAgent}
	f.personnel.people[agent.ID] = agent

	created, err := f.svc.Create(context.Background(), admin, transport.CreateLeadRequest{
		Company:                 "Acme",
		Division:                "tech",
		Status:                  "qualified",
		Email:                   "info@acme.co.zm",
		Phone:                   "+260 97 1234567",
		DealValue:               1000,
		ProbabilityOfCompletion: 40,
		AssignedTo:              &agent.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.Progress != 50 {
		t.Fatalf("expected progress 50 for qualified, got %d", created.Progress)
	}
	if created.CreatedBy == nil || *created.CreatedBy != admin.ID {
		t.Fatalf("expected created_by to be the caller")
	}
	if len(f.repo.assignments) != 1 || f.repo.assignments[0].Reason != "Initial assignment" {
		t.Fatalf("expected one initial assignment, got %+v", f.repo.assignments)
	}
	if f.repo.assignments[0].FromPersonnelID != nil {
		t.Fatalf("expected no prior assignee on creation")
	}
	if len(f.saved) != 1 || !f.saved[0].Created {
		t.Fatalf("expected one LeadSaved for creation, got %+v", f.saved)
	}
	if len(f.assigned) != 1 || f.assigned[0].ToPersonnelID != agent.ID {
		t.Fatalf("expected assignment event for the agent, got %+v", f.assigned)
	}
}

func TestCreateUnknownAssignee(t *testing.T) {
	f := newFixture()
	ghost := uuid.New()

	_, err := f.svc.Create(context.Background(), admin, transport.CreateLeadRequest{Company: "Acme", Division: "tech", AssignedTo: &ghost})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateProbabilityIsImmutable(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, ProbabilityOfCompletion: 30})

	changed := 50
	_, err := f.svc.Update(context.Background(), admin, lead.ID, transport.UpdateLeadRequest{ProbabilityOfCompletion: &changed})
	details := fieldDetails(t, err)
	if details["probabilityOfCompletion"] != msgProbabilityLocked {
		t.Fatalf("expected probability error, got %v", details)
	}

	same := 30
	comments := "still keen"
	if _, err := f.svc.Update(context.Background(), admin, lead.ID, transport.UpdateLeadRequest{ProbabilityOfCompletion: &same, Comments: &comments}); err != nil {
		t.Fatalf("expected unchanged probability to pass, got %v", err)
	}
}

func TestUpdateReportsChangedFields(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, Status: domain.StatusNew, Progress: 10})

	status := "proposal"
	deal := 2500.0
	updated, err := f.svc.Update(context.Background(), admin, lead.ID, transport.UpdateLeadRequest{Status: &status, DealValue: &deal})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Progress != 75 {
		t.Fatalf("expected progress 75, got %d", updated.Progress)
	}
	if len(f.saved) != 1 {
		t.Fatalf("expected one LeadSaved, got %d", len(f.saved))
	}
	want := []string{"status", "progress", "deal_value"}
	got := f.saved[0].ChangedFields
	if len(got) != len(want) {
		t.Fatalf("expected changed fields %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected changed fields %v, got %v", want, got)
		}
	}
}

func TestUpdateAssigneeAppendsEditedAssignment(t *testing.T) {
	f := newFixture()
	prior := uuid.New()
	next := domain.Personnel{ID: uuid.New(), Username: "next"}
	f.personnel.people[next.ID] = next
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, AssignedTo: &prior})

	_, err := f.svc.Update(context.Background(), admin, lead.ID, transport.UpdateLeadRequest{
		AssignedTo: transport.OptionalUUID{Value: &next.ID, Set: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.assignments) != 1 {
		t.Fatalf("expected one assignment, got %d", len(f.repo.assignments))
	}
	a := f.repo.assignments[0]
	if a.Reason != "Lead edited" || a.FromPersonnelID == nil || *a.FromPersonnelID != prior {
		t.Fatalf("unexpected assignment %+v", a)
	}
	if len(f.assigned) != 1 {
		t.Fatalf("expected assignment event")
	}
}

func TestUpdateDivisionMustMatchProduct(t *testing.T) {
	f := newFixture()
	product := domain.Product{ID: uuid.New(), Division: domain.DivisionTech}
	f.catalog.products[product.ID] = product
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, ProductID: &product.ID})

	division := "actuarial"
	_, err := f.svc.Update(context.Background(), admin, lead.ID, transport.UpdateLeadRequest{Division: &division})
	details := fieldDetails(t, err)
	if details["productId"] != msgProductDivision {
		t.Fatalf("expected product division error, got %v", details)
	}
	if f.repo.leads[lead.ID].Division != domain.DivisionTech {
		t.Fatalf("expected lead unchanged")
	}
}

func TestTeamAgentCannotEdit(t *testing.T) {
	f := newFixture()
	team := uuid.New()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, TeamID: &team})
	agent := access.Principal{ID: uuid.New(), Role: domain.RoleAgent, TeamID: &team}

	comments := "x"
	_, err := f.svc.Update(context.Background(), agent, lead.ID, transport.UpdateLeadRequest{Comments: &comments})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), agent, lead.ID); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden delete, got %v", err)
	}
	if _, err := f.svc.Get(context.Background(), agent, lead.ID); err != nil {
		t.Fatalf("expected team agent to view the lead, got %v", err)
	}
}

func TestDeleteSoftDeletesAndHides(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, Status: domain.StatusHot, Progress: 95})

	if err := f.svc.Delete(context.Background(), admin, lead.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stored := f.repo.leads[lead.ID]
	if !stored.IsDeleted || stored.Status != domain.StatusInactive || stored.Progress != 0 {
		t.Fatalf("unexpected soft-deleted lead %+v", stored)
	}
	if _, err := f.svc.Get(context.Background(), admin, lead.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected deleted lead to be not found, got %v", err)
	}
}

func TestLogCommunicationAdvancesNewLeads(t *testing.T) {
	f := newFixture()
	call := f.addLead(domain.Lead{Company: "Call Co", Division: domain.DivisionTech})
	mail := f.addLead(domain.Lead{Company: "Mail Co", Division: domain.DivisionTech})

	resp, err := f.svc.LogCommunication(context.Background(), admin, call.ID, transport.LogCommunicationRequest{Type: "call", Note: "Intro call"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "contacted" || resp.Progress != 25 {
		t.Fatalf("expected contacted/25, got %s/%d", resp.Status, resp.Progress)
	}
	if resp.LastContact == nil || *resp.LastContact != "2024-05-10" {
		t.Fatalf("expected last contact today, got %v", resp.LastContact)
	}

	resp, err = f.svc.LogCommunication(context.Background(), admin, mail.ID, transport.LogCommunicationRequest{Type: "email", Note: "Sent deck"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "new" {
		t.Fatalf("expected e-mail to keep status new, got %s", resp.Status)
	}

	status := "qualified"
	followUp := "2024-06-01"
	resp, err = f.svc.LogCommunication(context.Background(), admin, mail.ID, transport.LogCommunicationRequest{
		Type: "email", Note: "Reply", NewStatus: &status, NextFollowUp: &followUp,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Status != "qualified" || resp.FollowUpDate == nil || *resp.FollowUpDate != followUp {
		t.Fatalf("expected explicit status and follow-up, got %s %v", resp.Status, resp.FollowUpDate)
	}

	if len(f.comms) != 3 || f.comms[0].AuthorID != admin.ID {
		t.Fatalf("expected three communication events, got %d", len(f.comms))
	}
}

func TestLogCommunicationRequiresView(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionCapital})
	agent := access.Principal{ID: uuid.New(), Role: domain.RoleAgent}

	_, err := f.svc.LogCommunication(context.Background(), agent, lead.ID, transport.LogCommunicationRequest{Type: "call", Note: "x"})
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	if len(f.repo.communications) != 0 {
		t.Fatalf("expected no communication stored")
	}
}

func TestBulkUpdateStatusCountsEditableOnly(t *testing.T) {
	f := newFixture()
	agentID := uuid.New()
	mine := f.addLead(domain.Lead{Company: "Mine", Division: domain.DivisionTech, AssignedTo: &agentID})
	other := f.addLead(domain.Lead{Company: "Other", Division: domain.DivisionTech})
	agent := access.Principal{ID: agentID, Role: domain.RoleAgent}

	result, err := f.svc.BulkUpdateStatus(context.Background(), agent, transport.BulkStatusRequest{
		LeadIDs: []uuid.UUID{mine.ID, other.ID, uuid.New()},
		Status:  "won",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 1 || result.Message != "Successfully updated 1 leads." {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := f.repo.leads[mine.ID]; got.Status != domain.StatusWon || got.Progress != 100 {
		t.Fatalf("expected won/100, got %s/%d", got.Status, got.Progress)
	}
	if f.repo.leads[other.ID].Status != domain.StatusNew {
		t.Fatalf("expected other lead untouched")
	}
}

func TestBulkUpdateStatusIgnoresClientProgress(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech, Status: domain.StatusContacted, Progress: 30})

	var req transport.BulkStatusRequest
	body := fmt.Sprintf(`{"leadIds":[%q],"status":"won","progress":30}`, lead.ID.String())
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("decode request: %v", err)
	}

	if _, err := f.svc.BulkUpdateStatus(context.Background(), admin, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := f.repo.leads[lead.ID]; got.Status != domain.StatusWon || got.Progress != 100 {
		t.Fatalf("expected won/100, got %s/%d", got.Status, got.Progress)
	}
}

func TestBulkDelete(t *testing.T) {
	f := newFixture()
	a := f.addLead(domain.Lead{Company: "A", Division: domain.DivisionTech})
	b := f.addLead(domain.Lead{Company: "B", Division: domain.DivisionTech})

	result, err := f.svc.BulkDelete(context.Background(), admin, transport.BulkDeleteRequest{LeadIDs: []uuid.UUID{a.ID, b.ID}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 2 || result.Message != "Successfully deleted 2 leads." {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBulkAssignRules(t *testing.T) {
	f := newFixture()
	agent := access.Principal{ID: uuid.New(), Role: domain.RoleAgent}
	if _, err := f.svc.BulkAssign(context.Background(), agent, transport.BulkAssignRequest{Strategy: "round-robin"}); !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for agent, got %v", err)
	}

	manager := access.Principal{ID: uuid.New(), Role: domain.RoleManager, Division: divisionPtr(domain.DivisionTech)}
	_, err := f.svc.BulkAssign(context.Background(), manager, transport.BulkAssignRequest{Strategy: "round-robin"})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for empty base, got %v", err)
	}

	someone := uuid.New()
	f.addLead(domain.Lead{Company: "Assigned", Division: domain.DivisionTech, AssignedTo: &someone})
	open := f.addLead(domain.Lead{Company: "Open", Division: domain.DivisionTech})
	f.addLead(domain.Lead{Company: "Elsewhere", Division: domain.DivisionCapital})

	result, err := f.svc.BulkAssign(context.Background(), manager, transport.BulkAssignRequest{Strategy: "workload", Scope: "unassigned"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Count != 1 || len(f.assigner.bulkLeads) != 1 || f.assigner.bulkLeads[0].ID != open.ID {
		t.Fatalf("expected only the open tech lead, got %+v", f.assigner.bulkLeads)
	}
	if f.assigner.strategy != assignment.StrategyWorkload {
		t.Fatalf("expected workload strategy, got %s", f.assigner.strategy)
	}
}

func TestListUsesAccessScope(t *testing.T) {
	f := newFixture()
	manager := access.Principal{ID: uuid.New(), Role: domain.RoleManager, Division: divisionPtr(domain.DivisionTech)}
	f.addLead(domain.Lead{Company: "Tech", Division: domain.DivisionTech})
	f.addLead(domain.Lead{Company: "Fund", Division: domain.DivisionCapital})

	result, err := f.svc.List(context.Background(), manager, transport.ListLeadsRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 1 || result.Items[0].Company != "Tech" {
		t.Fatalf("expected only the tech lead, got %+v", result.Items)
	}
	if f.repo.lastParams.Limit != 10 || f.repo.lastParams.Offset != 0 {
		t.Fatalf("unexpected paging %+v", f.repo.lastParams)
	}
}

func TestResourceDefaultsToPersonnelRate(t *testing.T) {
	f := newFixture()
	lead := f.addLead(domain.Lead{Company: "Acme", Division: domain.DivisionTech})
	consultant := domain.Personnel{ID: uuid.New(), Username: "c", DailyRate: 1200}
	f.personnel.people[consultant.ID] = consultant

	resp, err := f.svc.AddResource(context.Background(), admin, lead.ID, transport.AddResourceRequest{PersonnelID: consultant.ID, DaysAllocated: 2.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.DailyRate != 1200 || resp.TotalCost != 3000 {
		t.Fatalf("expected rate 1200 and total 3000, got %v and %v", resp.DailyRate, resp.TotalCost)
	}

	if err := f.svc.RemoveResource(context.Background(), admin, lead.ID, uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFollowUpsOnlyDatedAccessibleLeads(t *testing.T) {
	f := newFixture()
	due := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	agentID := uuid.New()
	mine := f.addLead(domain.Lead{Company: "Mine", Division: domain.DivisionTech, AssignedTo: &agentID, FollowUpDate: &due})
	f.addLead(domain.Lead{Company: "Undated", Division: domain.DivisionTech, AssignedTo: &agentID})
	f.addLead(domain.Lead{Company: "Others", Division: domain.DivisionTech, FollowUpDate: &due})

	leads, err := f.svc.FollowUps(context.Background(), access.Principal{ID: agentID, Role: domain.RoleAgent})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(leads) != 1 || leads[0].ID != mine.ID {
		t.Fatalf("expected only the dated assigned lead, got %+v", leads)
	}
}

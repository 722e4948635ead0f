package assignment

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	leadsrepo "leadpipeline_backend/internal/leads/repository"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeLeads struct {
	leads          map[uuid.UUID]domain.Lead
	assignments    []domain.Assignment
	communications []domain.Communication
}

func (f *fakeLeads) GetByID(_ context.Context, id uuid.UUID) (domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, leadsrepo.ErrNotFound
	}
	return lead, nil
}

func (f *fakeLeads) ApplyAssignment(_ context.Context, a domain.Assignment, note domain.Communication) (domain.Lead, error) {
	lead, ok := f.leads[a.LeadID]
	if !ok || lead.IsDeleted {
		return domain.Lead{}, leadsrepo.ErrNotFound
	}
	to := a.ToPersonnelID
	lead.AssignedTo = &to
	f.leads[lead.ID] = lead
	f.assignments = append(f.assignments, a)
	f.communications = append(f.communications, note)
	return lead, nil
}

type fakePersonnel struct {
	people    []domain.PersonnelWithWorkload
	listCalls int
}

func (f *fakePersonnel) GetByID(_ context.Context, id uuid.UUID) (domain.Personnel, error) {
	for _, p := range f.people {
		if p.ID == id {
			return p.Personnel, nil
		}
	}
	return domain.Personnel{}, personnelrepo.ErrNotFound
}

func (f *fakePersonnel) ListActiveWithWorkload(_ context.Context, _ *domain.Division) ([]domain.PersonnelWithWorkload, error) {
	f.listCalls++
	out := make([]domain.PersonnelWithWorkload, 0, len(f.people))
	for _, p := range f.people {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func person(id string, first string, division domain.Division, workload int) domain.PersonnelWithWorkload {
	d := division
	return domain.PersonnelWithWorkload{
		Personnel: domain.Personnel{
			ID:        uuid.MustParse(id),
			Username:  first,
			FirstName: first,
			Division:  &d,
			Role:      domain.RoleAgent,
			IsActive:  true,
		},
		Workload: workload,
	}
}

const (
	p1ID = "00000000-0000-0000-0000-000000000001"
	p2ID = "00000000-0000-0000-0000-000000000002"
	p3ID = "00000000-0000-0000-0000-000000000003"
)

type harness struct {
	engine    *Engine
	leads     *fakeLeads
	personnel *fakePersonnel
	published []string
}

func newHarness(people ...domain.PersonnelWithWorkload) *harness {
	h := &harness{
		leads:     &fakeLeads{leads: map[uuid.UUID]domain.Lead{}},
		personnel: &fakePersonnel{people: people},
	}
	bus := events.NewInMemoryBus(logger.NewNop())
	record := events.HandlerFunc(func(_ context.Context, e events.Event) error {
		h.published = append(h.published, e.EventName())
		return nil
	})
	bus.Subscribe(events.LeadSaved{}.EventName(), record)
	bus.Subscribe(events.AssignmentCreated{}.EventName(), record)
	bus.Subscribe(events.CommunicationCreated{}.EventName(), record)

	h.engine = New(h.leads, h.personnel, bus, logger.NewNop())
	h.engine.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return h
}

func (h *harness) addLead(company string, division domain.Division) domain.Lead {
	lead := domain.Lead{ID: uuid.New(), Company: company, Division: division, Status: domain.StatusNew}
	h.leads.leads[lead.ID] = lead
	return lead
}

func TestAssignLeadWritesAuditPair(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0), person(p2ID, "Ben", domain.DivisionTech, 0))
	lead := h.addLead("Acme", domain.DivisionTech)
	admin := uuid.New()

	updated, err := h.engine.AssignLead(context.Background(), lead.ID, uuid.MustParse(p1ID), admin, "Initial")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.AssignedTo == nil || *updated.AssignedTo != uuid.MustParse(p1ID) {
		t.Fatalf("expected lead assigned to Ann, got %v", updated.AssignedTo)
	}
	if len(h.leads.assignments) != 1 || len(h.leads.communications) != 1 {
		t.Fatalf("expected one assignment and one communication, got %d and %d", len(h.leads.assignments), len(h.leads.communications))
	}
	a := h.leads.assignments[0]
	if a.FromPersonnelID != nil {
		t.Fatalf("expected no prior assignee, got %v", a.FromPersonnelID)
	}
	if a.AssignedByID == nil || *a.AssignedByID != admin {
		t.Fatalf("expected assigned_by to be the caller")
	}
	note := h.leads.communications[0]
	if note.Type != domain.CommReassignment {
		t.Fatalf("expected reassignment communication, got %s", note.Type)
	}
	if want := "Lead reassigned from Unassigned to Ann. Reason: Initial"; note.Note != want {
		t.Fatalf("expected note %q, got %q", want, note.Note)
	}
	if note.UserID != admin {
		t.Fatalf("expected note authored by the caller")
	}

	wantEvents := []string{"leads.lead.saved", "leads.assignment.created", "leads.communication.created"}
	if len(h.published) != len(wantEvents) {
		t.Fatalf("expected events %v, got %v", wantEvents, h.published)
	}
	for i := range wantEvents {
		if h.published[i] != wantEvents[i] {
			t.Fatalf("expected events %v, got %v", wantEvents, h.published)
		}
	}

	if _, err := h.engine.AssignLead(context.Background(), lead.ID, uuid.MustParse(p2ID), admin, "Coverage"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "Lead reassigned from Ann to Ben. Reason: Coverage"; h.leads.communications[1].Note != want {
		t.Fatalf("expected note %q, got %q", want, h.leads.communications[1].Note)
	}
	if from := h.leads.assignments[1].FromPersonnelID; from == nil || *from != uuid.MustParse(p1ID) {
		t.Fatalf("expected prior assignee Ann, got %v", from)
	}
}

func TestAssignLeadSameAssigneeStillRecords(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	lead := h.addLead("Acme", domain.DivisionTech)
	p1 := uuid.MustParse(p1ID)

	for i := 0; i < 2; i++ {
		if _, err := h.engine.AssignLead(context.Background(), lead.ID, p1, p1, "Re-affirm"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(h.leads.assignments) != 2 || len(h.leads.communications) != 2 {
		t.Fatalf("expected two audit pairs, got %d assignments and %d communications", len(h.leads.assignments), len(h.leads.communications))
	}
}

func TestAssignLeadNotFound(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	lead := h.addLead("Acme", domain.DivisionTech)

	_, err := h.engine.AssignLead(context.Background(), uuid.New(), uuid.MustParse(p1ID), uuid.New(), "x")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown lead, got %v", err)
	}
	_, err = h.engine.AssignLead(context.Background(), lead.ID, uuid.New(), uuid.New(), "x")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for unknown personnel, got %v", err)
	}

	deleted := h.leads.leads[lead.ID]
	deleted.SoftDelete(time.Now())
	h.leads.leads[lead.ID] = deleted
	_, err = h.engine.AssignLead(context.Background(), lead.ID, uuid.MustParse(p1ID), uuid.New(), "x")
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for deleted lead, got %v", err)
	}
	if len(h.leads.assignments) != 0 || len(h.published) != 0 {
		t.Fatalf("expected no writes or events on failure")
	}
}

func TestBulkAssignRoundRobin(t *testing.T) {
	// Pool is deliberately listed out of id order.
	h := newHarness(person(p2ID, "Ben", domain.DivisionTech, 0), person(p1ID, "Ann", domain.DivisionTech, 0))
	l1 := h.addLead("L1", domain.DivisionTech)
	l2 := h.addLead("L2", domain.DivisionTech)
	l3 := h.addLead("L3", domain.DivisionTech)

	count, err := h.engine.BulkAssign(context.Background(), []domain.Lead{l1, l2, l3}, StrategyRoundRobin, uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 assigned, got %d", count)
	}

	want := map[uuid.UUID]string{l1.ID: p1ID, l2.ID: p2ID, l3.ID: p1ID}
	for leadID, personnelID := range want {
		got := h.leads.leads[leadID].AssignedTo
		if got == nil || *got != uuid.MustParse(personnelID) {
			t.Fatalf("expected %s assigned to %s, got %v", h.leads.leads[leadID].Company, personnelID, got)
		}
	}
	if len(h.leads.assignments) != 3 || len(h.leads.communications) != 3 {
		t.Fatalf("expected one audit pair per lead")
	}
	for _, a := range h.leads.assignments {
		if a.Reason != "Round-robin assignment" {
			t.Fatalf("unexpected reason %q", a.Reason)
		}
	}
}

func TestBulkAssignWorkloadUsesOneSnapshot(t *testing.T) {
	h := newHarness(
		person(p1ID, "Ann", domain.DivisionTech, 4),
		person(p2ID, "Ben", domain.DivisionCapital, 1),
		person(p3ID, "Cat", domain.DivisionTech, 1),
	)
	leads := []domain.Lead{h.addLead("A", domain.DivisionTech), h.addLead("B", domain.DivisionTech)}

	count, err := h.engine.BulkAssign(context.Background(), leads, StrategyWorkload, uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 assigned, got %d", count)
	}
	for _, lead := range leads {
		got := h.leads.leads[lead.ID].AssignedTo
		if got == nil || *got != uuid.MustParse(p2ID) {
			t.Fatalf("expected tie broken to lowest id Ben, got %v", got)
		}
	}
	if h.personnel.listCalls != 1 {
		t.Fatalf("expected a single workload snapshot, got %d", h.personnel.listCalls)
	}
}

func TestBulkAssignDivisionSkipsEmptyPools(t *testing.T) {
	h := newHarness(
		person(p1ID, "Ann", domain.DivisionTech, 2),
		person(p3ID, "Cat", domain.DivisionTech, 0),
	)
	tech := h.addLead("Tech Co", domain.DivisionTech)
	capital := h.addLead("Fund Co", domain.DivisionCapital)

	count, err := h.engine.BulkAssign(context.Background(), []domain.Lead{capital, tech}, StrategyDivision, uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 assigned, got %d", count)
	}
	if h.leads.leads[capital.ID].AssignedTo != nil {
		t.Fatalf("expected capital lead skipped")
	}
	if got := h.leads.leads[tech.ID].AssignedTo; got == nil || *got != uuid.MustParse(p3ID) {
		t.Fatalf("expected tech lead assigned to Cat, got %v", got)
	}
	if len(h.leads.assignments) != 1 {
		t.Fatalf("expected no audit rows for skipped leads")
	}
}

func TestBulkAssignManual(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	leads := []domain.Lead{h.addLead("A", domain.DivisionTech), h.addLead("B", domain.DivisionCapital)}

	unknown := uuid.New()
	count, err := h.engine.BulkAssign(context.Background(), leads, StrategyManual, uuid.New(), &unknown)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 assigned without error for unknown assignee, got %d, %v", count, err)
	}

	target := uuid.MustParse(p1ID)
	count, err = h.engine.BulkAssign(context.Background(), leads, StrategyManual, uuid.New(), &target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected 2 assigned, got %d", count)
	}
	if h.leads.assignments[0].Reason != "Bulk manual assignment" {
		t.Fatalf("unexpected reason %q", h.leads.assignments[0].Reason)
	}
}

func TestBulkAssignEmptyPoolAndFailures(t *testing.T) {
	h := newHarness()
	leads := []domain.Lead{h.addLead("A", domain.DivisionTech)}

	count, err := h.engine.BulkAssign(context.Background(), leads, StrategyRoundRobin, uuid.New(), nil)
	if err != nil || count != 0 {
		t.Fatalf("expected 0 assigned for empty pool, got %d, %v", count, err)
	}

	h = newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	ghost := domain.Lead{ID: uuid.New(), Company: "Ghost", Division: domain.DivisionTech}
	live := h.addLead("Real", domain.DivisionTech)
	count, err = h.engine.BulkAssign(context.Background(), []domain.Lead{ghost, live}, StrategyWorkload, uuid.New(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected the batch to continue past a failing lead, got %d", count)
	}
}

func TestBulkAssignRejectsUnknownStrategy(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	_, err := h.engine.BulkAssign(context.Background(), nil, Strategy("random"), uuid.New(), nil)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBulkAssignStopsOnCancel(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	leads := []domain.Lead{h.addLead("A", domain.DivisionTech)}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count, err := h.engine.BulkAssign(ctx, leads, StrategyRoundRobin, uuid.New(), nil)
	if err == nil || count != 0 {
		t.Fatalf("expected cancellation before any assignment, got %d, %v", count, err)
	}
}

func TestAssignmentLogsCarryRequestID(t *testing.T) {
	h := newHarness(person(p1ID, "Ann", domain.DivisionTech, 0))
	var buf bytes.Buffer
	h.engine.log = &logger.Logger{Logger: slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))}
	lead := h.addLead("Acme", domain.DivisionTech)

	ctx := context.WithValue(context.Background(), logger.RequestIDKey, "req-42")
	if _, err := h.engine.BulkAssign(ctx, []domain.Lead{lead}, StrategyRoundRobin, uuid.New(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) < 2 {
		t.Fatalf("expected assignment and summary log lines, got %q", buf.String())
	}
	for _, line := range lines {
		if !strings.Contains(line, `"request_id":"req-42"`) {
			t.Fatalf("expected request id on every line, got %s", line)
		}
	}
}

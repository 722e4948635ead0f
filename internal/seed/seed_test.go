package seed

import (
	"context"
	"errors"
	"strings"
	"testing"

	"leadpipeline_backend/internal/auth/password"
	"leadpipeline_backend/internal/domain"
)

type fakeCatalog struct {
	teams    []domain.Team
	products []domain.Product
}

func (f *fakeCatalog) CreateTeam(_ context.Context, t domain.Team) (domain.Team, error) {
	f.teams = append(f.teams, t)
	return t, nil
}

func (f *fakeCatalog) CreateProduct(_ context.Context, p domain.Product) (domain.Product, error) {
	f.products = append(f.products, p)
	return p, nil
}

type fakePersonnel struct {
	created []domain.Personnel
	err     error
}

func (f *fakePersonnel) Create(_ context.Context, p domain.Personnel) (domain.Personnel, error) {
	if f.err != nil {
		return domain.Personnel{}, f.err
	}
	f.created = append(f.created, p)
	return p, nil
}

type createdLead struct {
	lead    domain.Lead
	initial *domain.Assignment
}

type fakeLeads struct {
	created []createdLead
}

func (f *fakeLeads) Create(_ context.Context, l domain.Lead, initial *domain.Assignment) (domain.Lead, error) {
	f.created = append(f.created, createdLead{lead: l, initial: initial})
	return l, nil
}

func TestDemoFixtureLoads(t *testing.T) {
	f, err := Demo()
	if err != nil {
		t.Fatalf("expected demo fixture to parse, got %v", err)
	}

	catalog := &fakeCatalog{}
	people := &fakePersonnel{}
	leads := &fakeLeads{}
	res, err := NewLoader(catalog, people, leads, nil).Load(context.Background(), f)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if res.Teams != 3 || res.Personnel != 5 || res.Products != 4 || res.Leads != 4 {
		t.Fatalf("unexpected counts %+v", res)
	}
	if len(leads.created) != 4 {
		t.Fatalf("expected 4 leads written, got %d", len(leads.created))
	}
}

func TestLoadResolvesReferences(t *testing.T) {
	f, err := Parse(strings.NewReader(`
teams:
  - name: Alpha
    division: tech
personnel:
  - username: Agent1
    password: secretpass
    first_name: Jane
    last_name: Doe
    email: " Jane@Example.com "
    division: tech
    role: agent
    team: Alpha
products:
  - name: Widget
    division: tech
leads:
  - company: Acme
    division: tech
    product: Widget
    status: won
    assigned_to: agent1
    team: Alpha
    follow_up: "2026-01-15"
  - company: Beta
    division: tech
`))
	if err != nil {
		t.Fatalf("expected fixture to parse, got %v", err)
	}

	catalog := &fakeCatalog{}
	people := &fakePersonnel{}
	leads := &fakeLeads{}
	if _, err := NewLoader(catalog, people, leads, nil).Load(context.Background(), f); err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	person := people.created[0]
	if person.TeamID == nil || *person.TeamID != catalog.teams[0].ID {
		t.Fatalf("expected personnel linked to team")
	}
	if person.Email != "jane@example.com" {
		t.Fatalf("expected normalized email, got %q", person.Email)
	}
	if person.AvatarText != "JD" {
		t.Fatalf("expected initials JD, got %q", person.AvatarText)
	}
	if err := password.Compare(person.PasswordHash, "secretpass"); err != nil {
		t.Fatalf("expected stored hash to match password")
	}

	acme := leads.created[0]
	if acme.lead.AssignedTo == nil || *acme.lead.AssignedTo != person.ID {
		t.Fatalf("expected lead assigned to %s", person.ID)
	}
	if acme.lead.ProductID == nil || *acme.lead.ProductID != catalog.products[0].ID {
		t.Fatalf("expected lead linked to product")
	}
	if acme.lead.Progress != 100 {
		t.Fatalf("expected progress 100 for won lead, got %d", acme.lead.Progress)
	}
	if acme.lead.FollowUpDate == nil || acme.lead.FollowUpDate.Day() != 15 {
		t.Fatalf("expected follow-up date parsed")
	}
	if acme.initial == nil || acme.initial.Reason != "Initial assignment" || acme.initial.LeadID != acme.lead.ID {
		t.Fatalf("expected initial assignment record, got %+v", acme.initial)
	}

	beta := leads.created[1]
	if beta.initial != nil || beta.lead.AssignedTo != nil {
		t.Fatalf("expected unassigned lead without assignment record")
	}
	if beta.lead.Status != domain.StatusNew || beta.lead.Priority != domain.PriorityMedium {
		t.Fatalf("expected defaults new/medium, got %s/%s", beta.lead.Status, beta.lead.Priority)
	}
}

func TestParseRejectsBadReferences(t *testing.T) {
	_, err := Parse(strings.NewReader(`
personnel:
  - username: a
    password: secretpass
    role: wizard
products:
  - name: Widget
    division: tech
leads:
  - company: Acme
    division: capital
    product: Widget
    assigned_to: nobody
`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"unknown role", "belongs to tech", "unknown assignee"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected error to mention %q, got %v", want, err)
		}
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("teams:\n  - name: A\n    colour: red\n"))
	if err == nil {
		t.Fatalf("expected unknown key to be rejected")
	}
}

func TestLoadStopsOnStoreError(t *testing.T) {
	f := Fixture{
		Personnel: []PersonnelFixture{{Username: "a", Password: "secretpass", Role: "agent"}},
		Leads:     []LeadFixture{{Company: "Acme", Division: "tech"}},
	}
	storeErr := errors.New("duplicate")
	leads := &fakeLeads{}
	res, err := NewLoader(&fakeCatalog{}, &fakePersonnel{err: storeErr}, leads, nil).Load(context.Background(), f)
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	if res.Personnel != 0 || len(leads.created) != 0 {
		t.Fatalf("expected nothing written after failure, got %+v", res)
	}
}

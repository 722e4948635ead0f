// Package access decides which leads a principal may see and change.
// Every function here is pure; the principal is rebuilt from the personnel
// store on each request, so role, division and team changes apply at once.
package access

import (
	"context"

	"leadpipeline_backend/internal/domain"

	"github.com/google/uuid"
)

// Capabilities is what a role is allowed to do regardless of the lead.
type Capabilities struct {
	ViewAll bool
	Manage  bool
}

var capabilityTable = map[domain.Role]Capabilities{
	domain.RoleAdmin:     {ViewAll: true, Manage: true},
	domain.RoleExecutive: {ViewAll: true, Manage: true},
	domain.RoleManager:   {Manage: true},
	domain.RoleAgent:     {},
}

// CapabilitiesFor returns the capability set of role. Unknown roles get none.
func CapabilitiesFor(role domain.Role) Capabilities {
	return capabilityTable[role]
}

// Principal is the acting person as seen by the policy.
type Principal struct {
	ID       uuid.UUID
	Role     domain.Role
	Division *domain.Division
	TeamID   *uuid.UUID
}

// FromPersonnel builds the principal for p.
func FromPersonnel(p domain.Personnel) Principal {
	return Principal{ID: p.ID, Role: p.Role, Division: p.Division, TeamID: p.TeamID}
}

func (p Principal) CanViewAllLeads() bool { return CapabilitiesFor(p.Role).ViewAll }
func (p Principal) CanManageLeads() bool  { return CapabilitiesFor(p.Role).Manage }

// InDivision reports whether the principal belongs to division d.
func (p Principal) InDivision(d domain.Division) bool {
	return p.Division != nil && *p.Division == d
}

func (p Principal) sharesTeam(teamID *uuid.UUID) bool {
	return teamID != nil && p.TeamID != nil && *teamID == *p.TeamID
}

// Scope is a predicate over the lead set. Non-deleted is always implied;
// a lead matches when All is set or when any of the non-nil criteria hold.
// A zero Scope matches nothing.
type Scope struct {
	All        bool
	Division   *domain.Division
	TeamID     *uuid.UUID
	AssignedTo *uuid.UUID
}

// Matches evaluates the scope in memory.
func (s Scope) Matches(lead domain.Lead) bool {
	if lead.IsDeleted {
		return false
	}
	if s.All {
		return true
	}
	if s.Division != nil && lead.Division == *s.Division {
		return true
	}
	if s.TeamID != nil && lead.TeamID != nil && *lead.TeamID == *s.TeamID {
		return true
	}
	return s.AssignedTo != nil && lead.IsAssignedTo(*s.AssignedTo)
}

// AccessibleLeads returns the lead set the principal may query.
func AccessibleLeads(p Principal) Scope {
	switch {
	case p.CanViewAllLeads():
		return Scope{All: true}
	case p.CanManageLeads():
		return Scope{Division: p.Division, TeamID: p.TeamID}
	default:
		id := p.ID
		return Scope{AssignedTo: &id, TeamID: p.TeamID}
	}
}

// CanView reports whether the principal may read lead.
func CanView(p Principal, lead domain.Lead) bool {
	if p.CanViewAllLeads() {
		return true
	}
	if p.sharesTeam(lead.TeamID) {
		return true
	}
	if p.CanManageLeads() {
		return p.InDivision(lead.Division)
	}
	return lead.IsAssignedTo(p.ID)
}

// CanEdit reports whether the principal may change lead. Team membership
// grants edit rights to managers only.
func CanEdit(p Principal, lead domain.Lead) bool {
	if p.CanViewAllLeads() {
		return true
	}
	if p.CanManageLeads() && p.sharesTeam(lead.TeamID) {
		return true
	}
	if p.CanManageLeads() {
		return p.InDivision(lead.Division)
	}
	return lead.IsAssignedTo(p.ID)
}

type principalKey struct{}

// NewContext returns a copy of ctx carrying p.
func NewContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by NewContext.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

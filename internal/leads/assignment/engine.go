// Package assignment moves leads between personnel. Every change of
// assignee writes an Assignment row and a reassignment Communication and
// publishes the events the dispatcher reacts to.
package assignment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/events"
	leadsrepo "leadpipeline_backend/internal/leads/repository"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

// Strategy selects how BulkAssign picks an assignee per lead.
type Strategy string

const (
	StrategyManual     Strategy = "manual"
	StrategyRoundRobin Strategy = "round-robin"
	StrategyWorkload   Strategy = "workload"
	StrategyDivision   Strategy = "division"
)

var strategyReasons = map[Strategy]string{
	StrategyManual:     "Bulk manual assignment",
	StrategyRoundRobin: "Round-robin assignment",
	StrategyWorkload:   "Workload-based assignment",
	StrategyDivision:   "Division expertise assignment",
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := strategyReasons[s]
	return ok
}

// Reason is the audit reason written for leads assigned with s.
func (s Strategy) Reason() string { return strategyReasons[s] }

const msgNotFound = "Lead or Personnel not found"

// errSkip marks a lead a bulk call leaves untouched. It never leaves the package.
var errSkip = errors.New("assignment skipped")

// LeadStore is the part of the leads repository the engine writes through.
type LeadStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Lead, error)
	ApplyAssignment(ctx context.Context, a domain.Assignment, note domain.Communication) (domain.Lead, error)
}

// PersonnelStore resolves assignees and the workload snapshot.
type PersonnelStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Personnel, error)
	ListActiveWithWorkload(ctx context.Context, division *domain.Division) ([]domain.PersonnelWithWorkload, error)
}

type Engine struct {
	leads     LeadStore
	personnel PersonnelStore
	bus       events.Bus
	log       *logger.Logger
	now       func() time.Time
}

func New(leads LeadStore, personnel PersonnelStore, bus events.Bus, log *logger.Logger) *Engine {
	return &Engine{leads: leads, personnel: personnel, bus: bus, log: log, now: time.Now}
}

// AssignLead sets the lead's assignee to toPersonnelID and appends the audit
// pair. Assigning to the current assignee still writes a new pair.
// Concurrent reassignments are not serialized: the last write wins and each
// caller leaves its own audit rows.
func (e *Engine) AssignLead(ctx context.Context, leadID, toPersonnelID, assignedBy uuid.UUID, reason string) (domain.Lead, error) {
	const op = "leads.assignment.assign"

	lead, err := e.leads.GetByID(ctx, leadID)
	if errors.Is(err, leadsrepo.ErrNotFound) || (err == nil && lead.IsDeleted) {
		return domain.Lead{}, apperr.NotFound(msgNotFound).WithOp(op)
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp(op)
	}

	to, err := e.personnel.GetByID(ctx, toPersonnelID)
	if errors.Is(err, personnelrepo.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound(msgNotFound).WithOp(op)
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err).WithOp(op)
	}

	fromName := "Unassigned"
	if lead.AssignedTo != nil {
		fromName = e.displayName(ctx, *lead.AssignedTo)
	}

	now := e.now()
	by := assignedBy
	from := lead.AssignedTo
	assignment := domain.Assignment{
		ID:              uuid.New(),
		LeadID:          lead.ID,
		FromPersonnelID: from,
		ToPersonnelID:   to.ID,
		AssignedByID:    &by,
		Reason:          reason,
		Date:            domain.DateOnly(now),
		CreatedAt:       now,
	}
	note := domain.Communication{
		ID:        uuid.New(),
		LeadID:    lead.ID,
		Type:      domain.CommReassignment,
		Note:      fmt.Sprintf("Lead reassigned from %s to %s. Reason: %s", fromName, to.Name(), reason),
		UserID:    assignedBy,
		Date:      domain.DateOnly(now),
		CreatedAt: now,
	}

	updated, err := e.leads.ApplyAssignment(ctx, assignment, note)
	if errors.Is(err, leadsrepo.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound(msgNotFound).WithOp(op)
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to assign lead", err).WithOp(op)
	}

	e.publish(ctx, events.LeadSaved{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        updated.ID,
		ChangedFields: []string{"assigned_to"},
	})
	e.publish(ctx, events.AssignmentCreated{
		BaseEvent:       events.NewBaseEvent(),
		AssignmentID:    assignment.ID,
		LeadID:          updated.ID,
		FromPersonnelID: from,
		ToPersonnelID:   to.ID,
		AssignedByID:    &by,
	})
	e.publish(ctx, events.CommunicationCreated{
		BaseEvent:       events.NewBaseEvent(),
		CommunicationID: note.ID,
		LeadID:          updated.ID,
		AuthorID:        assignedBy,
		Type:            string(note.Type),
	})

	e.log.WithContext(ctx).Info("lead assigned",
		"lead_id", updated.ID.String(),
		"to", to.ID.String(),
		"by", assignedBy.String(),
	)
	return updated, nil
}

// BulkAssign assigns each lead according to strategy and returns how many
// were assigned. Leads that cannot be placed are skipped and the batch goes
// on; a per-lead failure is logged and skipped as well. The workload ranking
// is taken once before the loop, so every lead in one call sees the same
// ranking.
func (e *Engine) BulkAssign(ctx context.Context, leads []domain.Lead, strategy Strategy, assignedBy uuid.UUID, manualAssigneeID *uuid.UUID) (int, error) {
	if !strategy.Valid() {
		return 0, apperr.Validation("validation failed: strategy").
			WithDetails(map[string]string{"strategy": fmt.Sprintf("%q is not a valid choice.", string(strategy))})
	}

	pick, err := e.picker(ctx, strategy, manualAssigneeID)
	if err != nil {
		return 0, err
	}

	assigned := 0
	for i, lead := range leads {
		if err := ctx.Err(); err != nil {
			return assigned, err
		}

		to, err := pick(i, lead)
		if errors.Is(err, errSkip) {
			e.log.WithContext(ctx).Debug("bulk assignment skipped lead", "lead_id", lead.ID.String(), "strategy", string(strategy))
			continue
		}

		if _, err := e.AssignLead(ctx, lead.ID, to, assignedBy, strategy.Reason()); err != nil {
			e.log.WithContext(ctx).Warn("bulk assignment failed for lead", "lead_id", lead.ID.String(), "error", err)
			continue
		}
		assigned++
	}

	e.log.WithContext(ctx).Info("bulk assignment finished",
		"strategy", string(strategy),
		"requested", len(leads),
		"assigned", assigned,
	)
	return assigned, nil
}

type pickFunc func(index int, lead domain.Lead) (uuid.UUID, error)

func (e *Engine) picker(ctx context.Context, strategy Strategy, manualAssigneeID *uuid.UUID) (pickFunc, error) {
	if strategy == StrategyManual {
		if manualAssigneeID == nil {
			return skipAll, nil
		}
		p, err := e.personnel.GetByID(ctx, *manualAssigneeID)
		if errors.Is(err, personnelrepo.ErrNotFound) {
			return skipAll, nil
		}
		if err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to load personnel", err)
		}
		return func(int, domain.Lead) (uuid.UUID, error) { return p.ID, nil }, nil
	}

	candidates, err := e.personnel.ListActiveWithWorkload(ctx, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load candidates", err)
	}
	if len(candidates) == 0 {
		return skipAll, nil
	}
	SortCandidates(candidates)

	switch strategy {
	case StrategyRoundRobin:
		return func(i int, _ domain.Lead) (uuid.UUID, error) {
			return candidates[i%len(candidates)].ID, nil
		}, nil
	case StrategyWorkload:
		best := LeastLoaded(candidates, nil)
		return func(int, domain.Lead) (uuid.UUID, error) { return best.ID, nil }, nil
	default:
		return func(_ int, lead domain.Lead) (uuid.UUID, error) {
			division := lead.Division
			best := LeastLoaded(candidates, &division)
			if best == nil {
				return uuid.Nil, errSkip
			}
			return best.ID, nil
		}, nil
	}
}

func skipAll(int, domain.Lead) (uuid.UUID, error) { return uuid.Nil, errSkip }

// SortCandidates orders candidates by identifier, the round-robin order.
func SortCandidates(candidates []domain.PersonnelWithWorkload) {
	slices.SortFunc(candidates, func(a, b domain.PersonnelWithWorkload) int {
		return bytes.Compare(a.ID[:], b.ID[:])
	})
}

// LeastLoaded returns the candidate with the lowest workload, ties going to
// the lowest identifier. A non-nil division restricts the pool. Returns nil
// for an empty pool.
func LeastLoaded(candidates []domain.PersonnelWithWorkload, division *domain.Division) *domain.PersonnelWithWorkload {
	var best *domain.PersonnelWithWorkload
	for i := range candidates {
		c := &candidates[i]
		if division != nil && (c.Division == nil || *c.Division != *division) {
			continue
		}
		if best == nil || c.Workload < best.Workload ||
			(c.Workload == best.Workload && bytes.Compare(c.ID[:], best.ID[:]) < 0) {
			best = c
		}
	}
	return best
}

func (e *Engine) displayName(ctx context.Context, id uuid.UUID) string {
	p, err := e.personnel.GetByID(ctx, id)
	if err != nil {
		return "Unassigned"
	}
	return p.Name()
}

func (e *Engine) publish(ctx context.Context, event events.Event) {
	if e.bus == nil {
		return
	}
	if err := e.bus.PublishSync(ctx, event); err != nil {
		e.log.WithContext(ctx).Warn("assignment event handlers failed", "event", event.EventName(), "error", err)
	}
}

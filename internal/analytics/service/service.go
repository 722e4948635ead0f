// Package service computes the analytics dashboard and the daily pipeline
// snapshot. It only reads leads; snapshots are its one write.
package service

import (
	"context"
	"time"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/analytics/transport"
	"leadpipeline_backend/internal/domain"
	leadsrepo "leadpipeline_backend/internal/leads/repository"
	personnelrepo "leadpipeline_backend/internal/personnel/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"
)

const (
	topPerformerLimit = 5
	divisionAll       = "all"
	msgBadDivision    = "Unknown division"
	msgBadRange       = "from must not be after to"
)

// LeadSource lists leads matching a scope without paging.
type LeadSource interface {
	ListMatching(ctx context.Context, params leadsrepo.ListParams) ([]domain.Lead, error)
}

// PerformerSource ranks personnel by assigned deal value.
type PerformerSource interface {
	TopPerformers(ctx context.Context, filter personnelrepo.PerformerFilter, limit int) ([]domain.PersonnelPerformance, error)
}

// SnapshotStore persists daily snapshots keyed by date.
type SnapshotStore interface {
	UpsertSnapshot(ctx context.Context, snap domain.DailySnapshot) (domain.DailySnapshot, error)
	ListSnapshots(ctx context.Context, from, to *time.Time) ([]domain.DailySnapshot, error)
}

type Service struct {
	leads      LeadSource
	performers PerformerSource
	snapshots  SnapshotStore
	log        *logger.Logger
	loc        *time.Location
	now        func() time.Time
}

// New creates the analytics service. Snapshot dates are taken in loc; nil
// means UTC.
func New(leads LeadSource, performers PerformerSource, snapshots SnapshotStore, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{leads: leads, performers: performers, snapshots: snapshots, log: log, loc: loc, now: time.Now}
}

// ComputeDashboard aggregates the principal's accessible leads, optionally
// narrowed to one division. "all" and "" mean no narrowing.
func (s *Service) ComputeDashboard(ctx context.Context, principal access.Principal, division string) (transport.DashboardResponse, error) {
	const op = "analytics.service.dashboard"

	params := leadsrepo.ListParams{Scope: access.AccessibleLeads(principal)}
	if division != "" && division != divisionAll {
		d := domain.Division(division)
		if !d.Valid() {
			return transport.DashboardResponse{}, apperr.Validation(msgBadDivision)
		}
		params.Division = &d
	}

	leads, err := s.leads.ListMatching(ctx, params)
	if err != nil {
		return transport.DashboardResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp(op)
	}
	report := Aggregate(leads, principal.ID)

	// Non-global viewers rank their own division; without one, they rank
	// the personnel who have no division either.
	filter := personnelrepo.PerformerFilter{AllDivisions: principal.CanViewAllLeads()}
	if !filter.AllDivisions {
		filter.Division = principal.Division
	}
	performers, err := s.performers.TopPerformers(ctx, filter, topPerformerLimit)
	if err != nil {
		return transport.DashboardResponse{}, apperr.Wrap(apperr.KindInternal, "failed to rank personnel", err).WithOp(op)
	}
	for _, p := range performers {
		report.TopPerformers = append(report.TopPerformers, toPerformer(p))
	}
	return report, nil
}

// CaptureDailySnapshot aggregates every non-deleted lead for today and
// upserts the row for that date. Running it twice on one day overwrites.
func (s *Service) CaptureDailySnapshot(ctx context.Context) (domain.DailySnapshot, error) {
	const op = "analytics.service.capture_snapshot"

	leads, err := s.leads.ListMatching(ctx, leadsrepo.ListParams{Scope: access.Scope{All: true}})
	if err != nil {
		return domain.DailySnapshot{}, apperr.Wrap(apperr.KindInternal, "failed to load leads", err).WithOp(op)
	}

	snap := Snapshot(leads, s.now().In(s.loc))
	stored, err := s.snapshots.UpsertSnapshot(ctx, snap)
	if err != nil {
		return domain.DailySnapshot{}, apperr.Wrap(apperr.KindInternal, "failed to store snapshot", err).WithOp(op)
	}

	s.log.WithContext(ctx).Info("daily snapshot captured",
		"date", stored.Date.Format(time.DateOnly),
		"total_leads", stored.TotalLeads,
		"pipeline_value", stored.TotalPipelineValue,
		"avg_quality", stored.AvgLeadQuality,
	)
	return stored, nil
}

// CaptureSnapshot is CaptureDailySnapshot for the admin endpoint.
func (s *Service) CaptureSnapshot(ctx context.Context) (transport.SnapshotResponse, error) {
	snap, err := s.CaptureDailySnapshot(ctx)
	if err != nil {
		return transport.SnapshotResponse{}, err
	}
	return toSnapshotResponse(snap), nil
}

// ListSnapshots returns stored snapshots between from and to, inclusive.
func (s *Service) ListSnapshots(ctx context.Context, req transport.ListSnapshotsRequest) (transport.SnapshotListResponse, error) {
	from := parseDate(req.From)
	to := parseDate(req.To)
	if from != nil && to != nil && from.After(*to) {
		return transport.SnapshotListResponse{}, apperr.Validation(msgBadRange)
	}

	snaps, err := s.snapshots.ListSnapshots(ctx, from, to)
	if err != nil {
		return transport.SnapshotListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list snapshots", err).WithOp("analytics.service.list_snapshots")
	}
	items := make([]transport.SnapshotResponse, 0, len(snaps))
	for _, snap := range snaps {
		items = append(items, toSnapshotResponse(snap))
	}
	return transport.SnapshotListResponse{Items: items}, nil
}

func parseDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil
	}
	return &t
}

package management

import (
	"context"

	"leadpipeline_backend/internal/access"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/platform/apperr"
)

// FollowUps returns the accessible leads that have a follow-up date, for
// the calendar feed.
func (s *Service) FollowUps(ctx context.Context, principal access.Principal) ([]domain.Lead, error) {
	leads, err := s.repo.ListMatching(ctx, repository.ListParams{
		Scope:       access.AccessibleLeads(principal),
		HasFollowUp: true,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load follow-ups", err).WithOp("leads.management.follow_ups")
	}
	return leads, nil
}

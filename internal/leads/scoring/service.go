// Package scoring computes the 0-100 lead quality score.
package scoring

import (
	"context"
	"errors"
	"time"

	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/internal/leads/repository"
	"leadpipeline_backend/platform/apperr"
	"leadpipeline_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	minScore = 0
	maxScore = 100

	pointsEmail        = 10
	pointsPhone        = 10
	pointsContactBlock = 10
	pointsDealValue    = 20
	pointsPerContact   = 10
	maxEngagement      = 50
	decayPerWeek       = 5
)

// Result is a score with its per-factor breakdown, logged on every rescore.
type Result struct {
	Score   int
	Factors map[string]int
}

// Calculate scores lead given how many communications it has. today is the
// reference date for recency decay. The function is pure: the same inputs
// always give the same score.
func Calculate(lead domain.Lead, communications int, today time.Time) Result {
	factors := map[string]int{}
	raw := 0

	add := func(key string, value int) {
		if value == 0 {
			return
		}
		factors[key] = value
		raw += value
	}

	if lead.Email != "" {
		add("email", pointsEmail)
	}
	if lead.Phone != "" {
		add("phone", pointsPhone)
	}
	if lead.ContactName != "" && lead.Position != "" {
		add("contact", pointsContactBlock)
	}
	if lead.DealValue > 0 {
		add("deal_value", pointsDealValue)
	}
	if communications > 0 {
		add("engagement", min(communications*pointsPerContact, maxEngagement))
	}
	if lead.LastContact != nil {
		add("decay", -decayPerWeek*weeksSince(*lead.LastContact, today))
	}

	return Result{Score: clamp(raw), Factors: factors}
}

// weeksSince is floor(days/7) between two calendar dates. A date in the
// future gives a negative count, which turns decay into a bonus before the
// final clamp.
func weeksSince(from, today time.Time) int {
	days := civilDays(today) - civilDays(from)
	weeks := days / 7
	if days%7 != 0 && days < 0 {
		weeks--
	}
	return weeks
}

func civilDays(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

func clamp(score int) int {
	return max(minScore, min(maxScore, score))
}

// Service persists recomputed scores.
type Service struct {
	repo repository.ScoreStore
	log  *logger.Logger
	now  func() time.Time
}

// New creates a scoring service. now may be nil to use time.Now.
func New(repo repository.ScoreStore, log *logger.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, log: log, now: now}
}

// Rescore recomputes and stores the lead's score. Soft-deleted leads are
// left untouched and reported with ok=false. Only quality_score is written,
// so no LeadSaved event follows.
func (s *Service) Rescore(ctx context.Context, leadID uuid.UUID) (score int, ok bool, err error) {
	const op = "leads.scoring.rescore"

	lead, err := s.repo.GetByID(ctx, leadID)
	if errors.Is(err, repository.ErrNotFound) {
		return 0, false, apperr.NotFound("lead not found").WithOp(op)
	}
	if err != nil {
		return 0, false, apperr.Wrap(apperr.KindInternal, "failed to load lead", err).WithOp(op)
	}
	if lead.IsDeleted {
		return lead.QualityScore, false, nil
	}

	count, err := s.repo.CountCommunications(ctx, leadID)
	if err != nil {
		return 0, false, apperr.Wrap(apperr.KindInternal, "failed to count communications", err).WithOp(op)
	}

	result := Calculate(lead, count, s.now())
	if result.Score == lead.QualityScore {
		return result.Score, true, nil
	}

	if err := s.repo.UpdateQualityScore(ctx, leadID, result.Score); err != nil {
		// deleted between read and write
		if errors.Is(err, repository.ErrNotFound) {
			return lead.QualityScore, false, nil
		}
		return 0, false, apperr.Wrap(apperr.KindInternal, "failed to store score", err).WithOp(op)
	}

	s.log.WithContext(ctx).Debug("lead rescored",
		"lead_id", leadID.String(),
		"score", result.Score,
		"previous", lead.QualityScore,
		"factors", result.Factors,
	)
	return result.Score, true, nil
}

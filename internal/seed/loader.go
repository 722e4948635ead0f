package seed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"leadpipeline_backend/internal/auth/password"
	"leadpipeline_backend/internal/domain"
	"leadpipeline_backend/platform/logger"
	"leadpipeline_backend/platform/phone"

	"github.com/google/uuid"
)

// CatalogStore writes teams and products.
type CatalogStore interface {
	CreateTeam(ctx context.Context, t domain.Team) (domain.Team, error)
	CreateProduct(ctx context.Context, p domain.Product) (domain.Product, error)
}

// PersonnelStore writes personnel.
type PersonnelStore interface {
	Create(ctx context.Context, p domain.Personnel) (domain.Personnel, error)
}

// LeadStore writes a lead together with its first assignment record.
type LeadStore interface {
	Create(ctx context.Context, lead domain.Lead, initial *domain.Assignment) (domain.Lead, error)
}

// Result counts what was written.
type Result struct {
	Teams     int
	Personnel int
	Products  int
	Leads     int
}

// Loader inserts a fixture in dependency order: teams, personnel, products, leads.
type Loader struct {
	catalog   CatalogStore
	personnel PersonnelStore
	leads     LeadStore
	log       *logger.Logger
	now       func() time.Time
}

func NewLoader(catalog CatalogStore, personnel PersonnelStore, leads LeadStore, log *logger.Logger) *Loader {
	return &Loader{catalog: catalog, personnel: personnel, leads: leads, log: log, now: time.Now}
}

// Load writes f. It stops at the first failing insert; rows already written stay.
func (l *Loader) Load(ctx context.Context, f Fixture) (Result, error) {
	var res Result
	if err := f.Validate(); err != nil {
		return res, err
	}
	now := l.now().UTC()

	teams := make(map[string]uuid.UUID, len(f.Teams))
	for _, tf := range f.Teams {
		t := domain.Team{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(tf.Name),
			Division:    divisionPtr(tf.Division),
			Description: tf.Description,
			IsActive:    true,
		}
		created, err := l.catalog.CreateTeam(ctx, t)
		if err != nil {
			return res, fmt.Errorf("team %q: %w", tf.Name, err)
		}
		teams[tf.Name] = created.ID
		res.Teams++
	}

	users := make(map[string]uuid.UUID, len(f.Personnel))
	for _, pf := range f.Personnel {
		hash, err := password.Hash(pf.Password)
		if err != nil {
			return res, fmt.Errorf("personnel %q: %w", pf.Username, err)
		}
		p := domain.Personnel{
			ID:           uuid.New(),
			Username:     strings.TrimSpace(pf.Username),
			PasswordHash: hash,
			FirstName:    pf.FirstName,
			LastName:     pf.LastName,
			Email:        strings.ToLower(strings.TrimSpace(pf.Email)),
			Division:     divisionPtr(pf.Division),
			Role:         domain.Role(pf.Role),
			Phone:        phone.NormalizeE164(pf.Phone),
			HireDate:     now,
			DailyRate:    pf.DailyRate,
			IsActive:     true,
		}
		if pf.HireDate != "" {
			p.HireDate, _ = time.Parse(time.DateOnly, pf.HireDate)
		}
		if id, ok := teams[pf.Team]; ok {
			p.TeamID = &id
		}
		p.AvatarText = p.Avatar()
		created, err := l.personnel.Create(ctx, p)
		if err != nil {
			return res, fmt.Errorf("personnel %q: %w", pf.Username, err)
		}
		users[strings.ToLower(pf.Username)] = created.ID
		res.Personnel++
	}

	products := make(map[string]uuid.UUID, len(f.Products))
	for _, prf := range f.Products {
		p := domain.Product{
			ID:          uuid.New(),
			Name:        strings.TrimSpace(prf.Name),
			Division:    domain.Division(prf.Division),
			Description: prf.Description,
			IsActive:    true,
		}
		created, err := l.catalog.CreateProduct(ctx, p)
		if err != nil {
			return res, fmt.Errorf("product %q: %w", prf.Name, err)
		}
		products[prf.Name] = created.ID
		res.Products++
	}

	for _, lf := range f.Leads {
		lead := buildLead(lf, now)
		if id, ok := products[lf.Product]; ok {
			lead.ProductID = &id
		}
		if id, ok := teams[lf.Team]; ok {
			lead.TeamID = &id
		}

		var initial *domain.Assignment
		if id, ok := users[strings.ToLower(lf.AssignedTo)]; ok {
			lead.AssignedTo = &id
			initial = &domain.Assignment{
				ID:            uuid.New(),
				LeadID:        lead.ID,
				ToPersonnelID: id,
				Reason:        "Initial assignment",
				Date:          now,
			}
		}

		if _, err := l.leads.Create(ctx, lead, initial); err != nil {
			return res, fmt.Errorf("lead %q: %w", lf.Company, err)
		}
		res.Leads++
	}

	if l.log != nil {
		l.log.Info("seed loaded",
			"teams", res.Teams,
			"personnel", res.Personnel,
			"products", res.Products,
			"leads", res.Leads,
		)
	}
	return res, nil
}

func buildLead(lf LeadFixture, now time.Time) domain.Lead {
	lead := domain.Lead{
		ID:                      uuid.New(),
		Company:                 strings.TrimSpace(lf.Company),
		ContactName:             lf.ContactName,
		Position:                lf.Position,
		Email:                   strings.ToLower(strings.TrimSpace(lf.Email)),
		Phone:                   phone.NormalizeE164(lf.Phone),
		Comments:                lf.Comments,
		Status:                  domain.Status(lf.Status),
		Priority:                domain.Priority(lf.Priority),
		Division:                domain.Division(lf.Division),
		DealValue:               lf.DealValue,
		ProbabilityOfCompletion: lf.Probability,
		CreatedAt:               now,
		UpdatedAt:               now,
	}
	if lead.Status == "" {
		lead.Status = domain.StatusNew
	}
	if !lead.Priority.Valid() {
		lead.Priority = domain.PriorityMedium
	}
	if !domain.ValidProbability(lead.ProbabilityOfCompletion) {
		lead.ProbabilityOfCompletion = 0
	}
	if lf.FollowUp != "" {
		if d, err := time.Parse(time.DateOnly, lf.FollowUp); err == nil {
			lead.FollowUpDate = &d
		}
	}
	lead.ApplyStatusProgress()
	return lead
}

func divisionPtr(s string) *domain.Division {
	if s == "" {
		return nil
	}
	d := domain.Division(s)
	return &d
}

// Package seed loads demo and staging data from a YAML fixture.
package seed

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"leadpipeline_backend/internal/domain"

	"gopkg.in/yaml.v3"
)

// Fixture is the document root. Cross references use names: team names,
// product names and usernames.
type Fixture struct {
	Teams     []TeamFixture      `yaml:"teams"`
	Personnel []PersonnelFixture `yaml:"personnel"`
	Products  []ProductFixture   `yaml:"products"`
	Leads     []LeadFixture      `yaml:"leads"`
}

type TeamFixture struct {
	Name        string `yaml:"name"`
	Division    string `yaml:"division"`
	Description string `yaml:"description"`
}

type PersonnelFixture struct {
	Username  string  `yaml:"username"`
	Password  string  `yaml:"password"`
	FirstName string  `yaml:"first_name"`
	LastName  string  `yaml:"last_name"`
	Email     string  `yaml:"email"`
	Phone     string  `yaml:"phone"`
	Division  string  `yaml:"division"`
	Role      string  `yaml:"role"`
	Team      string  `yaml:"team"`
	DailyRate float64 `yaml:"daily_rate"`
	HireDate  string  `yaml:"hire_date"`
}

type ProductFixture struct {
	Name        string `yaml:"name"`
	Division    string `yaml:"division"`
	Description string `yaml:"description"`
}

type LeadFixture struct {
	Company     string  `yaml:"company"`
	ContactName string  `yaml:"contact_name"`
	Position    string  `yaml:"position"`
	Email       string  `yaml:"email"`
	Phone       string  `yaml:"phone"`
	Division    string  `yaml:"division"`
	Product     string  `yaml:"product"`
	Status      string  `yaml:"status"`
	Priority    string  `yaml:"priority"`
	DealValue   float64 `yaml:"deal_value"`
	Probability int     `yaml:"probability"`
	AssignedTo  string  `yaml:"assigned_to"`
	Team        string  `yaml:"team"`
	FollowUp    string  `yaml:"follow_up"`
	Comments    string  `yaml:"comments"`
}

// Parse decodes a fixture and checks it. Unknown keys are rejected so typos
// surface instead of silently dropping data.
func Parse(r io.Reader) (Fixture, error) {
	var f Fixture
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return Fixture{}, fmt.Errorf("decode fixture: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Fixture{}, err
	}
	return f, nil
}

// Validate reports every problem at once.
func (f Fixture) Validate() error {
	var errs []error
	teams := map[string]bool{}
	products := map[string]domain.Division{}
	users := map[string]bool{}

	for i, t := range f.Teams {
		if strings.TrimSpace(t.Name) == "" {
			errs = append(errs, fmt.Errorf("teams[%d]: name is required", i))
		}
		if t.Division != "" && !domain.Division(t.Division).Valid() {
			errs = append(errs, fmt.Errorf("teams[%d]: unknown division %q", i, t.Division))
		}
		teams[t.Name] = true
	}

	for i, p := range f.Personnel {
		if strings.TrimSpace(p.Username) == "" || p.Password == "" {
			errs = append(errs, fmt.Errorf("personnel[%d]: username and password are required", i))
		}
		if users[strings.ToLower(p.Username)] {
			errs = append(errs, fmt.Errorf("personnel[%d]: duplicate username %q", i, p.Username))
		}
		users[strings.ToLower(p.Username)] = true
		if !domain.Role(p.Role).Valid() {
			errs = append(errs, fmt.Errorf("personnel[%d]: unknown role %q", i, p.Role))
		}
		if p.Division != "" && !domain.Division(p.Division).Valid() {
			errs = append(errs, fmt.Errorf("personnel[%d]: unknown division %q", i, p.Division))
		}
		if p.Team != "" && !teams[p.Team] {
			errs = append(errs, fmt.Errorf("personnel[%d]: unknown team %q", i, p.Team))
		}
		if p.HireDate != "" {
			if _, err := time.Parse(time.DateOnly, p.HireDate); err != nil {
				errs = append(errs, fmt.Errorf("personnel[%d]: hire_date must be YYYY-MM-DD", i))
			}
		}
	}

	for i, p := range f.Products {
		if !domain.Division(p.Division).Valid() {
			errs = append(errs, fmt.Errorf("products[%d]: unknown division %q", i, p.Division))
		}
		products[p.Name] = domain.Division(p.Division)
	}

	for i, l := range f.Leads {
		if strings.TrimSpace(l.Company) == "" {
			errs = append(errs, fmt.Errorf("leads[%d]: company is required", i))
		}
		division := domain.Division(l.Division)
		if !division.Valid() {
			errs = append(errs, fmt.Errorf("leads[%d]: unknown division %q", i, l.Division))
		}
		if l.Status != "" && !domain.Status(l.Status).Valid() {
			errs = append(errs, fmt.Errorf("leads[%d]: unknown status %q", i, l.Status))
		}
		if l.Product != "" {
			pd, ok := products[l.Product]
			switch {
			case !ok:
				errs = append(errs, fmt.Errorf("leads[%d]: unknown product %q", i, l.Product))
			case pd != division:
				errs = append(errs, fmt.Errorf("leads[%d]: product %q belongs to %s", i, l.Product, pd))
			}
		}
		if l.AssignedTo != "" && !users[strings.ToLower(l.AssignedTo)] {
			errs = append(errs, fmt.Errorf("leads[%d]: unknown assignee %q", i, l.AssignedTo))
		}
		if l.Team != "" && !teams[l.Team] {
			errs = append(errs, fmt.Errorf("leads[%d]: unknown team %q", i, l.Team))
		}
		if l.FollowUp != "" {
			if _, err := time.Parse(time.DateOnly, l.FollowUp); err != nil {
				errs = append(errs, fmt.Errorf("leads[%d]: follow_up must be YYYY-MM-DD", i))
			}
		}
	}

	return errors.Join(errs...)
}

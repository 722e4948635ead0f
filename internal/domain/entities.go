package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Team groups personnel and can own leads across divisions.
type Team struct {
	ID          uuid.UUID
	Name        string
	Division    *Division
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Personnel is a user of the system.
type Personnel struct {
	ID           uuid.UUID
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Email        string
	Division     *Division
	Role         Role
	Phone        string
	AvatarText   string
	AvatarKey    *string
	HireDate     time.Time
	DailyRate    float64
	TeamID       *uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Name is the full name, falling back to the username.
func (p Personnel) Name() string {
	full := strings.TrimSpace(p.FirstName + " " + p.LastName)
	if full == "" {
		return p.Username
	}
	return full
}

// Avatar returns the stored avatar text or upper-case initials.
func (p Personnel) Avatar() string {
	if p.AvatarText != "" {
		return p.AvatarText
	}
	initials := firstRune(p.FirstName) + firstRune(p.LastName)
	if initials != "" {
		return strings.ToUpper(initials)
	}
	runes := []rune(p.Username)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	return strings.ToUpper(string(runes))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// PersonnelWithWorkload pairs a person with their derived workload.
type PersonnelWithWorkload struct {
	Personnel
	Workload int
}

// PersonnelPerformance is a person's totals over their non-deleted assigned leads.
type PersonnelPerformance struct {
	Personnel
	LeadsCount int
	TotalValue float64
	WonValue   float64
}

// Product is sold by exactly one division.
type Product struct {
	ID          uuid.UUID
	Name        string
	Division    Division
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Lead is a sales opportunity moving through the pipeline.
type Lead struct {
	ID                      uuid.UUID
	Company                 string
	ContactName             string
	Position                string
	Email                   string
	Phone                   string
	Comments                string
	FollowUpDate            *time.Time
	Status                  Status
	Priority                Priority
	Division                Division
	DealValue               float64
	ProbabilityOfCompletion int
	LastContact             *time.Time
	AssignedTo              *uuid.UUID
	ProductID               *uuid.UUID
	TeamID                  *uuid.UUID
	Progress                int
	QualityScore            int
	CreatedBy               *uuid.UUID
	CreatedAt               time.Time
	UpdatedAt               time.Time
	IsDeleted               bool
	DeletedAt               *time.Time
}

// ApplyStatusProgress derives progress from status. Deleted leads keep 0.
func (l *Lead) ApplyStatusProgress() {
	if l.IsDeleted {
		return
	}
	if p, ok := ProgressFor(l.Status); ok {
		l.Progress = p
	}
}

// SoftDelete hides the lead. It is a no-op on an already deleted lead.
func (l *Lead) SoftDelete(now time.Time) bool {
	if l.IsDeleted {
		return false
	}
	l.IsDeleted = true
	l.DeletedAt = &now
	l.Status = StatusInactive
	l.Progress = 0
	return true
}

// IsAssignedTo reports whether id is the current assignee.
func (l Lead) IsAssignedTo(id uuid.UUID) bool {
	return l.AssignedTo != nil && *l.AssignedTo == id
}

// WeightedValue is deal value scaled by probability of completion.
func (l Lead) WeightedValue() float64 {
	return l.DealValue * float64(l.ProbabilityOfCompletion) / 100
}

// Communication is an append-only log entry on a lead.
type Communication struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Type      CommunicationType
	Note      string
	UserID    uuid.UUID
	Date      time.Time
	CreatedAt time.Time
}

// Assignment is an append-only record of a change of assignee.
type Assignment struct {
	ID              uuid.UUID
	LeadID          uuid.UUID
	FromPersonnelID *uuid.UUID
	ToPersonnelID   uuid.UUID
	AssignedByID    *uuid.UUID
	Reason          string
	Date            time.Time
	CreatedAt       time.Time
}

// ResourceAssignment allocates a person to a lead with a daily rate.
type ResourceAssignment struct {
	ID            uuid.UUID
	LeadID        uuid.UUID
	PersonnelID   uuid.UUID
	Role          string
	DailyRate     float64
	DaysAllocated float64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalCost is daily rate times allocated days.
func (r ResourceAssignment) TotalCost() float64 {
	return r.DailyRate * r.DaysAllocated
}

// MaterialCost is a non-labour cost booked against a lead.
type MaterialCost struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	Name      string
	Cost      float64
	CreatedAt time.Time
}

// Notification is a message for one person. Dynamic notifications are
// computed at read time and carry a string ID instead of a stored UUID.
type Notification struct {
	ID        string
	UserID    uuid.UUID
	Message   string
	LeadID    *uuid.UUID
	Type      NotificationType
	IsRead    bool
	Dynamic   bool
	MetaData  map[string]any
	CreatedAt time.Time
}

// DailySnapshot is the aggregated pipeline state for one calendar date.
type DailySnapshot struct {
	ID                   uuid.UUID
	Date                 time.Time
	TotalLeads           int
	TotalPipelineValue   float64
	AvgLeadQuality       int
	StageDistribution    map[string]int
	DivisionDistribution map[string]int
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

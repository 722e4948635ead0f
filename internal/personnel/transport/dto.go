package transport

import "github.com/google/uuid"

type CreatePersonnelRequest struct {
	Username  string     `json:"username" validate:"required,min=3,max=150"`
	Password  string     `json:"password" validate:"required,min=8,max=128"`
	FirstName string     `json:"firstName" validate:"max=150"`
	LastName  string     `json:"lastName" validate:"max=150"`
	Email     string     `json:"email" validate:"required,email,max=254"`
	Division  *string    `json:"division,omitempty" validate:"omitempty,division"`
	Role      string     `json:"role" validate:"required,role"`
	Phone     string     `json:"phone" validate:"max=20"`
	DailyRate *float64   `json:"dailyRate,omitempty" validate:"omitempty,gte=0"`
	TeamID    *uuid.UUID `json:"teamId,omitempty"`
	HireDate  *string    `json:"hireDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	IsActive  *bool      `json:"isActive,omitempty"`
}

type UpdatePersonnelRequest struct {
	FirstName *string    `json:"firstName,omitempty" validate:"omitempty,max=150"`
	LastName  *string    `json:"lastName,omitempty" validate:"omitempty,max=150"`
	Email     *string    `json:"email,omitempty" validate:"omitempty,email,max=254"`
	Division  *string    `json:"division,omitempty" validate:"omitempty,division"`
	Role      *string    `json:"role,omitempty" validate:"omitempty,role"`
	Phone     *string    `json:"phone,omitempty" validate:"omitempty,max=20"`
	Avatar    *string    `json:"avatar,omitempty" validate:"omitempty,max=10"`
	DailyRate *float64   `json:"dailyRate,omitempty" validate:"omitempty,gte=0"`
	TeamID    *uuid.UUID `json:"teamId,omitempty"`
	ClearTeam bool       `json:"clearTeam,omitempty"`
	IsActive  *bool      `json:"isActive,omitempty"`
}

type PersonnelResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Name      string     `json:"name"`
	FirstName string     `json:"firstName"`
	LastName  string     `json:"lastName"`
	Email     string     `json:"email"`
	Division  *string    `json:"division"`
	Role      string     `json:"role"`
	Phone     string     `json:"phone"`
	Avatar    string     `json:"avatar"`
	AvatarURL *string    `json:"avatarUrl,omitempty"`
	Workload  int        `json:"workload"`
	DailyRate float64    `json:"dailyRate"`
	HireDate  string     `json:"hireDate"`
	TeamID    *uuid.UUID `json:"teamId"`
	IsActive  bool       `json:"isActive"`
}

type PermissionsResponse struct {
	CanManageLeads  bool `json:"canManageLeads"`
	CanViewAllLeads bool `json:"canViewAllLeads"`
}

type ProfileResponse struct {
	User        PersonnelResponse   `json:"user"`
	Permissions PermissionsResponse `json:"permissions"`
}

type PersonnelListResponse struct {
	Items []PersonnelResponse `json:"items"`
}

package transport

import "github.com/google/uuid"

type ListProductsRequest struct {
	Division string `form:"division" validate:"omitempty,division"`
}

type CreateProductRequest struct {
	Name        string `json:"name" validate:"required,min=1,max=200"`
	Division    string `json:"division" validate:"required,division"`
	Description string `json:"description" validate:"max=2000"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

type UpdateProductRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Division    *string `json:"division,omitempty" validate:"omitempty,division"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type ProductResponse struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	Division        string    `json:"division"`
	DivisionDisplay string    `json:"divisionDisplay"`
	Description     string    `json:"description"`
	IsActive        bool      `json:"isActive"`
}

type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
}

type CreateTeamRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Division    *string `json:"division,omitempty" validate:"omitempty,division"`
	Description string  `json:"description" validate:"max=2000"`
}

type TeamResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Division    *string   `json:"division"`
	Description string    `json:"description"`
	IsActive    bool      `json:"isActive"`
}

type TeamListResponse struct {
	Items []TeamResponse `json:"items"`
}

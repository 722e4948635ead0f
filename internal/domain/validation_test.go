package domain

import (
	"testing"

	"leadpipeline_backend/platform/validator"
)

type enumRequest struct {
	Division    string `json:"division" validate:"required,division"`
	Status      string `json:"status" validate:"omitempty,lead_status"`
	Probability int    `json:"probability" validate:"probability"`
}

func TestRegisterValidators(t *testing.T) {
	val := validator.New()
	if err := RegisterValidators(val); err != nil {
		t.Fatalf("register: %v", err)
	}

	if err := val.Struct(enumRequest{Division: "tech", Status: "hot", Probability: 40}); err != nil {
		t.Fatalf("expected valid request, got %v", err)
	}
	if err := val.Struct(enumRequest{Division: "legal"}); err == nil {
		t.Fatalf("expected unknown division to fail")
	}
	if err := val.Struct(enumRequest{Division: "tech", Probability: 45}); err == nil {
		t.Fatalf("expected probability 45 to fail")
	}
	if err := val.Struct(enumRequest{Division: "tech", Status: "archived"}); err == nil {
		t.Fatalf("expected unknown status to fail")
	}
}

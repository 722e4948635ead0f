package email

import (
	"context"
	"strings"
	"testing"

	"leadpipeline_backend/platform/logger"
)

func TestRenderAssignment(t *testing.T) {
	subject, body, err := renderAssignment(Assignment{
		RecipientName: "Ada Agent",
		Message:       "You have been assigned new lead: Acme <Capital>",
		Company:       " Acme <Capital> ",
		Status:        "New",
		LeadURL:       "https://crm.example.com/leads/1",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if subject != "New lead assigned: Acme <Capital>" {
		t.Fatalf("expected subject with company, got %q", subject)
	}
	if !strings.Contains(body, "Hi Ada Agent,") {
		t.Fatalf("expected greeting in body")
	}
	if strings.Contains(body, "<Capital>") {
		t.Fatalf("expected company to be html-escaped")
	}
	if !strings.Contains(body, `href="https://crm.example.com/leads/1"`) {
		t.Fatalf("expected call to action link")
	}
	if strings.Contains(body, "Follow-up") {
		t.Fatalf("expected follow-up row to be omitted when empty")
	}
}

func TestMessageAddressing(t *testing.T) {
	s := NewSMTPSender("smtp.example.com", 587, "", "", "crm@example.com", "Lead Pipeline")
	if _, err := s.message("not an address", "subject", "<p>x</p>"); err == nil {
		t.Fatalf("expected invalid recipient to fail")
	}
	if _, err := s.message("ada@example.com", "subject", "<p>x</p>"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

func TestNoopSenderDropsMail(t *testing.T) {
	if err := (NoopSender{log: logger.NewNop()}).SendAssignmentEmail(context.Background(), "ada@example.com", Assignment{}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
}

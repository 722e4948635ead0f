// Package email renders and delivers outbound mail.
package email

import (
	"context"
	"fmt"
	"strings"

	"leadpipeline_backend/platform/config"
	"leadpipeline_backend/platform/logger"
)

// Assignment is what the assignee needs to know about a newly assigned lead.
type Assignment struct {
	RecipientName string
	Message       string
	Company       string
	ContactName   string
	Status        string
	FollowUp      string
	LeadURL       string
}

type Sender interface {
	SendAssignmentEmail(ctx context.Context, toEmail string, a Assignment) error
}

// NoopSender drops mail. Used when SMTP is not configured.
type NoopSender struct {
	log *logger.Logger
}

func (n NoopSender) SendAssignmentEmail(ctx context.Context, toEmail string, a Assignment) error {
	if n.log != nil {
		n.log.WithContext(ctx).Debug("smtp disabled, assignment email skipped", "to", toEmail, "company", a.Company)
	}
	return nil
}

// NewSender returns an SMTP sender when configured and a NoopSender otherwise.
func NewSender(cfg config.SMTPConfig, log *logger.Logger) Sender {
	if !cfg.IsSMTPEnabled() {
		log.Info("smtp not configured, outbound email disabled")
		return NoopSender{log: log}
	}
	return NewSMTPSender(cfg.GetSMTPHost(), cfg.GetSMTPPort(), cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(), cfg.GetEmailFromName())
}

func renderAssignment(a Assignment) (subject, body string, err error) {
	body, err = renderEmailTemplate("assignment.html", assignmentEmailData{
		baseEmailData: baseEmailData{
			Title:    "New lead assigned",
			Heading:  "New lead assigned",
			CTALabel: "Open lead",
			CTAURL:   a.LeadURL,
		},
		RecipientName: a.RecipientName,
		Message:       a.Message,
		Company:       a.Company,
		ContactName:   a.ContactName,
		Status:        a.Status,
		FollowUp:      a.FollowUp,
	})
	if err != nil {
		return "", "", err
	}
	return fmt.Sprintf(subjectAssignmentFmt, strings.TrimSpace(a.Company)), body, nil
}

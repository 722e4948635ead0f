// Package calendar renders lead follow-ups as an iCalendar feed.
package calendar

import (
	"bufio"
	"io"
	"strings"

	"leadpipeline_backend/internal/domain"
)

const (
	ContentType = "text/calendar; charset=utf-8"
	FileName    = "follow_ups.ics"
	prodID      = "-//Lead Pipeline//Lead Management System//EN"
	dateLayout  = "20060102"
)

var textEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\r\n", `\n`, "\n", `\n`)

// Write emits one all-day VEVENT per lead with a follow-up date. Leads
// without one are skipped.
func Write(w io.Writer, leads []domain.Lead) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		bw.WriteString(s)
		bw.WriteString("\r\n")
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:" + prodID)
	line("CALSCALE:GREGORIAN")
	for _, lead := range leads {
		if lead.FollowUpDate == nil {
			continue
		}
		line("BEGIN:VEVENT")
		line("UID:followup-" + lead.ID.String())
		line("SUMMARY:" + escape("Follow up: "+lead.Company))
		line("DTSTART;VALUE=DATE:" + lead.FollowUpDate.Format(dateLayout))
		line("DESCRIPTION:" + escape(Description(lead)))
		line("END:VEVENT")
	}
	line("END:VCALENDAR")
	return bw.Flush()
}

// Description is the event body: contact, optional e-mail and status.
func Description(lead domain.Lead) string {
	contact := lead.ContactName
	if contact == "" {
		contact = "N/A"
	}
	var b strings.Builder
	b.WriteString("Contact: ")
	b.WriteString(contact)
	if lead.Email != "" {
		b.WriteString(" | Email: ")
		b.WriteString(lead.Email)
	}
	b.WriteString(" | Status: ")
	b.WriteString(lead.Status.DisplayName())
	return b.String()
}

func escape(s string) string {
	return textEscaper.Replace(s)
}

// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"leadpipeline_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Leads Domain Events (published with PublishSync)
// =============================================================================

// CommunicationCreated is published after a communication row is stored.
type CommunicationCreated struct {
	BaseEvent
	CommunicationID uuid.UUID `json:"communicationId"`
	LeadID          uuid.UUID `json:"leadId"`
	AuthorID        uuid.UUID `json:"authorId"`
	Type            string    `json:"type"`
}

func (e CommunicationCreated) EventName() string { return "leads.communication.created" }

// AssignmentCreated is published after an assignment audit row is stored.
type AssignmentCreated struct {
	BaseEvent
	AssignmentID    uuid.UUID  `json:"assignmentId"`
	LeadID          uuid.UUID  `json:"leadId"`
	FromPersonnelID *uuid.UUID `json:"fromPersonnelId,omitempty"`
	ToPersonnelID   uuid.UUID  `json:"toPersonnelId"`
	AssignedByID    *uuid.UUID `json:"assignedById,omitempty"`
}

func (e AssignmentCreated) EventName() string { return "leads.assignment.created" }

// LeadSaved is published after a lead row is written. ChangedFields holds
// the column names touched by the write.
type LeadSaved struct {
	BaseEvent
	LeadID        uuid.UUID `json:"leadId"`
	Created       bool      `json:"created"`
	ChangedFields []string  `json:"changedFields"`
}

func (e LeadSaved) EventName() string { return "leads.lead.saved" }

// OnlyChanged reports whether the write touched exactly the given fields.
func (e LeadSaved) OnlyChanged(fields ...string) bool {
	if len(e.ChangedFields) == 0 || len(e.ChangedFields) > len(fields) {
		return false
	}
	for _, changed := range e.ChangedFields {
		found := false
		for _, f := range fields {
			if changed == f {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// =============================================================================
// Notification Domain Events (published with Publish)
// =============================================================================

// NotificationCreated is published after a persistent notification is
// stored. Consumers are side effects only: SSE push and e-mail.
type NotificationCreated struct {
	BaseEvent
	NotificationID uuid.UUID  `json:"notificationId"`
	UserID         uuid.UUID  `json:"userId"`
	LeadID         *uuid.UUID `json:"leadId,omitempty"`
	Type           string     `json:"type"`
	Message        string     `json:"message"`
}

func (e NotificationCreated) EventName() string { return "notification.created" }

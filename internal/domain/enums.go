// Package domain holds the entities and closed enumerations shared by every
// bounded context: personnel, leads and their audit records.
package domain

import "strings"

// Division is the business unit a lead, product, team or person belongs to.
type Division string

const (
	DivisionTech      Division = "tech"
	DivisionActuarial Division = "actuarial"
	DivisionCapital   Division = "capital"
)

// Divisions lists every division in display order.
var Divisions = []Division{DivisionTech, DivisionActuarial, DivisionCapital}

var divisionNames = map[Division]string{
	DivisionTech:      "Gralix Tech",
	DivisionActuarial: "Gralix Actuarial",
	DivisionCapital:   "Gralix Capital",
}

func (d Division) Valid() bool {
	_, ok := divisionNames[d]
	return ok
}

// DisplayName returns the human readable division label.
func (d Division) DisplayName() string {
	if name, ok := divisionNames[d]; ok {
		return name
	}
	return string(d)
}

// Role is the closed set of personnel roles. Capabilities per role live in
// the access package.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleManager   Role = "manager"
	RoleAgent     Role = "agent"
	RoleExecutive Role = "executive"
)

// Roles lists every role.
var Roles = []Role{RoleAdmin, RoleManager, RoleAgent, RoleExecutive}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleAgent, RoleExecutive:
		return true
	}
	return false
}

// Status is a lead pipeline stage.
type Status string

const (
	StatusNew         Status = "new"
	StatusContacted   Status = "contacted"
	StatusQualified   Status = "qualified"
	StatusProposal    Status = "proposal"
	StatusNegotiation Status = "negotiation"
	StatusHot         Status = "hot"
	StatusWon         Status = "won"
	StatusLost        Status = "lost"
	StatusInactive    Status = "inactive"
)

// Statuses lists every status in pipeline order.
var Statuses = []Status{
	StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusNegotiation,
	StatusHot, StatusWon, StatusLost, StatusInactive,
}

var statusProgress = map[Status]int{
	StatusNew:         10,
	StatusContacted:   25,
	StatusQualified:   50,
	StatusProposal:    75,
	StatusNegotiation: 90,
	StatusHot:         95,
	StatusWon:         100,
	StatusLost:        0,
	StatusInactive:    0,
}

// ActiveWorkloadStatuses are the statuses counted towards a person's workload.
var ActiveWorkloadStatuses = []Status{
	StatusNew, StatusContacted, StatusQualified, StatusProposal, StatusNegotiation, StatusHot,
}

func (s Status) Valid() bool {
	_, ok := statusProgress[s]
	return ok
}

// IsActiveWorkload reports whether a lead in this status counts as workload.
func (s Status) IsActiveWorkload() bool {
	for _, active := range ActiveWorkloadStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// InPipeline is false for the terminal negative states lost and inactive.
func (s Status) InPipeline() bool {
	return s != StatusLost && s != StatusInactive
}

// DisplayName capitalises the status value.
func (s Status) DisplayName() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// ProgressFor maps a status to its fixed pipeline progress percentage.
// Unknown statuses return ok=false so callers keep the stored value.
func ProgressFor(s Status) (int, bool) {
	p, ok := statusProgress[s]
	return p, ok
}

// Priority of a lead.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// CommunicationType classifies a logged communication.
type CommunicationType string

const (
	CommCall         CommunicationType = "call"
	CommEmail        CommunicationType = "email"
	CommMeeting      CommunicationType = "meeting"
	CommDemo         CommunicationType = "demo"
	CommProposal     CommunicationType = "proposal"
	CommFollowUp     CommunicationType = "followup"
	CommReassignment CommunicationType = "reassignment"
)

var communicationNames = map[CommunicationType]string{
	CommCall:         "Phone Call",
	CommEmail:        "Email",
	CommMeeting:      "Meeting",
	CommDemo:         "Demo/Presentation",
	CommProposal:     "Proposal Sent",
	CommFollowUp:     "Follow-up",
	CommReassignment: "Reassignment",
}

// CommunicationTypes lists every communication type.
var CommunicationTypes = []CommunicationType{
	CommCall, CommEmail, CommMeeting, CommDemo, CommProposal, CommFollowUp, CommReassignment,
}

func (c CommunicationType) Valid() bool {
	_, ok := communicationNames[c]
	return ok
}

// DisplayName returns the label used in notifications and timelines.
func (c CommunicationType) DisplayName() string {
	if name, ok := communicationNames[c]; ok {
		return name
	}
	return string(c)
}

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationFollowUp   NotificationType = "followup"
	NotificationActivity   NotificationType = "activity"
	NotificationAssignment NotificationType = "assignment"
	NotificationSystem     NotificationType = "system"
)

// ValidProbability accepts 0..100 in steps of 10.
func ValidProbability(p int) bool {
	return p >= 0 && p <= 100 && p%10 == 0
}

// Probabilities lists every accepted probability value.
func Probabilities() []int {
	out := make([]int, 0, 11)
	for p := 0; p <= 100; p += 10 {
		out = append(out, p)
	}
	return out
}

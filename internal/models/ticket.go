package models

import (
	"time"
)

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusPending    TicketStatus = "PENDING"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// IsTerminal reports whether a ticket in this status is out of SLA scope.
// The status set is open; anything unknown is treated as active.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Ticket is owned by the ticketing platform; the SLA engine only ever reads
// it. Deadline is nil for tickets without an SLA.
type Ticket struct {
	ID          string         `json:"id" gorm:"primaryKey"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Status      TicketStatus   `json:"status" gorm:"index;not null"`
	Priority    TicketPriority `json:"priority"`
	Requester   string         `json:"requester"`
	Assignee    string         `json:"assignee"`
	Deadline    *time.Time     `json:"deadline" gorm:"index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

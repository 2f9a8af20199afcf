package models

import (
	"fmt"
	"time"
)

type AlertLevel string

const (
	AlertLevelOK       AlertLevel = "OK"
	AlertLevelWarning  AlertLevel = "WARNING"
	AlertLevelDanger   AlertLevel = "DANGER"
	AlertLevelBreached AlertLevel = "BREACHED"
)

// Rank orders levels for escalation comparison: an alert fires only when a
// ticket's new rank exceeds the last recorded one.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertLevelWarning:
		return 1
	case AlertLevelDanger:
		return 2
	case AlertLevelBreached:
		return 3
	default:
		return 0
	}
}

// AlertID builds the deterministic identifier for a (ticket, level) pair.
// Keying on both parts means acknowledging a WARNING alert never suppresses
// a later DANGER alert for the same ticket.
func AlertID(ticketID string, level AlertLevel) string {
	return fmt.Sprintf("sla:%s:%s", ticketID, level)
}

// Alert records one SLA escalation. TicketTitle is denormalized so the UI
// can render the alert without a second lookup.
type Alert struct {
	ID               uint       `json:"-" gorm:"primaryKey"`
	AlertID          string     `json:"alert_id" gorm:"uniqueIndex;not null"`
	TicketID         string     `json:"ticket_id" gorm:"index;not null"`
	TicketTitle      string     `json:"ticket_title"`
	Level            AlertLevel `json:"level" gorm:"not null"`
	Message          string     `json:"message"`
	RemainingSeconds int64      `json:"remaining_seconds"`
	Acknowledged     bool       `json:"acknowledged"`
	CreatedAt        time.Time  `json:"created_at"`
}

// Acknowledgment is one persisted entry of the acknowledged-alert-id set.
type Acknowledgment struct {
	AlertID   string    `json:"alert_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
}

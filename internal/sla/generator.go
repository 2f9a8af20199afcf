package sla

import (
	"fmt"
	"time"

	"github.com/ticketeye/internal/models"
)

// Generate builds the alert record for one escalation. The alert identifier
// is a deterministic function of the (ticket, level) pair, so repeated
// escalations to the same level always map to the same identifier.
func Generate(t *models.Ticket, level models.AlertLevel, remaining time.Duration, now time.Time) *models.Alert {
	return &models.Alert{
		AlertID:          models.AlertID(t.ID, level),
		TicketID:         t.ID,
		TicketTitle:      t.Title,
		Level:            level,
		Message:          formatMessage(t, level, remaining),
		RemainingSeconds: int64(remaining.Seconds()),
		CreatedAt:        now,
	}
}

func formatMessage(t *models.Ticket, level models.AlertLevel, remaining time.Duration) string {
	switch level {
	case models.AlertLevelBreached:
		return fmt.Sprintf("SLA breached for ticket %q (%s overdue)", t.Title, formatDuration(-remaining))
	case models.AlertLevelDanger:
		return fmt.Sprintf("SLA critical for ticket %q: %s remaining", t.Title, formatDuration(remaining))
	case models.AlertLevelWarning:
		return fmt.Sprintf("SLA warning for ticket %q: %s remaining", t.Title, formatDuration(remaining))
	default:
		return fmt.Sprintf("Ticket %q within SLA", t.Title)
	}
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d >= 2*time.Hour {
		return fmt.Sprintf("%.1f hours", d.Hours())
	}
	return fmt.Sprintf("%d minutes", int(d.Minutes()))
}

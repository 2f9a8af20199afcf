package sla

import (
	"time"

	"github.com/ticketeye/internal/models"
)

// Compute classifies a ticket's SLA state at the given instant. It is pure:
// callers may invoke it at arbitrary frequency.
//
// Tickets without a deadline carry no SLA; the returned remaining duration is
// meaningless and tracked reports false. Terminal tickets (resolved/closed)
// are never alerted regardless of deadline.
func Compute(t *models.Ticket, cfg models.SLAConfig, now time.Time) (level models.AlertLevel, remaining time.Duration, tracked bool) {
	if t.Deadline == nil {
		return models.AlertLevelOK, 0, false
	}
	if t.Status.IsTerminal() {
		return models.AlertLevelOK, 0, false
	}

	remaining = t.Deadline.Sub(now)

	switch {
	case remaining <= 0:
		level = models.AlertLevelBreached
	case remaining <= hours(cfg.DangerThresholdHours):
		level = models.AlertLevelDanger
	case remaining <= hours(cfg.WarningThresholdHours):
		level = models.AlertLevelWarning
	default:
		level = models.AlertLevelOK
	}

	return level, remaining, true
}

func hours(h float64) time.Duration {
	return time.Duration(h * float64(time.Hour))
}

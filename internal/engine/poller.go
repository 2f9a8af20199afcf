package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/ticketeye/internal/models"
	"github.com/ticketeye/internal/sla"
)

// SetEnabled starts or stops the poll loop. Both directions are idempotent.
func (e *Engine) SetEnabled(enabled bool) {
	if enabled {
		e.start(e.Config().CheckInterval())
	} else {
		e.Stop()
	}
}

// Enabled reports whether the poll loop is running.
func (e *Engine) Enabled() bool {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.running
}

// start installs the poll timer, replacing any live one so there is never
// more than a single timer per engine instance.
func (e *Engine) start(interval time.Duration) {
	e.mutex.Lock()
	if e.running {
		close(e.stopChan)
	}
	stopChan := make(chan struct{})
	e.stopChan = stopChan
	e.running = true
	e.mutex.Unlock()

	e.log.Info().Dur("interval", interval).Msg("sla poller started")

	go e.run(interval, stopChan)
}

// Stop synchronously clears the pending timer; no further ticks fire after
// it returns. There is no in-flight tick to cancel because ticks run
// inline between timer receives.
func (e *Engine) Stop() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.running {
		return
	}
	close(e.stopChan)
	e.running = false
	e.log.Info().Msg("sla poller stopped")
}

func (e *Engine) run(interval time.Duration, stopChan chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Tick(context.Background())
		case <-stopChan:
			return
		}
	}
}

// Tick evaluates every ticket in the source snapshot once, in source order.
// A failure on one ticket is logged and skipped; it never aborts the rest
// of the pass.
func (e *Engine) Tick(ctx context.Context) {
	tickets, err := e.source.ActiveTickets(ctx)
	if err != nil {
		e.log.Error().Err(err).Msg("failed to fetch ticket snapshot")
		return
	}

	cfg := e.Config()
	for i := range tickets {
		if err := e.processTicket(&tickets[i], cfg); err != nil {
			e.log.Error().Err(err).Str("ticket_id", tickets[i].ID).Msg("ticket evaluation failed")
		}
	}
}

func (e *Engine) processTicket(t *models.Ticket, cfg models.SLAConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic evaluating ticket: %v", r)
		}
	}()

	now := e.now()
	level, remaining, tracked := sla.Compute(t, cfg, now)

	e.mutex.Lock()
	prev, seen := e.lastLevel[t.ID]
	if !tracked || level == models.AlertLevelOK {
		// SLA no longer meaningful for this ticket; forget it so a later
		// re-entry is treated as a fresh escalation.
		if seen {
			delete(e.lastLevel, t.ID)
		}
		e.mutex.Unlock()
		return nil
	}
	if seen && level.Rank() <= prev.Rank() {
		// Unchanged or de-escalated (deadline extended): track, never alert.
		e.lastLevel[t.ID] = level
		e.mutex.Unlock()
		return nil
	}
	// Escalation. The new level is recorded regardless of acknowledgment
	// state so a stable level never re-alerts.
	e.lastLevel[t.ID] = level
	e.mutex.Unlock()

	if e.alertStore.IsAcknowledged(models.AlertID(t.ID, level)) {
		return nil
	}

	alert := sla.Generate(t, level, remaining, now)
	e.appendAlert(alert)
	e.dispatcher.Dispatch(alert)

	e.log.Info().
		Str("alert_id", alert.AlertID).
		Str("ticket_id", t.ID).
		Str("level", string(level)).
		Msg("sla alert fired")

	return nil
}

func (e *Engine) appendAlert(alert *models.Alert) {
	e.mutex.Lock()
	e.alertLog = append(e.alertLog, alert)
	e.mutex.Unlock()

	// History row is best-effort; the in-memory log stays authoritative.
	record := *alert
	err := e.db.Where(models.Alert{AlertID: alert.AlertID}).FirstOrCreate(&record).Error
	if err != nil {
		e.log.Warn().Err(err).Str("alert_id", alert.AlertID).Msg("failed to persist alert history")
	}
}

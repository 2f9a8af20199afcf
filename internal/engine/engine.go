package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ticketeye/internal/models"
	"github.com/ticketeye/internal/notify"
	"github.com/ticketeye/internal/store"
)

// TicketSource supplies the snapshot of tickets evaluated on each tick. The
// engine never queries ticket storage itself; fetching is the host's job.
type TicketSource interface {
	ActiveTickets(ctx context.Context) ([]models.Ticket, error)
}

// Engine is the SLA monitoring engine: it owns the poll loop, the per-ticket
// last-level table, the in-memory alert log and the acknowledgment state.
// Multiple independent engines can coexist; nothing here is process-global.
type Engine struct {
	db          *gorm.DB
	source      TicketSource
	configStore *store.ConfigStore
	alertStore  *store.AlertStore
	dispatcher  *notify.Dispatcher
	log         zerolog.Logger

	// now is swapped in tests to drive the clock.
	now func() time.Time

	mutex     sync.Mutex
	cfg       models.SLAConfig
	lastLevel map[string]models.AlertLevel
	alertLog  []*models.Alert
	running   bool
	stopChan  chan struct{}
}

func New(db *gorm.DB, source TicketSource, dispatcher *notify.Dispatcher, log zerolog.Logger) *Engine {
	e := &Engine{
		db:          db,
		source:      source,
		configStore: store.NewConfigStore(db, log),
		alertStore:  store.NewAlertStore(db, log),
		dispatcher:  dispatcher,
		log:         log.With().Str("component", "sla-engine").Logger(),
		now:         time.Now,
		lastLevel:   make(map[string]models.AlertLevel),
	}

	e.cfg = e.configStore.Load()
	e.dispatcher.Configure(e.cfg)
	return e
}

// Config returns the current SLA configuration.
func (e *Engine) Config() models.SLAConfig {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	return e.cfg
}

// ConfigUpdate is a partial SLA configuration; nil fields keep their
// current value.
type ConfigUpdate struct {
	WarningThresholdHours *float64 `json:"warning_threshold_hours"`
	DangerThresholdHours  *float64 `json:"danger_threshold_hours"`
	CheckIntervalMs       *int     `json:"check_interval_ms"`
	SoundEnabled          *bool    `json:"sound_enabled"`
	NotificationsEnabled  *bool    `json:"notifications_enabled"`
}

// UpdateConfig merges the partial update into the current configuration,
// persists it best-effort and retunes the running poller. A persistence
// failure is logged but does not undo the in-memory change.
func (e *Engine) UpdateConfig(update ConfigUpdate) error {
	e.mutex.Lock()
	cfg := e.cfg
	if update.WarningThresholdHours != nil {
		cfg.WarningThresholdHours = *update.WarningThresholdHours
	}
	if update.DangerThresholdHours != nil {
		cfg.DangerThresholdHours = *update.DangerThresholdHours
	}
	if update.CheckIntervalMs != nil {
		cfg.CheckIntervalMs = *update.CheckIntervalMs
	}
	if update.SoundEnabled != nil {
		cfg.SoundEnabled = *update.SoundEnabled
	}
	if update.NotificationsEnabled != nil {
		cfg.NotificationsEnabled = *update.NotificationsEnabled
	}

	if !cfg.Valid() {
		e.mutex.Unlock()
		return fmt.Errorf("invalid sla config: danger threshold must be below warning threshold and interval positive")
	}

	intervalChanged := cfg.CheckIntervalMs != e.cfg.CheckIntervalMs
	e.cfg = cfg
	running := e.running
	e.mutex.Unlock()

	e.dispatcher.Configure(cfg)

	if err := e.configStore.Save(cfg); err != nil {
		e.log.Warn().Err(err).Msg("failed to persist sla config")
	}

	if intervalChanged && running {
		e.start(cfg.CheckInterval())
	}

	return nil
}

// Alerts returns the full alert log, oldest first.
func (e *Engine) Alerts() []models.Alert {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	out := make([]models.Alert, 0, len(e.alertLog))
	for _, a := range e.alertLog {
		out = append(out, *a)
	}
	return out
}

// ActiveAlerts returns the unacknowledged subset of the log.
func (e *Engine) ActiveAlerts() []models.Alert {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	var out []models.Alert
	for _, a := range e.alertLog {
		if !a.Acknowledged {
			out = append(out, *a)
		}
	}
	return out
}

// Acknowledge marks one alert as acknowledged and persists the id so the
// same (ticket, level) escalation never re-alerts after a restart.
func (e *Engine) Acknowledge(alertID string) error {
	e.mutex.Lock()
	found := false
	for _, a := range e.alertLog {
		if a.AlertID == alertID {
			// A de-escalate/re-escalate cycle can log the same id twice;
			// acknowledge every occurrence.
			a.Acknowledged = true
			found = true
		}
	}
	e.mutex.Unlock()

	if !found {
		return fmt.Errorf("alert not found: %s", alertID)
	}

	e.alertStore.Acknowledge(alertID)
	e.persistAcknowledged(alertID)
	return nil
}

// AcknowledgeAll acknowledges every alert currently in the log.
func (e *Engine) AcknowledgeAll() {
	e.mutex.Lock()
	ids := make([]string, 0, len(e.alertLog))
	for _, a := range e.alertLog {
		a.Acknowledged = true
		ids = append(ids, a.AlertID)
	}
	e.mutex.Unlock()

	if len(ids) == 0 {
		return
	}

	e.alertStore.AcknowledgeAll(ids)
	for _, id := range ids {
		e.persistAcknowledged(id)
	}
}

// Dismiss removes an alert from the log without recording an
// acknowledgment: the same escalation may alert again later.
func (e *Engine) Dismiss(alertID string) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	for i, a := range e.alertLog {
		if a.AlertID == alertID {
			e.alertLog = append(e.alertLog[:i], e.alertLog[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("alert not found: %s", alertID)
}

// ClearAll empties the alert log and the last-level table. Escalation
// tracking restarts from scratch on the next tick.
func (e *Engine) ClearAll() {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.alertLog = nil
	e.lastLevel = make(map[string]models.AlertLevel)
}

// RequestPermission performs the dispatcher's one-shot permission request.
func (e *Engine) RequestPermission() bool {
	return e.dispatcher.RequestPermission()
}

func (e *Engine) persistAcknowledged(alertID string) {
	err := e.db.Model(&models.Alert{}).
		Where("alert_id = ?", alertID).
		Update("acknowledged", true).Error
	if err != nil {
		e.log.Warn().Err(err).Str("alert_id", alertID).Msg("failed to update alert history")
	}
}

package engine

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketeye/internal/database"
	"github.com/ticketeye/internal/models"
	"github.com/ticketeye/internal/notify"
	"github.com/ticketeye/internal/store"
)

type fakeSource struct {
	mutex   sync.Mutex
	tickets []models.Ticket
}

func (f *fakeSource) ActiveTickets(ctx context.Context) ([]models.Ticket, error) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	return append([]models.Ticket(nil), f.tickets...), nil
}

func (f *fakeSource) set(tickets ...models.Ticket) {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.tickets = tickets
}

type harness struct {
	eng   *Engine
	src   *fakeSource
	rec   *notify.Recorder
	now   time.Time
	mutex sync.Mutex
	fired []*models.Alert
}

var baseTime = time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	h := &harness{
		src: &fakeSource{},
		rec: &notify.Recorder{Permission: true},
		now: baseTime,
	}

	onAlert := func(a *models.Alert) {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		h.fired = append(h.fired, a)
	}

	dispatcher := notify.NewDispatcher(h.rec, h.rec, onAlert, zerolog.Nop())
	h.eng = New(db, h.src, dispatcher, zerolog.Nop())
	h.eng.now = func() time.Time {
		h.mutex.Lock()
		defer h.mutex.Unlock()
		return h.now
	}
	h.eng.RequestPermission()
	return h
}

func (h *harness) advanceTo(t time.Time) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.now = t
}

func (h *harness) firedCount() int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	return len(h.fired)
}

func (h *harness) tick() {
	h.eng.Tick(context.Background())
}

func openTicket(id, title string, deadline time.Time) models.Ticket {
	d := deadline
	return models.Ticket{
		ID:       id,
		Title:    title,
		Status:   models.TicketStatusOpen,
		Priority: models.TicketPriorityMedium,
		Deadline: &d,
	}
}

func TestEscalationSequence(t *testing.T) {
	h := newHarness(t)
	deadline := baseTime.Add(5 * time.Hour)
	h.src.set(openTicket("T-1", "Email outage", deadline))

	// 5h remaining: ok, nothing fires.
	h.tick()
	assert.Equal(t, 0, h.firedCount())

	// 3h remaining: warning.
	h.advanceTo(baseTime.Add(2 * time.Hour))
	h.tick()
	assert.Equal(t, 1, h.firedCount())

	// 30m remaining: danger.
	h.advanceTo(baseTime.Add(4*time.Hour + 30*time.Minute))
	h.tick()
	assert.Equal(t, 2, h.firedCount())

	// 5m overdue: breached.
	h.advanceTo(baseTime.Add(5*time.Hour + 5*time.Minute))
	h.tick()
	assert.Equal(t, 3, h.firedCount())

	// Stable level: no re-alert.
	h.tick()
	h.tick()
	assert.Equal(t, 3, h.firedCount())

	alerts := h.eng.Alerts()
	require.Len(t, alerts, 3)
	assert.Equal(t, models.AlertLevelWarning, alerts[0].Level)
	assert.Equal(t, models.AlertLevelDanger, alerts[1].Level)
	assert.Equal(t, models.AlertLevelBreached, alerts[2].Level)
}

func TestIdempotentTicks(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Login broken", baseTime.Add(3*time.Hour)))

	h.tick()
	h.tick()
	assert.Equal(t, 1, h.firedCount(), "repeated ticks at a stable level must not re-alert")
}

func TestDeEscalationTracksWithoutAlerting(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Slow reports", baseTime.Add(30*time.Minute)))

	h.tick() // danger
	assert.Equal(t, 1, h.firedCount())

	// Deadline extended: drops to warning. Tracked, not alerted.
	h.src.set(openTicket("T-1", "Slow reports", baseTime.Add(3*time.Hour)))
	h.tick()
	assert.Equal(t, 1, h.firedCount())

	h.eng.mutex.Lock()
	assert.Equal(t, models.AlertLevelWarning, h.eng.lastLevel["T-1"])
	h.eng.mutex.Unlock()

	// Sliding back into danger is a fresh escalation.
	h.advanceTo(baseTime.Add(2*time.Hour + 30*time.Minute))
	h.tick()
	assert.Equal(t, 2, h.firedCount())
}

func TestAcknowledgmentIndependentPerLevel(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Billing bug", baseTime.Add(30*time.Minute)))

	h.tick() // danger
	require.Equal(t, 1, h.firedCount())

	require.NoError(t, h.eng.Acknowledge(models.AlertID("T-1", models.AlertLevelDanger)))
	assert.Empty(t, h.eng.ActiveAlerts())

	// Escalating past the acknowledged level still alerts.
	h.advanceTo(baseTime.Add(time.Hour))
	h.tick() // breached
	assert.Equal(t, 2, h.firedCount())
	assert.Len(t, h.eng.ActiveAlerts(), 1)
}

func TestAcknowledgedEscalationNeverReachesDispatcher(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Password reset", baseTime.Add(3*time.Hour)))

	// Ack carried over from an earlier run.
	h.eng.alertStore.Acknowledge(models.AlertID("T-1", models.AlertLevelWarning))

	h.tick()
	assert.Equal(t, 0, h.firedCount())
	assert.Empty(t, h.rec.Shown())

	// The level was still recorded, so the next escalation fires normally.
	h.eng.mutex.Lock()
	assert.Equal(t, models.AlertLevelWarning, h.eng.lastLevel["T-1"])
	h.eng.mutex.Unlock()

	h.advanceTo(baseTime.Add(2*time.Hour + 30*time.Minute))
	h.tick()
	assert.Equal(t, 1, h.firedCount())
}

func TestTerminalTicketForgotten(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Crash on save", baseTime.Add(3*time.Hour)))

	h.tick()
	require.Equal(t, 1, h.firedCount())

	resolved := openTicket("T-1", "Crash on save", baseTime.Add(3*time.Hour))
	resolved.Status = models.TicketStatusResolved
	h.src.set(resolved)
	h.tick()

	h.eng.mutex.Lock()
	_, tracked := h.eng.lastLevel["T-1"]
	h.eng.mutex.Unlock()
	assert.False(t, tracked, "terminal tickets must drop out of the last-level table")
	assert.Equal(t, 1, h.firedCount())
}

func TestNilDeadlineForgotten(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "Feature request", baseTime.Add(3*time.Hour)))

	h.tick()
	require.Equal(t, 1, h.firedCount())

	noDeadline := models.Ticket{ID: "T-1", Title: "Feature request", Status: models.TicketStatusOpen}
	h.src.set(noDeadline)
	h.tick()

	h.eng.mutex.Lock()
	_, tracked := h.eng.lastLevel["T-1"]
	h.eng.mutex.Unlock()
	assert.False(t, tracked)
	assert.Equal(t, 1, h.firedCount())
}

func TestEmissionFollowsSourceOrder(t *testing.T) {
	h := newHarness(t)
	h.src.set(
		openTicket("T-2", "Second", baseTime.Add(30*time.Minute)),
		openTicket("T-1", "First", baseTime.Add(-time.Minute)),
	)

	h.tick()
	require.Equal(t, 2, h.firedCount())

	h.mutex.Lock()
	defer h.mutex.Unlock()
	assert.Equal(t, "T-2", h.fired[0].TicketID)
	assert.Equal(t, "T-1", h.fired[1].TicketID)
}

func TestAcknowledgeAll(t *testing.T) {
	h := newHarness(t)
	h.src.set(
		openTicket("T-1", "One", baseTime.Add(3*time.Hour)),
		openTicket("T-2", "Two", baseTime.Add(-time.Minute)),
	)

	h.tick()
	require.Len(t, h.eng.ActiveAlerts(), 2)

	h.eng.AcknowledgeAll()
	assert.Empty(t, h.eng.ActiveAlerts())
	for _, a := range h.eng.Alerts() {
		assert.True(t, a.Acknowledged)
	}
	assert.True(t, h.eng.alertStore.IsAcknowledged(models.AlertID("T-1", models.AlertLevelWarning)))
}

func TestDismissDoesNotPersistAcknowledgment(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "One", baseTime.Add(3*time.Hour)))

	h.tick()
	alertID := models.AlertID("T-1", models.AlertLevelWarning)

	require.NoError(t, h.eng.Dismiss(alertID))
	assert.Empty(t, h.eng.Alerts())
	assert.False(t, h.eng.alertStore.IsAcknowledged(alertID))

	assert.Error(t, h.eng.Dismiss(alertID), "dismissing twice reports not found")
}

func TestClearAllResetsTracking(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "One", baseTime.Add(3*time.Hour)))

	h.tick()
	require.Equal(t, 1, h.firedCount())

	h.eng.ClearAll()
	assert.Empty(t, h.eng.Alerts())

	// Tracking restarted: the same condition is a fresh escalation.
	h.tick()
	assert.Equal(t, 2, h.firedCount())
}

func TestPanicOnOneTicketDoesNotAbortTick(t *testing.T) {
	h := newHarness(t)

	h.eng.dispatcher = notify.NewDispatcher(h.rec, h.rec, func(a *models.Alert) {
		if a.TicketID == "T-BAD" {
			panic("downstream handler exploded")
		}
		h.mutex.Lock()
		defer h.mutex.Unlock()
		h.fired = append(h.fired, a)
	}, zerolog.Nop())

	h.src.set(
		openTicket("T-BAD", "Poisoned", baseTime.Add(-time.Minute)),
		openTicket("T-OK", "Healthy", baseTime.Add(30*time.Minute)),
	)

	h.tick()
	assert.Equal(t, 1, h.firedCount(), "the remaining tickets in the tick must still be processed")

	h.mutex.Lock()
	defer h.mutex.Unlock()
	assert.Equal(t, "T-OK", h.fired[0].TicketID)
}

func TestUpdateConfigMergesAndPersists(t *testing.T) {
	h := newHarness(t)

	warning := 8.0
	require.NoError(t, h.eng.UpdateConfig(ConfigUpdate{WarningThresholdHours: &warning}))

	cfg := h.eng.Config()
	assert.Equal(t, 8.0, cfg.WarningThresholdHours)
	assert.Equal(t, models.DefaultSLAConfig().DangerThresholdHours, cfg.DangerThresholdHours)

	// Persisted: a fresh store sees the merged record.
	reloaded := store.NewConfigStore(h.eng.db, zerolog.Nop()).Load()
	assert.Equal(t, 8.0, reloaded.WarningThresholdHours)
}

func TestUpdateConfigRejectsInvalid(t *testing.T) {
	h := newHarness(t)

	danger := 10.0 // above the 4h warning default
	assert.Error(t, h.eng.UpdateConfig(ConfigUpdate{DangerThresholdHours: &danger}))
	assert.Equal(t, models.DefaultSLAConfig(), h.eng.Config())
}

func TestStartStopIdempotent(t *testing.T) {
	h := newHarness(t)

	h.eng.SetEnabled(true)
	h.eng.SetEnabled(true)
	assert.True(t, h.eng.Enabled())

	h.eng.SetEnabled(false)
	h.eng.SetEnabled(false)
	assert.False(t, h.eng.Enabled())
}

func TestPollerFiresOnInterval(t *testing.T) {
	h := newHarness(t)
	h.src.set(openTicket("T-1", "One", baseTime.Add(3*time.Hour)))

	interval := 10
	require.NoError(t, h.eng.UpdateConfig(ConfigUpdate{CheckIntervalMs: &interval}))

	h.eng.SetEnabled(true)
	defer h.eng.Stop()

	require.Eventually(t, func() bool {
		return h.firedCount() >= 1
	}, 2*time.Second, 5*time.Millisecond)
}

func TestIntervalChangeRestartsRunningPoller(t *testing.T) {
	h := newHarness(t)
	h.eng.SetEnabled(true)
	defer h.eng.Stop()

	interval := 10
	require.NoError(t, h.eng.UpdateConfig(ConfigUpdate{CheckIntervalMs: &interval}))
	assert.True(t, h.eng.Enabled())

	h.src.set(openTicket("T-1", "One", baseTime.Add(3*time.Hour)))
	require.Eventually(t, func() bool {
		return h.firedCount() >= 1
	}, 2*time.Second, 5*time.Millisecond)
}

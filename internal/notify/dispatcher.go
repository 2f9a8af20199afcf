package notify

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/ticketeye/internal/models"
)

// Notifier is the platform-specific surface for user-visible notifications.
// Implementations must be safe for concurrent use.
type Notifier interface {
	// RequestPermission asks the backing platform whether notifications may
	// be shown. The dispatcher caches the answer.
	RequestPermission() bool
	Show(title, body string, level models.AlertLevel) error
}

// Sounder plays an audible cue for an alert level.
type Sounder interface {
	Play(level models.AlertLevel) error
}

// Dispatcher routes a freshly generated alert to the sound and notification
// channels and always invokes the alert callback. Channel failures degrade
// delivery, never the alert itself: the callback is the authoritative signal
// that a new unacknowledged alert exists.
type Dispatcher struct {
	notifier Notifier
	sounder  Sounder
	onAlert  func(*models.Alert)
	log      zerolog.Logger

	mutex                sync.RWMutex
	soundEnabled         bool
	notificationsEnabled bool
	permissionAsked      bool
	permissionGranted    bool
}

func NewDispatcher(notifier Notifier, sounder Sounder, onAlert func(*models.Alert), log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		sounder:  sounder,
		onAlert:  onAlert,
		log:      log.With().Str("component", "dispatcher").Logger(),
	}
}

// Configure applies the sound/notification toggles from the SLA config.
func (d *Dispatcher) Configure(cfg models.SLAConfig) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.soundEnabled = cfg.SoundEnabled
	d.notificationsEnabled = cfg.NotificationsEnabled
}

// RequestPermission performs the one-shot platform permission request and
// caches the result for subsequent dispatch decisions.
func (d *Dispatcher) RequestPermission() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.permissionAsked {
		return d.permissionGranted
	}
	d.permissionAsked = true
	if d.notifier != nil {
		d.permissionGranted = d.notifier.RequestPermission()
	}
	return d.permissionGranted
}

// Dispatch delivers one alert. Sound and notification are each best-effort
// and independently gated; the callback fires unconditionally.
func (d *Dispatcher) Dispatch(alert *models.Alert) {
	d.mutex.RLock()
	sound := d.soundEnabled
	notify := d.notificationsEnabled && d.permissionGranted
	d.mutex.RUnlock()

	if sound && d.sounder != nil {
		if err := d.sounder.Play(alert.Level); err != nil {
			d.log.Debug().Err(err).Str("alert_id", alert.AlertID).Msg("sound playback failed")
		}
	}

	if notify && d.notifier != nil {
		if err := d.notifier.Show(alert.TicketTitle, alert.Message, alert.Level); err != nil {
			d.log.Warn().Err(err).Str("alert_id", alert.AlertID).Msg("failed to show notification")
		}
	}

	if d.onAlert != nil {
		d.onAlert(alert)
	}
}

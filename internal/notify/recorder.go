package notify

import (
	"sync"

	"github.com/ticketeye/internal/models"
)

// Recorder is a Notifier/Sounder that records calls instead of touching a
// display or audio backend. Tests use it to assert dispatch decisions.
type Recorder struct {
	Permission bool

	mutex  sync.Mutex
	shown  []RecordedNotification
	played []models.AlertLevel
}

type RecordedNotification struct {
	Title string
	Body  string
	Level models.AlertLevel
}

func (r *Recorder) RequestPermission() bool {
	return r.Permission
}

func (r *Recorder) Show(title, body string, level models.AlertLevel) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.shown = append(r.shown, RecordedNotification{Title: title, Body: body, Level: level})
	return nil
}

func (r *Recorder) Play(level models.AlertLevel) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.played = append(r.played, level)
	return nil
}

func (r *Recorder) Shown() []RecordedNotification {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]RecordedNotification(nil), r.shown...)
}

func (r *Recorder) Played() []models.AlertLevel {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return append([]models.AlertLevel(nil), r.played...)
}

package notify

import (
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/ticketeye/internal/models"
)

// MultiNotifier fans one notification out to several channels. Show returns
// the first channel error but always attempts every channel.
type MultiNotifier struct {
	notifiers []Notifier
}

func NewMultiNotifier(notifiers ...Notifier) *MultiNotifier {
	return &MultiNotifier{notifiers: notifiers}
}

// RequestPermission is granted if any channel grants it.
func (m *MultiNotifier) RequestPermission() bool {
	granted := false
	for _, n := range m.notifiers {
		if n.RequestPermission() {
			granted = true
		}
	}
	return granted
}

func (m *MultiNotifier) Show(title, body string, level models.AlertLevel) error {
	var g errgroup.Group
	for _, n := range m.notifiers {
		n := n
		g.Go(func() error {
			return n.Show(title, body, level)
		})
	}
	return g.Wait()
}

// BellSounder is the default audible cue for server deployments: a terminal
// bell. Desktop embedders supply their own Sounder.
type BellSounder struct{}

func (BellSounder) Play(level models.AlertLevel) error {
	_, err := os.Stderr.WriteString("\a")
	return err
}

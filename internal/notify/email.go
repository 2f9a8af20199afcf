package notify

import (
	"fmt"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/ticketeye/internal/models"
)

// EmailNotifier delivers alerts over SMTP.
type EmailNotifier struct {
	dialer    *gomail.Dialer
	from      string
	receivers []string
}

func NewEmailNotifier(host string, port int, from, password string, receivers []string) *EmailNotifier {
	return &EmailNotifier{
		dialer:    gomail.NewDialer(host, port, from, password),
		from:      from,
		receivers: receivers,
	}
}

// RequestPermission reports whether the notifier is configured at all;
// SMTP has no permission handshake to perform up front.
func (e *EmailNotifier) RequestPermission() bool {
	return e.from != "" && len(e.receivers) > 0
}

func (e *EmailNotifier) Show(title, body string, level models.AlertLevel) error {
	m := gomail.NewMessage()
	m.SetHeader("From", e.from)
	m.SetHeader("To", e.receivers...)
	m.SetHeader("Subject", fmt.Sprintf("SLA Alert [%s]: %s", level, title))

	text := fmt.Sprintf("Ticket: %s\nLevel: %s\n%s\nTime: %s\n",
		title, level, body, time.Now().Format(time.RFC3339))
	m.SetBody("text/plain", text)

	return e.dialer.DialAndSend(m)
}

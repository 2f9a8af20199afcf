package notify

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/ticketeye/internal/models"
)

// SlackNotifier posts alerts as colored attachments to a Slack channel.
type SlackNotifier struct {
	client  *slack.Client
	channel string
	log     zerolog.Logger
}

func NewSlackNotifier(token, channel string, log zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		client:  slack.New(token),
		channel: channel,
		log:     log.With().Str("component", "slack-notifier").Logger(),
	}
}

// RequestPermission verifies the token against the Slack API. A failing
// auth test degrades delivery to in-app only.
func (s *SlackNotifier) RequestPermission() bool {
	if _, err := s.client.AuthTest(); err != nil {
		s.log.Warn().Err(err).Msg("slack auth test failed")
		return false
	}
	return true
}

func (s *SlackNotifier) Show(title, body string, level models.AlertLevel) error {
	attachment := slack.Attachment{
		Color: alertColor(level),
		Title: title,
		Text:  body,
		Fields: []slack.AttachmentField{
			{
				Title: "Level",
				Value: string(level),
				Short: true,
			},
		},
		Footer: "TicketEye SLA Alert",
		Ts:     json.Number(strconv.FormatInt(time.Now().Unix(), 10)),
	}

	_, _, err := s.client.PostMessage(
		s.channel,
		slack.MsgOptionAttachments(attachment),
	)
	if err != nil {
		return fmt.Errorf("failed to post slack message: %v", err)
	}
	return nil
}

func alertColor(level models.AlertLevel) string {
	switch level {
	case models.AlertLevelWarning:
		return "#ffcc00"
	case models.AlertLevelDanger:
		return "#ff6600"
	case models.AlertLevelBreached:
		return "#ff0000"
	default:
		return "#36a64f"
	}
}

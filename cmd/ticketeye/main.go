package main

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ticketeye/internal/api"
	"github.com/ticketeye/internal/auth"
	"github.com/ticketeye/internal/config"
	"github.com/ticketeye/internal/database"
	"github.com/ticketeye/internal/engine"
	"github.com/ticketeye/internal/models"
	"github.com/ticketeye/internal/notify"
	"github.com/ticketeye/internal/tickets"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
	log.Logger = logger

	cfg := config.LoadConfig()
	auth.SetSecret(cfg.Auth.JWTSecret)

	if err := database.Initialize(cfg.Database.Path); err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer database.Close()

	db := database.GetDB()

	var channels []notify.Notifier
	if cfg.Notify.Slack.Token != "" {
		channels = append(channels, notify.NewSlackNotifier(cfg.Notify.Slack.Token, cfg.Notify.Slack.Channel, logger))
	}
	if cfg.Notify.Email.SMTPHost != "" {
		channels = append(channels, notify.NewEmailNotifier(
			cfg.Notify.Email.SMTPHost,
			cfg.Notify.Email.SMTPPort,
			cfg.Notify.Email.From,
			cfg.Notify.Email.Password,
			cfg.Notify.Email.ToReceivers,
		))
	}

	onAlert := func(a *models.Alert) {
		logger.Info().
			Str("alert_id", a.AlertID).
			Str("ticket_id", a.TicketID).
			Str("level", string(a.Level)).
			Msg(a.Message)
	}

	dispatcher := notify.NewDispatcher(
		notify.NewMultiNotifier(channels...),
		notify.BellSounder{},
		onAlert,
		logger,
	)

	eng := engine.New(db, tickets.NewSource(db), dispatcher, logger)
	eng.RequestPermission()
	eng.SetEnabled(true)
	defer eng.Stop()

	server := api.NewServer(eng)
	if err := server.Start(cfg.Server.Port); err != nil {
		logger.Fatal().Err(err).Msg("failed to start server")
	}
}

package store

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ticketeye/internal/models"
)

// ConfigStore persists the single SLA threshold record.
type ConfigStore struct {
	db  *gorm.DB
	log zerolog.Logger
}

func NewConfigStore(db *gorm.DB, log zerolog.Logger) *ConfigStore {
	return &ConfigStore{
		db:  db,
		log: log.With().Str("component", "config-store").Logger(),
	}
}

// Load returns the persisted configuration, falling back to defaults when
// the record is missing or fails its invariants. Load never fails: a corrupt
// record must not wedge the engine.
func (s *ConfigStore) Load() models.SLAConfig {
	var cfg models.SLAConfig
	if err := s.db.First(&cfg).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn().Err(err).Msg("failed to read sla config, using defaults")
		}
		return models.DefaultSLAConfig()
	}

	if !cfg.Valid() {
		s.log.Warn().
			Float64("warning_hours", cfg.WarningThresholdHours).
			Float64("danger_hours", cfg.DangerThresholdHours).
			Int("interval_ms", cfg.CheckIntervalMs).
			Msg("persisted sla config is invalid, using defaults")
		return models.DefaultSLAConfig()
	}

	return cfg
}

// Save upserts the configuration record. Callers treat a failure as
// non-fatal; the in-memory configuration stays authoritative until the next
// successful write.
func (s *ConfigStore) Save(cfg models.SLAConfig) error {
	if !cfg.Valid() {
		return fmt.Errorf("refusing to persist invalid sla config")
	}

	var existing models.SLAConfig
	err := s.db.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		cfg.ID = 0
		if err := s.db.Create(&cfg).Error; err != nil {
			return fmt.Errorf("failed to save sla config: %v", err)
		}
	case err != nil:
		return fmt.Errorf("failed to read sla config: %v", err)
	default:
		cfg.ID = existing.ID
		if err := s.db.Save(&cfg).Error; err != nil {
			return fmt.Errorf("failed to update sla config: %v", err)
		}
	}

	return nil
}

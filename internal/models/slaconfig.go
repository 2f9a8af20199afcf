package models

import "time"

// SLAConfig is the single persisted threshold record driving the engine.
// Invariant: DangerThresholdHours < WarningThresholdHours.
type SLAConfig struct {
	ID                    uint    `json:"-" gorm:"primaryKey"`
	WarningThresholdHours float64 `json:"warning_threshold_hours"`
	DangerThresholdHours  float64 `json:"danger_threshold_hours"`
	CheckIntervalMs       int     `json:"check_interval_ms"`
	SoundEnabled          bool    `json:"sound_enabled"`
	NotificationsEnabled  bool    `json:"notifications_enabled"`
}

func DefaultSLAConfig() SLAConfig {
	return SLAConfig{
		WarningThresholdHours: 4,
		DangerThresholdHours:  1,
		CheckIntervalMs:       60000,
		SoundEnabled:          true,
		NotificationsEnabled:  true,
	}
}

// Valid reports whether the record satisfies the threshold and interval
// invariants. An invalid persisted record is treated as corruption.
func (c SLAConfig) Valid() bool {
	return c.WarningThresholdHours > 0 &&
		c.DangerThresholdHours > 0 &&
		c.DangerThresholdHours < c.WarningThresholdHours &&
		c.CheckIntervalMs > 0
}

func (c SLAConfig) CheckInterval() time.Duration {
	return time.Duration(c.CheckIntervalMs) * time.Millisecond
}

package store

import (
	"sync"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/ticketeye/internal/models"
)

// AlertStore holds the set of acknowledged alert identifiers. The set is
// mirrored in memory and loaded once at construction; database writes are
// best-effort so a storage hiccup never loses the user's intent within the
// running process.
type AlertStore struct {
	db    *gorm.DB
	log   zerolog.Logger
	mutex sync.RWMutex
	acked map[string]struct{}
}

func NewAlertStore(db *gorm.DB, log zerolog.Logger) *AlertStore {
	s := &AlertStore{
		db:    db,
		log:   log.With().Str("component", "alert-store").Logger(),
		acked: make(map[string]struct{}),
	}

	var records []models.Acknowledgment
	if err := db.Find(&records).Error; err != nil {
		s.log.Warn().Err(err).Msg("failed to load acknowledgments")
	} else {
		for _, r := range records {
			s.acked[r.AlertID] = struct{}{}
		}
	}

	return s
}

// IsAcknowledged reports whether this exact alert identifier has been
// acknowledged. The lookup is by full identifier, never by prefix, so an
// acknowledgment at one level cannot suppress alerts at another.
func (s *AlertStore) IsAcknowledged(alertID string) bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	_, ok := s.acked[alertID]
	return ok
}

// Acknowledge records one alert identifier. Idempotent.
func (s *AlertStore) Acknowledge(alertID string) {
	s.mutex.Lock()
	if _, ok := s.acked[alertID]; ok {
		s.mutex.Unlock()
		return
	}
	s.acked[alertID] = struct{}{}
	s.mutex.Unlock()

	s.persist(alertID)
}

// AcknowledgeAll records a batch of alert identifiers.
func (s *AlertStore) AcknowledgeAll(alertIDs []string) {
	var fresh []string

	s.mutex.Lock()
	for _, id := range alertIDs {
		if _, ok := s.acked[id]; ok {
			continue
		}
		s.acked[id] = struct{}{}
		fresh = append(fresh, id)
	}
	s.mutex.Unlock()

	for _, id := range fresh {
		s.persist(id)
	}
}

func (s *AlertStore) persist(alertID string) {
	record := models.Acknowledgment{AlertID: alertID}
	if err := s.db.Where(models.Acknowledgment{AlertID: alertID}).FirstOrCreate(&record).Error; err != nil {
		s.log.Warn().Err(err).Str("alert_id", alertID).Msg("failed to persist acknowledgment")
	}
}

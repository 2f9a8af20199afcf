package tickets

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ticketeye/internal/models"
)

// Source reads the active-ticket snapshot the engine evaluates each tick.
// It lives on the host side of the engine boundary: the engine itself never
// touches ticket storage.
type Source struct {
	db *gorm.DB
}

func NewSource(db *gorm.DB) *Source {
	return &Source{db: db}
}

// ActiveTickets returns non-terminal tickets in deterministic (deadline,
// id) order, which fixes the engine's alert emission order per tick.
func (s *Source) ActiveTickets(ctx context.Context) ([]models.Ticket, error) {
	var out []models.Ticket
	err := s.db.WithContext(ctx).
		Where("status NOT IN ?", []models.TicketStatus{models.TicketStatusResolved, models.TicketStatusClosed}).
		Order("deadline IS NULL, deadline, id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active tickets: %v", err)
	}
	return out, nil
}

package tickets

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ticketeye/internal/database"
	"github.com/ticketeye/internal/models"
)

func TestActiveTickets(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	now := time.Now()
	soon := now.Add(time.Hour)
	later := now.Add(6 * time.Hour)

	seed := []models.Ticket{
		{ID: "T-1", Title: "No deadline", Status: models.TicketStatusOpen},
		{ID: "T-2", Title: "Due later", Status: models.TicketStatusInProgress, Deadline: &later},
		{ID: "T-3", Title: "Due soon", Status: models.TicketStatusOpen, Deadline: &soon},
		{ID: "T-4", Title: "Resolved", Status: models.TicketStatusResolved, Deadline: &soon},
		{ID: "T-5", Title: "Closed", Status: models.TicketStatusClosed, Deadline: &soon},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}

	src := NewSource(db)
	got, err := src.ActiveTickets(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, ticket := range got {
		ids = append(ids, ticket.ID)
	}

	// Terminal tickets excluded; earliest deadline first, deadline-less last.
	assert.Equal(t, []string{"T-3", "T-2", "T-1"}, ids)
}

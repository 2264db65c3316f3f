package tickets

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/stagepass/backend/internal/models"
)

func ticketType(start, end time.Time) *models.TicketType {
	return &models.TicketType{
		Name:      "General Admission",
		Capacity:  100,
		StartDate: start,
		EndDate:   end,
	}
}

func TestPatchedWindowOrdered(t *testing.T) {
	start := date(2020, 3, 1, 0, 0, 0)
	end := date(2020, 3, 31, 0, 0, 0)
	tt := ticketType(start, end)

	afterEnd := date(2020, 4, 15, 0, 0, 0)
	beforeStart := date(2020, 2, 1, 0, 0, 0)
	later := date(2020, 5, 1, 0, 0, 0)

	// No patch keeps the stored, ordered window.
	assert.True(t, patchedWindowOrdered(tt, TicketTypeEditableAttributes{}))

	// Moving one bound past the other is rejected.
	assert.False(t, patchedWindowOrdered(tt, TicketTypeEditableAttributes{StartDate: &afterEnd}))
	assert.False(t, patchedWindowOrdered(tt, TicketTypeEditableAttributes{EndDate: &beforeStart}))

	// A zero-length window is rejected too.
	assert.False(t, patchedWindowOrdered(tt, TicketTypeEditableAttributes{StartDate: &end}))

	// Shifting both bounds to a later, still ordered window passes.
	assert.True(t, patchedWindowOrdered(tt, TicketTypeEditableAttributes{StartDate: &afterEnd, EndDate: &later}))
}

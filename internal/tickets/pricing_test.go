package tickets

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/apperr"
)

func period(name string, start, end time.Time) models.TicketPricing {
	return models.TicketPricing{
		ID:        uuid.New(),
		Name:      name,
		Status:    models.TicketPricingPublished,
		StartDate: start,
		EndDate:   end,
	}
}

func date(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.UTC)
}

func TestOverlapsSymmetric(t *testing.T) {
	a := period("Early Bird", date(2016, 7, 6, 4, 10, 11), date(2016, 7, 10, 4, 10, 11))
	b := period("Regular", date(2016, 7, 7, 4, 10, 11), date(2016, 7, 11, 4, 10, 11))

	assert.True(t, Overlaps(a, b))
	assert.True(t, Overlaps(b, a))
}

func TestOverlapsHalfOpenBoundary(t *testing.T) {
	// A period ending exactly when the next starts does not overlap it.
	boundary := date(2018, 6, 2, 7, 45, 31)
	a := period("Early Bird", date(2018, 5, 1, 6, 20, 21), boundary)
	b := period("Regular", boundary, date(2018, 7, 3, 9, 23, 23))

	assert.False(t, Overlaps(a, b))
	assert.False(t, Overlaps(b, a))
}

func TestOverlapsContainment(t *testing.T) {
	outer := period("Season", date(2016, 1, 1, 0, 0, 0), date(2016, 12, 31, 0, 0, 0))
	inner := period("Flash Sale", date(2016, 6, 1, 0, 0, 0), date(2016, 6, 8, 0, 0, 0))
	assert.True(t, Overlaps(outer, inner))
	assert.True(t, Overlaps(inner, outer))
}

func TestValidatePeriodsReportsBothIDs(t *testing.T) {
	a := period("Early Bird", date(2016, 7, 6, 4, 10, 11), date(2016, 7, 10, 4, 10, 11))
	b := period("Regular", date(2016, 7, 7, 4, 10, 11), date(2016, 7, 11, 4, 10, 11))

	err := ValidatePeriods([]models.TicketPricing{a, b})
	require.Error(t, err)
	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, "ticket_pricing", appErr.Field)
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID}, appErr.ConflictIDs)
}

func TestValidatePeriodsTouchingBoundarySucceeds(t *testing.T) {
	boundary := date(2018, 6, 2, 7, 45, 31)
	a := period("Early Bird", date(2018, 5, 1, 6, 20, 21), boundary)
	b := period("Regular", boundary, date(2018, 7, 3, 9, 23, 23))
	assert.NoError(t, ValidatePeriods([]models.TicketPricing{a, b}))
}

func TestValidatePeriodsIgnoresDeleted(t *testing.T) {
	a := period("Early Bird", date(2016, 7, 6, 4, 10, 11), date(2016, 7, 10, 4, 10, 11))
	b := period("Regular", date(2016, 7, 7, 4, 10, 11), date(2016, 7, 11, 4, 10, 11))
	b.Status = models.TicketPricingDeleted

	assert.NoError(t, ValidatePeriods([]models.TicketPricing{a, b}))
}

func TestValidateCandidateExcludesSelf(t *testing.T) {
	// Updating a period's dates re-validates against the others only.
	a := period("Early Bird", date(2016, 7, 4, 4, 10, 11), date(2016, 7, 6, 4, 10, 11))
	b := period("Regular", date(2016, 7, 6, 4, 10, 11), date(2016, 7, 10, 4, 10, 11))
	existing := []models.TicketPricing{a, b}

	moved := b
	moved.StartDate = date(2016, 7, 7, 4, 10, 11)
	moved.EndDate = date(2016, 7, 11, 4, 10, 11)
	assert.NoError(t, ValidateCandidate(existing, moved))

	// Moving onto the other period still fails.
	moved.StartDate = date(2016, 7, 5, 4, 10, 11)
	err := ValidateCandidate(existing, moved)
	require.Error(t, err)
	appErr, _ := apperr.As(err)
	assert.Equal(t, []uuid.UUID{a.ID}, appErr.ConflictIDs)
}

func TestValidateCandidateRejectsInvertedDates(t *testing.T) {
	bad := period("Backwards", date(2016, 7, 10, 0, 0, 0), date(2016, 7, 6, 0, 0, 0))
	err := ValidateCandidate(nil, bad)
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestSelectCurrentPricing(t *testing.T) {
	early := period("Early Bird", date(2016, 7, 1, 0, 0, 0), date(2016, 7, 10, 0, 0, 0))
	regular := period("Regular", date(2016, 7, 10, 0, 0, 0), date(2016, 7, 20, 0, 0, 0))
	periods := []models.TicketPricing{early, regular}

	current, err := SelectCurrentPricing(periods, date(2016, 7, 5, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, early.ID, current.ID)

	// Half-open: at the boundary instant the later period is active.
	current, err = SelectCurrentPricing(periods, date(2016, 7, 10, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, regular.ID, current.ID)
}

func TestSelectCurrentPricingNoneActive(t *testing.T) {
	early := period("Early Bird", date(2016, 7, 1, 0, 0, 0), date(2016, 7, 10, 0, 0, 0))
	_, err := SelectCurrentPricing([]models.TicketPricing{early}, date(2016, 8, 1, 0, 0, 0))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSelectCurrentPricingMultipleActiveIsIntegrityFault(t *testing.T) {
	a := period("A", date(2016, 7, 1, 0, 0, 0), date(2016, 7, 10, 0, 0, 0))
	b := period("B", date(2016, 7, 5, 0, 0, 0), date(2016, 7, 15, 0, 0, 0))
	_, err := SelectCurrentPricing([]models.TicketPricing{a, b}, date(2016, 7, 6, 0, 0, 0))
	require.Error(t, err)
	assert.Equal(t, apperr.KindIntegrity, apperr.KindOf(err))
}

func TestSelectCurrentPricingSkipsDeleted(t *testing.T) {
	live := period("Live", date(2016, 7, 1, 0, 0, 0), date(2016, 7, 10, 0, 0, 0))
	dead := period("Dead", date(2016, 7, 1, 0, 0, 0), date(2016, 7, 10, 0, 0, 0))
	dead.Status = models.TicketPricingDeleted

	current, err := SelectCurrentPricing([]models.TicketPricing{dead, live}, date(2016, 7, 5, 0, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, live.ID, current.ID)
}

package tickets

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/stagepass/backend/internal/models"
	"github.com/stagepass/backend/pkg/apperr"
)

// Pricing period windows are half-open [start, end): a period ending at
// the instant another starts does not overlap it.

// Overlaps reports whether two pricing period windows intersect.
func Overlaps(a, b models.TicketPricing) bool {
	return a.StartDate.Before(b.EndDate) && b.StartDate.Before(a.EndDate)
}

// FindOverlaps returns the ids of Published periods in existing that
// overlap candidate. The candidate itself (matched by id, for updates) and
// Deleted periods never participate.
func FindOverlaps(existing []models.TicketPricing, candidate models.TicketPricing) []uuid.UUID {
	var ids []uuid.UUID
	for _, p := range existing {
		if p.ID == candidate.ID {
			continue
		}
		if p.Status != models.TicketPricingPublished {
			continue
		}
		if Overlaps(p, candidate) {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// ValidatePeriods checks a full set of pricing periods pairwise, used when
// a ticket type is created or patched with several periods at once. On
// violation the error names the ticket_pricing field and every period id
// involved in at least one overlap.
func ValidatePeriods(periods []models.TicketPricing) error {
	conflicting := make(map[uuid.UUID]struct{})
	for i := 0; i < len(periods); i++ {
		if periods[i].Status != models.TicketPricingPublished {
			continue
		}
		for j := i + 1; j < len(periods); j++ {
			if periods[j].Status != models.TicketPricingPublished {
				continue
			}
			if Overlaps(periods[i], periods[j]) {
				conflicting[periods[i].ID] = struct{}{}
				conflicting[periods[j].ID] = struct{}{}
			}
		}
	}
	if len(conflicting) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(conflicting))
	for id := range conflicting {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return apperr.Overlap("ticket_pricing", "ticket pricing periods overlap", ids)
}

// ValidateCandidate checks one proposed period against the stored
// Published periods of its ticket type. Existing must be loaded inside
// the same transaction that writes the candidate.
func ValidateCandidate(existing []models.TicketPricing, candidate models.TicketPricing) error {
	if !candidate.StartDate.Before(candidate.EndDate) {
		return apperr.Validation("ticket_pricing", "start_date must be before end_date")
	}
	if ids := FindOverlaps(existing, candidate); len(ids) > 0 {
		return apperr.Overlap("ticket_pricing", "ticket pricing period overlaps an existing period", ids)
	}
	return nil
}

// SelectCurrentPricing picks the single Published period whose window
// contains now. Zero matches is a configuration error (no active price);
// more than one means overlap validation was bypassed and the stored data
// violates its invariant.
func SelectCurrentPricing(periods []models.TicketPricing, now time.Time) (*models.TicketPricing, error) {
	var active []models.TicketPricing
	for _, p := range periods {
		if p.Status != models.TicketPricingPublished {
			continue
		}
		if !p.StartDate.After(now) && now.Before(p.EndDate) {
			active = append(active, p)
		}
	}
	switch len(active) {
	case 0:
		return nil, apperr.NotFound("no ticket pricing found")
	case 1:
		p := active[0]
		return &p, nil
	default:
		return nil, apperr.Integrity("expected a single ticket pricing period but multiple were found")
	}
}

package slot

import (
	"context"
	"log/slog"

	"github.com/LavaJover/shvark-slot-service/internal/domain"
	"github.com/LavaJover/shvark-slot-service/internal/infrastructure/metrics"
)

// casAttempts bounds re-reads after losing a race on the counter.
const casAttempts = 3

// Allocator is the only writer of Offer.SlotsAvailable.
type Allocator struct {
	offers  domain.OfferRepository
	metrics *metrics.SlotMetrics
}

func NewAllocator(offers domain.OfferRepository, m *metrics.SlotMetrics) *Allocator {
	return &Allocator{offers: offers, metrics: m}
}

// Decrement takes one slot from the offer. It never returns an error: no
// slots, a lost race or a store failure all report false.
func (a *Allocator) Decrement(ctx context.Context, offerID string) bool {
	for attempt := 1; attempt <= casAttempts; attempt++ {
		offer, err := a.offers.GetOfferByID(ctx, offerID)
		if err != nil {
			slog.Error("slot decrement: failed to load offer", "offer_id", offerID, "error", err)
			a.metrics.RecordSlotDecrement("error")
			return false
		}

		observed := offer.SlotsAvailable
		current := offer.SlotsTotal
		if observed != nil {
			current = *observed
		} else {
			// TODO: drop this once offers.slots_available is NOT NULL in every environment.
			slog.Warn("offer has no slots_available, assuming slots_total",
				"offer_id", offerID, "slots_total", offer.SlotsTotal)
		}
		if current <= 0 {
			slog.Info("slot decrement: no slots left", "offer_id", offerID)
			a.metrics.RecordSlotDecrement("exhausted")
			return false
		}

		ok, err := a.offers.CompareAndSetSlots(ctx, offerID, observed, current-1)
		if err != nil {
			slog.Error("slot decrement: conditional update failed", "offer_id", offerID, "error", err)
			a.metrics.RecordSlotDecrement("error")
			return false
		}
		if ok {
			a.metrics.RecordSlotDecrement("ok")
			return true
		}
		slog.Debug("slot decrement: counter changed concurrently, retrying", "offer_id", offerID, "attempt", attempt)
	}

	slog.Warn("slot decrement: gave up after concurrent updates", "offer_id", offerID)
	a.metrics.RecordSlotDecrement("contended")
	return false
}

// Restore gives one slot back, capped at SlotsTotal.
func (a *Allocator) Restore(ctx context.Context, offerID string) bool {
	ok, err := a.offers.IncrementSlots(ctx, offerID)
	if err != nil {
		slog.Error("slot restore failed", "offer_id", offerID, "error", err)
		a.metrics.RecordSlotRestore("error")
		return false
	}
	if !ok {
		slog.Warn("slot restore: offer not found", "offer_id", offerID)
		a.metrics.RecordSlotRestore("not_found")
		return false
	}
	a.metrics.RecordSlotRestore("ok")
	return true
}

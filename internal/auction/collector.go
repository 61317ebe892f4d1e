package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lendora/auction/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Collection phase — concurrent fan-out racing a shared deadline
// ──────────────────────────────────────────────────────────────────────────────

// partnerResult is one settled provider call.
type partnerResult struct {
	record domain.PartnerOfferRecord
}

// collectionPolicy is the subset of auction policy the collector needs to
// evaluate early completion while offers are still arriving.
type collectionPolicy struct {
	partnersInvited        int
	minOffersRequired      int
	autoComplete           bool
	earlyTerminationOffers int
}

// runCollection drives one auction's collection phase end to end: fan out,
// gather until the deadline, persist the collected records, then hand over
// to the completion criteria. Any unexpected failure expires the auction
// instead of crashing the coordinator.
func (c *Coordinator) runCollection(ctx context.Context, a *domain.Auction, partners []domain.Partner, app *domain.Application) {
	defer func() {
		if r := recover(); r != nil {
			c.markExpired(ctx, a.ID, fmt.Errorf("panic during collection: %v", r))
		}
	}()

	policy := collectionPolicy{
		partnersInvited:        len(partners),
		minOffersRequired:      a.MinOffersRequired,
		autoComplete:           a.Metadata.AutoComplete,
		earlyTerminationOffers: a.Metadata.EarlyTerminationOffers,
	}
	deadline := a.ExpiresAt.Sub(c.clk.Now())
	records := c.collectResponses(ctx, partners, app, deadline, policy)

	if err := c.appendOffers(ctx, a.ID, records); err != nil {
		c.markExpired(ctx, a.ID, err)
		return
	}

	fresh, err := c.store.Load(ctx, a.ID)
	if err != nil {
		c.markExpired(ctx, a.ID, fmt.Errorf("reload after collection: %w", err))
		return
	}
	if fresh.Status != domain.AuctionActive {
		// Cancelled while collecting; nothing more to do.
		return
	}

	decision := EvaluateCompletion(fresh, c.clk.Now())
	if !decision.ShouldComplete {
		c.logger.Info("auction left active: completion criteria not met",
			"auction_id", a.ID, "offers", len(fresh.Offers), "min_required", fresh.MinOffersRequired)
		return
	}

	c.logger.Info("completing auction", "auction_id", a.ID, "reason", decision.Reason)
	if _, err := c.CompleteAuction(ctx, a.ID); err != nil {
		c.markExpired(ctx, a.ID, fmt.Errorf("completion pipeline: %w", err))
	}
}

// collectResponses invokes every partner concurrently and gathers settled
// results until either all calls have settled or the deadline elapses —
// whichever comes first. Reaching the deadline does NOT cancel in-flight
// calls; their eventual results are deliberately discarded (the buffered
// channel lets late workers finish without blocking) so a finalized offer
// set is never appended to retroactively. Records are returned in arrival
// order.
func (c *Coordinator) collectResponses(
	ctx context.Context,
	partners []domain.Partner,
	app *domain.Application,
	deadline time.Duration,
	policy collectionPolicy,
) []domain.PartnerOfferRecord {
	results := make(chan partnerResult, len(partners))
	for _, p := range partners {
		go c.fetchPartnerOffer(ctx, p, app, results)
	}

	timer := time.NewTimer(deadline)
	defer timer.Stop()

	var records []domain.PartnerOfferRecord
	for settled := 0; settled < len(partners); settled++ {
		select {
		case res := <-results:
			records = append(records, res.record)
			// Re-check completion after every arrival so a satisfied early
			// termination threshold or a full response set stops the wait.
			if decideCompletion(len(records), false, policy).ShouldComplete {
				return records
			}
		case <-timer.C:
			return records
		}
	}
	return records
}

// fetchPartnerOffer performs one isolated, timed provider call. A failure is
// converted into an unsuccessful record; it never affects other partners.
func (c *Coordinator) fetchPartnerOffer(ctx context.Context, p domain.Partner, app *domain.Application, results chan<- partnerResult) {
	start := c.clk.Now()
	offers, err := c.gateway.RequestOffers(ctx, p, app)
	received := c.clk.Now()
	latency := received.Sub(start).Milliseconds()

	rec := domain.PartnerOfferRecord{
		PartnerID:      p.ID,
		PartnerName:    p.Name,
		ReceivedAt:     received,
		ResponseTimeMs: latency,
	}
	switch {
	case err != nil:
		rec.Error = err.Error()
		c.logger.Warn("partner offer request failed", "partner_id", p.ID, "err", err, "latency_ms", latency)
	case len(offers) == 0:
		rec.Error = "partner returned no offers"
	default:
		// Keep the partner's first returned offer.
		first := offers[0]
		rec.Offer = &first
		rec.Success = true
	}
	results <- partnerResult{record: rec}
}

// appendOffers writes the collected records to the auction and emits one
// offer_received event per record. Offers are append-only while active; a
// cancelled auction silently drops the batch.
func (c *Coordinator) appendOffers(ctx context.Context, auctionID uuid.UUID, records []domain.PartnerOfferRecord) error {
	mu := c.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := c.store.Load(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("appendOffers: load: %w", err)
	}
	if a.Status != domain.AuctionActive {
		return nil
	}

	updated := *a
	updated.Offers = append(append([]domain.PartnerOfferRecord{}, a.Offers...), records...)
	updated.UpdatedAt = c.clk.Now()
	if err := c.store.Save(ctx, &updated); err != nil {
		return fmt.Errorf("appendOffers: save: %w", err)
	}

	for _, rec := range records {
		c.emit(domain.AuctionEvent{
			Type:      domain.EventOfferReceived,
			AuctionID: a.ID,
			TenantID:  a.TenantID,
			Payload: map[string]any{
				"partner_id":       rec.PartnerID,
				"success":          rec.Success,
				"response_time_ms": rec.ResponseTimeMs,
			},
			Timestamp: rec.ReceivedAt,
		})
	}
	return nil
}

package auction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lendora/auction/internal/domain"
	"github.com/shopspring/decimal"
)

// approvalFloor is the minimum approval probability an offer needs to be
// eligible for winner selection.
const approvalFloor = 50.0

// ──────────────────────────────────────────────────────────────────────────────
// Completion criteria
// ──────────────────────────────────────────────────────────────────────────────

// CompletionDecision is the outcome of evaluating the completion criteria.
type CompletionDecision struct {
	ShouldComplete bool
	Reason         string
}

// EvaluateCompletion applies the completion rules to the auction's persisted
// state at the given instant.
func EvaluateCompletion(a *domain.Auction, now time.Time) CompletionDecision {
	policy := collectionPolicy{
		partnersInvited:        len(a.PartnerIDs),
		minOffersRequired:      a.MinOffersRequired,
		autoComplete:           a.Metadata.AutoComplete,
		earlyTerminationOffers: a.Metadata.EarlyTerminationOffers,
	}
	return decideCompletion(len(a.Offers), a.HasTimedOut(now), policy)
}

// decideCompletion applies the three completion rules in strict precedence,
// first match wins:
//
//  1. deadline elapsed with the minimum offer count reached
//  2. auto-complete enabled and every invited partner has responded with the
//     minimum reached
//  3. the configured early-termination offer count reached, provided the
//     minimum is also met — a threshold misconfigured below the minimum must
//     not trigger a completion attempt that is guaranteed to be rejected
//
// No rule matching means no completion action is taken.
func decideCompletion(offersReceived int, timedOut bool, policy collectionPolicy) CompletionDecision {
	hasMinimum := offersReceived >= policy.minOffersRequired
	allResponded := offersReceived >= policy.partnersInvited
	earlyTermination := policy.earlyTerminationOffers > 0 && offersReceived >= policy.earlyTerminationOffers

	switch {
	case timedOut && hasMinimum:
		return CompletionDecision{true, "timeout reached with minimum offers"}
	case policy.autoComplete && allResponded && hasMinimum:
		return CompletionDecision{true, "all partners responded"}
	case earlyTermination && hasMinimum:
		return CompletionDecision{true, "early termination threshold met"}
	}
	return CompletionDecision{}
}

// ──────────────────────────────────────────────────────────────────────────────
// CompleteAuction
// ──────────────────────────────────────────────────────────────────────────────

// CompleteAuction runs the completion pipeline: normalize → rank → select
// winner → compute analytics → persist the terminal record atomically.
//
// Idempotent: an already-completed auction returns its stored result without
// recomputation. Check-then-act runs under the per-auction mutex so two
// concurrent attempts yield one persisted winner and one idempotent echo.
func (c *Coordinator) CompleteAuction(ctx context.Context, auctionID uuid.UUID) (*domain.AuctionResult, error) {
	mu := c.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := c.store.Load(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction.CompleteAuction: %w", err)
	}
	if a.Status == domain.AuctionCompleted {
		return a.ToResult(), nil
	}
	if a.IsFinal() {
		return nil, fmt.Errorf("auction.CompleteAuction: cannot complete auction in %s status: %w",
			a.Status, domain.ErrAuctionFinal)
	}
	if len(a.Offers) < a.MinOffersRequired {
		return nil, fmt.Errorf("auction.CompleteAuction: insufficient offers: %d < %d: %w",
			len(a.Offers), a.MinOffersRequired, domain.ErrInsufficientOffers)
	}

	ranked := c.rankCollected(a)
	if len(ranked) == 0 {
		return nil, fmt.Errorf("auction.CompleteAuction: no offers survived normalization")
	}

	winner := c.selectWinner(a, ranked)
	completedAt := c.clk.Now()
	analytics := computeAnalytics(a, ranked, completedAt)

	// Status, winner and analytics land in a single atomic record
	// replacement; a partial terminal write would violate the contract.
	updated := *a
	updated.Status = domain.AuctionCompleted
	updated.CompletedAt = &completedAt
	updated.WinningOffer = winner
	updated.Analytics = analytics
	updated.UpdatedAt = completedAt

	if err := c.store.Save(ctx, &updated); err != nil {
		return nil, fmt.Errorf("auction.CompleteAuction: save: %w", err)
	}

	c.emit(domain.AuctionEvent{
		Type:      domain.EventAuctionCompleted,
		AuctionID: a.ID,
		TenantID:  a.TenantID,
		Payload: map[string]any{
			"winner_partner_id":  winner.PartnerID,
			"savings":            winner.Savings,
			"savings_percentage": winner.SavingsPercentage,
			"offers_received":    len(a.Offers),
		},
		Timestamp: completedAt,
	})

	c.logger.Info("auction completed",
		"auction_id", a.ID,
		"winner", winner.PartnerID,
		"savings", winner.Savings.StringFixed(2),
		"offers", len(a.Offers))

	return updated.ToResult(), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Winner selection
// ──────────────────────────────────────────────────────────────────────────────

// selectWinner picks the best-ranked offer above the approval floor and
// quantifies the savings against the runner-up of the same filtered list.
// When no offer clears the floor, the full ranked list is used instead of
// failing the auction.
func (c *Coordinator) selectWinner(a *domain.Auction, ranked []domain.RankedOffer) *domain.WinningOfferDetails {
	eligible := make([]domain.RankedOffer, 0, len(ranked))
	for _, ro := range ranked {
		if ro.Scores.ApprovalProbability >= approvalFloor {
			eligible = append(eligible, ro)
		}
	}
	if len(eligible) == 0 {
		c.logger.Warn("no offer cleared the approval floor, falling back to full ranking",
			"auction_id", a.ID, "offers", len(ranked))
		eligible = ranked
	}

	winner := eligible[0]
	savings := decimal.Zero
	savingsPct := decimal.Zero
	if len(eligible) > 1 {
		nextBest := eligible[1]
		savings = nextBest.TotalCost.Sub(winner.TotalCost).Round(2)
		if nextBest.TotalCost.IsPositive() {
			savingsPct = savings.Div(nextBest.TotalCost).Mul(decimal.NewFromInt(100)).Round(2)
		}
	}

	return &domain.WinningOfferDetails{
		PartnerID:          winner.PartnerID,
		PartnerName:        winner.PartnerName,
		EffectiveAPR:       winner.EffectiveAPR,
		MonthlyInstallment: winner.MonthlyInstallment,
		TotalCost:          winner.TotalCost,
		OverallScore:       winner.OverallScore,
		Savings:            savings,
		SavingsPercentage:  savingsPct,
		SelectionReason:    winner.Recommendation,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Analytics
// ──────────────────────────────────────────────────────────────────────────────

// computeAnalytics derives the frozen auction summary from the raw offer
// records and the ranked list. Response-time ties break toward the earlier
// record in arrival order.
func computeAnalytics(a *domain.Auction, ranked []domain.RankedOffer, completedAt time.Time) *domain.AuctionAnalytics {
	analytics := &domain.AuctionAnalytics{
		PartnersInvited: len(a.PartnerIDs),
		OffersReceived:  len(a.Offers),
		DurationMs:      completedAt.Sub(a.StartedAt).Milliseconds(),
	}

	if len(a.PartnerIDs) > 0 {
		analytics.ParticipationRate = decimal.NewFromInt(int64(len(a.Offers))).
			Div(decimal.NewFromInt(int64(len(a.PartnerIDs)))).
			Mul(decimal.NewFromInt(100)).
			Round(2)
	}

	if len(a.Offers) > 0 {
		fastest := a.Offers[0]
		slowest := a.Offers[0]
		var totalMs int64
		for _, rec := range a.Offers {
			if rec.ResponseTimeMs < fastest.ResponseTimeMs {
				fastest = rec
			}
			if rec.ResponseTimeMs > slowest.ResponseTimeMs {
				slowest = rec
			}
			totalMs += rec.ResponseTimeMs
		}
		analytics.FastestPartner = fastest.PartnerID
		analytics.SlowestPartner = slowest.PartnerID
		analytics.AverageResponseTimeMs = totalMs / int64(len(a.Offers))
	}

	if len(ranked) > 0 {
		best := ranked[0].EffectiveAPR
		worst := ranked[0].EffectiveAPR
		sum := decimal.Zero
		for _, ro := range ranked {
			if ro.EffectiveAPR.LessThan(best) {
				best = ro.EffectiveAPR
			}
			if ro.EffectiveAPR.GreaterThan(worst) {
				worst = ro.EffectiveAPR
			}
			sum = sum.Add(ro.EffectiveAPR)
		}
		analytics.BestRate = best
		analytics.WorstRate = worst
		analytics.AverageRate = sum.Div(decimal.NewFromInt(int64(len(ranked)))).Round(2)
		analytics.RateSpread = worst.Sub(best)
	}

	return analytics
}

// Package ranker orders canonical offers under a weighted multi-criteria
// model driven by the borrower's selected priority mode, and annotates the
// result with badges and human-readable rationale.
package ranker

import (
	"math"
	"sort"

	"github.com/lendora/auction/internal/domain"
)

// ──────────────────────────────────────────────────────────────────────────────
// Scoring bounds
// ──────────────────────────────────────────────────────────────────────────────

// Normalization bounds for inverse-linear scoring. Rates outside [10%, 25%]
// and disbursal speeds outside [0.5, 7] days clamp to the boundary scores.
const (
	minAssumedAPR = 10.0
	maxAssumedAPR = 25.0
	minSpeedDays  = 0.5
	maxSpeedDays  = 7.0
	baseApproval  = 70.0
)

// ──────────────────────────────────────────────────────────────────────────────
// Approval adjustments
// ──────────────────────────────────────────────────────────────────────────────

// ApprovalAdjustmentSource supplies a fixed per-partner additive adjustment
// to approval probability. Injectable, like the reputation table.
type ApprovalAdjustmentSource interface {
	Adjustment(partnerID string) float64
}

// StaticAdjustments is a fixed per-partner adjustment table.
type StaticAdjustments struct {
	adjustments map[string]float64
}

// NewStaticAdjustments builds a table-backed adjustment source.
func NewStaticAdjustments(adjustments map[string]float64) *StaticAdjustments {
	return &StaticAdjustments{adjustments: adjustments}
}

// DefaultAdjustments returns the seeded production table.
func DefaultAdjustments() *StaticAdjustments {
	return NewStaticAdjustments(map[string]float64{
		"apex-capital":    5,
		"meridian-credit": 3,
	})
}

// Adjustment returns the partner's seeded adjustment, zero for unknown ids.
func (a *StaticAdjustments) Adjustment(partnerID string) float64 {
	return a.adjustments[partnerID]
}

// ──────────────────────────────────────────────────────────────────────────────
// Ranker
// ──────────────────────────────────────────────────────────────────────────────

// Ranker is a pure function holder over the offers it is given; it never
// mutates the auction record.
type Ranker struct {
	adjustments ApprovalAdjustmentSource
}

// New creates a Ranker. A nil adjustment source falls back to the seeded
// static table.
func New(adjustments ApprovalAdjustmentSource) *Ranker {
	if adjustments == nil {
		adjustments = DefaultAdjustments()
	}
	return &Ranker{adjustments: adjustments}
}

// RankOffers scores, sorts and annotates the given offers under the ranking
// context. Empty input yields empty output. The sort is stable: offers with
// equal overall scores keep their input order, and ranks are assigned by
// post-sort position, 1-based and dense.
func (r *Ranker) RankOffers(offers []domain.StandardOffer, rc domain.RankingContext) []domain.RankedOffer {
	if len(offers) == 0 {
		return []domain.RankedOffer{}
	}
	rc = rc.WithDefaults()
	weights := WeightsFor(rc.Prioritize)

	scored := make([]domain.ScoredOffer, len(offers))
	for i, offer := range offers {
		scores := r.scoreOffer(offer, rc)
		scored[i] = domain.ScoredOffer{
			StandardOffer: offer,
			Scores:        scores,
			OverallScore:  round2(weights.Apply(scores)),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].OverallScore > scored[j].OverallScore
	})

	ranked := make([]domain.RankedOffer, len(scored))
	for i, so := range scored {
		ranked[i] = domain.RankedOffer{
			ScoredOffer:    so,
			Rank:           i + 1,
			Recommendation: buildRecommendation(so, rc),
			Pros:           buildPros(so),
			Cons:           buildCons(so),
		}
	}
	assignBadges(ranked)
	return ranked
}

// ──────────────────────────────────────────────────────────────────────────────
// Component scores
// ──────────────────────────────────────────────────────────────────────────────

func (r *Ranker) scoreOffer(offer domain.StandardOffer, rc domain.RankingContext) domain.ComponentScores {
	return domain.ComponentScores{
		Cost:                costScore(offer),
		Speed:               speedScore(offer, rc.Urgency),
		Reliability:         offer.ReputationScore,
		Flexibility:         offer.FlexibilityScore,
		ApprovalProbability: r.approvalProbability(offer, rc.Profile),
	}
}

// costScore normalizes the effective APR inversely over the assumed market
// bounds: 10% scores 100, 25% scores 0.
func costScore(offer domain.StandardOffer) float64 {
	return inverseLinear(offer.EffectiveAPR.InexactFloat64(), minAssumedAPR, maxAssumedAPR)
}

// speedScore normalizes disbursal speed inversely over [0.5, 7] days and
// adds a small urgency-match bonus, capped at 100.
func speedScore(offer domain.StandardOffer, urgency domain.Urgency) float64 {
	score := inverseLinear(offer.DisbursalSpeedDays, minSpeedDays, maxSpeedDays)
	switch {
	case urgency == domain.UrgencySameDay && offer.DisbursalSpeedDays <= 1:
		score += 10
	case urgency == domain.UrgencyThreeDays && offer.DisbursalSpeedDays <= 3:
		score += 5
	}
	if score > 100 {
		score = 100
	}
	return score
}

// approvalProbability estimates the 0–100 chance this partner approves the
// borrower. Credit-score bands override the base; years in business and the
// per-partner table adjust additively.
func (r *Ranker) approvalProbability(offer domain.StandardOffer, profile *domain.BusinessProfile) float64 {
	score := baseApproval

	if profile != nil && profile.CreditScore != nil {
		switch cs := *profile.CreditScore; {
		case cs >= 750:
			score = 90
		case cs >= 700:
			score = 80
		case cs >= 650:
			score = 70
		default:
			score = 50
		}
	}

	if profile != nil && profile.YearsInBusiness != nil {
		switch yb := *profile.YearsInBusiness; {
		case yb >= 5:
			score += 10
		case yb >= 3:
			score += 5
		case yb < 1:
			score -= 20
		}
	}

	score += r.adjustments.Adjustment(offer.PartnerID)
	return clamp(score, 0, 100)
}

// ──────────────────────────────────────────────────────────────────────────────
// Badge assignment
// ──────────────────────────────────────────────────────────────────────────────

// assignBadges marks the rank-1 offer "Best Overall" and gives every other
// offer at most one badge, first matching rule wins: lowest effective APR,
// fastest disbursal, highest reputation, highest approval probability.
func assignBadges(ranked []domain.RankedOffer) {
	if len(ranked) == 0 {
		return
	}

	minAPR := ranked[0].EffectiveAPR
	minSpeed := ranked[0].DisbursalSpeedDays
	maxReputation := ranked[0].ReputationScore
	maxApproval := ranked[0].Scores.ApprovalProbability
	for _, ro := range ranked[1:] {
		if ro.EffectiveAPR.LessThan(minAPR) {
			minAPR = ro.EffectiveAPR
		}
		if ro.DisbursalSpeedDays < minSpeed {
			minSpeed = ro.DisbursalSpeedDays
		}
		if ro.ReputationScore > maxReputation {
			maxReputation = ro.ReputationScore
		}
		if ro.Scores.ApprovalProbability > maxApproval {
			maxApproval = ro.Scores.ApprovalProbability
		}
	}

	ranked[0].Badge = domain.BadgeBestOverall
	for i := 1; i < len(ranked); i++ {
		switch {
		case ranked[i].EffectiveAPR.Equal(minAPR):
			ranked[i].Badge = domain.BadgeLowestRate
		case ranked[i].DisbursalSpeedDays == minSpeed:
			ranked[i].Badge = domain.BadgeFastest
		case ranked[i].ReputationScore == maxReputation:
			ranked[i].Badge = domain.BadgeMostReliable
		case ranked[i].Scores.ApprovalProbability == maxApproval:
			ranked[i].Badge = domain.BadgeLikelyApproval
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// inverseLinear maps value over [lo, hi] to a 0–100 score where lo scores
// 100 and hi scores 0, clamped.
func inverseLinear(value, lo, hi float64) float64 {
	return clamp((hi-value)/(hi-lo)*100, 0, 100)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

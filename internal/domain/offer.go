package domain

import (
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// RawOffer — provider-specific payload, stored verbatim
// ──────────────────────────────────────────────────────────────────────────────

// RawOffer is the pricing structure a partner returns. Providers disagree on
// which fields they populate: some quote a flat total repayment, others only
// a nominal rate; disbursal time arrives as free text. The normalizer turns
// this into a StandardOffer.
type RawOffer struct {
	OfferID       string          `json:"offer_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`         // principal
	TenureMonths  int             `json:"tenure_months"`
	InterestRate  decimal.Decimal `json:"interest_rate"`  // nominal annual %
	ProcessingFee decimal.Decimal `json:"processing_fee"`
	// TotalRepayment is the all-in figure some providers quote instead of a
	// rate breakdown. nil when not supplied.
	TotalRepayment *decimal.Decimal `json:"total_repayment,omitempty"`
	DisbursalTime  string           `json:"disbursal_time,omitempty"` // free text, e.g. "2-3 days"
	Conditions     []string         `json:"conditions,omitempty"`     // free-text terms
}

// ──────────────────────────────────────────────────────────────────────────────
// StandardOffer — canonical, provider-agnostic representation
// ──────────────────────────────────────────────────────────────────────────────

// StandardOffer is the comparable form every raw offer is normalized into.
// Produced once per provider offer and never mutated afterwards.
type StandardOffer struct {
	PartnerID          string          `json:"partner_id"`
	PartnerName        string          `json:"partner_name"`
	PrincipalAmount    decimal.Decimal `json:"principal_amount"`
	TenureMonths       int             `json:"tenure_months"`
	NominalAPR         decimal.Decimal `json:"nominal_apr"`
	EffectiveAPR       decimal.Decimal `json:"effective_apr"` // annualized true cost incl. fees
	ProcessingFee      decimal.Decimal `json:"processing_fee"`
	TotalInterest      decimal.Decimal `json:"total_interest"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`

	DisbursalSpeedDays float64 `json:"disbursal_speed_days"` // lower is better
	FlexibilityScore   float64 `json:"flexibility_score"`    // 0–100
	ReputationScore    float64 `json:"reputation_score"`     // 0–100

	Raw *RawOffer `json:"raw,omitempty"` // original provider payload
}

// ──────────────────────────────────────────────────────────────────────────────
// ScoredOffer / RankedOffer — ranking artifacts, recomputed on demand
// ──────────────────────────────────────────────────────────────────────────────

// ComponentScores holds the five per-dimension scores, each 0–100.
type ComponentScores struct {
	Cost                float64 `json:"cost"`
	Speed               float64 `json:"speed"`
	Reliability         float64 `json:"reliability"`
	Flexibility         float64 `json:"flexibility"`
	ApprovalProbability float64 `json:"approval_probability"`
}

// ScoredOffer is a StandardOffer with its component scores and the weighted
// overall score attached.
type ScoredOffer struct {
	StandardOffer
	Scores       ComponentScores `json:"scores"`
	OverallScore float64         `json:"overall_score"`
}

// Badge labels an offer's standout dimension among its peers in one auction.
type Badge string

const (
	BadgeBestOverall    Badge = "Best Overall"
	BadgeLowestRate     Badge = "Lowest Rate"
	BadgeFastest        Badge = "Fastest"
	BadgeMostReliable   Badge = "Most Reliable"
	BadgeLikelyApproval Badge = "Likely Approval"
)

// RankedOffer is the final annotated form: a ScoredOffer with its dense
// 1-based rank, optional badge, and generated narrative.
type RankedOffer struct {
	ScoredOffer
	Rank           int      `json:"rank"`
	Badge          Badge    `json:"badge,omitempty"`
	Recommendation string   `json:"recommendation"`
	Pros           []string `json:"pros"`
	Cons           []string `json:"cons"`
}

// Package domain defines the core business entities and types for the
// Lendora loan offer auction platform.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Types & constants
// ──────────────────────────────────────────────────────────────────────────────

// AuctionStatus represents the lifecycle state of an auction.
type AuctionStatus string

const (
	AuctionPending   AuctionStatus = "pending"   // created, fan-out not yet started
	AuctionActive    AuctionStatus = "active"    // collecting partner offers
	AuctionCompleted AuctionStatus = "completed" // winner selected, analytics frozen
	AuctionCancelled AuctionStatus = "cancelled" // voided by the borrower or an operator
	AuctionExpired   AuctionStatus = "expired"   // aborted by an unrecoverable processing error
)

// IsTerminal returns true once the auction can no longer transition.
func (s AuctionStatus) IsTerminal() bool {
	return s == AuctionCompleted || s == AuctionCancelled || s == AuctionExpired
}

// PriorityMode selects which scoring dimension carries the heaviest weight
// when ranking offers.
type PriorityMode string

const (
	PriorityLowestRate       PriorityMode = "lowest_rate"
	PriorityFastestDisbursal PriorityMode = "fastest_disbursal"
	PriorityFlexibleTerms    PriorityMode = "flexible_terms"
	PriorityHighestApproval  PriorityMode = "highest_approval_chance"
)

// Urgency expresses how quickly the borrower needs the funds.
type Urgency string

const (
	UrgencySameDay   Urgency = "same_day"
	UrgencyThreeDays Urgency = "3_days"
	UrgencyFlexible  Urgency = "flexible"
)

// Default auction policy values, applied by the coordinator when the caller
// leaves the corresponding option unset.
const (
	DefaultTimeoutMinutes    = 15
	DefaultMinOffersRequired = 2
)

// ──────────────────────────────────────────────────────────────────────────────
// Ranking context
// ──────────────────────────────────────────────────────────────────────────────

// BusinessProfile carries the borrower attributes that influence approval
// probability scoring. All fields are optional.
type BusinessProfile struct {
	CreditScore     *int `json:"credit_score,omitempty"`
	YearsInBusiness *int `json:"years_in_business,omitempty"`
}

// RankingContext is the user-selected lens through which collected offers
// are scored and ordered.
type RankingContext struct {
	Prioritize PriorityMode     `json:"prioritize"`
	Urgency    Urgency          `json:"urgency"`
	Profile    *BusinessProfile `json:"business_profile,omitempty"`
}

// WithDefaults returns a copy with unset fields replaced by the platform
// defaults (lowest_rate, flexible).
func (rc RankingContext) WithDefaults() RankingContext {
	if rc.Prioritize == "" {
		rc.Prioritize = PriorityLowestRate
	}
	if rc.Urgency == "" {
		rc.Urgency = UrgencyFlexible
	}
	return rc
}

// ──────────────────────────────────────────────────────────────────────────────
// Partner offer records
// ──────────────────────────────────────────────────────────────────────────────

// PartnerOfferRecord captures the outcome of one partner's participation:
// either the first offer it returned or the error that ended its attempt.
// Records are append-only while the auction is active.
type PartnerOfferRecord struct {
	PartnerID      string    `json:"partner_id"`
	PartnerName    string    `json:"partner_name"`
	Offer          *RawOffer `json:"offer,omitempty"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	ReceivedAt     time.Time `json:"received_at"`
	ResponseTimeMs int64     `json:"response_time_ms"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Winner & analytics summaries (persisted at completion, never recomputed)
// ──────────────────────────────────────────────────────────────────────────────

// WinningOfferDetails is the denormalized record of the selected offer.
type WinningOfferDetails struct {
	PartnerID          string          `json:"partner_id"`
	PartnerName        string          `json:"partner_name"`
	EffectiveAPR       decimal.Decimal `json:"effective_apr"`
	MonthlyInstallment decimal.Decimal `json:"monthly_installment"`
	TotalCost          decimal.Decimal `json:"total_cost"`
	OverallScore       float64         `json:"overall_score"`
	Savings            decimal.Decimal `json:"savings"`
	SavingsPercentage  decimal.Decimal `json:"savings_percentage"`
	SelectionReason    string          `json:"selection_reason"`
}

// AuctionAnalytics is the derived summary computed exactly once at completion.
type AuctionAnalytics struct {
	PartnersInvited       int             `json:"partners_invited"`
	OffersReceived        int             `json:"offers_received"`
	ParticipationRate     decimal.Decimal `json:"participation_rate"` // %
	FastestPartner        string          `json:"fastest_partner"`
	SlowestPartner        string          `json:"slowest_partner"`
	AverageResponseTimeMs int64           `json:"average_response_time_ms"`
	BestRate              decimal.Decimal `json:"best_rate"`
	WorstRate             decimal.Decimal `json:"worst_rate"`
	AverageRate           decimal.Decimal `json:"average_rate"`
	RateSpread            decimal.Decimal `json:"rate_spread"`
	DurationMs            int64           `json:"duration_ms"`
}

// AuctionMetadata carries optional policy flags and processing diagnostics.
type AuctionMetadata struct {
	AutoComplete           bool   `json:"auto_complete"`
	EarlyTerminationOffers int    `json:"early_termination_offers,omitempty"` // 0 = disabled
	ProcessingError        string `json:"processing_error,omitempty"`
	CancelledBy            string `json:"cancelled_by,omitempty"`
	CancellationReason     string `json:"cancellation_reason,omitempty"`
}

// ──────────────────────────────────────────────────────────────────────────────
// Auction
// ──────────────────────────────────────────────────────────────────────────────

// Auction is the aggregate root for one competitive bidding round. It is
// mutated only by the coordinator and becomes immutable once terminal.
type Auction struct {
	ID            uuid.UUID            `json:"id"`
	ApplicationID uuid.UUID            `json:"application_id"`
	TenantID      string               `json:"tenant_id"`
	UserID        string               `json:"user_id"`
	PartnerIDs    []string             `json:"partner_ids"` // invitation set, fixed at creation
	Status        AuctionStatus        `json:"status"`
	Offers        []PartnerOfferRecord `json:"offers"`
	WinningOffer  *WinningOfferDetails `json:"winning_offer,omitempty"`
	Analytics     *AuctionAnalytics    `json:"analytics,omitempty"`

	TimeoutMinutes    int             `json:"timeout_minutes"`
	MinOffersRequired int             `json:"min_offers_required"`
	RankingContext    RankingContext  `json:"ranking_context"`
	Metadata          AuctionMetadata `json:"metadata"`

	StartedAt   time.Time  `json:"started_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsFinal returns true when no further transition is permitted.
func (a *Auction) IsFinal() bool {
	return a.Status.IsTerminal()
}

// CanCancel reports whether the auction may still be cancelled.
func (a *Auction) CanCancel() bool {
	return a.Status == AuctionPending || a.Status == AuctionActive
}

// HasTimedOut reports whether the collection deadline has passed at the
// given instant.
func (a *Auction) HasTimedOut(now time.Time) bool {
	return !now.Before(a.ExpiresAt)
}

// RemainingTime returns the time left until the deadline, floored at zero.
func (a *Auction) RemainingTime(now time.Time) time.Duration {
	remaining := a.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SuccessfulOffers returns only the records that carry an offer payload.
func (a *Auction) SuccessfulOffers() []PartnerOfferRecord {
	out := make([]PartnerOfferRecord, 0, len(a.Offers))
	for _, rec := range a.Offers {
		if rec.Success && rec.Offer != nil {
			out = append(out, rec)
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionResult — response snapshot returned by coordinator operations
// ──────────────────────────────────────────────────────────────────────────────

// AuctionResult is the read model handed back to API callers. Before
// completion it reflects the in-flight state; afterwards it carries the
// frozen winner and analytics.
type AuctionResult struct {
	AuctionID       uuid.UUID            `json:"auction_id"`
	ApplicationID   uuid.UUID            `json:"application_id"`
	Status          AuctionStatus        `json:"status"`
	PartnersInvited int                  `json:"partners_invited"`
	OffersReceived  int                  `json:"offers_received"`
	ExpiresAt       time.Time            `json:"expires_at"`
	Winner          *WinningOfferDetails `json:"winner,omitempty"`
	Analytics       *AuctionAnalytics    `json:"analytics,omitempty"`
}

// ToResult builds the result snapshot for the auction's current state.
func (a *Auction) ToResult() *AuctionResult {
	return &AuctionResult{
		AuctionID:       a.ID,
		ApplicationID:   a.ApplicationID,
		Status:          a.Status,
		PartnersInvited: len(a.PartnerIDs),
		OffersReceived:  len(a.Offers),
		ExpiresAt:       a.ExpiresAt,
		Winner:          a.WinningOffer,
		Analytics:       a.Analytics,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionStatusResponse — live read-only projection
// ──────────────────────────────────────────────────────────────────────────────

// CurrentLeader identifies the rank-1 provider of a non-persisted interim
// ranking, reported while the auction is still collecting offers.
type CurrentLeader struct {
	PartnerID    string          `json:"partner_id"`
	PartnerName  string          `json:"partner_name"`
	EffectiveAPR decimal.Decimal `json:"effective_apr"`
	OverallScore float64         `json:"overall_score"`
}

// AuctionStatusResponse is returned by GetAuctionStatus.
type AuctionStatusResponse struct {
	AuctionID        uuid.UUID      `json:"auction_id"`
	Status           AuctionStatus  `json:"status"`
	PartnersInvited  int            `json:"partners_invited"`
	OffersReceived   int            `json:"offers_received"`
	RemainingSeconds int64          `json:"remaining_seconds"`
	CurrentLeader    *CurrentLeader `json:"current_leader,omitempty"`
}

// Package normalizer converts provider-specific loan offers into the
// canonical StandardOffer form so heterogeneous pricing structures become
// directly comparable.
package normalizer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/lendora/auction/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Normalizer
// ──────────────────────────────────────────────────────────────────────────────

// Normalizer is a stateless transformation with one injected collaborator:
// the per-partner reputation source.
type Normalizer struct {
	reputation ReputationSource
}

// New creates a Normalizer. A nil reputation source falls back to the seeded
// static table.
func New(reputation ReputationSource) *Normalizer {
	if reputation == nil {
		reputation = DefaultReputation()
	}
	return &Normalizer{reputation: reputation}
}

// NormalizeOffer converts one raw provider offer into a StandardOffer.
// Deterministic and side-effect-free apart from the reputation lookup.
func (n *Normalizer) NormalizeOffer(raw *domain.RawOffer, partnerID, partnerName string) (*domain.StandardOffer, error) {
	if raw == nil {
		return nil, fmt.Errorf("normalizer.NormalizeOffer %s: nil offer", partnerID)
	}
	if raw.TenureMonths <= 0 {
		return nil, fmt.Errorf("normalizer.NormalizeOffer %s: %w", partnerID, domain.ErrInvalidTenure)
	}
	if !raw.Amount.IsPositive() {
		return nil, fmt.Errorf("normalizer.NormalizeOffer %s: %w", partnerID, domain.ErrInvalidPrincipal)
	}

	principal := raw.Amount
	fee := raw.ProcessingFee
	tenure := raw.TenureMonths

	netDisbursed := principal.Sub(fee)
	if !netDisbursed.IsPositive() {
		return nil, fmt.Errorf("normalizer.NormalizeOffer %s: %w", partnerID, domain.ErrFeeExceedsPrincipal)
	}

	installment := amortizedInstallment(principal, raw.InterestRate, tenure)

	// Providers either quote an all-in total repayment or only a nominal
	// rate; in the latter case the repayment is derived from the amortized
	// installment schedule.
	var totalRepayment decimal.Decimal
	if raw.TotalRepayment != nil {
		totalRepayment = *raw.TotalRepayment
	} else {
		totalRepayment = installment.Mul(decimal.NewFromInt(int64(tenure)))
	}

	effectiveAPR := annualizedEffectiveRate(totalRepayment, netDisbursed, tenure)
	totalInterest := totalRepayment.Sub(principal)
	totalCost := principal.Add(totalInterest).Add(fee)

	return &domain.StandardOffer{
		PartnerID:          partnerID,
		PartnerName:        partnerName,
		PrincipalAmount:    principal,
		TenureMonths:       tenure,
		NominalAPR:         raw.InterestRate,
		EffectiveAPR:       effectiveAPR,
		ProcessingFee:      fee,
		TotalInterest:      totalInterest,
		TotalCost:          totalCost,
		MonthlyInstallment: installment,
		DisbursalSpeedDays: ParseDisbursalDays(raw.DisbursalTime),
		FlexibilityScore:   FlexibilityScore(raw.Conditions),
		ReputationScore:    n.reputation.Score(partnerID),
		Raw:                raw,
	}, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Batch normalization
// ──────────────────────────────────────────────────────────────────────────────

// BatchItem pairs one raw offer with the partner that produced it.
type BatchItem struct {
	PartnerID   string
	PartnerName string
	Raw         *domain.RawOffer
}

// NormalizationError reports a single offer that could not be normalized,
// keyed by the partner it came from.
type NormalizationError struct {
	PartnerID string
	Err       error
}

// Error implements the error interface.
func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize offer from %s: %v", e.PartnerID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *NormalizationError) Unwrap() error { return e.Err }

// NormalizeOffers normalizes a batch concurrently. A single offer's failure
// does not fail the batch: successes are returned in batch order alongside
// one NormalizationError per failed offer.
func (n *Normalizer) NormalizeOffers(batch []BatchItem) ([]domain.StandardOffer, []*NormalizationError) {
	offers := make([]*domain.StandardOffer, len(batch))
	errs := make([]*NormalizationError, len(batch))

	var wg sync.WaitGroup
	for i, item := range batch {
		wg.Add(1)
		go func(i int, item BatchItem) {
			defer wg.Done()
			offer, err := n.NormalizeOffer(item.Raw, item.PartnerID, item.PartnerName)
			if err != nil {
				errs[i] = &NormalizationError{PartnerID: item.PartnerID, Err: err}
				return
			}
			offers[i] = offer
		}(i, item)
	}
	wg.Wait()

	out := make([]domain.StandardOffer, 0, len(batch))
	var failed []*NormalizationError
	for i := range batch {
		if errs[i] != nil {
			failed = append(failed, errs[i])
			continue
		}
		out = append(out, *offers[i])
	}
	return out, failed
}

// ──────────────────────────────────────────────────────────────────────────────
// Rate & installment math
// ──────────────────────────────────────────────────────────────────────────────

var twelve = decimal.NewFromInt(12)
var hundred = decimal.NewFromInt(100)

// amortizedInstallment computes the fixed monthly payment under the standard
// reducing-balance annuity formula:
//
//	installment = P·r·(1+r)^n / ((1+r)^n − 1)
//
// where r is the monthly rate and n the tenure in months. A zero rate
// degenerates to P / n.
func amortizedInstallment(principal, annualRatePct decimal.Decimal, tenureMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(tenureMonths))
	if annualRatePct.IsZero() {
		return principal.Div(months).Round(2)
	}

	r := annualRatePct.Div(hundred).Div(twelve)
	one := decimal.NewFromInt(1)
	compound := one.Add(r).Pow(months) // (1+r)^n

	return principal.Mul(r).Mul(compound).Div(compound.Sub(one)).Round(2)
}

// annualizedEffectiveRate computes the true yearly cost of the loan against
// the net disbursed amount (principal minus processing fee):
//
//	effectiveAPR = (totalRepayment − netDisbursed) / netDisbursed / n × 12 × 100
//
// rounded to 2 decimals.
func annualizedEffectiveRate(totalRepayment, netDisbursed decimal.Decimal, tenureMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(tenureMonths))
	return totalRepayment.Sub(netDisbursed).
		Div(netDisbursed).
		Div(months).
		Mul(twelve).
		Mul(hundred).
		Round(2)
}

// ──────────────────────────────────────────────────────────────────────────────
// Disbursal-speed quantification
// ──────────────────────────────────────────────────────────────────────────────

// defaultDisbursalDays is assumed when a provider's free-text duration cannot
// be recognized.
const defaultDisbursalDays = 2.0

var (
	hoursRe    = regexp.MustCompile(`(\d+)\s*hours?`)
	dayRangeRe = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*days?`)
	daysRe     = regexp.MustCompile(`(\d+)\s*days?`)
)

// ParseDisbursalDays converts a provider's free-text disbursal duration into
// days. Recognized forms (case-insensitive): "same day"/"instant" → 0.5,
// "N hours" → N/24, "A-B days" → (A+B)/2, "N days" → N. Anything else falls
// back to 2.0 days.
func ParseDisbursalDays(text string) float64 {
	s := strings.ToLower(strings.TrimSpace(text))
	if s == "" {
		return defaultDisbursalDays
	}

	if strings.Contains(s, "same day") || strings.Contains(s, "instant") {
		return 0.5
	}
	if m := hoursRe.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		return float64(h) / 24
	}
	if m := dayRangeRe.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return float64(lo+hi) / 2
	}
	if m := daysRe.FindStringSubmatch(s); m != nil {
		d, _ := strconv.Atoi(m[1])
		return float64(d)
	}
	return defaultDisbursalDays
}

// ──────────────────────────────────────────────────────────────────────────────
// Flexibility scoring
// ──────────────────────────────────────────────────────────────────────────────

// flexibilityBonus maps condition keywords to additive score bonuses. Each
// row is awarded at most once.
var flexibilityBonus = []struct {
	keywords []string
	bonus    float64
}{
	{[]string{"prepayment"}, 20},
	{[]string{"no penalty", "no charge"}, 10},
	{[]string{"flexible", "revolving"}, 15},
	{[]string{"holiday", "moratorium"}, 10},
	{[]string{"partial", "top-up"}, 5},
}

// FlexibilityScore derives a 0–100 score from the offer's free-text
// conditions: base 50 plus keyword bonuses, capped at 100.
func FlexibilityScore(conditions []string) float64 {
	joined := strings.ToLower(strings.Join(conditions, " "))
	score := 50.0
	for _, row := range flexibilityBonus {
		for _, kw := range row.keywords {
			if strings.Contains(joined, kw) {
				score += row.bonus
				break
			}
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}

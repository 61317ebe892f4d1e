package ranker

import (
	"fmt"

	"github.com/lendora/auction/internal/domain"
	"github.com/shopspring/decimal"
)

// Narrative thresholds. A component at or above its "strong" threshold earns
// a pro bullet; below its "weak" threshold it earns a con bullet.
const (
	strongComponent   = 75.0
	strongReliability = 80.0
	weakComponent     = 50.0
	weakApproval      = 60.0
	excellentOverall  = 80.0
)

// highFeeRatio flags a processing fee above 3% of principal as a drawback.
var highFeeRatio = decimal.NewFromFloat(0.03)

// ──────────────────────────────────────────────────────────────────────────────
// Recommendation text
// ──────────────────────────────────────────────────────────────────────────────

// buildRecommendation produces the one-sentence rationale shown next to the
// offer. Threshold-driven: an excellent overall score gets a strong message
// citing rate and speed, otherwise the active priority mode picks a focused
// message when its component is strong, else a generic summary.
func buildRecommendation(so domain.ScoredOffer, rc domain.RankingContext) string {
	rate := so.EffectiveAPR.StringFixed(2)
	speed := humanizeDays(so.DisbursalSpeedDays)

	if so.OverallScore >= excellentOverall {
		return fmt.Sprintf(
			"An excellent choice from %s: %s%% effective rate with disbursal in %s.",
			so.PartnerName, rate, speed)
	}

	switch rc.Prioritize {
	case domain.PriorityLowestRate:
		if so.Scores.Cost >= strongComponent {
			return fmt.Sprintf("%s offers one of the most competitive rates at %s%% effective.", so.PartnerName, rate)
		}
	case domain.PriorityFastestDisbursal:
		if so.Scores.Speed >= strongComponent {
			return fmt.Sprintf("%s stands out on speed: funds available in %s.", so.PartnerName, speed)
		}
	case domain.PriorityFlexibleTerms:
		if so.Scores.Flexibility >= strongComponent {
			return fmt.Sprintf("%s offers notably flexible repayment terms for this loan.", so.PartnerName)
		}
	case domain.PriorityHighestApproval:
		if so.Scores.ApprovalProbability >= strongComponent {
			return fmt.Sprintf("%s has a strong approval likelihood for your profile.", so.PartnerName)
		}
	}

	return fmt.Sprintf(
		"%s offers %s%% effective rate over %d months with disbursal in %s.",
		so.PartnerName, rate, so.TenureMonths, speed)
}

// ──────────────────────────────────────────────────────────────────────────────
// Pros / cons bullets
// ──────────────────────────────────────────────────────────────────────────────

func buildPros(so domain.ScoredOffer) []string {
	var pros []string
	if so.Scores.Cost >= strongComponent {
		pros = append(pros, fmt.Sprintf("Competitive effective rate of %s%%", so.EffectiveAPR.StringFixed(2)))
	}
	if so.Scores.Speed >= strongComponent {
		pros = append(pros, fmt.Sprintf("Quick disbursal in %s", humanizeDays(so.DisbursalSpeedDays)))
	}
	if so.Scores.Reliability >= strongReliability {
		pros = append(pros, "Well-established lender with a strong track record")
	}
	if so.Scores.Flexibility >= strongComponent {
		pros = append(pros, "Flexible repayment terms")
	}
	if so.MonthlyInstallment.IsPositive() {
		pros = append(pros, fmt.Sprintf("Predictable monthly installment of %s", so.MonthlyInstallment.StringFixed(2)))
	}
	if len(pros) == 0 {
		pros = append(pros, "Standard terms for this loan segment")
	}
	return pros
}

func buildCons(so domain.ScoredOffer) []string {
	var cons []string
	if so.Scores.Cost < weakComponent {
		cons = append(cons, fmt.Sprintf("Higher effective rate (%s%%) than comparable offers", so.EffectiveAPR.StringFixed(2)))
	}
	if so.Scores.Speed < weakComponent {
		cons = append(cons, "Slower disbursal than alternatives")
	}
	if so.Scores.Flexibility < weakComponent {
		cons = append(cons, "Limited repayment flexibility")
	}
	if so.Scores.ApprovalProbability < weakApproval {
		cons = append(cons, "Lower approval likelihood for your profile")
	}
	if so.PrincipalAmount.IsPositive() &&
		so.ProcessingFee.GreaterThan(so.PrincipalAmount.Mul(highFeeRatio)) {
		pct := so.ProcessingFee.Div(so.PrincipalAmount).Mul(decimal.NewFromInt(100))
		cons = append(cons, fmt.Sprintf("High processing fee (%s%% of loan amount)", pct.StringFixed(1)))
	}
	if len(cons) == 0 {
		cons = append(cons, "No significant drawbacks identified")
	}
	return cons
}

// humanizeDays renders a day count the way borrowers read it.
func humanizeDays(days float64) string {
	switch {
	case days <= 0.5:
		return "the same day"
	case days < 1:
		return fmt.Sprintf("about %d hours", int(days*24))
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("about %.0f days", days)
	}
}

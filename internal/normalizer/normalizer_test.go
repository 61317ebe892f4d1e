package normalizer_test

import (
	"errors"
	"testing"

	"github.com/lendora/auction/internal/domain"
	"github.com/lendora/auction/internal/normalizer"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// TestNormalizeOfferDerivedRepayment validates the amortized installment and
// effective APR when the provider quotes only a nominal rate.
//
//	Scenario: P = 100 000, nominal 12% p.a., 12 months, no fee.
//	  monthly rate r   = 0.01
//	  (1+r)^12         ≈ 1.12682503
//	  installment      = 100000·0.01·1.12682503 / 0.12682503 ≈ 8884.88
//	  total repayment  = 8884.88 × 12 = 106618.56
//	  effective APR    = 6618.56 / 100000 / 12 × 12 × 100 = 6.62
func TestNormalizeOfferDerivedRepayment(t *testing.T) {
	n := normalizer.New(nil)
	raw := &domain.RawOffer{
		Amount:       dec("100000"),
		TenureMonths: 12,
		InterestRate: dec("12"),
	}

	offer, err := n.NormalizeOffer(raw, "apex-capital", "Apex Capital")
	if err != nil {
		t.Fatalf("NormalizeOffer: %v", err)
	}

	if want := dec("8884.88"); !offer.MonthlyInstallment.Equal(want) {
		t.Errorf("installment = %s, want %s", offer.MonthlyInstallment, want)
	}
	if want := dec("6.62"); !offer.EffectiveAPR.Equal(want) {
		t.Errorf("effective APR = %s, want %s", offer.EffectiveAPR, want)
	}
	if want := dec("6618.56"); !offer.TotalInterest.Equal(want) {
		t.Errorf("total interest = %s, want %s", offer.TotalInterest, want)
	}
	if want := dec("106618.56"); !offer.TotalCost.Equal(want) {
		t.Errorf("total cost = %s, want %s", offer.TotalCost, want)
	}
	if offer.ReputationScore != 85 {
		t.Errorf("reputation = %v, want 85 for apex-capital", offer.ReputationScore)
	}
}

// TestNormalizeOfferQuotedRepayment validates the fee-adjusted effective APR
// when the provider quotes an all-in total repayment.
//
//	Scenario: P = 500 000, fee = 10 000, 24 months, quoted repayment 560 000.
//	  net disbursed  = 490 000
//	  effective APR  = 70000 / 490000 / 24 × 12 × 100 ≈ 7.14
func TestNormalizeOfferQuotedRepayment(t *testing.T) {
	n := normalizer.New(nil)
	repayment := dec("560000")
	raw := &domain.RawOffer{
		Amount:         dec("500000"),
		TenureMonths:   24,
		InterestRate:   dec("16"),
		ProcessingFee:  dec("10000"),
		TotalRepayment: &repayment,
	}

	offer, err := n.NormalizeOffer(raw, "meridian-credit", "Meridian Credit")
	if err != nil {
		t.Fatalf("NormalizeOffer: %v", err)
	}

	if want := dec("7.14"); !offer.EffectiveAPR.Equal(want) {
		t.Errorf("effective APR = %s, want %s", offer.EffectiveAPR, want)
	}
	if want := dec("60000"); !offer.TotalInterest.Equal(want) {
		t.Errorf("total interest = %s, want %s", offer.TotalInterest, want)
	}
	// total cost = principal + interest + fee
	if want := dec("570000"); !offer.TotalCost.Equal(want) {
		t.Errorf("total cost = %s, want %s", offer.TotalCost, want)
	}
	if offer.ReputationScore != 78 {
		t.Errorf("reputation = %v, want 78 for meridian-credit", offer.ReputationScore)
	}
}

// TestNormalizeOfferZeroRate checks the P/n degenerate installment.
func TestNormalizeOfferZeroRate(t *testing.T) {
	n := normalizer.New(nil)
	raw := &domain.RawOffer{
		Amount:       dec("120000"),
		TenureMonths: 12,
		InterestRate: decimal.Zero,
	}

	offer, err := n.NormalizeOffer(raw, "unknown-bank", "Unknown Bank")
	if err != nil {
		t.Fatalf("NormalizeOffer: %v", err)
	}
	if want := dec("10000"); !offer.MonthlyInstallment.Equal(want) {
		t.Errorf("installment = %s, want %s", offer.MonthlyInstallment, want)
	}
	if !offer.EffectiveAPR.IsZero() {
		t.Errorf("effective APR = %s, want 0", offer.EffectiveAPR)
	}
	if offer.ReputationScore != 70 {
		t.Errorf("reputation = %v, want default 70 for unknown partner", offer.ReputationScore)
	}
}

func TestNormalizeOfferValidation(t *testing.T) {
	n := normalizer.New(nil)

	cases := []struct {
		name string
		raw  *domain.RawOffer
		want error
	}{
		{"nil offer", nil, nil},
		{"zero tenure", &domain.RawOffer{Amount: dec("1000"), TenureMonths: 0}, domain.ErrInvalidTenure},
		{"zero principal", &domain.RawOffer{Amount: decimal.Zero, TenureMonths: 12}, domain.ErrInvalidPrincipal},
		{"fee eats principal", &domain.RawOffer{
			Amount: dec("1000"), TenureMonths: 12, ProcessingFee: dec("1000"),
		}, domain.ErrFeeExceedsPrincipal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := n.NormalizeOffer(tc.raw, "p1", "P1")
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Errorf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseDisbursalDays(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"Same Day", 0.5},
		{"instant transfer", 0.5},
		{"24 hours", 1.0},
		{"48 Hours", 2.0},
		{"2-3 days", 2.5},
		{"2 - 3 days", 2.5},
		{"5 days", 5},
		{"1 day", 1},
		{"", 2.0},
		{"next week", 2.0},
	}
	for _, tc := range cases {
		if got := normalizer.ParseDisbursalDays(tc.text); got != tc.want {
			t.Errorf("ParseDisbursalDays(%q) = %v, want %v", tc.text, got, tc.want)
		}
	}
}

func TestFlexibilityScore(t *testing.T) {
	cases := []struct {
		name       string
		conditions []string
		want       float64
	}{
		{"no conditions", nil, 50},
		{"prepayment only", []string{"Free prepayment allowed"}, 70},
		{"no penalty", []string{"Early exit with no penalty"}, 60},
		{"bonus awarded once per row", []string{"no penalty and no charge either"}, 60},
		{"everything, capped", []string{
			"prepayment with no penalty",
			"flexible repayment holiday",
			"partial top-up available",
		}, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := normalizer.FlexibilityScore(tc.conditions); got != tc.want {
				t.Errorf("FlexibilityScore = %v, want %v", got, tc.want)
			}
		})
	}
}

// TestNormalizeOffersBatchIsolation checks that one bad offer does not fail
// the batch and that successes keep their input order.
func TestNormalizeOffersBatchIsolation(t *testing.T) {
	n := normalizer.New(nil)
	batch := []normalizer.BatchItem{
		{PartnerID: "a", PartnerName: "A", Raw: &domain.RawOffer{
			Amount: dec("100000"), TenureMonths: 12, InterestRate: dec("12"),
		}},
		{PartnerID: "b", PartnerName: "B", Raw: &domain.RawOffer{
			Amount: dec("100000"), TenureMonths: 0, // invalid
		}},
		{PartnerID: "c", PartnerName: "C", Raw: &domain.RawOffer{
			Amount: dec("200000"), TenureMonths: 6, InterestRate: dec("10"),
		}},
	}

	offers, errs := n.NormalizeOffers(batch)
	if len(offers) != 2 {
		t.Fatalf("got %d offers, want 2", len(offers))
	}
	if offers[0].PartnerID != "a" || offers[1].PartnerID != "c" {
		t.Errorf("batch order not preserved: %s, %s", offers[0].PartnerID, offers[1].PartnerID)
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].PartnerID != "b" {
		t.Errorf("error partner = %s, want b", errs[0].PartnerID)
	}
	if !errors.Is(errs[0], domain.ErrInvalidTenure) {
		t.Errorf("error cause = %v, want ErrInvalidTenure", errs[0].Err)
	}
}

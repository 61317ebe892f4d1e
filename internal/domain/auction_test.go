package domain_test

import (
	"testing"
	"time"

	"github.com/lendora/auction/internal/domain"
	"github.com/shopspring/decimal"
)

func TestAuctionStatusTerminality(t *testing.T) {
	cases := []struct {
		status   domain.AuctionStatus
		terminal bool
	}{
		{domain.AuctionPending, false},
		{domain.AuctionActive, false},
		{domain.AuctionCompleted, true},
		{domain.AuctionCancelled, true},
		{domain.AuctionExpired, true},
	}
	for _, tc := range cases {
		if got := tc.status.IsTerminal(); got != tc.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tc.status, got, tc.terminal)
		}
	}
}

func TestAuctionCanCancel(t *testing.T) {
	for _, status := range []domain.AuctionStatus{domain.AuctionPending, domain.AuctionActive} {
		a := &domain.Auction{Status: status}
		if !a.CanCancel() {
			t.Errorf("%s auction should be cancellable", status)
		}
	}
	for _, status := range []domain.AuctionStatus{domain.AuctionCompleted, domain.AuctionCancelled, domain.AuctionExpired} {
		a := &domain.Auction{Status: status}
		if a.CanCancel() {
			t.Errorf("%s auction should not be cancellable", status)
		}
	}
}

func TestAuctionDeadlineHelpers(t *testing.T) {
	now := time.Now().UTC()
	a := &domain.Auction{ExpiresAt: now.Add(time.Minute)}

	if a.HasTimedOut(now) {
		t.Error("auction should not be timed out before the deadline")
	}
	if !a.HasTimedOut(now.Add(time.Minute)) {
		t.Error("auction should be timed out exactly at the deadline")
	}
	if got := a.RemainingTime(now); got != time.Minute {
		t.Errorf("remaining = %s, want 1m", got)
	}
	if got := a.RemainingTime(now.Add(2 * time.Minute)); got != 0 {
		t.Errorf("remaining past deadline = %s, want 0", got)
	}
}

func TestSuccessfulOffersFiltersFailures(t *testing.T) {
	raw := &domain.RawOffer{Amount: decimal.NewFromInt(1000), TenureMonths: 12}
	a := &domain.Auction{
		Offers: []domain.PartnerOfferRecord{
			{PartnerID: "ok", Success: true, Offer: raw},
			{PartnerID: "failed", Success: false, Error: "timeout"},
			{PartnerID: "empty", Success: true}, // success flag without payload
		},
	}

	got := a.SuccessfulOffers()
	if len(got) != 1 || got[0].PartnerID != "ok" {
		t.Errorf("SuccessfulOffers = %+v, want only the record with a payload", got)
	}
}

func TestRankingContextDefaults(t *testing.T) {
	rc := domain.RankingContext{}.WithDefaults()
	if rc.Prioritize != domain.PriorityLowestRate {
		t.Errorf("default priority = %s, want lowest_rate", rc.Prioritize)
	}
	if rc.Urgency != domain.UrgencyFlexible {
		t.Errorf("default urgency = %s, want flexible", rc.Urgency)
	}

	set := domain.RankingContext{
		Prioritize: domain.PriorityFastestDisbursal,
		Urgency:    domain.UrgencySameDay,
	}.WithDefaults()
	if set.Prioritize != domain.PriorityFastestDisbursal || set.Urgency != domain.UrgencySameDay {
		t.Errorf("WithDefaults overwrote explicit values: %+v", set)
	}
}

func TestApplicationProfile(t *testing.T) {
	app := &domain.Application{}
	if app.Profile() != nil {
		t.Error("profile should be nil when no attributes are known")
	}

	cs := 720
	app.CreditScore = &cs
	p := app.Profile()
	if p == nil || p.CreditScore == nil || *p.CreditScore != 720 {
		t.Errorf("profile = %+v, want credit score 720", p)
	}
}

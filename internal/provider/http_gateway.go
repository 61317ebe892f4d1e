// Package provider implements offer retrieval from partner lenders over
// their REST endpoints.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/lendora/auction/internal/domain"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// HTTPGateway
// ──────────────────────────────────────────────────────────────────────────────

// HTTPGateway calls each partner's offer endpoint. One gateway instance is
// shared across all partners; per-call isolation comes from the request
// context and the client timeout.
type HTTPGateway struct {
	client *http.Client
}

// NewHTTPGateway creates a gateway whose calls are bounded by timeout.
func NewHTTPGateway(timeout time.Duration) *HTTPGateway {
	return &HTTPGateway{
		client: &http.Client{Timeout: timeout},
	}
}

// offerRequest is the wire form of the quote request sent to partners.
//
//	POST <partner endpoint>/offers
//	{"request_id":"...","amount":"500000","tenure_months":24,...}
type offerRequest struct {
	RequestID    string          `json:"request_id"`
	Amount       decimal.Decimal `json:"amount"`
	TenureMonths int             `json:"tenure_months"`
	Purpose      string          `json:"purpose,omitempty"`
	BusinessName string          `json:"business_name,omitempty"`
}

// offerResponse is the wire form partners reply with.
type offerResponse struct {
	Offers []domain.RawOffer `json:"offers"`
}

// RequestOffers fetches quotes from one partner for the given application.
// Implements auction.ProviderGateway.
func (g *HTTPGateway) RequestOffers(ctx context.Context, partner domain.Partner, app *domain.Application) ([]domain.RawOffer, error) {
	payload := offerRequest{
		RequestID:    uuid.NewString(),
		Amount:       app.LoanAmount,
		TenureMonths: app.TenureMonths,
		Purpose:      app.Purpose,
		BusinessName: app.BusinessName,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("provider %s: marshal request: %w", partner.ID, err)
	}

	url := partner.EndpointURL + "/offers"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("provider %s: build request: %w", partner.ID, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "lendora-auction/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("provider %s: http post: %w", partner.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider %s: unexpected status %d", partner.ID, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("provider %s: read body: %w", partner.ID, err)
	}

	var parsed offerResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("provider %s: parse response: %w", partner.ID, err)
	}
	return parsed.Offers, nil
}

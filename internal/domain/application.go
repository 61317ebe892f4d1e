package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ──────────────────────────────────────────────────────────────────────────────
// Application
// ──────────────────────────────────────────────────────────────────────────────

// ApplicationStatus tracks a financing request through its lifecycle.
type ApplicationStatus string

const (
	ApplicationDraft     ApplicationStatus = "draft"
	ApplicationSubmitted ApplicationStatus = "submitted"
	ApplicationInAuction ApplicationStatus = "in_auction"
	ApplicationFunded    ApplicationStatus = "funded"
	ApplicationRejected  ApplicationStatus = "rejected"
)

// Application is a borrower's financing request — the subject of an auction.
type Application struct {
	ID              uuid.UUID         `json:"id"                db:"id"`
	TenantID        string            `json:"tenant_id"         db:"tenant_id"`
	UserID          string            `json:"user_id"           db:"user_id"`
	BusinessName    string            `json:"business_name"     db:"business_name"`
	LoanAmount      decimal.Decimal   `json:"loan_amount"       db:"loan_amount"`
	TenureMonths    int               `json:"tenure_months"     db:"tenure_months"`
	Purpose         string            `json:"purpose"           db:"purpose"`
	CreditScore     *int              `json:"credit_score"      db:"credit_score"`
	YearsInBusiness *int              `json:"years_in_business" db:"years_in_business"`
	Status          ApplicationStatus `json:"status"            db:"status"`
	CreatedAt       time.Time         `json:"created_at"        db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"        db:"updated_at"`
}

// Profile derives the ranking BusinessProfile from the application fields.
// Returns nil when neither attribute is known.
func (a *Application) Profile() *BusinessProfile {
	if a.CreditScore == nil && a.YearsInBusiness == nil {
		return nil
	}
	return &BusinessProfile{
		CreditScore:     a.CreditScore,
		YearsInBusiness: a.YearsInBusiness,
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Partner
// ──────────────────────────────────────────────────────────────────────────────

// Partner is a registered offer provider (lender).
type Partner struct {
	ID          string    `json:"id"           db:"id"` // stable slug, e.g. "apex-capital"
	Name        string    `json:"name"         db:"name"`
	EndpointURL string    `json:"endpoint_url" db:"endpoint_url"`
	Active      bool      `json:"active"       db:"active"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
}

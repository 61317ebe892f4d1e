package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lendora/auction/internal/domain"
)

// ApplicationRepository handles database operations for financing
// applications. Implements auction.ApplicationLookup.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository creates a new ApplicationRepository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// Create inserts a new application row.
func (r *ApplicationRepository) Create(ctx context.Context, app *domain.Application) error {
	query := `
		INSERT INTO applications
			(id, tenant_id, user_id, business_name, loan_amount, tenure_months,
			 purpose, credit_score, years_in_business, status, created_at, updated_at)
		VALUES
			(:id, :tenant_id, :user_id, :business_name, :loan_amount, :tenure_months,
			 :purpose, :credit_score, :years_in_business, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, app); err != nil {
		return fmt.Errorf("application_repo.Create: %w", err)
	}
	return nil
}

// FindByID fetches an application by its primary key.
// Returns ErrApplicationNotFound when absent.
func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	err := r.db.GetContext(ctx, &app, `SELECT * FROM applications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrApplicationNotFound
		}
		return nil, fmt.Errorf("application_repo.FindByID: %w", err)
	}
	return &app, nil
}

// UpdateStatus moves the application through its own lifecycle (e.g. to
// in_auction when an auction starts).
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE applications SET status = $1, updated_at = now() WHERE id = $2`,
		string(status), id)
	if err != nil {
		return fmt.Errorf("application_repo.UpdateStatus: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrApplicationNotFound
	}
	return nil
}

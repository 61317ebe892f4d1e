package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lendora/auction/internal/domain"
)

// PartnerRepository handles database operations for the partner registry.
// Implements auction.PartnerDirectory.
type PartnerRepository struct {
	db *sqlx.DB
}

// NewPartnerRepository creates a new PartnerRepository.
func NewPartnerRepository(db *sqlx.DB) *PartnerRepository {
	return &PartnerRepository{db: db}
}

// ResolveLive returns the subset of the given partner ids that exist and are
// active, preserving the invitation order. Unknown or inactive ids are
// dropped silently; the coordinator enforces the minimum count.
func (r *PartnerRepository) ResolveLive(ctx context.Context, ids []string) ([]domain.Partner, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := sqlx.In(
		`SELECT * FROM partners WHERE id IN (?) AND active = true`, ids)
	if err != nil {
		return nil, fmt.Errorf("partner_repo.ResolveLive: build query: %w", err)
	}

	var partners []domain.Partner
	if err := r.db.SelectContext(ctx, &partners, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("partner_repo.ResolveLive: %w", err)
	}

	// Restore invitation order: IN (...) gives no ordering guarantee.
	byID := make(map[string]domain.Partner, len(partners))
	for _, p := range partners {
		byID[p.ID] = p
	}
	ordered := make([]domain.Partner, 0, len(partners))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			ordered = append(ordered, p)
		}
	}
	return ordered, nil
}

// List returns all registered partners.
func (r *PartnerRepository) List(ctx context.Context) ([]domain.Partner, error) {
	var partners []domain.Partner
	err := r.db.SelectContext(ctx, &partners, `SELECT * FROM partners ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("partner_repo.List: %w", err)
	}
	return partners, nil
}

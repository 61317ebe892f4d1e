// Package repository implements Postgres persistence for auctions,
// applications, and the partner registry using sqlx.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lendora/auction/internal/domain"
)

// AuctionRepository handles all database operations for auctions. It
// implements auction.Store: the record is replaced wholesale on every Save,
// so a terminal status, winner, and analytics always land together.
type AuctionRepository struct {
	db *sqlx.DB
}

// NewAuctionRepository creates a new AuctionRepository.
func NewAuctionRepository(db *sqlx.DB) *AuctionRepository {
	return &AuctionRepository{db: db}
}

// auctionRow mirrors the auctions table. Document-shaped fields (offer
// records, ranking context, winner, analytics) are stored as JSONB.
type auctionRow struct {
	ID                uuid.UUID       `db:"id"`
	ApplicationID     uuid.UUID       `db:"application_id"`
	TenantID          string          `db:"tenant_id"`
	UserID            string          `db:"user_id"`
	PartnerIDs        json.RawMessage `db:"partner_ids"`
	Status            string          `db:"status"`
	Offers            json.RawMessage `db:"offers"`
	WinningOffer      json.RawMessage `db:"winning_offer"`
	Analytics         json.RawMessage `db:"analytics"`
	TimeoutMinutes    int             `db:"timeout_minutes"`
	MinOffersRequired int             `db:"min_offers_required"`
	RankingContext    json.RawMessage `db:"ranking_context"`
	Metadata          json.RawMessage `db:"metadata"`
	StartedAt         time.Time       `db:"started_at"`
	ExpiresAt         time.Time       `db:"expires_at"`
	CompletedAt       *time.Time      `db:"completed_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

// Save upserts the full auction record in one statement.
func (r *AuctionRepository) Save(ctx context.Context, a *domain.Auction) error {
	row, err := toRow(a)
	if err != nil {
		return fmt.Errorf("auction_repo.Save: %w", err)
	}

	query := `
		INSERT INTO auctions
			(id, application_id, tenant_id, user_id, partner_ids, status, offers,
			 winning_offer, analytics, timeout_minutes, min_offers_required,
			 ranking_context, metadata, started_at, expires_at, completed_at,
			 created_at, updated_at)
		VALUES
			(:id, :application_id, :tenant_id, :user_id, :partner_ids, :status, :offers,
			 :winning_offer, :analytics, :timeout_minutes, :min_offers_required,
			 :ranking_context, :metadata, :started_at, :expires_at, :completed_at,
			 :created_at, :updated_at)
		ON CONFLICT (id) DO UPDATE SET
			status              = EXCLUDED.status,
			offers              = EXCLUDED.offers,
			winning_offer       = EXCLUDED.winning_offer,
			analytics           = EXCLUDED.analytics,
			ranking_context     = EXCLUDED.ranking_context,
			metadata            = EXCLUDED.metadata,
			completed_at        = EXCLUDED.completed_at,
			updated_at          = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("auction_repo.Save: %w", err)
	}
	return nil
}

// Load fetches an auction by id. Returns ErrAuctionNotFound when absent.
func (r *AuctionRepository) Load(ctx context.Context, id uuid.UUID) (*domain.Auction, error) {
	var row auctionRow
	err := r.db.GetContext(ctx, &row, `SELECT * FROM auctions WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, fmt.Errorf("auction_repo.Load: %w", err)
	}
	return fromRow(&row)
}

// ListByTenant returns a tenant's auctions newest-first.
func (r *AuctionRepository) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Auction, error) {
	var rows []auctionRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT * FROM auctions WHERE tenant_id = $1 ORDER BY started_at DESC LIMIT $2 OFFSET $3`,
		tenantID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("auction_repo.ListByTenant: %w", err)
	}

	auctions := make([]*domain.Auction, 0, len(rows))
	for i := range rows {
		a, err := fromRow(&rows[i])
		if err != nil {
			return nil, fmt.Errorf("auction_repo.ListByTenant: %w", err)
		}
		auctions = append(auctions, a)
	}
	return auctions, nil
}

// ── row mapping ──────────────────────────────────────────────────────────────

func toRow(a *domain.Auction) (*auctionRow, error) {
	partnerIDs, err := json.Marshal(a.PartnerIDs)
	if err != nil {
		return nil, fmt.Errorf("marshal partner_ids: %w", err)
	}
	offers, err := json.Marshal(a.Offers)
	if err != nil {
		return nil, fmt.Errorf("marshal offers: %w", err)
	}
	rankingCtx, err := json.Marshal(a.RankingContext)
	if err != nil {
		return nil, fmt.Errorf("marshal ranking_context: %w", err)
	}
	metadata, err := json.Marshal(a.Metadata)
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}

	row := &auctionRow{
		ID:                a.ID,
		ApplicationID:     a.ApplicationID,
		TenantID:          a.TenantID,
		UserID:            a.UserID,
		PartnerIDs:        partnerIDs,
		Status:            string(a.Status),
		Offers:            offers,
		TimeoutMinutes:    a.TimeoutMinutes,
		MinOffersRequired: a.MinOffersRequired,
		RankingContext:    rankingCtx,
		Metadata:          metadata,
		StartedAt:         a.StartedAt,
		ExpiresAt:         a.ExpiresAt,
		CompletedAt:       a.CompletedAt,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.WinningOffer != nil {
		if row.WinningOffer, err = json.Marshal(a.WinningOffer); err != nil {
			return nil, fmt.Errorf("marshal winning_offer: %w", err)
		}
	}
	if a.Analytics != nil {
		if row.Analytics, err = json.Marshal(a.Analytics); err != nil {
			return nil, fmt.Errorf("marshal analytics: %w", err)
		}
	}
	return row, nil
}

func fromRow(row *auctionRow) (*domain.Auction, error) {
	a := &domain.Auction{
		ID:                row.ID,
		ApplicationID:     row.ApplicationID,
		TenantID:          row.TenantID,
		UserID:            row.UserID,
		Status:            domain.AuctionStatus(row.Status),
		TimeoutMinutes:    row.TimeoutMinutes,
		MinOffersRequired: row.MinOffersRequired,
		StartedAt:         row.StartedAt,
		ExpiresAt:         row.ExpiresAt,
		CompletedAt:       row.CompletedAt,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}
	if err := json.Unmarshal(row.PartnerIDs, &a.PartnerIDs); err != nil {
		return nil, fmt.Errorf("unmarshal partner_ids: %w", err)
	}
	if err := json.Unmarshal(row.Offers, &a.Offers); err != nil {
		return nil, fmt.Errorf("unmarshal offers: %w", err)
	}
	if err := json.Unmarshal(row.RankingContext, &a.RankingContext); err != nil {
		return nil, fmt.Errorf("unmarshal ranking_context: %w", err)
	}
	if err := json.Unmarshal(row.Metadata, &a.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	if len(row.WinningOffer) > 0 {
		if err := json.Unmarshal(row.WinningOffer, &a.WinningOffer); err != nil {
			return nil, fmt.Errorf("unmarshal winning_offer: %w", err)
		}
	}
	if len(row.Analytics) > 0 {
		if err := json.Unmarshal(row.Analytics, &a.Analytics); err != nil {
			return nil, fmt.Errorf("unmarshal analytics: %w", err)
		}
	}
	return a, nil
}

// Package auction implements the coordinator for competitive loan offer
// bidding: concurrent partner fan-out under a shared deadline, an idempotent
// completion state machine, winner selection with savings justification, and
// auction analytics.
package auction

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lendora/auction/internal/clock"
	"github.com/lendora/auction/internal/domain"
	"github.com/lendora/auction/internal/normalizer"
	"github.com/lendora/auction/internal/ranker"
)

// ──────────────────────────────────────────────────────────────────────────────
// Collaborator interfaces — minimal, declared at the consumer
// ──────────────────────────────────────────────────────────────────────────────

// Store persists auction records. Save replaces the whole record atomically;
// Load must observe the latest Save for the same id.
type Store interface {
	Load(ctx context.Context, id uuid.UUID) (*domain.Auction, error)
	Save(ctx context.Context, a *domain.Auction) error
}

// ApplicationLookup resolves financing applications and tracks their
// lifecycle status.
type ApplicationLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ApplicationStatus) error
}

// PartnerDirectory resolves invited partner ids to live registered partners.
// Unknown or inactive ids are silently dropped from the result.
type PartnerDirectory interface {
	ResolveLive(ctx context.Context, ids []string) ([]domain.Partner, error)
}

// ProviderGateway retrieves offers from one partner. Calls may fail or time
// out independently per partner.
type ProviderGateway interface {
	RequestOffers(ctx context.Context, partner domain.Partner, app *domain.Application) ([]domain.RawOffer, error)
}

// EventSink receives fire-and-forget lifecycle notifications.
type EventSink interface {
	Emit(evt domain.AuctionEvent)
}

// ──────────────────────────────────────────────────────────────────────────────
// Coordinator
// ──────────────────────────────────────────────────────────────────────────────

// PolicyDefaults supplies the deployment-level fallbacks applied when
// StartOptions leaves a policy field unset. Loaded from config in main().
type PolicyDefaults struct {
	TimeoutMinutes    int
	MinOffersRequired int
	AutoComplete      bool
}

// DefaultPolicy returns the platform fallbacks used when no deployment
// overrides are configured.
func DefaultPolicy() PolicyDefaults {
	return PolicyDefaults{
		TimeoutMinutes:    domain.DefaultTimeoutMinutes,
		MinOffersRequired: domain.DefaultMinOffersRequired,
		AutoComplete:      true,
	}
}

// Coordinator orchestrates the auction lifecycle. It is the only writer of
// auction records; the normalizer and ranker are pure functions over the
// inputs they are handed.
type Coordinator struct {
	store      Store
	apps       ApplicationLookup
	partners   PartnerDirectory
	gateway    ProviderGateway
	sink       EventSink
	clk        clock.Clock
	normalizer *normalizer.Normalizer
	ranker     *ranker.Ranker
	defaults   PolicyDefaults
	logger     *slog.Logger

	// locks serializes check-then-act completion/cancellation per auction id.
	locks sync.Map // uuid.UUID → *sync.Mutex

	// collections tracks in-flight collection goroutines for clean shutdown.
	collections sync.WaitGroup
}

// NewCoordinator wires a Coordinator. sink may be nil (events dropped).
// Non-positive defaults fields fall back to the platform constants.
func NewCoordinator(
	store Store,
	apps ApplicationLookup,
	partners PartnerDirectory,
	gateway ProviderGateway,
	sink EventSink,
	clk clock.Clock,
	norm *normalizer.Normalizer,
	rnk *ranker.Ranker,
	defaults PolicyDefaults,
	logger *slog.Logger,
) *Coordinator {
	if clk == nil {
		clk = clock.Real{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if defaults.TimeoutMinutes <= 0 {
		defaults.TimeoutMinutes = domain.DefaultTimeoutMinutes
	}
	if defaults.MinOffersRequired < 1 {
		defaults.MinOffersRequired = domain.DefaultMinOffersRequired
	}
	return &Coordinator{
		store:      store,
		apps:       apps,
		partners:   partners,
		gateway:    gateway,
		sink:       sink,
		clk:        clk,
		normalizer: norm,
		ranker:     rnk,
		defaults:   defaults,
		logger:     logger,
	}
}

// Wait blocks until all in-flight collection goroutines have finished.
// Called during graceful shutdown.
func (c *Coordinator) Wait() {
	c.collections.Wait()
}

// ──────────────────────────────────────────────────────────────────────────────
// StartAuction
// ──────────────────────────────────────────────────────────────────────────────

// StartOptions carries caller-selectable auction policy. Zero values take
// the platform defaults.
type StartOptions struct {
	TimeoutMinutes         int
	MinOffersRequired      int
	RankingContext         domain.RankingContext
	AutoComplete           *bool // nil = enabled
	EarlyTerminationOffers int   // 0 = disabled
}

// StartAuctionRequest identifies the application and the partners to invite.
type StartAuctionRequest struct {
	ApplicationID uuid.UUID
	TenantID      string
	UserID        string
	PartnerIDs    []string
	Options       StartOptions
}

// StartAuction validates the request, persists a new ACTIVE auction, kicks
// off the collection phase asynchronously and returns the pre-collection
// snapshot. The call never blocks on partner I/O.
func (c *Coordinator) StartAuction(ctx context.Context, req StartAuctionRequest) (*domain.AuctionResult, error) {
	app, err := c.apps.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return nil, fmt.Errorf("auction.StartAuction: %w", err)
	}

	live, err := c.partners.ResolveLive(ctx, req.PartnerIDs)
	if err != nil {
		return nil, fmt.Errorf("auction.StartAuction: resolve partners: %w", err)
	}
	if len(live) < 2 {
		return nil, fmt.Errorf("auction.StartAuction: resolved %d live partners: %w",
			len(live), domain.ErrNotEnoughPartners)
	}

	opts := req.Options
	if opts.TimeoutMinutes <= 0 {
		opts.TimeoutMinutes = c.defaults.TimeoutMinutes
	}
	if opts.MinOffersRequired <= 0 {
		opts.MinOffersRequired = c.defaults.MinOffersRequired
	}
	autoComplete := c.defaults.AutoComplete
	if opts.AutoComplete != nil {
		autoComplete = *opts.AutoComplete
	}

	partnerIDs := make([]string, len(live))
	for i, p := range live {
		partnerIDs[i] = p.ID
	}

	now := c.clk.Now()
	a := &domain.Auction{
		ID:                uuid.New(),
		ApplicationID:     app.ID,
		TenantID:          req.TenantID,
		UserID:            req.UserID,
		PartnerIDs:        partnerIDs,
		Status:            domain.AuctionActive,
		TimeoutMinutes:    opts.TimeoutMinutes,
		MinOffersRequired: opts.MinOffersRequired,
		RankingContext:    opts.RankingContext.WithDefaults(),
		Metadata: domain.AuctionMetadata{
			AutoComplete:           autoComplete,
			EarlyTerminationOffers: opts.EarlyTerminationOffers,
		},
		StartedAt: now,
		ExpiresAt: now.Add(time.Duration(opts.TimeoutMinutes) * time.Minute),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("auction.StartAuction: save: %w", err)
	}

	// Best effort: a stale application status never blocks a started auction.
	if err := c.apps.UpdateStatus(ctx, app.ID, domain.ApplicationInAuction); err != nil {
		c.logger.Warn("could not mark application in_auction", "application_id", app.ID, "err", err)
	}

	c.emit(domain.AuctionEvent{
		Type:      domain.EventAuctionStarted,
		AuctionID: a.ID,
		TenantID:  a.TenantID,
		Payload: map[string]any{
			"application_id":  a.ApplicationID,
			"partners":        a.PartnerIDs,
			"expires_at":      a.ExpiresAt,
			"timeout_minutes": a.TimeoutMinutes,
		},
		Timestamp: now,
	})

	// Collection runs detached from the caller's request context: the HTTP
	// request finishing must not cancel the fan-out.
	c.collections.Add(1)
	go func() {
		defer c.collections.Done()
		c.runCollection(context.Background(), a, live, app)
	}()

	return a.ToResult(), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// CancelAuction
// ──────────────────────────────────────────────────────────────────────────────

// CancelAuction voids a pending or active auction. Terminal auctions are
// rejected.
func (c *Coordinator) CancelAuction(ctx context.Context, auctionID uuid.UUID, userID, reason string) error {
	mu := c.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := c.store.Load(ctx, auctionID)
	if err != nil {
		return fmt.Errorf("auction.CancelAuction: %w", err)
	}
	if !a.CanCancel() {
		return fmt.Errorf("auction.CancelAuction: cannot cancel auction in %s status: %w",
			a.Status, domain.ErrAuctionFinal)
	}

	now := c.clk.Now()
	updated := *a
	updated.Status = domain.AuctionCancelled
	updated.Metadata.CancelledBy = userID
	updated.Metadata.CancellationReason = reason
	updated.UpdatedAt = now

	if err := c.store.Save(ctx, &updated); err != nil {
		return fmt.Errorf("auction.CancelAuction: save: %w", err)
	}

	c.emit(domain.AuctionEvent{
		Type:      domain.EventAuctionCancelled,
		AuctionID: a.ID,
		TenantID:  a.TenantID,
		Payload: map[string]any{
			"cancelled_by": userID,
			"reason":       reason,
		},
		Timestamp: now,
	})
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// GetAuctionStatus
// ──────────────────────────────────────────────────────────────────────────────

// GetAuctionStatus returns a read-only projection of the auction including,
// while offers exist, a non-persisted interim leader computed on the fly.
// The auction record is never mutated.
func (c *Coordinator) GetAuctionStatus(ctx context.Context, auctionID uuid.UUID) (*domain.AuctionStatusResponse, error) {
	a, err := c.store.Load(ctx, auctionID)
	if err != nil {
		return nil, fmt.Errorf("auction.GetAuctionStatus: %w", err)
	}

	resp := &domain.AuctionStatusResponse{
		AuctionID:        a.ID,
		Status:           a.Status,
		PartnersInvited:  len(a.PartnerIDs),
		OffersReceived:   len(a.Offers),
		RemainingSeconds: int64(a.RemainingTime(c.clk.Now()).Seconds()),
	}

	if ranked := c.rankCollected(a); len(ranked) > 0 {
		leader := ranked[0]
		resp.CurrentLeader = &domain.CurrentLeader{
			PartnerID:    leader.PartnerID,
			PartnerName:  leader.PartnerName,
			EffectiveAPR: leader.EffectiveAPR,
			OverallScore: leader.OverallScore,
		}
	}
	return resp, nil
}

// rankCollected normalizes and ranks the auction's successful offer records
// without touching the record itself.
func (c *Coordinator) rankCollected(a *domain.Auction) []domain.RankedOffer {
	successful := a.SuccessfulOffers()
	if len(successful) == 0 {
		return nil
	}

	batch := make([]normalizer.BatchItem, len(successful))
	for i, rec := range successful {
		batch[i] = normalizer.BatchItem{
			PartnerID:   rec.PartnerID,
			PartnerName: rec.PartnerName,
			Raw:         rec.Offer,
		}
	}
	standard, normErrs := c.normalizer.NormalizeOffers(batch)
	for _, ne := range normErrs {
		c.logger.Warn("offer normalization failed", "auction_id", a.ID, "partner_id", ne.PartnerID, "err", ne.Err)
	}
	return c.ranker.RankOffers(standard, a.RankingContext)
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

// lockFor returns the mutex serializing state transitions for one auction id.
func (c *Coordinator) lockFor(id uuid.UUID) *sync.Mutex {
	mu, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func (c *Coordinator) emit(evt domain.AuctionEvent) {
	if c.sink == nil {
		return
	}
	c.sink.Emit(evt)
}

// markExpired records an unrecoverable processing failure. Distinct from the
// normal timeout-driven completion path: the auction is closed as EXPIRED
// and the error preserved in metadata. Completion is never retried.
func (c *Coordinator) markExpired(ctx context.Context, auctionID uuid.UUID, cause error) {
	mu := c.lockFor(auctionID)
	mu.Lock()
	defer mu.Unlock()

	a, err := c.store.Load(ctx, auctionID)
	if err != nil {
		c.logger.Error("markExpired: load failed", "auction_id", auctionID, "err", err)
		return
	}
	if a.IsFinal() {
		return
	}

	updated := *a
	updated.Status = domain.AuctionExpired
	updated.Metadata.ProcessingError = cause.Error()
	updated.UpdatedAt = c.clk.Now()

	if err := c.store.Save(ctx, &updated); err != nil {
		c.logger.Error("markExpired: save failed", "auction_id", auctionID, "err", err)
		return
	}
	c.logger.Error("auction expired after processing error", "auction_id", auctionID, "err", cause)
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lendora/auction/internal/api/middleware"
	"github.com/lendora/auction/internal/auction"
	"github.com/lendora/auction/internal/domain"
	"github.com/lendora/auction/internal/repository"
)

// AuctionHandler serves the auction lifecycle endpoints.
type AuctionHandler struct {
	coord *auction.Coordinator
	repo  *repository.AuctionRepository
}

// NewAuctionHandler creates an AuctionHandler.
func NewAuctionHandler(coord *auction.Coordinator, repo *repository.AuctionRepository) *AuctionHandler {
	return &AuctionHandler{coord: coord, repo: repo}
}

// Start godoc
// POST /api/auctions [JWT]
// Body: {"application_id":"uuid","partner_ids":["apex-capital",...],"ranking_context":{...},...}
func (h *AuctionHandler) Start(c *gin.Context) {
	var body struct {
		ApplicationID          string                `json:"application_id" binding:"required"`
		PartnerIDs             []string              `json:"partner_ids"    binding:"required"`
		TimeoutMinutes         int                   `json:"timeout_minutes"`
		MinOffersRequired      int                   `json:"min_offers_required"`
		RankingContext         domain.RankingContext `json:"ranking_context"`
		AutoComplete           *bool                 `json:"auto_complete"`
		EarlyTerminationOffers int                   `json:"early_termination_offers"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	appID, err := uuid.Parse(body.ApplicationID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_APPLICATION_ID", "invalid application_id format")
		return
	}

	result, err := h.coord.StartAuction(c.Request.Context(), auction.StartAuctionRequest{
		ApplicationID: appID,
		TenantID:      middleware.GetTenantID(c),
		UserID:        middleware.GetUserID(c),
		PartnerIDs:    body.PartnerIDs,
		Options: auction.StartOptions{
			TimeoutMinutes:         body.TimeoutMinutes,
			MinOffersRequired:      body.MinOffersRequired,
			RankingContext:         body.RankingContext,
			AutoComplete:           body.AutoComplete,
			EarlyTerminationOffers: body.EarlyTerminationOffers,
		},
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrApplicationNotFound):
			respondError(c, http.StatusNotFound, "ERR_APPLICATION_NOT_FOUND", domain.ErrApplicationNotFound.Error())
		case errors.Is(err, domain.ErrNotEnoughPartners):
			respondError(c, http.StatusBadRequest, "ERR_NOT_ENOUGH_PARTNERS", domain.ErrNotEnoughPartners.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not start auction")
		}
		return
	}
	respondSuccess(c, http.StatusCreated, result)
}

// Status godoc
// GET /api/auctions/:id/status [JWT]
func (h *AuctionHandler) Status(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction id")
		return
	}

	status, err := h.coord.GetAuctionStatus(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction status")
		return
	}
	respondSuccess(c, http.StatusOK, status)
}

// Complete godoc
// POST /api/auctions/:id/complete [JWT]
// Forces completion of an auction that has met its minimum offer count.
func (h *AuctionHandler) Complete(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction id")
		return
	}

	result, err := h.coord.CompleteAuction(c.Request.Context(), auctionID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrInsufficientOffers):
			respondError(c, http.StatusConflict, "ERR_INSUFFICIENT_OFFERS", domain.ErrInsufficientOffers.Error())
		case errors.Is(err, domain.ErrAuctionFinal):
			respondError(c, http.StatusConflict, "ERR_AUCTION_FINAL", domain.ErrAuctionFinal.Error())
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not complete auction")
		}
		return
	}
	respondSuccess(c, http.StatusOK, result)
}

// Cancel godoc
// POST /api/auctions/:id/cancel [JWT]
// Body: {"reason":"borrower withdrew"}
func (h *AuctionHandler) Cancel(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction id")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body) // reason is optional

	err = h.coord.CancelAuction(c.Request.Context(), auctionID, middleware.GetUserID(c), body.Reason)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrAuctionNotFound):
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		case errors.Is(err, domain.ErrAuctionFinal):
			respondError(c, http.StatusConflict, "ERR_AUCTION_FINAL", "cannot cancel a finished auction")
		default:
			respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not cancel auction")
		}
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"auction_id": auctionID, "status": domain.AuctionCancelled})
}

// GetByID godoc
// GET /api/auctions/:id [JWT]
// Returns the full persisted auction record including offers and analytics.
func (h *AuctionHandler) GetByID(c *gin.Context) {
	auctionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AUCTION_ID", "invalid auction id")
		return
	}

	a, err := h.repo.Load(c.Request.Context(), auctionID)
	if err != nil {
		if errors.Is(err, domain.ErrAuctionNotFound) {
			respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch auction")
		return
	}
	if a.TenantID != middleware.GetTenantID(c) {
		respondError(c, http.StatusNotFound, "ERR_AUCTION_NOT_FOUND", domain.ErrAuctionNotFound.Error())
		return
	}
	respondSuccess(c, http.StatusOK, a)
}

// List godoc
// GET /api/auctions?page=1&limit=20 [JWT]
func (h *AuctionHandler) List(c *gin.Context) {
	page, limit := parsePagination(c)
	offset := (page - 1) * limit

	auctions, err := h.repo.ListByTenant(c.Request.Context(), middleware.GetTenantID(c), limit, offset)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list auctions")
		return
	}
	respondList(c, auctions, len(auctions), page, limit)
}

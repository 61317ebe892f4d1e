package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lendora/auction/internal/repository"
)

// PartnerHandler serves the partner registry read endpoints.
type PartnerHandler struct {
	repo *repository.PartnerRepository
}

// NewPartnerHandler creates a PartnerHandler.
func NewPartnerHandler(repo *repository.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{repo: repo}
}

// List godoc
// GET /api/partners [JWT]
// Returns all registered partners so callers can choose whom to invite.
func (h *PartnerHandler) List(c *gin.Context) {
	partners, err := h.repo.List(c.Request.Context())
	if err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not list partners")
		return
	}
	respondSuccess(c, http.StatusOK, partners)
}

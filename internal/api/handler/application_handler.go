package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lendora/auction/internal/api/middleware"
	"github.com/lendora/auction/internal/domain"
	"github.com/lendora/auction/internal/repository"
	"github.com/shopspring/decimal"
)

// ApplicationHandler serves financing application endpoints.
type ApplicationHandler struct {
	repo *repository.ApplicationRepository
}

// NewApplicationHandler creates an ApplicationHandler.
func NewApplicationHandler(repo *repository.ApplicationRepository) *ApplicationHandler {
	return &ApplicationHandler{repo: repo}
}

// Create godoc
// POST /api/applications [JWT]
// Body: {"business_name":"...","loan_amount":"500000","tenure_months":24,...}
func (h *ApplicationHandler) Create(c *gin.Context) {
	var body struct {
		BusinessName    string `json:"business_name"  binding:"required"`
		LoanAmount      string `json:"loan_amount"    binding:"required"`
		TenureMonths    int    `json:"tenure_months"  binding:"required"`
		Purpose         string `json:"purpose"`
		CreditScore     *int   `json:"credit_score"`
		YearsInBusiness *int   `json:"years_in_business"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, "ERR_VALIDATION", err.Error())
		return
	}

	amount, err := decimal.NewFromString(body.LoanAmount)
	if err != nil || !amount.IsPositive() {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_AMOUNT", "loan_amount must be a positive decimal string")
		return
	}
	if body.TenureMonths < 1 {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_TENURE", domain.ErrInvalidTenure.Error())
		return
	}

	now := time.Now().UTC()
	app := &domain.Application{
		ID:              uuid.New(),
		TenantID:        middleware.GetTenantID(c),
		UserID:          middleware.GetUserID(c),
		BusinessName:    body.BusinessName,
		LoanAmount:      amount,
		TenureMonths:    body.TenureMonths,
		Purpose:         body.Purpose,
		CreditScore:     body.CreditScore,
		YearsInBusiness: body.YearsInBusiness,
		Status:          domain.ApplicationSubmitted,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := h.repo.Create(c.Request.Context(), app); err != nil {
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not create application")
		return
	}
	respondSuccess(c, http.StatusCreated, app)
}

// Get godoc
// GET /api/applications/:id [JWT]
func (h *ApplicationHandler) Get(c *gin.Context) {
	appID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "ERR_INVALID_APPLICATION_ID", "invalid application id")
		return
	}

	app, err := h.repo.FindByID(c.Request.Context(), appID)
	if err != nil {
		if errors.Is(err, domain.ErrApplicationNotFound) {
			respondError(c, http.StatusNotFound, "ERR_APPLICATION_NOT_FOUND", domain.ErrApplicationNotFound.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "ERR_INTERNAL", "could not fetch application")
		return
	}
	if app.TenantID != middleware.GetTenantID(c) {
		respondError(c, http.StatusNotFound, "ERR_APPLICATION_NOT_FOUND", domain.ErrApplicationNotFound.Error())
		return
	}
	respondSuccess(c, http.StatusOK, app)
}

// Package api wires the HTTP surface: routes, middleware, CORS, and the
// WebSocket upgrade endpoint.
package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lendora/auction/internal/api/handler"
	"github.com/lendora/auction/internal/api/middleware"
	"github.com/lendora/auction/internal/auction"
	"github.com/lendora/auction/internal/config"
	"github.com/lendora/auction/internal/repository"
	"github.com/lendora/auction/internal/ws"
)

// RouterDeps bundles every dependency needed to build the router.
// Populated once in main() and passed to SetupRouter.
type RouterDeps struct {
	Coordinator *auction.Coordinator
	AuctionRepo *repository.AuctionRepository
	AppRepo     *repository.ApplicationRepository
	PartnerRepo *repository.PartnerRepository
	Hub         *ws.Hub
	Cfg         *config.Config
}

// SetupRouter creates and configures the main Gin engine with all routes,
// middleware, CORS, and rate limiting rules.
func SetupRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.IsProd() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	// ── CORS ─────────────────────────────────────────────────────────────────
	r.Use(corsMiddleware(deps.Cfg))

	// ── Health check ─────────────────────────────────────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── Handlers ─────────────────────────────────────────────────────────────
	auctionH := handler.NewAuctionHandler(deps.Coordinator, deps.AuctionRepo)
	appH := handler.NewApplicationHandler(deps.AppRepo)
	partnerH := handler.NewPartnerHandler(deps.PartnerRepo)

	// ── JWT middleware (shared) ───────────────────────────────────────────────
	jwtMW := middleware.JWTMiddleware([]byte(deps.Cfg.JWT.Secret))

	// ── Rate limiters ─────────────────────────────────────────────────────────
	startRL := middleware.RateLimitMiddleware(deps.Cfg.RateLimit.StartRPS)
	readRL := middleware.RateLimitMiddleware(deps.Cfg.RateLimit.ReadRPS)

	api := r.Group("/api")
	api.Use(jwtMW)
	{
		// ── Applications ──────────────────────────────────────────────────────
		apps := api.Group("/applications")
		{
			apps.POST("", appH.Create)
			apps.GET("/:id", appH.Get)
		}

		// ── Auctions ──────────────────────────────────────────────────────────
		auctions := api.Group("/auctions")
		{
			auctions.POST("", startRL, auctionH.Start)
			auctions.GET("", readRL, auctionH.List)
			auctions.GET("/:id", readRL, auctionH.GetByID)
			auctions.GET("/:id/status", readRL, auctionH.Status)
			auctions.POST("/:id/complete", auctionH.Complete)
			auctions.POST("/:id/cancel", auctionH.Cancel)
		}

		// ── Partner registry ──────────────────────────────────────────────────
		api.GET("/partners", readRL, partnerH.List)
	}

	// ── WebSocket ─────────────────────────────────────────────────────────────
	if deps.Hub != nil {
		r.GET("/ws", func(c *gin.Context) {
			deps.Hub.ServeWs(c.Writer, c.Request)
		})
	}

	return r
}

// ── CORS helper ───────────────────────────────────────────────────────────────

// corsMiddleware returns a gin middleware that sets appropriate CORS headers.
// In development all origins are allowed; in production only configured origins.
func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	allowed := map[string]bool{}
	for _, o := range strings.Split(cfg.Server.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed[o] = true
		}
	}

	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		if !cfg.IsProd() {
			// Development: allow any origin
			c.Header("Access-Control-Allow-Origin", "*")
		} else if origin != "" && allowed[origin] {
			c.Header("Access-Control-Allow-Origin", origin)
		}

		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

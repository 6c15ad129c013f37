package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/handler"
	"github.com/iliyamo/arabian-horse-auction/internal/middleware"
	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// RegisterAuctions wires the auction lifecycle endpoints.  Browse
// endpoints are public; everything that mutates state requires a JWT,
// with role gates matching each operation.  The bid endpoint
// additionally passes through the per-user rate limiter.
func RegisterAuctions(e *echo.Echo, h *handler.AuctionHandler, jwtSecret string, bidLimit echo.MiddlewareFunc) {
	// Guests can browse the auction list and any auction's detail page.
	e.GET("/v1/auctions", h.List)
	e.GET("/v1/auctions/:id", h.Detail)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))

	// Sellers auction their own horses; admins may auction any horse.
	auth.POST("/auctions", h.Create,
		middleware.RequireRole(model.RoleSeller, model.RoleAdmin))

	// Any authenticated user may pay the insurance deposit and, once
	// verified, place bids.  Verification itself is checked inside the
	// engine, not here, so the 402 response carries a precise message.
	auth.POST("/bidders/verify", h.PayInsurance)
	auth.POST("/auctions/:id/bids", h.PlaceBid, bidLimit)

	// Winner acceptance is restricted to the creator or an admin inside
	// the engine; the route only requires authentication.
	auth.POST("/auctions/:id/accept", h.Accept)

	admin := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/auctions/:id/close", h.Close)
	admin.DELETE("/auctions/:id", h.Delete)
}

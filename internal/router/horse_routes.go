package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/handler"
	"github.com/iliyamo/arabian-horse-auction/internal/middleware"
	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// RegisterHorses wires horse registration, public profiles, the sales
// board and listing management.
func RegisterHorses(e *echo.Echo, h *handler.HorseHandler, jwtSecret string) {
	// Guests can browse the sales board and look up any horse by chip.
	e.GET("/v1/horses", h.List)
	e.GET("/v1/horses/:microchip", h.Profile)

	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/horses", h.Create,
		middleware.RequireRole(model.RoleSeller, model.RoleAdmin))
	auth.GET("/my/horses", h.Mine)

	// Listing changes verify ownership in the repository, so the routes
	// only require authentication.
	auth.POST("/horses/:microchip/listing", h.SetListing)
	auth.DELETE("/horses/:microchip/listing", h.Delist)
}

package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/handler"
	"github.com/iliyamo/arabian-horse-auction/internal/middleware"
	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// RegisterMessages wires the owner-contact messaging endpoints.
func RegisterMessages(e *echo.Echo, h *handler.MessageHandler, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/messages", h.Send)
	auth.GET("/messages/inbox", h.Inbox)
	auth.POST("/messages/:id/read", h.MarkRead)
}

// RegisterNews wires the public news feed and the admin publishing
// endpoints.
func RegisterNews(e *echo.Echo, h *handler.NewsHandler, jwtSecret string) {
	e.GET("/v1/news", h.List)

	admin := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.POST("/news", h.Create)
	admin.DELETE("/news/:id", h.Delete)
}

// RegisterJoinRequests wires the seller application flow.  Buyers
// submit, admins review.
func RegisterJoinRequests(e *echo.Echo, h *handler.JoinHandler, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/join-requests", h.Submit)

	admin := e.Group("/v1", middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin))
	admin.GET("/join-requests", h.ListPending)
	admin.POST("/join-requests/:id/decide", h.Decide)
}

// RegisterAI wires the breed prediction proxy.
func RegisterAI(e *echo.Echo, h *handler.AIHandler, jwtSecret string) {
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	auth.POST("/ai/predict-breed", h.PredictBreed)
}

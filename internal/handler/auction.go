package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/auction"
)

// AuctionHandler exposes the auction lifecycle over HTTP.  All business
// rules live in the engine; this layer only binds requests, resolves
// the actor and translates engine errors to status codes.
type AuctionHandler struct {
	Engine *auction.Engine
}

// NewAuctionHandler constructs an AuctionHandler.
func NewAuctionHandler(engine *auction.Engine) *AuctionHandler {
	if engine == nil {
		panic("nil engine passed to NewAuctionHandler")
	}
	return &AuctionHandler{Engine: engine}
}

// List handles GET /v1/auctions.  It runs the time-triggered status
// sweep and returns the list view ordered by start time descending.
func (h *AuctionHandler) List(c echo.Context) error {
	items, err := h.Engine.List(c.Request().Context())
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Detail handles GET /v1/auctions/:id.
func (h *AuctionHandler) Detail(c echo.Context) error {
	id, err := auctionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	detail, err := h.Engine.Get(c.Request().Context(), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// createRequest is the payload for POST /v1/auctions.  Money fields are
// decimal strings; 0 for minimum_increment selects the default.
type createRequest struct {
	Name             string          `json:"name"`
	StartTime        time.Time       `json:"start_time"`
	EndTime          time.Time       `json:"end_time"`
	BasePrice        decimal.Decimal `json:"base_price"`
	MinimumIncrement decimal.Decimal `json:"minimum_increment"`
	MicrochipID      string          `json:"microchip_id"`
	ImageUrl         *string         `json:"image_url"`
	VideoUrl         *string         `json:"video_url"`
	InsuranceDetails *string         `json:"insurance_details"`
}

// Create handles POST /v1/auctions.  Admins may auction any horse,
// sellers only their own.
func (h *AuctionHandler) Create(c echo.Context) error {
	var req createRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	a, err := h.Engine.Create(c.Request().Context(), actor(c), auction.CreateInput{
		Name:             req.Name,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		BasePrice:        req.BasePrice,
		MinimumIncrement: req.MinimumIncrement,
		MicrochipID:      req.MicrochipID,
		ImageUrl:         req.ImageUrl,
		VideoUrl:         req.VideoUrl,
		InsuranceDetails: req.InsuranceDetails,
	})
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"id":     a.ID,
		"status": a.Status,
	})
}

// Delete handles DELETE /v1/auctions/:id.  Admin-only hard delete,
// cascading to the auction's bids.
func (h *AuctionHandler) Delete(c echo.Context) error {
	id, err := auctionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	if err := h.Engine.Delete(c.Request().Context(), actor(c), id); err != nil {
		return engineError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// PlaceBid handles POST /v1/auctions/:id/bids.
func (h *AuctionHandler) PlaceBid(c echo.Context) error {
	id, err := auctionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	current, err := h.Engine.PlaceBid(c.Request().Context(), actor(c), id, body.Amount)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"current_bid": current})
}

// PayInsurance handles POST /v1/bidders/verify.  Idempotent: repeat
// calls keep returning 200.
func (h *AuctionHandler) PayInsurance(c echo.Context) error {
	if err := h.Engine.PayInsurance(c.Request().Context(), actor(c)); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "insurance paid, you are now a verified bidder"})
}

// Accept handles POST /v1/auctions/:id/accept.
func (h *AuctionHandler) Accept(c echo.Context) error {
	id, err := auctionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	a, err := h.Engine.AcceptWinner(c.Request().Context(), actor(c), id)
	if err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"status":    a.Status,
		"winner_id": a.WinnerID,
	})
}

// Close handles POST /v1/auctions/:id/close.  Admin override: the
// auction ends immediately without a sale.
func (h *AuctionHandler) Close(c echo.Context) error {
	id, err := auctionID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid auction id"})
	}
	if err := h.Engine.Close(c.Request().Context(), actor(c), id); err != nil {
		return engineError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "auction closed"})
}

func auctionID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.ErrBadRequest
	}
	return id, nil
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// HorseDirectory is the persistence surface the horse endpoints read
// and write through, satisfied by repository.HorseRepo.
type HorseDirectory interface {
	Create(ctx context.Context, h *model.Horse) error
	GetProfile(ctx context.Context, microchipID string) (*model.HorseProfile, error)
	ListForSale(ctx context.Context) ([]model.Horse, error)
	ListAll(ctx context.Context) ([]model.Horse, error)
	ListByOwner(ctx context.Context, userID uint64) ([]model.Horse, error)
	SetListing(ctx context.Context, microchipID string, userID uint64, forSale bool, price *decimal.Decimal) error
}

// OwnerDirectory locates and creates owner records, satisfied by
// repository.OwnerRepo.
type OwnerDirectory interface {
	Find(ctx context.Context, userID uint64) (*model.Owner, error)
	Create(ctx context.Context, o *model.Owner) error
}

// HorseHandler covers horse registration, public profiles and the
// for-sale board.  Registration claims the horse for the caller by
// creating (or reusing) their owner record.
type HorseHandler struct {
	Horses HorseDirectory
	Owners OwnerDirectory
}

// NewHorseHandler constructs a HorseHandler.
func NewHorseHandler(horses HorseDirectory, owners OwnerDirectory) *HorseHandler {
	return &HorseHandler{Horses: horses, Owners: owners}
}

// Create handles POST /v1/horses.  Restricted to sellers and admins by
// the route's role gate.
func (h *HorseHandler) Create(c echo.Context) error {
	var req struct {
		MicrochipID string           `json:"microchip_id"`
		Name        string           `json:"name"`
		Age         *int             `json:"age"`
		Gender      *string          `json:"gender"`
		Breed       string           `json:"breed"`
		ImageUrl    *string          `json:"image_url"`
		Price       *decimal.Decimal `json:"price"`
		IsForSale   bool             `json:"is_for_sale"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.MicrochipID == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "microchip_id and name are required"})
	}
	if req.IsForSale && req.Price == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "price is required when listing for sale"})
	}
	if req.Breed == "" {
		req.Breed = "Arabian"
	}

	a := actor(c)
	owner, err := h.Owners.Find(c.Request().Context(), a.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrOwnerNotFound) {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
		owner = &model.Owner{OwnerID: a.ID, Since: time.Now().UTC()}
		if err := h.Owners.Create(c.Request().Context(), owner); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}

	horse := &model.Horse{
		MicrochipID: req.MicrochipID,
		Name:        req.Name,
		Age:         req.Age,
		Gender:      req.Gender,
		Breed:       req.Breed,
		ImageUrl:    req.ImageUrl,
		OwnerID:     &owner.OwnerID,
		Price:       req.Price,
		IsForSale:   req.IsForSale,
	}
	if err := h.Horses.Create(c.Request().Context(), horse); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "a horse with this microchip id already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, horse)
}

// Profile handles GET /v1/horses/:microchip.
func (h *HorseHandler) Profile(c echo.Context) error {
	p, err := h.Horses.GetProfile(c.Request().Context(), c.Param("microchip"))
	if err != nil {
		if errors.Is(err, repository.ErrHorseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "horse not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, p)
}

// List handles GET /v1/horses.  With ?for_sale=true only listed horses
// are returned; without it every registered horse appears.
func (h *HorseHandler) List(c echo.Context) error {
	var horses []model.Horse
	var err error
	if c.QueryParam("for_sale") == "true" {
		horses, err = h.Horses.ListForSale(c.Request().Context())
	} else {
		horses, err = h.Horses.ListAll(c.Request().Context())
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": horses})
}

// Mine handles GET /v1/my/horses.
func (h *HorseHandler) Mine(c echo.Context) error {
	horses, err := h.Horses.ListByOwner(c.Request().Context(), actor(c).ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": horses})
}

// SetListing handles POST /v1/horses/:microchip/listing.
func (h *HorseHandler) SetListing(c echo.Context) error {
	var req struct {
		Price decimal.Decimal `json:"price"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.Price.Sign() <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a positive price is required"})
	}
	return h.updateListing(c, true, &req.Price)
}

// Delist handles DELETE /v1/horses/:microchip/listing.
func (h *HorseHandler) Delist(c echo.Context) error {
	return h.updateListing(c, false, nil)
}

func (h *HorseHandler) updateListing(c echo.Context, forSale bool, price *decimal.Decimal) error {
	err := h.Horses.SetListing(c.Request().Context(), c.Param("microchip"), actor(c).ID, forSale, price)
	switch {
	case errors.Is(err, repository.ErrHorseNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "horse not found"})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the horse's owner can change its listing"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"for_sale": forSale})
}

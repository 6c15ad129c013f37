package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// JoinHandler processes applications from buyers who want to sell on
// the platform.  Approval upgrades the applicant's role to Seller.
type JoinHandler struct {
	Joins *repository.JoinRepo
	Users *repository.UserRepo
}

// NewJoinHandler constructs a JoinHandler.
func NewJoinHandler(joins *repository.JoinRepo, users *repository.UserRepo) *JoinHandler {
	return &JoinHandler{Joins: joins, Users: users}
}

// Submit handles POST /v1/join-requests.
func (h *JoinHandler) Submit(c echo.Context) error {
	var req struct {
		Motivation string `json:"motivation"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Motivation) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "motivation is required"})
	}
	a := actor(c)
	if a.Role != model.RoleBuyer {
		return c.JSON(http.StatusConflict, echo.Map{"error": "only buyers can apply to become sellers"})
	}
	jr := &model.JoinRequest{
		UserID:     a.ID,
		Motivation: req.Motivation,
		Status:     model.JoinPending,
	}
	if err := h.Joins.Create(c.Request().Context(), jr); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": jr.ID, "status": jr.Status})
}

// ListPending handles GET /v1/join-requests.
func (h *JoinHandler) ListPending(c echo.Context) error {
	items, err := h.Joins.ListPending(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Decide handles POST /v1/join-requests/:id/decide.  An approval also
// upgrades the applicant to Seller; rejection leaves the role alone.
// Requests that were already decided come back as a conflict.
func (h *JoinHandler) Decide(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid join request id"})
	}
	var req struct {
		Approve bool `json:"approve"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	status := model.JoinRejected
	if req.Approve {
		status = model.JoinApproved
	}
	jr, err := h.Joins.Decide(c.Request().Context(), id, status)
	switch {
	case errors.Is(err, repository.ErrJoinRequestNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "join request not found"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "join request already decided"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	if req.Approve {
		if err := h.Users.SetRole(c.Request().Context(), jr.UserID, model.RoleSeller); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"id": jr.ID, "status": jr.Status})
}

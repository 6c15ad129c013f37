package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/repository"
)

// NewsHandler serves the public news feed and the admin publish and
// delete operations.
type NewsHandler struct {
	News *repository.NewsRepo
}

// NewNewsHandler constructs a NewsHandler.
func NewNewsHandler(news *repository.NewsRepo) *NewsHandler {
	return &NewsHandler{News: news}
}

// List handles GET /v1/news, newest first.
func (h *NewsHandler) List(c echo.Context) error {
	posts, err := h.News.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": posts})
}

// Create handles POST /v1/news.
func (h *NewsHandler) Create(c echo.Context) error {
	var req struct {
		Title     string  `json:"title"`
		Content   string  `json:"content"`
		SourceUrl *string `json:"source_url"`
		ImageUrl  *string `json:"image_url"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Content) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}
	p := &model.NewsPost{
		Title:       req.Title,
		Content:     req.Content,
		SourceUrl:   req.SourceUrl,
		ImageUrl:    req.ImageUrl,
		PublishedAt: time.Now().UTC(),
	}
	if err := h.News.Create(c.Request().Context(), p); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": p.ID})
}

// Delete handles DELETE /v1/news/:id.
func (h *NewsHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid news id"})
	}
	if err := h.News.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrNewsNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "news post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}

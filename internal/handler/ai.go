package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// predictTimeout bounds a single classifier invocation; model loading
// dominates the run time on a cold start.
const predictTimeout = 30 * time.Second

// AIHandler proxies breed prediction requests to the external
// classifier script.  The script receives the image path as its only
// argument and prints a JSON object with `breed` and `confidence`.
type AIHandler struct {
	Script string
	Log    *logrus.Logger
}

// NewAIHandler constructs an AIHandler.  An empty script path disables
// the endpoint with a 503.
func NewAIHandler(script string, log *logrus.Logger) *AIHandler {
	return &AIHandler{Script: script, Log: log}
}

type prediction struct {
	Breed      string  `json:"breed"`
	Confidence float64 `json:"confidence"`
}

// PredictBreed handles POST /v1/ai/predict-breed.
func (h *AIHandler) PredictBreed(c echo.Context) error {
	if h.Script == "" {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "breed prediction is not configured"})
	}
	var req struct {
		ImagePath string `json:"image_path"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.ImagePath == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "image_path is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), predictTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, h.Script, req.ImagePath).Output()
	if err != nil {
		h.Log.WithError(err).WithField("script", h.Script).Warn("breed classifier failed")
		if ctx.Err() == context.DeadlineExceeded {
			return c.JSON(http.StatusGatewayTimeout, echo.Map{"error": "breed prediction timed out"})
		}
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "breed prediction failed"})
	}

	var p prediction
	if err := json.Unmarshal(out, &p); err != nil {
		h.Log.WithError(err).Warn("breed classifier returned malformed output")
		return c.JSON(http.StatusBadGateway, echo.Map{"error": "breed prediction failed"})
	}
	return c.JSON(http.StatusOK, p)
}

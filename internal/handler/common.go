package handler // handler defines http handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/arabian-horse-auction/internal/auction"
	"github.com/iliyamo/arabian-horse-auction/internal/middleware"
	"github.com/iliyamo/arabian-horse-auction/internal/model"
)

// actor extracts the authenticated actor placed in the context by the
// JWT middleware.  Handlers behind JWTAuth can rely on it being set;
// the fallback keeps unauthenticated access from panicking.
func actor(c echo.Context) model.Actor {
	a, _ := middleware.ActorFrom(c)
	return a
}

// engineError maps an auction engine error to its HTTP response.  Every
// business-rule kind has a stable status; anything else is a server
// error and the message is not leaked to the caller.
func engineError(c echo.Context, err error) error {
	msg := err.Error()
	switch auction.KindOf(err) {
	case auction.KindNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": msg})
	case auction.KindForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
	case auction.KindUnauthenticated:
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
	case auction.KindInvalidState:
		return c.JSON(http.StatusConflict, echo.Map{"error": msg})
	case auction.KindInvalidArgument:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	case auction.KindPaymentRequired:
		return c.JSON(http.StatusPaymentRequired, echo.Map{"error": msg})
	}
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

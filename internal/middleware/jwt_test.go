package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/peterldowns/testy/check"

	"github.com/iliyamo/arabian-horse-auction/internal/model"
	"github.com/iliyamo/arabian-horse-auction/internal/utils"
)

const testSecret = "test-secret"

func protected(t *testing.T, mw ...echo.MiddlewareFunc) (*echo.Echo, *model.Actor) {
	t.Helper()
	var seen model.Actor
	e := echo.New()
	h := func(c echo.Context) error {
		seen, _ = ActorFrom(c)
		return c.NoContent(http.StatusOK)
	}
	e.GET("/p", h, mw...)
	return e, &seen
}

func doRequest(e *echo.Echo, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuthInjectsActor(t *testing.T) {
	e, seen := protected(t, JWTAuth(testSecret))

	tok, err := utils.NewAccessToken(testSecret, 42, model.RoleSeller, 5)
	check.NoError(t, err)

	rec := doRequest(e, "Bearer "+tok.Token)
	check.Equal(t, http.StatusOK, rec.Code)
	check.Equal(t, uint64(42), seen.ID)
	check.Equal(t, model.RoleSeller, seen.Role)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	e, _ := protected(t, JWTAuth(testSecret))

	check.Equal(t, http.StatusUnauthorized, doRequest(e, "").Code)
	check.Equal(t, http.StatusUnauthorized, doRequest(e, "Bearer not-a-jwt").Code)

	// Signed with a different secret.
	tok, err := utils.NewAccessToken("other-secret", 42, model.RoleBuyer, 5)
	check.NoError(t, err)
	check.Equal(t, http.StatusUnauthorized, doRequest(e, "Bearer "+tok.Token).Code)
}

func TestRequireRole(t *testing.T) {
	e, _ := protected(t, JWTAuth(testSecret), RequireRole(model.RoleAdmin))

	admin, err := utils.NewAccessToken(testSecret, 1, model.RoleAdmin, 5)
	check.NoError(t, err)
	check.Equal(t, http.StatusOK, doRequest(e, "Bearer "+admin.Token).Code)

	buyer, err := utils.NewAccessToken(testSecret, 2, model.RoleBuyer, 5)
	check.NoError(t, err)
	check.Equal(t, http.StatusForbidden, doRequest(e, "Bearer "+buyer.Token).Code)
}

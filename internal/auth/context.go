package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"todoapp/internal/model"
)

// UserContextKey is the echo context key under which the session middleware
// stores the authenticated user.
const UserContextKey = "user"

// CurrentUser returns the authenticated user injected by the session
// middleware, or a 401 error when the request carries no valid session.
func CurrentUser(c echo.Context) (*model.User, error) {
	user, ok := c.Get(UserContextKey).(*model.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	}
	return user, nil
}

// TokenFromRequest extracts the raw session token from the Authorization
// header or the session cookie. Returns "" when neither is present.
func TokenFromRequest(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	if cookie, err := c.Cookie(SessionCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

package router

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"todoapp/internal/auth"
	"todoapp/internal/config"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/handler"
	"todoapp/internal/metrics"
	ratelimit "todoapp/internal/middleware"
	"todoapp/internal/service"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authService service.AuthService,
	userHandler *handler.UserHandler,
	todoHandler *handler.TodoHandler,
	m *metrics.Metrics,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowCredentials: true,
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
	}))
	e.Use(m.Middleware())

	e.HTTPErrorHandler = ErrorHandler
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api/v1")

	// Public routes, rate-limited to slow down credential stuffing.
	authLimiter := ratelimit.NewRateLimiter(rate.Every(time.Second), 10)
	api.POST("/users/signup", userHandler.Signup, authLimiter.Middleware())
	api.POST("/users/login", userHandler.Login, authLimiter.Middleware())

	// Secured routes: session token from the HTTP-only cookie or a bearer
	// header, validated against the session store on every request.
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		ContextKey:  auth.UserContextKey,
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ,cookie:" + auth.SessionCookieName,
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return authService.ValidateSession(c.Request().Context(), token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, apperrors.ErrorResponse{
				Error: apperrors.ErrInvalidSession.Error(),
				Code:  "INVALID_SESSION",
			})
		},
	}))

	secured.POST("/users/logout", userHandler.Logout)
	secured.GET("/users/me", userHandler.Me)
	secured.PATCH("/users/me", userHandler.UpdateMe)

	secured.GET("/todos", todoHandler.List)
	secured.POST("/todos", todoHandler.Create)
	secured.PATCH("/todos/:id", todoHandler.Update)
	secured.DELETE("/todos/:id", todoHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// ErrorHandler renders every error as an ErrorResponse body so clients can
// always read {error, code}.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := apperrors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

	if he, ok := err.(*echo.HTTPError); ok {
		status = he.Code
		switch msg := he.Message.(type) {
		case apperrors.ErrorResponse:
			body = msg
		case string:
			body = apperrors.ErrorResponse{Error: msg, Code: statusCode(he.Code)}
		default:
			body = apperrors.ErrorResponse{Error: http.StatusText(he.Code), Code: statusCode(he.Code)}
		}
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}
	_ = c.JSON(status, body)
}

func statusCode(status int) string {
	return strings.ToUpper(strings.ReplaceAll(http.StatusText(status), " ", "_"))
}

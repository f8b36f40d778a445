package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/service"
)

// UserHandler handles signup, login and session endpoints.
type UserHandler struct {
	authService  service.AuthService
	sessionTTL   time.Duration
	secureCookie bool
}

// NewUserHandler creates a new user handler.
func NewUserHandler(authService service.AuthService, sessionTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{
		authService:  authService,
		sessionTTL:   sessionTTL,
		secureCookie: secureCookie,
	}
}

// SignupRequest represents a user signup request.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse represents a successful login response.
type LoginResponse struct {
	Success bool        `json:"success"`
	User    interface{} `json:"user"`
}

// UpdateProfileRequest represents a profile update request.
type UpdateProfileRequest struct {
	Name string `json:"name" validate:"required"`
}

// Signup godoc
// @Summary Register a new user
// @Tags users
// @Accept json
// @Produce json
// @Param request body SignupRequest true "Signup data"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/signup [post]
func (h *UserHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Signup(c.Request().Context(), req.Email, req.Password, req.Name)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}

// Login godoc
// @Summary Login and receive a session cookie
// @Tags users
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/login [post]
func (h *UserHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, user, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	c.SetCookie(auth.NewSessionCookie(token, h.sessionTTL, h.secureCookie))

	return c.JSON(http.StatusOK, LoginResponse{
		Success: true,
		User:    user,
	})
}

// Logout godoc
// @Summary Logout and invalidate the session
// @Tags users
// @Produce json
// @Security SessionAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /users/logout [post]
func (h *UserHandler) Logout(c echo.Context) error {
	token := auth.TokenFromRequest(c)
	if token == "" {
		httpErr := apperrors.MapErrorToHTTP(apperrors.ErrInvalidSession)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	if err := h.authService.Logout(c.Request().Context(), token); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	c.SetCookie(auth.ClearedSessionCookie(h.secureCookie))

	return c.JSON(http.StatusOK, map[string]string{
		"message": "logged out successfully",
	})
}

// Me godoc
// @Summary Get the authenticated user
// @Tags users
// @Produce json
// @Security SessionAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateMe godoc
// @Summary Update the authenticated user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body UpdateProfileRequest true "Profile fields"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	updated, err := h.authService.UpdateProfile(c.Request().Context(), user.ID, req.Name)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, updated)
}

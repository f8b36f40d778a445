package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/service"
)

// TodoHandler handles todo CRUD endpoints. All routes require a validated
// session; ownership is enforced by the service.
type TodoHandler struct {
	todoService service.TodoService
}

// NewTodoHandler creates a new todo handler.
func NewTodoHandler(todoService service.TodoService) *TodoHandler {
	return &TodoHandler{todoService: todoService}
}

// CreateTodoRequest represents a todo creation request.
type CreateTodoRequest struct {
	Text string `json:"text" validate:"required"`
}

// UpdateTodoRequest represents a partial todo update. Absent fields are left
// unchanged.
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// List godoc
// @Summary List the user's todos, newest first
// @Tags todos
// @Produce json
// @Security SessionAuth
// @Success 200 {array} model.Todo
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos [get]
func (h *TodoHandler) List(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	todos, err := h.todoService.List(c.Request().Context(), user.ID)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, todos)
}

// Create godoc
// @Summary Create a todo
// @Tags todos
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param request body CreateTodoRequest true "Todo text"
// @Success 201 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /todos [post]
func (h *TodoHandler) Create(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	todo, err := h.todoService.Create(c.Request().Context(), user.ID, req.Text)
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, todo)
}

// Update godoc
// @Summary Patch a todo's text or completion flag
// @Tags todos
// @Accept json
// @Produce json
// @Security SessionAuth
// @Param id path string true "Todo ID"
// @Param request body UpdateTodoRequest true "Fields to change"
// @Success 200 {object} model.Todo
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id} [patch]
func (h *TodoHandler) Update(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid todo ID",
			Code:  "INVALID_UUID",
		})
	}

	var req UpdateTodoRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	todo, err := h.todoService.Update(c.Request().Context(), user.ID, id, service.TodoPatch{
		Text:      req.Text,
		Completed: req.Completed,
	})
	if err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, todo)
}

// Delete godoc
// @Summary Delete a todo
// @Tags todos
// @Security SessionAuth
// @Param id path string true "Todo ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /todos/{id} [delete]
func (h *TodoHandler) Delete(c echo.Context) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, apperrors.ErrorResponse{
			Error: "invalid todo ID",
			Code:  "INVALID_UUID",
		})
	}

	if err := h.todoService.Delete(c.Request().Context(), user.ID, id); err != nil {
		httpErr := apperrors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"todoapp/internal/auth"
	apperrors "todoapp/internal/errors"
	"todoapp/internal/model"
)

// MockAuthService is a mock implementation of service.AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Signup(ctx context.Context, email, password, name string) (*model.User, error) {
	args := m.Called(ctx, email, password, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*model.User), args.Error(2)
}

func (m *MockAuthService) ValidateSession(ctx context.Context, token string) (*model.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) UpdateProfile(ctx context.Context, id uint, name string) (*model.User, error) {
	args := m.Called(ctx, id, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

type testValidator struct {
	validator *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = &testValidator{validator: validator.New()}
	e.HTTPErrorHandler = renderErrorResponse
	return e
}

// renderErrorResponse mirrors the router's error handler so handler tests see
// the wire format clients get.
func renderErrorResponse(err error, c echo.Context) {
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
			body = apperrors.ErrorResponse{Error: msg, Code: http.StatusText(he.Code)}
		}
	}
	_ = c.JSON(status, body)
}

func TestUserHandler_Signup(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockAuthService)
		expectedStatus int
	}{
		{
			name: "valid signup",
			body: `{"email":"a@x.com","password":"secret123","name":"Ada"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Signup", mock.Anything, "a@x.com", "secret123", "Ada").
					Return(&model.User{ID: 1, Email: "a@x.com", Name: "Ada"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "malformed email",
			body:           `{"email":"not-an-email","password":"secret123","name":"Ada"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "weak password",
			body:           `{"email":"a@x.com","password":"short","name":"Ada"}`,
			setupMock:      func(m *MockAuthService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "duplicate email",
			body: `{"email":"a@x.com","password":"secret123","name":"Ada"}`,
			setupMock: func(m *MockAuthService) {
				m.On("Signup", mock.Anything, "a@x.com", "secret123", "Ada").
					Return(nil, apperrors.ErrEmailTaken)
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(MockAuthService)
			tt.setupMock(mockSvc)

			e := newTestEcho()
			h := NewUserHandler(mockSvc, time.Hour, false)
			e.POST("/api/v1/users/signup", h.Signup)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/users/signup", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			mockSvc.AssertExpectations(t)
		})
	}
}

func TestUserHandler_Login(t *testing.T) {
	t.Run("success sets session cookie", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "a@x.com", "secret123").
			Return("the-token", &model.User{ID: 1, Email: "a@x.com"}, nil)

		e := newTestEcho()
		h := NewUserHandler(mockSvc, time.Hour, false)
		e.POST("/api/v1/users/login", h.Login)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
			strings.NewReader(`{"email":"a@x.com","password":"secret123"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"success":true`)

		cookies := rec.Result().Cookies()
		var sessionCookie *http.Cookie
		for _, c := range cookies {
			if c.Name == auth.SessionCookieName {
				sessionCookie = c
			}
		}
		if assert.NotNil(t, sessionCookie, "login must set the session cookie") {
			assert.Equal(t, "the-token", sessionCookie.Value)
			assert.True(t, sessionCookie.HttpOnly)
		}
	})

	t.Run("invalid credentials is 401 without cookie", func(t *testing.T) {
		mockSvc := new(MockAuthService)
		mockSvc.On("Login", mock.Anything, "a@x.com", "wrong").
			Return("", nil, apperrors.ErrInvalidCredentials)

		e := newTestEcho()
		h := NewUserHandler(mockSvc, time.Hour, false)
		e.POST("/api/v1/users/login", h.Login)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/users/login",
			strings.NewReader(`{"email":"a@x.com","password":"wrong"}`))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, rec.Result().Cookies())
		assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")
	})
}

func TestUserHandler_Logout(t *testing.T) {
	mockSvc := new(MockAuthService)
	mockSvc.On("Logout", mock.Anything, "the-token").Return(nil)

	e := newTestEcho()
	h := NewUserHandler(mockSvc, time.Hour, false)
	e.POST("/api/v1/users/logout", h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users/logout", nil)
	req.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "the-token"})
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// The session cookie must be cleared.
	var cleared bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared, "logout must clear the session cookie")
	mockSvc.AssertExpectations(t)
}

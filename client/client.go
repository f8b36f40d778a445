package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
)

// User mirrors the API's user payload.
type User struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Todo mirrors the API's todo payload.
type Todo struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoPatch is a partial todo update; nil fields are not sent.
type TodoPatch struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Client calls the todo API and keeps the session cookie in a jar, mirroring
// how a browser holds the HTTP-only session cookie. All session state
// transitions go through the store's reducer.
type Client struct {
	baseURL string
	http    *http.Client
	store   *Store
}

// New creates a client for the given API base URL, e.g.
// "http://localhost:8080/api/v1".
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Jar:     jar,
			Timeout: 15 * time.Second,
		},
		store: NewStore(),
	}, nil
}

// State returns a snapshot of the session state.
func (c *Client) State() State {
	return c.store.State()
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type signupResponse struct {
	User *User `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// Signup registers a new user. It does not log the user in.
func (c *Client) Signup(ctx context.Context, email, password, name string) (*User, error) {
	c.store.Dispatch(Action{Type: ActionRequestStarted})

	var resp signupResponse
	err := c.do(ctx, http.MethodPost, "/users/signup", signupRequest{Email: email, Password: password, Name: name}, &resp)
	if err != nil {
		c.dispatchError(err)
		return nil, err
	}

	c.store.Dispatch(Action{Type: ActionRequestDone})
	return resp.User, nil
}

// Login authenticates and transitions the store to authenticated on success.
// The session cookie from the response is retained by the jar.
func (c *Client) Login(ctx context.Context, email, password string) (*User, error) {
	c.store.Dispatch(Action{Type: ActionLoginStarted})

	var resp loginResponse
	err := c.do(ctx, http.MethodPost, "/users/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		c.store.Dispatch(Action{Type: ActionLoginFailed, Err: errMessage(err)})
		return nil, err
	}

	c.store.Dispatch(Action{Type: ActionLoginSucceeded, User: resp.User})
	return resp.User, nil
}

// Logout invalidates the server session and resets the store.
func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/users/logout", nil, nil)
	// Reset local state regardless: a 401 here means the session was
	// already gone.
	c.store.Dispatch(Action{Type: ActionLoggedOut})
	if err != nil {
		if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
			return nil
		}
		return err
	}
	return nil
}

// Me fetches the authenticated user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var user User
	if err := c.guarded(ctx, http.MethodGet, "/users/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Todos lists the user's todos, newest first.
func (c *Client) Todos(ctx context.Context) ([]Todo, error) {
	var todos []Todo
	if err := c.guarded(ctx, http.MethodGet, "/todos", nil, &todos); err != nil {
		return nil, err
	}
	return todos, nil
}

// CreateTodo creates a todo for the authenticated user.
func (c *Client) CreateTodo(ctx context.Context, text string) (*Todo, error) {
	var todo Todo
	body := map[string]string{"text": text}
	if err := c.guarded(ctx, http.MethodPost, "/todos", body, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// UpdateTodo patches a todo.
func (c *Client) UpdateTodo(ctx context.Context, id string, patch TodoPatch) (*Todo, error) {
	var todo Todo
	if err := c.guarded(ctx, http.MethodPatch, "/todos/"+id, patch, &todo); err != nil {
		return nil, err
	}
	return &todo, nil
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.guarded(ctx, http.MethodDelete, "/todos/"+id, nil, nil)
}

// guarded wraps do with loading-flag bookkeeping for authenticated calls.
// The loading flag is always cleared, whatever the outcome.
func (c *Client) guarded(ctx context.Context, method, path string, body, out interface{}) error {
	c.store.Dispatch(Action{Type: ActionRequestStarted})
	err := c.do(ctx, method, path, body, out)
	if err != nil {
		c.dispatchError(err)
		return err
	}
	c.store.Dispatch(Action{Type: ActionRequestDone})
	return nil
}

// dispatchError routes a failure into the reducer; a 401 drops the session.
func (c *Client) dispatchError(err error) {
	if apiErr, ok := err.(*APIError); ok && apiErr.Status == http.StatusUnauthorized {
		c.store.Dispatch(Action{Type: ActionUnauthorized, Err: apiErr.Message})
		return
	}
	c.store.Dispatch(Action{Type: ActionRequestFailed, Err: errMessage(err)})
}

func errMessage(err error) string {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Message
	}
	return err.Error()
}

// errorBody matches the server's {error, code} shape, tolerating a plain
// {message} as well.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var eb errorBody
		if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil {
			if eb.Error != "" {
				apiErr.Message = eb.Error
			} else if eb.Message != "" {
				apiErr.Message = eb.Message
			}
			apiErr.Code = eb.Code
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Package client provides an HTTP client for the todo API together with an
// explicit session state machine. State changes flow through a single pure
// reducer with defined action types; nothing mutates state from the outside.
package client

// Status is the session lifecycle state.
type Status string

const (
	// StatusAnonymous means no authenticated user.
	StatusAnonymous Status = "anonymous"
	// StatusAuthenticating means a login call is in flight.
	StatusAuthenticating Status = "authenticating"
	// StatusAuthenticated means a user is logged in.
	StatusAuthenticated Status = "authenticated"
)

// ActionType enumerates the events the reducer understands.
type ActionType string

const (
	ActionLoginStarted   ActionType = "login/started"
	ActionLoginSucceeded ActionType = "login/succeeded"
	ActionLoginFailed    ActionType = "login/failed"
	ActionLoggedOut      ActionType = "logged_out"
	ActionUnauthorized   ActionType = "unauthorized"
	ActionRequestStarted ActionType = "request/started"
	ActionRequestDone    ActionType = "request/done"
	ActionRequestFailed  ActionType = "request/failed"
)

// Action is a dispatched event. User accompanies login success; Err
// accompanies failures.
type Action struct {
	Type ActionType
	User *User
	Err  string
}

// State is the immutable session state. Loading tracks in-flight calls; Err
// holds the last error message for display.
type State struct {
	Status  Status
	User    *User
	Loading bool
	Err     string
}

// NewState returns the initial anonymous state.
func NewState() State {
	return State{Status: StatusAnonymous}
}

// Reduce returns the next state for an action. It never mutates its input,
// and a failed request never corrupts the committed user: only login
// success, logout and a 401 may change Status or User.
func Reduce(s State, a Action) State {
	switch a.Type {
	case ActionLoginStarted:
		s.Status = StatusAuthenticating
		s.Loading = true
		s.Err = ""
	case ActionLoginSucceeded:
		s.Status = StatusAuthenticated
		s.User = a.User
		s.Loading = false
		s.Err = ""
	case ActionLoginFailed:
		s.Status = StatusAnonymous
		s.User = nil
		s.Loading = false
		s.Err = a.Err
	case ActionLoggedOut, ActionUnauthorized:
		s.Status = StatusAnonymous
		s.User = nil
		s.Loading = false
		if a.Type == ActionUnauthorized {
			s.Err = a.Err
		}
	case ActionRequestStarted:
		s.Loading = true
		s.Err = ""
	case ActionRequestDone:
		s.Loading = false
	case ActionRequestFailed:
		s.Loading = false
		s.Err = a.Err
	}
	return s
}

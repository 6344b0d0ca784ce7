package session

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// AuthAPI is the backend transport boundary. Implementations talk to the
// /auth endpoints; the Manager never builds HTTP requests itself.
type AuthAPI interface {
	Login(ctx context.Context, payload LoginRequest) (*TokenPair, error)
	Register(ctx context.Context, payload RegisterRequest) (*RegisterResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
}

// CredentialStore is the durable holder for the credential pair and the
// cached identity snapshot. Absence is a normal logged-out condition, never
// an error: Load returns (nil, nil) on an empty store and Clear on an empty
// store is a no-op. Save fully overwrites any prior value.
type CredentialStore interface {
	Save(ctx context.Context, creds Credentials, identity Identity) error
	Load(ctx context.Context) (*Snapshot, error)
	Clear(ctx context.Context) error
}

// Navigator is invoked by the Manager after login/logout so the hosting UI
// can switch routes. The session core triggers navigation but does not
// implement it.
type Navigator interface {
	NavigateTo(route string)
}

// Config holds session client options
type Config interface {
	GetBaseURL() string
	GetRequestTimeout() int
	GetLoginRoute() string
	GetLandingRoute() string
	GetStoragePath() string
}

type noopNavigator struct{}

func (noopNavigator) NavigateTo(string) {}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SESSION "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SESSION "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SESSION "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SESSION "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}

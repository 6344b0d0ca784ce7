package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// Identity is the claim set derived from the access token. It is never a
// source of truth on its own: it must always be reconstructable from the
// token, and the stored snapshot only exists to hydrate the session before
// the first network round-trip.
type Identity struct {
	UserID         int64    `json:"user_id"`
	Email          string   `json:"email"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	OrganizationID int64    `json:"organization_id"`
	Role           UserRole `json:"role"`
}

// IsAdmin reports whether this identity administers its organization.
func (i Identity) IsAdmin() bool {
	return RoleIsAdmin(i.Role)
}

// IsManager reports whether this identity can manage projects.
func (i Identity) IsManager() bool {
	return RoleIsManager(i.Role)
}

// Credentials is the access/refresh pair. Access is short-lived and carries
// the identity claims; refresh is opaque to the client and only ever sent
// back to /auth/refresh.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Snapshot is what the CredentialStore holds: the pair plus the cached
// identity used for optimistic startup hydration.
type Snapshot struct {
	Credentials Credentials `json:"credentials"`
	Identity    Identity    `json:"identity"`
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
	if err != nil {
		return wrapValidationError(err)
	}
	return nil
}

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	Email          string   `json:"email"`
	Password       string   `json:"password"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	OrganizationID int64    `json:"organization_id,omitempty"`
	Role           UserRole `json:"role,omitempty"`
}

func (r RegisterRequest) Validate() error {
	err := validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.FirstName, validation.Length(0, 100)),
		validation.Field(&r.LastName, validation.Length(0, 100)),
	)
	if err != nil {
		return wrapValidationError(err)
	}
	return nil
}

// TokenPair is the backend response for login and refresh. Refresh responses
// carry an empty RefreshToken unless the backend rotates it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	TokenType    string `json:"token_type,omitempty"`
}

// RegisterResult is the backend response for registration: a token pair plus
// the identity/organization linkage created for the new account.
type RegisterResult struct {
	TokenPair
	UserID         int64 `json:"user_id"`
	OrganizationID int64 `json:"organization_id"`
}

func wrapValidationError(err error) error {
	return errors.Wrap(err, ErrValidationFailed.Category, err.Error()).
		WithTextCode(ErrValidationFailed.TextCode).
		WithCode(errors.CodeBadRequest)
}

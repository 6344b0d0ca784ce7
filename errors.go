package session

import (
	"github.com/goliatone/go-errors"
)

const (
	TextCodeInvalidCredentials  = "auth_invalid_credentials"
	TextCodeValidationFailed    = "auth_validation_failed"
	TextCodeMalformedToken      = "auth_malformed_token"
	TextCodeNoRefreshCredential = "auth_no_refresh_credential"
	TextCodeRenewalRejected     = "auth_renewal_rejected"
)

// ErrInvalidCredentials is returned when the backend rejects a login
// attempt. Recovered locally: no stored state is touched.
var ErrInvalidCredentials = errors.New("invalid email or password", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrValidationFailed is returned when a payload is rejected, either by
// local validation or by the backend (field-level detail joined into the
// message).
var ErrValidationFailed = errors.New("payload failed validation", errors.CategoryValidation).
	WithTextCode(TextCodeValidationFailed).
	WithCode(errors.CodeBadRequest)

// ErrMalformedToken is returned when an access token is not structurally
// decodable (wrong segment count, undecodable payload, missing required
// claims). Fatal for the operation that produced the token.
var ErrMalformedToken = errors.New("access token is malformed", errors.CategoryBadInput).
	WithTextCode(TextCodeMalformedToken).
	WithCode(errors.CodeBadRequest)

// ErrNoRefreshCredential is returned when renewal is attempted with nothing
// to renew. The backend is never contacted in that case.
var ErrNoRefreshCredential = errors.New("no refresh credential stored", errors.CategoryAuth).
	WithTextCode(TextCodeNoRefreshCredential).
	WithCode(errors.CodeUnauthorized)

// ErrRenewalRejected is returned when the backend refuses the refresh
// credential. The session is over; the caller must re-authenticate.
var ErrRenewalRejected = errors.New("refresh credential rejected", errors.CategoryAuth).
	WithTextCode(TextCodeRenewalRejected).
	WithCode(errors.CodeUnauthorized)

// IsInvalidCredentialsError reports whether err is a rejected login.
func IsInvalidCredentialsError(err error) bool {
	return hasTextCode(err, TextCodeInvalidCredentials)
}

// IsValidationError reports whether err is a payload validation failure.
func IsValidationError(err error) bool {
	return hasTextCode(err, TextCodeValidationFailed)
}

// IsMalformedTokenError reports whether err came from a structurally
// undecodable access token.
func IsMalformedTokenError(err error) bool {
	return hasTextCode(err, TextCodeMalformedToken)
}

// IsRenewalError reports whether err ended a session during renewal, for
// either of the terminal renewal failures.
func IsRenewalError(err error) bool {
	return hasTextCode(err, TextCodeNoRefreshCredential) ||
		hasTextCode(err, TextCodeRenewalRejected)
}

func hasTextCode(err error, code string) bool {
	if err == nil {
		return false
	}
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == code
	}
	return false
}

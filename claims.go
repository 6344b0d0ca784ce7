package session

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// AccessClaims is the decoded payload of an access token as issued by the
// backend's /auth endpoints.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID         int64    `json:"user_id,omitempty"`
	Email          string   `json:"email,omitempty"`
	FirstName      string   `json:"first_name,omitempty"`
	LastName       string   `json:"last_name,omitempty"`
	OrganizationID int64    `json:"organization_id,omitempty"`
	Role           UserRole `json:"role,omitempty"`
}

// Identity builds the Identity carried by the claims. first/last name are
// optional and default to empty.
func (c *AccessClaims) Identity() Identity {
	return Identity{
		UserID:         c.UserID,
		Email:          c.Email,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		OrganizationID: c.OrganizationID,
		Role:           c.Role,
	}
}

// DecodeAccessToken extracts the identity claim set from an access token
// without contacting the backend. Decoding is structural only: the signature
// is NOT verified client-side, the token is treated as a carrier of claims
// already trusted because they came from a trusted auth response.
//
// Returns ErrMalformedToken when the token has the wrong segment count, an
// undecodable payload, or is missing any of the required claims (user_id,
// email, organization_id, role). A role outside the closed enumeration
// counts as missing: no partial identity is ever substituted.
func DecodeAccessToken(tokenString string) (*Identity, error) {
	parser := jwt.NewParser()

	claims := &AccessClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Wrap(err, ErrMalformedToken.Category, ErrMalformedToken.Message).
			WithTextCode(ErrMalformedToken.TextCode)
	}

	if err := validateRequiredClaims(claims); err != nil {
		return nil, err
	}

	identity := claims.Identity()
	return &identity, nil
}

func validateRequiredClaims(claims *AccessClaims) error {
	missing := []string{}
	if claims.UserID == 0 {
		missing = append(missing, "user_id")
	}
	if claims.Email == "" {
		missing = append(missing, "email")
	}
	if claims.OrganizationID == 0 {
		missing = append(missing, "organization_id")
	}
	if _, ok := ParseRole(claims.Role); !ok {
		missing = append(missing, "role")
	}

	if len(missing) > 0 {
		return missingClaimsError(missing)
	}

	return nil
}

// missingClaimsError clones the sentinel before attaching metadata: the
// builder methods mutate their receiver, so stamping ErrMalformedToken
// directly would leak one decode failure's claims into every other error.
func missingClaimsError(missing []string) error {
	clone := ErrMalformedToken.Clone()
	if clone == nil {
		return ErrMalformedToken
	}
	clone.Source = ErrMalformedToken
	return clone.WithMetadata(map[string]any{"missing_claims": missing})
}

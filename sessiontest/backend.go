// Package sessiontest provides an in-process fake of the Planora auth
// backend for tests: real HS256 token pairs, bcrypt-checked fixture users
// and the same request/response shapes as the production endpoints. The
// fake is exercised through fiber's app.Test, so no sockets are opened.
package sessiontest

import (
	"net/http"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	session "github.com/planora/go-session"
)

const (
	defaultSigningKey = "sessiontest-signing-key"
	refreshTokenType  = "refresh"
)

// AccessClaims mirrors the claim schema minted by the backend.
type AccessClaims struct {
	jwt.RegisteredClaims
	UserID         int64  `json:"user_id,omitempty"`
	Email          string `json:"email,omitempty"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	OrganizationID int64  `json:"organization_id,omitempty"`
	Role           string `json:"role,omitempty"`
}

type refreshClaims struct {
	jwt.RegisteredClaims
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type,omitempty"`
}

type fixtureUser struct {
	identity     session.Identity
	passwordHash string
}

// Backend is the fake auth backend. Zero or more fixture users are
// registered up front; registration adds more at runtime.
type Backend struct {
	app        *fiber.App
	signingKey []byte
	accessTTL  time.Duration
	refreshTTL time.Duration

	mu            sync.Mutex
	users         map[string]*fixtureUser
	nextUserID    int64
	nextOrgID     int64
	refreshBroken bool
	calls         map[string]int
}

// Option customizes the fake backend.
type Option func(*Backend)

// WithSigningKey overrides the HS256 signing key.
func WithSigningKey(key string) Option {
	return func(b *Backend) {
		b.signingKey = []byte(key)
	}
}

// WithUser seeds a fixture user that can log in with password.
func WithUser(password string, identity session.Identity) Option {
	return func(b *Backend) {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		if err != nil {
			panic("sessiontest: failed to hash fixture password: " + err.Error())
		}
		b.users[identity.Email] = &fixtureUser{
			identity:     identity,
			passwordHash: string(hash),
		}
		if identity.UserID >= b.nextUserID {
			b.nextUserID = identity.UserID + 1
		}
		if identity.OrganizationID >= b.nextOrgID {
			b.nextOrgID = identity.OrganizationID + 1
		}
	}
}

// New builds the fake backend with its three auth routes mounted.
func New(opts ...Option) *Backend {
	b := &Backend{
		app:        fiber.New(fiber.Config{DisableStartupMessage: true}),
		signingKey: []byte(defaultSigningKey),
		accessTTL:  15 * time.Minute,
		refreshTTL: 24 * time.Hour,
		users:      map[string]*fixtureUser{},
		nextUserID: 1,
		nextOrgID:  1,
		calls:      map[string]int{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	b.app.Post("/auth/login", b.handleLogin)
	b.app.Post("/auth/register", b.handleRegister)
	b.app.Post("/auth/refresh", b.handleRefresh)

	return b
}

// Doer adapts the fiber app to the session client's Doer so requests run
// in-process.
func (b *Backend) Doer() session.Doer {
	return doerFunc(func(req *http.Request) (*http.Response, error) {
		return b.app.Test(req, -1)
	})
}

type doerFunc func(*http.Request) (*http.Response, error)

func (d doerFunc) Do(req *http.Request) (*http.Response, error) {
	return d(req)
}

// BreakRefresh makes every subsequent refresh attempt fail with 401, as a
// revoked or expired refresh credential would.
func (b *Backend) BreakRefresh() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refreshBroken = true
}

// SetRole changes a fixture user's role, so the next minted access token
// carries it. Simulates a role change picked up through renewal.
func (b *Backend) SetRole(email string, role string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if user, ok := b.users[email]; ok {
		user.identity.Role = role
	}
}

// Calls returns how many requests hit the given path.
func (b *Backend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

func (b *Backend) track(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls[path]++
}

func (b *Backend) handleLogin(c *fiber.Ctx) error {
	b.track("/auth/login")

	payload := session.LoginRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return detailError(c, fiber.StatusBadRequest, "invalid request body")
	}

	b.mu.Lock()
	user, ok := b.users[payload.Email]
	b.mu.Unlock()

	if !ok {
		return detailError(c, fiber.StatusUnauthorized, "Incorrect email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.passwordHash), []byte(payload.Password)); err != nil {
		return detailError(c, fiber.StatusUnauthorized, "Incorrect email or password")
	}

	pair, err := b.mintPair(user.identity)
	if err != nil {
		return detailError(c, fiber.StatusInternalServerError, "failed to issue tokens")
	}

	return c.JSON(fiber.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    "bearer",
	})
}

func (b *Backend) handleRegister(c *fiber.Ctx) error {
	b.track("/auth/register")

	payload := session.RegisterRequest{}
	if err := c.BodyParser(&payload); err != nil {
		return detailError(c, fiber.StatusBadRequest, "invalid request body")
	}

	fieldErrors := []fiber.Map{}
	if payload.Email == "" {
		fieldErrors = append(fieldErrors, fiber.Map{"loc": []string{"body", "email"}, "msg": "field required"})
	}
	if len(payload.Password) < 8 {
		fieldErrors = append(fieldErrors, fiber.Map{"loc": []string{"body", "password"}, "msg": "ensure this value has at least 8 characters"})
	}
	if len(fieldErrors) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"detail": fieldErrors})
	}

	b.mu.Lock()
	if _, exists := b.users[payload.Email]; exists {
		b.mu.Unlock()
		return detailError(c, fiber.StatusBadRequest, "Email already registered")
	}

	role := payload.Role
	if role == "" {
		role = session.RoleOrgAdmin
	}

	orgID := payload.OrganizationID
	if orgID == 0 {
		orgID = b.nextOrgID
		b.nextOrgID++
	}

	identity := session.Identity{
		UserID:         b.nextUserID,
		Email:          payload.Email,
		FirstName:      payload.FirstName,
		LastName:       payload.LastName,
		OrganizationID: orgID,
		Role:           role,
	}
	b.nextUserID++

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.MinCost)
	if err != nil {
		b.mu.Unlock()
		return detailError(c, fiber.StatusInternalServerError, "failed to hash password")
	}

	b.users[payload.Email] = &fixtureUser{
		identity:     identity,
		passwordHash: string(hash),
	}
	b.mu.Unlock()

	pair, err := b.mintPair(identity)
	if err != nil {
		return detailError(c, fiber.StatusInternalServerError, "failed to issue tokens")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"access_token":    pair.AccessToken,
		"refresh_token":   pair.RefreshToken,
		"token_type":      "bearer",
		"user_id":         identity.UserID,
		"organization_id": identity.OrganizationID,
	})
}

func (b *Backend) handleRefresh(c *fiber.Ctx) error {
	b.track("/auth/refresh")

	payload := struct {
		RefreshToken string `json:"refresh_token"`
	}{}
	if err := c.BodyParser(&payload); err != nil {
		return detailError(c, fiber.StatusBadRequest, "invalid request body")
	}

	b.mu.Lock()
	broken := b.refreshBroken
	b.mu.Unlock()

	if broken {
		return detailError(c, fiber.StatusUnauthorized, "Refresh token revoked")
	}

	claims := &refreshClaims{}
	token, err := jwt.ParseWithClaims(payload.RefreshToken, claims, func(t *jwt.Token) (any, error) {
		return b.signingKey, nil
	})
	if err != nil || !token.Valid || claims.TokenType != refreshTokenType {
		return detailError(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	b.mu.Lock()
	user, ok := b.users[claims.Email]
	b.mu.Unlock()
	if !ok {
		return detailError(c, fiber.StatusUnauthorized, "Invalid refresh token")
	}

	access, err := MintAccessToken(string(b.signingKey), user.identity, b.accessTTL)
	if err != nil {
		return detailError(c, fiber.StatusInternalServerError, "failed to issue token")
	}

	return c.JSON(fiber.Map{
		"access_token": access,
		"token_type":   "bearer",
	})
}

func (b *Backend) mintPair(identity session.Identity) (session.Credentials, error) {
	access, err := MintAccessToken(string(b.signingKey), identity, b.accessTTL)
	if err != nil {
		return session.Credentials{}, err
	}

	now := time.Now()
	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &refreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(b.refreshTTL)),
			ID:        uuid.New().String(),
		},
		Email:     identity.Email,
		TokenType: refreshTokenType,
	})

	signedRefresh, err := refresh.SignedString(b.signingKey)
	if err != nil {
		return session.Credentials{}, err
	}

	return session.Credentials{AccessToken: access, RefreshToken: signedRefresh}, nil
}

// MintAccessToken signs an HS256 access token carrying identity's claim set.
// Exported so decoder tests can build structurally valid tokens.
func MintAccessToken(signingKey string, identity session.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		UserID:         identity.UserID,
		Email:          identity.Email,
		FirstName:      identity.FirstName,
		LastName:       identity.LastName,
		OrganizationID: identity.OrganizationID,
		Role:           identity.Role,
	})

	return token.SignedString([]byte(signingKey))
}

func detailError(c *fiber.Ctx, status int, detail string) error {
	return c.Status(status).JSON(fiber.Map{"detail": detail})
}

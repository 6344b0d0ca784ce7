package session_test

import (
	"context"
	"testing"

	session "github.com/planora/go-session"
	"github.com/planora/go-session/sessiontest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBackend() *sessiontest.Backend {
	return sessiontest.New(
		sessiontest.WithUser("secret123", session.Identity{
			UserID:         7,
			Email:          "a@b.com",
			FirstName:      "Ada",
			LastName:       "Lovelace",
			OrganizationID: 3,
			Role:           session.RoleProjectManager,
		}),
	)
}

func testClient(backend *sessiontest.Backend) *session.APIClient {
	cfg := session.BaseConfig{BaseURL: "http://planora.test"}
	return session.NewAPIClient(cfg).WithDoer(backend.Doer())
}

func TestAPIClientLogin(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	pair, err := client.Login(ctx, session.LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	identity, err := session.DecodeAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.UserID)
	assert.Equal(t, "a@b.com", identity.Email)
	assert.Equal(t, int64(3), identity.OrganizationID)
	assert.Equal(t, session.RoleProjectManager, identity.Role)
}

func TestAPIClientLoginRejected(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	pair, err := client.Login(ctx, session.LoginRequest{Email: "a@b.com", Password: "wrong-password"})
	assert.Nil(t, pair)
	assert.True(t, session.IsInvalidCredentialsError(err))
	// The backend-supplied message is surfaced to the user.
	assert.Contains(t, err.Error(), "Incorrect email or password")
}

func TestAPIClientRegister(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	result, err := client.Register(ctx, session.RegisterRequest{
		Email:     "new@b.com",
		Password:  "longenough",
		FirstName: "New",
		LastName:  "User",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	assert.NotZero(t, result.UserID)
	assert.NotZero(t, result.OrganizationID)

	identity, err := session.DecodeAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.UserID, identity.UserID)
	assert.Equal(t, result.OrganizationID, identity.OrganizationID)
}

func TestAPIClientRegisterFieldErrorsJoined(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	result, err := client.Register(ctx, session.RegisterRequest{Password: "short"})
	assert.Nil(t, result)
	assert.True(t, session.IsValidationError(err))
	assert.Contains(t, err.Error(), "field required")
	assert.Contains(t, err.Error(), "at least 8 characters")
}

func TestAPIClientRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	_, err := client.Register(ctx, session.RegisterRequest{Email: "a@b.com", Password: "longenough"})
	assert.True(t, session.IsValidationError(err))
	assert.Contains(t, err.Error(), "already registered")
}

func TestAPIClientRefresh(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	pair, err := client.Login(ctx, session.LoginRequest{Email: "a@b.com", Password: "secret123"})
	require.NoError(t, err)

	renewed, err := client.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, renewed.AccessToken)

	identity, err := session.DecodeAccessToken(renewed.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", identity.Email)
}

func TestAPIClientRefreshRejected(t *testing.T) {
	ctx := context.Background()
	client := testClient(testBackend())

	renewed, err := client.Refresh(ctx, "bogus-refresh-token")
	assert.Nil(t, renewed)
	assert.True(t, session.IsRenewalError(err))
}

// Full stack: Manager -> APIClient -> fake backend, no mocks.
func TestManagerAgainstBackend(t *testing.T) {
	ctx := context.Background()
	backend := testBackend()

	store := session.NewMemoryStore()
	navigator := &recordingNavigator{}
	manager := session.NewManager(testClient(backend), store, session.BaseConfig{}).
		WithNavigator(navigator)

	// Startup with an empty store publishes Unauthenticated without any
	// network traffic.
	state := manager.Hydrate(ctx)
	assert.Equal(t, session.StatusUnauthenticated, state.Status)
	assert.Zero(t, backend.Calls("/auth/login"))
	assert.Zero(t, backend.Calls("/auth/refresh"))

	identity, err := manager.Login(ctx, "a@b.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(7), identity.UserID)
	assert.True(t, manager.IsManager())
	assert.False(t, manager.IsAdmin())

	// Renewal after a server-side promotion republishes the new role.
	backend.SetRole("a@b.com", session.RoleOrgAdmin)
	_, err = manager.RenewAccess(ctx)
	require.NoError(t, err)
	assert.True(t, manager.IsAdmin())

	// A revoked refresh credential ends the session.
	backend.BreakRefresh()
	_, err = manager.RenewAccess(ctx)
	assert.True(t, session.IsRenewalError(err))
	assert.False(t, manager.IsAuthenticated())

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	assert.Equal(t, []string{"/dashboard", "/login"}, navigator.routes)
}

// A second manager sharing the store hydrates from the persisted snapshot
// the way a restarted process would.
func TestManagerHydratesAcrossRestart(t *testing.T) {
	ctx := context.Background()
	backend := testBackend()
	store := session.NewMemoryStore()

	first := session.NewManager(testClient(backend), store, session.BaseConfig{})
	first.Hydrate(ctx)
	_, err := first.Login(ctx, "a@b.com", "secret123")
	require.NoError(t, err)

	loginCalls := backend.Calls("/auth/login")

	second := session.NewManager(testClient(backend), store, session.BaseConfig{})
	state := second.Hydrate(ctx)
	require.Equal(t, session.StatusAuthenticated, state.Status)
	assert.Equal(t, "a@b.com", state.Identity.Email)

	// Hydration is optimistic: the cached snapshot is used, not the network.
	assert.Equal(t, loginCalls, backend.Calls("/auth/login"))
	assert.Zero(t, backend.Calls("/auth/refresh"))
}

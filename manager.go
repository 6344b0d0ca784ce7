package session

import (
	"context"
)

// Manager coordinates the backend auth endpoints, the credential store and
// the session state. It is the only component that writes either one, which
// keeps the stored credentials and the published state from diverging. The
// core does not deduplicate concurrent credential mutations; hosts are
// expected to debounce so at most one is in flight per session.
type Manager struct {
	api          AuthAPI
	store        CredentialStore
	state        *SessionState
	navigator    Navigator
	logger       Logger
	loginRoute   string
	landingRoute string
}

// NewManager returns a Manager publishing into a fresh SessionState.
func NewManager(api AuthAPI, store CredentialStore, cfg Config) *Manager {
	return &Manager{
		api:          api,
		store:        store,
		state:        NewSessionState(),
		navigator:    noopNavigator{},
		logger:       defLogger{},
		loginRoute:   cfg.GetLoginRoute(),
		landingRoute: cfg.GetLandingRoute(),
	}
}

func (m *Manager) WithLogger(logger Logger) *Manager {
	if logger != nil {
		m.logger = logger
	}
	return m
}

// WithNavigator sets the route trigger invoked after login and logout.
func (m *Manager) WithNavigator(navigator Navigator) *Manager {
	if navigator != nil {
		m.navigator = navigator
	}
	return m
}

// State exposes the session state for reads and subscriptions. UI code must
// never call Set on it.
func (m *Manager) State() *SessionState {
	return m.state
}

// Hydrate publishes the startup state from the credential store, before any
// network round-trip: a stored pair publishes the cached identity
// optimistically, an empty store publishes Unauthenticated. An access token
// without its backing refresh token is invalid and forces logout. Hydrate
// runs once per process start; later calls leave the state untouched.
func (m *Manager) Hydrate(ctx context.Context) State {
	if current := m.state.Get(); current.Status != StatusUninitialized {
		return current
	}

	snap, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error("Hydrate failed to read credential store: %s", err)
		m.state.Set(Unauthenticated())
		return m.state.Get()
	}

	if snap == nil {
		m.state.Set(Unauthenticated())
		return m.state.Get()
	}

	if snap.Credentials.RefreshToken == "" {
		m.logger.Warn("Hydrate found access credential without refresh credential, forcing logout")
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Error("Hydrate failed to clear credential store: %s", err)
		}
		m.state.Set(Unauthenticated())
		return m.state.Get()
	}

	identity := snap.Identity
	if identity.UserID == 0 {
		// Snapshot is missing; the identity must be reconstructable from
		// the access credential or there is nothing to publish.
		decoded, err := DecodeAccessToken(snap.Credentials.AccessToken)
		if err != nil {
			m.logger.Warn("Hydrate could not rebuild identity from stored credentials: %s", err)
			if err := m.store.Clear(ctx); err != nil {
				m.logger.Error("Hydrate failed to clear credential store: %s", err)
			}
			m.state.Set(Unauthenticated())
			return m.state.Get()
		}
		identity = *decoded
	}

	m.state.Set(Authenticated(identity))
	return m.state.Get()
}

// Login authenticates against the backend and, on success, persists the
// credential pair, publishes the decoded identity and navigates to the
// landing route. Failure is side-effect free: neither the store nor the
// session state changes.
func (m *Manager) Login(ctx context.Context, email, password string) (*Identity, error) {
	payload := LoginRequest{Email: email, Password: password}
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	pair, err := m.api.Login(ctx, payload)
	if err != nil {
		m.logger.Error("Login rejected: %s", err)
		return nil, err
	}

	identity, err := m.establish(ctx, *pair)
	if err != nil {
		return nil, err
	}

	m.navigator.NavigateTo(m.landingRoute)
	return identity, nil
}

// Register creates an account and organization linkage on the backend, then
// establishes the session exactly like Login. The decoded access token stays
// the identity source of truth; the response linkage is returned alongside.
func (m *Manager) Register(ctx context.Context, payload RegisterRequest) (*Identity, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}

	result, err := m.api.Register(ctx, payload)
	if err != nil {
		m.logger.Error("Register rejected: %s", err)
		return nil, err
	}

	identity, err := m.establish(ctx, result.TokenPair)
	if err != nil {
		return nil, err
	}

	m.navigator.NavigateTo(m.landingRoute)
	return identity, nil
}

// Logout clears the credential store, publishes Unauthenticated and
// navigates to the login route. Safe to call when already unauthenticated.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		m.logger.Error("Logout failed to clear credential store: %s", err)
	}

	m.state.Set(Unauthenticated())
	m.navigator.NavigateTo(m.loginRoute)
}

// RenewAccess obtains a fresh access token using the stored refresh
// credential and returns it. There is no partial-failure state: a missing
// refresh credential, a backend rejection or an undecodable renewed token
// all end the session via Logout before the error is returned. On success
// the renewed identity is republished so derived facts pick up role changes.
func (m *Manager) RenewAccess(ctx context.Context) (string, error) {
	snap, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Error("RenewAccess failed to read credential store: %s", err)
		m.Logout(ctx)
		return "", err
	}

	if snap == nil || snap.Credentials.RefreshToken == "" {
		m.Logout(ctx)
		return "", ErrNoRefreshCredential
	}

	pair, err := m.api.Refresh(ctx, snap.Credentials.RefreshToken)
	if err != nil {
		m.logger.Warn("RenewAccess rejected by backend: %s", err)
		m.Logout(ctx)
		return "", err
	}

	identity, err := DecodeAccessToken(pair.AccessToken)
	if err != nil {
		m.logger.Error("RenewAccess returned undecodable access token: %s", err)
		m.Logout(ctx)
		return "", err
	}

	creds := Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: snap.Credentials.RefreshToken,
	}
	if pair.RefreshToken != "" {
		// Backend rotated the refresh credential.
		creds.RefreshToken = pair.RefreshToken
	}

	if err := m.store.Save(ctx, creds, *identity); err != nil {
		m.logger.Error("RenewAccess failed to persist credentials: %s", err)
		m.Logout(ctx)
		return "", err
	}

	if m.state.Get().Status == StatusAuthenticated {
		m.state.Set(Authenticated(*identity))
	}

	return pair.AccessToken, nil
}

// AccessToken returns the stored access credential for authenticated
// requests, or empty when none is stored.
func (m *Manager) AccessToken(ctx context.Context) string {
	snap, err := m.store.Load(ctx)
	if err != nil || snap == nil {
		return ""
	}
	return snap.Credentials.AccessToken
}

// CurrentIdentity returns the published identity, if any.
func (m *Manager) CurrentIdentity() (Identity, bool) {
	state := m.state.Get()
	if state.Status != StatusAuthenticated || state.Identity == nil {
		return Identity{}, false
	}
	return *state.Identity, true
}

// IsAuthenticated reports whether a current identity is published. Like the
// other derived facts it is recomputed from the session state on every read
// and never cached, so it cannot go stale after a renewal changes the role.
func (m *Manager) IsAuthenticated() bool {
	return m.state.Get().Status == StatusAuthenticated
}

// IsAdmin reports whether the current identity administers its organization.
func (m *Manager) IsAdmin() bool {
	identity, ok := m.CurrentIdentity()
	return ok && identity.IsAdmin()
}

// IsManager reports whether the current identity can manage projects.
func (m *Manager) IsManager() bool {
	identity, ok := m.CurrentIdentity()
	return ok && identity.IsManager()
}

// establish decodes the returned access token, persists the pair and
// publishes the identity. Called only after a successful login or
// registration; a decode failure fails the whole operation with no state
// mutated.
func (m *Manager) establish(ctx context.Context, pair TokenPair) (*Identity, error) {
	identity, err := DecodeAccessToken(pair.AccessToken)
	if err != nil {
		m.logger.Error("establish received undecodable access token: %s", err)
		return nil, err
	}

	creds := Credentials{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}

	if err := m.store.Save(ctx, creds, *identity); err != nil {
		m.logger.Error("establish failed to persist credentials: %s", err)
		return nil, err
	}

	m.state.Set(Authenticated(*identity))
	return identity, nil
}

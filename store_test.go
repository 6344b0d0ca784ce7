package session_test

import (
	"context"
	"path/filepath"
	"testing"

	session "github.com/planora/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshot() (session.Credentials, session.Identity) {
	creds := session.Credentials{
		AccessToken:  "access-token-value",
		RefreshToken: "refresh-token-value",
	}
	identity := session.Identity{
		UserID:         7,
		Email:          "a@b.com",
		FirstName:      "Ada",
		LastName:       "Lovelace",
		OrganizationID: 3,
		Role:           session.RoleProjectManager,
	}
	return creds, identity
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, creds, snap.Credentials)
	assert.Equal(t, identity, snap.Identity)
}

func TestMemoryStoreEmptyLoad(t *testing.T) {
	snap, err := session.NewMemoryStore().Load(context.Background())
	assert.NoError(t, err)
	assert.Nil(t, snap)
}

func TestMemoryStoreSaveOverwrites(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))

	next := session.Credentials{AccessToken: "new-access", RefreshToken: "new-refresh"}
	nextIdentity := session.Identity{UserID: 8, Email: "b@c.com", OrganizationID: 4, Role: session.RoleMember}
	require.NoError(t, store.Save(ctx, next, nextIdentity))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, next, snap.Credentials)
	assert.Equal(t, nextIdentity, snap.Identity)
}

func TestMemoryStoreClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := session.NewMemoryStore()

	// Clearing an empty store is a no-op, not an error.
	require.NoError(t, store.Clear(ctx))

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))
	require.NoError(t, store.Clear(ctx))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)

	require.NoError(t, store.Clear(ctx))
}

func TestBunStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := session.OpenSQLite(ctx, filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	defer store.Close()

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap, "fresh store must read as empty")

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))

	snap, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, creds, snap.Credentials)
	assert.Equal(t, identity, snap.Identity)
}

func TestBunStoreSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "credentials.db")

	store, err := session.OpenSQLite(ctx, path)
	require.NoError(t, err)

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))
	require.NoError(t, store.Close())

	reopened, err := session.OpenSQLite(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	snap, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, creds, snap.Credentials)
	assert.Equal(t, identity, snap.Identity)
}

func TestBunStoreClearIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, err := session.OpenSQLite(ctx, filepath.Join(t.TempDir(), "credentials.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Clear(ctx))

	creds, identity := testSnapshot()
	require.NoError(t, store.Save(ctx, creds, identity))
	require.NoError(t, store.Clear(ctx))
	require.NoError(t, store.Clear(ctx))

	snap, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

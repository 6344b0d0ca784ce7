package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// CredentialRecord is one persisted entry of the credential store.
type CredentialRecord struct {
	bun.BaseModel `bun:"table:session_credentials,alias:sc"`
	Key           string     `bun:"key,pk" json:"key"`
	Value         []byte     `bun:"value,notnull" json:"value,omitempty"`
	UpdatedAt     *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// BunStore is the durable CredentialStore: three key/value rows in a sqlite
// table so credentials survive process restarts.
type BunStore struct {
	db *bun.DB
}

var _ CredentialStore = (*BunStore)(nil)

// OpenSQLite opens (creating if needed) a sqlite-backed credential store at
// path. Use ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string) (*BunStore, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to open credential store")
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	store := &BunStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// NewBunStore wraps an existing bun.DB. The schema is created on first use.
func NewBunStore(ctx context.Context, db *bun.DB) (*BunStore, error) {
	store := &BunStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *BunStore) ensureSchema(ctx context.Context) error {
	_, err := s.db.NewCreateTable().
		Model((*CredentialRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create credential store schema")
	}
	return nil
}

// Save overwrites the three entries in one transaction. There is no partial
// merge: a save replaces whatever was stored before.
func (s *BunStore) Save(ctx context.Context, creds Credentials, identity Identity) error {
	identityJSON, err := json.Marshal(identity)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to encode identity snapshot")
	}

	now := time.Now()
	records := []CredentialRecord{
		{Key: storeKeyAccessToken, Value: []byte(creds.AccessToken), UpdatedAt: &now},
		{Key: storeKeyRefreshToken, Value: []byte(creds.RefreshToken), UpdatedAt: &now},
		{Key: storeKeyIdentity, Value: identityJSON, UpdatedAt: &now},
	}

	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*CredentialRecord)(nil)).
			Where("1 = 1").
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to overwrite credential store")
		}

		if _, err := tx.NewInsert().
			Model(&records).
			Exec(ctx); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to persist credentials")
		}

		return nil
	})
}

// Load reads the stored snapshot. An empty or partially-empty table is a
// normal logged-out condition and returns (nil, nil); missing keys are never
// an error.
func (s *BunStore) Load(ctx context.Context) (*Snapshot, error) {
	var records []CredentialRecord
	if err := s.db.NewSelect().
		Model(&records).
		Scan(ctx); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read credential store")
	}

	if len(records) == 0 {
		return nil, nil
	}

	snap := &Snapshot{}
	haveIdentity := false
	for _, rec := range records {
		switch rec.Key {
		case storeKeyAccessToken:
			snap.Credentials.AccessToken = string(rec.Value)
		case storeKeyRefreshToken:
			snap.Credentials.RefreshToken = string(rec.Value)
		case storeKeyIdentity:
			if len(rec.Value) > 0 {
				if err := json.Unmarshal(rec.Value, &snap.Identity); err != nil {
					return nil, errors.Wrap(err, errors.CategoryInternal, "failed to decode identity snapshot")
				}
				haveIdentity = true
			}
		}
	}

	if snap.Credentials.AccessToken == "" && snap.Credentials.RefreshToken == "" && !haveIdentity {
		return nil, nil
	}

	return snap, nil
}

// Clear removes all entries together. Clearing an empty store is a no-op.
func (s *BunStore) Clear(ctx context.Context) error {
	if _, err := s.db.NewDelete().
		Model((*CredentialRecord)(nil)).
		Where("1 = 1").
		Exec(ctx); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear credential store")
	}
	return nil
}

// Close releases the underlying database handle.
func (s *BunStore) Close() error {
	return s.db.Close()
}

package tokenstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/roadwatch/internal/dbx"
)

// SQLiteStore keeps the credential in the local metadata table.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the stored credential. A half-written or undecodable entry is
// reported as absent so callers fall back to the anonymous path.
func (s *SQLiteStore) Get(ctx context.Context) (Credential, bool, error) {
	repo := metadata.NewSQLiteRepository(s.db)

	token, ok, err := repo.Get(ctx, KeyAccessToken)
	if err != nil || !ok || len(token) == 0 {
		return Credential{}, false, err
	}

	raw, ok, err := repo.Get(ctx, KeyUser)
	if err != nil || !ok {
		return Credential{}, false, err
	}

	var user models.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return Credential{}, false, nil
	}

	return Credential{Token: string(token), User: &user}, true, nil
}

func (s *SQLiteStore) Set(ctx context.Context, cred Credential) error {
	if err := validate(cred); err != nil {
		return err
	}

	raw, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("failed to encode user: %w", err)
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyAccessToken, []byte(cred.Token)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyUser, raw)
	})
}

func (s *SQLiteStore) Clear(ctx context.Context) error {
	return metadata.NewSQLiteRepository(s.db).Delete(ctx, KeyAccessToken, KeyUser)
}

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expiringBackend accepts logins and answers 401 to everything else.
func expiringBackend(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Path == client.PathLogin {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "token": "tok", "user": alice()})
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": "token revoked"})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthFailureCascade(t *testing.T) {
	calls := map[string]func(ctx context.Context, m *Manager) error{
		"change-password": func(ctx context.Context, m *Manager) error {
			return m.ChangePassword(ctx, "secret1", "secret2", "secret2")
		},
		"delete-account": func(ctx context.Context, m *Manager) error {
			return m.DeleteAccount(ctx, "secret1")
		},
		"reset-password": func(ctx context.Context, m *Manager) error {
			return m.ResetPassword(ctx, "alice@example.com")
		},
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			srv := expiringBackend(t)
			store := tokenstore.NewMemoryStore()
			c, err := client.NewHTTPClient(srv.URL, store)
			require.NoError(t, err)
			notes := &notify.Recorder{}
			m := New(c, store, WithNotifier(notes))
			ctx := context.Background()

			require.NoError(t, m.Login(ctx, "alice", "secret1"))
			require.Equal(t, StateAuthenticated, m.Snapshot().State)

			require.ErrorIs(t, call(ctx, m), client.ErrUnauthorized)

			assert.Equal(t, StateAnonymous, m.Snapshot().State)
			_, ok, err := store.Get(ctx)
			require.NoError(t, err)
			assert.False(t, ok)

			var messages []string
			for _, n := range notes.All() {
				messages = append(messages, n.Message)
			}
			assert.Contains(t, messages, MsgSessionExpired)
		})
	}

	t.Run("bootstrap", func(t *testing.T) {
		srv := expiringBackend(t)
		store := tokenstore.NewMemoryStore()
		ctx := context.Background()
		require.NoError(t, store.Set(ctx, tokenstore.Credential{Token: "stale", User: alice()}))
		c, err := client.NewHTTPClient(srv.URL, store)
		require.NoError(t, err)
		m := New(c, store)

		require.ErrorIs(t, m.Bootstrap(ctx), client.ErrUnauthorized)
		assert.Equal(t, StateAnonymous, m.Snapshot().State)
		_, ok, err := store.Get(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

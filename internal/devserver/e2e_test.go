package devserver_test

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
	"github.com/dmitrijs2005/roadwatch/internal/client/session"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/dmitrijs2005/roadwatch/internal/devserver"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	baseURL string
	store   *tokenstore.MemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	cfg := &devserver.Config{}
	cfg.LoadDefaults()
	svc := devserver.NewService(devserver.NewMemoryRepository(), cfg, logging.Discard())
	require.NoError(t, svc.SeedAdmin(context.Background(), cfg.AdminUsername, cfg.AdminPassword, cfg.AdminEmail))

	ts := httptest.NewServer(devserver.NewRouter(svc, logging.Discard()))
	t.Cleanup(ts.Close)

	return &harness{baseURL: ts.URL + "/api", store: tokenstore.NewMemoryStore()}
}

// start simulates a fresh client process over the shared token store.
func (h *harness) start(t *testing.T) (*session.Manager, *notify.Recorder, error) {
	t.Helper()

	api, err := client.NewHTTPClient(h.baseURL, h.store)
	require.NoError(t, err)
	rec := &notify.Recorder{}
	m := session.New(api, h.store, session.WithNotifier(rec))
	return m, rec, m.Bootstrap(context.Background())
}

func TestEndToEnd_AccountLifecycle(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	m, _, err := h.start(t)
	require.NoError(t, err)
	assert.Equal(t, session.StateAnonymous, m.Snapshot().State)

	require.NoError(t, m.Register(ctx, models.RegistrationProfile{
		Username:             "erin",
		Password:             "secret1",
		PasswordConfirmation: "secret1",
		Email:                "erin@example.com",
		Name:                 "Erin",
		PhoneNumber:          "+12015550123",
	}))
	snap := m.Snapshot()
	require.Equal(t, session.StateAuthenticated, snap.State)
	assert.Equal(t, "erin", snap.User.Username)
	assert.False(t, m.IsAdmin())

	require.NoError(t, m.ChangePassword(ctx, "secret1", "secret22", "secret22"))
	assert.Equal(t, session.StateAuthenticated, m.Snapshot().State)

	restarted, _, err := h.start(t)
	require.NoError(t, err)
	snap = restarted.Snapshot()
	require.Equal(t, session.StateAuthenticated, snap.State, "stored credential survives a restart")
	assert.Equal(t, "erin", snap.User.Username)

	require.NoError(t, restarted.Logout(ctx))
	assert.Equal(t, session.StateAnonymous, restarted.Snapshot().State)
	_, ok, err := h.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	err = restarted.Login(ctx, "erin", "secret1")
	require.ErrorIs(t, err, client.ErrValidation)
	assert.Equal(t, "Invalid username or password", client.ServerMessage(err))
	assert.Equal(t, session.StateAnonymous, restarted.Snapshot().State)

	require.NoError(t, restarted.Login(ctx, "ERIN", "secret22"))
	require.NoError(t, restarted.DeleteAccount(ctx, "secret22"))
	assert.Equal(t, session.StateAnonymous, restarted.Snapshot().State)

	err = restarted.Login(ctx, "erin", "secret22")
	assert.ErrorIs(t, err, client.ErrValidation)
}

func TestEndToEnd_AdminRole(t *testing.T) {
	ctx := context.Background()
	m, _, err := newHarness(t).start(t)
	require.NoError(t, err)

	require.NoError(t, m.Login(ctx, "admin", "admin123"))
	assert.True(t, m.IsAdmin())
}

func TestEndToEnd_RevokedCredentialEndsSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	m, _, err := h.start(t)
	require.NoError(t, err)
	require.NoError(t, m.Login(ctx, "admin", "admin123"))
	stale, ok, err := h.store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.Logout(ctx))

	// A second process still holding the revoked token.
	require.NoError(t, h.store.Set(ctx, stale))
	other, rec, err := h.start(t)
	require.ErrorIs(t, err, client.ErrUnauthorized)

	assert.Equal(t, session.StateAnonymous, other.Snapshot().State)
	_, ok, err = h.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "a rejected credential is cleared")
	assert.Empty(t, rec.All(), "start-up reconciliation is silent")
}

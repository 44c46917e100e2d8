package session

//go:generate mockgen -source=api.go -destination=mocks/mocks.go -package=mocks API

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/forms"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
	"github.com/dmitrijs2005/roadwatch/internal/client/session/mocks"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestChangePassword_MismatchNeverCallsBackend(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	notes := &notify.Recorder{}
	m := New(api, tokenstore.NewMemoryStore(), WithNotifier(notes))
	ctx := context.Background()

	api.EXPECT().Login(gomock.Any(), "alice", "secret1").
		Return(&models.AuthResult{Token: "tok", User: alice()}, nil)
	require.NoError(t, m.Login(ctx, "alice", "secret1"))

	// No ChangePassword expectation: a backend call fails the test.
	err := m.ChangePassword(ctx, "secret1", "secret2", "secret3")
	require.ErrorIs(t, err, forms.ErrClientValidation)

	var fe *forms.Error
	require.ErrorAs(t, err, &fe)
	assert.NotEmpty(t, fe.Field("confirmNewPassword"))
	assert.Equal(t, notify.LevelFailure, lastNote(t, notes).Level)
	assert.Equal(t, StateAuthenticated, m.Snapshot().State)
}

func TestBootstrap_ServerFailureInvalidatesThroughClient(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	store := tokenstore.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, tokenstore.Credential{Token: "tok", User: alice()}))

	m := New(api, store)

	gomock.InOrder(
		api.EXPECT().Me(gomock.Any()).Return(nil, &client.ResponseError{Kind: client.ErrServer, Status: 502}),
		api.EXPECT().Invalidate(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
			return store.Clear(ctx)
		}),
	)

	err := m.Bootstrap(ctx)
	require.ErrorIs(t, err, client.ErrServer)
	assert.Equal(t, StateAnonymous, m.Snapshot().State)

	_, ok, err := store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLogout_SkipsBackendWithoutCredential(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	m := New(api, tokenstore.NewMemoryStore())

	api.EXPECT().Logout(gomock.Any()).Times(0)
	require.NoError(t, m.Logout(context.Background()))
	assert.Equal(t, StateAnonymous, m.Snapshot().State)
}

package session

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
)

// fakeAPI behaves like the request client: Invalidate clears the store and
// calls the registered handler.
type fakeAPI struct {
	store tokenstore.Store

	me             func(ctx context.Context) (*models.User, error)
	login          func(ctx context.Context, username, password string) (*models.AuthResult, error)
	register       func(ctx context.Context, p models.RegistrationProfile) (*models.AuthResult, error)
	logout         func(ctx context.Context) error
	resetPassword  func(ctx context.Context, email string) (string, error)
	changePassword func(ctx context.Context, current, next string) (string, error)
	deleteAccount  func(ctx context.Context, password string) (string, error)

	mu      sync.Mutex
	handler client.UnauthorizedHandler

	meCalls, loginCalls, registerCalls, logoutCalls atomic.Int32
	changeCalls, deleteCalls, resetCalls            atomic.Int32
	invalidateCalls                                 atomic.Int32
}

func newFakeAPI(store tokenstore.Store) *fakeAPI {
	return &fakeAPI{store: store}
}

func (f *fakeAPI) SetUnauthorizedHandler(h client.UnauthorizedHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = h
}

// unauthorized mimics a 401 seen by the request client.
func (f *fakeAPI) unauthorized(ctx context.Context) error {
	_ = f.Invalidate(ctx)
	return &client.ResponseError{Kind: client.ErrUnauthorized, Status: 401}
}

func (f *fakeAPI) Invalidate(ctx context.Context) error {
	f.invalidateCalls.Add(1)
	err := f.store.Clear(ctx)
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h != nil {
		h(ctx)
	}
	return err
}

func (f *fakeAPI) Me(ctx context.Context) (*models.User, error) {
	f.meCalls.Add(1)
	if f.me == nil {
		return nil, f.unauthorized(ctx)
	}
	return f.me(ctx)
}

func (f *fakeAPI) Login(ctx context.Context, username, password string) (*models.AuthResult, error) {
	f.loginCalls.Add(1)
	return f.login(ctx, username, password)
}

func (f *fakeAPI) Register(ctx context.Context, p models.RegistrationProfile) (*models.AuthResult, error) {
	f.registerCalls.Add(1)
	return f.register(ctx, p)
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.logoutCalls.Add(1)
	if f.logout == nil {
		return nil
	}
	return f.logout(ctx)
}

func (f *fakeAPI) ResetPassword(ctx context.Context, email string) (string, error) {
	f.resetCalls.Add(1)
	return f.resetPassword(ctx, email)
}

func (f *fakeAPI) ChangePassword(ctx context.Context, current, next string) (string, error) {
	f.changeCalls.Add(1)
	return f.changePassword(ctx, current, next)
}

func (f *fakeAPI) DeleteAccount(ctx context.Context, password string) (string, error) {
	f.deleteCalls.Add(1)
	return f.deleteAccount(ctx, password)
}

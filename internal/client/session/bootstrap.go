package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
)

// Bootstrap reconciles the cached credential with the backend. It runs once
// per Manager; later calls return the first result. The session is never
// left Unknown by it unless a newer sign-in took over.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.bootOnce.Do(func() {
		m.bootErr = m.bootstrap(ctx)
		m.metrics.ObserveMutation(string(KindBootstrap), m.bootErr)
	})
	return m.bootErr
}

func (m *Manager) bootstrap(ctx context.Context) error {
	m.mu.Lock()
	epoch := m.epoch
	m.booting = true
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.booting = false
		m.mu.Unlock()
	}()

	cred, ok, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Warn(ctx, "token store unreadable, starting signed out", "error", err)
		_ = m.api.Invalidate(ctx)
		m.settleBootstrap(ctx, epoch)
		return fmt.Errorf("read token store: %w", err)
	}
	if !ok {
		m.settleBootstrap(ctx, epoch)
		return nil
	}
	if cred.Expired(m.now()) {
		m.logger.Info(ctx, "stored credential expired")
		_ = m.api.Invalidate(ctx)
		m.settleBootstrap(ctx, epoch)
		return nil
	}

	m.publishOptimistic(ctx, epoch, cred)

	user, err := m.api.Me(ctx)
	if err != nil {
		if m.superseded(epoch) {
			return ErrSuperseded
		}
		m.logger.Warn(ctx, "identity check failed, signing out", "error", err)
		if !errors.Is(err, client.ErrUnauthorized) {
			_ = m.api.Invalidate(ctx)
		}
		m.settleBootstrap(ctx, epoch)
		return fmt.Errorf("confirm identity: %w", err)
	}

	m.mu.Lock()
	if m.epoch != epoch || m.state != StateUnknown {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if err := m.store.Set(ctx, tokenstore.Credential{Token: cred.Token, User: user}); err != nil {
		m.logger.Warn(ctx, "failed to refresh cached identity", "error", err)
	}
	m.publishAndUnlock(ctx, m.applyLocked(StateAuthenticated, user))
	return nil
}

func (m *Manager) superseded(epoch uint64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch != epoch
}

func (m *Manager) publishOptimistic(ctx context.Context, epoch uint64, cred tokenstore.Credential) {
	m.mu.Lock()
	if m.epoch != epoch || m.state != StateUnknown {
		m.mu.Unlock()
		return
	}
	m.optimistic = cred.User.Clone()
	snap := m.snapshotLocked()
	m.deliverMu.Lock()
	m.mu.Unlock()
	defer m.deliverMu.Unlock()
	m.deliver(snap)
}

// settleBootstrap moves a still-unknown session of generation epoch to
// Anonymous.
func (m *Manager) settleBootstrap(ctx context.Context, epoch uint64) {
	m.mu.Lock()
	if m.epoch != epoch || m.state != StateUnknown {
		m.mu.Unlock()
		return
	}
	m.publishAndUnlock(ctx, m.applyLocked(StateAnonymous, nil))
}

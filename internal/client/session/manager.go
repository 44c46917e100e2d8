package session

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/forms"
	"github.com/dmitrijs2005/roadwatch/internal/client/metrics"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Kind names a mutation. It keys the in-flight guard and the metrics.
type Kind string

const (
	KindLogin          Kind = "login"
	KindRegister       Kind = "register"
	KindLogout         Kind = "logout"
	KindResetPassword  Kind = "reset_password"
	KindChangePassword Kind = "change_password"
	KindDeleteAccount  Kind = "delete_account"
	KindBootstrap      Kind = "bootstrap"
)

// Manager is the session state machine.
//
// Token store writes and state changes of one resolution happen under mu;
// backend calls never do. Observers run after mu is released, in transition
// order, and must not call Manager mutators synchronously.
type Manager struct {
	api         API
	store       tokenstore.Store
	notifier    notify.Notifier
	logger      logging.Logger
	metrics     *metrics.Metrics
	phoneRegion string
	now         func() time.Time

	mu         sync.Mutex
	state      State
	user       *models.User
	optimistic *models.User
	// epoch counts changes of who is signed in: applied sign-ins and
	// explicit sign-outs. A sign-in, bootstrap or delete-account result is
	// applied only if the epoch it started with is still current.
	epoch uint64
	// attempt counts sign-in attempts; only the newest may apply.
	attempt uint64
	// booting is set while Bootstrap owns the resolution of StateUnknown.
	booting bool
	// signingOut is non-zero while a logout call is in flight; a 401 it
	// triggers is not reported as an expired session.
	signingOut int

	deliverMu sync.Mutex
	subsMu    sync.Mutex
	subs      map[int]func(Snapshot)
	nextSub   int

	flight singleflight.Group

	bootOnce sync.Once
	bootErr  error
}

type Option func(*Manager)

func WithNotifier(n notify.Notifier) Option {
	return func(m *Manager) {
		if n != nil {
			m.notifier = n
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

func WithMetrics(mt *metrics.Metrics) Option {
	return func(m *Manager) { m.metrics = mt }
}

// WithPhoneRegion sets the region used to parse phone numbers written
// without a country prefix.
func WithPhoneRegion(region string) Option {
	return func(m *Manager) { m.phoneRegion = region }
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if now != nil {
			m.now = now
		}
	}
}

// New creates a Manager in StateUnknown. If api can report 401 responses,
// the Manager registers itself as their handler.
func New(api API, store tokenstore.Store, opts ...Option) *Manager {
	m := &Manager{
		api:         api,
		store:       store,
		notifier:    notify.Discard,
		logger:      logging.Discard(),
		phoneRegion: forms.DefaultRegion,
		now:         time.Now,
		state:       StateUnknown,
		subs:        make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With("component", "session")

	if src, ok := api.(unauthorizedSource); ok {
		src.SetUnauthorizedHandler(m.HandleUnauthorized)
	}
	return m
}

func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

func (m *Manager) IsAdmin() bool {
	return m.Snapshot().IsAdmin()
}

// Subscribe registers fn for every published snapshot. The returned function
// removes it.
func (m *Manager) Subscribe(fn func(Snapshot)) (cancel func()) {
	m.subsMu.Lock()
	defer m.subsMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.subsMu.Lock()
			defer m.subsMu.Unlock()
			delete(m.subs, id)
		})
	}
}

// HandleUnauthorized is called by the request client after a 401 has
// cleared the token store.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.mu.Lock()
	wasSignedIn := m.state == StateAuthenticated
	expected := m.signingOut > 0
	if m.state == StateAnonymous {
		m.mu.Unlock()
		return
	}
	tr := m.applyLocked(StateAnonymous, nil)
	m.publishAndUnlock(ctx, tr)

	if wasSignedIn && !expected {
		m.logger.Info(ctx, "session invalidated by backend")
		m.notify(notify.LevelFailure, MsgSessionExpired)
	}
}

func (m *Manager) snapshotLocked() Snapshot {
	return Snapshot{
		State:      m.state,
		User:       m.user.Clone(),
		Optimistic: m.optimistic.Clone(),
	}
}

type transition struct {
	from, to State
	snap     Snapshot
}

func (m *Manager) applyLocked(to State, user *models.User) transition {
	from := m.state
	m.state = to
	m.optimistic = nil
	if to == StateAuthenticated {
		m.user = user.Clone()
	} else {
		m.user = nil
	}
	return transition{from: from, to: to, snap: m.snapshotLocked()}
}

// publishAndUnlock must be called with mu held. It takes the delivery lock
// before releasing mu, so observers see snapshots in the order they were
// produced.
func (m *Manager) publishAndUnlock(ctx context.Context, tr transition) {
	m.deliverMu.Lock()
	m.mu.Unlock()
	defer m.deliverMu.Unlock()

	if tr.from != tr.to {
		m.metrics.ObserveTransition(tr.from.String(), tr.to.String())
		m.logger.Info(ctx, "session state changed", "from", tr.from.String(), "state", tr.to.String())
	}
	m.deliver(tr.snap)
}

func (m *Manager) deliver(s Snapshot) {
	m.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subsMu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// ticket identifies a sign-in attempt: the session generation it started in
// and its position among attempts.
type ticket struct {
	epoch   uint64
	attempt uint64
}

// beginAttempt registers a new sign-in attempt. A failed attempt changes
// nothing, so it never supersedes a pending bootstrap.
func (m *Manager) beginAttempt() ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempt++
	return ticket{epoch: m.epoch, attempt: m.attempt}
}

func (m *Manager) currentEpoch() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.epoch
}

// settleIfUnknown moves an unresolved session to Anonymous so that a failed
// mutation never leaves it Unknown. While Bootstrap runs it is left alone:
// the bootstrap result settles it.
func (m *Manager) settleIfUnknown(ctx context.Context) {
	m.mu.Lock()
	if m.state != StateUnknown || m.booting {
		m.mu.Unlock()
		return
	}
	m.publishAndUnlock(ctx, m.applyLocked(StateAnonymous, nil))
}

// authenticate stores the credential and enters StateAuthenticated in one
// critical section, unless a sign-out, another sign-in or a newer attempt
// came after t.
func (m *Manager) authenticate(ctx context.Context, t ticket, res *models.AuthResult) error {
	m.mu.Lock()
	if m.epoch != t.epoch || m.attempt != t.attempt {
		m.mu.Unlock()
		return ErrSuperseded
	}
	if err := m.store.Set(ctx, tokenstore.Credential{Token: res.Token, User: res.User}); err != nil {
		m.mu.Unlock()
		return err
	}
	m.epoch++
	m.publishAndUnlock(ctx, m.applyLocked(StateAuthenticated, res.User))
	return nil
}

// signOutLocally clears the store and enters StateAnonymous. It starts a new
// generation so in-flight sign-ins are discarded.
func (m *Manager) signOutLocally(ctx context.Context) error {
	m.mu.Lock()
	return m.signOutAndUnlock(ctx)
}

// signOutIfCurrent signs out only if nobody signed in or out since epoch.
// It reports whether it did.
func (m *Manager) signOutIfCurrent(ctx context.Context, epoch uint64) (bool, error) {
	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		return false, nil
	}
	return true, m.signOutAndUnlock(ctx)
}

func (m *Manager) signOutAndUnlock(ctx context.Context) error {
	m.epoch++
	err := m.store.Clear(ctx)
	if err != nil {
		m.logger.Error(ctx, "failed to clear token store", "error", err)
	}
	m.publishAndUnlock(ctx, m.applyLocked(StateAnonymous, nil))
	return err
}

func (m *Manager) notify(level notify.Level, msg string) {
	m.notifier.Notify(notify.Notification{Level: level, Message: msg})
}

// run executes fn at most once at a time per kind and key; concurrent
// callers share the result.
func (m *Manager) run(kind Kind, key string, fn func() error) error {
	_, err, shared := m.flight.Do(string(kind)+":"+key, func() (any, error) {
		err := fn()
		m.metrics.ObserveMutation(string(kind), err)
		return nil, err
	})
	if shared {
		m.logger.Debug(context.Background(), "joined in-flight mutation", "kind", string(kind))
	}
	return err
}

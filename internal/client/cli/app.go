package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/roadwatch/internal/client/client"
	"github.com/dmitrijs2005/roadwatch/internal/client/config"
	"github.com/dmitrijs2005/roadwatch/internal/client/guard"
	"github.com/dmitrijs2005/roadwatch/internal/client/metrics"
	"github.com/dmitrijs2005/roadwatch/internal/client/models"
	"github.com/dmitrijs2005/roadwatch/internal/client/notify"
	"github.com/dmitrijs2005/roadwatch/internal/client/session"
	"github.com/dmitrijs2005/roadwatch/internal/client/tokenstore"
	"github.com/dmitrijs2005/roadwatch/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// sessionService is the part of *session.Manager the shell drives.
type sessionService interface {
	Snapshot() session.Snapshot
	Bootstrap(ctx context.Context) error
	Login(ctx context.Context, username, password string) error
	Register(ctx context.Context, profile models.RegistrationProfile) error
	Logout(ctx context.Context) error
	ResetPassword(ctx context.Context, email string) error
	ChangePassword(ctx context.Context, current, next, confirm string) error
	DeleteAccount(ctx context.Context, password string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session sessionService
	pinger  pinger
	nav     *guard.Navigator
	metrics *metrics.Metrics
	reader  *bufio.Reader
	out     io.Writer

	mu   sync.Mutex
	mode Mode
}

// NewApp opens the local database and wires the request client, the session
// manager and the navigator.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	m := metrics.New()
	store := tokenstore.NewSQLiteStore(db)

	api, err := client.NewHTTPClient(c.ServerBaseURL, store,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(logger),
		client.WithMetrics(m),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	sm := session.New(api, store,
		session.WithNotifier(notify.NewConsole(os.Stdout)),
		session.WithLogger(logger),
		session.WithMetrics(m),
		session.WithPhoneRegion(c.PhoneRegion),
	)

	return &App{
		config:  c,
		logger:  logger,
		db:      db,
		session: sm,
		pinger:  api,
		nav:     guard.NewNavigator(guard.DefaultSurfaces),
		metrics: m,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}, nil
}

// Run reconciles the stored session, starts the connectivity watcher and
// blocks in the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	fmt.Fprintln(a.out, "Welcome to RoadWatch (type 'help' for commands)")

	if err := a.session.Bootstrap(ctx); err != nil {
		a.logger.Warn(ctx, "session check failed", "error", err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.StartOnlineStatusWatcher(watchCtx, a.config.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}

func (a *App) Close() {
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(context.Background(), "closing database", "error", err)
		}
	}
}

func (a *App) isLoggedIn() bool {
	return a.session.Snapshot().Authenticated()
}

func (a *App) getStatus() string {
	s := "anonymous"
	if u := a.session.Snapshot().DisplayUser(); u != nil {
		s = fmt.Sprintf("%s (%s)", u.Username, u.Role)
	}
	if mode := a.Mode(); mode != "" {
		s = s + " " + string(mode)
	}
	return s
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher probes the backend every interval until ctx is
// done, switching between online and offline mode.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		a.checkOnline(ctx)
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := a.pinger.Ping(pctx)
	cancel()

	if err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

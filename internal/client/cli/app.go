package cli

import (
	"bufio"
	"context"
	"database/sql"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
	"github.com/dmitrijs2005/gophauth/internal/client/otp"
	"github.com/dmitrijs2005/gophauth/internal/client/route"
	"github.com/dmitrijs2005/gophauth/internal/client/services"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// logOutput is where the CLI's diagnostic log goes; user-facing output goes
// to stdout.
var logOutput io.Writer = os.Stderr

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	auth  *services.AuthService
	boot  *session.Bootstrapper
	store *session.Store
	flow  *otp.Flow

	mu     sync.Mutex
	mode   Mode
	screen route.Screen

	// bg tracks background resend requests.
	bg sync.WaitGroup

	reader *bufio.Reader
	out    *console
}

// NewApp opens the local session database and builds the API client and
// services from c.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewConsoleLogger(logOutput, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(c.ServerURL, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app := newApp(c, logger, api, session.NewTokenStore(db), os.Stdin, os.Stdout)
	app.db = db
	return app, nil
}

func newApp(c *config.Config, l logging.Logger, api client.Client, tokens session.Persistence, in io.Reader, out io.Writer) *App {
	store := session.NewStore()
	a := &App{
		config: c,
		logger: l,
		store:  store,
		auth:   services.NewAuthService(api, tokens, store, l),
		boot:   session.NewBootstrapper(tokens, api, store, l),
		reader: bufio.NewReader(in),
		out:    newConsole(out),
	}
	a.flow = otp.NewFlow(api, store, a.out, a.goTo, l)
	return a
}

// Run resolves the stored session, starts the status watcher and blocks in
// the REPL until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.close(ctx)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.out.Printf("Welcome to gophauth CLI (type 'help' for commands)\n")
	a.Start(ctx)

	go func() {
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	runREPL(ctx, a, a.getStatus, a.reader)
	a.bg.Wait()
}

// Start shows the loading placeholder until the stored token is resolved,
// then lands on the screen the route guard picks.
func (a *App) Start(ctx context.Context) {
	a.out.Printf("Loading...\n")
	if err := a.boot.Run(ctx); err != nil {
		a.logger.Debug(ctx, "session not restored", "error", err)
	}
	a.Navigate("/")
}

func (a *App) close(ctx context.Context) {
	if err := a.auth.Close(); err != nil {
		a.logger.Warn(ctx, "closing api client", "error", err)
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Warn(ctx, "closing database", "error", err)
		}
	}
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.logger.Info(ctx, "switched mode", "mode", mode)
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

// StartOnlineStatusWatcher pings the server every interval and flips the
// prompt between online and offline. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
			err := a.auth.Ping(pingCtx)
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}

func (a *App) getStatus() string {
	var parts []string
	if u := a.store.Current().User.Username; u != "" {
		parts = append(parts, u)
	}
	if m := a.currentMode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/habedi/solekit/auth"
	"github.com/habedi/solekit/client"
	"github.com/habedi/solekit/config"
	"github.com/habedi/solekit/db"
	"github.com/habedi/solekit/pkg/clierr"
	"github.com/habedi/solekit/session"
	"github.com/habedi/solekit/shop"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// app is everything a command needs to talk to the store.
type app struct {
	cfg     *config.Config
	store   session.Store
	public  *client.Client
	api     *client.AuthClient
	auth    *auth.Service
	notices *noticePrinter
}

// state is set up before a command runs and torn down after it.
var state *app

func setupApp(cmd *cobra.Command) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return clierr.New(clierr.Validation, err.Error(), err)
	}
	if cfg.DB.Path != "" {
		db.Path = cfg.DB.Path
	}
	if err := initializeDatabase(); err != nil {
		return clierr.New(clierr.Internal, "failed to open the local database", err)
	}

	a, err := newApp(cfg, db.NewSessionRepository(db.GetDB()), cmd.ErrOrStderr())
	if err != nil {
		closeDatabase()
		return err
	}
	state = a
	return nil
}

func closeApp() {
	if state == nil {
		return
	}
	state = nil
	closeDatabase()
}

func newApp(cfg *config.Config, repo db.SessionRepository, notices io.Writer) (*app, error) {
	public, err := client.New(cfg.API.BaseURL,
		client.WithTimeout(cfg.API.Timeout),
		client.WithUserAgent(cfg.API.UserAgent),
	)
	if err != nil {
		return nil, clierr.New(clierr.Validation, "invalid api.base_url", err)
	}
	mode, err := client.ParseRefreshMode(cfg.API.RefreshMode)
	if err != nil {
		return nil, clierr.New(clierr.Validation, err.Error(), err)
	}

	store := session.NewRepositoryStore(repo)
	refresher := client.NewHTTPRefresher(public)
	printer := &noticePrinter{w: notices}

	opts := []client.AuthOption{
		client.WithNotifier(printer),
		client.WithRedirector(printer),
		client.WithRefreshMode(mode),
	}
	if len(cfg.Notify.AllowList) > 0 {
		opts = append(opts, client.WithAllowList(cfg.Notify.AllowList))
	}

	return &app{
		cfg:     cfg,
		store:   store,
		public:  public,
		api:     client.NewAuthClient(public, store, refresher, opts...),
		auth:    auth.NewService(store, public, refresher),
		notices: printer,
	}, nil
}

func (a *app) catalog() *shop.Catalog { return shop.NewCatalog(a.public) }
func (a *app) account() *shop.Account { return shop.NewAccount(a.api) }
func (a *app) admin() *shop.Admin     { return shop.NewAdmin(a.api) }

// requireLogin makes sure a session is stored and refreshes the access token
// when it is about to expire. A failed refresh is left to the 401 handling
// of the request that follows.
func (a *app) requireLogin(ctx context.Context) error {
	if _, err := a.auth.EnsureFresh(ctx); err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return clierr.New(clierr.Auth, "not logged in; run 'solekit login' first", err)
		}
		log.Warn().Err(err).Msg("Proactive token refresh failed")
	}
	return nil
}

// requireAdmin is requireLogin plus a role check against the cached profile.
// Sessions without a cached profile are left for the server to judge.
func (a *app) requireAdmin(ctx context.Context) error {
	if err := a.requireLogin(ctx); err != nil {
		return err
	}
	st, err := a.auth.Status(ctx)
	if err != nil {
		return clierr.New(clierr.Internal, "failed to read the session", err)
	}
	if st.User != nil && !st.User.IsAdmin() {
		return clierr.New(clierr.Auth, fmt.Sprintf("%s is not an administrator", st.User.Email), nil)
	}
	return nil
}

// noticePrinter shows API notifications on the error stream and tells the
// user how to sign in again when the session is gone.
type noticePrinter struct {
	mu    sync.Mutex
	w     io.Writer
	shown bool
}

func (p *noticePrinter) Notify(n client.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.shown = true
	fmt.Fprintln(p.w, "!", n.Message)
}

func (p *noticePrinter) RedirectToLogin(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	log.Debug().Str("reason", reason).Msg("Redirecting to login")
	fmt.Fprintln(p.w, "Run 'solekit login' to sign in again.")
}

// Shown reports whether any notification was printed.
func (p *noticePrinter) Shown() bool {
	if p == nil {
		return false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shown
}

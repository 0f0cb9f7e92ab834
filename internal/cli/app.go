package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/dmitrijs2005/dsbrowser/internal/config"
	"github.com/dmitrijs2005/dsbrowser/internal/logging"
	"github.com/dmitrijs2005/dsbrowser/internal/render"
	"github.com/dmitrijs2005/dsbrowser/internal/settings"
	"github.com/dmitrijs2005/dsbrowser/internal/storage"
	"github.com/dmitrijs2005/dsbrowser/internal/tableau"
	"github.com/dmitrijs2005/dsbrowser/internal/ui"
)

// App wires configuration, the settings store, the terminal view and the
// popup controller.
type App struct {
	config *config.Config
	log    logging.Logger
	db     *sql.DB
	view   *render.Terminal
	ctrl   *ui.Controller
	out    io.Writer
}

// NewApp opens the settings store (in memory with --ephemeral) and builds
// the controller. The view writes to viewOut; prompts and listings go to out.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger, out, viewOut io.Writer) (*App, error) {
	var (
		store settings.Store
		db    *sql.DB
	)

	if cfg.Ephemeral {
		store = settings.NewMemoryStore()
	} else {
		var err error
		db, err = storage.Open(ctx, cfg.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("open settings database: %w", err)
		}
		store = settings.NewSQLiteStore(db)
	}

	view := render.NewTerminal(viewOut)
	ctrl := ui.NewController(view, settings.NewService(store),
		ui.WithLogger(log),
		ui.WithStatusTTL(cfg.StatusTTL),
		ui.WithClientFactory(func(creds tableau.Credentials) ui.APIClient {
			return tableau.NewClient(creds,
				tableau.WithAPIVersion(cfg.APIVersion),
				tableau.WithTimeout(cfg.RequestTimeout),
				tableau.WithLogger(log),
			)
		}),
	)

	return &App{
		config: cfg,
		log:    log,
		db:     db,
		view:   view,
		ctrl:   ctrl,
		out:    out,
	}, nil
}

// Close signs out any active session and closes the settings database.
func (a *App) Close(ctx context.Context) error {
	if err := a.ctrl.Disconnect(ctx); err != nil {
		a.log.Warn(ctx, "disconnect on exit failed", "error", err)
	}
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

func (a *App) getStatus() string {
	s := a.ctrl.State().String()
	if a.ctrl.Connecting() {
		s += ", connect disabled"
	}
	return fmt.Sprintf("(%s)", s)
}

// SetField updates one form input; empty values are accepted and fail at
// connect time like an empty text box would.
func (a *App) SetField(_ context.Context, field ui.Field, value string) error {
	a.ctrl.SetField(field, value)
	return nil
}

// PromptSecret asks for the token secret without echo.
func (a *App) PromptSecret(ctx context.Context) error {
	secret, err := GetSecret(a.out)
	if err != nil {
		return err
	}
	a.ctrl.SetField(ui.FieldTokenSecret, secret)
	return nil
}

func (a *App) ShowForm(_ context.Context) error {
	_, err := fmt.Fprintln(a.out, render.FormatForm(a.ctrl.Form()))
	return err
}

func (a *App) Connect(ctx context.Context) error {
	_, err := a.ctrl.Connect(ctx)
	return err
}

func (a *App) Save(ctx context.Context) error {
	return a.ctrl.SaveSettings(ctx)
}

func (a *App) Clear(ctx context.Context) error {
	return a.ctrl.ClearSettings(ctx)
}

func (a *App) Disconnect(ctx context.Context) error {
	return a.ctrl.Disconnect(ctx)
}

// Status reprints what the view currently shows: the status message, the
// results section and whether connect is enabled.
func (a *App) Status(_ context.Context) error {
	statusVisible, resultsVisible, connectEnabled := a.view.Visible()

	if n, ok := a.ctrl.Notification(); ok && statusVisible {
		fmt.Fprintln(a.out, render.FormatNotification(n))
	} else {
		fmt.Fprintln(a.out, "(no status)")
	}
	if resultsVisible {
		fmt.Fprintln(a.out, render.FormatDataSources(a.ctrl.Results()))
	}
	if !connectEnabled {
		fmt.Fprintln(a.out, "(connect in progress)")
	}
	return nil
}

// Package ui holds the popup controller: the form, the connect state machine
// and the status line, independent of how they are drawn.
package ui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/dsbrowser/internal/logging"
	"github.com/dmitrijs2005/dsbrowser/internal/models"
	"github.com/dmitrijs2005/dsbrowser/internal/settings"
	"github.com/dmitrijs2005/dsbrowser/internal/tableau"
)

// ErrConnectInProgress is returned when connect or disconnect is requested
// while a connect sequence is still running.
var ErrConnectInProgress = errors.New("connection already in progress")

// DefaultStatusTTL is how long success messages stay visible.
const DefaultStatusTTL = 5 * time.Second

// Field names a form input.
type Field int

const (
	FieldServerURL Field = iota
	FieldSiteName
	FieldTokenName
	FieldTokenSecret
)

// APIClient is the part of *tableau.Client the controller uses.
type APIClient interface {
	SignIn(ctx context.Context) (*tableau.SignInResult, error)
	ListDataSources(ctx context.Context) ([]models.DataSource, error)
	SignOut(ctx context.Context)
}

// ClientFactory builds a fresh API client for every connect attempt.
type ClientFactory func(creds tableau.Credentials) APIClient

// Option customizes a Controller.
type Option func(*Controller)

func WithClientFactory(f ClientFactory) Option {
	return func(c *Controller) { c.newClient = f }
}

func WithLogger(l logging.Logger) Option {
	return func(c *Controller) { c.log = l }
}

// WithStatusTTL overrides DefaultStatusTTL. Zero disables auto-dismiss.
func WithStatusTTL(d time.Duration) Option {
	return func(c *Controller) { c.statusTTL = d }
}

// Controller drives form → API client → results. All exported methods are
// safe to call from any goroutine; network calls run without holding the
// lock so the form stays usable while a request is pending.
type Controller struct {
	view      View
	settings  settings.Service
	newClient ClientFactory
	log       logging.Logger
	statusTTL time.Duration

	// afterFunc schedules auto-dismiss; swapped in tests.
	afterFunc func(d time.Duration, f func()) (stop func() bool)

	mu           sync.Mutex
	form         models.Form
	state        State
	connecting   bool
	client       APIClient
	results      []models.DataSource
	notification *Notification
	notifySeq    uint64
	stopDismiss  func() bool
}

// NewController wires a controller to its view and settings service.
func NewController(view View, svc settings.Service, opts ...Option) *Controller {
	c := &Controller{
		view:     view,
		settings: svc,
		newClient: func(creds tableau.Credentials) APIClient {
			return tableau.NewClient(creds)
		},
		log:       logging.Discard(),
		statusTTL: DefaultStatusTTL,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		state: StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Init pre-fills the form from saved settings. The token secret is never
// loaded. A failing store is logged and leaves the form empty.
func (c *Controller) Init(ctx context.Context) {
	saved, err := c.settings.Load(ctx)
	if err != nil {
		c.log.Error(ctx, "failed to load saved settings", "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if saved.ServerURL != "" {
		c.form.ServerURL = saved.ServerURL
	}
	if saved.SiteName != "" {
		c.form.SiteName = saved.SiteName
	}
	if saved.TokenName != "" {
		c.form.TokenName = saved.TokenName
	}
	c.state = StateIdle
	c.view.SetForm(c.form)
}

// SetField updates one form input.
func (c *Controller) SetField(field Field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch field {
	case FieldServerURL:
		c.form.ServerURL = value
	case FieldSiteName:
		c.form.SiteName = value
	case FieldTokenName:
		c.form.TokenName = value
	case FieldTokenSecret:
		c.form.TokenSecret = value
	}
}

// Form returns the current form contents.
func (c *Controller) Form() models.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Notification returns the visible status message, if any.
func (c *Controller) Notification() (Notification, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notification == nil {
		return Notification{}, false
	}
	return *c.notification, true
}

// Results returns the data sources currently displayed.
func (c *Controller) Results() []models.DataSource {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.results
}

// Connecting reports whether a connect sequence is running.
func (c *Controller) Connecting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connecting
}

// Connect validates the form, signs in, lists the data sources and shows
// them. Every failure ends in an error notification and StateIdle; the error
// is also returned so non-interactive callers can act on it.
func (c *Controller) Connect(ctx context.Context) ([]models.DataSource, error) {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return nil, ErrConnectInProgress
	}

	c.state = StateValidating
	form := c.form.Trimmed()
	if err := Validate(form); err != nil {
		c.notifyLocked(SeverityError, err.Error())
		c.state = StateIdle
		c.mu.Unlock()
		return nil, err
	}

	c.connecting = true
	c.state = StateConnecting
	c.view.SetConnectEnabled(false)
	c.notifyLocked(SeverityInfo, "Connecting...")
	previous := c.client
	c.client = nil
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.connecting = false
		c.view.SetConnectEnabled(true)
		c.mu.Unlock()
	}()

	log := c.log.With("attempt", uuid.NewString(), "site", form.SiteName)

	if previous != nil {
		log.Debug(ctx, "replacing previous session")
		previous.SignOut(ctx)
	}

	client := c.newClient(tableau.Credentials{
		ServerURL:      form.ServerURL,
		SiteContentURL: form.SiteName,
		TokenName:      form.TokenName,
		TokenSecret:    form.TokenSecret,
	})

	if _, err := client.SignIn(ctx); err != nil {
		return nil, c.fail(ctx, log, "sign in failed", err)
	}

	c.mu.Lock()
	c.client = client
	c.notifyLocked(SeveritySuccess, "Signed in. Fetching data sources...")
	c.mu.Unlock()

	sources, err := client.ListDataSources(ctx)
	if err != nil {
		return nil, c.fail(ctx, log, "listing data sources failed", err)
	}

	c.mu.Lock()
	c.results = sources
	c.view.ShowDataSources(sources)
	c.notifyLocked(SeveritySuccess, fmt.Sprintf("Retrieved %d data source(s)", len(sources)))
	c.state = StateDisplaying
	c.mu.Unlock()

	log.Info(ctx, "connected", "data_sources", len(sources))
	return sources, nil
}

func (c *Controller) fail(ctx context.Context, log logging.Logger, msg string, err error) error {
	log.Error(ctx, msg, "error", err)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.notifyLocked(SeverityError, "Error: "+err.Error())
	c.state = StateIdle
	return err
}

// Disconnect signs the current session out (best-effort) and hides the
// results. Without a session it only hides the results.
func (c *Controller) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	if c.connecting {
		c.mu.Unlock()
		return ErrConnectInProgress
	}
	client := c.client
	c.client = nil
	c.results = nil
	c.state = StateIdle
	c.view.HideResults()
	c.mu.Unlock()

	if client == nil {
		return nil
	}
	client.SignOut(ctx)

	c.mu.Lock()
	c.notifyLocked(SeverityInfo, "Signed out")
	c.mu.Unlock()
	return nil
}

// SaveSettings persists server URL, site name and token name. The token
// secret is never saved.
func (c *Controller) SaveSettings(ctx context.Context) error {
	c.mu.Lock()
	form := c.form.Trimmed()
	c.mu.Unlock()

	err := c.settings.Save(ctx, form.Settings)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notifyLocked(SeverityError, "Failed to save settings: "+err.Error())
		return err
	}
	c.notifyLocked(SeveritySuccess, "Settings saved")
	return nil
}

// ClearSettings erases saved settings, empties every form field including
// the secret and hides the results. A displayed listing returns to StateIdle.
func (c *Controller) ClearSettings(ctx context.Context) error {
	err := c.settings.Clear(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.notifyLocked(SeverityError, "Failed to clear settings: "+err.Error())
		return err
	}
	c.form = models.Form{}
	c.view.SetForm(c.form)
	c.results = nil
	if c.state == StateDisplaying {
		c.state = StateIdle
	}
	c.view.HideResults()
	c.notifyLocked(SeverityInfo, "Settings cleared")
	return nil
}

// notifyLocked replaces the status message. Success messages dismiss
// themselves after statusTTL. Callers hold c.mu.
func (c *Controller) notifyLocked(sev Severity, text string) {
	if c.stopDismiss != nil {
		c.stopDismiss()
		c.stopDismiss = nil
	}

	n := Notification{Severity: sev, Text: text}
	if sev == SeveritySuccess && c.statusTTL > 0 {
		n.AutoDismiss = c.statusTTL
	}

	c.notifySeq++
	c.notification = &n
	c.view.ShowNotification(n)

	if n.AutoDismiss > 0 {
		seq := c.notifySeq
		c.stopDismiss = c.afterFunc(n.AutoDismiss, func() { c.dismiss(seq) })
	}
}

// dismiss clears the status message if it is still the one numbered seq.
func (c *Controller) dismiss(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.notifySeq != seq || c.notification == nil {
		return
	}
	c.notification = nil
	c.stopDismiss = nil
	c.view.ClearNotification()
}

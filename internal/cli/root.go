package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/dsbrowser/internal/config"
	"github.com/dmitrijs2005/dsbrowser/internal/logging"
	"github.com/dmitrijs2005/dsbrowser/internal/render"
	"github.com/dmitrijs2005/dsbrowser/internal/ui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// SecretEnv is read by connect when --token-secret is not given.
const SecretEnv = "DSBROWSER_TOKEN_SECRET"

// appOpener builds an App from the parsed persistent flags.
type appOpener func(cmd *cobra.Command, out, viewOut io.Writer) (*App, error)

// NewRootCommand builds the dsbrowser command tree. Without a subcommand it
// starts the interactive prompt.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "dsbrowser",
		Short: "Browse Tableau data sources with a personal access token",
		Long: `dsbrowser signs in to Tableau Cloud or Tableau Server with a personal
access token and lists the data sources of a site.

Run it without arguments for an interactive prompt, or use 'connect' for a
one-shot listing in text, JSON or YAML.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := config.RegisterFlags(root.PersistentFlags())

	open := func(cmd *cobra.Command, out, viewOut io.Writer) (*App, error) {
		cfg, err := config.Load(cmd.Flags(), flags)
		if err != nil {
			return nil, err
		}
		log := logging.New(stderr, cfg.Verbose)
		log.Debug(cmd.Context(), "configuration loaded",
			"api_version", cfg.APIVersion, "db", cfg.DatabasePath, "ephemeral", cfg.Ephemeral)
		return NewApp(cmd.Context(), cfg, log, out, viewOut)
	}

	runInteractive := func(cmd *cobra.Command, _ []string) error {
		app, err := open(cmd, stdout, stdout)
		if err != nil {
			return err
		}
		defer app.Close(context.WithoutCancel(cmd.Context()))

		app.Root(cmd.Context(), bufio.NewScanner(stdin))
		return nil
	}
	root.RunE = runInteractive

	root.AddCommand(
		&cobra.Command{
			Use:   "repl",
			Short: "Start the interactive prompt",
			Args:  cobra.NoArgs,
			RunE:  runInteractive,
		},
		newConnectCommand(open, stdout, stderr),
		newSettingsCommand(open, stdout),
	)
	return root
}

type connectOptions struct {
	server      string
	site        string
	tokenName   string
	tokenSecret string
	output      string
	save        bool
}

func newConnectCommand(open appOpener, stdout, stderr io.Writer) *cobra.Command {
	var opts connectOptions

	cmd := &cobra.Command{
		Use:   "connect",
		Short: "Sign in once and print the site's data sources",
		Long: `Sign in, list the data sources and sign out again.

Server URL, site and token name default to the saved settings. The token
secret comes from --token-secret, then $` + SecretEnv + `, then a hidden
prompt when stdin is a terminal.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := render.ParseFormat(opts.output)
			if err != nil {
				return err
			}

			// Text output is the view itself; structured output keeps
			// status lines off stdout.
			viewOut := stderr
			if format == render.FormatText {
				viewOut = stdout
			}

			app, err := open(cmd, stdout, viewOut)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))

			return app.connectOnce(cmd, opts, format, stdout, stderr)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.server, "server", "", "server URL, e.g. https://10ax.online.tableau.com")
	f.StringVar(&opts.site, "site", "", "site content URL")
	f.StringVar(&opts.tokenName, "token-name", "", "personal access token name")
	f.StringVar(&opts.tokenSecret, "token-secret", "", "personal access token secret")
	f.StringVarP(&opts.output, "output", "o", string(render.FormatText), "output format: text, json or yaml")
	f.BoolVar(&opts.save, "save", false, "save server URL, site and token name after a successful connect")
	return cmd
}

func (a *App) connectOnce(cmd *cobra.Command, opts connectOptions, format render.Format, stdout, stderr io.Writer) error {
	ctx := cmd.Context()
	a.ctrl.Init(ctx)

	flags := cmd.Flags()
	if flags.Changed("server") {
		a.ctrl.SetField(ui.FieldServerURL, opts.server)
	}
	if flags.Changed("site") {
		a.ctrl.SetField(ui.FieldSiteName, opts.site)
	}
	if flags.Changed("token-name") {
		a.ctrl.SetField(ui.FieldTokenName, opts.tokenName)
	}

	secret := opts.tokenSecret
	if secret == "" {
		secret = os.Getenv(SecretEnv)
	}
	if secret == "" {
		s, err := GetSecret(stderr)
		if err != nil && !errors.Is(err, ErrNoTerminal) {
			return err
		}
		secret = s
	}
	a.ctrl.SetField(ui.FieldTokenSecret, secret)

	sources, err := a.ctrl.Connect(ctx)
	if err != nil {
		return err
	}

	if opts.save {
		if err := a.ctrl.SaveSettings(ctx); err != nil {
			return err
		}
	}

	if format == render.FormatText {
		return nil
	}
	return render.Encode(stdout, format, sources)
}

func newSettingsCommand(open appOpener, stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show, save or clear the saved connection settings",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := open(cmd, stdout, io.Discard)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))

			app.ctrl.Init(cmd.Context())
			return app.ShowForm(cmd.Context())
		},
	}

	var saveOpts connectOptions
	save := &cobra.Command{
		Use:   "save",
		Short: "Save server URL, site and token name",
		Long:  "Save server URL, site and token name. Flags that are not given keep their saved value. The token secret is never saved.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := open(cmd, stdout, stdout)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))

			ctx := cmd.Context()
			app.ctrl.Init(ctx)
			flags := cmd.Flags()
			if flags.Changed("server") {
				app.ctrl.SetField(ui.FieldServerURL, saveOpts.server)
			}
			if flags.Changed("site") {
				app.ctrl.SetField(ui.FieldSiteName, saveOpts.site)
			}
			if flags.Changed("token-name") {
				app.ctrl.SetField(ui.FieldTokenName, saveOpts.tokenName)
			}
			return app.Save(ctx)
		},
	}
	save.Flags().StringVar(&saveOpts.server, "server", "", "server URL")
	save.Flags().StringVar(&saveOpts.site, "site", "", "site content URL")
	save.Flags().StringVar(&saveOpts.tokenName, "token-name", "", "personal access token name")

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Erase the saved settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := open(cmd, stdout, stdout)
			if err != nil {
				return err
			}
			defer app.Close(context.WithoutCancel(cmd.Context()))

			return app.Clear(cmd.Context())
		},
	}

	cmd.AddCommand(show, save, clearCmd)
	return cmd
}

// Execute runs the root command against the process streams and exits with
// status 1 on error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(os.Stdin, os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// Package cli implements the operator console for browsing and purging activity logs.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/noah-isme/residence-admin-api/internal/activitylog"
	"github.com/noah-isme/residence-admin-api/internal/config"
	"github.com/noah-isme/residence-admin-api/pkg/activityapi"
)

var version = "dev"

// SetVersion records the build version printed by the version command.
func SetVersion(v string) {
	version = v
}

// ConfirmFunc asks the operator to approve a destructive action.
type ConfirmFunc func(title, description string) (bool, error)

// Option customises the console.
type Option func(*console)

// WithIO redirects the console input and output streams.
func WithIO(in io.Reader, out io.Writer) Option {
	return func(c *console) {
		c.in = in
		c.out = out
	}
}

// WithConfirm replaces the interactive confirmation prompt.
func WithConfirm(fn ConfirmFunc) Option {
	return func(c *console) {
		if fn != nil {
			c.confirm = fn
		}
	}
}

// console carries the state shared by every command of one invocation.
type console struct {
	configPath string
	baseURL    string
	token      string
	cfg        config.ConsoleConfig
	client     *activityapi.Client
	engine     *activitylog.Engine
	logger     zerolog.Logger
	in         io.Reader
	out        io.Writer
	render     *renderer
	confirm    ConfirmFunc
}

// NewRootCommand builds the console command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	c := &console{
		in:      os.Stdin,
		out:     os.Stdout,
		confirm: huhConfirm,
	}
	for _, opt := range opts {
		opt(c)
	}

	root := &cobra.Command{
		Use:   "residence-console",
		Short: "Browse and manage residence activity logs",
		Long: `residence-console queries the activity log API of the residence admin backend.

It applies the same filter, pagination and permission rules as the admin dashboard.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" || cmd.Name() == "version" {
				return nil
			}
			return c.setup()
		},
	}
	root.SetIn(c.in)
	root.SetOut(c.out)
	root.SetErr(c.out)

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "console config file (default ./residence-console.yaml)")
	root.PersistentFlags().StringVar(&c.baseURL, "base-url", "", "activity log API base URL")
	root.PersistentFlags().StringVar(&c.token, "token", "", "bearer token for the API")

	root.AddCommand(c.newLogsCommand())
	root.AddCommand(c.newTaxonomyCommand())
	root.AddCommand(c.newBrowseCommand())
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "residence-console %s\n", version)
		},
	})
	return root
}

// Execute runs the console with os.Args.
func Execute(ctx context.Context) error {
	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	if err != nil {
		newRenderer(os.Stderr).failure(err.Error())
	}
	return err
}

func (c *console) setup() error {
	cfg, err := config.LoadConsole(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if c.baseURL != "" {
		cfg.BaseURL = c.baseURL
	}
	if c.token != "" {
		cfg.Token = c.token
	}
	c.cfg = cfg

	level := zerolog.WarnLevel
	if cfg.Debug {
		level = zerolog.DebugLevel
	}
	c.logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	c.client = activityapi.New(cfg.BaseURL,
		activityapi.WithToken(cfg.Token),
		activityapi.WithTimeout(cfg.Timeout),
		activityapi.WithLogger(c.logger),
	)
	c.engine = activitylog.New(c.client,
		activitylog.WithPrivileged(cfg.Privileged()),
		activitylog.WithPermissions(cfg.Permissions),
		activitylog.WithLogger(c.logger),
	)
	c.render = newRenderer(c.out)
	return nil
}

// drainNotifications prints queued engine notifications without blocking.
func (c *console) drainNotifications() {
	for {
		select {
		case n := <-c.engine.Notifications():
			c.render.notification(n)
		default:
			return
		}
	}
}

func (c *console) requirePrivileged(action string) error {
	if !c.cfg.Privileged() {
		return fmt.Errorf("%s requires the admin or super_admin role (configured role %q)", action, c.cfg.Role)
	}
	return nil
}

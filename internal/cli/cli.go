// Package cli implements the ziactl commands.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tphakala/go-zia"
	"github.com/tphakala/go-zia/internal/config"
)

// Version is set at build time.
var Version = "dev"

const (
	JSONOutput = "json"
	TextOutput = "text"
)

// App carries the global flags and the logger shared by all commands.
type App struct {
	ConfigPath string
	Output     string
	Verbose    bool
	Log        zerolog.Logger

	// ClientOptions are applied after the options derived from the config.
	ClientOptions []zia.ClientOption
}

// NewCommand builds the root command. preRun runs before every command,
// after the global flags are parsed.
func NewCommand(app *App, preRun func(cmd *cobra.Command, args []string)) *cobra.Command {
	cmd := &cobra.Command{
		Use:              "ziactl [OPTIONS] COMMAND [ARG...]",
		Short:            "Manage Zscaler Internet Access users, groups and locations",
		SilenceUsage:     true,
		TraverseChildren: true,
		Version:          Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if preRun != nil {
				preRun(cmd, args)
			}
			if app.Output != JSONOutput && app.Output != TextOutput {
				return errors.New("unknown output format. Options: text, json")
			}
			return nil
		},
	}

	cmd.SetVersionTemplate("ziactl version {{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.StringVarP(&app.ConfigPath, "config", "c", "", "Path to a YAML config file. ZIA_* environment variables override it.")
	flags.StringVarP(&app.Output, "output", "o", TextOutput, "Output format to the console. Options: text, json.")
	flags.BoolVar(&app.Verbose, "verbose", false, "turn on verbose logging")

	cmd.AddCommand(
		LoginCommand(app),
		PullCommand(app),
		UsersCommand(app),
		GroupCommand(app),
		LocationsCommand(app),
		StatusCommand(app),
		ActivateCommand(app),
	)

	return cmd
}

// withClient builds a client from the configuration, runs fn and logs out
// afterwards, even when fn fails.
func (a *App) withClient(ctx context.Context, fn func(*zia.Client) error) error {
	cfg, err := config.Load(a.ConfigPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	opts := append(cfg.ClientOptions(),
		zia.WithLogger(a.Log),
		zia.WithUserAgent("ziactl/"+Version),
	)
	opts = append(opts, a.ClientOptions...)

	client, err := zia.NewClient(opts...)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	defer func() {
		if err := client.Logout(context.WithoutCancel(ctx)); err != nil {
			a.Log.Warn().Err(err).Msg("logout failed")
		}
	}()

	return fn(client)
}

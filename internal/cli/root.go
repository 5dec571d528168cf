// Package cli defines the cobra commands shared by the gtools binaries.
// Every command prints exactly one JSON envelope to stdout; failures of any
// kind, including bad flags, become {"success": false} and exit status 1.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"google.golang.org/api/option"

	"github.com/bobuk/gtools/internal/auth"
	"github.com/bobuk/gtools/internal/config"
	"github.com/bobuk/gtools/internal/google"
	"github.com/bobuk/gtools/internal/logger"
	"github.com/bobuk/gtools/internal/output"
)

// version is set at build time via -ldflags.
var version = "dev"

// OptionsFunc returns the client options used to build API services.
type OptionsFunc func(ctx context.Context, cfg *config.Config) ([]option.ClientOption, error)

// App holds the state shared by the commands of one binary.
type App struct {
	configPath string
	verbosity  int
	config     *config.Config
	newOptions OptionsFunc
}

// NewApp returns an App that authenticates through the OAuth flow.
func NewApp() *App {
	return &App{newOptions: authenticatedOptions}
}

func authenticatedOptions(ctx context.Context, cfg *config.Config) ([]option.ClientOption, error) {
	ts, err := auth.New(cfg).TokenSource(ctx)
	if err != nil {
		return nil, err
	}
	return google.ClientOptions(ctx, ts, cfg), nil
}

// Root builds a root command carrying the given tool groups plus auth and
// version.
func (a *App) Root(use, short string, groups ...*cobra.Command) *cobra.Command {
	root := &cobra.Command{
		Use:           use,
		Short:         short,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return a.setup()
		},
		RunE: missingCommand,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to the TOML config file")
	root.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", "log progress to stderr (repeat for more)")

	root.AddCommand(groups...)
	root.AddCommand(a.AuthCommand(), a.versionCommand())
	return root
}

// ToolRoot makes a tool group the root of its own binary: the group's
// subcommands move to the root and auth is added alongside them.
func (a *App) ToolRoot(group *cobra.Command) *cobra.Command {
	root := a.Root(group.Use, group.Short)
	for _, sub := range group.Commands() {
		group.RemoveCommand(sub)
		root.AddCommand(sub)
	}
	return root
}

func (a *App) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	a.config = cfg
	logger.SetLevel(cfg.VerbosityLevel + a.verbosity)
	if cfg.Path != "" {
		logger.Debug("Loaded config from %s", cfg.Path)
	}
	return nil
}

func (a *App) options(ctx context.Context) ([]option.ClientOption, error) {
	return a.newOptions(ctx, a.config)
}

// run adapts a data-returning handler to cobra, printing the success
// envelope. Errors propagate to Execute.
func run(fn func(cmd *cobra.Command, args []string) (any, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		data, err := fn(cmd, args)
		if err != nil {
			return err
		}
		return output.Success(cmd.OutOrStdout(), data)
	}
}

func missingCommand(cmd *cobra.Command, _ []string) error {
	return fmt.Errorf("missing command; run '%s --help' for usage", cmd.CommandPath())
}

// group returns a parent command that only holds subcommands.
func group(use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE:  missingCommand,
	}
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		RunE: run(func(_ *cobra.Command, _ []string) (any, error) {
			return map[string]string{"version": version}, nil
		}),
	}
}

// Execute runs root and prints the failure envelope when it returns an
// error. It returns the process exit code.
func Execute(ctx context.Context, root *cobra.Command, stdout io.Writer) int {
	root.SetOut(stdout)
	err := root.ExecuteContext(ctx)
	if err != nil {
		if werr := output.Failure(stdout, err); werr != nil {
			logger.Prompt("%v", werr)
		}
	}
	return output.ExitCode(err)
}

package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/agentx-labs/uikit/internal/branding"
	"github.com/agentx-labs/uikit/internal/config"
	"github.com/agentx-labs/uikit/internal/logging"
	"github.com/agentx-labs/uikit/internal/telemetry"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagVerbose bool
	flagTrace   bool
	flagCwd     string

	provider *telemetry.Provider
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` copies UI components from a registry into your project as source code,
rewritten for your project's aliases, style and icon library, and installs the npm packages they need.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()

		level := charmlog.InfoLevel
		if flagVerbose {
			level = charmlog.DebugLevel
		}
		ctx := logging.WithLogger(cmd.Context(), logging.New(cmd.ErrOrStderr(), level))

		p, err := telemetry.NewProvider(flagTrace, cmd.ErrOrStderr(), branding.CLIName())
		if err != nil {
			return err
		}
		provider = p
		if p.Enabled() {
			logging.FromContext(ctx).Debug("tracing enabled")
		}
		cmd.SetContext(ctx)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&flagTrace, "trace", false, "Print trace spans to stderr on exit")
	rootCmd.PersistentFlags().StringVarP(&flagCwd, "cwd", "c", "", "Project directory (defaults to the current directory)")
}

// Execute runs the root command with build info injected via ldflags.
// Errors are printed to stderr before they are returned.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	err := rootCmd.ExecuteContext(context.Background())
	if provider != nil {
		if serr := provider.Shutdown(context.Background()); serr != nil {
			fmt.Fprintf(os.Stderr, "flushing traces: %v\n", serr)
		}
	}
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

// projectDir returns the absolute project directory from --cwd.
func projectDir() (string, error) {
	dir := flagCwd
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(dir)
}

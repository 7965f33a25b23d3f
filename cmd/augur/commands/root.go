// Package commands implements the CLI commands for augur.
package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/augur/internal/build"
	"go.trai.ch/augur/internal/core/domain"
)

// CLI represents the command line interface for augur.
type CLI struct {
	app     Application
	metrics MetricsDumper
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Predict(ctx context.Context, rawID string, horizonDays int) ([]domain.ForecastPoint, error)
	History(ctx context.Context, rawID string) (domain.Series, error)
	Train(ctx context.Context, rawID string) (domain.ArtifactMeta, error)
	Invalidate(rawID string) error
	Forget(rawID string) error
	Models() ([]domain.ArtifactMeta, error)
	Settings() domain.Settings
}

// MetricsDumper writes collected metrics in a human readable form.
type MetricsDumper interface {
	Dump(w io.Writer) error
}

// New creates a new CLI instance with the given app.
func New(a Application) *CLI {
	rootCmd := &cobra.Command{
		Use:           "augur",
		Short:         "Forecast daily price series from historical market data",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("output", "o", formatTable, "Output format: table or json")
	rootCmd.PersistentFlags().Bool("metrics", false, "Print collected metrics to stderr when the command finishes")

	c := &CLI{
		app:     a,
		rootCmd: rootCmd,
	}

	rootCmd.PersistentPostRunE = c.dumpMetrics

	rootCmd.AddCommand(c.newPredictCmd())
	rootCmd.AddCommand(c.newHistoryCmd())
	rootCmd.AddCommand(c.newTrainCmd())
	rootCmd.AddCommand(c.newInvalidateCmd())
	rootCmd.AddCommand(c.newForgetCmd())
	rootCmd.AddCommand(c.newModelsCmd())
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// WithMetrics sets the source printed by the --metrics flag.
func (c *CLI) WithMetrics(m MetricsDumper) *CLI {
	c.metrics = m
	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}

func (c *CLI) dumpMetrics(cmd *cobra.Command, _ []string) error {
	enabled, _ := cmd.Flags().GetBool("metrics")
	if !enabled || c.metrics == nil {
		return nil
	}
	return c.metrics.Dump(cmd.ErrOrStderr())
}

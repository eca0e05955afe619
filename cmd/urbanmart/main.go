package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"urbanmart-dashboard/internal/cli"
	"urbanmart-dashboard/internal/config"
	"urbanmart-dashboard/internal/metrics"
	"urbanmart-dashboard/internal/observability"
	"urbanmart-dashboard/internal/services"
)

const version = "1.0.0"

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration and the source table.
type app struct {
	v         *viper.Viper
	stdin     io.Reader
	stdout    io.Writer
	stderr    io.Writer
	logger    *slog.Logger
	analytics *services.Analytics
	filters   *filterFlags
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{v: viper.New(), stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "urbanmart",
		Short: "UrbanMart retail sales analytics",
		Long: `urbanmart loads the UrbanMart sales export, derives revenue, cost and
profit per line item, and answers filtered, grouped queries over it.

Run without a subcommand for the interactive menu.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.initialize,
		RunE:              a.runMenu,
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml, toml or json)")
	flags.String("data", "", "sales CSV file (default: urbanmart_sales.csv)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, text)")

	_ = a.v.BindPFlag("config_file", flags.Lookup("config"))
	_ = a.v.BindPFlag("database.csv_file", flags.Lookup("data"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logger.format", flags.Lookup("log-format"))

	a.filters = &filterFlags{}
	a.filters.register(flags)

	rootCmd.AddCommand(a.menuCmd())
	rootCmd.AddCommand(a.summaryCmd())
	rootCmd.AddCommand(a.topCmd())
	rootCmd.AddCommand(a.breakdownCmd())
	rootCmd.AddCommand(a.trendCmd())
	rootCmd.AddCommand(a.exportCmd())

	return rootCmd
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initialize loads configuration with flags taking precedence, then loads
// the source table. A source that cannot be loaded fails the command.
func (a *app) initialize(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadFrom(a.v)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a.logger = observability.NewLoggerTo(a.stderr, cfg.Logger)

	a.analytics, err = services.NewFromConfig(cfg, metrics.New(), a.logger)
	if err != nil {
		return err
	}

	table, err := a.analytics.Table(cmd.Context())
	if err != nil {
		cli.Error(a.stderr, err)
		return fmt.Errorf("failed to load %s: %w", cfg.Database.CSVFile, err)
	}
	a.logger.Debug("source table ready", "identity", table.Identity(), "rows", table.Len())
	return nil
}

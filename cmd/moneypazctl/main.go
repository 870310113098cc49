package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"moneypaz/internal/backend"
	"moneypaz/internal/cli"
	"moneypaz/internal/config"
	"moneypaz/internal/log"
	"moneypaz/internal/services"
	"moneypaz/internal/storage"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger *log.Logger
	out    io.Writer
	errOut io.Writer
}

func main() {
	cli.LoadEnvFile()

	ctx, stop := cli.GracefulShutdown(context.Background(), log.Discard())
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{cfg: config.Load(), out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "moneypazctl",
		Short:         "Operate a moneypaz finance store",
		Long:          `moneypazctl reads and changes the finance state, exports it, and manages the admin store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.DataBackend, "backend", a.cfg.DataBackend, "data backend (memory, sqlite)")
	flags.StringVar(&a.cfg.SQLiteDBPath, "db", a.cfg.SQLiteDBPath, "SQLite database path")
	flags.StringVar(&a.cfg.StateKey, "state-key", a.cfg.StateKey, "key the finance state is stored under")
	flags.StringVar(&a.cfg.UserID, "user-id", a.cfg.UserID, "user id attached to change events")
	flags.StringVar(&a.cfg.Timezone, "timezone", a.cfg.Timezone, "IANA time zone for calendar days and months")
	flags.StringVar(&a.cfg.AMQPURL, "amqp-url", a.cfg.AMQPURL, "RabbitMQ URL for change events (empty disables them)")
	flags.StringVar(&a.cfg.LogLevel, "log-level", a.cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&a.cfg.LogFormat, "log-format", a.cfg.LogFormat, "log format (text, json)")

	root.AddCommand(summaryCmd(a))
	root.AddCommand(movementsCmd(a))
	root.AddCommand(balanceCmd(a))
	root.AddCommand(userCmd(a))
	root.AddCommand(resetCmd(a))
	root.AddCommand(categoriesCmd(a))
	root.AddCommand(conceptsCmd(a))
	root.AddCommand(exportCmd(a))
	root.AddCommand(adminCmd(a))
	root.AddCommand(migrateCmd(a))

	return root
}

// init validates the merged configuration. Logs go to stderr so command
// output stays machine readable.
func (a *app) init() error {
	if err := a.cfg.Validate(); err != nil {
		return err
	}
	a.logger = log.New(log.Config{
		Level:     log.ParseLevel(a.cfg.LogLevel),
		Format:    a.cfg.LogFormat,
		Component: log.ComponentCLI,
		Output:    a.errOut,
	})
	return nil
}

// openStore builds the finance store for the configured backend. The
// returned close function releases the backend.
func (a *app) openStore(ctx context.Context) (*services.FinanceStore, func(), error) {
	bcfg, err := backend.FromAppConfig(a.cfg)
	if err != nil {
		return nil, nil, err
	}
	result, err := backend.NewFactory(a.logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	store := result.OpenStore(ctx, bcfg,
		services.WithLocation(a.cfg.Location()),
		services.WithLogger(a.logger))
	closeFn := func() {
		if err := result.Close(); err != nil {
			a.logger.Warn("Backend cleanup failed", log.FieldError, err)
		}
	}
	return store, closeFn, nil
}

// openRepo opens the SQLite admin store.
func (a *app) openRepo() (*storage.SQLiteRepository, error) {
	return cli.InitSQLite(a.logger, a.cfg.SQLiteDBPath)
}

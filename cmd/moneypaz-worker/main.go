package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"moneypaz/internal/amqp"
	"moneypaz/internal/cli"
	"moneypaz/internal/config"
	"moneypaz/internal/log"
	"moneypaz/internal/sheets"
	gsheet "moneypaz/internal/sheets/google"
	"moneypaz/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	cli.LoadEnvFile()
	cfg, logger := cli.LoadAndValidateConfig()
	logger = logger.WithComponent(log.ComponentWorker)

	logger.Info("Starting moneypaz-worker")

	ctx, stop := cli.GracefulShutdown(context.Background(), logger)
	defer stop()

	// The admin tables always live in SQLite, whatever backend the server uses.
	repo, err := cli.InitSQLite(logger, cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", log.FieldError, err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	mirror, err := sheetsMirror(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", log.FieldError, err)
		os.Exit(1)
	}

	g, gctx := errgroup.WithContext(ctx)
	running := 0

	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue,
			amqp.WithUserID(cfg.UserID),
			amqp.WithLogger(logger))
		if err != nil {
			logger.Error("Failed to initialize AMQP client", log.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()

		mw := worker.NewMirrorWorker(repo, mirror, cfg.UserID, logger)
		g.Go(func() error {
			err := client.Consume(gctx, mw.HandleChange)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		})
		running++
	} else {
		logger.Info("Change events disabled - no AMQP_URL provided")
	}

	// Reconciliation reads the server's snapshot, which only the sqlite
	// backend shares with this process.
	if cfg.DataBackend == "sqlite" && cfg.UserID != "" {
		rcfg := worker.DefaultReconcilerConfig()
		rcfg.PollInterval = cfg.ReconcileInterval
		rcfg.StateKey = cfg.StateKey
		rcfg.UserID = cfg.UserID
		reconciler := worker.NewReconciler(repo, repo, rcfg, logger)
		if err := reconciler.Start(gctx); err != nil {
			logger.Error("Failed to start reconciler", log.FieldError, err)
			os.Exit(1)
		}
		g.Go(func() error {
			<-gctx.Done()
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return reconciler.Stop(stopCtx)
		})
		running++
	} else {
		logger.Info("Snapshot reconciliation disabled", "backend", cfg.DataBackend, "user_id_set", cfg.UserID != "")
	}

	if running == 0 {
		logger.Error("Nothing to do: configure AMQP_URL or the sqlite backend with USER_ID")
		os.Exit(1)
	}

	if err := g.Wait(); err != nil {
		logger.Error("Worker stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}

// sheetsMirror returns the Google Sheets mirror, or nil when no
// spreadsheet is configured.
func sheetsMirror(ctx context.Context, cfg *config.Config, logger *log.Logger) (sheets.Mirror, error) {
	if !cfg.SheetsEnabled() {
		logger.Info("Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Config{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		SheetName:       cfg.GoogleSheetName,
		CredentialsJSON: cfg.GoogleServiceAccountJSON,
		CredentialsFile: cfg.GoogleServiceAccountFile,
		Location:        cfg.Location(),
		Logger:          logger,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}

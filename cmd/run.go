package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"enquirysync/config"
	"enquirysync/engine"
	"enquirysync/research"
	"enquirysync/rewrite"
	"enquirysync/sheets"
	"enquirysync/store"
	"enquirysync/streamers"
	"enquirysync/streamers/cli"
	"enquirysync/wsbridge"
)

var (
	runOnce       bool
	runShowOutput bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the sheet sync loop",
	Long: `Run polls the configured sheet, researches every unanswered query and
writes the rewritten answer back to its row. It keeps going until interrupted.

With --once a single cycle runs and the command exits non-zero if it failed.
When the config has a commander block, events are also published over WebSocket.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		logger := newLogger()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := runSync(ctx, cfg, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func runSync(ctx context.Context, cfg *config.Config, logger hclog.Logger) error {
	opts, err := sheets.ClientOptions(ctx, cfg.Sheet.CredentialsFile, cfg.Sheet.TokenFile)
	if err != nil {
		return fmt.Errorf("sheets credentials: %w", err)
	}
	sheetsClient, err := sheets.NewGoogleClient(ctx, cfg.Sheet.SpreadsheetID, opts...)
	if err != nil {
		return fmt.Errorf("sheets client: %w", err)
	}

	executor, err := research.New(cfg.Executor, logger.Named("research"))
	if err != nil {
		return err
	}

	rewriter, err := rewrite.Open(ctx, cfg)
	if err != nil {
		return fmt.Errorf("rewriter: %w", err)
	}
	defer rewriter.Close()

	stores, err := store.NewBundle(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer stores.Close()

	var handler streamers.SyncHandler = streamers.NewStoringSyncHandler(
		cli.NewSyncHandler(runShowOutput), stores, logger.Named("store"))

	if cfg.Commander != nil {
		client := wsbridge.NewClient(cfg, stores, Version, logger.Named("wsbridge"))
		if err := client.Connect(); err != nil {
			// The sync loop does not depend on commander
			logger.Warn("commander unavailable, events stay local", "error", err)
		} else {
			defer client.Close()
			go func() {
				if err := client.Run(ctx); err != nil {
					logger.Warn("commander connection closed", "error", err)
				}
			}()
			logger.Info("connected to commander", "url", cfg.Commander.URL, "instance_id", client.InstanceID())
			handler = streamers.MultiSyncHandler{handler, wsbridge.NewWSSyncHandler(client, runShowOutput)}
		}
	}

	eng, err := engine.New(cfg.Sheet, cfg.Sync, engine.Deps{
		Sheets:   sheetsClient,
		Executor: executor,
		Rewriter: rewriter,
		Handler:  handler,
		Logger:   logger.Named("engine"),
	})
	if err != nil {
		return err
	}

	if runOnce {
		_, err := eng.RunCycle(ctx)
		return err
	}
	return eng.Run(ctx)
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().BoolVar(&runOnce, "once", false, "Run a single cycle and exit")
	runCmd.Flags().BoolVar(&runShowOutput, "show-output", false, "Echo raw research output while it streams")
}

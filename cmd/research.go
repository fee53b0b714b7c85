package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"enquirysync/config"
	"enquirysync/research"
	"enquirysync/streamers/cli"
)

var researchShowOutput bool

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Research a single query and print the report",
	Long: `Research runs only the configured executor for one query. Nothing is read
from or written to the sheet and no rewrite happens.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		// Only the executor block matters here
		cfg, err := config.Load(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
		if cfg.Executor == nil {
			fmt.Fprintln(os.Stderr, "Error: no executor block in config")
			os.Exit(1)
		}
		if err := cfg.Executor.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: executor '%s': %v\n", cfg.Executor.Kind, err)
			os.Exit(1)
		}
		logger := newLogger()

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		printer := cli.NewReportPrinter(researchShowOutput)

		executor, err := research.New(cfg.Executor, logger.Named("research"))
		if err != nil {
			printer.Error(err)
			os.Exit(1)
		}

		printer.Start(args[0])
		report, err := executor.Research(ctx, research.Request{
			Query:  args[0],
			OnLine: printer.Line,
		})
		if err != nil {
			printer.Error(err)
			os.Exit(1)
		}
		printer.Finish(report)
	},
}

func init() {
	rootCmd.AddCommand(researchCmd)
	researchCmd.Flags().BoolVar(&researchShowOutput, "show-output", false, "Echo raw executor output while it streams")
}

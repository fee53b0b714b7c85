package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"enquirysync/store"
	"enquirysync/streamers/cli"
)

var (
	historyLimit  int
	historyOffset int
	historyCycle  string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent sync cycles from the ledger",
	Long: `History lists recorded sync cycles, newest first. With --cycle it shows
every row attempt of that cycle instead.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		stores, err := store.NewBundle(context.Background(), cfg.Storage)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening store: %v\n", err)
			os.Exit(1)
		}
		defer stores.Close()

		if historyCycle != "" {
			err = printCycle(stores, historyCycle)
		} else {
			err = printCycles(stores, historyLimit, historyOffset)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func printCycles(stores *store.Bundle, limit, offset int) error {
	cycles, total, err := stores.Cycles.ListCycles(limit, offset)
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		fmt.Println("No cycles recorded")
		return nil
	}

	fmt.Printf("Showing %d of %d cycle(s)\n", len(cycles), total)
	for _, c := range cycles {
		fmt.Printf("  %s  %s  %s  rows: %d  selected: %d  answered: %d\n",
			c.ID, c.StartedAt.Local().Format(time.DateTime), statusColor(c.Status), c.Rows, c.Selected, c.Answered)
		if c.Error != nil {
			fmt.Printf("      %s%s%s\n", cli.ColorRed, *c.Error, cli.ColorReset)
		}
	}
	return nil
}

func printCycle(stores *store.Bundle, id string) error {
	c, err := stores.Cycles.GetCycle(id)
	if err != nil {
		return err
	}
	attempts, err := stores.Attempts.GetAttemptsByCycle(id)
	if err != nil {
		return err
	}

	fmt.Printf("Cycle %s (%s)\n", c.ID, statusColor(c.Status))
	fmt.Printf("Started: %s\n", c.StartedAt.Local().Format(time.DateTime))
	if c.FinishedAt != nil {
		fmt.Printf("Finished: %s\n", c.FinishedAt.Local().Format(time.DateTime))
	}
	fmt.Printf("Rows: %d, selected: %d, answered: %d\n", c.Rows, c.Selected, c.Answered)

	for _, a := range attempts {
		soft := ""
		if a.Soft {
			soft = " (degraded)"
		}
		fmt.Printf("\n  Row %d  %s%s  stage: %s\n", a.Row, statusColor(a.Status), soft, a.Stage)
		fmt.Printf("    Query: %s\n", a.Query)
		if a.AnswerPreview != "" {
			fmt.Printf("    %s%s%s\n", cli.ColorGray, a.AnswerPreview, cli.ColorReset)
		}
		if a.Error != nil {
			fmt.Printf("    %s%s%s\n", cli.ColorRed, *a.Error, cli.ColorReset)
		}
	}
	return nil
}

func statusColor(status string) string {
	switch status {
	case store.StatusCompleted, store.StatusAnswered:
		return cli.ColorGreen + status + cli.ColorReset
	case store.StatusFailed:
		return cli.ColorRed + status + cli.ColorReset
	default:
		return cli.ColorOrange + status + cli.ColorReset
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of cycles to show")
	historyCmd.Flags().IntVar(&historyOffset, "offset", 0, "Number of cycles to skip")
	historyCmd.Flags().StringVar(&historyCycle, "cycle", "", "Show the row attempts of one cycle")
}

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Version}}\n")
	rootCmd.Long = fmt.Sprintf(`EnquirySync %s

Polls a Google Sheet for unanswered customer enquiries, researches each one
with DeerFlow, rewrites the report with an LLM and writes it back to the row.

Configure the sheet, executor, rewriter model and storage in HCL files,
then start the sync loop.

Get started:
  enquirysync verify <path>         Validate your configuration
  enquirysync research "<query>"    Research a single query
  enquirysync run -c <path>         Start the sync loop
  enquirysync history -c <path>     Show recent sync cycles`, Version)
}

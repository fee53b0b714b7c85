package cmd

import (
	"fmt"
	"os"

	"enquirysync/config"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify that the configuration is valid",
	Long:  `Verify parses and validates the HCL configuration files. Path can be a file or directory and defaults to --config.`,
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if len(args) == 1 {
			path = args[0]
		}
		cfg, err := config.LoadAndValidate(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Check for unset variables
		var warnings []string
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if resolved == "" && v.Default == "" {
				warnings = append(warnings, fmt.Sprintf("variable '%s' has no default and no value set", v.Name))
			}
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Found %d model(s)\n", len(cfg.Models))
		for _, m := range cfg.Models {
			fmt.Printf("  - %s (provider: %s, models: %v)\n", m.Name, m.Provider, m.AllowedModels)
		}
		fmt.Printf("Found %d variable(s)\n", len(cfg.Variables))
		for _, v := range cfg.Variables {
			resolved, _ := config.ResolveVariableValue(&v)
			if v.Secret {
				if resolved != "" {
					fmt.Printf("  - %s (secret, set)\n", v.Name)
				} else {
					fmt.Printf("  - %s (secret, not set)\n", v.Name)
				}
			} else {
				fmt.Printf("  - %s = %q\n", v.Name, resolved)
			}
		}

		s := cfg.Sheet
		fmt.Printf("Sheet: %s (range: %s, schema: %s)\n", s.SpreadsheetID, s.ReadRange(), s.Schema)
		switch {
		case s.TokenFile != "":
			fmt.Printf("  auth: OAuth token %s\n", s.TokenFile)
		case s.CredentialsFile != "":
			fmt.Printf("  auth: service account %s\n", s.CredentialsFile)
		default:
			fmt.Printf("  auth: application default credentials\n")
		}

		e := cfg.Executor
		switch e.Kind {
		case config.ExecutorStream:
			fmt.Printf("Executor: stream (%s)\n", e.URL)
		case config.ExecutorProcess:
			fmt.Printf("Executor: process (%s %v %s, marker: %q)\n", e.Runner, e.Args, e.Script, e.Marker)
			if _, err := os.Stat(e.Script); err != nil {
				warnings = append(warnings, fmt.Sprintf("executor script '%s' not found", e.Script))
			}
		}

		_, modelName, _ := cfg.ResolveModel(cfg.Rewriter.Model)
		fmt.Printf("Rewriter: %s (%s)\n", cfg.Rewriter.Model, modelName)
		fmt.Printf("Sync interval: %s\n", cfg.Sync.IntervalDuration())
		fmt.Printf("Storage: %s\n", cfg.Storage.Backend)
		if cfg.Commander != nil {
			fmt.Printf("Commander: %s (instance: %s)\n", cfg.Commander.URL, cfg.Commander.InstanceName)
		}

		if len(warnings) > 0 {
			fmt.Printf("\nWarnings:\n")
			for _, w := range warnings {
				fmt.Printf("  - %s\n", w)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

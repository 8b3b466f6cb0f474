package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/vaultsentry/vaultsentry/pkg/client"
)

// version is overridden at build time via -ldflags "-X main.version=...".
var version = "dev"

var (
	serverURL string
	api       *client.Client
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sentry",
	Short: "VaultSentry threat engine CLI",
	Long: `sentry is the command-line interface for the VaultSentry threat engine.

It triggers assessments, inspects score history, and validates
remediation actions against a running sentryd instance.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		viper.SetEnvPrefix("sentry")
		viper.AutomaticEnv()
		if serverURL == "" {
			serverURL = viper.GetString("server_url")
		}
		if serverURL == "" {
			serverURL = "http://localhost:8090"
		}
		api = client.New(serverURL)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "sentryd base URL (default http://localhost:8090)")
	rootCmd.AddCommand(analyzeCmd, historyCmd, versionCmd)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <vault-id>",
	Short: "Run a threat assessment for a vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid vault id %q", args[0])
		}

		a, err := api.Analyze(cmd.Context(), vaultID)
		if err != nil {
			return err
		}

		fmt.Printf("Assessment %s\n", a.ID)
		fmt.Printf("  composite: %.1f  level: %s  action: %s\n",
			a.Scores.Composite, a.Level, a.SelectedAction)
		if a.Scores.Velocity != nil {
			fmt.Printf("  velocity: %+.1f points/hour\n", *a.Scores.Velocity)
		}
		if len(a.Recommendations) > 0 {
			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "  PRIORITY\tURGENCY\tRECOMMENDATION")
			for _, r := range a.Recommendations {
				fmt.Fprintf(w, "  %d\t%s\t%s\n", r.Priority, r.Urgency, r.Title)
			}
			w.Flush()
		}
		for _, q := range a.Triage.Questions {
			fmt.Printf("  verify: %s\n", q)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history <vault-id>",
	Short: "Show the recorded score history for a vault",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vaultID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid vault id %q", args[0])
		}

		snapshots, err := api.History(cmd.Context(), vaultID)
		if err != nil {
			return err
		}
		if len(snapshots) == 0 {
			fmt.Println("no snapshots recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TIMESTAMP\tCOMPOSITE")
		for _, s := range snapshots {
			fmt.Fprintf(w, "%s\t%.1f\n", s.Timestamp.Format(time.RFC3339), s.Composite)
		}
		return w.Flush()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the CLI version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("sentry", version)
	},
}

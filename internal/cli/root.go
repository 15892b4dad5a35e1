// Package cli defines the recurrency command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "recurrency",
	Short: "A household time-debt economy for earning your vices",
	Long: `reCurrency tracks a small group's vice/virtue contracts.

Each member signs a contract: one vice to moderate and two virtues that
pay it off. Indulging adds time-debt, virtues remove it, and passing the
bankruptcy limit freezes the account until someone bails you out.

Start the server with 'recurrency serve' and open the dashboard in a
browser.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the recurrency version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "recurrency %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

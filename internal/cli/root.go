// Package cli implements the signaldesk command line interface.
package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// version can be overridden at build time via:
	// go build -ldflags "-X github.com/signaldesk/signaldesk/internal/cli.version=1.2.3"
	version = "0.4.0"
	logo    = "\n" +
		"  ___ _                  _   ___          _\n" +
		" / __(_)__ _ _ _  __ _  | | |   \\ ___ ___| |__\n" +
		" \\__ \\ / _` | ' \\/ _` | | | | |) / -_|_-<| / /\n" +
		" |___/_\\__, |_||_\\__,_| |_| |___/\\___/__/|_\\_\\\n" +
		"       |___/\n"
)

var rootCmd = &cobra.Command{
	Use:   "signaldesk",
	Short: "SignalDesk - autonomous marketing agent organization",
	Long:  color.CyanString(logo) + "\nSignal-driven multi-agent system for marketing intelligence.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(gatewayCmd)
	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(objectiveCmd)
	rootCmd.AddCommand(memoryCmd)
}

func printHeader(title string) {
	fmt.Println(color.CyanString(logo))
	if title != "" {
		fmt.Println(title)
		fmt.Println("─────────────────────")
	}
}

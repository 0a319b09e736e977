package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("SignalDesk Version")
		fmt.Printf("Version: %s\n", version)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status",
	Run: func(cmd *cobra.Command, args []string) {
		printHeader("SignalDesk Status")
		fmt.Printf("Version: %s\n", version)

		path, err := config.ConfigPath()
		if err == nil {
			if _, statErr := os.Stat(path); statErr == nil {
				fmt.Println("Config:   " + color.GreenString("found") + " (" + path + ")")
			} else {
				fmt.Println("Config:   " + color.YellowString("not found") + " (defaults in effect)")
			}
		}

		cfg, err := config.Load()
		if err != nil {
			fmt.Println("Config:   " + color.RedString("unreadable: "+err.Error()))
			return
		}
		hasKey := cfg.Providers.Gemini.APIKey != "" || cfg.Providers.OpenAI.APIKey != ""
		if hasKey {
			fmt.Println("LLM key:  " + color.GreenString("configured") + " (" + cfg.Providers.Default + ")")
		} else {
			fmt.Println("LLM key:  " + color.RedString("missing"))
		}
		fmt.Printf("Database: %s\n", cfg.Paths.DBPath)
		if cfg.Slack.Enabled {
			fmt.Println("Slack:    " + color.GreenString("enabled"))
		} else {
			fmt.Println("Slack:    disabled")
		}
		if cfg.Semantic.BaseURL != "" {
			fmt.Printf("Semantic: %s\n", cfg.Semantic.BaseURL)
		} else {
			fmt.Println("Semantic: disabled")
		}
		if cfg.Ingest.Kafka.Enabled {
			fmt.Printf("Kafka:    %s (%s)\n", cfg.Ingest.Kafka.Brokers, cfg.Ingest.Kafka.Topic)
		} else {
			fmt.Println("Kafka:    disabled")
		}

		d, err := openDeps(false)
		if err != nil {
			fmt.Println("Store:    " + color.RedString(err.Error()))
			return
		}
		defer d.close()
		signals, _ := d.store.ListRecentSignals(1000)
		outputs, _ := d.store.ListRecentOutputs("", 1000)
		fmt.Printf("Signals:  %d stored\n", len(signals))
		fmt.Printf("Outputs:  %d stored\n", len(outputs))
	},
}

package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/autonomous"
)

var (
	objectiveUser    string
	objectiveChannel string
)

var objectiveCmd = &cobra.Command{
	Use:   "objective [text...]",
	Short: "Run the autonomous agent on an objective",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(true)
		if err != nil {
			return err
		}
		defer d.close()

		controller := autonomous.New(d.provider, d.toolRegistry(), d.store, d.memory, d.semantic, d.cfg)

		printHeader("Objective Run")
		res, err := controller.Run(context.Background(), autonomous.Objective{
			Text:      strings.Join(args, " "),
			UserID:    objectiveUser,
			ChannelID: objectiveChannel,
			Mentioned: true,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Steps: %d\n", res.Steps)
		for _, step := range res.Trace {
			fmt.Printf("  %s -> %s\n", color.CyanString(step.Tool), truncate(step.Result, 80))
		}
		fmt.Println()
		if !res.Success {
			fmt.Println(color.YellowString("Step budget exhausted."))
		}
		fmt.Println(res.Answer)
		return nil
	},
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

func init() {
	objectiveCmd.Flags().StringVar(&objectiveUser, "user", "cli", "user id recorded in memory")
	objectiveCmd.Flags().StringVar(&objectiveChannel, "channel", "cli", "dialogue channel id")
}

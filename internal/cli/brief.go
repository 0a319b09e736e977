package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var briefLimit int

var briefCmd = &cobra.Command{
	Use:   "brief",
	Short: "Generate an executive brief from recent agent outputs",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(true)
		if err != nil {
			return err
		}
		defer d.close()

		printHeader("Executive Brief")
		brief, err := d.orch.ExecutiveBrief(context.Background(), briefLimit)
		if err != nil {
			return err
		}
		if brief == "" {
			fmt.Println("No recent outputs to brief.")
			return nil
		}
		fmt.Println(brief)
		return nil
	},
}

func init() {
	briefCmd.Flags().IntVar(&briefLimit, "limit", 20, "number of recent outputs to include")
	rootCmd.AddCommand(briefCmd)
}

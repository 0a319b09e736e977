package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agents and their confidence state",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(false)
		if err != nil {
			return err
		}
		defer d.close()

		agents, err := d.store.ListAgents()
		if err != nil {
			return err
		}

		printHeader("SignalDesk Agents")
		for _, a := range agents {
			conf := color.GreenString("%.2f", a.CurrentConfidence)
			if a.CurrentConfidence < a.BaselineConfidence {
				conf = color.YellowString("%.2f", a.CurrentConfidence)
			}
			last := "never"
			if a.LastOutputAt != nil {
				last = a.LastOutputAt.Format("2006-01-02 15:04")
			}
			fmt.Printf("%-10s %-14s confidence %s (baseline %.2f)  last output: %s\n",
				a.Name, string(a.Role), conf, a.BaselineConfidence, last)
		}
		return nil
	},
}

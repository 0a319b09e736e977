package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/signal"
)

var memoryCmd = &cobra.Command{
	Use:   "memory",
	Short: "Inspect and manage agent memory",
}

var memoryTier string

var memoryListCmd = &cobra.Command{
	Use:   "list [role]",
	Short: "List memory items for an agent",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(false)
		if err != nil {
			return err
		}
		defer d.close()

		role := signal.Role(args[0])
		tiers := []memory.Tier{memory.TierLongTerm, memory.TierWorking, memory.TierShortTerm}
		if memoryTier != "" {
			tiers = []memory.Tier{memory.Tier(memoryTier)}
		}

		printHeader("Agent Memory: " + args[0])
		for _, tier := range tiers {
			items, err := d.memory.ListByTier(role, tier, 50)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				continue
			}
			fmt.Println(color.CyanString(string(tier)))
			for _, item := range items {
				expired := ""
				if item.ExpiresAt != nil {
					expired = "  expires " + item.ExpiresAt.Format("01-02 15:04")
				}
				fmt.Printf("  %s  %.2f  %s%s\n", item.ID[:8], item.Confidence, item.Content, expired)
			}
		}
		return nil
	},
}

var memoryPromoteCmd = &cobra.Command{
	Use:   "promote [item-id]",
	Short: "Promote a short-term item to long-term memory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(false)
		if err != nil {
			return err
		}
		defer d.close()

		newID, err := d.memory.Promote(args[0])
		if err != nil {
			return err
		}
		fmt.Println(color.GreenString("Promoted: new long-term item %s", newID))
		return nil
	},
}

var memoryArchiveCmd = &cobra.Command{
	Use:   "archive [item-id]",
	Short: "Archive a completed working-memory item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(false)
		if err != nil {
			return err
		}
		defer d.close()

		if err := d.memory.ArchiveWorking(args[0]); err != nil {
			return err
		}
		fmt.Println(color.GreenString("Archived %s", args[0]))
		return nil
	},
}

func init() {
	memoryListCmd.Flags().StringVar(&memoryTier, "tier", "", "restrict to one tier (short_term, working, long_term)")
	memoryCmd.AddCommand(memoryListCmd)
	memoryCmd.AddCommand(memoryPromoteCmd)
	memoryCmd.AddCommand(memoryArchiveCmd)
}

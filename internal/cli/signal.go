package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/signaldesk/signaldesk/internal/signal"
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Work with market signals",
}

var (
	signalSource     string
	signalConfidence float64
	signalCategory   string
	signalFile       string
)

var signalProcessCmd = &cobra.Command{
	Use:   "process [topic] [summary]",
	Short: "Run one signal through the full pipeline",
	RunE:  runSignalProcess,
}

var signalListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show recent signals",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := openDeps(false)
		if err != nil {
			return err
		}
		defer d.close()

		signals, err := d.store.ListRecentSignals(20)
		if err != nil {
			return err
		}
		printHeader("Recent Signals")
		for _, s := range signals {
			state := color.YellowString("pending")
			if s.Processed {
				state = color.GreenString("processed")
			}
			fmt.Printf("[%s] %-20s %.2f  %s  %s\n",
				s.Timestamp.Format("01-02 15:04"), s.Category, s.Confidence, state, s.Topic)
		}
		return nil
	},
}

func init() {
	signalProcessCmd.Flags().StringVar(&signalSource, "source", "manual", "signal source label")
	signalProcessCmd.Flags().Float64Var(&signalConfidence, "confidence", 0.8, "signal confidence 0..1")
	signalProcessCmd.Flags().StringVar(&signalCategory, "category", "", "signal category (classified from text when empty)")
	signalProcessCmd.Flags().StringVar(&signalFile, "file", "", "read a JSON signal from file instead of arguments")
	signalCmd.AddCommand(signalProcessCmd)
	signalCmd.AddCommand(signalListCmd)
}

func runSignalProcess(cmd *cobra.Command, args []string) error {
	d, err := openDeps(true)
	if err != nil {
		return err
	}
	defer d.close()

	var sig signal.Signal
	switch {
	case signalFile != "":
		data, err := os.ReadFile(signalFile)
		if err != nil {
			return fmt.Errorf("read signal file: %w", err)
		}
		if err := json.Unmarshal(data, &sig); err != nil {
			return fmt.Errorf("decode signal file: %w", err)
		}
		if sig.ID == "" {
			filled := signal.New(sig.Source, sig.Topic, sig.Summary, sig.Category, sig.Confidence)
			filled.URL = sig.URL
			sig = filled
		}
	case len(args) >= 2:
		sig = signal.New(signalSource, args[0], args[1], signal.Category(signalCategory), signalConfidence)
	default:
		return fmt.Errorf("provide topic and summary arguments, or --file")
	}

	printHeader("Signal Pipeline")
	res, err := d.orch.ProcessSignal(context.Background(), sig)
	if err != nil {
		return err
	}

	if !res.Gated {
		fmt.Println(color.YellowString("Rejected by confidence gate (%.2f < %.2f)", sig.Confidence, signal.MinConfidence))
		return nil
	}
	fmt.Printf("Routed to %d agent(s)\n\n", len(res.Roles))
	for _, out := range res.Outputs {
		fmt.Printf("%s %s [%s] confidence %.2f\n", color.CyanString(string(out.Role)), out.Title, out.OutputType, out.Confidence)
		fmt.Println(out.Content)
		for _, action := range out.Actions {
			fmt.Println("  - " + action)
		}
		fmt.Println()
	}
	for role, roleErr := range res.Errors {
		fmt.Println(color.RedString("%s failed: %v", role, roleErr))
	}
	return nil
}

package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
	"github.com/DanielClxpz/MSR-CLI-Tool/iso"
)

var readLoop bool

var readCmd = &cobra.Command{
	Use:   "read",
	Short: "Read a magnetic stripe card",
	Long:  "Wait for a card swipe and print the decoded track data. With --loop, keep reading cards until interrupted.",
	Run: func(cmd *cobra.Command, args []string) {
		for {
			fmt.Println("Swipe a card...")

			result, err := stripeReader.ReadData()
			if errors.Is(err, device.ErrAborted) {
				stripeReader.Reset()
				return
			}
			if err != nil {
				cobra.CheckErr(fmt.Errorf("failed to read card: %w", err))
			}

			printResult(result)

			if !readLoop {
				return
			}
		}
	},
}

func printResult(result *device.ReadResult) {
	for i, track := range result.Tracks {
		label := fmt.Sprintf("Track %d:", i+1)
		switch track.Status {
		case iso.StatusOK:
			fmt.Printf("%s %s\n", label, color.GreenString("%s", track.Data))
		case iso.StatusNoData:
			fmt.Printf("%s %s\n", label, color.YellowString("(no data)"))
		case iso.StatusCorrupt:
			fmt.Printf("%s %s\n", label, color.RedString("(corrupt)"))
		}
	}
}

func init() {
	readCmd.Flags().BoolVar(&readLoop, "loop", false, "keep reading cards until interrupted")
	rootCmd.AddCommand(readCmd)
}

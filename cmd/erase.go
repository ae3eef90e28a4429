package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

var eraseTracks [3]bool

var eraseCmd = &cobra.Command{
	Use:   "erase",
	Short: "Erase tracks on a magnetic stripe card",
	Long:  "Blank the selected tracks on a swiped card. Without flags all three tracks are erased.",
	Run: func(cmd *cobra.Command, args []string) {
		t1, t2, t3 := eraseTracks[0], eraseTracks[1], eraseTracks[2]
		if !t1 && !t2 && !t3 {
			t1, t2, t3 = true, true, true
		}

		fmt.Println("Swipe a card to erase...")

		ok, err := stripeReader.Erase(t1, t2, t3)
		if errors.Is(err, device.ErrAborted) {
			stripeReader.Reset()
			return
		}
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to erase card: %w", err))
		}
		if !ok {
			cobra.CheckErr(fmt.Errorf("erase not acknowledged by device"))
		}
		color.Green("Erase OK")
	},
}

func init() {
	eraseCmd.Flags().BoolVar(&eraseTracks[0], "t1", false, "erase track 1")
	eraseCmd.Flags().BoolVar(&eraseTracks[1], "t2", false, "erase track 2")
	eraseCmd.Flags().BoolVar(&eraseTracks[2], "t3", false, "erase track 3")
	rootCmd.AddCommand(eraseCmd)
}

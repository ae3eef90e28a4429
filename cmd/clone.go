package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/device"
)

var cloneCmd = &cobra.Command{
	Use:   "clone",
	Short: "Copy one magnetic stripe card to another",
	Long: `Read a source card, then write its raw track data to a target card.
The copy is bit-for-bit: track contents are duplicated even when they do not
decode as ISO text.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Swipe the source card...")

		result, err := stripeReader.ReadData()
		if errors.Is(err, device.ErrAborted) {
			stripeReader.Reset()
			return
		}
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to read source card: %w", err))
		}

		printResult(result)

		if err := writeWithRetries(result.Raw); err != nil {
			if errors.Is(err, device.ErrAborted) {
				return
			}
			cobra.CheckErr(err)
		}
		fmt.Println("Card cloned.")
	},
}

func init() {
	rootCmd.AddCommand(cloneCmd)
}

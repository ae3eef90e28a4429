package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the reader firmware version",
	Run: func(cmd *cobra.Command, args []string) {
		version, err := stripeReader.Firmware()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to query firmware version: %w", err))
		}
		fmt.Printf("Firmware: %s\n", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

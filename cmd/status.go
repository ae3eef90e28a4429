package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/config"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show reader status and active configuration",
	Long:  "Run the communication self-test and print the configuration profile the reader was initialized with.",
	Run: func(cmd *cobra.Command, args []string) {
		ok, err := stripeReader.CommTest()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("communication test failed: %w", err))
		}
		if ok {
			fmt.Printf("Communication: %s\n", color.GreenString("OK"))
		} else {
			fmt.Printf("Communication: %s\n", color.RedString("FAILED"))
		}

		fmt.Printf("Profile:       %s\n", config.ProfileName)
		fmt.Printf("Coercivity:    %s\n", config.Coercivity)
		fmt.Printf("BPI:           %d / %d / %d\n", config.BPI[0], config.BPI[1], config.BPI[2])
		fmt.Printf("BPC:           %d / %d / %d\n", config.BPC[0], config.BPC[1], config.BPC[2])
		fmt.Printf("Leading zeros: %d (tracks 1 and 3), %d (track 2)\n",
			config.LeadingZero[0], config.LeadingZero[1])
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

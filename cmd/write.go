package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/config"
	"github.com/DanielClxpz/MSR-CLI-Tool/device"
	"github.com/DanielClxpz/MSR-CLI-Tool/iso"
)

var writeTracks [3]string

var writeCmd = &cobra.Command{
	Use:   "write",
	Short: "Write track data to a magnetic stripe card",
	Long: `Encode the given track text and write it to a swiped card.
Track 1 uses the 7-bit alphanumeric character set, tracks 2 and 3 the
5-bit numeric set. Omitted tracks are written empty.`,
	Run: func(cmd *cobra.Command, args []string) {
		if writeTracks[0] == "" && writeTracks[1] == "" && writeTracks[2] == "" {
			cobra.CheckErr(fmt.Errorf("nothing to write: give at least one of --t1, --t2, --t3"))
		}

		raw, err := encodeTracks(writeTracks)
		if err != nil {
			cobra.CheckErr(err)
		}

		if err := writeWithRetries(raw); err != nil {
			cobra.CheckErr(err)
		}
		color.Green("Write OK")
	},
}

// encodeTracks converts per-track text into raw bit-packed buffers using the
// alphabet each track calls for.
func encodeTracks(tracks [3]string) ([3][]byte, error) {
	alphabets := [3]*iso.Alphabet{iso.Alphanumeric, iso.Numeric, iso.Numeric}

	var raw [3][]byte
	for i, text := range tracks {
		if text == "" {
			continue
		}
		encoded, err := iso.Encode(alphabets[i], text)
		if err != nil {
			var invalid *iso.InvalidCharacterError
			if errors.As(err, &invalid) {
				return raw, fmt.Errorf("track %d: character %q is not encodable on this track", i+1, invalid.Char)
			}
			return raw, fmt.Errorf("track %d: %w", i+1, err)
		}
		raw[i] = encoded
	}
	return raw, nil
}

// writeWithRetries asks for a swipe and retries on a missed acknowledgement,
// which usually means the card moved too fast through the slot.
func writeWithRetries(raw [3][]byte) error {
	for attempt := 1; ; attempt++ {
		fmt.Println("Swipe a card to write...")

		ok, err := stripeReader.WriteRawData(raw)
		if errors.Is(err, device.ErrAborted) {
			stripeReader.Reset()
			return err
		}
		if err != nil {
			return fmt.Errorf("failed to write card: %w", err)
		}
		if ok {
			return nil
		}

		if attempt >= config.WriteRetries {
			return fmt.Errorf("write not acknowledged after %d attempts", attempt)
		}
		color.Yellow("Write not acknowledged, try swiping again (%d/%d)", attempt, config.WriteRetries)
	}
}

func init() {
	writeCmd.Flags().StringVar(&writeTracks[0], "t1", "", "track 1 text (alphanumeric)")
	writeCmd.Flags().StringVar(&writeTracks[1], "t2", "", "track 2 text (numeric)")
	writeCmd.Flags().StringVar(&writeTracks[2], "t3", "", "track 3 text (numeric)")
	rootCmd.AddCommand(writeCmd)
}

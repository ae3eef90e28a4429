package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/DanielClxpz/MSR-CLI-Tool/config"
	"github.com/DanielClxpz/MSR-CLI-Tool/device"
	"github.com/DanielClxpz/MSR-CLI-Tool/msr605"
)

var (
	stripeReader device.StripeReader
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "msr",
	Short: "A CLI program which works with magnetic stripe cards via USB reader",
	Long:  "The msr tool reads, writes and erases magnetic stripe cards through a USB swipe reader.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := zerolog.WarnLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level)

		if err := config.Initialize(); err != nil {
			cobra.CheckErr(fmt.Errorf("failed to load configuration: %w", err))
		}

		var err error
		stripeReader, err = findReader()
		if err != nil {
			cobra.CheckErr(fmt.Errorf("failed to find USB reader: %w", err))
		}

		if err := stripeReader.Initialize(); err != nil {
			stripeReader.Close()
			cobra.CheckErr(fmt.Errorf("failed to initialize reader: %w", err))
		}

		watchInterrupt()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stripeReader != nil {
			stripeReader.Close()
		}
	},
}

// findReader walks the registered reader models and connects to the first one
// present on the bus. Permission errors are retried briefly: on Linux the
// device node can take a moment to pick up udev rules after plug-in.
func findReader() (device.StripeReader, error) {
	for _, info := range device.Registered() {
		var reader device.StripeReader

		policy := backoff.NewExponentialBackOff()
		policy.InitialInterval = 250 * time.Millisecond
		policy.MaxElapsedTime = 5 * time.Second
		err := backoff.Retry(func() error {
			var err error
			reader, err = info.Factory()
			if err == nil {
				return nil
			}
			if errors.Is(err, device.ErrAccessDenied) {
				return err // retryable
			}
			return backoff.Permanent(err)
		}, policy)

		if err == nil {
			return applyConfig(reader), nil
		}
		if errors.Is(err, device.ErrNotFound) {
			continue // try next model
		}
		return nil, fmt.Errorf("reader VID=0x%04X PID=0x%04X: %w",
			info.VendorID, info.ProductID, err)
	}

	return nil, fmt.Errorf("no supported USB reader found (MSR605X: VID=0x%04X PID=0x%04X): %w",
		msr605.VendorID, msr605.ProductID, device.ErrNotFound)
}

// applyConfig copies the active configuration profile into the reader before
// Initialize pushes it to the device.
func applyConfig(reader device.StripeReader) device.StripeReader {
	msr, ok := reader.(*msr605.Client)
	if !ok {
		return reader
	}
	msr.Settings.HiCo = config.Coercivity == "hi"
	msr.Settings.BPI = config.BPI
	msr.Settings.BPC = config.BPC
	msr.Settings.LeadingZero = config.LeadingZero
	return msr
}

// watchInterrupt cancels the in-flight operation on the first Ctrl-C so the
// blocked command can unwind and reset the device. A second Ctrl-C exits.
func watchInterrupt() {
	sig := make(chan os.Signal, 2)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		fmt.Fprintln(os.Stderr, "\ninterrupted, cancelling (press Ctrl-C again to force quit)")
		stripeReader.Cancel()
		<-sig
		stripeReader.Close()
		os.Exit(1)
	}()
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

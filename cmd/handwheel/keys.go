package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ayusman/handwheel/internal/keys"
)

var keysCmd = &cobra.Command{
	Use:   "keys <w|a|s|d>",
	Short: "Press and release one direction key to test key injection",
	Long: `Presses the given key, holds it, and releases it through the configured
injector. Focus the game window during the countdown to check that it
receives input.`,
	Args: cobra.ExactArgs(1),
	RunE: runKeys,
}

func init() {
	keysCmd.Flags().Duration("hold", 100*time.Millisecond, "how long to hold the key")
	keysCmd.Flags().Duration("delay", 0, "wait before pressing, to focus another window")
	rootCmd.AddCommand(keysCmd)
}

func runKeys(cmd *cobra.Command, args []string) error {
	sym, err := keys.Normalize(args[0])
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	inj, err := newInjector(cfg)
	if err != nil {
		return err
	}

	hold, _ := cmd.Flags().GetDuration("hold")
	delay, _ := cmd.Flags().GetDuration("delay")
	if delay > 0 {
		cmd.Printf("pressing %s in %s\n", sym, delay)
		time.Sleep(delay)
	}

	if err := keys.Tap(inj, sym, hold); err != nil {
		return err
	}
	cmd.Printf("pressed and released %s via %s (%s)\n", sym, cfg.Keys.Injector, hold)
	return nil
}

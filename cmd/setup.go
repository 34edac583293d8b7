package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/habitboard/internal/config"
	"github.com/theirongolddev/habitboard/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	// Load existing config or defaults
	cfg, _ := config.Load()
	if err := runSetupWizard(&cfg); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `habitboard setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// runSetupWizard asks the setup questions, applies the answers to cfg and
// saves it.
func runSetupWizard(cfg *config.Config) error {
	vals := tui.SetupValuesFrom(*cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return fmt.Errorf("setup: %w", err)
	}
	tui.ApplySetup(cfg, vals)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(*cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	return nil
}

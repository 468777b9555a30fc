package cmd

import (
	"fmt"

	"github.com/creativeprojects/go-selfupdate"
	"github.com/spf13/cobra"

	"github.com/s0up4200/moviedeck/config"
)

const repository = "s0up4200/moviedeck"

var checkOnly bool

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update moviedeck to the latest release",
	Long:  `Check GitHub for a newer release and replace the running binary with it.`,
	Args:  cobra.NoArgs,
	RunE:  runUpdate,
}

func init() {
	rootCmd.AddCommand(updateCmd)

	updateCmd.Flags().BoolVar(&checkOnly, "check", false, "only check for a newer release")
}

func runUpdate(cmd *cobra.Command, args []string) error {
	logger = setupLogger(config.LoggingConfig{Level: "info", Format: "console", Color: true})

	current, err := releaseVersion()
	if err != nil {
		return fmt.Errorf("cannot update this build: %w", err)
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(repository))
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return fmt.Errorf("no release found for %s", repository)
	}

	if latest.LessOrEqual(current.String()) {
		fmt.Printf("✓ moviedeck v%s is up to date\n", current)
		return nil
	}

	fmt.Printf("New version available: v%s (current v%s)\n", latest.Version(), current)
	if checkOnly {
		return nil
	}

	exe, err := selfupdate.ExecutablePath()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}

	logger.Info().Str("version", latest.Version()).Str("asset", latest.AssetName).Msg("Downloading release")

	if err := selfupdate.UpdateTo(ctx, latest.AssetURL, latest.AssetName, exe); err != nil {
		return fmt.Errorf("failed to update binary: %w", err)
	}

	fmt.Printf("✓ Updated to v%s\n", latest.Version())
	return nil
}

package cmd

import (
	"fmt"
	"runtime"

	"github.com/blang/semver"
	"github.com/spf13/cobra"
)

var (
	currentVersion = "dev"
	buildTime      = "unknown"
)

// SetVersion records the build's version information
func SetVersion(version, built string) {
	currentVersion = version
	buildTime = built
	rootCmd.Version = version
}

// releaseVersion parses the running version, failing for development builds
func releaseVersion() (semver.Version, error) {
	v, err := semver.ParseTolerant(currentVersion)
	if err != nil {
		return semver.Version{}, fmt.Errorf("%q is not a release version: %w", currentVersion, err)
	}
	return v, nil
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		version := currentVersion
		if v, err := releaseVersion(); err == nil {
			version = "v" + v.String()
		}
		fmt.Printf("moviedeck %s\n", version)
		fmt.Printf("Built: %s\n", buildTime)
		fmt.Printf("Go: %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

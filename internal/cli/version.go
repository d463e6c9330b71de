package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build information, set with -ldflags "-X"
var (
	Version   = "dev"
	GitCommit = ""
	BuildDate = ""
)

// FullVersionInfo returns detailed version information
func FullVersionInfo() string {
	info := fmt.Sprintf("Eventhub %s\n", Version)
	info += fmt.Sprintf("Go Version: %s\n", runtime.Version())

	if GitCommit != "" {
		info += fmt.Sprintf("Git Commit: %s\n", GitCommit)
	}

	if BuildDate != "" {
		info += fmt.Sprintf("Build Date: %s\n", BuildDate)
	}

	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display Eventhub version and build information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Print(FullVersionInfo())
	},
}

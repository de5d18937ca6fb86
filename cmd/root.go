package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/appdriver/appdriver/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "appdriver",
	Short: "Drive a running desktop application from automation clients",
	Long: "appdriver bridges automation clients (AI agents, test harnesses) to a running\n" +
		"desktop application: capture windows, manage them, simulate input, and call\n" +
		"into the script content hosted inside the application's rendering surfaces.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
}

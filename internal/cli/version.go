package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Overridden at build time via -ldflags "-X ...".
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the reqforge version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("reqforge %s (%s, %s/%s)\n", version, commit, runtime.GOOS, runtime.GOARCH)
	},
}

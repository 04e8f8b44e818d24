package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/codegen"
)

func init() {
	rootCmd.AddCommand(targetsCmd)
}

var targetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the snippet targets",
	Run: func(cmd *cobra.Command, args []string) {
		for _, target := range codegen.Targets() {
			aliases := "-"
			if len(target.Aliases) > 0 {
				aliases = strings.Join(target.Aliases, ", ")
			}
			fmt.Printf("  %-8s %-20s %s\n", target.ID, aliases, target.Label)
		}
	},
}

package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/secretscan"
)

var scanJSON bool

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "print findings as JSON")
}

var scanCmd = &cobra.Command{
	Use:   "scan [file]",
	Short: "Scan text for credential material",
	Long: `Scan a file, or stdin when no file is given, for credential material
like API keys, tokens and private keys. Exits non-zero when anything is
found, so it slots into CI pipelines.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		location := "stdin"
		var data []byte
		var err error
		if len(args) == 1 && args[0] != "-" {
			location = args[0]
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		findings := secretscan.ScanText(location, string(data))

		if scanJSON {
			if findings == nil {
				findings = []secretscan.Finding{}
			}
			out, err := json.MarshalIndent(findings, "", "  ")
			if err != nil {
				return err
			}
			writeLine(out)
		} else {
			for _, f := range findings {
				fmt.Printf("%-18s %-22s %s\n", f.Kind, f.Location, f.Masked)
			}
		}

		if len(findings) > 0 {
			return fmt.Errorf("found %d potential secret(s)", len(findings))
		}
		return nil
	},
}

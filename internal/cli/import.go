package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/translate/tcurl"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

var importJSON bool

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importJSON, "json", false, "write the request document as JSON instead of YAML")
}

var importCmd = &cobra.Command{
	Use:   "import [curl-command]",
	Short: "Convert a curl command into a request document",
	Long: `Parse a curl command into a request document and print it on stdout.
The command is read from the argument, or from stdin when no argument is
given. Parsing never fails; unrecognized flags are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var command string
		if len(args) == 1 && args[0] != "-" {
			command = args[0]
		} else {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			command = string(data)
		}

		doc := treqfile.FromModel(tcurl.Parse(command))

		var out []byte
		var err error
		if importJSON {
			out, err = treqfile.WriteJSON(doc)
		} else {
			out, err = treqfile.WriteYAML(doc)
		}
		if err != nil {
			return fmt.Errorf("encode request document: %w", err)
		}
		writeLine(out)
		return nil
	},
}

// writeLine prints raw encoder output with exactly one trailing newline.
func writeLine(out []byte) {
	if len(out) > 0 && out[len(out)-1] == '\n' {
		out = out[:len(out)-1]
	}
	fmt.Println(string(out))
}

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/codegen"
	"github.com/reqforge/reqforge/pkg/model/mrequest"
	"github.com/reqforge/reqforge/pkg/secretscan"
	"github.com/reqforge/reqforge/pkg/translate/tcurl"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

var (
	renderTarget string
	renderCurl   string
	renderScan   bool
	renderMask   bool
)

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVarP(&renderTarget, "target", "t", "", "snippet target id or alias; \"all\" renders every target")
	renderCmd.Flags().StringVar(&renderCurl, "curl", "", "render from a curl command instead of a request file")
	renderCmd.Flags().BoolVar(&renderScan, "scan", false, "report credential material found in the request on stderr")
	renderCmd.Flags().BoolVar(&renderMask, "mask", false, "mask credential material in the rendered snippet")
}

var renderCmd = &cobra.Command{
	Use:   "render [request-file]",
	Short: "Render a request as a code snippet",
	Long: `Render a request document as a ready-to-run snippet for one of the
supported targets. The request comes from a YAML or JSON file ("-" for
stdin), or from a curl command via --curl.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		req, err := renderInput(args)
		if err != nil {
			return err
		}

		if renderScan {
			reportFindings(secretscan.ScanRequest(req))
		}
		if renderMask {
			req = secretscan.Redact(req)
		}

		targetID := renderTarget
		if targetID == "" {
			targetID = cfg.DefaultTarget
		}

		if targetID == "all" {
			snippets, err := codegen.RenderAll(cmd.Context(), req)
			if err != nil {
				return err
			}
			for i, target := range codegen.Targets() {
				if i > 0 {
					fmt.Println()
				}
				fmt.Printf("# --- %s ---\n", target.ID)
				fmt.Println(snippets[target.ID])
			}
			return nil
		}

		target, ok := codegen.Lookup(targetID)
		if !ok {
			if suggestion, found := codegen.Suggest(targetID); found {
				fmt.Fprintf(os.Stderr, "unknown target %q (did you mean %q?), rendering curl\n", targetID, suggestion)
			} else {
				fmt.Fprintf(os.Stderr, "unknown target %q, rendering curl\n", targetID)
			}
			target, _ = codegen.Lookup("curl")
		}
		fmt.Println(target.Generate(req))
		return nil
	},
}

func renderInput(args []string) (mrequest.Request, error) {
	if renderCurl != "" {
		return tcurl.Parse(renderCurl), nil
	}
	if len(args) == 0 {
		return mrequest.Request{}, fmt.Errorf("a request file or --curl is required")
	}
	doc, err := readRequestDoc(args[0])
	if err != nil {
		return mrequest.Request{}, err
	}
	return treqfile.ToModel(doc), nil
}

func reportFindings(findings []secretscan.Finding) {
	if len(findings) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "⚠ %d potential secret(s) in this request:\n", len(findings))
	for _, f := range findings {
		fmt.Fprintf(os.Stderr, "  %-18s %-22s %s\n", f.Kind, f.Location, f.Masked)
	}
}

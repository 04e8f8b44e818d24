package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/checker"
	"github.com/reqforge/reqforge/pkg/errmap"
	"github.com/reqforge/reqforge/pkg/history"
	"github.com/reqforge/reqforge/pkg/httpsender"
	"github.com/reqforge/reqforge/pkg/model/mresponse"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
	"github.com/reqforge/reqforge/pkg/varsub"
)

var (
	sendAsserts   []string
	sendVars      []string
	sendNoHistory bool
	sendJSON      bool
)

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringArrayVar(&sendAsserts, "assert", nil, "assertion expression, repeatable (e.g. 'status == 200')")
	sendCmd.Flags().StringArrayVar(&sendVars, "var", nil, "substitution variable key=value, repeatable")
	sendCmd.Flags().BoolVar(&sendNoHistory, "no-history", false, "do not record this request in history")
	sendCmd.Flags().BoolVar(&sendJSON, "json", false, "print the full response document as JSON")
}

var sendCmd = &cobra.Command{
	Use:   "send <request-file>",
	Short: "Execute a request and print the response",
	Long: `Execute a request document against its URL. The response status,
headers and decoded body go to stdout; timing goes to stderr. Each executed
request is recorded in history unless disabled.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		doc, err := readRequestDoc(args[0])
		if err != nil {
			return err
		}
		if doc.TimeoutMillis == nil && cfg.TimeoutMillis > 0 {
			doc.TimeoutMillis = &cfg.TimeoutMillis
		}

		req := treqfile.ToModel(doc)
		vars, err := collectVars(cfg.Vars, sendVars)
		if err != nil {
			return err
		}
		if len(vars) > 0 {
			if err := varsub.Apply(&req, vars); err != nil {
				return err
			}
		}

		sender := httpsender.New(httpsender.Options{})
		resp, sendErr := sender.Send(cmd.Context(), req)
		if !sendNoHistory && !cfg.History.Disabled {
			saveHistory(cmd.Context(), cfg.History.Path, string(req.Method), doc, resp, sendErr)
		}
		if sendErr != nil {
			return fmt.Errorf("%s", errmap.Friendly(sendErr))
		}

		if sendJSON {
			out, err := treqfile.WriteResponseJSON(treqfile.FromResponse(resp))
			if err != nil {
				return fmt.Errorf("encode response document: %w", err)
			}
			writeLine(out)
		} else {
			printResponse(resp)
		}

		if len(sendAsserts) > 0 {
			return runAsserts(sendAsserts, resp)
		}
		return nil
	},
}

func collectVars(configVars map[string]any, flagVars []string) (varsub.Map, error) {
	vars := varsub.FromAnyMap(configVars)
	override := make(varsub.Map, len(flagVars))
	for _, pair := range flagVars {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q, expected key=value", pair)
		}
		override[key] = value
	}
	return varsub.Merge(vars, override), nil
}

func saveHistory(ctx context.Context, path, method string, doc treqfile.RequestDoc, resp mresponse.Response, sendErr error) {
	store, err := history.Open(ctx, path)
	if err != nil {
		slog.Warn("history: opening store", "path", path, "error", err)
		return
	}
	defer store.Close()

	raw, err := treqfile.WriteJSON(doc)
	if err != nil {
		slog.Warn("history: encoding request doc", "error", err)
		return
	}
	entry := history.Entry{
		Method:         method,
		URL:            doc.URL,
		RequestDoc:     raw,
		Status:         resp.Status,
		DurationMillis: resp.Timing.TotalMillis,
		ResponseSize:   resp.ResponseSize.TotalBytes,
	}
	if sendErr != nil {
		entry.Error = errmap.Friendly(sendErr)
	}
	if _, err := store.Save(ctx, entry); err != nil {
		slog.Warn("history: saving entry", "error", err)
	}
}

func printResponse(resp mresponse.Response) {
	for _, hop := range resp.Redirects {
		fmt.Fprintf(os.Stderr, "redirect: %d %s\n", hop.Status, hop.Url)
	}

	fmt.Printf("%s %d %s\n", resp.HttpVersion, resp.Status, resp.StatusText)
	for _, h := range resp.Headers {
		fmt.Printf("%s: %s\n", h.Key, h.Value)
	}
	fmt.Println()
	if body := mresponse.DecodeBody(resp); body != "" {
		fmt.Println(body)
	}

	fmt.Fprintf(os.Stderr, "completed in %.1f ms (ttfb %.1f ms), %d bytes\n",
		resp.Timing.TotalMillis, resp.Timing.TTFBMillis, resp.ResponseSize.TotalBytes)
}

func runAsserts(expressions []string, resp mresponse.Response) error {
	results := checker.CheckAll(expressions, resp)
	failed := 0
	for _, result := range results {
		mark := "✅"
		if !result.Passed {
			mark = "❌"
			failed++
		}
		line := fmt.Sprintf("%s %s", mark, result.Expression)
		if result.Error != "" {
			line += " (" + result.Error + ")"
		}
		fmt.Fprintln(os.Stderr, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d assertions failed", failed, len(results))
	}
	return nil
}

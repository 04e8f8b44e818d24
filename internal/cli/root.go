// Package cli wires the reqforge commands.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/internal/config"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

var rootCmd = &cobra.Command{
	Use:   "reqforge",
	Short: "Convert, render and execute HTTP requests",
	Long: `reqforge keeps one canonical description of an HTTP request and moves it
between forms: curl commands in, code snippets for seven languages out, and a
local executor with request history when you want to actually send it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

var (
	cfgFilePath string
	logLevel    string
	logJSON     bool
)

func init() {
	cobra.OnInitialize(initLogging)
	rootCmd.PersistentFlags().StringVar(&cfgFilePath, "config", "", "config file (default is $XDG_CONFIG_HOME/reqforge/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "write logs as JSON")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func initLogging() {
	var level slog.Level
	switch strings.ToLower(logLevel) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if logJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func loadConfig() (config.Config, error) {
	return config.Load(cfgFilePath)
}

// readRequestDoc loads a request document from a file, or from stdin when
// path is "-". JSON files parse as JSON, everything else as YAML.
func readRequestDoc(path string) (treqfile.RequestDoc, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return treqfile.RequestDoc{}, fmt.Errorf("read request file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err := treqfile.ReadJSON(data)
		if err != nil {
			return treqfile.RequestDoc{}, fmt.Errorf("parse %s: %w", path, err)
		}
		return doc, nil
	}
	doc, err := treqfile.ReadYAML(data)
	if err != nil {
		return treqfile.RequestDoc{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

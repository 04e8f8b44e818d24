package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/pkg/history"
	"github.com/reqforge/reqforge/pkg/idwrap"
	"github.com/reqforge/reqforge/pkg/translate/treqfile"
)

var (
	historyLimit int
	historyJSON  bool
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "print JSON instead of a table")
	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to list")
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyDeleteCmd)
	historyCmd.AddCommand(historyClearCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect executed requests",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func openHistory(ctx context.Context) (*history.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.History.Disabled {
		return nil, fmt.Errorf("history is disabled in the configuration")
	}
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	return store, nil
}

type historyRow struct {
	ID             string  `json:"id"`
	ExecutedAt     string  `json:"executed_at"`
	Method         string  `json:"method"`
	URL            string  `json:"url"`
	Status         int     `json:"status"`
	DurationMillis float64 `json:"duration_ms"`
	ResponseSize   int64   `json:"response_size"`
	Error          string  `json:"error,omitempty"`
}

func rowFromEntry(entry history.Entry) historyRow {
	return historyRow{
		ID:             entry.ID.String(),
		ExecutedAt:     entry.ExecutedAt.Format(time.RFC3339),
		Method:         entry.Method,
		URL:            entry.URL,
		Status:         entry.Status,
		DurationMillis: entry.DurationMillis,
		ResponseSize:   entry.ResponseSize,
		Error:          entry.Error,
	}
}

func printHistoryJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	writeLine(out)
	return nil
}

var historyListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List executed requests, newest first",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		var entries []history.Entry
		if len(args) == 1 {
			entries, err = store.Search(cmd.Context(), args[0], historyLimit)
		} else {
			entries, err = store.List(cmd.Context(), historyLimit, 0)
		}
		if err != nil {
			return err
		}

		if historyJSON {
			rows := make([]historyRow, 0, len(entries))
			for _, entry := range entries {
				rows = append(rows, rowFromEntry(entry))
			}
			return printHistoryJSON(rows)
		}

		if len(entries) == 0 {
			fmt.Println("history is empty")
			return nil
		}
		for _, entry := range entries {
			status := fmt.Sprintf("%d", entry.Status)
			if entry.Error != "" {
				status = "ERR"
			}
			fmt.Printf("%s  %s  %-7s %-4s %s\n",
				entry.ID.String(),
				entry.ExecutedAt.Local().Format("2006-01-02 15:04:05"),
				entry.Method,
				status,
				entry.URL)
		}
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one history entry with its request document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idwrap.NewText(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}

		store, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		entry, err := store.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		if historyJSON {
			return printHistoryJSON(struct {
				Entry   historyRow      `json:"entry"`
				Request json.RawMessage `json:"request"`
			}{Entry: rowFromEntry(entry), Request: entry.RequestDoc})
		}

		row := rowFromEntry(entry)
		fmt.Printf("id:       %s\n", row.ID)
		fmt.Printf("executed: %s\n", row.ExecutedAt)
		fmt.Printf("method:   %s\n", row.Method)
		fmt.Printf("url:      %s\n", row.URL)
		if entry.Error != "" {
			fmt.Printf("error:    %s\n", entry.Error)
		} else {
			fmt.Printf("status:   %d (%.1f ms, %d bytes)\n", row.Status, row.DurationMillis, row.ResponseSize)
		}

		doc, err := treqfile.ReadJSON(entry.RequestDoc)
		if err != nil {
			return fmt.Errorf("stored request doc: %w", err)
		}
		out, err := treqfile.WriteYAML(doc)
		if err != nil {
			return err
		}
		fmt.Println()
		writeLine(out)
		return nil
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete one history entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := idwrap.NewText(args[0])
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}

		store, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("✅ Deleted %s\n", id.String())
		return nil
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every history entry",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openHistory(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		count, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("✅ Cleared %d entries\n", count)
		return nil
	},
}

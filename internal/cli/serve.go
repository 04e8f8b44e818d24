package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reqforge/reqforge/internal/api"
	"github.com/reqforge/reqforge/internal/api/rhealth"
	"github.com/reqforge/reqforge/internal/api/rhistory"
	"github.com/reqforge/reqforge/internal/api/rimport"
	"github.com/reqforge/reqforge/internal/api/rsecret"
	"github.com/reqforge/reqforge/internal/api/rsend"
	"github.com/reqforge/reqforge/internal/api/rsnippet"
	"github.com/reqforge/reqforge/pkg/history"
	"github.com/reqforge/reqforge/pkg/httpsender"
)

var (
	serveAddr   string
	serveSocket string
	serveMode   string
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config, then :8090)")
	serveCmd.Flags().StringVar(&serveSocket, "socket", "", "unix socket path for uds mode")
	serveCmd.Flags().StringVar(&serveMode, "mode", "", "listen mode: tcp or uds")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reqforge API server",
	Long: `Serve the import, snippet, send, history and secret services over HTTP.
The server speaks plain JSON over h2c and binds a TCP port by default; uds
mode binds a unix socket instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		addr := serveAddr
		if addr == "" {
			addr = cfg.ServerAddr
		}

		var store *history.Store
		if cfg.History.Disabled {
			slog.Info("history disabled, send results will not be recorded")
		} else {
			store, err = history.Open(cmd.Context(), cfg.History.Path)
			if err != nil {
				return fmt.Errorf("open history store: %w", err)
			}
			defer store.Close()
		}

		snippets := rsnippet.New()
		defer snippets.Close()

		sender := httpsender.New(httpsender.Options{})
		services := []api.Service{
			*rhealth.CreateService(rhealth.New(version)),
			*rimport.CreateService(rimport.New()),
			*rsnippet.CreateService(snippets),
			*rsend.CreateService(rsend.New(sender, store)),
			*rsecret.CreateService(rsecret.New()),
		}
		if store != nil {
			services = append(services, *rhistory.CreateService(rhistory.New(store)))
		}

		return api.ListenServices(services, api.ListenOptions{
			Mode:       serveMode,
			Addr:       addr,
			SocketPath: serveSocket,
		})
	},
}

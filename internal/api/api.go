//nolint:revive // exported
package api

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/reqforge/reqforge/internal/api/middleware/mwcompress"
	"github.com/reqforge/reqforge/internal/api/middleware/mwreqid"
)

// Service pairs a path prefix with the handler that serves it.
type Service struct {
	Handler http.Handler
	Path    string
}

func newCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowOriginFunc: func(origin string) bool {
			return true
		},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{
			"Accept",
			"Accept-Encoding",
			"Content-Encoding",
			"Content-Type",
			"X-Request-Id",
		},
		MaxAge: int(time.Second),
	})
}

// Server mode constants
const (
	ServerModeUDS = "uds"
	ServerModeTCP = "tcp"
)

// ListenOptions selects how the server binds. Empty fields fall back to the
// REQFORGE_SERVER_MODE / REQFORGE_SOCKET_PATH environment and then defaults.
type ListenOptions struct {
	Mode       string
	Addr       string
	SocketPath string
}

func newH2CServer(handler http.Handler) *http.Server {
	return &http.Server{
		// NOTE: a placeholder address; actual routing comes from the listener.
		Addr:              "reqforge:0",
		ReadHeaderTimeout: 10 * time.Second,
		// INFO: h2c lets clients speak HTTP/2 without TLS.
		Handler: h2c.NewHandler(newCORS().Handler(handler), &http2.Server{
			IdleTimeout:          0,
			MaxConcurrentStreams: 100000,
			MaxHandlers:          0,
		}),
	}
}

// ListenServices starts the server on either a TCP port or a Unix socket.
//
// Environment variables:
//   - REQFORGE_SERVER_MODE: "tcp" (default) or "uds"
//   - REQFORGE_SOCKET_PATH: custom socket path (uds mode)
func ListenServices(services []Service, opts ListenOptions) error {
	mux := http.NewServeMux()

	for _, service := range services {
		slog.Info("Registering service", "path", service.Path)
		mux.Handle(service.Path, service.Handler)
	}
	handler := mwreqid.Wrap(mwcompress.Wrap(mux))

	mode := opts.Mode
	if mode == "" {
		mode = os.Getenv("REQFORGE_SERVER_MODE")
	}
	if mode == "" {
		mode = ServerModeTCP
	}

	switch mode {
	case ServerModeTCP:
		return listenTCP(handler, opts.Addr)
	case ServerModeUDS:
		return listenIPC(handler, opts.SocketPath)
	default:
		slog.Warn("Unknown server mode, falling back to tcp", "mode", mode)
		return listenTCP(handler, opts.Addr)
	}
}

func listenTCP(handler http.Handler, addr string) error {
	if addr == "" {
		addr = ":8090"
	}
	srv := newH2CServer(handler)
	srv.Addr = addr

	slog.Info("Server listening on TCP", "addr", addr)
	return srv.ListenAndServe()
}

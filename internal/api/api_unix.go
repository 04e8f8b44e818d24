//go:build !windows

package api

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
)

// DefaultServerSocketPath returns the default path for the server Unix socket.
func DefaultServerSocketPath() string {
	return filepath.Join(os.TempDir(), "reqforge", "server.socket")
}

func listenIPC(handler http.Handler, socketPath string) error {
	if socketPath == "" {
		socketPath = os.Getenv("REQFORGE_SOCKET_PATH")
	}
	if socketPath == "" {
		socketPath = DefaultServerSocketPath()
	}

	srv := newH2CServer(handler)

	if err := os.MkdirAll(filepath.Dir(socketPath), 0o750); err != nil {
		return err
	}

	// Remove stale socket file if present (e.g., from a previous crash)
	if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to remove stale socket", "path", socketPath, "error", err)
	}

	lc := net.ListenConfig{}
	socket, err := lc.Listen(context.Background(), "unix", socketPath)
	if err != nil {
		return err
	}

	slog.Info("Server listening on Unix socket", "path", socketPath)

	srv.RegisterOnShutdown(func() {
		if err := os.Remove(socketPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("Failed to remove socket on shutdown", "path", socketPath, "error", err)
		}
	})

	return srv.Serve(socket)
}

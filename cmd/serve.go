package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/csidc/landwatch/internal/handlers"
	"github.com/csidc/landwatch/internal/images"
	"github.com/spf13/cobra"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port    int
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the local analysis session host",
		Long: `Starts an HTTP host that keeps one analysis session per browser client.

Clients create a session, stage the reference and current images (multipart
upload or by URL), submit, and then drive the comparison view: tab selection
and the reveal slider. Previews and decoded artifacts are served back as images.`,
		Example: `  # Start server on the configured port (default 8888)
  landwatch serve

  # Start server on custom port
  landwatch serve --port 3000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			if err := a.cfg.Validate("serve"); err != nil {
				return err
			}
			analyzer, err := a.analyzer()
			if err != nil {
				return err
			}

			if client, err := a.apiClient(); err == nil {
				pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
				if msg, err := client.Ping(pingCtx); err != nil {
					slog.Warn("Analysis service not reachable yet", "base_url", a.cfg.API.BaseURL, "error", err)
				} else {
					slog.Info("Analysis service reachable", "base_url", a.cfg.API.BaseURL, "service", msg)
				}
				cancel()
			}

			handler := handlers.New(analyzer, images.NewMemoryPreviews(), a.fetcher())
			defer handler.Sessions().CloseAll()

			addr := ":" + strconv.Itoa(a.cfg.Server.Port)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(origins),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("LandWatch host available", "addr", addr, "url", "http://localhost"+addr, "analysis_service", a.cfg.API.BaseURL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-cmd.Context().Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped", "sessions", handler.Sessions().Len())
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 8888, "Port to listen on (overrides server.port)")
	cmd.Flags().StringSliceVar(&origins, "allowed-origin", []string{"*"}, "Origins allowed to call the API")

	return cmd
}

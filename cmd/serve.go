package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/cardbinder/cardbinder/internal/handlers"
	"github.com/cardbinder/cardbinder/internal/repository"
	"github.com/cardbinder/cardbinder/internal/storage"
)

func newServeCmd() *cobra.Command {
	var port string
	var uploadsDir string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the card review web server",
		Long: `Starts the Cardbinder API on the specified port.

Clients upload bulk card photos, run detection over them, adjust the detected
boundaries, and create catalog cards from the selection.`,
		Example: `  # Start server on default port 8888
  cardbinder serve

  # Start server on custom port with a separate catalog database
  cardbinder serve --port 3000 --db ./data/cards.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			imageStore, err := storage.NewImageStore(uploadsDir)
			if err != nil {
				return err
			}
			cards, err := repository.New(dbPath)
			if err != nil {
				return err
			}
			defer cards.Close()

			handler := handlers.New(imageStore, cards)

			// Set up routes
			mux := http.NewServeMux()
			mux.HandleFunc("/api/upload", handler.HandleUpload)
			mux.HandleFunc("/api/reviews", handler.HandleReviews)
			mux.HandleFunc("/api/reviews/", handler.HandleReviewDetail)
			mux.HandleFunc("/api/cards", handler.HandleCards)
			mux.HandleFunc("/static/uploads/", handler.HandleStatic)
			mux.HandleFunc("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
				if _, err := w.Write([]byte("OK")); err != nil {
					slog.Error("Unable to write healthcheck", "err", err)
				}
			})

			addr := ":" + port
			server := &http.Server{
				Addr:    addr,
				Handler: mux,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Cardbinder API available", "addr", addr, "url", "http://localhost"+addr)
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
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "8888", "Port to listen on")
	cmd.Flags().StringVar(&uploadsDir, "uploads", "uploads", "Directory for uploaded images")
	cmd.Flags().StringVar(&dbPath, "db", "data/cards.db", "Path to the card catalog database")

	return cmd
}

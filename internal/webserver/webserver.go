package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"instapaperkobo/internal/app"
	"instapaperkobo/internal/logger"
)

const shutdownTimeout = 5 * time.Second

// NewHandler builds the routing table for the Kobo bridge.
func NewHandler(application *app.App, log *logger.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/kobo/get", application.HandleKoboGet)
	mux.HandleFunc("/api/kobo/download", application.HandleKoboDownload)
	mux.HandleFunc("/api/kobo/send", application.HandleKoboSend)
	mux.HandleFunc("/api/convert-image", application.HandleConvertImage)

	// Catch-all for unimplemented routes
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		log.Warnf("404 Not Found: URL=%s, Method=%s, Params=%v", r.URL.Path, r.Method, r.URL.Query())
		http.Error(w, "404 Not Found", http.StatusNotFound)
	})

	return LoggingMiddleware(mux, log)
}

// ListenAndServe starts the HTTP server on the specified port and shuts it
// down when ctx is cancelled.
func ListenAndServe(ctx context.Context, port int, application *app.App, log *logger.Logger) error {
	addr := fmt.Sprintf(":%d", port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewHandler(application, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Web server starting on port %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("web server failed: %w", err)
	case <-ctx.Done():
		log.Infof("Web server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillahandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/kvit-dev/caleoban/config"
	"github.com/kvit-dev/caleoban/handlers"
	"github.com/kvit-dev/caleoban/utilities"
)

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func newRouter(cfg config.Config, h *handlers.TaskHandler, auth *handlers.Auth) http.Handler {
	r := mux.NewRouter()

	r.Use(handlers.RequestIDMiddleware)
	r.Use(handlers.LoggingMiddleware)

	r.HandleFunc("/health", healthHandler).Methods("GET")

	// --- Tasks ---
	r.HandleFunc("/tasks/stream", auth.AuthMiddleware(h.StreamTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.CreateTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.ListTasksHandler)).Methods("GET")
	r.HandleFunc("/tasks", auth.AuthMiddleware(h.DeleteAllTasksHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.GetTaskHandler)).Methods("GET")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.UpdateTaskHandler)).Methods("PATCH")
	r.HandleFunc("/tasks/{id}", auth.AuthMiddleware(h.DeleteTaskHandler)).Methods("DELETE")
	r.HandleFunc("/tasks/{id}/status", auth.AuthMiddleware(h.ChangeStatusHandler)).Methods("POST")
	r.HandleFunc("/tasks/{id}/drop", auth.AuthMiddleware(h.DropTaskHandler)).Methods("POST")
	r.HandleFunc("/tasks/{id}/history", auth.AuthMiddleware(h.TaskHistoryHandler)).Methods("GET")

	// --- Board and calendar views ---
	r.HandleFunc("/board/drop-target", auth.AuthMiddleware(h.DropTargetHandler)).Methods("POST")
	r.HandleFunc("/calendar/month", auth.AuthMiddleware(h.MonthGridHandler)).Methods("GET")
	r.HandleFunc("/calendar/week", auth.AuthMiddleware(h.WeekGridHandler)).Methods("GET")
	r.HandleFunc("/calendar/day/{date}/board", auth.AuthMiddleware(h.DayBoardHandler)).Methods("GET")
	r.HandleFunc("/stats", auth.AuthMiddleware(h.StatsHandler)).Methods("GET")

	headers := gorillahandlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", "Authorization", "X-User-ID", "X-Request-ID"})
	methods := gorillahandlers.AllowedMethods([]string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"})
	origins := gorillahandlers.AllowedOrigins(cfg.AllowedOrigins)
	exposed := gorillahandlers.ExposedHeaders([]string{"X-Request-ID"})
	utilities.LogInfo("Configuring CORS with allowed origins: %v", cfg.AllowedOrigins)

	return gorillahandlers.CORS(headers, methods, origins, exposed)(r)
}

// LoadRoutes serves the API until SIGINT or SIGTERM.
func LoadRoutes(cfg config.Config, h *handlers.TaskHandler, auth *handlers.Auth) error {
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(cfg, h, auth),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utilities.LogInfo("Server started on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		utilities.LogInfo("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

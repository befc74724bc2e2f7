package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/proxima-gis/proximity/internal/proximity"
)

var servePort int

// evaluator is the slice of proximity.Service the handlers need.
type evaluator interface {
	Evaluate(ctx context.Context, address string, radiusM int) (*proximity.Report, error)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the proximity scoring HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		svc, closer, err := newService(cfg)
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(svc, cfg.Server.CORSOrigins),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(context.Background())
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// newRouter builds the API surface: liveness, the scoring endpoint, and the
// thin contact sibling endpoint.
func newRouter(svc evaluator, corsOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "online",
			"message": "Proximity API is running",
		})
	})

	r.Get("/api/test-location", func(w http.ResponseWriter, _ *http.Request) {
		// Demo coordinate for frontend smoke tests.
		writeJSON(w, http.StatusOK, map[string]any{
			"lat":  52.2319,
			"lng":  21.0067,
			"name": "Przykładowa lokalizacja",
		})
	})

	r.Post("/api/proximity", handleProximity(svc))

	r.Post("/api/contact", func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil || payload.URL == "" {
			writeError(w, http.StatusBadRequest, "url is required")
			return
		}
		zap.L().Info("contact received", zap.String("url", payload.URL))
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "received",
			"url":    payload.URL,
		})
	})

	return r
}

// handleProximity decodes the scoring request, applies the default radius, and
// maps pipeline error kinds to HTTP statuses.
func handleProximity(svc evaluator) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var payload struct {
			Address string `json:"address"`
			RadiusM *int   `json:"radius_m"`
		}
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		radius := proximity.DefaultRadiusM
		if payload.RadiusM != nil {
			radius = *payload.RadiusM
		}

		report, err := svc.Evaluate(req.Context(), payload.Address, radius)
		if err != nil {
			switch {
			case eris.Is(err, proximity.ErrInvalidInput):
				writeError(w, http.StatusBadRequest, err.Error())
			case eris.Is(err, proximity.ErrAddressNotFound):
				writeError(w, http.StatusNotFound, "address not found")
			default:
				zap.L().Error("proximity request failed",
					zap.String("address", payload.Address),
					zap.Error(err),
				)
				writeError(w, http.StatusBadGateway, "upstream service unavailable")
			}
			return
		}

		writeJSON(w, http.StatusOK, report)
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

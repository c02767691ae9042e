package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hermes-sec/hermes-cli/internal/digest"
	"github.com/hermes-sec/hermes-cli/internal/ledger"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger and briefings over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		lgr, err := initLedger(ctx)
		if err != nil {
			return err
		}
		defer lgr.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(lgr, cfg.Brief.OutputDir),
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
}

func newRouter(lgr ledger.Ledger, artifactDir string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/ledger", func(w http.ResponseWriter, req *http.Request) {
		dates, err := lgr.Dates(req.Context())
		if err != nil {
			zap.L().Error("serve: list ledger", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "ledger unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"dates": dates})
	})

	r.Get("/ledger/{date}", func(w http.ResponseWriter, req *http.Request) {
		date := chi.URLParam(req, "date")
		articles, err := lgr.Read(req.Context(), date)
		switch {
		case errors.Is(err, ledger.ErrNoEntry):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no entry for " + date})
			return
		case err != nil:
			zap.L().Error("serve: read ledger entry", zap.String("date", date), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "entry unreadable"})
			return
		}
		writeJSON(w, http.StatusOK, articles)
	})

	r.Get("/briefing/{date}", func(w http.ResponseWriter, req *http.Request) {
		date := chi.URLParam(req, "date")
		b, err := digest.ReadArtifact(artifactDir, date)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no briefing for " + date})
			return
		}
		html, err := digest.RenderHTML(b)
		if err != nil {
			zap.L().Error("serve: render briefing", zap.String("date", date), zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(html)
	})

	r.Get("/feed.xml", func(w http.ResponseWriter, req *http.Request) {
		date, err := digest.LatestArtifactDate(artifactDir)
		if err != nil || date == "" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no briefings available"})
			return
		}
		b, err := digest.ReadArtifact(artifactDir, date)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "no briefings available"})
			return
		}
		selfURL := "http://" + req.Host + "/feed.xml"
		rss, err := digest.RenderFeed(b, selfURL)
		if err != nil {
			zap.L().Error("serve: render feed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "render failed"})
			return
		}
		w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write(rss)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

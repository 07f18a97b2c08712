package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/departamento-policia/api/internal/app/agentes"
	"github.com/departamento-policia/api/internal/app/casos"
	"github.com/departamento-policia/api/internal/platform/env"
	"github.com/departamento-policia/api/internal/platform/metrics"
	"github.com/departamento-policia/api/internal/platform/natsutil"
	"github.com/departamento-policia/api/internal/platform/web"
)

func main() {
	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil)).With("service", "dp-api")
	slog.SetDefault(logger)

	addr := env.String("API_ADDR", env.DefaultAPIAddr)
	shutdownTimeout := env.Duration("SHUTDOWN_TIMEOUT", 10*time.Second)

	agenteRepo := agentes.NewRepository()
	casoRepo := casos.NewRepository()

	agenteSvc := agentes.NewService(agenteRepo)
	casoSvc := casos.NewService(casoRepo, agenteRepo)

	// Change-event publishing is optional: without NATS_URL the API runs
	// standalone and mutations are simply not announced.
	if natsURL := env.String("NATS_URL", ""); natsURL != "" {
		client, err := natsutil.ConnectJetStreamWithRetry(natsURL, 20*time.Second)
		if err != nil {
			logger.Error("conectar ao NATS", "url", natsURL, "err", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher := natsutil.JetStreamPublisher{JS: client.JS}
		agenteSvc.Publish = publisher.Publish
		casoSvc.Publish = publisher.Publish
	}

	r := chi.NewRouter()
	r.Use(web.Instrument(logger))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.DefaultHandler())
	agentes.NewHandler(agenteSvc).Register(r)
	casos.NewHandler(casoSvc).Register(r)

	server := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("servidor do departamento de polícia iniciado", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("servidor encerrou com erro", "err", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown do servidor", "err", err)
	}
}

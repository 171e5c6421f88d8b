// cmd/chat-api/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"govsupport-chatbot/internal/api"
	"govsupport-chatbot/internal/app"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "chat-api"})
	zapLog.Info("Starting chat API...", zap.String("environment", cfg.App.Environment))

	obs := observability.New("chat-api")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conns, err := app.Connect(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("backing stores unavailable", zap.Error(err))
	}
	defer conns.Close()

	if err := conns.Prepare(ctx, cfg); err != nil {
		zapLog.Fatal("schema preparation failed", zap.Error(err))
	}

	publisher, err := app.CompletionPublisher(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("completion publisher init failed", zap.Error(err))
	}
	if publisher == nil {
		zapLog.Info("completion events disabled")
	}

	c, err := app.Build(cfg, conns, publisher, obs, log)
	if err != nil {
		zapLog.Fatal("component init failed", zap.Error(err))
	}

	checks := make(map[string]api.ReadinessCheck)
	for name, check := range conns.Checks() {
		checks[name] = check
	}

	server := api.NewServer(cfg, api.Deps{
		Chat:        c.Orchestrator,
		Sessions:    c.Sessions,
		Eligibility: c.Checker,
		Profiles:    c.Profiles,
		Policies:    c.Policies,
		Indexer:     c.Searcher,
		Searcher:    c.Searcher,
		Selector:    c.Selector,
		Validator:   c.Validator,
		Checks:      checks,
		Obs:         obs,
		Logger:      log,
	})
	go server.RunCleanup(ctx, time.Minute, 10*time.Minute)

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      server.Handler(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	errCh := make(chan error, 1)
	go func() {
		zapLog.Info("Chat API listening", zap.String("addr", httpSrv.Addr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("Shutdown signal received")
	case err := <-errCh:
		zapLog.Error("HTTP server failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Chat API stopped")
}

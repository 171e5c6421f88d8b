// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"govsupport-chatbot/internal/app"
	"govsupport-chatbot/internal/common/camunda"
	"govsupport-chatbot/internal/common/config"
	"govsupport-chatbot/internal/common/logger"
	"govsupport-chatbot/internal/common/observability"
	"govsupport-chatbot/pkg/registry"

	gq "govsupport-chatbot/internal/workers/chatbot/generate-question"
	pct "govsupport-chatbot/internal/workers/chatbot/process-chat-turn"
	ce "govsupport-chatbot/internal/workers/policy/calculate-eligibility"
	epc "govsupport-chatbot/internal/workers/policy/extract-policy-conditions"
	sp "govsupport-chatbot/internal/workers/policy/search-policies"
	uup "govsupport-chatbot/internal/workers/profile/update-user-profile"
)

const (
	healthAddr   = ":8081"
	registryPath = "configs/activity-registry.json"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}
	if err := cfg.ValidateWorkers(); err != nil {
		zapLog.Fatal("worker config invalid", zap.Error(err))
	}

	zapLog = logger.New(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.NewZapAdapter(zapLog).WithFields(map[string]interface{}{"service": "worker-manager"})

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebeClient, err := camunda.Connect(ctx, cfg.Camunda, camunda.DefaultRetryConfig, log)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Stores ---
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

	components, err := app.Build(cfg, conns, publisher, obs, log)
	if err != nil {
		zapLog.Fatal("component init failed", zap.Error(err))
	}

	// --- Workers ---
	workers, served := registerWorkers(zeebeClient, cfg, components, obs, log)
	zapLog.Info("Workers registered", zap.Strings("taskTypes", served))
	checkRegistry(registryPath, served, zapLog)

	// --- Health & Metrics Server ---
	checks := conns.Checks()
	checks["zeebe"] = func(ctx context.Context) error {
		return camunda.HealthCheck(ctx, zeebeClient, config.GetDuration(cfg.Camunda.RequestTimeout))
	}
	healthSrv := &http.Server{
		Addr:              healthAddr,
		Handler:           healthMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", healthAddr))
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func workerTimeout(cfg *config.Config, taskType string) time.Duration {
	return config.GetDuration(config.GetWorkerConfig(cfg, taskType).Timeout)
}

func registerWorkers(client zbc.Client, cfg *config.Config, c *app.Components, obs *observability.Observability, log logger.Logger) ([]worker.JobWorker, []string) {
	var workers []worker.JobWorker
	var served []string
	start := func(taskType string, handler worker.JobHandler) {
		if w := camunda.Start(client, taskType, config.GetWorkerConfig(cfg, taskType), handler, log); w != nil {
			workers = append(workers, w)
			served = append(served, taskType)
		}
	}

	// --- Chatbot ---
	chatTurn := pct.NewHandler(&pct.Config{Timeout: workerTimeout(cfg, pct.TaskType)}, c.Orchestrator, obs, log)
	start(pct.TaskType, chatTurn.Handle)

	question := gq.NewHandler(&gq.Config{Timeout: workerTimeout(cfg, gq.TaskType)}, c.Selector, c.Validator, log)
	start(gq.TaskType, question.Handle)

	// --- Policy ---
	extract := epc.NewHandler(&epc.Config{Timeout: workerTimeout(cfg, epc.TaskType)}, c.Policies, log)
	start(epc.TaskType, extract.Handle)

	eligibility := ce.NewHandler(&ce.Config{Timeout: workerTimeout(cfg, ce.TaskType)}, c.Checker, c.Profiles, log)
	start(ce.TaskType, eligibility.Handle)

	searchCfg := sp.LoadConfig()
	searchCfg.Timeout = workerTimeout(cfg, sp.TaskType)
	searchCfg.DefaultRecommendLen = cfg.Chat.Recommendations
	search := sp.NewHandler(searchCfg, c.Searcher, log)
	start(sp.TaskType, search.Handle)

	// --- Profile ---
	profile := uup.NewHandler(&uup.Config{Timeout: workerTimeout(cfg, uup.TaskType)}, c.Profiles, c.Validator, log)
	start(uup.TaskType, profile.Handle)

	return workers, served
}

// checkRegistry warns when a served task type is missing from the
// activity registry. It never stops the manager.
func checkRegistry(path string, served []string, log *zap.Logger) {
	reg, err := registry.Load(path)
	if err != nil {
		log.Warn("activity registry not loaded", zap.String("path", path), zap.Error(err))
		return
	}
	if err := reg.Validate(served); err != nil {
		log.Warn("activity registry out of date", zap.String("path", path), zap.Error(err))
		return
	}
	log.Info("activity registry verified", zap.Int("activities", len(reg.Activities)))
}

func healthMux(checks map[string]func(ctx context.Context) error) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for name, check := range checks {
			if err := check(ctx); err != nil {
				results[name] = fmt.Sprintf("error: %v", err)
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().Format(time.RFC3339),
		})
	})
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

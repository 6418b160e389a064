package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/selimozcann/infoprobe/internal/api"
	"github.com/selimozcann/infoprobe/internal/config"
	"github.com/selimozcann/infoprobe/internal/job"
	"github.com/selimozcann/infoprobe/internal/logger"
	"github.com/selimozcann/infoprobe/internal/metrics"
	"github.com/selimozcann/infoprobe/internal/schedule"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func serveCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API for submitting scans and polling jobs",
		Long: `serve starts an HTTP API that runs scans as background jobs.

  POST /api/v1/scans      submit a scan, returns {"job_id": ...}
  GET  /api/v1/jobs/:id   poll a job
  GET  /health            liveness
  GET  /metrics           Prometheus metrics

With --schedule the same scan is also submitted on a cron schedule.`,
		RunE: runServe,
	}

	f := c.Flags()
	f.String("address", ":8080", "Listen address")
	f.String("schedule", "", "Cron expression for recurring scans (5 fields or a descriptor such as @daily)")
	f.String("store", config.StoreMemory, "Job store: memory or redis")

	mustBind(v, f, map[string]string{
		"server.address": "address",
		"schedule.cron":  "schedule",
		"jobs.store":     "store",
	})
	return c
}

func newStore(cfg *config.Config) (job.Store, func(), error) {
	if cfg.Jobs.Store != config.StoreRedis {
		return job.NewMemoryStore(), func() {}, nil
	}
	client, err := job.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connect job store: %w", err)
	}
	return job.NewRedisStore(client), func() { _ = client.Close() }, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := appCfg

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	store, closeStore, err := newStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	jobs := job.NewRunner(store, newScanner(cfg, m), log, m)

	sched := schedule.New(jobs, log)
	if cfg.Schedule.Cron != "" {
		if _, err := sched.Add(cfg.Schedule.Cron, cfg.ScanConfig()); err != nil {
			return err
		}
	}
	sched.Start()

	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.NewHandler(jobs, cfg.ScanConfig(), log), reg)
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening",
			logger.String("address", cfg.Server.Address),
			logger.String("store", cfg.Jobs.Store),
			logger.String("schedule", cfg.Schedule.Cron))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		sched.Stop()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	sched.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", logger.Error(err))
	}
	// scans cannot be cancelled; let running jobs reach a terminal state
	jobs.Wait()
	log.Info("Server stopped")
	return nil
}

package main

import (
	"context"
	"crypto/rand"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/weeklyplan/internal/config"
	"github.com/claude/weeklyplan/internal/metrics"
	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/claude/weeklyplan/internal/server"
	"github.com/claude/weeklyplan/internal/session"
	"github.com/claude/weeklyplan/internal/storage"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"tailscale.com/tsnet"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	envFile := flag.String("env-file", ".env", "path to .env file (optional)")
	migrateOnly := flag.Bool("migrate-only", false, "run migrations and exit")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("WeeklyPlan starting", "version", Version)

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Error("failed to load env file", "error", err)
		os.Exit(1)
	}

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Activity log: PostgreSQL when configured, SQLite otherwise
	activity, err := openActivityLog(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open activity log", "error", err)
		os.Exit(1)
	}
	defer activity.Close()

	if *migrateOnly {
		log.Info("migrate-only: exiting")
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewManager("weeklyplan", "server", reg)

	client := planapi.NewClient(cfg.PlanAPI.BaseURL, cfg.PlanAPI.Timeout)
	backend := metrics.InstrumentBackend(client, m)
	log.Info("plan service", "base_url", client.BaseURL(), "timeout", cfg.PlanAPI.Timeout.String())

	sessions := session.NewStore(backend, cfg.Session.TTL, log)
	go sessions.Run(ctx, cfg.Session.SweepInterval)

	var csrfKey []byte
	if cfg.CSRF.Enabled {
		csrfKey = []byte(cfg.CSRF.Key)
		if len(csrfKey) == 0 {
			csrfKey = make([]byte, 32)
			rand.Read(csrfKey)
			log.Warn("csrf.key not set, using a random key; open forms break on restart")
		}
	}

	srv, err := server.New(server.Options{
		Sessions:     sessions,
		Activity:     activity,
		Metrics:      m,
		Gatherer:     reg,
		CSRFKey:      csrfKey,
		SecureCookie: cfg.Session.SecureCookie,
	}, log)
	if err != nil {
		log.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	// Start server on tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}
	srv.Wait()
	log.Info("server stopped")
}

func openActivityLog(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.ActivityLog, error) {
	if !cfg.Database.Enabled() {
		l, err := storage.OpenSQLite(cfg.Storage.Dir)
		if err != nil {
			return nil, err
		}
		log.Info("activity log", "backend", "sqlite", "dir", cfg.Storage.Dir)
		return l, nil
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	log.Info("migrations applied")

	db, err := storage.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting database: %w", err)
	}
	log.Info("activity log", "backend", "postgres", "host", cfg.Database.Host)
	return db, nil
}

package main

import (
	"context"
	"flag"
	"net/http"
	"net/http/pprof"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/matst80/slask-catalog/pkg/catalog"
	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/config"
	"github.com/matst80/slask-catalog/pkg/server"
	"github.com/matst80/slask-catalog/pkg/sources/static"
)

var configPath = flag.String("config", ".", "directory containing config.yaml")

func main() {
	flag.Parse()
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	ctx := context.Background()
	var ready atomic.Bool
	hooks := []common.ShutdownHook{func(context.Context) error {
		ready.Store(false)
		return nil
	}}

	fallback, err := static.LoadEmbedded(time.Now())
	if err != nil {
		log.Fatalf("Could not load fallback datasets: %v", err)
	}
	source, closeSource, err := connectSource(ctx, cfg.Source)
	if err != nil {
		log.Fatalf("Could not connect source: %v", err)
	}
	store, closeStore := connectStore(ctx, cfg.Redis)
	tracker, closeTracking := connectTracking(cfg.Rabbit)
	hooks = append(hooks, closeTracking, closeStore, closeSource)

	registry := catalog.NewRegistry(catalog.Options{
		Source:       source,
		Fallback:     fallback,
		StageTimeout: cfg.Catalog.StageTimeout,
		ClientWindow: cfg.Catalog.ClientWindow,
		SampleWindow: cfg.Catalog.SampleWindow,
	})
	srv := server.NewWebServer(registry, server.Options{
		Store:   store,
		Tracker: tracker,
		Access:  common.NewAccessPolicyParser(cfg.Auth.JwtSecret),
	})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", srv.ClientHandler()))

	debugMux := http.NewServeMux()
	debugMux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if !ready.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	debugMux.Handle("/metrics", promhttp.Handler())
	if cfg.Server.Profiling {
		log.Println("Profiling enabled")
		debugMux.HandleFunc("/debug/pprof/", pprof.Index)
		debugMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		debugMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		debugMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		debugMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	timeouts := common.TimeoutConfig{
		Read:     cfg.Server.ReadTimeout,
		Write:    cfg.Server.WriteTimeout,
		Idle:     cfg.Server.IdleTimeout,
		Shutdown: cfg.Server.ShutdownTimeout,
	}
	ready.Store(true)
	log.Printf("Serving %d content types", len(registry.Types()))
	common.RunServersWithShutdown(ctx, []*http.Server{
		common.NewServerWithTimeouts(cfg.Server.Listen, mux, timeouts),
		common.NewServerWithTimeouts(cfg.Server.Debug, debugMux, timeouts),
	}, timeouts, hooks...)
}

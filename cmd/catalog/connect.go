package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/matst80/slask-catalog/pkg/common"
	"github.com/matst80/slask-catalog/pkg/config"
	"github.com/matst80/slask-catalog/pkg/persistance"
	"github.com/matst80/slask-catalog/pkg/sources/pg"
	"github.com/matst80/slask-catalog/pkg/sources/rest"
	"github.com/matst80/slask-catalog/pkg/sources/static"
	"github.com/matst80/slask-catalog/pkg/tracking"
	"github.com/matst80/slask-catalog/pkg/types"
)

// connectSource opens the configured remote query source. The returned hook
// releases its connections on shutdown.
func connectSource(ctx context.Context, cfg config.SourceConfig) (types.Source, common.ShutdownHook, error) {
	switch cfg.Driver {
	case "pg":
		pool, err := pg.Connect(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return pg.New(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil
	case "rest":
		src := rest.New(rest.Config{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: cfg.Timeout,
			OAuth: clientcredentials.Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenURL:     cfg.TokenURL,
				Scopes:       cfg.Scopes,
			},
		})
		log.Printf("Using rest source %s", cfg.BaseURL)
		return src, func(context.Context) error { return src.Close() }, nil
	case "memory":
		log.Printf("No remote source configured, serving embedded datasets only")
		return static.NewTables(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown source driver %q", cfg.Driver)
}

func connectStore(ctx context.Context, cfg config.RedisConfig) (persistance.StateStore, common.ShutdownHook) {
	if cfg.Addr == "" {
		log.Printf("No redis configured, keeping view state in memory")
		return persistance.NewMemoryStore(cfg.TTL), nil
	}
	store := persistance.NewRedisStore(cfg.Addr, cfg.Password, cfg.Database, cfg.TTL)
	if err := store.Ping(ctx); err != nil {
		log.Warnf("Redis not reachable at %s: %v", cfg.Addr, err)
	}
	return store, func(context.Context) error { return store.Close() }
}

func connectTracking(cfg config.RabbitConfig) (tracking.Tracker, common.ShutdownHook) {
	if cfg.URL == "" {
		return tracking.NoopTracker{}, nil
	}
	tracker, err := tracking.NewRabbitTracking(cfg.URL)
	if err != nil {
		log.Printf("Failed to connect to rabbitmq for tracking: %v", err)
		return tracking.NoopTracker{}, nil
	}
	return tracker, func(context.Context) error { return tracker.Close() }
}

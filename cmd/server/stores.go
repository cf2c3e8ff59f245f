package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"formation/internal/formation/service"
	applicationstore "formation/internal/formation/store/application"
	draftstore "formation/internal/formation/store/draft"
	"formation/internal/platform/config"
	"formation/internal/platform/migrations"
	"formation/internal/platform/postgres"
	"formation/internal/platform/redis"
)

// storage is the persistence selected by configuration. tx is nil for the
// in-memory stores, which leaves the service on its in-process lock.
type storage struct {
	applications service.ApplicationStore
	drafts       service.DraftStore
	tx           service.TxRunner
	// redis is shared by the Redis draft store and the rate limiter; nil
	// when REDIS_URL is unset.
	redis   *redis.Client
	closers []func() error
}

func (s *storage) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func buildStores(ctx context.Context, cfg config.Config, log *slog.Logger) (*storage, error) {
	s := &storage{}

	var db *sql.DB
	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db.Close)
		if cfg.Database.AutoMigrate {
			if err := migrations.Up(ctx, db); err != nil {
				s.close()
				return nil, err
			}
			log.Info("database migrations applied")
		}
		s.applications = applicationstore.NewPostgres(db)
		s.tx = newFormationPostgresTx(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores; data is lost on restart")
		s.applications = applicationstore.NewInMemoryStore()
	}

	client, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		s.close()
		return nil, err
	}
	if client != nil {
		s.redis = client
		s.closers = append(s.closers, client.Close)
	}

	switch cfg.Drafts.Backend {
	case config.DraftBackendPostgres:
		if db == nil {
			s.close()
			return nil, fmt.Errorf("draft backend %q requires DATABASE_URL", cfg.Drafts.Backend)
		}
		s.drafts = draftstore.NewPostgres(db)
	case config.DraftBackendRedis:
		if s.redis == nil {
			s.close()
			return nil, fmt.Errorf("draft backend %q requires REDIS_URL", cfg.Drafts.Backend)
		}
		s.drafts = draftstore.NewRedis(s.redis.Client)
	default:
		s.drafts = draftstore.NewInMemoryStore()
	}
	return s, nil
}

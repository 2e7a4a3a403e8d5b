package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	discussionengine "agora/contexts/deliberation/discussion-engine"
	postgresadapter "agora/contexts/deliberation/discussion-engine/adapters/postgres"
	"agora/contexts/deliberation/discussion-engine/adapters/redisstore"
	"agora/contexts/deliberation/discussion-engine/adapters/sqlite"
	"agora/contexts/deliberation/discussion-engine/application/commands"
	"agora/contexts/deliberation/discussion-engine/application/queries"
	workerapp "agora/contexts/deliberation/discussion-engine/application/workers"
	"agora/contexts/deliberation/discussion-engine/ports"
	"agora/internal/platform/config"
	"agora/internal/platform/db"
	"agora/internal/platform/httpserver"
	"agora/internal/platform/messaging"
	"agora/internal/platform/redisconn"
	"agora/internal/shared/locking"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redisconn.Redis
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	redis        *redisconn.Redis
	archive      *sqlite.Store
	outboxRelay  workerapp.OutboxRelay
	activity     workerapp.ActivityConsumer
	responder    workerapp.Responder
	exporter     workerapp.ArchiveExporter
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg := config.Load()
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		logger.Info("no postgres dsn configured, using in-memory store",
			"event", "bootstrap_inmemory_mode",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
		module := discussionengine.NewInMemoryModule(logger)
		return &APIApp{
			server: httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
			logger: logger,
		}, nil
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)

	var rd *redisconn.Redis
	idempotency := ports.IdempotencyStore(repo)
	if cfg.RedisURL != "" {
		rd, err = redisconn.Connect(cfg.RedisURL)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		idempotency = redisstore.NewStore(rd.Client)
	}

	module := discussionengine.NewModule(discussionengine.Dependencies{
		Sessions:       repo,
		Proposals:      repo,
		Polls:          repo,
		Idempotency:    idempotency,
		Stats:          repo,
		Outbox:         repo,
		Locker:         locking.NewKeyedMutex(),
		Clock:          postgresadapter.SystemClock{},
		IDGenerator:    postgresadapter.UUIDGenerator{},
		IdempotencyTTL: 7 * 24 * time.Hour,
		Logger:         logger,
	})

	return &APIApp{
		server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
		postgres: pg,
		redis:    rd,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg := config.Load()
	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")

	// Workers share state with the api process through the database, so the
	// in-memory fallback does not apply here.
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	repo := postgresadapter.NewRepository(pg.DB, logger)

	var rd *redisconn.Redis
	idempotency := ports.IdempotencyStore(repo)
	dedup := ports.EventDedupStore(repo)
	if cfg.RedisURL != "" {
		rd, err = redisconn.Connect(cfg.RedisURL)
		if err != nil {
			_ = pg.Close()
			return nil, err
		}
		store := redisstore.NewStore(rd.Client)
		idempotency = store
		dedup = store
	}

	var archive *sqlite.Store
	if cfg.ArchiveDBPath != "" {
		archive, err = sqlite.Open(cfg.ArchiveDBPath)
		if err != nil {
			_ = rd.Close()
			_ = pg.Close()
			return nil, err
		}
	}

	locker := locking.NewKeyedMutex()
	return &WorkerApp{
		postgres: pg,
		redis:    rd,
		archive:  archive,
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     postgresadapter.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		activity: workerapp.ActivityConsumer{
			Subscriber:    kafka,
			Stats:         repo,
			Dedup:         dedup,
			Clock:         postgresadapter.SystemClock{},
			ConsumerGroup: cfg.ConsumerGroup,
			DedupTTL:      7 * 24 * time.Hour,
			Disabled:      !cfg.ActivityConsumerEnabled,
			Logger:        logger,
		},
		responder: workerapp.Responder{
			Pending: queries.ListPendingUseCase{
				Sessions:  repo,
				Proposals: repo,
				Polls:     repo,
				Logger:    logger,
			},
			Submit: commands.SubmitUtteranceUseCase{
				Sessions:       repo,
				Idempotency:    idempotency,
				Outbox:         repo,
				Locker:         locker,
				Clock:          postgresadapter.SystemClock{},
				IDGenerator:    postgresadapter.UUIDGenerator{},
				IdempotencyTTL: 7 * 24 * time.Hour,
				Logger:         logger,
			},
			// Generation backends register here; with none wired the
			// responder cycle is a no-op.
			Generator: nil,
			Disabled:  !cfg.ResponderEnabled,
			Logger:    logger,
		},
		exporter: workerapp.ArchiveExporter{
			Sessions: repo,
			Archive:  archive,
			Clock:    postgresadapter.SystemClock{},
			Logger:   logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if err := w.activity.Start(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.responder.RunOnce(ctx); err != nil {
			return err
		}
		if err := w.exporter.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.archive != nil {
		_ = w.archive.Close()
	}
	if w.redis != nil {
		_ = w.redis.Close()
	}
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

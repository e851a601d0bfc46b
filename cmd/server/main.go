// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in the internal packages.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"fastpass/internal/activity"
	appregistryhandler "fastpass/internal/appregistry/handler"
	appregistryservice "fastpass/internal/appregistry/service"
	appregistrystore "fastpass/internal/appregistry/store"
	"fastpass/internal/broker"
	"fastpass/internal/catalog"
	"fastpass/internal/connection"
	"fastpass/internal/dispatch"
	"fastpass/internal/embed"
	"fastpass/internal/notify"
	"fastpass/internal/platform/config"
	"fastpass/internal/platform/httpserver"
	"fastpass/internal/platform/logger"
	"fastpass/internal/platform/metrics"
	platformredis "fastpass/internal/platform/redis"
	profilestore "fastpass/internal/profile/store"
	"fastpass/internal/session"
	"fastpass/internal/vault"
	"fastpass/pkg/platform/audit"
)

func main() {
	cfg := config.FromEnv()
	log := logger.New(slog.LevelInfo)

	if err := run(cfg, log); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server exited", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	cat := catalog.New()

	// Stores: Postgres when configured, memory otherwise.
	var (
		profiles    profilestore.Store
		apps        appregistrystore.Store
		connections connection.Store
		activityLog audit.Store
	)
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		db, err := sql.Open("postgres", cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer db.Close()

		profiles = profilestore.NewPostgres(pool)
		connections = connection.NewPostgres(pool)
		apps = appregistrystore.NewPostgres(db)
		activityLog = audit.NewPostgresStore(db)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		profiles = profilestore.NewInMemory()
		connections = connection.NewInMemory()
		apps = appregistrystore.NewInMemory()
		activityLog = audit.NewInMemory()
	}

	recorder := audit.NewRecorder(activityLog, log, 256)

	var sink audit.Sink
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaSink, err := audit.NewKafkaSink(ctx, cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		defer kafkaSink.Close()
		sink = kafkaSink
	}

	var sessionStore session.Store
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessionStore = session.NewRedisStore(redisClient.Client)
	} else {
		sessionStore = session.NewInMemoryStore()
	}

	tokens := session.NewTokenService(cfg.SessionSigningKey, "fastpass", "fastpass-session")
	sessions := session.NewService(tokens, sessionStore, recorder, cfg.SessionTTL, log)
	validator := session.NewValidatorAdapter(tokens, sessionStore)

	v := vault.New(connections, log, m.IncrementCredentialsCreated)
	registry := appregistryservice.New(apps, cat, cfg.AdminKeyHash, log)
	notifier := notify.NewLogNotifier(log)
	resolver := dispatch.NewResolver(log, m.IncrementWildcardDispatches)
	brokerService := broker.NewService(apps, profiles, connections, v, cat, recorder, notifier, m, log)

	router := chi.NewRouter()
	broker.NewHandler(brokerService, resolver, log, m, validator, cfg.CloseDelay).Register(router)
	embed.NewHandler(registry, cat, log, m, cfg.HostURL, cfg.EmbedRPS, cfg.EmbedBurst).Register(router)
	appregistryhandler.New(registry, log, m, validator).Register(router)
	activity.NewHandler(recorder, log, m, validator).Register(router)
	session.NewHandler(sessions, log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		worker := audit.NewWorker(recorder, sink, log)
		return worker.Run(ctx)
	})

	g.Go(func() error {
		log.Info("starting fastpass", "addr", cfg.Addr, "host_url", cfg.HostURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

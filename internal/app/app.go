// Package app wires configuration to adapters and exposes the operations the
// command surface maps onto.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"NewsRadar/internal/classifier"
	"NewsRadar/internal/config"
	"NewsRadar/internal/domain"
	"NewsRadar/internal/extract"
	"NewsRadar/internal/infrastructure/crm"
	"NewsRadar/internal/infrastructure/fetcher"
	"NewsRadar/internal/infrastructure/metrics"
	"NewsRadar/internal/infrastructure/parser"
	"NewsRadar/internal/infrastructure/scheduler"
	"NewsRadar/internal/infrastructure/storage"
	"NewsRadar/internal/ports"
	"NewsRadar/internal/store"
	"NewsRadar/internal/usecase"
)

// Application owns the wired pipeline, store, and sink for one process.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	store     *store.Store
	pipeline  *usecase.Pipeline
	submitter *usecase.Submitter
	metrics   *metrics.Metrics

	db    *sql.DB
	redis *redis.Client
}

// New builds a runnable application instance from configuration.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	a := &Application{cfg: cfg, logger: logger, metrics: metrics.New()}

	repo, err := a.articleRepository()
	if err != nil {
		return nil, err
	}
	seenRepo, err := a.seenRepository()
	if err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, repo, seenRepo, logger.With("component", "store"))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	a.store = st

	registry := extract.NewRegistry()
	generic := parser.NewGeneric()
	registry.Register(generic)
	for _, src := range cfg.Sources {
		if src.Selectors != nil {
			registry.Register(parser.NewSelector(src.Name, *src.Selectors, generic))
		}
	}

	sources, err := extract.SourcesFromConfig(cfg.Sources)
	if err != nil {
		return nil, err
	}

	if cfg.CRM.Enabled {
		a.submitter = usecase.NewSubmitter(
			crm.NewClient(cfg.CRM),
			st,
			a.metrics,
			logger.With("component", "submitter"),
			cfg.CRM.QueueSize,
		)
		a.submitter.Start(ctx)
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:      fetcher.New(cfg.Fetch, nil),
		Registry:     registry,
		Classifier:   classifier.New(cfg.Classifier),
		Store:        st,
		Submitter:    a.submitter,
		Sources:      sources,
		MaxPerSource: cfg.Fetch.MaxPerSource,
		Workers:      cfg.Fetch.Workers,
		Logger:       logger.With("component", "pipeline"),
	})

	return a, nil
}

func (a *Application) articleRepository() (ports.ArticleRepository, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendPostgres:
		db, err := sql.Open("postgres", a.cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.db = db
		return storage.NewPostgresRepository(db), nil
	case config.BackendJSON, "":
		path := filepath.Join(a.cfg.Storage.DataDir, a.cfg.Storage.ArticlesFile)
		return storage.NewArticleFile(path), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", a.cfg.Storage.Backend)
	}
}

func (a *Application) seenRepository() (ports.SeenURLRepository, error) {
	switch a.cfg.Storage.SeenBackend {
	case config.SeenBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: a.cfg.Storage.RedisAddr})
		a.redis = client
		return storage.NewRedisSeenSet(client, ""), nil
	case config.SeenBackendFile, "":
		path := filepath.Join(a.cfg.Storage.DataDir, a.cfg.Storage.SeenFile)
		return storage.NewSeenFile(path), nil
	default:
		return nil, fmt.Errorf("unknown seen backend %q", a.cfg.Storage.SeenBackend)
	}
}

// FetchAll runs the pipeline for every configured source.
func (a *Application) FetchAll(ctx context.Context) (domain.Summary, error) {
	summary, err := a.pipeline.Run(ctx)
	a.metrics.ObserveSummary(summary)
	return summary, err
}

// FetchSource runs the pipeline for one source by name.
func (a *Application) FetchSource(ctx context.Context, name string) (domain.Summary, error) {
	summary, err := a.pipeline.RunSource(ctx, name)
	a.metrics.ObserveSummary(summary)
	return summary, err
}

// Pending lists articles awaiting moderation.
func (a *Application) Pending() []domain.Article {
	return a.store.Export(domain.ReviewPending)
}

// Approve marks a pending article approved.
func (a *Application) Approve(ctx context.Context, id int64) error {
	return a.store.Approve(ctx, id)
}

// Reject marks a pending article rejected.
func (a *Application) Reject(ctx context.Context, id int64) error {
	return a.store.Reject(ctx, id)
}

// Stats reports collection counters.
func (a *Application) Stats() domain.Stats {
	return a.store.Stats()
}

// Export snapshots articles in the given review state; empty means all.
func (a *Application) Export(state domain.ReviewState) []domain.Article {
	return a.store.Export(state)
}

// RunSchedule starts the cron loop plus the metrics endpoint and blocks until
// the context is cancelled. An initial run fires immediately.
func (a *Application) RunSchedule(ctx context.Context) error {
	sched := scheduler.NewCronScheduler(
		a.cfg.Scheduler.CronExpression,
		a.cfg.Scheduler.Location(),
		a.logger.With("component", "scheduler"),
	)

	job := func(trigger time.Time) {
		a.logger.Info("scheduled run", "trigger", trigger.Format(time.RFC3339))
		if _, err := a.FetchAll(ctx); err != nil {
			a.logger.Error("scheduled run failed", "error", err)
		}
	}

	if err := sched.Start(ctx, job); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	server := &http.Server{Addr: a.cfg.Scheduler.MetricsAddr, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server stopped", "error", err)
		}
	}()

	job(time.Now())

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)
	return sched.Stop(shutdownCtx)
}

// Close drains the submitter and releases backend connections.
func (a *Application) Close() {
	if a.submitter != nil {
		a.submitter.Stop()
	}
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

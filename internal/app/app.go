// Package app wires configuration into the stores, pipeline and services
// shared by the HTTP server and the command line tool.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"litrecord/internal/classifier"
	"litrecord/internal/config"
	"litrecord/internal/domain"
	"litrecord/internal/metrics"
	"litrecord/internal/port"
	"litrecord/internal/repository/memory"
	"litrecord/internal/repository/postgres"
	"litrecord/internal/resilience"
	"litrecord/internal/service"
	"litrecord/internal/splitter"
	"litrecord/internal/storage/local"
	s3storage "litrecord/internal/storage/s3"
)

// App holds the assembled services and the resources behind them.
type App struct {
	Config     *config.Config
	DB         *sqlx.DB
	Storage    port.ObjectStorage
	Categories *domain.CategoryRegistry
	Classifier *classifier.Holder
	Watcher    *classifier.Watcher
	Metrics    *metrics.Registry

	Cases  service.CaseService
	Ingest service.IngestService
	Pages  service.PageService
	Export service.ExportService
}

// New builds an App from cfg. Close releases what it opened.
func New(cfg *config.Config) (*App, error) {
	a := &App{
		Config:     cfg,
		Categories: domain.NewCategoryRegistry(),
		Metrics:    metrics.New(),
	}

	var (
		caseRepo port.CaseRepository
		docRepo  port.DocumentRepository
		ledger   port.PageLedger
	)
	switch cfg.Store.Driver {
	case "memory":
		store := memory.NewStore()
		caseRepo, docRepo, ledger = store.Cases(), store.Documents(), store.Ledger()
		log.Printf("app.New: using in-memory ledger; state is lost on exit")
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DB = db
		caseRepo, docRepo, ledger = postgres.NewCaseRepo(db), postgres.NewDocumentRepo(db), postgres.NewPageLedger(db)
	}

	storage, err := newStorage(cfg)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Storage = storage

	rules, err := loadClassifier(cfg.Classifier, a.Categories)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Classifier = classifier.NewHolder(rules)
	a.Metrics.SetClassifierRules(len(rules.Rules()))
	if cfg.Classifier.Watch && cfg.Classifier.RulesFile != "" {
		a.Watcher = classifier.NewWatcher(cfg.Classifier.RulesFile, a.Classifier, a.Categories)
		a.Watcher.OnReload(func(c *classifier.Classifier, err error) {
			if err == nil {
				a.Metrics.SetClassifierRules(len(c.Rules()))
			}
		})
	}

	executor := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    cfg.Ingest.RetryMaxAttempts,
		RetryInitialBackoff: cfg.Ingest.RetryInitialBackoff,
		RetryMaxBackoff:     cfg.Ingest.RetryMaxBackoff,
		BreakerEnabled:      cfg.Ingest.BreakerEnabled,
		BreakerOpenTimeout:  cfg.Ingest.BreakerOpenTimeout,
	})

	a.Cases = service.NewCaseService(caseRepo, docRepo)
	a.Ingest = service.NewIngestService(caseRepo, ledger, splitter.New(storage, cfg.Ingest.SplitWorkers),
		a.Classifier, executor, a.Metrics, service.IngestConfig{
			MaxFileSize: cfg.Ingest.MaxFileSizeMB << 20,
			Concurrency: cfg.Ingest.Concurrency,
		})
	a.Pages = service.NewPageService(caseRepo, ledger, storage, a.Classifier, a.Categories, a.Metrics)
	a.Export = service.NewExportService(caseRepo, docRepo, ledger)
	return a, nil
}

// Ping reports whether the database answers. It is a no-op for the
// in-memory ledger.
func (a *App) Ping(ctx context.Context) error {
	if a.DB == nil {
		return nil
	}
	return a.DB.PingContext(ctx)
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func newStorage(cfg *config.Config) (port.ObjectStorage, error) {
	switch cfg.Artifacts.Driver {
	case "local":
		storage, err := local.NewLocalStore(cfg.Artifacts.LocalRoot)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize local artifact store: %w", err)
		}
		return storage, nil
	default:
		storage, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return storage, nil
	}
}

func loadClassifier(cfg config.ClassifierConfig, registry *domain.CategoryRegistry) (*classifier.Classifier, error) {
	if cfg.RulesFile == "" {
		return classifier.Default(), nil
	}
	c, err := classifier.LoadFile(cfg.RulesFile, registry)
	if err != nil {
		return nil, fmt.Errorf("failed to load classifier rules: %w", err)
	}
	return c, nil
}

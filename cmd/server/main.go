package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"litrecord/docs"
	"litrecord/internal/app"
	"litrecord/internal/auth"
	"litrecord/internal/config"
	"litrecord/internal/handler"
	"litrecord/internal/router"
)

// @title Litrecord API
// @version 1.0
// @description Litigation record engine: ingest case PDFs, deduplicate and classify pages, keep a stable chronology.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the token.

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cfg.Log.Level == "debug" {
		log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	}

	a, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if a.Watcher != nil {
		go func() {
			if err := a.Watcher.Run(ctx); err != nil {
				log.Printf("classifier rule watcher stopped: %v", err)
			}
		}()
	}

	// Initialize handlers
	caseH := handler.NewCaseHandler(a.Cases, a.Export)
	documentH := handler.NewDocumentHandler(a.Ingest, cfg.Ingest.MaxFileSizeMB<<20)
	pageH := handler.NewPageHandler(a.Pages, cfg.S3.PresignExpiry)
	healthH := handler.NewHealthHandler(map[string]handler.ReadinessCheck{"database": a.Ping})

	tokens := auth.NewTokenService(cfg.JWT)
	if tokens == nil {
		log.Printf("LITRECORD_JWT_SECRET not set; API is unauthenticated")
	}

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	docs.SwaggerInfo.BasePath = "/api/v1"

	// Setup router
	r := router.Setup(router.Handlers{
		Case:     caseH,
		Document: documentH,
		Page:     pageH,
		Health:   healthH,
	}, router.Options{
		Tokens:         tokens,
		Metrics:        a.Metrics,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Swagger:        cfg.Server.Environment != "production",
	})

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Printf("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

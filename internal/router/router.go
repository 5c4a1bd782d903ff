package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"litrecord/internal/auth"
	"litrecord/internal/handler"
	"litrecord/internal/metrics"
	"litrecord/internal/middleware"
)

// Handlers bundles the HTTP handlers mounted by Setup.
type Handlers struct {
	Case     *handler.CaseHandler
	Document *handler.DocumentHandler
	Page     *handler.PageHandler
	Health   *handler.HealthHandler
}

// Options holds the cross-cutting dependencies of the router. A nil Tokens
// leaves the API unauthenticated.
type Options struct {
	Tokens         *auth.TokenService
	Metrics        *metrics.Registry
	AllowedOrigins []string
	Swagger        bool
}

// Setup configures the Gin engine with all routes and middleware.
func Setup(h Handlers, opts Options) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)

	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.Auth(opts.Tokens))

	// Case lifecycle
	cases := v1.Group("/cases")
	cases.POST("", h.Case.Create)
	cases.GET("", h.Case.List)
	cases.GET("/:id", h.Case.GetByID)
	cases.GET("/:id/status", h.Case.GetStatus)
	cases.PUT("/:id/status", h.Case.SetStatus)
	cases.POST("/:id/toggle", h.Case.Toggle)
	cases.GET("/:id/export", h.Case.Export)

	// Ingestion and the case chronology
	cases.POST("/:id/documents", h.Document.Upload)
	cases.GET("/:id/documents", h.Case.ListDocuments)
	cases.GET("/:id/pages", h.Page.ListByCase)
	cases.POST("/:id/reclassify", h.Page.Reclassify)

	// Page edits
	pages := v1.Group("/pages")
	pages.GET("/:id", h.Page.GetByID)
	pages.GET("/:id/content", h.Page.Content)
	pages.PUT("/:id/category", h.Page.SetCategory)
	pages.PUT("/:id/position", h.Page.Reorder)

	return r
}

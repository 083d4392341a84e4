package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appsvc "paperarchive/internal/app"
	"paperarchive/internal/bootstrap"
	"paperarchive/internal/transport/http/handler"
	"paperarchive/internal/transport/http/middleware"
)

// Dependencies are the constructed services the routes bind to.
type Dependencies struct {
	AppName        string
	Env            string
	GinMode        string
	CookieName     string
	SecureCookie   bool
	UploadMaxBytes int64
	StartedAt      time.Time

	Auth    *appsvc.AuthService
	Catalog *appsvc.CatalogService
	Probes  []handler.Probe
}

func NewRouter(app *bootstrap.App) *gin.Engine {
	return NewEngine(Dependencies{
		AppName:        app.Config.App.Name,
		Env:            app.Config.App.Env,
		GinMode:        app.Config.App.GinMode,
		CookieName:     app.Config.Auth.CookieName,
		SecureCookie:   app.Config.IsProduction(),
		UploadMaxBytes: app.Config.Upload.MaxBytes,
		StartedAt:      app.StartedAt,
		Auth:           app.AuthService,
		Catalog:        app.CatalogService,
		Probes:         app.Probes(),
	})
}

func NewEngine(deps Dependencies) *gin.Engine {
	if deps.GinMode != "" {
		gin.SetMode(deps.GinMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(), middleware.Metrics(), gin.Recovery())
	router.MaxMultipartMemory = deps.UploadMaxBytes

	healthHandler := handler.NewHealthHandler(deps.AppName, deps.Env, deps.StartedAt, deps.Probes...)
	router.GET("/healthz", healthHandler.Check)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authHandler := handler.NewAuthHandler(deps.Auth, handler.CookieSettings{
		Name:   deps.CookieName,
		Secure: deps.SecureCookie,
	})
	paperHandler := handler.NewPaperHandler(deps.Catalog)
	uploadHandler := handler.NewUploadHandler(deps.Catalog, deps.UploadMaxBytes)
	metaHandler := handler.NewMetaHandler(time.Now)
	requireAdmin := middleware.AuthAdmin(deps.Auth, deps.CookieName)

	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("", authHandler.Login)
	authGroup.GET("", authHandler.Status)
	authGroup.DELETE("", authHandler.Logout)

	api.GET("/meta", metaHandler.Get)

	papers := api.Group("/papers")
	papers.GET("", paperHandler.List)
	papers.GET("/search", paperHandler.Search)
	papers.GET("/:id", paperHandler.Get)
	papers.PUT("/:id", requireAdmin, paperHandler.Update)
	papers.DELETE("", requireAdmin, paperHandler.DeleteByQuery)
	papers.DELETE("/:id", requireAdmin, paperHandler.DeleteByPath)

	api.POST("/upload", requireAdmin, uploadHandler.Upload)

	return router
}

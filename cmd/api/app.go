package main

import (
	"fmt"
	"net/http"

	"studiofinder/internal/config"
	"studiofinder/internal/database"
	"studiofinder/internal/discovery"
	"studiofinder/internal/logging"
	"studiofinder/internal/middleware"
	"studiofinder/internal/modules/catalog"
	"studiofinder/internal/modules/search"
	jwtsvc "studiofinder/internal/pkg/jwt"
	"studiofinder/internal/pkg/response"
	"studiofinder/internal/session"

	"github.com/gin-gonic/gin"
)

type app struct {
	router  *gin.Engine
	store   *session.Store
	search  *search.Handler
	catalog *catalog.Service // nil when a remote catalog is configured
}

func newApp(cfg *config.Config) (*app, error) {
	log := logging.New("api")

	r := gin.New()
	r.Use(middleware.ErrorLogger(logging.New("http")))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	if !cfg.IsProduction() {
		r.Use(gin.Logger())
	}

	v1 := r.Group("/api/v1")
	a := &app{router: r}

	var source discovery.Catalog
	if cfg.CatalogURL != "" {
		log.Info("using remote catalog", "url", cfg.CatalogURL)
		source = catalog.NewRemoteClient(cfg.CatalogURL, cfg.CatalogTimeout)
	} else {
		db, err := database.Connect(cfg.DatabaseURL, logging.New("database"))
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		repo := catalog.NewRepository(db)
		if err := repo.AutoMigrate(); err != nil {
			return nil, fmt.Errorf("auto migrate failed: %w", err)
		}
		source = repo
		a.catalog = catalog.NewService(repo)
		catalog.NewHandler(a.catalog, logging.New("catalog")).RegisterRoutes(v1)
	}

	engineOpts := cfg.EngineOptions()
	engineOpts.Logger = logging.New("discovery")
	a.store = session.NewStore(source, session.Options{
		TTL:    cfg.SessionTTL,
		Engine: engineOpts,
		Logger: logging.New("session"),
	})
	// Tokens live as long as their session; the store's idle TTL ends both.
	tokens := jwtsvc.New(cfg.SessionSecret, 0)

	a.search = search.NewHandler(a.store, tokens, logging.New("search"))
	a.search.RegisterRoutes(v1)

	r.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok", "sessions": a.store.Len()})
	})

	return a, nil
}

func (a *app) close() {
	a.search.Stream().Close()
	a.store.Close()
}

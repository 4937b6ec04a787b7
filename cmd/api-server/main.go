package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lnreader/internal/catalog"
	"lnreader/internal/migrate"
	synchub "lnreader/internal/sync"
	"lnreader/internal/upgrader"
	"lnreader/pkg/database"
	"lnreader/pkg/logger"
	"lnreader/pkg/utils"
)

func main() {
	logger.Init()
	cfg := utils.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error.Fatalf("config: %v", err)
	}

	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Error.Fatalf("db migrate failed: %v", err)
	}

	rules := migrate.DefaultRules()
	if cfg.RulesFile != "" {
		r, err := migrate.LoadRules(cfg.RulesFile)
		if err != nil {
			logger.Error.Fatalf("load rules: %v", err)
		}
		rules = r
		logger.Info.Printf("loaded migration rules from %s", cfg.RulesFile)
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))

	sources := make([]catalog.Source, 0, len(cfg.Repositories()))
	for _, repo := range cfg.Repositories() {
		sources = append(sources, catalog.SourceFor(repo))
	}
	catalogSvc := catalog.NewService(catalog.NewAggregator(sources...), catalog.NewRepo(db), hub, cfg.CatalogTTL)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":     "not_ready",
				"db_error":   err.Error(),
				"ws_clients": hub.Stats().WSClients,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":     "ready",
			"db":         "ok",
			"ws_clients": hub.Stats().WSClients,
		})
	})

	// Plugins (public)
	catalogHandler := catalog.NewHandler(catalogSvc, cfg.PluginsURL)
	catalogHandler.RegisterRoutes(router.Group("/plugins"))

	// Backup upgrader
	reportRepo := upgrader.NewRepo(db)
	tokens := upgrader.TokenService{
		Secret:   []byte(cfg.Download.Secret),
		Issuer:   cfg.Download.Issuer,
		Duration: cfg.Download.Duration,
	}
	upgraderHandler := upgrader.NewHandler(catalogSvc, rules, reportRepo, tokens)
	upgraderHandler.RegisterRoutes(router.Group("/tools/backup-upgrader"))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// prime the catalogue cache
	go func() {
		if _, err := catalogSvc.Raw(ctx); err != nil {
			logger.Warning.Printf("[catalog] warm-up failed: %v", err)
		}
	}()
	go pruneReports(ctx, reportRepo, cfg.Download.Duration)

	httpSrv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info.Printf("HTTP API server listening on %s", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info.Println("shutdown signal received")
	case err := <-errCh:
		logger.Error.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error.Printf("http shutdown error: %v", err)
	}
	logger.Info.Println("server stopped")
}

// pruneReports drops reports whose download links have expired.
func pruneReports(ctx context.Context, repo *upgrader.Repo, ttl time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteOlderThan(ctx, time.Now().Add(-ttl))
			if err != nil {
				logger.Warning.Printf("[upgrader] %v", err)
				continue
			}
			if n > 0 {
				logger.Info.Printf("[upgrader] pruned %d expired reports", n)
			}
		}
	}
}

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/kyvra-tech/shard-node-dashboard/internal/config"
	"github.com/kyvra-tech/shard-node-dashboard/internal/handlers"
	"github.com/kyvra-tech/shard-node-dashboard/internal/middleware"
	"github.com/kyvra-tech/shard-node-dashboard/internal/rpc"
	"github.com/kyvra-tech/shard-node-dashboard/internal/scheduler"
	"github.com/kyvra-tech/shard-node-dashboard/internal/services"
	"github.com/kyvra-tech/shard-node-dashboard/internal/store"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/logger"
	"github.com/kyvra-tech/shard-node-dashboard/pkg/metrics"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger := logger.New(cfg.Logger.Level, cfg.Logger.Format)

	// Initialize endpoint store and aggregation core
	nodeStore := store.NewFileStore(cfg.Store.Path, appLogger)
	clientFactory := rpc.NewFactory(cfg.RPC.CallTimeout, appLogger)
	aggregator := services.NewStatusAggregator(
		nodeStore,
		clientFactory,
		cfg.RPC.MaxConcurrentChecks,
		appLogger,
	)

	// Initialize scheduler
	statusScheduler := scheduler.NewStatusScheduler(
		aggregator,
		cfg.Monitor.SweepSchedule,
		cfg.Monitor.SweepTimeout,
		appLogger,
	)
	statusScheduler.Start()
	defer statusScheduler.Stop()

	// Initialize HTTP handlers
	nodeHandler := handlers.NewNodeHandler(nodeStore, aggregator, appLogger)
	dispatcher := handlers.NewDispatcher(nodeStore, aggregator, appLogger)
	healthHandler := handlers.NewHealthHandler(nodeStore, appLogger, version)

	// Setup Gin router
	if cfg.Logger.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.StructuredLogger(appLogger))
	router.Use(middleware.Recovery(appLogger))
	router.Use(middleware.Timeout(cfg.Server.RequestTimeout, appLogger))

	// CORS middleware
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	router.Use(func(ctx *gin.Context) {
		c.HandlerFunc(ctx.Writer, ctx.Request)
		ctx.Next()
	})

	// Command surface: JSON-RPC dispatch plus REST mirror
	router.POST("/rpc", dispatcher.HandleRequest)

	api := router.Group("/api/v1")
	{
		api.GET("/nodes", nodeHandler.GetNodes)
		api.POST("/nodes", nodeHandler.AddNode)
		api.DELETE("/nodes/:name", nodeHandler.DeleteNode)
		api.POST("/nodes/export", nodeHandler.ExportNodes)
		api.POST("/nodes/import", nodeHandler.ImportNodes)
		api.GET("/nodes/:name/chains", nodeHandler.GetChains)
		api.GET("/nodes/:name/chains/:shardId/blocks", nodeHandler.GetBlocks)
		api.GET("/nodes/:name/blocks/:hash", nodeHandler.GetBlock)
		api.GET("/health", healthHandler.Health)
	}

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Start server
	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		appLogger.WithField("addr", serverAddr).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}

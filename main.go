package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/olsonanl/bvbrc-mcp-server/internal/bvbrc"
	"github.com/olsonanl/bvbrc-mcp-server/internal/config"
	"github.com/olsonanl/bvbrc-mcp-server/internal/handlers"
	"github.com/olsonanl/bvbrc-mcp-server/internal/mcpserver"
	"github.com/olsonanl/bvbrc-mcp-server/internal/metrics"
	"github.com/olsonanl/bvbrc-mcp-server/internal/middleware"
	"github.com/olsonanl/bvbrc-mcp-server/internal/services"
	"github.com/olsonanl/bvbrc-mcp-server/internal/store"
	"github.com/olsonanl/bvbrc-mcp-server/internal/templates"
	"github.com/olsonanl/bvbrc-mcp-server/internal/upstream"
	"github.com/olsonanl/bvbrc-mcp-server/internal/version"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	flag.Parse()

	if *showVersion {
		version.PrintVersion()
		os.Exit(0)
	}

	runServer()
}

func runServer() {
	cfg := config.Load()

	// Initialize store
	db, memStore, err := newStore(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if memStore != nil && cfg.CodeSweepInterval > 0 {
		memStore.StartSweeper(cfg.CodeSweepInterval)
	}

	// Initialize metrics
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}

	// Initialize upstream clients
	authenticator := upstream.NewInstrumentedAuthenticator(
		upstream.NewClient(cfg.AuthenticationURL, cfg.AuthTimeout),
		recorder,
	)
	dataClient := bvbrc.NewDataClient(cfg.DataAPIURL, cfg.DataTimeout)
	workspaceClient := bvbrc.NewWorkspace(bvbrc.NewRPCClient(cfg.WorkspaceAPIURL, cfg.RPCTimeout))
	appClient := bvbrc.NewAppService(bvbrc.NewRPCClient(cfg.ServiceAPIURL, cfg.RPCTimeout))

	// Initialize services
	registrationService := services.NewRegistrationService(db)
	authorizationService := services.NewAuthorizationService(db, authenticator, cfg)
	tokenVerifier := services.NewTokenVerifier(db, cfg)

	// Initialize handlers
	clientHandler := handlers.NewClientHandler(registrationService, recorder)
	authorizationHandler := handlers.NewAuthorizationHandler(authorizationService, recorder)
	tokenHandler := handlers.NewTokenHandler(authorizationService, recorder)
	oidcHandler := handlers.NewOIDCHandler(cfg)

	// Initialize the MCP tool surface
	toolServer := mcpserver.New(
		"bvbrc-mcp-server",
		version.String(),
		tokenVerifier,
		dataClient,
		workspaceClient,
		appClient,
	)

	// Setup Gin
	setupGinMode(cfg)
	r := gin.New()
	r.Use(metrics.HTTPMetricsMiddleware(recorder))
	r.Use(gin.Logger(), gin.Recovery())
	r.SetHTMLTemplate(templates.Load())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db))

	// Prometheus metrics endpoint
	if cfg.MetricsEnabled {
		log.Printf("Prometheus metrics enabled at /metrics")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	// Setup rate limiting
	rateLimiters, redisClient := setupRateLimiting(cfg)

	// Discovery documents. Clients derive these from either the gateway
	// root or the /mcp resource path, so both shapes are served.
	r.GET("/.well-known/oauth-authorization-server", oidcHandler.Discovery)
	r.GET("/.well-known/oauth-authorization-server/mcp", oidcHandler.Discovery)
	r.GET("/.well-known/openid-configuration", oidcHandler.Discovery)
	r.GET("/.well-known/openid-configuration/mcp", oidcHandler.Discovery)
	r.GET("/.well-known/oauth-protected-resource", oidcHandler.ProtectedResourceRoot)
	r.GET("/.well-known/oauth-protected-resource/mcp", oidcHandler.ProtectedResourceMCP)
	r.GET("/mcp/.well-known/oauth-protected-resource", oidcHandler.ProtectedResourceMCP)

	// OAuth endpoints, mirrored under /mcp/oauth2 for clients that
	// resolve endpoints relative to the resource URL.
	for _, prefix := range []string{"/oauth2", "/mcp/oauth2"} {
		oauth := r.Group(prefix)
		oauth.POST("/register", clientHandler.Register)
		oauth.GET("/authorize", authorizationHandler.Authorize)
		oauth.POST("/login", rateLimiters.login, authorizationHandler.Login)
		oauth.POST("/token", rateLimiters.token, tokenHandler.Token)
	}

	// MCP endpoint, gated by bearer-token verification
	resourceMetadataURL := cfg.BaseURL + "/mcp/.well-known/oauth-protected-resource"
	mcpHandler := gin.WrapH(toolServer.Handler())
	r.Any("/mcp", middleware.RequireBearerToken(tokenVerifier, recorder, resourceMetadataURL), mcpHandler)

	// Start server
	log.Printf("BV-BRC MCP gateway starting on %s", cfg.ServerAddr)
	log.Printf("Issuer: %s", cfg.IssuerURL)
	log.Printf("MCP endpoint: %s/mcp", cfg.BaseURL)

	srv := &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.DataTimeout + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	m := graceful.NewManager()

	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})

	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})

	m.AddShutdownJob(func() error {
		if err := db.Close(); err != nil {
			log.Printf("Error closing store: %v", err)
			return err
		}
		return nil
	})

	if redisClient != nil {
		m.AddShutdownJob(func() error {
			log.Println("Closing Redis connection...")
			if err := redisClient.Close(); err != nil {
				log.Printf("Error closing Redis client: %v", err)
				return err
			}
			log.Println("Redis connection closed")
			return nil
		})
	}

	<-m.Done()
}

// newStore builds the configured store backend. The memory store is also
// returned directly so the caller can start its code sweeper.
func newStore(cfg *config.Config) (store.Store, *store.MemoryStore, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		rs, err := store.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Store backend: redis (%s, db %d)", cfg.RedisAddr, cfg.RedisDB)
		return rs, nil, nil
	case config.StoreBackendMemory:
		ms := store.NewMemoryStore()
		log.Println("Store backend: memory (single instance only)")
		return ms, ms, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend: %s", cfg.StoreBackend)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch err := db.Health(c.Request.Context()); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":  "healthy",
				"version": version.String(),
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
			})
		}
	}
}

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login gin.HandlerFunc
	token gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration.
// Returns the middlewares and the shared Redis client when one was created.
func setupRateLimiting(cfg *config.Config) (rateLimitMiddlewares, *redis.Client) {
	noOpMiddleware := func(c *gin.Context) { c.Next() }
	if cfg.EnableRateLimit <= 0 {
		return rateLimitMiddlewares{login: noOpMiddleware, token: noOpMiddleware}, nil
	}

	storeType := middleware.RateLimitStoreMemory
	var sharedRedisClient *redis.Client
	if cfg.StoreBackend == config.StoreBackendRedis {
		storeType = middleware.RateLimitStoreRedis
		sharedRedisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.Printf("Redis rate limiting configured: %s (DB: %d)", cfg.RedisAddr, cfg.RedisDB)
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(endpoint string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.EnableRateLimit,
			StoreType:         storeType,
			RedisClient:       sharedRedisClient,
			CleanupInterval:   5 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", endpoint, err)
		}
		return limiter
	}

	log.Printf("Rate limiting enabled: %d requests/minute", cfg.EnableRateLimit)
	return rateLimitMiddlewares{
		login: createLimiter("/oauth2/login"),
		token: createLimiter("/oauth2/token"),
	}, sharedRedisClient
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
		log.Printf("Gin mode: Release (production)")
		return
	}
	gin.SetMode(gin.DebugMode)
	log.Printf("Gin mode: Debug (development)")
}

package main

import (
	"context"                  // context package is needed for startup calls
	"log"                      // log package is needed for logging
	"mebe/internal/api"        // Custom package for API handlers
	"mebe/internal/config"     // Custom package for configuration
	"mebe/internal/middleware" // Custom package for middleware
	"mebe/internal/session"    // Session manager with master override
	"mebe/internal/store"      // Record store implementations
	syncer "mebe/internal/sync" // Polling synchronizer
	"mebe/internal/utils"      // Seed password hashing
	"mebe/internal/workflow"   // Transaction workflow

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Pick the record store backend: local JSON files or the remote table store
	var st store.Store
	switch cfg.StoreBackend {
	case config.BackendMySQL:
		// Setup Data Source Name (DSN) and connect to the database
		dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
		db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
		if err != nil {
			logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
		}
		st = store.NewSQL(db)
	case config.BackendLocal:
		local, err := store.NewLocal(cfg.DataDir)
		if err != nil {
			logrus.Fatalf("failed to open local store: %v", err)
		}
		st = local
	default:
		logrus.Fatalf("unknown store backend: %s", cfg.StoreBackend)
	}

	// Setup Redis client for response caching (optional; empty addr disables it)
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr, // Redis server address
			Password: cfg.RedisPass, // Redis password
			DB:       cfg.RedisDB,   // Redis database number
		})
		// Test Redis connection
		if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	sessions := session.NewManager(st, cfg.MasterAdminPhone, cfg.DataDir) // Session manager
	wf := workflow.NewService(st)                                        // Transaction workflow
	watcher := syncer.NewWatcher(st, cfg.SyncInterval)                   // Polling synchronizer

	// Seed the master admin record on first start
	seedHash, err := utils.HashPassword("admin")
	if err != nil {
		logrus.Fatalf("failed to hash seed password: %v", err)
	}
	if err := sessions.SeedMasterAdmin(context.Background(), cfg.AvatarBase, seedHash); err != nil {
		logrus.Fatalf("failed to seed master admin: %v", err)
	}

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Public routes
	r.POST("/register", api.RegisterHandler(wf, sessions, cfg.JWTSecret, cfg.AvatarBase)) // Registration endpoint
	r.POST("/login", api.LoginHandler(wf, sessions, cfg.JWTSecret))                       // Login endpoint
	r.GET("/gifts", api.ListGiftsHandler(cfg.ContactLink))                                // Gift catalog endpoint

	// Member routes (protected by JWT)
	member := r.Group("")
	member.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	member.GET("/me", api.MeHandler(sessions))                                                   // Current user endpoint
	member.GET("/sync", api.SyncUserHandler(watcher, sessions))                                  // SSE user stream
	member.POST("/transactions", api.SubmitTransactionHandler(wf, sessions, redisClient))        // Submit deposit/withdraw
	member.GET("/transactions", api.GetTransactionHistoryHandler(st, sessions, redisClient))     // Transaction history
	member.POST("/banks", api.AddBankHandler(wf, sessions))                                      // Link bank endpoint
	member.POST("/password", api.ChangePasswordHandler(wf, sessions))                            // Security screen endpoint
	member.GET("/notifications", api.ListNotificationsHandler(st, sessions))                     // Notifications endpoint
	member.POST("/notifications/read", api.MarkAllNotificationsReadHandler(st, sessions))        // Mark all read
	member.DELETE("/notifications", api.ClearNotificationsHandler(st, sessions))                 // Clear all

	// Admin routes (protected, admin only)
	adminGroup := r.Group("/admin")
	adminGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(sessions))
	adminGroup.GET("/users", api.ListUsersHandler(st, redisClient))                       // List members endpoint
	adminGroup.PUT("/users/:phone", api.UpdateUserHandler(st, redisClient))               // Member editor endpoint
	adminGroup.GET("/transactions", api.ListTransactionsHandler(st, redisClient))         // List transactions endpoint
	adminGroup.POST("/transactions/:id/approve", api.ApproveTransactionHandler(wf, redisClient)) // Approve endpoint
	adminGroup.POST("/transactions/:id/reject", api.RejectTransactionHandler(wf, redisClient))   // Reject endpoint
	adminGroup.GET("/sync", api.AdminSyncHandler(watcher))                                // SSE pending stream

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}

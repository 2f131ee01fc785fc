package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"socialhub/auth"
	"socialhub/config"
	"socialhub/database"
	"socialhub/middleware"
	"socialhub/routes"
	"socialhub/services"
	"socialhub/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	log.Println("Starting social backend...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	// ===== CONNECT TO MONGODB WITH RETRY =====
	log.Println("Connecting to MongoDB...")

	var db *database.Mongo
	for i := 1; i <= 3; i++ {
		db, err = database.Connect(context.Background(), cfg.MongoURI, cfg.MongoDatabase)
		if err == nil {
			break
		}
		log.Printf("MongoDB connection attempt %d failed: %v", i, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatal("Failed to connect to MongoDB: ", err)
	}
	log.Println("MongoDB connected successfully")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := db.EnsureIndexes(ctx); err != nil {
		log.Printf("Index setup failed: %v", err)
	}
	cancel()

	// ===== GIN MODE =====
	if cfg.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
		log.Println("Running in RELEASE mode")
	} else {
		gin.SetMode(gin.DebugMode)
		log.Println("Running in DEBUG mode")
	}

	// ===== SERVICES =====
	hub := websocket.NewManager()
	go hub.Start()

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.JWTTTL)
	router := routes.SetupRouter(routes.Deps{
		Accounts:      services.NewAccounts(db, tokens),
		Relationships: services.NewRelationships(db, hub),
		Posts:         services.NewPosts(db, db),
		Engagement:    services.NewEngagement(db, hub),
		Hub:           hub,
		Tokens:        tokens,
		Limiter:       middleware.NewIPRateLimiter(cfg.RateLimit, time.Minute),
		CORSOrigins:   cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server running on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server error: ", err)
		}
	}()

	// ===== GRACEFUL SHUTDOWN =====
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Println("Forced shutdown: ", err)
	}
	hub.Stop()
	if err := db.Disconnect(shutdownCtx); err != nil {
		log.Println("MongoDB disconnect: ", err)
	}

	log.Println("Server stopped gracefully")
}

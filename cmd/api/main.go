package main

import (
	"context"
	"fmt"
	"log"

	"github.com/redis/go-redis/v9"

	"students-api/core"
)

func main() {
	cfg := core.Load()
	ctx := context.Background()

	logCloser, err := core.SetupLogging(cfg, "api.log")
	if err != nil {
		log.Fatalf("failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	db, err := core.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer db.Close()

	if err := core.EnsureSchema(ctx, db); err != nil {
		log.Fatalf("failed to ensure schema: %v", err)
	}

	// Login throttling is optional; without redis the limiter is inert.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = core.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect redis: %v", err)
		}
		defer redisClient.Close()
	}

	userRepo := core.NewPgUserRepository(db)
	studentRepo := core.NewPgStudentRepository(db)
	tokens := core.NewTokenService([]byte(cfg.SigningSecret), cfg.TokenTTL)
	authService := core.NewRepositoryAuthService(userRepo, tokens)
	limiter := core.NewLoginLimiter(redisClient, cfg)
	market := core.NewMarketClient(cfg.MarketAPIURL, cfg.MarketAPIKey)

	if err := core.BootstrapAdmin(ctx, userRepo, cfg); err != nil {
		log.Fatalf("bootstrap admin failed: %v", err)
	}

	router := core.NewRouter(cfg, tokens, authService, userRepo, studentRepo, limiter, market)

	addr := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("starting api server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

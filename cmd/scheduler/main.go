package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"github.com/lumapay/paylink/internal/config"
	"github.com/lumapay/paylink/internal/gateway"
	"github.com/lumapay/paylink/internal/repository"
	"github.com/lumapay/paylink/internal/service"
)

// sweepBatchSize bounds one sweep run so a large backlog cannot hold the
// gateway connection open for hours
const sweepBatchSize = 200

func main() {
	log.Println("Starting status sweep scheduler...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	linkService := service.NewLinkService(
		repository.NewLinkRepository(db),
		repository.NewClientRepository(db),
		repository.NewFeeConfigRepository(db),
		gateway.NewHTTPClient(cfg),
		redisClient,
		cfg,
	)

	// Initialize cron scheduler
	c := cron.New(cron.WithSeconds())

	// The sweep reuses the client-facing poll operation, which is
	// idempotent once a link reaches a terminal state, so overlapping
	// client polls are harmless.
	_, err = c.AddFunc(cfg.Sweep.Spec, func() {
		log.Println("Running pending-link status sweep...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		cutoff := time.Now().Add(-cfg.GetSweepMaxAge())
		settled, err := linkService.SweepPending(ctx, cutoff, sweepBatchSize)
		if err != nil {
			log.Printf("Status sweep aborted: %v", err)
			return
		}
		log.Printf("Status sweep finished, %d link(s) settled", settled)
	})
	if err != nil {
		log.Fatalf("Error scheduling status sweep: %v", err)
	}

	// Start the scheduler
	c.Start()
	log.Println("Scheduler started successfully")

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down scheduler...")
	c.Stop()
	log.Println("Scheduler stopped")
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/lumapay/paylink/internal/config"
	"github.com/lumapay/paylink/internal/gateway"
	"github.com/lumapay/paylink/internal/handler"
	"github.com/lumapay/paylink/internal/repository"
	"github.com/lumapay/paylink/internal/service"
	"github.com/lumapay/paylink/pkg/response"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	clientRepo := repository.NewClientRepository(db)
	adminRepo := repository.NewAdminRepository(db)
	feeRepo := repository.NewFeeConfigRepository(db)
	linkRepo := repository.NewLinkRepository(db)

	// Initialize gateway client and services
	gatewayClient := gateway.NewHTTPClient(cfg)
	sessions := service.NewSessionStore(redisClient, cfg.GetSessionTTL())
	clientService := service.NewClientService(clientRepo, sessions)
	adminService := service.NewAdminService(adminRepo, clientRepo, feeRepo, clientService, sessions)
	linkService := service.NewLinkService(linkRepo, clientRepo, feeRepo, gatewayClient, redisClient, cfg)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(clientService, adminService)
	linkHandler := handler.NewLinkHandler(linkService)
	adminHandler := handler.NewAdminHandler(adminService)
	healthHandler := handler.NewHealthHandler(db, redisClient)
	authMiddleware := handler.NewAuthMiddleware(sessions)

	// Setup routes
	router := setupRoutes(authHandler, linkHandler, adminHandler, healthHandler, authMiddleware)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.GetConnLifetime())

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(
	authHandler *handler.AuthHandler,
	linkHandler *handler.LinkHandler,
	adminHandler *handler.AdminHandler,
	healthHandler *handler.HealthHandler,
	auth *handler.AuthMiddleware,
) *mux.Router {
	router := mux.NewRouter()
	router.Use(response.LoggingMiddleware, response.CORSMiddleware)

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// Public auth routes
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.ClientLogin).Methods("POST")
	api.HandleFunc("/admin/auth/login", authHandler.AdminLogin).Methods("POST")

	// Merchant routes
	client := api.NewRoute().Subrouter()
	client.Use(auth.RequireClient)
	client.HandleFunc("/auth/logout", authHandler.ClientLogout).Methods("POST")
	client.HandleFunc("/profile", authHandler.Profile).Methods("GET")
	client.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")
	client.HandleFunc("/dashboard", linkHandler.Dashboard).Methods("GET")
	client.HandleFunc("/plans", linkHandler.Plans).Methods("GET")
	client.HandleFunc("/links/preview", linkHandler.Preview).Methods("POST")
	client.HandleFunc("/links", linkHandler.Create).Methods("POST")
	client.HandleFunc("/links", linkHandler.List).Methods("GET")
	client.HandleFunc("/links/{linkId}/status", linkHandler.Poll).Methods("POST")
	client.HandleFunc("/links/{linkId}/breakdown", linkHandler.Breakdown).Methods("GET")
	client.HandleFunc("/links/{linkId}/ticket", linkHandler.Ticket).Methods("GET")

	// Back-office routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/auth/logout", authHandler.AdminLogout).Methods("POST")
	admin.HandleFunc("/clients", adminHandler.ListClients).Methods("GET")
	admin.HandleFunc("/clients/pending", adminHandler.ListPendingClients).Methods("GET")
	admin.HandleFunc("/clients/{clientId}/approve", adminHandler.ApproveClient).Methods("POST")
	admin.HandleFunc("/clients/{clientId}/block", adminHandler.BlockClient).Methods("POST")
	admin.HandleFunc("/clients/{clientId}/unblock", adminHandler.UnblockClient).Methods("POST")
	admin.HandleFunc("/clients/{clientId}", adminHandler.UpdateClient).Methods("PUT")
	admin.HandleFunc("/clients/{clientId}", adminHandler.DeleteClient).Methods("DELETE")
	admin.HandleFunc("/fees", adminHandler.GetFeeConfiguration).Methods("GET")
	admin.HandleFunc("/fees", adminHandler.UpdateFeeConfiguration).Methods("PUT")
	admin.HandleFunc("/plans", adminHandler.ListPlans).Methods("GET")
	admin.HandleFunc("/plans", adminHandler.CreatePlan).Methods("POST")
	admin.HandleFunc("/plans/{planId}", adminHandler.UpdatePlan).Methods("PUT")
	admin.HandleFunc("/plans/{planId}", adminHandler.DeletePlan).Methods("DELETE")

	return router
}

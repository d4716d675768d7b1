package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/xavierca1/ligue-crm/internal/config"
	"github.com/xavierca1/ligue-crm/internal/entity"
	"github.com/xavierca1/ligue-crm/internal/infra/database"
	"github.com/xavierca1/ligue-crm/internal/infra/http/handlers"
	"github.com/xavierca1/ligue-crm/internal/infra/http/middleware"
	"github.com/xavierca1/ligue-crm/internal/infra/http/router"
	"github.com/xavierca1/ligue-crm/internal/infra/memory"
	"github.com/xavierca1/ligue-crm/internal/infra/queue"
	"github.com/xavierca1/ligue-crm/internal/infra/security"
	"github.com/xavierca1/ligue-crm/internal/usecase"
)

const version = "1.0.0"

type repositories struct {
	users     entity.UserRepository
	companies entity.CompanyRepository
	leads     entity.LeadRepository
	tasks     entity.TaskRepository
	pinger    handlers.Pinger
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Storage
	var repos repositories
	if cfg.DatabaseURL != "" {
		db, err := database.NewDBConnection(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("❌ failed to connect to Postgres: %v", err)
		}
		defer db.Close()
		repos = postgresRepositories(db)
		log.Println("🐘 using PostgreSQL store")
	} else {
		store := memory.NewStore()
		repos = repositories{
			users:     store.Users(),
			companies: store.Companies(),
			leads:     store.Leads(),
			tasks:     store.Tasks(),
			pinger:    store,
		}
		log.Println("⚠️ DATABASE_URL not set, using in-memory store")
	}

	// 2. Events
	var events usecase.EventPublisher = usecase.NoopPublisher{}
	var broker handlers.BrokerConn
	if cfg.RabbitMQURL != "" {
		rabbitMQ, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
		if err != nil {
			log.Fatalf("❌ %v", err)
		}
		defer rabbitMQ.Close()
		events = queue.NewProducer(rabbitMQ.Ch)
		broker = rabbitMQ.Conn
		log.Println("🐇 activity events go to RabbitMQ")
	}

	// 3. Security
	tokens, err := security.NewTokenService(cfg.JWTSecret, cfg.TokenTTL())
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	hasher := security.NewHasher(cfg.BcryptCost)

	// 4. UseCases and router
	handler := router.New(router.Deps{
		Auth:           usecase.NewAuthUseCase(repos.users, hasher, tokens),
		Users:          usecase.NewUserUseCase(repos.users),
		Leads:          usecase.NewLeadUseCase(repos.leads, events),
		Companies:      usecase.NewCompanyUseCase(repos.companies, repos.leads),
		Tasks:          usecase.NewTaskUseCase(repos.tasks, events, cfg.Location()),
		Dashboard:      usecase.NewDashboardUseCase(repos.leads, repos.tasks, repos.companies, cfg.Location()),
		Health:         handlers.NewHealthHandler(repos.pinger, broker, version),
		AuthLimiter:    middleware.NewRateLimiter(ctx, cfg.AuthRateLimit, time.Minute),
		AllowedOrigins: cfg.AllowedOrigins(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🔥 CRM API listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️ graceful shutdown failed: %v", err)
	}
}

func postgresRepositories(db *sql.DB) repositories {
	return repositories{
		users:     database.NewUserRepository(db),
		companies: database.NewCompanyRepository(db),
		leads:     database.NewLeadRepository(db),
		tasks:     database.NewTaskRepository(db),
		pinger:    db,
	}
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gamestore_pos/internal/config"
	"gamestore_pos/internal/handler"
	"gamestore_pos/internal/receipt"
	"gamestore_pos/internal/service"
	"gamestore_pos/internal/store"

	_ "github.com/lib/pq"
)

type application struct {
	config       *config.Config
	logger       *log.Logger
	checkout     *service.CheckoutService
	server       *http.Server
	shutdownChan chan struct{}
	sweeperDone  chan struct{}
}

func main() {
	logger := log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	var (
		catalogStore     store.CatalogStore
		customerStore    store.CustomerStore
		purchaseStore    store.PurchaseStore
		transactionStore store.TransactionStore
		db               *sql.DB
	)

	switch cfg.StoreBackend {
	case "postgres":
		db, err = store.ConnectDB(cfg.DBDriver, cfg.DBDataSourceName)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("Error closing database: %v", err)
			}
		}()
		if err := store.RunMigrations(db, cfg.MigrationsDir); err != nil {
			logger.Fatalf("Failed to run migrations: %v", err)
		}
		dbStore := store.NewDBStore(db)
		catalogStore = dbStore
		customerStore = dbStore
		purchaseStore = dbStore
		transactionStore = dbStore
	case "memory":
		memStore := store.NewMemoryStore()
		if cfg.SeedSampleData {
			if err := store.SeedSampleData(context.Background(), memStore); err != nil {
				logger.Fatalf("Failed to seed sample data: %v", err)
			}
			logger.Println("Seeded sample catalog and customers.")
		}
		catalogStore = memStore
		customerStore = memStore
		purchaseStore = memStore
		transactionStore = memStore
	default:
		logger.Fatalf("Unknown store backend %q (expected memory or postgres)", cfg.StoreBackend)
	}

	var redisStore *store.RedisStore
	if cfg.RedisEnabled {
		redisClient, err := store.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.Fatalf("Failed to connect to Redis: %v", err)
		}
		redisStore = store.NewRedisStore(redisClient)
		defer func() {
			if err := redisStore.Close(); err != nil {
				logger.Printf("Error closing Redis client: %v", err)
			}
		}()
	}

	deliverer := receipt.PrintDeliverer{Out: os.Stdout}

	checkoutService := service.NewCheckoutService(logger, catalogStore, customerStore, transactionStore, redisStore, deliverer, cfg.SessionTTL)
	catalogService := service.NewCatalogService(logger, catalogStore, cfg.LowStockThreshold)
	customerService := service.NewCustomerService(logger, customerStore)
	purchaseService := service.NewPurchaseService(logger, purchaseStore, catalogStore)

	app := &application{
		config:       cfg,
		logger:       logger,
		checkout:     checkoutService,
		shutdownChan: make(chan struct{}),
		sweeperDone:  make(chan struct{}),
	}

	go app.runSessionSweeper()

	mux := http.NewServeMux()
	handler.NewCheckoutHandler(logger, checkoutService).Register(mux)
	handler.NewCatalogHandler(logger, catalogService).Register(mux)
	handler.NewCustomerHandler(logger, customerService).Register(mux)
	handler.NewPurchaseHandler(logger, purchaseService).Register(mux)

	app.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      mux,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     logger,
	}

	app.serve()
}

func (app *application) serve() {
	app.logger.Printf("Starting server on %s", app.server.Addr)

	errChan := make(chan error)
	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		app.logger.Fatalf("Server error: %v", err)
	case sig := <-quit:
		app.logger.Printf("Received signal %s. Shutting down server...", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	close(app.shutdownChan)
	select {
	case <-app.sweeperDone:
		app.logger.Println("Session sweeper stopped.")
	case <-time.After(10 * time.Second):
		app.logger.Println("Session sweeper did not stop in time.")
	}

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Printf("Graceful server shutdown failed: %v", err)
	} else {
		app.logger.Println("Server gracefully stopped.")
	}

	app.logger.Println("Application shut down complete.")
}

// runSessionSweeper prunes checkout sessions idle past the TTL. Abandoned
// carts hold no persisted state, so sweeping is discard-only.
func (app *application) runSessionSweeper() {
	defer close(app.sweeperDone)

	ticker := time.NewTicker(app.config.SessionSweepInterval)
	defer ticker.Stop()

	app.logger.Printf("Session sweeper started. Will run every %s.", app.config.SessionSweepInterval.String())

	for {
		select {
		case <-ticker.C:
			app.checkout.SweepExpiredSessions(context.Background())
		case <-app.shutdownChan:
			app.logger.Println("Sweeper: received shutdown signal. Stopping...")
			return
		}
	}
}

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/prem-quety/brokerband-middleware/internal/app/catalog"
	"github.com/prem-quety/brokerband-middleware/internal/app/fulfillment"
	"github.com/prem-quety/brokerband-middleware/internal/app/invoicing"
	"github.com/prem-quety/brokerband-middleware/internal/config"
	http_admin "github.com/prem-quety/brokerband-middleware/internal/handler/http/admin"
	http_webhooks "github.com/prem-quety/brokerband-middleware/internal/handler/http/webhooks"
	kafka_handler "github.com/prem-quety/brokerband-middleware/internal/handler/kafka"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/books"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/database"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/kafka"
	"github.com/prem-quety/brokerband-middleware/internal/infrastructure/synnex"
	postgres_failure_repo "github.com/prem-quety/brokerband-middleware/internal/repository/failure_repo/postgres"
	postgres_mapping_repo "github.com/prem-quety/brokerband-middleware/internal/repository/mapping_repo/postgres"
	postgres_order_repo "github.com/prem-quety/brokerband-middleware/internal/repository/order_repo/postgres"
	postgres_submission_repo "github.com/prem-quety/brokerband-middleware/internal/repository/submission_repo/postgres"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	appLogger, err := zapConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create zap logger: %v\n", err)
		os.Exit(1)
	}
	appLogger.Info("Fulfillment bridge starting...",
		zap.String("synnex_env", cfg.SynnexEnv),
		zap.Bool("async_intake", cfg.AsyncIntake))

	appLogger.Info("Waiting for database to be available...")
	dbConfig := database.DBConfig{
		Host:     cfg.DBConfig.DBHost,
		Port:     cfg.DBConfig.DBPort,
		User:     cfg.DBConfig.DBUser,
		Password: cfg.DBConfig.DBPassword,
		DBName:   cfg.DBConfig.DBName,
		SSLMode:  cfg.DBConfig.DBSSLMode,
	}

	var db *sql.DB
	maxRetries := 10
	retryDelay := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		db, err = database.NewPostgresDB(dbConfig)
		if err == nil {
			appLogger.Info("Successfully connected to PostgreSQL database!")
			break
		}
		appLogger.Warn(fmt.Sprintf("Failed to connect to database (attempt %d/%d): %v. Retrying in %s...", i+1, maxRetries, err, retryDelay))
		time.Sleep(retryDelay)
	}

	if db == nil {
		appLogger.Fatal("Could not connect to database after multiple retries. Exiting.", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", zap.Error(err))
		} else {
			appLogger.Info("Database connection closed.")
		}
	}()

	appLogger.Info("Running database migrations...")
	migrateDSN := "postgres://" + cfg.GetDBMigrationConnectionString()
	m, err := migrate.New(cfg.MigrationsPath, migrateDSN)
	if err != nil {
		appLogger.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		appLogger.Fatal("Failed to run database migrations", zap.Error(err))
	}
	appLogger.Info("Database migrations completed successfully (or no new migrations).")

	kafkaProducer, err := kafka.NewProducer(cfg.GetKafkaBrokers(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create Kafka producer", zap.Error(err))
	}
	defer func() {
		if err := kafkaProducer.Close(); err != nil {
			appLogger.Error("Error closing Kafka producer", zap.Error(err))
		} else {
			appLogger.Info("Kafka producer closed.")
		}
	}()
	appLogger.Info("Kafka producer created successfully.")

	orderRepository := postgres_order_repo.NewOrderRepository(db, appLogger)
	submissionRepository := postgres_submission_repo.NewSubmissionRepository(db, appLogger)
	failureRepository := postgres_failure_repo.NewFailureRepository(db, appLogger)
	mappingRepository := postgres_mapping_repo.NewMappingRepository(db, appLogger)

	creds := synnex.Credentials{
		UserID:         cfg.SynnexUsername,
		Password:       cfg.SynnexPassword,
		CustomerNumber: cfg.SynnexCustomerNumber,
	}
	priceClient := synnex.NewPriceClient(cfg.SynnexPriceEndpoint(), creds, cfg.PriceTimeout, appLogger)
	skuResolver := catalog.NewResolver(mappingRepository)
	poEncoder := synnex.NewPOEncoder(creds, cfg.POPrefix, cfg.ShipMethodCode, skuResolver, priceClient, appLogger)
	synnexClient := synnex.NewClient(cfg.SynnexOrderEndpoint(), cfg.SubmitTimeout, appLogger)

	booksClient := books.NewClient(cfg.BooksBaseURL, cfg.BooksOrgID,
		books.StaticTokenSource(cfg.BooksToken), cfg.BooksTimeout, appLogger)
	currencyCache := books.NewCurrencyCache(booksClient, appLogger)

	invoicingService := invoicing.NewService(booksClient, currencyCache, mappingRepository, failureRepository, appLogger)
	catalogService := catalog.NewService(booksClient, mappingRepository, cfg.CatalogSyncRetries, cfg.CatalogSyncPause, appLogger)
	fulfillmentService := fulfillment.NewService(orderRepository, submissionRepository, poEncoder, synnexClient, invoicingService, appLogger)

	consumerCtx, stopConsumer := context.WithCancel(context.Background())
	defer stopConsumer()

	if cfg.AsyncIntake {
		orderEventConsumer := kafka_handler.NewOrderEventConsumer(fulfillmentService, appLogger)
		go func() {
			err := kafka.StartConsumer(
				consumerCtx,
				cfg.GetKafkaBrokers(),
				cfg.KafkaOrderEventTopic,
				cfg.KafkaConsumerGroup,
				orderEventConsumer.HandleMessage,
				appLogger,
			)
			if err != nil && consumerCtx.Err() == nil {
				appLogger.Fatal("Kafka order event consumer failed", zap.Error(err))
			}
		}()
		appLogger.Info("Kafka order event consumer started!")
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	http_webhooks.RegisterRoutes(r, fulfillmentService, kafkaProducer, cfg.KafkaOrderEventTopic, cfg.AsyncIntake, appLogger)
	http_admin.RegisterRoutes(r, catalogService, failureRepository, currencyCache, appLogger)

	serverAddr := ":" + cfg.HTTPPort
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()
	appLogger.Info("Fulfillment bridge started", zap.String("address", serverAddr))

	<-sigChan

	appLogger.Info("Shutting down fulfillment bridge...")
	stopConsumer()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Fulfillment bridge graceful shutdown failed", zap.Error(err))
	}
	appLogger.Info("Fulfillment bridge stopped.")
}

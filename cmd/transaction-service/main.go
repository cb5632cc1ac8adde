/**
 * @description
 * This is the main entry point for the transaction-service. It is
 * responsible for initializing all components of the service (configuration,
 * database connection pool, Kafka producer and consumer, repository, the
 * core application service, and the HTTP server), wiring them together
 * explicitly, and owning their lifecycle: the consumer loop starts only
 * after the store connection is ready and is stopped before the store
 * closes.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: HTTP routing (via internal/transaction/api).
 * - github.com/jackc/pgx/v5: PostgreSQL driver.
 * - github.com/joho/godotenv: Local .env loading.
 * - github.com/redis/go-redis/v9: Optional create rate limiting.
 * - pkg/kafka: Event producer and consumer loop.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/tonysanes/yape-challange/internal/transaction/api"
	"github.com/tonysanes/yape-challange/internal/transaction/app"
	"github.com/tonysanes/yape-challange/internal/transaction/config"
	"github.com/tonysanes/yape-challange/internal/transaction/store"
	"github.com/tonysanes/yape-challange/pkg/kafka"
)

func main() {
	// Load .env file for local development.
	if err := godotenv.Load(); err != nil {
		log.Println("level=info component=bootstrap msg=\"no .env file found, using environment variables\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url must be configured\" env=DATABASE_URL")
	}

	log.Printf("level=info component=bootstrap msg=\"starting transaction-service\" port=%s", cfg.ServerPort)

	// Establish a connection pool to the PostgreSQL database.
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
	}
	poolConfig.MaxConns = 100
	poolConfig.MinConns = 20
	poolConfig.MaxConnLifetime = 30 * time.Minute
	poolConfig.MaxConnIdleTime = 5 * time.Minute
	// Disable prepared statement caching to prevent conflicts.
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
	}
	defer dbpool.Close()
	log.Println("level=info component=bootstrap msg=\"database connected\"")

	// Kafka producer for transaction-creation events.
	producer, err := kafka.NewProducer(cfg.Brokers(), "transaction-service")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"kafka producer init failed\" err=%v", err)
	}
	defer producer.Close()
	log.Println("level=info component=bootstrap msg=\"kafka producer connected\"")

	repository := store.NewPostgresRepository(dbpool)
	transactionService := app.NewService(repository, producer, cfg.TopicTransactionCreation)
	handlers := api.NewTransactionHandlers(transactionService)

	// Optional Redis-backed rate limiting on transaction creation.
	if cfg.CreateRateLimitPerMinute > 0 {
		if cfg.RedisURL == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; create rate limiting disabled\" env=REDIS_URL")
		} else if redisOptions, parseErr := redis.ParseURL(cfg.RedisURL); parseErr != nil {
			log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; create rate limiting disabled\" err=%v", parseErr)
		} else {
			redisClient := redis.NewClient(redisOptions)
			defer redisClient.Close()
			handlers.SetCreateRateLimiter(app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix), cfg.CreateRateLimitPerMinute)
			log.Println("level=info component=bootstrap msg=\"create rate limiting enabled\"")
		}
	}

	// Consumer loop for status updates reported by the antifraud-service.
	statusConsumer, err := kafka.NewConsumer(cfg.Brokers(), cfg.KafkaGroupID, cfg.TopicAntiFraudValidation, cfg.ConsumerMaxPollRecords)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"kafka consumer init failed\" err=%v", err)
	}
	defer statusConsumer.Close()

	subscription := statusConsumer.Consume(app.NewStatusUpdateConsumer(transactionService).HandleMessage)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: api.NewRouter(handlers),
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=bootstrap msg=\"shutdown started\"")

	// Stop pulling records and drain in-flight handlers before anything else
	// goes away.
	subscription.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=bootstrap msg=\"shutdown complete\"")
}

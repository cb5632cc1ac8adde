/**
 * @description
 * This is the main entry point for the antifraud-service. The service
 * consumes transaction-creation events, evaluates each transaction against
 * the configured approval threshold, and publishes the verdict on the
 * anti-fraud-validation topic. It keeps no persistent state; the only HTTP
 * surface is a health check.
 *
 * @dependencies
 * - github.com/joho/godotenv: Local .env loading.
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
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tonysanes/yape-challange/internal/antifraud/api"
	"github.com/tonysanes/yape-challange/internal/antifraud/app"
	"github.com/tonysanes/yape-challange/internal/antifraud/config"
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

	log.Printf("level=info component=bootstrap msg=\"starting antifraud-service\" port=%s threshold=%s", cfg.ServerPort, cfg.Threshold().String())

	producer, err := kafka.NewProducer(cfg.Brokers(), "antifraud-service")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"kafka producer init failed\" err=%v", err)
	}
	defer producer.Close()
	log.Println("level=info component=bootstrap msg=\"kafka producer connected\"")

	evaluator := app.NewEvaluator(producer, cfg.TopicAntiFraudValidation, cfg.Threshold(), cfg.UpdatedBy)

	creationConsumer, err := kafka.NewConsumer(cfg.Brokers(), cfg.KafkaGroupID, cfg.TopicTransactionCreation, cfg.ConsumerMaxPollRecords)
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"kafka consumer init failed\" err=%v", err)
	}
	defer creationConsumer.Close()

	subscription := creationConsumer.Consume(
		app.NewTransactionCreatedConsumer(evaluator, cfg.ProcessingDelay()).HandleMessage,
	)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: api.NewRouter(),
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

	// Drain in-flight evaluations before releasing the subscription.
	subscription.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=bootstrap msg=\"shutdown complete\"")
}

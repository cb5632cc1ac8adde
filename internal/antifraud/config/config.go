/**
 * @description
 * This package handles the configuration management for the
 * antifraud-service. The approval threshold is configuration, not code: it
 * is the single business rule this service owns and operators may tune it
 * without a deploy.
 *
 * @dependencies
 * - github.com/spf13/viper: Configuration loading.
 * - github.com/shopspring/decimal: The threshold is a decimal amount.
 */

package config

import (
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

const defaultApprovalThreshold = "999"

// Config holds all the configuration variables for the antifraud-service.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	KafkaBrokers             string `mapstructure:"KAFKA_BROKERS"`
	KafkaGroupID             string `mapstructure:"KAFKA_GROUP_ID"`
	TopicTransactionCreation string `mapstructure:"TOPIC_TRANSACTION_CREATION"`
	TopicAntiFraudValidation string `mapstructure:"TOPIC_ANTI_FRAUD_VALIDATION"`
	ConsumerMaxPollRecords   int    `mapstructure:"CONSUMER_MAX_POLL_RECORDS"`
	ApprovalThreshold        string `mapstructure:"APPROVAL_THRESHOLD"`
	ProcessingDelaySeconds   int    `mapstructure:"PROCESSING_DELAY_SECONDS"`
	UpdatedBy                string `mapstructure:"UPDATED_BY"`
}

// Brokers returns the Kafka bootstrap servers as a slice.
func (c Config) Brokers() []string {
	parts := strings.Split(c.KafkaBrokers, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if b := strings.TrimSpace(p); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// Threshold parses the configured approval threshold, falling back to the
// default when the value is not a valid decimal.
func (c Config) Threshold() decimal.Decimal {
	threshold, err := decimal.NewFromString(strings.TrimSpace(c.ApprovalThreshold))
	if err != nil {
		log.Printf("level=warn component=config msg=\"invalid APPROVAL_THRESHOLD; using default\" value=%q default=%s", c.ApprovalThreshold, defaultApprovalThreshold)
		threshold, _ = decimal.NewFromString(defaultApprovalThreshold)
	}
	return threshold
}

// ProcessingDelay returns the simulated evaluation latency.
func (c Config) ProcessingDelay() time.Duration {
	if c.ProcessingDelaySeconds < 0 {
		return 0
	}
	return time.Duration(c.ProcessingDelaySeconds) * time.Second
}

// LoadConfig reads configuration from environment variables from the given
// path.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8081")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_GROUP_ID", "antifraud-service")
	viper.SetDefault("TOPIC_TRANSACTION_CREATION", "transaction-creation")
	viper.SetDefault("TOPIC_ANTI_FRAUD_VALIDATION", "anti-fraud-validation")
	viper.SetDefault("CONSUMER_MAX_POLL_RECORDS", 100)
	viper.SetDefault("APPROVAL_THRESHOLD", defaultApprovalThreshold)
	viper.SetDefault("PROCESSING_DELAY_SECONDS", 2)
	viper.SetDefault("UPDATED_BY", "antifraud-service")

	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("KAFKA_BROKERS")
	_ = viper.BindEnv("KAFKA_GROUP_ID")
	_ = viper.BindEnv("TOPIC_TRANSACTION_CREATION")
	_ = viper.BindEnv("TOPIC_ANTI_FRAUD_VALIDATION")
	_ = viper.BindEnv("CONSUMER_MAX_POLL_RECORDS")
	_ = viper.BindEnv("APPROVAL_THRESHOLD")
	_ = viper.BindEnv("PROCESSING_DELAY_SECONDS")
	_ = viper.BindEnv("UPDATED_BY")

	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if config.ConsumerMaxPollRecords <= 0 {
		config.ConsumerMaxPollRecords = 100
	}
	if strings.TrimSpace(config.UpdatedBy) == "" {
		config.UpdatedBy = "antifraud-service"
	}

	return
}

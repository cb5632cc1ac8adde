/**
 * @description
 * This package handles the configuration management for the
 * transaction-service. It uses the Viper library to read configuration from
 * environment variables (with an optional .env file), providing a
 * centralized way to manage application settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the transaction-service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort               string `mapstructure:"SERVER_PORT"`
	DatabaseURL              string `mapstructure:"DATABASE_URL"`
	KafkaBrokers             string `mapstructure:"KAFKA_BROKERS"`
	KafkaGroupID             string `mapstructure:"KAFKA_GROUP_ID"`
	TopicTransactionCreation string `mapstructure:"TOPIC_TRANSACTION_CREATION"`
	TopicAntiFraudValidation string `mapstructure:"TOPIC_ANTI_FRAUD_VALIDATION"`
	ConsumerMaxPollRecords   int    `mapstructure:"CONSUMER_MAX_POLL_RECORDS"`
	RedisURL                 string `mapstructure:"REDIS_URL"`
	RedisRateLimitPrefix     string `mapstructure:"REDIS_RATE_LIMIT_PREFIX"`
	CreateRateLimitPerMinute int    `mapstructure:"CREATE_RATE_LIMIT_PER_MINUTE"`
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

// LoadConfig reads configuration from environment variables from the given
// path. It uses Viper to automatically bind environment variables to the
// Config struct.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("KAFKA_BROKERS", "localhost:9092")
	viper.SetDefault("KAFKA_GROUP_ID", "transaction-service")
	viper.SetDefault("TOPIC_TRANSACTION_CREATION", "transaction-creation")
	viper.SetDefault("TOPIC_ANTI_FRAUD_VALIDATION", "anti-fraud-validation")
	viper.SetDefault("CONSUMER_MAX_POLL_RECORDS", 100)
	viper.SetDefault("REDIS_RATE_LIMIT_PREFIX", "transactions:rate_limit")
	viper.SetDefault("CREATE_RATE_LIMIT_PER_MINUTE", 0)

	// Bind environment variables explicitly to ensure they appear in Unmarshal.
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("KAFKA_BROKERS")
	_ = viper.BindEnv("KAFKA_GROUP_ID")
	_ = viper.BindEnv("TOPIC_TRANSACTION_CREATION")
	_ = viper.BindEnv("TOPIC_ANTI_FRAUD_VALIDATION")
	_ = viper.BindEnv("CONSUMER_MAX_POLL_RECORDS")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("REDIS_RATE_LIMIT_PREFIX")
	_ = viper.BindEnv("CREATE_RATE_LIMIT_PER_MINUTE")

	// Attempt to read the config file. It's okay if it doesn't exist.
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
	if config.CreateRateLimitPerMinute < 0 {
		config.CreateRateLimitPerMinute = 0
	}
	config.RedisURL = strings.TrimSpace(config.RedisURL)

	return
}

package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port       string `env:"PORT,       default=8080"`
	Env        string `env:"ENV,        default=development"`
	JWTSecret  string `env:"JWT_SECRET"`
	LogLevel   string `env:"LOG_LEVEL,  default=info"`
	SeedSample bool   `env:"SEED_SAMPLE_DATA, default=false"`

	Mongo MongoConfig
	Redis RedisConfig
	SNS   SNSConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=fixitnow"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SNSConfig struct {
	Region   string `env:"AWS_REGION,    default=us-east-1"`
	TopicARN string `env:"SNS_TOPIC_ARN"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}

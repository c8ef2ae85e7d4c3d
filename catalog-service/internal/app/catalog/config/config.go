package config

import (
	"fmt"
	"time"

	"shopcatalog/pkg/envconfig"
)

// Режимы согласованности агрегата rating/numReviews у товара
const (
	ConsistencyEventual      = "eventual"
	ConsistencyTransactional = "transactional"
)

// Config содержит настройки Catalog Service и rating worker
type Config struct {
	AppEnv   string `env:"APP_ENV" envDefault:"production"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	// LogstashAddr - если задан, логи дублируются в Logstash по TCP
	LogstashAddr string `env:"LOGSTASH_ADDR"`

	Server  ServerConfig
	MongoDB MongoDBConfig
	Redis   RedisConfig
	Kafka   KafkaConfig
	JWT     JWTConfig
	Rating  RatingConfig
	Worker  WorkerConfig
}

type ServerConfig struct {
	Host string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	Port string `env:"SERVER_PORT" envDefault:"8081"`
	// CORSOrigins - адреса фронтенда
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`
}

// MongoDBConfig - транзакционный режим требует replica set
type MongoDBConfig struct {
	URI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGODB_DATABASE" envDefault:"shop_catalog"`
}

// RedisConfig - кеш списка категорий
type RedisConfig struct {
	Host        string        `env:"REDIS_HOST" envDefault:"localhost"`
	Port        string        `env:"REDIS_PORT" envDefault:"6379"`
	Password    string        `env:"REDIS_PASSWORD"`
	DB          int           `env:"REDIS_DB" envDefault:"0"`
	CategoryTTL time.Duration `env:"CATEGORY_CACHE_TTL" envDefault:"1h"`
}

type KafkaConfig struct {
	Brokers       []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`
	ReviewTopic   string   `env:"KAFKA_REVIEW_TOPIC" envDefault:"review_events"`
	ProductTopic  string   `env:"KAFKA_PRODUCT_TOPIC" envDefault:"product_events"`
	WorkerGroupID string   `env:"KAFKA_GROUP_ID" envDefault:"rating-worker-group"`
	MinBytes      int      `env:"KAFKA_MIN_BYTES" envDefault:"1"`
	MaxBytes      int      `env:"KAFKA_MAX_BYTES" envDefault:"10000000"`
}

// JWTConfig - секрет должен совпадать с Auth Service
type JWTConfig struct {
	Secret string `env:"JWT_SECRET" envDefault:"your-secret-key-change-this-in-production"`
}

type RatingConfig struct {
	Consistency string `env:"RATING_CONSISTENCY" envDefault:"eventual"`
	// RecomputeRetries - дополнительные попытки записи агрегата в режиме eventual
	RecomputeRetries int           `env:"RATING_RECOMPUTE_RETRIES" envDefault:"2"`
	RetryBackoff     time.Duration `env:"RATING_RECOMPUTE_BACKOFF" envDefault:"50ms"`
	// RecomputeTimeout - общий срок попыток, публикация fallback-события идет с отдельным сроком
	RecomputeTimeout time.Duration `env:"RATING_RECOMPUTE_TIMEOUT" envDefault:"5s"`
}

type WorkerConfig struct {
	HealthPort        string `env:"WORKER_HEALTH_PORT" envDefault:"8090"`
	ReconcileSchedule string `env:"RATING_RECONCILE_SCHEDULE" envDefault:"0 */30 * * * *"`
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	cfg := &Config{}
	if err := envconfig.Load(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Rating.Consistency {
	case ConsistencyEventual, ConsistencyTransactional:
	default:
		return fmt.Errorf("invalid RATING_CONSISTENCY %q: expected %q or %q",
			c.Rating.Consistency, ConsistencyEventual, ConsistencyTransactional)
	}

	if c.Rating.RecomputeRetries < 0 {
		return fmt.Errorf("invalid RATING_RECOMPUTE_RETRIES: must be >= 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must not be empty")
	}

	return nil
}

// IsDevelopment - в dev режиме клиенту отдаются тексты внутренних ошибок
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики (общие для всех сервисов)
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Пример: rate(http_requests_total{service="catalog-service"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Database Метрики (MongoDB коллекции и таблицы PostgreSQL)
// =============================================================================

var DbQueryDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "db_query_duration_seconds",
		Help:    "Duration of database queries in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
	[]string{"service", "operation", "collection"},
)

var DbErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "db_errors_total",
		Help: "Total number of database errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Redis Метрики
// =============================================================================

var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

var RedisOperationDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "redis_operation_duration_seconds",
		Help:    "Duration of Redis operations in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	},
	[]string{"service", "operation"},
)

var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_errors_total",
		Help: "Total number of Redis errors",
	},
	[]string{"service", "operation"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

var KafkaMessagesConsumed = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_consumed_total",
		Help: "Total number of Kafka messages consumed",
	},
	[]string{"service", "topic", "group"},
)

var KafkaProduceDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_produce_duration_seconds",
		Help:    "Duration of Kafka produce operations",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	},
	[]string{"service", "topic"},
)

var KafkaConsumeDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "kafka_consume_duration_seconds",
		Help:    "Duration of Kafka message processing",
		Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
	},
	[]string{"service", "topic"},
)

var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"}, // operation: produce, consume
)

// =============================================================================
// Business Метрики
// =============================================================================

// --- Auth Service ---

var AuthRegistrations = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_registrations_total",
		Help: "Total number of user registrations",
	},
)

var AuthLogins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Total number of login attempts",
	},
	[]string{"status"}, // success, failed
)

var AuthTokensIssued = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "auth_tokens_issued_total",
		Help: "Total number of access tokens issued",
	},
)

// AuthPasswordResets - stage: requested, completed, rejected
var AuthPasswordResets = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_password_resets_total",
		Help: "Total number of password reset steps",
	},
	[]string{"stage"},
)

// --- Reviews ---

// ReviewMutations - operation: create, update, delete
var ReviewMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_mutations_total",
		Help: "Total number of review mutations",
	},
	[]string{"operation"},
)

// ReviewsRating - распределение оценок новых отзывов
var ReviewsRating = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "reviews_rating",
		Help:    "Distribution of review ratings",
		Buckets: []float64{1, 2, 3, 4, 5},
	},
)

// ReviewLikes - action: like, unlike
var ReviewLikes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "reviews_likes_toggled_total",
		Help: "Total number of review like toggles",
	},
	[]string{"action"},
)

// --- Rating aggregate ---

// RatingRecomputations - mode: eventual, transactional, worker, reconcile; status: success, failed
var RatingRecomputations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "rating_recomputations_total",
		Help: "Total number of product rating recomputations",
	},
	[]string{"mode", "status"},
)

var RatingRecomputeDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "rating_recompute_duration_seconds",
		Help:    "Duration of a single product rating recomputation",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	},
)

// RatingDriftCorrected - товары, у которых сверка нашла расхождение агрегата
var RatingDriftCorrected = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "rating_drift_corrected_total",
		Help: "Total number of products whose stored rating aggregate was corrected by reconciliation",
	},
)

// --- Shopper lists ---

// WishlistOperations - operation: add, remove, clear
var WishlistOperations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "wishlist_operations_total",
		Help: "Total number of wishlist operations",
	},
	[]string{"operation"},
)

var ProductViews = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "product_views_total",
		Help: "Total number of recorded product views",
	},
)

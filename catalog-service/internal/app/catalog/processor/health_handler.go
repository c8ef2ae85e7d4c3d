package processor

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/segmentio/kafka-go"
)

// DependencyCheck проверяет доступность внешней зависимости (MongoDB и т.п.)
type DependencyCheck func(ctx context.Context) error

// ConsumerStats - источник статистики kafka reader
type ConsumerStats interface {
	Stats() kafka.ReaderStats
}

// HealthCheckHandler - health endpoints rating worker
type HealthCheckHandler struct {
	checks   map[string]DependencyCheck
	consumer ConsumerStats
}

func NewHealthCheckHandler(checks map[string]DependencyCheck, consumer ConsumerStats) *HealthCheckHandler {
	return &HealthCheckHandler{
		checks:   checks,
		consumer: consumer,
	}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Consumer  *ConsumerInfo     `json:"consumer,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

type ConsumerInfo struct {
	Topic    string `json:"topic"`
	Lag      int64  `json:"lag"`
	Messages int64  `json:"messages"`
	Errors   int64  `json:"errors"`
}

func (h *HealthCheckHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failed, results := h.runChecks(ctx)

	response := HealthResponse{
		Status:    "healthy",
		Checks:    results,
		Timestamp: time.Now(),
	}
	if failed != "" {
		response.Status = "unhealthy"
	}

	if h.consumer != nil {
		// Stats() обнуляет счетчики с прошлого вызова, lag - текущий
		stats := h.consumer.Stats()
		response.Consumer = &ConsumerInfo{
			Topic:    stats.Topic,
			Lag:      stats.Lag,
			Messages: stats.Messages,
			Errors:   stats.Errors,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if failed != "" {
		w.WriteHeader(http.StatusServiceUnavailable)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	_ = json.NewEncoder(w).Encode(response)
}

func (h *HealthCheckHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if failed, _ := h.runChecks(ctx); failed != "" {
		http.Error(w, failed+" not ready", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *HealthCheckHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

// runChecks возвращает имя первой упавшей проверки (или "") и статусы всех
func (h *HealthCheckHandler) runChecks(ctx context.Context) (string, map[string]string) {
	results := make(map[string]string, len(h.checks))
	failed := ""

	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			results[name] = "unhealthy: " + err.Error()
			if failed == "" || name < failed {
				failed = name
			}
			continue
		}
		results[name] = "healthy"
	}

	return failed, results
}

func (h *HealthCheckHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.HealthCheck)
	mux.HandleFunc("/health/readiness", h.Readiness)
	mux.HandleFunc("/health/liveness", h.Liveness)
}

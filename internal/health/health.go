package health

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Status — агрегированное состояние компонента storefront.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// Check — результат одной проверки (postgres, outbox backlog и т.д.).
type Check struct {
	Name       string `json:"name"`
	Status     Status `json:"status"`
	Message    string `json:"message,omitempty"`
	DurationMs int64  `json:"duration_ms"`
}

// Response — тело ответа /healthz.
type Response struct {
	Status        Status           `json:"status"`
	Timestamp     time.Time        `json:"timestamp"`
	Checks        map[string]Check `json:"checks,omitempty"`
	Version       string           `json:"version,omitempty"`
	UptimeSeconds int64            `json:"uptime_seconds"`
}

// Checker выполняет проверку одной зависимости storefront.
type Checker interface {
	Check() Check
}

// Handler отдаёт /healthz и /readyz по зарегистрированным проверкам.
type Handler struct {
	mu        sync.RWMutex
	checkers  map[string]Checker
	version   string
	startTime time.Time
}

// NewHandler создаёт handler с версией сборки storefront.
func NewHandler(version string) *Handler {
	return &Handler{
		checkers:  make(map[string]Checker),
		version:   version,
		startTime: time.Now(),
	}
}

// RegisterChecker добавляет проверку зависимости под именем name.
func (h *Handler) RegisterChecker(name string, checker Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers[name] = checker
}

// snapshot копирует карту проверок, чтобы не держать lock во время Check().
func (h *Handler) snapshot() map[string]Checker {
	h.mu.RLock()
	defer h.mu.RUnlock()

	checkers := make(map[string]Checker, len(h.checkers))
	for name, checker := range h.checkers {
		checkers[name] = checker
	}
	return checkers
}

// runChecks прогоняет все проверки и сводит их в общий статус.
// Unhealthy перекрывает degraded, degraded перекрывает healthy.
func (h *Handler) runChecks() (map[string]Check, Status) {
	checks := make(map[string]Check)
	overall := StatusHealthy

	for name, checker := range h.snapshot() {
		check := checker.Check()
		checks[name] = check

		switch check.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy {
				overall = StatusDegraded
			}
		}
	}
	return checks, overall
}

// ServeHTTP отвечает на /healthz полным отчётом по зависимостям.
func (h *Handler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	checks, overall := h.runChecks()

	response := Response{
		Status:        overall,
		Timestamp:     time.Now(),
		Checks:        checks,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	}

	statusCode := http.StatusOK
	if overall == StatusUnhealthy {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(response)
}

// LivenessHandler отвечает 200, пока процесс жив.
func LivenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// ReadinessHandler отвечает 503, если хотя бы одна зависимость unhealthy.
// Degraded не снимает готовность: storefront продолжает принимать заказы.
func (h *Handler) ReadinessHandler(w http.ResponseWriter, _ *http.Request) {
	_, overall := h.runChecks()
	if overall == StatusUnhealthy {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("not ready"))
		return
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// SimpleChecker оборачивает функцию вида «ошибка = unhealthy».
type SimpleChecker struct {
	name    string
	checkFn func() error
}

// NewSimpleChecker создаёт проверку из функции (ping базы и т.п.).
func NewSimpleChecker(name string, checkFn func() error) *SimpleChecker {
	return &SimpleChecker{
		name:    name,
		checkFn: checkFn,
	}
}

// Check выполняет функцию и замеряет длительность.
func (c *SimpleChecker) Check() Check {
	start := time.Now()
	err := c.checkFn()
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusUnhealthy,
			Message:    err.Error(),
			DurationMs: duration.Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		DurationMs: duration.Milliseconds(),
	}
}

// OutboxChecker следит за backlog transactional outbox. Растущая очередь —
// деградация (события заказов доходят до Kafka с опозданием), но заказы
// обслуживаются, поэтому unhealthy outbox не становится никогда.
type OutboxChecker struct {
	name     string
	outbox   domain.OutboxRepository
	maxAge   time.Duration
	maxQueue int
}

var _ Checker = (*OutboxChecker)(nil)

// NewOutboxChecker создаёт проверку backlog: degraded, если в очереди
// больше maxQueue событий или самое старое ждёт дольше maxAge.
func NewOutboxChecker(outbox domain.OutboxRepository, maxQueue int, maxAge time.Duration) *OutboxChecker {
	return &OutboxChecker{
		name:     "outbox",
		outbox:   outbox,
		maxAge:   maxAge,
		maxQueue: maxQueue,
	}
}

// Check читает статистику outbox и сравнивает её с порогами.
func (c *OutboxChecker) Check() Check {
	start := time.Now()
	stats, err := c.outbox.Stats()
	duration := time.Since(start)

	if err != nil {
		return Check{
			Name:       c.name,
			Status:     StatusDegraded,
			Message:    fmt.Sprintf("outbox stats unavailable: %v", err),
			DurationMs: duration.Milliseconds(),
		}
	}

	if stats.PendingCount > c.maxQueue {
		return Check{
			Name:       c.name,
			Status:     StatusDegraded,
			Message:    fmt.Sprintf("%d events pending, threshold %d", stats.PendingCount, c.maxQueue),
			DurationMs: duration.Milliseconds(),
		}
	}
	if !stats.OldestPendingAt.IsZero() && time.Since(stats.OldestPendingAt) > c.maxAge {
		return Check{
			Name:       c.name,
			Status:     StatusDegraded,
			Message:    fmt.Sprintf("oldest event pending since %s", stats.OldestPendingAt.Format(time.RFC3339)),
			DurationMs: duration.Milliseconds(),
		}
	}

	return Check{
		Name:       c.name,
		Status:     StatusHealthy,
		Message:    fmt.Sprintf("%d events pending", stats.PendingCount),
		DurationMs: duration.Milliseconds(),
	}
}

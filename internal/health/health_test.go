package health

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestHealthHandler_Healthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("stock-ledger", NewSimpleChecker("stock-ledger", func() error {
		return nil
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s", resp.Status)
	}
	if resp.Version != "v1.0.0" {
		t.Fatalf("expected version v1.0.0, got %s", resp.Version)
	}
}

func TestHealthHandler_Unhealthy(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("connection refused")
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

func TestReadinessHandler(t *testing.T) {
	handler := NewHandler("v1.0.0")

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	handler.ReadinessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	handler.RegisterChecker("postgres", NewSimpleChecker("postgres", func() error {
		return errors.New("down")
	}))

	w = httptest.NewRecorder()
	handler.ReadinessHandler(w, req)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
}

type stubOutbox struct {
	stats domain.OutboxStats
	err   error
}

func (s *stubOutbox) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) { return msg, nil }
func (s *stubOutbox) PullPending(int) ([]domain.OutboxMessage, error)                { return nil, nil }
func (s *stubOutbox) Stats() (domain.OutboxStats, error)                             { return s.stats, s.err }
func (s *stubOutbox) MarkSent(string) error                                          { return nil }
func (s *stubOutbox) MarkFailed(string) error                                        { return nil }

func TestOutboxChecker_Healthy(t *testing.T) {
	checker := NewOutboxChecker(&stubOutbox{stats: domain.OutboxStats{PendingCount: 3}}, 100, time.Minute)

	check := checker.Check()
	if check.Status != StatusHealthy {
		t.Fatalf("expected healthy, got %s (%s)", check.Status, check.Message)
	}
}

func TestOutboxChecker_DegradedOnQueueSize(t *testing.T) {
	checker := NewOutboxChecker(&stubOutbox{stats: domain.OutboxStats{PendingCount: 250}}, 100, time.Minute)

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestOutboxChecker_DegradedOnAge(t *testing.T) {
	stats := domain.OutboxStats{
		PendingCount:    1,
		OldestPendingAt: time.Now().Add(-10 * time.Minute),
	}
	checker := NewOutboxChecker(&stubOutbox{stats: stats}, 100, time.Minute)

	check := checker.Check()
	if check.Status != StatusDegraded {
		t.Fatalf("expected degraded, got %s", check.Status)
	}
}

func TestOutboxChecker_DegradedDoesNotFailReadiness(t *testing.T) {
	handler := NewHandler("v1.0.0")
	handler.RegisterChecker("outbox", NewOutboxChecker(&stubOutbox{stats: domain.OutboxStats{PendingCount: 250}}, 100, time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	w := httptest.NewRecorder()
	handler.ReadinessHandler(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("degraded outbox must not fail readiness, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("degraded is reported with 200, got %d", w.Code)
	}

	var resp Response
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != StatusDegraded {
		t.Fatalf("expected degraded overall status, got %s", resp.Status)
	}
}

func TestLivenessHandler(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	w := httptest.NewRecorder()
	LivenessHandler(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

package monitoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testConfig() Config {
	return Config{ListenAddr: "127.0.0.1:0", MetricsPath: "/metrics", HealthPath: "/health"}
}

func TestClaimSettledIncrementsCounters(t *testing.T) {
	s := NewServer(testConfig())
	s.ClaimSettled(1_500)
	s.ClaimSettled(500)

	if got := testutil.ToFloat64(s.claimsTotal); got != 2 {
		t.Errorf("expected claimsTotal 2, got %v", got)
	}
	if got := testutil.ToFloat64(s.mintedTotal); got != 2_000 {
		t.Errorf("expected mintedTotal 2000, got %v", got)
	}
}

func TestDailyCapHitAndActivitySubmitted(t *testing.T) {
	s := NewServer(testConfig())
	s.DailyCapHit()
	s.ActivitySubmitted()
	s.ActivitySubmitted()

	if got := testutil.ToFloat64(s.dailyCapHitTotal); got != 1 {
		t.Errorf("expected dailyCapHitTotal 1, got %v", got)
	}
	if got := testutil.ToFloat64(s.activitiesTotal); got != 2 {
		t.Errorf("expected activitiesTotal 2, got %v", got)
	}
}

func TestSetActiveUsersAndPhase(t *testing.T) {
	s := NewServer(testConfig())
	s.SetActiveUsers(42)
	s.SetPhase(2)

	if got := testutil.ToFloat64(s.activeUsers); got != 42 {
		t.Errorf("expected activeUsers 42, got %v", got)
	}
	if got := testutil.ToFloat64(s.networkPhase); got != 2 {
		t.Errorf("expected networkPhase 2, got %v", got)
	}
}

func TestMetricsHandlerServesPrometheusFormat(t *testing.T) {
	s := NewServer(testConfig())
	s.ClaimSettled(100)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "finova_claims_total") {
		t.Error("expected the metrics body to contain finova_claims_total")
	}
}

func TestHealthHandlerReportsOK(t *testing.T) {
	s := NewServer(testConfig())
	s.startedAt = time.Now()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	s.server.Handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("expected an ok status body, got %q", rec.Body.String())
	}
}

func TestStartStop(t *testing.T) {
	s := NewServer(Config{ListenAddr: "127.0.0.1:0", MetricsPath: "/metrics", HealthPath: "/health"})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := s.Start(); err == nil {
		t.Error("expected a second Start to fail while already running")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

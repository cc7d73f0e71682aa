// Package monitoring exposes the reward core's metrics over a
// registry + gorilla/mux + /health + /metrics server, the handful of
// gauges and counters the reward core itself emits.
package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"finova/chain/types"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds the server's listen address and HTTP paths.
type Config struct {
	ListenAddr  string
	MetricsPath string
	HealthPath  string
}

// Server is the reward core's Prometheus endpoint, implementing
// chain/core.Metrics directly so *Core can increment it without an
// adapter layer.
type Server struct {
	listenAddr  string
	metricsPath string
	healthPath  string

	registry *prometheus.Registry

	claimsTotal      prometheus.Counter
	mintedTotal      prometheus.Counter
	dailyCapHitTotal prometheus.Counter
	activitiesTotal  prometheus.Counter
	activeUsers      prometheus.Gauge
	networkPhase     prometheus.Gauge
	effectSlotUsage  prometheus.Histogram

	server    *http.Server
	mu        sync.Mutex
	running   bool
	startedAt time.Time
}

// NewServer builds a Server with a fresh registry, registers its
// collectors, and wires the HTTP mux.
func NewServer(cfg Config) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		listenAddr:  cfg.ListenAddr,
		metricsPath: cfg.MetricsPath,
		healthPath:  cfg.HealthPath,
		registry:    registry,
	}
	s.initMetrics()
	s.setupServer()
	return s
}

func (s *Server) initMetrics() {
	s.claimsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finova_claims_total",
		Help: "Total number of claim_rewards calls that minted a nonzero amount",
	})
	s.mintedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finova_minted_base_units_total",
		Help: "Total base units minted across all claims",
	})
	s.dailyCapHitTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finova_daily_cap_hit_total",
		Help: "Total number of claims that were blocked by the per-user daily token cap",
	})
	s.activitiesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "finova_activities_submitted_total",
		Help: "Total number of submit_activity calls accepted",
	})
	s.activeUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "finova_active_users",
		Help: "NetworkState.total_users as of the last observed mutation",
	})
	s.networkPhase = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "finova_network_phase",
		Help: "Current NetworkState.phase as an ordinal (0=Finizen..3=Stability)",
	})
	s.effectSlotUsage = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "finova_effect_slots_used",
		Help:    "Distribution of occupied ActiveEffects slots observed on apply_effect",
		Buckets: []float64{0, 1, 2, 4, 8, 12, 16},
	})

	for _, c := range []prometheus.Collector{
		s.claimsTotal, s.mintedTotal, s.dailyCapHitTotal, s.activitiesTotal,
		s.activeUsers, s.networkPhase, s.effectSlotUsage,
	} {
		s.registry.MustRegister(c)
	}
}

func (s *Server) setupServer() {
	router := mux.NewRouter()
	router.Path(s.metricsPath).Handler(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	router.PathPrefix(s.healthPath).HandlerFunc(s.healthHandler)
	s.server = &http.Server{Addr: s.listenAddr, Handler: router}
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","uptime_seconds":%d}`, int64(time.Since(s.startedAt).Seconds()))
}

// Start begins serving /metrics and the health path in the background.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("metrics server already running")
	}
	s.running = true
	s.startedAt = time.Now()
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return nil
	}
	s.running = false
	return s.server.Shutdown(ctx)
}

// ClaimSettled implements chain/core.Metrics.
func (s *Server) ClaimSettled(amount types.BaseUnits) {
	s.claimsTotal.Inc()
	s.mintedTotal.Add(float64(amount))
}

// DailyCapHit implements chain/core.Metrics.
func (s *Server) DailyCapHit() {
	s.dailyCapHitTotal.Inc()
}

// ActivitySubmitted implements chain/core.Metrics.
func (s *Server) ActivitySubmitted() {
	s.activitiesTotal.Inc()
}

// SetActiveUsers, SetPhase and ObserveEffectSlots are not part of
// chain/core.Metrics, so *core.Core never calls them, and cmd/finova-node
// does not call them either; the two gauges and the effect-slot
// histogram change only when some other caller feeds them.
func (s *Server) SetActiveUsers(n uint64) { s.activeUsers.Set(float64(n)) }
func (s *Server) SetPhase(phase int)      { s.networkPhase.Set(float64(phase)) }
func (s *Server) ObserveEffectSlots(used int) {
	s.effectSlotUsage.Observe(float64(used))
}

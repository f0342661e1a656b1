package monitoring

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

var startTime = time.Now()

// HealthChecker tracks the outcome of the most recent analysis run for the
// optional metrics endpoint.
type HealthChecker struct {
	mu          sync.RWMutex
	lastRun     time.Time
	lastTrades  int
	lastErr     string
	runsStarted int
}

type HealthStatus struct {
	Status         string    `json:"status"`
	Timestamp      time.Time `json:"timestamp"`
	LastRun        time.Time `json:"last_run"`
	LastTradeCount int       `json:"last_trade_count"`
	RunsStarted    int       `json:"runs_started"`
	Uptime         string    `json:"uptime"`
	LastError      string    `json:"last_error,omitempty"`
}

func NewHealthChecker() *HealthChecker {
	return &HealthChecker{}
}

// RunStarted marks the beginning of an analysis run.
func (h *HealthChecker) RunStarted() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.runsStarted++
}

// RunFinished records the outcome of an analysis run.
func (h *HealthChecker) RunFinished(tradeCount int, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lastRun = time.Now()
	h.lastTrades = tradeCount
	h.lastErr = ""
	if err != nil {
		h.lastErr = err.Error()
	}
}

func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	if h.lastErr != "" {
		status = "unhealthy"
		w.WriteHeader(http.StatusInternalServerError)
	}

	health := HealthStatus{
		Status:         status,
		Timestamp:      time.Now(),
		LastRun:        h.lastRun,
		LastTradeCount: h.lastTrades,
		RunsStarted:    h.runsStarted,
		Uptime:         time.Since(startTime).String(),
		LastError:      h.lastErr,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(health)
}

package preview

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"git.home.luguber.info/inful/courseforge/internal/version"
)

// Health states reported by /healthz.
const (
	StateStarting = "starting"
	StateOK       = "ok"
	StateFailed   = "failed"
)

// buildStatus tracks the outcome of the most recent build.
type buildStatus struct {
	mu           sync.RWMutex
	lastError    error
	lastBuild    time.Time
	builds       int
	hasGoodBuild bool
	started      time.Time
}

func newBuildStatus() *buildStatus {
	return &buildStatus{started: time.Now()}
}

func (bs *buildStatus) record(err error) {
	bs.mu.Lock()
	defer bs.mu.Unlock()
	bs.builds++
	bs.lastBuild = time.Now()
	bs.lastError = err
	if err == nil {
		bs.hasGoodBuild = true
	}
}

// HealthResponse is the /healthz body.
type HealthResponse struct {
	Status       string    `json:"status"`
	Version      string    `json:"version"`
	Uptime       string    `json:"uptime"`
	Builds       int       `json:"builds"`
	LastBuild    time.Time `json:"last_build,omitzero"`
	LastError    string    `json:"last_error,omitempty"`
	HasGoodBuild bool      `json:"has_good_build"`
}

func (bs *buildStatus) snapshot() HealthResponse {
	bs.mu.RLock()
	defer bs.mu.RUnlock()
	resp := HealthResponse{
		Status:       StateOK,
		Version:      version.Version,
		Uptime:       time.Since(bs.started).Round(time.Second).String(),
		Builds:       bs.builds,
		LastBuild:    bs.lastBuild,
		HasGoodBuild: bs.hasGoodBuild,
	}
	switch {
	case bs.builds == 0:
		resp.Status = StateStarting
	case bs.lastError != nil:
		resp.Status = StateFailed
		resp.LastError = bs.lastError.Error()
	}
	return resp
}

// ServeHTTP writes the health snapshot. A failed last build answers 503.
func (bs *buildStatus) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	resp := bs.snapshot()
	code := http.StatusOK
	if resp.Status == StateFailed {
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}

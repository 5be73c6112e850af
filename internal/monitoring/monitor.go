// Package monitoring samples host resource usage and streams it to the
// admin dashboard over a websocket.
package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

type Snapshot struct {
	Timestamp  time.Time `json:"timestamp"`
	CPUPercent float64   `json:"cpu_percent"`
	MemUsed    uint64    `json:"mem_used"`
	MemTotal   uint64    `json:"mem_total"`
	DiskUsed   uint64    `json:"disk_used"`
	DiskTotal  uint64    `json:"disk_total"`
	Goroutines int       `json:"goroutines"`
}

// Monitor keeps the most recent host snapshot, refreshed in the background.
type Monitor struct {
	mu       sync.RWMutex
	latest   Snapshot
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewMonitor(logger *zap.Logger) *Monitor {
	return &Monitor{
		logger: logger,
		upgrader: websocket.Upgrader{
			// Same-origin is enforced upstream by CORS; the dashboard may sit on
			// another port in development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// StartCollection samples the host every interval until the process exits.
func (m *Monitor) StartCollection(interval time.Duration) {
	m.collect()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for range ticker.C {
			m.collect()
		}
	}()
}

func (m *Monitor) collect() {
	snap := Snapshot{
		Timestamp:  time.Now().UTC(),
		Goroutines: runtime.NumGoroutine(),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		snap.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		snap.MemUsed = vm.Used
		snap.MemTotal = vm.Total
	}
	if du, err := disk.Usage("/"); err == nil {
		snap.DiskUsed = du.Used
		snap.DiskTotal = du.Total
	}

	m.mu.Lock()
	m.latest = snap
	m.mu.Unlock()
}

func (m *Monitor) Current() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.latest
}

// ServeWS upgrades the connection and pushes a snapshot every five seconds
// until the client disconnects.
func (m *Monitor) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := m.upgrader.Upgrade(w, r, nil)
	if err != nil {
		m.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	if err := conn.WriteJSON(m.Current()); err != nil {
		return
	}
	for range ticker.C {
		if err := conn.WriteJSON(m.Current()); err != nil {
			return
		}
	}
}

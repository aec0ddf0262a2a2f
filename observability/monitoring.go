package observability

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"
)

// MonitoringStats is the body of GET /health.
type MonitoringStats struct {
	// --- RELAY METRICS ---
	Connections      int    `json:"connections"`
	MessagesRelayed  uint64 `json:"messages_relayed"`
	PaymentsDone     uint64 `json:"payments_done"`
	PaymentsRefused  uint64 `json:"payments_refused"`
	PersistenceFails uint64 `json:"persistence_fails"`

	// --- PROCESS METRICS ---
	PID        int32   `json:"pid"`
	Status     string  `json:"status"`
	CPUPercent float64 `json:"cpu_percent"`
	RSSBytes   uint64  `json:"rss_bytes"`

	// --- GO RUNTIME METRICS ---
	AllocMemMb uint64 `json:"alloc_mem_mb"`
	NumGC      uint32 `json:"num_gc"`
	Goroutines int    `json:"goroutines"`

	UpdatedAt time.Time `json:"updated_at"`
}

// ProcessSample is what the health worker reads from the OS.
type ProcessSample struct {
	PID        int32
	Status     string
	CPUPercent float64
	RSSBytes   uint64
}

// MonitoringManager holds the relay counters and the latest health snapshot.
// Counters are bumped from the connection loops, the snapshot is refreshed by the health worker.
type MonitoringManager struct {
	log         *slog.Logger
	mu          sync.RWMutex
	latestStats MonitoringStats

	messagesRelayed  uint64
	paymentsDone     uint64
	paymentsRefused  uint64
	persistenceFails uint64
}

func NewMonitoringManager(log *slog.Logger) *MonitoringManager {
	return &MonitoringManager{log: log}
}

func (mm *MonitoringManager) IncrMessagesRelayed() {
	atomic.AddUint64(&mm.messagesRelayed, 1)
}

func (mm *MonitoringManager) IncrPaymentsDone() {
	atomic.AddUint64(&mm.paymentsDone, 1)
}

func (mm *MonitoringManager) IncrPaymentsRefused() {
	atomic.AddUint64(&mm.paymentsRefused, 1)
}

func (mm *MonitoringManager) IncrPersistenceFails() {
	atomic.AddUint64(&mm.persistenceFails, 1)
}

// Update refreshes the snapshot from a process sample and the live connection count.
func (mm *MonitoringManager) Update(sample ProcessSample, connections int) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	mm.mu.Lock()
	defer mm.mu.Unlock()
	mm.latestStats = MonitoringStats{
		Connections:      connections,
		MessagesRelayed:  atomic.LoadUint64(&mm.messagesRelayed),
		PaymentsDone:     atomic.LoadUint64(&mm.paymentsDone),
		PaymentsRefused:  atomic.LoadUint64(&mm.paymentsRefused),
		PersistenceFails: atomic.LoadUint64(&mm.persistenceFails),
		PID:              sample.PID,
		Status:           sample.Status,
		CPUPercent:       sample.CPUPercent,
		RSSBytes:         sample.RSSBytes,
		AllocMemMb:       m.Alloc / 1024 / 1024,
		NumGC:            m.NumGC,
		Goroutines:       runtime.NumGoroutine(),
		UpdatedAt:        time.Now().UTC(),
	}
	mm.log.Debug("Health stats updated",
		"connections", connections,
		"messages", mm.latestStats.MessagesRelayed,
		"cpu", sample.CPUPercent,
		"rss", sample.RSSBytes,
	)
}

// GetLatest returns the last snapshot with up to date counters.
func (mm *MonitoringManager) GetLatest() MonitoringStats {
	mm.mu.RLock()
	stats := mm.latestStats
	mm.mu.RUnlock()

	stats.MessagesRelayed = atomic.LoadUint64(&mm.messagesRelayed)
	stats.PaymentsDone = atomic.LoadUint64(&mm.paymentsDone)
	stats.PaymentsRefused = atomic.LoadUint64(&mm.paymentsRefused)
	stats.PersistenceFails = atomic.LoadUint64(&mm.persistenceFails)
	return stats
}

package workers

import (
	"coin-chat/contract"
	"coin-chat/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ProcessSampler reads the OS view of the server process.
type ProcessSampler func() (observability.ProcessSample, error)

// HealthWorker refreshes the /health snapshot every interval.
type HealthWorker struct {
	log        *slog.Logger
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
	sample     ProcessSampler
	interval   time.Duration
}

func NewHealthWorker(
	log *slog.Logger,
	registry contract.IRegistry,
	monitoring *observability.MonitoringManager,
	sample ProcessSampler,
	interval time.Duration,
) *HealthWorker {
	return &HealthWorker{
		log:        log,
		registry:   registry,
		monitoring: monitoring,
		sample:     sample,
		interval:   interval,
	}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	w.refresh()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.log.Debug("Context done, stopping health sampling")
			return nil
		case <-ticker.C:
			w.refresh()
		}
	}
}

func (w *HealthWorker) refresh() {
	sample, err := w.sample()
	if err != nil {
		w.log.Error("Failed to collect self stats", "error", err)
	}
	w.monitoring.Update(sample, w.registry.Count())
}

// SelfSampler samples the current process with gopsutil.
func SelfSampler() (ProcessSampler, error) {
	pid := int32(os.Getpid())
	p, err := process.NewProcess(pid)
	if err != nil {
		return nil, err
	}
	return func() (observability.ProcessSample, error) {
		memInfo, err := p.MemoryInfo()
		if err != nil {
			return observability.ProcessSample{PID: pid}, err
		}
		cpuPercent, err := p.CPUPercent()
		if err != nil {
			return observability.ProcessSample{PID: pid}, err
		}
		status, err := p.Status()
		if err != nil {
			return observability.ProcessSample{PID: pid}, err
		}
		return observability.ProcessSample{
			PID:        pid,
			Status:     status,
			CPUPercent: cpuPercent,
			RSSBytes:   memInfo.RSS,
		}, nil
	}, nil
}

package workers

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// PresenceStats reports open connections and identified users.
type PresenceStats func() (connections, online int)

// HeartbeatWorker logs process health (memory, CPU) next to presence numbers at a fixed interval.
type HeartbeatWorker struct {
	log      *slog.Logger
	interval time.Duration
	stats    PresenceStats
	openSelf func() (*process.Process, error)
}

func NewHeartbeatWorker(log *slog.Logger, interval time.Duration, stats PresenceStats) *HeartbeatWorker {
	return &HeartbeatWorker{log: log, interval: interval, stats: stats, openSelf: openSelfProcess}
}

func openSelfProcess() (*process.Process, error) {
	return process.NewProcess(int32(os.Getpid()))
}

// Run never fails: without access to the process, beats carry presence numbers only.
func (w *HeartbeatWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := w.openSelf()
	if err != nil {
		w.log.Warn("Process stats unavailable, heartbeat continues without them", "error", err)
		p = nil
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			w.beat(p)
		}
	}
}

func (w *HeartbeatWorker) beat(p *process.Process) {
	connections, online := w.stats()
	attrs := []any{
		"connections", connections,
		"online_count", online,
		"goroutines", goruntime.NumGoroutine(),
	}
	if p != nil {
		rss, cpu, err := selfStats(p)
		if err != nil {
			w.log.Debug("Failed to collect self stats", "error", err)
		} else {
			attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
		}
	}
	w.log.Info("Heartbeat", attrs...)
}

// selfStats retrieves resident memory and CPU usage of the given process.
func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}

package metrics

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// Snapshot holds one system metrics sample.
type Snapshot struct {
	CPUPercent        float64 // system-wide CPU usage (0-100%)
	ProcessCPUPercent float64 // this process, per-core (can exceed 100%)
	MemoryUsedMB      float64
	MemoryPercent     float64
	Timestamp         time.Time
}

// Collector periodically samples and logs system metrics while a load is
// running.
type Collector struct {
	interval time.Duration
	logger   *zap.Logger
	proc     *process.Process

	mu   sync.RWMutex
	last *Snapshot
}

// NewCollector creates a collector; intervals under a second fall back to
// the 30-second default.
func NewCollector(interval time.Duration, logger *zap.Logger) *Collector {
	if interval < time.Second {
		interval = 30 * time.Second
	}
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Collector{interval: interval, logger: logger, proc: proc}
}

// Start collects on a ticker until the context is cancelled.
func (c *Collector) Start(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.collect()
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("Metrics collection stopped")
			return
		case <-ticker.C:
			c.collect()
		}
	}
}

// Last returns the most recent sample, or nil before the first one.
func (c *Collector) Last() *Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

func (c *Collector) collect() {
	snap := &Snapshot{Timestamp: time.Now()}

	if sys, err := cpu.Percent(0, false); err == nil && len(sys) > 0 {
		snap.CPUPercent = sys[0]
	}
	if c.proc != nil {
		if procCPU, err := c.proc.Percent(0); err == nil {
			snap.ProcessCPUPercent = procCPU
		}
	}
	if vmem, err := mem.VirtualMemory(); err == nil {
		snap.MemoryPercent = vmem.UsedPercent
		snap.MemoryUsedMB = float64(vmem.Used) / (1024 * 1024)
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()

	c.logger.Info("System metrics",
		zap.Float64("sys_cpu", snap.CPUPercent),
		zap.Float64("proc_cpu", snap.ProcessCPUPercent),
		zap.Float64("mem_pct", snap.MemoryPercent),
		zap.Float64("mem_used_mb", snap.MemoryUsedMB),
	)
}

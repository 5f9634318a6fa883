package schedule

import (
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemMetrics tracks resource usage for job monitoring. The values are
// attached to execution-completed log lines so an operator can correlate
// job runs with memory pressure.
type SystemMetrics struct {
	MemoryUsedGB  float64 `json:"memory_used_gb"`
	MemoryTotalGB float64 `json:"memory_total_gb"`
	MemoryPercent float64 `json:"memory_percent"`
}

// GetSystemMetrics returns current system resource usage. Errors are
// swallowed: metrics are decoration on log lines, never worth failing a
// job over.
func GetSystemMetrics() SystemMetrics {
	v, err := mem.VirtualMemory()
	if err != nil || v == nil || v.Total == 0 {
		return SystemMetrics{}
	}

	totalGB := float64(v.Total) / 1024 / 1024 / 1024
	usedGB := float64(v.Total-v.Available) / 1024 / 1024 / 1024
	return SystemMetrics{
		MemoryUsedGB:  usedGB,
		MemoryTotalGB: totalGB,
		MemoryPercent: usedGB / totalGB * 100,
	}
}

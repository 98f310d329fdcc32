package service

import (
	"context"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/sphinxcode/sagecalculator-api/internal/api"
	"github.com/sphinxcode/sagecalculator-api/internal/lib/utils"
	"github.com/sphinxcode/sagecalculator-api/internal/server"
)

const (
	// StatusHealthy is the only status reported; there is no dependency probing.
	StatusHealthy = "healthy"

	// ServiceOperational is reported for every logical subsystem.
	ServiceOperational = "operational"
)

// MemoryUsage reports process memory in bytes.
type MemoryUsage struct {
	// RSS is the resident set size of the process.
	RSS uint64 `json:"rss"`
	// HeapTotal is the memory obtained from the OS for the Go heap.
	HeapTotal uint64 `json:"heapTotal"`
	// HeapUsed is the memory held by live and not yet collected heap objects.
	HeapUsed uint64 `json:"heapUsed"`
	// External is runtime memory outside the heap (stacks, GC metadata, buffers).
	External uint64 `json:"external"`
	// Sys is the total memory obtained from the OS by the Go runtime.
	Sys uint64 `json:"sys"`
}

// HealthSnapshot is the body of the health endpoint.
type HealthSnapshot struct {
	Success   bool              `json:"success"`
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Uptime    float64           `json:"uptime"`
	Memory    MemoryUsage       `json:"memory"`
	Version   string            `json:"version"`
	Services  map[string]string `json:"services"`
}

// HealthService builds health snapshots.
//
// It only reads process-wide state, so concurrent calls are safe and every
// call produces an independent snapshot.
type HealthService struct {
	startedAt time.Time
	services  []string
	pid       int32
	now       func() time.Time
}

// NewHealthService measures uptime from the server start instant.
func NewHealthService(s *server.Server) *HealthService {
	return &HealthService{
		startedAt: s.StartedAt,
		services:  append([]string(nil), s.Config.Health.Services...),
		pid:       int32(os.Getpid()),
		now:       time.Now,
	}
}

// Snapshot reports liveness, uptime in seconds and memory usage.
func (hs *HealthService) Snapshot(ctx context.Context) *HealthSnapshot {
	now := hs.now()

	uptime := now.Sub(hs.startedAt).Seconds()
	if uptime < 0 {
		uptime = 0
	}

	services := make(map[string]string, len(hs.services))
	for _, name := range hs.services {
		services[name] = ServiceOperational
	}

	return &HealthSnapshot{
		Success:   true,
		Status:    StatusHealthy,
		Timestamp: utils.ISOTimestamp(now),
		Uptime:    uptime,
		Memory:    hs.memoryUsage(ctx),
		Version:   api.Version,
		Services:  services,
	}
}

func (hs *HealthService) memoryUsage(ctx context.Context) MemoryUsage {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	usage := MemoryUsage{
		RSS:       stats.Sys,
		HeapTotal: stats.HeapSys,
		HeapUsed:  stats.HeapAlloc,
		External:  stats.Sys - stats.HeapSys,
		Sys:       stats.Sys,
	}

	// RSS falls back to the runtime total when the OS cannot be queried.
	if proc, err := process.NewProcessWithContext(ctx, hs.pid); err == nil {
		if info, err := proc.MemoryInfoWithContext(ctx); err == nil && info.RSS > 0 {
			usage.RSS = info.RSS
		}
	}

	return usage
}

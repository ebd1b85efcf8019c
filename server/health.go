package server

import (
	"math"
	"runtime"
	"time"
)

var start = time.Now()

// MB bytes in a megabyte
const MB float64 = 1.0 * 1024 * 1024

// HealthStats process statistics served at /healthcheck
type HealthStats struct {
	Uptime          int64   `json:"uptime"`
	AllocatedMemory float64 `json:"allocated_memory"`
	HeapAllocated   float64 `json:"heap_allocated"`
	OSMemory        float64 `json:"os_memory_obtained"`
	Goroutines      int     `json:"goroutines"`
	GCCycles        uint32  `json:"gc_cycles"`
	NumberOfCPUs    int     `json:"number_of_cpus"`
}

// GetHealthStats reads current HealthStats. Memory held by libvips is not included.
func GetHealthStats() *HealthStats {
	mem := &runtime.MemStats{}
	runtime.ReadMemStats(mem)
	return &HealthStats{
		Uptime:          int64(time.Since(start).Seconds()),
		AllocatedMemory: toMegaBytes(mem.Alloc),
		HeapAllocated:   toMegaBytes(mem.HeapAlloc),
		OSMemory:        toMegaBytes(mem.Sys),
		Goroutines:      runtime.NumGoroutine(),
		GCCycles:        mem.NumGC,
		NumberOfCPUs:    runtime.NumCPU(),
	}
}

func toMegaBytes(bytes uint64) float64 {
	return math.Round(float64(bytes)/MB*100) / 100
}

package profiler

import (
	"log"
	"runtime"
	"time"
)

// Profiler tracks frame rate, draw counts and memory statistics for
// performance monitoring. Outputs stats to the log at a configurable
// interval.
type Profiler struct {
	frameCount     int
	drawCount      int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Tick should be called once per frame with the number of draws the frame
// submitted. Logs performance statistics when the update interval has
// elapsed: FPS, average draws per frame, heap usage, allocation rate and GC
// activity.
//
// Parameters:
//   - draws: draw calls submitted this frame
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(draws int) bool {
	p.frameCount++
	p.drawCount += draws
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()
	avgDraws := float64(p.drawCount) / float64(p.frameCount)

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap bytes. TotalAlloc: cumulative heap bytes, tracks churn.
	// Sys: bytes obtained from the OS (process footprint).
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024

	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	// PauseNs is a circular buffer of the last 256 GC pauses.
	gcCount := p.memStats.NumGC
	var lastPauseUs uint64
	if gcCount > 0 {
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
	}

	log.Printf("[Profiler] FPS: %.2f | Draws/frame: %.1f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %d µs) | Sys: %.2f MB",
		fps, avgDraws, allocMB, allocRateMB, gcCount, lastPauseUs, sysMB)

	p.frameCount = 0
	p.drawCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Package profiler logs frame rate, memory and instance statistics at a
// fixed interval.
package profiler

import (
	"log"
	"runtime"
	"time"
)

// Stats is one reporting window.
type Stats struct {
	FPS        float64
	HeapMB     float64
	AllocRate  float64 // MB/s
	GCCount    uint32
	MaxPauseUs uint64
	Instances  int
}

// Profiler counts frames and reports once per interval.
type Profiler struct {
	interval  time.Duration
	instances func() int
	logger    *log.Logger

	frames         int
	last           time.Time
	mem            runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// New returns a profiler. instances reports the number of live effect
// instances and may be nil.
func New(interval time.Duration, instances func() int, logger *log.Logger) *Profiler {
	if interval <= 0 {
		interval = time.Second
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Profiler{interval: interval, instances: instances, logger: logger}
}

// Tick counts one frame at now. When the interval has elapsed it logs and
// returns the window's statistics.
func (p *Profiler) Tick(now time.Time) (Stats, bool) {
	if p.last.IsZero() {
		p.last = now
		runtime.ReadMemStats(&p.mem)
		p.lastGCCount = p.mem.NumGC
		p.lastTotalAlloc = p.mem.TotalAlloc
		return Stats{}, false
	}
	p.frames++
	elapsed := now.Sub(p.last)
	if elapsed < p.interval {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.mem)
	secs := elapsed.Seconds()
	st := Stats{
		FPS:       float64(p.frames) / secs,
		HeapMB:    float64(p.mem.Alloc) / 1024 / 1024,
		AllocRate: float64(p.mem.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / secs,
		GCCount:   p.mem.NumGC,
	}
	// PauseNs is a ring of the last 256 pauses.
	from := p.lastGCCount
	if st.GCCount-from > 256 {
		from = st.GCCount - 256
	}
	for i := from; i < st.GCCount; i++ {
		st.MaxPauseUs = max(st.MaxPauseUs, p.mem.PauseNs[i%256]/1000)
	}
	if p.instances != nil {
		st.Instances = p.instances()
	}

	p.logger.Printf("[profiler] FPS: %.2f | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (max: %d µs) | Instances: %d",
		st.FPS, st.HeapMB, st.AllocRate, st.GCCount, st.MaxPauseUs, st.Instances)

	p.frames = 0
	p.last = now
	p.lastGCCount = st.GCCount
	p.lastTotalAlloc = p.mem.TotalAlloc
	return st, true
}

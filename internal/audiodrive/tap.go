package audiodrive

import (
	"math"
	"sync"

	"github.com/faiface/beep"
)

// tap passes audio through unchanged while keeping the most recent samples
// in a ring so the frame loop can measure what is actually playing.
type tap struct {
	src beep.Streamer

	mu     sync.RWMutex
	ring   [][2]float64
	pos    int
	filled int
}

func newTap(src beep.Streamer, size int) *tap {
	return &tap{src: src, ring: make([][2]float64, max(1, size))}
}

func (t *tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.src.Stream(samples)
	if n == 0 {
		return n, ok
	}
	t.mu.Lock()
	in := samples[:n]
	if len(in) > len(t.ring) {
		in = in[len(in)-len(t.ring):]
	}
	for len(in) > 0 {
		c := copy(t.ring[t.pos:], in)
		in = in[c:]
		t.pos = (t.pos + c) % len(t.ring)
		t.filled = min(len(t.ring), t.filled+c)
	}
	t.mu.Unlock()
	return n, ok
}

func (t *tap) Err() error { return t.src.Err() }

// recent returns up to n of the latest samples, oldest first.
func (t *tap) recent(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n = min(n, t.filled)
	out := make([][2]float64, n)
	start := (t.pos - n + len(t.ring)) % len(t.ring)
	c := copy(out, t.ring[start:min(len(t.ring), start+n)])
	copy(out[c:], t.ring[:n-c])
	return out
}

// Loudness is the compressed RMS of the mono mix of samples, in [0,1] for
// full-scale input.
func Loudness(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		mono := (s[0] + s[1]) * 0.5
		sum += mono * mono
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	// aggressive compression so quiet passages still move things
	return math.Pow(rms, 0.3)
}

package audiodrive

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"

	"github.com/iburimskiy/backdrop/internal/config"
)

// counter streams samples whose left channel counts up from 1.
func counter(limit int) beep.Streamer {
	next := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if next >= limit {
			return 0, false
		}
		n := 0
		for i := range samples {
			if next >= limit {
				break
			}
			next++
			samples[i] = [2]float64{float64(next), 0}
			n++
		}
		return n, true
	})
}

func TestTapRecentIsChronological(t *testing.T) {
	tp := newTap(counter(100), 8)
	buf := make([][2]float64, 5)
	for range 3 {
		tp.Stream(buf)
	}
	got := tp.recent(4)
	want := []float64{12, 13, 14, 15}
	if len(got) != len(want) {
		t.Fatalf("recent = %v", got)
	}
	for i, w := range want {
		if got[i][0] != w {
			t.Errorf("recent[%d] = %v, want %v", i, got[i][0], w)
		}
	}
	if n := len(tp.recent(100)); n != 8 {
		t.Errorf("recent(100) returned %d samples, want ring size 8", n)
	}
}

func TestTapPartialFill(t *testing.T) {
	tp := newTap(counter(3), 8)
	tp.Stream(make([][2]float64, 5))
	got := tp.recent(8)
	if len(got) != 3 || got[0][0] != 1 || got[2][0] != 3 {
		t.Errorf("recent = %v", got)
	}
}

func TestTapOversizedBatch(t *testing.T) {
	tp := newTap(counter(100), 4)
	tp.Stream(make([][2]float64, 10))
	got := tp.recent(4)
	if got[0][0] != 7 || got[3][0] != 10 {
		t.Errorf("recent = %v", got)
	}
}

func TestLoudness(t *testing.T) {
	if Loudness(nil) != 0 {
		t.Error("empty input should be silent")
	}
	if Loudness(make([][2]float64, 16)) != 0 {
		t.Error("zeros should be silent")
	}
	full := [][2]float64{{0.5, 0.5}, {-0.5, -0.5}}
	if got, want := Loudness(full), math.Pow(0.5, 0.3); math.Abs(got-want) > 1e-12 {
		t.Errorf("Loudness = %v, want %v", got, want)
	}
}

func TestObserveSmooths(t *testing.T) {
	d := New()
	loud := [][2]float64{{1, 1}, {1, 1}}
	first := d.observe(loud)
	if want := 1 - config.SmoothingFactor; math.Abs(first-want) > 1e-12 {
		t.Errorf("first level = %v, want %v", first, want)
	}
	second := d.observe(loud)
	if second <= first || second >= 1 {
		t.Errorf("level should approach 1, got %v then %v", first, second)
	}
	if d.observe(nil) != second {
		t.Error("no samples should leave the level alone")
	}
	if d.Level() != second {
		t.Error("Level should report the last observation")
	}
}

func TestUpdateDecaysWithoutTrack(t *testing.T) {
	d := New()
	d.level = 1
	if got := d.Update(); got != config.SmoothingFactor {
		t.Errorf("Update = %v", got)
	}
}

func TestLoadErrors(t *testing.T) {
	d := New()
	if err := d.Load("song.ogg"); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ogg: err = %v", err)
	}
	if err := d.Load(filepath.Join(t.TempDir(), "missing.WAV")); err == nil || errors.Is(err, ErrUnsupported) {
		t.Errorf("missing file: err = %v", err)
	}
	if d.Playing() || d.Duration() != 0 || d.Position() != 0 {
		t.Error("failed loads should leave the drive idle")
	}
	if err := d.Seek(0.5); err != nil {
		t.Errorf("seek while idle: %v", err)
	}
	d.TogglePause()
	if d.Paused() {
		t.Error("idle drive cannot be paused")
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(83 * time.Second); got != "01:23" {
		t.Errorf("FormatDuration = %q", got)
	}
}

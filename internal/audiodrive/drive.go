// Package audiodrive plays an optional audio track and turns its loudness
// into a pulse level for the running effects.
package audiodrive

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/backdrop/internal/config"
)

var ErrUnsupported = errors.New("audiodrive: unsupported file type")

// Drive owns the speaker and at most one playing track.
type Drive struct {
	mu       sync.Mutex
	file     *os.File
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *tap
	name     string

	// speaker state
	rate     beep.SampleRate
	initDone bool

	level float64
}

func New() *Drive { return &Drive{} }

// OpenDialog lets the user pick a track and plays it. Cancelling the
// dialog is not an error.
func (d *Drive) OpenDialog() error {
	path, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: []string{"*.wav", "*.mp3", "*.flac"},
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return d.Load(path)
}

func decode(path string) (*os.File, beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var dec func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch ext {
	case ".wav":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".mp3":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	case ".flac":
		dec = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return flac.Decode(f) }
	default:
		return nil, nil, beep.Format{}, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, beep.Format{}, fmt.Errorf("audiodrive: %w", err)
	}
	s, format, err := dec(f)
	if err != nil {
		f.Close()
		return nil, nil, beep.Format{}, fmt.Errorf("audiodrive: decode %s: %w", filepath.Base(path), err)
	}
	return f, s, format, nil
}

// Load stops the current track and starts playing path.
func (d *Drive) Load(path string) error {
	f, streamer, format, err := decode(path)
	if err != nil {
		return err
	}

	t := newTap(streamer, config.VisualRingSize)
	ctrl := &beep.Ctrl{Streamer: t}

	bufferSize := format.SampleRate.N(time.Second / 20)
	switch {
	case !d.initDone:
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			streamer.Close()
			f.Close()
			return fmt.Errorf("audiodrive: speaker: %w", err)
		}
		d.initDone = true
	case d.rate != format.SampleRate:
		speaker.Clear()
		if err := speaker.Init(format.SampleRate, bufferSize); err != nil {
			streamer.Close()
			f.Close()
			return fmt.Errorf("audiodrive: speaker: %w", err)
		}
	default:
		speaker.Clear()
	}
	d.rate = format.SampleRate

	d.mu.Lock()
	d.release()
	d.file, d.streamer, d.format = f, streamer, format
	d.ctrl, d.tap = ctrl, t
	d.name = filepath.Base(path)
	d.level = 0
	d.mu.Unlock()

	log.Printf("[audio] playing %s (%d Hz)", d.name, format.SampleRate)
	speaker.Play(beep.Seq(ctrl, beep.Callback(func() {
		d.mu.Lock()
		if d.ctrl == ctrl {
			d.release()
		}
		d.mu.Unlock()
	})))
	return nil
}

// release closes the current track. d.mu must be held.
func (d *Drive) release() {
	if d.streamer != nil {
		d.streamer.Close()
	}
	if d.file != nil {
		d.file.Close()
	}
	d.file, d.streamer, d.ctrl, d.tap = nil, nil, nil, nil
	d.name = ""
}

// Update measures the latest samples and folds them into the smoothed
// level. Call once per frame.
func (d *Drive) Update() float64 {
	d.mu.Lock()
	t := d.tap
	d.mu.Unlock()
	if t == nil {
		d.level *= config.SmoothingFactor
		return d.level
	}
	return d.observe(t.recent(config.LevelWindow))
}

func (d *Drive) observe(samples [][2]float64) float64 {
	if len(samples) == 0 {
		return d.level
	}
	d.level = config.SmoothingFactor*d.level + (1-config.SmoothingFactor)*Loudness(samples)
	return d.level
}

// Level is the smoothed loudness from the last Update.
func (d *Drive) Level() float64 { return d.level }

func (d *Drive) Playing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ctrl != nil
}

// Name is the base name of the playing file.
func (d *Drive) Name() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *Drive) TogglePause() {
	d.mu.Lock()
	ctrl := d.ctrl
	d.mu.Unlock()
	if ctrl == nil {
		return
	}
	speaker.Lock()
	ctrl.Paused = !ctrl.Paused
	speaker.Unlock()
}

func (d *Drive) Paused() bool {
	d.mu.Lock()
	ctrl := d.ctrl
	d.mu.Unlock()
	if ctrl == nil {
		return false
	}
	speaker.Lock()
	defer speaker.Unlock()
	return ctrl.Paused
}

// Position is how far playback has advanced.
func (d *Drive) Position() time.Duration {
	d.mu.Lock()
	s, format := d.streamer, d.format
	d.mu.Unlock()
	if s == nil {
		return 0
	}
	speaker.Lock()
	p := s.Position()
	speaker.Unlock()
	return format.SampleRate.D(p)
}

func (d *Drive) Duration() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.streamer == nil {
		return 0
	}
	return d.format.SampleRate.D(d.streamer.Len())
}

// Seek jumps to frac of the track, clamped to [0,1).
func (d *Drive) Seek(frac float64) error {
	d.mu.Lock()
	s := d.streamer
	d.mu.Unlock()
	if s == nil {
		return nil
	}
	n := s.Len()
	pos := min(n-1, max(0, int(frac*float64(n))))
	speaker.Lock()
	err := s.Seek(pos)
	speaker.Unlock()
	if err != nil {
		return fmt.Errorf("audiodrive: seek: %w", err)
	}
	return nil
}

// Close stops playback and releases the track.
func (d *Drive) Close() error {
	if d.initDone {
		speaker.Clear()
	}
	d.mu.Lock()
	d.release()
	d.mu.Unlock()
	return nil
}

// FormatDuration renders d as MM:SS.
func FormatDuration(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}

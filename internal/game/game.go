// Package game is the ebiten application: it owns the window, routes
// input to the editor and the effects, and drives the frame scheduler.
package game

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/backdrop/internal/audiodrive"
	"github.com/iburimskiy/backdrop/internal/config"
	"github.com/iburimskiy/backdrop/internal/frame"
	"github.com/iburimskiy/backdrop/internal/mount"
	"github.com/iburimskiy/backdrop/internal/palette"
	"github.com/iburimskiy/backdrop/internal/panel"
	"github.com/iburimskiy/backdrop/internal/profiler"
	"github.com/iburimskiy/backdrop/internal/registry"
	"github.com/iburimskiy/backdrop/internal/sandbox"
	"github.com/iburimskiy/backdrop/internal/schema"
	"github.com/iburimskiy/backdrop/internal/surface"
)

// addKeys map digit keys to the kind of layer they add.
var addKeys = []ebiten.Key{ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5, ebiten.KeyDigit6}

type Options struct {
	Registry   *registry.Registry
	Stack      *sandbox.Stack
	LayersPath string
	Policy     mount.Policy
	Site       bool
	Dialogs    panel.Dialogs
	Audio      *audiodrive.Drive
	// Profiler may be nil.
	Profiler *profiler.Profiler
	Rand     *rand.Rand
}

type Game struct {
	reg   *registry.Registry
	sched *frame.Scheduler
	stage *Stage
	stack *sandbox.Stack
	site  *sandbox.Site
	view  *panel.View
	dlg   panel.Dialogs
	audio *audiodrive.Drive
	prof  *profiler.Profiler

	layersPath string
	siteMode   bool
	viewport   sandbox.Mode
	w, h       int
	start      time.Time

	// input edge detection
	prevKey map[ebiten.Key]bool

	// button state
	buttonHovered bool
	buttonPressed bool

	lastErr error
	closed  bool
}

func New(opts Options) *Game {
	if opts.Audio == nil {
		opts.Audio = audiodrive.New()
	}
	sched := frame.NewScheduler()
	g := &Game{
		reg:        opts.Registry,
		sched:      sched,
		stack:      opts.Stack,
		site:       sandbox.NewSite(),
		view:       panel.NewView(panel.New(opts.Registry, opts.Dialogs)),
		dlg:        opts.Dialogs,
		audio:      opts.Audio,
		prof:       opts.Profiler,
		layersPath: opts.LayersPath,
		siteMode:   opts.Site,
		w:          config.WindowWidth,
		h:          config.WindowHeight,
		start:      time.Now(),
		prevKey:    map[ebiten.Key]bool{},
	}
	g.stage = NewStage(opts.Registry, sched, opts.Rand, opts.Policy, func(w, h int) surface.Canvas {
		return surface.NewImage(w, h)
	})
	if l, ok := g.stack.Selected(); ok && !g.siteMode {
		g.view.Panel().Select(l.ID)
	}
	return g
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		g.Close()
		return ebiten.Termination
	}
	if justPressed(ebiten.KeyTab) {
		g.view.Visible = !g.view.Visible
	}
	if justPressed(ebiten.KeySpace) {
		g.audio.TogglePause()
	}
	if justPressed(ebiten.KeyM) {
		g.viewport = g.viewport.Next()
	}
	if justPressed(ebiten.KeyS) {
		g.toggleSite()
	}
	if justPressed(ebiten.KeyO) {
		g.fail(g.audio.OpenDialog())
	}
	if !g.siteMode {
		g.editStack(justPressed)
	}

	captured, err := g.view.Update(g.w, g.h)
	g.fail(err)

	mouseX, mouseY := ebiten.CursorPosition()
	if !captured {
		g.topBar(mouseX, mouseY)
		if _, dy := ebiten.Wheel(); g.siteMode && dy != 0 {
			g.site.ScrollBy(-dy * config.ScrollStep)
		}
	}

	if !g.siteMode {
		if inst, ok := g.view.Panel().Selected(); ok {
			g.stack.Select(inst.ID)
		}
	}
	g.fail(g.stage.Apply(g.specs()))
	g.stage.Pointer(mouseX, mouseY, !captured && mouseY >= config.TopBarHeight)

	// registry edits land before the frame that draws them
	g.stage.Sync()
	g.stage.Pulse(g.audio.Update())
	now := time.Since(g.start)
	g.sched.Tick(now)
	if g.prof != nil {
		g.prof.Tick(g.start.Add(now))
	}
	return nil
}

func (g *Game) specs() []Spec {
	if g.siteMode {
		return siteSpecs(g.site, g.w, g.h)
	}
	return sandboxSpecs(g.stack.Layers(), g.viewport, g.w, g.h)
}

func (g *Game) editStack(justPressed func(ebiten.Key) bool) {
	changed := false
	for i, k := range addKeys {
		if justPressed(k) {
			l, err := g.stack.Add(schema.Kinds()[i])
			if g.fail(err) {
				continue
			}
			g.view.Panel().Select(l.ID)
			changed = true
		}
	}
	// poll every key so edge state stays current
	var (
		del    = justPressed(ebiten.KeyDelete)
		bksp   = justPressed(ebiten.KeyBackspace)
		hide   = justPressed(ebiten.KeyV)
		up     = justPressed(ebiten.KeyBracketRight)
		down   = justPressed(ebiten.KeyBracketLeft)
		export = justPressed(ebiten.KeyE)
	)
	if sel, ok := g.stack.Selected(); ok {
		switch {
		case del || bksp:
			// a removed layer is gone for good whatever the unmount policy
			if changed = g.stack.Remove(sel.ID); changed {
				g.reg.Unregister(sel.ID)
			}
		case hide:
			changed = g.stack.SetVisible(sel.ID, !sel.Visible)
		case up:
			changed = g.stack.Move(sel.ID, 1)
		case down:
			changed = g.stack.Move(sel.ID, -1)
		case export:
			g.fail(g.exportSnippet(sel))
		}
	}
	if changed {
		g.fail(g.save())
	}
}

// topBar handles the audio button and the layer chips.
func (g *Game) topBar(mouseX, mouseY int) {
	button := sandbox.Rect{X: config.ButtonX, Y: config.ButtonY, W: config.ButtonWidth, H: config.ButtonHeight}
	g.buttonHovered = button.Contains(mouseX, mouseY)

	if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonPressed = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered {
			g.fail(g.audio.OpenDialog())
		}
		g.buttonPressed = false
	}

	if g.siteMode || !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		return
	}
	layers := g.stack.Layers()
	for i, r := range chips(len(layers), g.w) {
		if r.Contains(mouseX, mouseY) {
			g.stack.Select(layers[i].ID)
			g.view.Panel().Select(layers[i].ID)
		}
	}
}

func (g *Game) toggleSite() {
	if !g.siteMode {
		g.fail(g.save())
	}
	g.siteMode = !g.siteMode
	if g.siteMode {
		g.view.Panel().Select(g.site.Sections[0].ID)
	} else if l, ok := g.stack.Selected(); ok {
		g.view.Panel().Select(l.ID)
	}
}

func (g *Game) exportSnippet(l sandbox.Layer) error {
	if inst, ok := g.reg.Lookup(l.ID); ok {
		l.Config = inst.Config
	}
	src, err := sandbox.Snippet(l)
	if err != nil {
		return err
	}
	if g.dlg == nil {
		log.Printf("[sandbox] snippet for %s:\n%s", l.ID, src)
		return nil
	}
	path, err := g.dlg.SaveFile("Export snippet", l.ID+".go")
	if errors.Is(err, panel.ErrCanceled) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("game: write snippet: %w", err)
	}
	return nil
}

// save captures live edits into the stack and persists it.
func (g *Game) save() error {
	if g.layersPath == "" {
		return nil
	}
	g.stack.Capture(g.reg)
	return g.stack.Save(g.layersPath)
}

// fail records err for the status line and reports whether there was one.
func (g *Game) fail(err error) bool {
	if err == nil {
		return false
	}
	log.Printf("[game] %v", err)
	g.lastErr = err
	return true
}

// Close persists the sandbox, unmounts every effect and stops audio.
// Later calls do nothing.
func (g *Game) Close() {
	if g.closed {
		return
	}
	g.closed = true
	if err := g.save(); err != nil {
		log.Printf("[game] save layers: %v", err)
	}
	g.stage.Close()
	g.audio.Close()
}

var (
	backgroundColor = color.RGBA{R: 10, G: 10, B: 18, A: 255}
	barColor        = color.RGBA{R: 20, G: 25, B: 35, A: 240}
	frameBorder     = color.RGBA{R: 60, G: 70, B: 90, A: 255}
)

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	g.stage.Draw(screen)
	if g.siteMode {
		g.drawSiteTitles(screen)
	} else {
		g.drawStageFrame(screen)
	}

	g.drawTopBar(screen)
	g.view.Draw(screen)

	status := ""
	switch {
	case !g.audio.Playing():
		status = "O: open audio"
	case g.audio.Paused():
		status = fmt.Sprintf("Paused %s %s/%s - Space to play", g.audio.Name(),
			audiodrive.FormatDuration(g.audio.Position()), audiodrive.FormatDuration(g.audio.Duration()))
	default:
		status = fmt.Sprintf("Playing %s %s/%s level %.2f", g.audio.Name(),
			audiodrive.FormatDuration(g.audio.Position()), audiodrive.FormatDuration(g.audio.Duration()), g.audio.Level())
	}
	if g.siteMode {
		status += " | wheel: scroll | S: sandbox"
	} else {
		status += " | 1-6: add | Del: remove | V: hide | [ ]: move | E: export | M: viewport | S: site"
	}
	status += " | Tab: panel"
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	ebitenutil.DebugPrintAt(screen, status, 12, g.h-20)
}

func (g *Game) drawStageFrame(screen *ebiten.Image) {
	r := sandbox.Frame(g.viewport, g.w, g.h)
	if g.viewport != sandbox.Fullscreen {
		vector.StrokeRect(screen, float32(r.X)-1, float32(r.Y)-1, float32(r.W)+2, float32(r.H)+2, 2, frameBorder, false)
	}
	caption := sandbox.Caption(g.viewport)
	ebitenutil.DebugPrintAt(screen, caption, r.X+(r.W-len(caption)*6)/2, r.Y+r.H/2-8)
}

func (g *Game) drawSiteTitles(screen *ebiten.Image) {
	for i, sec := range g.site.Sections {
		if !g.site.Visible(i) {
			continue
		}
		_, y, _, _ := g.site.Bounds(i)
		ebitenutil.DebugPrintAt(screen, sec.Title, 24, config.TopBarHeight+int(y)+24)
	}
}

func (g *Game) drawTopBar(screen *ebiten.Image) {
	vector.DrawFilledRect(screen, 0, 0, float32(g.w), config.TopBarHeight, barColor, false)
	drawButton(screen, sandbox.Rect{X: config.ButtonX, Y: config.ButtonY, W: config.ButtonWidth, H: config.ButtonHeight},
		"Open Audio", g.buttonHovered, g.buttonPressed)
	if g.audio.Playing() {
		drawLevel(screen, sandbox.Rect{X: g.w - levelWidth - config.ButtonX, Y: config.ButtonY, W: levelWidth, H: config.ButtonHeight}, g.audio.Level())
	}

	if g.siteMode {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SITE  scroll %.0f", g.site.Scroll()), config.ButtonX+config.ButtonWidth+2*chipGap, config.ButtonY+8)
		return
	}
	layers := g.stack.Layers()
	sel, _ := g.stack.Selected()
	for i, r := range chips(len(layers), g.w) {
		label := string(layers[i].Kind)
		if !layers[i].Visible {
			label = "(" + label + ")"
		}
		drawButton(screen, r, label, false, layers[i].ID == sel.ID)
	}
}

func drawButton(screen *ebiten.Image, r sandbox.Rect, label string, hovered, pressed bool) {
	var bgColor color.Color
	if pressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255}
	} else if hovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255}
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), bgColor, false)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	if n := r.W/6 - 1; len(label) > n {
		label = label[:n]
	}
	ebitenutil.DebugPrintAt(screen, label, r.X+(r.W-len(label)*6)/2, r.Y+(r.H-16)/2)
}

const (
	levelWidth    = 96
	levelSegments = 12
)

// drawLevel is a segmented loudness meter running green to red.
func drawLevel(screen *ebiten.Image, r sandbox.Rect, level float64) {
	vector.DrawFilledRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), color.RGBA{R: 20, G: 25, B: 35, A: 200}, false)
	vector.StrokeRect(screen, float32(r.X), float32(r.Y), float32(r.W), float32(r.H), 1, frameBorder, false)
	seg := float32(r.W) / levelSegments
	lit := int(math.Round(max(0, min(1, level)) * levelSegments))
	for i := range lit {
		t := float64(i) / (levelSegments - 1)
		c := palette.HSV(120-120*t, 0.8, 0.9)
		vector.DrawFilledRect(screen, float32(r.X)+float32(i)*seg+1, float32(r.Y)+3, seg-2, float32(r.H)-6, c, false)
	}
}

// Layout follows the window so effects render at native resolution.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.w, g.h = max(1, outsideWidth), max(1, outsideHeight)
	return g.w, g.h
}
